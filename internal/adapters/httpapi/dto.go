package httpapi

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/bnema/haggle/internal/adapters/wire"
	"github.com/bnema/haggle/internal/application"
	"github.com/bnema/haggle/internal/domain"
)

const (
	statusAcknowledged   = "Acknowledged"
	statusNoMessageBody  = "Failed; no message body"
	statusRoundInactive  = "Failed; round not active"
	errUtilityNotSetText = "utilityInfo not initialized."
	unitCostUtilityType  = "unitcost"
)

// utilityPayload is the seller utility as exchanged with the orchestrator.
type utilityPayload struct {
	RoundID      wire.RoundID           `json:"roundId,omitempty"`
	Name         string                 `json:"name,omitempty"`
	CurrencyUnit string                 `json:"currencyUnit"`
	Utility      map[string]goodUtility `json:"utility"`
}

type goodUtility struct {
	Type       string         `json:"type,omitempty"`
	Parameters goodParameters `json:"parameters"`
}

type goodParameters struct {
	UnitCost float64 `json:"unitcost"`
}

func (p utilityPayload) command() application.SetUtilityCommand {
	costs := make(map[string]decimal.Decimal, len(p.Utility))
	for good, entry := range p.Utility {
		costs[good] = decimal.NewFromFloat(entry.Parameters.UnitCost)
	}

	return application.SetUtilityCommand{
		RoundID: string(p.RoundID),
		Profile: domain.UtilityProfile{
			Name:         p.Name,
			CurrencyUnit: p.CurrencyUnit,
			UnitCosts:    costs,
		},
	}
}

func fromReport(report application.UtilityReport) utilityPayload {
	utility := make(map[string]goodUtility, len(report.Profile.UnitCosts))
	for good, cost := range report.Profile.UnitCosts {
		utility[good] = goodUtility{
			Type:       unitCostUtilityType,
			Parameters: goodParameters{UnitCost: cost.InexactFloat64()},
		}
	}

	return utilityPayload{
		RoundID:      wire.RoundID(report.RoundID),
		Name:         report.AgentID,
		CurrencyUnit: report.Profile.CurrencyUnit,
		Utility:      utility,
	}
}

type setUtilityResponse struct {
	RoundID wire.RoundID    `json:"roundId,omitempty"`
	Status  string          `json:"status"`
	Utility *utilityPayload `json:"utility"`
}

type startRoundRequest struct {
	RoundID wire.RoundID `json:"roundId"`
	// RoundDuration is in seconds.
	RoundDuration float64 `json:"roundDuration"`
}

func (r startRoundRequest) command() application.StartRoundCommand {
	return application.StartRoundCommand{
		RoundID:  string(r.RoundID),
		Duration: time.Duration(r.RoundDuration * float64(time.Second)),
	}
}

type roundResponse struct {
	RoundID wire.RoundID `json:"roundId,omitempty"`
	Status  string       `json:"status"`
}

type receiveMessageResponse struct {
	RoundID        wire.RoundID  `json:"roundId,omitempty"`
	Status         string        `json:"status"`
	Interpretation *wire.Message `json:"interpretation,omitempty"`
}

type rejectionRequest struct {
	wire.Message
	Rationale string `json:"rationale,omitempty"`
}

func (r rejectionRequest) notice() application.RejectionNotice {
	notice := application.RejectionNotice{
		Rationale: r.Rationale,
		Message:   r.Message.Inbound().MessageContext,
	}
	if r.Bid != nil {
		bid := r.Bid.Domain()
		notice.Bid = &bid
	}
	return notice
}

type rejectionResponse struct {
	RoundID wire.RoundID      `json:"roundId,omitempty"`
	Status  string            `json:"status"`
	Message *rejectionRequest `json:"message,omitempty"`
}

type classificationResponse struct {
	Intents         []intentPayload `json:"intents"`
	Entities        []entityPayload `json:"entities"`
	RoundID         wire.RoundID    `json:"roundId,omitempty"`
	EnvironmentUUID string          `json:"environmentUUID,omitempty"`
}

type intentPayload struct {
	Intent     string  `json:"intent"`
	Confidence float64 `json:"confidence"`
}

type entityPayload struct {
	Entity string   `json:"entity"`
	Value  string   `json:"value,omitempty"`
	Number *float64 `json:"number,omitempty"`
	Unit   string   `json:"unit,omitempty"`
}

func fromClassification(c domain.Classification, roundID, environmentID string) classificationResponse {
	out := classificationResponse{
		Intents:         make([]intentPayload, 0, len(c.Intents)),
		Entities:        make([]entityPayload, 0, len(c.Entities)),
		RoundID:         wire.RoundID(roundID),
		EnvironmentUUID: environmentID,
	}
	for _, intent := range c.Intents {
		out.Intents = append(out.Intents, intentPayload{Intent: intent.Label, Confidence: intent.Confidence})
	}
	for _, entity := range c.Entities {
		payload := entityPayload{Entity: string(entity.Kind), Value: entity.Value, Unit: entity.Unit}
		if entity.Kind == domain.EntityNumber || entity.Kind == domain.EntityCurrency {
			number := entity.Number
			payload.Number = &number
		}
		out.Entities = append(out.Entities, payload)
	}
	return out
}

type healthResponse struct {
	Status           string       `json:"status"`
	Agent            string       `json:"agent"`
	Polite           bool         `json:"polite"`
	UtilitySet       bool         `json:"utilitySet"`
	RoundID          wire.RoundID `json:"roundId,omitempty"`
	RoundActive      bool         `json:"roundActive"`
	RemainingSeconds float64      `json:"remainingSeconds"`
	Counterparties   int          `json:"counterparties"`
	Goods            []string     `json:"goods,omitempty"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func sortedGoods(profile domain.UtilityProfile) []string {
	goods := make([]string, 0, len(profile.UnitCosts))
	for good := range profile.UnitCosts {
		goods = append(goods, good)
	}
	sort.Strings(goods)
	return goods
}
