// Package wire holds the JSON shapes exchanged with the environment
// orchestrator and HTTP callers.
package wire

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/bnema/haggle/internal/domain"
)

// RoundID decodes from either a JSON number or a string and encodes integer
// ids back as numbers.
type RoundID string

func (r RoundID) MarshalJSON() ([]byte, error) {
	if r == "" {
		return []byte("null"), nil
	}
	if n, err := strconv.ParseInt(string(r), 10, 64); err == nil && strconv.FormatInt(n, 10) == string(r) {
		return []byte(r), nil
	}
	return json.Marshal(string(r))
}

func (r *RoundID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*r = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var text string
		if err := json.Unmarshal(data, &text); err != nil {
			return err
		}
		*r = RoundID(strings.TrimSpace(text))
		return nil
	}

	var number json.Number
	if err := json.Unmarshal(data, &number); err != nil {
		return fmt.Errorf("round id must be a number or string: %w", err)
	}
	*r = RoundID(number.String())
	return nil
}

type Price struct {
	Value float64 `json:"value"`
	Unit  string  `json:"unit,omitempty"`
}

type Bid struct {
	Type     string             `json:"type"`
	Price    *Price             `json:"price,omitempty"`
	Quantity map[string]float64 `json:"quantity,omitempty"`
}

// Message is the envelope used for inbound, outbound and rejected messages.
type Message struct {
	ID              string     `json:"id,omitempty"`
	Text            string     `json:"text"`
	Speaker         string     `json:"speaker,omitempty"`
	Addressee       string     `json:"addressee,omitempty"`
	Role            string     `json:"role,omitempty"`
	RoundID         RoundID    `json:"roundId,omitempty"`
	EnvironmentUUID string     `json:"environmentUUID,omitempty"`
	TimeStamp       *time.Time `json:"timeStamp,omitempty"`
	Bid             *Bid       `json:"bid,omitempty"`
}

func FromOutbound(msg domain.OutboundMessage) Message {
	out := Message{
		ID:              msg.ID,
		Text:            msg.Text,
		Speaker:         msg.Speaker,
		Addressee:       msg.Addressee,
		Role:            string(msg.Role),
		RoundID:         RoundID(msg.RoundID),
		EnvironmentUUID: msg.EnvironmentID,
	}
	if !msg.Timestamp.IsZero() {
		stamp := msg.Timestamp.UTC()
		out.TimeStamp = &stamp
	}
	if msg.Bid != nil {
		bid := FromBid(*msg.Bid)
		out.Bid = &bid
	}
	return out
}

// Inbound converts the envelope into a domain message. Role and addressee are
// passed through untouched; defaults are the service's concern.
func (m Message) Inbound() domain.InboundMessage {
	return domain.InboundMessage{
		Text: m.Text,
		MessageContext: domain.MessageContext{
			Speaker:       m.Speaker,
			Addressee:     m.Addressee,
			Role:          domain.Role(strings.ToLower(m.Role)),
			RoundID:       string(m.RoundID),
			EnvironmentID: m.EnvironmentUUID,
		},
	}
}

func FromBid(bid domain.Bid) Bid {
	return Bid{
		Type:     string(bid.Type),
		Price:    fromPrice(bid.Price),
		Quantity: fromQuantity(bid.Quantity),
	}
}

// Domain converts a wire bid back. Unknown types are kept as given.
func (b Bid) Domain() domain.Bid {
	bid := domain.Bid{
		Type:     domain.BidType(b.Type),
		Quantity: make(domain.Quantity, len(b.Quantity)),
	}
	for good, amount := range b.Quantity {
		bid.Quantity[good] = decimal.NewFromFloat(amount)
	}
	if b.Price != nil {
		bid.Price = &domain.Price{Value: decimal.NewFromFloat(b.Price.Value), Unit: b.Price.Unit}
	}
	return bid
}

// Act is the structured reading of a message returned by /extractBid.
type Act struct {
	Type     string             `json:"type"`
	Price    *Price             `json:"price,omitempty"`
	Quantity map[string]float64 `json:"quantity"`
	RoundID  RoundID            `json:"roundId,omitempty"`
}

func FromAct(act domain.NegotiationAct, roundID string) Act {
	return Act{
		Type:     string(act.Type),
		Price:    fromPrice(act.Price),
		Quantity: fromQuantity(act.Quantity),
		RoundID:  RoundID(roundID),
	}
}

func fromPrice(price *domain.Price) *Price {
	if price == nil {
		return nil
	}
	return &Price{Value: price.Value.InexactFloat64(), Unit: price.Unit}
}

func fromQuantity(quantity domain.Quantity) map[string]float64 {
	out := make(map[string]float64, len(quantity))
	for good, amount := range quantity {
		out[good] = amount.InexactFloat64()
	}
	return out
}
