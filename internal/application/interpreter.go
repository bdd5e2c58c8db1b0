package application

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/bnema/haggle/internal/domain"
	"github.com/bnema/haggle/internal/ports"
)

const (
	DefaultCurrency = "USD"

	// Intents at or below this confidence are treated as not understood.
	minIntentConfidence = 0.2
)

// Interpreter turns a classifier result into a typed negotiation act.
type Interpreter struct {
	defaultCurrency string
	clock           ports.Clock
}

func NewInterpreter(defaultCurrency string, clock ports.Clock) *Interpreter {
	if strings.TrimSpace(defaultCurrency) == "" {
		defaultCurrency = DefaultCurrency
	}
	if clock == nil {
		clock = ports.SystemClock{}
	}

	return &Interpreter{defaultCurrency: defaultCurrency, clock: clock}
}

func (i *Interpreter) Interpret(c domain.Classification, in domain.MessageContext) domain.NegotiationAct {
	act := domain.NegotiationAct{
		Type:     domain.ActNotUnderstood,
		Quantity: domain.Quantity{},
		Metadata: domain.Metadata{
			Speaker:       in.Speaker,
			Addressee:     in.Addressee,
			Role:          in.Role,
			RoundID:       in.RoundID,
			EnvironmentID: in.EnvironmentID,
			Timestamp:     i.clock.Now(),
		},
	}
	if act.Metadata.Addressee == "" {
		act.Metadata.Addressee = firstAddressee(c.Entities)
	}

	top, ok := c.TopIntent()
	if !ok || top.Confidence <= minIntentConfidence {
		return act
	}

	switch top.Label {
	case domain.IntentOffer:
		quantity, price := i.extractOffer(c.Entities)
		act.Quantity = quantity
		act.Price = price
		act.Type = offerActType(in.Role, price != nil)
		if act.Type == domain.ActNotUnderstood {
			act.Price = nil
		}
	case domain.IntentAcceptOffer:
		act.Type = domain.ActAcceptOffer
	case domain.IntentRejectOffer:
		act.Type = domain.ActRejectOffer
	case domain.IntentInformation:
		act.Type = domain.ActInformation
	}

	return act
}

func offerActType(role domain.Role, priced bool) domain.ActType {
	switch {
	case role == domain.RoleBuyer && priced:
		return domain.ActBuyOffer
	case role == domain.RoleBuyer:
		return domain.ActBuyRequest
	case role == domain.RoleSeller && priced:
		return domain.ActSellOffer
	case role == domain.RoleSeller:
		return domain.ActSellRequest
	default:
		return domain.ActNotUnderstood
	}
}

// extractOffer pairs each number immediately followed by a good into the
// quantity, then reads the price from whatever entities were left unpaired.
func (i *Interpreter) extractOffer(entities []domain.Entity) (domain.Quantity, *domain.Price) {
	quantity := domain.Quantity{}
	remaining := make([]domain.Entity, 0, len(entities))

	for idx := 0; idx < len(entities); idx++ {
		entity := entities[idx]
		if entity.Kind == domain.EntityNumber && idx+1 < len(entities) && entities[idx+1].Kind == domain.EntityGood {
			quantity[entities[idx+1].Value] = decimal.NewFromFloat(entity.Number)
			idx++
			continue
		}
		remaining = append(remaining, entity)
	}

	return quantity, i.extractPrice(remaining)
}

func (i *Interpreter) extractPrice(entities []domain.Entity) *domain.Price {
	var currency, bare *domain.Price
	for _, entity := range entities {
		switch entity.Kind {
		case domain.EntityCurrency:
			unit := entity.Unit
			if unit == "" {
				unit = i.defaultCurrency
			}
			currency = &domain.Price{Value: decimal.NewFromFloat(entity.Number), Unit: unit}
		case domain.EntityNumber:
			if bare == nil {
				bare = &domain.Price{Value: decimal.NewFromFloat(entity.Number), Unit: i.defaultCurrency}
			}
		}
	}

	if currency != nil {
		return currency
	}
	return bare
}

func firstAddressee(entities []domain.Entity) string {
	for _, entity := range entities {
		if entity.Kind == domain.EntityAddressee {
			return entity.Value
		}
	}
	return ""
}
