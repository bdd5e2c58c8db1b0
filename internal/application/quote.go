package application

import (
	"fmt"
	"math"

	"github.com/shopspring/decimal"

	"github.com/bnema/haggle/internal/domain"
	"github.com/bnema/haggle/internal/ports"
)

// QuoteRequest describes a hypothetical buyer offer evaluated outside a round.
type QuoteRequest struct {
	Profile   domain.UtilityProfile
	Buyer     string
	Quantity  domain.Quantity
	Price     *domain.Price
	LastAsk   *decimal.Decimal
	Budget    TimeBudget
	AgentID   string
	Confirmed bool
}

// Quote is a decision together with the numbers that produced it.
type Quote struct {
	Offer   domain.NegotiationAct
	Bid     domain.Bid
	Cost    decimal.Decimal
	Utility decimal.Decimal
	// Markup is utility over cost; NaN when the offer carries no price.
	Markup float64
	Budget TimeBudget
	Text   string
}

// Priced reports whether the quote answered an offer with a price.
func (q Quote) Priced() bool {
	return q.Offer.Price.Proposed()
}

type Quoter struct {
	bids     *BidEngine
	renderer ports.Renderer
}

func NewQuoter(bids *BidEngine, renderer ports.Renderer) *Quoter {
	return &Quoter{bids: bids, renderer: renderer}
}

func (q *Quoter) Quote(req QuoteRequest) (Quote, error) {
	if err := req.Profile.Validate(); err != nil {
		return Quote{}, fmt.Errorf("%w: %w", domain.ErrMalformedInput, err)
	}
	if len(req.Quantity) == 0 {
		return Quote{}, fmt.Errorf("%w: at least one good is required", domain.ErrMalformedInput)
	}

	agentID := req.AgentID
	if agentID == "" {
		agentID = DefaultAgentID
	}
	buyer := req.Buyer
	if buyer == "" {
		buyer = "buyer"
	}

	offer := domain.NegotiationAct{
		Type:     domain.ActBuyRequest,
		Quantity: req.Quantity.Clone(),
		Price:    req.Price.Clone(),
		Metadata: domain.Metadata{Speaker: buyer, Addressee: agentID, Role: domain.RoleBuyer},
	}
	if offer.Price != nil {
		offer.Type = domain.ActBuyOffer
	}

	var prior []domain.NegotiationAct
	if req.LastAsk != nil {
		prior = append(prior, domain.NegotiationAct{
			Type:     domain.ActSellOffer,
			Quantity: req.Quantity.Clone(),
			Price:    &domain.Price{Value: *req.LastAsk, Unit: req.Profile.CurrencyUnit},
			Metadata: domain.Metadata{Speaker: agentID, Addressee: buyer, Role: domain.RoleSeller},
		})
	}

	cost, err := req.Profile.BundleCost(offer.Quantity)
	if err != nil {
		return Quote{}, fmt.Errorf("compute bundle cost: %w", err)
	}
	utility, err := domain.SellerUtility(req.Profile, offer.Bundle())
	if err != nil {
		return Quote{}, fmt.Errorf("compute seller utility: %w", err)
	}

	bid, err := q.bids.Decide(offer, prior, req.Profile, req.Budget)
	if err != nil {
		return Quote{}, fmt.Errorf("decide bid: %w", err)
	}

	markup := math.NaN()
	if offer.Price.Proposed() {
		markup = utility.InexactFloat64() / cost.InexactFloat64()
	}

	return Quote{
		Offer:   offer,
		Bid:     bid,
		Cost:    cost,
		Utility: utility,
		Markup:  markup,
		Budget:  req.Budget,
		Text:    q.renderer.Render(bid, req.Confirmed),
	}, nil
}

// RemainingFraction is the share of the round still left, clamped to [0, 1].
func (b TimeBudget) RemainingFraction() float64 {
	return math.Min(1, math.Max(0, 1-b.elapsedFraction()))
}
