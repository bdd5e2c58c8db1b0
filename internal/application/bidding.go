package application

import (
	"fmt"
	"math"
	"time"

	"github.com/shopspring/decimal"

	"github.com/bnema/haggle/internal/domain"
	"github.com/bnema/haggle/internal/ports"
)

const (
	acceptMarkupRatio = 1.8
	rejectMarkupRatio = -0.5
	minMarkupFloor    = 0.15
	markupDamping     = 1.2

	// The counteroffer ceiling decays linearly from startMaxMarkup at round
	// start to startMaxMarkup-maxMarkupDecay at round end.
	startMaxMarkup = 1.8
	maxMarkupDecay = 1.3

	// Opening asks draw a markup in [openingMarkupBase, openingMarkupBase+1).
	openingMarkupBase = 1.8

	priceDecimals = 2
)

// minDicker is the smallest price delta that is not considered practically equal.
var minDicker = decimal.RequireFromString("0.10")

// TimeBudget is how much of the round is left when a decision is made.
type TimeBudget struct {
	Remaining time.Duration
	Duration  time.Duration
}

func (b TimeBudget) elapsedFraction() float64 {
	duration := b.Duration
	if duration <= 0 {
		duration = domain.DefaultRoundDuration
	}
	return 1 - b.Remaining.Seconds()/duration.Seconds()
}

type BidEngine struct {
	rand ports.Random
}

func NewBidEngine(random ports.Random) *BidEngine {
	if random == nil {
		random = ports.NewRandom(0)
	}
	return &BidEngine{rand: random}
}

// Decide answers a buyer offer with an accept, a reject or a counteroffer.
// priorOffers are the acts this agent authored towards the buyer; only the
// most recent SellOffer among them matters.
func (e *BidEngine) Decide(offer domain.NegotiationAct, priorOffers []domain.NegotiationAct, profile domain.UtilityProfile, budget TimeBudget) (domain.Bid, error) {
	bundle := offer.Bundle()
	utility, err := domain.SellerUtility(profile, bundle)
	if err != nil {
		return domain.Bid{}, fmt.Errorf("compute seller utility: %w", err)
	}
	cost, err := profile.BundleCost(bundle.Quantity)
	if err != nil {
		return domain.Bid{}, fmt.Errorf("compute bundle cost: %w", err)
	}

	bid := domain.Bid{Quantity: offer.Quantity.Clone()}

	if !offer.Price.Proposed() {
		markup := openingMarkupBase + e.rand.Float64()
		bid.Type = domain.BidSellOffer
		bid.Price = &domain.Price{
			Value: domain.QuantizeFloat(markup*cost.InexactFloat64(), priceDecimals),
			Unit:  profile.CurrencyUnit,
		}
		return bid, nil
	}

	lastSellPrice := lastSellOfferPrice(priorOffers)
	offerValue := offer.Price.Value
	// Division follows IEEE semantics: a zero-cost bundle with a positive
	// price is an infinite markup and is accepted.
	markupRatio := utility.InexactFloat64() / cost.InexactFloat64()

	switch {
	case markupRatio > acceptMarkupRatio || (lastSellPrice != nil && offerValue.Sub(*lastSellPrice).Abs().LessThan(minDicker)):
		bid.Type = domain.BidAccept
		bid.Price = offer.Price.Clone()
	case markupRatio < rejectMarkupRatio:
		bid.Type = domain.BidReject
	default:
		sellPrice := e.generateSellPrice(cost, *offer.Price, lastSellPrice, budget)
		if sellPrice.Value.LessThan(offerValue.Add(minDicker)) {
			bid.Type = domain.BidAccept
			bid.Price = offer.Price.Clone()
			break
		}
		bid.Type = domain.BidSellOffer
		bid.Price = &sellPrice
	}

	return bid, nil
}

// generateSellPrice picks a counteroffer between the buyer's markup and our
// ceiling. The ceiling is our last asking price, or a markup that decays as
// the round runs out.
func (e *BidEngine) generateSellPrice(cost decimal.Decimal, offerPrice domain.Price, lastSellPrice *decimal.Decimal, budget TimeBudget) domain.Price {
	bundleCost := cost.InexactFloat64()
	markupRatio := offerPrice.Value.InexactFloat64()/bundleCost - 1

	var maxMarkupRatio float64
	if lastSellPrice != nil {
		maxMarkupRatio = lastSellPrice.InexactFloat64()/bundleCost - 1
	} else {
		maxMarkupRatio = startMaxMarkup - maxMarkupDecay*budget.elapsedFraction()
	}
	minMarkupRatio := math.Max(markupRatio, minMarkupFloor)

	newMarkupRatio := minMarkupRatio + e.rand.Float64()*(maxMarkupRatio-minMarkupRatio)/markupDamping

	return domain.Price{
		Value: domain.QuantizeFloat((1+newMarkupRatio)*bundleCost, priceDecimals),
		Unit:  offerPrice.Unit,
	}
}

func lastSellOfferPrice(acts []domain.NegotiationAct) *decimal.Decimal {
	for i := len(acts) - 1; i >= 0; i-- {
		if acts[i].Type == domain.ActSellOffer && acts[i].Price != nil {
			value := acts[i].Price.Value
			return &value
		}
	}
	return nil
}
