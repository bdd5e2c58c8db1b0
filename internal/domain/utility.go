package domain

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// UtilityProfile is the seller's cost model for one round.
type UtilityProfile struct {
	Name         string
	CurrencyUnit string
	UnitCosts    map[string]decimal.Decimal
}

func (p UtilityProfile) Validate() error {
	if strings.TrimSpace(p.CurrencyUnit) == "" {
		return fmt.Errorf("currency unit is required")
	}
	if len(p.UnitCosts) == 0 {
		return fmt.Errorf("at least one unit cost is required")
	}
	for good, cost := range p.UnitCosts {
		if strings.TrimSpace(good) == "" {
			return fmt.Errorf("good name is required")
		}
		if cost.IsNegative() {
			return fmt.Errorf("unit cost for %q must not be negative", good)
		}
	}
	return nil
}

// BundleCost sums unit cost times amount over the goods in quantity.
func (p UtilityProfile) BundleCost(quantity Quantity) (decimal.Decimal, error) {
	total := decimal.Zero
	for _, good := range quantity.Goods() {
		cost, ok := p.UnitCosts[good]
		if !ok {
			return decimal.Zero, fmt.Errorf("%w: %q", ErrUnknownGood, good)
		}
		total = total.Add(cost.Mul(quantity[good]))
	}
	return total, nil
}

// SellerUtility is the bundle price minus its cost. An absent price counts as
// zero, so the result is the negated bundle cost.
func SellerUtility(profile UtilityProfile, bundle Bundle) (decimal.Decimal, error) {
	cost, err := profile.BundleCost(bundle.Quantity)
	if err != nil {
		return decimal.Zero, err
	}

	price := decimal.Zero
	if bundle.Price != nil {
		price = bundle.Price.Value
	}
	return price.Sub(cost), nil
}
