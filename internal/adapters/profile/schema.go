package profile

import (
	"fmt"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/bnema/haggle/internal/domain"
)

const currentSchemaVersion = 1

type fileSchema struct {
	Version      int                   `toml:"version" yaml:"version"`
	Name         string                `toml:"name,omitempty" yaml:"name,omitempty"`
	CurrencyUnit string                `toml:"currency_unit" yaml:"currency_unit"`
	Goods        map[string]goodSchema `toml:"goods" yaml:"goods"`
}

type goodSchema struct {
	UnitCost float64 `toml:"unit_cost" yaml:"unit_cost"`
}

func (s *fileSchema) applyDefaults() {
	if s.Version == 0 {
		s.Version = currentSchemaVersion
	}
}

func (s fileSchema) validateVersion() error {
	if s.Version > currentSchemaVersion {
		return fmt.Errorf("unsupported profile schema version %d (current %d)", s.Version, currentSchemaVersion)
	}

	return nil
}

func toSchema(profile domain.UtilityProfile) fileSchema {
	goods := make(map[string]goodSchema, len(profile.UnitCosts))
	for good, cost := range profile.UnitCosts {
		goods[good] = goodSchema{UnitCost: cost.InexactFloat64()}
	}

	return fileSchema{
		Version:      currentSchemaVersion,
		Name:         profile.Name,
		CurrencyUnit: profile.CurrencyUnit,
		Goods:        goods,
	}
}

func fromSchema(file fileSchema) domain.UtilityProfile {
	costs := make(map[string]decimal.Decimal, len(file.Goods))
	for good, entry := range file.Goods {
		costs[good] = decimal.NewFromFloat(entry.UnitCost)
	}

	return domain.UtilityProfile{
		Name:         file.Name,
		CurrencyUnit: file.CurrencyUnit,
		UnitCosts:    costs,
	}
}

// Sample is the bakery profile written by `profile init`.
func Sample() domain.UtilityProfile {
	costs := map[string]string{
		"blueberry": "0.75",
		"chocolate": "0.5",
		"egg":       "0.25",
		"flour":     "0.1",
		"milk":      "0.15",
		"sugar":     "0.08",
		"vanilla":   "0.3",
	}

	profile := domain.UtilityProfile{CurrencyUnit: "USD", UnitCosts: make(map[string]decimal.Decimal, len(costs))}
	for good, cost := range costs {
		profile.UnitCosts[good] = decimal.RequireFromString(cost)
	}
	return profile
}

// Goods lists the profile goods in lexical order.
func Goods(profile domain.UtilityProfile) []string {
	goods := make([]string, 0, len(profile.UnitCosts))
	for good := range profile.UnitCosts {
		goods = append(goods, good)
	}
	sort.Strings(goods)
	return goods
}
