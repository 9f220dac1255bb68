// Package companies holds the canonical company/goods domain model shared by
// the sheet importer, the pricing engine and the exporters, plus its sqlite
// persistence.
package companies

import (
	"fmt"
	"strings"
)

// Good is one SKU offered by one company at a guild-negotiated price.
//
// All currency fields are whole currency units. GuildMax and GuildMin use 0
// as the "unbounded" sentinel, never as a real bound. GuildeesPay is derived
// by the pricing engine and is never authoritative input.
type Good struct {
	ProducedGood      string  `json:"produced_good"`
	PlanetProduced    string  `json:"planet_produced"`
	GuildeesPay       float64 `json:"guildees_pay"`
	LiveExchangePrice int64   `json:"live_exc_price"`
	LiveAveragePrice  int64   `json:"live_avg_price"`
	GuildMax          int64   `json:"guild_max"`
	GuildMin          int64   `json:"guild_min"`
	DiscountPercent   int64   `json:"discount_percent"`
	DiscountFixed     int64   `json:"discount_fixed"` // Advisory only, not priced
}

// Company groups the goods one player company offers.
type Company struct {
	Name        string   `json:"name"`
	Industry    string   `json:"industry"`
	Professions []string `json:"professions"`
	Timezone    string   `json:"timezone"` // "UTC +01:00" style offset label
	Goods       []Good   `json:"goods"`
}

// EffectiveProfessions returns the profession list, falling back to the
// single industry label when no professions were parsed.
func (c *Company) EffectiveProfessions() []string {
	if len(c.Professions) > 0 {
		return c.Professions
	}
	if c.Industry != "" {
		return []string{c.Industry}
	}
	return nil
}

// Dataset is the full ordered company list. The version tracker treats it as
// a single versioned aggregate, not per-company.
type Dataset []Company

// ValidationError reports an invalid goods list for one company. It is
// surfaced to the caller before any persist, never silently fixed.
type ValidationError struct {
	Company string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Company, e.Message)
}

// Validate checks the company invariant: within one company, produced good
// names form a set (no duplicates, no empties).
func (c *Company) Validate() error {
	seen := make(map[string]bool, len(c.Goods))
	var duplicates []string

	for _, g := range c.Goods {
		if strings.TrimSpace(g.ProducedGood) == "" {
			return &ValidationError{
				Company: c.Name,
				Message: "all produced goods fields must be filled",
			}
		}
		if seen[g.ProducedGood] {
			duplicates = append(duplicates, g.ProducedGood)
		}
		seen[g.ProducedGood] = true
	}

	if len(duplicates) > 0 {
		return &ValidationError{
			Company: c.Name,
			Message: fmt.Sprintf("duplicate goods found: %s", strings.Join(duplicates, ", ")),
		}
	}

	return nil
}

// Validate checks every company in the dataset, returning the first failure.
func (d Dataset) Validate() error {
	for i := range d {
		if err := d[i].Validate(); err != nil {
			return err
		}
	}
	return nil
}

// FindByName returns the company with the exact (case-sensitive) name,
// or nil if absent.
func (d Dataset) FindByName(name string) *Company {
	for i := range d {
		if d[i].Name == name {
			return &d[i]
		}
	}
	return nil
}

// GoodNames returns the sorted-input-order set of distinct good names across
// the dataset. Empty names are excluded.
func (d Dataset) GoodNames() []string {
	seen := make(map[string]bool)
	var names []string
	for _, c := range d {
		for _, g := range c.Goods {
			if g.ProducedGood == "" || seen[g.ProducedGood] {
				continue
			}
			seen[g.ProducedGood] = true
			names = append(names, g.ProducedGood)
		}
	}
	return names
}
