// Package stats derives the headline numbers shown above the price board.
package stats

import (
	"sort"

	"gonum.org/v1/gonum/stat"

	"github.com/titguild/guildboard/internal/modules/companies"
)

// Summary bundles the board-level statistics for one dataset view.
type Summary struct {
	Companies        int     `json:"companies"`
	UniqueGoods      int     `json:"unique_goods"`
	UniqueProfession int     `json:"unique_professions"`
	AverageDiscount  float64 `json:"average_discount"`
}

// UniqueGoodsCount counts distinct non-empty good names across the dataset.
func UniqueGoodsCount(ds companies.Dataset) int {
	seen := make(map[string]bool)
	for _, c := range ds {
		for _, g := range c.Goods {
			if g.ProducedGood != "" {
				seen[g.ProducedGood] = true
			}
		}
	}
	return len(seen)
}

// AverageDiscount returns the mean percent discount across every listing,
// or 0 for an empty dataset.
func AverageDiscount(ds companies.Dataset) float64 {
	var discounts []float64
	for _, c := range ds {
		for _, g := range c.Goods {
			discounts = append(discounts, float64(g.DiscountPercent))
		}
	}
	if len(discounts) == 0 {
		return 0
	}
	return stat.Mean(discounts, nil)
}

// UniqueProfessions returns the sorted set of professions used across the
// dataset, including industry fallbacks.
func UniqueProfessions(ds companies.Dataset) []string {
	seen := make(map[string]bool)
	for _, c := range ds {
		for _, p := range c.EffectiveProfessions() {
			if p != "" {
				seen[p] = true
			}
		}
	}

	out := make([]string, 0, len(seen))
	for p := range seen {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}

// Summarize computes the full stats row for a dataset view.
func Summarize(ds companies.Dataset) Summary {
	return Summary{
		Companies:        len(ds),
		UniqueGoods:      UniqueGoodsCount(ds),
		UniqueProfession: len(UniqueProfessions(ds)),
		AverageDiscount:  AverageDiscount(ds),
	}
}
