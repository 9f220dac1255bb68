package testing

import (
	"github.com/titguild/guildboard/internal/modules/companies"
	"github.com/titguild/guildboard/internal/modules/pricing"
)

// NewDatasetFixture returns a small but representative dataset: two
// companies, mixed bound usage, one company relying on the industry
// fallback for professions.
func NewDatasetFixture() companies.Dataset {
	return companies.Dataset{
		{
			Name:        "Acme Mining",
			Industry:    "Mining",
			Professions: []string{"Mining", "Hauling"},
			Timezone:    "UTC +02:00",
			Goods: []companies.Good{
				{
					ProducedGood:      "Iron Ore",
					PlanetProduced:    "Mars",
					GuildeesPay:       90,
					LiveExchangePrice: 100,
					LiveAveragePrice:  102,
					DiscountPercent:   10,
				},
				{
					ProducedGood:      "Copper Wire",
					PlanetProduced:    "Venus",
					GuildeesPay:       160,
					LiveExchangePrice: 200,
					LiveAveragePrice:  195,
					GuildMax:          180,
					DiscountPercent:   20,
				},
			},
		},
		{
			Name:     "Star Haulers",
			Industry: "Hauling",
			Timezone: "UTC -05:00",
			Goods: []companies.Good{
				{
					ProducedGood:      "Fuel Cells",
					GuildeesPay:       40,
					LiveExchangePrice: 50,
					LiveAveragePrice:  48,
					GuildMin:          30,
					DiscountPercent:   20,
				},
			},
		},
	}
}

// NewQuoteTableFixture returns live quotes covering most (not all) of the
// fixture dataset's goods, so reconcile tests exercise the missing-quote
// path too.
func NewQuoteTableFixture() pricing.QuoteTable {
	return pricing.QuoteTable{
		"Iron Ore":    {CurrentPrice: 110, AveragePrice: 108},
		"Copper Wire": {CurrentPrice: 210, AveragePrice: 205},
	}
}
