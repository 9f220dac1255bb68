package pricing

import "github.com/titguild/guildboard/internal/modules/companies"

// Quote is one live market quote in whole currency units. Conversion from
// the exchange's cent-denominated wire format happens in the API client,
// never here.
type Quote struct {
	CurrentPrice int64
	AveragePrice int64
}

// QuoteTable maps a produced-good name to its live quote. It is read-only
// input: reconciliation never mutates it.
type QuoteTable map[string]Quote

// ReconcileGoods merges live quotes into a goods list and reprices it.
//
// Goods present in the quote table get their live exchange/average prices
// overwritten; goods absent from the table keep their stored quotes (no
// implicit zeroing). Every good's GuildeesPay is then recomputed from its
// (possibly stored) live price, so the operation is pure and idempotent:
// reconciling twice with the same table equals reconciling once.
func ReconcileGoods(goods []companies.Good, quotes QuoteTable) []companies.Good {
	out := make([]companies.Good, len(goods))
	for i, g := range goods {
		if q, ok := quotes[g.ProducedGood]; ok {
			g.LiveExchangePrice = q.CurrentPrice
			g.LiveAveragePrice = q.AveragePrice
		}
		g.GuildeesPay = ComputePrice(g.LiveExchangePrice, g.DiscountPercent, g.GuildMin, g.GuildMax)
		out[i] = g
	}
	return out
}

// ReconcileDataset applies ReconcileGoods to every company, returning a new
// dataset. Callers decide when (and whether) to persist the result.
func ReconcileDataset(ds companies.Dataset, quotes QuoteTable) companies.Dataset {
	out := make(companies.Dataset, len(ds))
	for i, c := range ds {
		c.Goods = ReconcileGoods(c.Goods, quotes)
		out[i] = c
	}
	return out
}
