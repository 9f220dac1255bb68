// Package export renders the fully-priced dataset into the public JSON
// documents third-party consumers read.
package export

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/rs/zerolog"

	"github.com/titguild/guildboard/internal/modules/companies"
)

// Listing is one company's offer for one good, flattened for consumers.
type Listing struct {
	Company         string   `json:"company"`
	Good            string   `json:"good"`
	PlanetProduced  string   `json:"planet_produced"`
	GuildeesPay     float64  `json:"guildees_pay"`
	LiveExcPrice    int64    `json:"live_exc_price"`
	LiveAvgPrice    int64    `json:"live_avg_price"`
	GuildMax        int64    `json:"guild_max"`
	GuildMin        int64    `json:"guild_min"`
	DiscountPercent int64    `json:"discount_percent"`
	DiscountFixed   int64    `json:"discount_fixed"`
	Timezone        string   `json:"timezone"`
	Professions     []string `json:"professions"`
}

// GoodEntry groups every listing for one good, cheapest first.
type GoodEntry struct {
	Good            string    `json:"good"`
	CheapestPrice   float64   `json:"cheapest_price"`
	CheapestCompany string    `json:"cheapest_company"`
	CheapestPlanet  string    `json:"cheapest_planet"`
	ListingsCount   int       `json:"listings_count"`
	Listings        []Listing `json:"listings"`
}

// GoodsDocument is the all_goods.json envelope.
type GoodsDocument struct {
	Status      string      `json:"status"`
	LastUpdated string      `json:"last_updated"`
	GoodsCount  int         `json:"goods_count"`
	Data        []GoodEntry `json:"data"`
}

// CompanyGoods is one good inside a company entry.
type CompanyGoods struct {
	Good            string  `json:"good"`
	PlanetProduced  string  `json:"planet_produced"`
	GuildeesPay     float64 `json:"guildees_pay"`
	LiveExcPrice    int64   `json:"live_exc_price"`
	LiveAvgPrice    int64   `json:"live_avg_price"`
	GuildMax        int64   `json:"guild_max"`
	GuildMin        int64   `json:"guild_min"`
	DiscountPercent int64   `json:"discount_percent"`
	DiscountFixed   int64   `json:"discount_fixed"`
}

// CompanyEntry is one company in all_companies.json.
type CompanyEntry struct {
	Company struct {
		Name        string         `json:"name"`
		Industry    string         `json:"industry"`
		Professions []string       `json:"professions"`
		Timezone    string         `json:"timezone"`
		LocalTime   string         `json:"local_time"`
		GoodsCount  int            `json:"goods_count"`
		Goods       []CompanyGoods `json:"goods"`
	} `json:"company"`
}

// CompaniesDocument is the all_companies.json envelope.
type CompaniesDocument struct {
	Status         string         `json:"status"`
	LastUpdated    string         `json:"last_updated"`
	CompaniesCount int            `json:"companies_count"`
	Data           []CompanyEntry `json:"data"`
}

// BuildGoodsDocument groups listings by good name, sorts each good's
// listings by price and the goods by name.
func BuildGoodsDocument(ds companies.Dataset, now time.Time) GoodsDocument {
	byGood := make(map[string][]Listing)
	for _, c := range ds {
		for _, g := range c.Goods {
			if g.ProducedGood == "" {
				continue
			}
			byGood[g.ProducedGood] = append(byGood[g.ProducedGood], Listing{
				Company:         c.Name,
				Good:            g.ProducedGood,
				PlanetProduced:  g.PlanetProduced,
				GuildeesPay:     g.GuildeesPay,
				LiveExcPrice:    g.LiveExchangePrice,
				LiveAvgPrice:    g.LiveAveragePrice,
				GuildMax:        g.GuildMax,
				GuildMin:        g.GuildMin,
				DiscountPercent: g.DiscountPercent,
				DiscountFixed:   g.DiscountFixed,
				Timezone:        c.Timezone,
				Professions:     c.EffectiveProfessions(),
			})
		}
	}

	names := make([]string, 0, len(byGood))
	for name := range byGood {
		names = append(names, name)
	}
	sort.Strings(names)

	entries := make([]GoodEntry, 0, len(names))
	for _, name := range names {
		listings := byGood[name]
		sort.SliceStable(listings, func(i, j int) bool {
			return listings[i].GuildeesPay < listings[j].GuildeesPay
		})

		entries = append(entries, GoodEntry{
			Good:            name,
			CheapestPrice:   listings[0].GuildeesPay,
			CheapestCompany: listings[0].Company,
			CheapestPlanet:  listings[0].PlanetProduced,
			ListingsCount:   len(listings),
			Listings:        listings,
		})
	}

	return GoodsDocument{
		Status:      "success",
		LastUpdated: now.Format(time.RFC3339),
		GoodsCount:  len(entries),
		Data:        entries,
	}
}

// BuildCompaniesDocument renders the per-company view, companies sorted by
// name and each company's goods sorted by name. Companies without goods are
// excluded.
func BuildCompaniesDocument(ds companies.Dataset, now time.Time) CompaniesDocument {
	entries := make([]CompanyEntry, 0, len(ds))
	for _, c := range ds {
		if len(c.Goods) == 0 {
			continue
		}

		goods := make([]CompanyGoods, 0, len(c.Goods))
		for _, g := range c.Goods {
			goods = append(goods, CompanyGoods{
				Good:            g.ProducedGood,
				PlanetProduced:  g.PlanetProduced,
				GuildeesPay:     g.GuildeesPay,
				LiveExcPrice:    g.LiveExchangePrice,
				LiveAvgPrice:    g.LiveAveragePrice,
				GuildMax:        g.GuildMax,
				GuildMin:        g.GuildMin,
				DiscountPercent: g.DiscountPercent,
				DiscountFixed:   g.DiscountFixed,
			})
		}
		sort.SliceStable(goods, func(i, j int) bool { return goods[i].Good < goods[j].Good })

		var entry CompanyEntry
		entry.Company.Name = c.Name
		entry.Company.Industry = c.Industry
		entry.Company.Professions = c.EffectiveProfessions()
		entry.Company.Timezone = c.Timezone
		entry.Company.LocalTime = companies.LocalTimeAt(c.Timezone, now)
		entry.Company.GoodsCount = len(goods)
		entry.Company.Goods = goods
		entries = append(entries, entry)
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Company.Name < entries[j].Company.Name
	})

	return CompaniesDocument{
		Status:         "success",
		LastUpdated:    now.Format(time.RFC3339),
		CompaniesCount: len(entries),
		Data:           entries,
	}
}

// Exporter writes the JSON documents to the export directory.
type Exporter struct {
	dir string
	log zerolog.Logger
}

// NewExporter creates an exporter rooted at the given directory.
func NewExporter(dir string, log zerolog.Logger) *Exporter {
	return &Exporter{
		dir: dir,
		log: log.With().Str("component", "exporter").Logger(),
	}
}

// Dir returns the export directory.
func (e *Exporter) Dir() string {
	return e.dir
}

// Write renders both documents for the dataset and writes them to disk.
// Returns the written file paths.
func (e *Exporter) Write(ds companies.Dataset, now time.Time) ([]string, error) {
	if err := os.MkdirAll(e.dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create export directory: %w", err)
	}

	goodsPath := filepath.Join(e.dir, "all_goods.json")
	if err := writeJSON(goodsPath, BuildGoodsDocument(ds, now)); err != nil {
		return nil, err
	}

	companiesPath := filepath.Join(e.dir, "all_companies.json")
	if err := writeJSON(companiesPath, BuildCompaniesDocument(ds, now)); err != nil {
		return nil, err
	}

	e.log.Info().
		Int("companies", len(ds)).
		Str("dir", e.dir).
		Msg("Exports written")

	return []string{goodsPath, companiesPath}, nil
}

func writeJSON(path string, doc interface{}) error {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", filepath.Base(path), err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}
