package services

import (
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/titguild/guildboard/internal/modules/companies"
	"github.com/titguild/guildboard/internal/modules/export"
	"github.com/titguild/guildboard/internal/modules/pricing"
	"github.com/titguild/guildboard/internal/modules/sheets"
	"github.com/titguild/guildboard/internal/modules/snapshot"
	guildtest "github.com/titguild/guildboard/internal/testing"
)

func testGrid() [][]string {
	header := make([]string, 21)
	header[0] = "Company Name"

	row := make([]string, 21)
	row[0] = "Acme Mining"
	row[1] = "Mining"
	row[2] = "UTC +02:00"
	row[12] = "Iron Ore"
	row[13] = "Mars"
	row[14] = "0"
	row[19] = "10"

	return [][]string{header, row}
}

func newTestRefreshService(t *testing.T, grids *guildtest.MockGridFetcher, quotes *guildtest.MockQuoteFetcher, sheetURL string) (*RefreshService, *DatasetService, func()) {
	t.Helper()

	db, cleanup := guildtest.NewTestDB(t, "refresh_service")
	repo := companies.NewRepository(db.Conn(), zerolog.Nop())
	require.NoError(t, repo.InitSchema())
	archive := snapshot.NewArchive(db.Conn(), zerolog.Nop())
	require.NoError(t, archive.InitSchema())

	datasets := NewDatasetService(repo, archive, zerolog.Nop())
	require.NoError(t, datasets.Init())

	exporter := export.NewExporter(t.TempDir(), zerolog.Nop())
	publisher := export.NewPublisher("", "main", "", 0, zerolog.Nop())
	parser := sheets.NewParser(sheets.DefaultLayout(), zerolog.Nop())

	svc := NewRefreshService(datasets, grids, parser, quotes, exporter, publisher, sheetURL, zerolog.Nop())
	return svc, datasets, cleanup
}

func TestRefreshFromSheet(t *testing.T) {
	grids := &guildtest.MockGridFetcher{Grid: testGrid()}
	quotes := &guildtest.MockQuoteFetcher{Quotes: pricing.QuoteTable{
		"Iron Ore": {CurrentPrice: 100, AveragePrice: 98},
	}}

	svc, datasets, cleanup := newTestRefreshService(t, grids, quotes, "https://docs.google.com/spreadsheets/d/abc/edit")
	defer cleanup()

	report, err := svc.RefreshFromSheet()
	require.NoError(t, err)
	require.NotNil(t, report)
	assert.Equal(t, 1, report.Companies)
	assert.Equal(t, 1, report.Listings)

	// The import is followed by a reprice against the live quotes.
	ds := datasets.Current()
	require.Len(t, ds, 1)
	require.Len(t, ds[0].Goods, 1)
	assert.Equal(t, int64(100), ds[0].Goods[0].LiveExchangePrice)
	assert.Equal(t, float64(90), ds[0].Goods[0].GuildeesPay)
}

func TestRefreshFromSheetWithoutURL(t *testing.T) {
	grids := &guildtest.MockGridFetcher{Grid: testGrid()}
	quotes := &guildtest.MockQuoteFetcher{Quotes: pricing.QuoteTable{}}

	svc, _, cleanup := newTestRefreshService(t, grids, quotes, "")
	defer cleanup()

	report, err := svc.RefreshFromSheet()
	require.NoError(t, err)
	assert.Nil(t, report)
	assert.Equal(t, 0, grids.Calls(), "no URL means no fetch")
}

func TestRefreshFromSheetFetchFailure(t *testing.T) {
	grids := &guildtest.MockGridFetcher{Err: errors.New("sheet unreachable")}
	quotes := &guildtest.MockQuoteFetcher{Quotes: pricing.QuoteTable{}}

	svc, datasets, cleanup := newTestRefreshService(t, grids, quotes, "https://docs.google.com/spreadsheets/d/abc/edit")
	defer cleanup()

	require.NoError(t, datasets.Replace(guildtest.NewDatasetFixture()))

	_, err := svc.RefreshFromSheet()
	require.Error(t, err)

	// A failed fetch leaves the stored dataset untouched.
	assert.Len(t, datasets.Current(), 2)
}

func TestRefreshPrices(t *testing.T) {
	grids := &guildtest.MockGridFetcher{}
	quotes := &guildtest.MockQuoteFetcher{Quotes: guildtest.NewQuoteTableFixture()}

	svc, datasets, cleanup := newTestRefreshService(t, grids, quotes, "")
	defer cleanup()

	require.NoError(t, datasets.Replace(guildtest.NewDatasetFixture()))

	require.NoError(t, svc.RefreshPrices())

	ds := datasets.Current()
	require.Len(t, ds, 2)
	// Quoted good adopts the live price.
	assert.Equal(t, int64(110), ds[0].Goods[0].LiveExchangePrice)
	// Unquoted good keeps its stored quote but is still repriced.
	assert.Equal(t, int64(50), ds[1].Goods[0].LiveExchangePrice)
	assert.Equal(t, float64(40), ds[1].Goods[0].GuildeesPay)
}

func TestRefreshPricesQuoteFailure(t *testing.T) {
	grids := &guildtest.MockGridFetcher{}
	quotes := &guildtest.MockQuoteFetcher{Err: errors.New("exchange down")}

	svc, datasets, cleanup := newTestRefreshService(t, grids, quotes, "")
	defer cleanup()

	require.NoError(t, datasets.Replace(guildtest.NewDatasetFixture()))
	before := datasets.Token()

	err := svc.RefreshPrices()
	require.Error(t, err)
	assert.Equal(t, before, datasets.Token(), "failed quote fetch changes nothing")
}
