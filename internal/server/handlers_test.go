package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/titguild/guildboard/internal/modules/companies"
	"github.com/titguild/guildboard/internal/modules/export"
	"github.com/titguild/guildboard/internal/modules/sheets"
	"github.com/titguild/guildboard/internal/modules/snapshot"
	"github.com/titguild/guildboard/internal/services"
	guildtest "github.com/titguild/guildboard/internal/testing"
)

func newTestServer(t *testing.T) (*Server, *services.DatasetService, func()) {
	t.Helper()

	db, cleanup := guildtest.NewTestDB(t, "server")
	repo := companies.NewRepository(db.Conn(), zerolog.Nop())
	require.NoError(t, repo.InitSchema())
	archive := snapshot.NewArchive(db.Conn(), zerolog.Nop())
	require.NoError(t, archive.InitSchema())

	datasets := services.NewDatasetService(repo, archive, zerolog.Nop())
	require.NoError(t, datasets.Init())

	publisher := export.NewPublisher("", "main", "", 0, zerolog.Nop())
	refresh := services.NewRefreshService(
		datasets,
		&guildtest.MockGridFetcher{},
		sheets.NewParser(sheets.DefaultLayout(), zerolog.Nop()),
		&guildtest.MockQuoteFetcher{Quotes: guildtest.NewQuoteTableFixture()},
		export.NewExporter(t.TempDir(), zerolog.Nop()),
		publisher,
		"",
		zerolog.Nop(),
	)

	srv := New(Config{
		Log:       zerolog.Nop(),
		DB:        db,
		Datasets:  datasets,
		Refresh:   refresh,
		Publisher: publisher,
		Port:      0,
	})
	return srv, datasets, cleanup
}

func doRequest(t *testing.T, srv *Server, method, path string) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()

	req := httptest.NewRequest(method, path, nil)
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return rec, body
}

func TestHandleHealth(t *testing.T) {
	srv, _, cleanup := newTestServer(t)
	defer cleanup()

	rec, body := doRequest(t, srv, http.MethodGet, "/api/health")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "healthy", body["status"])
}

func TestHandleGoodsList(t *testing.T) {
	srv, datasets, cleanup := newTestServer(t)
	defer cleanup()

	require.NoError(t, datasets.Replace(guildtest.NewDatasetFixture()))

	rec, body := doRequest(t, srv, http.MethodGet, "/api/goods")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "success", body["status"])

	data := body["data"].(map[string]interface{})
	assert.Equal(t, float64(3), data["count"])
	goods := data["goods"].([]interface{})
	assert.Equal(t, "Copper Wire", goods[0], "goods are sorted")
}

func TestHandleGoodsListEmpty(t *testing.T) {
	srv, _, cleanup := newTestServer(t)
	defer cleanup()

	rec, body := doRequest(t, srv, http.MethodGet, "/api/goods")
	require.Equal(t, http.StatusOK, rec.Code)

	data := body["data"].(map[string]interface{})
	assert.Equal(t, float64(0), data["count"])
	assert.NotNil(t, data["goods"], "empty board is an empty list, not null")
}

func TestHandleGoodDetail(t *testing.T) {
	srv, datasets, cleanup := newTestServer(t)
	defer cleanup()

	require.NoError(t, datasets.Replace(guildtest.NewDatasetFixture()))

	rec, body := doRequest(t, srv, http.MethodGet, "/api/goods/Iron%20Ore")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "success", body["status"])

	data := body["data"].(map[string]interface{})
	assert.Equal(t, "Iron Ore", data["good"])
	assert.Equal(t, float64(1), data["listings_count"])
}

func TestHandleGoodDetailNotFound(t *testing.T) {
	srv, datasets, cleanup := newTestServer(t)
	defer cleanup()

	require.NoError(t, datasets.Replace(guildtest.NewDatasetFixture()))

	rec, body := doRequest(t, srv, http.MethodGet, "/api/goods/Unobtanium")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "error", body["status"])
}

func TestHandleCompaniesList(t *testing.T) {
	srv, datasets, cleanup := newTestServer(t)
	defer cleanup()

	require.NoError(t, datasets.Replace(guildtest.NewDatasetFixture()))

	rec, body := doRequest(t, srv, http.MethodGet, "/api/companies")
	require.Equal(t, http.StatusOK, rec.Code)

	data := body["data"].(map[string]interface{})
	assert.Equal(t, float64(2), data["count"])
}

func TestHandleCompaniesListFiltered(t *testing.T) {
	srv, datasets, cleanup := newTestServer(t)
	defer cleanup()

	require.NoError(t, datasets.Replace(guildtest.NewDatasetFixture()))

	rec, body := doRequest(t, srv, http.MethodGet, "/api/companies?profession=Hauling&search=star")
	require.Equal(t, http.StatusOK, rec.Code)

	data := body["data"].(map[string]interface{})
	require.Equal(t, float64(1), data["count"])
	list := data["companies"].([]interface{})
	first := list[0].(map[string]interface{})
	assert.Equal(t, "Star Haulers", first["name"])
}

func TestHandleStats(t *testing.T) {
	srv, datasets, cleanup := newTestServer(t)
	defer cleanup()

	require.NoError(t, datasets.Replace(guildtest.NewDatasetFixture()))

	rec, body := doRequest(t, srv, http.MethodGet, "/api/stats")
	require.Equal(t, http.StatusOK, rec.Code)

	data := body["data"].(map[string]interface{})
	assert.Equal(t, float64(2), data["companies"])
	assert.Equal(t, float64(3), data["unique_goods"])
}

func TestHandleRefreshPrices(t *testing.T) {
	srv, datasets, cleanup := newTestServer(t)
	defer cleanup()

	require.NoError(t, datasets.Replace(guildtest.NewDatasetFixture()))

	rec, body := doRequest(t, srv, http.MethodPost, "/api/refresh/prices")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "success", body["status"])

	// Quotes from the fixture table landed in the dataset.
	ds := datasets.Current()
	assert.Equal(t, int64(110), ds[0].Goods[0].LiveExchangePrice)
}

func TestHandlePublishDisabled(t *testing.T) {
	srv, _, cleanup := newTestServer(t)
	defer cleanup()

	rec, body := doRequest(t, srv, http.MethodPost, "/api/publish")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "success", body["status"])
	assert.Equal(t, false, body["pushed"], "publisher without token is a no-op")
}

func TestHandleSystemStatus(t *testing.T) {
	srv, _, cleanup := newTestServer(t)
	defer cleanup()

	rec, body := doRequest(t, srv, http.MethodGet, "/api/system/status")
	require.Equal(t, http.StatusOK, rec.Code)

	data := body["data"].(map[string]interface{})
	assert.Equal(t, true, data["database_healthy"])
	assert.Equal(t, false, data["publish_enabled"])
	assert.NotNil(t, data["goroutines"])
}
