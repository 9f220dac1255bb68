package server

import (
	"encoding/json"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/titguild/guildboard/internal/modules/companies"
	"github.com/titguild/guildboard/internal/modules/export"
	"github.com/titguild/guildboard/internal/modules/stats"
	"github.com/titguild/guildboard/internal/services"
)

// Handlers serves the read API over the current dataset plus the manual
// refresh/publish triggers.
type Handlers struct {
	datasets *services.DatasetService
	refresh  *services.RefreshService
	log      zerolog.Logger
}

// NewHandlers creates the API handlers.
func NewHandlers(datasets *services.DatasetService, refresh *services.RefreshService, log zerolog.Logger) *Handlers {
	return &Handlers{
		datasets: datasets,
		refresh:  refresh,
		log:      log.With().Str("component", "handlers").Logger(),
	}
}

// HandleHealth is the health check endpoint.
func (h *Handlers) HandleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "healthy",
		"service": "guildboard",
	})
}

// HandleGoodsList returns the sorted distinct good names across the board.
// An empty dataset is an empty list, not an error.
func (h *Handlers) HandleGoodsList(w http.ResponseWriter, r *http.Request) {
	names := h.datasets.Current().GoodNames()
	sort.Strings(names)
	if names == nil {
		names = []string{}
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status": "success",
		"data": map[string]interface{}{
			"goods": names,
			"count": len(names),
		},
	})
}

// HandleGoodDetail returns every listing for one good, cheapest first.
func (h *Handlers) HandleGoodDetail(w http.ResponseWriter, r *http.Request) {
	goodName := chi.URLParam(r, "goodName")

	doc := export.BuildGoodsDocument(h.datasets.Current(), time.Now())
	for _, entry := range doc.Data {
		if strings.EqualFold(entry.Good, goodName) {
			writeJSON(w, http.StatusOK, map[string]interface{}{
				"status": "success",
				"data":   entry,
			})
			return
		}
	}

	writeJSON(w, http.StatusNotFound, map[string]string{
		"status":  "error",
		"message": "good not found: " + goodName,
	})
}

// HandleCompaniesList returns company summaries. Supports ?profession=,
// ?search= (company name) and ?goods= (good name) filters.
func (h *Handlers) HandleCompaniesList(w http.ResponseWriter, r *http.Request) {
	ds := h.datasets.Current()

	var professions []string
	if p := r.URL.Query().Get("profession"); p != "" {
		professions = strings.Split(p, ",")
	}
	ds = companies.ApplyFilters(ds, professions, r.URL.Query().Get("search"), r.URL.Query().Get("goods"))

	type companySummary struct {
		Name        string   `json:"name"`
		Industry    string   `json:"industry"`
		Professions []string `json:"professions"`
		Timezone    string   `json:"timezone"`
		LocalTime   string   `json:"local_time"`
		GoodsCount  int      `json:"goods_count"`
	}

	summaries := make([]companySummary, 0, len(ds))
	for _, c := range ds {
		summaries = append(summaries, companySummary{
			Name:        c.Name,
			Industry:    c.Industry,
			Professions: c.EffectiveProfessions(),
			Timezone:    c.Timezone,
			LocalTime:   companies.LocalTime(c.Timezone),
			GoodsCount:  len(c.Goods),
		})
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status": "success",
		"data": map[string]interface{}{
			"companies": summaries,
			"count":     len(summaries),
		},
	})
}

// HandleStats returns the board-level statistics row.
func (h *Handlers) HandleStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status": "success",
		"data":   stats.Summarize(h.datasets.Current()),
	})
}

// HandleRefreshSheet triggers a sheet import outside the schedule.
func (h *Handlers) HandleRefreshSheet(w http.ResponseWriter, r *http.Request) {
	report, err := h.refresh.RefreshFromSheet()
	if err != nil {
		h.log.Error().Err(err).Msg("Manual sheet refresh failed")
		writeJSON(w, http.StatusBadGateway, map[string]string{
			"status":  "error",
			"message": err.Error(),
		})
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status": "success",
		"data":   report,
	})
}

// HandleRefreshPrices triggers a quote refresh outside the schedule.
func (h *Handlers) HandleRefreshPrices(w http.ResponseWriter, r *http.Request) {
	if err := h.refresh.RefreshPrices(); err != nil {
		h.log.Error().Err(err).Msg("Manual price refresh failed")
		writeJSON(w, http.StatusBadGateway, map[string]string{
			"status":  "error",
			"message": err.Error(),
		})
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "success"})
}

// HandlePublish triggers a GitHub push. ?force=true bypasses the minimum
// push interval.
func (h *Handlers) HandlePublish(w http.ResponseWriter, r *http.Request) {
	force := r.URL.Query().Get("force") == "true"

	pushed, err := h.refresh.Publish(force)
	if err != nil {
		h.log.Error().Err(err).Msg("Manual publish failed")
		writeJSON(w, http.StatusBadGateway, map[string]string{
			"status":  "error",
			"message": err.Error(),
		})
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status": "success",
		"pushed": pushed,
	})
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
