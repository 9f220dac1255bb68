package server

import (
	"net/http"
	"runtime"
	"time"

	"github.com/rs/zerolog"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"

	"github.com/titguild/guildboard/internal/database"
	"github.com/titguild/guildboard/internal/modules/export"
)

// SystemHandlers exposes process and host diagnostics.
type SystemHandlers struct {
	db        *database.DB
	publisher *export.Publisher
	startup   time.Time
	log       zerolog.Logger
}

// NewSystemHandlers creates the system diagnostics handlers.
func NewSystemHandlers(db *database.DB, publisher *export.Publisher, startup time.Time, log zerolog.Logger) *SystemHandlers {
	return &SystemHandlers{
		db:        db,
		publisher: publisher,
		startup:   startup,
		log:       log.With().Str("component", "system").Logger(),
	}
}

// HandleStatus reports uptime, host metrics, database health and the last
// publish time.
func (h *SystemHandlers) HandleStatus(w http.ResponseWriter, r *http.Request) {
	status := map[string]interface{}{
		"uptime_seconds": int64(time.Since(h.startup).Seconds()),
		"goroutines":     runtime.NumGoroutine(),
	}

	if percents, err := cpu.Percent(0, false); err == nil && len(percents) > 0 {
		status["cpu_percent"] = percents[0]
	}
	if vm, err := mem.VirtualMemory(); err == nil {
		status["memory_percent"] = vm.UsedPercent
		status["memory_used_mb"] = vm.Used / 1024 / 1024
	}

	dbHealthy := true
	if err := h.db.HealthCheck(r.Context()); err != nil {
		dbHealthy = false
		h.log.Warn().Err(err).Msg("Database health check failed")
	}
	status["database_healthy"] = dbHealthy

	status["publish_enabled"] = h.publisher.Enabled()
	if last := h.publisher.LastPush(); !last.IsZero() {
		status["last_publish"] = last.UTC().Format(time.RFC3339)
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status": "success",
		"data":   status,
	})
}
