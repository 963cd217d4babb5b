package handlers

import (
	"net/http"
	"time"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"

	"github.com/sebringj/localstack/internal/storage"
)

// HealthHandler reports process and store health.
type HealthHandler struct {
	store   storage.Engine
	started time.Time
}

// NewHealthHandler creates a new HealthHandler.
func NewHealthHandler(store storage.Engine) *HealthHandler {
	return &HealthHandler{store: store, started: time.Now()}
}

// Get returns service status, store statistics, and host resource usage.
func (h *HealthHandler) Get(w http.ResponseWriter, r *http.Request) {
	stats, err := h.store.Stats(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	body := map[string]interface{}{
		"status":         "ok",
		"uptime_seconds": int64(time.Since(h.started).Seconds()),
		"store":          stats,
	}

	// Resource figures are best effort; health stays "ok" without them.
	if vm, err := mem.VirtualMemory(); err == nil {
		body["memory_used_percent"] = vm.UsedPercent
	}
	if percents, err := cpu.Percent(0, false); err == nil && len(percents) > 0 {
		body["cpu_percent"] = percents[0]
	}

	respondJSON(w, http.StatusOK, body)
}
