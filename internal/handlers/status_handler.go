package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/ternarybob/arbor"

	"github.com/coverscribe/coverscribe/internal/common"
	"github.com/coverscribe/coverscribe/internal/interfaces"
)

// StatusHandler reports application health.
type StatusHandler struct {
	config    *common.Config
	llm       interfaces.LLMService
	logger    arbor.ILogger
	startedAt time.Time
}

// NewStatusHandler creates a new StatusHandler.
func NewStatusHandler(config *common.Config, llm interfaces.LLMService, logger arbor.ILogger) *StatusHandler {
	return &StatusHandler{
		config:    config,
		llm:       llm,
		logger:    logger,
		startedAt: time.Now(),
	}
}

// GetStatusHandler handles GET /api/status.
func (h *StatusHandler) GetStatusHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "GET") {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	llmStatus := "ok"
	if err := h.llm.HealthCheck(ctx); err != nil {
		llmStatus = err.Error()
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"version":     common.GetVersion(),
		"environment": h.config.Environment,
		"uptime":      time.Since(h.startedAt).Round(time.Second).String(),
		"llm": map[string]string{
			"provider": string(h.config.LLM.DefaultProvider),
			"mode":     string(h.llm.GetMode()),
			"status":   llmStatus,
		},
		"storage": h.config.Storage.Type,
	})
}

// HealthHandler handles GET /api/health (liveness only).
func (h *StatusHandler) HealthHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "GET") {
		return
	}
	WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// VersionHandler handles GET /api/version.
func (h *StatusHandler) VersionHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "GET") {
		return
	}
	WriteJSON(w, http.StatusOK, map[string]string{
		"version": common.GetVersion(),
		"full":    common.GetFullVersion(),
	})
}
