package handler

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/motorlane/pipeline-api/internal/service"
)

type LookupHandler struct {
	service *service.LookupService
	logger  *zap.Logger
}

func NewLookupHandler(svc *service.LookupService, logger *zap.Logger) *LookupHandler {
	return &LookupHandler{service: svc, logger: logger}
}

// ListStatuses godoc
// @Summary List pipeline statuses
// @Description Get all pipeline statuses for dropdown population
// @Tags Lookups
// @Produce json
// @Success 200 {object} domain.Envelope
// @Security BearerAuth
// @Router /pipeline-statuses [get]
func (h *LookupHandler) ListStatuses(w http.ResponseWriter, r *http.Request) {
	statuses, err := h.service.ListStatuses(r.Context())
	if err != nil {
		h.logger.Error("failed to list pipeline statuses", zap.Error(err))
		respondError(w, http.StatusInternalServerError, "Failed to list pipeline statuses")
		return
	}
	respondSuccess(w, http.StatusOK, statuses)
}

// ListMarketColors godoc
// @Summary List market colors
// @Description Get all market color codes for dropdown population
// @Tags Lookups
// @Produce json
// @Success 200 {object} domain.Envelope
// @Security BearerAuth
// @Router /market-colors [get]
func (h *LookupHandler) ListMarketColors(w http.ResponseWriter, r *http.Request) {
	colors, err := h.service.ListMarketColors(r.Context())
	if err != nil {
		h.logger.Error("failed to list market colors", zap.Error(err))
		respondError(w, http.StatusInternalServerError, "Failed to list market colors")
		return
	}
	respondSuccess(w, http.StatusOK, colors)
}
