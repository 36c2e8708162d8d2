package handler

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/motorlane/pipeline-api/internal/service"
)

// TransferActivityHandler serves the admin-only transfer audit log
type TransferActivityHandler struct {
	service *service.TransferActivityService
	logger  *zap.Logger
}

func NewTransferActivityHandler(svc *service.TransferActivityService, logger *zap.Logger) *TransferActivityHandler {
	return &TransferActivityHandler{service: svc, logger: logger}
}

// List godoc
// @Summary List transfer activities
// @Description Get the transfer audit log, newest first. Admin only.
// @Tags TransferActivities
// @Produce json
// @Param limit query int false "Maximum rows to return"
// @Success 200 {object} domain.Envelope
// @Failure 403 {object} map[string]interface{}
// @Security BearerAuth
// @Router /transfer-activities [get]
func (h *TransferActivityHandler) List(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			respondError(w, http.StatusBadRequest, "Invalid limit")
			return
		}
		limit = parsed
	}

	activities, err := h.service.List(r.Context(), limit)
	if err != nil {
		h.logger.Error("failed to list transfer activities", zap.Error(err))
		respondError(w, http.StatusInternalServerError, "Failed to list transfer activities")
		return
	}

	respondSuccess(w, http.StatusOK, activities)
}

// ListByItem godoc
// @Summary List transfer activities for an item
// @Description Get the transfer audit log of one pipeline item, newest first. Admin only.
// @Tags TransferActivities
// @Produce json
// @Param id path string true "Pipeline item ID"
// @Success 200 {object} domain.Envelope
// @Failure 404 {object} domain.Envelope
// @Security BearerAuth
// @Router /pipeline-items/{id}/transfer-activities [get]
func (h *TransferActivityHandler) ListByItem(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, http.StatusNotFound, notFoundMessage)
		return
	}

	activities, err := h.service.ListByItem(r.Context(), id)
	if err != nil {
		h.logger.Error("failed to list transfer activities",
			zap.String("item_id", id.String()), zap.Error(err))
		respondError(w, http.StatusInternalServerError, "Failed to list transfer activities")
		return
	}

	respondSuccess(w, http.StatusOK, activities)
}
