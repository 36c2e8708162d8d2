package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/motorlane/pipeline-api/internal/domain"
	"github.com/motorlane/pipeline-api/internal/service"
)

// notFoundMessage is the exact body clients match on for missing items
const notFoundMessage = "Pipeline Item not found."

type PipelineItemHandler struct {
	service *service.PipelineItemService
	logger  *zap.Logger
}

func NewPipelineItemHandler(svc *service.PipelineItemService, logger *zap.Logger) *PipelineItemHandler {
	return &PipelineItemHandler{service: svc, logger: logger}
}

// List godoc
// @Summary List pipeline items
// @Description Get the caller's pipeline items, least recently contacted first. Admins see all items.
// @Tags PipelineItems
// @Produce json
// @Param closed_month query string false "When present and non-empty, narrow to recently closed deals"
// @Success 200 {object} domain.Envelope
// @Failure 500 {object} domain.Envelope
// @Security BearerAuth
// @Router /pipeline-items [get]
func (h *PipelineItemHandler) List(w http.ResponseWriter, r *http.Request) {
	closedMonth := r.URL.Query().Get("closed_month") != ""

	items, err := h.service.List(r.Context(), closedMonth)
	if err != nil {
		h.logger.Error("failed to list pipeline items", zap.Error(err))
		respondError(w, http.StatusInternalServerError, "Failed to list pipeline items")
		return
	}

	respondSuccess(w, http.StatusOK, items)
}

// Get godoc
// @Summary Get a pipeline item
// @Description Get a single pipeline item by id. Non-admins only see items they own.
// @Tags PipelineItems
// @Produce json
// @Param id path string true "Pipeline item ID"
// @Success 200 {object} domain.Envelope
// @Failure 404 {object} domain.Envelope
// @Security BearerAuth
// @Router /pipeline-items/{id} [get]
func (h *PipelineItemHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, http.StatusNotFound, notFoundMessage)
		return
	}

	item, err := h.service.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			respondError(w, http.StatusNotFound, notFoundMessage)
			return
		}
		h.logger.Error("failed to get pipeline item", zap.String("item_id", id.String()), zap.Error(err))
		respondError(w, http.StatusInternalServerError, "Failed to get pipeline item")
		return
	}

	respondSuccess(w, http.StatusOK, item)
}

// Create godoc
// @Summary Create a pipeline item
// @Description Create a pipeline item owned by the caller and redirect to it
// @Tags PipelineItems
// @Accept json
// @Produce json
// @Param request body domain.CreatePipelineItemRequest true "Pipeline item data"
// @Success 303 {object} domain.Envelope
// @Failure 400 {object} domain.Envelope
// @Security BearerAuth
// @Router /pipeline-items [post]
func (h *PipelineItemHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req domain.CreatePipelineItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := validate.Struct(&req); err != nil {
		respondValidationError(w, err)
		return
	}

	item, err := h.service.Create(r.Context(), &req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrStatusNotFound):
			respondError(w, http.StatusBadRequest, "Unknown pipeline status")
		case errors.Is(err, service.ErrMarketColorNotFound):
			respondError(w, http.StatusBadRequest, "Unknown market color")
		case errors.Is(err, service.ErrInvalidDate):
			respondError(w, http.StatusBadRequest, "Invalid date format")
		default:
			h.logger.Error("failed to create pipeline item", zap.Error(err))
			respondError(w, http.StatusInternalServerError, "Failed to create pipeline item")
		}
		return
	}

	w.Header().Set("Location", "/api/v1/pipeline-items/"+item.ID.String())
	respondSuccess(w, http.StatusSeeOther, item)
}

// Update godoc
// @Summary Update a pipeline item
// @Description Apply a partial update. A submitted phone number list replaces the stored set wholesale.
// @Tags PipelineItems
// @Accept json
// @Produce json
// @Param id path string true "Pipeline item ID"
// @Param request body domain.UpdatePipelineItemRequest true "Fields to update"
// @Success 200 {object} domain.Envelope
// @Failure 400 {object} domain.Envelope
// @Failure 404 {object} domain.Envelope
// @Security BearerAuth
// @Router /pipeline-items/{id} [put]
func (h *PipelineItemHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, http.StatusNotFound, notFoundMessage)
		return
	}

	var req domain.UpdatePipelineItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := validate.Struct(&req); err != nil {
		respondValidationError(w, err)
		return
	}

	item, err := h.service.Update(r.Context(), id, &req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrNotFound):
			respondError(w, http.StatusNotFound, notFoundMessage)
		case errors.Is(err, service.ErrStatusNotFound):
			respondError(w, http.StatusBadRequest, "Unknown pipeline status")
		case errors.Is(err, service.ErrMarketColorNotFound):
			respondError(w, http.StatusBadRequest, "Unknown market color")
		case errors.Is(err, service.ErrInvalidDate):
			respondError(w, http.StatusBadRequest, "Invalid date format")
		default:
			h.logger.Error("failed to update pipeline item", zap.String("item_id", id.String()), zap.Error(err))
			respondError(w, http.StatusInternalServerError, "Failed to update pipeline item")
		}
		return
	}

	respondSuccess(w, http.StatusOK, item)
}

// Delete godoc
// @Summary Delete a pipeline item
// @Description Soft delete a pipeline item. Trashed items are purged after the retention window.
// @Tags PipelineItems
// @Produce json
// @Param id path string true "Pipeline item ID"
// @Success 200 {object} domain.Envelope
// @Failure 404 {object} domain.Envelope
// @Security BearerAuth
// @Router /pipeline-items/{id} [delete]
func (h *PipelineItemHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, http.StatusNotFound, notFoundMessage)
		return
	}

	if err := h.service.Delete(r.Context(), id); err != nil {
		if errors.Is(err, service.ErrNotFound) {
			respondError(w, http.StatusNotFound, notFoundMessage)
			return
		}
		h.logger.Error("failed to delete pipeline item", zap.String("item_id", id.String()), zap.Error(err))
		respondError(w, http.StatusInternalServerError, "Failed to delete pipeline item")
		return
	}

	respondSuccess(w, http.StatusOK, nil)
}

// Appointments godoc
// @Summary List appointments for a day
// @Description Get items with an appointment on the given calendar day (m/d/Y), defaulting to today. Returns the bare {data} shape the scheduling widget consumes.
// @Tags PipelineItems
// @Produce json
// @Param date query string false "Calendar day (m/d/Y)"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} domain.Envelope
// @Security BearerAuth
// @Router /pipeline-items/appointments [get]
func (h *PipelineItemHandler) Appointments(w http.ResponseWriter, r *http.Request) {
	items, err := h.service.Appointments(r.Context(), r.URL.Query().Get("date"))
	if err != nil {
		if errors.Is(err, service.ErrInvalidDate) {
			respondError(w, http.StatusBadRequest, "Invalid date format, expected m/d/Y")
			return
		}
		h.logger.Error("failed to list appointments", zap.Error(err))
		respondError(w, http.StatusInternalServerError, "Failed to list appointments")
		return
	}

	respondJSON(w, http.StatusOK, struct {
		Data []domain.PipelineItemDTO `json:"data"`
	}{Data: items})
}

// Transfer godoc
// @Summary Transfer a pipeline item
// @Description Reassign ownership and append an audit row. Failures that are not a missing item answer 402 so the portal surfaces them inline.
// @Tags PipelineItems
// @Accept json
// @Produce json
// @Param id path string true "Pipeline item ID"
// @Param request body domain.TransferRequest true "Transfer action and target user"
// @Success 200 {object} domain.Envelope
// @Failure 402 {object} domain.Envelope
// @Failure 404 {object} domain.Envelope
// @Security BearerAuth
// @Router /pipeline-items/{id}/transfer [post]
func (h *PipelineItemHandler) Transfer(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, http.StatusNotFound, notFoundMessage)
		return
	}

	var req domain.TransferRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := validate.Struct(&req); err != nil {
		respondValidationError(w, err)
		return
	}

	activity, err := h.service.Transfer(r.Context(), id, &req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrNotFound):
			respondError(w, http.StatusNotFound, notFoundMessage)
		case errors.Is(err, service.ErrInvalidTransferAction):
			respondError(w, http.StatusPaymentRequired, "Unknown transfer action")
		case errors.Is(err, service.ErrUserNotFound):
			respondError(w, http.StatusPaymentRequired, "Transfer target user not found")
		default:
			h.logger.Error("failed to transfer pipeline item", zap.String("item_id", id.String()), zap.Error(err))
			respondError(w, http.StatusPaymentRequired, "Transfer failed")
		}
		return
	}

	respondSuccess(w, http.StatusOK, activity)
}

// AddNote godoc
// @Summary Add a note to a pipeline item
// @Description Append a free-text note attributed to the caller
// @Tags PipelineItems
// @Accept json
// @Produce json
// @Param id path string true "Pipeline item ID"
// @Param request body domain.CreateNoteRequest true "Note body"
// @Success 201 {object} domain.Envelope
// @Failure 404 {object} domain.Envelope
// @Security BearerAuth
// @Router /pipeline-items/{id}/notes [post]
func (h *PipelineItemHandler) AddNote(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, http.StatusNotFound, notFoundMessage)
		return
	}

	var req domain.CreateNoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := validate.Struct(&req); err != nil {
		respondValidationError(w, err)
		return
	}

	note, err := h.service.AddNote(r.Context(), id, &req)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			respondError(w, http.StatusNotFound, notFoundMessage)
			return
		}
		h.logger.Error("failed to add note", zap.String("item_id", id.String()), zap.Error(err))
		respondError(w, http.StatusInternalServerError, "Failed to add note")
		return
	}

	respondSuccess(w, http.StatusCreated, note)
}
