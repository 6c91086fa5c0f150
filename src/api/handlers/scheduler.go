package handlers

import (
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"reporter/src/repositories"
	"reporter/src/schemas"
	"reporter/src/utils"
)

// ExecuteScheduledReports runs one sweep and returns its summary. The
// sweep itself can poll remote jobs for a long time, so no request
// timeout is layered on top of the per-job timeout.
func (h *Handler) ExecuteScheduledReports(w http.ResponseWriter, r *http.Request) {
	summary, err := h.Controller.RunScheduledReports(r.Context())
	if err != nil {
		h.HandleErrors(w, utils.ServiceUnavailable(err.Error()))
		return
	}

	h.respond(w, r, summary, http.StatusOK)
}

func (h *Handler) GetSchedulerStatus(w http.ResponseWriter, r *http.Request) {
	status, err := h.Controller.GetSchedulerStatus(r.Context())
	if err != nil {
		h.HandleErrors(w, err)
		return
	}

	h.respond(w, r, status, http.StatusOK)
}

func (h *Handler) SaveReportDefinition(w http.ResponseWriter, r *http.Request) {
	fileName := chi.URLParam(r, "fileName")

	data, err := io.ReadAll(r.Body)
	if err != nil {
		h.HandleErrors(w, err)
		return
	}

	if err := h.Controller.SaveReportDefinition(r.Context(), data, fileName); err != nil {
		if errors.Is(err, repositories.ErrInvalidFileName) {
			h.HandleErrors(w, utils.BadRequest(err.Error()))
			return
		}
		h.HandleErrors(w, err)
		return
	}

	h.respond(w, r, schemas.OperationResponse{Success: true}, http.StatusOK)
}

func (h *Handler) DeleteReportDefinition(w http.ResponseWriter, r *http.Request) {
	fileName := chi.URLParam(r, "fileName")

	if err := h.Controller.DeleteReportDefinition(r.Context(), fileName); err != nil {
		if errors.Is(err, repositories.ErrInvalidFileName) {
			h.HandleErrors(w, utils.BadRequest(err.Error()))
			return
		}
		h.HandleErrors(w, err)
		return
	}

	h.respond(w, r, schemas.OperationResponse{Success: true}, http.StatusOK)
}

func (h *Handler) SaveReportsIndex(w http.ResponseWriter, r *http.Request) {
	data, err := io.ReadAll(r.Body)
	if err != nil {
		h.HandleErrors(w, err)
		return
	}

	if err := h.Controller.SaveReportsIndex(r.Context(), data); err != nil {
		h.HandleErrors(w, utils.BadRequest(err.Error()))
		return
	}

	h.respond(w, r, schemas.OperationResponse{Success: true}, http.StatusOK)
}
