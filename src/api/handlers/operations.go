package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"reporter/src/schemas"
	"reporter/src/utils"
)

// BeginOperation acquires the named operation lock. The optional
// `timeout` query parameter is in seconds.
func (h *Handler) BeginOperation(w http.ResponseWriter, r *http.Request) {
	identifier := chi.URLParam(r, "identifier")
	if identifier == "" {
		h.HandleErrors(w, utils.BadRequest("operation identifier is required"))
		return
	}

	var timeout time.Duration
	if raw := r.URL.Query().Get("timeout"); raw != "" {
		seconds, err := strconv.Atoi(raw)
		if err != nil || seconds <= 0 {
			h.HandleErrors(w, utils.BadRequest("timeout must be a positive number of seconds"))
			return
		}
		timeout = time.Duration(seconds) * time.Second
	}

	if !h.Controller.BeginOperation(r.Context(), identifier, timeout) {
		h.HandleErrors(w, utils.Conflict("operation "+identifier+" is already in progress"))
		return
	}

	h.respond(w, r, schemas.OperationResponse{Success: true}, http.StatusOK)
}

func (h *Handler) EndOperation(w http.ResponseWriter, r *http.Request) {
	identifier := chi.URLParam(r, "identifier")
	if identifier == "" {
		h.HandleErrors(w, utils.BadRequest("operation identifier is required"))
		return
	}

	h.Controller.EndOperation(r.Context(), identifier)
	h.respond(w, r, schemas.OperationResponse{Success: true}, http.StatusOK)
}
