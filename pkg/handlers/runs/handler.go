package runs

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/de-tools/env-expiry/pkg/adapters"
	"github.com/de-tools/env-expiry/pkg/models/domain"
	"github.com/de-tools/env-expiry/pkg/services/workflow"
	"github.com/rs/zerolog"
)

const triggerSource = "api"

type Handler struct {
	ctrl workflow.Controller
}

func NewHandler(ctrl workflow.Controller) *Handler {
	return &Handler{ctrl: ctrl}
}

// Trigger runs the expiration check immediately and responds with the outcome.
func (h *Handler) Trigger(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := zerolog.Ctx(ctx)

	res, err := h.ctrl.Trigger(ctx, triggerSource)
	if errors.Is(err, workflow.ErrRunInProgress) {
		http.Error(w, err.Error(), http.StatusConflict)
		return
	}

	writeJSON(w, r, statusFor(err), adapters.MapRunResultDomainToApi(res, err))
	if err != nil {
		logger.Warn().Err(err).Msg("manual run failed")
	}
}

func (h *Handler) LastRun(w http.ResponseWriter, r *http.Request) {
	rec, ok := h.ctrl.LastRun()
	if !ok {
		http.Error(w, "no run has completed yet", http.StatusNotFound)
		return
	}
	writeJSON(w, r, http.StatusOK, adapters.MapRunRecordDomainToApi(rec))
}

func statusFor(err error) int {
	if err == nil {
		return http.StatusOK
	}
	var enumErr *domain.EnumerationError
	var sendErr *domain.SendError
	var transportErr *domain.TransportError
	switch {
	case errors.As(err, &enumErr), errors.As(err, &sendErr), errors.As(err, &transportErr):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zerolog.Ctx(r.Context()).Error().
			Err(err).
			Msg("failed to encode response")
	}
}
