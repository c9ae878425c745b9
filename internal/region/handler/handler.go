// Package handler exposes the read-only region directory.
package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"letterc/internal/platform/middleware"
	"letterc/internal/region"
	dErrors "letterc/pkg/domain-errors"
	"letterc/pkg/platform/httputil"
)

// Handler handles region endpoints.
type Handler struct {
	directory region.Directory
	logger    *slog.Logger
}

func New(directory region.Directory, logger *slog.Logger) *Handler {
	return &Handler{directory: directory, logger: logger}
}

// Register mounts the region routes.
func (h *Handler) Register(r chi.Router) {
	r.Get("/regions", h.handleList)
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	regions, err := h.directory.List(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "region list failed",
			"request_id", middleware.GetRequestID(ctx),
			"error", err.Error(),
		)
		httputil.WriteError(w, dErrors.Wrap(err, dErrors.CodeInternal, "list regions"))
		return
	}
	if regions == nil {
		regions = []region.Region{}
	}
	httputil.WriteJSON(w, http.StatusOK, regions)
}
