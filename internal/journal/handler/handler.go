// Package handler exposes the read side of the mutation journal.
package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"letterc/internal/journal"
	"letterc/internal/platform/middleware"
	domain "letterc/pkg/domain"
	dErrors "letterc/pkg/domain-errors"
	"letterc/pkg/platform/httputil"
)

// Service is the journal read surface.
type Service interface {
	List(ctx context.Context, regionID domain.RegionID, limit, offset int) ([]*journal.Entry, error)
	Summarize(ctx context.Context, regionID domain.RegionID) (*journal.Summary, error)
}

// Handler handles journal endpoints.
type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(svc Service, logger *slog.Logger) *Handler {
	return &Handler{service: svc, logger: logger}
}

// Register mounts the journal routes.
func (h *Handler) Register(r chi.Router) {
	r.Get("/regions/{regionID}/journal", h.handleList)
	r.Get("/regions/{regionID}/journal/summary", h.handleSummary)
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	regionID, err := domain.ParseRegionID(chi.URLParam(r, "regionID"))
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid region id"))
		return
	}
	limit, offset, err := paging(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	entries, err := h.service.List(ctx, regionID, limit, offset)
	if err != nil {
		h.logger.ErrorContext(ctx, "journal list failed",
			"request_id", middleware.GetRequestID(ctx),
			"error", err.Error(),
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, entries)
}

func (h *Handler) handleSummary(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	regionID, err := domain.ParseRegionID(chi.URLParam(r, "regionID"))
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid region id"))
		return
	}

	summary, err := h.service.Summarize(ctx, regionID)
	if err != nil {
		h.logger.ErrorContext(ctx, "journal summary failed",
			"request_id", middleware.GetRequestID(ctx),
			"error", err.Error(),
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, summary)
}

func paging(r *http.Request) (limit, offset int, err error) {
	if raw := r.URL.Query().Get("limit"); raw != "" {
		limit, err = strconv.Atoi(raw)
		if err != nil || limit < 0 {
			return 0, 0, dErrors.New(dErrors.CodeBadRequest, "limit must be a non-negative integer")
		}
	}
	if raw := r.URL.Query().Get("offset"); raw != "" {
		offset, err = strconv.Atoi(raw)
		if err != nil || offset < 0 {
			return 0, 0, dErrors.New(dErrors.CodeBadRequest, "offset must be a non-negative integer")
		}
	}
	return limit, offset, nil
}
