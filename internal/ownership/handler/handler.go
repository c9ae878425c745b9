// Package handler exposes ownership record search, detail, registration, and
// administrative deletion.
package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"letterc/internal/ownership/models"
	"letterc/internal/ownership/service"
	"letterc/internal/platform/middleware"
	domain "letterc/pkg/domain"
	dErrors "letterc/pkg/domain-errors"
	"letterc/pkg/platform/httputil"
)

// Service is the ownership service surface the handler needs.
type Service interface {
	Search(ctx context.Context, regionID domain.RegionID, prefix string, limit int) ([]*models.OwnershipRecord, error)
	Get(ctx context.Context, id domain.OwnershipID) (*service.Detail, error)
	Register(ctx context.Context, in service.RegisterInput) (*service.Detail, error)
	Delete(ctx context.Context, id domain.OwnershipID) error
}

// Handler handles ownership endpoints.
type Handler struct {
	service Service
	logger  *slog.Logger
	authMW  func(http.Handler) http.Handler
}

func New(svc Service, logger *slog.Logger, authMW func(http.Handler) http.Handler) *Handler {
	return &Handler{service: svc, logger: logger, authMW: authMW}
}

// Register mounts the ownership routes. Reads are open to any caller behind
// the gateway; registration and deletion require an authenticated clerk.
func (h *Handler) Register(r chi.Router) {
	r.Get("/regions/{regionID}/ownerships", h.handleSearch)
	r.Get("/ownerships/{ownershipID}", h.handleGet)
	r.Group(func(r chi.Router) {
		r.Use(h.authMW)
		r.Post("/regions/{regionID}/ownerships", h.handleRegister)
		r.Delete("/ownerships/{ownershipID}", h.handleDelete)
	})
}

func (h *Handler) handleSearch(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	regionID, err := domain.ParseRegionID(chi.URLParam(r, "regionID"))
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid region id"))
		return
	}

	prefix := r.URL.Query().Get("prefix")
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		limit, err = strconv.Atoi(raw)
		if err != nil || limit < 0 {
			httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "limit must be a non-negative integer"))
			return
		}
	}

	owners, err := h.service.Search(ctx, regionID, prefix, limit)
	if err != nil {
		h.logger.ErrorContext(ctx, "ownership search failed",
			"request_id", middleware.GetRequestID(ctx),
			"error", err.Error(),
		)
		httputil.WriteError(w, err)
		return
	}
	if owners == nil {
		owners = []*models.OwnershipRecord{}
	}
	httputil.WriteJSON(w, http.StatusOK, owners)
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, err := domain.ParseOwnershipID(chi.URLParam(r, "ownershipID"))
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid ownership id"))
		return
	}
	detail, err := h.service.Get(ctx, id)
	if err != nil {
		if !dErrors.HasCode(err, dErrors.CodeNotFound) {
			h.logger.ErrorContext(ctx, "ownership detail failed",
				"request_id", middleware.GetRequestID(ctx),
				"error", err.Error(),
			)
		}
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, detail)
}

type registerRequest struct {
	OwnerNumber    string  `json:"owner_number"`
	OwnerName      string  `json:"owner_name"`
	OwnerAddress   string  `json:"owner_address"`
	ParcelNumber   string  `json:"parcel_number"`
	LandType       string  `json:"land_type"`
	Grade          string  `json:"grade"`
	Area           float64 `json:"area"`
	ProvenanceNote string  `json:"provenance_note"`
}

func (h *Handler) handleRegister(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := middleware.GetRequestID(ctx)

	regionID, err := domain.ParseRegionID(chi.URLParam(r, "regionID"))
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid region id"))
		return
	}

	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.WarnContext(ctx, "invalid register request", "request_id", requestID, "error", err.Error())
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	ownerNumber, err := domain.ParseOwnerNumber(req.OwnerNumber)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	detail, err := h.service.Register(ctx, service.RegisterInput{
		RegionID:     regionID,
		OwnerNumber:  ownerNumber,
		OwnerName:    req.OwnerName,
		OwnerAddress: req.OwnerAddress,
		Parcel: models.ParcelTemplate{
			ParcelNumber:   req.ParcelNumber,
			LandType:       models.LandType(req.LandType),
			Grade:          req.Grade,
			ProvenanceNote: req.ProvenanceNote,
		},
		Area: req.Area,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "ownership registration failed",
			"request_id", requestID,
			"owner_number", req.OwnerNumber,
			"error", err.Error(),
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, detail)
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, err := domain.ParseOwnershipID(chi.URLParam(r, "ownershipID"))
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid ownership id"))
		return
	}
	if err := h.service.Delete(ctx, id); err != nil {
		httputil.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
