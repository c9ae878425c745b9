// Package handler exposes the mutation protocol over HTTP: preview, commit,
// abort. The handler stays thin; all ledger logic lives in the engine.
package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"letterc/internal/mutation/models"
	"letterc/internal/platform/middleware"
	domain "letterc/pkg/domain"
	dErrors "letterc/pkg/domain-errors"
	"letterc/pkg/platform/httputil"
)

// Engine is the mutation service surface the handler needs.
type Engine interface {
	Preview(ctx context.Context, draft models.MutationDraft) (*models.Preview, error)
	Commit(ctx context.Context, draftID domain.DraftID) (*models.CommitResult, error)
	Abort(ctx context.Context, draftID domain.DraftID) error
}

// Handler handles mutation endpoints.
type Handler struct {
	engine Engine
	logger *slog.Logger
	authMW func(http.Handler) http.Handler
}

func New(engine Engine, logger *slog.Logger, authMW func(http.Handler) http.Handler) *Handler {
	return &Handler{engine: engine, logger: logger, authMW: authMW}
}

// Register mounts the mutation routes. All of them mutate ledger state (or
// protocol state), so the whole subtree requires an authenticated caller.
func (h *Handler) Register(r chi.Router) {
	r.Route("/mutations", func(r chi.Router) {
		r.Use(h.authMW)
		r.Post("/preview", h.handlePreview)
		r.Post("/{draftID}/commit", h.handleCommit)
		r.Post("/{draftID}/abort", h.handleAbort)
	})
}

type previewRequest struct {
	RegionID          string  `json:"region_id"`
	SourceOwnershipID string  `json:"source_ownership_id"`
	SourceParcelID    string  `json:"source_parcel_id,omitempty"`
	TargetOwnerNumber string  `json:"target_owner_number"`
	TargetOwnerName   string  `json:"target_owner_name"`
	TargetAddress     string  `json:"target_address"`
	TargetParcelID    string  `json:"target_parcel_id,omitempty"`
	Area              float64 `json:"area"`
	TransferType      string  `json:"transfer_type"`
	TransferDate      string  `json:"transfer_date,omitempty"`
	Note              string  `json:"note,omitempty"`
}

func (h *Handler) handlePreview(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := middleware.GetRequestID(ctx)

	var req previewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.WarnContext(ctx, "invalid preview request", "request_id", requestID, "error", err.Error())
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	params, err := req.toParams()
	if err != nil {
		h.logger.WarnContext(ctx, "unparseable preview request", "request_id", requestID, "error", err.Error())
		httputil.WriteError(w, err)
		return
	}

	preview, err := h.engine.Preview(ctx, models.NewDraft(params))
	if err != nil {
		h.logger.ErrorContext(ctx, "preview failed", "request_id", requestID, "error", err.Error())
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, preview)
}

// toParams converts the wire request into draft params. Identifier fields are
// parsed strictly; fields the validator owns (owner number, name, area) pass
// through so preview can report them as violations rather than a 400.
func (req previewRequest) toParams() (models.DraftParams, error) {
	var params models.DraftParams

	if req.RegionID == "" {
		return params, dErrors.New(dErrors.CodeBadRequest, "region_id is required")
	}
	regionID, err := domain.ParseRegionID(req.RegionID)
	if err != nil {
		return params, dErrors.New(dErrors.CodeBadRequest, "invalid region_id")
	}
	params.RegionID = regionID

	if req.SourceOwnershipID != "" {
		id, err := domain.ParseOwnershipID(req.SourceOwnershipID)
		if err != nil {
			return params, dErrors.New(dErrors.CodeBadRequest, "invalid source_ownership_id")
		}
		params.SourceOwnershipID = id
	}
	if req.SourceParcelID != "" {
		id, err := domain.ParseParcelID(req.SourceParcelID)
		if err != nil {
			return params, dErrors.New(dErrors.CodeBadRequest, "invalid source_parcel_id")
		}
		params.SourceParcelID = id
	}
	if req.TargetParcelID != "" {
		id, err := domain.ParseParcelID(req.TargetParcelID)
		if err != nil {
			return params, dErrors.New(dErrors.CodeBadRequest, "invalid target_parcel_id")
		}
		params.TargetParcelID = id
	}

	transferType, err := domain.ParseTransferType(req.TransferType)
	if err != nil {
		return params, dErrors.New(dErrors.CodeBadRequest, "invalid transfer_type")
	}
	params.TransferType = transferType

	if req.TransferDate != "" {
		date, err := time.Parse("2006-01-02", req.TransferDate)
		if err != nil {
			return params, dErrors.New(dErrors.CodeBadRequest, "transfer_date must be YYYY-MM-DD")
		}
		params.TransferDate = date
	}

	params.TargetOwnerNumber = domain.OwnerNumber(req.TargetOwnerNumber)
	params.TargetOwnerName = req.TargetOwnerName
	params.TargetAddress = req.TargetAddress
	params.Area = req.Area
	params.Note = req.Note
	return params, nil
}

type commitResponse struct {
	Committed         bool   `json:"committed"`
	JournalEntryID    string `json:"journal_entry_id,omitempty"`
	SourceOwnershipID string `json:"source_ownership_id,omitempty"`
	TargetOwnershipID string `json:"target_ownership_id,omitempty"`
	TargetCreated     bool   `json:"target_created,omitempty"`
	Status            string `json:"status,omitempty"`
}

func (h *Handler) handleCommit(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := middleware.GetRequestID(ctx)

	draftID, err := domain.ParseDraftID(chi.URLParam(r, "draftID"))
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid draft id"))
		return
	}

	result, err := h.engine.Commit(ctx, draftID)
	if err != nil {
		h.logger.WarnContext(ctx, "commit failed",
			"request_id", requestID,
			"draft_id", draftID.String(),
			"error", err.Error(),
		)
		h.writeCommitError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, commitResponse{
		Committed:         true,
		JournalEntryID:    result.JournalEntryID.String(),
		SourceOwnershipID: result.SourceOwnershipID.String(),
		TargetOwnershipID: result.TargetOwnershipID.String(),
		TargetCreated:     result.TargetCreated,
	})
}

// writeCommitError distinguishes "known not committed" from "outcome
// unknown" so the caller knows whether a blind retry is safe.
func (h *Handler) writeCommitError(w http.ResponseWriter, err error) {
	status := "not_committed"
	if dErrors.Retryable(err) && dErrors.HasCode(err, dErrors.CodeUnavailable) {
		status = "unknown"
	}
	httputil.WriteJSON(w, dErrors.ToHTTPStatus(err), struct {
		commitResponse
		Error            string `json:"error"`
		ErrorDescription string `json:"error_description,omitempty"`
	}{
		commitResponse:   commitResponse{Committed: false, Status: status},
		Error:            string(dErrors.CodeOf(err)),
		ErrorDescription: dErrors.Message(err),
	})
}

func (h *Handler) handleAbort(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	draftID, err := domain.ParseDraftID(chi.URLParam(r, "draftID"))
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid draft id"))
		return
	}
	if err := h.engine.Abort(ctx, draftID); err != nil {
		h.logger.WarnContext(ctx, "abort failed",
			"request_id", middleware.GetRequestID(ctx),
			"draft_id", draftID.String(),
			"error", err.Error(),
		)
		httputil.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
