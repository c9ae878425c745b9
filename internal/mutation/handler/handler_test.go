package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"letterc/internal/journal"
	mutationservice "letterc/internal/mutation/service"
	draftstore "letterc/internal/mutation/store"
	ownershipmodels "letterc/internal/ownership/models"
	ownershipstore "letterc/internal/ownership/store"
	domain "letterc/pkg/domain"
)

// MutationHandlerSuite drives the HTTP surface against a real engine over
// memory stores; handler tests only assert HTTP concerns.
type MutationHandlerSuite struct {
	suite.Suite
	router    http.Handler
	ownership *ownershipstore.InMemory
	regionID  domain.RegionID
	sourceID  domain.OwnershipID
}

func (s *MutationHandlerSuite) SetupTest() {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	s.ownership = ownershipstore.NewInMemory()
	s.regionID = domain.RegionID(uuid.New())

	source := &ownershipmodels.OwnershipRecord{
		ID:          domain.NewOwnershipID(),
		RegionID:    s.regionID,
		OwnerNumber: domain.OwnerNumber("C.10"),
		OwnerName:   "Budi",
	}
	s.sourceID = source.ID
	err := s.ownership.CreateWithParcel(context.Background(), source, &ownershipmodels.ParcelRecord{
		ID:               domain.NewParcelID(),
		OwnershipID:      source.ID,
		AreaSquareMeters: 500,
	})
	s.Require().NoError(err)

	engine := mutationservice.NewEngine(
		s.ownership,
		journal.NewInMemory(),
		draftstore.NewDraftStore(15*time.Minute),
		mutationservice.NewShardedTx(),
		journal.NopPublisher{},
		nil,
		logger,
	)

	passthrough := func(next http.Handler) http.Handler { return next }
	h := New(engine, logger, passthrough)

	r := chi.NewRouter()
	h.Register(r)
	s.router = r
}

func TestMutationHandlerSuite(t *testing.T) {
	suite.Run(t, new(MutationHandlerSuite))
}

func (s *MutationHandlerSuite) post(path string, body any) *httptest.ResponseRecorder {
	var reader io.Reader
	if raw, ok := body.(string); ok {
		reader = bytes.NewReader([]byte(raw))
	} else if body != nil {
		encoded, err := json.Marshal(body)
		s.Require().NoError(err)
		reader = bytes.NewReader(encoded)
	}
	req := httptest.NewRequest(http.MethodPost, path, reader)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func (s *MutationHandlerSuite) previewBody() map[string]any {
	return map[string]any{
		"region_id":           s.regionID.String(),
		"source_ownership_id": s.sourceID.String(),
		"target_owner_number": "C.99",
		"target_owner_name":   "Siti",
		"area":                200,
		"transfer_type":       "sale",
	}
}

// previewDraftID runs a valid preview and returns the minted draft id.
func (s *MutationHandlerSuite) previewDraftID() string {
	rec := s.post("/mutations/preview", s.previewBody())
	s.Require().Equal(http.StatusOK, rec.Code)
	var out struct {
		DraftID string `json:"draft_id"`
		Valid   bool   `json:"valid"`
	}
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &out))
	s.Require().True(out.Valid)
	return out.DraftID
}

func (s *MutationHandlerSuite) TestPreview() {
	s.Run("valid draft returns projections", func() {
		rec := s.post("/mutations/preview", s.previewBody())
		s.Require().Equal(http.StatusOK, rec.Code)

		var out struct {
			DraftID             string  `json:"draft_id"`
			Valid               bool    `json:"valid"`
			ProjectedSourceArea float64 `json:"projected_source_area"`
			ProjectedTargetArea float64 `json:"projected_target_area"`
			TargetIsNew         bool    `json:"target_is_new"`
		}
		s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &out))
		s.True(out.Valid)
		s.NotEmpty(out.DraftID)
		s.InDelta(300, out.ProjectedSourceArea, 1e-9)
		s.InDelta(200, out.ProjectedTargetArea, 1e-9)
		s.True(out.TargetIsNew)
	})

	s.Run("violations come back as 200 with valid=false", func() {
		body := s.previewBody()
		body["area"] = 9999
		rec := s.post("/mutations/preview", body)
		s.Require().Equal(http.StatusOK, rec.Code)

		var out struct {
			Valid      bool `json:"valid"`
			Violations []struct {
				Code string `json:"code"`
			} `json:"violations"`
		}
		s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &out))
		s.False(out.Valid)
		s.Require().Len(out.Violations, 1)
		s.Equal("InsufficientStock", out.Violations[0].Code)
	})

	s.Run("malformed json is a 400", func() {
		rec := s.post("/mutations/preview", "{not json")
		s.Equal(http.StatusBadRequest, rec.Code)
	})

	s.Run("missing region_id is a 400", func() {
		body := s.previewBody()
		delete(body, "region_id")
		rec := s.post("/mutations/preview", body)
		s.Equal(http.StatusBadRequest, rec.Code)
	})

	s.Run("unknown transfer_type is a 400", func() {
		body := s.previewBody()
		body["transfer_type"] = "lease"
		rec := s.post("/mutations/preview", body)
		s.Equal(http.StatusBadRequest, rec.Code)
	})

	s.Run("malformed transfer_date is a 400", func() {
		body := s.previewBody()
		body["transfer_date"] = "12/31/2025"
		rec := s.post("/mutations/preview", body)
		s.Equal(http.StatusBadRequest, rec.Code)
	})
}

func (s *MutationHandlerSuite) TestCommit() {
	s.Run("previewed draft commits", func() {
		draftID := s.previewDraftID()
		rec := s.post(fmt.Sprintf("/mutations/%s/commit", draftID), nil)
		s.Require().Equal(http.StatusOK, rec.Code)

		var out struct {
			Committed         bool   `json:"committed"`
			JournalEntryID    string `json:"journal_entry_id"`
			TargetOwnershipID string `json:"target_ownership_id"`
			TargetCreated     bool   `json:"target_created"`
		}
		s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &out))
		s.True(out.Committed)
		s.NotEmpty(out.JournalEntryID)
		s.NotEmpty(out.TargetOwnershipID)
		s.True(out.TargetCreated)
	})

	s.Run("second commit of the same draft is a conflict", func() {
		draftID := s.previewDraftID()
		rec := s.post(fmt.Sprintf("/mutations/%s/commit", draftID), nil)
		s.Require().Equal(http.StatusOK, rec.Code)

		rec = s.post(fmt.Sprintf("/mutations/%s/commit", draftID), nil)
		s.Equal(http.StatusUnprocessableEntity, rec.Code)

		var out struct {
			Committed bool   `json:"committed"`
			Status    string `json:"status"`
			Error     string `json:"error"`
		}
		s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &out))
		s.False(out.Committed)
		s.Equal("not_committed", out.Status)
		s.NotEmpty(out.Error)
	})

	s.Run("unknown draft is a 404", func() {
		rec := s.post(fmt.Sprintf("/mutations/%s/commit", uuid.NewString()), nil)
		s.Equal(http.StatusNotFound, rec.Code)
	})

	s.Run("malformed draft id is a 400", func() {
		rec := s.post("/mutations/not-a-uuid/commit", nil)
		s.Equal(http.StatusBadRequest, rec.Code)
	})
}

func (s *MutationHandlerSuite) TestAbort() {
	s.Run("previewed draft aborts with no content", func() {
		draftID := s.previewDraftID()
		rec := s.post(fmt.Sprintf("/mutations/%s/abort", draftID), nil)
		s.Equal(http.StatusNoContent, rec.Code)

		rec = s.post(fmt.Sprintf("/mutations/%s/commit", draftID), nil)
		s.Equal(http.StatusUnprocessableEntity, rec.Code)
	})

	s.Run("unknown draft is a 404", func() {
		rec := s.post(fmt.Sprintf("/mutations/%s/abort", uuid.NewString()), nil)
		s.Equal(http.StatusNotFound, rec.Code)
	})
}
