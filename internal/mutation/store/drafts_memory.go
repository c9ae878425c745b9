// Package store holds previewed mutation drafts server-side so the commit
// call can enforce the DRAFT→PREVIEWED→COMMITTED machine without trusting the
// client. Drafts are ephemeral UI state: memory-only, TTL-bounded, and not
// durable across restarts (an expired or lost draft just means re-previewing).
package store

import (
	"context"
	"fmt"
	"sync"
	"time"

	"letterc/internal/mutation/models"
	domain "letterc/pkg/domain"
	"letterc/pkg/platform/sentinel"
)

// Error contract:
// - ErrNotFound: unknown draft id
// - ErrExpired: previewed draft outlived its TTL
// - ErrAlreadyUsed: draft already committed
// - ErrInvalidState: draft aborted, or not in the state the call requires

// draftEntry pairs the immutable draft with its mutable protocol state.
type draftEntry struct {
	draft      models.MutationDraft
	state      models.DraftState
	preview    models.Preview
	previewedAt time.Time
}

// DraftStore keeps previewed drafts until commit, abort, or expiry.
type DraftStore struct {
	mu     sync.Mutex
	drafts map[domain.DraftID]*draftEntry
	ttl    time.Duration
	now    func() time.Time
}

func NewDraftStore(ttl time.Duration) *DraftStore {
	return &DraftStore{
		drafts: make(map[domain.DraftID]*draftEntry),
		ttl:    ttl,
		now:    time.Now,
	}
}

// SaveDraft records a draft that failed validation, in DRAFT state. Kept so
// a commit attempt on it fails with "never previewed" rather than "unknown".
func (s *DraftStore) SaveDraft(_ context.Context, draft models.MutationDraft) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.drafts[draft.ID] = &draftEntry{
		draft:       draft,
		state:       models.StateDraft,
		previewedAt: s.now(),
	}
	return nil
}

// SavePreviewed records a draft that passed validation, in PREVIEWED state.
// Re-previewing overwrites: the latest preview is the one that counts.
func (s *DraftStore) SavePreviewed(_ context.Context, draft models.MutationDraft, preview models.Preview) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.drafts[draft.ID] = &draftEntry{
		draft:       draft,
		state:       models.StatePreviewed,
		preview:     preview,
		previewedAt: s.now(),
	}
	return nil
}

// TakeForCommit consumes a previewed, unexpired draft: the entry moves to
// COMMITTING under the store mutex, so exactly one caller wins a race on the
// same draft. The caller settles the outcome with MarkCommitted on success or
// Release on a commit that is known to have failed.
func (s *DraftStore) TakeForCommit(_ context.Context, id domain.DraftID) (models.MutationDraft, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.drafts[id]
	if !ok {
		return models.MutationDraft{}, fmt.Errorf("draft not found: %w", sentinel.ErrNotFound)
	}
	switch entry.state {
	case models.StateCommitted:
		return models.MutationDraft{}, fmt.Errorf("draft already committed: %w", sentinel.ErrAlreadyUsed)
	case models.StateCommitting:
		return models.MutationDraft{}, fmt.Errorf("commit already in progress: %w", sentinel.ErrInvalidState)
	case models.StateAborted:
		return models.MutationDraft{}, fmt.Errorf("draft aborted: %w", sentinel.ErrInvalidState)
	case models.StatePreviewed:
		// fall through
	default:
		return models.MutationDraft{}, fmt.Errorf("draft was never previewed: %w", sentinel.ErrInvalidState)
	}
	if s.ttl > 0 && s.now().Sub(entry.previewedAt) > s.ttl {
		return models.MutationDraft{}, fmt.Errorf("previewed draft expired: %w", sentinel.ErrExpired)
	}
	entry.state = models.StateCommitting
	return entry.draft, nil
}

// Release returns an in-flight draft to PREVIEWED after a commit that is
// known not to have applied. Not for unknown outcomes: those leave the draft
// COMMITTING so a blind retry cannot double-apply.
func (s *DraftStore) Release(_ context.Context, id domain.DraftID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.drafts[id]
	if !ok {
		return fmt.Errorf("draft not found: %w", sentinel.ErrNotFound)
	}
	if entry.state != models.StateCommitting {
		return fmt.Errorf("draft has no commit in flight: %w", sentinel.ErrInvalidState)
	}
	entry.state = models.StatePreviewed
	return nil
}

// MarkCommitted finalizes a draft after a successful commit. The entry is
// kept so a duplicate commit call fails with ErrAlreadyUsed instead of
// re-running the transfer.
func (s *DraftStore) MarkCommitted(_ context.Context, id domain.DraftID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.drafts[id]
	if !ok {
		return fmt.Errorf("draft not found: %w", sentinel.ErrNotFound)
	}
	entry.state = models.StateCommitted
	return nil
}

// Abort cancels a draft. Allowed from any state before commit.
func (s *DraftStore) Abort(_ context.Context, id domain.DraftID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.drafts[id]
	if !ok {
		return fmt.Errorf("draft not found: %w", sentinel.ErrNotFound)
	}
	if entry.state == models.StateCommitted {
		return fmt.Errorf("draft already committed: %w", sentinel.ErrInvalidState)
	}
	if entry.state == models.StateCommitting {
		return fmt.Errorf("commit in progress: %w", sentinel.ErrInvalidState)
	}
	entry.state = models.StateAborted
	return nil
}

// Sweep drops expired and terminal drafts. Called periodically from main.
func (s *DraftStore) Sweep() {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	for id, entry := range s.drafts {
		expired := s.ttl > 0 && now.Sub(entry.previewedAt) > 2*s.ttl
		terminal := entry.state == models.StateCommitted || entry.state == models.StateAborted
		if expired || (terminal && now.Sub(entry.previewedAt) > s.ttl) {
			delete(s.drafts, id)
		}
	}
}

// SetClock overrides the time source. Test hook.
func (s *DraftStore) SetClock(now func() time.Time) {
	s.now = now
}
