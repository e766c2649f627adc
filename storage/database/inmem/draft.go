package inmemdb

import (
	"context"
	"sync"
	"time"

	"github.com/academia/backend/core/schedule"
	"github.com/academia/backend/core/section"
)

var nowFunc = time.Now // mockable

type draftEntry struct {
	draft     section.Draft
	expiresAt time.Time
}

// DraftStore keeps schedule drafts in memory. Expired drafts are dropped when read.
type DraftStore struct {
	mu     sync.Mutex
	drafts map[string]draftEntry
}

var _ section.DraftStore = (*DraftStore)(nil) // interface compliance check

func NewDraftStore() *DraftStore {
	return &DraftStore{drafts: make(map[string]draftEntry)}
}

func (s *DraftStore) GetDraft(_ context.Context, id string) (section.Draft, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.drafts[id]
	if !ok {
		return section.Draft{}, section.ErrDraftNotFound
	}
	if !entry.expiresAt.IsZero() && !nowFunc().Before(entry.expiresAt) {
		delete(s.drafts, id)
		return section.Draft{}, section.ErrDraftNotFound
	}
	d := entry.draft
	d.Slots = append([]schedule.Slot{}, d.Slots...)
	return d, nil
}

// SaveDraft stores d for ttl. A ttl <= 0 keeps it until deleted.
func (s *DraftStore) SaveDraft(_ context.Context, d section.Draft, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var expiresAt time.Time
	if ttl > 0 {
		expiresAt = nowFunc().Add(ttl)
	}
	d.Slots = append([]schedule.Slot{}, d.Slots...)
	s.drafts[d.ID] = draftEntry{draft: d, expiresAt: expiresAt}
	return nil
}

func (s *DraftStore) DeleteDraft(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.drafts, id)
	return nil
}
