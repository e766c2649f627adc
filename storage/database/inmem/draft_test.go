package inmemdb

import (
	"context"
	"testing"
	"time"

	"github.com/academia/backend/core/schedule"
	"github.com/academia/backend/core/section"
)

func TestDraftStore(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2021, 3, 1, 8, 0, 0, 0, time.UTC)
	nowFunc = func() time.Time { return now }
	defer func() { nowFunc = time.Now }()

	store := NewDraftStore()
	d := section.Draft{ID: "d1", OwnerID: "u1", Draft: schedule.Draft{Slots: []schedule.Slot{{ID: "s1", Day: schedule.Monday, StartTime: "09:00", EndTime: "10:00"}}}}
	if err := store.SaveDraft(ctx, d, time.Hour); err != nil {
		t.Fatalf("SaveDraft() error = %v", err)
	}
	if err := store.SaveDraft(ctx, section.Draft{ID: "forever"}, 0); err != nil {
		t.Fatalf("SaveDraft() error = %v", err)
	}

	// the stored draft is detached from the caller's
	d.Slots[0].StartTime = "11:00"

	got, err := store.GetDraft(ctx, "d1")
	if err != nil {
		t.Fatalf("GetDraft() error = %v", err)
	}
	if got.Slots[0].StartTime != "09:00" {
		t.Errorf("GetDraft().Slots[0].StartTime = %q, want %q", got.Slots[0].StartTime, "09:00")
	}

	if _, err = store.GetDraft(ctx, "lol"); err != section.ErrDraftNotFound {
		t.Errorf("GetDraft(unknown) error = %v, want %v", err, section.ErrDraftNotFound)
	}

	now = now.Add(time.Hour)
	if _, err = store.GetDraft(ctx, "d1"); err != section.ErrDraftNotFound {
		t.Errorf("GetDraft(expired) error = %v, want %v", err, section.ErrDraftNotFound)
	}
	if _, err = store.GetDraft(ctx, "forever"); err != nil {
		t.Errorf("GetDraft(no ttl) error = %v", err)
	}

	if err = store.DeleteDraft(ctx, "forever"); err != nil {
		t.Fatalf("DeleteDraft() error = %v", err)
	}
	if _, err = store.GetDraft(ctx, "forever"); err != section.ErrDraftNotFound {
		t.Errorf("GetDraft(deleted) error = %v, want %v", err, section.ErrDraftNotFound)
	}
}
