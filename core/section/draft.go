package section

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/academia/backend/core"
	"github.com/academia/backend/core/schedule"
)

var (
	newDraftID = func() string { return uuid.New().String() } // mockable

	ErrDraftNotFound = errors.New("draft not found")
	ErrSlotNotFound  = errors.New("slot not found")
)

type (
	// Draft is a schedule being edited across requests before the section is saved.
	Draft struct {
		ID        string    `json:"id"`
		OwnerID   string    `json:"owner_id"`
		SectionID string    `json:"section_id,omitempty"`
		FacultyID string    `json:"faculty_id"`
		RoomID    string    `json:"room_id"`
		CreatedAt time.Time `json:"created_at"` // UTC
		schedule.Draft
	}

	NewDraft struct {
		// SectionID preloads the draft with the schedules of an existing section.
		SectionID string `json:"section_id"`
		FacultyID string `json:"faculty_id" validate:"required"`
		RoomID    string `json:"room_id" validate:"required"`
	}

	// DraftStore keeps drafts until they expire.
	DraftStore interface {
		// GetDraft returns ErrDraftNotFound if there is no draft with the given id or it expired.
		GetDraft(ctx context.Context, id string) (Draft, error)
		SaveDraft(ctx context.Context, d Draft, ttl time.Duration) error
		DeleteDraft(ctx context.Context, id string) error
	}
)

func (nd *NewDraft) Clean() {
	nd.SectionID = core.CleanString(nd.SectionID)
	nd.FacultyID = core.CleanString(nd.FacultyID)
	nd.RoomID = core.CleanString(nd.RoomID)
}

func (svc *Service) StartDraft(ctx context.Context, ownerID string, nd NewDraft) (Draft, error) {
	d := Draft{
		ID:        newDraftID(),
		OwnerID:   ownerID,
		SectionID: nd.SectionID,
		FacultyID: nd.FacultyID,
		RoomID:    nd.RoomID,
		CreatedAt: NowFunc().UTC(),
	}
	if nd.SectionID != "" {
		sec, err := svc.repo.GetSection(ctx, nd.SectionID)
		if err != nil {
			if errors.Cause(err) == ErrNotFound {
				return Draft{}, core.NewFieldValidationError("section_id", ErrNotFound)
			}
			return Draft{}, errors.Wrap(err, "finding section")
		}
		d.Slots = append(d.Slots, sec.Schedules...)
	}
	d.Slots = append([]schedule.Slot{}, d.Slots...)

	if err := svc.drafts.SaveDraft(ctx, d, svc.draftTTL); err != nil {
		return Draft{}, errors.Wrap(err, "saving draft")
	}
	return d, nil
}

// GetDraft returns the draft with the given id if it belongs to ownerID.
func (svc *Service) GetDraft(ctx context.Context, ownerID, id string) (Draft, error) {
	d, err := svc.drafts.GetDraft(ctx, id)
	if err != nil {
		return Draft{}, err
	}
	if d.OwnerID != ownerID {
		return Draft{}, ErrDraftNotFound
	}
	return d, nil
}

// StageSlot adds s to the draft if it conflicts with neither the staged slots
// nor the committed slots of the draft's faculty member and room.
func (svc *Service) StageSlot(ctx context.Context, ownerID, id string, s schedule.Slot) (Draft, schedule.Slot, schedule.Result, error) {
	d, err := svc.GetDraft(ctx, ownerID, id)
	if err != nil {
		return Draft{}, schedule.Slot{}, schedule.Result{}, err
	}

	res, err := svc.ValidateTimeSlot(ctx, TimeSlotRequest{
		Candidate: schedule.Candidate{
			Day:       s.Day,
			StartTime: s.StartTime,
			EndTime:   s.EndTime,
			FacultyID: d.FacultyID,
			RoomID:    d.RoomID,
		},
		Staged:    d.Slots,
		SectionID: d.SectionID,
	})
	if err != nil || !res.OK {
		return d, schedule.Slot{}, res, err
	}

	s.Day = normalizeDay(string(s.Day))
	staged, res := d.Add(s)
	if !res.OK {
		return d, schedule.Slot{}, res, nil
	}
	if err = svc.drafts.SaveDraft(ctx, d, svc.draftTTL); err != nil {
		return Draft{}, schedule.Slot{}, schedule.Result{}, errors.Wrap(err, "saving draft")
	}
	return d, staged, res, nil
}

// UpdateStagedSlot replaces the staged slot slotID with s, checking s like StageSlot does
// but ignoring the slot being replaced.
func (svc *Service) UpdateStagedSlot(ctx context.Context, ownerID, id, slotID string, s schedule.Slot) (Draft, schedule.Result, error) {
	d, err := svc.GetDraft(ctx, ownerID, id)
	if err != nil {
		return Draft{}, schedule.Result{}, err
	}
	others := make([]schedule.Slot, 0, len(d.Slots))
	for _, staged := range d.Slots {
		if staged.ID != slotID {
			others = append(others, staged)
		}
	}
	if len(others) == len(d.Slots) {
		return Draft{}, schedule.Result{}, ErrSlotNotFound
	}

	res, err := svc.ValidateTimeSlot(ctx, TimeSlotRequest{
		Candidate: schedule.Candidate{
			Day:       s.Day,
			StartTime: s.StartTime,
			EndTime:   s.EndTime,
			FacultyID: d.FacultyID,
			RoomID:    d.RoomID,
		},
		Staged:    others,
		SectionID: d.SectionID,
	})
	if err != nil || !res.OK {
		return d, res, err
	}

	s.Day = normalizeDay(string(s.Day))
	if res, _ = d.Update(slotID, s); !res.OK {
		return d, res, nil
	}
	if err = svc.drafts.SaveDraft(ctx, d, svc.draftTTL); err != nil {
		return Draft{}, schedule.Result{}, errors.Wrap(err, "saving draft")
	}
	return d, res, nil
}

func (svc *Service) UnstageSlot(ctx context.Context, ownerID, id, slotID string) (Draft, error) {
	d, err := svc.GetDraft(ctx, ownerID, id)
	if err != nil {
		return Draft{}, err
	}
	if !d.Remove(slotID) {
		return Draft{}, ErrSlotNotFound
	}
	if err = svc.drafts.SaveDraft(ctx, d, svc.draftTTL); err != nil {
		return Draft{}, errors.Wrap(err, "saving draft")
	}
	return d, nil
}

func (svc *Service) DiscardDraft(ctx context.Context, ownerID, id string) error {
	if _, err := svc.GetDraft(ctx, ownerID, id); err != nil {
		return err
	}
	return svc.drafts.DeleteDraft(ctx, id)
}
