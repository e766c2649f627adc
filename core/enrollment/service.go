// Package enrollment registers students into sections.
package enrollment

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/academia/backend/core"
	"github.com/academia/backend/core/catalog"
	"github.com/academia/backend/core/schedule"
	"github.com/academia/backend/core/section"
)

var (
	NowFunc = time.Now // mockable

	// errors
	ErrNotFound        = errors.New("enrollment not found")
	ErrAlreadyEnrolled = errors.New("Already enrolled in this section")
	ErrSectionFull     = errors.New("Section is full")
)

type Enrollment struct {
	StudentID string    `json:"student_id"`
	SectionID string    `json:"section_id"`
	CreatedAt time.Time `json:"created_at"` // UTC
}

type NewEnrollment struct {
	SectionID string `json:"section_id" validate:"required"`
}

type (
	Repository interface {
		// CreateEnrollment returns ErrAlreadyEnrolled if the student already attends the section.
		CreateEnrollment(ctx context.Context, e Enrollment) (Enrollment, error)
		DeleteEnrollment(ctx context.Context, studentID, sectionID string) error
		QueryEnrollments(ctx context.Context, studentID string) ([]Enrollment, error)
		CountSectionEnrollments(ctx context.Context, sectionID string) (int, error)
	}

	Service struct {
		repo       Repository
		sectionSvc *section.Service
		catalogSvc *catalog.Service
	}
)

func NewService(repo Repository, sectionSvc *section.Service, catalogSvc *catalog.Service) *Service {
	return &Service{repo: repo, sectionSvc: sectionSvc, catalogSvc: catalogSvc}
}

// Enroll registers studentID into sectionID. It fails when the student already attends it,
// when the room is full or when one of its slots overlaps a slot of the student's other sections.
func (svc *Service) Enroll(ctx context.Context, studentID, sectionID string) (Enrollment, error) {
	sec, err := svc.sectionSvc.GetByID(ctx, sectionID)
	if err != nil {
		if errors.Cause(err) == section.ErrNotFound {
			return Enrollment{}, core.NewFieldValidationError("section_id", section.ErrNotFound)
		}
		return Enrollment{}, errors.Wrap(err, "finding section")
	}

	enrolled, err := svc.MySections(ctx, studentID)
	if err != nil {
		return Enrollment{}, err
	}
	for _, s := range enrolled {
		if s.ID == sec.ID {
			return Enrollment{}, core.NewFieldValidationError("section_id", ErrAlreadyEnrolled)
		}
	}

	if err = svc.checkCapacity(ctx, sec); err != nil {
		return Enrollment{}, err
	}

	var enrolledSlots []schedule.Slot
	for _, s := range enrolled {
		enrolledSlots = append(enrolledSlots, s.Schedules...)
	}
	for _, slot := range sec.Schedules {
		if res := schedule.ValidateLocalSectionConflict(slot, enrolledSlots); !res.OK {
			return Enrollment{}, core.NewValidationError(res.Err(), core.FieldError{Field: "section_id", Error: res.Error})
		}
	}

	e, err := svc.repo.CreateEnrollment(ctx, Enrollment{
		StudentID: studentID,
		SectionID: sec.ID,
		CreatedAt: NowFunc().UTC(),
	})
	if err != nil {
		if errors.Cause(err) == ErrAlreadyEnrolled {
			return Enrollment{}, core.NewFieldValidationError("section_id", ErrAlreadyEnrolled)
		}
		return Enrollment{}, errors.Wrap(err, "creating enrollment")
	}
	return e, nil
}

func (svc *Service) checkCapacity(ctx context.Context, sec section.Section) error {
	room, err := svc.catalogSvc.GetRoom(ctx, sec.RoomID)
	if err != nil {
		return errors.Wrap(err, "finding room")
	}
	if room.MaxCapacity <= 0 {
		return nil
	}
	count, err := svc.repo.CountSectionEnrollments(ctx, sec.ID)
	if err != nil {
		return errors.Wrap(err, "counting enrollments")
	}
	if count >= room.MaxCapacity {
		return core.NewFieldValidationError("section_id", ErrSectionFull)
	}
	return nil
}

func (svc *Service) Drop(ctx context.Context, studentID, sectionID string) error {
	return svc.repo.DeleteEnrollment(ctx, studentID, sectionID)
}

// MySections returns the sections studentID is enrolled in.
func (svc *Service) MySections(ctx context.Context, studentID string) ([]section.Section, error) {
	enrollments, err := svc.repo.QueryEnrollments(ctx, studentID)
	if err != nil {
		return nil, errors.Wrap(err, "querying enrollments")
	}
	if len(enrollments) == 0 {
		return []section.Section{}, nil
	}
	ids := make([]string, 0, len(enrollments))
	for _, e := range enrollments {
		ids = append(ids, e.SectionID)
	}
	secs, err := svc.sectionSvc.Query(ctx, &section.QueryFilter{IDs: ids}, nil)
	if err != nil {
		return nil, errors.Wrap(err, "querying sections")
	}
	return secs, nil
}
