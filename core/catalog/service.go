package catalog

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/academia/backend/core"
)

var (
	NowFunc = time.Now // mockable

	// errors
	ErrCourseNotFound   = errors.New("course not found")
	ErrRoomNotFound     = errors.New("room not found")
	ErrCourseCodeExists = errors.New("Course with this code already exists")
	ErrRoomNoExists     = errors.New("Room with this number already exists")
)

type (
	Repository interface {
		CheckCourseCodeUniqueness(ctx context.Context, code, excludeID string) error
		CreateCourse(ctx context.Context, c Course) (Course, error)
		QueryCourses(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering) ([]Course, error)
		GetCourse(ctx context.Context, id string) (Course, error)
		UpdateCourse(ctx context.Context, c Course) (Course, error)
		DeleteCourses(ctx context.Context, ids ...string) error

		CheckRoomNoUniqueness(ctx context.Context, no, excludeID string) error
		CreateRoom(ctx context.Context, r Room) (Room, error)
		QueryRooms(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering) ([]Room, error)
		GetRoom(ctx context.Context, id string) (Room, error)
		UpdateRoom(ctx context.Context, r Room) (Room, error)
		DeleteRooms(ctx context.Context, ids ...string) error
	}

	// Service manages the courses and rooms sections are built from.
	Service struct {
		repo Repository
	}
)

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (svc *Service) checkCourseCode(ctx context.Context, code, excludeID string) error {
	if err := svc.repo.CheckCourseCodeUniqueness(ctx, code, excludeID); err != nil {
		if errors.Cause(err) == ErrCourseCodeExists {
			return core.NewFieldValidationError("code", ErrCourseCodeExists)
		}
		return errors.Wrap(err, "checking course code uniqueness")
	}
	return nil
}

func (svc *Service) checkRoomNo(ctx context.Context, no, excludeID string) error {
	if err := svc.repo.CheckRoomNoUniqueness(ctx, no, excludeID); err != nil {
		if errors.Cause(err) == ErrRoomNoExists {
			return core.NewFieldValidationError("no", ErrRoomNoExists)
		}
		return errors.Wrap(err, "checking room number uniqueness")
	}
	return nil
}

// Courses

func (svc *Service) CreateCourse(ctx context.Context, ci CourseInput) (Course, error) {
	now := NowFunc().UTC()
	return svc.repo.CreateCourse(ctx, Course{
		Name:        ci.Name,
		Code:        ci.Code,
		CreditHours: ci.CreditHours,
		CreatedAt:   now,
		UpdatedAt:   now,
	})
}

func (svc *Service) QueryCourses(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering) ([]Course, error) {
	return svc.repo.QueryCourses(ctx, filter, ordering)
}

func (svc *Service) GetCourse(ctx context.Context, id string) (Course, error) {
	return svc.repo.GetCourse(ctx, id)
}

func (svc *Service) UpdateCourse(ctx context.Context, c Course, ci CourseInput) (Course, error) {
	c.Name = ci.Name
	c.Code = ci.Code
	c.CreditHours = ci.CreditHours
	c.UpdatedAt = NowFunc().UTC()
	return svc.repo.UpdateCourse(ctx, c)
}

func (svc *Service) DeleteCourses(ctx context.Context, ids ...string) error {
	return svc.repo.DeleteCourses(ctx, ids...)
}

// Rooms

func (svc *Service) CreateRoom(ctx context.Context, ri RoomInput) (Room, error) {
	now := NowFunc().UTC()
	return svc.repo.CreateRoom(ctx, Room{
		No:          ri.No,
		MaxCapacity: ri.MaxCapacity,
		CreatedAt:   now,
		UpdatedAt:   now,
	})
}

func (svc *Service) QueryRooms(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering) ([]Room, error) {
	return svc.repo.QueryRooms(ctx, filter, ordering)
}

func (svc *Service) GetRoom(ctx context.Context, id string) (Room, error) {
	return svc.repo.GetRoom(ctx, id)
}

func (svc *Service) UpdateRoom(ctx context.Context, r Room, ri RoomInput) (Room, error) {
	r.No = ri.No
	r.MaxCapacity = ri.MaxCapacity
	r.UpdatedAt = NowFunc().UTC()
	return svc.repo.UpdateRoom(ctx, r)
}

func (svc *Service) DeleteRooms(ctx context.Context, ids ...string) error {
	return svc.repo.DeleteRooms(ctx, ids...)
}
