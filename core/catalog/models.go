package catalog

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/academia/backend/core"
)

type Course struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Code        string    `json:"code"`
	CreditHours int       `json:"credit_hours"`
	CreatedAt   time.Time `json:"created_at"` // UTC
	UpdatedAt   time.Time `json:"updated_at"` // UTC
}

// Room is a classroom. A MaxCapacity of 0 means unlimited.
type Room struct {
	ID          string    `json:"id"`
	No          string    `json:"no"`
	MaxCapacity int       `json:"max_capacity"`
	CreatedAt   time.Time `json:"created_at"` // UTC
	UpdatedAt   time.Time `json:"updated_at"` // UTC
}

type CourseInput struct {
	Name        string `json:"name" validate:"required"`
	Code        string `json:"code" validate:"required,alphanum_"`
	CreditHours int    `json:"credit_hours" validate:"min=0,max=30"`
}

// Validate cleans and validates ci. excludeID is the course being updated, if any.
func (ci *CourseInput) Validate(ctx context.Context, validate *validator.Validate, svc *Service, excludeID string) error {
	ci.Name = core.CleanString(ci.Name)
	ci.Code = core.CleanString(ci.Code)

	if err := validate.Struct(ci); err != nil {
		return err
	}
	return svc.checkCourseCode(ctx, ci.Code, excludeID)
}

type RoomInput struct {
	No          string `json:"no" validate:"required"`
	MaxCapacity int    `json:"max_capacity" validate:"min=0"`
}

// Validate cleans and validates ri. excludeID is the room being updated, if any.
func (ri *RoomInput) Validate(ctx context.Context, validate *validator.Validate, svc *Service, excludeID string) error {
	ri.No = core.CleanString(ri.No)

	if err := validate.Struct(ri); err != nil {
		return err
	}
	return svc.checkRoomNo(ctx, ri.No, excludeID)
}

type QueryFilter struct {
	Search string `query:"search"`
}

func (qf *QueryFilter) Clean() {
	qf.Search = core.CleanString(qf.Search)
}
