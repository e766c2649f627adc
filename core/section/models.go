package section

import (
	"context"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/academia/backend/core"
	"github.com/academia/backend/core/schedule"
)

// Section is a class of a course taught by one faculty member in one room on weekly slots.
type Section struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	Code      string          `json:"code"`
	CourseID  string          `json:"course_id"`
	FacultyID string          `json:"faculty_id"`
	RoomID    string          `json:"room_id"`
	Schedules []schedule.Slot `json:"schedules"`
	CreatedAt time.Time       `json:"created_at"` // UTC
	UpdatedAt time.Time       `json:"updated_at"` // UTC
}

type ScheduleInput struct {
	Day       string `json:"day" validate:"omitempty,weekday"`
	StartTime string `json:"start_time" validate:"omitempty,clock"`
	EndTime   string `json:"end_time" validate:"omitempty,clock"`
}

func (si ScheduleInput) Slot() schedule.Slot {
	return schedule.Slot{
		Day:       normalizeDay(si.Day),
		StartTime: strings.TrimSpace(si.StartTime),
		EndTime:   strings.TrimSpace(si.EndTime),
	}
}

// SectionInput holds everything needed to create a Section or replace an existing one.
type SectionInput struct {
	Name      string          `json:"name" validate:"required"`
	Code      string          `json:"code" validate:"required,alphanum_"`
	CourseID  string          `json:"course_id" validate:"required"`
	FacultyID string          `json:"faculty_id" validate:"required"`
	RoomID    string          `json:"room_id" validate:"required"`
	Schedules []ScheduleInput `json:"schedules" validate:"required,min=1,dive"`
}

// Validate cleans and validates si. excludeID is the section being updated, if any.
func (si *SectionInput) Validate(ctx context.Context, validate *validator.Validate, svc *Service, excludeID string) error {
	si.Name = core.CleanString(si.Name)
	si.Code = core.CleanString(si.Code)
	si.CourseID = core.CleanString(si.CourseID)
	si.FacultyID = core.CleanString(si.FacultyID)
	si.RoomID = core.CleanString(si.RoomID)
	for i := range si.Schedules {
		si.Schedules[i].Day = string(normalizeDay(si.Schedules[i].Day))
	}

	if err := validate.Struct(si); err != nil {
		return err
	}
	return svc.CheckCodeUniqueness(ctx, si.Code, excludeID)
}

func (si SectionInput) slots() []schedule.Slot {
	slots := make([]schedule.Slot, 0, len(si.Schedules))
	for _, s := range si.Schedules {
		slots = append(slots, s.Slot())
	}
	return slots
}

// TimeSlotRequest asks whether a slot can be added to a section being edited.
type TimeSlotRequest struct {
	schedule.Candidate
	// Staged are the slots already added in the same editing session.
	Staged []schedule.Slot `json:"staged"`
	// SectionID is the section being edited, if any. Its committed slots are ignored.
	SectionID string `json:"section_id"`
}

type QueryFilter struct {
	Search    string   `query:"search"`
	CourseID  string   `query:"course_id"`
	FacultyID string   `query:"faculty_id"`
	RoomID    string   `query:"room_id"`
	Day       string   `query:"day"`
	IDs       []string `query:"id"`
}

func (qf *QueryFilter) Clean() {
	qf.Search = core.CleanString(qf.Search)
	qf.Day = string(normalizeDay(qf.Day))
}

// normalizeDay upper-cases known days and leaves anything else untouched for validation to reject.
func normalizeDay(d string) schedule.Day {
	if day, err := schedule.ParseDay(d); err == nil {
		return day
	}
	return schedule.Day(strings.TrimSpace(d))
}
