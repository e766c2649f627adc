package section

import (
	"context"
	"fmt"
	"time"

	"github.com/pkg/errors"

	"github.com/academia/backend/core"
	"github.com/academia/backend/core/catalog"
	"github.com/academia/backend/core/schedule"
	"github.com/academia/backend/core/user"
)

var (
	NowFunc = time.Now // mockable

	// errors
	ErrNotFound        = errors.New("section not found")
	ErrCodeExists      = errors.New("Section with this code already exists")
	ErrFacultyNotFound = errors.New("faculty not found")
	ErrInvalidDay      = errors.New("day must be a day of the week")
)

type (
	Repository interface {
		CheckCodeUniqueness(ctx context.Context, code, excludeID string) error
		// CreateSection stores sec and its schedules, assigning IDs to both.
		CreateSection(ctx context.Context, sec Section) (Section, error)
		// UpdateSection stores sec, replacing all of its schedules.
		UpdateSection(ctx context.Context, sec Section) (Section, error)
		GetSection(ctx context.Context, id string) (Section, error)
		QuerySections(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering) ([]Section, error)
		DeleteSections(ctx context.Context, ids ...string) error
		// QuerySlotsByFaculty returns the slots of every section taught by facultyID, but excludeSectionID.
		QuerySlotsByFaculty(ctx context.Context, facultyID, excludeSectionID string) ([]schedule.Slot, error)
		// QuerySlotsByRoom returns the slots of every section held in roomID, but excludeSectionID.
		QuerySlotsByRoom(ctx context.Context, roomID, excludeSectionID string) ([]schedule.Slot, error)
	}

	Service struct {
		repo       Repository
		drafts     DraftStore
		catalogSvc *catalog.Service
		usrSvc     user.Service
		mailSvc    core.EmailService
		draftTTL   time.Duration
	}
)

func NewService(
	repo Repository,
	drafts DraftStore,
	catalogSvc *catalog.Service,
	usrSvc user.Service,
	mailSvc core.EmailService,
	conf *core.Config,
) *Service {
	return &Service{
		repo:       repo,
		drafts:     drafts,
		catalogSvc: catalogSvc,
		usrSvc:     usrSvc,
		mailSvc:    mailSvc,
		draftTTL:   conf.Redis.DraftTTL,
	}
}

func (svc *Service) CheckCodeUniqueness(ctx context.Context, code, excludeID string) error {
	if err := svc.repo.CheckCodeUniqueness(ctx, code, excludeID); err != nil {
		if errors.Cause(err) == ErrCodeExists {
			return core.NewFieldValidationError("code", ErrCodeExists)
		}
		return errors.Wrap(err, "checking section code uniqueness")
	}
	return nil
}

// checkRefs makes sure the course, room and faculty member of si exist and returns the latter.
func (svc *Service) checkRefs(ctx context.Context, si SectionInput) (user.User, error) {
	if _, err := svc.catalogSvc.GetCourse(ctx, si.CourseID); err != nil {
		if errors.Cause(err) == catalog.ErrCourseNotFound {
			return user.User{}, core.NewFieldValidationError("course_id", catalog.ErrCourseNotFound)
		}
		return user.User{}, errors.Wrap(err, "finding course")
	}
	if _, err := svc.catalogSvc.GetRoom(ctx, si.RoomID); err != nil {
		if errors.Cause(err) == catalog.ErrRoomNotFound {
			return user.User{}, core.NewFieldValidationError("room_id", catalog.ErrRoomNotFound)
		}
		return user.User{}, errors.Wrap(err, "finding room")
	}
	faculty, err := svc.usrSvc.GetFaculty(ctx, si.FacultyID)
	if err != nil {
		if errors.Cause(err) == user.ErrNotFound {
			return user.User{}, core.NewFieldValidationError("faculty_id", ErrFacultyNotFound)
		}
		return user.User{}, errors.Wrap(err, "finding faculty")
	}
	return faculty, nil
}

// Committed returns the slots already persisted for a faculty member and a room,
// leaving out those of excludeSectionID.
func (svc *Service) Committed(ctx context.Context, facultyID, roomID, excludeSectionID string) (schedule.Committed, error) {
	facultySlots, err := svc.repo.QuerySlotsByFaculty(ctx, facultyID, excludeSectionID)
	if err != nil {
		return schedule.Committed{}, errors.Wrap(err, "querying faculty slots")
	}
	roomSlots, err := svc.repo.QuerySlotsByRoom(ctx, roomID, excludeSectionID)
	if err != nil {
		return schedule.Committed{}, errors.Wrap(err, "querying room slots")
	}
	return schedule.Committed{Faculty: facultySlots, Room: roomSlots}, nil
}

// checkSlot runs the field checks, then the staged slots check, then the committed slots check.
func checkSlot(c schedule.Candidate, staged []schedule.Slot, committed schedule.Committed) schedule.Result {
	if res := schedule.CheckFields(c); !res.OK {
		return res
	}
	if res := schedule.ValidateLocalConflict(c.Slot(), staged); !res.OK {
		return res
	}
	return schedule.ValidateTimeSlot(c, committed)
}

// checkSchedules validates every slot against the committed ones and the ones listed before it.
func (svc *Service) checkSchedules(ctx context.Context, facultyID, roomID, excludeSectionID string, slots []schedule.Slot) error {
	committed, err := svc.Committed(ctx, facultyID, roomID, excludeSectionID)
	if err != nil {
		return err
	}
	for i, s := range slots {
		c := schedule.Candidate{Day: s.Day, StartTime: s.StartTime, EndTime: s.EndTime, FacultyID: facultyID, RoomID: roomID}
		if res := checkSlot(c, slots[:i], committed); !res.OK {
			return core.NewValidationError(res.Err(), core.FieldError{Field: fmt.Sprintf("schedules[%d]", i), Error: res.Error})
		}
	}
	return nil
}

// ValidateTimeSlot tells whether req can be added to the section being edited.
// Rejections are returned as a failed schedule.Result. The error reports storage failures,
// and days outside schedule.Days as a validation error on "day".
func (svc *Service) ValidateTimeSlot(ctx context.Context, req TimeSlotRequest) (schedule.Result, error) {
	req.Day = normalizeDay(string(req.Day))
	if res := schedule.CheckFields(req.Candidate); !res.OK {
		return res, nil
	}
	if !req.Day.IsValid() {
		return schedule.Result{}, core.NewFieldValidationError("day", ErrInvalidDay)
	}

	staged := make([]schedule.Slot, len(req.Staged))
	for i, s := range req.Staged {
		s.Day = normalizeDay(string(s.Day))
		staged[i] = s
	}
	req.Staged = staged

	committed, err := svc.Committed(ctx, req.FacultyID, req.RoomID, req.SectionID)
	if err != nil {
		return schedule.Result{}, err
	}
	return checkSlot(req.Candidate, req.Staged, committed), nil
}

func (svc *Service) Create(ctx context.Context, si SectionInput) (Section, error) {
	faculty, err := svc.checkRefs(ctx, si)
	if err != nil {
		return Section{}, err
	}
	slots := si.slots()
	if err = svc.checkSchedules(ctx, si.FacultyID, si.RoomID, "", slots); err != nil {
		return Section{}, err
	}

	now := NowFunc().UTC()
	sec, err := svc.repo.CreateSection(ctx, Section{
		Name:      si.Name,
		Code:      si.Code,
		CourseID:  si.CourseID,
		FacultyID: si.FacultyID,
		RoomID:    si.RoomID,
		Schedules: slots,
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		return Section{}, errors.Wrap(err, "creating section")
	}

	svc.notifyFaculty(faculty, sec, "created")
	return sec, nil
}

func (svc *Service) Update(ctx context.Context, sec Section, si SectionInput) (Section, error) {
	faculty, err := svc.checkRefs(ctx, si)
	if err != nil {
		return Section{}, err
	}
	slots := si.slots()
	if err = svc.checkSchedules(ctx, si.FacultyID, si.RoomID, sec.ID, slots); err != nil {
		return Section{}, err
	}

	scheduleChanged := sec.FacultyID != si.FacultyID || sec.RoomID != si.RoomID || !sameSlots(sec.Schedules, slots)
	sec.Name = si.Name
	sec.Code = si.Code
	sec.CourseID = si.CourseID
	sec.FacultyID = si.FacultyID
	sec.RoomID = si.RoomID
	sec.Schedules = slots
	sec.UpdatedAt = NowFunc().UTC()

	sec, err = svc.repo.UpdateSection(ctx, sec)
	if err != nil {
		return Section{}, errors.Wrap(err, "updating section")
	}

	if scheduleChanged {
		svc.notifyFaculty(faculty, sec, "updated")
	}
	return sec, nil
}

func (svc *Service) GetByID(ctx context.Context, id string) (Section, error) {
	return svc.repo.GetSection(ctx, id)
}

func (svc *Service) Query(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering) ([]Section, error) {
	return svc.repo.QuerySections(ctx, filter, ordering)
}

func (svc *Service) Delete(ctx context.Context, ids ...string) error {
	return svc.repo.DeleteSections(ctx, ids...)
}

// sameSlots compares slots ignoring IDs and order.
func sameSlots(a, b []schedule.Slot) bool {
	if len(a) != len(b) {
		return false
	}
	key := func(s schedule.Slot) string {
		start, end := s.StartTime, s.EndTime
		if t, err := schedule.Normalize(start); err == nil {
			start = schedule.FormatClock(t)
		}
		if t, err := schedule.Normalize(end); err == nil {
			end = schedule.FormatClock(t)
		}
		return string(s.Day) + start + end
	}
	counts := make(map[string]int, len(a))
	for _, s := range a {
		counts[key(s)]++
	}
	for _, s := range b {
		k := key(s)
		if counts[k] == 0 {
			return false
		}
		counts[k]--
	}
	return true
}
