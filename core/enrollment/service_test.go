package enrollment_test

import (
	"context"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/academia/backend/core"
	"github.com/academia/backend/core/catalog"
	"github.com/academia/backend/core/enrollment"
	"github.com/academia/backend/core/schedule"
	"github.com/academia/backend/core/section"
	"github.com/academia/backend/core/user"
	emailsvc "github.com/academia/backend/services/email"
	inmemdb "github.com/academia/backend/storage/database/inmem"
	"github.com/academia/backend/testutil"
)

func TestService(t *testing.T) {
	conf := testutil.NewConfig()
	logger := testutil.NewLogger(conf)
	db := inmemdb.NewDB()
	usrRepo := inmemdb.NewUserRepository(db)
	catalogRepo := inmemdb.NewCatalogRepository(db)
	sectionRepo := inmemdb.NewSectionRepository(db)
	mailSvc := emailsvc.NewConsoleServiceMock(conf, logger)
	catalogSvc := catalog.NewService(catalogRepo)
	sectionSvc := section.NewService(sectionRepo, inmemdb.NewDraftStore(), catalogSvc, user.NewService(usrRepo, mailSvc), mailSvc, conf)
	svc := enrollment.NewService(inmemdb.NewEnrollmentRepository(db), sectionSvc, catalogSvc)
	ctx := context.Background()

	faculty := testutil.CreateUser(t, usrRepo, "Faculty", "faculty@test.cd", "", user.FacultyRoles, true)
	course := testutil.CreateCourse(t, catalogRepo, "Algebra", "MATH101", 3)
	hall := testutil.CreateRoom(t, catalogRepo, "HALL", 0)
	lab := testutil.CreateRoom(t, catalogRepo, "LAB", 1)

	morning := testutil.CreateSection(t, sectionRepo, "A", course.ID, faculty.ID, hall.ID, testutil.Slot(schedule.Monday, "09:00", "10:00"))
	overlapping := testutil.CreateSection(t, sectionRepo, "B", course.ID, faculty.ID, hall.ID, testutil.Slot(schedule.Monday, "09:30", "10:30"))
	afterwards := testutil.CreateSection(t, sectionRepo, "C", course.ID, faculty.ID, hall.ID, testutil.Slot(schedule.Monday, "10:00", "11:00"))
	labSec := testutil.CreateSection(t, sectionRepo, "D", course.ID, faculty.ID, lab.ID, testutil.Slot(schedule.Friday, "14:00", "16:00"))

	fieldErr := func(t *testing.T, err error) (string, error) {
		t.Helper()
		var verr *core.ValidationError
		require.True(t, errors.As(err, &verr), "error %v is not a validation error", err)
		require.Len(t, verr.Fields, 1)
		return verr.Fields[0].Field, verr.Err
	}

	t.Run("unknown section", func(t *testing.T) {
		_, err := svc.Enroll(ctx, "student-1", "lol")
		fld, cause := fieldErr(t, err)
		assert.Equal(t, "section_id", fld)
		assert.Equal(t, section.ErrNotFound, cause)
	})

	t.Run("enroll", func(t *testing.T) {
		e, err := svc.Enroll(ctx, "student-1", morning.ID)
		require.NoError(t, err)
		assert.Equal(t, morning.ID, e.SectionID)
		assert.False(t, e.CreatedAt.IsZero())
	})

	t.Run("already enrolled", func(t *testing.T) {
		_, err := svc.Enroll(ctx, "student-1", morning.ID)
		_, cause := fieldErr(t, err)
		assert.Equal(t, enrollment.ErrAlreadyEnrolled, cause)
	})

	t.Run("section conflict", func(t *testing.T) {
		_, err := svc.Enroll(ctx, "student-1", overlapping.ID)
		_, cause := fieldErr(t, err)
		var cerr *schedule.ConflictError
		require.True(t, errors.As(cause, &cerr))
		assert.Equal(t, schedule.SectionConflict, cerr.Kind)
	})

	t.Run("back to back", func(t *testing.T) {
		_, err := svc.Enroll(ctx, "student-1", afterwards.ID)
		require.NoError(t, err)
	})

	t.Run("room full", func(t *testing.T) {
		_, err := svc.Enroll(ctx, "student-1", labSec.ID)
		require.NoError(t, err)
		_, err = svc.Enroll(ctx, "student-2", labSec.ID)
		_, cause := fieldErr(t, err)
		assert.Equal(t, enrollment.ErrSectionFull, cause)
	})

	t.Run("my sections", func(t *testing.T) {
		secs, err := svc.MySections(ctx, "student-1")
		require.NoError(t, err)
		codes := make([]string, 0, len(secs))
		for _, s := range secs {
			codes = append(codes, s.Code)
		}
		assert.Equal(t, []string{"A", "C", "D"}, codes)

		secs, err = svc.MySections(ctx, "nobody")
		require.NoError(t, err)
		assert.Empty(t, secs)
	})

	t.Run("drop", func(t *testing.T) {
		require.NoError(t, svc.Drop(ctx, "student-1", morning.ID))
		assert.Equal(t, enrollment.ErrNotFound, errors.Cause(svc.Drop(ctx, "student-1", morning.ID)))

		require.NoError(t, svc.Drop(ctx, "student-1", labSec.ID))
		_, err := svc.Enroll(ctx, "student-2", labSec.ID)
		require.NoError(t, err)
	})
}
