// Package testutil holds the fixtures shared by the test suites.
package testutil

import (
	"context"
	"net/mail"
	"testing"
	"time"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/academia/backend/core"
	"github.com/academia/backend/core/catalog"
	"github.com/academia/backend/core/schedule"
	"github.com/academia/backend/core/section"
	"github.com/academia/backend/core/user"
	appfs "github.com/academia/backend/fs"
	logsvc "github.com/academia/backend/services/logger"
)

// NewConfig returns the configuration used by tests. It does not read the environment.
func NewConfig() *core.Config {
	return &core.Config{
		AppName:          "Academia",
		Env:              "TEST",
		Build:            "test",
		TestMode:         true,
		SecretKey:        "test-secret-key",
		FrontendBaseURL:  "http://localhost:3000",
		DefaultFromEmail: mail.Address{Name: "Academia", Address: "noreply@test.cd"},
		Server: core.ServerConfig{
			Host:                      ":0",
			ShutdownTimeout:           time.Second,
			JWTExpirationDelta:        time.Hour,
			JWTRefreshExpirationDelta: 24 * time.Hour,
		},
		Redis: core.RedisConfig{DraftTTL: time.Hour},
	}
}

// NewLogger returns a logger that discards everything.
func NewLogger(conf *core.Config) core.Logger {
	return logsvc.NewRollbarLogger(zap.NewNop(), conf)
}

// NewValidator returns a validator with every custom tag of the app registered.
func NewValidator() (*validator.Validate, ut.Translator) {
	validate := validator.New()
	translator := core.NewTranslator()
	core.InitValidators(validate, translator)
	user.InitValidators(validate, translator)
	schedule.InitValidators(validate, translator)
	return validate, translator
}

// ParseTemplates loads the embedded email templates.
func ParseTemplates(conf *core.Config, logger core.Logger) {
	core.ParseEmailTemplates(appfs.FS, "templates/email", conf, logger)
	user.LoadCommonPasswords(appfs.FS, "assets/common-passwords.txt.gz", logger)
}

func CreateUser(
	t *testing.T,
	repo user.Repository,
	name, email, pwd string,
	roles []string,
	isActive bool,
	createdAt ...time.Time,
) user.User {
	t.Helper()

	tstamp := time.Now().UTC()
	if len(createdAt) > 0 {
		tstamp = createdAt[0].UTC()
	}
	usr := user.User{
		Name:      name,
		Email:     email,
		Roles:     roles,
		IsActive:  isActive,
		CreatedAt: tstamp,
		UpdatedAt: tstamp,
	}
	if pwd != "" {
		if err := usr.SetPassword(pwd); err != nil {
			t.Fatalf("CreateUser() failed: %v", err)
		}
	}
	usr, err := repo.CreateUser(context.Background(), usr)
	if err != nil {
		t.Fatalf("CreateUser() failed: %v", err)
	}
	return usr
}

func CreateCourse(t *testing.T, repo catalog.Repository, name, code string, creditHours int) catalog.Course {
	t.Helper()

	now := time.Now().UTC()
	c, err := repo.CreateCourse(context.Background(), catalog.Course{
		Name:        name,
		Code:        code,
		CreditHours: creditHours,
		CreatedAt:   now,
		UpdatedAt:   now,
	})
	if err != nil {
		t.Fatalf("CreateCourse() failed: %v", err)
	}
	return c
}

func CreateRoom(t *testing.T, repo catalog.Repository, no string, maxCapacity int) catalog.Room {
	t.Helper()

	now := time.Now().UTC()
	r, err := repo.CreateRoom(context.Background(), catalog.Room{
		No:          no,
		MaxCapacity: maxCapacity,
		CreatedAt:   now,
		UpdatedAt:   now,
	})
	if err != nil {
		t.Fatalf("CreateRoom() failed: %v", err)
	}
	return r
}

// CreateSection stores a section without validating its schedules.
func CreateSection(t *testing.T, repo section.Repository, code, courseID, facultyID, roomID string, slots ...schedule.Slot) section.Section {
	t.Helper()

	if slots == nil {
		slots = []schedule.Slot{}
	}
	now := time.Now().UTC()
	sec, err := repo.CreateSection(context.Background(), section.Section{
		Name:      "Section " + code,
		Code:      code,
		CourseID:  courseID,
		FacultyID: facultyID,
		RoomID:    roomID,
		Schedules: slots,
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		t.Fatalf("CreateSection() failed: %v", err)
	}
	return sec
}

// Slot is a shorthand for a schedule.Slot literal.
func Slot(day schedule.Day, start, end string) schedule.Slot {
	return schedule.Slot{Day: day, StartTime: start, EndTime: end}
}
