package main

import (
	"bytes"
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"
	"testing"

	"github.com/academia/backend/core/catalog"
	"github.com/academia/backend/core/schedule"
	"github.com/academia/backend/core/section"
	"github.com/academia/backend/core/user"
	emailsvc "github.com/academia/backend/services/email"
	inmemdb "github.com/academia/backend/storage/database/inmem"
	"github.com/academia/backend/testutil"
)

var (
	db      *inmemdb.DB
	usrRepo user.Repository
)

func setup(t *testing.T) *commandLine {
	conf := testutil.NewConfig()
	logger := testutil.NewLogger(conf)

	// set up DB & repos
	db = inmemdb.NewDB()
	usrRepo = inmemdb.NewUserRepository(db)
	mailSvc := emailsvc.NewConsoleServiceMock(conf, logger)
	catalogSvc := catalog.NewService(inmemdb.NewCatalogRepository(db))
	sectionSvc := section.NewService(
		inmemdb.NewSectionRepository(db),
		inmemdb.NewDraftStore(),
		catalogSvc,
		user.NewService(usrRepo, mailSvc),
		mailSvc,
		conf,
	)

	// start CLI
	return &commandLine{
		usrRepo:    usrRepo,
		sectionSvc: sectionSvc,
	}
}

type cliTest struct {
	name       string
	args       []string // without program name
	wantErr    error
	wantErrStr string
	extra      interface{}
}

func checkErr(t *testing.T, err error, tt cliTest) {
	t.Helper()

	if err != nil {
		if tt.wantErr != nil {
			if err != tt.wantErr {
				t.Errorf("cli.run() error = %v, wantErr %v", err, tt.wantErr)
			}
		} else if tt.wantErrStr != "" {
			if err.Error() != tt.wantErrStr {
				t.Errorf("cli.run() error.Error() = %s, wantErrStr %s", err.Error(), tt.wantErrStr)
			}
		} else {
			t.Errorf("cli.run() unexpected error = %v", err)
		}
	} else if tt.wantErr != nil || tt.wantErrStr != "" {
		t.Errorf("cli.run() error = nil, wantErr %v%s", tt.wantErr, tt.wantErrStr)
	}
}

func Test_commandLine_migrate(t *testing.T) {
	cli := setup(t)

	gooseRunFunc = func(db *sql.DB, command string, args ...string) error {
		switch command {
		case "up", "up-by-one", "down", "fix", "redo", "reset", "status", "version": // pass
		case "up-to":
			if len(args) == 0 {
				return fmt.Errorf("up-to must be of form: goose [OPTIONS] DRIVER DBSTRING up-to VERSION")
			}
			if _, err := strconv.ParseInt(args[0], 10, 64); err != nil {
				return fmt.Errorf("version must be a number (got '%s')", args[0])
			}
		case "create":
			if len(args) == 0 {
				return fmt.Errorf("create must be of form: goose [OPTIONS] DRIVER DBSTRING create NAME [go|sql]")
			}
		case "down-to":
			if len(args) == 0 {
				return fmt.Errorf("down-to must be of form: goose [OPTIONS] DRIVER DBSTRING down-to VERSION")
			}
			if _, err := strconv.ParseInt(args[0], 10, 64); err != nil {
				return fmt.Errorf("version must be a number (got '%s')", args[0])
			}
		default:
			return fmt.Errorf("%q: no such command", command)
		}
		return nil
	}

	tests := []cliTest{
		{name: "no subcommand", args: []string{"migrate"}, wantErr: errHelp},
		{name: "unknown subcommand", args: []string{"migrate", "lol"}, wantErrStr: "\"lol\": no such command"},
		{name: "up-to: no args", args: []string{"migrate", "up-to"}, wantErrStr: "up-to must be of form: goose [OPTIONS] DRIVER DBSTRING up-to VERSION"},
		{name: "up-to: non-int arg", args: []string{"migrate", "up-to", "lol"}, wantErrStr: "version must be a number (got 'lol')"},
		{name: "create: no args", args: []string{"migrate", "create"}, wantErrStr: "create must be of form: goose [OPTIONS] DRIVER DBSTRING create NAME [go|sql]"},
		{name: "down-to: no args", args: []string{"migrate", "down-to"}, wantErrStr: "down-to must be of form: goose [OPTIONS] DRIVER DBSTRING down-to VERSION"},
		{name: "down-to: non-int arg", args: []string{"migrate", "down-to", "lol"}, wantErrStr: "version must be a number (got 'lol')"},
		{name: "up", args: []string{"migrate", "up"}},
		{name: "up-by-one", args: []string{"migrate", "up-by-one"}},
		{name: "up-to", args: []string{"migrate", "up-to", "2"}},
		{name: "down", args: []string{"migrate", "down"}},
		{name: "down-to", args: []string{"migrate", "down-to", "1"}},
		{name: "redo", args: []string{"migrate", "redo"}},
		{name: "reset", args: []string{"migrate", "reset"}},
		{name: "status", args: []string{"migrate", "status"}},
		{name: "version", args: []string{"migrate", "version"}},
		{name: "create", args: []string{"migrate", "create", "course", "sql"}},
		{name: "fix", args: []string{"migrate", "fix"}},
	}
	for _, tt := range tests {
		tt := tt
		args := append([]string{"admin"}, tt.args...)

		t.Run(tt.name, func(t *testing.T) {
			checkErr(t, cli.run(args), tt)
		})
	}
}

func Test_commandLine_addUser(t *testing.T) {
	cli := setup(t)

	existing := testutil.CreateUser(t, usrRepo, "Old Name", "old@test.cd", "pass", user.StudentRoles, false)

	type extra struct {
		pwd       string
		wantRoles []string
	}
	tests := []cliTest{
		{name: "no args", args: []string{"adduser"}, wantErr: errHelp},
		{name: "email but no name", args: []string{"adduser", "-email", "new@test.cd"}, wantErr: errHelp},
		{name: "no password", args: []string{"adduser", "-name", "New", "-email", "new@test.cd"}, wantErr: errHelp},
		{
			name:  "create student",
			args:  []string{"adduser", "-name", "Student", "-email", "Student@Test.cd"},
			extra: extra{pwd: "pass", wantRoles: user.StudentRoles},
		},
		{
			name:  "create faculty",
			args:  []string{"adduser", "-name", "Faculty", "-email", "faculty@test.cd", "-faculty"},
			extra: extra{pwd: "pass", wantRoles: user.FacultyRoles},
		},
		{
			name:  "create admin",
			args:  []string{"adduser", "-name", "Admin", "-email", "admin@test.cd", "-admin"},
			extra: extra{pwd: "pass", wantRoles: user.AllRoles},
		},
		{
			name:  "update existing",
			args:  []string{"adduser", "-name", "New Name", "-email", existing.Email, "-faculty"},
			extra: extra{pwd: "new-pass", wantRoles: user.FacultyRoles},
		},
	}
	for _, tt := range tests {
		tt := tt
		args := append([]string{"admin"}, tt.args...)

		readPasswordFunc = func(fd int) ([]byte, error) {
			if extra, ok := tt.extra.(extra); ok {
				return []byte(extra.pwd), nil
			}
			return nil, nil
		}

		t.Run(tt.name, func(t *testing.T) {
			err := cli.run(args)
			checkErr(t, err, tt)
			if err != nil {
				return
			}

			ext := tt.extra.(extra)
			var email string
			for i, arg := range tt.args {
				if arg == "-email" {
					email = tt.args[i+1]
				}
			}
			usr, err := usrRepo.GetUserByEmail(context.Background(), strings.ToLower(email))
			if err != nil {
				t.Fatalf("GetUserByEmail() failed, %v", err)
			}
			if !usr.IsActive {
				t.Error("user is not active")
			}
			if len(usr.Roles) != len(ext.wantRoles) {
				t.Errorf("user.Roles = %v, want %v", usr.Roles, ext.wantRoles)
			}
			if err = usr.CheckPassword(ext.pwd); err != nil {
				t.Errorf("user.CheckPassword() error = %v", err)
			}
		})
	}

	updated, err := usrRepo.GetUserByID(context.Background(), existing.ID)
	if err != nil {
		t.Fatalf("GetUserByID() failed, %v", err)
	}
	if updated.Name != "New Name" {
		t.Errorf("user.Name = %q, want %q", updated.Name, "New Name")
	}
}

func Test_commandLine_resetPassword(t *testing.T) {
	cli := setup(t)

	usr := testutil.CreateUser(t, usrRepo, "User", "awe@test.cd", "mdr", nil, true)

	type extra struct {
		pwd string
	}
	tests := []cliTest{
		{name: "no command", wantErr: errHelp},
		{name: "unknown command", args: []string{"lol"}, wantErr: errHelp},
		{name: "no args", args: []string{"resetpassword"}, wantErr: errHelp},
		{name: "email but no password", args: []string{"resetpassword", "-email", "lol@test.cd"}, wantErr: errHelp},
		{name: "user not found", args: []string{"resetpassword", "-email", "lol@test.cd"}, extra: extra{pwd: "lol"}, wantErr: user.ErrNotFound},
		{name: "reset", args: []string{"resetpassword", "-email", usr.Email}, extra: extra{pwd: "lmao"}},
	}
	for _, tt := range tests {
		tt := tt
		args := append([]string{"admin"}, tt.args...)

		readPasswordFunc = func(fd int) ([]byte, error) {
			if extra, ok := tt.extra.(extra); ok {
				return []byte(extra.pwd), nil
			}
			return nil, nil
		}

		t.Run(tt.name, func(t *testing.T) {
			err := cli.run(args)
			if err == nil {
				refreshedUsr, err := usrRepo.GetUserByID(context.Background(), usr.ID)
				if err != nil {
					t.Fatalf("GetUserByID() failed, %v", err)
				}
				if bytes.Equal(refreshedUsr.PasswordHash, usr.PasswordHash) {
					t.Error("failed to update new password")
				}
				if refreshedUsr.LastPasswordResetAt.IsZero() {
					t.Error("LastPasswordResetAt was not set")
				}
			} else if err != tt.wantErr {
				t.Errorf("cli.run() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func Test_commandLine_checkSlot(t *testing.T) {
	cli := setup(t)

	catalogRepo := inmemdb.NewCatalogRepository(db)
	sectionRepo := inmemdb.NewSectionRepository(db)
	faculty := testutil.CreateUser(t, usrRepo, "Faculty", "faculty@test.cd", "pass", user.FacultyRoles, true)
	course := testutil.CreateCourse(t, catalogRepo, "Algebra", "MATH101", 3)
	room := testutil.CreateRoom(t, catalogRepo, "R1", 30)
	sec := testutil.CreateSection(t, sectionRepo, "MATH101_A", course.ID, faculty.ID, room.ID,
		testutil.Slot(schedule.Monday, "09:00", "10:00"))

	slotArgs := func(day, start, end string, extra ...string) []string {
		args := []string{"checkslot", "-faculty", faculty.ID, "-room", room.ID, "-day", day, "-start", start, "-end", end}
		return append(args, extra...)
	}
	tests := []cliTest{
		{name: "missing fields", args: []string{"checkslot"}, wantErrStr: schedule.MissingField.Message()},
		{name: "invalid time", args: slotArgs("MONDAY", "9h", "10:00"), wantErrStr: schedule.InvalidTime.Message()},
		{name: "invalid ordering", args: slotArgs("MONDAY", "11:00", "10:00"), wantErrStr: schedule.InvalidOrdering.Message()},
		{name: "faculty conflict", args: slotArgs("MONDAY", "09:30", "10:30"), wantErrStr: schedule.FacultyConflict.Message()},
		{name: "lowercase day", args: slotArgs("monday", "09:30", "10:30"), wantErrStr: schedule.FacultyConflict.Message()},
		{name: "touching slot", args: slotArgs("MONDAY", "10:00", "11:00")},
		{name: "unknown day", args: slotArgs("FUNDAY", "09:00", "10:00"), wantErrStr: section.ErrInvalidDay.Error()},
		{name: "other day", args: slotArgs("TUESDAY", "09:00", "10:00")},
		{name: "own section ignored", args: slotArgs("MONDAY", "09:00", "10:00", "-section", sec.ID)},
	}
	for _, tt := range tests {
		tt := tt
		args := append([]string{"admin"}, tt.args...)

		t.Run(tt.name, func(t *testing.T) {
			checkErr(t, cli.run(args), tt)
		})
	}
}
