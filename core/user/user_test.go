package user_test

import (
	"context"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/academia/backend/core"
	"github.com/academia/backend/core/user"
	emailsvc "github.com/academia/backend/services/email"
	inmemdb "github.com/academia/backend/storage/database/inmem"
	"github.com/academia/backend/testutil"
)

func TestSetUserPassword_Validate(t *testing.T) {
	conf := testutil.NewConfig()
	testutil.ParseTemplates(conf, testutil.NewLogger(conf))
	validate, translator := testutil.NewValidator()
	usr := user.User{Name: "Trezcool Hero", Email: "hero@test.cd"}

	tests := []struct {
		name    string
		pwd     string
		wantErr string
	}{
		{name: "strong", pwd: "LolC@t123"},
		{name: "too short", pwd: "L0l@t", wantErr: "password must contain at least 8 characters"},
		{name: "whitespace", pwd: "LolC@t 123", wantErr: "password must not contain whitespace"},
		{name: "all numeric", pwd: "1234567890", wantErr: "password cannot be entirely numeric"},
		{name: "no special character", pwd: "LolCat123", wantErr: "password must contain at least 1 uppercase character, 1 lowercase character, 1 digit and 1 special character"},
		{name: "no uppercase", pwd: "lolc@t123", wantErr: "password must contain at least 1 uppercase character, 1 lowercase character, 1 digit and 1 special character"},
		{name: "similar to name", pwd: "TrezcoolHero1!", wantErr: "password cannot be similar to user attributes"},
		{name: "similar to email", pwd: "Hero@test.cd1", wantErr: "password cannot be similar to user attributes"},
		{name: "common", pwd: "Iloveyou1!", wantErr: "password is too common"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sp := user.SetUserPassword{Password: tt.pwd, PasswordConfirm: tt.pwd}
			err := sp.Validate(usr, validate)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			verrs, ok := err.(validator.ValidationErrors)
			require.True(t, ok, "error %v is not validator.ValidationErrors", err)
			assert.Equal(t, map[string]string{"password": tt.wantErr}, core.TranslateErrors(verrs, translator))
		})
	}

	t.Run("confirmation mismatch", func(t *testing.T) {
		sp := user.SetUserPassword{Password: "LolC@t123", PasswordConfirm: "LolC@t124"}
		err := sp.Validate(usr, validate)
		verrs, ok := err.(validator.ValidationErrors)
		require.True(t, ok, "error %v is not validator.ValidationErrors", err)
		assert.Contains(t, core.TranslateErrors(verrs, translator), "password_confirm")
	})
}

func TestService_GetFaculty(t *testing.T) {
	conf := testutil.NewConfig()
	repo := inmemdb.NewUserRepository(inmemdb.NewDB())
	svc := user.NewService(repo, emailsvc.NewConsoleServiceMock(conf, testutil.NewLogger(conf)))
	ctx := context.Background()

	faculty := testutil.CreateUser(t, repo, "Faculty", "faculty@test.cd", "", user.FacultyRoles, true)
	inactive := testutil.CreateUser(t, repo, "Gone", "gone@test.cd", "", user.FacultyRoles, false)
	student := testutil.CreateUser(t, repo, "Hero", "hero@test.cd", "", user.StudentRoles, true)
	admin := testutil.CreateUser(t, repo, "Admin", "admin@test.cd", "", user.AdminRoles, true)

	tests := []struct {
		name    string
		id      string
		wantErr error
	}{
		{name: "faculty", id: faculty.ID},
		{name: "inactive faculty", id: inactive.ID, wantErr: user.ErrNotFound},
		{name: "student", id: student.ID, wantErr: user.ErrNotFound},
		{name: "admin", id: admin.ID, wantErr: user.ErrNotFound},
		{name: "unknown", id: "lol", wantErr: user.ErrNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := svc.GetFaculty(ctx, tt.id)
			if tt.wantErr != nil {
				assert.Equal(t, tt.wantErr, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, faculty.ID, got.ID)
		})
	}
}

func TestService_SetPassword(t *testing.T) {
	conf := testutil.NewConfig()
	logger := testutil.NewLogger(conf)
	testutil.ParseTemplates(conf, logger)
	emailsvc.ResetSentMessages()
	repo := inmemdb.NewUserRepository(inmemdb.NewDB())
	svc := user.NewService(repo, emailsvc.NewConsoleServiceMock(conf, logger))

	usr := testutil.CreateUser(t, repo, "Hero", "hero@test.cd", "OldP@ss123", user.StudentRoles, true)
	got, err := svc.SetPassword(context.Background(), usr, "LolC@t123")
	require.NoError(t, err)
	assert.NoError(t, got.CheckPassword("LolC@t123"))
	assert.Error(t, got.CheckPassword("OldP@ss123"))
	assert.False(t, got.LastPasswordResetAt.IsZero())

	sent := emailsvc.LastSentMessages()
	require.Len(t, sent, 1)
	assert.Equal(t, "hero@test.cd", sent[0].To[0].Address)
}
