package tests

import (
	"bytes"
	"context"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	echoapi "github.com/academia/backend/apps/api/echo"
	"github.com/academia/backend/core/user"
	emailsvc "github.com/academia/backend/services/email"
	"github.com/academia/backend/testutil"
)

const strongPwd = "LolC@t123"

func Test_userApi_login(t *testing.T) {
	resetDB()

	testutil.CreateUser(t, usrRepo, "Hero", "hero@test.cd", strongPwd, user.StudentRoles, true)
	testutil.CreateUser(t, usrRepo, "N Dog", "ndog@test.cd", strongPwd, user.StudentRoles, false)

	reqMsg := "this field is required"
	tests := []httpTest{
		{
			name: "required fields", wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"email": reqMsg, "password": reqMsg}),
		},
		{
			name: "unknown email", wantCode: http.StatusBadRequest,
			body:     marchallObj(t, echoapi.LoginRequest{Email: "lol@test.cd", Password: strongPwd}),
			wantData: marchallObj(t, httpErr{Error: "authentication failed"}),
		},
		{
			name: "wrong password", wantCode: http.StatusBadRequest,
			body:     marchallObj(t, echoapi.LoginRequest{Email: "hero@test.cd", Password: "lol"}),
			wantData: marchallObj(t, httpErr{Error: "authentication failed"}),
		},
		{
			name: "inactive user", wantCode: http.StatusForbidden,
			body:     marchallObj(t, echoapi.LoginRequest{Email: "ndog@test.cd", Password: strongPwd}),
			wantData: marchallObj(t, httpErr{Error: "account deactivated"}),
		},
		{
			name: "success (email is case insensitive)", wantCode: http.StatusOK,
			body: marchallObj(t, echoapi.LoginRequest{Email: " HERO@test.cd ", Password: strongPwd}),
		},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newRequest(http.MethodPost, "/v1/users/login", tt.body)
			app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)

			if tt.wantCode == http.StatusOK {
				var resp echoapi.LoginResponse
				unmarshal(t, rec.Body.Bytes(), &resp)
				assert.NotEmpty(t, resp.Token)

				usr, err := usrRepo.GetUserByEmail(context.Background(), "hero@test.cd")
				require.NoError(t, err)
				assert.False(t, usr.LastLogin.IsZero(), "LastLogin was not set")
			}
		})
	}
}

func Test_userApi_register(t *testing.T) {
	resetDB()

	testutil.CreateUser(t, usrRepo, "Hero", "hero@test.cd", "", user.StudentRoles, true)

	tests := []httpTest{
		{
			name: "email taken", wantCode: http.StatusBadRequest,
			body: marchallObj(t, user.NewUser{Name: "Other", Email: "HERO@test.cd", Password: strongPwd, PasswordConfirm: strongPwd}),
			wantData: marchallObj(t, map[string]string{"email": user.ErrEmailExists.Error()}),
		},
		{
			name: "weak password", wantCode: http.StatusBadRequest,
			body:     marchallObj(t, user.NewUser{Name: "New", Email: "new@test.cd", Password: "lol12345", PasswordConfirm: "lol12345"}),
			wantData: marchallObj(t, map[string]string{"password": "password must contain at least 1 uppercase character, 1 lowercase character, 1 digit and 1 special character"}),
		},
		{
			name: "roles are ignored", wantCode: http.StatusCreated,
			body: marchallObj(t, user.NewUser{
				Name: "New", Email: "new@test.cd", Password: strongPwd, PasswordConfirm: strongPwd, Roles: user.AdminRoles,
			}),
		},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newRequest(http.MethodPost, "/v1/users/register", tt.body)
			app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)

			if tt.wantCode == http.StatusCreated {
				var usr user.User
				unmarshal(t, rec.Body.Bytes(), &usr)
				assert.Equal(t, []string{user.RoleStudent}, usr.Roles)
				assert.True(t, usr.IsActive)
			}
		})
	}
}

func Test_userApi_query(t *testing.T) {
	resetDB()

	path := func(search, ordering string, isActive *bool, roles ...string) string {
		v := make(url.Values)
		if search != "" {
			v.Add("search", search)
		}
		if ordering != "" {
			v.Add("ordering", ordering)
		}
		if isActive != nil {
			v.Add("is_active", strconv.FormatBool(*isActive))
		}
		for _, r := range roles {
			v.Add("role", r)
		}
		return "/v1/users?" + v.Encode()
	}
	bPtr := func(b bool) *bool { return &b }

	now := time.Now().UTC().Truncate(time.Second)
	student := testutil.CreateUser(t, usrRepo, "Hero", "hero@test.cd", "", user.StudentRoles, true, now.Add(1*time.Hour))
	admin := testutil.CreateUser(t, usrRepo, "Admin", "admin@test.cd", "", []string{user.RoleAdmin}, true, now.Add(2*time.Hour))
	owner := testutil.CreateUser(t, usrRepo, "Owner", "owner@test.cd", "", []string{user.RoleAdminOwner}, true, now.Add(3*time.Hour))
	faculty := testutil.CreateUser(t, usrRepo, "Faculty", "faculty@test.cd", "", user.FacultyRoles, true, now.Add(4*time.Hour))
	naughty := testutil.CreateUser(t, usrRepo, "N Dog", "ndog@test.cd", "", user.StudentRoles, false, now.Add(5*time.Hour)) // 😂

	adminToken := getToken(t, admin)
	empty := marchallList(t)

	runTests(t, []httpTest{
		{name: "Auth required", path: "/v1/users", wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)},
		{name: "Admin required", path: "/v1/users", token: getToken(t, faculty), wantCode: http.StatusForbidden, wantData: marchallObj(t, errForbidden)},
		{name: "Get all", path: "/v1/users", token: adminToken, wantData: marchallList(t, naughty, faculty, owner, admin, student)},
		{name: "search (unknown)", path: path("lol", "", nil), token: adminToken, wantData: empty},
		{name: "search=ER", path: path("ER", "", nil), token: adminToken, wantData: marchallList(t, owner, student)},
		{name: "role (unknown)", path: path("", "", nil, "lol"), token: adminToken, wantData: empty},
		{name: "role=admin:", path: path("", "", nil, user.RoleAdmin), token: adminToken, wantData: marchallList(t, owner, admin)},
		{
			name: "role=faculty:,student:", path: path("", "", nil, user.RoleFaculty, user.RoleStudent),
			token: adminToken, wantData: marchallList(t, naughty, faculty, student),
		},
		{name: "is_active=false", path: path("", "", bPtr(false)), token: adminToken, wantData: marchallList(t, naughty)},
		{name: "order by name", path: path("", "name", nil), token: adminToken, wantData: marchallList(t, admin, faculty, student, naughty, owner)},
		{
			name: "filtering & ordering", path: path("", "-name", bPtr(true), user.RoleAdmin), token: adminToken,
			wantData: marchallList(t, owner, admin),
		},
	})
}

func Test_userApi_me(t *testing.T) {
	resetDB()

	student := testutil.CreateUser(t, usrRepo, "Hero", "hero@test.cd", "", user.StudentRoles, true)
	naughty := testutil.CreateUser(t, usrRepo, "N Dog", "ndog@test.cd", "", user.StudentRoles, false)

	runTests(t, []httpTest{
		{name: "Auth required", path: "/v1/users/me", wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)},
		{
			name: "Inactive user not allowed", path: "/v1/users/me", token: getToken(t, naughty),
			wantCode: http.StatusForbidden, wantData: marchallObj(t, httpErr{Error: "account deactivated"}),
		},
		{name: "Get me", path: "/v1/users/me", token: getToken(t, student), wantData: marchallObj(t, student)},
	})
}

func Test_userApi_refreshToken(t *testing.T) {
	resetDB()

	naughty := testutil.CreateUser(t, usrRepo, "N Dog", "ndog@test.cd", "", user.StudentRoles, false) // 😂
	student := testutil.CreateUser(t, usrRepo, "Hero", "hero@test.cd", "", user.StudentRoles, true)

	now := time.Now()
	unrefreshableClaims := echoapi.GetUserClaims(conf, student, now.Add(-2*conf.Server.JWTRefreshExpirationDelta).Unix())
	unrefreshableToken, err := echoapi.GenerateToken(conf, unrefreshableClaims)
	require.NoError(t, err)

	forgedClaims := echoapi.GetUserClaims(conf, student)
	forged, err := jwt.NewWithClaims(jwt.SigningMethodHS256, forgedClaims).SignedString([]byte("not the secret"))
	require.NoError(t, err)

	tests := []httpTest{
		{name: "Auth required", wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)},
		{name: "Invalid signature", token: forged, wantCode: http.StatusUnauthorized},
		{name: "Inactive user not allowed", token: getToken(t, naughty), wantCode: http.StatusForbidden, wantData: marchallObj(t, httpErr{Error: "account deactivated"})},
		{name: "Refresh period expired", token: unrefreshableToken, wantCode: http.StatusForbidden, wantData: marchallObj(t, httpErr{Error: "refresh has expired"})},
		{name: "Token refreshed", token: getToken(t, student), wantCode: http.StatusOK},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(http.MethodPost, "/v1/users/token-refresh", tt.token)
			app.ServeHTTP(rec, req)

			// cannot guess new token.. just check that it's not empty
			if tt.wantCode == http.StatusOK {
				assert.Equal(t, tt.wantCode, rec.Code)
				var respData echoapi.LoginResponse
				unmarshal(t, rec.Body.Bytes(), &respData)
				assert.NotEmpty(t, respData.Token)
				return
			}
			checkCodeAndData(t, tt, rec)
		})
	}
}

func Test_userApi_create(t *testing.T) {
	resetDB()

	admin := testutil.CreateUser(t, usrRepo, "Admin", "admin@test.cd", "", []string{user.RoleAdmin}, true)
	faculty := testutil.CreateUser(t, usrRepo, "Faculty", "faculty@test.cd", "", user.FacultyRoles, true)
	adminToken := getToken(t, admin)

	runTests(t, []httpTest{
		{name: "Admin required", method: http.MethodPost, path: "/v1/users", token: getToken(t, faculty), wantCode: http.StatusForbidden, wantData: marchallObj(t, errForbidden)},
		{
			name: "invalid roles", method: http.MethodPost, path: "/v1/users", token: adminToken, wantCode: http.StatusBadRequest,
			body:     marchallObj(t, user.NewUser{Name: "New", Email: "new@test.cd", Password: strongPwd, PasswordConfirm: strongPwd, Roles: []string{"lol"}}),
			wantData: marchallObj(t, map[string]string{"roles": "invalid roles"}),
		},
		{
			name: "cannot grant a higher role", method: http.MethodPost, path: "/v1/users", token: adminToken, wantCode: http.StatusBadRequest,
			body:     marchallObj(t, user.NewUser{Name: "New", Email: "new@test.cd", Password: strongPwd, PasswordConfirm: strongPwd, Roles: []string{user.RoleAdminOwner}}),
			wantData: marchallObj(t, map[string]string{"roles": "not enough rights to set these roles"}),
		},
		{
			name: "create faculty", method: http.MethodPost, path: "/v1/users", token: adminToken, wantCode: http.StatusCreated,
			body: marchallObj(t, user.NewUser{Name: "New", Email: "new@test.cd", Password: strongPwd, PasswordConfirm: strongPwd, Roles: user.FacultyRoles}),
		},
	})

	usr, err := usrRepo.GetUserByEmail(context.Background(), "new@test.cd")
	require.NoError(t, err)
	assert.True(t, usr.IsFaculty())
}

func Test_userApi_detail(t *testing.T) {
	resetDB()

	admin := testutil.CreateUser(t, usrRepo, "Admin", "admin@test.cd", "", []string{user.RoleAdmin}, true)
	student := testutil.CreateUser(t, usrRepo, "Hero", "hero@test.cd", "", user.StudentRoles, true)
	other := testutil.CreateUser(t, usrRepo, "Other", "other@test.cd", "", user.StudentRoles, true)
	adminToken := getToken(t, admin)
	studentToken := getToken(t, student)

	runTests(t, []httpTest{
		{name: "own profile", path: "/v1/users/" + student.ID, token: studentToken, wantData: marchallObj(t, student)},
		{name: "other profile hidden", path: "/v1/users/" + other.ID, token: studentToken, wantCode: http.StatusNotFound, wantData: marchallObj(t, errNotFound)},
		{name: "admin sees anyone", path: "/v1/users/" + other.ID, token: adminToken, wantData: marchallObj(t, other)},
		{name: "unknown id", path: "/v1/users/lol", token: adminToken, wantCode: http.StatusNotFound, wantData: marchallObj(t, errNotFound)},
		{
			name: "student cannot change roles", method: http.MethodPut, path: "/v1/users/" + student.ID, token: studentToken,
			body: marchallObj(t, map[string]interface{}{"roles": user.AdminRoles}), wantCode: http.StatusForbidden, wantData: marchallObj(t, errForbidden),
		},
		{
			name: "admin cannot delete themselves", method: http.MethodDelete, path: "/v1/users/" + admin.ID, token: adminToken,
			wantCode: http.StatusForbidden, wantData: marchallObj(t, errForbidden),
		},
		{name: "admin deletes", method: http.MethodDelete, path: "/v1/users/" + other.ID, token: adminToken, wantCode: http.StatusNoContent},
	})

	// update own name
	req, rec := newAuthRequest(http.MethodPut, "/v1/users/"+student.ID, studentToken, marchallObj(t, map[string]string{"name": "  Super Hero "}))
	app.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var updated user.User
	unmarshal(t, rec.Body.Bytes(), &updated)
	assert.Equal(t, "Super Hero", updated.Name)
	assert.Equal(t, student.Email, updated.Email)

	_, err := usrRepo.GetUserByID(context.Background(), other.ID)
	assert.Equal(t, user.ErrNotFound, err)
}

func Test_userApi_setPassword(t *testing.T) {
	resetDB()

	admin := testutil.CreateUser(t, usrRepo, "Admin", "admin@test.cd", "", []string{user.RoleAdmin}, true)
	student := testutil.CreateUser(t, usrRepo, "Hero", "hero@test.cd", "lol", user.StudentRoles, true)
	path := "/v1/users/" + student.ID + "/password-reset"

	reqMsg := "this field is required"
	tests := []httpTest{
		{
			name: "Admin required", token: getToken(t, student), wantCode: http.StatusForbidden, wantData: marchallObj(t, errForbidden),
		},
		{
			name: "required fields", token: getToken(t, admin), wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"password": "password must contain at least 8 characters", "password_confirm": reqMsg}),
		},
		{
			name: "too similar to email", token: getToken(t, admin), wantCode: http.StatusBadRequest,
			body:     marchallObj(t, user.SetUserPassword{Password: "Hero@test.cd1", PasswordConfirm: "Hero@test.cd1"}),
			wantData: marchallObj(t, map[string]string{"password": "password cannot be similar to user attributes"}),
		},
		{
			name: "too common", token: getToken(t, admin), wantCode: http.StatusBadRequest,
			body:     marchallObj(t, user.SetUserPassword{Password: "P@$$w0rd", PasswordConfirm: "P@$$w0rd"}),
			wantData: marchallObj(t, map[string]string{"password": "password is too common"}),
		},
		{
			name: "reset", token: getToken(t, admin), wantCode: http.StatusOK,
			body:     marchallObj(t, user.SetUserPassword{Password: strongPwd, PasswordConfirm: strongPwd}),
			wantData: marchallObj(t, echoapi.SuccessResponse{Success: "Password has been reset with the new password."}),
		},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			emailsvc.ResetSentMessages()

			req, rec := newAuthRequest(http.MethodPost, path, tt.token, tt.body)
			app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)

			if tt.wantCode != http.StatusOK {
				assert.Empty(t, emailsvc.LastSentMessages())
				return
			}
			refreshed, err := usrRepo.GetUserByID(context.Background(), student.ID)
			require.NoError(t, err)
			assert.False(t, bytes.Equal(refreshed.PasswordHash, student.PasswordHash), "failed to update new password")
			assert.False(t, refreshed.LastPasswordResetAt.IsZero())

			sent := emailsvc.LastSentMessages()
			require.Len(t, sent, 1)
			assert.Equal(t, student.Address(), sent[0].To[0])
			assert.True(t, strings.Contains(sent[0].TextContent, student.Name))
			assert.True(t, strings.Contains(sent[0].HTMLContent, student.Name))
		})
	}
}
