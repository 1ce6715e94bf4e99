package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/renovia/renovation-api/internal/config"
	"github.com/renovia/renovation-api/internal/repository"
	"github.com/renovia/renovation-api/internal/utils"
)

// fakeUserStore keeps users in memory and records Create arguments.
type fakeUserStore struct {
	byEmail     map[string]repository.User
	nextID      uint64
	createdRole string
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{byEmail: map[string]repository.User{}, nextID: 1}
}

func (s *fakeUserStore) Create(_ context.Context, name, email, passwordHash, role string) (repository.User, error) {
	if _, ok := s.byEmail[email]; ok {
		return repository.User{}, repository.ErrEmailExists
	}
	u := repository.User{
		ID:           s.nextID,
		Name:         name,
		Email:        email,
		PasswordHash: passwordHash,
		Role:         role,
		CreatedAt:    time.Now().UTC(),
		UpdatedAt:    time.Now().UTC(),
	}
	s.nextID++
	s.byEmail[email] = u
	s.createdRole = role
	return u, nil
}

func (s *fakeUserStore) GetByEmail(_ context.Context, email string) (repository.User, error) {
	u, ok := s.byEmail[email]
	if !ok {
		return repository.User{}, repository.ErrUserNotFound
	}
	return u, nil
}

func (s *fakeUserStore) GetByID(_ context.Context, id uint64) (repository.User, error) {
	for _, u := range s.byEmail {
		if u.ID == id {
			return u, nil
		}
	}
	return repository.User{}, repository.ErrUserNotFound
}

func testAuthCfg() config.Config {
	return config.Config{
		JWTAccessSecret:  "test-access-secret",
		JWTRefreshSecret: "test-refresh-secret",
		AccessTTLMin:     15,
		RefreshTTLDays:   7,
		BcryptCost:       bcrypt.MinCost,
	}
}

// doJSON runs one handler against a synthetic JSON request and returns
// the recorder plus the decoded body.
func doJSON(t *testing.T, h echo.HandlerFunc, method, target, body string, setup func(echo.Context)) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()

	e := echo.New()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if setup != nil {
		setup(c)
	}

	require.NoError(t, h(c))

	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return rec, out
}

func errBody(t *testing.T, out map[string]any) (code, message string) {
	t.Helper()
	require.Equal(t, false, out["success"])
	e, ok := out["error"].(map[string]any)
	require.True(t, ok, "error object missing in %v", out)
	code, _ = e["code"].(string)
	message, _ = e["message"].(string)
	return code, message
}

func dataBody(t *testing.T, out map[string]any) map[string]any {
	t.Helper()
	require.Equal(t, true, out["success"])
	d, ok := out["data"].(map[string]any)
	require.True(t, ok, "data object missing in %v", out)
	return d
}

func TestRegisterCreatesCustomer(t *testing.T) {
	store := newFakeUserStore()
	h := NewAuthHandler(testAuthCfg(), store)

	rec, out := doJSON(t, h.Register, http.MethodPost, "/api/auth/register",
		`{"name":"Ada","email":"Ada@Example.com","password":"supersecret"}`, nil)

	require.Equal(t, http.StatusCreated, rec.Code)
	data := dataBody(t, out)

	user := data["user"].(map[string]any)
	assert.Equal(t, "Ada", user["name"])
	assert.Equal(t, "ada@example.com", user["email"])
	assert.Equal(t, "customer", user["role"])
	assert.NotContains(t, user, "passwordHash")
	assert.Equal(t, "customer", store.createdRole)

	// The stored hash must verify against the submitted password.
	stored := store.byEmail["ada@example.com"]
	assert.True(t, utils.VerifyPassword(stored.PasswordHash, "supersecret"))

	access, _ := data["accessToken"].(string)
	refresh, _ := data["refreshToken"].(string)
	require.NotEmpty(t, access)
	require.NotEmpty(t, refresh)

	cl, err := utils.VerifyToken("test-access-secret", access)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), cl.UserID)
	assert.Equal(t, "ada@example.com", cl.Email)
	assert.Equal(t, "customer", cl.Role)

	_, err = utils.VerifyToken("test-refresh-secret", refresh)
	assert.NoError(t, err)
}

func TestRegisterValidation(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		message string
	}{
		{"missing name", `{"email":"a@b.com","password":"supersecret"}`, "Name, email, and password are required"},
		{"missing email", `{"name":"Ada","password":"supersecret"}`, "Name, email, and password are required"},
		{"missing password", `{"name":"Ada","email":"a@b.com"}`, "Name, email, and password are required"},
		{"short password", `{"name":"Ada","email":"a@b.com","password":"short"}`, "Password must be at least 8 characters long"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewAuthHandler(testAuthCfg(), newFakeUserStore())
			rec, out := doJSON(t, h.Register, http.MethodPost, "/api/auth/register", tt.body, nil)

			assert.Equal(t, http.StatusBadRequest, rec.Code)
			code, msg := errBody(t, out)
			assert.Equal(t, "VALIDATION_ERROR", code)
			assert.Equal(t, tt.message, msg)
		})
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	store := newFakeUserStore()
	h := NewAuthHandler(testAuthCfg(), store)

	body := `{"name":"Ada","email":"a@b.com","password":"supersecret"}`
	rec, _ := doJSON(t, h.Register, http.MethodPost, "/api/auth/register", body, nil)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec, out := doJSON(t, h.Register, http.MethodPost, "/api/auth/register", body, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	code, msg := errBody(t, out)
	assert.Equal(t, "REGISTRATION_FAILED", code)
	assert.Equal(t, "User with this email already exists", msg)
}

func TestLogin(t *testing.T) {
	store := newFakeUserStore()
	hash, err := utils.HashPassword("supersecret", bcrypt.MinCost)
	require.NoError(t, err)
	_, err = store.Create(context.Background(), "Ada", "a@b.com", hash, "customer")
	require.NoError(t, err)

	h := NewAuthHandler(testAuthCfg(), store)

	rec, out := doJSON(t, h.Login, http.MethodPost, "/api/auth/login",
		`{"email":"A@B.com","password":"supersecret"}`, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	data := dataBody(t, out)
	assert.NotEmpty(t, data["accessToken"])
	assert.NotEmpty(t, data["refreshToken"])
	user := data["user"].(map[string]any)
	assert.Equal(t, "a@b.com", user["email"])
}

func TestLoginFailuresAreIndistinguishable(t *testing.T) {
	store := newFakeUserStore()
	hash, err := utils.HashPassword("supersecret", bcrypt.MinCost)
	require.NoError(t, err)
	_, err = store.Create(context.Background(), "Ada", "a@b.com", hash, "customer")
	require.NoError(t, err)

	h := NewAuthHandler(testAuthCfg(), store)

	recUnknown, outUnknown := doJSON(t, h.Login, http.MethodPost, "/api/auth/login",
		`{"email":"nobody@b.com","password":"supersecret"}`, nil)
	recWrong, outWrong := doJSON(t, h.Login, http.MethodPost, "/api/auth/login",
		`{"email":"a@b.com","password":"wrongwrong"}`, nil)

	assert.Equal(t, http.StatusUnauthorized, recUnknown.Code)
	assert.Equal(t, http.StatusUnauthorized, recWrong.Code)

	codeU, msgU := errBody(t, outUnknown)
	codeW, msgW := errBody(t, outWrong)
	assert.Equal(t, "LOGIN_FAILED", codeU)
	assert.Equal(t, codeU, codeW)
	assert.Equal(t, "invalid email or password", msgU)
	assert.Equal(t, msgU, msgW)
}

func TestRefresh(t *testing.T) {
	cfg := testAuthCfg()
	h := NewAuthHandler(cfg, newFakeUserStore())

	cl := utils.Claims{UserID: 3, Email: "a@b.com", Role: "customer"}
	refresh, err := utils.NewRefreshToken(cfg.JWTRefreshSecret, cl, cfg.RefreshTTLDays)
	require.NoError(t, err)

	rec, out := doJSON(t, h.Refresh, http.MethodPost, "/api/auth/refresh",
		`{"refreshToken":"`+refresh+`"}`, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	data := dataBody(t, out)
	access, _ := data["accessToken"].(string)
	require.NotEmpty(t, access)
	// The refresh token is not rotated.
	assert.NotContains(t, data, "refreshToken")

	got, err := utils.VerifyToken(cfg.JWTAccessSecret, access)
	require.NoError(t, err)
	assert.Equal(t, cl, got)
}

func TestRefreshRejectsAccessToken(t *testing.T) {
	cfg := testAuthCfg()
	h := NewAuthHandler(cfg, newFakeUserStore())

	cl := utils.Claims{UserID: 3, Email: "a@b.com", Role: "customer"}
	access, err := utils.NewAccessToken(cfg.JWTAccessSecret, cl, cfg.AccessTTLMin)
	require.NoError(t, err)

	rec, out := doJSON(t, h.Refresh, http.MethodPost, "/api/auth/refresh",
		`{"refreshToken":"`+access+`"}`, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	code, msg := errBody(t, out)
	assert.Equal(t, "INVALID_REFRESH_TOKEN", code)
	assert.Equal(t, "Invalid or expired refresh token", msg)
}

func TestRefreshMissingToken(t *testing.T) {
	h := NewAuthHandler(testAuthCfg(), newFakeUserStore())

	rec, out := doJSON(t, h.Refresh, http.MethodPost, "/api/auth/refresh", `{}`, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	code, msg := errBody(t, out)
	assert.Equal(t, "VALIDATION_ERROR", code)
	assert.Equal(t, "Refresh token is required", msg)
}

func TestMe(t *testing.T) {
	store := newFakeUserStore()
	u, err := store.Create(context.Background(), "Ada", "a@b.com", "x", "customer")
	require.NoError(t, err)

	h := NewAuthHandler(testAuthCfg(), store)

	rec, out := doJSON(t, h.Me, http.MethodGet, "/api/auth/me", "", func(c echo.Context) {
		c.Set("user_id", u.ID)
	})
	require.Equal(t, http.StatusOK, rec.Code)
	data := dataBody(t, out)
	user := data["user"].(map[string]any)
	assert.Equal(t, "a@b.com", user["email"])
}

func TestMeUserGone(t *testing.T) {
	h := NewAuthHandler(testAuthCfg(), newFakeUserStore())

	rec, out := doJSON(t, h.Me, http.MethodGet, "/api/auth/me", "", func(c echo.Context) {
		c.Set("user_id", uint64(99))
	})
	assert.Equal(t, http.StatusNotFound, rec.Code)
	code, msg := errBody(t, out)
	assert.Equal(t, "USER_NOT_FOUND", code)
	assert.Equal(t, "User not found", msg)
}
