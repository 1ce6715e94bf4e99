package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/renovia/renovation-api/internal/config"
	"github.com/renovia/renovation-api/internal/repository"
	"github.com/renovia/renovation-api/internal/utils"
)

// UserStore is the persistence surface the auth endpoints need.
// *repository.UserRepo satisfies it.
type UserStore interface {
	Create(ctx context.Context, name, email, passwordHash, role string) (repository.User, error)
	GetByEmail(ctx context.Context, email string) (repository.User, error)
	GetByID(ctx context.Context, id uint64) (repository.User, error)
}

// AuthHandler bundles dependencies for the auth endpoints.
type AuthHandler struct {
	Cfg   config.Config
	Users UserStore
}

func NewAuthHandler(cfg config.Config, users UserStore) *AuthHandler {
	return &AuthHandler{Cfg: cfg, Users: users}
}

// ----- DTOs -----

type registerReq struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}
type loginReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}
type refreshReq struct {
	RefreshToken string `json:"refreshToken"`
}

// userView is the sanitized user shape returned by auth endpoints; the
// password hash never leaves the repository layer.
type userView struct {
	ID            uint64    `json:"id"`
	Name          string    `json:"name"`
	Email         string    `json:"email"`
	Role          string    `json:"role"`
	AvatarURL     *string   `json:"avatarUrl"`
	EmailVerified bool      `json:"emailVerified"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

func viewOf(u repository.User) userView {
	return userView{
		ID:            u.ID,
		Name:          u.Name,
		Email:         u.Email,
		Role:          u.Role,
		AvatarURL:     u.AvatarURL,
		EmailVerified: u.EmailVerified,
		CreatedAt:     u.CreatedAt,
		UpdatedAt:     u.UpdatedAt,
	}
}

func (h *AuthHandler) tokenPair(u repository.User) (access, refresh string, err error) {
	cl := utils.Claims{UserID: u.ID, Email: u.Email, Role: u.Role}
	access, err = utils.NewAccessToken(h.Cfg.JWTAccessSecret, cl, h.Cfg.AccessTTLMin)
	if err != nil {
		return "", "", err
	}
	refresh, err = utils.NewRefreshToken(h.Cfg.JWTRefreshSecret, cl, h.Cfg.RefreshTTLDays)
	return access, refresh, err
}

// Register creates a customer account and returns the user plus a fresh
// token pair.
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerReq
	if err := c.Bind(&req); err != nil {
		return respondErr(c, http.StatusBadRequest, codeValidation, "invalid body")
	}
	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Name == "" || req.Email == "" || req.Password == "" {
		return respondErr(c, http.StatusBadRequest, codeValidation, "Name, email, and password are required")
	}
	if len(req.Password) < 8 {
		return respondErr(c, http.StatusBadRequest, codeValidation, "Password must be at least 8 characters long")
	}

	hash, err := utils.HashPassword(req.Password, h.Cfg.BcryptCost)
	if err != nil {
		return respondErr(c, http.StatusInternalServerError, codeInternal, "hash password failed")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	u, err := h.Users.Create(ctx, req.Name, req.Email, hash, "customer")
	if err != nil {
		if errors.Is(err, repository.ErrEmailExists) {
			return respondErr(c, http.StatusBadRequest, codeRegisterFailed, "User with this email already exists")
		}
		return respondErr(c, http.StatusInternalServerError, codeInternal, "create user failed")
	}

	access, refresh, err := h.tokenPair(u)
	if err != nil {
		return respondErr(c, http.StatusInternalServerError, codeInternal, "issue tokens failed")
	}

	return respond(c, http.StatusCreated, echo.Map{
		"user":         viewOf(u),
		"accessToken":  access,
		"refreshToken": refresh,
	})
}

// Login verifies credentials and returns a fresh token pair. Unknown
// email and wrong password produce the identical message so responses
// cannot be used to enumerate accounts.
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginReq
	if err := c.Bind(&req); err != nil {
		return respondErr(c, http.StatusBadRequest, codeValidation, "invalid body")
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Email == "" || req.Password == "" {
		return respondErr(c, http.StatusBadRequest, codeValidation, "Email and password are required")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	u, err := h.Users.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return respondErr(c, http.StatusUnauthorized, codeLoginFailed, "invalid email or password")
		}
		return respondErr(c, http.StatusInternalServerError, codeInternal, "query failed")
	}
	if !utils.VerifyPassword(u.PasswordHash, req.Password) {
		return respondErr(c, http.StatusUnauthorized, codeLoginFailed, "invalid email or password")
	}

	access, refresh, err := h.tokenPair(u)
	if err != nil {
		return respondErr(c, http.StatusInternalServerError, codeInternal, "issue tokens failed")
	}

	return respond(c, http.StatusOK, echo.Map{
		"user":         viewOf(u),
		"accessToken":  access,
		"refreshToken": refresh,
	})
}

// Refresh validates a refresh token and returns a new access token. The
// refresh token is not rotated: it stays valid until its own expiry.
func (h *AuthHandler) Refresh(c echo.Context) error {
	var req refreshReq
	if err := c.Bind(&req); err != nil || strings.TrimSpace(req.RefreshToken) == "" {
		return respondErr(c, http.StatusBadRequest, codeValidation, "Refresh token is required")
	}

	cl, err := utils.VerifyToken(h.Cfg.JWTRefreshSecret, strings.TrimSpace(req.RefreshToken))
	if err != nil {
		return respondErr(c, http.StatusUnauthorized, codeBadRefresh, "Invalid or expired refresh token")
	}

	access, err := utils.NewAccessToken(h.Cfg.JWTAccessSecret, cl, h.Cfg.AccessTTLMin)
	if err != nil {
		return respondErr(c, http.StatusInternalServerError, codeInternal, "issue access failed")
	}

	return respond(c, http.StatusOK, echo.Map{"accessToken": access})
}

// Me returns the authenticated caller's profile.
func (h *AuthHandler) Me(c echo.Context) error {
	uid, ok := c.Get("user_id").(uint64)
	if !ok {
		return respondErr(c, http.StatusUnauthorized, "UNAUTHORIZED", "Authentication required")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	u, err := h.Users.GetByID(ctx, uid)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return respondErr(c, http.StatusNotFound, codeUserMissing, "User not found")
		}
		return respondErr(c, http.StatusInternalServerError, codeInternal, "query failed")
	}

	return respond(c, http.StatusOK, echo.Map{"user": viewOf(u)})
}
