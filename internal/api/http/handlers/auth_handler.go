package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/suggestion-service/internal/api/dto"
	"github.com/spec-kit/suggestion-service/internal/auth"
	"github.com/spec-kit/suggestion-service/internal/config"
	"github.com/spec-kit/suggestion-service/internal/service"
	apperrors "github.com/spec-kit/suggestion-service/pkg/util"
)

// AuthHandler exposes registration, login and logout endpoints.
type AuthHandler struct {
	auth    *service.AuthService
	limiter *auth.LoginLimiter
	cfg     config.AuthConfig
}

// NewAuthHandler constructs handler.
func NewAuthHandler(authService *service.AuthService, limiter *auth.LoginLimiter, cfg config.AuthConfig) *AuthHandler {
	return &AuthHandler{auth: authService, limiter: limiter, cfg: cfg}
}

// Register handles POST /auth/register.
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req dto.RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if strings.TrimSpace(req.Username) == "" || strings.TrimSpace(req.Email) == "" || req.Password == "" {
		return apperrors.NewValidationError("username, email, password required", nil)
	}

	if _, err := h.auth.Register(c.Context(), req.Username, req.Email, req.FullName, req.Password); err != nil {
		return err
	}

	return c.Status(http.StatusCreated).JSON(fiber.Map{
		"message": "User created successfully",
	})
}

// Login handles POST /auth/login. Accepts form or JSON credentials, issues a
// bearer token and mirrors it into an httponly cookie.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.Username == "" || req.Password == "" {
		return apperrors.NewValidationError("username and password required", nil)
	}

	if h.limiter != nil && !h.limiter.Allow(c.IP()) {
		return apperrors.NewRateLimited("too many login attempts")
	}

	_, token, exp, err := h.auth.Login(c.Context(), req.Username, req.Password)
	if err != nil {
		return err
	}

	c.Cookie(&fiber.Cookie{
		Name:     h.cfg.CookieName,
		Value:    token,
		Path:     "/",
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
		Expires:  exp,
		MaxAge:   int(time.Until(exp).Seconds()),
	})

	return c.JSON(dto.TokenResponse{AccessToken: token, TokenType: "bearer"})
}

// Logout handles POST /auth/logout by clearing the token cookie.
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	if err := h.auth.Logout(c.Context()); err != nil {
		return err
	}

	c.Cookie(&fiber.Cookie{
		Name:     h.cfg.CookieName,
		Value:    "",
		Path:     "/",
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
		Expires:  time.Now().Add(-time.Hour),
		MaxAge:   -1,
	})

	return c.JSON(fiber.Map{"message": "Successfully logged out"})
}
