package auth

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/suggestion-service/internal/domain"
	"github.com/spec-kit/suggestion-service/internal/repository"
	apperrors "github.com/spec-kit/suggestion-service/pkg/util"
)

const principalKey = "auth_principal"

// Cookie names accepted when no Authorization header is present.
var tokenCookies = []string{"token", "access_token"}

// AuthMiddleware validates bearer tokens and loads the acting user.
type AuthMiddleware struct {
	tokens *TokenManager
	users  repository.UserRepository
}

// NewAuthMiddleware constructs middleware.
func NewAuthMiddleware(tokens *TokenManager, users repository.UserRepository) *AuthMiddleware {
	return &AuthMiddleware{tokens: tokens, users: users}
}

// extractToken resolves the token from the Authorization header, falling back
// to cookies only when no header value is present. A present but malformed
// header fails outright rather than consulting the cookie.
func extractToken(c *fiber.Ctx) (string, error) {
	authHeader := c.Get("Authorization")
	if authHeader != "" {
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			return "", apperrors.NewUnauthorized("invalid authorization header")
		}
		return parts[1], nil
	}
	for _, name := range tokenCookies {
		if val := c.Cookies(name); val != "" {
			return val, nil
		}
	}
	return "", nil
}

func (m *AuthMiddleware) resolve(c *fiber.Ctx, token string) (*domain.User, error) {
	username, err := m.tokens.ParseToken(token)
	if err != nil {
		if errors.Is(err, ErrTokenExpired) {
			return nil, apperrors.NewUnauthorized("token expired")
		}
		return nil, apperrors.NewUnauthorized("invalid token")
	}

	user, err := m.users.GetByUsername(c.Context(), username)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewUnauthorized("user not found")
		}
		return nil, apperrors.MapError(err)
	}
	return user, nil
}

// Handle enforces authentication for protected routes.
func (m *AuthMiddleware) Handle(c *fiber.Ctx) error {
	token, err := extractToken(c)
	if err != nil {
		return err
	}
	if token == "" {
		return apperrors.NewUnauthorized("missing credentials")
	}

	user, err := m.resolve(c, token)
	if err != nil {
		return err
	}

	c.Locals(principalKey, user)
	return c.Next()
}

// HandleOptional loads the viewer when credentials are present but lets
// anonymous requests through. Invalid credentials still fail; only absence
// is tolerated.
func (m *AuthMiddleware) HandleOptional(c *fiber.Ctx) error {
	token, err := extractToken(c)
	if err != nil {
		return err
	}
	if token == "" {
		return c.Next()
	}

	user, err := m.resolve(c, token)
	if err != nil {
		return err
	}

	c.Locals(principalKey, user)
	return c.Next()
}

// UserFromContext retrieves the authenticated user, if any.
func UserFromContext(c *fiber.Ctx) (*domain.User, bool) {
	val := c.Locals(principalKey)
	if val == nil {
		return nil, false
	}
	user, ok := val.(*domain.User)
	return user, ok
}
