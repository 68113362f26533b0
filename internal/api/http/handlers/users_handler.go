package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/suggestion-service/internal/api/dto"
	"github.com/spec-kit/suggestion-service/internal/auth"
	apperrors "github.com/spec-kit/suggestion-service/pkg/util"
)

// UsersHandler exposes the authenticated user's profile.
type UsersHandler struct{}

// NewUsersHandler constructs handler.
func NewUsersHandler() *UsersHandler {
	return &UsersHandler{}
}

// Me handles GET /users/me.
func (h *UsersHandler) Me(c *fiber.Ctx) error {
	user, ok := auth.UserFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("user required")
	}
	return c.JSON(dto.UserProfileResponse{
		Username: user.Username,
		Email:    user.Email,
		FullName: user.FullName,
	})
}
