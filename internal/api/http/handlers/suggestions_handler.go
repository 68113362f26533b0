package handlers

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/suggestion-service/internal/api/dto"
	"github.com/spec-kit/suggestion-service/internal/auth"
	"github.com/spec-kit/suggestion-service/internal/service"
	apperrors "github.com/spec-kit/suggestion-service/pkg/util"
)

// SuggestionsHandler manages suggestion endpoints.
type SuggestionsHandler struct {
	suggestions *service.SuggestionService
	voting      *service.VotingService
}

// NewSuggestionsHandler constructs handler.
func NewSuggestionsHandler(suggestionService *service.SuggestionService, votingService *service.VotingService) *SuggestionsHandler {
	return &SuggestionsHandler{suggestions: suggestionService, voting: votingService}
}

// Create POST /suggestions.
func (h *SuggestionsHandler) Create(c *fiber.Ctx) error {
	user, ok := auth.UserFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("user required")
	}

	var req dto.CreateSuggestionRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if strings.TrimSpace(req.Title) == "" || strings.TrimSpace(req.Description) == "" {
		return apperrors.NewValidationError("title and description required", nil)
	}

	view, err := h.suggestions.Create(c.Context(), user, req.Title, req.Description)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(suggestionResponse(view))
}

// List GET /suggestions.
func (h *SuggestionsHandler) List(c *fiber.Ctx) error {
	skip := parseIntQuery(c.Query("skip"), 0)
	limit := parseIntQuery(c.Query("limit"), 10)

	views, total, err := h.suggestions.List(c.Context(), viewerID(c), skip, limit)
	if err != nil {
		return err
	}
	return c.JSON(suggestionListResponse(views, total))
}

// Get GET /suggestions/:id.
func (h *SuggestionsHandler) Get(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}

	view, err := h.suggestions.Get(c.Context(), id, viewerID(c))
	if err != nil {
		return err
	}
	return c.JSON(suggestionResponse(view))
}

// GetPublic GET /suggestions/public/:id. Never authenticated; the viewer
// flags are always false.
func (h *SuggestionsHandler) GetPublic(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}

	view, err := h.suggestions.Get(c.Context(), id, nil)
	if err != nil {
		return err
	}
	return c.JSON(suggestionResponse(view))
}

// Like POST /suggestions/:id/like.
func (h *SuggestionsHandler) Like(c *fiber.Ctx) error {
	return h.toggle(c, h.voting.ToggleLike)
}

// Dislike POST /suggestions/:id/dislike.
func (h *SuggestionsHandler) Dislike(c *fiber.Ctx) error {
	return h.toggle(c, h.voting.ToggleDislike)
}

// Delete DELETE /suggestions/:id.
func (h *SuggestionsHandler) Delete(c *fiber.Ctx) error {
	user, ok := auth.UserFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("user required")
	}
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}

	if err := h.suggestions.Delete(c.Context(), user.ID, id); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}

// ListByUser GET /suggestions/user/:user_id.
func (h *SuggestionsHandler) ListByUser(c *fiber.Ctx) error {
	authorID, err := parseID(c, "user_id")
	if err != nil {
		return err
	}
	skip := parseIntQuery(c.Query("skip"), 0)
	limit := parseIntQuery(c.Query("limit"), 10)

	views, total, err := h.suggestions.ListByAuthor(c.Context(), authorID, viewerID(c), skip, limit)
	if err != nil {
		return err
	}
	return c.JSON(suggestionListResponse(views, total))
}

func (h *SuggestionsHandler) toggle(c *fiber.Ctx, op func(ctx context.Context, actorID, suggestionID int64) (service.SuggestionView, error)) error {
	user, ok := auth.UserFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("user required")
	}
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}

	view, err := op(c.Context(), user.ID, id)
	if err != nil {
		return err
	}
	return c.JSON(suggestionResponse(view))
}

func viewerID(c *fiber.Ctx) *int64 {
	if user, ok := auth.UserFromContext(c); ok {
		return &user.ID
	}
	return nil
}

func parseID(c *fiber.Ctx, param string) (int64, error) {
	id, err := strconv.ParseInt(c.Params(param), 10, 64)
	if err != nil || id <= 0 {
		return 0, apperrors.NewValidationError("invalid "+param, nil)
	}
	return id, nil
}

func parseIntQuery(val string, def int) int {
	if val == "" {
		return def
	}
	parsed, err := strconv.Atoi(val)
	if err != nil || parsed < 0 {
		return def
	}
	return parsed
}

func suggestionResponse(view service.SuggestionView) dto.SuggestionResponse {
	return dto.SuggestionResponse{
		ID:              view.Suggestion.ID,
		Title:           view.Suggestion.Title,
		Description:     view.Suggestion.Description,
		UserID:          view.Suggestion.UserID,
		UserName:        view.Suggestion.AuthorName,
		LikesCount:      view.Votes.LikesCount,
		DislikesCount:   view.Votes.DislikesCount,
		UserHasLiked:    view.Votes.Liked,
		UserHasDisliked: view.Votes.Disliked,
	}
}

func suggestionListResponse(views []service.SuggestionView, total int64) dto.SuggestionListResponse {
	items := make([]dto.SuggestionResponse, 0, len(views))
	for i := range views {
		items = append(items, suggestionResponse(views[i]))
	}
	return dto.SuggestionListResponse{Suggestions: items, Total: total}
}
