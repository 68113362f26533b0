package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/suggestion-service/internal/domain"
	"github.com/spec-kit/suggestion-service/internal/events"
	"github.com/spec-kit/suggestion-service/internal/repository"
	apperrors "github.com/spec-kit/suggestion-service/pkg/util"
)

// SuggestionView pairs a suggestion with its vote aggregates for one viewer.
type SuggestionView struct {
	Suggestion domain.Suggestion
	Votes      domain.VoteSummary
}

// SuggestionService handles suggestion reads, creation and deletion.
type SuggestionService struct {
	suggestions repository.SuggestionRepository
	votes       repository.VoteRepository
	dispatcher  events.Dispatcher
}

// NewSuggestionService builds the service.
func NewSuggestionService(suggestions repository.SuggestionRepository, votes repository.VoteRepository, dispatcher events.Dispatcher) *SuggestionService {
	return &SuggestionService{suggestions: suggestions, votes: votes, dispatcher: dispatcher}
}

// Create persists a new suggestion for the acting user. A fresh suggestion
// has no edges, so the aggregates are zero by definition.
func (s *SuggestionService) Create(ctx context.Context, actor *domain.User, title, description string) (SuggestionView, error) {
	suggestion := &domain.Suggestion{
		Title:       title,
		Description: description,
		UserID:      actor.ID,
		AuthorName:  actor.Username,
	}
	if err := s.suggestions.Create(ctx, suggestion); err != nil {
		return SuggestionView{}, err
	}

	s.publish(ctx, events.Event{
		ID:           uuid.NewString(),
		Type:         events.EventSuggestionCreated,
		SuggestionID: suggestion.ID,
		ActorID:      actor.ID,
		Timestamp:    time.Now(),
		Payload:      events.SuggestionCreatedPayload{Title: suggestion.Title},
	})
	return SuggestionView{Suggestion: *suggestion}, nil
}

// Get returns one suggestion with aggregates for the viewer. A nil viewer is
// anonymous and always reads liked=disliked=false.
func (s *SuggestionService) Get(ctx context.Context, id int64, viewerID *int64) (SuggestionView, error) {
	suggestion, err := s.suggestions.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return SuggestionView{}, apperrors.NewNotFound("suggestion", nil)
		}
		return SuggestionView{}, err
	}

	votes, err := s.votes.Summary(ctx, suggestion.ID, viewerID)
	if err != nil {
		return SuggestionView{}, err
	}
	return SuggestionView{Suggestion: *suggestion, Votes: votes}, nil
}

// List returns a page of suggestions with per-viewer aggregates and the
// total suggestion count.
func (s *SuggestionService) List(ctx context.Context, viewerID *int64, skip, limit int) ([]SuggestionView, int64, error) {
	total, err := s.suggestions.CountAll(ctx)
	if err != nil {
		return nil, 0, err
	}

	suggestions, err := s.suggestions.List(ctx, limit, skip)
	if err != nil {
		return nil, 0, err
	}

	views, err := s.attachVotes(ctx, suggestions, viewerID)
	if err != nil {
		return nil, 0, err
	}
	return views, total, nil
}

// ListByAuthor returns a page of one user's suggestions with aggregates and
// the author's total suggestion count.
func (s *SuggestionService) ListByAuthor(ctx context.Context, authorID int64, viewerID *int64, skip, limit int) ([]SuggestionView, int64, error) {
	total, err := s.suggestions.CountByAuthor(ctx, authorID)
	if err != nil {
		return nil, 0, err
	}

	suggestions, err := s.suggestions.ListByAuthor(ctx, authorID, limit, skip)
	if err != nil {
		return nil, 0, err
	}

	views, err := s.attachVotes(ctx, suggestions, viewerID)
	if err != nil {
		return nil, 0, err
	}
	return views, total, nil
}

// Delete removes a suggestion and its vote edges. Only the author may
// delete; anyone else gets the same 404 as a missing suggestion so that
// existence is not revealed.
func (s *SuggestionService) Delete(ctx context.Context, actorID, id int64) error {
	suggestion, err := s.suggestions.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewNotFound("suggestion", nil)
		}
		return err
	}
	if suggestion.UserID != actorID {
		return apperrors.NewNotFound("suggestion", nil)
	}

	if err := s.suggestions.Delete(ctx, id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewNotFound("suggestion", nil)
		}
		return err
	}

	s.publish(ctx, events.Event{
		ID:           uuid.NewString(),
		Type:         events.EventSuggestionDeleted,
		SuggestionID: id,
		ActorID:      actorID,
		Timestamp:    time.Now(),
		Payload:      events.SuggestionDeletedPayload{Title: suggestion.Title},
	})
	return nil
}

func (s *SuggestionService) attachVotes(ctx context.Context, suggestions []domain.Suggestion, viewerID *int64) ([]SuggestionView, error) {
	views := make([]SuggestionView, 0, len(suggestions))
	for i := range suggestions {
		votes, err := s.votes.Summary(ctx, suggestions[i].ID, viewerID)
		if err != nil {
			return nil, err
		}
		views = append(views, SuggestionView{Suggestion: suggestions[i], Votes: votes})
	}
	return views, nil
}

func (s *SuggestionService) publish(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	_ = s.dispatcher.Publish(ctx, event)
}
