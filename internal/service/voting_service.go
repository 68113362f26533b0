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

// VotingService flips like/dislike edges for (user, suggestion) pairs. Each
// toggle is one ledger transaction; the returned aggregates and flags always
// describe the post-transition state.
type VotingService struct {
	suggestions repository.SuggestionRepository
	votes       repository.VoteRepository
	dispatcher  events.Dispatcher
}

// NewVotingService builds the service.
func NewVotingService(suggestions repository.SuggestionRepository, votes repository.VoteRepository, dispatcher events.Dispatcher) *VotingService {
	return &VotingService{suggestions: suggestions, votes: votes, dispatcher: dispatcher}
}

// ToggleLike flips the actor's like edge on the suggestion.
func (s *VotingService) ToggleLike(ctx context.Context, actorID, suggestionID int64) (SuggestionView, error) {
	return s.toggle(ctx, actorID, suggestionID, domain.VoteKindLike)
}

// ToggleDislike flips the actor's dislike edge on the suggestion.
func (s *VotingService) ToggleDislike(ctx context.Context, actorID, suggestionID int64) (SuggestionView, error) {
	return s.toggle(ctx, actorID, suggestionID, domain.VoteKindDislike)
}

func (s *VotingService) toggle(ctx context.Context, actorID, suggestionID int64, kind domain.VoteKind) (SuggestionView, error) {
	suggestion, err := s.suggestions.GetByID(ctx, suggestionID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return SuggestionView{}, apperrors.NewNotFound("suggestion", nil)
		}
		return SuggestionView{}, err
	}

	votes, err := s.votes.Toggle(ctx, actorID, suggestionID, kind)
	if err != nil {
		return SuggestionView{}, err
	}

	if s.dispatcher != nil {
		_ = s.dispatcher.Publish(ctx, events.Event{
			ID:           uuid.NewString(),
			Type:         events.EventSuggestionVoted,
			SuggestionID: suggestionID,
			ActorID:      actorID,
			Timestamp:    time.Now(),
			Payload: events.SuggestionVotedPayload{
				Kind:          kind,
				LikesCount:    votes.LikesCount,
				DislikesCount: votes.DislikesCount,
			},
		})
	}
	return SuggestionView{Suggestion: *suggestion, Votes: votes}, nil
}
