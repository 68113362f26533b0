package events

import (
	"time"

	"github.com/spec-kit/suggestion-service/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventUserRegistered    EventType = "user_registered"
	EventSuggestionCreated EventType = "suggestion_created"
	EventSuggestionVoted   EventType = "suggestion_voted"
	EventSuggestionDeleted EventType = "suggestion_deleted"
)

// Event represents a domain event emitted by services.
type Event struct {
	ID           string      `json:"id"`
	Type         EventType   `json:"type"`
	SuggestionID int64       `json:"suggestion_id,omitempty"`
	ActorID      int64       `json:"actor_id,omitempty"`
	Timestamp    time.Time   `json:"timestamp"`
	Payload      interface{} `json:"payload"`
}

// UserRegisteredPayload payload.
type UserRegisteredPayload struct {
	Username string `json:"username"`
}

// SuggestionCreatedPayload payload.
type SuggestionCreatedPayload struct {
	Title string `json:"title"`
}

// SuggestionVotedPayload payload.
type SuggestionVotedPayload struct {
	Kind          domain.VoteKind `json:"kind"`
	LikesCount    int64           `json:"likes_count"`
	DislikesCount int64           `json:"dislikes_count"`
}

// SuggestionDeletedPayload payload.
type SuggestionDeletedPayload struct {
	Title string `json:"title"`
}
