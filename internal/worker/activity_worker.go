package worker

import (
	"go.uber.org/zap"

	"github.com/spec-kit/suggestion-service/internal/events"
	"github.com/spec-kit/suggestion-service/internal/service"
)

// StartActivityWorker subscribes the activity service to every board event.
// Handlers run inline on the dispatcher's publishing goroutine; the service
// itself keeps failures off the request path.
func StartActivityWorker(dispatcher events.Dispatcher, activity *service.ActivityService, logger *zap.Logger) {
	if dispatcher == nil || activity == nil {
		return
	}

	types := []events.EventType{
		events.EventUserRegistered,
		events.EventSuggestionCreated,
		events.EventSuggestionVoted,
		events.EventSuggestionDeleted,
	}
	for _, eventType := range types {
		dispatcher.Subscribe(eventType, activity.HandleEvent)
	}
	logger.Info("activity worker subscribed", zap.Int("event_types", len(types)))
}
