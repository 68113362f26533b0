package service

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/spec-kit/suggestion-service/internal/events"
)

// ActivityService mirrors domain events into Redis counters for operational
// dashboards. Everything here is best-effort; a Redis failure never affects
// the request that produced the event.
type ActivityService struct {
	client *redis.Client
	logger *zap.Logger
}

// NewActivityService creates the service.
func NewActivityService(client *redis.Client, logger *zap.Logger) *ActivityService {
	return &ActivityService{client: client, logger: logger}
}

// HandleEvent logs the event and bumps its Redis activity counters.
func (a *ActivityService) HandleEvent(ctx context.Context, event events.Event) error {
	a.logger.Info("domain event",
		zap.String("event_type", string(event.Type)),
		zap.Int64("suggestion_id", event.SuggestionID),
		zap.Int64("actor_id", event.ActorID))

	if a.client == nil {
		return nil
	}

	if err := a.client.Incr(ctx, "activity:"+string(event.Type)).Err(); err != nil {
		a.logger.Warn("activity counter update failed", zap.Error(err))
		return nil
	}
	if event.SuggestionID != 0 {
		key := fmt.Sprintf("activity:suggestion:%d", event.SuggestionID)
		if err := a.client.Incr(ctx, key).Err(); err != nil {
			a.logger.Warn("activity counter update failed", zap.Error(err))
		}
	}
	return nil
}
