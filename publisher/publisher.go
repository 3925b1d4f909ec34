package publisher

import (
	"context"
	"encoding/json"
	"time"

	"github.com/KeremAR/notification-service/events"
	"github.com/KeremAR/notification-service/models"
	"github.com/go-redis/redis/v8"
	"github.com/rs/zerolog/log"
)

// redisPublisher is the subset of *redis.Client the publisher needs.
type redisPublisher interface {
	Publish(ctx context.Context, channel string, message interface{}) *redis.IntCmd
}

type LifecyclePublisher struct {
	client redisPublisher
}

func NewLifecyclePublisher(client *redis.Client) *LifecyclePublisher {
	return &LifecyclePublisher{client: client}
}

func (p *LifecyclePublisher) NotificationCreated(notification *models.Notification) {
	p.publish(events.NotificationEvent{
		Type:           events.NotificationCreated,
		NotificationId: notification.Id,
		UserId:         notification.UserId,
		Title:          notification.Title,
		Message:        notification.Message,
		Timestamp:      time.Now().UTC(),
	})
}

func (p *LifecyclePublisher) NotificationRead(notification *models.Notification) {
	p.publish(events.NotificationEvent{
		Type:           events.NotificationRead,
		NotificationId: notification.Id,
		UserId:         notification.UserId,
		Timestamp:      time.Now().UTC(),
	})
}

func (p *LifecyclePublisher) NotificationDeleted(id, userId string) {
	p.publish(events.NotificationEvent{
		Type:           events.NotificationDeleted,
		NotificationId: id,
		UserId:         userId,
		Timestamp:      time.Now().UTC(),
	})
}

// publish is fire and forget: the primary operation has already succeeded
// against the store and must not block on or fail with the broker.
func (p *LifecyclePublisher) publish(event events.NotificationEvent) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second*5)
		defer cancel()

		payload, err := json.Marshal(event)
		if err != nil {
			log.Error().Err(err).Str("type", string(event.Type)).Msg("Failed to encode notification event")
			return
		}

		if err := p.client.Publish(ctx, events.Channel, payload).Err(); err != nil {
			log.Warn().Err(err).Str("type", string(event.Type)).Msg("Failed to publish notification event")
		}
	}()
}
