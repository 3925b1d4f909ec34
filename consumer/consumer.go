package consumer

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/KeremAR/notification-service/config"
	"github.com/KeremAR/notification-service/metrics"
	"github.com/KeremAR/notification-service/models"
	"github.com/KeremAR/notification-service/utils"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/rs/zerolog/log"
)

// Task types the issue service publishes, one per routing key.
const (
	TypeIssueCreated       = "issue.created"
	TypeIssueStatusChanged = "issue.status_changed"
)

type issueCreatedPayload struct {
	UserId string `json:"UserId" validate:"required"`
	Title  string `json:"Title" validate:"required"`
	Id     string `json:"Id" validate:"required"`
}

type issueStatusChangedPayload struct {
	UserId string `json:"UserId" validate:"required"`
	Title  string `json:"Title" validate:"required"`
	Status string `json:"Status" validate:"required"`
	Id     string `json:"Id" validate:"required"`
}

type Store interface {
	CreateIdempotent(ctx context.Context, notification *models.Notification) (*models.Notification, bool, error)
}

type Mailer interface {
	Enabled() bool
	Send(to, subject, body string) error
}

type Publisher interface {
	NotificationCreated(notification *models.Notification)
}

// Consumer subscribes to the durable notifications queue. Delivery is at
// least once: a handler that returns an error leaves the message
// unacknowledged and the broker redelivers it, which is exactly what the
// deduplication guard in the store absorbs.
type Consumer struct {
	server    *asynq.Server
	store     Store
	mailer    Mailer
	publisher Publisher
	validate  *validator.Validate
}

func New(config *config.Config, store Store, mailer Mailer, publisher Publisher) (*Consumer, error) {
	redisOpt, err := asynq.ParseRedisURI(config.RedisUrl)
	if err != nil {
		return nil, err
	}

	server := asynq.NewServer(redisOpt, asynq.Config{
		Concurrency: config.ConsumerConfig.Concurrency,
		Queues: map[string]int{
			config.ConsumerConfig.Queue: 10,
		},
	})

	return &Consumer{
		server:    server,
		store:     store,
		mailer:    mailer,
		publisher: publisher,
		validate:  validator.New(),
	}, nil
}

func (c *Consumer) Start() error {
	mux := asynq.NewServeMux()
	mux.HandleFunc(TypeIssueCreated, c.handleIssueCreated)
	mux.HandleFunc(TypeIssueStatusChanged, c.handleIssueStatusChanged)

	return c.server.Start(mux)
}

// Shutdown waits for in-flight handlers to return before closing the broker
// connection, so a half-processed message is redelivered instead of lost.
func (c *Consumer) Shutdown() {
	c.server.Shutdown()
}

func (c *Consumer) handleIssueCreated(ctx context.Context, t *asynq.Task) error {
	payload := new(issueCreatedPayload)
	if err := json.Unmarshal(t.Payload(), payload); err != nil {
		log.Warn().Err(err).Msg("Dropping malformed issue.created event")
		return nil
	}

	if err := c.validate.Struct(payload); err != nil {
		log.Warn().Interface("fields", utils.ValidateStruct(err)).Msg("Dropping incomplete issue.created event")
		return nil
	}

	title, message := renderCreated(payload.Title)

	return c.create(ctx, payload.UserId, title, message, models.TypeIssueCreated, models.IssueCreatedData{
		IssueId: payload.Id,
	})
}

func (c *Consumer) handleIssueStatusChanged(ctx context.Context, t *asynq.Task) error {
	payload := new(issueStatusChangedPayload)
	if err := json.Unmarshal(t.Payload(), payload); err != nil {
		log.Warn().Err(err).Msg("Dropping malformed issue.status_changed event")
		return nil
	}

	if err := c.validate.Struct(payload); err != nil {
		log.Warn().Interface("fields", utils.ValidateStruct(err)).Msg("Dropping incomplete issue.status_changed event")
		return nil
	}

	title, message := renderStatusChanged(payload.Title, payload.Status)

	return c.create(ctx, payload.UserId, title, message, models.TypeIssueStatusChanged, models.IssueStatusChangedData{
		IssueId:   payload.Id,
		NewStatus: payload.Status,
	})
}

// create runs the deduplication guard and the side effects of a new record.
// An error return leaves the message unacknowledged for redelivery; a
// duplicate is a confirmed no-op and acknowledges normally without firing
// the publisher or the mailer a second time.
func (c *Consumer) create(ctx context.Context, userId, title, message string, notificationType models.NotificationType, data models.NotificationData) error {
	notification := &models.Notification{
		Id:        uuid.New().String(),
		UserId:    userId,
		Title:     title,
		Message:   message,
		Type:      notificationType,
		Data:      data.ToMap(),
		DedupKey:  data.DedupKey(),
		CreatedAt: time.Now().UTC(),
	}

	stored, created, err := c.store.CreateIdempotent(ctx, notification)
	if err != nil {
		return fmt.Errorf("persist notification: %w", err)
	}

	if !created {
		log.Debug().Str("dedup_key", notification.DedupKey).Msg("Duplicate event absorbed")
		return nil
	}

	metrics.NotificationsSent.Inc()
	c.publisher.NotificationCreated(stored)

	if c.mailer.Enabled() {
		if err := c.mailer.Send(stored.UserId, stored.Title, stored.Message); err != nil {
			metrics.EmailFailures.Inc()
			log.Warn().Err(err).Str("user", stored.UserId).Msg("Failed to send notification email")
		}
	}

	return nil
}
