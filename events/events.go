// Package events defines the lifecycle events this service emits after it
// mutates its own store, for consumption by other services (push dispatch,
// audit). They are published on a single channel and are not persisted.
package events

import "time"

const Channel = "notification.events"

type EventType string

const (
	NotificationCreated EventType = "notification.created"
	NotificationRead    EventType = "notification.read"
	NotificationDeleted EventType = "notification.deleted"
)

type NotificationEvent struct {
	Type           EventType `json:"type"`
	NotificationId string    `json:"notificationId"`
	UserId         string    `json:"userId"`
	Title          string    `json:"title,omitempty"`
	Message        string    `json:"message,omitempty"`
	Timestamp      time.Time `json:"timestamp"`
}
