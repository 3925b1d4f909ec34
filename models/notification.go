package models

import (
	"time"

	"github.com/uptrace/bun"
)

type NotificationType string

const (
	TypeIssueCreated       NotificationType = "issue_created"
	TypeIssueStatusChanged NotificationType = "issue_status_changed"
)

type Notification struct {
	bun.BaseModel `bun:"notifications"`

	Id        string                 `bun:",pk" json:"id"`
	UserId    string                 `bun:"user_id" json:"user_id"`
	Title     string                 `json:"title"`
	Message   string                 `json:"message"`
	Type      NotificationType       `json:"type"`
	Data      map[string]interface{} `bun:",json_use_number" json:"data"`
	DedupKey  string                 `bun:"dedup_key" json:"-"`
	IsRead    bool                   `bun:"is_read" json:"is_read"`
	CreatedAt time.Time              `bun:",nullzero,notnull,default:current_timestamp" json:"created_at"`
}

// NotificationData is the typed correlation payload attached to a
// notification. Each notification type declares its own shape so consumers
// of the lifecycle events can rely on the fields being present, and each
// shape derives the idempotency key that collapses broker redeliveries.
type NotificationData interface {
	ToMap() map[string]interface{}
	DedupKey() string
}

type IssueCreatedData struct {
	IssueId string
}

func (d IssueCreatedData) ToMap() map[string]interface{} {
	return map[string]interface{}{
		"issue_id": d.IssueId,
	}
}

func (d IssueCreatedData) DedupKey() string {
	return string(TypeIssueCreated) + ":" + d.IssueId
}

type IssueStatusChangedData struct {
	IssueId   string
	NewStatus string
}

func (d IssueStatusChangedData) ToMap() map[string]interface{} {
	return map[string]interface{}{
		"issue_id":   d.IssueId,
		"new_status": d.NewStatus,
	}
}

func (d IssueStatusChangedData) DedupKey() string {
	return string(TypeIssueStatusChanged) + ":" + d.IssueId + ":" + d.NewStatus
}
