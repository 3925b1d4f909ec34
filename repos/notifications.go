package repos

import (
	"context"
	"database/sql"

	"github.com/KeremAR/notification-service/models"
	"github.com/uptrace/bun"
)

type NotificationRepo struct {
	db *bun.DB
}

func NewNotificationRepo(db *bun.DB) *NotificationRepo {
	return &NotificationRepo{db: db}
}

// CreateIdempotent inserts the notification unless a record with the same
// dedup key already exists. The bool result reports whether a new row was
// written; on conflict the previously stored record is returned instead.
func (c *NotificationRepo) CreateIdempotent(ctx context.Context, notification *models.Notification) (*models.Notification, bool, error) {
	result, err := c.db.NewInsert().Model(notification).Ignore().Exec(ctx)
	if err != nil {
		return nil, false, err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return nil, false, err
	}

	if rows == 0 {
		existing := new(models.Notification)
		if err := c.db.NewSelect().Model(existing).Where("dedup_key = ?", notification.DedupKey).Scan(ctx); err != nil {
			return nil, false, err
		}

		return existing, false, nil
	}

	return notification, true, nil
}

func (c *NotificationRepo) GetByUser(ctx context.Context, userId string) ([]models.Notification, error) {
	notifications := make([]models.Notification, 0)

	err := c.db.NewSelect().Model(&notifications).Where("user_id = ?", userId).Order("created_at DESC").Scan(ctx)
	if err != nil {
		return nil, err
	}

	return notifications, nil
}

// MarkRead flips is_read to true for the user's notification and returns the
// updated record. Marking an already read record succeeds again without
// changing it; is_read never transitions back to false.
func (c *NotificationRepo) MarkRead(ctx context.Context, userId, id string) (*models.Notification, error) {
	notification := new(models.Notification)

	result, err := c.db.NewUpdate().Model(notification).
		Set("is_read = TRUE").
		Where("id = ? AND user_id = ?", id, userId).
		Returning("*").
		Exec(ctx)
	if err != nil {
		return nil, err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return nil, err
	}

	if rows == 0 {
		return nil, sql.ErrNoRows
	}

	return notification, nil
}

// Delete permanently removes the user's notification. There is no tombstone
// state: a deleted record is gone from every subsequent listing.
func (c *NotificationRepo) Delete(ctx context.Context, userId, id string) error {
	result, err := c.db.NewDelete().Model((*models.Notification)(nil)).
		Where("id = ? AND user_id = ?", id, userId).
		Exec(ctx)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rows == 0 {
		return sql.ErrNoRows
	}

	return nil
}
