package models

import (
	"context"
	"time"

	"github.com/uptrace/bun"
)

// InitSchema creates the notifications table and the unique index backing
// the deduplication guard. Duplicate inserts for the same dedup_key are
// rejected by the database itself, not by a separate read-then-write.
func InitSchema(db *bun.DB) error {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second*5)
	defer cancel()

	if _, err := db.NewCreateTable().Model((*Notification)(nil)).IfNotExists().Exec(ctx); err != nil {
		return err
	}

	_, err := db.NewCreateIndex().
		Model((*Notification)(nil)).
		Index("notifications_dedup_key_idx").
		Unique().
		IfNotExists().
		Column("dedup_key").
		Exec(ctx)

	return err
}
