package models

import "time"

// Channel represents a registered Telegram channel stored in the
// 'channels' table. Deleting a channel is a hard delete: the database
// cascade removes its posts and their metric snapshots.
type Channel struct {
	ID        int64     `db:"id" json:"id"` // Telegram channel ID
	UserID    int64     `db:"user_id" json:"user_id"`
	Title     string    `db:"title" json:"title"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}
