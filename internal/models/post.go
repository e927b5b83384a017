package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// Post represents a channel message stored in the 'posts' table.
// Identity is the composite (channel_id, msg_id) pair: msg_id is unique
// only within its channel. Posts are soft-deleted so metric history
// survives message removal.
type Post struct {
	ChannelID int64      `db:"channel_id" json:"channel_id"`
	MsgID     int64      `db:"msg_id" json:"msg_id"`
	Date      time.Time  `db:"date" json:"date"`
	Text      string     `db:"text" json:"text"`
	CreatedAt time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt time.Time  `db:"updated_at" json:"updated_at"`
	IsDeleted bool       `db:"is_deleted" json:"is_deleted"`
	DeletedAt *time.Time `db:"deleted_at" json:"deleted_at,omitempty"`
}

// PostMetricSnapshot is one immutable observation of a post's engagement
// metrics, stored in the append-only 'post_metrics' table. Values are not
// monotonic: views or reactions can legitimately drop between snapshots.
type PostMetricSnapshot struct {
	ChannelID      int64          `db:"channel_id" json:"channel_id"`
	MsgID          int64          `db:"msg_id" json:"msg_id"`
	SnapshotTime   time.Time      `db:"snapshot_time" json:"snapshot_time"`
	Views          int64          `db:"views" json:"views"`
	Forwards       int64          `db:"forwards" json:"forwards"`
	RepliesCount   int64          `db:"replies_count" json:"replies_count"`
	CommentsCount  int64          `db:"comments_count" json:"comments_count"`
	Reactions      ReactionCounts `db:"reactions" json:"reactions"`
	ReactionsCount int64          `db:"reactions_count" json:"reactions_count"`
}

// PostWithMetrics is a listing row: a post together with its newest
// snapshot. Metrics is nil when nothing has been collected for the post
// yet, never a zero-valued snapshot.
type PostWithMetrics struct {
	Post    Post                `json:"post"`
	Metrics *PostMetricSnapshot `json:"metrics,omitempty"`
}

// ReactionCounts maps a reaction kind (emoji or custom emoji ID) to the
// number of users who set it. Stored as a JSONB column.
type ReactionCounts map[string]int64

func (r ReactionCounts) Value() (driver.Value, error) {
	if r == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(r)
}

func (r *ReactionCounts) Scan(src interface{}) error {
	switch v := src.(type) {
	case nil:
		*r = nil
		return nil
	case []byte:
		return json.Unmarshal(v, r)
	case string:
		return json.Unmarshal([]byte(v), r)
	default:
		return fmt.Errorf("cannot scan reactions from %T", src)
	}
}
