package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"channel-metrics/internal/models"
)

type PostRepository interface {
	RecordPost(ctx context.Context, channelID, msgID int64, date time.Time, text string) (*models.Post, error)
	SoftDeletePost(ctx context.Context, channelID, msgID int64) error
	AppendMetricSnapshot(ctx context.Context, snapshot *models.PostMetricSnapshot) error
	ListPostsWithLatestMetrics(ctx context.Context, userID int64, limit, offset int) ([]models.PostWithMetrics, int, error)
}

type postRepository struct {
	db     *sqlx.DB
	logger *zap.Logger
}

func NewPostRepository(db *sqlx.DB, logger *zap.Logger) PostRepository {
	return &postRepository{db: db, logger: logger}
}

// RecordPost upserts a post by its (channel_id, msg_id) identity. A
// single ON CONFLICT statement keeps concurrent callers
// last-committed-wins and atomically clears the tombstone when a
// soft-deleted message reappears.
func (r *postRepository) RecordPost(ctx context.Context, channelID, msgID int64, date time.Time, text string) (*models.Post, error) {
	if date.IsZero() {
		return nil, ErrInvalidArgument
	}

	query := `
		INSERT INTO posts (channel_id, msg_id, date, text)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (channel_id, msg_id) DO UPDATE SET
			date = EXCLUDED.date,
			text = EXCLUDED.text,
			is_deleted = false,
			deleted_at = NULL,
			updated_at = now()
		RETURNING channel_id, msg_id, date, COALESCE(text, '') AS text,
		          created_at, updated_at, is_deleted, deleted_at`

	var post models.Post
	if err := r.db.QueryRowxContext(ctx, query, channelID, msgID, date, text).StructScan(&post); err != nil {
		return nil, translateError(err)
	}
	return &post, nil
}

// SoftDeletePost marks a post as removed at the source while keeping its
// metric history. Idempotent: a second call matches no rows and leaves
// deleted_at unchanged.
func (r *postRepository) SoftDeletePost(ctx context.Context, channelID, msgID int64) error {
	query := `
		UPDATE posts
		SET is_deleted = true, deleted_at = now(), updated_at = now()
		WHERE channel_id = $1 AND msg_id = $2 AND is_deleted = false`

	if _, err := r.db.ExecContext(ctx, query, channelID, msgID); err != nil {
		return translateError(err)
	}
	return nil
}

// AppendMetricSnapshot records one observation in the append-only time
// series. Out-of-order snapshot times are accepted; a primary-key
// collision (two collectors observing the same instant) surfaces as
// ErrDuplicateSnapshot with exactly one insert winning.
func (r *postRepository) AppendMetricSnapshot(ctx context.Context, snapshot *models.PostMetricSnapshot) error {
	if snapshot.SnapshotTime.IsZero() {
		return ErrInvalidArgument
	}

	query := `
		INSERT INTO post_metrics (channel_id, msg_id, snapshot_time, views, forwards,
		                          replies_count, comments_count, reactions, reactions_count)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	_, err := r.db.ExecContext(ctx, query,
		snapshot.ChannelID, snapshot.MsgID, snapshot.SnapshotTime,
		snapshot.Views, snapshot.Forwards, snapshot.RepliesCount,
		snapshot.CommentsCount, snapshot.Reactions, snapshot.ReactionsCount)
	if err != nil {
		return translateError(err)
	}
	return nil
}

// ListPostsWithLatestMetrics returns one page of the user's non-deleted
// posts ordered by date DESC with (channel_id, msg_id) DESC as the
// tie-break, so page boundaries stay deterministic when posts share a
// timestamp. Each row carries the newest snapshot via a LATERAL top-1
// lookup satisfied by post_metrics_latest_idx; total_count ignores
// limit/offset.
func (r *postRepository) ListPostsWithLatestMetrics(ctx context.Context, userID int64, limit, offset int) ([]models.PostWithMetrics, int, error) {
	if limit <= 0 || offset < 0 {
		return nil, 0, ErrInvalidArgument
	}

	listQuery := `
		SELECT p.channel_id, p.msg_id, p.date, COALESCE(p.text, '') AS text,
		       p.created_at, p.updated_at,
		       m.snapshot_time, m.views, m.forwards, m.replies_count,
		       m.comments_count, m.reactions, m.reactions_count
		FROM posts p
		JOIN channels c ON c.id = p.channel_id
		LEFT JOIN LATERAL (
			SELECT snapshot_time, views, forwards, replies_count,
			       comments_count, reactions, reactions_count
			FROM post_metrics pm
			WHERE pm.channel_id = p.channel_id AND pm.msg_id = p.msg_id
			ORDER BY pm.snapshot_time DESC
			LIMIT 1
		) m ON true
		WHERE c.user_id = $1 AND p.is_deleted = false
		ORDER BY p.date DESC, p.channel_id DESC, p.msg_id DESC
		LIMIT $2 OFFSET $3`

	rows, err := r.db.QueryxContext(ctx, listQuery, userID, limit, offset)
	if err != nil {
		return nil, 0, translateError(err)
	}
	defer rows.Close()

	items := make([]models.PostWithMetrics, 0, limit)
	for rows.Next() {
		var (
			item           models.PostWithMetrics
			snapshotTime   sql.NullTime
			views          sql.NullInt64
			forwards       sql.NullInt64
			repliesCount   sql.NullInt64
			commentsCount  sql.NullInt64
			reactions      models.ReactionCounts
			reactionsCount sql.NullInt64
		)

		err := rows.Scan(
			&item.Post.ChannelID, &item.Post.MsgID, &item.Post.Date, &item.Post.Text,
			&item.Post.CreatedAt, &item.Post.UpdatedAt,
			&snapshotTime, &views, &forwards, &repliesCount,
			&commentsCount, &reactions, &reactionsCount)
		if err != nil {
			r.logger.Error("Failed to scan post row", zap.Error(err))
			return nil, 0, err
		}

		if snapshotTime.Valid {
			item.Metrics = &models.PostMetricSnapshot{
				ChannelID:      item.Post.ChannelID,
				MsgID:          item.Post.MsgID,
				SnapshotTime:   snapshotTime.Time,
				Views:          views.Int64,
				Forwards:       forwards.Int64,
				RepliesCount:   repliesCount.Int64,
				CommentsCount:  commentsCount.Int64,
				Reactions:      reactions,
				ReactionsCount: reactionsCount.Int64,
			}
		}

		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	countQuery := `
		SELECT COUNT(*)
		FROM posts p
		JOIN channels c ON c.id = p.channel_id
		WHERE c.user_id = $1 AND p.is_deleted = false`

	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, userID); err != nil {
		return nil, 0, translateError(err)
	}

	return items, total, nil
}
