package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"channel-metrics/internal/models"
)

type ChannelRepository interface {
	RegisterChannel(ctx context.Context, id, userID int64, title string) (*models.Channel, error)
	DeleteChannel(ctx context.Context, id int64) error
	GetChannelsByUser(ctx context.Context, userID int64) ([]models.Channel, error)
}

type channelRepository struct {
	db     *sqlx.DB
	logger *zap.Logger
}

func NewChannelRepository(db *sqlx.DB, logger *zap.Logger) ChannelRepository {
	return &channelRepository{db: db, logger: logger}
}

// RegisterChannel upserts a channel by its Telegram ID. Re-registering
// refreshes the title and owner.
func (r *channelRepository) RegisterChannel(ctx context.Context, id, userID int64, title string) (*models.Channel, error) {
	query := `
		INSERT INTO channels (id, user_id, title)
		VALUES ($1, $2, $3)
		ON CONFLICT (id) DO UPDATE SET
			user_id = EXCLUDED.user_id,
			title = EXCLUDED.title
		RETURNING id, user_id, title, created_at`

	var channel models.Channel
	if err := r.db.QueryRowxContext(ctx, query, id, userID, title).StructScan(&channel); err != nil {
		return nil, translateError(err)
	}
	return &channel, nil
}

// DeleteChannel hard-deletes a channel. The database cascade removes its
// posts and their metric snapshots atomically; no application cleanup.
func (r *channelRepository) DeleteChannel(ctx context.Context, id int64) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM channels WHERE id = $1`, id)
	if err != nil {
		return translateError(err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return fmt.Errorf("channel not found: %d", id)
	}
	return nil
}

func (r *channelRepository) GetChannelsByUser(ctx context.Context, userID int64) ([]models.Channel, error) {
	channels := []models.Channel{}
	query := `SELECT id, user_id, title, created_at FROM channels WHERE user_id = $1 ORDER BY id`
	if err := r.db.SelectContext(ctx, &channels, query, userID); err != nil {
		return nil, err
	}
	return channels, nil
}
