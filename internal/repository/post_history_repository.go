package repository

import (
	"context"
	"database/sql"
	"log/slog"

	"github.com/maheshrc27/editorial-api/internal/models"
)

type PostHistoryRepository interface {
	Create(ctx context.Context, ph *models.PostHistory) (int64, error)
	ListByPost(ctx context.Context, postID int64) ([]*models.PostHistory, error)
}

type postHistoryRepository struct {
	db *sql.DB
}

func NewPostHistoryRepository(db *sql.DB) PostHistoryRepository {
	return &postHistoryRepository{db: db}
}

func (r *postHistoryRepository) Create(ctx context.Context, ph *models.PostHistory) (int64, error) {
	query := `
		INSERT INTO post_history (post_id, client_id, actor_id, from_status, to_status, scheduled_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`

	var id int64
	err := r.db.QueryRowContext(ctx, query, ph.PostID, ph.ClientID, ph.ActorID, ph.FromStatus, ph.ToStatus, ph.ScheduledAt).Scan(&id)
	if err != nil {
		slog.Info(err.Error())
		return 0, err
	}

	return id, nil
}

func (r *postHistoryRepository) ListByPost(ctx context.Context, postID int64) ([]*models.PostHistory, error) {
	query := `SELECT id, post_id, client_id, actor_id, from_status, to_status, scheduled_at, created_at FROM post_history WHERE post_id = $1 ORDER BY created_at, id`

	rows, err := r.db.QueryContext(ctx, query, postID)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	defer rows.Close()

	var entries []*models.PostHistory
	for rows.Next() {
		var ph models.PostHistory
		var scheduledAt sql.NullTime
		err := rows.Scan(&ph.ID, &ph.PostID, &ph.ClientID, &ph.ActorID, &ph.FromStatus, &ph.ToStatus, &scheduledAt, &ph.CreatedAt)
		if err != nil {
			slog.Info(err.Error())
			return nil, err
		}
		if scheduledAt.Valid {
			t := scheduledAt.Time
			ph.ScheduledAt = &t
		}
		entries = append(entries, &ph)
	}
	return entries, rows.Err()
}
