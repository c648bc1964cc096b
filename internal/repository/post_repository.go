package repository

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/lib/pq"
	"github.com/maheshrc27/editorial-api/internal/models"
)

type PostRepository interface {
	GetByID(ctx context.Context, id int64) (*models.Post, error)
	Create(ctx context.Context, post *models.Post) (int64, error)
	ListByClient(ctx context.Context, clientID int64, statuses ...models.PostStatus) ([]*models.Post, error)
	// Save replaces the stored post if its version still equals post.Version
	// and bumps post.Version on success.
	Save(ctx context.Context, post *models.Post) error
	// SaveBatch saves every post with the same guard in one transaction.
	SaveBatch(ctx context.Context, posts []*models.Post) error
	Remove(ctx context.Context, id int64) error
}

type postRepository struct {
	db *sql.DB
}

func NewPostRepository(db *sql.DB) PostRepository {
	return &postRepository{db: db}
}

const postColumns = `id, client_id, post_type, pillar, status, script, caption, asset_link, scheduled_at, created_by, version, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPost(row rowScanner) (*models.Post, error) {
	var post models.Post
	var scheduledAt sql.NullTime
	err := row.Scan(&post.ID, &post.ClientID, &post.Type, &post.Pillar, &post.Status,
		&post.Content.Script, &post.Content.Caption, &post.Content.AssetLink,
		&scheduledAt, &post.CreatedBy, &post.Version, &post.CreatedAt, &post.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if scheduledAt.Valid {
		t := scheduledAt.Time
		post.ScheduledAt = &t
	}
	return &post, nil
}

func (r *postRepository) Create(ctx context.Context, post *models.Post) (int64, error) {
	query := `
		INSERT INTO posts (client_id, post_type, pillar, status, script, caption, asset_link, scheduled_at, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id
	`

	var id int64
	err := r.db.QueryRowContext(ctx, query, post.ClientID, post.Type, post.Pillar, post.Status,
		post.Content.Script, post.Content.Caption, post.Content.AssetLink, post.ScheduledAt, post.CreatedBy).Scan(&id)
	if err != nil {
		slog.Info(err.Error())
		return 0, err
	}

	return id, nil
}

func (r *postRepository) GetByID(ctx context.Context, id int64) (*models.Post, error) {
	query := `SELECT ` + postColumns + ` FROM posts WHERE id = $1`

	post, err := scanPost(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		slog.Info(err.Error())
		return nil, err
	}

	return post, nil
}

func (r *postRepository) ListByClient(ctx context.Context, clientID int64, statuses ...models.PostStatus) ([]*models.Post, error) {
	query := `SELECT ` + postColumns + ` FROM posts WHERE client_id = $1`
	args := []any{clientID}
	if len(statuses) > 0 {
		values := make([]string, len(statuses))
		for i, s := range statuses {
			values[i] = string(s)
		}
		query += ` AND status = ANY($2)`
		args = append(args, pq.Array(values))
	}
	query += ` ORDER BY created_at, id`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	defer rows.Close()

	var posts []*models.Post
	for rows.Next() {
		post, err := scanPost(rows)
		if err != nil {
			slog.Info(err.Error())
			return nil, err
		}
		posts = append(posts, post)
	}
	return posts, rows.Err()
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func savePost(ctx context.Context, db execer, post *models.Post) error {
	query := `
		UPDATE posts
		SET post_type = $1,
			pillar = $2,
			status = $3,
			script = $4,
			caption = $5,
			asset_link = $6,
			scheduled_at = $7,
			version = version + 1,
			updated_at = $8
		WHERE id = $9 AND version = $10
	`
	res, err := db.ExecContext(ctx, query, post.Type, post.Pillar, post.Status,
		post.Content.Script, post.Content.Caption, post.Content.AssetLink,
		post.ScheduledAt, time.Now(), post.ID, post.Version)
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("post %d at version %d: %w", post.ID, post.Version, models.ErrVersionConflict)
	}
	return nil
}

func (r *postRepository) Save(ctx context.Context, post *models.Post) error {
	if err := savePost(ctx, r.db, post); err != nil {
		return err
	}
	post.Version++
	return nil
}

func (r *postRepository) SaveBatch(ctx context.Context, posts []*models.Post) (err error) {
	if len(posts) == 0 {
		return nil
	}

	tx, err := r.db.BeginTx(ctx, &sql.TxOptions{})
	if err != nil {
		return fmt.Errorf("failed to start transaction: %w", err)
	}
	defer func() {
		if p := recover(); p != nil {
			tx.Rollback()
			panic(p)
		} else if err != nil {
			tx.Rollback()
		}
	}()

	for _, post := range posts {
		if err = savePost(ctx, tx, post); err != nil {
			return err
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	for _, post := range posts {
		post.Version++
	}
	return nil
}

func (r *postRepository) Remove(ctx context.Context, id int64) error {
	query := `DELETE FROM posts WHERE id = $1`
	_, err := r.db.ExecContext(ctx, query, id)

	if err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}
