package repository

import (
	"context"
	"database/sql"
	"log/slog"

	"github.com/maheshrc27/editorial-api/internal/models"
)

type CommentRepository interface {
	Create(ctx context.Context, comment *models.Comment) (int64, error)
	ListByPost(ctx context.Context, postID int64) ([]*models.Comment, error)
}

type commentRepository struct {
	db *sql.DB
}

func NewCommentRepository(db *sql.DB) CommentRepository {
	return &commentRepository{db: db}
}

func (r *commentRepository) Create(ctx context.Context, comment *models.Comment) (int64, error) {
	query := `
		INSERT INTO comments (post_id, author_id, author_role, message)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`

	var id int64
	err := r.db.QueryRowContext(ctx, query, comment.PostID, comment.AuthorID, comment.AuthorRole, comment.Message).Scan(&id)
	if err != nil {
		slog.Info(err.Error())
		return 0, err
	}
	return id, nil
}

func (r *commentRepository) ListByPost(ctx context.Context, postID int64) ([]*models.Comment, error) {
	query := `SELECT id, post_id, author_id, author_role, message, created_at FROM comments WHERE post_id = $1 ORDER BY created_at, id`

	rows, err := r.db.QueryContext(ctx, query, postID)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	defer rows.Close()

	var comments []*models.Comment
	for rows.Next() {
		var c models.Comment
		err := rows.Scan(&c.ID, &c.PostID, &c.AuthorID, &c.AuthorRole, &c.Message, &c.CreatedAt)
		if err != nil {
			slog.Info(err.Error())
			return nil, err
		}
		comments = append(comments, &c)
	}
	return comments, rows.Err()
}
