package repository

import (
	"context"
	"database/sql"
	_ "embed"
	"log/slog"
)

//go:embed schema.sql
var schema string

type Repositories struct {
	Users           UserRepository
	Clients         ClientRepository
	Posts           PostRepository
	History         PostHistoryRepository
	ContentRequests ContentRequestRepository
	Comments        CommentRepository
}

func NewRepositories(db *sql.DB) *Repositories {
	return &Repositories{
		Users:           NewUserRepository(db),
		Clients:         NewClientRepository(db),
		Posts:           NewPostRepository(db),
		History:         NewPostHistoryRepository(db),
		ContentRequests: NewContentRequestRepository(db),
		Comments:        NewCommentRepository(db),
	}
}

// Migrate creates any missing tables. The statements are idempotent.
func Migrate(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, schema); err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}
