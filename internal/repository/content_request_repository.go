package repository

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/maheshrc27/editorial-api/internal/models"
)

type ContentRequestRepository interface {
	GetByID(ctx context.Context, id int64) (*models.ContentRequest, error)
	Create(ctx context.Context, cr *models.ContentRequest) (int64, error)
	ListByClient(ctx context.Context, clientID int64, status models.ContentRequestStatus) ([]*models.ContentRequest, error)
	// Respond records the outcome of a pending request. It fails with
	// models.ErrVersionConflict when the request is no longer pending.
	Respond(ctx context.Context, cr *models.ContentRequest) error
}

type contentRequestRepository struct {
	db *sql.DB
}

func NewContentRequestRepository(db *sql.DB) ContentRequestRepository {
	return &contentRequestRepository{db: db}
}

const contentRequestColumns = `id, client_id, title, description, status, requested_by, post_id, created_at, responded_at`

func scanContentRequest(row rowScanner) (*models.ContentRequest, error) {
	var cr models.ContentRequest
	var postID sql.NullInt64
	var respondedAt sql.NullTime
	err := row.Scan(&cr.ID, &cr.ClientID, &cr.Title, &cr.Description, &cr.Status, &cr.RequestedBy, &postID, &cr.CreatedAt, &respondedAt)
	if err != nil {
		return nil, err
	}
	if postID.Valid {
		id := postID.Int64
		cr.PostID = &id
	}
	if respondedAt.Valid {
		t := respondedAt.Time
		cr.RespondedAt = &t
	}
	return &cr, nil
}

func (r *contentRequestRepository) GetByID(ctx context.Context, id int64) (*models.ContentRequest, error) {
	query := `SELECT ` + contentRequestColumns + ` FROM content_requests WHERE id = $1`

	cr, err := scanContentRequest(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		slog.Info(err.Error())
		return nil, err
	}
	return cr, nil
}

func (r *contentRequestRepository) Create(ctx context.Context, cr *models.ContentRequest) (int64, error) {
	query := `
		INSERT INTO content_requests (client_id, title, description, status, requested_by)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`

	var id int64
	err := r.db.QueryRowContext(ctx, query, cr.ClientID, cr.Title, cr.Description, cr.Status, cr.RequestedBy).Scan(&id)
	if err != nil {
		slog.Info(err.Error())
		return 0, err
	}
	return id, nil
}

func (r *contentRequestRepository) ListByClient(ctx context.Context, clientID int64, status models.ContentRequestStatus) ([]*models.ContentRequest, error) {
	query := `SELECT ` + contentRequestColumns + ` FROM content_requests WHERE client_id = $1`
	args := []any{clientID}
	if status != "" {
		query += ` AND status = $2`
		args = append(args, status)
	}
	query += ` ORDER BY created_at, id`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	defer rows.Close()

	var requests []*models.ContentRequest
	for rows.Next() {
		cr, err := scanContentRequest(rows)
		if err != nil {
			slog.Info(err.Error())
			return nil, err
		}
		requests = append(requests, cr)
	}
	return requests, rows.Err()
}

func (r *contentRequestRepository) Respond(ctx context.Context, cr *models.ContentRequest) error {
	query := `
		UPDATE content_requests
		SET status = $1,
			post_id = $2,
			responded_at = $3
		WHERE id = $4 AND status = $5
	`
	res, err := r.db.ExecContext(ctx, query, cr.Status, cr.PostID, cr.RespondedAt, cr.ID, models.ContentRequestPending)
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("content request %d is not pending: %w", cr.ID, models.ErrVersionConflict)
	}
	return nil
}
