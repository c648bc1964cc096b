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

type ClientRepository interface {
	GetByID(ctx context.Context, id int64) (*models.Client, error)
	List(ctx context.Context, status models.ClientStatus) ([]*models.Client, error)
	Create(ctx context.Context, client *models.Client) (int64, error)
	Update(ctx context.Context, client *models.Client) error
	// SaveCadence updates the client and saves the given posts with their
	// version guard in one transaction. Nothing is written on failure.
	SaveCadence(ctx context.Context, client *models.Client, posts []*models.Post) error
	Remove(ctx context.Context, id int64) error
}

type clientRepository struct {
	db *sql.DB
}

func NewClientRepository(db *sql.DB) ClientRepository {
	return &clientRepository{db: db}
}

const clientColumns = `id, name, status, weekly_capacity, monthly_capacity, strategy_pillars, created_at, updated_at`

func scanClient(row rowScanner) (*models.Client, error) {
	var c models.Client
	var pillars pq.StringArray
	err := row.Scan(&c.ID, &c.Name, &c.Status, &c.WeeklyCapacity, &c.MonthlyCapacity, &pillars, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}
	c.StrategyPillars = []string(pillars)
	return &c, nil
}

func (r *clientRepository) GetByID(ctx context.Context, id int64) (*models.Client, error) {
	query := `SELECT ` + clientColumns + ` FROM clients WHERE id = $1`

	client, err := scanClient(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		slog.Info(err.Error())
		return nil, err
	}
	return client, nil
}

func (r *clientRepository) List(ctx context.Context, status models.ClientStatus) ([]*models.Client, error) {
	query := `SELECT ` + clientColumns + ` FROM clients`
	var args []any
	if status != "" {
		query += ` WHERE status = $1`
		args = append(args, status)
	}
	query += ` ORDER BY id`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	defer rows.Close()

	var clients []*models.Client
	for rows.Next() {
		c, err := scanClient(rows)
		if err != nil {
			slog.Info(err.Error())
			return nil, err
		}
		clients = append(clients, c)
	}
	return clients, rows.Err()
}

func (r *clientRepository) Create(ctx context.Context, client *models.Client) (int64, error) {
	query := `
		INSERT INTO clients (name, status, weekly_capacity, monthly_capacity, strategy_pillars)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`

	var id int64
	err := r.db.QueryRowContext(ctx, query, client.Name, client.Status, client.WeeklyCapacity,
		client.MonthlyCapacity, pq.StringArray(client.StrategyPillars)).Scan(&id)
	if err != nil {
		slog.Info(err.Error())
		return 0, err
	}
	return id, nil
}

func updateClient(ctx context.Context, db execer, client *models.Client) error {
	query := `
		UPDATE clients
		SET name = $1,
			status = $2,
			weekly_capacity = $3,
			monthly_capacity = $4,
			strategy_pillars = $5,
			updated_at = $6
		WHERE id = $7
	`
	_, err := db.ExecContext(ctx, query, client.Name, client.Status, client.WeeklyCapacity,
		client.MonthlyCapacity, pq.StringArray(client.StrategyPillars), time.Now(), client.ID)
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}

func (r *clientRepository) Update(ctx context.Context, client *models.Client) error {
	return updateClient(ctx, r.db, client)
}

func (r *clientRepository) SaveCadence(ctx context.Context, client *models.Client, posts []*models.Post) (err error) {
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

	if err = updateClient(ctx, tx, client); err != nil {
		return err
	}
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

// Remove deletes only the client row. Its posts and content requests stay
// behind with their client_id.
func (r *clientRepository) Remove(ctx context.Context, id int64) error {
	query := `DELETE FROM clients WHERE id = $1`
	_, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}
