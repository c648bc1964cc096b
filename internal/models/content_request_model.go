package models

import "time"

type ContentRequestStatus string

const (
	ContentRequestPending   ContentRequestStatus = "pending"
	ContentRequestConverted ContentRequestStatus = "converted"
	ContentRequestRejected  ContentRequestStatus = "rejected"
)

type ContentRequest struct {
	ID          int64                `db:"id" json:"id"`
	ClientID    int64                `db:"client_id" json:"client_id"`
	Title       string               `db:"title" json:"title"`
	Description string               `db:"description" json:"description"`
	Status      ContentRequestStatus `db:"status" json:"status"`
	RequestedBy int64                `db:"requested_by" json:"requested_by"`
	PostID      *int64               `db:"post_id" json:"post_id,omitempty"`
	CreatedAt   time.Time            `db:"created_at" json:"created_at"`
	RespondedAt *time.Time           `db:"responded_at" json:"responded_at,omitempty"`
}

type Comment struct {
	ID         int64     `db:"id" json:"id"`
	PostID     int64     `db:"post_id" json:"post_id"`
	AuthorID   int64     `db:"author_id" json:"author_id"`
	AuthorRole Role      `db:"author_role" json:"author_role"`
	Message    string    `db:"message" json:"message"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}
