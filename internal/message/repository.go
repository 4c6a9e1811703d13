// Package message stores saved email templates and serves the editor page.
package message

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Message is a saved email-builder document.
type Message struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	Subject   string          `json:"subject"`
	Document  json.RawMessage `json:"document"`
	CreatedAt time.Time       `json:"createdAt"`
}

// ErrNotFound is returned when a message does not exist.
var ErrNotFound = errors.New("message not found")

// Repository handles all message database operations.
type Repository struct {
	db *pgxpool.Pool
}

// NewRepository creates a new Repository with the given connection pool.
func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

// Create inserts a message and returns the stored record.
func (r *Repository) Create(ctx context.Context, name, subject string, doc json.RawMessage) (*Message, error) {
	m := &Message{}
	err := r.db.QueryRow(ctx,
		`INSERT INTO messages (name, subject, document)
		 VALUES ($1, $2, $3)
		 RETURNING id, name, subject, document, created_at`,
		name, subject, []byte(doc),
	).Scan(&m.ID, &m.Name, &m.Subject, &m.Document, &m.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("create message: %w", err)
	}
	return m, nil
}

// GetByID fetches a message by its UUID.
func (r *Repository) GetByID(ctx context.Context, id string) (*Message, error) {
	m := &Message{}
	err := r.db.QueryRow(ctx,
		`SELECT id, name, subject, document, created_at
		 FROM messages WHERE id = $1`,
		id,
	).Scan(&m.ID, &m.Name, &m.Subject, &m.Document, &m.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get message by id: %w", err)
	}
	return m, nil
}
