package message

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/emailbuilder/service/internal/document"
)

// ErrInvalidDocument is returned when a saved body is not a document.
var ErrInvalidDocument = errors.New("invalid document")

// Store persists messages. *Repository is the production implementation.
type Store interface {
	Create(ctx context.Context, name, subject string, doc json.RawMessage) (*Message, error)
	GetByID(ctx context.Context, id string) (*Message, error)
}

// Service contains business logic for saving and loading messages.
type Service struct {
	store Store
}

// NewService creates a new message Service.
func NewService(store Store) *Service {
	return &Service{store: store}
}

// Save stores raw as a new message. raw must be a JSON object with a root block.
func (s *Service) Save(ctx context.Context, raw []byte) (*Message, error) {
	doc, err := document.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidDocument, err)
	}

	var compact bytes.Buffer
	if err := json.Compact(&compact, raw); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidDocument, err)
	}

	meta := doc.Meta()
	m, err := s.store.Create(ctx, meta.Name, meta.Subject, compact.Bytes())
	if err != nil {
		return nil, fmt.Errorf("save message: %w", err)
	}
	return m, nil
}

// GetByID returns a message by its UUID.
func (s *Service) GetByID(ctx context.Context, id string) (*Message, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, ErrNotFound
	}
	return s.store.GetByID(ctx, id)
}

// IsNotFound returns true when the error indicates a message was not found.
func (s *Service) IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// EditorPath is where a saved message is reopened.
func EditorPath(id string) string {
	return "/editor/" + id
}
