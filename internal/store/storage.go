// Package store persists map strings under a level name.
package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/samdwyer/towerfield/internal/config"
	"github.com/samdwyer/towerfield/internal/telemetry"
)

var (
	ErrNotFound  = errors.New("level not found")
	ErrEmptyName = errors.New("level name must not be empty")
	ErrClosed    = errors.New("store is closed")
)

// Record is a saved level.
type Record struct {
	ID      uuid.UUID `json:"id"`
	Name    string    `json:"name"`
	Data    string    `json:"data"` // Map string
	SavedAt time.Time `json:"saved_at"`
}

// Storage defines the interface for level persistence.
// Saving under an existing name overwrites the data and keeps the record ID.
type Storage interface {
	Save(ctx context.Context, name, data string) (Record, error)
	Load(ctx context.Context, name string) (Record, error)
	List(ctx context.Context) ([]string, error)
	Delete(ctx context.Context, name string) error
	Close() error
}

// Open creates the storage backend selected by cfg.
func Open(cfg config.StoreConfig) (Storage, error) {
	switch cfg.Backend {
	case config.StoreJSON:
		return NewJSONStore(cfg.Path)
	case config.StoreBadger:
		return NewBadgerStore(cfg.Path)
	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.Backend)
	}
}

// newRecord builds the record to write, reusing prev's ID when the level already exists.
func newRecord(prev *Record, name, data string) Record {
	id := uuid.New()
	if prev != nil {
		id = prev.ID
	}
	return Record{
		ID:      id,
		Name:    name,
		Data:    data,
		SavedAt: time.Now().UTC(),
	}
}

func startSpan(ctx context.Context, op, backend, name string) (context.Context, trace.Span) {
	ctx, span := telemetry.Tracer("store").Start(ctx, "store."+op)
	span.SetAttributes(
		attribute.String("store.backend", backend),
		attribute.String("level.name", name),
	)
	return ctx, span
}
