// Package store defines storage interfaces for the price cache and the order
// journal, with Parquet and SQLite implementations.
package store

import (
	"context"
	"time"

	"tradewind/internal/domain"
)

// BarStore persists and retrieves daily OHLCV bar data for the price cache.
type BarStore interface {
	// WriteBars persists a batch of bars to storage.
	WriteBars(ctx context.Context, bars []domain.Bar) error

	// ReadBars returns bars for the given security within [start, end].
	ReadBars(ctx context.Context, sec domain.Security, start, end time.Time) ([]domain.Bar, error)
}

// BatchRecord summarizes one journaled order batch.
type BatchRecord struct {
	ID        string
	Strategy  string
	CreatedAt time.Time
	RowCount  int
}

// OrderJournal records every order batch the engine emits, preserving
// OrderId/ParentId linkage so a batch can be replayed or audited later.
type OrderJournal interface {
	// SaveBatch persists a batch under the given id.
	SaveBatch(ctx context.Context, batchID, strategy string, rows []domain.Order) error

	// GetBatch returns the rows of a journaled batch in their original order.
	GetBatch(ctx context.Context, batchID string) ([]domain.Order, error)

	// ListBatches returns journaled batches, most recent first.
	ListBatches(ctx context.Context) ([]BatchRecord, error)
}
