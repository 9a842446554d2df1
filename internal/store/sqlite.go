package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"tradewind/internal/domain"

	_ "modernc.org/sqlite" // Pure-Go SQLite driver.
)

// Compile-time interface check.
var _ OrderJournal = (*SQLiteStore)(nil)

// SQLiteStore implements OrderJournal backed by a SQLite database.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (or creates) a SQLite database at dbPath, runs the
// schema migration, and returns a ready-to-use SQLiteStore.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, err
	}
	s := &SQLiteStore{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrating journal schema: %w", err)
	}
	return s, nil
}

// Close closes the underlying database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) migrate() error {
	_, err := s.db.Exec(`
CREATE TABLE IF NOT EXISTS order_batches (
	id         TEXT PRIMARY KEY,
	strategy   TEXT NOT NULL,
	created_at INTEGER NOT NULL
);
CREATE TABLE IF NOT EXISTS order_rows (
	batch_id       TEXT NOT NULL REFERENCES order_batches(id),
	seq            INTEGER NOT NULL,
	con_id         INTEGER NOT NULL,
	account        TEXT NOT NULL,
	action         TEXT NOT NULL,
	total_quantity INTEGER NOT NULL,
	order_ref      TEXT NOT NULL,
	exchange       TEXT NOT NULL,
	order_type     TEXT NOT NULL,
	tif            TEXT NOT NULL,
	lmt_price      REAL NOT NULL,
	order_id       INTEGER,
	parent_id      INTEGER,
	PRIMARY KEY (batch_id, seq)
);
`)
	return err
}

// SaveBatch persists a batch and its rows in one transaction.
func (s *SQLiteStore) SaveBatch(ctx context.Context, batchID, strategy string, rows []domain.Order) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO order_batches (id, strategy, created_at) VALUES (?, ?, ?)`,
		batchID, strategy, time.Now().UnixMilli(),
	); err != nil {
		return fmt.Errorf("inserting batch %s: %w", batchID, err)
	}

	stmt, err := tx.PrepareContext(ctx, `
INSERT INTO order_rows
	(batch_id, seq, con_id, account, action, total_quantity, order_ref,
	 exchange, order_type, tif, lmt_price, order_id, parent_id)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for seq, row := range rows {
		var orderID, parentID any
		if row.OrderID != nil {
			orderID = *row.OrderID
		}
		if row.ParentID != nil {
			parentID = *row.ParentID
		}
		if _, err := stmt.ExecContext(ctx,
			batchID, seq, row.ConID, row.Account, string(row.Action),
			row.TotalQuantity, row.OrderRef, row.Exchange, row.OrderType,
			row.Tif, row.LmtPrice, orderID, parentID,
		); err != nil {
			return fmt.Errorf("inserting row %d of batch %s: %w", seq, batchID, err)
		}
	}
	return tx.Commit()
}

// GetBatch returns the rows of a journaled batch in their original order.
func (s *SQLiteStore) GetBatch(ctx context.Context, batchID string) ([]domain.Order, error) {
	rows, err := s.db.QueryContext(ctx, `
SELECT con_id, account, action, total_quantity, order_ref,
       exchange, order_type, tif, lmt_price, order_id, parent_id
FROM order_rows WHERE batch_id = ? ORDER BY seq`, batchID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Order
	for rows.Next() {
		var o domain.Order
		var action string
		var orderID, parentID sql.NullInt64
		if err := rows.Scan(&o.ConID, &o.Account, &action, &o.TotalQuantity,
			&o.OrderRef, &o.Exchange, &o.OrderType, &o.Tif, &o.LmtPrice,
			&orderID, &parentID); err != nil {
			return nil, err
		}
		o.Action = domain.Action(action)
		if orderID.Valid {
			id := orderID.Int64
			o.OrderID = &id
		}
		if parentID.Valid {
			pid := parentID.Int64
			o.ParentID = &pid
		}
		out = append(out, o)
	}
	return out, rows.Err()
}

// ListBatches returns journaled batches, most recent first.
func (s *SQLiteStore) ListBatches(ctx context.Context) ([]BatchRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
SELECT b.id, b.strategy, b.created_at, COUNT(r.batch_id)
FROM order_batches b
LEFT JOIN order_rows r ON r.batch_id = b.id
GROUP BY b.id
ORDER BY b.created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []BatchRecord
	for rows.Next() {
		var rec BatchRecord
		var createdMs int64
		if err := rows.Scan(&rec.ID, &rec.Strategy, &createdMs, &rec.RowCount); err != nil {
			return nil, err
		}
		rec.CreatedAt = time.UnixMilli(createdMs)
		out = append(out, rec)
	}
	return out, rows.Err()
}
