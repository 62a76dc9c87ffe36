// Package warehouse persists normalized fact rows in an embedded DuckDB
// database and serves the roll-up queries the dashboard reads.
//
// Writes go through Upsert, an idempotent delete-then-insert merge scoped
// to each table's business keys. The store assumes a single writer process;
// concurrent readers see either the pre-upsert or post-upsert state of a
// table, never a partial write.
package warehouse

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/duckdb/duckdb-go/v2"

	"github.com/ignite/commerce-pulse/internal/pkg/logger"
	"github.com/ignite/commerce-pulse/internal/schema"
)

// Store wraps the embedded analytical database.
type Store struct {
	db *sql.DB
}

// Open opens (creating if needed) the DuckDB database at path.
func Open(path string) (*Store, error) {
	db, err := sql.Open("duckdb", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open duckdb at %s: %w", path, err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping duckdb at %s: %w", path, err)
	}
	// The upsert protocol stages batches in per-connection temp tables,
	// so every statement of a merge must run on one connection.
	db.SetMaxOpenConns(1)
	return &Store{db: db}, nil
}

// OpenReadOnly opens the database in read-only mode, for dashboard
// processes that must not contend with the ETL writer.
func OpenReadOnly(path string) (*Store, error) {
	return Open(path + "?access_mode=read_only")
}

// NewWithDB wraps an existing database handle. Used by tests.
func NewWithDB(db *sql.DB) *Store {
	return &Store{db: db}
}

// Close closes the underlying database.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Ping verifies the database connection.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Batch is a tabular batch of normalized rows destined for one table.
// Row values are ordered to match the table's declared columns.
type Batch struct {
	Table schema.Table
	Rows  [][]any
}

// NewBatch creates an empty batch for the given table.
func NewBatch(t schema.Table) *Batch {
	return &Batch{Table: t}
}

// Append adds one row to the batch. The row must match the table's
// declared column count and carry every key column.
func (b *Batch) Append(vals ...any) error {
	if err := b.Table.Validate(vals); err != nil {
		return fmt.Errorf("batch: %w", err)
	}
	b.Rows = append(b.Rows, vals)
	return nil
}

// Len returns the number of rows in the batch.
func (b *Batch) Len() int { return len(b.Rows) }

// Upsert merges the batch into its target table: any existing row whose
// key columns match a batch row is deleted, then the whole batch is
// inserted, inside one transaction. Re-running the same batch is
// idempotent. Rows with keys not present in the batch are untouched.
// An empty batch is a no-op and opens no transaction.
func (s *Store) Upsert(ctx context.Context, b *Batch) (int, error) {
	if b.Len() == 0 {
		return 0, nil
	}

	table := b.Table
	if _, err := s.db.ExecContext(ctx, table.CreateSQL()); err != nil {
		return 0, fmt.Errorf("upsert %s: create table: %w", table.Name, err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("upsert %s: begin: %w", table.Name, err)
	}

	n, err := s.mergeInTx(ctx, tx, b)
	if err != nil {
		tx.Rollback()
		return 0, fmt.Errorf("upsert %s: %w", table.Name, err)
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("upsert %s: commit: %w", table.Name, err)
	}
	return n, nil
}

func (s *Store) mergeInTx(ctx context.Context, tx *sql.Tx, b *Batch) (int, error) {
	table := b.Table
	stage := "stage_" + table.Name
	cols := table.ColumnNames()

	defs := make([]string, len(table.Columns))
	for i, c := range table.Columns {
		defs[i] = c.Name + " " + c.Type
	}
	createStage := fmt.Sprintf("CREATE OR REPLACE TEMP TABLE %s (%s)", stage, strings.Join(defs, ", "))
	if _, err := tx.ExecContext(ctx, createStage); err != nil {
		return 0, fmt.Errorf("create stage: %w", err)
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(cols)), ", ")
	insertStage := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		stage, strings.Join(cols, ", "), placeholders)
	stmt, err := tx.PrepareContext(ctx, insertStage)
	if err != nil {
		return 0, fmt.Errorf("prepare stage insert: %w", err)
	}
	defer stmt.Close()
	for _, row := range b.Rows {
		if _, err := stmt.ExecContext(ctx, row...); err != nil {
			return 0, fmt.Errorf("stage insert: %w", err)
		}
	}

	conds := make([]string, len(table.Keys))
	for i, k := range table.Keys {
		conds[i] = fmt.Sprintf("t.%s = s.%s", k, k)
	}
	deleteMatched := fmt.Sprintf("DELETE FROM %s t USING %s s WHERE %s",
		table.Name, stage, strings.Join(conds, " AND "))
	if _, err := tx.ExecContext(ctx, deleteMatched); err != nil {
		return 0, fmt.Errorf("delete matched keys: %w", err)
	}

	insertTarget := fmt.Sprintf("INSERT INTO %s (%s) SELECT %s FROM %s",
		table.Name, strings.Join(cols, ", "), strings.Join(cols, ", "), stage)
	if _, err := tx.ExecContext(ctx, insertTarget); err != nil {
		return 0, fmt.Errorf("insert batch: %w", err)
	}

	// Drop the stage eagerly: temp tables live with the connection,
	// which is shared across upserts.
	if _, err := tx.ExecContext(ctx, "DROP TABLE "+stage); err != nil {
		return 0, fmt.Errorf("drop stage: %w", err)
	}

	return b.Len(), nil
}

// LastDate returns the maximum value of the table's date column, and
// whether any value was found. A missing table, an empty table, and a
// failed query all report "not found" so the caller falls back to its
// configured backfill horizon.
func (s *Store) LastDate(ctx context.Context, table schema.Table) (time.Time, bool, error) {
	query := fmt.Sprintf("SELECT max(%s) FROM %s", table.DateColumn, table.Name)

	var max sql.NullTime
	if err := s.db.QueryRowContext(ctx, query).Scan(&max); err != nil {
		logger.Debug("cursor query failed, using backfill horizon",
			"table", table.Name, "error", err.Error())
		return time.Time{}, false, nil
	}
	if !max.Valid {
		return time.Time{}, false, nil
	}
	return max.Time, true, nil
}
