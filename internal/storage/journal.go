// Package storage keeps an append-only SQLite journal of recorded expenses.
//
// The journal is an outbound audit trail: the ledger never reads it back, so
// every process still starts from the configured initial budget.
package storage

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/shopspring/decimal"

	"budget/internal/core"
	applog "budget/internal/log"
	"budget/internal/notify"

	_ "modernc.org/sqlite"
)

// Entry is one journal row.
type Entry struct {
	ID              int64
	Expense         core.Expense
	RemainingBudget decimal.Decimal
	RecordedAt      time.Time
}

// sqliteTimestamp is the layout CURRENT_TIMESTAMP produces.
const sqliteTimestamp = "2006-01-02 15:04:05"

type Journal struct {
	db     *sql.DB
	logger *applog.Logger
}

// Open opens (or creates) the journal at dbPath and applies migrations.
// ":memory:" gives a journal that lives as long as the process.
func Open(dbPath string, logger *applog.Logger) (*Journal, error) {
	if logger == nil {
		logger = applog.Discard()
	}
	if dbPath != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
			return nil, fmt.Errorf("create db directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	// A single connection keeps ":memory:" databases shared and serializes writes.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &Journal{db: db, logger: logger.WithComponent(applog.ComponentJournal)}, nil
}

func (j *Journal) Close() error {
	if j.db != nil {
		return j.db.Close()
	}
	return nil
}

// Append writes e with the budget remaining after it was committed.
func (j *Journal) Append(ctx context.Context, e core.Expense, remaining decimal.Decimal) (int64, error) {
	res, err := j.db.ExecContext(ctx,
		`INSERT INTO recorded_expenses (name, amount, category, remaining_budget) VALUES (?, ?, ?, ?)`,
		e.Name, e.Amount.String(), e.Category.String(), remaining.String())
	if err != nil {
		return 0, fmt.Errorf("insert expense: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("last insert id: %w", err)
	}

	j.logger.DebugContext(ctx, "Expense journaled",
		"id", id,
		applog.FieldExpenseName, e.Name,
		applog.FieldAmount, e.Amount.String(),
		applog.FieldRemainingBudget, remaining.String())

	return id, nil
}

// List returns every entry in insertion order.
func (j *Journal) List(ctx context.Context) ([]Entry, error) {
	rows, err := j.db.QueryContext(ctx,
		`SELECT id, name, amount, category, remaining_budget, CAST(recorded_at AS TEXT) FROM recorded_expenses ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("query expenses: %w", err)
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		var (
			entry                                    Entry
			name, amount, cat, remaining, recordedAt string
		)
		if err := rows.Scan(&entry.ID, &name, &amount, &cat, &remaining, &recordedAt); err != nil {
			return nil, fmt.Errorf("scan expense: %w", err)
		}
		a, err := decimal.NewFromString(amount)
		if err != nil {
			return nil, fmt.Errorf("parse amount %q: %w", amount, err)
		}
		r, err := decimal.NewFromString(remaining)
		if err != nil {
			return nil, fmt.Errorf("parse remaining budget %q: %w", remaining, err)
		}
		if entry.RecordedAt, err = time.Parse(sqliteTimestamp, recordedAt); err != nil {
			return nil, fmt.Errorf("parse recorded_at %q: %w", recordedAt, err)
		}
		entry.Expense = core.Expense{Name: name, Amount: a, Category: core.Category(cat)}
		entry.RemainingBudget = r
		out = append(out, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate expenses: %w", err)
	}
	return out, nil
}

// Ping checks the database is reachable.
func (j *Journal) Ping(ctx context.Context) error {
	return j.db.PingContext(ctx)
}

// Count returns the number of journaled expenses.
func (j *Journal) Count(ctx context.Context) (int, error) {
	var n int
	if err := j.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM recorded_expenses`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count expenses: %w", err)
	}
	return n, nil
}

// Subscriber returns a handler that journals every recorded expense together
// with the post-commit budget.
func (j *Journal) Subscriber(budget func() decimal.Decimal) notify.Handler {
	return func(ctx context.Context, e core.Expense) error {
		if _, err := j.Append(ctx, e, budget()); err != nil {
			return fmt.Errorf("journal expense: %w", err)
		}
		return nil
	}
}
