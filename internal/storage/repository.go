// Package storage reads the sales dataset from a SQLite file.
package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/shopspring/decimal"

	"ventas/internal/core"

	_ "modernc.org/sqlite"
)

type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	// Run migrations
	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Load implements dataset.Source. Rows come back in insertion order.
func (r *SQLiteRepository) Load(ctx context.Context) ([]core.Record, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT sale_date, category, region, amount_cents FROM sales ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("query sales: %w", err)
	}
	defer rows.Close()

	var out []core.Record
	for rows.Next() {
		var (
			day, cat, reg string
			cents         int64
		)
		if err := rows.Scan(&day, &cat, &reg, &cents); err != nil {
			return nil, fmt.Errorf("scan sale: %w", err)
		}
		rec, err := toRecord(day, cat, reg, cents)
		if err != nil {
			return nil, fmt.Errorf("sale %d: %w", len(out)+1, err)
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate sales: %w", err)
	}

	slog.DebugContext(ctx, "Sales read from SQLite", "count", len(out))
	return out, nil
}

// Count returns the number of stored sales.
func (r *SQLiteRepository) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM sales`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count sales: %w", err)
	}
	return n, nil
}

// SeedIfEmpty inserts records in one transaction when the table has no
// rows. It reports how many rows were written; a populated table is left
// untouched.
func (r *SQLiteRepository) SeedIfEmpty(ctx context.Context, records []core.Record) (int, error) {
	n, err := r.Count(ctx)
	if err != nil {
		return 0, err
	}
	if n > 0 {
		slog.InfoContext(ctx, "Sales table already populated, skipping seed", "count", n)
		return 0, nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO sales (sale_date, category, region, amount_cents) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return 0, fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for i, rec := range records {
		if err := rec.Validate(); err != nil {
			return 0, fmt.Errorf("record %d: %w", i, err)
		}
		if _, err := stmt.ExecContext(ctx, rec.Date.String(), string(rec.Category), string(rec.Region), toCents(rec.Amount)); err != nil {
			return 0, fmt.Errorf("insert record %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit seed: %w", err)
	}

	slog.InfoContext(ctx, "Sales table seeded", "count", len(records))
	return len(records), nil
}

func toRecord(day, cat, reg string, cents int64) (core.Record, error) {
	date, err := core.ParseDate(day)
	if err != nil {
		return core.Record{}, err
	}
	c, err := core.ParseCategory(cat)
	if err != nil {
		return core.Record{}, err
	}
	rg, err := core.ParseRegion(reg)
	if err != nil {
		return core.Record{}, err
	}
	amount, _ := decimal.New(cents, -2).Float64()
	return core.Record{Date: date, Category: c, Region: rg, Amount: amount}, nil
}

func toCents(amount float64) int64 {
	return decimal.NewFromFloat(amount).Shift(2).Round(0).IntPart()
}
