package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"expensetracker/internal/core"

	_ "modernc.org/sqlite"
)

// ErrNotFound is returned by Get when no expense has the requested id.
var ErrNotFound = errors.New("expense not found")

// SQLiteRepository is the single file-backed store behind the application.
// Every mutation is one statement, so there are no transaction boundaries.
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

// Insert persists a single expense and returns its generated id.
// The CHECK constraints back up caller-side validation, so a misbehaving
// caller still cannot store a non-positive amount or blank description.
func (r *SQLiteRepository) Insert(ctx context.Context, e core.Expense) (int64, error) {
	var id int64
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO expenses (date, category, amount_cents, description)
		VALUES (?, ?, ?, ?)
		RETURNING id`,
		e.Date.String(), string(e.Category), e.Amount.Cents, e.Description,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("insert expense: %w", err)
	}

	slog.InfoContext(ctx, "Expense saved",
		"id", id,
		"date", e.Date.String(),
		"category", string(e.Category),
		"amount_cents", e.Amount.Cents,
		"description", e.Description)

	return id, nil
}

// Delete removes the expense with the given id. Deleting an absent id is
// not an error; zero rows affected just means there was nothing to do.
func (r *SQLiteRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM expenses WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete expense: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete expense rows affected: %w", err)
	}
	if affected == 0 {
		slog.DebugContext(ctx, "Delete matched no rows", "id", id)
		return nil
	}

	slog.InfoContext(ctx, "Expense deleted", "id", id)
	return nil
}

// Get returns a single expense by id, or ErrNotFound.
func (r *SQLiteRepository) Get(ctx context.Context, id int64) (core.Expense, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, date, category, amount_cents, description
		FROM expenses
		WHERE id = ?`, id)

	e, err := scanExpense(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return core.Expense{}, ErrNotFound
		}
		return core.Expense{}, fmt.Errorf("get expense by id: %w", err)
	}
	return e, nil
}

// ListAll returns every expense ordered by date descending. Same-day
// expenses come back newest insert first.
func (r *SQLiteRepository) ListAll(ctx context.Context) ([]core.Expense, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, date, category, amount_cents, description
		FROM expenses
		ORDER BY date DESC, id DESC`)
	if err != nil {
		return nil, fmt.Errorf("list expenses: %w", err)
	}
	defer rows.Close()

	var expenses []core.Expense
	for rows.Next() {
		e, err := scanExpense(rows)
		if err != nil {
			return nil, fmt.Errorf("scan expense: %w", err)
		}
		expenses = append(expenses, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate expenses: %w", err)
	}

	return expenses, nil
}

// SumAmount returns the total over all stored expenses.
// An empty table sums to zero, not an error.
func (r *SQLiteRepository) SumAmount(ctx context.Context) (core.Money, error) {
	var cents int64
	err := r.db.QueryRowContext(ctx,
		`SELECT COALESCE(SUM(amount_cents), 0) FROM expenses`,
	).Scan(&cents)
	if err != nil {
		return core.Money{}, fmt.Errorf("sum expenses: %w", err)
	}
	return core.Money{Cents: cents}, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanExpense(row rowScanner) (core.Expense, error) {
	var (
		e        core.Expense
		dateStr  string
		category string
	)
	if err := row.Scan(&e.ID, &dateStr, &category, &e.Amount.Cents, &e.Description); err != nil {
		return core.Expense{}, err
	}

	date, err := core.ParseDate(dateStr)
	if err != nil {
		return core.Expense{}, fmt.Errorf("parse stored date %q: %w", dateStr, err)
	}
	e.Date = date
	e.Category = core.Category(category)
	return e, nil
}
