package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"expensetracker/internal/core"
	"expensetracker/internal/storage"
)

// Store is the persistence contract the service and handlers depend on.
// *storage.SQLiteRepository is the production implementation.
type Store interface {
	Insert(ctx context.Context, e core.Expense) (int64, error)
	Delete(ctx context.Context, id int64) error
	Get(ctx context.Context, id int64) (core.Expense, error)
	ListAll(ctx context.Context) ([]core.Expense, error)
	SumAmount(ctx context.Context) (core.Money, error)
	Close() error
}

// EventPublisher announces expense mutations to external consumers.
// *amqp.Client is the production implementation.
type EventPublisher interface {
	PublishExpenseCreated(ctx context.Context, id int64) error
	PublishExpenseDeleted(ctx context.Context, id int64) error
	Close() error
}

// ExpenseService persists expenses and publishes mutation events.
// The publisher is optional; publishing failures never fail the request,
// since the local store is the source of truth.
type ExpenseService struct {
	store  Store
	events EventPublisher
}

func NewExpenseService(store Store, events EventPublisher) *ExpenseService {
	return &ExpenseService{
		store:  store,
		events: events,
	}
}

// CreateExpense stores the expense and announces it.
func (s *ExpenseService) CreateExpense(ctx context.Context, e core.Expense) (int64, error) {
	id, err := s.store.Insert(ctx, e)
	if err != nil {
		return 0, fmt.Errorf("save expense: %w", err)
	}

	if s.events != nil {
		if err := s.events.PublishExpenseCreated(ctx, id); err != nil {
			slog.ErrorContext(ctx, "Failed to publish created event", "id", id, "error", err)
		}
	}

	return id, nil
}

// DeleteExpense removes the expense and announces it. Deleting an id that
// no longer exists is a no-op and publishes nothing.
func (s *ExpenseService) DeleteExpense(ctx context.Context, id int64) error {
	existing, err := s.store.Get(ctx, id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			slog.WarnContext(ctx, "Delete requested for absent expense", "id", id)
			return nil
		}
		return fmt.Errorf("load expense for delete: %w", err)
	}

	if err := s.store.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete expense: %w", err)
	}

	slog.InfoContext(ctx, "Expense removed",
		"id", id,
		"amount_cents", existing.Amount.Cents,
		"description", existing.Description)

	if s.events != nil {
		if err := s.events.PublishExpenseDeleted(ctx, id); err != nil {
			slog.ErrorContext(ctx, "Failed to publish deleted event", "id", id, "error", err)
		}
	}

	return nil
}

// Close closes the store and, when present, the event publisher.
func (s *ExpenseService) Close() error {
	var errs []error

	if s.store != nil {
		if err := s.store.Close(); err != nil {
			errs = append(errs, fmt.Errorf("store: %w", err))
		}
	}

	if s.events != nil {
		if err := s.events.Close(); err != nil {
			errs = append(errs, fmt.Errorf("events: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("close expense service: %v", errs)
	}

	return nil
}
