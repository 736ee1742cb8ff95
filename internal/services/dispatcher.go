package services

import (
	"context"
	"fmt"
	"strings"

	"expensetracker/internal/core"
)

// User actions arrive as command values; Dispatch maps each one to
// validate -> mutate -> refresh with no other control flow. The transport
// layer only builds commands and renders outcomes.
type (
	Command interface{ isCommand() }

	// SubmitCommand carries the raw form fields of an add-expense action.
	SubmitCommand struct {
		Date        string
		Category    string
		Amount      string
		Description string
	}

	// ResetCommand restores the form defaults. It touches no state.
	ResetCommand struct{}

	// DeleteCommand removes the selected expense after the user confirmed.
	DeleteCommand struct {
		ID int64
	}
)

func (SubmitCommand) isCommand() {}
func (ResetCommand) isCommand()  {}
func (DeleteCommand) isCommand() {}

// FieldError is a validation rejection tied to a specific form field.
// The field name tells the presentation layer where to return focus.
type FieldError struct {
	Field   string
	Message string
}

func (e *FieldError) Error() string {
	return e.Field + ": " + e.Message
}

// Outcome is the result of dispatching a command.
// Exactly one of FieldError or a successful mutation applies; Refresh tells
// the caller to re-render the listing and the total in full.
type Outcome struct {
	ID         int64
	Notice     string
	FieldError *FieldError
	Refresh    bool
}

type Dispatcher struct {
	service *ExpenseService
}

func NewDispatcher(service *ExpenseService) *Dispatcher {
	return &Dispatcher{service: service}
}

// Dispatch runs a single command to completion. Validation failures come
// back inside the Outcome; only storage failures are returned as errors.
func (d *Dispatcher) Dispatch(ctx context.Context, cmd Command) (Outcome, error) {
	switch c := cmd.(type) {
	case SubmitCommand:
		return d.submit(ctx, c)
	case ResetCommand:
		// Form defaults are presentation state; nothing persisted changes.
		return Outcome{}, nil
	case DeleteCommand:
		if err := d.service.DeleteExpense(ctx, c.ID); err != nil {
			return Outcome{}, err
		}
		return Outcome{ID: c.ID, Notice: "Expense deleted.", Refresh: true}, nil
	default:
		return Outcome{}, fmt.Errorf("unknown command type %T", cmd)
	}
}

func (d *Dispatcher) submit(ctx context.Context, c SubmitCommand) (Outcome, error) {
	expense, fieldErr := ValidateSubmission(c)
	if fieldErr != nil {
		return Outcome{FieldError: fieldErr}, nil
	}

	id, err := d.service.CreateExpense(ctx, expense)
	if err != nil {
		return Outcome{}, err
	}

	return Outcome{
		ID:      id,
		Notice:  fmt.Sprintf("Expense #%d recorded.", id),
		Refresh: true,
	}, nil
}

// ValidateSubmission checks the raw fields in the contractual order: amount
// presence first, then description presence, then amount format. First
// failure wins and stops the submission. Date and category come from
// constrained widgets, so their checks run last as defense in depth.
func ValidateSubmission(c SubmitCommand) (core.Expense, *FieldError) {
	amountStr := strings.TrimSpace(c.Amount)
	description := strings.TrimSpace(c.Description)

	if amountStr == "" {
		return core.Expense{}, &FieldError{Field: "amount", Message: "Please enter an amount."}
	}
	if description == "" {
		return core.Expense{}, &FieldError{Field: "description", Message: "Please enter a description."}
	}

	cents, err := core.ParseDecimalToCents(amountStr)
	if err != nil {
		return core.Expense{}, &FieldError{Field: "amount", Message: "Amount must be a positive number."}
	}

	date, err := core.ParseDate(c.Date)
	if err != nil {
		return core.Expense{}, &FieldError{Field: "date", Message: "Please enter a valid date."}
	}
	if err := date.Validate(); err != nil {
		return core.Expense{}, &FieldError{Field: "date", Message: "Date cannot be in the future."}
	}

	category := core.Category(strings.TrimSpace(c.Category))
	if !category.Valid() {
		return core.Expense{}, &FieldError{Field: "category", Message: "Please choose a category."}
	}

	return core.Expense{
		Date:        date,
		Category:    category,
		Amount:      core.Money{Cents: cents},
		Description: description,
	}, nil
}
