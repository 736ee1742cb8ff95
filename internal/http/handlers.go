package http

import (
	"context"
	"log/slog"
	"net/http"

	"golang.org/x/sync/errgroup"

	"expensetracker/internal/core"
	"expensetracker/internal/services"
)

type expenseRow struct {
	ID          int64
	Date        string
	Category    string
	Amount      string
	Description string
}

type tableView struct {
	Rows  []expenseRow
	Total string
	Count int
}

type indexView struct {
	Today      string
	Categories []core.Category
	Symbol     string
	Table      tableView
}

// buildTableView re-fetches the full listing and the total. The two reads
// are independent queries, so they run concurrently.
func (s *Server) buildTableView(ctx context.Context) (tableView, error) {
	var (
		expenses []core.Expense
		total    core.Money
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		expenses, err = s.store.ListAll(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		total, err = s.store.SumAmount(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return tableView{}, err
	}

	view := tableView{
		Total: total.Format(s.symbol),
		Count: len(expenses),
	}
	for _, e := range expenses {
		view.Rows = append(view.Rows, expenseRow{
			ID:          e.ID,
			Date:        e.Date.String(),
			Category:    string(e.Category),
			Amount:      e.Amount.Format(s.symbol),
			Description: e.Description,
		})
	}
	return view, nil
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if s.templates == nil {
		slog.ErrorContext(r.Context(), "Templates not loaded", "url", r.URL.Path)
		http.Error(w, "templates not loaded", http.StatusInternalServerError)
		return
	}

	table, err := s.buildTableView(r.Context())
	if err != nil {
		slog.ErrorContext(r.Context(), "Failed to load expenses", "error", err)
		http.Error(w, "failed to load expenses: "+err.Error(), http.StatusInternalServerError)
		return
	}

	data := indexView{
		Today:      core.Today().String(),
		Categories: core.Categories(),
		Symbol:     s.symbol,
		Table:      table,
	}

	if err := s.templates.ExecuteTemplate(w, "index.html", data); err != nil {
		slog.ErrorContext(r.Context(), "Index template execution failed", "error", err, "template", "index.html")
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func (s *Server) handleCreateExpense(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		slog.ErrorContext(r.Context(), "Parse form error", "error", err, "url", r.URL.Path)
		NewHTMXResponse().
			Status(http.StatusBadRequest).
			ErrorNotice("Invalid request format.").
			Write(w)
		return
	}

	cmd := parseSubmitCommand(r)
	out, err := s.dispatcher.Dispatch(r.Context(), cmd)
	if err != nil {
		slog.ErrorContext(r.Context(), "Failed to add expense",
			"error", err,
			"description", cmd.Description,
			"amount", cmd.Amount)
		NewHTMXResponse().
			Status(http.StatusInternalServerError).
			ErrorNotice("Failed to add expense: " + err.Error()).
			Write(w)
		return
	}

	if out.FieldError != nil {
		// Select-all applies only when an entered amount failed to parse;
		// empty-field rejections just move focus.
		selectAll := out.FieldError.Field == "amount" && cmd.Amount != ""
		NewHTMXResponse().
			Status(http.StatusUnprocessableEntity).
			TriggerFocusField(out.FieldError.Field, selectAll).
			ErrorNotice(out.FieldError.Message).
			Write(w)
		return
	}

	slog.InfoContext(r.Context(), "Expense created",
		"id", out.ID,
		"description", cmd.Description,
		"amount", cmd.Amount,
		"category", cmd.Category)

	NewHTMXResponse().
		TriggerFormReset().
		TriggerExpensesChanged().
		SuccessNotice(out.Notice).
		Write(w)
}

func (s *Server) handleDeleteExpense(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		slog.ErrorContext(r.Context(), "Parse form error", "error", err, "url", r.URL.Path)
		NewHTMXResponse().
			Status(http.StatusBadRequest).
			ErrorNotice("Invalid request format.").
			Write(w)
		return
	}

	id, ok := parseDeleteID(r)
	if !ok {
		NewHTMXResponse().
			Status(http.StatusUnprocessableEntity).
			ErrorNotice("Please select an expense to delete.").
			Write(w)
		return
	}

	out, err := s.dispatcher.Dispatch(r.Context(), services.DeleteCommand{ID: id})
	if err != nil {
		slog.ErrorContext(r.Context(), "Failed to delete expense", "error", err, "id", id)
		NewHTMXResponse().
			Status(http.StatusInternalServerError).
			ErrorNotice("Failed to delete expense: " + err.Error()).
			Write(w)
		return
	}

	NewHTMXResponse().
		TriggerExpensesChanged().
		SuccessNotice(out.Notice).
		Write(w)
}

func (s *Server) handleResetForm(w http.ResponseWriter, r *http.Request) {
	if _, err := s.dispatcher.Dispatch(r.Context(), services.ResetCommand{}); err != nil {
		slog.ErrorContext(r.Context(), "Reset dispatch failed", "error", err)
	}
	NewHTMXResponse().
		TriggerFormReset().
		Write(w)
}

// handleExpenseTable renders the listing and total partial. The page
// re-requests it after every mutation via the expenses:changed trigger.
func (s *Server) handleExpenseTable(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")

	table, err := s.buildTableView(r.Context())
	if err != nil {
		slog.ErrorContext(r.Context(), "Failed to load expenses", "error", err)
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`<div id="expense-table" class="notice error">Failed to load expenses.</div>`))
		return
	}

	if s.templates == nil {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`<div id="expense-table" class="notice error">templates not loaded</div>`))
		return
	}

	if err := s.templates.ExecuteTemplate(w, "expense_table.html", table); err != nil {
		slog.ErrorContext(r.Context(), "Template execution error", "error", err, "template", "expense_table.html")
	}
}
