// Package http provides the HTTP surface of the expense tracker.
//
// This file builds HTMX responses: HX-Trigger headers drive the
// post-mutation refresh of the listing and total, form resets, and
// focus handling on validation failures.
package http

import (
	"encoding/json"
	"html/template"
	"net/http"
)

// HTMXResponseBuilder provides a fluent API for building HTMX responses.
type HTMXResponseBuilder struct {
	triggers   map[string]interface{}
	statusCode int
	body       []byte
}

// NewHTMXResponse creates a new response builder with default 200 status.
func NewHTMXResponse() *HTMXResponseBuilder {
	return &HTMXResponseBuilder{
		triggers:   make(map[string]interface{}),
		statusCode: http.StatusOK,
	}
}

// Status sets the HTTP status code for the response.
func (b *HTMXResponseBuilder) Status(code int) *HTMXResponseBuilder {
	b.statusCode = code
	return b
}

// Trigger adds a named trigger with optional data to the HX-Trigger header.
func (b *HTMXResponseBuilder) Trigger(name string, data interface{}) *HTMXResponseBuilder {
	b.triggers[name] = data
	return b
}

// TriggerExpensesChanged tells the page to re-fetch the listing and total.
// Fired unconditionally after every successful mutation.
func (b *HTMXResponseBuilder) TriggerExpensesChanged() *HTMXResponseBuilder {
	return b.Trigger("expenses:changed", struct{}{})
}

// TriggerFormReset restores the form defaults and focuses the amount field.
func (b *HTMXResponseBuilder) TriggerFormReset() *HTMXResponseBuilder {
	return b.Trigger("form:reset", struct{}{})
}

// TriggerFocusField moves input focus to the named form field. Select
// additionally selects the field's current content.
func (b *HTMXResponseBuilder) TriggerFocusField(field string, selectAll bool) *HTMXResponseBuilder {
	return b.Trigger("form:focus", map[string]interface{}{"field": field, "select": selectAll})
}

// SuccessNotice sets the body to a success message div.
func (b *HTMXResponseBuilder) SuccessNotice(message string) *HTMXResponseBuilder {
	b.body = []byte(`<div class="notice success">` + template.HTMLEscapeString(message) + `</div>`)
	return b
}

// ErrorNotice sets the body to an error message div.
func (b *HTMXResponseBuilder) ErrorNotice(message string) *HTMXResponseBuilder {
	b.body = []byte(`<div class="notice error">` + template.HTMLEscapeString(message) + `</div>`)
	return b
}

// Write emits the response: HX-Trigger header first, then status and body.
func (b *HTMXResponseBuilder) Write(w http.ResponseWriter) {
	if len(b.triggers) > 0 {
		if payload, err := json.Marshal(b.triggers); err == nil {
			w.Header().Set("HX-Trigger", string(payload))
		}
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(b.statusCode)
	if len(b.body) > 0 {
		_, _ = w.Write(b.body)
	}
}
