package http

import (
	"net/http"
	"strconv"
	"strings"

	"expensetracker/internal/services"
)

// parseSubmitCommand builds a SubmitCommand from the posted form.
// Values are sanitized but not validated here; validation belongs to the
// dispatcher so the contractual field order holds for every transport.
func parseSubmitCommand(r *http.Request) services.SubmitCommand {
	return services.SubmitCommand{
		Date:        sanitizeInput(r.Form.Get("date")),
		Category:    sanitizeInput(r.Form.Get("category")),
		Amount:      sanitizeInput(r.Form.Get("amount")),
		Description: sanitizeInput(r.Form.Get("description")),
	}
}

// parseDeleteID extracts the selected expense id from the posted form.
// ok is false when nothing was selected or the id is not numeric.
func parseDeleteID(r *http.Request) (int64, bool) {
	raw := sanitizeInput(r.Form.Get("id"))
	if raw == "" {
		return 0, false
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

// sanitizeInput removes control characters and trims whitespace.
func sanitizeInput(s string) string {
	s = strings.TrimSpace(s)
	return strings.Map(func(r rune) rune {
		if r < 32 && r != 9 && r != 10 && r != 13 {
			return -1
		}
		return r
	}, s)
}
