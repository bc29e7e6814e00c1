// Package http provides HTTP server and handler implementations.
//
// This file implements utilities for parsing and validating HTTP request data
// shared by the page and fragment handlers.

package http

import (
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// MonthParams holds parsed year/month values from request parameters.
type MonthParams struct {
	Year  int
	Month int
}

// Selected reports whether both a year and a month were chosen.
func (p MonthParams) Selected() bool {
	return p.Year != 0 && p.Month != 0
}

// ParseMonthParams extracts year and month from query or form values.
// Absent keys default to the current month. A key that is present but blank
// or not a number parses as zero, which callers treat as "nothing selected".
func ParseMonthParams(values url.Values, now time.Time) MonthParams {
	return MonthParams{
		Year:  selection(values, "year", now.Year()),
		Month: selection(values, "month", int(now.Month())),
	}
}

func selection(values url.Values, key string, fallback int) int {
	raw, ok := values[key]
	if !ok || len(raw) == 0 {
		return fallback
	}
	n, err := strconv.Atoi(strings.TrimSpace(raw[0]))
	if err != nil {
		return 0
	}
	return n
}

// FormValue returns the trimmed, sanitized value of a posted form field.
func FormValue(r *http.Request, key string) string {
	return sanitizeInput(r.PostFormValue(key))
}

// RequireMethod checks if the request method matches the expected method(s).
// Returns an error response builder if the method doesn't match.
func RequireMethod(r *http.Request, methods ...string) *HTMXResponseBuilder {
	for _, m := range methods {
		if r.Method == m {
			return nil
		}
	}
	return MethodNotAllowedError(strings.Join(methods, ", "))
}

// RequirePOST is a convenience function for POST-only handlers.
func RequirePOST(r *http.Request) *HTMXResponseBuilder {
	return RequireMethod(r, http.MethodPost)
}

// RequireGET is a convenience function for read-only handlers.
func RequireGET(r *http.Request) *HTMXResponseBuilder {
	return RequireMethod(r, http.MethodGet, http.MethodHead)
}

// ParseFormOrFail parses the request form and returns an error response on failure.
// Returns nil on success.
func ParseFormOrFail(r *http.Request) *HTMXResponseBuilder {
	if err := r.ParseForm(); err != nil {
		return BadRequestError("Invalid request format")
	}
	return nil
}
