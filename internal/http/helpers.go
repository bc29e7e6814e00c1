package http

import (
	"net/http"
	"strings"
	"time"
)

// sanitizeInput removes control characters and trims whitespace.
func sanitizeInput(s string) string {
	s = strings.TrimSpace(s)
	result := strings.Map(func(r rune) rune {
		if r < 32 && r != 9 && r != 10 && r != 13 {
			return -1
		}
		return r
	}, s)
	return result
}

// isHTMX reports whether the request was issued by htmx.
func isHTMX(r *http.Request) bool {
	return r.Header.Get("HX-Request") == "true"
}

// redirect navigates the browser to url: a full-page HX-Redirect for htmx
// requests, a 303 otherwise.
func redirect(w http.ResponseWriter, r *http.Request, url string) {
	if isHTMX(r) {
		NewHTMXResponse().Redirect(url).Write(w)
		return
	}
	http.Redirect(w, r, url, http.StatusSeeOther)
}

type monthOption struct {
	Value int
	Label string
}

func monthOptions() []monthOption {
	opts := make([]monthOption, 0, 12)
	for m := time.January; m <= time.December; m++ {
		opts = append(opts, monthOption{Value: int(m), Label: m.String()})
	}
	return opts
}

// yearOptions lists the selectable budget years, 2023 through next year.
func yearOptions(now time.Time) []int {
	var years []int
	for y := 2023; y <= now.Year()+1; y++ {
		years = append(years, y)
	}
	return years
}
