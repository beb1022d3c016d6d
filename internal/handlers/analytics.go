package handlers

import (
	"net/http"

	"github.com/julienschmidt/httprouter"
)

// Analytics serves the reporting endpoints.
type Analytics struct{}

// NewAnalytics creates the analytics handler.
func NewAnalytics() *Analytics {
	return &Analytics{}
}

// Report generates an aggregated analytics report for a reporting window.
// This is the one GET endpoint served through the API cache.
func (h *Analytics) Report(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	window := r.URL.Query().Get("range")
	if window == "" {
		window = "7d"
	}
	if !validRanges[window] {
		badRequest(w, r, "query parameter 'range' must be one of 1d, 7d, 30d")
		return
	}

	days := map[string]int{"1d": 1, "7d": 7, "30d": 30}[window]
	rows := make([]map[string]interface{}, 0, days)
	for d := 1; d <= days; d++ {
		rows = append(rows, map[string]interface{}{
			"day":      d,
			"sessions": 40200 + 137*d,
			"revenue":  1520.5 * float64(d),
		})
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"range": window,
		"rows":  rows,
		"totals": map[string]interface{}{
			"sessions": 40200*days + 137*days*(days+1)/2,
			"revenue":  1520.5 * float64(days) * float64(days+1) / 2,
		},
	})
}
