package handlers

import (
	"net/http"

	"github.com/julienschmidt/httprouter"
	"github.com/tidwall/gjson"
)

// Traffic serves the traffic-operations endpoints.
type Traffic struct{}

// NewTraffic creates the traffic handler.
func NewTraffic() *Traffic {
	return &Traffic{}
}

// validRanges are the reporting windows the summary endpoint accepts.
var validRanges = map[string]bool{"1d": true, "7d": true, "30d": true}

// summaryTemplate returns deterministic aggregates per window, scaled so the
// numbers are self-consistent.
func summaryTemplate(window string) map[string]interface{} {
	days := map[string]int{"1d": 1, "7d": 7, "30d": 30}[window]
	return map[string]interface{}{
		"range":        window,
		"impressions":  1203400 * days,
		"clicks":       45210 * days,
		"conversions":  1890 * days,
		"ctr":          0.0376,
		"fill_rate":    0.912,
		"top_channels": []string{"search", "display", "social"},
	}
}

// Summary computes traffic aggregates for a reporting window.
func (h *Traffic) Summary(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	body, ok := readBody(w, r)
	if !ok {
		return
	}
	if !gjson.ValidBytes(body) {
		badRequest(w, r, "request body must be valid JSON")
		return
	}

	window := gjson.GetBytes(body, "range")
	if !window.Exists() {
		badRequest(w, r, "field 'range' is required")
		return
	}
	if !validRanges[window.String()] {
		badRequest(w, r, "field 'range' must be one of 1d, 7d, 30d")
		return
	}

	writeJSON(w, http.StatusOK, summaryTemplate(window.String()))
}
