package handlers

import (
	"net/http"

	"github.com/julienschmidt/httprouter"
	"github.com/tidwall/gjson"
)

// Dashboard serves the dashboard-configuration endpoint.
type Dashboard struct{}

// NewDashboard creates the dashboard handler.
func NewDashboard() *Dashboard {
	return &Dashboard{}
}

// knownWidgets are the widget types a dashboard may request.
var knownWidgets = map[string]bool{
	"traffic-overview": true,
	"risk-heatmap":     true,
	"revenue-trend":    true,
	"partner-funnel":   true,
}

// Config computes the resolved dashboard configuration for a widget set.
// The computation is deterministic per input, which is what makes the
// response cacheable despite arriving over POST.
func (h *Dashboard) Config(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	body, ok := readBody(w, r)
	if !ok {
		return
	}
	if !gjson.ValidBytes(body) {
		badRequest(w, r, "request body must be valid JSON")
		return
	}

	widgets := gjson.GetBytes(body, "widgets")
	if !widgets.Exists() || !widgets.IsArray() {
		badRequest(w, r, "field 'widgets' must be an array")
		return
	}

	resolved := make([]map[string]interface{}, 0, len(widgets.Array()))
	for i, wgt := range widgets.Array() {
		name := wgt.String()
		if !knownWidgets[name] {
			badRequest(w, r, "unknown widget: "+name)
			return
		}
		resolved = append(resolved, map[string]interface{}{
			"widget":   name,
			"position": i,
			"refresh":  "60s",
		})
	}

	layout := gjson.GetBytes(body, "layout").String()
	if layout == "" {
		layout = "grid"
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"layout":  layout,
		"widgets": resolved,
		"version": 3,
	})
}
