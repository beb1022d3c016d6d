package handlers

import (
	"net/http"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/julienschmidt/httprouter"
	"github.com/tidwall/gjson"
)

// Risk serves the risk-control endpoints.
type Risk struct{}

// NewRisk creates the risk handler.
func NewRisk() *Risk {
	return &Risk{}
}

// maxIndicatorIDs bounds one indicator query.
const maxIndicatorIDs = 100

// scoreFor derives a stable pseudo-score for an entity so repeated queries
// agree with each other.
func scoreFor(id string) float64 {
	return float64(xxhash.Sum64String(id)%1000) / 1000
}

// Indicators returns real-time risk indicators for a set of entity IDs.
func (h *Risk) Indicators(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	body, ok := readBody(w, r)
	if !ok {
		return
	}
	if !gjson.ValidBytes(body) {
		badRequest(w, r, "request body must be valid JSON")
		return
	}

	ids := gjson.GetBytes(body, "ids")
	if !ids.Exists() || !ids.IsArray() {
		badRequest(w, r, "field 'ids' must be an array")
		return
	}
	list := ids.Array()
	if len(list) == 0 {
		badRequest(w, r, "field 'ids' must not be empty")
		return
	}
	if len(list) > maxIndicatorIDs {
		badRequest(w, r, "field 'ids' exceeds the 100-entity limit")
		return
	}

	indicators := make([]map[string]interface{}, 0, len(list))
	for _, id := range list {
		if id.String() == "" {
			badRequest(w, r, "field 'ids' must contain non-empty strings")
			return
		}
		score := scoreFor(id.String())
		level := "low"
		switch {
		case score >= 0.8:
			level = "high"
		case score >= 0.5:
			level = "medium"
		}
		indicators = append(indicators, map[string]interface{}{
			"id":    id.String(),
			"score": score,
			"level": level,
		})
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"indicators":   indicators,
		"evaluated_at": time.Now().UTC().Format(time.RFC3339),
	})
}
