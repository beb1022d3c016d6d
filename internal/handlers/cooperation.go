package handlers

import (
	"net/http"
	"time"

	"github.com/julienschmidt/httprouter"
	"github.com/tidwall/gjson"
)

// Cooperation serves the cooperation-management endpoints.
type Cooperation struct{}

// NewCooperation creates the cooperation handler.
func NewCooperation() *Cooperation {
	return &Cooperation{}
}

type cooperationTerm struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	RevShare  string `json:"rev_share"`
	MinVolume int    `json:"min_volume"`
	Active    bool   `json:"active"`
}

// Terms returns the current cooperation term sheet.
func (h *Cooperation) Terms(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"terms": []cooperationTerm{
			{ID: "std-2024", Title: "Standard partnership", RevShare: "70/30", MinVolume: 10000, Active: true},
			{ID: "premium-2024", Title: "Premium partnership", RevShare: "80/20", MinVolume: 100000, Active: true},
			{ID: "legacy-2022", Title: "Legacy terms", RevShare: "60/40", MinVolume: 5000, Active: false},
		},
		"updated_at": "2024-06-01T00:00:00Z",
	})
}

// Apply accepts a partnership application after field validation.
func (h *Cooperation) Apply(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	body, ok := readBody(w, r)
	if !ok {
		return
	}
	if !gjson.ValidBytes(body) {
		badRequest(w, r, "request body must be valid JSON")
		return
	}

	partnerID := gjson.GetBytes(body, "partner_id")
	if !partnerID.Exists() || partnerID.String() == "" {
		badRequest(w, r, "field 'partner_id' is required")
		return
	}
	contact := gjson.GetBytes(body, "contact")
	if !contact.Exists() || contact.String() == "" {
		badRequest(w, r, "field 'contact' is required")
		return
	}
	if term := gjson.GetBytes(body, "term_id"); term.Exists() && term.String() == "" {
		badRequest(w, r, "field 'term_id' must not be empty when present")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":     "received",
		"partner_id": partnerID.String(),
		"review_eta": time.Now().UTC().Add(72 * time.Hour).Format(time.RFC3339),
	})
}
