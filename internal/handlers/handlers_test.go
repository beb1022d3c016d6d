package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestCooperationTerms(t *testing.T) {
	h := NewCooperation()
	req := httptest.NewRequest(http.MethodGet, "/api/cooperation/terms", nil)
	rec := httptest.NewRecorder()
	h.Terms(rec, req, nil)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var resp struct {
		Terms []struct {
			ID     string `json:"id"`
			Active bool   `json:"active"`
		} `json:"terms"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(resp.Terms) != 3 {
		t.Errorf("expected 3 terms, got %d", len(resp.Terms))
	}
}

func TestCooperationApplyValidation(t *testing.T) {
	h := NewCooperation()
	tests := []struct {
		name       string
		body       string
		wantStatus int
	}{
		{"valid application", `{"partner_id":"acme","contact":"ops@acme.example"}`, http.StatusOK},
		{"valid with term", `{"partner_id":"acme","contact":"ops@acme.example","term_id":"std-2024"}`, http.StatusOK},
		{"invalid json", `{partner_id}`, http.StatusBadRequest},
		{"missing partner_id", `{"contact":"ops@acme.example"}`, http.StatusBadRequest},
		{"empty partner_id", `{"partner_id":"","contact":"ops@acme.example"}`, http.StatusBadRequest},
		{"missing contact", `{"partner_id":"acme"}`, http.StatusBadRequest},
		{"empty term_id", `{"partner_id":"acme","contact":"x","term_id":""}`, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/cooperation/apply", strings.NewReader(tt.body))
			rec := httptest.NewRecorder()
			h.Apply(rec, req, nil)
			if rec.Code != tt.wantStatus {
				t.Errorf("expected %d, got %d: %s", tt.wantStatus, rec.Code, rec.Body.String())
			}
		})
	}
}

func TestTrafficSummary(t *testing.T) {
	h := NewTraffic()
	tests := []struct {
		name       string
		body       string
		wantStatus int
	}{
		{"one day", `{"range":"1d"}`, http.StatusOK},
		{"seven days", `{"range":"7d"}`, http.StatusOK},
		{"thirty days", `{"range":"30d"}`, http.StatusOK},
		{"missing range", `{}`, http.StatusBadRequest},
		{"unknown range", `{"range":"90d"}`, http.StatusBadRequest},
		{"invalid json", `range=7d`, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/traffic/summary", strings.NewReader(tt.body))
			rec := httptest.NewRecorder()
			h.Summary(rec, req, nil)
			if rec.Code != tt.wantStatus {
				t.Errorf("expected %d, got %d: %s", tt.wantStatus, rec.Code, rec.Body.String())
			}
		})
	}
}

func TestTrafficSummaryDeterministic(t *testing.T) {
	h := NewTraffic()
	var bodies []string
	for i := 0; i < 2; i++ {
		req := httptest.NewRequest(http.MethodPost, "/api/traffic/summary", strings.NewReader(`{"range":"7d"}`))
		rec := httptest.NewRecorder()
		h.Summary(rec, req, nil)
		bodies = append(bodies, rec.Body.String())
	}
	if bodies[0] != bodies[1] {
		t.Error("summary for the same window should be deterministic")
	}
}

func TestRiskIndicators(t *testing.T) {
	h := NewRisk()
	tests := []struct {
		name       string
		body       string
		wantStatus int
	}{
		{"single id", `{"ids":["merchant-1"]}`, http.StatusOK},
		{"multiple ids", `{"ids":["merchant-1","merchant-2","merchant-3"]}`, http.StatusOK},
		{"missing ids", `{}`, http.StatusBadRequest},
		{"ids not array", `{"ids":"merchant-1"}`, http.StatusBadRequest},
		{"empty ids", `{"ids":[]}`, http.StatusBadRequest},
		{"empty id string", `{"ids":["merchant-1",""]}`, http.StatusBadRequest},
		{"invalid json", `ids`, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/risk/indicators", strings.NewReader(tt.body))
			rec := httptest.NewRecorder()
			h.Indicators(rec, req, nil)
			if rec.Code != tt.wantStatus {
				t.Errorf("expected %d, got %d: %s", tt.wantStatus, rec.Code, rec.Body.String())
			}
		})
	}
}

func TestRiskIndicatorsTooMany(t *testing.T) {
	h := NewRisk()
	ids := make([]string, 101)
	for i := range ids {
		ids[i] = `"m"`
	}
	body := `{"ids":[` + strings.Join(ids, ",") + `]}`
	req := httptest.NewRequest(http.MethodPost, "/api/risk/indicators", strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.Indicators(rec, req, nil)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for over-limit ids, got %d", rec.Code)
	}
}

func TestRiskScoresStable(t *testing.T) {
	a := scoreFor("merchant-1")
	b := scoreFor("merchant-1")
	if a != b {
		t.Errorf("score should be stable: %v != %v", a, b)
	}
	if a < 0 || a >= 1 {
		t.Errorf("score should be in [0,1): %v", a)
	}
}

func TestAnalyticsReport(t *testing.T) {
	h := NewAnalytics()
	tests := []struct {
		name       string
		query      string
		wantStatus int
	}{
		{"default range", "", http.StatusOK},
		{"explicit range", "?range=30d", http.StatusOK},
		{"unknown range", "?range=lifetime", http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/analytics/report"+tt.query, nil)
			rec := httptest.NewRecorder()
			h.Report(rec, req, nil)
			if rec.Code != tt.wantStatus {
				t.Errorf("expected %d, got %d: %s", tt.wantStatus, rec.Code, rec.Body.String())
			}
		})
	}
}

func TestAnalyticsReportRowsMatchWindow(t *testing.T) {
	h := NewAnalytics()
	req := httptest.NewRequest(http.MethodGet, "/api/analytics/report?range=7d", nil)
	rec := httptest.NewRecorder()
	h.Report(rec, req, nil)

	var resp struct {
		Range string                   `json:"range"`
		Rows  []map[string]interface{} `json:"rows"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Range != "7d" {
		t.Errorf("expected range 7d, got %s", resp.Range)
	}
	if len(resp.Rows) != 7 {
		t.Errorf("expected 7 rows, got %d", len(resp.Rows))
	}
}

func TestDashboardConfig(t *testing.T) {
	h := NewDashboard()
	tests := []struct {
		name       string
		body       string
		wantStatus int
	}{
		{"valid widgets", `{"widgets":["traffic-overview","risk-heatmap"]}`, http.StatusOK},
		{"with layout", `{"widgets":["revenue-trend"],"layout":"列"}`, http.StatusOK},
		{"missing widgets", `{}`, http.StatusBadRequest},
		{"widgets not array", `{"widgets":"traffic-overview"}`, http.StatusBadRequest},
		{"unknown widget", `{"widgets":["crypto-ticker"]}`, http.StatusBadRequest},
		{"invalid json", `widgets`, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/dashboard/config", strings.NewReader(tt.body))
			rec := httptest.NewRecorder()
			h.Config(rec, req, nil)
			if rec.Code != tt.wantStatus {
				t.Errorf("expected %d, got %d: %s", tt.wantStatus, rec.Code, rec.Body.String())
			}
		})
	}
}

func TestDashboardConfigDefaults(t *testing.T) {
	h := NewDashboard()
	req := httptest.NewRequest(http.MethodPost, "/api/dashboard/config", strings.NewReader(`{"widgets":["partner-funnel","traffic-overview"]}`))
	rec := httptest.NewRecorder()
	h.Config(rec, req, nil)

	var resp struct {
		Layout  string `json:"layout"`
		Widgets []struct {
			Widget   string `json:"widget"`
			Position int    `json:"position"`
		} `json:"widgets"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Layout != "grid" {
		t.Errorf("expected default layout grid, got %s", resp.Layout)
	}
	if len(resp.Widgets) != 2 || resp.Widgets[1].Position != 1 {
		t.Errorf("unexpected widget placement: %+v", resp.Widgets)
	}
}

func TestPagesHandler(t *testing.T) {
	h := NewPages()
	tests := []struct {
		name       string
		method     string
		path       string
		wantStatus int
	}{
		{"home page", http.MethodGet, "/", http.StatusOK},
		{"partners page", http.MethodGet, "/partners", http.StatusOK},
		{"status page", http.MethodGet, "/status", http.StatusOK},
		{"head request", http.MethodHead, "/", http.StatusOK},
		{"unknown page", http.MethodGet, "/nope", http.StatusNotFound},
		{"post rejected", http.MethodPost, "/", http.StatusMethodNotAllowed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.path, nil)
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)
			if rec.Code != tt.wantStatus {
				t.Errorf("expected %d, got %d", tt.wantStatus, rec.Code)
			}
		})
	}
}

func TestPagesHeadOmitsBody(t *testing.T) {
	h := NewPages()
	req := httptest.NewRequest(http.MethodHead, "/", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Body.Len() != 0 {
		t.Errorf("HEAD response should have no body, got %d bytes", rec.Body.Len())
	}
}
