package cache

import "testing"

func TestDeriveKeyDeterministic(t *testing.T) {
	k1 := DeriveKey("GET", "/report", "range=7d", "traffic-summary", nil)
	k2 := DeriveKey("GET", "/report", "range=7d", "traffic-summary", nil)
	if k1 != k2 {
		t.Errorf("identical inputs produced different keys: %s vs %s", k1, k2)
	}
}

func TestDeriveKeyDistinguishesQueries(t *testing.T) {
	k7d := DeriveKey("GET", "/report", "range=7d", "traffic-summary", nil)
	k30d := DeriveKey("GET", "/report", "range=30d", "traffic-summary", nil)
	if k7d == k30d {
		t.Error("different query strings must not collapse to one key")
	}
}

func TestDeriveKeyDistinguishesPaths(t *testing.T) {
	k1 := DeriveKey("GET", "/a", "", "", nil)
	k2 := DeriveKey("GET", "/b", "", "", nil)
	if k1 == k2 {
		t.Error("different paths must not collapse to one key")
	}
}

func TestDeriveKeyDistinguishesCategories(t *testing.T) {
	k1 := DeriveKey("GET", "/report", "", "traffic-summary", nil)
	k2 := DeriveKey("GET", "/report", "", "indicator-query", nil)
	if k1 == k2 {
		t.Error("different categories must not collapse to one key")
	}
}

func TestDeriveKeyFingerprintsPostBodies(t *testing.T) {
	k1 := DeriveKey("POST", "/configure", "", "dashboard-config", []byte(`{"x":1}`))
	k2 := DeriveKey("POST", "/configure", "", "dashboard-config", []byte(`{"x":2}`))
	if k1 == k2 {
		t.Error("POSTs with different bodies must not share a cache slot")
	}

	k3 := DeriveKey("POST", "/configure", "", "dashboard-config", []byte(`{"x":1}`))
	if k1 != k3 {
		t.Error("POSTs with identical bodies must share a cache slot")
	}
}

func TestDeriveKeyGetIgnoresBody(t *testing.T) {
	k1 := DeriveKey("GET", "/report", "", "", []byte("a"))
	k2 := DeriveKey("GET", "/report", "", "", []byte("b"))
	if k1 != k2 {
		t.Error("GET keys must not depend on the body")
	}
}

func TestIsMutatingMethod(t *testing.T) {
	tests := []struct {
		method string
		want   bool
	}{
		{"GET", false},
		{"HEAD", false},
		{"POST", true},
		{"PUT", true},
		{"PATCH", true},
		{"DELETE", true},
	}
	for _, tt := range tests {
		if got := IsMutatingMethod(tt.method); got != tt.want {
			t.Errorf("IsMutatingMethod(%s) = %v, want %v", tt.method, got, tt.want)
		}
	}
}
