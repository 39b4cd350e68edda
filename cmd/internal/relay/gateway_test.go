package relay

import (
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"
)

func TestEnforceOrigin(t *testing.T) {
	t.Parallel()

	g := &Gateway{
		originRequired: true,
		allowedOrigins: []string{"http://localhost", "https://app.example.com"},
	}

	tests := []struct {
		name    string
		origin  string
		wantErr bool
	}{
		{name: "missing origin rejected", origin: "", wantErr: true},
		{name: "exact match", origin: "http://localhost", wantErr: false},
		{name: "host match ignores port", origin: "http://localhost:5173", wantErr: false},
		{name: "host match ignores scheme", origin: "http://app.example.com", wantErr: false},
		{name: "unknown host rejected", origin: "https://evil.example.net", wantErr: true},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			r := httptest.NewRequest(http.MethodGet, "/ws", nil)
			if tt.origin != "" {
				r.Header.Set("Origin", tt.origin)
			}
			err := g.enforceOrigin(r)
			if (err != nil) != tt.wantErr {
				t.Fatalf("err=%v wantErr=%v", err, tt.wantErr)
			}
		})
	}
}

func TestEnforceOrigin_OptionalOrigin(t *testing.T) {
	t.Parallel()

	g := &Gateway{originRequired: false, allowedOrigins: []string{"http://localhost"}}
	r := httptest.NewRequest(http.MethodGet, "/ws", nil)
	if err := g.enforceOrigin(r); err != nil {
		t.Fatalf("missing origin rejected while optional: %v", err)
	}
}

func TestEnforceOrigin_Wildcard(t *testing.T) {
	t.Parallel()

	g := &Gateway{originRequired: true, allowedOrigins: []string{"*"}}
	r := httptest.NewRequest(http.MethodGet, "/ws", nil)
	r.Header.Set("Origin", "https://anywhere.example.com")
	if err := g.enforceOrigin(r); err != nil {
		t.Fatalf("wildcard allowlist rejected an origin: %v", err)
	}
}

func TestOriginHostOnly(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want string
	}{
		{"http://localhost", "localhost"},
		{"http://Localhost:5173", "localhost"},
		{"https://app.example.com", "app.example.com"},
		{"app.example.com:443", "app.example.com"},
		{"app.example.com", "app.example.com"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := originHostOnly(tt.in); got != tt.want {
			t.Errorf("originHostOnly(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestDeriveOriginPatterns(t *testing.T) {
	t.Parallel()

	got := deriveOriginPatternsFromAllowedOrigins([]string{
		"http://localhost",
		"http://localhost:5173",
		"https://app.example.com",
		"*",
		"",
	})
	want := []string{"app.example.com", "localhost"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("patterns=%v want %v", got, want)
	}
}

func TestGateway_RejectsPlainHTTPWithoutOrigin(t *testing.T) {
	t.Parallel()

	g := NewGateway(testLogger(), nil)

	rec := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/ws", nil)
	g.ServeHTTP(rec, r)

	if rec.Code != http.StatusForbidden {
		t.Fatalf("status=%d want %d", rec.Code, http.StatusForbidden)
	}
}
