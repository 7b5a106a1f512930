package mcp_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	mcp "github.com/nimbus-tools/weather-mcp"
)

func TestCORS(t *testing.T) {
	t.Parallel()

	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})

	cases := map[string]struct {
		allowed    []string
		method     string
		origin     string
		preflight  bool
		wantStatus int
		wantOrigin string
	}{
		"no origin": {
			method:     http.MethodGet,
			wantStatus: http.StatusTeapot,
		},
		"any origin": {
			allowed:    []string{"*"},
			method:     http.MethodGet,
			origin:     "https://example.com",
			wantStatus: http.StatusTeapot,
			wantOrigin: "https://example.com",
		},
		"empty list allows any origin": {
			method:     http.MethodPost,
			origin:     "https://example.com",
			wantStatus: http.StatusTeapot,
			wantOrigin: "https://example.com",
		},
		"preflight": {
			allowed:    []string{"*"},
			method:     http.MethodOptions,
			origin:     "https://example.com",
			preflight:  true,
			wantStatus: http.StatusNoContent,
			wantOrigin: "https://example.com",
		},
		"listed origin": {
			allowed:    []string{"https://a.example", "https://b.example"},
			method:     http.MethodGet,
			origin:     "https://b.example",
			wantStatus: http.StatusTeapot,
			wantOrigin: "https://b.example",
		},
		"unlisted origin": {
			allowed:    []string{"https://a.example"},
			method:     http.MethodGet,
			origin:     "https://evil.example",
			wantStatus: http.StatusTeapot,
		},
		"unlisted origin preflight": {
			allowed:    []string{"https://a.example"},
			method:     http.MethodOptions,
			origin:     "https://evil.example",
			preflight:  true,
			wantStatus: http.StatusForbidden,
		},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			req := httptest.NewRequest(tc.method, "/sse", nil)
			if tc.origin != "" {
				req.Header.Set("Origin", tc.origin)
			}
			if tc.preflight {
				req.Header.Set("Access-Control-Request-Method", http.MethodPost)
				req.Header.Set("Access-Control-Request-Headers", "Content-Type")
			}
			rec := httptest.NewRecorder()
			mcp.CORS(tc.allowed)(next).ServeHTTP(rec, req)

			if rec.Code != tc.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tc.wantStatus)
			}
			h := rec.Header()
			if got := h.Get("Access-Control-Allow-Origin"); got != tc.wantOrigin {
				t.Errorf("Access-Control-Allow-Origin = %q, want %q", got, tc.wantOrigin)
			}
			if tc.wantOrigin != "" && h.Get("Access-Control-Allow-Credentials") != "true" {
				t.Error("credentials are not allowed")
			}
			if tc.preflight && tc.wantStatus == http.StatusNoContent {
				if h.Get("Access-Control-Allow-Methods") == "" {
					t.Error("Access-Control-Allow-Methods is not set")
				}
				if got := h.Get("Access-Control-Allow-Headers"); got != "Content-Type" {
					t.Errorf("Access-Control-Allow-Headers = %q", got)
				}
			}
		})
	}
}
