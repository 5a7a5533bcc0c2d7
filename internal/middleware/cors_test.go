package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestCORS(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})

	tests := []struct {
		name            string
		allowed         []string
		origin          string
		method          string
		wantCode        int
		wantOrigin      string
		wantCredentials string
	}{
		{
			name:            "explicit origin",
			allowed:         []string{"https://closet.example"},
			origin:          "https://closet.example",
			method:          http.MethodGet,
			wantCode:        http.StatusTeapot,
			wantOrigin:      "https://closet.example",
			wantCredentials: "true",
		},
		{
			name:       "wildcard never sends credentials",
			allowed:    []string{"*"},
			origin:     "http://localhost:5173",
			method:     http.MethodGet,
			wantCode:   http.StatusTeapot,
			wantOrigin: "http://localhost:5173",
		},
		{
			name:     "foreign origin",
			allowed:  []string{"https://closet.example"},
			origin:   "https://evil.example",
			method:   http.MethodGet,
			wantCode: http.StatusTeapot,
		},
		{
			name:            "preflight",
			allowed:         []string{"https://closet.example"},
			origin:          "https://closet.example",
			method:          http.MethodOptions,
			wantCode:        http.StatusNoContent,
			wantOrigin:      "https://closet.example",
			wantCredentials: "true",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, "/api/session", nil)
			req.Header.Set("Origin", tt.origin)
			w := httptest.NewRecorder()

			CORS(tt.allowed)(next).ServeHTTP(w, req)

			if w.Code != tt.wantCode {
				t.Errorf("Expected status %d, got %d", tt.wantCode, w.Code)
			}
			if got := w.Header().Get("Access-Control-Allow-Origin"); got != tt.wantOrigin {
				t.Errorf("Expected allow-origin %q, got %q", tt.wantOrigin, got)
			}
			if got := w.Header().Get("Access-Control-Allow-Credentials"); got != tt.wantCredentials {
				t.Errorf("Expected allow-credentials %q, got %q", tt.wantCredentials, got)
			}
		})
	}
}
