package handlers

import (
	"bytes"
	"log"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
)

func TestLoggingMiddlewareRecordsStatus(t *testing.T) {
	var buf bytes.Buffer
	log.SetOutput(&buf)
	defer log.SetOutput(os.Stderr)

	h := LoggingMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest("DELETE", "/api/tasks/x", nil))

	if rec.Code != http.StatusTeapot {
		t.Fatalf("expected status to pass through, got %d", rec.Code)
	}
	if line := buf.String(); !strings.Contains(line, "DELETE /api/tasks/x 418") {
		t.Fatalf("expected request line, got %q", line)
	}
}

func TestBearerToken(t *testing.T) {
	tests := map[string]bool{
		"Bearer abc":  true,
		"Bearer":      false,
		"Basic abc":   false,
		"Bearer  abc": false,
		"":            false,
	}
	for header, ok := range tests {
		req := httptest.NewRequest("GET", "/", nil)
		req.Header.Set("Authorization", header)
		if _, got := bearerToken(req); got != ok {
			t.Fatalf("%q: expected %v, got %v", header, ok, got)
		}
	}
}
