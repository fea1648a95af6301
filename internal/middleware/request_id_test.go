package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestRequestID(t *testing.T) {
	tests := []struct {
		name     string
		incoming string
		wantSame bool
	}{
		{"generated when missing", "", false},
		{"reused when valid", "req-123", true},
		{"replaced when too long", strings.Repeat("a", 200), false},
		{"replaced when it has spaces", "bad id", false},
		{"replaced when it has control chars", "id\nforged", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var ctxID string
			handler := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				ctxID = GetRequestID(r.Context())
			}))

			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.incoming != "" {
				req.Header.Set(RequestIDHeader, tt.incoming)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			if ctxID == "" {
				t.Fatal("request id missing from context")
			}
			if rec.Header().Get(RequestIDHeader) != ctxID {
				t.Errorf("response header %q != context id %q", rec.Header().Get(RequestIDHeader), ctxID)
			}
			if tt.wantSame != (ctxID == tt.incoming) {
				t.Errorf("id = %q, incoming %q, wantSame %v", ctxID, tt.incoming, tt.wantSame)
			}
		})
	}
}

func TestTraceID(t *testing.T) {
	var traceID string
	handler := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		traceID = GetTraceID(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(TraceIDHeader, "trace-abc")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if traceID != "trace-abc" || rec.Header().Get(TraceIDHeader) != "trace-abc" {
		t.Errorf("trace id not propagated: ctx=%q header=%q", traceID, rec.Header().Get(TraceIDHeader))
	}
}
