package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/catalog-backend/internal/platform/ctxutil"
)

func traceRouter(seen **ctxutil.TraceData) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(AttachTraceContext())
	r.POST("/api/trash/purge", func(c *gin.Context) {
		*seen = ctxutil.GetTraceData(c.Request.Context())
		c.Status(http.StatusOK)
	})
	return r
}

func TestAttachTraceContextPropagatesHeaders(t *testing.T) {
	var seen *ctxutil.TraceData
	r := traceRouter(&seen)

	req := httptest.NewRequest(http.MethodPost, "/api/trash/purge", nil)
	req.Header.Set("X-Request-Id", "req-1")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if seen == nil || seen.RequestID != "req-1" || seen.TraceID == "" {
		t.Fatalf("trace data: got=%+v", seen)
	}
	if seen.Route != "/api/trash/purge" {
		t.Fatalf("route: want=%q got=%q", "/api/trash/purge", seen.Route)
	}
	if got := rec.Header().Get("X-Request-Id"); got != "req-1" {
		t.Fatalf("X-Request-Id: want=req-1 got=%q", got)
	}
	if rec.Header().Get("X-Trace-Id") != seen.TraceID {
		t.Fatalf("X-Trace-Id: want=%q got=%q", seen.TraceID, rec.Header().Get("X-Trace-Id"))
	}
}

func TestAttachTraceContextReplacesUnusableRequestID(t *testing.T) {
	for _, raw := range []string{strings.Repeat("x", maxRequestIDLen+1), "two words", "tab\there"} {
		var seen *ctxutil.TraceData
		r := traceRouter(&seen)

		req := httptest.NewRequest(http.MethodPost, "/api/trash/purge", nil)
		req.Header.Set("X-Request-Id", raw)
		r.ServeHTTP(httptest.NewRecorder(), req)

		if seen == nil || seen.RequestID == "" || seen.RequestID == raw {
			t.Fatalf("request id %q: want generated id got=%+v", raw, seen)
		}
	}
}

func TestLogFieldsIncludeRoute(t *testing.T) {
	var seen *ctxutil.TraceData
	r := traceRouter(&seen)
	req := httptest.NewRequest(http.MethodPost, "/api/trash/purge", nil)
	req.Header.Set("X-Request-Id", "req-2")
	r.ServeHTTP(httptest.NewRecorder(), req)

	fields := ctxutil.LogFields(ctxutil.WithTraceData(req.Context(), seen))
	got := map[string]interface{}{}
	for i := 0; i+1 < len(fields); i += 2 {
		got[fields[i].(string)] = fields[i+1]
	}
	if got["request_id"] != "req-2" || got["route"] != "/api/trash/purge" {
		t.Fatalf("log fields: got=%v", got)
	}
}
