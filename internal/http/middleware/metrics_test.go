package middleware

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/catalog-backend/internal/observability"
)

func TestCatalogArea(t *testing.T) {
	cases := map[string]string{
		"/healthcheck":                   "health",
		"/api/trash/purge":               "trash",
		"/api/products/:id/assets":       "products",
		"/api/folders":                   "products",
		"/api/assets/:id/documents":      "assets",
		"/api/stats":                     "maintenance",
		"/api/maintenance/orphans/sweep": "maintenance",
		"/api/gallery/:key/note":         "gallery",
		"":                               "unknown",
		"/api/unknown":                   "unknown",
	}
	for route, want := range cases {
		if got := catalogArea(route); got != want {
			t.Fatalf("catalogArea(%q): want=%q got=%q", route, want, got)
		}
	}
}

func TestMetricsLabelsAreaAndSkipsHealth(t *testing.T) {
	gin.SetMode(gin.TestMode)
	m := observability.Init(nil, true)
	r := gin.New()
	r.Use(Metrics(m))
	r.GET("/healthcheck", func(c *gin.Context) { c.Status(http.StatusOK) })
	r.POST("/api/trash/purge", func(c *gin.Context) { c.Status(http.StatusOK) })

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/healthcheck", nil))
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/api/trash/purge", nil))

	var buf bytes.Buffer
	if err := m.WritePrometheus(&buf); err != nil {
		t.Fatalf("WritePrometheus: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, `catalog_api_requests_total{method="POST",area="trash",route="/api/trash/purge",status="200"}`) {
		t.Fatalf("exposition: want purge request line, got:\n%s", out)
	}
	if strings.Contains(out, `route="/healthcheck"`) {
		t.Fatalf("exposition: health checks must not be counted")
	}
}
