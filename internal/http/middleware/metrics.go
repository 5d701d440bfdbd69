package middleware

import (
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/yungbote/catalog-backend/internal/observability"
)

// Metrics instruments API request counts and latency when metrics are
// enabled. Requests are labelled with the catalog area of their route;
// health checks are not counted.
func Metrics(m *observability.Metrics) gin.HandlerFunc {
	if m == nil {
		return func(c *gin.Context) { c.Next() }
	}
	return func(c *gin.Context) {
		route := c.FullPath()
		area := catalogArea(route)
		if area == "health" {
			c.Next()
			return
		}
		start := time.Now()
		m.ApiInflightInc()
		defer m.ApiInflightDec()

		c.Next()

		if route == "" {
			route = "unknown"
		}
		status := strconv.Itoa(c.Writer.Status())
		m.ObserveAPI(c.Request.Method, area, route, status, time.Since(start))
	}
}

// catalogArea maps a route template to the first segment under /api, with
// folders and documents folded into the areas that own them.
func catalogArea(route string) string {
	if route == "/healthcheck" {
		return "health"
	}
	rest, ok := strings.CutPrefix(route, "/api/")
	if !ok {
		return "unknown"
	}
	seg, _, _ := strings.Cut(rest, "/")
	switch seg {
	case "categories", "products", "assets", "trash", "legacy", "gallery", "uploads", "maintenance":
		return seg
	case "folders":
		return "products"
	case "stats":
		return "maintenance"
	default:
		return "unknown"
	}
}
