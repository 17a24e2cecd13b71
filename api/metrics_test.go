package api

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeRoutePath(t *testing.T) {
	cases := map[string]string{
		"/api/v1/campaigns/507f1f77bcf86cd799439011":      "/api/v1/campaigns/{id}",
		"/api/v1/campaigns/507f1f77bcf86cd799439011/edit": "/api/v1/campaigns/{id}/edit",
		"/api/v1/campaigns": "/api/v1/campaigns",
		"/health":           "/health",
	}
	for in, want := range cases {
		assert.Equal(t, want, normalizeRoutePath(in))
	}
}

func TestMetricsCollectorAggregation(t *testing.T) {
	mc := &MetricsCollector{
		traces:       make([]RequestTrace, 0, 10),
		maxTraces:    10,
		routeMetrics: make(map[string]*RouteMetrics),
		windowStart:  time.Now(),
	}

	mc.processTrace(RequestTrace{Method: "GET", Path: "/api/v1/rewards", Status: 200, TotalDuration: 10 * time.Millisecond})
	mc.processTrace(RequestTrace{Method: "GET", Path: "/api/v1/rewards", Status: 500, TotalDuration: 30 * time.Millisecond})

	routes := mc.GetRouteMetrics()
	rm, ok := routes["GET /api/v1/rewards"]
	if assert.True(t, ok) {
		assert.Equal(t, int64(2), rm.Count)
		assert.Equal(t, int64(1), rm.ErrorCount)
		assert.Equal(t, 20*time.Millisecond, rm.AvgTime)
		assert.Equal(t, 10*time.Millisecond, rm.MinTime)
		assert.Equal(t, 30*time.Millisecond, rm.MaxTime)
	}

	summary := mc.GetSummary()
	assert.Equal(t, int64(2), summary["totalRequests"])
	assert.Equal(t, int64(1), summary["totalErrors"])

	slowest := mc.GetSlowestRoutes(5)
	if assert.Len(t, slowest, 1) {
		assert.Equal(t, "/api/v1/rewards", slowest[0].Path)
	}
}
