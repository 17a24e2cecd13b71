package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/referloop/referral-api/api"
)

// Metrics exported for testing purposes
type Metrics struct{}

// MetricsHandler reports request metrics collected since startup
func (m Metrics) MetricsHandler(w http.ResponseWriter, r *http.Request) {
	mc := api.GetMetrics()

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(map[string]interface{}{
		"summary":       mc.GetSummary(),
		"routes":        mc.GetRouteMetrics(),
		"slowestRoutes": mc.GetSlowestRoutes(10),
	})
}
