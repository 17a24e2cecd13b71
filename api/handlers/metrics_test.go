package handlers_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/referloop/referral-api/api/handlers"
)

func TestMetrics_MetricsHandler(t *testing.T) {
	req, err := http.NewRequest("GET", "/api/v1/metrics", nil)
	if err != nil {
		t.Fatal(err)
	}

	m := handlers.Metrics{}

	rr := httptest.NewRecorder()
	http.HandlerFunc(m.MetricsHandler).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)

	var got map[string]json.RawMessage
	assert.NoError(t, json.Unmarshal(rr.Body.Bytes(), &got))
	assert.Contains(t, got, "summary")
	assert.Contains(t, got, "routes")
	assert.Contains(t, got, "slowestRoutes")
}
