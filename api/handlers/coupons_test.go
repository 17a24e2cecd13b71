package handlers_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/referloop/referral-api/api/handlers"
	"github.com/referloop/referral-api/models"
)

func TestCouponsHandler(t *testing.T) {
	req, err := http.NewRequest("GET", "/api/v1/coupons", nil)
	if err != nil {
		t.Fatal(err)
	}

	rr := httptest.NewRecorder()
	http.HandlerFunc(handlers.CouponsHandler).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))

	var got []models.Coupon
	assert.NoError(t, json.Unmarshal(rr.Body.Bytes(), &got))
	assert.NotEmpty(t, got)
	for _, c := range got {
		assert.NotEmpty(t, c.ID)
		assert.NotEmpty(t, c.Company)
		assert.Greater(t, c.Discount, float64(0))
	}
}
