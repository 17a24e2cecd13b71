package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/referloop/referral-api/models"
)

// couponCatalog is the static marketplace shown to visitors before they sign
// up. Real discounts flow through rewards; these exist for the landing page.
var couponCatalog = []models.Coupon{
	{ID: "welcome10", Title: "10% off your first order", Description: "New customers get 10% off when arriving through any referral link.", Company: "ReferLoop Partners", Discount: 10, Category: "general", ExpiresAt: "2026-12-31"},
	{ID: "coffee15", Title: "15% off specialty coffee", Description: "Valid on all single origin beans.", Company: "Driftwood Roasters", Discount: 15, Category: "food", ExpiresAt: "2026-10-31"},
	{ID: "fit20", Title: "20% off first month", Description: "First month of any membership tier.", Company: "Northside Fitness", Discount: 20, Category: "fitness", ExpiresAt: "2026-11-30"},
	{ID: "saas25", Title: "25% off annual plans", Description: "Applies to annual billing on team plans.", Company: "Trackstack", Discount: 25, Category: "software", ExpiresAt: "2027-01-31"},
}

// CouponsHandler serves the public coupon catalog
func CouponsHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(couponCatalog)
}
