package handlers

import (
	"encoding/json"
	"net/http"
	"os"
	"strings"

	"github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/checkout/session"
	"go.mongodb.org/mongo-driver/bson"

	"github.com/referloop/referral-api/api"
	"github.com/referloop/referral-api/config"
	"github.com/referloop/referral-api/databases"
)

// Billing exported for testing purposes
type Billing struct {
	UDB     databases.UserDatabase
	BaseURL string
}

// CreateCheckoutSessionHandler starts a stripe checkout session for the
// business subscription. The price comes from the environment so plans can
// change without a deploy.
func (b Billing) CreateCheckoutSessionHandler(w http.ResponseWriter, r *http.Request) {
	businessID, err := api.PrincipalObjectID(r.Context())
	if err != nil {
		config.ErrorStatus("failed to resolve session user", http.StatusUnauthorized, w, err)
		return
	}

	priceID := os.Getenv("STRIPE_PRICE_ID")
	if priceID == "" {
		config.ErrorStatus("stripe price is not configured", http.StatusInternalServerError, w, nil)
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	user, err := b.UDB.FindOne(ctx, bson.M{"_id": businessID})
	if err != nil {
		config.ErrorStatus("failed to get user by ID", http.StatusNotFound, w, err)
		return
	}

	base := strings.TrimRight(b.BaseURL, "/")
	params := &stripe.CheckoutSessionParams{
		Mode:          stripe.String(string(stripe.CheckoutSessionModeSubscription)),
		CustomerEmail: stripe.String(user.Email),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				Price:    stripe.String(priceID),
				Quantity: stripe.Int64(1),
			},
		},
		SuccessURL: stripe.String(base + "/billing/success?session_id={CHECKOUT_SESSION_ID}"),
		CancelURL:  stripe.String(base + "/billing/cancelled"),
	}

	s, err := session.New(params)
	if err != nil {
		config.ErrorStatus("failed to create checkout session", http.StatusInternalServerError, w, err)
		return
	}

	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(map[string]string{"url": s.URL})
}
