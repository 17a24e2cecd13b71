package handlers_test

import (
	"net/http"

	"github.com/shaj13/go-guardian/auth"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/referloop/referral-api/api"
)

// authedRequest attaches a session principal the way the auth middleware does
func authedRequest(r *http.Request, id primitive.ObjectID, role string) *http.Request {
	info := auth.NewDefaultUser("test@example.com", id.Hex(), []string{role}, nil)
	return r.WithContext(api.WithPrincipal(r.Context(), info))
}

// duplicateKeyErr mimics the error mongo returns on a unique index violation
func duplicateKeyErr() error {
	return mongo.WriteException{WriteErrors: []mongo.WriteError{{Code: 11000}}}
}
