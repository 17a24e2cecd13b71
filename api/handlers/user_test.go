package handlers_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/referloop/referral-api/api/handlers"
	"github.com/referloop/referral-api/databases"
	mocksdb "github.com/referloop/referral-api/databases/mocks"
	"github.com/referloop/referral-api/models"
)

func TestUser_UserCreateHandlerValidationError(t *testing.T) {
	body := `{"email": "not-an-email", "password": "short", "name": "Pat", "role": "wizard"}`
	req, err := http.NewRequest("POST", "/api/v1/user/create-user", strings.NewReader(body))
	if err != nil {
		t.Fatal(err)
	}

	u := handlers.User{}

	rr := httptest.NewRecorder()
	http.HandlerFunc(u.UserCreateHandler).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)

	var resp models.ValidationErrorResponse
	assert.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, "validation failed", resp.Message)

	fields := make(map[string]string, len(resp.Errors))
	for _, fe := range resp.Errors {
		fields[fe.Field] = fe.Rule
	}
	assert.Equal(t, "email", fields["email"])
	assert.Equal(t, "min", fields["password"])
	assert.Equal(t, "oneof", fields["role"])
}

func TestUser_UserCreateHandlerMissingBusinessName(t *testing.T) {
	body := `{"email": "owner@example.com", "password": "supersecret", "name": "Pat", "role": "business"}`
	req, err := http.NewRequest("POST", "/api/v1/user/create-user", strings.NewReader(body))
	if err != nil {
		t.Fatal(err)
	}

	u := handlers.User{}

	rr := httptest.NewRecorder()
	http.HandlerFunc(u.UserCreateHandler).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, rr.Body.String(), "businessName")
}

func TestUser_UserCreateHandlerDuplicateEmail(t *testing.T) {
	body := `{"email": "Dup@Example.com", "password": "supersecret", "name": "Pat", "role": "customer"}`
	req, err := http.NewRequest("POST", "/api/v1/user/create-user", strings.NewReader(body))
	if err != nil {
		t.Fatal(err)
	}

	db := &mocksdb.DatabaseHelper{}
	conn := &mocksdb.CollectionHelper{}

	conn.On("InsertOne", mock.Anything, mock.Anything).Return(nil, duplicateKeyErr())
	db.On("Collection", "users").Return(conn)

	u := handlers.User{DB: databases.NewUserDatabase(db)}

	rr := httptest.NewRecorder()
	http.HandlerFunc(u.UserCreateHandler).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusConflict, rr.Code)
	assert.Contains(t, rr.Body.String(), "email already registered")

	inserted := conn.Calls[0].Arguments.Get(1).(models.User)
	assert.Equal(t, "dup@example.com", inserted.Email)
	assert.NotEqual(t, "supersecret", inserted.Password)
}

func TestUser_UserCreateHandlerReferrerGetsCode(t *testing.T) {
	body := `{"email": "ref@example.com", "password": "supersecret", "name": "Sam", "role": "referrer", "company": "Driftwood Roasters"}`
	req, err := http.NewRequest("POST", "/api/v1/user/create-user", strings.NewReader(body))
	if err != nil {
		t.Fatal(err)
	}

	businessID := primitive.NewObjectID()

	db := &mocksdb.DatabaseHelper{}
	conn := &mocksdb.CollectionHelper{}
	businessResult := &mocksdb.SingleResultHelper{}
	insertResult := &mocksdb.InsertOneResultHelper{}

	businessResult.On("Decode", mock.Anything).Return(nil).Run(func(args mock.Arguments) {
		arg := args.Get(0).(**models.User)
		(*arg).ID = businessID
		(*arg).BusinessName = "Driftwood Roasters"
	})
	conn.On("FindOne", mock.Anything, mock.Anything).Return(businessResult)
	conn.On("InsertOne", mock.Anything, mock.Anything).Return(insertResult, nil)
	db.On("Collection", "users").Return(conn)

	u := handlers.User{DB: databases.NewUserDatabase(db)}

	rr := httptest.NewRecorder()
	http.HandlerFunc(u.UserCreateHandler).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusCreated, rr.Code)

	var inserted models.User
	for _, call := range conn.Calls {
		if call.Method == "InsertOne" {
			inserted = call.Arguments.Get(1).(models.User)
		}
	}
	assert.Len(t, inserted.ReferralCode, 12)
	if assert.NotNil(t, inserted.BusinessID) {
		assert.Equal(t, businessID, *inserted.BusinessID)
	}
}

func TestUser_UserCheckEmailHandler(t *testing.T) {
	body := `{"email": "someone@example.com"}`
	req, err := http.NewRequest("POST", "/api/v1/user/check-user", strings.NewReader(body))
	if err != nil {
		t.Fatal(err)
	}

	db := &mocksdb.DatabaseHelper{}
	conn := &mocksdb.CollectionHelper{}

	conn.On("CountDocuments", mock.Anything, mock.Anything).Return(int64(1), nil)
	db.On("Collection", "users").Return(conn)

	u := handlers.User{DB: databases.NewUserDatabase(db)}

	rr := httptest.NewRecorder()
	http.HandlerFunc(u.UserCheckEmailHandler).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"exists": true}`, rr.Body.String())
}

func TestUser_MeHandlerNotFound(t *testing.T) {
	userID := primitive.NewObjectID()
	req, err := http.NewRequest("GET", "/api/v1/user/me", nil)
	if err != nil {
		t.Fatal(err)
	}
	req = authedRequest(req, userID, models.RoleCustomer)

	db := &mocksdb.DatabaseHelper{}
	conn := &mocksdb.CollectionHelper{}
	singleResult := &mocksdb.SingleResultHelper{}

	singleResult.On("Decode", mock.Anything).Return(assert.AnError)
	conn.On("FindOne", mock.Anything, mock.Anything).Return(singleResult)
	db.On("Collection", "users").Return(conn)

	u := handlers.User{DB: databases.NewUserDatabase(db)}

	rr := httptest.NewRecorder()
	http.HandlerFunc(u.MeHandler).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusNotFound, rr.Code)
}
