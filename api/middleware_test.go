package api_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/referloop/referral-api/api"
	"github.com/referloop/referral-api/databases"
	mocksdb "github.com/referloop/referral-api/databases/mocks"
	"github.com/referloop/referral-api/models"
)

func middlewareUserDB(t *testing.T, userID primitive.ObjectID) databases.UserDatabase {
	t.Helper()

	db := &mocksdb.DatabaseHelper{}
	conn := &mocksdb.CollectionHelper{}
	singleResult := &mocksdb.SingleResultHelper{}

	singleResult.On("Decode", mock.Anything).Return(nil).Run(func(args mock.Arguments) {
		arg := args.Get(0).(**models.User)
		(*arg).ID = userID
		(*arg).Email = "pat@example.com"
		(*arg).Role = models.RoleReferrer
	})
	conn.On("FindOne", mock.Anything, mock.Anything).Return(singleResult)
	db.On("Collection", "users").Return(conn)

	return databases.NewUserDatabase(db)
}

func TestCreateTokenUsesConfiguredSecret(t *testing.T) {
	userID := primitive.NewObjectID()

	m := api.MiddlewareDB{DB: middlewareUserDB(t, userID), JWTSecret: "config-secret"}
	m.SetupGoGuardian()

	req := httptest.NewRequest("POST", "/api/v1/auth/token", nil)
	req.SetBasicAuth("pat@example.com", "hunter2")
	rr := httptest.NewRecorder()
	http.HandlerFunc(m.CreateToken).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)

	var got map[string]string
	assert.NoError(t, json.Unmarshal(rr.Body.Bytes(), &got))
	assert.Equal(t, userID.Hex(), got["_id"])

	parsed, err := jwt.Parse(got["token"], func(token *jwt.Token) (interface{}, error) {
		return []byte("config-secret"), nil
	})
	assert.NoError(t, err)
	if assert.True(t, parsed.Valid) {
		claims := parsed.Claims.(jwt.MapClaims)
		assert.Equal(t, userID.Hex(), claims["sub"])
		assert.Equal(t, models.RoleReferrer, claims["role"])
	}
}

func TestCreateTokenMissingSecret(t *testing.T) {
	m := api.MiddlewareDB{DB: middlewareUserDB(t, primitive.NewObjectID())}
	m.SetupGoGuardian()

	req := httptest.NewRequest("POST", "/api/v1/auth/token", nil)
	req.SetBasicAuth("pat@example.com", "hunter2")
	rr := httptest.NewRecorder()
	http.HandlerFunc(m.CreateToken).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.Contains(t, rr.Body.String(), "server misconfigured")
}
