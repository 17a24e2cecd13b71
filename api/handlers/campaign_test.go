package handlers_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/referloop/referral-api/api/handlers"
	"github.com/referloop/referral-api/databases"
	mocksdb "github.com/referloop/referral-api/databases/mocks"
	"github.com/referloop/referral-api/models"
)

func TestCampaign_CampaignsHandler(t *testing.T) {
	businessID := primitive.NewObjectID()
	req, err := http.NewRequest("GET", "/api/v1/campaigns", nil)
	if err != nil {
		t.Fatal(err)
	}
	req = authedRequest(req, businessID, models.RoleBusiness)

	db := &mocksdb.DatabaseHelper{}
	conn := &mocksdb.CollectionHelper{}
	cursor := &mocksdb.CursorHelper{}

	cursor.On("Decode", mock.Anything).Return(nil).Run(func(args mock.Arguments) {
		arg := args.Get(0).(*[]models.Campaign)
		*arg = []models.Campaign{
			{ID: primitive.NewObjectID(), BusinessID: businessID, Name: "Spring promo"},
			{ID: primitive.NewObjectID(), BusinessID: businessID, Name: "Referral blitz"},
		}
	})
	conn.On("Find", mock.Anything, mock.Anything).Return(cursor, nil)
	db.On("Collection", "campaigns").Return(conn)

	c := handlers.Campaign{DB: databases.NewCampaignDatabase(db)}

	rr := httptest.NewRecorder()
	http.HandlerFunc(c.CampaignsHandler).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)

	var got []models.Campaign
	assert.NoError(t, json.Unmarshal(rr.Body.Bytes(), &got))
	assert.Len(t, got, 2)
	assert.Equal(t, "Spring promo", got[0].Name)
}

func TestCampaign_CampaignsHandlerNoPrincipal(t *testing.T) {
	req, err := http.NewRequest("GET", "/api/v1/campaigns", nil)
	if err != nil {
		t.Fatal(err)
	}

	c := handlers.Campaign{}

	rr := httptest.NewRecorder()
	http.HandlerFunc(c.CampaignsHandler).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestCampaign_CreateCampaignHandlerValidationError(t *testing.T) {
	businessID := primitive.NewObjectID()
	body := `{"name": "Missing reward fields"}`
	req, err := http.NewRequest("POST", "/api/v1/campaigns", strings.NewReader(body))
	if err != nil {
		t.Fatal(err)
	}
	req = authedRequest(req, businessID, models.RoleBusiness)

	c := handlers.Campaign{}

	rr := httptest.NewRecorder()
	http.HandlerFunc(c.CreateCampaignHandler).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)

	var resp models.ValidationErrorResponse
	assert.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, "validation failed", resp.Message)

	fields := make([]string, 0, len(resp.Errors))
	for _, fe := range resp.Errors {
		fields = append(fields, fe.Field)
	}
	assert.Contains(t, fields, "rewardType")
	assert.Contains(t, fields, "rewardAmount")
}

func TestCampaign_CreateCampaignHandler(t *testing.T) {
	businessID := primitive.NewObjectID()
	body := `{"name": "Spring promo", "rewardType": "discount", "rewardAmount": 15}`
	req, err := http.NewRequest("POST", "/api/v1/campaigns", strings.NewReader(body))
	if err != nil {
		t.Fatal(err)
	}
	req = authedRequest(req, businessID, models.RoleBusiness)

	db := &mocksdb.DatabaseHelper{}
	userConn := &mocksdb.CollectionHelper{}
	campaignConn := &mocksdb.CollectionHelper{}
	ownerResult := &mocksdb.SingleResultHelper{}
	insertResult := &mocksdb.InsertOneResultHelper{}

	ownerResult.On("Decode", mock.Anything).Return(nil).Run(func(args mock.Arguments) {
		arg := args.Get(0).(**models.User)
		(*arg).ID = businessID
		(*arg).BusinessName = "Driftwood Roasters"
	})
	userConn.On("FindOne", mock.Anything, mock.Anything).Return(ownerResult)
	campaignConn.On("InsertOne", mock.Anything, mock.Anything).Return(insertResult, nil)
	db.On("Collection", "users").Return(userConn)
	db.On("Collection", "campaigns").Return(campaignConn)

	c := handlers.Campaign{
		DB:  databases.NewCampaignDatabase(db),
		UDB: databases.NewUserDatabase(db),
	}

	rr := httptest.NewRecorder()
	http.HandlerFunc(c.CreateCampaignHandler).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusCreated, rr.Code)
	assert.Contains(t, rr.Body.String(), "Campaign created successfully")

	inserted := campaignConn.Calls[0].Arguments.Get(1).(models.Campaign)
	assert.Equal(t, "Driftwood Roasters", inserted.CompanyName)
	assert.True(t, inserted.IsActive)
}

func TestCampaign_CampaignByIDHandlerBadID(t *testing.T) {
	req, err := http.NewRequest("GET", "/api/v1/campaigns/1234", nil)
	if err != nil {
		t.Fatal(err)
	}
	req = mux.SetURLVars(req, map[string]string{"campaign_id": "1234"})
	req = authedRequest(req, primitive.NewObjectID(), models.RoleBusiness)

	c := handlers.Campaign{}

	rr := httptest.NewRecorder()
	http.HandlerFunc(c.CampaignByIDHandler).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)

	expected := models.ErrorMessageResponse{Response: models.MessageError{Message: "failed to get objectID from Hex", Error: "the provided hex string is not a valid ObjectID"}}
	b, _ := json.Marshal(expected)
	assert.Equal(t, string(b), rr.Body.String())
}

func TestCampaign_UpdateCampaignHandlerNotFound(t *testing.T) {
	businessID := primitive.NewObjectID()
	campaignID := primitive.NewObjectID()
	body := `{"name": "Renamed", "businessId": "should-be-dropped"}`
	req, err := http.NewRequest("PATCH", "/api/v1/campaigns/"+campaignID.Hex(), strings.NewReader(body))
	if err != nil {
		t.Fatal(err)
	}
	req = mux.SetURLVars(req, map[string]string{"campaign_id": campaignID.Hex()})
	req = authedRequest(req, businessID, models.RoleBusiness)

	db := &mocksdb.DatabaseHelper{}
	conn := &mocksdb.CollectionHelper{}

	conn.On("UpdateOne", mock.Anything, mock.Anything, mock.Anything).Return(&mongo.UpdateResult{MatchedCount: 0}, nil)
	db.On("Collection", "campaigns").Return(conn)

	c := handlers.Campaign{DB: databases.NewCampaignDatabase(db)}

	rr := httptest.NewRecorder()
	http.HandlerFunc(c.UpdateCampaignHandler).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestCampaign_DeleteCampaignHandler(t *testing.T) {
	businessID := primitive.NewObjectID()
	campaignID := primitive.NewObjectID()
	req, err := http.NewRequest("DELETE", "/api/v1/campaigns/"+campaignID.Hex(), nil)
	if err != nil {
		t.Fatal(err)
	}
	req = mux.SetURLVars(req, map[string]string{"campaign_id": campaignID.Hex()})
	req = authedRequest(req, businessID, models.RoleBusiness)

	db := &mocksdb.DatabaseHelper{}
	conn := &mocksdb.CollectionHelper{}

	conn.On("DeleteOne", mock.Anything, mock.Anything).Return(int64(1), nil)
	db.On("Collection", "campaigns").Return(conn)

	c := handlers.Campaign{DB: databases.NewCampaignDatabase(db)}

	rr := httptest.NewRecorder()
	http.HandlerFunc(c.DeleteCampaignHandler).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "Campaign deleted successfully")
}
