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

func TestReferrer_CampaignsHandlerMarksSelection(t *testing.T) {
	referrerID := primitive.NewObjectID()
	selectedID := primitive.NewObjectID()
	otherID := primitive.NewObjectID()

	req, err := http.NewRequest("GET", "/api/v1/referrer/campaigns", nil)
	if err != nil {
		t.Fatal(err)
	}
	req = authedRequest(req, referrerID, models.RoleReferrer)

	db := &mocksdb.DatabaseHelper{}
	campaignConn := &mocksdb.CollectionHelper{}
	selectionConn := &mocksdb.CollectionHelper{}
	campaignCursor := &mocksdb.CursorHelper{}
	selectionCursor := &mocksdb.CursorHelper{}

	campaignCursor.On("Decode", mock.Anything).Return(nil).Run(func(args mock.Arguments) {
		arg := args.Get(0).(*[]models.Campaign)
		*arg = []models.Campaign{
			{ID: selectedID, Name: "Spring promo", IsActive: true},
			{ID: otherID, Name: "Referral blitz", IsActive: true},
		}
	})
	selectionCursor.On("Decode", mock.Anything).Return(nil).Run(func(args mock.Arguments) {
		arg := args.Get(0).(*[]models.CampaignSelection)
		*arg = []models.CampaignSelection{
			{ID: primitive.NewObjectID(), ReferrerID: referrerID, CampaignID: selectedID},
		}
	})
	campaignConn.On("Find", mock.Anything, mock.Anything).Return(campaignCursor, nil)
	selectionConn.On("Find", mock.Anything, mock.Anything).Return(selectionCursor, nil)
	db.On("Collection", "campaigns").Return(campaignConn)
	db.On("Collection", "campaignSelections").Return(selectionConn)

	rf := handlers.Referrer{
		CDB: databases.NewCampaignDatabase(db),
		SDB: databases.NewCampaignSelectionDatabase(db),
	}

	rr := httptest.NewRecorder()
	http.HandlerFunc(rf.CampaignsHandler).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)

	var got []struct {
		models.Campaign
		Selected bool `json:"selected"`
	}
	assert.NoError(t, json.Unmarshal(rr.Body.Bytes(), &got))
	assert.Len(t, got, 2)
	assert.True(t, got[0].Selected)
	assert.False(t, got[1].Selected)
}

func TestReferrer_SelectCampaignHandlerDuplicate(t *testing.T) {
	referrerID := primitive.NewObjectID()
	campaignID := primitive.NewObjectID()

	body := `{"campaignId": "` + campaignID.Hex() + `"}`
	req, err := http.NewRequest("POST", "/api/v1/referrer/select-campaign", strings.NewReader(body))
	if err != nil {
		t.Fatal(err)
	}
	req = authedRequest(req, referrerID, models.RoleReferrer)

	db := &mocksdb.DatabaseHelper{}
	campaignConn := &mocksdb.CollectionHelper{}
	selectionConn := &mocksdb.CollectionHelper{}
	campaignResult := &mocksdb.SingleResultHelper{}

	campaignResult.On("Decode", mock.Anything).Return(nil)
	campaignConn.On("FindOne", mock.Anything, mock.Anything).Return(campaignResult)
	selectionConn.On("InsertOne", mock.Anything, mock.Anything).Return(nil, duplicateKeyErr())
	db.On("Collection", "campaigns").Return(campaignConn)
	db.On("Collection", "campaignSelections").Return(selectionConn)

	rf := handlers.Referrer{
		CDB: databases.NewCampaignDatabase(db),
		SDB: databases.NewCampaignSelectionDatabase(db),
	}

	rr := httptest.NewRecorder()
	http.HandlerFunc(rf.SelectCampaignHandler).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusConflict, rr.Code)
	assert.Contains(t, rr.Body.String(), "campaign already selected")
}

func TestReferrer_GenerateLinkHandlerNotSelected(t *testing.T) {
	referrerID := primitive.NewObjectID()
	campaignID := primitive.NewObjectID()

	body := `{"campaignId": "` + campaignID.Hex() + `"}`
	req, err := http.NewRequest("POST", "/api/v1/referrer/generate-link", strings.NewReader(body))
	if err != nil {
		t.Fatal(err)
	}
	req = authedRequest(req, referrerID, models.RoleReferrer)

	db := &mocksdb.DatabaseHelper{}
	campaignConn := &mocksdb.CollectionHelper{}
	selectionConn := &mocksdb.CollectionHelper{}
	campaignResult := &mocksdb.SingleResultHelper{}
	selectionResult := &mocksdb.SingleResultHelper{}

	campaignResult.On("Decode", mock.Anything).Return(nil)
	selectionResult.On("Decode", mock.Anything).Return(assert.AnError)
	campaignConn.On("FindOne", mock.Anything, mock.Anything).Return(campaignResult)
	selectionConn.On("FindOne", mock.Anything, mock.Anything).Return(selectionResult)
	db.On("Collection", "campaigns").Return(campaignConn)
	db.On("Collection", "campaignSelections").Return(selectionConn)

	rf := handlers.Referrer{
		CDB: databases.NewCampaignDatabase(db),
		SDB: databases.NewCampaignSelectionDatabase(db),
	}

	rr := httptest.NewRecorder()
	http.HandlerFunc(rf.GenerateLinkHandler).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusForbidden, rr.Code)
	assert.Contains(t, rr.Body.String(), "campaign not selected")
}

func TestReferrer_GenerateLinkHandler(t *testing.T) {
	referrerID := primitive.NewObjectID()
	campaignID := primitive.NewObjectID()

	body := `{"campaignId": "` + campaignID.Hex() + `", "customMessage": "check this out"}`
	req, err := http.NewRequest("POST", "/api/v1/referrer/generate-link", strings.NewReader(body))
	if err != nil {
		t.Fatal(err)
	}
	req = authedRequest(req, referrerID, models.RoleReferrer)

	businessID := primitive.NewObjectID()

	db := &mocksdb.DatabaseHelper{}
	campaignConn := &mocksdb.CollectionHelper{}
	selectionConn := &mocksdb.CollectionHelper{}
	linkConn := &mocksdb.CollectionHelper{}
	rewardConn := &mocksdb.CollectionHelper{}
	campaignResult := &mocksdb.SingleResultHelper{}
	selectionResult := &mocksdb.SingleResultHelper{}
	insertResult := &mocksdb.InsertOneResultHelper{}

	campaignResult.On("Decode", mock.Anything).Return(nil).Run(func(args mock.Arguments) {
		arg := args.Get(0).(**models.Campaign)
		(*arg).ID = campaignID
		(*arg).BusinessID = businessID
		(*arg).RewardType = "percentage"
		(*arg).RewardAmount = 10
	})
	selectionResult.On("Decode", mock.Anything).Return(nil)
	campaignConn.On("FindOne", mock.Anything, mock.Anything).Return(campaignResult)
	selectionConn.On("FindOne", mock.Anything, mock.Anything).Return(selectionResult)
	linkConn.On("InsertOne", mock.Anything, mock.Anything).Return(insertResult, nil)
	rewardConn.On("InsertOne", mock.Anything, mock.Anything).Return(insertResult, nil)
	db.On("Collection", "campaigns").Return(campaignConn)
	db.On("Collection", "campaignSelections").Return(selectionConn)
	db.On("Collection", "referralLinks").Return(linkConn)
	db.On("Collection", "rewards").Return(rewardConn)

	rf := handlers.Referrer{
		CDB:     databases.NewCampaignDatabase(db),
		SDB:     databases.NewCampaignSelectionDatabase(db),
		LDB:     databases.NewReferralLinkDatabase(db),
		RDB:     databases.NewRewardDatabase(db),
		BaseURL: "https://referloop.io/",
	}

	rr := httptest.NewRecorder()
	http.HandlerFunc(rf.GenerateLinkHandler).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusCreated, rr.Code)

	var got map[string]string
	assert.NoError(t, json.Unmarshal(rr.Body.Bytes(), &got))
	assert.Len(t, got["code"], 12)
	assert.Equal(t, "https://referloop.io/r/"+got["code"], got["url"])

	inserted := linkConn.Calls[0].Arguments.Get(1).(models.ReferralLink)
	assert.Equal(t, referrerID, inserted.ReferrerID)
	assert.Equal(t, "check this out", inserted.CustomMessage)
	assert.True(t, inserted.Active)

	reward := rewardConn.Calls[0].Arguments.Get(1).(models.Reward)
	assert.Equal(t, referrerID, reward.UserID)
	assert.Equal(t, campaignID, reward.CampaignID)
	assert.Equal(t, businessID, reward.BusinessID)
	assert.Equal(t, models.RewardStatusPending, reward.Status)
	assert.NotNil(t, reward.ExpiryDate)
}

func TestReferrer_PerformanceHandler(t *testing.T) {
	referrerID := primitive.NewObjectID()
	req, err := http.NewRequest("GET", "/api/v1/referrer/performance", nil)
	if err != nil {
		t.Fatal(err)
	}
	req = authedRequest(req, referrerID, models.RoleReferrer)

	db := &mocksdb.DatabaseHelper{}
	conn := &mocksdb.CollectionHelper{}
	cursor := &mocksdb.CursorHelper{}

	cursor.On("Decode", mock.Anything).Return(nil).Run(func(args mock.Arguments) {
		arg := args.Get(0).(*[]models.ReferralLink)
		*arg = []models.ReferralLink{
			{ID: primitive.NewObjectID(), ReferrerID: referrerID, Clicks: 10, Conversions: 2},
			{ID: primitive.NewObjectID(), ReferrerID: referrerID, Clicks: 5, Conversions: 1},
		}
	})
	conn.On("Find", mock.Anything, mock.Anything).Return(cursor, nil)
	db.On("Collection", "referralLinks").Return(conn)

	rf := handlers.Referrer{LDB: databases.NewReferralLinkDatabase(db)}

	rr := httptest.NewRecorder()
	http.HandlerFunc(rf.PerformanceHandler).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)

	var got struct {
		Links            []models.ReferralLink `json:"links"`
		TotalClicks      int64                 `json:"totalClicks"`
		TotalConversions int64                 `json:"totalConversions"`
	}
	assert.NoError(t, json.Unmarshal(rr.Body.Bytes(), &got))
	assert.Len(t, got.Links, 2)
	assert.Equal(t, int64(15), got.TotalClicks)
	assert.Equal(t, int64(3), got.TotalConversions)
}
