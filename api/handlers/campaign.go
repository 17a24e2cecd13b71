package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"github.com/referloop/referral-api/api"
	"github.com/referloop/referral-api/config"
	"github.com/referloop/referral-api/databases"
	"github.com/referloop/referral-api/models"
)

// Campaign exported for testing purposes
type Campaign struct {
	DB  databases.CampaignDatabase
	UDB databases.UserDatabase
}

type createCampaignRequest struct {
	Name         string  `json:"name" validate:"required"`
	Description  string  `json:"description"`
	RewardType   string  `json:"rewardType" validate:"required,oneof=discount cash credit gift"`
	RewardAmount float64 `json:"rewardAmount" validate:"required,gt=0"`
	LogoURL      string  `json:"logoUrl" validate:"omitempty,url"`
	IsActive     *bool   `json:"isActive"`
}

// CampaignsHandler returns all campaigns owned by the session business.
// Optional limit and page query params page through large catalogs.
func (c Campaign) CampaignsHandler(w http.ResponseWriter, r *http.Request) {
	businessID, err := api.PrincipalObjectID(r.Context())
	if err != nil {
		config.ErrorStatus("failed to resolve session user", http.StatusUnauthorized, w, err)
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	var opts []*options.FindOptions
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	if limit > 0 {
		if page < 1 {
			page = 1
		}
		opts = append(opts, databases.NewMongoPaginate(limit, page))
	}

	dbResp, err := c.DB.Find(ctx, bson.M{"businessId": businessID}, opts...)
	if err != nil {
		config.ErrorStatus("failed to get campaigns", http.StatusInternalServerError, w, err)
		return
	}
	if len(dbResp) == 0 {
		dbResp = []models.Campaign{}
	}

	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(dbResp)
}

// CreateCampaignHandler creates a campaign for the session business. The
// owning business name is denormalized onto the campaign at creation time.
func (c Campaign) CreateCampaignHandler(w http.ResponseWriter, r *http.Request) {
	businessID, err := api.PrincipalObjectID(r.Context())
	if err != nil {
		config.ErrorStatus("failed to resolve session user", http.StatusUnauthorized, w, err)
		return
	}

	var req createCampaignRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		config.ErrorStatus("failed to decode request body", http.StatusBadRequest, w, err)
		return
	}
	if err := validate.Struct(req); err != nil {
		writeValidationErrors(w, err)
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	companyName := ""
	if owner, err := c.UDB.FindOne(ctx, bson.M{"_id": businessID}); err == nil {
		companyName = owner.BusinessName
		if companyName == "" {
			companyName = owner.Name
		}
	}

	isActive := true
	if req.IsActive != nil {
		isActive = *req.IsActive
	}

	now := time.Now()
	campaignID := primitive.NewObjectID()
	newCampaign := models.Campaign{
		ID:           campaignID,
		BusinessID:   businessID,
		Name:         req.Name,
		Description:  req.Description,
		CompanyName:  companyName,
		IsActive:     isActive,
		RewardType:   req.RewardType,
		RewardAmount: req.RewardAmount,
		LogoURL:      req.LogoURL,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	_, err = c.DB.InsertOne(ctx, newCampaign)
	if err != nil {
		config.ErrorStatus("failed to create campaign", http.StatusInternalServerError, w, err)
		return
	}

	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(map[string]interface{}{
		"message": "Campaign created successfully",
		"id":      campaignID.Hex(),
	})
}

// CampaignByIDHandler returns a campaign by ID, scoped to the session business
func (c Campaign) CampaignByIDHandler(w http.ResponseWriter, r *http.Request) {
	campID := mux.Vars(r)["campaign_id"]

	zap.S().Debugf("campaign_id: %v", campID)

	cID, err := primitive.ObjectIDFromHex(campID)
	if err != nil {
		config.ErrorStatus("failed to get objectID from Hex", http.StatusBadRequest, w, err)
		return
	}
	businessID, err := api.PrincipalObjectID(r.Context())
	if err != nil {
		config.ErrorStatus("failed to resolve session user", http.StatusUnauthorized, w, err)
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	dbResp, err := c.DB.FindOne(ctx, bson.M{"_id": cID, "businessId": businessID})
	if err != nil {
		config.ErrorStatus("failed to get campaign by ID", http.StatusNotFound, w, err)
		return
	}

	b, err := json.Marshal(dbResp)
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write(b)
}

// UpdateCampaignHandler merges arbitrary top-level fields into a campaign.
// The _id and businessId fields are never writable through this route.
func (c Campaign) UpdateCampaignHandler(w http.ResponseWriter, r *http.Request) {
	campID := mux.Vars(r)["campaign_id"]

	cID, err := primitive.ObjectIDFromHex(campID)
	if err != nil {
		config.ErrorStatus("failed to get objectID from Hex", http.StatusBadRequest, w, err)
		return
	}
	businessID, err := api.PrincipalObjectID(r.Context())
	if err != nil {
		config.ErrorStatus("failed to resolve session user", http.StatusUnauthorized, w, err)
		return
	}

	var updatedFields map[string]interface{}
	if err := json.NewDecoder(r.Body).Decode(&updatedFields); err != nil {
		config.ErrorStatus("failed to decode request body", http.StatusBadRequest, w, err)
		return
	}
	delete(updatedFields, "_id")
	delete(updatedFields, "businessId")

	set := bson.M{"updatedAt": time.Now()}
	for key, value := range updatedFields {
		set[key] = value
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	res, err := c.DB.UpdateOne(ctx, bson.M{"_id": cID, "businessId": businessID}, bson.M{"$set": set})
	if err != nil {
		config.ErrorStatus("failed to update campaign by ID", http.StatusInternalServerError, w, err)
		return
	}
	if res.MatchedCount == 0 {
		config.ErrorStatus("campaign not found", http.StatusNotFound, w, nil)
		return
	}

	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"message": "campaign updated successfully"}`))
}

// DeleteCampaignHandler hard-deletes a campaign. Links, conversions, and
// rewards that reference it are left in place.
func (c Campaign) DeleteCampaignHandler(w http.ResponseWriter, r *http.Request) {
	campID := mux.Vars(r)["campaign_id"]

	cID, err := primitive.ObjectIDFromHex(campID)
	if err != nil {
		config.ErrorStatus("failed to get objectID from Hex", http.StatusBadRequest, w, err)
		return
	}
	businessID, err := api.PrincipalObjectID(r.Context())
	if err != nil {
		config.ErrorStatus("failed to resolve session user", http.StatusUnauthorized, w, err)
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	deleted, err := c.DB.DeleteOne(ctx, bson.M{"_id": cID, "businessId": businessID})
	if err != nil {
		config.ErrorStatus("failed to delete campaign", http.StatusInternalServerError, w, err)
		return
	}
	if deleted == 0 {
		config.ErrorStatus("campaign not found", http.StatusNotFound, w, nil)
		return
	}

	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(map[string]interface{}{
		"message": "Campaign deleted successfully",
	})
}
