package handlers

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/referloop/referral-api/api"
	"github.com/referloop/referral-api/config"
	"github.com/referloop/referral-api/databases"
	"github.com/referloop/referral-api/models"
)

// Referrer exported for testing purposes
type Referrer struct {
	CDB     databases.CampaignDatabase
	SDB     databases.CampaignSelectionDatabase
	LDB     databases.ReferralLinkDatabase
	RDB     databases.RewardDatabase
	BaseURL string
}

const referrerRewardExpiry = 30 * 24 * time.Hour

// newReferralCode mints an opaque 12 hex character link code
func newReferralCode() string {
	b := make([]byte, 6)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}

// shareURL builds the public landing URL for a link code
func shareURL(baseURL, code string) string {
	return strings.TrimRight(baseURL, "/") + "/r/" + code
}

type campaignWithSelection struct {
	models.Campaign
	Selected bool `json:"selected"`
}

// CampaignsHandler returns all active campaigns with a selected flag for the
// session referrer
func (rf Referrer) CampaignsHandler(w http.ResponseWriter, r *http.Request) {
	referrerID, err := api.PrincipalObjectID(r.Context())
	if err != nil {
		config.ErrorStatus("failed to resolve session user", http.StatusUnauthorized, w, err)
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	campaigns, err := rf.CDB.Find(ctx, bson.M{"isActive": true})
	if err != nil {
		config.ErrorStatus("failed to get campaigns", http.StatusInternalServerError, w, err)
		return
	}

	selections, err := rf.SDB.Find(ctx, bson.M{"referrerId": referrerID})
	if err != nil {
		config.ErrorStatus("failed to get campaign selections", http.StatusInternalServerError, w, err)
		return
	}
	selected := make(map[primitive.ObjectID]bool, len(selections))
	for _, s := range selections {
		selected[s.CampaignID] = true
	}

	resp := make([]campaignWithSelection, 0, len(campaigns))
	for _, c := range campaigns {
		resp = append(resp, campaignWithSelection{Campaign: c, Selected: selected[c.ID]})
	}

	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(resp)
}

type selectCampaignRequest struct {
	CampaignID string `json:"campaignId"`
}

// SelectCampaignHandler records that the referrer opted into a campaign
func (rf Referrer) SelectCampaignHandler(w http.ResponseWriter, r *http.Request) {
	referrerID, err := api.PrincipalObjectID(r.Context())
	if err != nil {
		config.ErrorStatus("failed to resolve session user", http.StatusUnauthorized, w, err)
		return
	}

	var req selectCampaignRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		config.ErrorStatus("failed to decode request body", http.StatusBadRequest, w, err)
		return
	}
	campaignID, err := primitive.ObjectIDFromHex(req.CampaignID)
	if err != nil {
		config.ErrorStatus("failed to get objectID from Hex", http.StatusBadRequest, w, err)
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	_, err = rf.CDB.FindOne(ctx, bson.M{"_id": campaignID, "isActive": true})
	if err != nil {
		config.ErrorStatus("failed to get campaign by ID", http.StatusNotFound, w, err)
		return
	}

	_, err = rf.SDB.InsertOne(ctx, models.CampaignSelection{
		ID:         primitive.NewObjectID(),
		ReferrerID: referrerID,
		CampaignID: campaignID,
		CreatedAt:  time.Now(),
	})
	if err != nil {
		if databases.IsDuplicateKey(err) {
			config.ErrorStatus("campaign already selected", http.StatusConflict, w, err)
			return
		}
		config.ErrorStatus("failed to select campaign", http.StatusInternalServerError, w, err)
		return
	}

	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(map[string]interface{}{
		"message": "Campaign selected successfully",
	})
}

type generateLinkRequest struct {
	CampaignID    string `json:"campaignId"`
	CustomMessage string `json:"customMessage"`
}

// GenerateLinkHandler mints a referral link for a campaign the referrer has
// previously selected
func (rf Referrer) GenerateLinkHandler(w http.ResponseWriter, r *http.Request) {
	referrerID, err := api.PrincipalObjectID(r.Context())
	if err != nil {
		config.ErrorStatus("failed to resolve session user", http.StatusUnauthorized, w, err)
		return
	}

	var req generateLinkRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		config.ErrorStatus("failed to decode request body", http.StatusBadRequest, w, err)
		return
	}
	campaignID, err := primitive.ObjectIDFromHex(req.CampaignID)
	if err != nil {
		config.ErrorStatus("failed to get objectID from Hex", http.StatusBadRequest, w, err)
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	campaign, err := rf.CDB.FindOne(ctx, bson.M{"_id": campaignID, "isActive": true})
	if err != nil {
		config.ErrorStatus("failed to get campaign by ID", http.StatusNotFound, w, err)
		return
	}

	_, err = rf.SDB.FindOne(ctx, bson.M{"referrerId": referrerID, "campaignId": campaignID})
	if err != nil {
		config.ErrorStatus("campaign not selected", http.StatusForbidden, w, err)
		return
	}

	now := time.Now()
	link := models.ReferralLink{
		ID:            primitive.NewObjectID(),
		Code:          newReferralCode(),
		ReferrerID:    referrerID,
		CampaignID:    campaignID,
		Active:        true,
		CustomMessage: req.CustomMessage,
		CreatedAt:     now,
	}
	_, err = rf.LDB.InsertOne(ctx, link)
	if err != nil {
		config.ErrorStatus("failed to create referral link", http.StatusInternalServerError, w, err)
		return
	}

	// the reward stays pending until a referral on this campaign completes
	expiry := now.Add(referrerRewardExpiry)
	_, err = rf.RDB.InsertOne(ctx, models.Reward{
		ID:         primitive.NewObjectID(),
		UserID:     referrerID,
		CampaignID: campaign.ID,
		BusinessID: campaign.BusinessID,
		Type:       campaign.RewardType,
		Amount:     campaign.RewardAmount,
		Status:     models.RewardStatusPending,
		Code:       uuid.New().String(),
		DateEarned: now,
		ExpiryDate: &expiry,
	})
	if err != nil {
		config.ErrorStatus("failed to create referrer reward", http.StatusInternalServerError, w, err)
		return
	}

	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(map[string]interface{}{
		"code": link.Code,
		"url":  shareURL(rf.BaseURL, link.Code),
	})
}

type performanceResponse struct {
	Links            []models.ReferralLink `json:"links"`
	TotalClicks      int64                 `json:"totalClicks"`
	TotalConversions int64                 `json:"totalConversions"`
}

// PerformanceHandler returns per-link click and conversion counts for the
// session referrer plus overall totals
func (rf Referrer) PerformanceHandler(w http.ResponseWriter, r *http.Request) {
	referrerID, err := api.PrincipalObjectID(r.Context())
	if err != nil {
		config.ErrorStatus("failed to resolve session user", http.StatusUnauthorized, w, err)
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	links, err := rf.LDB.Find(ctx, bson.M{"referrerId": referrerID})
	if err != nil {
		config.ErrorStatus("failed to get referral links", http.StatusInternalServerError, w, err)
		return
	}
	if len(links) == 0 {
		links = []models.ReferralLink{}
	}

	resp := performanceResponse{Links: links}
	for _, l := range links {
		resp.TotalClicks += l.Clicks
		resp.TotalConversions += l.Conversions
	}

	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(resp)
}
