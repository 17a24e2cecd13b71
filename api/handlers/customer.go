package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/referloop/referral-api/api"
	"github.com/referloop/referral-api/config"
	"github.com/referloop/referral-api/databases"
	"github.com/referloop/referral-api/models"
	templates "github.com/referloop/referral-api/templates/html"
)

// shareRewardExpiry is how long a share or conversion reward stays available
const shareRewardExpiry = 30 * 24 * time.Hour

// Customer exported for testing purposes
type Customer struct {
	DB      databases.DatabaseHelper
	CDB     databases.CampaignDatabase
	UDB     databases.UserDatabase
	LDB     databases.ReferralLinkDatabase
	SHDB    databases.CustomerShareDatabase
	CVDB    databases.ConversionDatabase
	RDB     databases.RewardDatabase
	BaseURL string
}

type shareCampaignRequest struct {
	CampaignID    string `json:"campaignId"`
	ShareMethod   string `json:"shareMethod"`
	CustomMessage string `json:"customMessage"`
}

// ShareCampaignHandler records a customer sharing a campaign. The share
// record, the share reward, and the referral link are written inside one
// transaction so a duplicate share leaves no partial state behind.
func (c Customer) ShareCampaignHandler(w http.ResponseWriter, r *http.Request) {
	customerID, err := api.PrincipalObjectID(r.Context())
	if err != nil {
		config.ErrorStatus("failed to resolve session user", http.StatusUnauthorized, w, err)
		return
	}

	var req shareCampaignRequest
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

	campaign, err := c.CDB.FindOne(ctx, bson.M{"_id": campaignID, "isActive": true})
	if err != nil {
		config.ErrorStatus("failed to get campaign by ID", http.StatusNotFound, w, err)
		return
	}

	now := time.Now()
	expiry := now.Add(shareRewardExpiry)
	link := models.ReferralLink{
		ID:            primitive.NewObjectID(),
		Code:          newReferralCode(),
		ReferrerID:    customerID,
		CampaignID:    campaignID,
		Active:        true,
		CustomMessage: req.CustomMessage,
		CreatedAt:     now,
	}

	err = databases.WithTransaction(ctx, c.DB, func(sc context.Context) error {
		if _, err := c.SHDB.InsertOne(sc, models.CustomerShare{
			ID:          primitive.NewObjectID(),
			CustomerID:  customerID,
			CampaignID:  campaignID,
			ShareMethod: req.ShareMethod,
			CreatedAt:   now,
		}); err != nil {
			return err
		}
		if _, err := c.RDB.InsertOne(sc, models.Reward{
			ID:         primitive.NewObjectID(),
			UserID:     customerID,
			CampaignID: campaignID,
			BusinessID: campaign.BusinessID,
			Type:       campaign.RewardType,
			Amount:     campaign.RewardAmount,
			Status:     models.RewardStatusPending,
			Code:       uuid.New().String(),
			DateEarned: now,
			ExpiryDate: &expiry,
		}); err != nil {
			return err
		}
		_, err := c.LDB.InsertOne(sc, link)
		return err
	})
	if err != nil {
		if databases.IsDuplicateKey(err) {
			config.ErrorStatus("campaign already shared", http.StatusConflict, w, err)
			return
		}
		config.ErrorStatus("failed to share campaign", http.StatusInternalServerError, w, err)
		return
	}

	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(map[string]interface{}{
		"code":     link.Code,
		"shareUrl": shareURL(c.BaseURL, link.Code),
	})
}

type processLinkRequest struct {
	Code string `json:"code"`
	URL  string `json:"url"`
}

// parseReferralCode pulls the link code out of a request that carries either
// the bare code or a full share URL
func parseReferralCode(req processLinkRequest) string {
	if req.Code != "" {
		return req.Code
	}
	parts := strings.Split(req.URL, "/r/")
	if len(parts) < 2 {
		return ""
	}
	code := parts[len(parts)-1]
	if i := strings.IndexAny(code, "?#/"); i >= 0 {
		code = code[:i]
	}
	return code
}

// ProcessLinkHandler resolves a referral link visit. Every visit counts a
// click; a visiting customer additionally gets a pending conversion recorded
// exactly once, enforced by the unique (referralLinkId, customerId) index.
func (c Customer) ProcessLinkHandler(w http.ResponseWriter, r *http.Request) {
	var req processLinkRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		config.ErrorStatus("failed to decode request body", http.StatusBadRequest, w, err)
		return
	}
	code := parseReferralCode(req)
	if code == "" {
		config.ErrorStatus("referral code is required", http.StatusBadRequest, w, nil)
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	link, err := c.LDB.FindOne(ctx, bson.M{"code": code, "active": true})
	if err != nil {
		config.ErrorStatus("failed to get referral link", http.StatusNotFound, w, err)
		return
	}

	if _, err := c.LDB.UpdateOne(ctx, bson.M{"_id": link.ID}, bson.M{"$inc": bson.M{"clicks": 1}}); err != nil {
		config.ErrorStatus("failed to record click", http.StatusInternalServerError, w, err)
		return
	}

	info := api.PrincipalFromContext(r.Context())
	if api.PrincipalHasRole(info, models.RoleCustomer) {
		customerID, err := api.PrincipalObjectID(r.Context())
		if err == nil && customerID != link.ReferrerID {
			_, err = c.CVDB.InsertOne(ctx, models.Conversion{
				ID:             primitive.NewObjectID(),
				ReferralLinkID: link.ID,
				CustomerID:     customerID,
				ReferrerID:     link.ReferrerID,
				CampaignID:     link.CampaignID,
				Status:         models.ConversionStatusPending,
				CreatedAt:      time.Now(),
			})
			if err != nil && !databases.IsDuplicateKey(err) {
				config.ErrorStatus("failed to record conversion", http.StatusInternalServerError, w, err)
				return
			}
		}
	}

	campaign, err := c.CDB.FindOne(ctx, bson.M{"_id": link.CampaignID})
	if err != nil {
		config.ErrorStatus("failed to get campaign by ID", http.StatusNotFound, w, err)
		return
	}

	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(map[string]interface{}{
		"campaignId":    campaign.ID.Hex(),
		"name":          campaign.Name,
		"companyName":   campaign.CompanyName,
		"description":   campaign.Description,
		"rewardType":    campaign.RewardType,
		"rewardAmount":  campaign.RewardAmount,
		"logoUrl":       campaign.LogoURL,
		"customMessage": link.CustomMessage,
	})
}

type completeReferralRequest struct {
	Code string `json:"code"`
}

// CompleteReferralHandler promotes the caller's pending conversion on a link
// to completed. The promotion, counter bumps, and reward writes run inside a
// transaction; the status-guarded update makes completion idempotent-safe, a
// second attempt conflicts instead of double counting.
func (c Customer) CompleteReferralHandler(w http.ResponseWriter, r *http.Request) {
	customerID, err := api.PrincipalObjectID(r.Context())
	if err != nil {
		config.ErrorStatus("failed to resolve session user", http.StatusUnauthorized, w, err)
		return
	}

	var req completeReferralRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		config.ErrorStatus("failed to decode request body", http.StatusBadRequest, w, err)
		return
	}
	if req.Code == "" {
		config.ErrorStatus("referral code is required", http.StatusBadRequest, w, nil)
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	link, err := c.LDB.FindOne(ctx, bson.M{"code": req.Code, "active": true})
	if err != nil {
		config.ErrorStatus("failed to get referral link", http.StatusNotFound, w, err)
		return
	}

	if link.ReferrerID == customerID {
		config.ErrorStatus("cannot complete your own referral", http.StatusBadRequest, w, nil)
		return
	}

	conversion, err := c.CVDB.FindOne(ctx, bson.M{"referralLinkId": link.ID, "customerId": customerID})
	if err != nil {
		config.ErrorStatus("failed to get conversion", http.StatusNotFound, w, err)
		return
	}
	if conversion.Status == models.ConversionStatusCompleted {
		config.ErrorStatus("referral already completed", http.StatusConflict, w, nil)
		return
	}

	campaign, err := c.CDB.FindOne(ctx, bson.M{"_id": link.CampaignID})
	if err != nil {
		config.ErrorStatus("failed to get campaign by ID", http.StatusNotFound, w, err)
		return
	}

	now := time.Now()
	expiry := now.Add(shareRewardExpiry)
	customerReward := models.Reward{
		ID:         primitive.NewObjectID(),
		UserID:     customerID,
		CampaignID: campaign.ID,
		BusinessID: campaign.BusinessID,
		Type:       campaign.RewardType,
		Amount:     campaign.RewardAmount,
		Status:     models.RewardStatusAvailable,
		Code:       uuid.New().String(),
		DateEarned: now,
		ExpiryDate: &expiry,
	}

	conflict := false
	err = databases.WithTransaction(ctx, c.DB, func(sc context.Context) error {
		res, err := c.CVDB.UpdateOne(sc,
			bson.M{"_id": conversion.ID, "status": models.ConversionStatusPending},
			bson.M{"$set": bson.M{"status": models.ConversionStatusCompleted, "completedAt": now}},
		)
		if err != nil {
			return err
		}
		if res.ModifiedCount == 0 {
			conflict = true
			return nil
		}

		if _, err := c.LDB.UpdateOne(sc, bson.M{"_id": link.ID}, bson.M{"$inc": bson.M{"conversions": 1}}); err != nil {
			return err
		}
		if _, err := c.CDB.UpdateOne(sc, bson.M{"_id": campaign.ID}, bson.M{"$inc": bson.M{"conversions": 1}}); err != nil {
			return err
		}

		if _, err := c.RDB.InsertOne(sc, customerReward); err != nil {
			return err
		}

		// activate the referrer's pending reward for this campaign, if any
		_, err = c.RDB.UpdateOne(sc,
			bson.M{"userId": link.ReferrerID, "campaignId": campaign.ID, "status": models.RewardStatusPending},
			bson.M{"$set": bson.M{"status": models.RewardStatusAvailable, "activatedBy": customerID}},
		)
		return err
	})
	if err != nil {
		config.ErrorStatus("failed to complete referral", http.StatusInternalServerError, w, err)
		return
	}
	if conflict {
		config.ErrorStatus("referral already completed", http.StatusConflict, w, nil)
		return
	}

	emitRewardEvent(link.ReferrerID.Hex(), map[string]interface{}{
		"type":         "referral_completed",
		"campaignId":   campaign.ID.Hex(),
		"campaignName": campaign.Name,
		"rewardType":   campaign.RewardType,
		"rewardAmount": campaign.RewardAmount,
	})
	go c.notifyReferrer(link.ReferrerID, campaign)

	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(map[string]interface{}{
		"message":  "Referral completed successfully",
		"rewardId": customerReward.ID.Hex(),
	})
}

// notifyReferrer emails the referrer that their reward was activated. Failures
// are logged and otherwise ignored.
func (c Customer) notifyReferrer(referrerID primitive.ObjectID, campaign *models.Campaign) {
	ctx, cancel := api.WithQueryTimeout(context.Background())
	defer cancel()

	referrer, err := c.UDB.FindOne(ctx, bson.M{"_id": referrerID})
	if err != nil || referrer.Email == "" {
		return
	}

	subject := "Your referral reward is ready"
	body := "Good news " + referrer.Name + ",\n\n" +
		"Someone you referred just completed a purchase through your link for " +
		campaign.Name + ".\n\nYour reward is now available, log in to claim it."
	from := mail.NewEmail("ReferLoop", "no-reply@referloop.io")
	to := mail.NewEmail(referrer.Name, referrer.Email)
	msg := mail.NewSingleEmail(from, subject, to, body, templates.RenderGenericEmail(subject, body))
	client := sendgrid.NewSendClient(os.Getenv("SENDGRID_API_KEY"))
	if _, err := client.Send(msg); err != nil {
		zap.S().Warnw("failed to send reward email", "error", err, "userId", referrerID.Hex())
	}
}

type customerCampaignView struct {
	models.Campaign
	Shared           bool   `json:"shared"`
	ConversionStatus string `json:"conversionStatus,omitempty"`
}

// CampaignsHandler returns the campaigns the session customer has shared or
// converted on
func (c Customer) CampaignsHandler(w http.ResponseWriter, r *http.Request) {
	customerID, err := api.PrincipalObjectID(r.Context())
	if err != nil {
		config.ErrorStatus("failed to resolve session user", http.StatusUnauthorized, w, err)
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	shares, err := c.SHDB.Find(ctx, bson.M{"customerId": customerID})
	if err != nil {
		config.ErrorStatus("failed to get customer shares", http.StatusInternalServerError, w, err)
		return
	}
	conversions, err := c.CVDB.Find(ctx, bson.M{"customerId": customerID})
	if err != nil {
		config.ErrorStatus("failed to get conversions", http.StatusInternalServerError, w, err)
		return
	}

	shared := make(map[primitive.ObjectID]bool, len(shares))
	ids := make([]primitive.ObjectID, 0, len(shares)+len(conversions))
	for _, s := range shares {
		shared[s.CampaignID] = true
		ids = append(ids, s.CampaignID)
	}
	conversionStatus := make(map[primitive.ObjectID]string, len(conversions))
	for _, cv := range conversions {
		conversionStatus[cv.CampaignID] = cv.Status
		if !shared[cv.CampaignID] {
			ids = append(ids, cv.CampaignID)
		}
	}

	resp := []customerCampaignView{}
	if len(ids) > 0 {
		campaigns, err := c.CDB.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
		if err != nil {
			config.ErrorStatus("failed to get campaigns", http.StatusInternalServerError, w, err)
			return
		}
		for _, camp := range campaigns {
			resp = append(resp, customerCampaignView{
				Campaign:         camp,
				Shared:           shared[camp.ID],
				ConversionStatus: conversionStatus[camp.ID],
			})
		}
	}

	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(resp)
}
