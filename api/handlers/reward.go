package handlers

import (
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/referloop/referral-api/api"
	"github.com/referloop/referral-api/config"
	"github.com/referloop/referral-api/databases"
	"github.com/referloop/referral-api/models"
)

// Reward exported for testing purposes
type Reward struct {
	RDB databases.RewardDatabase
	CDB databases.CampaignDatabase
	UDB databases.UserDatabase
}

// RewardsHandler lists the session user's rewards with campaign and business
// display names joined in. Overdue rewards are flipped to expired before the
// listing runs, so callers never see a stale available status.
func (rw Reward) RewardsHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := api.PrincipalObjectID(r.Context())
	if err != nil {
		config.ErrorStatus("failed to resolve session user", http.StatusUnauthorized, w, err)
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	_, err = rw.RDB.UpdateMany(ctx,
		bson.M{
			"userId":     userID,
			"status":     bson.M{"$in": models.ClaimableStatuses()},
			"expiryDate": bson.M{"$lt": time.Now()},
		},
		bson.M{"$set": bson.M{"status": models.RewardStatusExpired}},
	)
	if err != nil {
		config.ErrorStatus("failed to expire rewards", http.StatusInternalServerError, w, err)
		return
	}

	pipeline := []bson.M{
		{"$match": bson.M{"userId": userID}},
		{"$sort": bson.M{"dateEarned": -1}},
		{"$lookup": bson.M{
			"from":         "campaigns",
			"localField":   "campaignId",
			"foreignField": "_id",
			"as":           "campaign",
		}},
		{"$addFields": bson.M{
			"campaignName": bson.M{"$first": "$campaign.name"},
			"companyName":  bson.M{"$first": "$campaign.companyName"},
		}},
		{"$project": bson.M{"campaign": 0}},
	}
	views, err := rw.RDB.Aggregate(ctx, pipeline)
	if err != nil {
		config.ErrorStatus("failed to get rewards", http.StatusInternalServerError, w, err)
		return
	}
	if len(views) == 0 {
		views = []models.RewardView{}
	}

	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(views)
}

type claimRewardRequest struct {
	RewardID     string `json:"rewardId"`
	PayoutMethod string `json:"payoutMethod"`
	PayoutDetail string `json:"payoutDetail"`
}

// ClaimRewardHandler marks an available reward as claimed and records the
// payout destination. The status guard on the update makes concurrent claims
// lose cleanly with a conflict.
func (rw Reward) ClaimRewardHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := api.PrincipalObjectID(r.Context())
	if err != nil {
		config.ErrorStatus("failed to resolve session user", http.StatusUnauthorized, w, err)
		return
	}

	var req claimRewardRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		config.ErrorStatus("failed to decode request body", http.StatusBadRequest, w, err)
		return
	}
	rewardID, err := primitive.ObjectIDFromHex(req.RewardID)
	if err != nil {
		config.ErrorStatus("failed to get objectID from Hex", http.StatusBadRequest, w, err)
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	_, err = rw.RDB.FindOne(ctx, bson.M{"_id": rewardID, "userId": userID})
	if err != nil {
		config.ErrorStatus("failed to get reward by ID", http.StatusNotFound, w, err)
		return
	}

	res, err := rw.RDB.UpdateOne(ctx,
		bson.M{"_id": rewardID, "userId": userID, "status": bson.M{"$in": models.ClaimableStatuses()}},
		bson.M{"$set": bson.M{
			"status":       models.RewardStatusClaimed,
			"payoutMethod": req.PayoutMethod,
			"payoutDetail": req.PayoutDetail,
		}},
	)
	if err != nil {
		config.ErrorStatus("failed to claim reward", http.StatusInternalServerError, w, err)
		return
	}
	if res.ModifiedCount == 0 {
		config.ErrorStatus("reward is not claimable", http.StatusConflict, w, nil)
		return
	}

	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(map[string]interface{}{
		"message": "Reward claimed successfully",
	})
}

type redeemRewardRequest struct {
	RewardID string `json:"rewardId"`
}

// RedeemRewardHandler marks an available reward as redeemed and hands back a
// redemption URL on the owning business's site. An overdue reward is expired
// on the spot instead of redeemed.
func (rw Reward) RedeemRewardHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := api.PrincipalObjectID(r.Context())
	if err != nil {
		config.ErrorStatus("failed to resolve session user", http.StatusUnauthorized, w, err)
		return
	}

	var req redeemRewardRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		config.ErrorStatus("failed to decode request body", http.StatusBadRequest, w, err)
		return
	}
	rewardID, err := primitive.ObjectIDFromHex(req.RewardID)
	if err != nil {
		config.ErrorStatus("failed to get objectID from Hex", http.StatusBadRequest, w, err)
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	reward, err := rw.RDB.FindOne(ctx, bson.M{"_id": rewardID, "userId": userID})
	if err != nil {
		config.ErrorStatus("failed to get reward by ID", http.StatusNotFound, w, err)
		return
	}

	if reward.ExpiryDate != nil && reward.ExpiryDate.Before(time.Now()) {
		_, _ = rw.RDB.UpdateOne(ctx,
			bson.M{"_id": rewardID, "status": bson.M{"$in": models.RedeemableStatuses()}},
			bson.M{"$set": bson.M{"status": models.RewardStatusExpired}},
		)
		config.ErrorStatus("reward expired", http.StatusBadRequest, w, nil)
		return
	}

	now := time.Now()
	res, err := rw.RDB.UpdateOne(ctx,
		bson.M{"_id": rewardID, "userId": userID, "status": bson.M{"$in": models.RedeemableStatuses()}},
		bson.M{"$set": bson.M{
			"status":       models.RewardStatusRedeemed,
			"dateRedeemed": now,
		}},
	)
	if err != nil {
		config.ErrorStatus("failed to redeem reward", http.StatusInternalServerError, w, err)
		return
	}
	if res.ModifiedCount == 0 {
		config.ErrorStatus("reward is not redeemable", http.StatusConflict, w, nil)
		return
	}

	if _, err := rw.CDB.UpdateOne(ctx, bson.M{"_id": reward.CampaignID}, bson.M{"$inc": bson.M{"redemptions": 1}}); err != nil {
		config.ErrorStatus("failed to record redemption", http.StatusInternalServerError, w, err)
		return
	}

	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(map[string]interface{}{
		"message":       "Reward redeemed successfully",
		"redemptionUrl": rw.redemptionURL(r, reward),
	})
}

// redemptionURL points at the business's own site carrying the reward code,
// falling back to a bare query string when the business has no website on file.
func (rw Reward) redemptionURL(r *http.Request, reward *models.Reward) string {
	qs := url.Values{}
	qs.Set("code", reward.Code)
	qs.Set("type", reward.Type)
	qs.Set("amount", strconv.FormatFloat(reward.Amount, 'f', -1, 64))

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	business, err := rw.UDB.FindOne(ctx, bson.M{"_id": reward.BusinessID})
	if err != nil || business.Website == "" {
		return "?" + qs.Encode()
	}
	return strings.TrimRight(business.Website, "/") + "/redeem?" + qs.Encode()
}
