package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Canonical reward statuses. The lifecycle is
//
//	pending -> available -> claimed | redeemed
//
// with available -> expired applied lazily when rewards are listed. Historical
// documents may carry the legacy statuses "active" and "issued", which mean
// available; transition guards accept them but new writes always use the
// canonical vocabulary.
const (
	RewardStatusPending   = "pending"
	RewardStatusAvailable = "available"
	RewardStatusClaimed   = "claimed"
	RewardStatusRedeemed  = "redeemed"
	RewardStatusExpired   = "expired"

	// legacy aliases for available
	RewardStatusActive = "active"
	RewardStatusIssued = "issued"
)

// ClaimableStatuses are accepted when claiming a reward.
func ClaimableStatuses() []string {
	return []string{RewardStatusAvailable, RewardStatusActive, RewardStatusIssued}
}

// RedeemableStatuses are accepted when redeeming a reward.
func RedeemableStatuses() []string {
	return []string{RewardStatusAvailable, RewardStatusActive}
}

// Reward holds the structure for the rewards collection in mongo.
type Reward struct {
	ID           primitive.ObjectID  `json:"_id" bson:"_id,omitempty"`
	UserID       primitive.ObjectID  `json:"userId" bson:"userId"`
	CampaignID   primitive.ObjectID  `json:"campaignId" bson:"campaignId"`
	BusinessID   primitive.ObjectID  `json:"businessId" bson:"businessId"`
	Type         string              `json:"type" bson:"type"`
	Amount       float64             `json:"amount" bson:"amount"`
	Status       string              `json:"status" bson:"status"`
	Code         string              `json:"code" bson:"code"`
	ActivatedBy  *primitive.ObjectID `json:"activatedBy,omitempty" bson:"activatedBy,omitempty"`
	PayoutMethod string              `json:"payoutMethod,omitempty" bson:"payoutMethod,omitempty"`
	PayoutDetail string              `json:"payoutDetail,omitempty" bson:"payoutDetail,omitempty"`
	DateEarned   time.Time           `json:"dateEarned" bson:"dateEarned"`
	DateRedeemed *time.Time          `json:"dateRedeemed,omitempty" bson:"dateRedeemed,omitempty"`
	ExpiryDate   *time.Time          `json:"expiryDate,omitempty" bson:"expiryDate,omitempty"`
}

// RewardView is a reward joined with campaign and business display names, as
// returned by the reward listing aggregation.
type RewardView struct {
	Reward       `bson:",inline"`
	CampaignName string `json:"campaignName" bson:"campaignName"`
	CompanyName  string `json:"companyName" bson:"companyName"`
}
