package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Conversion statuses. A conversion starts pending when a customer first visits
// a referral link, and is promoted to completed exactly once. There is no path
// back out of completed or rejected.
const (
	ConversionStatusPending   = "pending"
	ConversionStatusCompleted = "completed"
	ConversionStatusRejected  = "rejected"
)

// Conversion holds the structure for the conversions collection in mongo.
// The (referralLinkId, customerId) pair is enforced unique by a compound index,
// so conversion creation is an atomic insert-if-absent.
type Conversion struct {
	ID             primitive.ObjectID `json:"_id" bson:"_id,omitempty"`
	ReferralLinkID primitive.ObjectID `json:"referralLinkId" bson:"referralLinkId"`
	CustomerID     primitive.ObjectID `json:"customerId" bson:"customerId"`
	ReferrerID     primitive.ObjectID `json:"referrerId" bson:"referrerId"`
	CampaignID     primitive.ObjectID `json:"campaignId" bson:"campaignId"`
	Status         string             `json:"status" bson:"status"`
	CreatedAt      time.Time          `json:"createdAt" bson:"createdAt"`
	CompletedAt    *time.Time         `json:"completedAt,omitempty" bson:"completedAt,omitempty"`
}
