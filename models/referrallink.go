package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ReferralLink holds the structure for the referralLinks collection in mongo.
// Code is a 12 hex character opaque identifier, unique across all links, and is
// never reused once minted.
type ReferralLink struct {
	ID            primitive.ObjectID `json:"_id" bson:"_id,omitempty"`
	Code          string             `json:"code" bson:"code" index:"unique"`
	ReferrerID    primitive.ObjectID `json:"referrerId" bson:"referrerId"`
	CampaignID    primitive.ObjectID `json:"campaignId" bson:"campaignId"`
	Clicks        int64              `json:"clicks" bson:"clicks"`
	Conversions   int64              `json:"conversions" bson:"conversions"`
	Active        bool               `json:"active" bson:"active"`
	CustomMessage string             `json:"customMessage,omitempty" bson:"customMessage,omitempty"`
	CreatedAt     time.Time          `json:"createdAt" bson:"createdAt"`
}
