package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// CampaignSelection is the join record proving a referrer opted into a campaign.
// Referrers may only generate links for campaigns they have selected.
type CampaignSelection struct {
	ID         primitive.ObjectID `json:"_id" bson:"_id,omitempty"`
	ReferrerID primitive.ObjectID `json:"referrerId" bson:"referrerId"`
	CampaignID primitive.ObjectID `json:"campaignId" bson:"campaignId"`
	CreatedAt  time.Time          `json:"createdAt" bson:"createdAt"`
}
