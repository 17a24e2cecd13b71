package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// CustomerShare records a customer sharing a campaign. It doubles as the dedup
// guard for the share flow: (customerId, campaignId) is unique, so a second
// share of the same campaign surfaces as a duplicate key conflict.
type CustomerShare struct {
	ID          primitive.ObjectID `json:"_id" bson:"_id,omitempty"`
	CustomerID  primitive.ObjectID `json:"customerId" bson:"customerId"`
	CampaignID  primitive.ObjectID `json:"campaignId" bson:"campaignId"`
	ShareMethod string             `json:"shareMethod" bson:"shareMethod"`
	CreatedAt   time.Time          `json:"createdAt" bson:"createdAt"`
}
