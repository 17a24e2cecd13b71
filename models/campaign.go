package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Campaign holds the structure for the campaigns collection in mongo.
// CompanyName is denormalized from the owning business at creation time and is
// not kept in sync if the business later renames itself.
type Campaign struct {
	ID           primitive.ObjectID `json:"_id" bson:"_id,omitempty"`
	BusinessID   primitive.ObjectID `json:"businessId" bson:"businessId"`
	Name         string             `json:"name" bson:"name"`
	Description  string             `json:"description" bson:"description"`
	CompanyName  string             `json:"companyName" bson:"companyName"`
	IsActive     bool               `json:"isActive" bson:"isActive"`
	RewardType   string             `json:"rewardType" bson:"rewardType"`
	RewardAmount float64            `json:"rewardAmount" bson:"rewardAmount"`
	LogoURL      string             `json:"logoUrl,omitempty" bson:"logoUrl,omitempty"`
	Conversions  int64              `json:"conversions" bson:"conversions"`
	Redemptions  int64              `json:"redemptions" bson:"redemptions"`
	CreatedAt    time.Time          `json:"createdAt" bson:"createdAt"`
	UpdatedAt    time.Time          `json:"updatedAt" bson:"updatedAt"`
}
