package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Roles a user can hold. Role is set at registration and is immutable afterwards.
const (
	RoleBusiness = "business"
	RoleReferrer = "referrer"
	RoleCustomer = "customer"
	RoleAdmin    = "admin"
)

// User holds the structure for the users collection in mongo. Role-specific
// fields are only populated for the matching role.
type User struct {
	ID       primitive.ObjectID `json:"_id" bson:"_id,omitempty"`
	Email    string             `json:"email" bson:"email" index:"unique"`
	Password string             `json:"-" bson:"password"`
	Name     string             `json:"name" bson:"name"`
	Role     string             `json:"role" bson:"role"`

	// business fields
	BusinessName string `json:"businessName,omitempty" bson:"businessName,omitempty"`
	Website      string `json:"website,omitempty" bson:"website,omitempty"`

	// referrer fields
	Company      string `json:"company,omitempty" bson:"company,omitempty"`
	ReferralCode string `json:"referralCode,omitempty" bson:"referralCode,omitempty"`

	// referrer and customer: the business this account is attached to, when known
	BusinessID *primitive.ObjectID `json:"businessId,omitempty" bson:"businessId,omitempty"`

	// customer fields
	ReferredBy string `json:"referredBy,omitempty" bson:"referredBy,omitempty"`

	CreatedAt time.Time `json:"createdAt" bson:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt" bson:"updatedAt"`
}
