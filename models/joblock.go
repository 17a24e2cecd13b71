package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// JobLock is a short-lived distributed lock document used by the scheduler so
// that periodic jobs run on a single instance at a time.
type JobLock struct {
	ID         primitive.ObjectID `bson:"_id,omitempty"`
	Name       string             `bson:"name" index:"unique"`
	InstanceID string             `bson:"instanceId"`
	ExpiresAt  time.Time          `bson:"expiresAt"`
	AcquiredAt time.Time          `bson:"acquiredAt"`
}
