package databases

// go generate: mockery --name JobLockDatabase

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const jobLockName = "jobLocks"

// JobLockDatabase hands out short-lived distributed locks so scheduled jobs run
// on a single instance at a time.
type JobLockDatabase interface {
	TryAcquireLock(ctx context.Context, name, instanceID string, ttl time.Duration) (bool, error)
	ReleaseLock(ctx context.Context, name, instanceID string) error
}

type jobLockDatabase struct {
	db DatabaseHelper
}

// NewJobLockDatabase initializes a new instance of job lock database with the provided db connection
func NewJobLockDatabase(db DatabaseHelper) JobLockDatabase {
	return &jobLockDatabase{
		db: db,
	}
}

// TryAcquireLock upserts the lock document if it is absent or expired. The
// unique index on name turns a losing race into a duplicate key error, which
// reports as not-acquired rather than failing the job.
func (j *jobLockDatabase) TryAcquireLock(ctx context.Context, name, instanceID string, ttl time.Duration) (bool, error) {
	now := time.Now()
	filter := bson.M{
		"name":      name,
		"expiresAt": bson.M{"$lt": now},
	}
	update := bson.M{
		"$set": bson.M{
			"name":       name,
			"instanceId": instanceID,
			"expiresAt":  now.Add(ttl),
			"acquiredAt": now,
		},
	}
	res, err := j.db.Collection(jobLockName).UpdateOne(ctx, filter, update, options.Update().SetUpsert(true))
	if err != nil {
		if IsDuplicateKey(err) {
			return false, nil
		}
		return false, err
	}
	return res.ModifiedCount > 0 || res.UpsertedCount > 0, nil
}

func (j *jobLockDatabase) ReleaseLock(ctx context.Context, name, instanceID string) error {
	_, err := j.db.Collection(jobLockName).UpdateOne(ctx,
		bson.M{"name": name, "instanceId": instanceID},
		bson.M{"$set": bson.M{"expiresAt": time.Now()}},
	)
	return err
}
