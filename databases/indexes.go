package databases

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// EnsureIndexes creates the unique indexes the dedup flows depend on. It runs
// once at startup; CreateMany is idempotent for identical definitions.
func EnsureIndexes(ctx context.Context, db DatabaseHelper) error {
	unique := options.Index().SetUnique(true)

	byCollection := map[string][]mongo.IndexModel{
		userName: {
			{Keys: bson.D{{Key: "email", Value: 1}}, Options: unique},
		},
		referralLinkName: {
			{Keys: bson.D{{Key: "code", Value: 1}}, Options: unique},
		},
		conversionName: {
			{Keys: bson.D{{Key: "referralLinkId", Value: 1}, {Key: "customerId", Value: 1}}, Options: unique},
		},
		customerShareName: {
			{Keys: bson.D{{Key: "customerId", Value: 1}, {Key: "campaignId", Value: 1}}, Options: unique},
		},
		campaignSelectionName: {
			{Keys: bson.D{{Key: "referrerId", Value: 1}, {Key: "campaignId", Value: 1}}, Options: unique},
		},
		jobLockName: {
			{Keys: bson.D{{Key: "name", Value: 1}}, Options: unique},
		},
	}

	for name, indexes := range byCollection {
		if err := db.Collection(name).CreateIndexes(ctx, indexes); err != nil {
			return err
		}
	}
	return nil
}
