package databases

// go generate: mockery --name RewardDatabase

import (
	"context"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/referloop/referral-api/models"
)

const rewardName = "rewards"

// RewardDatabase contains the methods to use with the reward database
type RewardDatabase interface {
	FindOne(ctx context.Context, filter interface{}, opts ...*options.FindOneOptions) (*models.Reward, error)
	Find(ctx context.Context, filter interface{}, opts ...*options.FindOptions) ([]models.Reward, error)
	CountDocuments(ctx context.Context, filter interface{}, opts ...*options.CountOptions) (int64, error)
	InsertOne(ctx context.Context, reward models.Reward, opts ...*options.InsertOneOptions) (InsertOneResultHelper, error)
	UpdateOne(ctx context.Context, filter interface{}, update interface{}, opts ...*options.UpdateOptions) (*mongo.UpdateResult, error)
	UpdateMany(ctx context.Context, filter interface{}, update interface{}, opts ...*options.UpdateOptions) (*mongo.UpdateResult, error)
	Aggregate(ctx context.Context, pipeline interface{}, opts ...*options.AggregateOptions) ([]models.RewardView, error)
}

type rewardDatabase struct {
	db DatabaseHelper
}

// NewRewardDatabase initializes a new instance of reward database with the provided db connection
func NewRewardDatabase(db DatabaseHelper) RewardDatabase {
	return &rewardDatabase{
		db: db,
	}
}

func (r *rewardDatabase) FindOne(ctx context.Context, filter interface{}, opts ...*options.FindOneOptions) (*models.Reward, error) {
	reward := &models.Reward{}
	err := r.db.Collection(rewardName).FindOne(ctx, filter, opts...).Decode(&reward)
	if err != nil {
		return nil, err
	}
	return reward, nil
}

func (r *rewardDatabase) Find(ctx context.Context, filter interface{}, opts ...*options.FindOptions) ([]models.Reward, error) {
	var rewards []models.Reward
	cur, err := r.db.Collection(rewardName).Find(ctx, filter, opts...)
	if err != nil {
		return nil, err
	}
	if err := cur.Decode(&rewards); err != nil {
		return nil, err
	}
	return rewards, nil
}

func (r *rewardDatabase) CountDocuments(ctx context.Context, filter interface{}, opts ...*options.CountOptions) (int64, error) {
	return r.db.Collection(rewardName).CountDocuments(ctx, filter, opts...)
}

func (r *rewardDatabase) InsertOne(ctx context.Context, reward models.Reward, opts ...*options.InsertOneOptions) (InsertOneResultHelper, error) {
	return r.db.Collection(rewardName).InsertOne(ctx, reward, opts...)
}

func (r *rewardDatabase) UpdateOne(ctx context.Context, filter interface{}, update interface{}, opts ...*options.UpdateOptions) (*mongo.UpdateResult, error) {
	return r.db.Collection(rewardName).UpdateOne(ctx, filter, update, opts...)
}

func (r *rewardDatabase) UpdateMany(ctx context.Context, filter interface{}, update interface{}, opts ...*options.UpdateOptions) (*mongo.UpdateResult, error) {
	return r.db.Collection(rewardName).UpdateMany(ctx, filter, update, opts...)
}

func (r *rewardDatabase) Aggregate(ctx context.Context, pipeline interface{}, opts ...*options.AggregateOptions) ([]models.RewardView, error) {
	var views []models.RewardView
	cur, err := r.db.Collection(rewardName).Aggregate(ctx, pipeline, opts...)
	if err != nil {
		return nil, err
	}
	if err := cur.Decode(&views); err != nil {
		return nil, err
	}
	return views, nil
}
