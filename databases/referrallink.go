package databases

// go generate: mockery --name ReferralLinkDatabase

import (
	"context"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/referloop/referral-api/models"
)

const referralLinkName = "referralLinks"

// ReferralLinkDatabase contains the methods to use with the referral link database
type ReferralLinkDatabase interface {
	FindOne(ctx context.Context, filter interface{}, opts ...*options.FindOneOptions) (*models.ReferralLink, error)
	Find(ctx context.Context, filter interface{}, opts ...*options.FindOptions) ([]models.ReferralLink, error)
	InsertOne(ctx context.Context, link models.ReferralLink, opts ...*options.InsertOneOptions) (InsertOneResultHelper, error)
	UpdateOne(ctx context.Context, filter interface{}, update interface{}, opts ...*options.UpdateOptions) (*mongo.UpdateResult, error)
}

type referralLinkDatabase struct {
	db DatabaseHelper
}

// NewReferralLinkDatabase initializes a new instance of referral link database with the provided db connection
func NewReferralLinkDatabase(db DatabaseHelper) ReferralLinkDatabase {
	return &referralLinkDatabase{
		db: db,
	}
}

func (r *referralLinkDatabase) FindOne(ctx context.Context, filter interface{}, opts ...*options.FindOneOptions) (*models.ReferralLink, error) {
	link := &models.ReferralLink{}
	err := r.db.Collection(referralLinkName).FindOne(ctx, filter, opts...).Decode(&link)
	if err != nil {
		return nil, err
	}
	return link, nil
}

func (r *referralLinkDatabase) Find(ctx context.Context, filter interface{}, opts ...*options.FindOptions) ([]models.ReferralLink, error) {
	var links []models.ReferralLink
	cur, err := r.db.Collection(referralLinkName).Find(ctx, filter, opts...)
	if err != nil {
		return nil, err
	}
	if err := cur.Decode(&links); err != nil {
		return nil, err
	}
	return links, nil
}

func (r *referralLinkDatabase) InsertOne(ctx context.Context, link models.ReferralLink, opts ...*options.InsertOneOptions) (InsertOneResultHelper, error) {
	return r.db.Collection(referralLinkName).InsertOne(ctx, link, opts...)
}

func (r *referralLinkDatabase) UpdateOne(ctx context.Context, filter interface{}, update interface{}, opts ...*options.UpdateOptions) (*mongo.UpdateResult, error) {
	return r.db.Collection(referralLinkName).UpdateOne(ctx, filter, update, opts...)
}
