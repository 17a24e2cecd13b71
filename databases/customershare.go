package databases

// go generate: mockery --name CustomerShareDatabase

import (
	"context"

	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/referloop/referral-api/models"
)

const customerShareName = "customerShares"

// CustomerShareDatabase contains the methods to use with the customer share database
type CustomerShareDatabase interface {
	Find(ctx context.Context, filter interface{}, opts ...*options.FindOptions) ([]models.CustomerShare, error)
	CountDocuments(ctx context.Context, filter interface{}, opts ...*options.CountOptions) (int64, error)
	InsertOne(ctx context.Context, share models.CustomerShare, opts ...*options.InsertOneOptions) (InsertOneResultHelper, error)
	DeleteOne(ctx context.Context, filter interface{}, opts ...*options.DeleteOptions) (int64, error)
}

type customerShareDatabase struct {
	db DatabaseHelper
}

// NewCustomerShareDatabase initializes a new instance of customer share database with the provided db connection
func NewCustomerShareDatabase(db DatabaseHelper) CustomerShareDatabase {
	return &customerShareDatabase{
		db: db,
	}
}

func (c *customerShareDatabase) Find(ctx context.Context, filter interface{}, opts ...*options.FindOptions) ([]models.CustomerShare, error) {
	var shares []models.CustomerShare
	cur, err := c.db.Collection(customerShareName).Find(ctx, filter, opts...)
	if err != nil {
		return nil, err
	}
	if err := cur.Decode(&shares); err != nil {
		return nil, err
	}
	return shares, nil
}

func (c *customerShareDatabase) CountDocuments(ctx context.Context, filter interface{}, opts ...*options.CountOptions) (int64, error) {
	return c.db.Collection(customerShareName).CountDocuments(ctx, filter, opts...)
}

func (c *customerShareDatabase) InsertOne(ctx context.Context, share models.CustomerShare, opts ...*options.InsertOneOptions) (InsertOneResultHelper, error) {
	return c.db.Collection(customerShareName).InsertOne(ctx, share, opts...)
}

func (c *customerShareDatabase) DeleteOne(ctx context.Context, filter interface{}, opts ...*options.DeleteOptions) (int64, error) {
	return c.db.Collection(customerShareName).DeleteOne(ctx, filter, opts...)
}
