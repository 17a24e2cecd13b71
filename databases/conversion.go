package databases

// go generate: mockery --name ConversionDatabase

import (
	"context"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/referloop/referral-api/models"
)

const conversionName = "conversions"

// ConversionDatabase contains the methods to use with the conversion database
type ConversionDatabase interface {
	FindOne(ctx context.Context, filter interface{}, opts ...*options.FindOneOptions) (*models.Conversion, error)
	Find(ctx context.Context, filter interface{}, opts ...*options.FindOptions) ([]models.Conversion, error)
	CountDocuments(ctx context.Context, filter interface{}, opts ...*options.CountOptions) (int64, error)
	InsertOne(ctx context.Context, conversion models.Conversion, opts ...*options.InsertOneOptions) (InsertOneResultHelper, error)
	UpdateOne(ctx context.Context, filter interface{}, update interface{}, opts ...*options.UpdateOptions) (*mongo.UpdateResult, error)
}

type conversionDatabase struct {
	db DatabaseHelper
}

// NewConversionDatabase initializes a new instance of conversion database with the provided db connection
func NewConversionDatabase(db DatabaseHelper) ConversionDatabase {
	return &conversionDatabase{
		db: db,
	}
}

func (c *conversionDatabase) FindOne(ctx context.Context, filter interface{}, opts ...*options.FindOneOptions) (*models.Conversion, error) {
	conversion := &models.Conversion{}
	err := c.db.Collection(conversionName).FindOne(ctx, filter, opts...).Decode(&conversion)
	if err != nil {
		return nil, err
	}
	return conversion, nil
}

func (c *conversionDatabase) Find(ctx context.Context, filter interface{}, opts ...*options.FindOptions) ([]models.Conversion, error) {
	var conversions []models.Conversion
	cur, err := c.db.Collection(conversionName).Find(ctx, filter, opts...)
	if err != nil {
		return nil, err
	}
	if err := cur.Decode(&conversions); err != nil {
		return nil, err
	}
	return conversions, nil
}

func (c *conversionDatabase) CountDocuments(ctx context.Context, filter interface{}, opts ...*options.CountOptions) (int64, error) {
	return c.db.Collection(conversionName).CountDocuments(ctx, filter, opts...)
}

func (c *conversionDatabase) InsertOne(ctx context.Context, conversion models.Conversion, opts ...*options.InsertOneOptions) (InsertOneResultHelper, error) {
	return c.db.Collection(conversionName).InsertOne(ctx, conversion, opts...)
}

func (c *conversionDatabase) UpdateOne(ctx context.Context, filter interface{}, update interface{}, opts ...*options.UpdateOptions) (*mongo.UpdateResult, error) {
	return c.db.Collection(conversionName).UpdateOne(ctx, filter, update, opts...)
}
