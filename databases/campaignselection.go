package databases

// go generate: mockery --name CampaignSelectionDatabase

import (
	"context"

	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/referloop/referral-api/models"
)

const campaignSelectionName = "campaignSelections"

// CampaignSelectionDatabase contains the methods to use with the campaign selection database
type CampaignSelectionDatabase interface {
	FindOne(ctx context.Context, filter interface{}, opts ...*options.FindOneOptions) (*models.CampaignSelection, error)
	Find(ctx context.Context, filter interface{}, opts ...*options.FindOptions) ([]models.CampaignSelection, error)
	InsertOne(ctx context.Context, selection models.CampaignSelection, opts ...*options.InsertOneOptions) (InsertOneResultHelper, error)
}

type campaignSelectionDatabase struct {
	db DatabaseHelper
}

// NewCampaignSelectionDatabase initializes a new instance of campaign selection database with the provided db connection
func NewCampaignSelectionDatabase(db DatabaseHelper) CampaignSelectionDatabase {
	return &campaignSelectionDatabase{
		db: db,
	}
}

func (c *campaignSelectionDatabase) FindOne(ctx context.Context, filter interface{}, opts ...*options.FindOneOptions) (*models.CampaignSelection, error) {
	selection := &models.CampaignSelection{}
	err := c.db.Collection(campaignSelectionName).FindOne(ctx, filter, opts...).Decode(&selection)
	if err != nil {
		return nil, err
	}
	return selection, nil
}

func (c *campaignSelectionDatabase) Find(ctx context.Context, filter interface{}, opts ...*options.FindOptions) ([]models.CampaignSelection, error) {
	var selections []models.CampaignSelection
	cur, err := c.db.Collection(campaignSelectionName).Find(ctx, filter, opts...)
	if err != nil {
		return nil, err
	}
	if err := cur.Decode(&selections); err != nil {
		return nil, err
	}
	return selections, nil
}

func (c *campaignSelectionDatabase) InsertOne(ctx context.Context, selection models.CampaignSelection, opts ...*options.InsertOneOptions) (InsertOneResultHelper, error) {
	return c.db.Collection(campaignSelectionName).InsertOne(ctx, selection, opts...)
}
