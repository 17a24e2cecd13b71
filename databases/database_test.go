package databases_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/referloop/referral-api/databases"
	mocksdb "github.com/referloop/referral-api/databases/mocks"
)

func TestWithTransactionFallsBackWithoutSessions(t *testing.T) {
	db := &mocksdb.DatabaseHelper{}
	client := &mocksdb.ClientHelper{}

	client.On("StartSession").Return(nil, errors.New("sessions not supported"))
	db.On("Client").Return(client)

	ran := false
	err := databases.WithTransaction(context.Background(), db, func(ctx context.Context) error {
		ran = true
		return nil
	})
	assert.NoError(t, err)
	assert.True(t, ran)
}

func TestWithTransactionFallbackPropagatesError(t *testing.T) {
	db := &mocksdb.DatabaseHelper{}
	client := &mocksdb.ClientHelper{}

	client.On("StartSession").Return(nil, errors.New("sessions not supported"))
	db.On("Client").Return(client)

	wantErr := errors.New("insert failed")
	err := databases.WithTransaction(context.Background(), db, func(ctx context.Context) error {
		return wantErr
	})
	assert.Equal(t, wantErr, err)
}

func TestIsDuplicateKey(t *testing.T) {
	dup := mongo.WriteException{WriteErrors: []mongo.WriteError{{Code: 11000}}}
	assert.True(t, databases.IsDuplicateKey(dup))
	assert.False(t, databases.IsDuplicateKey(errors.New("something else")))
	assert.False(t, databases.IsDuplicateKey(nil))
}

func TestNewMongoPaginate(t *testing.T) {
	opts := databases.NewMongoPaginate(20, 3)
	if assert.NotNil(t, opts.Limit) {
		assert.Equal(t, int64(20), *opts.Limit)
	}
	if assert.NotNil(t, opts.Skip) {
		assert.Equal(t, int64(40), *opts.Skip)
	}
}
