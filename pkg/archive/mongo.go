package archive

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/fluxplot/fluxplot/pkg/errors"
)

const (
	databaseName   = "fluxplot"
	collectionName = "runs"
)

// MongoArchive stores run records in a MongoDB collection.
type MongoArchive struct {
	client *mongo.Client
	runs   *mongo.Collection
}

// NewMongoArchive connects to MongoDB at uri and verifies the
// connection with a ping before returning.
func NewMongoArchive(ctx context.Context, uri string) (Archive, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeArchive, err, "connect to %s", uri)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, errors.Wrap(errors.ErrCodeArchive, err, "ping %s", uri)
	}
	return &MongoArchive{
		client: client,
		runs:   client.Database(databaseName).Collection(collectionName),
	}, nil
}

// Store upserts a record by its ID.
func (a *MongoArchive) Store(ctx context.Context, rec Record) error {
	_, err := a.runs.UpdateOne(ctx,
		bson.M{"_id": rec.ID},
		bson.M{"$set": rec},
		options.Update().SetUpsert(true),
	)
	if err != nil {
		return errors.Wrap(errors.ErrCodeArchive, err, "store run %s", rec.ID)
	}
	return nil
}

// Recent returns up to n records, newest first.
func (a *MongoArchive) Recent(ctx context.Context, n int) ([]Record, error) {
	if n <= 0 {
		return nil, errors.New(errors.ErrCodeInvalidInput, "record count must be positive, got %d", n)
	}

	cursor, err := a.runs.Find(ctx, bson.M{},
		options.Find().SetSort(bson.M{"started_at": -1}).SetLimit(int64(n)))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeArchive, err, "list runs")
	}
	defer cursor.Close(ctx)

	var records []Record
	if err := cursor.All(ctx, &records); err != nil {
		return nil, errors.Wrap(errors.ErrCodeArchive, err, "decode runs")
	}
	return records, nil
}

// Close disconnects from MongoDB.
func (a *MongoArchive) Close(ctx context.Context) error {
	return a.client.Disconnect(ctx)
}

var _ Archive = (*MongoArchive)(nil)
