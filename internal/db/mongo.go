package db

import (
	"context"
	"time"

	"github.com/dmarkhas/sensorgrid/internal/domain"
	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
	"go.mongodb.org/mongo-driver/v2/mongo/readpref"
)

const collectionName = "sensor_readings"

// MongoReadingStore keeps readings in a time-series collection keyed by the
// capture timestamp. It implements domain.ReadingStore; query ordering is
// done here so the aggregation core never has to re-sort.
type MongoReadingStore struct {
	client     *mongo.Client
	db         *mongo.Database
	collection *mongo.Collection
}

func NewMongoConnection(uri string) (*mongo.Client, error) {
	client, err := mongo.Connect(options.Client().ApplyURI(uri))
	if err != nil {
		return nil, errors.Wrap(err, "failed to connect to MongoDB")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	_ = client.Ping(ctx, readpref.Primary())

	return client, nil
}

func NewMongoReadingStore(client *mongo.Client, database string) (*MongoReadingStore, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	db := client.Database(database)

	tsOptions := options.CreateCollection().SetTimeSeriesOptions(
		options.TimeSeries().
			SetTimeField("timestamp").
			SetMetaField("sensor_type").
			SetGranularity("seconds"),
	)

	// CreateCollection fails once the collection exists; that is fine.
	db.CreateCollection(ctx, collectionName, tsOptions)
	collection := db.Collection(collectionName)

	indexModels := []mongo.IndexModel{
		{
			Keys: bson.D{
				{Key: "sensor_type", Value: 1},
				{Key: "timestamp", Value: 1},
			},
		},
		{
			Keys: bson.D{
				{Key: "sensor_name", Value: 1},
				{Key: "timestamp", Value: 1},
			},
		},
	}
	collection.Indexes().CreateMany(ctx, indexModels)

	return &MongoReadingStore{
		client:     client,
		db:         db,
		collection: collection,
	}, nil
}

func (m *MongoReadingStore) InsertBatch(ctx context.Context, readings []domain.SensorReading) error {
	if len(readings) == 0 {
		return nil
	}

	docs := make([]interface{}, len(readings))
	for i, r := range readings {
		docs[i] = r
	}

	opts := options.InsertMany().SetOrdered(false)
	_, err := m.collection.InsertMany(ctx, docs, opts)
	return errors.Wrap(err, "insert batch")
}

// ListAll returns the full corpus. No ordering guarantee; the metrics
// snapshot is order-independent.
func (m *MongoReadingStore) ListAll(ctx context.Context) ([]domain.SensorReading, error) {
	return m.find(ctx, bson.M{}, nil)
}

// ListSince returns readings with timestamp >= since, ascending. The series
// aggregator depends on this ordering for its earliest-buckets cap.
func (m *MongoReadingStore) ListSince(ctx context.Context, since time.Time) ([]domain.SensorReading, error) {
	filter := bson.M{"timestamp": bson.M{"$gte": since}}
	sort := bson.D{{Key: "timestamp", Value: 1}}
	return m.find(ctx, filter, sort)
}

func (m *MongoReadingStore) ListByType(ctx context.Context, sensorType string) ([]domain.SensorReading, error) {
	filter := bson.M{"sensor_type": sensorType}
	sort := bson.D{{Key: "timestamp", Value: -1}}
	return m.find(ctx, filter, sort)
}

func (m *MongoReadingStore) ListByName(ctx context.Context, sensorName string) ([]domain.SensorReading, error) {
	filter := bson.M{"sensor_name": sensorName}
	sort := bson.D{{Key: "timestamp", Value: -1}}
	return m.find(ctx, filter, sort)
}

func (m *MongoReadingStore) find(ctx context.Context, filter bson.M, sort bson.D) ([]domain.SensorReading, error) {
	opts := options.Find()
	if sort != nil {
		opts.SetSort(sort)
	}

	cursor, err := m.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, errors.Wrap(err, "find readings")
	}
	defer cursor.Close(ctx)

	var readings []domain.SensorReading
	if err := cursor.All(ctx, &readings); err != nil {
		return nil, errors.Wrap(err, "decode readings")
	}

	return readings, nil
}

func (m *MongoReadingStore) Ping(ctx context.Context) error {
	return m.client.Ping(ctx, readpref.Primary())
}

func (m *MongoReadingStore) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return m.client.Disconnect(ctx)
}
