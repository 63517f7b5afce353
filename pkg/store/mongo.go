package store

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoCollection is the collection records are written to.
const MongoCollection = "runs"

// MongoStore keeps records in a MongoDB collection.
type MongoStore struct {
	client *mongo.Client
	coll   *mongo.Collection
}

// OpenMongo connects to uri and uses the runs collection of database.
func OpenMongo(ctx context.Context, uri, database string) (*MongoStore, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("ping mongo: %w", err)
	}
	return &MongoStore{
		client: client,
		coll:   client.Database(database).Collection(MongoCollection),
	}, nil
}

// mongoRecord stores the seed as int64; BSON has no unsigned 64-bit type.
type mongoRecord struct {
	Record `bson:",inline"`
	Seed   int64 `bson:"seed"`
}

// Save upserts recs by ID.
func (s *MongoStore) Save(ctx context.Context, recs ...Record) error {
	if len(recs) == 0 {
		return nil
	}
	models := make([]mongo.WriteModel, len(recs))
	for i, r := range recs {
		if r.CreatedAt.IsZero() {
			r.CreatedAt = time.Now()
		}
		models[i] = mongo.NewReplaceOneModel().
			SetFilter(bson.D{{Key: "_id", Value: r.ID}}).
			SetReplacement(mongoRecord{Record: r, Seed: int64(r.Seed)}).
			SetUpsert(true)
	}
	_, err := s.coll.BulkWrite(ctx, models, options.BulkWrite().SetOrdered(false))
	return err
}

// List returns matching records, oldest first.
func (s *MongoStore) List(ctx context.Context, f Filter) ([]Record, error) {
	filter := bson.D{}
	if f.BatchID != "" {
		filter = append(filter, bson.E{Key: "batch_id", Value: f.BatchID})
	}
	if f.Kind != "" {
		filter = append(filter, bson.E{Key: "kind", Value: f.Kind})
	}
	if f.N > 0 {
		filter = append(filter, bson.E{Key: "n", Value: f.N})
	}

	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}, {Key: "_id", Value: 1}})
	if f.Limit > 0 {
		opts.SetLimit(int64(f.Limit))
	}
	cur, err := s.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	var docs []mongoRecord
	if err := cur.All(ctx, &docs); err != nil {
		return nil, err
	}
	out := make([]Record, len(docs))
	for i, d := range docs {
		out[i] = d.Record
		out[i].Seed = uint64(d.Seed)
	}
	return out, nil
}

// Close disconnects the client.
func (s *MongoStore) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.client.Disconnect(ctx)
}

var _ Store = (*MongoStore)(nil)
