package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoConfig contains connection settings for MongoDB history store.
type MongoConfig struct {
	URI        string // e.g. mongodb://localhost:27017
	Database   string // e.g. voxel
	Collection string // e.g. voxel_history
}

// MongoHistoryStore implements HistoryStore on MongoDB: one document per actor.
type MongoHistoryStore struct {
	client     *mongo.Client
	collection *mongo.Collection
	ctxTimeout time.Duration
}

type mongoHistoryDoc struct {
	Actor     string    `bson:"_id"`
	Payload   []byte    `bson:"payload"`
	UpdatedAt time.Time `bson:"updated_at"`
}

// NewMongoHistoryStore establishes connection and returns store.
func NewMongoHistoryStore(cfg MongoConfig) (*MongoHistoryStore, error) {
	if cfg.URI == "" {
		cfg.URI = "mongodb://localhost:27017"
	}
	if cfg.Database == "" {
		cfg.Database = "voxel"
	}
	if cfg.Collection == "" {
		cfg.Collection = "voxel_history"
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, err
	}
	// ping
	if err := client.Ping(ctx, nil); err != nil {
		return nil, err
	}
	return &MongoHistoryStore{
		client:     client,
		collection: client.Database(cfg.Database).Collection(cfg.Collection),
		ctxTimeout: 5 * time.Second,
	}, nil
}

// Load fetches actor record.
func (s *MongoHistoryStore) Load(ctx context.Context, actor uuid.UUID) (*Record, error) {
	ctx, cancel := context.WithTimeout(ctx, s.ctxTimeout)
	defer cancel()

	var doc mongoHistoryDoc
	err := s.collection.FindOne(ctx, bson.M{"_id": actor.String()}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("mongo find history %s: %w", actor, err)
	}
	return DecodeRecord(doc.Payload)
}

// Save upserts actor record.
func (s *MongoHistoryStore) Save(ctx context.Context, rec *Record) error {
	payload, err := EncodeRecord(rec)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(ctx, s.ctxTimeout)
	defer cancel()

	doc := mongoHistoryDoc{Actor: rec.Actor.String(), Payload: payload, UpdatedAt: time.Now()}
	_, err = s.collection.ReplaceOne(ctx, bson.M{"_id": doc.Actor}, doc, options.Replace().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("mongo save history %s: %w", rec.Actor, err)
	}
	return nil
}

// Delete removes actor record.
func (s *MongoHistoryStore) Delete(ctx context.Context, actor uuid.UUID) error {
	ctx, cancel := context.WithTimeout(ctx, s.ctxTimeout)
	defer cancel()
	_, err := s.collection.DeleteOne(ctx, bson.M{"_id": actor.String()})
	return err
}

// Actors lists actors that have a record.
func (s *MongoHistoryStore) Actors(ctx context.Context) ([]uuid.UUID, error) {
	ctx, cancel := context.WithTimeout(ctx, s.ctxTimeout)
	defer cancel()

	ids, err := s.collection.Distinct(ctx, "_id", bson.M{})
	if err != nil {
		return nil, err
	}
	out := make([]uuid.UUID, 0, len(ids))
	for _, raw := range ids {
		str, ok := raw.(string)
		if !ok {
			continue
		}
		if id, err := uuid.Parse(str); err == nil {
			out = append(out, id)
		}
	}
	sortActors(out)
	return out, nil
}

// Close disconnects client.
func (s *MongoHistoryStore) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), s.ctxTimeout)
	defer cancel()
	return s.client.Disconnect(ctx)
}
