package content

import (
	"context"
	"errors"
	"fmt"
	"log"
	"reflect"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/eclipse-basyx/basyx-go-jsonapi-gateway/internal/common"
	"github.com/eclipse-basyx/basyx-go-jsonapi-gateway/internal/gateway/resource"
)

// MongoStore reads entities from a collection holding one document per
// revision.
type MongoStore struct {
	client     *mongo.Client
	collection *mongo.Collection
}

// NewMongoStore connects to MongoDB and ensures the lookup indexes exist.
func NewMongoStore(ctx context.Context, cfg common.MongoConfig) (*MongoStore, error) {
	registry := bson.NewRegistry()
	registry.RegisterTypeMapEntry(bson.TypeEmbeddedDocument, reflect.TypeOf(bson.M{}))

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.URI).SetRegistry(registry))
	if err != nil {
		return nil, fmt.Errorf("GW-CONTENT-MONGOCONNECT: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("GW-CONTENT-MONGOPING: %w", err)
	}
	coll := client.Database(cfg.Database).Collection(cfg.Collection)
	_, err = coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "type", Value: 1}, {Key: "uuid", Value: 1}, {Key: "revision_id", Value: -1}}},
		{Keys: bson.D{{Key: "type", Value: 1}, {Key: "default_revision", Value: 1}, {Key: "uuid", Value: 1}}},
	})
	if err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("GW-CONTENT-MONGOINDEX: %w", err)
	}
	log.Printf("✅ MongoDB content store ready: %s.%s", cfg.Database, cfg.Collection)
	return &MongoStore{client: client, collection: coll}, nil
}

// Close disconnects the client.
func (s *MongoStore) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

// Insert stores one revision document.
func (s *MongoStore) Insert(ctx context.Context, e *Entity) error {
	if _, err := s.collection.InsertOne(ctx, e); err != nil {
		return fmt.Errorf("GW-CONTENT-MONGOINSERT: %w", err)
	}
	return nil
}

func (s *MongoStore) Load(ctx context.Context, key resource.Key, id string, version Version) (*Entity, error) {
	filter := bson.D{{Key: "type", Value: key}, {Key: "uuid", Value: id}}
	opts := options.FindOne()
	switch version.Kind {
	case VersionByID:
		filter = append(filter, bson.E{Key: "revision_id", Value: version.RevisionID})
	case VersionWorkingCopy:
		opts.SetSort(bson.D{{Key: "revision_id", Value: -1}})
	default:
		filter = append(filter, bson.E{Key: "default_revision", Value: true})
	}

	var e Entity
	err := s.collection.FindOne(ctx, filter, opts).Decode(&e)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, common.NewErrNotFound(fmt.Sprintf("%s %s", key, id))
	}
	if err != nil {
		return nil, fmt.Errorf("GW-CONTENT-MONGOFIND: %w", err)
	}
	return &e, nil
}

func (s *MongoStore) List(ctx context.Context, key resource.Key) ([]*Entity, error) {
	cur, err := s.collection.Find(ctx,
		bson.D{{Key: "type", Value: key}, {Key: "default_revision", Value: true}},
		options.Find().SetSort(bson.D{{Key: "uuid", Value: 1}}),
	)
	if err != nil {
		return nil, fmt.Errorf("GW-CONTENT-MONGOFIND: %w", err)
	}
	var out []*Entity
	if err := cur.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("GW-CONTENT-MONGODECODE: %w", err)
	}
	return out, nil
}

func (s *MongoStore) LoadMany(ctx context.Context, ids []Identifier) ([]*Entity, error) {
	out := make([]*Entity, 0, len(ids))
	for _, ref := range ids {
		e, err := s.Load(ctx, ref.Type, ref.ID, Version{})
		if common.IsErrNotFound(err) {
			continue
		}
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, nil
}
