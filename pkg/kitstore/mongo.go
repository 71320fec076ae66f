package kitstore

import (
	"context"
	"time"

	"github.com/charmbracelet/log"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/matzehuels/brandkit/pkg/brand"
	"github.com/matzehuels/brandkit/pkg/errors"
	"github.com/matzehuels/brandkit/pkg/observability"
)

const (
	mongoDatabase   = "brandkit"
	mongoCollection = "kits"
)

// kitDocument is the persisted shape: one document per user, replaced
// wholesale on save.
type kitDocument struct {
	UserID    string           `bson:"_id"`
	Elements  []*brand.Element `bson:"elements"`
	UpdatedAt time.Time        `bson:"updatedAt"`
}

// MongoStore persists kits in a MongoDB collection keyed by user ID.
type MongoStore struct {
	client *mongo.Client
	coll   *mongo.Collection
	logger *log.Logger
}

// NewMongoStore connects to MongoDB and verifies the connection.
func NewMongoStore(ctx context.Context, uri string) (*MongoStore, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodePersistence, err, "connect to mongodb")
	}
	if err := client.Ping(ctx, nil); err != nil {
		return nil, errors.Wrap(errors.ErrCodePersistence, err, "ping mongodb")
	}
	return &MongoStore{
		client: client,
		coll:   client.Database(mongoDatabase).Collection(mongoCollection),
		logger: log.Default(),
	}, nil
}

func (s *MongoStore) Load(ctx context.Context, userID string) (*brand.Config, error) {
	if err := errors.ValidateUserID(userID); err != nil {
		return nil, err
	}
	start := time.Now()

	var doc kitDocument
	err := s.coll.FindOne(ctx, bson.M{"_id": userID}).Decode(&doc)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			err = errors.New(errors.ErrCodeKitNotFound, "no kit for user %s", userID)
		} else {
			err = errors.Wrap(errors.ErrCodePersistence, err, "find kit")
		}
		observability.Store().OnLoad(ctx, userID, time.Since(start), err)
		return nil, err
	}

	cfg := kitFromDocument(s.logger, userID, doc.Elements)
	observability.Store().OnLoad(ctx, userID, time.Since(start), nil)
	return cfg, nil
}

func (s *MongoStore) Save(ctx context.Context, userID string, cfg *brand.Config) error {
	if err := errors.ValidateUserID(userID); err != nil {
		return err
	}
	start := time.Now()

	doc := kitDocument{
		UserID:    userID,
		Elements:  cfg.Elements(),
		UpdatedAt: time.Now().UTC(),
	}
	opts := options.Replace().SetUpsert(true)
	if _, err := s.coll.ReplaceOne(ctx, bson.M{"_id": userID}, doc, opts); err != nil {
		wrapped := errors.Wrap(errors.ErrCodePersistence, err, "replace kit")
		observability.Store().OnSave(ctx, userID, time.Since(start), wrapped)
		return wrapped
	}
	observability.Store().OnSave(ctx, userID, time.Since(start), nil)
	return nil
}

func (s *MongoStore) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.client.Disconnect(ctx)
}

var _ Store = (*MongoStore)(nil)
