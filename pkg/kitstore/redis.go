package kitstore

import (
	"context"
	"time"

	"github.com/charmbracelet/log"
	"github.com/redis/go-redis/v9"

	"github.com/matzehuels/brandkit/pkg/brand"
	"github.com/matzehuels/brandkit/pkg/errors"
	"github.com/matzehuels/brandkit/pkg/observability"
)

// RedisStore persists kits as JSON values in Redis. Kits have no TTL; a
// user's kit lives until overwritten or deleted.
type RedisStore struct {
	client *redis.Client
	logger *log.Logger
}

// NewRedisStore connects to Redis and verifies the connection.
func NewRedisStore(ctx context.Context, addr, password string, db int) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, errors.Wrap(errors.ErrCodePersistence, err, "connect to redis at %s", addr)
	}
	return &RedisStore{client: client, logger: log.Default()}, nil
}

func kitKey(userID string) string {
	return "brandkit:kit:" + userID
}

func (s *RedisStore) Load(ctx context.Context, userID string) (*brand.Config, error) {
	if err := errors.ValidateUserID(userID); err != nil {
		return nil, err
	}
	start := time.Now()

	data, err := s.client.Get(ctx, kitKey(userID)).Bytes()
	if err != nil {
		if err == redis.Nil {
			err = errors.New(errors.ErrCodeKitNotFound, "no kit for user %s", userID)
		} else {
			err = errors.Wrap(errors.ErrCodePersistence, err, "redis get")
		}
		observability.Store().OnLoad(ctx, userID, time.Since(start), err)
		return nil, err
	}

	cfg, err := decodeKit(s.logger, userID, data)
	if err != nil {
		err = errors.Wrap(errors.ErrCodePersistence, err, "parse stored kit")
		observability.Store().OnLoad(ctx, userID, time.Since(start), err)
		return nil, err
	}
	observability.Store().OnLoad(ctx, userID, time.Since(start), nil)
	return cfg, nil
}

func (s *RedisStore) Save(ctx context.Context, userID string, cfg *brand.Config) error {
	if err := errors.ValidateUserID(userID); err != nil {
		return err
	}
	start := time.Now()

	data, err := cfg.MarshalJSON()
	if err != nil {
		return errors.Wrap(errors.ErrCodePersistence, err, "marshal kit")
	}
	if err := s.client.Set(ctx, kitKey(userID), data, 0).Err(); err != nil {
		wrapped := errors.Wrap(errors.ErrCodePersistence, err, "redis set")
		observability.Store().OnSave(ctx, userID, time.Since(start), wrapped)
		return wrapped
	}
	observability.Store().OnSave(ctx, userID, time.Since(start), nil)
	return nil
}

func (s *RedisStore) Close() error {
	return s.client.Close()
}

var _ Store = (*RedisStore)(nil)
