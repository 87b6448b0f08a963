package profile

import (
	"context"
	"encoding/json"

	"github.com/redis/go-redis/v9"

	apperrors "tradievoice/internal/common/errors"
	"tradievoice/internal/common/logger"
)

const redisProfileKey = "business:profile"

// RedisStore keeps the profile as a single key-value entry.
type RedisStore struct {
	client *redis.Client
	logger logger.Logger
}

func NewRedisStore(client *redis.Client, log logger.Logger) *RedisStore {
	return &RedisStore{
		client: client,
		logger: log.WithFields(map[string]interface{}{"component": "profile-store", "backend": "redis"}),
	}
}

func (s *RedisStore) Load(ctx context.Context) (*BusinessProfile, error) {
	data, err := s.client.Get(ctx, redisProfileKey).Result()
	if err == redis.Nil {
		return DefaultProfile(), nil
	}
	if err != nil {
		return nil, apperrors.NewStoreReadError(err)
	}

	var p BusinessProfile
	if err := json.Unmarshal([]byte(data), &p); err != nil {
		s.logger.Warn("stored profile is corrupt, substituting defaults", map[string]interface{}{
			"error": err.Error(),
		})
		return DefaultProfile(), nil
	}

	return &p, nil
}

func (s *RedisStore) Save(ctx context.Context, p *BusinessProfile) error {
	data, err := json.Marshal(p)
	if err != nil {
		return apperrors.NewStoreWriteError(err)
	}

	// No expiration: the profile lives until the next save overwrites it.
	if err := s.client.Set(ctx, redisProfileKey, data, 0).Err(); err != nil {
		return apperrors.NewStoreWriteError(err)
	}

	return nil
}
