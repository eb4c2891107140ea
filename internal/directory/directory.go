// Package directory answers "does this user exist" for assignment and
// creation paths. Lookups are TTL-cached, so the core only assumes the user
// existed as of the configured staleness window, never synchronous
// consistency with the identity store.
package directory

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/backlog-studio/engine/internal/models"
	"github.com/backlog-studio/engine/internal/repository"
	appErr "github.com/backlog-studio/engine/pkg/errors"
	"github.com/backlog-studio/engine/pkg/logger"
)

// Directory resolves user existence.
type Directory interface {
	Exists(ctx context.Context, userID uuid.UUID) (bool, error)
}

const keyPrefix = "userdir:"

// CachedDirectory fronts the user store with a redis cache keyed by user id.
// Both positive and negative answers are cached for the TTL.
type CachedDirectory struct {
	users repository.UserRepository
	rdb   *redis.Client
	ttl   time.Duration
}

func NewCachedDirectory(users repository.UserRepository, rdb *redis.Client, ttl time.Duration) *CachedDirectory {
	return &CachedDirectory{users: users, rdb: rdb, ttl: ttl}
}

var _ Directory = (*CachedDirectory)(nil)

func (d *CachedDirectory) Exists(ctx context.Context, userID uuid.UUID) (bool, error) {
	key := keyPrefix + userID.String()

	cached, err := d.rdb.Get(ctx, key).Result()
	switch {
	case err == nil:
		return cached == "1", nil
	case err != redis.Nil:
		// cache trouble is not fatal, fall through to the store
		logger.L().Warn("user directory cache read failed", zap.String("user_id", userID.String()), zap.Error(err))
	}

	var u models.User
	exists := true
	if err := d.users.GetByID(ctx, userID, &u); err != nil {
		if !appErr.IsCode(err, appErr.CodeNotFound) {
			return false, err
		}
		exists = false
	}

	val := "0"
	if exists {
		val = "1"
	}
	if err := d.rdb.Set(ctx, key, val, d.ttl).Err(); err != nil {
		logger.L().Warn("user directory cache write failed", zap.String("user_id", userID.String()), zap.Error(err))
	}
	return exists, nil
}
