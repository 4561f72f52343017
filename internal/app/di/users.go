// Package di provides dependency injection factories for creating application components.
package di

import (
	"time"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	useradapters "user_backend/internal/feature/users/adapters"
	"user_backend/internal/feature/users/usecase"
	"user_backend/internal/platform/cache"
)

// NewUserRepository creates the UserRepository used by the pipeline.
// If Redis is available, the gorm repository is wrapped with a read-through cache.
func NewUserRepository(db *gorm.DB, rdb *redis.Client, ttl time.Duration) usecase.UserRepository {
	repo := useradapters.NewUserGorm(db)
	if rdb == nil {
		return repo
	}
	return cache.NewCachingUserRepository(rdb, ttl, repo, cache.DefaultNamespace)
}
