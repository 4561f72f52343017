// Package cache provides caching implementations for repository interfaces.
package cache

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"user_backend/internal/feature/users/domain/entity"
	"user_backend/internal/feature/users/usecase"
)

const (
	// DefaultTTL is used when no positive TTL is given.
	DefaultTTL = 5 * time.Minute
	// DefaultNamespace prefixes every key written by CachingUserRepository.
	DefaultNamespace = "users"
)

// CachingUserRepository decorates a UserRepository with Redis caching.
// Reads are served from Redis when possible; every write invalidates the
// namespace so a later read never observes a stale record.
//
// Entries live under a generation ("users:v<gen>:...") that every write bumps
// after the inner write commits. A read that loaded a record before the write
// may still store it, but only under the old generation, which no later read
// consults.
type CachingUserRepository struct {
	inner     usecase.UserRepository
	rdb       *redis.Client
	ttl       time.Duration
	namespace string
}

var _ usecase.UserRepository = (*CachingUserRepository)(nil)

// NewCachingUserRepository decorates a UserRepository with Redis caching.
// If ttl is 0, it defaults to 5 minutes. If namespace is empty, it uses "users".
// A nil rdb disables caching entirely.
func NewCachingUserRepository(rdb *redis.Client, ttl time.Duration, inner usecase.UserRepository, namespace string) *CachingUserRepository {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if namespace == "" {
		namespace = DefaultNamespace
	}
	return &CachingUserRepository{
		inner:     inner,
		rdb:       rdb,
		ttl:       ttl,
		namespace: namespace,
	}
}

// Create persists the user and invalidates cached reads.
func (c *CachingUserRepository) Create(ctx context.Context, user *entity.User) error {
	if err := c.inner.Create(ctx, user); err != nil {
		return err
	}
	c.invalidate(ctx)
	return nil
}

// FindByID checks the cache first, then falls back to the inner repository.
func (c *CachingUserRepository) FindByID(ctx context.Context, id uint) (*entity.User, error) {
	return c.findOne(ctx, []string{"id", strconv.FormatUint(uint64(id), 10)}, func() (*entity.User, error) {
		return c.inner.FindByID(ctx, id)
	})
}

// FindByEmail checks the cache first, then falls back to the inner repository.
func (c *CachingUserRepository) FindByEmail(ctx context.Context, email string) (*entity.User, error) {
	return c.findOne(ctx, []string{"email", encodeEmail(email)}, func() (*entity.User, error) {
		return c.inner.FindByEmail(ctx, email)
	})
}

// List checks the cache first, then falls back to the inner repository.
func (c *CachingUserRepository) List(ctx context.Context) ([]entity.User, error) {
	if c.rdb == nil {
		return c.inner.List(ctx)
	}

	key := c.key(c.generation(ctx), "list")

	// 1) Check cache
	if b, err := c.rdb.Get(ctx, key).Bytes(); err == nil && len(b) > 0 {
		var out []entity.User
		if err := json.Unmarshal(b, &out); err == nil {
			return out, nil
		}
		// Delete corrupted cache entry
		_ = c.rdb.Del(ctx, key).Err()
	}

	// 2) Fallback to database
	out, err := c.inner.List(ctx)
	if err != nil {
		return nil, err
	}

	// 3) Store in cache (best effort)
	if b, err := json.Marshal(out); err == nil {
		_ = c.rdb.Set(ctx, key, b, c.ttl).Err()
	}
	return out, nil
}

// Update writes the user and invalidates cached reads.
func (c *CachingUserRepository) Update(ctx context.Context, user *entity.User) error {
	if err := c.inner.Update(ctx, user); err != nil {
		return err
	}
	c.invalidate(ctx)
	return nil
}

// Delete removes the user and invalidates cached reads.
func (c *CachingUserRepository) Delete(ctx context.Context, id uint) error {
	if err := c.inner.Delete(ctx, id); err != nil {
		return err
	}
	c.invalidate(ctx)
	return nil
}

// findOne implements read-through caching for single-user lookups.
// Misses (ErrUserNotFound) are not cached.
func (c *CachingUserRepository) findOne(ctx context.Context, parts []string, load func() (*entity.User, error)) (*entity.User, error) {
	if c.rdb == nil {
		return load()
	}

	key := c.key(c.generation(ctx), parts...)

	if b, err := c.rdb.Get(ctx, key).Bytes(); err == nil && len(b) > 0 {
		var out entity.User
		if err := json.Unmarshal(b, &out); err == nil {
			return &out, nil
		}
		_ = c.rdb.Del(ctx, key).Err()
	}

	out, err := load()
	if err != nil {
		return nil, err
	}

	if b, err := json.Marshal(out); err == nil {
		_ = c.rdb.Set(ctx, key, b, c.ttl).Err()
	}
	return out, nil
}

// invalidate moves readers to a new generation and drops the old entries.
// Failures are logged, not returned: the write already succeeded and entries
// expire after ttl anyway.
func (c *CachingUserRepository) invalidate(ctx context.Context) {
	if c.rdb == nil {
		return
	}
	if err := c.rdb.Incr(ctx, c.genKey()).Err(); err != nil {
		slog.Warn("cache generation bump failed", "namespace", c.namespace, "error", err)
	}
	if err := c.deleteByPattern(ctx, c.namespace+":v*"); err != nil {
		slog.Warn("cache invalidation failed", "namespace", c.namespace, "error", err)
	}
}

// generation returns the current generation. A missing or unreadable counter counts as 0.
func (c *CachingUserRepository) generation(ctx context.Context) int64 {
	gen, err := c.rdb.Get(ctx, c.genKey()).Int64()
	if err != nil {
		return 0
	}
	return gen
}

func (c *CachingUserRepository) genKey() string {
	return c.namespace + ":gen"
}

// key joins the namespace, generation and parts into a cache key.
// Parts must not contain ':'; callers encode free-form values first.
func (c *CachingUserRepository) key(gen int64, parts ...string) string {
	all := make([]string, 0, len(parts)+2)
	all = append(all, c.namespace, "v"+strconv.FormatInt(gen, 10))
	all = append(all, parts...)
	return strings.Join(all, ":")
}

// deleteByPattern deletes all cache keys matching a given pattern using SCAN.
func (c *CachingUserRepository) deleteByPattern(ctx context.Context, pattern string) error {
	var cursor uint64
	for {
		keys, cur, err := c.rdb.Scan(ctx, cursor, pattern, 200).Result()
		if err != nil {
			return err
		}
		if len(keys) > 0 {
			if err := c.rdb.Del(ctx, keys...).Err(); err != nil {
				return err
			}
		}
		cursor = cur
		if cursor == 0 {
			break
		}
	}
	return nil
}

// encodeEmail maps an email to a key segment. The encoding is injective, so
// distinct emails never share an entry, and its alphabet has no ':' or glob characters.
func encodeEmail(email string) string {
	return base64.RawURLEncoding.EncodeToString([]byte(email))
}

// LoadTTL reads CACHE_TTL (Go duration syntax), falling back to DefaultTTL.
func LoadTTL() time.Duration {
	if v := os.Getenv("CACHE_TTL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			return d
		}
	}
	return DefaultTTL
}
