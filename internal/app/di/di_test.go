package di

import (
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"user_backend/internal/platform/cache"
	"user_backend/internal/platform/notify"
)

func TestNewUserRepository(t *testing.T) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: logger.Discard})
	require.NoError(t, err)

	t.Run("without redis", func(t *testing.T) {
		repo := NewUserRepository(db, nil, time.Minute)
		_, isCache := repo.(*cache.CachingUserRepository)
		assert.False(t, isCache)
	})

	t.Run("with redis", func(t *testing.T) {
		mr := miniredis.RunT(t)
		rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
		defer func() { _ = rdb.Close() }()

		repo := NewUserRepository(db, rdb, time.Minute)
		_, isCache := repo.(*cache.CachingUserRepository)
		assert.True(t, isCache)
	})
}

func TestNewSender(t *testing.T) {
	_, isLog := NewSender(notify.SMTPConfig{}).(notify.LogSender)
	assert.True(t, isLog)

	_, isSMTP := NewSender(notify.SMTPConfig{Host: "smtp.example.com", Port: 587, From: "a@b.c"}).(*notify.SMTPSender)
	assert.True(t, isSMTP)
}

func TestNewNotifier(t *testing.T) {
	t.Run("falls back to async dispatch without redis", func(t *testing.T) {
		n, worker := NewNotifier(nil, notify.LogSender{}, time.Second)
		_, isAsync := n.(*notify.AsyncDispatcher)
		assert.True(t, isAsync)
		assert.Nil(t, worker)
	})

	t.Run("queues through redis when available", func(t *testing.T) {
		mr := miniredis.RunT(t)
		rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
		defer func() { _ = rdb.Close() }()

		n, worker := NewNotifier(rdb, notify.LogSender{}, time.Second)
		_, isQueue := n.(*notify.RedisQueue)
		assert.True(t, isQueue)
		assert.NotNil(t, worker)
	})
}
