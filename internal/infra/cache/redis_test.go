package cache_test

import (
	"context"
	"testing"
	"time"

	"github.com/boddenberg/finance-dashboard-bfa-go/internal/domain"
	"github.com/boddenberg/finance-dashboard-bfa-go/internal/infra/cache"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func TestRedis_UnreachableDegradesToMiss(t *testing.T) {
	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 100 * time.Millisecond,
		MaxRetries:  -1,
	})
	c := cache.NewRedisWithClient[[]domain.CategorizationRule](client, "test:rules:", time.Minute, zap.NewNop())
	defer func() { _ = c.Close() }()

	assert.Error(t, c.Ping(context.Background()))

	c.Set("u1:PF", []domain.CategorizationRule{{ID: "r1"}})
	_, ok := c.Get("u1:PF")
	assert.False(t, ok)
	c.Delete("u1:PF")
}
