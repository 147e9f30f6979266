package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRedisCache_Key(t *testing.T) {
	assert.Equal(t, "cloud-kitchen:cart:s1", (&RedisCache{prefix: "cloud-kitchen"}).key("cart:s1"))
	assert.Equal(t, "menu:all", (&RedisCache{}).key("menu:all"))
}

func TestNewRedisCache_Unreachable(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	c, err := NewRedisCache(ctx, "127.0.0.1:1", "", 0, "test")
	assert.Error(t, err)
	assert.Nil(t, c)
}
