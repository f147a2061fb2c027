package config

import (
	"github.com/redis/go-redis/v9"
)

// RedisOptions creates the go-redis client options from the redis section.
func RedisOptions(rc RedisConfig) *redis.Options {
	return &redis.Options{
		Addr:     rc.Addr,
		Password: rc.Password,
		DB:       rc.DB,
	}
}
