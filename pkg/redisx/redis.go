package redisx

import (
	"context"
	"github.com/alicebob/miniredis/v2"
	"github.com/hatcher/voyage/pkg/logs"
	"github.com/redis/go-redis/v9"
	"os"
	"strings"
)

type RedisConfig struct {
	Address          string `json:"address" mapstructure:"address" yaml:"address"`
	Username         string `json:"username" mapstructure:"username" yaml:"username"`
	Password         string `json:"password" mapstructure:"password" yaml:"password"`
	DB               int    `json:"db" mapstructure:"db" yaml:"db"`
	RedisType        string `json:"redisType" mapstructure:"redis-type" yaml:"redis-type"`
	MasterName       string `json:"masterName" mapstructure:"master-name" yaml:"master-name"`
	SentinelUsername string `json:"sentinelUsername" mapstructure:"sentinel-username" yaml:"sentinel-username"`
	SentinelPassword string `json:"sentinelPassword" mapstructure:"sentinel-password" yaml:"sentinel-password"`
}

type Redis redis.Cmdable

func NewRedis(cfg RedisConfig) (Redis, error) {
	var redisClient Redis

	switch cfg.RedisType {
	case "standalone", "":
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Address,
			Username: cfg.Username,
			Password: cfg.Password,
			DB:       cfg.DB,
		})

	case "sentinel":
		redisClient = redis.NewFailoverClient(&redis.FailoverOptions{
			MasterName:       cfg.MasterName,
			SentinelAddrs:    strings.Split(cfg.Address, ","),
			Username:         cfg.Username,
			Password:         cfg.Password,
			DB:               cfg.DB,
			SentinelUsername: cfg.SentinelUsername,
			SentinelPassword: cfg.SentinelPassword,
		})

	case "miniredis":
		s, err := miniredis.Run()
		if err != nil {
			logs.Errorf("failed to initial miniredis: %v", err)
			os.Exit(1)
		}
		redisClient = redis.NewClient(&redis.Options{
			Addr: s.Addr(),
		})

	default:
		logs.Infof("failed to initial redisx , redisx type is illegal: %s", cfg.RedisType)
		os.Exit(1)
	}

	err := redisClient.Ping(context.Background()).Err()
	if err != nil {
		logs.Errorf("failed to ping redisx: %v", err)
		os.Exit(1)
	}
	return redisClient, nil
}
