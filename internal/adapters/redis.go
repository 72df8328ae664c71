package adapters

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"goshapes/internal/bootstrap"
)

type AdapterRedis struct {
	client *redis.Client
	cfg    *bootstrap.Config
	log    *zap.SugaredLogger
}

func NewAdapterRedis(cfg *bootstrap.Config, log *zap.SugaredLogger) *AdapterRedis {
	return &AdapterRedis{
		cfg: cfg,
		log: log,
	}
}

// Enabled: Redis настроен в конфиге.
func (a *AdapterRedis) Enabled() bool {
	return a.cfg.RedisUrl != ""
}

func (a *AdapterRedis) Init(ctx context.Context) error {
	// REDIS_URL бывает и адресом host:port, и полным redis://
	opts, err := redis.ParseURL(a.cfg.RedisUrl)
	if err != nil {
		opts = &redis.Options{
			Addr: a.cfg.RedisUrl,
			DB:   0,
		}
	}
	a.client = redis.NewClient(opts)

	// Контекст с таймаутом
	ctxPing, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := a.client.Ping(ctxPing).Err(); err != nil {
		return fmt.Errorf("ошибка подключения к Redis: %w", err)
	}

	a.log.Infof("Успешно подключено к Redis: %s", opts.Addr)
	return nil
}

func (a *AdapterRedis) GetClient() *redis.Client {
	return a.client
}

func (a *AdapterRedis) Close(ctx context.Context) error {
	if a.client != nil {
		return a.client.Close()
	}
	return nil
}
