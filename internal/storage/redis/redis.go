package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"rillshop/internal/config"
	"rillshop/internal/models"
	"rillshop/internal/storage"

	"github.com/redis/go-redis/v9"
)

type RedisRepo struct {
	client *redis.Client
}

func New(ctx context.Context, cfg config.Redis) (*RedisRepo, error) {
	const op = "storage.redis.New"

	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolSize:     10,
		MinIdleConns: 2,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &RedisRepo{
		client: client,
	}, nil
}

func sessionKey(tokenHash string) string {
	return fmt.Sprintf("session:%s", tokenHash)
}

// * SaveSession сохраняет сессию под хешем токена на время ttl
func (r *RedisRepo) SaveSession(ctx context.Context, tokenHash string, s models.Session, ttl time.Duration) error {
	const op = "storage.redis.SaveSession"

	data, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if err := r.client.Set(ctx, sessionKey(tokenHash), data, ttl).Err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

// * Session возвращает живую сессию по хешу токена
func (r *RedisRepo) Session(ctx context.Context, tokenHash string) (models.Session, error) {
	const op = "storage.redis.Session"

	data, err := r.client.Get(ctx, sessionKey(tokenHash)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return models.Session{}, storage.ErrSessionNotFound
		}

		return models.Session{}, fmt.Errorf("%s: %w", op, err)
	}

	var s models.Session
	if err := json.Unmarshal(data, &s); err != nil {
		return models.Session{}, fmt.Errorf("%s: %w", op, err)
	}

	return s, nil
}

// * DeleteSession удаляет сессию; отсутствие ключа не ошибка
func (r *RedisRepo) DeleteSession(ctx context.Context, tokenHash string) error {
	const op = "storage.redis.DeleteSession"

	if err := r.client.Del(ctx, sessionKey(tokenHash)).Err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

// * Close закрывает соединение с Redis.
func (r *RedisRepo) Close() {
	r.client.Close()
}
