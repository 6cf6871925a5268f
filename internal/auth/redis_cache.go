package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"cricketbook/internal/config"
	"cricketbook/internal/logger"
	"cricketbook/internal/models"

	"github.com/go-redis/redis/v8"
)

const sessionKeyPrefix = "cricketbook:session:"

var ErrSessionNotFound = errors.New("session not found")

// NewRedisClient connects to Redis and checks the connection.
func NewRedisClient(cfg config.RedisConfig, logger *logger.Logger) (*redis.Client, error) {
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
		PoolSize: 10,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if _, err := redisClient.Ping(ctx).Result(); err != nil {
		logger.Error("REDIS", fmt.Sprintf("Failed to connect to Redis at %s: %v", cfg.Addr, err))
		return nil, err
	}

	logger.Info("REDIS", fmt.Sprintf("Connected to Redis at %s (DB: %d) for sessions", cfg.Addr, cfg.DB))
	return redisClient, nil
}

// RedisSessionStore keeps sessions as JSON values that expire with the
// session TTL.
type RedisSessionStore struct {
	client *redis.Client
}

func NewRedisSessionStore(client *redis.Client) *RedisSessionStore {
	return &RedisSessionStore{client: client}
}

func (s *RedisSessionStore) Save(ctx context.Context, session models.Session, ttl time.Duration) error {
	data, err := json.Marshal(storedSession{Session: session, SessionID: session.SessionID})
	if err != nil {
		return err
	}
	if err := s.client.Set(ctx, sessionKeyPrefix+session.SessionID, data, ttl).Err(); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

func (s *RedisSessionStore) Get(ctx context.Context, sessionID string) (*models.Session, error) {
	data, err := s.client.Get(ctx, sessionKeyPrefix+sessionID).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}

	var stored storedSession
	if err := json.Unmarshal(data, &stored); err != nil {
		return nil, fmt.Errorf("decode session: %w", err)
	}
	stored.Session.SessionID = stored.SessionID
	return &stored.Session, nil
}

func (s *RedisSessionStore) Delete(ctx context.Context, sessionID string) error {
	if err := s.client.Del(ctx, sessionKeyPrefix+sessionID).Err(); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

// storedSession keeps the session id, which models.Session hides from JSON
// responses.
type storedSession struct {
	models.Session
	SessionID string `json:"sid"`
}
