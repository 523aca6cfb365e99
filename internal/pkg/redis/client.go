package redis

import (
	"context"
	"fmt"
	"time"

	redis "github.com/redis/go-redis/v9"

	"github.com/tableguild/tableguild/config"
)

// RedisClient is the subset of Redis operations the service layer uses:
// conversation sequence IDs, presence, and cache entries.
type RedisClient interface {
	Close() error
	GetClient() *redis.Client
	Ping(ctx context.Context) error
	GenerateSeqID(ctx context.Context, conversationID string) (int64, error)
	SetMemberOnline(ctx context.Context, memberID string, ttl time.Duration) error
	IsMemberOnline(ctx context.Context, memberID string) (bool, error)
	RemoveMemberOnline(ctx context.Context, memberID string) error
	Set(ctx context.Context, key string, value any, expiration time.Duration) error
	Get(ctx context.Context, key string) (string, error)
	Del(ctx context.Context, keys ...string) error
	Exists(ctx context.Context, keys ...string) (int64, error)
}

type Client struct {
	client *redis.Client
	config *config.RedisConfig
}

func NewClient(cfg *config.RedisConfig) (*Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:         fmt.Sprintf("%s:%s", cfg.Host, cfg.Port),
		Password:     cfg.Password,
		DB:           cfg.DB,
		PoolSize:     cfg.PoolSize,
		MinIdleConns: cfg.MinIdleConns,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return &Client{
		client: rdb,
		config: cfg,
	}, nil
}

// NewClientFrom wraps an already-connected go-redis client. Used by tests
// with miniredis.
func NewClientFrom(rdb *redis.Client) *Client {
	return &Client{client: rdb}
}

func (c *Client) Close() error {
	return c.client.Close()
}

func (c *Client) GetClient() *redis.Client {
	return c.client
}

func (c *Client) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

// GenerateSeqID atomically increments the per-conversation sequence.
func (c *Client) GenerateSeqID(ctx context.Context, conversationID string) (int64, error) {
	key := fmt.Sprintf("conversation:%s:seq_id", conversationID)
	result, err := c.client.Incr(ctx, key).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to generate seq id for conversation %s: %w", conversationID, err)
	}
	return result, nil
}

func (c *Client) SetMemberOnline(ctx context.Context, memberID string, ttl time.Duration) error {
	key := fmt.Sprintf("member:%s:online", memberID)
	if err := c.client.Set(ctx, key, "1", ttl).Err(); err != nil {
		return fmt.Errorf("failed to set member %s online: %w", memberID, err)
	}
	return nil
}

func (c *Client) IsMemberOnline(ctx context.Context, memberID string) (bool, error) {
	key := fmt.Sprintf("member:%s:online", memberID)
	result, err := c.client.Exists(ctx, key).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check if member %s is online: %w", memberID, err)
	}
	return result > 0, nil
}

func (c *Client) RemoveMemberOnline(ctx context.Context, memberID string) error {
	key := fmt.Sprintf("member:%s:online", memberID)
	if err := c.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("failed to remove member %s online status: %w", memberID, err)
	}
	return nil
}

func (c *Client) Set(ctx context.Context, key string, value any, expiration time.Duration) error {
	return c.client.Set(ctx, key, value, expiration).Err()
}

func (c *Client) Get(ctx context.Context, key string) (string, error) {
	return c.client.Get(ctx, key).Result()
}

func (c *Client) Del(ctx context.Context, keys ...string) error {
	return c.client.Del(ctx, keys...).Err()
}

func (c *Client) Exists(ctx context.Context, keys ...string) (int64, error) {
	return c.client.Exists(ctx, keys...).Result()
}
