package cache

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/storefront/backend/internal/domain/checkout"
)

const defaultKeyPrefix = "storefront:session:"

// hash fields of a stored session
const (
	fieldShopID            = "shop_id"
	fieldUserID            = "user_id"
	fieldShippingAddressID = "shipping_address_id"
	fieldBillingAddressID  = "billing_address_id"
	fieldDispatchID        = "dispatch_id"
	fieldPaymentID         = "payment_id"
)

// RedisSessionStore implements checkout.SessionStore with one Redis hash per
// session. Unset values are absent fields.
type RedisSessionStore struct {
	client    *redis.Client
	keyPrefix string
	ttl       time.Duration
}

// RedisConfig holds Redis connection configuration
type RedisConfig struct {
	Addr      string
	Password  string
	DB        int
	KeyPrefix string
}

// NewRedisSessionStore connects to Redis and creates a session store
func NewRedisSessionStore(cfg RedisConfig, ttl time.Duration) (*RedisSessionStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return NewRedisSessionStoreWithClient(client, cfg.KeyPrefix, ttl), nil
}

// NewRedisSessionStoreWithClient creates a store with an existing Redis client
func NewRedisSessionStoreWithClient(client *redis.Client, keyPrefix string, ttl time.Duration) *RedisSessionStore {
	if keyPrefix == "" {
		keyPrefix = defaultKeyPrefix
	}
	return &RedisSessionStore{
		client:    client,
		keyPrefix: keyPrefix,
		ttl:       ttl,
	}
}

// Load returns the session data, or empty data for unknown and expired sessions
func (s *RedisSessionStore) Load(ctx context.Context, sessionID string) (*checkout.SessionData, error) {
	fields, err := s.client.HGetAll(ctx, s.key(sessionID)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to load session: %w", err)
	}

	data := &checkout.SessionData{}
	targets := map[string]**int{
		fieldShopID:            &data.ShopID,
		fieldUserID:            &data.UserID,
		fieldShippingAddressID: &data.ShippingAddressID,
		fieldBillingAddressID:  &data.BillingAddressID,
		fieldDispatchID:        &data.DispatchID,
		fieldPaymentID:         &data.PaymentID,
	}
	for name, target := range targets {
		raw, ok := fields[name]
		if !ok {
			continue
		}
		v, err := strconv.Atoi(raw)
		if err != nil {
			return nil, fmt.Errorf("session field %s: %w", name, err)
		}
		*target = checkout.IntPtr(v)
	}
	return data, nil
}

// Save replaces the stored hash and restarts the session lifetime
func (s *RedisSessionStore) Save(ctx context.Context, sessionID string, data *checkout.SessionData) error {
	key := s.key(sessionID)
	values := sessionFields(data)

	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, key)
		if len(values) == 0 {
			return nil
		}
		pipe.HSet(ctx, key, values)
		if s.ttl > 0 {
			pipe.Expire(ctx, key, s.ttl)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}

// Delete removes the session
func (s *RedisSessionStore) Delete(ctx context.Context, sessionID string) error {
	if err := s.client.Del(ctx, s.key(sessionID)).Err(); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

// PingContext checks the Redis connection
func (s *RedisSessionStore) PingContext(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// Client returns the connection shared with other Redis backed components
func (s *RedisSessionStore) Client() *redis.Client {
	return s.client
}

// Close closes the Redis client
func (s *RedisSessionStore) Close() error {
	return s.client.Close()
}

func (s *RedisSessionStore) key(sessionID string) string {
	return s.keyPrefix + sessionID
}

func sessionFields(data *checkout.SessionData) map[string]any {
	values := make(map[string]any, 6)
	set := func(name string, v *int) {
		if v != nil {
			values[name] = *v
		}
	}
	set(fieldShopID, data.ShopID)
	set(fieldUserID, data.UserID)
	set(fieldShippingAddressID, data.ShippingAddressID)
	set(fieldBillingAddressID, data.BillingAddressID)
	set(fieldDispatchID, data.DispatchID)
	set(fieldPaymentID, data.PaymentID)
	return values
}

var _ checkout.SessionStore = (*RedisSessionStore)(nil)
