package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/Naim3097/BOOX/config"
	"github.com/Naim3097/BOOX/internal/domain"
	"github.com/redis/go-redis/v9"
)

// RedisCache stores created bills by invoice reference and remembers which
// webhook deliveries were already handled.
type RedisCache struct {
	client   redis.Cmdable
	billsTTL time.Duration
}

func NewRedisCache(cfg config.RedisConfig, billsTTL time.Duration) *RedisCache {
	return NewRedisCacheWithClient(
		redis.NewClient(&redis.Options{Addr: cfg.Addr, Password: cfg.Password, DB: cfg.DB}),
		billsTTL,
	)
}

func NewRedisCacheWithClient(client redis.Cmdable, billsTTL time.Duration) *RedisCache {
	return &RedisCache{client: client, billsTTL: billsTTL}
}

// GetBill returns nil, nil on a miss.
func (c *RedisCache) GetBill(ctx context.Context, invoiceRef, fingerprint string) (*domain.Bill, error) {
	data, err := c.client.Get(ctx, billKey(invoiceRef, fingerprint)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, err
	}

	var bill domain.Bill
	if err := json.Unmarshal(data, &bill); err != nil {
		return nil, err
	}
	return &bill, nil
}

func (c *RedisCache) SetBill(ctx context.Context, fingerprint string, bill *domain.Bill) error {
	payload, err := json.Marshal(bill)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, billKey(bill.InvoiceRef, fingerprint), payload, c.billsTTL).Err()
}

// MarkNotification records a (invoice, status) delivery. It reports true the
// first time a pair is seen within ttl.
func (c *RedisCache) MarkNotification(ctx context.Context, invoiceNo, status string, ttl time.Duration) (bool, error) {
	return c.client.SetNX(ctx, notificationKey(invoiceNo, status), "1", ttl).Result()
}

// Ping is used by the readiness probe.
func (c *RedisCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

func billKey(invoiceRef, fingerprint string) string {
	return "cache:bill:" + invoiceRef + ":" + fingerprint
}

func notificationKey(invoiceNo, status string) string {
	return fmt.Sprintf("dedup:webhook:%s:%s", invoiceNo, status)
}
