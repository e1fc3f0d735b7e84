package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

type RedisReceipts struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewRedisReceipts(rdb *redis.Client, ttl time.Duration) *RedisReceipts {
	return &RedisReceipts{rdb: rdb, ttl: ttl}
}

type receiptValue struct {
	SMSDelivered   bool      `json:"smsDelivered"`
	EmailDelivered bool      `json:"emailDelivered"`
	SentAt         time.Time `json:"sentAt"`
}

func (c *RedisReceipts) StoreDelivered(ctx context.Context, eventID uuid.UUID, r Receipt) error {
	key := fmt.Sprintf("wish:%s", eventID)
	val := receiptValue{
		SMSDelivered:   r.SMSDelivered,
		EmailDelivered: r.EmailDelivered,
		SentAt:         r.SentAt.UTC(),
	}

	b, err := json.Marshal(val)
	if err != nil {
		return err
	}

	return c.rdb.Set(ctx, key, b, c.ttl).Err()
}
