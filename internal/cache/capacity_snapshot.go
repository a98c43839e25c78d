package cache

import (
	"context"
	"fmt"
	"strconv"

	"event-rsvp-service/internal/model"
	apperrors "event-rsvp-service/pkg/app_errors"

	"github.com/redis/go-redis/v9"
)

// RedisCapacityCache 活動容量快照。只供讀取端（狀態查詢、儀表板）使用，
// 報名決策一律走資料庫的條件式 UPDATE，絕不以快照為準。
type RedisCapacityCache interface {
	// 寫入：每次計數器變動後由 service 更新快照
	PutSnapshot(ctx context.Context, eventID int, snapshot model.CapacitySnapshot) error
	// 讀取：cache miss 回傳 ErrEventNotFound，呼叫端應 fallback 到資料庫
	GetSnapshot(ctx context.Context, eventID int) (model.CapacitySnapshot, error)
	Invalidate(ctx context.Context, eventID int) error
}

type RedisCapacityCacheImpl struct {
	client *redis.Client
}

func NewRedisCapacityCache(client *redis.Client) RedisCapacityCache {
	return &RedisCapacityCacheImpl{
		client: client,
	}
}

func (c *RedisCapacityCacheImpl) getCapacityKey(eventID int) string {
	return fmt.Sprintf("event:%d:capacity", eventID)
}

func (c *RedisCapacityCacheImpl) PutSnapshot(ctx context.Context, eventID int, snapshot model.CapacitySnapshot) error {
	key := c.getCapacityKey(eventID)
	open := 0
	if snapshot.IsOpen {
		open = 1
	}
	return c.client.HSet(ctx, key, map[string]interface{}{
		"confirmed": snapshot.ConfirmedCount,
		"queued":    snapshot.QueuedCount,
		"max":       snapshot.MaxCapacity,
		"open":      open,
	}).Err()
}

func (c *RedisCapacityCacheImpl) GetSnapshot(ctx context.Context, eventID int) (model.CapacitySnapshot, error) {
	key := c.getCapacityKey(eventID)
	result, err := c.client.HGetAll(ctx, key).Result()
	if err != nil {
		return model.CapacitySnapshot{}, err
	}

	// 檢查 key 是否存在
	if len(result) == 0 {
		return model.CapacitySnapshot{}, apperrors.ErrEventNotFound
	}

	confirmed, err := strconv.Atoi(result["confirmed"])
	if err != nil {
		return model.CapacitySnapshot{}, fmt.Errorf("invalid confirmed count: %v", err)
	}

	queued, err := strconv.Atoi(result["queued"])
	if err != nil {
		return model.CapacitySnapshot{}, fmt.Errorf("invalid queued count: %v", err)
	}

	max, err := strconv.Atoi(result["max"])
	if err != nil {
		return model.CapacitySnapshot{}, fmt.Errorf("invalid max capacity: %v", err)
	}

	spots := max - confirmed
	if spots < 0 {
		spots = 0
	}

	return model.CapacitySnapshot{
		ConfirmedCount: confirmed,
		QueuedCount:    queued,
		MaxCapacity:    max,
		SpotsRemaining: spots,
		IsOpen:         result["open"] == "1",
	}, nil
}

func (c *RedisCapacityCacheImpl) Invalidate(ctx context.Context, eventID int) error {
	key := c.getCapacityKey(eventID)
	return c.client.Del(ctx, key).Err()
}
