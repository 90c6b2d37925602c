package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"genom-go/internal/model"
	"strconv"
	"time"

	"github.com/go-redis/redis/v8"
)

// OptionCacheRepository 缓存按父级划分的选项列表。列表只会被整体替换或删除，不做原地修改。
type OptionCacheRepository interface {
	Get(ctx context.Context, rank model.Rank, parentID *uint) ([]model.TopologyNode, bool, error)
	Set(ctx context.Context, rank model.Rank, parentID *uint, nodes []model.TopologyNode) error
	Invalidate(ctx context.Context, rank model.Rank, parentID *uint) error
}

type redisOptionCacheRepository struct {
	redisClient *redis.Client
	ttl         time.Duration
}

// NewOptionCacheRepository 创建一个基于 Redis 的 OptionCacheRepository。
func NewOptionCacheRepository(redisClient *redis.Client, ttl time.Duration) OptionCacheRepository {
	return &redisOptionCacheRepository{redisClient: redisClient, ttl: ttl}
}

// OptionCacheKey 返回选项缓存的键，order 等级或没有父级时使用 "root"。
func OptionCacheKey(rank model.Rank, parentID *uint) string {
	parent := "root"
	if parentID != nil {
		parent = strconv.FormatUint(uint64(*parentID), 10)
	}
	return fmt.Sprintf("taxonomy:options:%s:%s", rank, parent)
}

// Get 读取缓存，未命中时第二个返回值为 false。
func (r *redisOptionCacheRepository) Get(ctx context.Context, rank model.Rank, parentID *uint) ([]model.TopologyNode, bool, error) {
	data, err := r.redisClient.Get(ctx, OptionCacheKey(rank, parentID)).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to get option cache: %w", err)
	}
	var nodes []model.TopologyNode
	if err := json.Unmarshal(data, &nodes); err != nil {
		return nil, false, fmt.Errorf("failed to unmarshal option cache: %w", err)
	}
	return nodes, true, nil
}

// Set 写入缓存。
func (r *redisOptionCacheRepository) Set(ctx context.Context, rank model.Rank, parentID *uint, nodes []model.TopologyNode) error {
	data, err := json.Marshal(nodes)
	if err != nil {
		return fmt.Errorf("failed to marshal option cache: %w", err)
	}
	return r.redisClient.Set(ctx, OptionCacheKey(rank, parentID), data, r.ttl).Err()
}

// Invalidate 删除缓存，下一次读取会重新查询数据库。
func (r *redisOptionCacheRepository) Invalidate(ctx context.Context, rank model.Rank, parentID *uint) error {
	return r.redisClient.Del(ctx, OptionCacheKey(rank, parentID)).Err()
}
