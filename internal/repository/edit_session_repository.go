package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"genom-go/internal/model"
	"time"

	"github.com/go-redis/redis/v8"
)

// EditSessionRepository 定义了编辑会话（分类编辑缓冲区）的存取接口。
type EditSessionRepository interface {
	// Get 返回编辑者的会话，不存在时返回 nil, nil。
	Get(ctx context.Context, editor string) (*model.EditSession, error)
	Save(ctx context.Context, session *model.EditSession) error
	Delete(ctx context.Context, editor string) error
}

type redisEditSessionRepository struct {
	redisClient *redis.Client
	ttl         time.Duration
}

// NewEditSessionRepository 创建一个基于 Redis 的 EditSessionRepository。
func NewEditSessionRepository(redisClient *redis.Client, ttl time.Duration) EditSessionRepository {
	return &redisEditSessionRepository{redisClient: redisClient, ttl: ttl}
}

func sessionKey(editor string) string {
	return fmt.Sprintf("taxonomy:edit:%s", editor)
}

// Get 从 Redis 读取编辑会话。
func (r *redisEditSessionRepository) Get(ctx context.Context, editor string) (*model.EditSession, error) {
	data, err := r.redisClient.Get(ctx, sessionKey(editor)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get edit session: %w", err)
	}
	var s model.EditSession
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("failed to unmarshal edit session: %w", err)
	}
	return &s, nil
}

// Save 覆盖写入编辑会话并刷新过期时间。
func (r *redisEditSessionRepository) Save(ctx context.Context, session *model.EditSession) error {
	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("failed to marshal edit session: %w", err)
	}
	if err := r.redisClient.Set(ctx, sessionKey(session.Editor), data, r.ttl).Err(); err != nil {
		return fmt.Errorf("failed to set edit session: %w", err)
	}
	return nil
}

// Delete 删除编辑会话。
func (r *redisEditSessionRepository) Delete(ctx context.Context, editor string) error {
	if err := r.redisClient.Del(ctx, sessionKey(editor)).Err(); err != nil {
		return fmt.Errorf("failed to delete edit session: %w", err)
	}
	return nil
}
