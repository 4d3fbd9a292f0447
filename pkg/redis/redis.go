package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"phd-portal/backend/config"
)

// Client Redis 客户端封装
// 用于 Token 黑名单校验、接口限流与看板计数缓存；不可用时调用方降级运行
type Client struct {
	rdb    *goredis.Client
	logger *zap.Logger
}

// NewClient 创建 Redis 连接并执行 Ping 健康检查
func NewClient(cfg *config.RedisConfig, logger *zap.Logger) (*Client, error) {
	rdb := goredis.NewClient(&goredis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("Redis 连接失败: %w", err)
	}

	logger.Info("Redis 连接成功", zap.String("addr", cfg.Addr))

	return &Client{rdb: rdb, logger: logger}, nil
}

// ── Token 黑名单 ──

// 黑名单由外部认证服务在登出时写入，本服务只读
const blacklistPrefix = "token:blacklist:"

// IsBlacklisted 检查 JWT ID 是否在黑名单中
func (c *Client) IsBlacklisted(ctx context.Context, jti string) (bool, error) {
	n, err := c.rdb.Exists(ctx, blacklistPrefix+jti).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// ── 限流 ──

// CheckRateLimit 滑动窗口限流：窗口内请求数未超过 limit 时返回 true
func (c *Client) CheckRateLimit(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	now := time.Now()
	member := strconv.FormatInt(now.UnixNano(), 10)
	windowStart := strconv.FormatInt(now.Add(-window).UnixNano(), 10)

	pipe := c.rdb.TxPipeline()
	pipe.ZRemRangeByScore(ctx, key, "0", windowStart)
	pipe.ZAdd(ctx, key, goredis.Z{Score: float64(now.UnixNano()), Member: member})
	count := pipe.ZCard(ctx, key)
	pipe.Expire(ctx, key, window)
	if _, err := pipe.Exec(ctx); err != nil {
		return false, err
	}

	return count.Val() <= int64(limit), nil
}

// ── 看板计数缓存 ──

const (
	countGenerationKey = "dashboard:counts:gen"
	countCachePrefix   = "dashboard:counts:"
)

// CountGeneration 读取当前计数代号；任何状态流转都会使代号递增，从而让旧缓存自然失效
func (c *Client) CountGeneration(ctx context.Context) (int64, error) {
	gen, err := c.rdb.Get(ctx, countGenerationKey).Int64()
	if errors.Is(err, goredis.Nil) {
		return 0, nil
	}
	return gen, err
}

// BumpCountGeneration 递增计数代号
func (c *Client) BumpCountGeneration(ctx context.Context) error {
	return c.rdb.Incr(ctx, countGenerationKey).Err()
}

// GetCounts 读取某用户在某代号下的计数缓存，未命中返回 (nil, false, nil)
func (c *Client) GetCounts(ctx context.Context, actorID string, gen int64) (map[string]int64, bool, error) {
	raw, err := c.rdb.Get(ctx, countCacheKey(actorID, gen)).Bytes()
	if errors.Is(err, goredis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	var counts map[string]int64
	if err := json.Unmarshal(raw, &counts); err != nil {
		return nil, false, err
	}
	return counts, true, nil
}

// SetCounts 写入计数缓存
func (c *Client) SetCounts(ctx context.Context, actorID string, gen int64, counts map[string]int64, ttl time.Duration) error {
	raw, err := json.Marshal(counts)
	if err != nil {
		return err
	}
	return c.rdb.Set(ctx, countCacheKey(actorID, gen), raw, ttl).Err()
}

func countCacheKey(actorID string, gen int64) string {
	return fmt.Sprintf("%s%d:%s", countCachePrefix, gen, actorID)
}

// Close 关闭 Redis 连接
func (c *Client) Close() error {
	return c.rdb.Close()
}
