package tasks

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

const redisPopTimeout = 2 * time.Second

// RedisQueue 基于 redis 列表的队列，LPUSH 入队、BRPOP 出队
type RedisQueue struct {
	rdb *goredis.Client
	key string
}

// NewRedisQueue 连接 redis 并确认可用
func NewRedisQueue(ctx context.Context, addr, key string) (*RedisQueue, error) {
	if addr == "" {
		return nil, fmt.Errorf("missing redis addr")
	}
	if key == "" {
		key = "cofounder:tasks"
	}

	rdb := goredis.NewClient(&goredis.Options{
		Addr:        addr,
		DialTimeout: 5 * time.Second,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	return NewRedisQueueWithClient(rdb, key), nil
}

// NewRedisQueueWithClient 使用已有的客户端
func NewRedisQueueWithClient(rdb *goredis.Client, key string) *RedisQueue {
	return &RedisQueue{rdb: rdb, key: key}
}

// Enqueue 入队
func (q *RedisQueue) Enqueue(ctx context.Context, task Task) (Handle, error) {
	task.prepare()

	raw, err := json.Marshal(task)
	if err != nil {
		return Handle{}, err
	}
	if err := q.rdb.LPush(ctx, q.key, raw).Err(); err != nil {
		return Handle{}, fmt.Errorf("redis lpush: %w", err)
	}
	return Handle{ID: task.ID}, nil
}

// Dequeue 出队，定期超时以便响应 ctx
func (q *RedisQueue) Dequeue(ctx context.Context) (Task, error) {
	for {
		if err := ctx.Err(); err != nil {
			return Task{}, err
		}

		res, err := q.rdb.BRPop(ctx, redisPopTimeout, q.key).Result()
		if errors.Is(err, goredis.Nil) {
			continue
		}
		if errors.Is(err, goredis.ErrClosed) {
			return Task{}, ErrQueueClosed
		}
		if err != nil {
			if ctx.Err() != nil {
				return Task{}, ctx.Err()
			}
			return Task{}, fmt.Errorf("redis brpop: %w", err)
		}

		// res[0] 是 key，res[1] 是值
		var task Task
		if err := json.Unmarshal([]byte(res[1]), &task); err != nil {
			return Task{}, fmt.Errorf("decode task: %w", err)
		}
		return task, nil
	}
}

// Close 关闭 redis 连接
func (q *RedisQueue) Close() error {
	return q.rdb.Close()
}
