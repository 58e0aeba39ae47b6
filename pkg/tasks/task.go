// Package tasks 提供延迟任务队列：入队立即返回，由独立的 worker 消费
package tasks

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ErrQueueClosed 队列已关闭
var ErrQueueClosed = errors.New("task queue closed")

// Task 一个待执行的任务
type Task struct {
	ID         string          `json:"id"`
	Type       string          `json:"type"`
	Payload    json.RawMessage `json:"payload"`
	EnqueuedAt time.Time       `json:"enqueuedAt"`
}

// Handle 入队后返回给调用方的句柄
type Handle struct {
	ID string `json:"id"`
}

// NewTask 把 payload 序列化为任务
func NewTask(taskType string, payload interface{}) (Task, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return Task{}, fmt.Errorf("marshal %s payload: %w", taskType, err)
	}
	return Task{Type: taskType, Payload: raw}, nil
}

// Decode 反序列化任务负载
func (t Task) Decode(v interface{}) error {
	if err := json.Unmarshal(t.Payload, v); err != nil {
		return fmt.Errorf("decode %s payload: %w", t.Type, err)
	}
	return nil
}

// prepare 补全ID和入队时间
func (t *Task) prepare() {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	if t.EnqueuedAt.IsZero() {
		t.EnqueuedAt = time.Now()
	}
}

// Queue 任务队列
type Queue interface {
	// Enqueue 入队并立即返回
	Enqueue(ctx context.Context, task Task) (Handle, error)
	// Dequeue 阻塞直到取到任务、ctx 结束或队列关闭
	Dequeue(ctx context.Context) (Task, error)
	Close() error
}

// Enqueuer 只需要入队能力的调用方使用
type Enqueuer interface {
	Enqueue(ctx context.Context, task Task) (Handle, error)
}
