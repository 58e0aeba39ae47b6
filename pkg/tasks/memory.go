package tasks

import (
	"context"
	"sync"
)

// MemoryQueue 进程内无界队列
type MemoryQueue struct {
	mu      sync.Mutex
	pending []Task
	signal  chan struct{}
	closed  chan struct{}
	once    sync.Once
}

// NewMemoryQueue 创建内存队列，capacity 仅作为初始容量
func NewMemoryQueue(capacity int) *MemoryQueue {
	if capacity < 0 {
		capacity = 0
	}
	return &MemoryQueue{
		pending: make([]Task, 0, capacity),
		signal:  make(chan struct{}, 1),
		closed:  make(chan struct{}),
	}
}

// Enqueue 入队
func (q *MemoryQueue) Enqueue(ctx context.Context, task Task) (Handle, error) {
	select {
	case <-q.closed:
		return Handle{}, ErrQueueClosed
	default:
	}

	task.prepare()

	q.mu.Lock()
	q.pending = append(q.pending, task)
	q.mu.Unlock()

	select {
	case q.signal <- struct{}{}:
	default:
	}
	return Handle{ID: task.ID}, nil
}

// Dequeue 出队
func (q *MemoryQueue) Dequeue(ctx context.Context) (Task, error) {
	for {
		q.mu.Lock()
		if len(q.pending) > 0 {
			task := q.pending[0]
			q.pending[0] = Task{}
			q.pending = q.pending[1:]
			more := len(q.pending) > 0
			q.mu.Unlock()

			// 还有剩余任务时唤醒其他消费者
			if more {
				select {
				case q.signal <- struct{}{}:
				default:
				}
			}
			return task, nil
		}
		q.mu.Unlock()

		select {
		case <-ctx.Done():
			return Task{}, ctx.Err()
		case <-q.closed:
			return Task{}, ErrQueueClosed
		case <-q.signal:
		}
	}
}

// Len 当前排队的任务数
func (q *MemoryQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.pending)
}

// Close 关闭队列，未消费的任务被丢弃
func (q *MemoryQueue) Close() error {
	q.once.Do(func() { close(q.closed) })
	return nil
}
