package tasks

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Handler 按任务类型处理任务
type Handler interface {
	Type() string
	Handle(ctx context.Context, task Task) error
}

// HandlerFunc 把函数适配为 Handler
type HandlerFunc struct {
	TaskType string
	Fn       func(ctx context.Context, task Task) error
}

func (h HandlerFunc) Type() string { return h.TaskType }

func (h HandlerFunc) Handle(ctx context.Context, task Task) error { return h.Fn(ctx, task) }

// Registry 任务类型到处理器的映射
type Registry struct {
	mu       sync.RWMutex
	handlers map[string]Handler
}

// NewRegistry 创建注册表
func NewRegistry() *Registry {
	return &Registry{handlers: make(map[string]Handler)}
}

// Register 注册处理器，同一类型只能注册一次
func (r *Registry) Register(h Handler) error {
	if h == nil {
		return fmt.Errorf("nil handler")
	}
	t := h.Type()
	if t == "" {
		return fmt.Errorf("handler Type() is empty")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.handlers[t]; exists {
		return fmt.Errorf("handler already registered for task type %s", t)
	}
	r.handlers[t] = h
	return nil
}

// Get 查找处理器
func (r *Registry) Get(taskType string) (Handler, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	h, ok := r.handlers[taskType]
	return h, ok
}

// Worker 从队列消费任务的协程池，不做重试
type Worker struct {
	queue       Queue
	registry    *Registry
	log         *zap.Logger
	concurrency int
	wg          sync.WaitGroup
}

// NewWorker 创建 worker
func NewWorker(queue Queue, registry *Registry, log *zap.Logger, concurrency int) *Worker {
	if concurrency <= 0 {
		concurrency = 1
	}
	return &Worker{
		queue:       queue,
		registry:    registry,
		log:         log.With(zap.String("component", "TaskWorker")),
		concurrency: concurrency,
	}
}

// Start 启动消费协程，ctx 结束或队列关闭时退出
func (w *Worker) Start(ctx context.Context) {
	for i := 0; i < w.concurrency; i++ {
		w.wg.Add(1)
		go func() {
			defer w.wg.Done()
			w.loop(ctx)
		}()
	}
}

// Wait 等待所有消费协程退出
func (w *Worker) Wait() {
	w.wg.Wait()
}

func (w *Worker) loop(ctx context.Context) {
	for {
		task, err := w.queue.Dequeue(ctx)
		if err != nil {
			if errors.Is(err, ErrQueueClosed) || ctx.Err() != nil {
				return
			}
			w.log.Warn("dequeue failed", zap.Error(err))
			select {
			case <-ctx.Done():
				return
			case <-time.After(time.Second):
			}
			continue
		}
		w.dispatch(ctx, task)
	}
}

// dispatch 执行单个任务，处理器 panic 时记录日志并继续
func (w *Worker) dispatch(ctx context.Context, task Task) {
	log := w.log.With(zap.String("task_id", task.ID), zap.String("task_type", task.Type))

	h, ok := w.registry.Get(task.Type)
	if !ok {
		log.Warn("no handler registered for task type")
		return
	}

	defer func() {
		if r := recover(); r != nil {
			log.Error("task handler panic", zap.Any("panic", r))
		}
	}()

	start := time.Now()
	if err := h.Handle(ctx, task); err != nil {
		log.Error("task failed", zap.Error(err), zap.Duration("elapsed", time.Since(start)))
		return
	}
	log.Debug("task done", zap.Duration("elapsed", time.Since(start)))
}
