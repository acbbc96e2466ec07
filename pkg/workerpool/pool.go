package workerpool

import (
	"context"
	"sync"

	"edu_social_client/pkg/logger"

	"go.uber.org/zap"
)

// Task 任务函数
type Task func()

type job struct {
	run  Task
	drop Task
}

// Pool 固定 worker 数量, 有界任务队列
type Pool struct {
	workers   int
	taskQueue chan job
	wg        sync.WaitGroup
	ctx       context.Context
	cancel    context.CancelFunc
	closeOnce sync.Once

	// closed is set once the queue is drained, guarded by mu
	mu     sync.RWMutex
	closed bool
}

// New 创建 Worker Pool
func New(workers int, queueSize int) *Pool {
	if workers <= 0 {
		workers = 1
	}
	if queueSize < 0 {
		queueSize = 0
	}
	ctx, cancel := context.WithCancel(context.Background())

	pool := &Pool{
		workers:   workers,
		taskQueue: make(chan job, queueSize),
		ctx:       ctx,
		cancel:    cancel,
	}

	for i := 0; i < workers; i++ {
		pool.wg.Add(1)
		go pool.worker(i)
	}

	logger.Log.Info("worker pool started", zap.Int("workers", workers), zap.Int("queue_size", queueSize))
	return pool
}

func (p *Pool) worker(id int) {
	defer p.wg.Done()

	for {
		select {
		case <-p.ctx.Done():
			return
		case j := <-p.taskQueue:
			p.run(id, j.run)
		}
	}
}

func (p *Pool) run(id int, task Task) {
	defer func() {
		if r := recover(); r != nil {
			logger.Log.Error("task panic recovered", zap.Int("worker_id", id), zap.Any("panic", r))
		}
	}()
	task()
}

// Submit 提交任务, 队列满时阻塞直到有空位或 ctx 取消
func (p *Pool) Submit(ctx context.Context, task Task) bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed || p.ctx.Err() != nil {
		return false
	}
	select {
	case <-p.ctx.Done():
		return false
	case <-ctx.Done():
		return false
	case p.taskQueue <- job{run: task}:
		return true
	}
}

// TrySubmit 队列满了立即返回 false
func (p *Pool) TrySubmit(task Task) bool {
	return p.TrySubmitWithDrop(task, nil)
}

// TrySubmitWithDrop TrySubmit, onDrop runs instead of task when Shutdown discards it from the queue
func (p *Pool) TrySubmitWithDrop(task, onDrop Task) bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed || p.ctx.Err() != nil {
		return false
	}
	select {
	case p.taskQueue <- job{run: task, drop: onDrop}:
		return true
	default:
		return false
	}
}

// Shutdown 停止接收任务并等待 worker 退出, 队列中未执行的任务被丢弃
func (p *Pool) Shutdown() {
	p.closeOnce.Do(func() {
		p.cancel()
		p.wg.Wait()

		p.mu.Lock()
		p.closed = true
		dropped := 0
		for {
			select {
			case j := <-p.taskQueue:
				dropped++
				if j.drop != nil {
					p.run(-1, j.drop)
				}
				continue
			default:
			}
			break
		}
		p.mu.Unlock()
		logger.Log.Info("worker pool shutdown completed", zap.Int("dropped", dropped))
	})
}
