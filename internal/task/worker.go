package task

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
)

// ErrPoolClosed 工作池已关闭
var ErrPoolClosed = errors.New("worker pool closed")

// WorkerPool 工作协程池
// 每局比赛作为一个任务运行, ctx 在 Stop 时取消
type WorkerPool struct {
	workerCount int        // 工作协程数量
	taskChan    chan *Task // 任务通道
	ctx         context.Context
	cancel      context.CancelFunc
	wg          sync.WaitGroup
	running     atomic.Int64
	closed      atomic.Bool
	logger      *slog.Logger
}

// NewWorkerPool 创建工作协程池
func NewWorkerPool(workerCount int) *WorkerPool {
	if workerCount <= 0 {
		workerCount = 10 // 默认10个工作协程
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &WorkerPool{
		workerCount: workerCount,
		taskChan:    make(chan *Task, workerCount*2),
		ctx:         ctx,
		cancel:      cancel,
		logger:      slog.Default().With("component", "WorkerPool"),
	}
}

// Start 启动工作协程池
func (wp *WorkerPool) Start() {
	for i := 0; i < wp.workerCount; i++ {
		wp.wg.Add(1)
		go wp.worker(i)
	}

	wp.logger.Info("工作协程池已启动", "workerCount", wp.workerCount)
}

// worker 工作协程
func (wp *WorkerPool) worker(id int) {
	defer wp.wg.Done()

	for {
		select {
		case <-wp.ctx.Done():
			wp.logger.Debug("工作协程退出", "workerID", id)
			return

		case task := <-wp.taskChan:
			if task == nil {
				continue
			}
			wp.executeTask(id, task)
		}
	}
}

// executeTask 执行任务, panic 转为错误
func (wp *WorkerPool) executeTask(workerID int, task *Task) (err error) {
	wp.running.Add(1)
	defer wp.running.Add(-1)
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("task panic: %v", r)
			wp.logger.Error("任务执行 panic",
				"workerID", workerID,
				"taskID", task.ID,
				"target", task.Target,
				"panic", r)
		}
	}()

	if err = task.Execute(wp.ctx); err != nil {
		wp.logger.Error("任务执行失败",
			"workerID", workerID,
			"taskID", task.ID,
			"target", task.Target,
			"error", err)
		return err
	}
	wp.logger.Debug("任务执行成功",
		"workerID", workerID,
		"taskID", task.ID,
		"target", task.Target)
	return nil
}

// Submit 提交任务, 通道满时阻塞直到有空位或 ctx 结束
func (wp *WorkerPool) Submit(ctx context.Context, task *Task) error {
	if wp.closed.Load() {
		return ErrPoolClosed
	}
	select {
	case wp.taskChan <- task:
		return nil
	default:
	}

	wp.logger.Warn("任务通道已满,任务可能延迟执行", "taskID", task.ID)
	select {
	case wp.taskChan <- task:
		return nil
	case <-wp.ctx.Done():
		return ErrPoolClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Running 正在执行的任务数
func (wp *WorkerPool) Running() int {
	return int(wp.running.Load())
}

// Pending 排队中的任务数
func (wp *WorkerPool) Pending() int {
	return len(wp.taskChan)
}

// Stop 停止工作协程池, 取消正在执行任务的 ctx 并等待退出
func (wp *WorkerPool) Stop() {
	if !wp.closed.CompareAndSwap(false, true) {
		return
	}
	wp.logger.Info("停止工作协程池")

	wp.cancel()
	wp.wg.Wait()

	wp.logger.Info("工作协程池已停止")
}
