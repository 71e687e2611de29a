package task

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// TaskFunc 任务执行函数类型
type TaskFunc func(ctx context.Context, target string, metadata map[string]any) error

// Task 任务定义
type Task struct {
	ID        string         `json:"id"`        // 任务唯一ID
	Target    string         `json:"target"`    // 操作对象标识, 如房间 ID
	Fn        TaskFunc       `json:"-"`         // 执行函数
	Metadata  map[string]any `json:"metadata"`  // 元数据
	CreatedAt time.Time      `json:"createdAt"` // 创建时间
}

// NewTask 创建新任务, id 为空时生成 UUID
func NewTask(id, target string, fn TaskFunc) *Task {
	if id == "" {
		id = uuid.NewString()
	}
	return &Task{
		ID:        id,
		Target:    target,
		Fn:        fn,
		Metadata:  make(map[string]any),
		CreatedAt: time.Now(),
	}
}

// WithMetadata 添加元数据
func (t *Task) WithMetadata(key string, value any) *Task {
	t.Metadata[key] = value
	return t
}

// Execute 执行任务
func (t *Task) Execute(ctx context.Context) error {
	if t.Fn == nil {
		return nil
	}
	return t.Fn(ctx, t.Target, t.Metadata)
}
