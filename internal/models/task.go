package models

import (
	"encoding/json"
	"time"
)

// 任务状态
const (
	TaskStatusPending    = "pending"
	TaskStatusInProgress = "in_progress"
	TaskStatusDone       = "done"
)

// Task 补货/整理任务
type Task struct {
	TaskID      string          `json:"task_id"`
	Title       string          `json:"title"`
	Description string          `json:"description"`
	AssigneeID  *string         `json:"assignee_id,omitempty"`
	ShelfID     *string         `json:"shelf_id,omitempty"`
	Status      string          `json:"status"`
	Context     json.RawMessage `json:"context,omitempty"` // 最近一次批量保存的变更历史快照
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}
