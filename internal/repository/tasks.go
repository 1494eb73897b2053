package repository

import (
	"context"
	"database/sql"
	"fmt"

	"smartshelf/internal/models"

	"github.com/google/uuid"
)

// TaskRepository 补货任务数据访问
type TaskRepository struct {
	db *sql.DB
}

// NewTaskRepository 创建任务仓库
func NewTaskRepository(db *sql.DB) *TaskRepository {
	return &TaskRepository{db: db}
}

var validTaskStatuses = map[string]bool{
	models.TaskStatusPending:    true,
	models.TaskStatusInProgress: true,
	models.TaskStatusDone:       true,
}

// Create 创建任务
func (r *TaskRepository) Create(ctx context.Context, task *models.Task) error {
	if task.Title == "" {
		return fmt.Errorf("title is required")
	}
	if task.Status == "" {
		task.Status = models.TaskStatusPending
	}
	if !validTaskStatuses[task.Status] {
		return fmt.Errorf("invalid task status: %s", task.Status)
	}
	if task.TaskID == "" {
		task.TaskID = uuid.New().String()
	}

	query := `
		INSERT INTO tasks (task_id, title, description, assignee_id, shelf_id, status, context, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NOW(), NOW())
		RETURNING created_at, updated_at`

	err := r.db.QueryRowContext(ctx, query,
		task.TaskID,
		task.Title,
		task.Description,
		task.AssigneeID,
		task.ShelfID,
		task.Status,
		nullableJSON(task.Context),
	).Scan(&task.CreatedAt, &task.UpdatedAt)

	if err != nil {
		return fmt.Errorf("failed to create task: %w", err)
	}

	return nil
}

// GetByID 按 ID 查询任务
func (r *TaskRepository) GetByID(ctx context.Context, taskID string) (*models.Task, error) {
	query := `
		SELECT task_id, title, description, assignee_id, shelf_id, status, context, created_at, updated_at
		FROM tasks
		WHERE task_id = $1`

	task := &models.Task{}
	var taskContext sql.NullString
	err := r.db.QueryRowContext(ctx, query, taskID).Scan(
		&task.TaskID,
		&task.Title,
		&task.Description,
		&task.AssigneeID,
		&task.ShelfID,
		&task.Status,
		&taskContext,
		&task.CreatedAt,
		&task.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("task not found: %s", taskID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get task: %w", err)
	}

	if taskContext.Valid {
		task.Context = []byte(taskContext.String)
	}

	return task, nil
}

// List 查询任务（可按状态过滤，空字符串表示全部）
func (r *TaskRepository) List(ctx context.Context, status string) ([]*models.Task, error) {
	if status != "" && !validTaskStatuses[status] {
		return nil, fmt.Errorf("invalid task status: %s", status)
	}

	query := `
		SELECT task_id, title, description, assignee_id, shelf_id, status, context, created_at, updated_at
		FROM tasks
		WHERE ($1 = '' OR status = $1)
		ORDER BY created_at DESC`

	rows, err := r.db.QueryContext(ctx, query, status)
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}
	defer rows.Close()

	var tasks []*models.Task
	for rows.Next() {
		task := &models.Task{}
		var taskContext sql.NullString
		if err := rows.Scan(
			&task.TaskID,
			&task.Title,
			&task.Description,
			&task.AssigneeID,
			&task.ShelfID,
			&task.Status,
			&taskContext,
			&task.CreatedAt,
			&task.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan task: %w", err)
		}
		if taskContext.Valid {
			task.Context = []byte(taskContext.String)
		}
		tasks = append(tasks, task)
	}

	return tasks, rows.Err()
}

// UpdateStatus 更新任务状态
func (r *TaskRepository) UpdateStatus(ctx context.Context, taskID, status string) error {
	if !validTaskStatuses[status] {
		return fmt.Errorf("invalid task status: %s", status)
	}

	result, err := r.db.ExecContext(ctx,
		`UPDATE tasks SET status = $2, updated_at = NOW() WHERE task_id = $1`,
		taskID, status,
	)
	if err != nil {
		return fmt.Errorf("failed to update task status: %w", err)
	}

	rows, _ := result.RowsAffected()
	if rows == 0 {
		return fmt.Errorf("task not found: %s", taskID)
	}

	return nil
}

// nullableJSON 空 JSON 按 NULL 写入
func nullableJSON(data []byte) interface{} {
	if len(data) == 0 {
		return nil
	}
	return string(data)
}
