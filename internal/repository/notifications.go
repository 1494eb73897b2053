package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"smartshelf/internal/models"

	"github.com/google/uuid"
)

// NotificationRepository 通知数据访问
type NotificationRepository struct {
	db *sql.DB
}

// NewNotificationRepository 创建通知仓库
func NewNotificationRepository(db *sql.DB) *NotificationRepository {
	return &NotificationRepository{db: db}
}

var validNotificationTypes = map[string]bool{
	models.NotificationTypeInfo:    true,
	models.NotificationTypeSuccess: true,
	models.NotificationTypeWarning: true,
	models.NotificationTypeError:   true,
}

// Create 创建通知
func (r *NotificationRepository) Create(ctx context.Context, notification *models.Notification) error {
	if notification.Message == "" {
		return fmt.Errorf("message is required")
	}
	if !validNotificationTypes[notification.Type] {
		return fmt.Errorf("invalid notification type: %s", notification.Type)
	}
	if notification.NotificationID == "" {
		notification.NotificationID = uuid.New().String()
	}

	query := `
		INSERT INTO notifications (notification_id, message, type, read, shelf_id, load_cell_id, product_id, user_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW())
		RETURNING created_at`

	err := r.db.QueryRowContext(ctx, query,
		notification.NotificationID,
		notification.Message,
		notification.Type,
		notification.Read,
		notification.ShelfID,
		notification.LoadCellID,
		notification.ProductID,
		notification.UserID,
	).Scan(&notification.CreatedAt)

	if err != nil {
		return fmt.Errorf("failed to create notification: %w", err)
	}

	return nil
}

// ListFilter 通知列表过滤条件
type ListFilter struct {
	UnreadOnly bool
	Type       string // 空字符串表示全部类型
}

// List 分页查询通知（按时间倒序，支持未读/类型过滤）
func (r *NotificationRepository) List(ctx context.Context, limit, offset int, filter ListFilter) ([]*models.Notification, int, error) {
	if limit <= 0 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	if filter.Type != "" && !validNotificationTypes[filter.Type] {
		return nil, 0, fmt.Errorf("invalid notification type: %s", filter.Type)
	}

	// 动态拼接过滤条件
	var conditions []string
	var args []interface{}
	if filter.UnreadOnly {
		conditions = append(conditions, "read = FALSE")
	}
	if filter.Type != "" {
		args = append(args, filter.Type)
		conditions = append(conditions, fmt.Sprintf("type = $%d", len(args)))
	}
	whereClause := ""
	if len(conditions) > 0 {
		whereClause = " WHERE " + strings.Join(conditions, " AND ")
	}

	var total int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM notifications`+whereClause, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count notifications: %w", err)
	}

	query := fmt.Sprintf(`
		SELECT notification_id, message, type, read, shelf_id, load_cell_id, product_id, user_id, created_at
		FROM notifications%s
		ORDER BY created_at DESC
		LIMIT $%d OFFSET $%d`, whereClause, len(args)+1, len(args)+2)
	args = append(args, limit, offset)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list notifications: %w", err)
	}
	defer rows.Close()

	var notifications []*models.Notification
	for rows.Next() {
		n := &models.Notification{}
		if err := rows.Scan(
			&n.NotificationID,
			&n.Message,
			&n.Type,
			&n.Read,
			&n.ShelfID,
			&n.LoadCellID,
			&n.ProductID,
			&n.UserID,
			&n.CreatedAt,
		); err != nil {
			return nil, 0, fmt.Errorf("failed to scan notification: %w", err)
		}
		notifications = append(notifications, n)
	}

	return notifications, total, rows.Err()
}

// MarkRead 标记单条通知已读
func (r *NotificationRepository) MarkRead(ctx context.Context, notificationID string) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE notifications SET read = TRUE WHERE notification_id = $1`,
		notificationID,
	)
	if err != nil {
		return fmt.Errorf("failed to mark notification read: %w", err)
	}

	rows, _ := result.RowsAffected()
	if rows == 0 {
		return fmt.Errorf("notification not found: %s", notificationID)
	}

	return nil
}

// MarkAllRead 标记全部通知已读，返回受影响条数
func (r *NotificationRepository) MarkAllRead(ctx context.Context) (int64, error) {
	result, err := r.db.ExecContext(ctx, `UPDATE notifications SET read = TRUE WHERE read = FALSE`)
	if err != nil {
		return 0, fmt.Errorf("failed to mark all notifications read: %w", err)
	}

	return result.RowsAffected()
}

// UnreadCount 未读通知数
func (r *NotificationRepository) UnreadCount(ctx context.Context) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM notifications WHERE read = FALSE`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count unread notifications: %w", err)
	}

	return count, nil
}

// Delete 删除通知
func (r *NotificationRepository) Delete(ctx context.Context, notificationID string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM notifications WHERE notification_id = $1`, notificationID)
	if err != nil {
		return fmt.Errorf("failed to delete notification: %w", err)
	}

	rows, _ := result.RowsAffected()
	if rows == 0 {
		return fmt.Errorf("notification not found: %s", notificationID)
	}

	return nil
}
