package models

import "time"

// 通知类型
const (
	NotificationTypeInfo    = "info"
	NotificationTypeSuccess = "success"
	NotificationTypeWarning = "warning"
	NotificationTypeError   = "error"
)

// Notification 通知
type Notification struct {
	NotificationID string    `json:"notification_id"`
	Message        string    `json:"message"`
	Type           string    `json:"type"` // info | success | warning | error
	Read           bool      `json:"read"`
	ShelfID        *string   `json:"shelf_id,omitempty"`
	LoadCellID     *string   `json:"load_cell_id,omitempty"`
	ProductID      *string   `json:"product_id,omitempty"`
	UserID         *string   `json:"user_id,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}
