package httpapi

import (
	"context"
	"net/http"
	"strings"

	"smartshelf/internal/models"
	"smartshelf/internal/repository"

	"go.uber.org/zap"
)

// NotificationService 通知服务依赖（由 service.NotificationService 实现）
type NotificationService interface {
	Create(ctx context.Context, notification *models.Notification) error
	List(ctx context.Context, page, pageSize int, filter repository.ListFilter) ([]*models.Notification, int, error)
	MarkRead(ctx context.Context, notificationID string) error
	MarkAllRead(ctx context.Context) (int64, error)
	UnreadCount(ctx context.Context) (int, error)
	Delete(ctx context.Context, notificationID string) error
}

// NotificationHandler 通知 Handler
type NotificationHandler struct {
	notifications NotificationService
	logger        *zap.Logger
}

// NewNotificationHandler 创建通知 Handler
func NewNotificationHandler(notifications NotificationService, logger *zap.Logger) *NotificationHandler {
	return &NotificationHandler{
		notifications: notifications,
		logger:        logger,
	}
}

// ServeHTTP 实现 http.Handler 接口
func (h *NotificationHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	path := r.URL.Path
	switch {
	case path == "/api/v1/notifications" && r.Method == http.MethodGet:
		h.ListNotifications(w, r)
	case path == "/api/v1/notifications" && r.Method == http.MethodPost:
		h.CreateNotification(w, r)
	case path == "/api/v1/notifications/mark-all-read" && r.Method == http.MethodPatch:
		h.MarkAllRead(w, r)
	case path == "/api/v1/notifications/unread-count" && r.Method == http.MethodGet:
		h.UnreadCount(w, r)
	case strings.HasSuffix(path, "/read") && r.Method == http.MethodPatch:
		id := strings.TrimSuffix(path, "/read")
		id = strings.TrimPrefix(id, "/api/v1/notifications/")
		if id != "" && !strings.Contains(id, "/") {
			h.MarkRead(w, r, id)
		} else {
			w.WriteHeader(http.StatusNotFound)
		}
	default:
		id := strings.TrimPrefix(path, "/api/v1/notifications/")
		if id != "" && !strings.Contains(id, "/") && r.Method == http.MethodDelete {
			h.DeleteNotification(w, r, id)
			return
		}
		w.WriteHeader(http.StatusNotFound)
	}
}

// ListNotifications 分页查询通知
func (h *NotificationHandler) ListNotifications(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	page := parseInt(query.Get("page"), 1)
	pageSize := parseInt(query.Get("page_size"), 20)
	if pageSize > 100 {
		pageSize = 100
	}
	filter := repository.ListFilter{
		UnreadOnly: query.Get("unread") == "true",
		Type:       query.Get("type"),
	}

	notifications, total, err := h.notifications.List(r.Context(), page, pageSize, filter)
	if err != nil {
		h.logger.Error("Failed to list notifications", zap.Error(err))
		writeJSON(w, http.StatusOK, Fail("failed to list notifications"))
		return
	}

	type listResponse struct {
		Items []*models.Notification `json:"items"`
		Total int                    `json:"total"`
		Page  int                    `json:"page"`
	}
	writeJSON(w, http.StatusOK, Ok(listResponse{Items: notifications, Total: total, Page: page}))
}

// CreateNotification 创建通知（持久化 + websocket 推送）
func (h *NotificationHandler) CreateNotification(w http.ResponseWriter, r *http.Request) {
	var notification models.Notification
	if err := readBodyJSON(r, 1<<20, &notification); err != nil {
		writeJSON(w, http.StatusOK, Fail("invalid request body"))
		return
	}

	if err := h.notifications.Create(r.Context(), &notification); err != nil {
		writeJSON(w, http.StatusOK, Fail(err.Error()))
		return
	}
	writeJSON(w, http.StatusOK, Ok(&notification))
}

// MarkRead 标记单条已读
func (h *NotificationHandler) MarkRead(w http.ResponseWriter, r *http.Request, notificationID string) {
	if err := h.notifications.MarkRead(r.Context(), notificationID); err != nil {
		writeJSON(w, http.StatusOK, Fail(err.Error()))
		return
	}
	writeJSON(w, http.StatusOK, Ok(notificationID))
}

// MarkAllRead 标记全部已读
func (h *NotificationHandler) MarkAllRead(w http.ResponseWriter, r *http.Request) {
	affected, err := h.notifications.MarkAllRead(r.Context())
	if err != nil {
		writeJSON(w, http.StatusOK, Fail(err.Error()))
		return
	}
	writeJSON(w, http.StatusOK, Ok(affected))
}

// UnreadCount 未读通知数
func (h *NotificationHandler) UnreadCount(w http.ResponseWriter, r *http.Request) {
	count, err := h.notifications.UnreadCount(r.Context())
	if err != nil {
		writeJSON(w, http.StatusOK, Fail(err.Error()))
		return
	}
	writeJSON(w, http.StatusOK, Ok(count))
}

// DeleteNotification 删除通知
func (h *NotificationHandler) DeleteNotification(w http.ResponseWriter, r *http.Request, notificationID string) {
	if err := h.notifications.Delete(r.Context(), notificationID); err != nil {
		writeJSON(w, http.StatusOK, Fail(err.Error()))
		return
	}
	writeJSON(w, http.StatusOK, Ok(notificationID))
}
