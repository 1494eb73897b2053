package service

import (
	"context"

	"smartshelf/internal/models"
	"smartshelf/internal/repository"

	"go.uber.org/zap"
)

// Broadcaster 通知推送接口（websocket hub 实现）
type Broadcaster interface {
	BroadcastNotification(notification *models.Notification)
}

// NotificationService 通知业务编排
// 持久化后经 websocket 向全部在线客户端推送
type NotificationService struct {
	repo        *repository.NotificationRepository
	broadcaster Broadcaster
	logger      *zap.Logger
}

// NewNotificationService 创建通知服务
func NewNotificationService(repo *repository.NotificationRepository, broadcaster Broadcaster, logger *zap.Logger) *NotificationService {
	return &NotificationService{
		repo:        repo,
		broadcaster: broadcaster,
		logger:      logger,
	}
}

// Create 创建并推送通知
func (s *NotificationService) Create(ctx context.Context, notification *models.Notification) error {
	if err := s.repo.Create(ctx, notification); err != nil {
		return err
	}

	s.broadcaster.BroadcastNotification(notification)

	s.logger.Info("Notification created",
		zap.String("notification_id", notification.NotificationID),
		zap.String("type", notification.Type),
	)
	return nil
}

// List 分页查询通知
func (s *NotificationService) List(ctx context.Context, page, pageSize int, filter repository.ListFilter) ([]*models.Notification, int, error) {
	if page < 1 {
		page = 1
	}
	return s.repo.List(ctx, pageSize, (page-1)*pageSize, filter)
}

// MarkRead 标记单条已读
func (s *NotificationService) MarkRead(ctx context.Context, notificationID string) error {
	return s.repo.MarkRead(ctx, notificationID)
}

// MarkAllRead 标记全部已读
func (s *NotificationService) MarkAllRead(ctx context.Context) (int64, error) {
	return s.repo.MarkAllRead(ctx)
}

// UnreadCount 未读数
func (s *NotificationService) UnreadCount(ctx context.Context) (int, error) {
	return s.repo.UnreadCount(ctx)
}

// Delete 删除通知
func (s *NotificationService) Delete(ctx context.Context, notificationID string) error {
	return s.repo.Delete(ctx, notificationID)
}
