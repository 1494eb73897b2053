package notifier

import (
	"context"
	"fmt"
	"time"

	"smartshelf/internal/config"
	"smartshelf/internal/models"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

// Notifier 通知 API 客户端
// 货架状态变化时向通知服务推送告警（发送失败不影响网格处理）
type Notifier struct {
	client  *resty.Client
	baseURL string
	logger  *zap.Logger
}

// CreateNotificationRequest 创建通知请求
type CreateNotificationRequest struct {
	Message    string  `json:"message"`
	Type       string  `json:"type"`
	ShelfID    *string `json:"shelf_id,omitempty"`
	LoadCellID *string `json:"load_cell_id,omitempty"`
	ProductID  *string `json:"product_id,omitempty"`
}

// NewNotifier 创建通知客户端
func NewNotifier(cfg *config.Config, logger *zap.Logger) *Notifier {
	client := resty.New().
		SetTimeout(time.Duration(cfg.Notify.Timeout) * time.Second).
		SetRetryCount(2).
		SetRetryWaitTime(500 * time.Millisecond)

	return &Notifier{
		client:  client,
		baseURL: cfg.Notify.BaseURL,
		logger:  logger,
	}
}

// Send 发送通知
func (n *Notifier) Send(ctx context.Context, req CreateNotificationRequest) error {
	resp, err := n.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(req).
		Post(n.baseURL + "/notifications")

	if err != nil {
		return fmt.Errorf("failed to send notification: %w", err)
	}

	if resp.StatusCode() >= 300 {
		return fmt.Errorf("notification API returned status %d: %s", resp.StatusCode(), resp.String())
	}

	return nil
}

// SendAsync 异步发送通知（失败只记录日志）
func (n *Notifier) SendAsync(req CreateNotificationRequest) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := n.Send(ctx, req); err != nil {
			n.logger.Error("Failed to deliver notification",
				zap.String("message", req.Message),
				zap.Error(err),
			)
		}
	}()
}

// ============ 告警消息模板 ============

// OutOfStock 缺货告警
func OutOfStock(cell *models.LoadCell, productName string) CreateNotificationRequest {
	return CreateNotificationRequest{
		Message:    fmt.Sprintf("%s is out of stock at floor %d, column %d", productName, cell.Floor, cell.Column),
		Type:       models.NotificationTypeError,
		ShelfID:    &cell.ShelfID,
		LoadCellID: &cell.LoadCellID,
		ProductID:  cell.ProductID,
	}
}

// LowStock 低库存告警
func LowStock(cell *models.LoadCell, productName string, quantity int) CreateNotificationRequest {
	return CreateNotificationRequest{
		Message:    fmt.Sprintf("%s is running low at floor %d, column %d (%d left, threshold %d)", productName, cell.Floor, cell.Column, quantity, cell.Threshold),
		Type:       models.NotificationTypeWarning,
		ShelfID:    &cell.ShelfID,
		LoadCellID: &cell.LoadCellID,
		ProductID:  cell.ProductID,
	}
}

// OverCapacity 数量超限告警
func OverCapacity(cell *models.LoadCell, productName string) CreateNotificationRequest {
	return CreateNotificationRequest{
		Message:    fmt.Sprintf("Too many items of %s placed at floor %d, column %d", productName, cell.Floor, cell.Column),
		Type:       models.NotificationTypeWarning,
		ShelfID:    &cell.ShelfID,
		LoadCellID: &cell.LoadCellID,
		ProductID:  cell.ProductID,
	}
}

// WrongProduct 商品放置错误告警
func WrongProduct(cell *models.LoadCell, productName string) CreateNotificationRequest {
	return CreateNotificationRequest{
		Message:    fmt.Sprintf("Wrong product detected at floor %d, column %d (expected %s)", cell.Floor, cell.Column, productName),
		Type:       models.NotificationTypeError,
		ShelfID:    &cell.ShelfID,
		LoadCellID: &cell.LoadCellID,
		ProductID:  cell.ProductID,
	}
}

// SensorFault 载荷传感器故障告警
func SensorFault(cell *models.LoadCell) CreateNotificationRequest {
	return CreateNotificationRequest{
		Message:    fmt.Sprintf("Load cell fault at floor %d, column %d", cell.Floor, cell.Column),
		Type:       models.NotificationTypeError,
		ShelfID:    &cell.ShelfID,
		LoadCellID: &cell.LoadCellID,
	}
}
