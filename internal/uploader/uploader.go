package uploader

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"smartshelf/internal/config"
	"smartshelf/internal/models"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// CellSaver 格子持久化接口
type CellSaver interface {
	Update(ctx context.Context, cell *models.LoadCell) error
}

// ItemResult 单格保存结果
// 调用方据此只重试失败子集，而不是整批重来
type ItemResult struct {
	LoadCellID string `json:"load_cell_id"`
	Success    bool   `json:"success"`
	Error      string `json:"error,omitempty"`
}

// Uploader 批量保存器
// 并发保存未提交编辑，记录变更历史供任务分配做上下文
type Uploader struct {
	config      *config.Config
	saver       CellSaver
	redisClient *redis.Client
	logger      *zap.Logger
}

// NewUploader 创建批量保存器
func NewUploader(cfg *config.Config, saver CellSaver, redisClient *redis.Client, logger *zap.Logger) *Uploader {
	return &Uploader{
		config:      cfg,
		saver:       saver,
		redisClient: redisClient,
		logger:      logger,
	}
}

// SaveAll 批量保存格子编辑
// 并发上限由配置控制，各请求独立完成，互不影响；
// 返回逐格结果，任一失败时整体返回错误（成功子集仍已持久化）
func (u *Uploader) SaveAll(ctx context.Context, cells []*models.LoadCell, productName func(*string) string) ([]ItemResult, error) {
	if len(cells) == 0 {
		return nil, nil
	}

	results := make([]ItemResult, len(cells))

	var g errgroup.Group
	g.SetLimit(u.config.Upload.Concurrency)

	for i, cell := range cells {
		i, cell := i, cell
		g.Go(func() error {
			results[i] = ItemResult{LoadCellID: cell.LoadCellID, Success: true}
			if err := u.saver.Update(ctx, cell); err != nil {
				results[i].Success = false
				results[i].Error = err.Error()
				u.logger.Error("Failed to save load cell",
					zap.String("load_cell_id", cell.LoadCellID),
					zap.Error(err),
				)
			}
			return nil
		})
	}

	// 组内不传播错误，逐格结果里已经记录
	_ = g.Wait()

	var saved []*models.LoadCell
	failed := 0
	for i, r := range results {
		if r.Success {
			saved = append(saved, cells[i])
		} else {
			failed++
		}
	}

	u.appendHistory(ctx, saved, productName)

	u.logger.Info("Batch save finished",
		zap.Int("total", len(cells)),
		zap.Int("failed", failed),
	)

	if failed > 0 {
		return results, fmt.Errorf("batch save failed for %d of %d cells", failed, len(cells))
	}
	return results, nil
}

// appendHistory 追加扁平化变更历史到 Redis（失败只记录）
func (u *Uploader) appendHistory(ctx context.Context, cells []*models.LoadCell, productName func(*string) string) {
	if len(cells) == 0 {
		return
	}

	now := time.Now().Format(time.RFC3339)
	entries := make([]interface{}, 0, len(cells))
	for _, cell := range cells {
		record := models.ChangeRecord{
			ProductID:   cell.ProductID,
			ProductName: productName(cell.ProductID),
			Quantity:    cell.Quantity,
			UpdatedAt:   now,
		}
		data, err := json.Marshal(record)
		if err != nil {
			continue
		}
		entries = append(entries, string(data))
	}

	key := u.config.Upload.HistoryKey
	if err := u.redisClient.LPush(ctx, key, entries...).Err(); err != nil {
		u.logger.Error("Failed to append change history", zap.String("key", key), zap.Error(err))
		return
	}
	if err := u.redisClient.LTrim(ctx, key, 0, u.config.Upload.HistoryMax-1).Err(); err != nil {
		u.logger.Error("Failed to trim change history", zap.String("key", key), zap.Error(err))
	}
}

// History 读取最近的变更历史（新→旧）
func (u *Uploader) History(ctx context.Context, limit int64) ([]models.ChangeRecord, error) {
	if limit <= 0 || limit > u.config.Upload.HistoryMax {
		limit = u.config.Upload.HistoryMax
	}

	raw, err := u.redisClient.LRange(ctx, u.config.Upload.HistoryKey, 0, limit-1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read change history: %w", err)
	}

	records := make([]models.ChangeRecord, 0, len(raw))
	for _, item := range raw {
		var record models.ChangeRecord
		if err := json.Unmarshal([]byte(item), &record); err != nil {
			continue
		}
		records = append(records, record)
	}

	return records, nil
}
