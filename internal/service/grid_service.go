package service

import (
	"context"
	"fmt"

	"smartshelf/internal/config"
	"smartshelf/internal/grid"
	"smartshelf/internal/uploader"

	"go.uber.org/zap"
)

// GridService 货架网格业务编排
// 把网格内存状态、批量保存与持久化粘合为对外操作
type GridService struct {
	config   *config.Config
	manager  *grid.Manager
	uploader *uploader.Uploader
	logger   *zap.Logger
}

// NewGridService 创建网格服务
func NewGridService(cfg *config.Config, manager *grid.Manager, up *uploader.Uploader, logger *zap.Logger) *GridService {
	return &GridService{
		config:   cfg,
		manager:  manager,
		uploader: up,
		logger:   logger,
	}
}

// Load 装载货架网格
func (s *GridService) Load(ctx context.Context, shelfID string) error {
	return s.manager.LoadShelf(ctx, shelfID)
}

// Assign 分配商品到格子
func (s *GridService) Assign(loadCellID, productID string) error {
	return s.manager.AssignProduct(loadCellID, productID)
}

// Remove 移除格子商品
func (s *GridService) Remove(loadCellID string) error {
	return s.manager.RemoveProduct(loadCellID)
}

// Views 网格视图
func (s *GridService) Views() []grid.CellView {
	return s.manager.Cells()
}

// HasPendingChanges 是否存在未保存编辑
func (s *GridService) HasPendingChanges() bool {
	return s.manager.HasPendingChanges()
}

// Save 批量保存未提交编辑
// 只清除保存成功格子的未保存标记，失败子集保持待保存状态供重试
func (s *GridService) Save(ctx context.Context) ([]uploader.ItemResult, error) {
	cells := s.manager.PendingCells()
	if len(cells) == 0 {
		return nil, fmt.Errorf("no pending changes to save")
	}

	results, err := s.uploader.SaveAll(ctx, cells, s.manager.ProductName)

	var savedIDs []string
	for _, r := range results {
		if r.Success {
			savedIDs = append(savedIDs, r.LoadCellID)
		}
	}
	s.manager.ClearPending(savedIDs...)

	if err != nil {
		return results, err
	}

	s.logger.Info("Pending changes saved", zap.Int("cells", len(cells)))
	return results, nil
}
