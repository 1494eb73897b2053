package grid

import (
	"context"
	"fmt"
	"sync"

	"smartshelf/internal/config"
	"smartshelf/internal/models"
	"smartshelf/internal/notifier"

	"go.uber.org/zap"
)

// LoadCellStore 格子持久化接口
type LoadCellStore interface {
	GetByShelf(ctx context.Context, shelfID string) ([]*models.LoadCell, error)
}

// ProductStore 商品查询接口
type ProductStore interface {
	List(ctx context.Context) ([]*models.Product, error)
}

// Sender 通知发送接口
type Sender interface {
	SendAsync(req notifier.CreateNotificationRequest)
}

// CellView 格子视图（内存状态 + 实时数量）
type CellView struct {
	Cell           *models.LoadCell `json:"cell"`
	ProductName    string           `json:"product_name,omitempty"`
	Realtime       *int             `json:"realtime_quantity,omitempty"`
	Classification string           `json:"classification"`
	Pending        bool             `json:"pending"`
}

// Manager 货架网格管理器
// 单一持有者：网格状态只在此处变更，全部经互斥锁串行化
type Manager struct {
	config    *config.Config
	cellStore LoadCellStore
	products  ProductStore
	sender    Sender
	logger    *zap.Logger

	mu        sync.RWMutex
	shelfID   string
	cells     []*models.LoadCell        // 行主序，长度 = 层数 x 列数，空位为 nil
	byID      map[string]*models.LoadCell
	catalog   map[string]*models.Product
	realtime  []*int                    // 最近一次遥测数量，未上报为 nil
	lastClass []Classification          // 边沿触发：记录上一次分类
	pending   map[string]bool           // 未保存编辑的格子
}

// NewManager 创建网格管理器
func NewManager(cfg *config.Config, cellStore LoadCellStore, products ProductStore, sender Sender, logger *zap.Logger) *Manager {
	size := cfg.Shelf.Floors * cfg.Shelf.Columns
	return &Manager{
		config:    cfg,
		cellStore: cellStore,
		products:  products,
		sender:    sender,
		logger:    logger,
		cells:     make([]*models.LoadCell, size),
		byID:      make(map[string]*models.LoadCell),
		catalog:   make(map[string]*models.Product),
		realtime:  make([]*int, size),
		lastClass: make([]Classification, size),
		pending:   make(map[string]bool),
	}
}

// LoadShelf 从数据库装载货架网格
// 重新装载会清空实时数量、边沿状态与未保存编辑
func (m *Manager) LoadShelf(ctx context.Context, shelfID string) error {
	cells, err := m.cellStore.GetByShelf(ctx, shelfID)
	if err != nil {
		return fmt.Errorf("failed to load shelf grid: %w", err)
	}

	products, err := m.products.List(ctx)
	if err != nil {
		return fmt.Errorf("failed to load product catalog: %w", err)
	}

	size := m.config.Shelf.Floors * m.config.Shelf.Columns

	m.mu.Lock()
	defer m.mu.Unlock()

	m.shelfID = shelfID
	m.cells = make([]*models.LoadCell, size)
	m.byID = make(map[string]*models.LoadCell, len(cells))
	m.realtime = make([]*int, size)
	m.lastClass = make([]Classification, size)
	m.pending = make(map[string]bool)

	for _, cell := range cells {
		idx := cell.GridIndex(m.config.Shelf.Columns)
		if idx < 0 || idx >= size {
			m.logger.Warn("Skipping load cell outside grid bounds",
				zap.String("load_cell_id", cell.LoadCellID),
				zap.Int("floor", cell.Floor),
				zap.Int("column", cell.Column),
			)
			continue
		}
		m.cells[idx] = cell
		m.byID[cell.LoadCellID] = cell
	}

	m.catalog = make(map[string]*models.Product, len(products))
	for _, p := range products {
		m.catalog[p.ProductID] = p
	}

	m.logger.Info("Shelf grid loaded",
		zap.String("shelf_id", shelfID),
		zap.Int("cells", len(cells)),
		zap.Int("products", len(products)),
	)

	return nil
}

// AssignProduct 分配商品到格子
// 记录原商品到 previous_product_id，数量置 1，标记为未保存编辑
func (m *Manager) AssignProduct(loadCellID, productID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	cell, ok := m.byID[loadCellID]
	if !ok {
		return fmt.Errorf("load cell not found: %s", loadCellID)
	}
	if _, ok := m.catalog[productID]; !ok {
		return fmt.Errorf("product not found: %s", productID)
	}

	cell.PreviousProductID = cell.ProductID
	cell.ProductID = &productID
	cell.Quantity = 1
	m.pending[loadCellID] = true

	return nil
}

// RemoveProduct 从格子移除商品
// 数量置 0，标记为未保存编辑
func (m *Manager) RemoveProduct(loadCellID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	cell, ok := m.byID[loadCellID]
	if !ok {
		return fmt.Errorf("load cell not found: %s", loadCellID)
	}

	cell.PreviousProductID = cell.ProductID
	cell.ProductID = nil
	cell.Quantity = 0
	m.pending[loadCellID] = true

	return nil
}

// ApplyQuantities 应用实时数量向量
// 向量按行主序对齐网格；超出网格的元素忽略，缺失的格子保持原值。
// 分类状态发生变化时触发一次通知（边沿触发，持续异常不重复告警）
func (m *Manager) ApplyQuantities(quantities []int) {
	m.mu.Lock()

	type alert struct {
		cell  *models.LoadCell
		class Classification
		qty   int
	}
	var alerts []alert

	for i, qty := range quantities {
		if i >= len(m.cells) {
			break
		}
		cell := m.cells[i]
		if cell == nil {
			continue
		}

		qty := qty
		m.realtime[i] = &qty

		class := Classify(qty, cell.Threshold, cell.ProductID != nil, m.config)
		if class != m.lastClass[i] && class.IsAlert() {
			copied := *cell
			alerts = append(alerts, alert{cell: &copied, class: class, qty: qty})
		}
		m.lastClass[i] = class
	}

	m.mu.Unlock()

	// 锁外发送通知
	for _, a := range alerts {
		m.logger.Info("Cell state changed",
			zap.String("load_cell_id", a.cell.LoadCellID),
			zap.String("classification", a.class.String()),
			zap.Int("quantity", a.qty),
		)
		m.sender.SendAsync(m.buildNotification(a.cell, a.class, a.qty))
	}
}

// EffectiveQuantity 格子有效数量
// 优先实时遥测值；哨兵编码不代表库存，回退到服务端确认数量
func (m *Manager) EffectiveQuantity(loadCellID string) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	cell, ok := m.byID[loadCellID]
	if !ok {
		return 0, fmt.Errorf("load cell not found: %s", loadCellID)
	}

	idx := cell.GridIndex(m.config.Shelf.Columns)
	if idx >= 0 && idx < len(m.realtime) && m.realtime[idx] != nil {
		if !IsSentinel(*m.realtime[idx], m.config) {
			return *m.realtime[idx], nil
		}
	}

	return cell.Quantity, nil
}

// HasPendingChanges 是否存在未保存编辑
func (m *Manager) HasPendingChanges() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.pending) > 0
}

// PendingCells 返回未保存编辑的格子副本
func (m *Manager) PendingCells() []*models.LoadCell {
	m.mu.RLock()
	defer m.mu.RUnlock()

	cells := make([]*models.LoadCell, 0, len(m.pending))
	for id := range m.pending {
		if cell, ok := m.byID[id]; ok {
			copied := *cell
			cells = append(cells, &copied)
		}
	}
	return cells
}

// ClearPending 清除指定格子的未保存标记（保存成功后调用）
func (m *Manager) ClearPending(loadCellIDs ...string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, id := range loadCellIDs {
		delete(m.pending, id)
	}
}

// ProductName 商品名称（未知商品返回占位名）
func (m *Manager) ProductName(productID *string) string {
	if productID == nil {
		return ""
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	if p, ok := m.catalog[*productID]; ok {
		return p.ProductName
	}
	return "Unknown product"
}

// Cells 返回网格视图（实时快照接口用）
func (m *Manager) Cells() []CellView {
	m.mu.RLock()
	defer m.mu.RUnlock()

	views := make([]CellView, 0, len(m.cells))
	for i, cell := range m.cells {
		if cell == nil {
			continue
		}
		copied := *cell

		view := CellView{
			Cell:           &copied,
			Classification: m.lastClass[i].String(),
			Pending:        m.pending[cell.LoadCellID],
		}
		if cell.ProductID != nil {
			if p, ok := m.catalog[*cell.ProductID]; ok {
				view.ProductName = p.ProductName
			}
		}
		if m.realtime[i] != nil {
			qty := *m.realtime[i]
			view.Realtime = &qty
		}
		views = append(views, view)
	}
	return views
}

// buildNotification 按分类构造通知（需持有读锁外调用，内部查商品名）
func (m *Manager) buildNotification(cell *models.LoadCell, class Classification, quantity int) notifier.CreateNotificationRequest {
	name := m.ProductName(cell.ProductID)

	switch class {
	case ClassOutOfStock:
		return notifier.OutOfStock(cell, name)
	case ClassLow:
		return notifier.LowStock(cell, name, quantity)
	case ClassOverCapacity:
		return notifier.OverCapacity(cell, name)
	case ClassWrongProduct:
		return notifier.WrongProduct(cell, name)
	default:
		return notifier.SensorFault(cell)
	}
}
