package grid

import (
	"context"
	"testing"

	"smartshelf/internal/config"
	"smartshelf/internal/models"
	"smartshelf/internal/notifier"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// ============ 测试桩 ============

type fakeCellStore struct {
	cells []*models.LoadCell
}

func (f *fakeCellStore) GetByShelf(ctx context.Context, shelfID string) ([]*models.LoadCell, error) {
	return f.cells, nil
}

type fakeProductStore struct {
	products []*models.Product
}

func (f *fakeProductStore) List(ctx context.Context) ([]*models.Product, error) {
	return f.products, nil
}

type fakeSender struct {
	sent []notifier.CreateNotificationRequest
}

func (f *fakeSender) SendAsync(req notifier.CreateNotificationRequest) {
	f.sent = append(f.sent, req)
}

func strPtr(s string) *string { return &s }

// newTestManager 构造 3x5 网格：前两格分配了商品，其余为空
func newTestManager(t *testing.T) (*Manager, *fakeSender, *config.Config) {
	cfg, err := config.Load()
	require.NoError(t, err)

	cells := []*models.LoadCell{
		{LoadCellID: "lc-1", ShelfID: "shelf-1", Floor: 1, Column: 1, ProductID: strPtr("p-cola"), Quantity: 5, Threshold: 2},
		{LoadCellID: "lc-2", ShelfID: "shelf-1", Floor: 1, Column: 2, ProductID: strPtr("p-chips"), Quantity: 4, Threshold: 2},
		{LoadCellID: "lc-3", ShelfID: "shelf-1", Floor: 1, Column: 3, Quantity: 0, Threshold: 2},
	}
	products := []*models.Product{
		{ProductID: "p-cola", ProductName: "Cola 330ml", MaxQuantity: 10},
		{ProductID: "p-chips", ProductName: "Chips", MaxQuantity: 8},
	}

	sender := &fakeSender{}
	manager := NewManager(cfg, &fakeCellStore{cells: cells}, &fakeProductStore{products: products}, sender, zap.NewNop())
	require.NoError(t, manager.LoadShelf(context.Background(), "shelf-1"))

	return manager, sender, cfg
}

// ============ 分类 ============

func TestClassify(t *testing.T) {
	cfg, err := config.Load()
	require.NoError(t, err)

	// 哨兵编码优先于库存判断
	assert.Equal(t, ClassFault, Classify(255, 2, true, cfg))
	assert.Equal(t, ClassWrongProduct, Classify(222, 2, true, cfg))
	assert.Equal(t, ClassOverCapacity, Classify(200, 2, true, cfg))

	assert.Equal(t, ClassOutOfStock, Classify(0, 2, true, cfg))
	assert.Equal(t, ClassLow, Classify(1, 2, true, cfg))
	// 等于阈值不算低库存
	assert.Equal(t, ClassOk, Classify(2, 2, true, cfg))
	assert.Equal(t, ClassOk, Classify(3, 2, true, cfg))

	// 未分配商品的格子不告警
	assert.Equal(t, ClassOk, Classify(0, 2, false, cfg))

	// 哨兵编码对空格子仍然生效（硬件故障与商品无关）
	assert.Equal(t, ClassFault, Classify(255, 2, false, cfg))
}

func TestClassify_ConfigurableSentinels(t *testing.T) {
	cfg, err := config.Load()
	require.NoError(t, err)
	cfg.Shelf.Sentinels.LoadCellFault = 999

	assert.Equal(t, ClassFault, Classify(999, 2, true, cfg))
	// 255 不再是哨兵，落入普通库存判断
	assert.Equal(t, ClassOk, Classify(255, 2, true, cfg))
}

// ============ 商品分配 ============

func TestManager_AssignProduct(t *testing.T) {
	manager, _, _ := newTestManager(t)

	require.NoError(t, manager.AssignProduct("lc-3", "p-cola"))

	cells := manager.PendingCells()
	require.Len(t, cells, 1)
	assert.Equal(t, "lc-3", cells[0].LoadCellID)
	require.NotNil(t, cells[0].ProductID)
	assert.Equal(t, "p-cola", *cells[0].ProductID)
	assert.Equal(t, 1, cells[0].Quantity)
	assert.Nil(t, cells[0].PreviousProductID)
	assert.True(t, manager.HasPendingChanges())
}

func TestManager_AssignProductShiftsPrevious(t *testing.T) {
	manager, _, _ := newTestManager(t)

	require.NoError(t, manager.AssignProduct("lc-1", "p-chips"))

	cells := manager.PendingCells()
	require.Len(t, cells, 1)
	require.NotNil(t, cells[0].PreviousProductID)
	assert.Equal(t, "p-cola", *cells[0].PreviousProductID)
	assert.Equal(t, "p-chips", *cells[0].ProductID)
	assert.Equal(t, 1, cells[0].Quantity)
}

func TestManager_AssignProductValidation(t *testing.T) {
	manager, _, _ := newTestManager(t)

	err := manager.AssignProduct("missing", "p-cola")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "load cell not found")

	err = manager.AssignProduct("lc-1", "p-missing")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "product not found")
}

func TestManager_ReassignThenRemoveChainsPrevious(t *testing.T) {
	manager, _, _ := newTestManager(t)

	// 连续换品后移除：previousProductId 始终指向最近一次实际放置的商品
	require.NoError(t, manager.AssignProduct("lc-3", "p-cola"))
	require.NoError(t, manager.AssignProduct("lc-3", "p-chips"))
	require.NoError(t, manager.RemoveProduct("lc-3"))

	cells := manager.PendingCells()
	require.Len(t, cells, 1)
	assert.Nil(t, cells[0].ProductID)
	require.NotNil(t, cells[0].PreviousProductID)
	assert.Equal(t, "p-chips", *cells[0].PreviousProductID)
	assert.Equal(t, 0, cells[0].Quantity)
}

func TestManager_RemoveProduct(t *testing.T) {
	manager, _, _ := newTestManager(t)

	require.NoError(t, manager.RemoveProduct("lc-1"))

	cells := manager.PendingCells()
	require.Len(t, cells, 1)
	assert.Nil(t, cells[0].ProductID)
	require.NotNil(t, cells[0].PreviousProductID)
	assert.Equal(t, "p-cola", *cells[0].PreviousProductID)
	assert.Equal(t, 0, cells[0].Quantity)
}

func TestManager_ClearPending(t *testing.T) {
	manager, _, _ := newTestManager(t)

	require.NoError(t, manager.AssignProduct("lc-1", "p-chips"))
	require.NoError(t, manager.RemoveProduct("lc-2"))
	require.True(t, manager.HasPendingChanges())

	manager.ClearPending("lc-1", "lc-2")
	assert.False(t, manager.HasPendingChanges())
}

// ============ 实时数量与边沿触发 ============

func TestManager_ApplyQuantitiesEdgeTriggered(t *testing.T) {
	manager, sender, _ := newTestManager(t)

	// lc-1 缺货：首次触发通知
	manager.ApplyQuantities([]int{0, 4, 3})
	require.Len(t, sender.sent, 1)
	assert.Contains(t, sender.sent[0].Message, "out of stock")
	assert.Contains(t, sender.sent[0].Message, "Cola 330ml")

	// 持续缺货：不重复告警
	manager.ApplyQuantities([]int{0, 4, 3})
	assert.Len(t, sender.sent, 1)

	// 恢复后再次缺货：重新触发
	manager.ApplyQuantities([]int{5, 4, 3})
	manager.ApplyQuantities([]int{0, 4, 3})
	assert.Len(t, sender.sent, 2)
}

func TestManager_ApplyQuantitiesSentinelAlerts(t *testing.T) {
	manager, sender, _ := newTestManager(t)

	manager.ApplyQuantities([]int{255, 222, 3})

	require.Len(t, sender.sent, 2)
	assert.Contains(t, sender.sent[0].Message, "Load cell fault")
	assert.Contains(t, sender.sent[1].Message, "Wrong product")
}

func TestManager_ApplyQuantitiesIgnoresOutOfGrid(t *testing.T) {
	manager, sender, cfg := newTestManager(t)

	// 超出网格长度的元素忽略，不会 panic
	long := make([]int, cfg.Shelf.Floors*cfg.Shelf.Columns+10)
	for i := range long {
		long[i] = 5
	}
	manager.ApplyQuantities(long)
	assert.Empty(t, sender.sent)
}

func TestManager_EffectiveQuantity(t *testing.T) {
	manager, _, _ := newTestManager(t)

	// 未上报实时值：回退服务端确认数量
	qty, err := manager.EffectiveQuantity("lc-1")
	require.NoError(t, err)
	assert.Equal(t, 5, qty)

	// 实时值优先
	manager.ApplyQuantities([]int{3, 4, 0})
	qty, err = manager.EffectiveQuantity("lc-1")
	require.NoError(t, err)
	assert.Equal(t, 3, qty)

	// 哨兵编码不代表库存，回退确认数量
	manager.ApplyQuantities([]int{255, 4, 0})
	qty, err = manager.EffectiveQuantity("lc-1")
	require.NoError(t, err)
	assert.Equal(t, 5, qty)
}

// ============ 网格视图 ============

func TestManager_Cells(t *testing.T) {
	manager, _, _ := newTestManager(t)

	manager.ApplyQuantities([]int{1, 4, 0})
	require.NoError(t, manager.AssignProduct("lc-3", "p-chips"))

	views := manager.Cells()
	require.Len(t, views, 3)

	assert.Equal(t, "Cola 330ml", views[0].ProductName)
	assert.Equal(t, "low_stock", views[0].Classification)
	require.NotNil(t, views[0].Realtime)
	assert.Equal(t, 1, *views[0].Realtime)
	assert.False(t, views[0].Pending)

	assert.True(t, views[2].Pending)
}
