package httpapi

import (
	"context"
	"net/http"
	"strings"

	"smartshelf/internal/grid"
	"smartshelf/internal/models"
	"smartshelf/internal/repository"
	"smartshelf/internal/uploader"

	"go.uber.org/zap"
)

// GridService 网格内存操作依赖（由 service.GridService 实现）
type GridService interface {
	Assign(loadCellID, productID string) error
	Remove(loadCellID string) error
	Views() []grid.CellView
	HasPendingChanges() bool
	Save(ctx context.Context) ([]uploader.ItemResult, error)
}

// LoadCellHandler 格子 Handler
// 既提供单格持久化接口，也提供网格内存操作（拖放分配、批量保存）
type LoadCellHandler struct {
	loadCells   *repository.LoadCellRepository
	gridService GridService
	logger      *zap.Logger
}

// NewLoadCellHandler 创建格子 Handler
func NewLoadCellHandler(loadCells *repository.LoadCellRepository, gridService GridService, logger *zap.Logger) *LoadCellHandler {
	return &LoadCellHandler{
		loadCells:   loadCells,
		gridService: gridService,
		logger:      logger,
	}
}

// ServeHTTP 实现 http.Handler 接口
func (h *LoadCellHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	path := r.URL.Path
	switch {
	case path == "/api/v1/grid" && r.Method == http.MethodGet:
		h.GetGrid(w, r)
	case path == "/api/v1/grid/assign" && r.Method == http.MethodPost:
		h.AssignProduct(w, r)
	case path == "/api/v1/grid/remove" && r.Method == http.MethodPost:
		h.RemoveProduct(w, r)
	case path == "/api/v1/grid/save" && r.Method == http.MethodPost:
		h.SavePending(w, r)
	case path == "/api/v1/grid/export" && r.Method == http.MethodGet:
		h.ExportGrid(w, r)

	case strings.HasSuffix(path, "/quantity-threshold") && r.Method == http.MethodPatch:
		if id := loadCellIDFromPath(path, "/quantity-threshold"); id != "" {
			h.UpdateQuantityThreshold(w, r, id)
		} else {
			w.WriteHeader(http.StatusNotFound)
		}
	case strings.HasSuffix(path, "/upload-quantity") && r.Method == http.MethodPatch:
		if id := loadCellIDFromPath(path, "/upload-quantity"); id != "" {
			h.UploadQuantity(w, r, id)
		} else {
			w.WriteHeader(http.StatusNotFound)
		}

	default:
		loadCellID := strings.TrimPrefix(path, "/api/v1/load-cells/")
		if loadCellID == "" || strings.Contains(loadCellID, "/") {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		switch r.Method {
		case http.MethodGet:
			h.GetLoadCell(w, r, loadCellID)
		case http.MethodPut:
			h.UpdateLoadCell(w, r, loadCellID)
		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
	}
}

func loadCellIDFromPath(path, suffix string) string {
	id := strings.TrimSuffix(path, suffix)
	id = strings.TrimPrefix(id, "/api/v1/load-cells/")
	if strings.Contains(id, "/") {
		return ""
	}
	return id
}

// GetGrid 查询网格视图（含实时数量与分类）
func (h *LoadCellHandler) GetGrid(w http.ResponseWriter, r *http.Request) {
	type gridResponse struct {
		Cells   []grid.CellView `json:"cells"`
		Pending bool            `json:"pending"`
	}

	writeJSON(w, http.StatusOK, Ok(gridResponse{
		Cells:   h.gridService.Views(),
		Pending: h.gridService.HasPendingChanges(),
	}))
}

// AssignProduct 拖放分配商品到格子
func (h *LoadCellHandler) AssignProduct(w http.ResponseWriter, r *http.Request) {
	var req struct {
		LoadCellID string `json:"load_cell_id"`
		ProductID  string `json:"product_id"`
	}
	if err := readBodyJSON(r, 1<<20, &req); err != nil || req.LoadCellID == "" || req.ProductID == "" {
		writeJSON(w, http.StatusOK, Fail("load_cell_id and product_id are required"))
		return
	}

	if err := h.gridService.Assign(req.LoadCellID, req.ProductID); err != nil {
		writeJSON(w, http.StatusOK, Fail(err.Error()))
		return
	}
	writeJSON(w, http.StatusOK, Ok(req.LoadCellID))
}

// RemoveProduct 移除格子商品
func (h *LoadCellHandler) RemoveProduct(w http.ResponseWriter, r *http.Request) {
	var req struct {
		LoadCellID string `json:"load_cell_id"`
	}
	if err := readBodyJSON(r, 1<<20, &req); err != nil || req.LoadCellID == "" {
		writeJSON(w, http.StatusOK, Fail("load_cell_id is required"))
		return
	}

	if err := h.gridService.Remove(req.LoadCellID); err != nil {
		writeJSON(w, http.StatusOK, Fail(err.Error()))
		return
	}
	writeJSON(w, http.StatusOK, Ok(req.LoadCellID))
}

// SavePending 批量保存未提交编辑，返回逐格结果
func (h *LoadCellHandler) SavePending(w http.ResponseWriter, r *http.Request) {
	results, err := h.gridService.Save(r.Context())
	if err != nil {
		h.logger.Warn("Batch save finished with failures", zap.Error(err))
		writeJSON(w, http.StatusOK, Result[any]{
			Code:    ResultError,
			Type:    "warning",
			Message: err.Error(),
			Result:  results,
		})
		return
	}
	writeJSON(w, http.StatusOK, Ok(results))
}

// ExportGrid 导出网格库存为 Excel
func (h *LoadCellHandler) ExportGrid(w http.ResponseWriter, r *http.Request) {
	data, err := GenerateLoadCellExport(h.gridService.Views())
	if err != nil {
		h.logger.Error("Failed to generate inventory export", zap.Error(err))
		writeJSON(w, http.StatusOK, Fail("failed to generate export"))
		return
	}

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", "attachment; filename="+ExportFileName())
	_, _ = w.Write(data)
}

// GetLoadCell 查询单个格子
func (h *LoadCellHandler) GetLoadCell(w http.ResponseWriter, r *http.Request, loadCellID string) {
	cell, err := h.loadCells.GetByID(r.Context(), loadCellID)
	if err != nil {
		writeJSON(w, http.StatusOK, Fail(err.Error()))
		return
	}
	writeJSON(w, http.StatusOK, Ok(cell))
}

// UpdateLoadCell 更新格子（商品分配 + 数量 + 阈值）
func (h *LoadCellHandler) UpdateLoadCell(w http.ResponseWriter, r *http.Request, loadCellID string) {
	var cell models.LoadCell
	if err := readBodyJSON(r, 1<<20, &cell); err != nil {
		writeJSON(w, http.StatusOK, Fail("invalid request body"))
		return
	}
	cell.LoadCellID = loadCellID

	if err := h.loadCells.Update(r.Context(), &cell); err != nil {
		writeJSON(w, http.StatusOK, Fail(err.Error()))
		return
	}
	writeJSON(w, http.StatusOK, Ok(&cell))
}

// UpdateQuantityThreshold 更新数量与阈值
func (h *LoadCellHandler) UpdateQuantityThreshold(w http.ResponseWriter, r *http.Request, loadCellID string) {
	var req struct {
		Quantity  int `json:"quantity"`
		Threshold int `json:"threshold"`
	}
	if err := readBodyJSON(r, 1<<20, &req); err != nil {
		writeJSON(w, http.StatusOK, Fail("invalid request body"))
		return
	}

	if err := h.loadCells.UpdateQuantityThreshold(r.Context(), loadCellID, req.Quantity, req.Threshold); err != nil {
		writeJSON(w, http.StatusOK, Fail(err.Error()))
		return
	}
	writeJSON(w, http.StatusOK, Ok(loadCellID))
}

// UploadQuantity 上传实时数量（确认遥测读数为服务端数量）
func (h *LoadCellHandler) UploadQuantity(w http.ResponseWriter, r *http.Request, loadCellID string) {
	var req struct {
		Quantity int `json:"quantity"`
	}
	if err := readBodyJSON(r, 1<<20, &req); err != nil {
		writeJSON(w, http.StatusOK, Fail("invalid request body"))
		return
	}

	if err := h.loadCells.UpdateQuantity(r.Context(), loadCellID, req.Quantity); err != nil {
		writeJSON(w, http.StatusOK, Fail(err.Error()))
		return
	}
	writeJSON(w, http.StatusOK, Ok(loadCellID))
}
