package httpapi

import (
	"net/http"
	"strings"

	"smartshelf/internal/models"
	"smartshelf/internal/repository"

	"go.uber.org/zap"
)

// ShelfHandler 货架 Handler
type ShelfHandler struct {
	shelves   *repository.ShelfRepository
	loadCells *repository.LoadCellRepository
	logger    *zap.Logger
}

// NewShelfHandler 创建货架 Handler
func NewShelfHandler(shelves *repository.ShelfRepository, loadCells *repository.LoadCellRepository, logger *zap.Logger) *ShelfHandler {
	return &ShelfHandler{
		shelves:   shelves,
		loadCells: loadCells,
		logger:    logger,
	}
}

// ServeHTTP 实现 http.Handler 接口
func (h *ShelfHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	path := r.URL.Path
	switch {
	case path == "/api/v1/shelves" && r.Method == http.MethodGet:
		h.ListShelves(w, r)
	case path == "/api/v1/shelves" && r.Method == http.MethodPost:
		h.CreateShelf(w, r)
	case strings.HasSuffix(path, "/load-cells") && r.Method == http.MethodGet:
		shelfID := strings.TrimSuffix(path, "/load-cells")
		shelfID = strings.TrimPrefix(shelfID, "/api/v1/shelves/")
		if shelfID != "" && !strings.Contains(shelfID, "/") {
			h.ListShelfLoadCells(w, r, shelfID)
		} else {
			w.WriteHeader(http.StatusNotFound)
		}
	default:
		shelfID := strings.TrimPrefix(path, "/api/v1/shelves/")
		if shelfID == "" || strings.Contains(shelfID, "/") {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		switch r.Method {
		case http.MethodGet:
			h.GetShelf(w, r, shelfID)
		case http.MethodPut:
			h.UpdateShelf(w, r, shelfID)
		case http.MethodDelete:
			h.DeleteShelf(w, r, shelfID)
		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
	}
}

// ListShelves 查询货架列表
func (h *ShelfHandler) ListShelves(w http.ResponseWriter, r *http.Request) {
	shelves, err := h.shelves.List(r.Context())
	if err != nil {
		h.logger.Error("Failed to list shelves", zap.Error(err))
		writeJSON(w, http.StatusOK, Fail("failed to list shelves"))
		return
	}
	writeJSON(w, http.StatusOK, Ok(shelves))
}

// GetShelf 查询单个货架
func (h *ShelfHandler) GetShelf(w http.ResponseWriter, r *http.Request, shelfID string) {
	shelf, err := h.shelves.GetByID(r.Context(), shelfID)
	if err != nil {
		writeJSON(w, http.StatusOK, Fail(err.Error()))
		return
	}
	writeJSON(w, http.StatusOK, Ok(shelf))
}

// ListShelfLoadCells 查询货架全部格子
func (h *ShelfHandler) ListShelfLoadCells(w http.ResponseWriter, r *http.Request, shelfID string) {
	cells, err := h.loadCells.GetByShelf(r.Context(), shelfID)
	if err != nil {
		h.logger.Error("Failed to list load cells", zap.String("shelf_id", shelfID), zap.Error(err))
		writeJSON(w, http.StatusOK, Fail("failed to list load cells"))
		return
	}
	writeJSON(w, http.StatusOK, Ok(cells))
}

// CreateShelf 创建货架
func (h *ShelfHandler) CreateShelf(w http.ResponseWriter, r *http.Request) {
	var shelf models.Shelf
	if err := readBodyJSON(r, 1<<20, &shelf); err != nil {
		writeJSON(w, http.StatusOK, Fail("invalid request body"))
		return
	}

	if err := h.shelves.Create(r.Context(), &shelf); err != nil {
		writeJSON(w, http.StatusOK, Fail(err.Error()))
		return
	}
	writeJSON(w, http.StatusOK, Ok(&shelf))
}

// UpdateShelf 更新货架
func (h *ShelfHandler) UpdateShelf(w http.ResponseWriter, r *http.Request, shelfID string) {
	var shelf models.Shelf
	if err := readBodyJSON(r, 1<<20, &shelf); err != nil {
		writeJSON(w, http.StatusOK, Fail("invalid request body"))
		return
	}
	shelf.ShelfID = shelfID

	if err := h.shelves.Update(r.Context(), &shelf); err != nil {
		writeJSON(w, http.StatusOK, Fail(err.Error()))
		return
	}
	writeJSON(w, http.StatusOK, Ok(&shelf))
}

// DeleteShelf 删除货架（格子随货架级联删除）
func (h *ShelfHandler) DeleteShelf(w http.ResponseWriter, r *http.Request, shelfID string) {
	if err := h.shelves.Delete(r.Context(), shelfID); err != nil {
		writeJSON(w, http.StatusOK, Fail(err.Error()))
		return
	}
	writeJSON(w, http.StatusOK, Ok(shelfID))
}
