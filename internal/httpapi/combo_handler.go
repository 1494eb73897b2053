package httpapi

import (
	"net/http"
	"strings"

	"smartshelf/internal/models"
	"smartshelf/internal/repository"

	"go.uber.org/zap"
)

// ComboHandler 商品组合 Handler
type ComboHandler struct {
	combos *repository.ComboRepository
	logger *zap.Logger
}

// NewComboHandler 创建组合 Handler
func NewComboHandler(combos *repository.ComboRepository, logger *zap.Logger) *ComboHandler {
	return &ComboHandler{
		combos: combos,
		logger: logger,
	}
}

// ServeHTTP 实现 http.Handler 接口
func (h *ComboHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	path := r.URL.Path
	switch {
	case path == "/api/v1/combos" && r.Method == http.MethodGet:
		h.ListCombos(w, r)
	case path == "/api/v1/combos" && r.Method == http.MethodPost:
		h.CreateCombo(w, r)
	default:
		comboID := strings.TrimPrefix(path, "/api/v1/combos/")
		if comboID == "" || strings.Contains(comboID, "/") {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		switch r.Method {
		case http.MethodGet:
			h.GetCombo(w, r, comboID)
		case http.MethodPut:
			h.UpdateCombo(w, r, comboID)
		case http.MethodDelete:
			h.DeleteCombo(w, r, comboID)
		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
	}
}

// ListCombos 查询组合列表
func (h *ComboHandler) ListCombos(w http.ResponseWriter, r *http.Request) {
	combos, err := h.combos.List(r.Context())
	if err != nil {
		h.logger.Error("Failed to list combos", zap.Error(err))
		writeJSON(w, http.StatusOK, Fail("failed to list combos"))
		return
	}
	writeJSON(w, http.StatusOK, Ok(combos))
}

// GetCombo 查询单个组合
func (h *ComboHandler) GetCombo(w http.ResponseWriter, r *http.Request, comboID string) {
	combo, err := h.combos.GetByID(r.Context(), comboID)
	if err != nil {
		writeJSON(w, http.StatusOK, Fail(err.Error()))
		return
	}
	writeJSON(w, http.StatusOK, Ok(combo))
}

// CreateCombo 创建组合
func (h *ComboHandler) CreateCombo(w http.ResponseWriter, r *http.Request) {
	var combo models.Combo
	if err := readBodyJSON(r, 1<<20, &combo); err != nil {
		writeJSON(w, http.StatusOK, Fail("invalid request body"))
		return
	}

	if err := h.combos.Create(r.Context(), &combo); err != nil {
		writeJSON(w, http.StatusOK, Fail(err.Error()))
		return
	}
	writeJSON(w, http.StatusOK, Ok(&combo))
}

// UpdateCombo 更新组合
func (h *ComboHandler) UpdateCombo(w http.ResponseWriter, r *http.Request, comboID string) {
	var combo models.Combo
	if err := readBodyJSON(r, 1<<20, &combo); err != nil {
		writeJSON(w, http.StatusOK, Fail("invalid request body"))
		return
	}
	combo.ComboID = comboID

	if err := h.combos.Update(r.Context(), &combo); err != nil {
		writeJSON(w, http.StatusOK, Fail(err.Error()))
		return
	}
	writeJSON(w, http.StatusOK, Ok(&combo))
}

// DeleteCombo 删除组合
func (h *ComboHandler) DeleteCombo(w http.ResponseWriter, r *http.Request, comboID string) {
	if err := h.combos.Delete(r.Context(), comboID); err != nil {
		writeJSON(w, http.StatusOK, Fail(err.Error()))
		return
	}
	writeJSON(w, http.StatusOK, Ok(comboID))
}
