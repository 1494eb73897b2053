package httpapi

import (
	"net/http"
	"strings"

	"smartshelf/internal/models"
	"smartshelf/internal/repository"

	"go.uber.org/zap"
)

// ProductHandler 商品 Handler
type ProductHandler struct {
	products *repository.ProductRepository
	logger   *zap.Logger
}

// NewProductHandler 创建商品 Handler
func NewProductHandler(products *repository.ProductRepository, logger *zap.Logger) *ProductHandler {
	return &ProductHandler{
		products: products,
		logger:   logger,
	}
}

// ServeHTTP 实现 http.Handler 接口
func (h *ProductHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	path := r.URL.Path
	switch {
	case path == "/api/v1/products" && r.Method == http.MethodGet:
		h.ListProducts(w, r)
	case path == "/api/v1/products" && r.Method == http.MethodPost:
		h.CreateProduct(w, r)
	default:
		productID := strings.TrimPrefix(path, "/api/v1/products/")
		if productID == "" || strings.Contains(productID, "/") {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		switch r.Method {
		case http.MethodGet:
			h.GetProduct(w, r, productID)
		case http.MethodPut:
			h.UpdateProduct(w, r, productID)
		case http.MethodDelete:
			h.DeleteProduct(w, r, productID)
		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
	}
}

// ListProducts 查询商品列表
func (h *ProductHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.products.List(r.Context())
	if err != nil {
		h.logger.Error("Failed to list products", zap.Error(err))
		writeJSON(w, http.StatusOK, Fail("failed to list products"))
		return
	}
	writeJSON(w, http.StatusOK, Ok(products))
}

// GetProduct 查询单个商品
func (h *ProductHandler) GetProduct(w http.ResponseWriter, r *http.Request, productID string) {
	product, err := h.products.GetByID(r.Context(), productID)
	if err != nil {
		writeJSON(w, http.StatusOK, Fail(err.Error()))
		return
	}
	writeJSON(w, http.StatusOK, Ok(product))
}

// CreateProduct 创建商品
func (h *ProductHandler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	var product models.Product
	if err := readBodyJSON(r, 1<<20, &product); err != nil {
		writeJSON(w, http.StatusOK, Fail("invalid request body"))
		return
	}

	if err := h.products.Create(r.Context(), &product); err != nil {
		writeJSON(w, http.StatusOK, Fail(err.Error()))
		return
	}
	writeJSON(w, http.StatusOK, Ok(&product))
}

// UpdateProduct 更新商品
func (h *ProductHandler) UpdateProduct(w http.ResponseWriter, r *http.Request, productID string) {
	var product models.Product
	if err := readBodyJSON(r, 1<<20, &product); err != nil {
		writeJSON(w, http.StatusOK, Fail("invalid request body"))
		return
	}
	product.ProductID = productID

	if err := h.products.Update(r.Context(), &product); err != nil {
		writeJSON(w, http.StatusOK, Fail(err.Error()))
		return
	}
	writeJSON(w, http.StatusOK, Ok(&product))
}

// DeleteProduct 删除商品
func (h *ProductHandler) DeleteProduct(w http.ResponseWriter, r *http.Request, productID string) {
	if err := h.products.Delete(r.Context(), productID); err != nil {
		writeJSON(w, http.StatusOK, Fail(err.Error()))
		return
	}
	writeJSON(w, http.StatusOK, Ok(productID))
}
