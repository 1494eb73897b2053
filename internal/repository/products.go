package repository

import (
	"context"
	"database/sql"
	"fmt"

	"smartshelf/internal/models"

	"github.com/google/uuid"
)

// ProductRepository 商品数据访问
type ProductRepository struct {
	db *sql.DB
}

// NewProductRepository 创建商品仓库
func NewProductRepository(db *sql.DB) *ProductRepository {
	return &ProductRepository{db: db}
}

// Create 创建商品
func (r *ProductRepository) Create(ctx context.Context, product *models.Product) error {
	if product.ProductName == "" {
		return fmt.Errorf("product_name is required")
	}
	if product.Price < 0 {
		return fmt.Errorf("price must be non-negative: %f", product.Price)
	}
	if product.ProductID == "" {
		product.ProductID = uuid.New().String()
	}

	query := `
		INSERT INTO products (product_id, product_name, img_url, price, stock, weight, discount, max_quantity, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW(), NOW())
		RETURNING created_at, updated_at`

	err := r.db.QueryRowContext(ctx, query,
		product.ProductID,
		product.ProductName,
		product.ImgURL,
		product.Price,
		product.Stock,
		product.Weight,
		product.Discount,
		product.MaxQuantity,
	).Scan(&product.CreatedAt, &product.UpdatedAt)

	if err != nil {
		return fmt.Errorf("failed to create product: %w", err)
	}

	return nil
}

// GetByID 按 ID 查询商品
func (r *ProductRepository) GetByID(ctx context.Context, productID string) (*models.Product, error) {
	query := `
		SELECT product_id, product_name, img_url, price, stock, weight, discount, max_quantity, created_at, updated_at
		FROM products
		WHERE product_id = $1`

	product := &models.Product{}
	err := r.db.QueryRowContext(ctx, query, productID).Scan(
		&product.ProductID,
		&product.ProductName,
		&product.ImgURL,
		&product.Price,
		&product.Stock,
		&product.Weight,
		&product.Discount,
		&product.MaxQuantity,
		&product.CreatedAt,
		&product.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("product not found: %s", productID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get product: %w", err)
	}

	return product, nil
}

// List 查询全部商品
func (r *ProductRepository) List(ctx context.Context) ([]*models.Product, error) {
	query := `
		SELECT product_id, product_name, img_url, price, stock, weight, discount, max_quantity, created_at, updated_at
		FROM products
		ORDER BY product_name`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	defer rows.Close()

	var products []*models.Product
	for rows.Next() {
		product := &models.Product{}
		if err := rows.Scan(
			&product.ProductID,
			&product.ProductName,
			&product.ImgURL,
			&product.Price,
			&product.Stock,
			&product.Weight,
			&product.Discount,
			&product.MaxQuantity,
			&product.CreatedAt,
			&product.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		products = append(products, product)
	}

	return products, rows.Err()
}

// Update 更新商品
func (r *ProductRepository) Update(ctx context.Context, product *models.Product) error {
	if product.Price < 0 {
		return fmt.Errorf("price must be non-negative: %f", product.Price)
	}

	query := `
		UPDATE products
		SET product_name = $2, img_url = $3, price = $4, stock = $5, weight = $6, discount = $7, max_quantity = $8, updated_at = NOW()
		WHERE product_id = $1`

	result, err := r.db.ExecContext(ctx, query,
		product.ProductID,
		product.ProductName,
		product.ImgURL,
		product.Price,
		product.Stock,
		product.Weight,
		product.Discount,
		product.MaxQuantity,
	)
	if err != nil {
		return fmt.Errorf("failed to update product: %w", err)
	}

	rows, _ := result.RowsAffected()
	if rows == 0 {
		return fmt.Errorf("product not found: %s", product.ProductID)
	}

	return nil
}

// Delete 删除商品
func (r *ProductRepository) Delete(ctx context.Context, productID string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM products WHERE product_id = $1`, productID)
	if err != nil {
		return fmt.Errorf("failed to delete product: %w", err)
	}

	rows, _ := result.RowsAffected()
	if rows == 0 {
		return fmt.Errorf("product not found: %s", productID)
	}

	return nil
}
