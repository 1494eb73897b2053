package repository

import (
	"context"
	"database/sql"
	"fmt"

	"smartshelf/internal/models"

	"github.com/google/uuid"
)

// LoadCellRepository 载荷传感器格子数据访问
type LoadCellRepository struct {
	db *sql.DB
}

// NewLoadCellRepository 创建格子仓库
func NewLoadCellRepository(db *sql.DB) *LoadCellRepository {
	return &LoadCellRepository{db: db}
}

// Create 创建格子
func (r *LoadCellRepository) Create(ctx context.Context, cell *models.LoadCell) error {
	if cell.ShelfID == "" {
		return fmt.Errorf("shelf_id is required")
	}
	if cell.Floor < 1 || cell.Column < 1 {
		return fmt.Errorf("invalid cell position: floor=%d column=%d", cell.Floor, cell.Column)
	}
	if cell.LoadCellID == "" {
		cell.LoadCellID = uuid.New().String()
	}

	query := `
		INSERT INTO load_cells (load_cell_id, shelf_id, floor_no, column_no, product_id, previous_product_id, quantity, threshold, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW(), NOW())
		RETURNING created_at, updated_at`

	err := r.db.QueryRowContext(ctx, query,
		cell.LoadCellID,
		cell.ShelfID,
		cell.Floor,
		cell.Column,
		cell.ProductID,
		cell.PreviousProductID,
		cell.Quantity,
		cell.Threshold,
	).Scan(&cell.CreatedAt, &cell.UpdatedAt)

	if err != nil {
		return fmt.Errorf("failed to create load cell: %w", err)
	}

	return nil
}

// GetByID 按 ID 查询格子
func (r *LoadCellRepository) GetByID(ctx context.Context, loadCellID string) (*models.LoadCell, error) {
	query := `
		SELECT load_cell_id, shelf_id, floor_no, column_no, product_id, previous_product_id, quantity, threshold, created_at, updated_at
		FROM load_cells
		WHERE load_cell_id = $1`

	cell := &models.LoadCell{}
	err := r.db.QueryRowContext(ctx, query, loadCellID).Scan(
		&cell.LoadCellID,
		&cell.ShelfID,
		&cell.Floor,
		&cell.Column,
		&cell.ProductID,
		&cell.PreviousProductID,
		&cell.Quantity,
		&cell.Threshold,
		&cell.CreatedAt,
		&cell.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("load cell not found: %s", loadCellID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get load cell: %w", err)
	}

	return cell, nil
}

// GetByShelf 查询货架全部格子（按层、列排序，与网格索引一致）
func (r *LoadCellRepository) GetByShelf(ctx context.Context, shelfID string) ([]*models.LoadCell, error) {
	query := `
		SELECT load_cell_id, shelf_id, floor_no, column_no, product_id, previous_product_id, quantity, threshold, created_at, updated_at
		FROM load_cells
		WHERE shelf_id = $1
		ORDER BY floor_no, column_no`

	rows, err := r.db.QueryContext(ctx, query, shelfID)
	if err != nil {
		return nil, fmt.Errorf("failed to list load cells: %w", err)
	}
	defer rows.Close()

	var cells []*models.LoadCell
	for rows.Next() {
		cell := &models.LoadCell{}
		if err := rows.Scan(
			&cell.LoadCellID,
			&cell.ShelfID,
			&cell.Floor,
			&cell.Column,
			&cell.ProductID,
			&cell.PreviousProductID,
			&cell.Quantity,
			&cell.Threshold,
			&cell.CreatedAt,
			&cell.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan load cell: %w", err)
		}
		cells = append(cells, cell)
	}

	return cells, rows.Err()
}

// Update 更新格子（商品分配、数量、阈值）
func (r *LoadCellRepository) Update(ctx context.Context, cell *models.LoadCell) error {
	query := `
		UPDATE load_cells
		SET product_id = $2, previous_product_id = $3, quantity = $4, threshold = $5, updated_at = NOW()
		WHERE load_cell_id = $1`

	result, err := r.db.ExecContext(ctx, query,
		cell.LoadCellID,
		cell.ProductID,
		cell.PreviousProductID,
		cell.Quantity,
		cell.Threshold,
	)
	if err != nil {
		return fmt.Errorf("failed to update load cell: %w", err)
	}

	rows, _ := result.RowsAffected()
	if rows == 0 {
		return fmt.Errorf("load cell not found: %s", cell.LoadCellID)
	}

	return nil
}

// UpdateQuantityThreshold 更新数量与阈值
func (r *LoadCellRepository) UpdateQuantityThreshold(ctx context.Context, loadCellID string, quantity, threshold int) error {
	if quantity < 0 {
		return fmt.Errorf("quantity must be non-negative: %d", quantity)
	}

	query := `
		UPDATE load_cells
		SET quantity = $2, threshold = $3, updated_at = NOW()
		WHERE load_cell_id = $1`

	result, err := r.db.ExecContext(ctx, query, loadCellID, quantity, threshold)
	if err != nil {
		return fmt.Errorf("failed to update load cell quantity: %w", err)
	}

	rows, _ := result.RowsAffected()
	if rows == 0 {
		return fmt.Errorf("load cell not found: %s", loadCellID)
	}

	return nil
}

// UpdateQuantity 上传实时数量（确认最近一次遥测值）
func (r *LoadCellRepository) UpdateQuantity(ctx context.Context, loadCellID string, quantity int) error {
	if quantity < 0 {
		return fmt.Errorf("quantity must be non-negative: %d", quantity)
	}

	query := `
		UPDATE load_cells
		SET quantity = $2, updated_at = NOW()
		WHERE load_cell_id = $1`

	result, err := r.db.ExecContext(ctx, query, loadCellID, quantity)
	if err != nil {
		return fmt.Errorf("failed to update load cell quantity: %w", err)
	}

	rows, _ := result.RowsAffected()
	if rows == 0 {
		return fmt.Errorf("load cell not found: %s", loadCellID)
	}

	return nil
}
