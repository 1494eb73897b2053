package repository

import (
	"context"
	"database/sql"
	"fmt"

	"smartshelf/internal/models"

	"github.com/google/uuid"
)

// ShelfRepository 货架数据访问
type ShelfRepository struct {
	db *sql.DB
}

// NewShelfRepository 创建货架仓库
func NewShelfRepository(db *sql.DB) *ShelfRepository {
	return &ShelfRepository{db: db}
}

// Create 创建货架
func (r *ShelfRepository) Create(ctx context.Context, shelf *models.Shelf) error {
	if shelf.ShelfName == "" {
		return fmt.Errorf("shelf_name is required")
	}
	if shelf.ShelfID == "" {
		shelf.ShelfID = uuid.New().String()
	}

	query := `
		INSERT INTO shelves (shelf_id, shelf_name, location, mac_ip, user_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, NOW(), NOW())
		RETURNING created_at, updated_at`

	err := r.db.QueryRowContext(ctx, query,
		shelf.ShelfID,
		shelf.ShelfName,
		shelf.Location,
		shelf.MacIP,
		shelf.UserID,
	).Scan(&shelf.CreatedAt, &shelf.UpdatedAt)

	if err != nil {
		return fmt.Errorf("failed to create shelf: %w", err)
	}

	return nil
}

// GetByID 按 ID 查询货架
func (r *ShelfRepository) GetByID(ctx context.Context, shelfID string) (*models.Shelf, error) {
	query := `
		SELECT shelf_id, shelf_name, location, mac_ip, user_id, created_at, updated_at
		FROM shelves
		WHERE shelf_id = $1`

	shelf := &models.Shelf{}
	err := r.db.QueryRowContext(ctx, query, shelfID).Scan(
		&shelf.ShelfID,
		&shelf.ShelfName,
		&shelf.Location,
		&shelf.MacIP,
		&shelf.UserID,
		&shelf.CreatedAt,
		&shelf.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("shelf not found: %s", shelfID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get shelf: %w", err)
	}

	return shelf, nil
}

// List 查询全部货架
func (r *ShelfRepository) List(ctx context.Context) ([]*models.Shelf, error) {
	query := `
		SELECT shelf_id, shelf_name, location, mac_ip, user_id, created_at, updated_at
		FROM shelves
		ORDER BY created_at`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list shelves: %w", err)
	}
	defer rows.Close()

	var shelves []*models.Shelf
	for rows.Next() {
		shelf := &models.Shelf{}
		if err := rows.Scan(
			&shelf.ShelfID,
			&shelf.ShelfName,
			&shelf.Location,
			&shelf.MacIP,
			&shelf.UserID,
			&shelf.CreatedAt,
			&shelf.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan shelf: %w", err)
		}
		shelves = append(shelves, shelf)
	}

	return shelves, rows.Err()
}

// Update 更新货架
func (r *ShelfRepository) Update(ctx context.Context, shelf *models.Shelf) error {
	query := `
		UPDATE shelves
		SET shelf_name = $2, location = $3, mac_ip = $4, user_id = $5, updated_at = NOW()
		WHERE shelf_id = $1`

	result, err := r.db.ExecContext(ctx, query,
		shelf.ShelfID,
		shelf.ShelfName,
		shelf.Location,
		shelf.MacIP,
		shelf.UserID,
	)
	if err != nil {
		return fmt.Errorf("failed to update shelf: %w", err)
	}

	rows, _ := result.RowsAffected()
	if rows == 0 {
		return fmt.Errorf("shelf not found: %s", shelf.ShelfID)
	}

	return nil
}

// Delete 删除货架
func (r *ShelfRepository) Delete(ctx context.Context, shelfID string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM shelves WHERE shelf_id = $1`, shelfID)
	if err != nil {
		return fmt.Errorf("failed to delete shelf: %w", err)
	}

	rows, _ := result.RowsAffected()
	if rows == 0 {
		return fmt.Errorf("shelf not found: %s", shelfID)
	}

	return nil
}
