package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"smartshelf/internal/models"

	"github.com/google/uuid"
)

// ComboRepository 商品组合数据访问
type ComboRepository struct {
	db *sql.DB
}

// NewComboRepository 创建组合仓库
func NewComboRepository(db *sql.DB) *ComboRepository {
	return &ComboRepository{db: db}
}

// Create 创建组合
func (r *ComboRepository) Create(ctx context.Context, combo *models.Combo) error {
	if combo.ComboName == "" {
		return fmt.Errorf("combo_name is required")
	}
	if combo.Price < 0 {
		return fmt.Errorf("price must be non-negative: %f", combo.Price)
	}
	if combo.ComboID == "" {
		combo.ComboID = uuid.New().String()
	}

	productIDs, err := json.Marshal(combo.ProductIDs)
	if err != nil {
		return fmt.Errorf("failed to encode product ids: %w", err)
	}

	query := `
		INSERT INTO combos (combo_id, combo_name, description, img_url, price, old_price, product_ids, valid_from, valid_to, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, NOW(), NOW())
		RETURNING created_at, updated_at`

	err = r.db.QueryRowContext(ctx, query,
		combo.ComboID,
		combo.ComboName,
		combo.Description,
		combo.ImgURL,
		combo.Price,
		combo.OldPrice,
		productIDs,
		combo.ValidFrom,
		combo.ValidTo,
	).Scan(&combo.CreatedAt, &combo.UpdatedAt)

	if err != nil {
		return fmt.Errorf("failed to create combo: %w", err)
	}

	return nil
}

// GetByID 按 ID 查询组合
func (r *ComboRepository) GetByID(ctx context.Context, comboID string) (*models.Combo, error) {
	query := `
		SELECT combo_id, combo_name, description, img_url, price, old_price, product_ids, valid_from, valid_to, created_at, updated_at
		FROM combos
		WHERE combo_id = $1`

	combo, err := scanCombo(r.db.QueryRowContext(ctx, query, comboID))
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("combo not found: %s", comboID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get combo: %w", err)
	}

	return combo, nil
}

// List 查询全部组合
func (r *ComboRepository) List(ctx context.Context) ([]*models.Combo, error) {
	query := `
		SELECT combo_id, combo_name, description, img_url, price, old_price, product_ids, valid_from, valid_to, created_at, updated_at
		FROM combos
		ORDER BY combo_name`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list combos: %w", err)
	}
	defer rows.Close()

	var combos []*models.Combo
	for rows.Next() {
		combo, err := scanCombo(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan combo: %w", err)
		}
		combos = append(combos, combo)
	}

	return combos, rows.Err()
}

// Update 更新组合
func (r *ComboRepository) Update(ctx context.Context, combo *models.Combo) error {
	if combo.ComboName == "" {
		return fmt.Errorf("combo_name is required")
	}
	if combo.Price < 0 {
		return fmt.Errorf("price must be non-negative: %f", combo.Price)
	}

	productIDs, err := json.Marshal(combo.ProductIDs)
	if err != nil {
		return fmt.Errorf("failed to encode product ids: %w", err)
	}

	query := `
		UPDATE combos
		SET combo_name = $2, description = $3, img_url = $4, price = $5, old_price = $6, product_ids = $7, valid_from = $8, valid_to = $9, updated_at = NOW()
		WHERE combo_id = $1`

	result, err := r.db.ExecContext(ctx, query,
		combo.ComboID,
		combo.ComboName,
		combo.Description,
		combo.ImgURL,
		combo.Price,
		combo.OldPrice,
		productIDs,
		combo.ValidFrom,
		combo.ValidTo,
	)
	if err != nil {
		return fmt.Errorf("failed to update combo: %w", err)
	}

	rows, _ := result.RowsAffected()
	if rows == 0 {
		return fmt.Errorf("combo not found: %s", combo.ComboID)
	}

	return nil
}

// Delete 删除组合
func (r *ComboRepository) Delete(ctx context.Context, comboID string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM combos WHERE combo_id = $1`, comboID)
	if err != nil {
		return fmt.Errorf("failed to delete combo: %w", err)
	}

	rows, _ := result.RowsAffected()
	if rows == 0 {
		return fmt.Errorf("combo not found: %s", comboID)
	}

	return nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

// scanCombo 扫描单行组合（product_ids 为 JSONB 数组）
func scanCombo(row rowScanner) (*models.Combo, error) {
	combo := &models.Combo{}
	var productIDs []byte

	if err := row.Scan(
		&combo.ComboID,
		&combo.ComboName,
		&combo.Description,
		&combo.ImgURL,
		&combo.Price,
		&combo.OldPrice,
		&productIDs,
		&combo.ValidFrom,
		&combo.ValidTo,
		&combo.CreatedAt,
		&combo.UpdatedAt,
	); err != nil {
		return nil, err
	}

	if len(productIDs) > 0 {
		if err := json.Unmarshal(productIDs, &combo.ProductIDs); err != nil {
			return nil, fmt.Errorf("failed to decode product ids: %w", err)
		}
	}

	return combo, nil
}
