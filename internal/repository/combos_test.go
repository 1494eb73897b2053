package repository

import (
	"context"
	"testing"
	"time"

	"smartshelf/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComboRepository_Create(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewComboRepository(db)
	now := time.Now()

	mock.ExpectQuery(`INSERT INTO combos`).
		WillReturnRows(sqlmock.NewRows([]string{"created_at", "updated_at"}).AddRow(now, now))

	combo := &models.Combo{
		ComboName:  "Snack pack",
		Price:      4.5,
		ProductIDs: []string{"p-cola", "p-chips"},
	}
	require.NoError(t, repo.Create(context.Background(), combo))

	assert.NotEmpty(t, combo.ComboID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestComboRepository_CreateValidation(t *testing.T) {
	db, _, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewComboRepository(db)

	err = repo.Create(context.Background(), &models.Combo{Price: 1})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "combo_name is required")

	err = repo.Create(context.Background(), &models.Combo{ComboName: "x", Price: -1})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "price must be non-negative")
}

func TestComboRepository_GetByID(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewComboRepository(db)
	now := time.Now()

	mock.ExpectQuery(`SELECT combo_id, combo_name`).
		WithArgs("cb-1").
		WillReturnRows(sqlmock.NewRows([]string{
			"combo_id", "combo_name", "description", "img_url", "price", "old_price",
			"product_ids", "valid_from", "valid_to", "created_at", "updated_at",
		}).AddRow("cb-1", "Snack pack", "", "", 4.5, nil, []byte(`["p-cola","p-chips"]`), nil, nil, now, now))

	combo, err := repo.GetByID(context.Background(), "cb-1")
	require.NoError(t, err)
	assert.Equal(t, "Snack pack", combo.ComboName)
	assert.Equal(t, []string{"p-cola", "p-chips"}, combo.ProductIDs)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestComboRepository_DeleteNotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewComboRepository(db)

	mock.ExpectExec(`DELETE FROM combos`).
		WithArgs("cb-missing").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err = repo.Delete(context.Background(), "cb-missing")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "combo not found")
}
