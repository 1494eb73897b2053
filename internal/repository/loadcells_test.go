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

func loadCellColumns() []string {
	return []string{
		"load_cell_id", "shelf_id", "floor_no", "column_no",
		"product_id", "previous_product_id", "quantity", "threshold",
		"created_at", "updated_at",
	}
}

func TestLoadCellRepository_GetByShelf(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewLoadCellRepository(db)
	now := time.Now()
	productID := "p-1"

	rows := sqlmock.NewRows(loadCellColumns()).
		AddRow("lc-1", "shelf-1", 1, 1, productID, nil, 5, 2, now, now).
		AddRow("lc-2", "shelf-1", 1, 2, nil, nil, 0, 2, now, now)

	mock.ExpectQuery(`SELECT load_cell_id, shelf_id, floor_no, column_no`).
		WithArgs("shelf-1").
		WillReturnRows(rows)

	cells, err := repo.GetByShelf(context.Background(), "shelf-1")
	require.NoError(t, err)
	require.Len(t, cells, 2)

	assert.Equal(t, "lc-1", cells[0].LoadCellID)
	require.NotNil(t, cells[0].ProductID)
	assert.Equal(t, "p-1", *cells[0].ProductID)
	assert.Equal(t, 5, cells[0].Quantity)

	assert.Nil(t, cells[1].ProductID)
	assert.Equal(t, 1, cells[1].GridIndex(5)) // floor 1 column 2 -> index 1
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLoadCellRepository_Update(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewLoadCellRepository(db)
	productID := "p-2"
	previousID := "p-1"
	cell := &models.LoadCell{
		LoadCellID:        "lc-1",
		ProductID:         &productID,
		PreviousProductID: &previousID,
		Quantity:          1,
		Threshold:         3,
	}

	mock.ExpectExec(`UPDATE load_cells`).
		WithArgs("lc-1", &productID, &previousID, 1, 3).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.Update(context.Background(), cell))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLoadCellRepository_UpdateNotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewLoadCellRepository(db)

	mock.ExpectExec(`UPDATE load_cells`).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err = repo.Update(context.Background(), &models.LoadCell{LoadCellID: "missing"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestLoadCellRepository_UpdateQuantityRejectsNegative(t *testing.T) {
	db, _, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewLoadCellRepository(db)

	err = repo.UpdateQuantity(context.Background(), "lc-1", -1)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "non-negative")
}

func TestLoadCellRepository_CreateValidatesPosition(t *testing.T) {
	db, _, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewLoadCellRepository(db)

	err = repo.Create(context.Background(), &models.LoadCell{ShelfID: "shelf-1", Floor: 0, Column: 1})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid cell position")
}
