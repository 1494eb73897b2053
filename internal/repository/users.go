package repository

import (
	"context"
	"database/sql"
	"fmt"

	"smartshelf/internal/models"

	"github.com/google/uuid"
)

// UserRepository 员工数据访问
type UserRepository struct {
	db *sql.DB
}

// NewUserRepository 创建员工仓库
func NewUserRepository(db *sql.DB) *UserRepository {
	return &UserRepository{db: db}
}

var validRoles = map[string]bool{
	models.RoleAdmin:    true,
	models.RoleManager:  true,
	models.RoleEmployee: true,
}

// Create 创建员工
func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	if user.Username == "" {
		return fmt.Errorf("username is required")
	}
	if user.Role == "" {
		user.Role = models.RoleEmployee
	}
	if !validRoles[user.Role] {
		return fmt.Errorf("invalid role: %s", user.Role)
	}
	if user.UserID == "" {
		user.UserID = uuid.New().String()
	}

	query := `
		INSERT INTO users (user_id, username, full_name, email, phone, role, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NOW(), NOW())
		RETURNING created_at, updated_at`

	err := r.db.QueryRowContext(ctx, query,
		user.UserID,
		user.Username,
		user.FullName,
		user.Email,
		user.Phone,
		user.Role,
		user.IsActive,
	).Scan(&user.CreatedAt, &user.UpdatedAt)

	if err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}

	return nil
}

// GetByID 按 ID 查询员工
func (r *UserRepository) GetByID(ctx context.Context, userID string) (*models.User, error) {
	query := `
		SELECT user_id, username, full_name, email, phone, role, is_active, created_at, updated_at
		FROM users
		WHERE user_id = $1`

	user := &models.User{}
	err := r.db.QueryRowContext(ctx, query, userID).Scan(
		&user.UserID,
		&user.Username,
		&user.FullName,
		&user.Email,
		&user.Phone,
		&user.Role,
		&user.IsActive,
		&user.CreatedAt,
		&user.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("user not found: %s", userID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	return user, nil
}

// List 查询员工列表（role 为空返回全部）
func (r *UserRepository) List(ctx context.Context, role string) ([]*models.User, error) {
	if role != "" && !validRoles[role] {
		return nil, fmt.Errorf("invalid role: %s", role)
	}

	query := `
		SELECT user_id, username, full_name, email, phone, role, is_active, created_at, updated_at
		FROM users
		WHERE ($1 = '' OR role = $1)
		ORDER BY username`

	rows, err := r.db.QueryContext(ctx, query, role)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	defer rows.Close()

	var users []*models.User
	for rows.Next() {
		user := &models.User{}
		if err := rows.Scan(
			&user.UserID,
			&user.Username,
			&user.FullName,
			&user.Email,
			&user.Phone,
			&user.Role,
			&user.IsActive,
			&user.CreatedAt,
			&user.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, user)
	}

	return users, rows.Err()
}

// Update 更新员工
func (r *UserRepository) Update(ctx context.Context, user *models.User) error {
	if user.Username == "" {
		return fmt.Errorf("username is required")
	}
	if !validRoles[user.Role] {
		return fmt.Errorf("invalid role: %s", user.Role)
	}

	query := `
		UPDATE users
		SET username = $2, full_name = $3, email = $4, phone = $5, role = $6, is_active = $7, updated_at = NOW()
		WHERE user_id = $1`

	result, err := r.db.ExecContext(ctx, query,
		user.UserID,
		user.Username,
		user.FullName,
		user.Email,
		user.Phone,
		user.Role,
		user.IsActive,
	)
	if err != nil {
		return fmt.Errorf("failed to update user: %w", err)
	}

	rows, _ := result.RowsAffected()
	if rows == 0 {
		return fmt.Errorf("user not found: %s", user.UserID)
	}

	return nil
}

// Delete 删除员工
func (r *UserRepository) Delete(ctx context.Context, userID string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM users WHERE user_id = $1`, userID)
	if err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}

	rows, _ := result.RowsAffected()
	if rows == 0 {
		return fmt.Errorf("user not found: %s", userID)
	}

	return nil
}
