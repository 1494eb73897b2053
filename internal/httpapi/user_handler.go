package httpapi

import (
	"net/http"
	"strings"

	"smartshelf/internal/models"
	"smartshelf/internal/repository"

	"go.uber.org/zap"
)

// UserHandler 员工 Handler
type UserHandler struct {
	users  *repository.UserRepository
	logger *zap.Logger
}

// NewUserHandler 创建员工 Handler
func NewUserHandler(users *repository.UserRepository, logger *zap.Logger) *UserHandler {
	return &UserHandler{
		users:  users,
		logger: logger,
	}
}

// ServeHTTP 实现 http.Handler 接口
func (h *UserHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	path := r.URL.Path
	switch {
	case path == "/api/v1/users" && r.Method == http.MethodGet:
		h.ListUsers(w, r)
	case path == "/api/v1/users" && r.Method == http.MethodPost:
		h.CreateUser(w, r)
	default:
		userID := strings.TrimPrefix(path, "/api/v1/users/")
		if userID == "" || strings.Contains(userID, "/") {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		switch r.Method {
		case http.MethodGet:
			h.GetUser(w, r, userID)
		case http.MethodPut:
			h.UpdateUser(w, r, userID)
		case http.MethodDelete:
			h.DeleteUser(w, r, userID)
		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
	}
}

// ListUsers 查询员工列表（支持 role 过滤）
func (h *UserHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.users.List(r.Context(), r.URL.Query().Get("role"))
	if err != nil {
		h.logger.Error("Failed to list users", zap.Error(err))
		writeJSON(w, http.StatusOK, Fail(err.Error()))
		return
	}
	writeJSON(w, http.StatusOK, Ok(users))
}

// GetUser 查询单个员工
func (h *UserHandler) GetUser(w http.ResponseWriter, r *http.Request, userID string) {
	user, err := h.users.GetByID(r.Context(), userID)
	if err != nil {
		writeJSON(w, http.StatusOK, Fail(err.Error()))
		return
	}
	writeJSON(w, http.StatusOK, Ok(user))
}

// CreateUser 创建员工
func (h *UserHandler) CreateUser(w http.ResponseWriter, r *http.Request) {
	var user models.User
	if err := readBodyJSON(r, 1<<20, &user); err != nil {
		writeJSON(w, http.StatusOK, Fail("invalid request body"))
		return
	}

	if err := h.users.Create(r.Context(), &user); err != nil {
		writeJSON(w, http.StatusOK, Fail(err.Error()))
		return
	}
	writeJSON(w, http.StatusOK, Ok(&user))
}

// UpdateUser 更新员工
func (h *UserHandler) UpdateUser(w http.ResponseWriter, r *http.Request, userID string) {
	var user models.User
	if err := readBodyJSON(r, 1<<20, &user); err != nil {
		writeJSON(w, http.StatusOK, Fail("invalid request body"))
		return
	}
	user.UserID = userID

	if err := h.users.Update(r.Context(), &user); err != nil {
		writeJSON(w, http.StatusOK, Fail(err.Error()))
		return
	}
	writeJSON(w, http.StatusOK, Ok(&user))
}

// DeleteUser 删除员工
func (h *UserHandler) DeleteUser(w http.ResponseWriter, r *http.Request, userID string) {
	if err := h.users.Delete(r.Context(), userID); err != nil {
		writeJSON(w, http.StatusOK, Fail(err.Error()))
		return
	}
	writeJSON(w, http.StatusOK, Ok(userID))
}
