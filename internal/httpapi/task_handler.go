package httpapi

import (
	"encoding/json"
	"net/http"
	"strings"

	"smartshelf/internal/models"
	"smartshelf/internal/repository"
	"smartshelf/internal/uploader"

	"go.uber.org/zap"
)

// TaskHandler 补货任务 Handler
// 创建任务时附带最近的变更历史作为上下文（任务分配参考）
type TaskHandler struct {
	tasks    *repository.TaskRepository
	uploader *uploader.Uploader
	logger   *zap.Logger
}

// NewTaskHandler 创建任务 Handler
func NewTaskHandler(tasks *repository.TaskRepository, up *uploader.Uploader, logger *zap.Logger) *TaskHandler {
	return &TaskHandler{
		tasks:    tasks,
		uploader: up,
		logger:   logger,
	}
}

// ServeHTTP 实现 http.Handler 接口
func (h *TaskHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	path := r.URL.Path
	switch {
	case path == "/api/v1/tasks" && r.Method == http.MethodGet:
		h.ListTasks(w, r)
	case path == "/api/v1/tasks" && r.Method == http.MethodPost:
		h.CreateTask(w, r)
	case strings.HasSuffix(path, "/status") && r.Method == http.MethodPut:
		taskID := strings.TrimSuffix(path, "/status")
		taskID = strings.TrimPrefix(taskID, "/api/v1/tasks/")
		if taskID != "" && !strings.Contains(taskID, "/") {
			h.UpdateTaskStatus(w, r, taskID)
		} else {
			w.WriteHeader(http.StatusNotFound)
		}
	default:
		taskID := strings.TrimPrefix(path, "/api/v1/tasks/")
		if taskID != "" && !strings.Contains(taskID, "/") && r.Method == http.MethodGet {
			h.GetTask(w, r, taskID)
			return
		}
		w.WriteHeader(http.StatusNotFound)
	}
}

// ListTasks 查询任务列表（可按状态过滤）
func (h *TaskHandler) ListTasks(w http.ResponseWriter, r *http.Request) {
	status := strings.TrimSpace(r.URL.Query().Get("status"))

	tasks, err := h.tasks.List(r.Context(), status)
	if err != nil {
		writeJSON(w, http.StatusOK, Fail(err.Error()))
		return
	}
	writeJSON(w, http.StatusOK, Ok(tasks))
}

// GetTask 查询单个任务
func (h *TaskHandler) GetTask(w http.ResponseWriter, r *http.Request, taskID string) {
	task, err := h.tasks.GetByID(r.Context(), taskID)
	if err != nil {
		writeJSON(w, http.StatusOK, Fail(err.Error()))
		return
	}
	writeJSON(w, http.StatusOK, Ok(task))
}

// CreateTask 创建任务，自动附带最近的格子变更历史
func (h *TaskHandler) CreateTask(w http.ResponseWriter, r *http.Request) {
	var task models.Task
	if err := readBodyJSON(r, 1<<20, &task); err != nil {
		writeJSON(w, http.StatusOK, Fail("invalid request body"))
		return
	}

	// 变更历史读取失败不阻塞任务创建
	if task.Context == nil {
		history, err := h.uploader.History(r.Context(), 20)
		if err != nil {
			h.logger.Warn("Failed to load change history for task context", zap.Error(err))
		} else if len(history) > 0 {
			if data, err := json.Marshal(history); err == nil {
				task.Context = data
			}
		}
	}

	if err := h.tasks.Create(r.Context(), &task); err != nil {
		writeJSON(w, http.StatusOK, Fail(err.Error()))
		return
	}
	writeJSON(w, http.StatusOK, Ok(&task))
}

// UpdateTaskStatus 更新任务状态
func (h *TaskHandler) UpdateTaskStatus(w http.ResponseWriter, r *http.Request, taskID string) {
	var req struct {
		Status string `json:"status"`
	}
	if err := readBodyJSON(r, 1<<20, &req); err != nil || req.Status == "" {
		writeJSON(w, http.StatusOK, Fail("status is required"))
		return
	}

	if err := h.tasks.UpdateStatus(r.Context(), taskID, req.Status); err != nil {
		writeJSON(w, http.StatusOK, Fail(err.Error()))
		return
	}
	writeJSON(w, http.StatusOK, Ok(taskID))
}
