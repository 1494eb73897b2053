package httpapi

import (
	"net/http"

	"go.uber.org/zap"
)

// Router 使用标准库 http.ServeMux（避免引入第三方路由依赖）
type Router struct {
	mux    *http.ServeMux
	logger *zap.Logger
}

// NewRouter 创建路由器
func NewRouter(logger *zap.Logger) *Router {
	return &Router{
		mux:    http.NewServeMux(),
		logger: logger,
	}
}

func (r *Router) Handle(pattern string, h http.HandlerFunc) {
	r.mux.HandleFunc(pattern, h)
}

// HandleHandler 支持 http.Handler 接口
func (r *Router) HandleHandler(pattern string, h http.Handler) {
	r.mux.Handle(pattern, h)
}

func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.mux.ServeHTTP(w, req)
}

// RegisterRoutes 注册全部业务路由
func (r *Router) RegisterRoutes(
	shelves *ShelfHandler,
	loadCells *LoadCellHandler,
	products *ProductHandler,
	combos *ComboHandler,
	notifications *NotificationHandler,
	tasks *TaskHandler,
	users *UserHandler,
	realtime *RealtimeHandler,
	hub *Hub,
) {
	r.HandleHandler("/api/v1/shelves", shelves)
	r.HandleHandler("/api/v1/shelves/", shelves)

	r.HandleHandler("/api/v1/grid", loadCells)
	r.HandleHandler("/api/v1/grid/", loadCells)
	r.HandleHandler("/api/v1/load-cells/", loadCells)

	r.HandleHandler("/api/v1/products", products)
	r.HandleHandler("/api/v1/products/", products)

	r.HandleHandler("/api/v1/combos", combos)
	r.HandleHandler("/api/v1/combos/", combos)

	r.HandleHandler("/api/v1/notifications", notifications)
	r.HandleHandler("/api/v1/notifications/", notifications)

	r.HandleHandler("/api/v1/tasks", tasks)
	r.HandleHandler("/api/v1/tasks/", tasks)

	r.HandleHandler("/api/v1/users", users)
	r.HandleHandler("/api/v1/users/", users)

	r.HandleHandler("/api/v1/realtime", realtime)

	r.Handle("/ws", hub.ServeWs)

	r.Handle("/healthz", func(w http.ResponseWriter, req *http.Request) {
		writeJSON(w, http.StatusOK, Ok("ok"))
	})
}
