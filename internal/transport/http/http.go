package httptransport

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/M-505/mitra-da-dhaba-sg/internal/metrics"
	"github.com/M-505/mitra-da-dhaba-sg/internal/service/models/category"
	"github.com/M-505/mitra-da-dhaba-sg/internal/service/models/menuitem"
	"github.com/M-505/mitra-da-dhaba-sg/internal/service/models/order"
	"github.com/M-505/mitra-da-dhaba-sg/internal/service/services/ordersvc"
	"github.com/M-505/mitra-da-dhaba-sg/internal/transport/http/categories"
	createorder "github.com/M-505/mitra-da-dhaba-sg/internal/transport/http/create_order"
	getorder "github.com/M-505/mitra-da-dhaba-sg/internal/transport/http/get_order"
	listorders "github.com/M-505/mitra-da-dhaba-sg/internal/transport/http/list_orders"
	"github.com/M-505/mitra-da-dhaba-sg/internal/transport/http/menu"
	mergeorders "github.com/M-505/mitra-da-dhaba-sg/internal/transport/http/merge_orders"
	mergeableorders "github.com/M-505/mitra-da-dhaba-sg/internal/transport/http/mergeable_orders"
	orderhistory "github.com/M-505/mitra-da-dhaba-sg/internal/transport/http/order_history"
	"github.com/M-505/mitra-da-dhaba-sg/internal/transport/http/respond"
	updateitems "github.com/M-505/mitra-da-dhaba-sg/internal/transport/http/update_items"
	updatestatus "github.com/M-505/mitra-da-dhaba-sg/internal/transport/http/update_status"
	"github.com/M-505/mitra-da-dhaba-sg/pkg/http/middleware/auth"
	"github.com/M-505/mitra-da-dhaba-sg/pkg/http/middleware/trace"
	"github.com/M-505/mitra-da-dhaba-sg/pkg/logger"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/viper"
)

type orderService interface {
	CreateOrder(ctx context.Context, tableNumber int, items []ordersvc.NewItem) (*order.Order, error)
	GetOrderByID(ctx context.Context, id int64) (*order.Order, error)
	GetAllOrders(ctx context.Context, query order.QueryOrdersModel) ([]order.Order, error)
	GetMergeableOrders(ctx context.Context, tableNumber int) ([]order.Order, error)
	GetOrderHistory(ctx context.Context, id int64) ([]order.StatusLogEntry, error)
	UpdateOrderStatus(ctx context.Context, id int64, status order.Status) (*order.Order, error)
	UpdateOrderItems(ctx context.Context, id int64, items []ordersvc.ItemUpdate) (*order.Order, error)
	MergeOrders(ctx context.Context, parentID, childID int64) (*order.Order, error)
}

type menuService interface {
	ListMenuItems(ctx context.Context, query menuitem.QueryMenuItemsModel) ([]menuitem.MenuItem, error)
	GetMenuItem(ctx context.Context, id int64) (menuitem.MenuItem, error)
	CreateMenuItem(ctx context.Context, item menuitem.MenuItem) (menuitem.MenuItem, error)
	UpdateMenuItem(ctx context.Context, id int64, upd menuitem.Update) (menuitem.MenuItem, error)
	DeleteMenuItem(ctx context.Context, id int64) error
	ListCategories(ctx context.Context) ([]category.Category, error)
	CreateCategory(ctx context.Context, c category.Category) (category.Category, error)
	UpdateCategory(ctx context.Context, c category.Category) (category.Category, error)
	DeleteCategory(ctx context.Context, id int64) error
}

type pinger interface {
	Ping(ctx context.Context) error
}

type HTTPTransport struct {
	server    *http.Server
	router    *chi.Mux
	orders    orderService
	menu      menuService
	ws        http.Handler
	db        pinger
	jwtSecret string
}

func NewHTTPTransport(orders orderService, menu menuService, ws http.Handler, db pinger) *HTTPTransport {
	router := newRouter()
	server := newServer(router)
	return &HTTPTransport{
		server:    server,
		router:    router,
		orders:    orders,
		menu:      menu,
		ws:        ws,
		db:        db,
		jwtSecret: viper.GetString("auth.jwt_secret"),
	}
}

func (h *HTTPTransport) Run() error {
	return h.server.ListenAndServe()
}

func (h *HTTPTransport) Shutdown(ctx context.Context) error {
	return h.server.Shutdown(ctx)
}

// Handler exposes the router, mostly for tests.
func (h *HTTPTransport) Handler() http.Handler {
	return h.router
}

// RegisterRoutes registers the routes for the HTTPTransport.
func (h *HTTPTransport) RegisterRoutes() {
	h.router.Get("/health", h.health)
	h.router.Handle("/metrics", promhttp.Handler())
	if h.ws != nil {
		h.router.Handle("/ws", h.ws)
	}

	h.router.Route("/api", func(r chi.Router) {
		r.Get("/orders", h.listOrders)
		r.Post("/orders", h.createOrder)
		r.Get("/orders/mergeable/{tableNumber}", h.mergeableOrders)
		r.Get("/orders/{id}", h.getOrder)
		r.Get("/orders/{id}/history", h.orderHistory)

		r.Get("/menu", h.listMenu)
		r.Get("/menu/category/{id}", h.listMenuByCategory)
		r.Get("/menu/{id}", h.getMenuItem)
		r.Get("/categories", h.listCategories)

		r.Group(func(r chi.Router) {
			r.Use(h.staffOnly)

			r.Patch("/orders/{id}/status", h.updateStatus)
			r.Put("/orders/{id}/status", h.updateStatus)
			r.Patch("/orders/{id}", h.updateItems)
			r.Post("/orders/{parentId}/merge/{childId}", h.mergeOrders)

			r.Post("/menu", h.createMenuItem)
			r.Put("/menu/{id}", h.updateMenuItem)
			r.Delete("/menu/{id}", h.deleteMenuItem)

			r.Post("/categories", h.createCategory)
			r.Put("/categories/{id}", h.updateCategory)
			r.Delete("/categories/{id}", h.deleteCategory)
		})
	})
}

// staffOnly guards cashier and kitchen operations. It is a no-op when auth.jwt_secret is empty.
func (h *HTTPTransport) staffOnly(next http.Handler) http.Handler {
	if h.jwtSecret == "" {
		return next
	}

	return auth.AuthGuard(h.jwtSecret, "staff", "admin")(next)
}

func (h *HTTPTransport) health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if h.db != nil {
		if err := h.db.Ping(ctx); err != nil {
			slog.ErrorContext(r.Context(), "Health check failed", "error", err)
			respond.JSON(w, r, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})

			return
		}
	}

	respond.JSON(w, r, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *HTTPTransport) createOrder(w http.ResponseWriter, r *http.Request) {
	createorder.CreateOrder(w, r, h.orders)
}

func (h *HTTPTransport) listOrders(w http.ResponseWriter, r *http.Request) {
	listorders.ListOrders(w, r, h.orders)
}

func (h *HTTPTransport) getOrder(w http.ResponseWriter, r *http.Request) {
	getorder.GetOrder(w, r, h.orders)
}

func (h *HTTPTransport) orderHistory(w http.ResponseWriter, r *http.Request) {
	orderhistory.OrderHistory(w, r, h.orders)
}

func (h *HTTPTransport) updateStatus(w http.ResponseWriter, r *http.Request) {
	updatestatus.UpdateStatus(w, r, h.orders)
}

func (h *HTTPTransport) updateItems(w http.ResponseWriter, r *http.Request) {
	updateitems.UpdateItems(w, r, h.orders)
}

func (h *HTTPTransport) mergeOrders(w http.ResponseWriter, r *http.Request) {
	mergeorders.MergeOrders(w, r, h.orders)
}

func (h *HTTPTransport) mergeableOrders(w http.ResponseWriter, r *http.Request) {
	mergeableorders.MergeableOrders(w, r, h.orders)
}

func (h *HTTPTransport) listMenu(w http.ResponseWriter, r *http.Request) {
	menu.ListMenu(w, r, h.menu)
}

func (h *HTTPTransport) listMenuByCategory(w http.ResponseWriter, r *http.Request) {
	menu.ListMenuByCategory(w, r, h.menu)
}

func (h *HTTPTransport) getMenuItem(w http.ResponseWriter, r *http.Request) {
	menu.GetMenuItem(w, r, h.menu)
}

func (h *HTTPTransport) createMenuItem(w http.ResponseWriter, r *http.Request) {
	menu.CreateMenuItem(w, r, h.menu)
}

func (h *HTTPTransport) updateMenuItem(w http.ResponseWriter, r *http.Request) {
	menu.UpdateMenuItem(w, r, h.menu)
}

func (h *HTTPTransport) deleteMenuItem(w http.ResponseWriter, r *http.Request) {
	menu.DeleteMenuItem(w, r, h.menu)
}

func (h *HTTPTransport) listCategories(w http.ResponseWriter, r *http.Request) {
	categories.ListCategories(w, r, h.menu)
}

func (h *HTTPTransport) createCategory(w http.ResponseWriter, r *http.Request) {
	categories.CreateCategory(w, r, h.menu)
}

func (h *HTTPTransport) updateCategory(w http.ResponseWriter, r *http.Request) {
	categories.UpdateCategory(w, r, h.menu)
}

func (h *HTTPTransport) deleteCategory(w http.ResponseWriter, r *http.Request) {
	categories.DeleteCategory(w, r, h.menu)
}

func newRouter() *chi.Mux {
	router := chi.NewMux()
	router.Use(middleware.RequestID)
	router.Use(middleware.Recoverer)
	router.Use(logger.NewLoggerMiddleware(slog.Default()))
	router.Use(trace.NewTraceMiddleware)
	router.Use(metrics.NewMetricsMiddleware)

	allowedOrigins := viper.GetStringSlice("server.http.cors.allowed_origins")
	allowedMethods := viper.GetStringSlice("server.http.cors.allowed_methods")
	allowedHeaders := viper.GetStringSlice("server.http.cors.allowed_headers")
	exposedHeaders := viper.GetStringSlice("server.http.cors.exposed_headers")
	allowCredentials := viper.GetBool("server.http.cors.allow_credentials")
	maxAge := viper.GetInt("server.http.cors.max_age")

	c := cors.New(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   allowedMethods,
		AllowedHeaders:   allowedHeaders,
		ExposedHeaders:   exposedHeaders,
		AllowCredentials: allowCredentials,
		MaxAge:           maxAge,
	})

	router.Use(c.Handler)

	return router
}

func newServer(router http.Handler) *http.Server {
	return &http.Server{
		Addr:              "0.0.0.0:" + viper.GetString("server.http.port"),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
}
