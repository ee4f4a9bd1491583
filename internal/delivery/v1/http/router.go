package http

import (
	"context"
	"fmt"
	"net/http"
	"time"

	_ "github.com/DRSN-tech/inventory-backend/docs" // Регистрация swagger-спецификации
	"github.com/DRSN-tech/inventory-backend/internal/usecase"
	"github.com/DRSN-tech/inventory-backend/pkg/logger"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	httpSwagger "github.com/swaggo/http-swagger/v2"
)

// HealthChecker проверяет зависимость, без которой сервис не работает.
type HealthChecker interface {
	Ping(ctx context.Context) error
}

type Router struct {
	router       *chi.Mux
	logger       logger.Logger
	swaggerHost  string
	defaultLimit int
}

func NewRouter(router *chi.Mux, logger logger.Logger, swaggerHost string) *Router {
	return &Router{router: router, logger: logger, swaggerHost: swaggerHost, defaultLimit: defaultLimit}
}

// WithDefaultLimit задаёт размер страницы, когда limit не передан.
func (r *Router) WithDefaultLimit(limit int) *Router {
	r.defaultLimit = limit
	return r
}

func (r *Router) Init(
	prUC usecase.ProductUC,
	invUC usecase.InventoryUC,
	adjUC usecase.AdjustmentUC,
	txUC usecase.TransactionUC,
	health HealthChecker,
) {
	r.router.Use(middleware.RequestID)
	r.router.Use(middleware.RealIP)
	r.router.Use(r.requestLogger)
	r.router.Use(middleware.Recoverer)

	r.router.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL(fmt.Sprintf("http://%s/swagger/doc.json", r.swaggerHost)),
	))
	r.router.Get("/healthz", healthHandler(health))

	r.router.Route("/api/v1", func(v1 chi.Router) {
		registerProductRoutes(v1, NewProductHandler(prUC, r.defaultLimit, r.logger))
		registerInventoryRoutes(v1, NewInventoryHandler(invUC, adjUC, r.defaultLimit, r.logger))
		registerTransactionRoutes(v1, NewTransactionHandler(txUC, r.defaultLimit, r.logger))
	})
}

func registerProductRoutes(router chi.Router, h *ProductHandler) {
	router.Route("/products", func(pr chi.Router) {
		pr.Post("/", h.createProduct)
		pr.Get("/", h.listProducts)
		pr.Get("/{id}", h.getProduct)
		pr.Put("/{id}", h.updateProduct)
		pr.Delete("/{id}", h.deleteProduct)
	})
}

func registerInventoryRoutes(router chi.Router, h *InventoryHandler) {
	router.Route("/inventory", func(inv chi.Router) {
		inv.Post("/", h.createInventory)
		inv.Get("/", h.listInventory)
		inv.Get("/low-stock", h.listLowStock)
		inv.Get("/{id}", h.getInventory)
		inv.Put("/{id}", h.updateInventory)
		inv.Delete("/{id}", h.deleteInventory)
		inv.Patch("/{id}/adjust", h.adjustQuantity)
		inv.Put("/{id}/set-quantity", h.setQuantity)
	})
}

func registerTransactionRoutes(router chi.Router, h *TransactionHandler) {
	router.Route("/transactions", func(tx chi.Router) {
		tx.Post("/", h.createTransaction)
		tx.Get("/", h.listTransactions)
		tx.Get("/summary/{product_id}", h.getSummary)
		tx.Post("/export/{product_id}", h.exportLedger)
		tx.Get("/{id}", h.getTransaction)
		tx.Put("/{id}", h.updateTransaction)
		tx.Delete("/{id}", h.deleteTransaction)
	})
}

// healthHandler отвечает 503, пока недоступна база.
func healthHandler(health HealthChecker) http.HandlerFunc {
	const pingTimeout = 2 * time.Second

	return func(w http.ResponseWriter, r *http.Request) {
		if health != nil {
			ctx, cancel := context.WithTimeout(r.Context(), pingTimeout)
			defer cancel()

			if err := health.Ping(ctx); err != nil {
				WriteSuccess(w, http.StatusServiceUnavailable, NewErrorResponse(http.StatusServiceUnavailable, "database unavailable"))
				return
			}
		}
		WriteSuccess(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}

func (r *Router) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, req.ProtoMajor)

		next.ServeHTTP(ww, req)

		r.logger.Debugf("%s %s -> %d (%s) request_id=%s",
			req.Method, req.URL.Path, ww.Status(), time.Since(start), middleware.GetReqID(req.Context()))
	})
}
