package router

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/kiwari-pos/backoffice/internal/config"
	"github.com/kiwari-pos/backoffice/internal/database"
	"github.com/kiwari-pos/backoffice/internal/enum"
	"github.com/kiwari-pos/backoffice/internal/handler"
	"github.com/kiwari-pos/backoffice/internal/metrics"
	mw "github.com/kiwari-pos/backoffice/internal/middleware"
	"github.com/kiwari-pos/backoffice/internal/service"
	"github.com/kiwari-pos/backoffice/internal/ws"
)

// New creates a Chi router with all application routes wired up.
// Applies authentication, branch scoping, and role-based middleware as needed.
func New(cfg *config.Config, pool *pgxpool.Pool, hub *ws.Hub, m *metrics.Metrics, log *slog.Logger) chi.Router {
	handler.SetPageLimits(cfg.DefaultPageSize, cfg.MaxPageSize)
	queries := database.New(pool)

	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(m.Middleware)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300, // 5 minutes
	}))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	})
	r.Mount("/metrics", m.Router)

	// WebSocket routes authenticate with ?token= themselves.
	r.Get("/ws/branches/{bid}/orders", ws.ServeOrders(hub, cfg.JWTSecret))
	tables := ws.NewTableServer(cfg.JWTSecret, handler.TableSources(queries), m, log)
	r.Handle("/ws/branches/{bid}/tables/{table}", tables)

	// Services
	orderService := service.NewOrderService(pool, func(db database.DBTX) service.OrderStore {
		return database.New(db)
	})
	purchaseService := service.NewPurchaseService(pool, func(db database.DBTX) service.PurchaseStore {
		return database.New(db)
	})
	stockService := service.NewStockService(pool, func(db database.DBTX) service.StockStore {
		return database.New(db)
	})
	kdsService := service.NewKDSService(pool, func(db database.DBTX) service.KDSStore {
		return database.New(db)
	})

	authHandler := handler.NewAuthHandler(queries, cfg.JWTSecret)
	branchHandler := handler.NewBranchHandler(queries)
	pageHandler := handler.NewPageHandler(queries)
	purchaseHandler := handler.NewPurchaseHandler(purchaseService, queries)
	authenticate := mw.Authenticate(cfg.JWTSecret)
	managers := mw.RequireRole(enum.UserRoleOwner, enum.UserRoleManager)

	r.Route("/api/v1", func(r chi.Router) {
		authHandler.RegisterRoutes(r)

		// CMS pages: published pages are public, management is owner only.
		r.Route("/pages", func(r chi.Router) {
			pageHandler.RegisterPublicRoutes(r)
			r.Group(func(r chi.Router) {
				r.Use(authenticate)
				r.Use(mw.RequireRole(enum.UserRoleOwner))
				pageHandler.RegisterRoutes(r)
			})
		})

		r.Group(func(r chi.Router) {
			r.Use(authenticate)
			authHandler.RegisterProtectedRoutes(r)

			r.Route("/branches", func(r chi.Router) {
				r.Group(func(r chi.Router) {
					r.Use(mw.RequireRole(enum.UserRoleOwner))
					branchHandler.RegisterRoutes(r)
				})

				// Branch-scoped routes
				r.Route("/{bid}", func(r chi.Router) {
					r.Use(mw.RequireBranch)

					r.Group(func(r chi.Router) {
						r.Use(mw.RequireRole(enum.UserRoleOwner))
						branchHandler.RegisterItemRoutes(r)
					})

					// Floor and kitchen staff
					r.Route("/categories", handler.NewCategoryHandler(queries).RegisterRoutes)
					r.Route("/menu-items", handler.NewMenuItemHandler(queries).RegisterRoutes)
					r.Route("/orders", handler.NewOrderHandler(orderService, queries, hub).RegisterRoutes)
					r.Route("/kds-profiles", handler.NewKDSHandler(kdsService, queries).RegisterRoutes)

					// Back office
					r.Group(func(r chi.Router) {
						r.Use(managers)
						r.Route("/users", handler.NewUserHandler(queries).RegisterRoutes)
						r.Route("/inventory", handler.NewInventoryHandler(queries).RegisterRoutes)
						r.Route("/purchase-orders", purchaseHandler.RegisterRoutes)
						r.Route("/goods-receipts", purchaseHandler.RegisterReceiptRoutes)
						r.Route("/stock", handler.NewStockHandler(stockService, queries).RegisterRoutes)
						r.Route("/reports", handler.NewReportsHandler(queries).RegisterRoutes)
						r.Route("/deals", handler.NewDealHandler(queries).RegisterRoutes)
					})
				})
			})
		})
	})

	log.Info("router initialized")
	return r
}
