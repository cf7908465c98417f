package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/mejakita/api/internal/config"
	"github.com/mejakita/api/internal/database"
	"github.com/mejakita/api/internal/handler"
	mw "github.com/mejakita/api/internal/middleware"
	"github.com/mejakita/api/internal/service"
	"github.com/mejakita/api/internal/storage"
	"github.com/mejakita/api/internal/ws"
)

// New creates a Chi router with all application routes wired up.
// Guest endpoints live under /public, staff endpoints under
// /organizations/{oid} behind authentication and organization scoping.
func New(cfg *config.Config, queries *database.Queries, pool *pgxpool.Pool, presigner storage.Presigner, hub *ws.Hub) chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300, // 5 minutes
	}))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok","version":"1.0.0"}`))
	})

	// Auth routes (public)
	authHandler := handler.NewAuthHandler(queries, cfg.JWTSecret)
	authHandler.RegisterRoutes(r)

	// Services
	menuService := service.NewMenuService(
		pool,
		func(db database.DBTX) service.MenuStore { return database.New(db) },
		presigner,
		cfg.ImageBasePath,
	)
	orderService := service.NewOrderService(
		pool,
		func(db database.DBTX) service.OrderStore { return database.New(db) },
	)

	storeHandler := handler.NewStoreHandler(queries)
	orderHandler := handler.NewOrderHandler(orderService, queries, hub)

	// Guest routes hit from the QR table page; no authentication.
	storeHandler.RegisterPublicRoutes(r)
	orderHandler.RegisterPublicRoutes(r)

	// WebSocket route (handles auth internally via query param)
	r.Get("/ws/stores/{sid}/orders", func(w http.ResponseWriter, r *http.Request) {
		ws.ServeWS(hub, queries, cfg.JWTSecret, w, r)
	})

	// Protected routes (require authentication)
	r.Group(func(r chi.Router) {
		r.Use(mw.Authenticate(cfg.JWTSecret))

		// Organization lifecycle
		orgHandler := handler.NewOrganizationHandler(
			pool,
			func(db database.DBTX) handler.OrganizationStore { return database.New(db) },
			queries,
			cfg.JWTSecret,
		)
		orgHandler.RegisterRoutes(r)

		// User-scoped invitation inbox
		memberHandler := handler.NewMemberHandler(
			pool,
			func(db database.DBTX) handler.MemberStore { return database.New(db) },
			queries,
		)
		memberHandler.RegisterUserRoutes(r)

		// Organization-scoped routes
		r.Route("/organizations/{oid}", func(r chi.Router) {
			r.Use(mw.RequireOrganization)

			memberHandler.RegisterOrganizationRoutes(r)

			menuGroupHandler := handler.NewMenuGroupHandler(queries)
			r.Route("/menu-groups", menuGroupHandler.RegisterRoutes)

			menuHandler := handler.NewMenuHandler(menuService, queries)
			r.Route("/menus", menuHandler.RegisterRoutes)

			r.Route("/stores", func(r chi.Router) {
				storeHandler.RegisterRoutes(r)
				r.Get("/{id}/orders", orderHandler.ListStoreOrders)
			})

			orderHandler.RegisterOrganizationRoutes(r)
		})
	})

	return r
}
