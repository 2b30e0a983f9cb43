package rest

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"famtree-backend/application/commands/bus"
	querybus "famtree-backend/application/queries/bus"
	"famtree-backend/interfaces/http/rest/handlers"
	"famtree-backend/interfaces/http/rest/middleware"
	"famtree-backend/pkg/auth"
)

// Router creates and configures the HTTP router
type Router struct {
	commandBus   *bus.CommandBus
	queryBus     *querybus.QueryBus
	jwtValidator *auth.JWTValidator
	trustGateway bool
	enableCORS   bool
	logger       *zap.Logger
}

// NewRouter creates a new router instance. trustGateway skips local JWT
// validation when an API Gateway authorizer fronts the service.
func NewRouter(
	commandBus *bus.CommandBus,
	queryBus *querybus.QueryBus,
	jwtValidator *auth.JWTValidator,
	trustGateway bool,
	enableCORS bool,
	logger *zap.Logger,
) *Router {
	return &Router{
		commandBus:   commandBus,
		queryBus:     queryBus,
		jwtValidator: jwtValidator,
		trustGateway: trustGateway,
		enableCORS:   enableCORS,
		logger:       logger,
	}
}

// Setup configures all routes and middleware
func (rt *Router) Setup() http.Handler {
	router := chi.NewRouter()

	// Global middleware
	router.Use(chimiddleware.RequestID)
	router.Use(chimiddleware.RealIP)
	router.Use(chimiddleware.Recoverer)
	router.Use(middleware.Logger(rt.logger))

	if rt.enableCORS {
		router.Use(cors.Handler(cors.Options{
			AllowedOrigins:   []string{"http://localhost:3000", "https://*.famtree.app"},
			AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
			ExposedHeaders:   []string{"X-Request-ID"},
			AllowCredentials: true,
			MaxAge:           300,
		}))
	}

	// Health checks
	router.Get("/health", rt.healthCheck)
	router.Get("/ready", rt.readinessCheck)

	// API routes
	router.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Authenticate(rt.jwtValidator, rt.trustGateway))

		r.Route("/trees", func(r chi.Router) {
			treeHandler := handlers.NewTreeHandler(rt.commandBus, rt.queryBus, rt.logger)
			r.Post("/", treeHandler.CreateTree)
			r.Get("/{treeID}", treeHandler.GetTree)
			r.Put("/{treeID}", treeHandler.SyncTree)
		})
	})

	return router
}

// healthCheck handles health check requests
func (rt *Router) healthCheck(w http.ResponseWriter, req *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"healthy"}`))
}

// readinessCheck handles readiness check requests
func (rt *Router) readinessCheck(w http.ResponseWriter, req *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ready"}`))
}
