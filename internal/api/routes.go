package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/vuelacn/flightdesk/internal/agent"
	"github.com/vuelacn/flightdesk/internal/config"
	"github.com/vuelacn/flightdesk/internal/flights"
	"github.com/vuelacn/flightdesk/internal/tools"
	"github.com/vuelacn/flightdesk/pkg/logger"
)

// Router is the API router
type Router struct {
	handler    *Handler
	middleware *Middleware
	config     *config.Config
	logger     *logger.Logger
}

// NewRouter creates a new API router
func NewRouter(service *flights.Service, registry *tools.Registry, assistant *agent.Service, config *config.Config, logger *logger.Logger) *Router {
	return &Router{
		handler:    NewHandler(service, registry, assistant, logger),
		middleware: NewMiddleware(logger),
		config:     config,
		logger:     logger.Named("api-router"),
	}
}

// Routes returns the API routes
func (r *Router) Routes() http.Handler {
	router := chi.NewRouter()

	// Middleware
	router.Use(r.middleware.RequestID)
	router.Use(r.middleware.Logger)
	router.Use(r.middleware.Recoverer)
	router.Use(r.middleware.CORS(r.config.Server.CORSAllowedOrigins))

	// API routes
	router.Route("/api/v1", func(router chi.Router) {
		// Tool adapter surface consumed by the orchestration layer
		router.Get("/tools", r.handler.ListTools)
		router.Post("/tools/{name}", r.handler.InvokeTool)

		// REST views of the same store operations
		router.Get("/flights/{id}/status", r.handler.GetFlightStatus)
		router.Get("/flights/options", r.handler.GetFlightOptions)
		router.Post("/reservations", r.handler.CreateReservation)
		router.Delete("/reservations", r.handler.DeleteReservation)
		router.Get("/reservations/verify", r.handler.VerifyReservation)

		// Chat assistant
		router.Post("/chat", r.handler.Chat)

		// Health check
		router.Get("/health", r.handler.GetHealth)
	})

	return router
}
