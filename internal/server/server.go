package server

import (
	"log/slog"
	"net/http"

	"bizdash/internal/handlers"
	"bizdash/internal/services"
)

type Server struct {
	mux         *http.ServeMux
	logger      *slog.Logger
	apiHandlers *handlers.APIHandlers
	sseHandlers *handlers.SSEHandlers
}

type TemplateHandlers struct {
	Dashboard http.HandlerFunc
}

// NewServer wires the routes. store may be nil for read-only data sources.
func NewServer(reports *services.Reports, store handlers.Store, logger *slog.Logger, templateHandlers *TemplateHandlers) *Server {
	s := &Server{
		mux:         http.NewServeMux(),
		logger:      logger,
		apiHandlers: handlers.NewAPIHandlers(reports, store, logger),
		sseHandlers: handlers.NewSSEHandlers(reports, logger),
	}
	s.setupRoutes(templateHandlers)
	return s
}

func (s *Server) setupRoutes(templateHandlers *TemplateHandlers) {
	s.mux.HandleFunc("GET /{$}", templateHandlers.Dashboard)
	s.mux.HandleFunc("GET /health", s.apiHandlers.HandleHealth)
	s.mux.HandleFunc("GET /admin/stats", s.apiHandlers.HandleStats)

	s.mux.HandleFunc("GET /api/overview", s.apiHandlers.HandleOverview)
	s.mux.HandleFunc("GET /api/monthly", s.apiHandlers.HandleMonthly)
	s.mux.HandleFunc("GET /api/monthly-trend", s.apiHandlers.HandleMonthlyTrend)
	s.mux.HandleFunc("GET /api/stock", s.apiHandlers.HandleStock)
	s.mux.HandleFunc("GET /api/sales/{id}/profit", s.apiHandlers.HandleSaleProfit)
	s.mux.HandleFunc("POST /api/sales", s.apiHandlers.HandleCreateSale)
	s.mux.HandleFunc("POST /api/products", s.apiHandlers.HandleCreateProduct)

	s.mux.HandleFunc("GET /sse/overview", s.sseHandlers.HandleOverview)
	s.mux.HandleFunc("GET /sse/monthly", s.sseHandlers.HandleMonthly)
	s.mux.HandleFunc("GET /sse/stock", s.sseHandlers.HandleStock)
	s.mux.HandleFunc("GET /sse/refresh-all", s.sseHandlers.HandleRefreshAll)
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}
