package server

import (
	"net/http"
)

// setupRoutes configures all HTTP routes.
func (s *Server) setupRoutes() *http.ServeMux {
	mux := http.NewServeMux()

	// Browser client
	mux.HandleFunc("/", s.app.PageHandler.IndexHandler)
	mux.HandleFunc("/static/", s.app.PageHandler.StaticFileHandler)

	// WebSocket progress stream
	mux.HandleFunc("/ws", s.app.WSHandler.HandleWebSocket)

	// API routes - Memos
	mux.HandleFunc("/api/report", s.handleReportRoute)
	mux.HandleFunc("/api/report/pdf", s.app.ReportHandler.ReportPDFHandler)
	mux.HandleFunc("/api/report/email", s.app.ReportHandler.EmailReportHandler)

	// API routes - Portfolio
	mux.HandleFunc("/api/portfolio/movers", s.app.PortfolioHandler.MoversHandler)

	// API routes - System
	mux.HandleFunc("/api/status", s.app.StatusHandler.GetStatusHandler)
	mux.HandleFunc("/api/health", s.app.StatusHandler.HealthHandler)
	mux.HandleFunc("/api/version", s.app.StatusHandler.VersionHandler)

	return mux
}

// handleReportRoute dispatches /api/report by method: GET serves the cache,
// POST generates.
func (s *Server) handleReportRoute(w http.ResponseWriter, r *http.Request) {
	RouteByMethod(w, r, MethodRouter{
		"GET":  s.app.ReportHandler.GetReportHandler,
		"POST": s.app.ReportHandler.GenerateReportHandler,
	})
}
