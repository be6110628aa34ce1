package api

import "net/http"

// registerRoutes sets up all API routes.
func (s *Server) registerRoutes() {
	// CORS middleware wrapper
	cors := func(h http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Access-Control-Allow-Origin", s.allowedOrigin)
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PATCH, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
			if r.Method == "OPTIONS" {
				w.WriteHeader(http.StatusOK)
				return
			}
			h(w, r)
		}
	}

	// Health check
	s.mux.HandleFunc("GET /api", cors(s.handleHealth))

	// Schedules
	s.mux.HandleFunc("GET /api/schedules/today", cors(s.handleGetTodaySchedule))
	s.mux.HandleFunc("POST /api/schedules", cors(s.handleCreateSchedule))
	s.mux.HandleFunc("PATCH /api/schedules/today/blocks/{blockID}", cors(s.handleCompleteBlock))

	// Productivity stats
	s.mux.HandleFunc("GET /api/stats/monthly", cors(s.handleMonthlyStats))

	// ML proxy
	s.mux.HandleFunc("POST /api/ml/log-task", cors(s.handleLogTask))
	s.mux.HandleFunc("GET /api/ml/predict", cors(s.handlePredict))

	// Websocket feed of schedule/stat updates
	s.mux.HandleFunc("GET /api/ws", s.wsHandler.ServeHTTP)
}
