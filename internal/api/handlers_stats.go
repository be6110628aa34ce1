package api

import (
	"net/http"
	"strconv"

	tberrors "github.com/randalmurphal/timebuddy/internal/errors"
)

// handleMonthlyStats returns the productivity stat rows for a month,
// ordered by date.
func (s *Server) handleMonthlyStats(w http.ResponseWriter, r *http.Request) {
	year, err := strconv.Atoi(r.URL.Query().Get("year"))
	if err != nil || year < 1 {
		HandleError(w, tberrors.ErrInvalidRequest("year must be a positive integer"))
		return
	}
	month, err := strconv.Atoi(r.URL.Query().Get("month"))
	if err != nil || month < 1 || month > 12 {
		HandleError(w, tberrors.ErrInvalidRequest("month must be between 1 and 12"))
		return
	}

	stats, err := s.engine.MonthlyStats(r.Context(), year, month)
	if err != nil {
		s.logger.Error("failed to load monthly stats", "year", year, "month", month, "error", err)
		HandleError(w, err)
		return
	}

	JSONResponse(w, map[string]any{
		"year":  year,
		"month": month,
		"stats": stats,
	})
}
