package api

import (
	"encoding/json"
	"errors"
	"net/http"

	tberrors "github.com/randalmurphal/timebuddy/internal/errors"
)

// APIError is the standard error response format.
type APIError struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

// JSONResponse writes a successful JSON response.
func JSONResponse(w http.ResponseWriter, data any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(data)
}

// JSONResponseStatus writes a JSON response with a specific status code.
func JSONResponseStatus(w http.ResponseWriter, data any, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// JSONError writes a simple error response.
func JSONError(w http.ResponseWriter, message string, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(APIError{Error: message})
}

// HandleError inspects error type and writes the appropriate response.
func HandleError(w http.ResponseWriter, err error) {
	var tbErr *tberrors.TBError
	if errors.As(err, &tbErr) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(tbErr.HTTPStatus())
		_ = json.NewEncoder(w).Encode(APIError{
			Error: tbErr.What,
			Code:  string(tbErr.Code),
		})
		return
	}
	JSONError(w, err.Error(), http.StatusInternalServerError)
}
