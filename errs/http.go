package errs

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"github.com/nasahack25/airq/logger"
)

// codeStatusMap maps application error codes onto http status codes.
var codeStatusMap = map[string]int{
	ECONFLICT:     http.StatusConflict,
	EINVALID:      http.StatusBadRequest,
	ENOTFOUND:     http.StatusNotFound,
	EUNAUTHORIZED: http.StatusUnauthorized,
	EINTERNAL:     http.StatusInternalServerError,
}

// errorResponse is the json body returned for any failed request.
// Errors carries the field-error map of validation failures.
type errorResponse struct {
	Message string            `json:"message"`
	Errors  map[string]string `json:"errors,omitempty"`
}

// ErrorStatusCode returns the http status code for an application error code.
func ErrorStatusCode(code string) int {
	if status, ok := codeStatusMap[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// ReturnError writes an error to the response in a standardized json format.
// Expected errors (validation, not found...) pass through with their own
// message. Anything else is logged with full detail and surfaced to the
// caller only as a generic internal error.
func ReturnError(w http.ResponseWriter, r *http.Request, err error) {
	code, message := ErrorCode(err), ErrorMessage(err)
	if code == EINTERNAL {
		LogError(r, err)
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(ErrorStatusCode(code))
	json.NewEncoder(w).Encode(&errorResponse{
		Message: message,
		Errors:  ErrorFields(err),
	})
}

// LogError logs an error together with the request it occurred on.
func LogError(r *http.Request, err error) {
	logger.Log.Error("request failed",
		zap.String("method", r.Method),
		zap.String("path", r.URL.Path),
		zap.Error(err),
	)
}
