package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/yourorg/hrms/internal/domain"
)

// Response is the envelope every endpoint returns.
type Response struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
	Count   *int   `json:"count,omitempty"`
	Detail  string `json:"detail,omitempty"` // development mode only
}

func writeJSON(w http.ResponseWriter, status int, resp Response) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(resp)
}

func respondData(w http.ResponseWriter, status int, message string, data any) {
	writeJSON(w, status, Response{Success: true, Message: message, Data: data})
}

// respondList always includes a count so clients can render totals without
// measuring the array.
func respondList(w http.ResponseWriter, data any, count int) {
	writeJSON(w, http.StatusOK, Response{Success: true, Data: data, Count: &count})
}

func respondError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, Response{Success: false, Message: message})
}

// respondDomainError maps a domain error onto the response taxonomy:
// validation 400, credentials 401, not-found 404, conflicts 409, foreign
// keys 400, everything else 500. In development mode the underlying error
// text rides along in detail; production responses omit it.
func respondDomainError(w http.ResponseWriter, err error, notFoundMsg string, development bool) {
	status := http.StatusInternalServerError
	message := "Internal Server Error"

	switch {
	case errors.Is(err, domain.ErrValidation):
		status, message = http.StatusBadRequest, "Validation failed"
	case errors.Is(err, domain.ErrInvalidCredentials):
		status, message = http.StatusUnauthorized, "Invalid email or password"
	case errors.Is(err, domain.ErrNotFound):
		status = http.StatusNotFound
		message = notFoundMsg
		if message == "" {
			message = "Not found"
		}
	case errors.Is(err, domain.ErrAlreadyAssigned):
		status, message = http.StatusConflict, "Employee is already assigned to this team"
	case errors.Is(err, domain.ErrDuplicate):
		status, message = http.StatusConflict, "Resource already exists"
	case errors.Is(err, domain.ErrForeignKey):
		status, message = http.StatusBadRequest, "Foreign key constraint violation"
	}

	resp := Response{Success: false, Message: message}
	if development {
		resp.Detail = err.Error()
	}
	writeJSON(w, status, resp)
}

// actorAction builds the audit trail's standard "User 'N' did X" phrasing.
func actorAction(userID int64, did string) string {
	return "User '" + strconv.FormatInt(userID, 10) + "' " + did
}

// pathID parses the {id} path segment; the boolean is false when the
// segment is missing or not a positive integer.
func pathID(r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue(name), 10, 64)
	if err != nil || id < 1 {
		return 0, false
	}
	return id, true
}
