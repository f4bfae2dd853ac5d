package response

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/splitcore/settle/internal/pagination"
)

// APIResponse is the standard response wrapper
type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   *APIError   `json:"error,omitempty"`
	Meta    *Meta       `json:"meta,omitempty"`
}

// APIError represents an error response
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Meta contains pagination and other metadata
type Meta struct {
	Page       int `json:"page,omitempty"`
	PerPage    int `json:"per_page,omitempty"`
	Total      int `json:"total,omitempty"`
	TotalPages int `json:"total_pages,omitempty"`
}

// JSON sends a JSON response with the given status code
func JSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	response := APIResponse{
		Success: status >= 200 && status < 300,
		Data:    data,
	}

	json.NewEncoder(w).Encode(response)
}

// JSONWithMeta sends a JSON response with pagination metadata
func JSONWithMeta(w http.ResponseWriter, status int, data interface{}, meta *Meta) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	response := APIResponse{
		Success: status >= 200 && status < 300,
		Data:    data,
		Meta:    meta,
	}

	json.NewEncoder(w).Encode(response)
}

// CursorPage is the envelope for a cursor-paginated list: the expense and
// activity endpoints return this instead of JSONWithMeta's page/per_page
// shape.
type CursorPage struct {
	Data       interface{}     `json:"data"`
	Pagination pagination.Page `json:"pagination"`
}

// JSONCursorPage sends a cursor-paginated list response.
func JSONCursorPage(w http.ResponseWriter, status int, data interface{}, page pagination.Page) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(CursorPage{Data: data, Pagination: page})
}

// Error sends an error JSON response
func Error(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	response := APIResponse{
		Success: false,
		Error: &APIError{
			Code:    code,
			Message: message,
		},
	}

	json.NewEncoder(w).Encode(response)
}

// Common error responses
func BadRequest(w http.ResponseWriter, message string) {
	Error(w, http.StatusBadRequest, "BAD_REQUEST", message)
}

func NotFound(w http.ResponseWriter, message string) {
	Error(w, http.StatusNotFound, "NOT_FOUND", message)
}

func InternalError(w http.ResponseWriter, message string) {
	Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", message)
}

func Unauthorized(w http.ResponseWriter, message string) {
	Error(w, http.StatusUnauthorized, "UNAUTHORIZED", message)
}

func Forbidden(w http.ResponseWriter, message string) {
	Error(w, http.StatusForbidden, "FORBIDDEN", message)
}

func Conflict(w http.ResponseWriter, message string) {
	Error(w, http.StatusConflict, "CONFLICT", message)
}

// Domain error slugs (§7): these codes are stable and appear verbatim in
// error.code so clients can branch on them without parsing message text.
const (
	SlugInvalidSplit      = "invalid_split"
	SlugNotMember         = "not_member"
	SlugInvalidSettlement = "invalid_settlement"
	SlugLockTimeout       = "lock_timeout"
	SlugStoreUnavailable  = "store_unavailable"
)

func InvalidSplit(w http.ResponseWriter, message string) {
	Error(w, http.StatusBadRequest, SlugInvalidSplit, message)
}

func NotMember(w http.ResponseWriter, message string) {
	Error(w, http.StatusForbidden, SlugNotMember, message)
}

func InvalidSettlement(w http.ResponseWriter, message string) {
	Error(w, http.StatusBadRequest, SlugInvalidSettlement, message)
}

// LockTimeout sends 503 with a Retry-After header, since a lock timeout is
// a transient condition the caller can retry.
func LockTimeout(w http.ResponseWriter, retryAfter time.Duration) {
	w.Header().Set("Retry-After", strconv.Itoa(int(retryAfter.Seconds())))
	Error(w, http.StatusServiceUnavailable, SlugLockTimeout, "could not acquire the lock in time, please retry")
}

func StoreUnavailable(w http.ResponseWriter, message string) {
	Error(w, http.StatusServiceUnavailable, SlugStoreUnavailable, message)
}
