package moderation

import (
	"errors"
	"net/http"
)

// Domain errors for moderation operations.
var (
	ErrNotFound       = errors.New("moderation record not found")
	ErrDuplicate      = errors.New("moderation record already exists")
	ErrBlankContentID = errors.New("content id is required")
	ErrInvalidID      = errors.New("invalid record id")
	ErrInvalidBody    = errors.New("invalid request body")
)

// MapHTTPStatus maps moderation domain errors to HTTP status codes.
func MapHTTPStatus(err error) int {
	if errors.Is(err, ErrNotFound) {
		return http.StatusNotFound
	}
	if errors.Is(err, ErrDuplicate) {
		return http.StatusConflict
	}
	if errors.Is(err, ErrBlankContentID) || errors.Is(err, ErrInvalidID) || errors.Is(err, ErrInvalidBody) {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}
