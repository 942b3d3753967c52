package controllers

import (
	"errors"
	"net/http"
	"strconv"

	"staybook/services"

	"github.com/gin-gonic/gin"
)

func respondOK(c *gin.Context, status int, mess string, data any) {
	c.JSON(status, gin.H{"code": 1, "mess": mess, "data": data})
}

// Error kinds are stable identifiers clients can switch on; mess is for
// humans and may change.
const (
	KindBadRequest        = "bad_request"
	KindValidation        = "validation"
	KindUnauthenticated   = "unauthenticated"
	KindForbidden         = "forbidden"
	KindNotFound          = "not_found"
	KindNotEligible       = "not_eligible"
	KindInvalidTransition = "invalid_transition"
	KindConflict          = "conflict"
	KindUnavailable       = "unavailable"
	KindInternal          = "internal"
)

func failure(c *gin.Context, status int, kind, mess string) {
	c.JSON(status, gin.H{"code": 0, "kind": kind, "mess": mess})
}

// respondError maps a service error onto its HTTP outcome. Only the
// taxonomy's own message reaches the client; details go to the request log.
func respondError(c *gin.Context, err error) {
	if verr := services.IsValidationError(err); verr != nil {
		c.JSON(http.StatusBadRequest, gin.H{"code": 0, "kind": KindValidation, "mess": "Invalid input", "fields": verr.Fields()})
		return
	}

	switch {
	case errors.Is(err, services.ErrUnauthenticated):
		failure(c, http.StatusUnauthorized, KindUnauthenticated, "Unauthenticated")
	case errors.Is(err, services.ErrForbidden):
		failure(c, http.StatusForbidden, KindForbidden, "You are not allowed to do this")
	case errors.Is(err, services.ErrNotFound):
		failure(c, http.StatusNotFound, KindNotFound, "Not found")
	case errors.Is(err, services.ErrNotEligible):
		failure(c, http.StatusUnprocessableEntity, KindNotEligible, "Booking is not completed yet")
	case errors.Is(err, services.ErrInvalidTransition):
		failure(c, http.StatusConflict, KindInvalidTransition, "Status change not allowed")
	case errors.Is(err, services.ErrConflict):
		failure(c, http.StatusConflict, KindConflict, "Conflicting update, reload and try again")
	case errors.Is(err, services.ErrUnavailable):
		_ = c.Error(err)
		c.Header("Retry-After", "1")
		failure(c, http.StatusServiceUnavailable, KindUnavailable, "Service temporarily unavailable, retry later")
	default:
		_ = c.Error(err)
		failure(c, http.StatusInternalServerError, KindInternal, "Internal server error")
	}
}

// badRequest answers a payload that could not be decoded at all.
func badRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{"code": 0, "kind": KindBadRequest, "mess": "Invalid request body", "error": err.Error()})
}

func idParam(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"code": 0, "kind": KindValidation, "mess": "Invalid id", "fields": gin.H{name: []string{"must be a positive integer"}}})
		return 0, false
	}
	return uint(id), true
}
