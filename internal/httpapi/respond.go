package httpapi

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"number-inventory/internal/apperr"
	"number-inventory/pkg/logger"
)

// Pagination is attached to list responses.
type Pagination struct {
	Page  int `json:"page"`
	Limit int `json:"limit"`
	Total int `json:"total"`
	Pages int `json:"pages"`
}

type envelope struct {
	Success    bool        `json:"success"`
	Data       any         `json:"data,omitempty"`
	Pagination *Pagination `json:"pagination,omitempty"`
	Message    string      `json:"message"`
}

func ok(c *gin.Context, status int, data any, message string) {
	c.JSON(status, envelope{Success: true, Data: data, Message: message})
}

func okPage(c *gin.Context, data any, p Pagination, message string) {
	c.JSON(http.StatusOK, envelope{Success: true, Data: data, Pagination: &p, Message: message})
}

func abort(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, envelope{Success: false, Message: message})
}

// fail maps an error kind to a status. Unclassified errors are logged and hidden.
func fail(c *gin.Context, err error) {
	failWith(c, err, nil)
}

// failWith is fail with a data payload, for operations that can stop part way.
func failWith(c *gin.Context, err error, data any) {
	status, message := http.StatusInternalServerError, "Internal server error"
	var e *apperr.Error
	switch {
	case !errors.As(err, &e):
		_ = c.Error(err)
		logger.FromGin(c).Error("request failed", "err", err)
	case e.Kind == apperr.KindStoreUnavailable:
		logger.FromGin(c).Error("store unavailable", "err", err)
		status, message = statusFor(e.Kind), e.Message
	default:
		status, message = statusFor(e.Kind), e.Message
	}
	c.AbortWithStatusJSON(status, envelope{Success: false, Data: data, Message: message})
}

func statusFor(k apperr.Kind) int {
	switch k {
	case apperr.KindValidation:
		return http.StatusBadRequest
	case apperr.KindDuplicateNumber, apperr.KindConflict:
		return http.StatusConflict
	case apperr.KindNotFound:
		return http.StatusNotFound
	case apperr.KindUnauthorized:
		return http.StatusForbidden
	case apperr.KindStoreUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
