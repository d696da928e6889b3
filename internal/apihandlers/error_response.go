package apihandlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// APIError is the body of every failed request:
// { "error": { "code": "not_found", "message": "..." } }
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type errorResponse struct {
	Error APIError `json:"error"`
}

var errorCodes = map[int]string{
	http.StatusBadRequest:          "bad_request",
	http.StatusNotFound:            "not_found",
	http.StatusInternalServerError: "internal_error",
	http.StatusBadGateway:          "bad_gateway",
	http.StatusServiceUnavailable:  "service_unavailable",
}

// abortWithError writes the error body and stops the handler chain.
func abortWithError(c *gin.Context, status int, msg string) {
	code, ok := errorCodes[status]
	if !ok {
		code = "error"
	}
	c.AbortWithStatusJSON(status, errorResponse{Error: APIError{Code: code, Message: msg}})
}

// BadRequest rejects malformed input.
func BadRequest(c *gin.Context, msg string) { abortWithError(c, http.StatusBadRequest, msg) }

// NotFound carries the localized no-results text.
func NotFound(c *gin.Context, msg string) { abortWithError(c, http.StatusNotFound, msg) }

// Internal hides store failures behind a fixed message; callers log the cause.
func Internal(c *gin.Context) {
	abortWithError(c, http.StatusInternalServerError, "internal error")
}

// BadGateway reports a failed model call with the localized error text.
func BadGateway(c *gin.Context, msg string) { abortWithError(c, http.StatusBadGateway, msg) }

// ServiceUnavailable reports a disabled optional component.
func ServiceUnavailable(c *gin.Context, msg string) {
	abortWithError(c, http.StatusServiceUnavailable, msg)
}
