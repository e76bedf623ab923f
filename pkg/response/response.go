// Package response defines the envelope every risk-index API endpoint
// returns.
package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Response is the uniform API envelope: a zero code marks success, any
// other code mirrors the HTTP status of the failure
type Response struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// Success wraps a payload (substations, reports, task progress) in a
// success envelope
func Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Response{
		Code:    0,
		Message: "success",
		Data:    data,
	})
}

// Error sends an error envelope carrying the given HTTP status
func Error(c *gin.Context, code int, message string) {
	c.JSON(code, Response{
		Code:    code,
		Message: message,
	})
}

// BadRequest reports a malformed request: unknown scenario, unparseable
// upload, unknown analysis skill
func BadRequest(c *gin.Context, message string) {
	Error(c, http.StatusBadRequest, message)
}

// NotFound reports a missing resource: substation code, scenario report,
// task id
func NotFound(c *gin.Context, message string) {
	Error(c, http.StatusNotFound, message)
}

// InternalError reports a failure inside the scoring or persistence layers
func InternalError(c *gin.Context, message string) {
	Error(c, http.StatusInternalServerError, message)
}
