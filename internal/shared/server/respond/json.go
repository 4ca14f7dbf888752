package respond

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Envelope is the response shape shared by every endpoint.
type Envelope struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
	Code    string `json:"code,omitempty"`
}

// JSON writes a JSON response with the given status.
func JSON(c *gin.Context, status int, payload interface{}) {
	c.JSON(status, payload)
}

// OK writes a 200 success envelope.
func OK(c *gin.Context, data any, message string) {
	JSON(c, http.StatusOK, Envelope{Success: true, Data: data, Message: message})
}
