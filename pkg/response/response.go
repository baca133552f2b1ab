package response

import (
	"time"

	"github.com/gin-gonic/gin"
)

// FieldError is a single per-field validation failure.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ErrorPayload is the uniform error body shared by every failure
// response: a timestamp, the numeric status, a short category, a human
// message, the request path and optional per-field validation errors.
type ErrorPayload struct {
	Timestamp        string       `json:"timestamp"`
	Status           int          `json:"status"`
	Error            string       `json:"error"`
	Message          string       `json:"message"`
	Path             string       `json:"path"`
	ValidationErrors []FieldError `json:"validationErrors,omitempty"`
}

// WriteError emits the uniform error payload and aborts the request.
func WriteError(c *gin.Context, status int, category, message string, fieldErrors []FieldError) {
	c.AbortWithStatusJSON(status, ErrorPayload{
		Timestamp:        time.Now().Format("2006-01-02 15:04:05"),
		Status:           status,
		Error:            category,
		Message:          message,
		Path:             c.Request.URL.Path,
		ValidationErrors: fieldErrors,
	})
}
