package utils

import (
	"github.com/gin-gonic/gin"
)

// JSONResponse sends a structured JSON response
func JSONResponse(c *gin.Context, status int, data any, message string) {
	c.JSON(status, gin.H{
		"status":  status,
		"message": message,
		"data":    data,
	})
}

// JSONError sends a structured error response. Retryable errors carry a
// "retryable" flag so clients know to back off and resubmit.
func JSONError(c *gin.Context, status int, err error, message string) {
	body := gin.H{
		"status":  status,
		"message": message,
		"error":   err.Error(),
	}
	if retryable, ok := c.Get(retryableKey); ok && retryable == true {
		body["retryable"] = true
	}
	c.JSON(status, body)
}

const retryableKey = "response.retryable"

// MarkRetryable flags the current response as safe to retry.
func MarkRetryable(c *gin.Context) {
	c.Set(retryableKey, true)
}
