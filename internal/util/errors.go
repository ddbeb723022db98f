package util

import (
	"log"
	"os"

	"github.com/gin-gonic/gin"
)

// SafeErrorResponse writes a JSON error body that never leaks internals.
// The underlying error is always logged; it is echoed to the client only
// outside release mode.
func SafeErrorResponse(c *gin.Context, statusCode int, userMessage string, err error) {
	if err != nil {
		log.Printf("[ERROR] %s: %v", c.Request.URL.Path, err)
	}

	response := gin.H{
		"success": false,
		"message": userMessage,
	}

	if os.Getenv("GIN_MODE") != "release" && err != nil {
		response["error"] = err.Error()
	}

	c.JSON(statusCode, response)
}
