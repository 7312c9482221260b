package respond

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// JSON writes payload with the given status code.
func JSON(c *gin.Context, status int, payload interface{}) {
	c.JSON(status, payload)
}

// OK is the 200 shorthand.
func OK(c *gin.Context, payload interface{}) {
	JSON(c, http.StatusOK, payload)
}
