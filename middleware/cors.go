package middleware

import (
	"net/http"
	"os"
	"strings"

	"github.com/gin-gonic/gin"
)

// CORSMiddleware allows the admin frontend origins listed in
// CORS_ALLOWED_ORIGINS (comma separated); an empty list allows any origin,
// which is intended for development only.
func CORSMiddleware() gin.HandlerFunc {
	allowed := strings.Split(os.Getenv("CORS_ALLOWED_ORIGINS"), ",")

	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")

		allow := ""
		if len(allowed) == 1 && allowed[0] == "" {
			allow = "*"
		} else {
			for _, candidate := range allowed {
				if strings.TrimSpace(candidate) == origin {
					allow = origin
					break
				}
			}
		}

		if allow != "" {
			c.Header("Access-Control-Allow-Origin", allow)
			c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
			c.Header("Access-Control-Allow-Headers", "Authorization, Content-Type")
		}

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}
