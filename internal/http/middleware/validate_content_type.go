package middleware

import (
	"mime"
	"net/http"

	"github.com/gin-gonic/gin"
)

// ValidateContentType rejects requests whose media type is not one of
// allowed with 415.
func ValidateContentType(allowed ...string) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		mediaType, _, err := mime.ParseMediaType(ctx.GetHeader("Content-Type"))
		if err == nil {
			for _, a := range allowed {
				if mediaType == a {
					ctx.Next()
					return
				}
			}
		}

		ctx.AbortWithStatusJSON(http.StatusUnsupportedMediaType, gin.H{
			"success": false,
			"error":   "Unsupported content type",
		})
	}
}
