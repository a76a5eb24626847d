package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func wrapHTTP(h http.Handler) gin.HandlerFunc {
	if h == nil {
		return func(c *gin.Context) {
			c.Status(http.StatusNotFound)
		}
	}

	return func(c *gin.Context) {
		h.ServeHTTP(c.Writer, c.Request)
	}
}

func wrapHTTPFunc(f http.HandlerFunc) gin.HandlerFunc {
	return wrapHTTP(f)
}

func respondError(c *gin.Context, status int, msg string) {
	c.JSON(status, gin.H{"error": msg})
}

// respondInternal 对外只给出通用 500，细节进日志。
func respondInternal(c *gin.Context, opts Options, msg string, err error) {
	if opts.Logger != nil {
		opts.Logger.Error(msg, "err", err, "path", c.Request.URL.Path, "method", c.Request.Method)
	}
	respondError(c, http.StatusInternalServerError, "internal server error")
}

func respondNotFound(c *gin.Context, what string) {
	respondError(c, http.StatusNotFound, what+" not found")
}
