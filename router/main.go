// Package router 挂载全部 HTTP 路由：认证、用户、店铺、商品、评价与系统端点。
package router

import (
	"net/http"
	"strings"

	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"

	"feria/internal/obs"
)

func SetRouter(r *gin.Engine, opts Options) {
	setSystemRoutes(r, opts)

	api := r.Group("/api")
	api.Use(gzip.Gzip(gzip.DefaultCompression))
	api.Use(trackAPIRequests())
	setAuthAPIRoutes(api, opts)
	setUserAPIRoutes(api, opts)
	setSellerRequestAPIRoutes(api, opts)
	setStoreAPIRoutes(api, opts)
	setItemAPIRoutes(api, opts)
	setReviewAPIRoutes(api, opts)

	r.NoRoute(unknownEndpointHandler())
}

func trackAPIRequests() gin.HandlerFunc {
	return func(c *gin.Context) {
		done := obs.TrackAPIRequest()
		defer done()
		c.Next()
		if c.Writer.Status() >= http.StatusInternalServerError {
			obs.RecordAPIError()
		}
	}
}

// unknownEndpointHandler 保证 /api 下未匹配的路径返回统一的 JSON 404，
// 避免把 gin 默认的纯文本 404 暴露给前端。
func unknownEndpointHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		if strings.HasPrefix(c.Request.URL.Path, "/api") {
			c.JSON(http.StatusNotFound, gin.H{"error": "unknown endpoint"})
			return
		}
		c.Status(http.StatusNotFound)
	}
}
