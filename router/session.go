package router

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"feria/internal/auth"
)

const (
	csrfHeader   = "X-CSRF-Token"
	principalKey = "feria_principal"
)

// requireSession 是认证闸门。状态机：Cookie 与 X-CSRF-Token 缺一不可 →
// 校验 JWT 签名与有效期 → 常量时间比对 token 内嵌的 csrf 与 header →
// 挂载 Principal。任何一步失败都返回同一个 401，不泄露失败原因。
func requireSession(opts Options) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := c.Cookie(opts.CookieName)
		if err != nil || token == "" {
			abortUnauthorized(c)
			return
		}
		header := strings.TrimSpace(c.GetHeader(csrfHeader))
		if header == "" {
			abortUnauthorized(c)
			return
		}

		claims, err := opts.Tokens.Parse(token)
		if err != nil {
			abortUnauthorized(c)
			return
		}
		if subtle.ConstantTimeCompare([]byte(claims.CSRF), []byte(header)) != 1 {
			abortUnauthorized(c)
			return
		}

		p := auth.Principal{
			ID:       claims.UserID,
			Username: claims.Username,
			Role:     claims.Role,
		}
		c.Request = c.Request.WithContext(auth.WithPrincipal(c.Request.Context(), p))
		c.Set(principalKey, p)
		c.Next()
	}
}

func requireRoles(roles ...auth.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, ok := principalFrom(c)
		if !ok {
			abortUnauthorized(c)
			return
		}
		for _, r := range roles {
			if p.Role == r {
				c.Next()
				return
			}
		}
		respondError(c, http.StatusForbidden, "forbidden")
		c.Abort()
	}
}

// requireStoreManager 只放行可以经营店铺的角色，见 auth.Role.CanManageStores。
func requireStoreManager() gin.HandlerFunc {
	return func(c *gin.Context) {
		p, ok := principalFrom(c)
		if !ok {
			abortUnauthorized(c)
			return
		}
		if !p.Role.CanManageStores() {
			respondError(c, http.StatusForbidden, "forbidden")
			c.Abort()
			return
		}
		c.Next()
	}
}

func principalFrom(c *gin.Context) (auth.Principal, bool) {
	v, ok := c.Get(principalKey)
	if !ok {
		return auth.Principal{}, false
	}
	p, ok := v.(auth.Principal)
	return p, ok
}

func abortUnauthorized(c *gin.Context) {
	respondError(c, http.StatusUnauthorized, "authentication required")
	c.Abort()
}

func setSessionCookie(c *gin.Context, opts Options, token string) {
	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(opts.CookieName, token, int(opts.SessionTTL.Seconds()), "/", "", opts.SecureCookies, true)
}

func clearSessionCookie(c *gin.Context, opts Options) {
	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(opts.CookieName, "", -1, "/", "", opts.SecureCookies, true)
}
