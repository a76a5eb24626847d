package router

import (
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"feria/internal/auth"
	"feria/internal/store"
)

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type userView struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Role     string `json:"role"`
}

func viewUser(u store.User) userView {
	return userView{ID: u.PublicID, Username: u.Username, Role: string(u.Role)}
}

func setAuthAPIRoutes(r *gin.RouterGroup, opts Options) {
	r.POST("/auth/login", loginHandler(opts))
	r.GET("/auth/me", requireSession(opts), meHandler(opts))
	r.POST("/auth/logout", logoutHandler(opts))
}

func loginHandler(opts Options) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req loginRequest
		if err := json.NewDecoder(c.Request.Body).Decode(&req); err != nil {
			respondError(c, http.StatusBadRequest, "invalid request body")
			return
		}
		username := strings.TrimSpace(req.Username)
		if username == "" || req.Password == "" {
			respondError(c, http.StatusUnauthorized, "invalid username or password")
			return
		}

		u, err := opts.Store.GetUserByUsername(c.Request.Context(), username)
		if errors.Is(err, sql.ErrNoRows) {
			// 未知用户也跑一次 bcrypt，避免用响应时间探测用户名是否存在。
			_ = auth.CheckPassword(auth.DummyHash(), req.Password)
			respondError(c, http.StatusUnauthorized, "invalid username or password")
			return
		}
		if err != nil {
			respondInternal(c, opts, "login: user lookup failed", err)
			return
		}
		if !auth.CheckPassword(u.PasswordHash, req.Password) {
			respondError(c, http.StatusUnauthorized, "invalid username or password")
			return
		}

		token, csrf, err := opts.Tokens.Issue(u.PublicID, u.Username, u.Role)
		if err != nil {
			respondInternal(c, opts, "login: token issue failed", err)
			return
		}

		setSessionCookie(c, opts, token)
		c.Header(csrfHeader, csrf)
		c.JSON(http.StatusOK, viewUser(u))
	}
}

func meHandler(opts Options) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, ok := principalFrom(c)
		if !ok {
			abortUnauthorized(c)
			return
		}
		// 会话是无状态的；账号被删后旧 token 在有效期内仍可解析，这里兜底 404。
		u, err := opts.Store.GetUserByPublicID(c.Request.Context(), p.ID)
		if errors.Is(err, sql.ErrNoRows) {
			respondNotFound(c, "user")
			return
		}
		if err != nil {
			respondInternal(c, opts, "me: user lookup failed", err)
			return
		}
		c.JSON(http.StatusOK, viewUser(u))
	}
}

// logoutHandler 不要求登录态：重复登出保持幂等。
func logoutHandler(opts Options) gin.HandlerFunc {
	return func(c *gin.Context) {
		clearSessionCookie(c, opts)
		c.Status(http.StatusNoContent)
	}
}
