package router

import (
	"log/slog"
	"net/http"
	"time"

	"feria/internal/auth"
	"feria/internal/store"
)

type Options struct {
	Store  *store.DB
	Tokens *auth.TokenIssuer
	Logger *slog.Logger

	// 会话 Cookie 契约：HttpOnly + SameSite=Strict；SecureCookies 控制 Secure 标记。
	CookieName    string
	SecureCookies bool
	SessionTTL    time.Duration

	AllowOpenRegistration bool

	// system
	Healthz http.HandlerFunc
}
