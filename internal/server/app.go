// Package server 组装 HTTP 路由、依赖与中间件，使 main 保持简单可读。
package server

import (
	"context"
	"database/sql"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"feria/internal/auth"
	"feria/internal/config"
	"feria/internal/store"
	"feria/internal/version"
	"feria/router"
)

type AppOptions struct {
	Config  config.Config
	DB      *sql.DB
	Logger  *slog.Logger
	Version version.BuildInfo
}

type App struct {
	cfg     config.Config
	db      *sql.DB
	store   *store.DB
	tokens  *auth.TokenIssuer
	logger  *slog.Logger
	version version.BuildInfo
	engine  *gin.Engine
}

func NewApp(opts AppOptions) (*App, error) {
	st := store.New(opts.DB)
	st.SetDialect(store.Dialect(opts.Config.DB.Driver))

	tokens := auth.NewTokenIssuer([]byte(opts.Config.Auth.JWTSecret), opts.Config.Auth.SessionTTL)

	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	app := &App{
		cfg:     opts.Config,
		db:      opts.DB,
		store:   st,
		tokens:  tokens,
		logger:  logger,
		version: opts.Version,
	}

	if opts.Config.Env != "dev" {
		gin.SetMode(gin.ReleaseMode)
	}
	engine := gin.New()
	engine.Use(gin.Recovery())
	if opts.Config.Server.MaxBodyBytes > 0 {
		engine.Use(limitRequestBody(opts.Config.Server.MaxBodyBytes))
	}

	router.SetRouter(engine, router.Options{
		Store:  st,
		Tokens: tokens,
		Logger: logger,

		CookieName:    opts.Config.Auth.CookieName,
		SecureCookies: opts.Config.Env != "dev" && !opts.Config.Security.DisableSecureCookies,
		SessionTTL:    opts.Config.Auth.SessionTTL,

		AllowOpenRegistration: opts.Config.Security.AllowOpenRegistration,

		Healthz: app.handleHealthz,
	})
	app.engine = engine
	return app, nil
}

func limitRequestBody(max int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, max)
		c.Next()
	}
}

func (a *App) Handler() http.Handler {
	return a.engine
}

func (a *App) handleHealthz(w http.ResponseWriter, r *http.Request) {
	type resp struct {
		Status  string `json:"status"`
		Env     string `json:"env"`
		Version string `json:"version"`
		DBOK    bool   `json:"db_ok"`
	}

	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()
	dbOK := a.db.PingContext(ctx) == nil

	out := resp{
		Status:  "ok",
		Env:     a.cfg.Env,
		Version: a.version.Version,
		DBOK:    dbOK,
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	_ = json.NewEncoder(w).Encode(out)
}
