// Package config 负责读取并合并服务配置（环境变量为主），避免在业务代码里散落解析逻辑。
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Env      string
	Server   ServerConfig
	DB       DBConfig
	Auth     AuthConfig
	Security SecurityConfig
}

type ServerConfig struct {
	Addr          string
	PublicBaseURL string

	// HTTP 连接硬化：这些参数会直接映射到 net/http 的 http.Server。
	ReadHeaderTimeoutSeconds int
	ReadTimeoutSeconds       int
	IdleTimeoutSeconds       int
	MaxHeaderBytes           int

	// 请求体上限，超大请求直接拒绝，避免 OOM。
	MaxBodyBytes int64
}

type DBConfig struct {
	// Driver 支持 mysql/sqlite；为空时会根据 dsn 自动推断。
	// - 当 dsn 非空且 driver 为空：推断为 mysql
	// - 其他情况默认 sqlite
	Driver string
	// DSN 仅用于 MySQL（示例：user:pass@tcp(127.0.0.1:3306)/feria?parseTime=true&charset=utf8mb4）
	DSN string
	// SQLitePath 是 SQLite 数据库文件路径。
	SQLitePath string
}

type AuthConfig struct {
	// JWTSecret 是会话令牌的 HMAC 密钥，必须显式配置，否则启动失败。
	JWTSecret string
	// SessionTTL 是会话令牌有效期。
	SessionTTL time.Duration
	// CookieName 是会话 Cookie 名称。
	CookieName string
}

type SecurityConfig struct {
	AllowOpenRegistration bool
	// DisableSecureCookies 供本地 http 调试使用；生产环境保持 false。
	DisableSecureCookies bool
}

// LoadFromEnv 仅从环境变量加载配置（不读取任何配置文件）。
func LoadFromEnv() (Config, error) {
	cfg := defaultConfig()
	applyEnvOverrides(&cfg)
	return normalizeAndValidate(cfg)
}

func normalizeAndValidate(cfg Config) (Config, error) {
	publicBaseURL, err := NormalizeHTTPBaseURL(cfg.Server.PublicBaseURL, "server.public_base_url")
	if err != nil {
		return Config{}, err
	}
	cfg.Server.PublicBaseURL = publicBaseURL
	if cfg.Server.Addr == "" {
		return Config{}, errors.New("server.addr 不能为空")
	}

	cfg.DB.Driver = strings.ToLower(strings.TrimSpace(cfg.DB.Driver))
	cfg.DB.DSN = strings.TrimSpace(cfg.DB.DSN)
	cfg.DB.SQLitePath = strings.TrimSpace(cfg.DB.SQLitePath)

	if cfg.DB.Driver == "" {
		if cfg.DB.DSN != "" {
			cfg.DB.Driver = "mysql"
		} else {
			cfg.DB.Driver = "sqlite"
		}
	}

	switch cfg.DB.Driver {
	case "sqlite":
		if cfg.DB.SQLitePath == "" {
			cfg.DB.SQLitePath = "./data/feria.db"
		}
	case "mysql":
		if cfg.DB.DSN == "" {
			return Config{}, errors.New("db.dsn 不能为空（db.driver=mysql）")
		}
	default:
		return Config{}, fmt.Errorf("db.driver 不支持：%s（仅支持 mysql/sqlite）", cfg.DB.Driver)
	}

	cfg.Auth.JWTSecret = strings.TrimSpace(cfg.Auth.JWTSecret)
	if cfg.Auth.JWTSecret == "" {
		return Config{}, errors.New("auth.jwt_secret 不能为空（设置 FERIA_JWT_SECRET）")
	}
	if cfg.Auth.SessionTTL <= 0 {
		return Config{}, errors.New("auth.session_ttl 必须为正")
	}
	cfg.Auth.CookieName = strings.TrimSpace(cfg.Auth.CookieName)
	if cfg.Auth.CookieName == "" {
		return Config{}, errors.New("auth.cookie_name 不能为空")
	}

	return cfg, nil
}

func NormalizeHTTPBaseURL(raw string, label string) (string, error) {
	v := strings.TrimRight(strings.TrimSpace(raw), "/")
	if v == "" {
		return "", nil
	}
	u, err := url.Parse(v)
	if err != nil {
		return "", fmt.Errorf("解析 %s 失败: %w", label, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", fmt.Errorf("%s 仅支持 http/https", label)
	}
	if u.Host == "" {
		return "", fmt.Errorf("%s host 不能为空", label)
	}
	return v, nil
}

func defaultConfig() Config {
	return Config{
		Env: "dev",
		Server: ServerConfig{
			Addr: ":8080",

			ReadHeaderTimeoutSeconds: 5,
			ReadTimeoutSeconds:       30,
			IdleTimeoutSeconds:       120,
			MaxHeaderBytes:           1048576,

			MaxBodyBytes: 1 << 20, // 1MB
		},
		DB: DBConfig{
			SQLitePath: "./data/feria.db",
		},
		Auth: AuthConfig{
			SessionTTL: time.Hour,
			CookieName: "feria_token",
		},
		Security: SecurityConfig{
			AllowOpenRegistration: true,
		},
	}
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("FERIA_ENV"); v != "" {
		cfg.Env = v
	}
	if v := os.Getenv("FERIA_ADDR"); v != "" {
		cfg.Server.Addr = v
	}
	if v := os.Getenv("FERIA_PUBLIC_BASE_URL"); v != "" {
		cfg.Server.PublicBaseURL = v
	}
	if v := os.Getenv("FERIA_SERVER_READ_HEADER_TIMEOUT_SECONDS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			cfg.Server.ReadHeaderTimeoutSeconds = n
		}
	}
	if v := os.Getenv("FERIA_SERVER_READ_TIMEOUT_SECONDS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			cfg.Server.ReadTimeoutSeconds = n
		}
	}
	if v := os.Getenv("FERIA_SERVER_IDLE_TIMEOUT_SECONDS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			cfg.Server.IdleTimeoutSeconds = n
		}
	}
	if v := os.Getenv("FERIA_SERVER_MAX_HEADER_BYTES"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.Server.MaxHeaderBytes = n
		}
	}
	if v := os.Getenv("FERIA_MAX_BODY_BYTES"); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			cfg.Server.MaxBodyBytes = n
		}
	}
	if v := os.Getenv("FERIA_DB_DRIVER"); v != "" {
		cfg.DB.Driver = v
	}
	if v := os.Getenv("FERIA_DB_DSN"); v != "" {
		cfg.DB.DSN = v
	}
	if v := os.Getenv("FERIA_SQLITE_PATH"); v != "" {
		cfg.DB.SQLitePath = v
	}
	if v := os.Getenv("FERIA_JWT_SECRET"); v != "" {
		cfg.Auth.JWTSecret = v
	}
	if v := os.Getenv("FERIA_SESSION_TTL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			cfg.Auth.SessionTTL = d
		}
	}
	if v := os.Getenv("FERIA_COOKIE_NAME"); v != "" {
		cfg.Auth.CookieName = v
	}
	if v := os.Getenv("FERIA_ALLOW_OPEN_REGISTRATION"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.Security.AllowOpenRegistration = b
		}
	}
	if v := os.Getenv("FERIA_DISABLE_SECURE_COOKIES"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.Security.DisableSecureCookies = b
		}
	}
}
