// Package obs 提供最小的可观测能力：JSON 结构化日志与 /debug/vars 下的
// API 请求计数，默认不记录敏感信息。
package obs

import (
	"log/slog"
	"os"
)

// NewLogger 返回 JSON 结构化日志器；dev 环境放开 debug 级别。
func NewLogger(env string) *slog.Logger {
	level := slog.LevelInfo
	if env == "dev" {
		level = slog.LevelDebug
	}
	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level})
	return slog.New(handler)
}
