package store

import (
	"fmt"
	"regexp"
	"strings"
)

var usernameRE = regexp.MustCompile(`^[A-Za-z0-9_.-]+$`)

// NormalizeUsername 只做格式约束，大小写保持原样（用户名区分大小写）。
func NormalizeUsername(raw string) (string, error) {
	u := strings.TrimSpace(raw)
	if u == "" {
		return "", fmt.Errorf("username is required")
	}
	if len(u) < 3 {
		return "", fmt.Errorf("username must be at least 3 characters long")
	}
	if len(u) > 64 {
		return "", fmt.Errorf("username must be at most 64 characters long")
	}
	if !usernameRE.MatchString(u) {
		return "", fmt.Errorf("username may only contain letters, digits, '_', '.' and '-'")
	}
	return u, nil
}
