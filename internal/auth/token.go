package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// SessionTTL 是会话令牌的固定有效期，过期后只能重新登录（没有服务端吊销名单）。
const SessionTTL = time.Hour

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("token expired")
	ErrMissingClaim = errors.New("missing required claim")
)

// Claims 是会话令牌携带的身份信息。CSRF 值同时通过响应头下发给前端脚本，
// 每个请求都要求两份值一致（double-submit）。
type Claims struct {
	UserID   string
	Username string
	Role     Role
	CSRF     string
}

// TokenIssuer 负责签发与校验 HS256 会话令牌。
type TokenIssuer struct {
	secret []byte
	ttl    time.Duration
}

func NewTokenIssuer(secret []byte, ttl time.Duration) *TokenIssuer {
	if ttl == 0 {
		ttl = SessionTTL
	}
	return &TokenIssuer{secret: secret, ttl: ttl}
}

func (iss *TokenIssuer) TTL() time.Duration {
	return iss.ttl
}

// Issue 为账号签发会话令牌，同时生成随机的 CSRF 值并绑定进 claims。
func (iss *TokenIssuer) Issue(userID string, username string, role Role) (token string, csrf string, err error) {
	csrf = uuid.NewString()
	now := time.Now()
	claims := jwt.MapClaims{
		"sub":      userID,
		"username": username,
		"role":     role.String(),
		"csrf":     csrf,
		"iat":      now.Unix(),
		"exp":      now.Add(iss.ttl).Unix(),
	}
	token, err = jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(iss.secret)
	if err != nil {
		return "", "", fmt.Errorf("签发会话令牌失败: %w", err)
	}
	return token, csrf, nil
}

// Parse 校验签名算法、签名与有效期，并取出身份 claims。
func (iss *TokenIssuer) Parse(tokenString string) (Claims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return iss.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return Claims{}, ErrExpiredToken
		}
		return Claims{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !token.Valid {
		return Claims{}, ErrInvalidToken
	}

	mc, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return Claims{}, ErrInvalidToken
	}

	var out Claims
	if out.UserID, ok = mc["sub"].(string); !ok || out.UserID == "" {
		return Claims{}, fmt.Errorf("%w: sub", ErrMissingClaim)
	}
	if out.Username, ok = mc["username"].(string); !ok || out.Username == "" {
		return Claims{}, fmt.Errorf("%w: username", ErrMissingClaim)
	}
	roleStr, ok := mc["role"].(string)
	if !ok {
		return Claims{}, fmt.Errorf("%w: role", ErrMissingClaim)
	}
	role, err := ParseRole(roleStr)
	if err != nil {
		return Claims{}, fmt.Errorf("%w: role", ErrInvalidToken)
	}
	out.Role = role
	if out.CSRF, ok = mc["csrf"].(string); !ok || out.CSRF == "" {
		return Claims{}, fmt.Errorf("%w: csrf", ErrMissingClaim)
	}
	return out, nil
}
