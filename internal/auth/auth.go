package auth

import (
	"context"
)

// Principal 是通过会话令牌校验后的请求主体，挂在 request context 上供 handler 消费。
type Principal struct {
	// ID 是账号对外的稳定标识（public id），与 JWT 的 sub 一致。
	ID       string
	Username string
	Role     Role
}

type ctxKey int

const principalKey ctxKey = 1

func WithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, principalKey, p)
}

func PrincipalFromContext(ctx context.Context) (Principal, bool) {
	v := ctx.Value(principalKey)
	if v == nil {
		return Principal{}, false
	}
	p, ok := v.(Principal)
	return p, ok
}
