// Package auth 提供鉴权主体、角色、密码与会话令牌工具，避免在 handler 中重复实现安全细节。
package auth

import "fmt"

// Role 是封闭的角色枚举：所有角色判定都必须经过 ParseRole / Valid，
// 新增角色时编译器与测试会强制回看每个 switch 调用点。
type Role string

const (
	RoleAdmin    Role = "admin"
	RoleSeller   Role = "seller"
	RoleReviewer Role = "reviewer"
)

func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case RoleAdmin:
		return RoleAdmin, nil
	case RoleSeller:
		return RoleSeller, nil
	case RoleReviewer:
		return RoleReviewer, nil
	default:
		return "", fmt.Errorf("未知角色: %q", s)
	}
}

func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleSeller, RoleReviewer:
		return true
	default:
		return false
	}
}

func (r Role) String() string {
	return string(r)
}

// CanManageStores 表示可以创建/维护店铺的角色（admin 与 seller）。
func (r Role) CanManageStores() bool {
	switch r {
	case RoleAdmin, RoleSeller:
		return true
	case RoleReviewer:
		return false
	default:
		return false
	}
}
