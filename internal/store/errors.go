package store

import (
	"errors"
	"strings"

	"github.com/go-sql-driver/mysql"
)

var (
	// ErrUsernameTaken 表示用户名唯一约束冲突（由持久层仲裁并发注册）。
	ErrUsernameTaken = errors.New("username already taken")
	// ErrPendingSellerRequest 表示同一账号已有待处理的卖家申请。
	ErrPendingSellerRequest = errors.New("pending seller request already exists")
	// ErrRequestResolved 表示卖家申请已被处理过，不能重复裁决。
	ErrRequestResolved = errors.New("seller request already resolved")
	// ErrDuplicateReview 表示同一用户对同一店铺的第二条评价。
	ErrDuplicateReview = errors.New("review for this store already exists")
)

// isUniqueViolation 跨方言识别唯一约束冲突：SQLite 看错误文本，MySQL 看 1062。
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) {
		return myErr.Number == 1062
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}
