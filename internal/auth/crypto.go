package auth

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

const MinPasswordLength = 6

// dummyHash 是一个固定口令的 bcrypt 结果，用户名不存在时仍然用它跑一次比较，
// 让登录耗时与用户名是否存在无关。
var dummyHash = func() []byte {
	h, err := bcrypt.GenerateFromPassword([]byte("feria-dummy-password-9f1c"), bcrypt.DefaultCost)
	if err != nil {
		panic(err)
	}
	return h
}()

func HashPassword(password string) ([]byte, error) {
	if len(password) < MinPasswordLength {
		return nil, fmt.Errorf("password must be at least %d characters long", MinPasswordLength)
	}
	return bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
}

// CheckPassword 校验失败只返回 false，不区分失败原因。
func CheckPassword(hash []byte, password string) bool {
	return bcrypt.CompareHashAndPassword(hash, []byte(password)) == nil
}

// DummyHash 返回用于等时比较的占位哈希，调用方不得把它当成真实口令哈希持久化。
func DummyHash() []byte {
	return dummyHash
}
