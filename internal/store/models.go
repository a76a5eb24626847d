package store

import (
	"time"

	"github.com/shopspring/decimal"

	"feria/internal/auth"
)

type User struct {
	ID           int64
	PublicID     string
	Username     string
	PasswordHash []byte
	Role         auth.Role
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Store 是一家店铺。Images 在数据库里以 JSON 数组文本存储。
type Store struct {
	ID          int64
	PublicID    string
	Category    string
	Name        string
	Description string
	Location    string
	Images      []string
	Junaeb      bool
	OwnerID     int64
	// OwnerPublicID 由 users 联表带出，是 API 层使用的对外标识。
	OwnerPublicID string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

type Item struct {
	ID          int64
	PublicID    string
	StoreID     int64
	Name        string
	Description string
	Picture     *string
	Price       decimal.Decimal
	CreatedAt   time.Time
	UpdatedAt   time.Time

	// 联表带出的店铺摘要，用于 /api/items 的嵌入展示。
	StorePublicID string
	StoreName     string
	StoreLocation string
	StoreOwnerID  int64
}

type Review struct {
	ID        int64
	PublicID  string
	StoreID   int64
	UserID    int64
	Rating    int
	Comment   string
	Picture   *string
	CreatedAt time.Time
	UpdatedAt time.Time

	StorePublicID string
	StoreName     string
	UserPublicID  string
	UserName      string
}

type SellerRequestStatus string

const (
	SellerRequestPending  SellerRequestStatus = "pending"
	SellerRequestApproved SellerRequestStatus = "approved"
	SellerRequestRejected SellerRequestStatus = "rejected"
)

type SellerRequest struct {
	ID          int64
	PublicID    string
	UserID      int64
	FullName    string
	RUT         string
	Email       string
	Description string
	Status      SellerRequestStatus
	CreatedAt   time.Time
	UpdatedAt   time.Time

	UserPublicID string
	UserName     string
}

// StoreCategories 是店铺类目的封闭集合，顺序即前端下拉框顺序。
var StoreCategories = []string{
	"Cafetería",
	"Restaurante",
	"Food Truck",
	"Máquina Expendedora",
	"Minimarket",
	"Otro",
}

func ValidStoreCategory(c string) bool {
	for _, v := range StoreCategories {
		if v == c {
			return true
		}
	}
	return false
}
