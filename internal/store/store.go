// Package store 提供数据库读写的封装与基础约束，保证业务层只处理领域语义而不是 SQL 细节。
package store

import (
	"database/sql"
	"strings"
)

// DB 是持久层入口。领域实体（Store/Item/Review/...）直接以 store.Xxx 命名，
// 所以包装类型不叫 Store，避免与“店铺”实体撞名。
type DB struct {
	db      *sql.DB
	dialect Dialect
}

func New(db *sql.DB) *DB {
	return &DB{
		db:      db,
		dialect: DialectSQLite,
	}
}

func (d *DB) SetDialect(dl Dialect) {
	if strings.TrimSpace(string(dl)) == "" {
		return
	}
	d.dialect = dl
}
