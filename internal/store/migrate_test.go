package store

import (
	"strings"
	"testing"
)

// MySQL 的 utf8mb4 默认排序规则大小写不敏感，用户名唯一键必须显式二进制排序，
// 否则 Alice 与 alice 在 MySQL 上会撞唯一键，而 SQLite 上不会。
func TestMySQLSchema_UsernameBinaryCollation(t *testing.T) {
	b, err := migrationsFS.ReadFile("migrations/0001_init.sql")
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if !strings.Contains(string(b), "username VARCHAR(64) COLLATE utf8mb4_bin") {
		t.Fatal("users.username must declare a binary collation")
	}
}

func TestSplitSQLStatements(t *testing.T) {
	stmts := splitSQLStatements("CREATE TABLE a (id INT);\n\nCREATE TABLE b (id INT);\n")
	if len(stmts) != 2 {
		t.Fatalf("statements = %d, want 2", len(stmts))
	}
	if !strings.HasPrefix(stmts[1], "CREATE TABLE b") {
		t.Fatalf("stmt[1] = %q", stmts[1])
	}
}
