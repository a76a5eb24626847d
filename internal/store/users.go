package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"feria/internal/auth"
)

const userColumns = `id, public_id, username, password_hash, role, created_at, updated_at`

func scanUser(row *sql.Row) (User, error) {
	var u User
	var role string
	err := row.Scan(&u.ID, &u.PublicID, &u.Username, &u.PasswordHash, &role, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return User{}, sql.ErrNoRows
		}
		return User{}, fmt.Errorf("查询用户失败: %w", err)
	}
	r, err := auth.ParseRole(role)
	if err != nil {
		return User{}, fmt.Errorf("用户角色数据损坏: %w", err)
	}
	u.Role = r
	return u, nil
}

// CreateUser 注册新账号。"第一个账号成为 admin" 不做读后写，角色由同一条 INSERT
// 里的子查询决定，并发注册交给数据库仲裁，不会出现两个初始 admin。
func (d *DB) CreateUser(ctx context.Context, username string, passwordHash []byte) (User, error) {
	publicID := uuid.NewString()

	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return User{}, fmt.Errorf("开始注册事务失败: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(ctx, `
INSERT INTO users(public_id, username, password_hash, role, created_at, updated_at)
SELECT ?, ?, ?,
  CASE WHEN (SELECT COUNT(*) FROM users) = 0 THEN 'admin' ELSE 'reviewer' END,
  CURRENT_TIMESTAMP, CURRENT_TIMESTAMP
`, publicID, username, passwordHash)
	if err != nil {
		if isUniqueViolation(err) {
			return User{}, ErrUsernameTaken
		}
		return User{}, fmt.Errorf("创建用户失败: %w", err)
	}

	u, err := scanUser(tx.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE public_id=?`, publicID))
	if err != nil {
		return User{}, err
	}
	if err := tx.Commit(); err != nil {
		return User{}, fmt.Errorf("提交注册事务失败: %w", err)
	}
	return u, nil
}

func (d *DB) GetUserByUsername(ctx context.Context, username string) (User, error) {
	return scanUser(d.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE username=?`, username))
}

func (d *DB) GetUserByPublicID(ctx context.Context, publicID string) (User, error) {
	return scanUser(d.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE public_id=?`, publicID))
}

func (d *DB) ListUsers(ctx context.Context) ([]User, error) {
	rows, err := d.db.QueryContext(ctx, `SELECT `+userColumns+` FROM users ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("查询用户列表失败: %w", err)
	}
	defer rows.Close()

	var out []User
	for rows.Next() {
		var u User
		var role string
		if err := rows.Scan(&u.ID, &u.PublicID, &u.Username, &u.PasswordHash, &role, &u.CreatedAt, &u.UpdatedAt); err != nil {
			return nil, fmt.Errorf("读取用户行失败: %w", err)
		}
		r, err := auth.ParseRole(role)
		if err != nil {
			return nil, fmt.Errorf("用户角色数据损坏: %w", err)
		}
		u.Role = r
		out = append(out, u)
	}
	return out, rows.Err()
}

func (d *DB) UpdateUserRole(ctx context.Context, userID int64, role auth.Role) error {
	if !role.Valid() {
		return fmt.Errorf("角色不合法: %q", role)
	}
	res, err := d.db.ExecContext(ctx, `
UPDATE users SET role=?, updated_at=CURRENT_TIMESTAMP WHERE id=?
`, role.String(), userID)
	if err != nil {
		return fmt.Errorf("更新用户角色失败: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// DeleteUser 依赖外键级联：店铺、商品、评价、卖家申请随账号一并删除。
func (d *DB) DeleteUser(ctx context.Context, userID int64) error {
	res, err := d.db.ExecContext(ctx, `DELETE FROM users WHERE id=?`, userID)
	if err != nil {
		return fmt.Errorf("删除用户失败: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}
	return nil
}
