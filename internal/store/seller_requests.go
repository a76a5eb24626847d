package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"feria/internal/auth"
)

const sellerRequestColumns = `
  sr.id, sr.public_id, sr.user_id, sr.full_name, sr.rut, sr.email, sr.description, sr.status,
  sr.created_at, sr.updated_at, u.public_id, u.username`

const sellerRequestFrom = ` FROM seller_requests sr JOIN users u ON u.id = sr.user_id `

func scanSellerRequestRow(scan func(dest ...any) error) (SellerRequest, error) {
	var sr SellerRequest
	var status string
	err := scan(&sr.ID, &sr.PublicID, &sr.UserID, &sr.FullName, &sr.RUT, &sr.Email, &sr.Description,
		&status, &sr.CreatedAt, &sr.UpdatedAt, &sr.UserPublicID, &sr.UserName)
	if err != nil {
		return SellerRequest{}, err
	}
	sr.Status = SellerRequestStatus(status)
	return sr, nil
}

type NewSellerRequest struct {
	UserID      int64
	FullName    string
	RUT         string
	Email       string
	Description string
}

// CreateSellerRequest 保证同一账号最多一条 pending 申请：SQLite 用部分唯一索引兜底；
// MySQL 没有部分索引，先对申请人的用户行加锁，把同一账号的并发申请串行化后再查再插。
func (d *DB) CreateSellerRequest(ctx context.Context, nr NewSellerRequest) (SellerRequest, error) {
	publicID := uuid.NewString()

	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return SellerRequest{}, fmt.Errorf("开始申请事务失败: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if d.dialect == DialectMySQL {
		var locked int64
		err := tx.QueryRowContext(ctx, `SELECT id FROM users WHERE id=? FOR UPDATE`, nr.UserID).Scan(&locked)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return SellerRequest{}, sql.ErrNoRows
			}
			return SellerRequest{}, fmt.Errorf("锁定申请人失败: %w", err)
		}
	}

	var pending int
	err = tx.QueryRowContext(ctx, `
SELECT COUNT(1) FROM seller_requests WHERE user_id=? AND status='pending'
`, nr.UserID).Scan(&pending)
	if err != nil {
		return SellerRequest{}, fmt.Errorf("查询待处理申请失败: %w", err)
	}
	if pending > 0 {
		return SellerRequest{}, ErrPendingSellerRequest
	}

	_, err = tx.ExecContext(ctx, `
INSERT INTO seller_requests(public_id, user_id, full_name, rut, email, description, status, created_at, updated_at)
VALUES(?, ?, ?, ?, ?, ?, 'pending', CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)
`, publicID, nr.UserID, nr.FullName, nr.RUT, nr.Email, nr.Description)
	if err != nil {
		if isUniqueViolation(err) {
			return SellerRequest{}, ErrPendingSellerRequest
		}
		return SellerRequest{}, fmt.Errorf("创建卖家申请失败: %w", err)
	}

	row := tx.QueryRowContext(ctx, `SELECT`+sellerRequestColumns+sellerRequestFrom+`WHERE sr.public_id=?`, publicID)
	sr, err := scanSellerRequestRow(row.Scan)
	if err != nil {
		return SellerRequest{}, fmt.Errorf("查询卖家申请失败: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return SellerRequest{}, fmt.Errorf("提交申请事务失败: %w", err)
	}
	return sr, nil
}

func (d *DB) ListSellerRequests(ctx context.Context) ([]SellerRequest, error) {
	rows, err := d.db.QueryContext(ctx, `SELECT`+sellerRequestColumns+sellerRequestFrom+`ORDER BY sr.id DESC`)
	if err != nil {
		return nil, fmt.Errorf("查询卖家申请列表失败: %w", err)
	}
	defer rows.Close()

	out := []SellerRequest{}
	for rows.Next() {
		sr, err := scanSellerRequestRow(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("读取卖家申请行失败: %w", err)
		}
		out = append(out, sr)
	}
	return out, rows.Err()
}

func (d *DB) GetSellerRequestByPublicID(ctx context.Context, publicID string) (SellerRequest, error) {
	row := d.db.QueryRowContext(ctx, `SELECT`+sellerRequestColumns+sellerRequestFrom+`WHERE sr.public_id=?`, publicID)
	sr, err := scanSellerRequestRow(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return SellerRequest{}, sql.ErrNoRows
		}
		return SellerRequest{}, fmt.Errorf("查询卖家申请失败: %w", err)
	}
	return sr, nil
}

// ResolveSellerRequest 裁决一条 pending 申请；approved 时在同一事务里把申请人晋升为 seller。
func (d *DB) ResolveSellerRequest(ctx context.Context, requestID int64, status SellerRequestStatus) (SellerRequest, error) {
	if status != SellerRequestApproved && status != SellerRequestRejected {
		return SellerRequest{}, fmt.Errorf("裁决状态不合法: %q", status)
	}

	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return SellerRequest{}, fmt.Errorf("开始裁决事务失败: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.ExecContext(ctx, `
UPDATE seller_requests SET status=?, updated_at=CURRENT_TIMESTAMP
WHERE id=? AND status='pending'
`, string(status), requestID)
	if err != nil {
		return SellerRequest{}, fmt.Errorf("更新卖家申请失败: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		// 区分 "不存在" 和 "已处理"。
		var exists int
		if err := tx.QueryRowContext(ctx, `SELECT COUNT(1) FROM seller_requests WHERE id=?`, requestID).Scan(&exists); err != nil {
			return SellerRequest{}, fmt.Errorf("查询卖家申请失败: %w", err)
		}
		if exists == 0 {
			return SellerRequest{}, sql.ErrNoRows
		}
		return SellerRequest{}, ErrRequestResolved
	}

	if status == SellerRequestApproved {
		_, err = tx.ExecContext(ctx, `
UPDATE users SET role=?, updated_at=CURRENT_TIMESTAMP
WHERE id=(SELECT user_id FROM seller_requests WHERE id=?)
`, auth.RoleSeller.String(), requestID)
		if err != nil {
			return SellerRequest{}, fmt.Errorf("晋升卖家失败: %w", err)
		}
	}

	row := tx.QueryRowContext(ctx, `SELECT`+sellerRequestColumns+sellerRequestFrom+`WHERE sr.id=?`, requestID)
	sr, err := scanSellerRequestRow(row.Scan)
	if err != nil {
		return SellerRequest{}, fmt.Errorf("查询卖家申请失败: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return SellerRequest{}, fmt.Errorf("提交裁决事务失败: %w", err)
	}
	return sr, nil
}
