package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
)

const reviewColumns = `
  r.id, r.public_id, r.store_id, r.user_id, r.rating, r.comment, r.picture,
  r.created_at, r.updated_at, s.public_id, s.name, u.public_id, u.username`

const reviewFrom = `
 FROM reviews r
 JOIN stores s ON s.id = r.store_id
 JOIN users u ON u.id = r.user_id `

func scanReviewRow(scan func(dest ...any) error) (Review, error) {
	var rv Review
	err := scan(&rv.ID, &rv.PublicID, &rv.StoreID, &rv.UserID, &rv.Rating, &rv.Comment, &rv.Picture,
		&rv.CreatedAt, &rv.UpdatedAt, &rv.StorePublicID, &rv.StoreName, &rv.UserPublicID, &rv.UserName)
	if err != nil {
		return Review{}, err
	}
	return rv, nil
}

func (d *DB) ListReviews(ctx context.Context) ([]Review, error) {
	rows, err := d.db.QueryContext(ctx, `SELECT`+reviewColumns+reviewFrom+`ORDER BY r.id`)
	if err != nil {
		return nil, fmt.Errorf("查询评价列表失败: %w", err)
	}
	defer rows.Close()

	out := []Review{}
	for rows.Next() {
		rv, err := scanReviewRow(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("读取评价行失败: %w", err)
		}
		out = append(out, rv)
	}
	return out, rows.Err()
}

func (d *DB) GetReviewByPublicID(ctx context.Context, publicID string) (Review, error) {
	row := d.db.QueryRowContext(ctx, `SELECT`+reviewColumns+reviewFrom+`WHERE r.public_id=?`, publicID)
	rv, err := scanReviewRow(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Review{}, sql.ErrNoRows
		}
		return Review{}, fmt.Errorf("查询评价失败: %w", err)
	}
	return rv, nil
}

type NewReview struct {
	StoreID int64
	UserID  int64
	Rating  int
	Comment string
	Picture *string
}

// CreateReview 的 "一人一店一条评价" 由 (store_id, user_id) 唯一索引兜底。
func (d *DB) CreateReview(ctx context.Context, nr NewReview) (Review, error) {
	publicID := uuid.NewString()
	_, err := d.db.ExecContext(ctx, `
INSERT INTO reviews(public_id, store_id, user_id, rating, comment, picture, created_at, updated_at)
VALUES(?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)
`, publicID, nr.StoreID, nr.UserID, nr.Rating, nr.Comment, nr.Picture)
	if err != nil {
		if isUniqueViolation(err) {
			return Review{}, ErrDuplicateReview
		}
		return Review{}, fmt.Errorf("创建评价失败: %w", err)
	}
	return d.GetReviewByPublicID(ctx, publicID)
}

func (d *DB) UpdateReview(ctx context.Context, reviewID int64, rating int, comment string, picture *string) (Review, error) {
	res, err := d.db.ExecContext(ctx, `
UPDATE reviews
SET rating=?, comment=?, picture=?, updated_at=CURRENT_TIMESTAMP
WHERE id=?
`, rating, comment, picture, reviewID)
	if err != nil {
		return Review{}, fmt.Errorf("更新评价失败: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return Review{}, sql.ErrNoRows
	}
	row := d.db.QueryRowContext(ctx, `SELECT`+reviewColumns+reviewFrom+`WHERE r.id=?`, reviewID)
	rv, err := scanReviewRow(row.Scan)
	if err != nil {
		return Review{}, fmt.Errorf("查询评价失败: %w", err)
	}
	return rv, nil
}

func (d *DB) DeleteReview(ctx context.Context, reviewID int64) error {
	res, err := d.db.ExecContext(ctx, `DELETE FROM reviews WHERE id=?`, reviewID)
	if err != nil {
		return fmt.Errorf("删除评价失败: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}
	return nil
}
