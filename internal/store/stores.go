package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"feria/internal/search"
)

const storeColumns = `
  s.id, s.public_id, s.category, s.name, s.description, s.location, s.images, s.junaeb,
  s.owner_id, u.public_id, s.created_at, s.updated_at`

const storeFrom = ` FROM stores s JOIN users u ON u.id = s.owner_id `

func scanStoreRow(scan func(dest ...any) error) (Store, error) {
	var st Store
	var images string
	var junaeb int
	err := scan(&st.ID, &st.PublicID, &st.Category, &st.Name, &st.Description, &st.Location,
		&images, &junaeb, &st.OwnerID, &st.OwnerPublicID, &st.CreatedAt, &st.UpdatedAt)
	if err != nil {
		return Store{}, err
	}
	st.Junaeb = junaeb != 0
	if err := json.Unmarshal([]byte(images), &st.Images); err != nil {
		return Store{}, fmt.Errorf("店铺 images 数据损坏: %w", err)
	}
	if st.Images == nil {
		st.Images = []string{}
	}
	return st, nil
}

// StoreFilter 是 GET /api/stores 的查询条件。Search 是重音不敏感的名称子串匹配，
// 集合很小，类目/店主走 SQL，名称匹配在内存做。
type StoreFilter struct {
	Category      string
	Search        string
	OwnerPublicID string
}

func (d *DB) ListStores(ctx context.Context, f StoreFilter) ([]Store, error) {
	q := `SELECT` + storeColumns + storeFrom
	var conds []string
	var args []any
	if strings.TrimSpace(f.Category) != "" {
		conds = append(conds, `s.category=?`)
		args = append(args, strings.TrimSpace(f.Category))
	}
	if strings.TrimSpace(f.OwnerPublicID) != "" {
		conds = append(conds, `u.public_id=?`)
		args = append(args, strings.TrimSpace(f.OwnerPublicID))
	}
	if len(conds) > 0 {
		q += ` WHERE ` + strings.Join(conds, ` AND `)
	}
	q += ` ORDER BY s.id`

	rows, err := d.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("查询店铺列表失败: %w", err)
	}
	defer rows.Close()

	out := []Store{}
	for rows.Next() {
		st, err := scanStoreRow(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("读取店铺行失败: %w", err)
		}
		if !search.Matches(f.Search, st.Name) {
			continue
		}
		out = append(out, st)
	}
	return out, rows.Err()
}

func (d *DB) GetStoreByPublicID(ctx context.Context, publicID string) (Store, error) {
	row := d.db.QueryRowContext(ctx, `SELECT`+storeColumns+storeFrom+`WHERE s.public_id=?`, publicID)
	st, err := scanStoreRow(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Store{}, sql.ErrNoRows
		}
		return Store{}, fmt.Errorf("查询店铺失败: %w", err)
	}
	return st, nil
}

type NewStore struct {
	Category    string
	Name        string
	Description string
	Location    string
	Images      []string
	Junaeb      bool
	OwnerID     int64
}

func (d *DB) CreateStore(ctx context.Context, ns NewStore) (Store, error) {
	publicID := uuid.NewString()
	images := ns.Images
	if images == nil {
		images = []string{}
	}
	imagesJSON, err := json.Marshal(images)
	if err != nil {
		return Store{}, fmt.Errorf("序列化店铺 images 失败: %w", err)
	}
	_, err = d.db.ExecContext(ctx, `
INSERT INTO stores(public_id, category, name, description, location, images, junaeb, owner_id, created_at, updated_at)
VALUES(?, ?, ?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)
`, publicID, ns.Category, ns.Name, ns.Description, ns.Location, string(imagesJSON), boolToInt(ns.Junaeb), ns.OwnerID)
	if err != nil {
		return Store{}, fmt.Errorf("创建店铺失败: %w", err)
	}
	return d.GetStoreByPublicID(ctx, publicID)
}

func (d *DB) UpdateStore(ctx context.Context, storeID int64, ns NewStore) (Store, error) {
	images := ns.Images
	if images == nil {
		images = []string{}
	}
	imagesJSON, err := json.Marshal(images)
	if err != nil {
		return Store{}, fmt.Errorf("序列化店铺 images 失败: %w", err)
	}
	res, err := d.db.ExecContext(ctx, `
UPDATE stores
SET category=?, name=?, description=?, location=?, images=?, junaeb=?, updated_at=CURRENT_TIMESTAMP
WHERE id=?
`, ns.Category, ns.Name, ns.Description, ns.Location, string(imagesJSON), boolToInt(ns.Junaeb), storeID)
	if err != nil {
		return Store{}, fmt.Errorf("更新店铺失败: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return Store{}, sql.ErrNoRows
	}
	row := d.db.QueryRowContext(ctx, `SELECT`+storeColumns+storeFrom+`WHERE s.id=?`, storeID)
	st, err := scanStoreRow(row.Scan)
	if err != nil {
		return Store{}, fmt.Errorf("查询店铺失败: %w", err)
	}
	return st, nil
}

// DeleteStore 依赖外键级联删除店铺下的商品与评价。
func (d *DB) DeleteStore(ctx context.Context, storeID int64) error {
	res, err := d.db.ExecContext(ctx, `DELETE FROM stores WHERE id=?`, storeID)
	if err != nil {
		return fmt.Errorf("删除店铺失败: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// AverageRatings 返回 storeID -> 平均评分（保留一位小数由调用方处理为展示值）。
func (d *DB) AverageRatings(ctx context.Context) (map[int64]float64, error) {
	rows, err := d.db.QueryContext(ctx, `
SELECT store_id, AVG(rating) FROM reviews GROUP BY store_id
`)
	if err != nil {
		return nil, fmt.Errorf("统计店铺评分失败: %w", err)
	}
	defer rows.Close()

	out := map[int64]float64{}
	for rows.Next() {
		var storeID int64
		var avg float64
		if err := rows.Scan(&storeID, &avg); err != nil {
			return nil, fmt.Errorf("读取评分行失败: %w", err)
		}
		out[storeID] = avg
	}
	return out, rows.Err()
}

func boolToInt(v bool) int {
	if v {
		return 1
	}
	return 0
}
