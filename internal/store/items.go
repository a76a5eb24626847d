package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"feria/internal/search"
)

const itemColumns = `
  i.id, i.public_id, i.store_id, i.name, i.description, i.picture, i.price,
  i.created_at, i.updated_at, s.public_id, s.name, s.location, s.owner_id`

const itemFrom = ` FROM items i JOIN stores s ON s.id = i.store_id `

func scanItemRow(scan func(dest ...any) error) (Item, error) {
	var it Item
	var price string
	err := scan(&it.ID, &it.PublicID, &it.StoreID, &it.Name, &it.Description, &it.Picture, &price,
		&it.CreatedAt, &it.UpdatedAt, &it.StorePublicID, &it.StoreName, &it.StoreLocation, &it.StoreOwnerID)
	if err != nil {
		return Item{}, err
	}
	p, err := decimal.NewFromString(price)
	if err != nil {
		return Item{}, fmt.Errorf("商品价格数据损坏: %w", err)
	}
	it.Price = p
	return it, nil
}

// ItemSort 是商品搜索的排序方式。
type ItemSort string

const (
	ItemSortNone      ItemSort = ""
	ItemSortPriceAsc  ItemSort = "price_asc"
	ItemSortPriceDesc ItemSort = "price_desc"
)

func ParseItemSort(s string) (ItemSort, error) {
	switch ItemSort(s) {
	case ItemSortNone, ItemSortPriceAsc, ItemSortPriceDesc:
		return ItemSort(s), nil
	default:
		return "", fmt.Errorf("invalid sort: %q", s)
	}
}

func (d *DB) ListItems(ctx context.Context) ([]Item, error) {
	return d.queryItems(ctx, `SELECT`+itemColumns+itemFrom+`ORDER BY i.id`, "")
}

// SearchItems 按名称（大小写/重音不敏感）过滤，价格排序交给 SQL。
// price 在 SQLite 里是 TEXT，排序用 CAST 保证数值序。
func (d *DB) SearchItems(ctx context.Context, q string, sort ItemSort) ([]Item, error) {
	stmt := `SELECT` + itemColumns + itemFrom
	switch sort {
	case ItemSortPriceAsc:
		stmt += `ORDER BY CAST(i.price AS DECIMAL(12,2)) ASC, i.id`
	case ItemSortPriceDesc:
		stmt += `ORDER BY CAST(i.price AS DECIMAL(12,2)) DESC, i.id`
	default:
		stmt += `ORDER BY i.id`
	}
	return d.queryItems(ctx, stmt, q)
}

func (d *DB) queryItems(ctx context.Context, stmt string, q string) ([]Item, error) {
	rows, err := d.db.QueryContext(ctx, stmt)
	if err != nil {
		return nil, fmt.Errorf("查询商品列表失败: %w", err)
	}
	defer rows.Close()

	out := []Item{}
	for rows.Next() {
		it, err := scanItemRow(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("读取商品行失败: %w", err)
		}
		if !search.Matches(q, it.Name) {
			continue
		}
		out = append(out, it)
	}
	return out, rows.Err()
}

func (d *DB) GetItemByPublicID(ctx context.Context, publicID string) (Item, error) {
	row := d.db.QueryRowContext(ctx, `SELECT`+itemColumns+itemFrom+`WHERE i.public_id=?`, publicID)
	it, err := scanItemRow(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Item{}, sql.ErrNoRows
		}
		return Item{}, fmt.Errorf("查询商品失败: %w", err)
	}
	return it, nil
}

type NewItem struct {
	StoreID     int64
	Name        string
	Description string
	Picture     *string
	Price       decimal.Decimal
}

func (d *DB) CreateItem(ctx context.Context, ni NewItem) (Item, error) {
	publicID := uuid.NewString()
	_, err := d.db.ExecContext(ctx, `
INSERT INTO items(public_id, store_id, name, description, picture, price, created_at, updated_at)
VALUES(?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)
`, publicID, ni.StoreID, ni.Name, ni.Description, ni.Picture, ni.Price.StringFixed(2))
	if err != nil {
		return Item{}, fmt.Errorf("创建商品失败: %w", err)
	}
	return d.GetItemByPublicID(ctx, publicID)
}

func (d *DB) UpdateItem(ctx context.Context, itemID int64, ni NewItem) (Item, error) {
	res, err := d.db.ExecContext(ctx, `
UPDATE items
SET name=?, description=?, picture=?, price=?, updated_at=CURRENT_TIMESTAMP
WHERE id=?
`, ni.Name, ni.Description, ni.Picture, ni.Price.StringFixed(2), itemID)
	if err != nil {
		return Item{}, fmt.Errorf("更新商品失败: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return Item{}, sql.ErrNoRows
	}
	row := d.db.QueryRowContext(ctx, `SELECT`+itemColumns+itemFrom+`WHERE i.id=?`, itemID)
	it, err := scanItemRow(row.Scan)
	if err != nil {
		return Item{}, fmt.Errorf("查询商品失败: %w", err)
	}
	return it, nil
}

func (d *DB) DeleteItem(ctx context.Context, itemID int64) error {
	res, err := d.db.ExecContext(ctx, `DELETE FROM items WHERE id=?`, itemID)
	if err != nil {
		return fmt.Errorf("删除商品失败: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}
	return nil
}
