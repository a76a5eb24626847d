package router

import (
	"database/sql"
	"encoding/json"
	"errors"
	"math"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"feria/internal/store"
)

type itemBody struct {
	StoreID     string          `json:"storeId"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Picture     *string         `json:"picture"`
	Price       decimal.Decimal `json:"price"`
}

type storeRef struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Location string `json:"location"`
}

type itemView struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Picture     *string  `json:"picture"`
	Price       float64  `json:"price"`
	Store       storeRef `json:"store"`

	// StoreRating 仅在搜索结果里出现：店铺无评价时为 null。
	StoreRating *float64 `json:"storeRating,omitempty"`
}

func viewItem(it store.Item) itemView {
	return itemView{
		ID:          it.PublicID,
		Name:        it.Name,
		Description: it.Description,
		Picture:     it.Picture,
		Price:       it.Price.InexactFloat64(),
		Store: storeRef{
			ID:       it.StorePublicID,
			Name:     it.StoreName,
			Location: it.StoreLocation,
		},
	}
}

func setItemAPIRoutes(r *gin.RouterGroup, opts Options) {
	r.GET("/items", listItemsHandler(opts))
	r.GET("/items/search", searchItemsHandler(opts))
	r.GET("/items/:id", getItemHandler(opts))
	r.POST("/items", requireSession(opts), requireStoreManager(), createItemHandler(opts))
	r.PUT("/items/:id", requireSession(opts), updateItemHandler(opts))
	r.DELETE("/items/:id", requireSession(opts), deleteItemHandler(opts))
}

func listItemsHandler(opts Options) gin.HandlerFunc {
	return func(c *gin.Context) {
		items, err := opts.Store.ListItems(c.Request.Context())
		if err != nil {
			respondInternal(c, opts, "items: list failed", err)
			return
		}
		out := make([]itemView, 0, len(items))
		for _, it := range items {
			out = append(out, viewItem(it))
		}
		c.JSON(http.StatusOK, out)
	}
}

func searchItemsHandler(opts Options) gin.HandlerFunc {
	return func(c *gin.Context) {
		sort, err := store.ParseItemSort(strings.TrimSpace(c.Query("sort")))
		if err != nil {
			respondError(c, http.StatusBadRequest, "sort must be price_asc or price_desc")
			return
		}
		items, err := opts.Store.SearchItems(c.Request.Context(), strings.TrimSpace(c.Query("q")), sort)
		if err != nil {
			respondInternal(c, opts, "items: search failed", err)
			return
		}
		ratings, err := opts.Store.AverageRatings(c.Request.Context())
		if err != nil {
			respondInternal(c, opts, "items: ratings failed", err)
			return
		}

		out := make([]itemView, 0, len(items))
		for _, it := range items {
			v := viewItem(it)
			if avg, ok := ratings[it.StoreID]; ok {
				rounded := math.Round(avg*10) / 10
				v.StoreRating = &rounded
			}
			out = append(out, v)
		}
		c.JSON(http.StatusOK, out)
	}
}

func getItemHandler(opts Options) gin.HandlerFunc {
	return func(c *gin.Context) {
		it, err := opts.Store.GetItemByPublicID(c.Request.Context(), c.Param("id"))
		if errors.Is(err, sql.ErrNoRows) {
			respondNotFound(c, "item")
			return
		}
		if err != nil {
			respondInternal(c, opts, "items: lookup failed", err)
			return
		}
		c.JSON(http.StatusOK, viewItem(it))
	}
}

func validateItemBody(req itemBody) (itemBody, string) {
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		return req, "name is required"
	}
	if req.Price.IsNegative() {
		return req, "price must not be negative"
	}
	return req, ""
}

func createItemHandler(opts Options) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, _ := principalFrom(c)

		var req itemBody
		if err := json.NewDecoder(c.Request.Body).Decode(&req); err != nil {
			respondError(c, http.StatusBadRequest, "invalid request body")
			return
		}
		req, msg := validateItemBody(req)
		if msg != "" {
			respondError(c, http.StatusBadRequest, msg)
			return
		}

		s, err := opts.Store.GetStoreByPublicID(c.Request.Context(), strings.TrimSpace(req.StoreID))
		if errors.Is(err, sql.ErrNoRows) {
			respondError(c, http.StatusBadRequest, "invalid store id")
			return
		}
		if err != nil {
			respondInternal(c, opts, "items: store lookup failed", err)
			return
		}
		if !canManageStore(p, s) {
			respondError(c, http.StatusForbidden, "forbidden")
			return
		}

		it, err := opts.Store.CreateItem(c.Request.Context(), store.NewItem{
			StoreID:     s.ID,
			Name:        req.Name,
			Description: strings.TrimSpace(req.Description),
			Picture:     req.Picture,
			Price:       req.Price,
		})
		if err != nil {
			respondInternal(c, opts, "items: create failed", err)
			return
		}
		c.JSON(http.StatusCreated, viewItem(it))
	}
}

// itemStore 取出商品所属店铺，供归属判定使用。
func itemStore(c *gin.Context, opts Options, it store.Item) (store.Store, bool) {
	s, err := opts.Store.GetStoreByPublicID(c.Request.Context(), it.StorePublicID)
	if err != nil {
		respondInternal(c, opts, "items: store lookup failed", err)
		return store.Store{}, false
	}
	return s, true
}

func updateItemHandler(opts Options) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, _ := principalFrom(c)

		it, err := opts.Store.GetItemByPublicID(c.Request.Context(), c.Param("id"))
		if errors.Is(err, sql.ErrNoRows) {
			respondNotFound(c, "item")
			return
		}
		if err != nil {
			respondInternal(c, opts, "items: lookup failed", err)
			return
		}
		s, ok := itemStore(c, opts, it)
		if !ok {
			return
		}
		if !canManageStore(p, s) {
			respondError(c, http.StatusForbidden, "forbidden")
			return
		}

		var req itemBody
		if err := json.NewDecoder(c.Request.Body).Decode(&req); err != nil {
			respondError(c, http.StatusBadRequest, "invalid request body")
			return
		}
		req, msg := validateItemBody(req)
		if msg != "" {
			respondError(c, http.StatusBadRequest, msg)
			return
		}

		updated, err := opts.Store.UpdateItem(c.Request.Context(), it.ID, store.NewItem{
			StoreID:     it.StoreID,
			Name:        req.Name,
			Description: strings.TrimSpace(req.Description),
			Picture:     req.Picture,
			Price:       req.Price,
		})
		if err != nil {
			respondInternal(c, opts, "items: update failed", err)
			return
		}
		c.JSON(http.StatusOK, viewItem(updated))
	}
}

func deleteItemHandler(opts Options) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, _ := principalFrom(c)

		it, err := opts.Store.GetItemByPublicID(c.Request.Context(), c.Param("id"))
		if errors.Is(err, sql.ErrNoRows) {
			respondNotFound(c, "item")
			return
		}
		if err != nil {
			respondInternal(c, opts, "items: lookup failed", err)
			return
		}
		s, ok := itemStore(c, opts, it)
		if !ok {
			return
		}
		if !canManageStore(p, s) {
			respondError(c, http.StatusForbidden, "forbidden")
			return
		}

		if err := opts.Store.DeleteItem(c.Request.Context(), it.ID); err != nil {
			respondInternal(c, opts, "items: delete failed", err)
			return
		}
		c.Status(http.StatusNoContent)
	}
}
