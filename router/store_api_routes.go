package router

import (
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"feria/internal/auth"
	"feria/internal/store"
)

type storeBody struct {
	Category    string   `json:"category"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Location    string   `json:"location"`
	Images      []string `json:"images"`
	Junaeb      bool     `json:"junaeb"`
}

type storeView struct {
	ID          string   `json:"id"`
	Category    string   `json:"category"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Location    string   `json:"location"`
	Images      []string `json:"images"`
	Junaeb      bool     `json:"junaeb"`
	Owner       string   `json:"owner"`
}

func viewStore(s store.Store) storeView {
	images := s.Images
	if images == nil {
		images = []string{}
	}
	return storeView{
		ID:          s.PublicID,
		Category:    s.Category,
		Name:        s.Name,
		Description: s.Description,
		Location:    s.Location,
		Images:      images,
		Junaeb:      s.Junaeb,
		Owner:       s.OwnerPublicID,
	}
}

func setStoreAPIRoutes(r *gin.RouterGroup, opts Options) {
	r.GET("/stores", listStoresHandler(opts))
	r.GET("/stores/:id", getStoreHandler(opts))
	r.POST("/stores", requireSession(opts), requireStoreManager(), createStoreHandler(opts))
	r.PUT("/stores/:id", requireSession(opts), updateStoreHandler(opts))
	r.DELETE("/stores/:id", requireSession(opts), deleteStoreHandler(opts))
}

func listStoresHandler(opts Options) gin.HandlerFunc {
	return func(c *gin.Context) {
		f := store.StoreFilter{
			Category:      strings.TrimSpace(c.Query("category")),
			Search:        strings.TrimSpace(c.Query("search")),
			OwnerPublicID: strings.TrimSpace(c.Query("owner")),
		}
		list, err := opts.Store.ListStores(c.Request.Context(), f)
		if err != nil {
			respondInternal(c, opts, "stores: list failed", err)
			return
		}
		out := make([]storeView, 0, len(list))
		for _, s := range list {
			out = append(out, viewStore(s))
		}
		c.JSON(http.StatusOK, out)
	}
}

func getStoreHandler(opts Options) gin.HandlerFunc {
	return func(c *gin.Context) {
		s, err := opts.Store.GetStoreByPublicID(c.Request.Context(), c.Param("id"))
		if errors.Is(err, sql.ErrNoRows) {
			respondNotFound(c, "store")
			return
		}
		if err != nil {
			respondInternal(c, opts, "stores: lookup failed", err)
			return
		}
		c.JSON(http.StatusOK, viewStore(s))
	}
}

func validateStoreBody(req storeBody) (storeBody, string) {
	req.Name = strings.TrimSpace(req.Name)
	req.Location = strings.TrimSpace(req.Location)
	if req.Name == "" {
		return req, "name is required"
	}
	if req.Location == "" {
		return req, "location is required"
	}
	if !store.ValidStoreCategory(req.Category) {
		return req, "invalid category"
	}
	return req, ""
}

func createStoreHandler(opts Options) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, _ := principalFrom(c)

		var req storeBody
		if err := json.NewDecoder(c.Request.Body).Decode(&req); err != nil {
			respondError(c, http.StatusBadRequest, "invalid request body")
			return
		}
		req, msg := validateStoreBody(req)
		if msg != "" {
			respondError(c, http.StatusBadRequest, msg)
			return
		}

		// 店主永远是调用者本人，请求体里没有 owner 字段。
		u, err := opts.Store.GetUserByPublicID(c.Request.Context(), p.ID)
		if errors.Is(err, sql.ErrNoRows) {
			abortUnauthorized(c)
			return
		}
		if err != nil {
			respondInternal(c, opts, "stores: user lookup failed", err)
			return
		}

		s, err := opts.Store.CreateStore(c.Request.Context(), store.NewStore{
			Category:    req.Category,
			Name:        req.Name,
			Description: strings.TrimSpace(req.Description),
			Location:    req.Location,
			Images:      req.Images,
			Junaeb:      req.Junaeb,
			OwnerID:     u.ID,
		})
		if err != nil {
			respondInternal(c, opts, "stores: create failed", err)
			return
		}
		c.JSON(http.StatusCreated, viewStore(s))
	}
}

// canManageStore: 管理员或店主本人。
func canManageStore(p auth.Principal, s store.Store) bool {
	if p.Role == auth.RoleAdmin {
		return true
	}
	return s.OwnerPublicID == p.ID
}

func updateStoreHandler(opts Options) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, _ := principalFrom(c)

		s, err := opts.Store.GetStoreByPublicID(c.Request.Context(), c.Param("id"))
		if errors.Is(err, sql.ErrNoRows) {
			respondNotFound(c, "store")
			return
		}
		if err != nil {
			respondInternal(c, opts, "stores: lookup failed", err)
			return
		}
		if !canManageStore(p, s) {
			respondError(c, http.StatusForbidden, "forbidden")
			return
		}

		var req storeBody
		if err := json.NewDecoder(c.Request.Body).Decode(&req); err != nil {
			respondError(c, http.StatusBadRequest, "invalid request body")
			return
		}
		req, msg := validateStoreBody(req)
		if msg != "" {
			respondError(c, http.StatusBadRequest, msg)
			return
		}

		updated, err := opts.Store.UpdateStore(c.Request.Context(), s.ID, store.NewStore{
			Category:    req.Category,
			Name:        req.Name,
			Description: strings.TrimSpace(req.Description),
			Location:    req.Location,
			Images:      req.Images,
			Junaeb:      req.Junaeb,
			OwnerID:     s.OwnerID,
		})
		if err != nil {
			respondInternal(c, opts, "stores: update failed", err)
			return
		}
		c.JSON(http.StatusOK, viewStore(updated))
	}
}

func deleteStoreHandler(opts Options) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, _ := principalFrom(c)

		s, err := opts.Store.GetStoreByPublicID(c.Request.Context(), c.Param("id"))
		if errors.Is(err, sql.ErrNoRows) {
			respondNotFound(c, "store")
			return
		}
		if err != nil {
			respondInternal(c, opts, "stores: lookup failed", err)
			return
		}
		if !canManageStore(p, s) {
			respondError(c, http.StatusForbidden, "forbidden")
			return
		}

		if err := opts.Store.DeleteStore(c.Request.Context(), s.ID); err != nil {
			respondInternal(c, opts, "stores: delete failed", err)
			return
		}
		c.Status(http.StatusNoContent)
	}
}
