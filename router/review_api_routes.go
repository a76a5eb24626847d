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

type reviewBody struct {
	StoreID string  `json:"storeId"`
	Rating  int     `json:"rating"`
	Comment string  `json:"comment"`
	Picture *string `json:"picture"`
}

type reviewStoreRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type reviewView struct {
	ID       string         `json:"id"`
	Store    reviewStoreRef `json:"store"`
	UserName string         `json:"userName"`
	Rating   int            `json:"rating"`
	Comment  string         `json:"comment"`
	Picture  *string        `json:"picture"`
}

func viewReview(rv store.Review) reviewView {
	return reviewView{
		ID:       rv.PublicID,
		Store:    reviewStoreRef{ID: rv.StorePublicID, Name: rv.StoreName},
		UserName: rv.UserName,
		Rating:   rv.Rating,
		Comment:  rv.Comment,
		Picture:  rv.Picture,
	}
}

func setReviewAPIRoutes(r *gin.RouterGroup, opts Options) {
	r.GET("/reviews", listReviewsHandler(opts))
	r.POST("/reviews", requireSession(opts), createReviewHandler(opts))
	r.PUT("/reviews/:id", requireSession(opts), updateReviewHandler(opts))
	r.DELETE("/reviews/:id", requireSession(opts), deleteReviewHandler(opts))
}

func listReviewsHandler(opts Options) gin.HandlerFunc {
	return func(c *gin.Context) {
		list, err := opts.Store.ListReviews(c.Request.Context())
		if err != nil {
			respondInternal(c, opts, "reviews: list failed", err)
			return
		}
		out := make([]reviewView, 0, len(list))
		for _, rv := range list {
			out = append(out, viewReview(rv))
		}
		c.JSON(http.StatusOK, out)
	}
}

func validRating(r int) bool { return r >= 1 && r <= 5 }

func createReviewHandler(opts Options) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, _ := principalFrom(c)

		var req reviewBody
		if err := json.NewDecoder(c.Request.Body).Decode(&req); err != nil {
			respondError(c, http.StatusBadRequest, "invalid request body")
			return
		}
		if !validRating(req.Rating) {
			respondError(c, http.StatusBadRequest, "rating must be between 1 and 5")
			return
		}

		s, err := opts.Store.GetStoreByPublicID(c.Request.Context(), strings.TrimSpace(req.StoreID))
		if errors.Is(err, sql.ErrNoRows) {
			respondError(c, http.StatusBadRequest, "invalid store id")
			return
		}
		if err != nil {
			respondInternal(c, opts, "reviews: store lookup failed", err)
			return
		}

		u, err := opts.Store.GetUserByPublicID(c.Request.Context(), p.ID)
		if errors.Is(err, sql.ErrNoRows) {
			abortUnauthorized(c)
			return
		}
		if err != nil {
			respondInternal(c, opts, "reviews: user lookup failed", err)
			return
		}

		rv, err := opts.Store.CreateReview(c.Request.Context(), store.NewReview{
			StoreID: s.ID,
			UserID:  u.ID,
			Rating:  req.Rating,
			Comment: strings.TrimSpace(req.Comment),
			Picture: req.Picture,
		})
		if errors.Is(err, store.ErrDuplicateReview) {
			respondError(c, http.StatusBadRequest, "you have already reviewed this store")
			return
		}
		if err != nil {
			respondInternal(c, opts, "reviews: create failed", err)
			return
		}
		c.JSON(http.StatusCreated, viewReview(rv))
	}
}

// canManageReview: 管理员或评价作者本人。
func canManageReview(p auth.Principal, rv store.Review) bool {
	if p.Role == auth.RoleAdmin {
		return true
	}
	return rv.UserPublicID == p.ID
}

func updateReviewHandler(opts Options) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, _ := principalFrom(c)

		rv, err := opts.Store.GetReviewByPublicID(c.Request.Context(), c.Param("id"))
		if errors.Is(err, sql.ErrNoRows) {
			respondNotFound(c, "review")
			return
		}
		if err != nil {
			respondInternal(c, opts, "reviews: lookup failed", err)
			return
		}
		if !canManageReview(p, rv) {
			respondError(c, http.StatusForbidden, "forbidden")
			return
		}

		var req reviewBody
		if err := json.NewDecoder(c.Request.Body).Decode(&req); err != nil {
			respondError(c, http.StatusBadRequest, "invalid request body")
			return
		}
		if !validRating(req.Rating) {
			respondError(c, http.StatusBadRequest, "rating must be between 1 and 5")
			return
		}

		updated, err := opts.Store.UpdateReview(c.Request.Context(), rv.ID, req.Rating, strings.TrimSpace(req.Comment), req.Picture)
		if err != nil {
			respondInternal(c, opts, "reviews: update failed", err)
			return
		}
		c.JSON(http.StatusOK, viewReview(updated))
	}
}

func deleteReviewHandler(opts Options) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, _ := principalFrom(c)

		rv, err := opts.Store.GetReviewByPublicID(c.Request.Context(), c.Param("id"))
		if errors.Is(err, sql.ErrNoRows) {
			respondNotFound(c, "review")
			return
		}
		if err != nil {
			respondInternal(c, opts, "reviews: lookup failed", err)
			return
		}
		if !canManageReview(p, rv) {
			respondError(c, http.StatusForbidden, "forbidden")
			return
		}

		if err := opts.Store.DeleteReview(c.Request.Context(), rv.ID); err != nil {
			respondInternal(c, opts, "reviews: delete failed", err)
			return
		}
		c.Status(http.StatusNoContent)
	}
}
