package router

import (
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"net/mail"
	"strings"

	"github.com/gin-gonic/gin"

	"feria/internal/auth"
	"feria/internal/store"
)

type sellerRequestBody struct {
	FullName    string `json:"fullName"`
	RUT         string `json:"rut"`
	Email       string `json:"email"`
	Description string `json:"description"`
}

type resolveRequestBody struct {
	Status string `json:"status"`
}

type sellerRequestView struct {
	ID          string  `json:"id"`
	User        userRef `json:"user"`
	FullName    string  `json:"fullName"`
	RUT         string  `json:"rut"`
	Email       string  `json:"email"`
	Description string  `json:"description"`
	Status      string  `json:"status"`
}

type userRef struct {
	ID       string `json:"id"`
	Username string `json:"username"`
}

func viewSellerRequest(sr store.SellerRequest) sellerRequestView {
	return sellerRequestView{
		ID:          sr.PublicID,
		User:        userRef{ID: sr.UserPublicID, Username: sr.UserName},
		FullName:    sr.FullName,
		RUT:         sr.RUT,
		Email:       sr.Email,
		Description: sr.Description,
		Status:      string(sr.Status),
	}
}

func setSellerRequestAPIRoutes(r *gin.RouterGroup, opts Options) {
	r.POST("/users/requests", requireSession(opts), requireRoles(auth.RoleReviewer), createSellerRequestHandler(opts))
	r.GET("/users/requests", requireSession(opts), requireRoles(auth.RoleAdmin), listSellerRequestsHandler(opts))
	r.PUT("/users/requests/:id", requireSession(opts), requireRoles(auth.RoleAdmin), resolveSellerRequestHandler(opts))
}

func createSellerRequestHandler(opts Options) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, _ := principalFrom(c)

		var req sellerRequestBody
		if err := json.NewDecoder(c.Request.Body).Decode(&req); err != nil {
			respondError(c, http.StatusBadRequest, "invalid request body")
			return
		}
		fullName := strings.TrimSpace(req.FullName)
		if fullName == "" {
			respondError(c, http.StatusBadRequest, "full name is required")
			return
		}
		rut, err := store.NormalizeRUT(req.RUT)
		if err != nil {
			respondError(c, http.StatusBadRequest, "invalid rut")
			return
		}
		email := strings.TrimSpace(req.Email)
		if _, err := mail.ParseAddress(email); err != nil {
			respondError(c, http.StatusBadRequest, "invalid email")
			return
		}

		u, err := opts.Store.GetUserByPublicID(c.Request.Context(), p.ID)
		if errors.Is(err, sql.ErrNoRows) {
			abortUnauthorized(c)
			return
		}
		if err != nil {
			respondInternal(c, opts, "seller requests: user lookup failed", err)
			return
		}

		sr, err := opts.Store.CreateSellerRequest(c.Request.Context(), store.NewSellerRequest{
			UserID:      u.ID,
			FullName:    fullName,
			RUT:         rut,
			Email:       email,
			Description: strings.TrimSpace(req.Description),
		})
		if errors.Is(err, store.ErrPendingSellerRequest) {
			respondError(c, http.StatusBadRequest, "a pending request already exists")
			return
		}
		if err != nil {
			respondInternal(c, opts, "seller requests: create failed", err)
			return
		}
		c.JSON(http.StatusCreated, viewSellerRequest(sr))
	}
}

func listSellerRequestsHandler(opts Options) gin.HandlerFunc {
	return func(c *gin.Context) {
		list, err := opts.Store.ListSellerRequests(c.Request.Context())
		if err != nil {
			respondInternal(c, opts, "seller requests: list failed", err)
			return
		}
		out := make([]sellerRequestView, 0, len(list))
		for _, sr := range list {
			out = append(out, viewSellerRequest(sr))
		}
		c.JSON(http.StatusOK, out)
	}
}

func resolveSellerRequestHandler(opts Options) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req resolveRequestBody
		if err := json.NewDecoder(c.Request.Body).Decode(&req); err != nil {
			respondError(c, http.StatusBadRequest, "invalid request body")
			return
		}
		var status store.SellerRequestStatus
		switch req.Status {
		case string(store.SellerRequestApproved):
			status = store.SellerRequestApproved
		case string(store.SellerRequestRejected):
			status = store.SellerRequestRejected
		default:
			respondError(c, http.StatusBadRequest, "status must be approved or rejected")
			return
		}

		sr, err := opts.Store.GetSellerRequestByPublicID(c.Request.Context(), c.Param("id"))
		if errors.Is(err, sql.ErrNoRows) {
			respondNotFound(c, "request")
			return
		}
		if err != nil {
			respondInternal(c, opts, "seller requests: lookup failed", err)
			return
		}

		resolved, err := opts.Store.ResolveSellerRequest(c.Request.Context(), sr.ID, status)
		if errors.Is(err, store.ErrRequestResolved) {
			respondError(c, http.StatusBadRequest, "request already resolved")
			return
		}
		if errors.Is(err, sql.ErrNoRows) {
			respondNotFound(c, "request")
			return
		}
		if err != nil {
			respondInternal(c, opts, "seller requests: resolve failed", err)
			return
		}
		c.JSON(http.StatusOK, viewSellerRequest(resolved))
	}
}
