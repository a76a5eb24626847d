package router

import (
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"feria/internal/auth"
	"feria/internal/store"
)

type signupRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type updateRoleRequest struct {
	Role string `json:"role"`
}

func setUserAPIRoutes(r *gin.RouterGroup, opts Options) {
	r.POST("/users", signupHandler(opts))
	r.GET("/users", requireSession(opts), requireRoles(auth.RoleAdmin), listUsersHandler(opts))
	r.PUT("/users/:id", requireSession(opts), requireRoles(auth.RoleAdmin), updateUserRoleHandler(opts))
	r.DELETE("/users/:id", requireSession(opts), requireRoles(auth.RoleAdmin), deleteUserHandler(opts))
}

func signupHandler(opts Options) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !opts.AllowOpenRegistration {
			respondError(c, http.StatusForbidden, "registration is disabled")
			return
		}

		var req signupRequest
		if err := json.NewDecoder(c.Request.Body).Decode(&req); err != nil {
			respondError(c, http.StatusBadRequest, "invalid request body")
			return
		}
		username, err := store.NormalizeUsername(req.Username)
		if err != nil {
			respondError(c, http.StatusBadRequest, err.Error())
			return
		}
		if len(req.Password) < auth.MinPasswordLength {
			respondError(c, http.StatusBadRequest, "password must be at least 6 characters long")
			return
		}

		hash, err := auth.HashPassword(req.Password)
		if err != nil {
			respondInternal(c, opts, "signup: hash failed", err)
			return
		}
		u, err := opts.Store.CreateUser(c.Request.Context(), username, hash)
		if errors.Is(err, store.ErrUsernameTaken) {
			respondError(c, http.StatusBadRequest, "username already taken")
			return
		}
		if err != nil {
			respondInternal(c, opts, "signup: create failed", err)
			return
		}
		c.JSON(http.StatusCreated, viewUser(u))
	}
}

func listUsersHandler(opts Options) gin.HandlerFunc {
	return func(c *gin.Context) {
		users, err := opts.Store.ListUsers(c.Request.Context())
		if err != nil {
			respondInternal(c, opts, "users: list failed", err)
			return
		}
		out := make([]userView, 0, len(users))
		for _, u := range users {
			out = append(out, viewUser(u))
		}
		c.JSON(http.StatusOK, out)
	}
}

func updateUserRoleHandler(opts Options) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, _ := principalFrom(c)
		targetID := c.Param("id")
		// 管理员不能改自己的角色，防止把最后一个 admin 降级锁死系统。
		if targetID == p.ID {
			respondError(c, http.StatusForbidden, "cannot change your own role")
			return
		}

		var req updateRoleRequest
		if err := json.NewDecoder(c.Request.Body).Decode(&req); err != nil {
			respondError(c, http.StatusBadRequest, "invalid request body")
			return
		}
		role, err := auth.ParseRole(req.Role)
		if err != nil {
			respondError(c, http.StatusBadRequest, "invalid role")
			return
		}

		u, err := opts.Store.GetUserByPublicID(c.Request.Context(), targetID)
		if errors.Is(err, sql.ErrNoRows) {
			respondNotFound(c, "user")
			return
		}
		if err != nil {
			respondInternal(c, opts, "users: lookup failed", err)
			return
		}
		if err := opts.Store.UpdateUserRole(c.Request.Context(), u.ID, role); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				respondNotFound(c, "user")
				return
			}
			respondInternal(c, opts, "users: role update failed", err)
			return
		}
		u.Role = role
		c.JSON(http.StatusOK, viewUser(u))
	}
}

func deleteUserHandler(opts Options) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, _ := principalFrom(c)
		targetID := c.Param("id")
		if targetID == p.ID {
			respondError(c, http.StatusForbidden, "cannot delete your own account")
			return
		}

		u, err := opts.Store.GetUserByPublicID(c.Request.Context(), targetID)
		if errors.Is(err, sql.ErrNoRows) {
			respondNotFound(c, "user")
			return
		}
		if err != nil {
			respondInternal(c, opts, "users: lookup failed", err)
			return
		}
		if err := opts.Store.DeleteUser(c.Request.Context(), u.ID); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				respondNotFound(c, "user")
				return
			}
			respondInternal(c, opts, "users: delete failed", err)
			return
		}
		c.Status(http.StatusNoContent)
	}
}
