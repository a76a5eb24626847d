package router

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
)

func validRequestBody() gin.H {
	return gin.H{
		"fullName":    "Juana Pérez",
		"rut":         "12.345.678-5",
		"email":       "juana@example.com",
		"description": "quiero vender sopaipillas",
	}
}

func TestSellerRequest_ApprovalFlow(t *testing.T) {
	engine, opts := newTestRouter(t)
	admin := signupAndLogin(t, engine, opts, "admin")
	signup(t, engine, "juana")
	juana := login(t, engine, opts, "juana")

	w := doJSON(t, engine, http.MethodPost, "/api/users/requests", validRequestBody(), juana)
	if w.Code != http.StatusCreated {
		t.Fatalf("create code = %d, body %s", w.Code, w.Body.String())
	}
	var created sellerRequestView
	decodeBody(t, w, &created)
	if created.Status != "pending" || created.RUT != "123456785" {
		t.Fatalf("created = %+v", created)
	}

	// 同一账号的第二条 pending 申请被拒。
	w = doJSON(t, engine, http.MethodPost, "/api/users/requests", validRequestBody(), juana)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("duplicate pending code = %d", w.Code)
	}

	w = doJSON(t, engine, http.MethodGet, "/api/users/requests", nil, admin)
	if w.Code != http.StatusOK {
		t.Fatalf("list code = %d", w.Code)
	}
	var list []sellerRequestView
	decodeBody(t, w, &list)
	if len(list) != 1 {
		t.Fatalf("len = %d", len(list))
	}

	w = doJSON(t, engine, http.MethodPut, "/api/users/requests/"+created.ID, gin.H{"status": "approved"}, admin)
	if w.Code != http.StatusOK {
		t.Fatalf("approve code = %d, body %s", w.Code, w.Body.String())
	}

	// 批准即升级为 seller：重新登录后的身份生效。
	again := login(t, engine, opts, "juana")
	var me userView
	w = doJSON(t, engine, http.MethodGet, "/api/auth/me", nil, again)
	decodeBody(t, w, &me)
	if me.Role != "seller" {
		t.Fatalf("role after approval = %q, want seller", me.Role)
	}

	// 已处理的申请不能再处理。
	w = doJSON(t, engine, http.MethodPut, "/api/users/requests/"+created.ID, gin.H{"status": "rejected"}, admin)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("re-resolve code = %d, want 400", w.Code)
	}
}

func TestSellerRequest_Validation(t *testing.T) {
	engine, opts := newTestRouter(t)
	signupAndLogin(t, engine, opts, "admin")
	signup(t, engine, "juana")
	juana := login(t, engine, opts, "juana")

	cases := []struct {
		mutate func(gin.H)
		msg    string
	}{
		{func(b gin.H) { b["rut"] = "12.345.678-4" }, "invalid rut"},
		{func(b gin.H) { b["rut"] = "" }, "invalid rut"},
		{func(b gin.H) { b["email"] = "not-an-email" }, "invalid email"},
		{func(b gin.H) { b["fullName"] = "  " }, "full name is required"},
	}
	for _, tc := range cases {
		body := validRequestBody()
		tc.mutate(body)
		w := doJSON(t, engine, http.MethodPost, "/api/users/requests", body, juana)
		if w.Code != http.StatusBadRequest {
			t.Fatalf("code = %d for %v", w.Code, body)
		}
		if msg := errorMessage(t, w); msg != tc.msg {
			t.Fatalf("error = %q, want %q", msg, tc.msg)
		}
	}
}

func TestSellerRequest_ReviewerOnly(t *testing.T) {
	engine, opts := newTestRouter(t)
	admin := signupAndLogin(t, engine, opts, "admin")

	// admin 不是 reviewer，不能发起申请。
	w := doJSON(t, engine, http.MethodPost, "/api/users/requests", validRequestBody(), admin)
	if w.Code != http.StatusForbidden {
		t.Fatalf("admin create code = %d, want 403", w.Code)
	}

	// reviewer 不能查看申请列表。
	signup(t, engine, "juana")
	juana := login(t, engine, opts, "juana")
	w = doJSON(t, engine, http.MethodGet, "/api/users/requests", nil, juana)
	if w.Code != http.StatusForbidden {
		t.Fatalf("reviewer list code = %d, want 403", w.Code)
	}

	// 未登录直接 401。
	w = doJSON(t, engine, http.MethodPost, "/api/users/requests", validRequestBody(), nil)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("anonymous create code = %d, want 401", w.Code)
	}
}
