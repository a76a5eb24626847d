package router

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
)

func TestLogin_SetsCookieAndCSRFHeader(t *testing.T) {
	engine, opts := newTestRouter(t)
	signup(t, engine, "alice")

	w := doJSON(t, engine, http.MethodPost, "/api/auth/login", gin.H{"username": "alice", "password": "password123"}, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("code = %d, body %s", w.Code, w.Body.String())
	}

	var u userView
	decodeBody(t, w, &u)
	if u.Username != "alice" || u.Role != "admin" {
		t.Fatalf("body = %+v", u)
	}

	var cookie *http.Cookie
	for _, c := range w.Result().Cookies() {
		if c.Name == opts.CookieName {
			cookie = c
		}
	}
	if cookie == nil {
		t.Fatalf("session cookie missing")
	}
	if !cookie.HttpOnly {
		t.Fatalf("cookie must be HttpOnly")
	}
	if cookie.SameSite != http.SameSiteStrictMode {
		t.Fatalf("cookie SameSite = %v, want Strict", cookie.SameSite)
	}
	if cookie.Path != "/" {
		t.Fatalf("cookie path = %q", cookie.Path)
	}
	if w.Header().Get(csrfHeader) == "" {
		t.Fatalf("csrf header missing")
	}
}

func TestLogin_BadCredentials(t *testing.T) {
	engine, _ := newTestRouter(t)
	signup(t, engine, "alice")

	// 密码错误与用户不存在必须返回完全一样的响应。
	for _, body := range []gin.H{
		{"username": "alice", "password": "wrong-password"},
		{"username": "nobody", "password": "password123"},
		{"username": "", "password": ""},
	} {
		w := doJSON(t, engine, http.MethodPost, "/api/auth/login", body, nil)
		if w.Code != http.StatusUnauthorized {
			t.Fatalf("code = %d for %v", w.Code, body)
		}
		if msg := errorMessage(t, w); msg != "invalid username or password" {
			t.Fatalf("error = %q", msg)
		}
	}
}

func TestMe_RequiresCookieAndCSRFHeader(t *testing.T) {
	engine, opts := newTestRouter(t)
	sess := signupAndLogin(t, engine, opts, "alice")

	// 全部凭证齐备才放行。
	w := doJSON(t, engine, http.MethodGet, "/api/auth/me", nil, sess)
	if w.Code != http.StatusOK {
		t.Fatalf("code = %d, body %s", w.Code, w.Body.String())
	}

	cases := []*session{
		nil,                             // 什么都没有
		{cookie: sess.cookie},           // 只有 cookie（CSRF 防线）
		{csrf: sess.csrf},               // 只有 header
		{cookie: sess.cookie, csrf: "11111111-2222-3333-4444-555555555555"}, // header 不匹配
		{cookie: &http.Cookie{Name: opts.CookieName, Value: sess.cookie.Value + "x"}, csrf: sess.csrf}, // token 被篡改
	}
	for i, c := range cases {
		w := doJSON(t, engine, http.MethodGet, "/api/auth/me", nil, c)
		if w.Code != http.StatusUnauthorized {
			t.Fatalf("case %d: code = %d, want 401", i, w.Code)
		}
		if msg := errorMessage(t, w); msg != "authentication required" {
			t.Fatalf("case %d: error = %q", i, msg)
		}
	}
}

func TestMe_DeletedAccount(t *testing.T) {
	engine, opts := newTestRouter(t)
	admin := signupAndLogin(t, engine, opts, "admin")
	bob := signup(t, engine, "bob")
	bobSess := login(t, engine, opts, "bob")

	w := doJSON(t, engine, http.MethodDelete, "/api/users/"+bob.ID, nil, admin)
	if w.Code != http.StatusNoContent {
		t.Fatalf("delete code = %d", w.Code)
	}

	// 旧 token 在有效期内仍能解析，但账号已不存在。
	w = doJSON(t, engine, http.MethodGet, "/api/auth/me", nil, bobSess)
	if w.Code != http.StatusNotFound {
		t.Fatalf("code = %d, want 404", w.Code)
	}
}

func TestLogout_Idempotent(t *testing.T) {
	engine, opts := newTestRouter(t)
	sess := signupAndLogin(t, engine, opts, "alice")

	for i := 0; i < 2; i++ {
		w := doJSON(t, engine, http.MethodPost, "/api/auth/logout", nil, sess)
		if w.Code != http.StatusNoContent {
			t.Fatalf("round %d: code = %d, want 204", i, w.Code)
		}
		var cleared *http.Cookie
		for _, c := range w.Result().Cookies() {
			if c.Name == opts.CookieName {
				cleared = c
			}
		}
		if cleared == nil || cleared.Value != "" || cleared.MaxAge >= 0 {
			t.Fatalf("round %d: cookie not cleared: %+v", i, cleared)
		}
	}

	// 未登录直接登出同样 204。
	w := doJSON(t, engine, http.MethodPost, "/api/auth/logout", nil, nil)
	if w.Code != http.StatusNoContent {
		t.Fatalf("anonymous logout code = %d", w.Code)
	}
}
