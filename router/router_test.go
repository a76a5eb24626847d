package router

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"feria/internal/auth"
	"feria/internal/store"
)

func newTestRouter(t *testing.T) (*gin.Engine, Options) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	path := filepath.Join(t.TempDir(), "feria.db")
	db, err := store.OpenSQLite(path)
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	if err := store.EnsureSQLiteSchema(db); err != nil {
		t.Fatalf("EnsureSQLiteSchema: %v", err)
	}
	st := store.New(db)
	st.SetDialect(store.DialectSQLite)

	opts := Options{
		Store:  st,
		Tokens: auth.NewTokenIssuer([]byte("test-secret"), time.Hour),
		Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),

		CookieName: "feria_token",
		SessionTTL: time.Hour,

		AllowOpenRegistration: true,

		Healthz: func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"status":"ok"}`))
		},
	}

	engine := gin.New()
	engine.Use(gin.Recovery())
	SetRouter(engine, opts)
	return engine, opts
}

// session 表示一个已登录客户端持有的 cookie + csrf 组合。
type session struct {
	cookie *http.Cookie
	csrf   string
}

func doJSON(t *testing.T, engine *gin.Engine, method, path string, body any, sess *session) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if sess != nil {
		if sess.cookie != nil {
			req.AddCookie(sess.cookie)
		}
		if sess.csrf != "" {
			req.Header.Set(csrfHeader, sess.csrf)
		}
	}
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder, out any) {
	t.Helper()
	if err := json.Unmarshal(w.Body.Bytes(), out); err != nil {
		t.Fatalf("decode body %q: %v", w.Body.String(), err)
	}
}

func errorMessage(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var body struct {
		Error string `json:"error"`
	}
	decodeBody(t, w, &body)
	return body.Error
}

func signup(t *testing.T, engine *gin.Engine, username string) userView {
	t.Helper()
	w := doJSON(t, engine, http.MethodPost, "/api/users", gin.H{"username": username, "password": "password123"}, nil)
	if w.Code != http.StatusCreated {
		t.Fatalf("signup %s: code %d body %s", username, w.Code, w.Body.String())
	}
	var u userView
	decodeBody(t, w, &u)
	return u
}

func login(t *testing.T, engine *gin.Engine, opts Options, username string) *session {
	t.Helper()
	w := doJSON(t, engine, http.MethodPost, "/api/auth/login", gin.H{"username": username, "password": "password123"}, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("login %s: code %d body %s", username, w.Code, w.Body.String())
	}

	var cookie *http.Cookie
	for _, c := range w.Result().Cookies() {
		if c.Name == opts.CookieName {
			cookie = c
		}
	}
	if cookie == nil || cookie.Value == "" {
		t.Fatalf("login %s: session cookie missing", username)
	}
	csrf := w.Header().Get(csrfHeader)
	if csrf == "" {
		t.Fatalf("login %s: csrf header missing", username)
	}
	return &session{cookie: cookie, csrf: csrf}
}

func signupAndLogin(t *testing.T, engine *gin.Engine, opts Options, username string) *session {
	t.Helper()
	signup(t, engine, username)
	return login(t, engine, opts, username)
}
