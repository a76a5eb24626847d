package router

import (
	"net/http"
	"testing"
)

func TestHealthz(t *testing.T) {
	engine, _ := newTestRouter(t)

	w := doJSON(t, engine, http.MethodGet, "/healthz", nil, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("code = %d", w.Code)
	}
	var body struct {
		Status string `json:"status"`
	}
	decodeBody(t, w, &body)
	if body.Status != "ok" {
		t.Fatalf("status = %q", body.Status)
	}
}

func TestUnknownAPIEndpoint(t *testing.T) {
	engine, _ := newTestRouter(t)

	w := doJSON(t, engine, http.MethodGet, "/api/does/not/exist", nil, nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("code = %d", w.Code)
	}
	if msg := errorMessage(t, w); msg != "unknown endpoint" {
		t.Fatalf("error = %q", msg)
	}

	// /api 之外保持 gin 默认 404。
	w = doJSON(t, engine, http.MethodGet, "/nope", nil, nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("code = %d", w.Code)
	}
}
