package router

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
)

func createReview(t *testing.T, engine *gin.Engine, sess *session, storeID string, rating int) reviewView {
	t.Helper()
	w := doJSON(t, engine, http.MethodPost, "/api/reviews", gin.H{
		"storeId": storeID, "rating": rating, "comment": "rico",
	}, sess)
	if w.Code != http.StatusCreated {
		t.Fatalf("create review: code %d body %s", w.Code, w.Body.String())
	}
	var rv reviewView
	decodeBody(t, w, &rv)
	return rv
}

func TestReviews_PublicListEmbeds(t *testing.T) {
	engine, opts := newTestRouter(t)
	admin := signupAndLogin(t, engine, opts, "admin")
	ana := promoteToSeller(t, engine, opts, admin, "ana")
	s := createStore(t, engine, ana, "Café Andino")
	signup(t, engine, "bob")
	bob := login(t, engine, opts, "bob")
	createReview(t, engine, bob, s.ID, 4)

	w := doJSON(t, engine, http.MethodGet, "/api/reviews", nil, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("list code = %d", w.Code)
	}
	var list []reviewView
	decodeBody(t, w, &list)
	if len(list) != 1 {
		t.Fatalf("len = %d", len(list))
	}
	if list[0].Store.ID != s.ID || list[0].Store.Name != "Café Andino" || list[0].UserName != "bob" {
		t.Fatalf("embedded fields = %+v", list[0])
	}
}

func TestCreateReview_Validation(t *testing.T) {
	engine, opts := newTestRouter(t)
	admin := signupAndLogin(t, engine, opts, "admin")
	ana := promoteToSeller(t, engine, opts, admin, "ana")
	s := createStore(t, engine, ana, "Café Andino")
	signup(t, engine, "bob")
	bob := login(t, engine, opts, "bob")

	// 未登录不能发评价。
	w := doJSON(t, engine, http.MethodPost, "/api/reviews", gin.H{"storeId": s.ID, "rating": 4}, nil)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("anonymous code = %d, want 401", w.Code)
	}

	for _, rating := range []int{0, 6, -1} {
		w := doJSON(t, engine, http.MethodPost, "/api/reviews", gin.H{"storeId": s.ID, "rating": rating}, bob)
		if w.Code != http.StatusBadRequest {
			t.Fatalf("rating %d code = %d, want 400", rating, w.Code)
		}
	}

	w = doJSON(t, engine, http.MethodPost, "/api/reviews", gin.H{"storeId": "no-such-store", "rating": 4}, bob)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("bad store code = %d", w.Code)
	}

	createReview(t, engine, bob, s.ID, 4)
	w = doJSON(t, engine, http.MethodPost, "/api/reviews", gin.H{"storeId": s.ID, "rating": 5}, bob)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("duplicate code = %d, want 400", w.Code)
	}
	if msg := errorMessage(t, w); msg != "you have already reviewed this store" {
		t.Fatalf("error = %q", msg)
	}
}

func TestReviews_AuthorAndAdminManage(t *testing.T) {
	engine, opts := newTestRouter(t)
	admin := signupAndLogin(t, engine, opts, "admin")
	ana := promoteToSeller(t, engine, opts, admin, "ana")
	s := createStore(t, engine, ana, "Café Andino")
	signup(t, engine, "bob")
	bob := login(t, engine, opts, "bob")
	signup(t, engine, "carol")
	carol := login(t, engine, opts, "carol")
	rv := createReview(t, engine, bob, s.ID, 2)

	// 只有作者或 admin 能改。
	w := doJSON(t, engine, http.MethodPut, "/api/reviews/"+rv.ID, gin.H{"rating": 5, "comment": "mejoró"}, carol)
	if w.Code != http.StatusForbidden {
		t.Fatalf("other user update code = %d, want 403", w.Code)
	}
	w = doJSON(t, engine, http.MethodPut, "/api/reviews/"+rv.ID, gin.H{"rating": 5, "comment": "mejoró"}, bob)
	if w.Code != http.StatusOK {
		t.Fatalf("author update code = %d, body %s", w.Code, w.Body.String())
	}
	var updated reviewView
	decodeBody(t, w, &updated)
	if updated.Rating != 5 || updated.Comment != "mejoró" {
		t.Fatalf("updated = %+v", updated)
	}

	w = doJSON(t, engine, http.MethodDelete, "/api/reviews/"+rv.ID, nil, carol)
	if w.Code != http.StatusForbidden {
		t.Fatalf("other user delete code = %d, want 403", w.Code)
	}
	w = doJSON(t, engine, http.MethodDelete, "/api/reviews/"+rv.ID, nil, admin)
	if w.Code != http.StatusNoContent {
		t.Fatalf("admin delete code = %d", w.Code)
	}
	w = doJSON(t, engine, http.MethodPut, "/api/reviews/"+rv.ID, gin.H{"rating": 3}, admin)
	if w.Code != http.StatusNotFound {
		t.Fatalf("update gone review code = %d, want 404", w.Code)
	}
}
