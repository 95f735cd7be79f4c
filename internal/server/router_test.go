package server

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestBasicRouter(t *testing.T) {
	t.Run("Handle scopes routes by method", func(t *testing.T) {
		router := NewBasicRouter()
		router.Handle(http.MethodGet, "/healthz", http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusOK)
		}))

		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
		if rec.Code != http.StatusOK {
			t.Errorf("expected 200 for GET, got %d", rec.Code)
		}

		rec = httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/healthz", nil))
		if rec.Code != http.StatusMethodNotAllowed {
			t.Errorf("expected 405 for POST, got %d", rec.Code)
		}
	})

	t.Run("middleware wraps in registration order", func(t *testing.T) {
		router := NewBasicRouter()

		var order []string
		mw := func(name string) Middleware {
			return func(next http.Handler) http.Handler {
				return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
					order = append(order, name)
					next.ServeHTTP(w, r)
				})
			}
		}
		router.Use(mw("outer"), mw("inner"))
		router.Handle(http.MethodGet, "/ping", http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			order = append(order, "handler")
		}))

		router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/ping", nil))
		if len(order) != 3 || order[0] != "outer" || order[1] != "inner" || order[2] != "handler" {
			t.Errorf("unexpected call order: %v", order)
		}
	})
}
