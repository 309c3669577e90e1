package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

func newRouter(mw ...gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(mw...)
	r.GET("/ping", func(c *gin.Context) {
		c.String(http.StatusOK, c.GetString("request_id"))
	})
	return r
}

func TestOriginHost(t *testing.T) {
	cases := map[string]string{
		"https://shop.example.com":      "shop.example.com",
		"https://shop.example.com:443/": "shop.example.com",
		"http://LOCALHOST:3000":         "localhost:3000",
		"shop.example.com":              "",
		"":                              "",
	}
	for in, want := range cases {
		if got := originHost(in); got != want {
			t.Errorf("originHost(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestCORSMiddleware(t *testing.T) {
	r := newRouter(CORSMiddleware([]string{"shop.example.com"}))

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set("Origin", "https://shop.example.com")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "https://shop.example.com" {
		t.Fatalf("allowed origin not echoed, got %q", got)
	}

	req = httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set("Origin", "https://evil.example.net")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "" {
		t.Fatalf("unexpected allow origin %q", got)
	}

	req = httptest.NewRequest(http.MethodOptions, "/ping", nil)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusNoContent {
		t.Fatalf("preflight should return 204, got %d", w.Code)
	}
}

func TestCORSMiddleware_Wildcard(t *testing.T) {
	r := newRouter(CORSMiddleware([]string{"*"}))

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set("Origin", "http://anything.test:8080")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "http://anything.test:8080" {
		t.Fatalf("wildcard should echo origin, got %q", got)
	}
}

func TestLoggingMiddlewareSetsRequestID(t *testing.T) {
	r := newRouter(LoggingMiddleware())

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))
	if len(w.Body.String()) != 8 {
		t.Fatalf("expected 8-char request id, got %q", w.Body.String())
	}
}
