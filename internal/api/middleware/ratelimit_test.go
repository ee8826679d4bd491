package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestRateLimiter(t *testing.T) {
	rl := NewRateLimiter(1, 2)
	defer rl.Close()

	h := rl.Limit(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	get := func(addr string) int {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = addr
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, req)
		return rr.Code
	}

	for i := 0; i < 2; i++ {
		if code := get("10.0.0.1:1000"); code != http.StatusOK {
			t.Fatalf("request %d within burst: status = %d, want 200", i+1, code)
		}
	}
	if code := get("10.0.0.1:1000"); code != http.StatusTooManyRequests {
		t.Fatalf("over burst: status = %d, want 429", code)
	}

	// Buckets are per client.
	if code := get("10.0.0.2:1000"); code != http.StatusOK {
		t.Fatalf("second client: status = %d, want 200", code)
	}
}
