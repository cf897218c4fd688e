// Package middleware contains http middlewares of the API.
package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"time"
)

// Storage keeps cached responses.
type Storage interface {
	Get(ctx context.Context, key string) []byte
	Set(ctx context.Context, key string, content []byte, ttl time.Duration)
}

// Cached caches successful responses of the handler by request uri.
func Cached(storage Storage, ttl time.Duration, handler http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if content := storage.Get(r.Context(), r.RequestURI); content != nil {
			w.Header().Set("Content-Type", "application/json")
			w.Header().Set("X-Cache", "HIT")
			_, _ = w.Write(content)
			return
		}

		c := httptest.NewRecorder()
		handler(c, r)

		for k, v := range c.Header() {
			w.Header()[k] = v
		}
		w.Header().Set("X-Cache", "MISS")

		w.WriteHeader(c.Code)
		content := c.Body.Bytes()

		if c.Code == http.StatusOK {
			storage.Set(r.Context(), r.RequestURI, content, ttl)
		}

		_, _ = w.Write(content)
	}
}
