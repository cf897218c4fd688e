package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/Decentr-net/photon/internal/middleware/memory"
)

func TestCached(t *testing.T) {
	calls := 0
	code := http.StatusInternalServerError

	h := Cached(memory.NewStorage(), time.Minute, func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(code)
		_, _ = w.Write([]byte(`{"calls":1}`))
	})

	do := func() *httptest.ResponseRecorder {
		w := httptest.NewRecorder()
		h(w, httptest.NewRequest(http.MethodGet, "/v1/hashtags/trending?limit=5", nil))
		return w
	}

	w := do()
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "MISS", w.Header().Get("X-Cache"))

	code = http.StatusOK

	w = do()
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "MISS", w.Header().Get("X-Cache"))

	w = do()
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "HIT", w.Header().Get("X-Cache"))
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"calls":1}`, w.Body.String())

	assert.Equal(t, 2, calls, "errors are not cached")
}
