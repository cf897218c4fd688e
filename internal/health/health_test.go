package health

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHandler(t *testing.T) {
	tt := []struct {
		name    string
		pingers []Pinger
		code    int
		errors  map[string]string
	}{
		{
			name: "ok",
			pingers: []Pinger{
				SubjectPinger("postgres", func(context.Context) error { return nil }),
				SubjectPinger("redis", func(context.Context) error { return nil }),
			},
			code: http.StatusOK,
		},
		{
			name: "failed",
			pingers: []Pinger{
				SubjectPinger("postgres", func(context.Context) error { return nil }),
				SubjectPinger("redis", func(context.Context) error { return errors.New("connection refused") }),
			},
			code:   http.StatusServiceUnavailable,
			errors: map[string]string{"redis": "connection refused"},
		},
		{
			name: "timeout",
			pingers: []Pinger{
				SubjectPinger("nats", func(ctx context.Context) error {
					<-ctx.Done()
					return ctx.Err()
				}),
			},
			code:   http.StatusServiceUnavailable,
			errors: map[string]string{"nats": context.DeadlineExceeded.Error()},
		},
	}

	for i := range tt {
		tc := tt[i]

		t.Run(tc.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			r := httptest.NewRequest(http.MethodGet, "/health", nil)

			Handler(50*time.Millisecond, tc.pingers...)(w, r)

			assert.Equal(t, tc.code, w.Code)

			var resp Response
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			assert.Equal(t, "dev", resp.Version)
			if tc.errors == nil {
				assert.Empty(t, resp.Errors)
			} else {
				assert.Equal(t, tc.errors, resp.Errors)
			}
		})
	}
}
