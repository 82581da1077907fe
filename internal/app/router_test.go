package app

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/fairyhunter13/course-recommender/internal/adapter/httpserver"
	"github.com/fairyhunter13/course-recommender/internal/config"
)

func TestParseOrigins(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
		want []string
	}{
		{name: "empty", in: "", want: []string{"*"}},
		{name: "wildcard", in: "*", want: []string{"*"}},
		{name: "single", in: "https://a.example.com", want: []string{"https://a.example.com"}},
		{name: "list with spaces", in: " https://a.example.com , https://b.example.com ", want: []string{"https://a.example.com", "https://b.example.com"}},
		{name: "only commas", in: ",,", want: []string{"*"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, ParseOrigins(tt.in))
		})
	}
}

func TestBuildRouter_Endpoints(t *testing.T) {
	cfg := config.Config{
		CORSAllowOrigins: "*",
		RateLimitPerMin:  100,
		RequestTimeout:   5 * time.Second,
	}
	h := BuildRouter(cfg, &httpserver.Server{Cfg: cfg})

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	assert.Equal(t, http.StatusOK, rec.Code, "no checks configured means ready")

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/nope", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
