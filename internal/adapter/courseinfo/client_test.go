package courseinfo

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClient_FetchCourseInfo(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/v1/course-info/c1", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"lesson_title": "Fractions 101", "link": "https://example.com/f101"}`))
	}))
	t.Cleanup(srv.Close)

	cli := New(srv.URL, 5*time.Second)
	meta, err := cli.FetchCourseInfo(context.Background(), "c1")
	require.NoError(t, err)
	assert.Equal(t, "Fractions 101", meta["lesson_title"])
	assert.Equal(t, "https://example.com/f101", meta["link"])
}

func TestClient_FetchCourseInfo_Non2xx(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	t.Cleanup(srv.Close)

	cli := New(srv.URL, 5*time.Second)
	_, err := cli.FetchCourseInfo(context.Background(), "c1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 500")
}

func TestClient_FetchCourseInfo_MalformedBody(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("<html>not json</html>"))
	}))
	t.Cleanup(srv.Close)

	cli := New(srv.URL, 5*time.Second)
	_, err := cli.FetchCourseInfo(context.Background(), "c1")
	assert.Error(t, err)
}

func TestClient_FetchCourseInfo_EmptyBody(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	t.Cleanup(srv.Close)

	cli := New(srv.URL, 5*time.Second)
	meta, err := cli.FetchCourseInfo(context.Background(), "c1")
	require.NoError(t, err)
	assert.NotNil(t, meta)
	assert.Empty(t, meta)
}

func TestClient_FetchCourseInfo_SkipsWhenUnconfigured(t *testing.T) {
	t.Parallel()

	cli := New("", 5*time.Second)
	meta, err := cli.FetchCourseInfo(context.Background(), "c1")
	require.NoError(t, err)
	assert.Empty(t, meta)

	cli = New("http://localhost:1", 5*time.Second)
	meta, err = cli.FetchCourseInfo(context.Background(), "")
	require.NoError(t, err, "empty id never reaches the network")
	assert.Empty(t, meta)
}

func TestClient_Ping(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/health", r.URL.Path)
		w.WriteHeader(http.StatusOK)
	}))
	t.Cleanup(srv.Close)

	cli := New(srv.URL, 5*time.Second)
	assert.NoError(t, cli.Ping(context.Background()))

	down := New("http://127.0.0.1:1", 500*time.Millisecond)
	assert.Error(t, down.Ping(context.Background()))
}
