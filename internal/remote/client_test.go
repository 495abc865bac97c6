package remote

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vytor/likescenter/internal/models"
)

func TestClient_FetchPage(t *testing.T) {
	var gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodGet, r.Method)
		require.Equal(t, "/likes", r.URL.Path)
		gotQuery = r.URL.RawQuery
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"data":[{"id":"user_20","name":"User 20","photoURL":"https://robohash.org/20.png","createdAt":"2025-06-01T12:00:00Z"}],"nextCursor":"21"}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL+"/", WithRateLimit(0))
	cursor := "20"
	page, err := c.FetchPage(context.Background(), 1, &cursor)
	require.NoError(t, err)

	assert.Equal(t, "cursor=20&limit=1", gotQuery)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "user_20", page.Items[0].ID)
	assert.True(t, page.Items[0].CreatedAt.Equal(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)))
	require.NotNil(t, page.NextCursor)
	assert.Equal(t, "21", *page.NextCursor)
}

func TestClient_FetchPage_LastPage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Empty(t, r.URL.Query().Get("cursor"))
		_, _ = w.Write([]byte(`{"data":[],"nextCursor":null}`))
	}))
	defer srv.Close()

	page, err := NewClient(srv.URL).FetchPage(context.Background(), 20, nil)
	require.NoError(t, err)
	assert.Empty(t, page.Items)
	assert.Nil(t, page.NextCursor)
}

func TestClient_Non2xxIsError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream down", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL).FetchPage(context.Background(), 20, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 503")
	assert.Contains(t, err.Error(), "upstream down")
}

func TestClient_PerformAction(t *testing.T) {
	var got struct {
		Action string `json:"action"`
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/users/user_5/actions", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	require.NoError(t, NewClient(srv.URL).PerformAction(context.Background(), "user_5", models.ActionLike))
	assert.Equal(t, "like", got.Action)
}

func TestClient_FetchFeatureFlag(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/flags/blur", r.URL.Path)
		_, _ = w.Write([]byte(`{"enabled":true}`))
	}))
	defer srv.Close()

	enabled, err := NewClient(srv.URL).FetchFeatureFlag(context.Background())
	require.NoError(t, err)
	assert.True(t, enabled)
}

func TestClient_RateLimitHonoursContext(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"enabled":false}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, WithRateLimit(0.001))
	_, err := c.FetchFeatureFlag(context.Background())
	require.NoError(t, err, "the first request uses the initial burst")

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err = c.FetchFeatureFlag(ctx)
	require.Error(t, err)
}
