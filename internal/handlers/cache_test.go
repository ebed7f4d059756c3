package handlers

import (
	"context"
	"net/http"
	"os"
	"testing"
	"time"

	"yatube/internal/cache"
	"yatube/internal/config"
	"yatube/internal/logging"
	"yatube/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestGlobalFeedCache needs a live Redis named by TEST_REDIS_ADDR.
func TestGlobalFeedCache(t *testing.T) {
	addr := os.Getenv("TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("TEST_REDIS_ADDR not set")
	}
	ctx := context.Background()
	pc, err := cache.New(ctx, config.RedisConfig{Addr: addr, TTL: time.Minute}, logging.Discard())
	require.NoError(t, err)
	pc.Invalidate(ctx, "index")
	t.Cleanup(func() {
		pc.Invalidate(ctx, "index")
		pc.Close()
	})

	ts := newTestServer(t)
	ts.server.Cache = pc
	token, _ := ts.register("leo")
	ts.post(token, "hello", "")

	rec := ts.do(http.MethodGet, "/api/posts?page=99", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "MISS", rec.Header().Get("X-Cache"))
	assert.Equal(t, 1, decodeBody[*models.Page[*models.Post]](t, rec).Number)

	_, stored := pc.Get(ctx, cache.Key("index", 99))
	assert.False(t, stored, "out-of-range pages are stored under the page served")
	_, stored = pc.Get(ctx, cache.Key("index", 1))
	assert.True(t, stored)

	rec = ts.do(http.MethodGet, "/api/posts?page=99", "", nil)
	assert.Equal(t, "MISS", rec.Header().Get("X-Cache"))

	rec = ts.do(http.MethodGet, "/api/posts", "", nil)
	assert.Equal(t, "HIT", rec.Header().Get("X-Cache"))
	assert.Equal(t, []string{"hello"}, postTexts(decodeBody[*models.Page[*models.Post]](t, rec)))

	ts.post(token, "second", "")
	rec = ts.do(http.MethodGet, "/api/posts", "", nil)
	assert.Equal(t, "MISS", rec.Header().Get("X-Cache"), "creating a post invalidates the index")
}
