package storage

import (
	"context"
	"strings"
	"testing"

	"yatube/internal/config"
	"yatube/internal/logging"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObjectName(t *testing.T) {
	name, err := ObjectName(PostImages, "Holiday.JPG")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(name, "posts/"))
	assert.True(t, strings.HasSuffix(name, ".jpg"))

	other, err := ObjectName(PostImages, "Holiday.JPG")
	require.NoError(t, err)
	assert.NotEqual(t, name, other)

	_, err = ObjectName(Avatars, "script.sh")
	assert.Error(t, err)
}

func TestDisabledStore(t *testing.T) {
	store, err := New(config.StorageConfig{}, logging.Discard())
	require.NoError(t, err)
	assert.False(t, store.Enabled())

	ctx := context.Background()
	assert.NoError(t, store.EnsureBucket(ctx))
	_, err = store.Put(ctx, PostImages, "a.png", strings.NewReader("x"), 1, "image/png")
	assert.ErrorIs(t, err, ErrDisabled)
	assert.Empty(t, store.URL("posts/a.png"))
	assert.NoError(t, store.Remove(ctx, "posts/a.png"))
}

func TestPublicURL(t *testing.T) {
	store, err := New(config.StorageConfig{
		Endpoint: "localhost:9000",
		Bucket:   "yatube",
	}, logging.Discard())
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:9000/yatube/posts/a.png", store.URL("posts/a.png"))

	store, err = New(config.StorageConfig{
		Endpoint:  "localhost:9000",
		Bucket:    "yatube",
		PublicURL: "https://cdn.example/media/",
	}, logging.Discard())
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example/media/users/b.png", store.URL("users/b.png"))
}
