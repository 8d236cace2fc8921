package services

import (
	"context"
	"encoding/base64"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/navbryce/next-social-be/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryBusDeliversToChannelSubscribers(t *testing.T) {
	ctx := context.Background()
	bus := NewMemoryBus()

	events, cancel, err := bus.Subscribe(ctx, "dashboard-a@example.com")
	require.NoError(t, err)
	other, cancelOther, err := bus.Subscribe(ctx, "dashboard-b@example.com")
	require.NoError(t, err)
	defer cancelOther()

	require.NoError(t, bus.Publish(ctx, "dashboard-a@example.com", model.EventNewMessage, map[string]int{"id": 1}))

	event := <-events
	assert.Equal(t, model.EventNewMessage, event.Name)
	assert.JSONEq(t, `{"id":1}`, string(event.Data))
	assert.Len(t, other, 0)

	cancel()
	require.NoError(t, bus.Publish(ctx, "dashboard-a@example.com", model.EventNewMessage, nil))
	assert.Len(t, events, 0)
}

func TestNatsSubjectIsSingleToken(t *testing.T) {
	nb := NewNatsBus(nil, "realtime")
	subject := nb.Subject("dashboard-first.last@example.com")

	tokens := strings.Split(subject, ".")
	require.Len(t, tokens, 2)
	assert.Equal(t, "realtime", tokens[0])
	decoded, err := base64.RawURLEncoding.DecodeString(tokens[1])
	require.NoError(t, err)
	assert.Equal(t, "dashboard-first.last@example.com", string(decoded))
	assert.NotContains(t, tokens[1], "*")
	assert.NotContains(t, tokens[1], ">")
}

func TestMemoryPostCache(t *testing.T) {
	ctx := context.Background()
	cache := NewMemoryPostCache()

	miss, err := cache.Get(ctx, 7)
	require.NoError(t, err)
	assert.Nil(t, miss)

	require.NoError(t, cache.Set(ctx, &model.Post{Id: 7, Content: "hello"}))
	hit, err := cache.Get(ctx, 7)
	require.NoError(t, err)
	require.NotNil(t, hit)
	assert.Equal(t, "hello", hit.Content)

	require.NoError(t, cache.Evict(ctx, 7))
	assert.False(t, cache.Has(7))
	assert.Equal(t, "post-7", PostKey(7))
}

func TestDiskUploader(t *testing.T) {
	dir := t.TempDir()
	uploader := &DiskUploader{Dir: dir}

	blobId, err := uploader.Upload(context.Background(), FolderAvatars, []byte("png"))
	require.NoError(t, err)
	assert.Len(t, blobId, 36)

	data, err := os.ReadFile(filepath.Join(dir, FolderAvatars, blobId))
	require.NoError(t, err)
	assert.Equal(t, []byte("png"), data)
}
