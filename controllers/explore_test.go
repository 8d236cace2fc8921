package controllers

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExplorePages(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	alice := f.user(t, "alice")
	var lastTopLevel int64
	for i := 0; i < explorePageSize+3; i++ {
		post, httpErr := f.posts.CreatePost(ctx, alice, &CreatePostReq{Content: "post"})
		require.Nil(t, httpErr)
		lastTopLevel = post.Id
	}
	_, httpErr := f.posts.CreatePost(ctx, alice, &CreatePostReq{Content: "reply", ReplyId: &lastTopLevel})
	require.Nil(t, httpErr)
	f.fanout.Wait()

	explore := NewExploreController(f.db)
	first, httpErr := explore.Explore(ctx, 0)
	require.Nil(t, httpErr)
	assert.Len(t, first.Posts, explorePageSize)
	assert.False(t, first.NoMore)
	assert.Equal(t, lastTopLevel, first.Posts[0].Id)

	second, httpErr := explore.Explore(ctx, explorePageSize)
	require.Nil(t, httpErr)
	assert.Len(t, second.Posts, 3)
	assert.True(t, second.NoMore)

	_, httpErr = explore.Explore(ctx, -1)
	assert.NotNil(t, httpErr)
}
