package memory

import (
	"context"
	"testing"

	db2 "github.com/navbryce/next-social-be/db"
	"github.com/navbryce/next-social-be/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedUser(t *testing.T, mdb *DB, username string) *model.User {
	t.Helper()
	id, err := mdb.CreateUser(context.Background(), &model.User{Email: username + "@example.com", Username: username})
	require.NoError(t, err)
	user, err := mdb.GetUsersByIds(context.Background(), []int64{id})
	require.NoError(t, err)
	return user[0]
}

func TestCreateUserRejectsDuplicates(t *testing.T) {
	mdb := New()
	seedUser(t, mdb, "alice")

	_, err := mdb.CreateUser(context.Background(), &model.User{Email: "other@example.com", Username: "alice"})
	assert.True(t, db2.IsDupKeyErr(err))
}

func TestToggleInteractionFlips(t *testing.T) {
	ctx := context.Background()
	mdb := New()
	alice := seedUser(t, mdb, "alice")
	postId, err := mdb.CreatePost(ctx, &db2.CreatePost{AuthorId: alice.Id, Content: "hi"})
	require.NoError(t, err)

	active, err := mdb.ToggleInteraction(ctx, model.InteractionLike, alice.Id, postId)
	require.NoError(t, err)
	assert.True(t, active)

	post, err := mdb.GetPostById(ctx, postId, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, post.LikeCount)

	active, err = mdb.ToggleInteraction(ctx, model.InteractionLike, alice.Id, postId)
	require.NoError(t, err)
	assert.False(t, active)

	has, err := mdb.HasInteraction(ctx, model.InteractionLike, alice.Id, postId)
	require.NoError(t, err)
	assert.False(t, has)
}

func TestDeletePostRemovesEdges(t *testing.T) {
	ctx := context.Background()
	mdb := New()
	alice := seedUser(t, mdb, "alice")
	bob := seedUser(t, mdb, "bob")

	parentId, err := mdb.CreatePost(ctx, &db2.CreatePost{AuthorId: alice.Id, Content: "parent"})
	require.NoError(t, err)
	replyId, err := mdb.CreatePost(ctx, &db2.CreatePost{AuthorId: bob.Id, Content: "reply", ReplyId: &parentId})
	require.NoError(t, err)
	_, err = mdb.ToggleInteraction(ctx, model.InteractionBookmark, bob.Id, parentId)
	require.NoError(t, err)
	_, err = mdb.CreateNotification(ctx, &model.Notification{Type: model.NotificationLike, FromId: bob.Id, ToId: alice.Id, PostId: &parentId})
	require.NoError(t, err)

	parent, err := mdb.GetPostById(ctx, parentId, &db2.PostQueryOpts{WithReplies: true})
	require.NoError(t, err)
	require.Len(t, parent.Replies, 1)
	assert.Equal(t, 1, parent.ReplyCount)

	require.NoError(t, mdb.DeletePost(ctx, parentId))

	gone, err := mdb.GetPostById(ctx, parentId, nil)
	require.NoError(t, err)
	assert.Nil(t, gone)

	reply, err := mdb.GetPostById(ctx, replyId, nil)
	require.NoError(t, err)
	assert.Nil(t, reply.ReplyId)

	has, err := mdb.HasInteraction(ctx, model.InteractionBookmark, bob.Id, parentId)
	require.NoError(t, err)
	assert.False(t, has)

	unread, err := mdb.CountUnreadNotifications(ctx, alice.Id)
	require.NoError(t, err)
	assert.Equal(t, int64(0), unread)
}

func TestGetPostsPages(t *testing.T) {
	ctx := context.Background()
	mdb := New()
	alice := seedUser(t, mdb, "alice")
	for i := 0; i < 5; i++ {
		_, err := mdb.CreatePost(ctx, &db2.CreatePost{AuthorId: alice.Id, Content: "post"})
		require.NoError(t, err)
	}

	first, err := mdb.GetPosts(ctx, &db2.PostsListQuery{Limit: 2})
	require.NoError(t, err)
	require.Len(t, first, 2)
	assert.Greater(t, first[0].Id, first[1].Id)

	last := first[len(first)-1]
	next, err := mdb.GetPosts(ctx, &db2.PostsListQuery{From: &last.CreatedAt, LastId: last.Id, Limit: 10})
	require.NoError(t, err)
	assert.Len(t, next, 3)
	for _, post := range next {
		assert.Less(t, post.Id, last.Id)
	}

	skipped, err := mdb.GetPosts(ctx, &db2.PostsListQuery{Skip: 4, Limit: 10})
	require.NoError(t, err)
	assert.Len(t, skipped, 1)
}
