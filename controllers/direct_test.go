package controllers

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/navbryce/next-social-be/db/memory"
	"github.com/navbryce/next-social-be/model"
	"github.com/navbryce/next-social-be/util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSendMessageDeliversToEveryMember(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	alice := f.user(t, "alice")
	bob := f.user(t, "bob")

	direct, httpErr := f.directs.StartDirect(ctx, alice, "bob")
	require.Nil(t, httpErr)
	require.Len(t, direct.Members, 2)

	again, httpErr := f.directs.StartDirect(ctx, bob, "alice")
	require.Nil(t, httpErr)
	assert.Equal(t, direct.Id, again.Id)

	subs := f.listen(t, model.DirectsChannel(alice.Username), model.DirectsChannel(bob.Username))
	httpErr = f.directs.SendMessage(ctx, alice, direct.Id, "hi bob")
	require.Nil(t, httpErr)

	for channel, events := range f.collect(subs) {
		require.Len(t, events, 1, channel)
		assert.Equal(t, model.EventNewMessage, events[0].Name)

		var payload struct {
			User *model.UserWithDirects `json:"user"`
		}
		require.NoError(t, json.Unmarshal(events[0].Data, &payload))
		require.Len(t, payload.User.Directs, 1)
		messages := payload.User.Directs[0].Messages
		require.Len(t, messages, 1)
		assert.Equal(t, "hi bob", messages[0].Content)
		assert.Equal(t, alice.Id, messages[0].User.Id)
	}
}

func TestSendMessageRequiresMembership(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	alice := f.user(t, "alice")
	f.user(t, "bob")
	mallory := f.user(t, "mallory")

	direct, httpErr := f.directs.StartDirect(ctx, alice, "bob")
	require.Nil(t, httpErr)

	subs := f.listen(t, model.DirectsChannel(alice.Username), model.DirectsChannel(mallory.Username))
	httpErr = f.directs.SendMessage(ctx, mallory, direct.Id, "let me in")
	require.NotNil(t, httpErr)
	assert.Equal(t, util.KindNotFound, httpErr.Kind)
	assert.Equal(t, 0, f.db.MessageCount(direct.Id))

	for channel, events := range f.collect(subs) {
		assert.Empty(t, events, channel)
	}

	httpErr = f.directs.SendMessage(ctx, alice, 31337, "nowhere")
	require.NotNil(t, httpErr)
}

func TestListDirects(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	alice := f.user(t, "alice")
	f.user(t, "bob")
	f.user(t, "carol")

	_, httpErr := f.directs.StartDirect(ctx, alice, "bob")
	require.Nil(t, httpErr)
	_, httpErr = f.directs.StartDirect(ctx, alice, "carol")
	require.Nil(t, httpErr)
	_, httpErr = f.directs.StartDirect(ctx, alice, "alice")
	require.NotNil(t, httpErr)

	directs, httpErr := f.directs.ListDirects(ctx, alice)
	require.Nil(t, httpErr)
	assert.Len(t, directs, 2)
}

// brokenDirectsDB fails to load the directs view of one user.
type brokenDirectsDB struct {
	*memory.DB
	brokenUser int64
}

func (b *brokenDirectsDB) GetDirectsForUser(ctx context.Context, userId int64) ([]*model.Direct, error) {
	if userId == b.brokenUser {
		return nil, errors.New("read replica unavailable")
	}
	return b.DB.GetDirectsForUser(ctx, userId)
}

func TestSendMessageSkipsMemberWhoseViewFails(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	alice := f.user(t, "alice")
	bob := f.user(t, "bob")
	direct, httpErr := f.directs.StartDirect(ctx, alice, "bob")
	require.Nil(t, httpErr)

	directs := NewDirectController(&brokenDirectsDB{DB: f.db, brokenUser: bob.Id}, f.fanout)
	subs := f.listen(t, model.DirectsChannel(alice.Username), model.DirectsChannel(bob.Username))
	require.Nil(t, directs.SendMessage(ctx, alice, direct.Id, "still saved"))

	received := f.collect(subs)
	assert.Len(t, received[model.DirectsChannel(alice.Username)], 1)
	assert.Empty(t, received[model.DirectsChannel(bob.Username)])

	stored, err := f.db.GetDirectsForUser(ctx, bob.Id)
	require.NoError(t, err)
	require.Len(t, stored, 1)
	require.Len(t, stored[0].Messages, 1)
	assert.Equal(t, "still saved", stored[0].Messages[0].Content)
}
