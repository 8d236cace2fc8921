package controllers

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/navbryce/next-social-be/db/memory"
	"github.com/navbryce/next-social-be/model"
	"github.com/navbryce/next-social-be/services"
	"github.com/stretchr/testify/require"
)

type recordingUploader struct {
	mu      sync.Mutex
	folders []string
}

func (ru *recordingUploader) Upload(ctx context.Context, folder string, data []byte) (string, error) {
	ru.mu.Lock()
	defer ru.mu.Unlock()
	ru.folders = append(ru.folders, folder)
	return folder + "-blob", nil
}

type fixture struct {
	db            *memory.DB
	bus           *services.MemoryBus
	cache         *services.MemoryPostCache
	uploader      *recordingUploader
	fanout        *FanoutDispatcher
	posts         *PostController
	interactions  *InteractionController
	follows       *FollowController
	directs       *DirectController
	users         *UserController
	notifications *NotificationController
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		db:       memory.New(),
		bus:      services.NewMemoryBus(),
		cache:    services.NewMemoryPostCache(),
		uploader: &recordingUploader{},
	}
	f.fanout = NewFanoutDispatcher(f.bus, &FanoutOpts{Workers: 4, MaxTries: 2, RetryInterval: time.Millisecond})
	f.posts = NewPostController(f.db, f.cache, f.uploader, f.fanout)
	f.interactions = NewInteractionController(f.db, f.cache)
	f.follows = NewFollowController(f.db)
	f.directs = NewDirectController(f.db, f.fanout)
	f.users = NewUserController(f.db, f.uploader)
	f.notifications = NewNotificationController(f.db)
	return f
}

func (f *fixture) user(t *testing.T, username string) *model.User {
	t.Helper()
	ctx := context.Background()
	_, err := f.db.CreateUser(ctx, &model.User{Email: username + "@example.com", Username: username})
	require.NoError(t, err)
	user, err := f.db.GetUserByEmail(ctx, username+"@example.com")
	require.NoError(t, err)
	return user
}

func (f *fixture) follow(t *testing.T, follower, following *model.User) {
	t.Helper()
	isFollowing, httpErr := f.follows.ToggleFollow(context.Background(), follower, following.Username)
	require.Nil(t, httpErr)
	require.True(t, isFollowing)
}

// listen subscribes to channels; call collect after the action under test.
func (f *fixture) listen(t *testing.T, channels ...string) map[string]<-chan *model.Event {
	t.Helper()
	subs := make(map[string]<-chan *model.Event, len(channels))
	for _, channel := range channels {
		events, cancel, err := f.bus.Subscribe(context.Background(), channel)
		require.NoError(t, err)
		t.Cleanup(cancel)
		subs[channel] = events
	}
	return subs
}

// collect waits for in-flight deliveries and drains what each channel received.
func (f *fixture) collect(subs map[string]<-chan *model.Event) map[string][]*model.Event {
	f.fanout.Wait()
	received := make(map[string][]*model.Event, len(subs))
	for channel, events := range subs {
		received[channel] = []*model.Event{}
	drain:
		for {
			select {
			case event := <-events:
				received[channel] = append(received[channel], event)
			default:
				break drain
			}
		}
	}
	return received
}
