// Package memory is a process-local implementation of db.Database used for
// STORE=memory runs and in tests. It keeps the same uniqueness rules as the
// MySQL schema.
package memory

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"sync"
	"time"

	db2 "github.com/navbryce/next-social-be/db"
	"github.com/navbryce/next-social-be/model"
)

type edgeKey struct {
	userId int64
	postId int64
}

type followKey struct {
	followerId  int64
	followingId int64
}

type DB struct {
	mu     sync.RWMutex
	nextId int64
	now    func() time.Time

	users         map[int64]*model.User
	posts         map[int64]*model.Post
	interactions  map[model.InteractionKind]map[edgeKey]*model.Interaction
	follows       map[followKey]*model.Follow
	directs       map[int64]*model.Direct
	messages      map[int64][]*model.DirectMessage
	notifications []*model.Notification
}

var _ db2.Database = (*DB)(nil)

func New() *DB {
	return &DB{
		now:   time.Now,
		users: make(map[int64]*model.User),
		posts: make(map[int64]*model.Post),
		interactions: map[model.InteractionKind]map[edgeKey]*model.Interaction{
			model.InteractionLike:     {},
			model.InteractionRepost:   {},
			model.InteractionBookmark: {},
		},
		follows:  make(map[followKey]*model.Follow),
		directs:  make(map[int64]*model.Direct),
		messages: make(map[int64][]*model.DirectMessage),
	}
}

func (mdb *DB) GetSQLDB() *sql.DB {
	return nil
}

func (mdb *DB) Close() error {
	return nil
}

// id and tick must be called with mu held for writing.
func (mdb *DB) id() int64 {
	mdb.nextId++
	return mdb.nextId
}

// tick keeps created_at strictly increasing so ordering is deterministic.
func (mdb *DB) tick() time.Time {
	return mdb.now().Add(time.Duration(mdb.nextId) * time.Microsecond)
}

func copyUser(user *model.User) *model.User {
	if user == nil {
		return nil
	}
	cp := *user
	return &cp
}

/* users */

func (mdb *DB) CreateUser(ctx context.Context, user *model.User) (int64, error) {
	mdb.mu.Lock()
	defer mdb.mu.Unlock()
	for _, existing := range mdb.users {
		if existing.Email == user.Email || existing.Username == user.Username {
			return 0, fmt.Errorf("person: %w", db2.ErrDuplicate)
		}
	}
	cp := copyUser(user)
	cp.Id = mdb.id()
	cp.CreatedAt = mdb.tick()
	mdb.users[cp.Id] = cp
	return cp.Id, nil
}

func (mdb *DB) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	mdb.mu.RLock()
	defer mdb.mu.RUnlock()
	for _, user := range mdb.users {
		if user.Email == email {
			return copyUser(user), nil
		}
	}
	return nil, nil
}

func (mdb *DB) GetUserByUsername(ctx context.Context, username string) (*model.User, error) {
	mdb.mu.RLock()
	defer mdb.mu.RUnlock()
	for _, user := range mdb.users {
		if user.Username == username {
			return copyUser(user), nil
		}
	}
	return nil, nil
}

func (mdb *DB) GetUsersByIds(ctx context.Context, ids []int64) ([]*model.User, error) {
	mdb.mu.RLock()
	defer mdb.mu.RUnlock()
	users := []*model.User{}
	for _, id := range ids {
		if user, ok := mdb.users[id]; ok {
			users = append(users, copyUser(user))
		}
	}
	return users, nil
}

func (mdb *DB) UpdateProfile(ctx context.Context, userId int64, update *db2.ProfileUpdate) error {
	mdb.mu.Lock()
	defer mdb.mu.Unlock()
	user, ok := mdb.users[userId]
	if !ok {
		return nil
	}
	for _, existing := range mdb.users {
		if existing.Id != userId && existing.Username == update.Username {
			return fmt.Errorf("person: %w", db2.ErrDuplicate)
		}
	}
	user.Username = update.Username
	user.DisplayName = update.DisplayName
	user.Description = update.Description
	if update.Avatar != nil {
		avatar := *update.Avatar
		user.Avatar = &avatar
	}
	if update.Banner != nil {
		banner := *update.Banner
		user.Banner = &banner
	}
	return nil
}

/* posts */

func (mdb *DB) CreatePost(ctx context.Context, req *db2.CreatePost) (int64, error) {
	mdb.mu.Lock()
	defer mdb.mu.Unlock()
	post := &model.Post{
		Id:       mdb.id(),
		AuthorId: req.AuthorId,
		Content:  req.Content,
	}
	post.CreatedAt = mdb.tick()
	if req.Image != nil {
		image := *req.Image
		post.Image = &image
	}
	if req.ReplyId != nil {
		replyId := *req.ReplyId
		post.ReplyId = &replyId
	}
	mdb.posts[post.Id] = post
	return post.Id, nil
}

func (mdb *DB) GetPostById(ctx context.Context, id int64, opts *db2.PostQueryOpts) (*model.Post, error) {
	mdb.mu.RLock()
	defer mdb.mu.RUnlock()
	stored, ok := mdb.posts[id]
	if !ok {
		return nil, nil
	}
	post := mdb.buildPost(stored, true)
	if opts != nil && opts.WithReplies {
		post.Replies = []*model.Post{}
		for _, reply := range mdb.sortedPosts(false) {
			if reply.ReplyId != nil && *reply.ReplyId == id {
				post.Replies = append(post.Replies, mdb.buildPost(reply, false))
			}
		}
	}
	return post, nil
}

func (mdb *DB) GetPosts(ctx context.Context, query *db2.PostsListQuery) ([]*model.Post, error) {
	mdb.mu.RLock()
	defer mdb.mu.RUnlock()
	var authors map[int64]bool
	if query.AuthorIds != nil {
		authors = make(map[int64]bool, len(query.AuthorIds))
		for _, id := range query.AuthorIds {
			authors[id] = true
		}
	}

	posts := []*model.Post{}
	skipped := 0
	for _, stored := range mdb.sortedPosts(true) {
		if authors != nil && !authors[stored.AuthorId] {
			continue
		}
		if query.TopLevelOnly && stored.ReplyId != nil {
			continue
		}
		if query.From != nil && !(stored.CreatedAt.Before(*query.From) ||
			stored.CreatedAt.Equal(*query.From) && stored.Id < query.LastId) {
			continue
		}
		if skipped < query.Skip {
			skipped++
			continue
		}
		if len(posts) >= int(query.Limit) {
			break
		}
		posts = append(posts, mdb.buildPost(stored, true))
	}
	return posts, nil
}

func (mdb *DB) DeletePost(ctx context.Context, id int64) error {
	mdb.mu.Lock()
	defer mdb.mu.Unlock()
	for _, edges := range mdb.interactions {
		for key := range edges {
			if key.postId == id {
				delete(edges, key)
			}
		}
	}
	kept := mdb.notifications[:0]
	for _, notification := range mdb.notifications {
		if notification.PostId == nil || *notification.PostId != id {
			kept = append(kept, notification)
		}
	}
	mdb.notifications = kept
	for _, post := range mdb.posts {
		if post.ReplyId != nil && *post.ReplyId == id {
			post.ReplyId = nil
		}
	}
	delete(mdb.posts, id)
	return nil
}

func (mdb *DB) sortedPosts(newestFirst bool) []*model.Post {
	posts := make([]*model.Post, 0, len(mdb.posts))
	for _, post := range mdb.posts {
		posts = append(posts, post)
	}
	sort.Slice(posts, func(i, j int) bool {
		if newestFirst {
			return posts[i].Id > posts[j].Id
		}
		return posts[i].Id < posts[j].Id
	})
	return posts
}

// buildPost must be called with mu held.
func (mdb *DB) buildPost(stored *model.Post, withParent bool) *model.Post {
	post := &model.Post{
		Id:        stored.Id,
		AuthorId:  stored.AuthorId,
		Content:   stored.Content,
		Image:     stored.Image,
		ReplyId:   stored.ReplyId,
		CreatedAt: stored.CreatedAt,
		Author:    copyUser(mdb.users[stored.AuthorId]),
		Likes:     mdb.edgesForPost(model.InteractionLike, stored.Id),
		Reposts:   mdb.edgesForPost(model.InteractionRepost, stored.Id),
	}
	post.LikeCount = len(post.Likes)
	post.RepostCount = len(post.Reposts)
	for _, other := range mdb.posts {
		if other.ReplyId != nil && *other.ReplyId == stored.Id {
			post.ReplyCount++
		}
	}
	if withParent && stored.ReplyId != nil {
		if parent, ok := mdb.posts[*stored.ReplyId]; ok {
			post.Reply = &model.Post{
				Id:        parent.Id,
				AuthorId:  parent.AuthorId,
				Content:   parent.Content,
				Image:     parent.Image,
				ReplyId:   parent.ReplyId,
				CreatedAt: parent.CreatedAt,
				Author:    copyUser(mdb.users[parent.AuthorId]),
			}
		}
	}
	return post
}

func (mdb *DB) edgesForPost(kind model.InteractionKind, postId int64) []*model.Interaction {
	edges := []*model.Interaction{}
	for key, edge := range mdb.interactions[kind] {
		if key.postId == postId {
			cp := *edge
			edges = append(edges, &cp)
		}
	}
	sort.Slice(edges, func(i, j int) bool { return edges[i].Id < edges[j].Id })
	return edges
}

/* interactions */

func (mdb *DB) ToggleInteraction(ctx context.Context, kind model.InteractionKind, userId, postId int64) (bool, error) {
	if err := kind.Validate(); err != nil {
		return false, err
	}
	mdb.mu.Lock()
	defer mdb.mu.Unlock()
	key := edgeKey{userId, postId}
	edges := mdb.interactions[kind]
	if _, ok := edges[key]; ok {
		delete(edges, key)
		return false, nil
	}
	edges[key] = &model.Interaction{
		Id:        mdb.id(),
		UserId:    userId,
		PostId:    postId,
		CreatedAt: mdb.tick(),
	}
	return true, nil
}

func (mdb *DB) HasInteraction(ctx context.Context, kind model.InteractionKind, userId, postId int64) (bool, error) {
	if err := kind.Validate(); err != nil {
		return false, err
	}
	mdb.mu.RLock()
	defer mdb.mu.RUnlock()
	_, ok := mdb.interactions[kind][edgeKey{userId, postId}]
	return ok, nil
}

/* follows */

func (mdb *DB) ToggleFollow(ctx context.Context, followerId, followingId int64) (bool, error) {
	mdb.mu.Lock()
	defer mdb.mu.Unlock()
	key := followKey{followerId, followingId}
	if _, ok := mdb.follows[key]; ok {
		delete(mdb.follows, key)
		return false, nil
	}
	mdb.follows[key] = &model.Follow{
		FollowerId:  followerId,
		FollowingId: followingId,
		CreatedAt:   mdb.tick(),
	}
	mdb.nextId++
	return true, nil
}

func (mdb *DB) GetFollowers(ctx context.Context, userId int64) ([]*model.User, error) {
	mdb.mu.RLock()
	defer mdb.mu.RUnlock()
	var follows []*model.Follow
	for key, follow := range mdb.follows {
		if key.followingId == userId {
			follows = append(follows, follow)
		}
	}
	sort.Slice(follows, func(i, j int) bool { return follows[i].CreatedAt.Before(follows[j].CreatedAt) })
	followers := []*model.User{}
	for _, follow := range follows {
		if user, ok := mdb.users[follow.FollowerId]; ok {
			followers = append(followers, copyUser(user))
		}
	}
	return followers, nil
}

func (mdb *DB) GetFollowingIds(ctx context.Context, userId int64) ([]int64, error) {
	mdb.mu.RLock()
	defer mdb.mu.RUnlock()
	ids := []int64{}
	for key := range mdb.follows {
		if key.followerId == userId {
			ids = append(ids, key.followingId)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids, nil
}

func (mdb *DB) CountFollows(ctx context.Context, userId int64) (int64, int64, error) {
	mdb.mu.RLock()
	defer mdb.mu.RUnlock()
	var followers, following int64
	for key := range mdb.follows {
		if key.followingId == userId {
			followers++
		}
		if key.followerId == userId {
			following++
		}
	}
	return followers, following, nil
}

/* directs */

func (mdb *DB) CreateDirect(ctx context.Context, memberIds []int64) (int64, error) {
	mdb.mu.Lock()
	defer mdb.mu.Unlock()
	direct := &model.Direct{Id: mdb.id(), CreatedAt: mdb.tick()}
	for _, memberId := range memberIds {
		if user, ok := mdb.users[memberId]; ok {
			direct.Members = append(direct.Members, user)
		}
	}
	mdb.directs[direct.Id] = direct
	return direct.Id, nil
}

func (mdb *DB) IsDirectMember(ctx context.Context, directId, userId int64) (bool, error) {
	mdb.mu.RLock()
	defer mdb.mu.RUnlock()
	direct, ok := mdb.directs[directId]
	return ok && direct.HasMember(userId), nil
}

func (mdb *DB) CreateDirectMessage(ctx context.Context, directId, userId int64, content string) (int64, error) {
	mdb.mu.Lock()
	defer mdb.mu.Unlock()
	message := &model.DirectMessage{
		Id:        mdb.id(),
		DirectId:  directId,
		UserId:    userId,
		Content:   content,
		CreatedAt: mdb.tick(),
	}
	mdb.messages[directId] = append(mdb.messages[directId], message)
	return message.Id, nil
}

func (mdb *DB) GetDirectMembers(ctx context.Context, directId int64) ([]*model.User, error) {
	mdb.mu.RLock()
	defer mdb.mu.RUnlock()
	members := []*model.User{}
	if direct, ok := mdb.directs[directId]; ok {
		for _, member := range direct.Members {
			members = append(members, copyUser(mdb.users[member.Id]))
		}
	}
	return members, nil
}

func (mdb *DB) GetDirectsForUser(ctx context.Context, userId int64) ([]*model.Direct, error) {
	mdb.mu.RLock()
	defer mdb.mu.RUnlock()
	directs := []*model.Direct{}
	for _, stored := range mdb.directs {
		if !stored.HasMember(userId) {
			continue
		}
		direct := &model.Direct{
			Id:        stored.Id,
			CreatedAt: stored.CreatedAt,
			Members:   []*model.User{},
			Messages:  []*model.DirectMessage{},
		}
		for _, member := range stored.Members {
			direct.Members = append(direct.Members, copyUser(mdb.users[member.Id]))
		}
		for _, message := range mdb.messages[stored.Id] {
			cp := *message
			cp.User = copyUser(mdb.users[message.UserId])
			direct.Messages = append(direct.Messages, &cp)
		}
		directs = append(directs, direct)
	}
	sort.Slice(directs, func(i, j int) bool { return directs[i].Id > directs[j].Id })
	return directs, nil
}

// MessageCount is a test helper reporting how many messages a direct holds.
func (mdb *DB) MessageCount(directId int64) int {
	mdb.mu.RLock()
	defer mdb.mu.RUnlock()
	return len(mdb.messages[directId])
}

/* notifications */

func (mdb *DB) CreateNotification(ctx context.Context, notification *model.Notification) (int64, error) {
	mdb.mu.Lock()
	defer mdb.mu.Unlock()
	cp := *notification
	cp.Id = mdb.id()
	cp.CreatedAt = mdb.tick()
	cp.From = nil
	mdb.notifications = append(mdb.notifications, &cp)
	return cp.Id, nil
}

func (mdb *DB) GetNotifications(ctx context.Context, userId int64, limit int) ([]*model.Notification, error) {
	mdb.mu.RLock()
	defer mdb.mu.RUnlock()
	notifications := []*model.Notification{}
	for i := len(mdb.notifications) - 1; i >= 0 && len(notifications) < limit; i-- {
		stored := mdb.notifications[i]
		if stored.ToId != userId {
			continue
		}
		cp := *stored
		cp.From = copyUser(mdb.users[stored.FromId])
		notifications = append(notifications, &cp)
	}
	return notifications, nil
}

func (mdb *DB) CountUnreadNotifications(ctx context.Context, userId int64) (int64, error) {
	mdb.mu.RLock()
	defer mdb.mu.RUnlock()
	var count int64
	for _, notification := range mdb.notifications {
		if notification.ToId == userId && !notification.Read {
			count++
		}
	}
	return count, nil
}

func (mdb *DB) MarkNotificationsRead(ctx context.Context, userId int64) error {
	mdb.mu.Lock()
	defer mdb.mu.Unlock()
	for _, notification := range mdb.notifications {
		if notification.ToId == userId {
			notification.Read = true
		}
	}
	return nil
}
