package db

import (
	"context"
	"database/sql"
	"time"

	"github.com/navbryce/next-social-be/model"
)

type Database interface {
	PostDatabase
	UserDatabase
	InteractionDatabase
	FollowDatabase
	DirectDatabase
	NotificationDatabase
	GetSQLDB() *sql.DB
	Close() error
}

type CreatePost struct {
	AuthorId int64
	Content  string
	Image    *string
	ReplyId  *int64
}

type PostQueryOpts struct {
	// WithReplies loads one level of replies, each with author, likes and reposts.
	WithReplies bool
}

type PostsListQuery struct {
	AuthorIds []int64 // nil for every author
	// From and LastId page backwards by (created_at, id). Nil From starts at the newest post.
	From         *time.Time
	LastId       int64
	Skip         int
	Limit        int16
	TopLevelOnly bool
}

type PostDatabase interface {
	CreatePost(ctx context.Context, req *CreatePost) (postId int64, err error)
	// GetPostById returns nil, nil when the post does not exist.
	GetPostById(ctx context.Context, id int64, opts *PostQueryOpts) (*model.Post, error)
	GetPosts(ctx context.Context, query *PostsListQuery) ([]*model.Post, error)
	// DeletePost removes the post with its interactions and notifications and detaches its replies.
	DeletePost(ctx context.Context, id int64) error
}

type ProfileUpdate struct {
	Username    string
	DisplayName string
	Description string
	Avatar      *string // nil keeps the current value
	Banner      *string
}

type UserDatabase interface {
	CreateUser(ctx context.Context, user *model.User) (userId int64, err error)
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)
	GetUserByUsername(ctx context.Context, username string) (*model.User, error)
	GetUsersByIds(ctx context.Context, ids []int64) ([]*model.User, error)
	UpdateProfile(ctx context.Context, userId int64, update *ProfileUpdate) error
}

type InteractionDatabase interface {
	// ToggleInteraction flips the (user, post) edge and returns whether it now exists.
	ToggleInteraction(ctx context.Context, kind model.InteractionKind, userId, postId int64) (active bool, err error)
	HasInteraction(ctx context.Context, kind model.InteractionKind, userId, postId int64) (bool, error)
}

type FollowDatabase interface {
	ToggleFollow(ctx context.Context, followerId, followingId int64) (following bool, err error)
	GetFollowers(ctx context.Context, userId int64) ([]*model.User, error)
	GetFollowingIds(ctx context.Context, userId int64) ([]int64, error)
	CountFollows(ctx context.Context, userId int64) (followers int64, following int64, err error)
}

type DirectDatabase interface {
	CreateDirect(ctx context.Context, memberIds []int64) (directId int64, err error)
	// IsDirectMember reports whether the direct exists and userId belongs to it.
	IsDirectMember(ctx context.Context, directId, userId int64) (bool, error)
	CreateDirectMessage(ctx context.Context, directId, userId int64, content string) (messageId int64, err error)
	GetDirectMembers(ctx context.Context, directId int64) ([]*model.User, error)
	// GetDirectsForUser loads every direct of the user with members and messages (with authors).
	GetDirectsForUser(ctx context.Context, userId int64) ([]*model.Direct, error)
}

type NotificationDatabase interface {
	CreateNotification(ctx context.Context, notification *model.Notification) (notificationId int64, err error)
	GetNotifications(ctx context.Context, userId int64, limit int) ([]*model.Notification, error)
	CountUnreadNotifications(ctx context.Context, userId int64) (int64, error)
	MarkNotificationsRead(ctx context.Context, userId int64) error
}
