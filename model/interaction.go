package model

import (
	"fmt"
	"time"
)

// InteractionKind names a per (user, post) toggleable edge.
type InteractionKind string

const (
	InteractionLike     InteractionKind = "like"
	InteractionRepost   InteractionKind = "repost"
	InteractionBookmark InteractionKind = "bookmark"
)

func (ik InteractionKind) Validate() error {
	switch ik {
	case InteractionLike, InteractionRepost, InteractionBookmark:
		return nil
	}
	return fmt.Errorf("unknown interaction kind %q", ik)
}

// ResponseKey is the JSON key carrying the toggle state, e.g. "liked".
func (ik InteractionKind) ResponseKey() string {
	switch ik {
	case InteractionLike:
		return "liked"
	case InteractionRepost:
		return "reposted"
	case InteractionBookmark:
		return "bookmarked"
	}
	return string(ik)
}

type Interaction struct {
	Id        int64     `db:"id" json:"id"`
	UserId    int64     `db:"user_id" json:"userId"`
	PostId    int64     `db:"post_id" json:"postId"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
}
