package app

import (
	"context"
	"errors"

	"github.com/navbryce/next-social-be/db"
	"github.com/navbryce/next-social-be/model"
)

var MissingCursorErr = errors.New("missing cursor")

type FeedPage struct {
	Posts  []*model.Post      `json:"posts"`
	Cursor *TaggedUnionCursor `json:"cursor"`
}

// GetFeedForUser loads one page of the cursor's feed. The returned page carries
// the cursor for the following page, or a nil cursor when there are no more posts.
func GetFeedForUser(
	ctx context.Context,
	db db.Database,
	user *model.User,
	cursor *TaggedUnionCursor,
	opts *PostCursorOpts,
) (*FeedPage, error) {
	if cursor == nil || cursor.PostCursor == nil {
		return nil, MissingCursorErr
	}
	posts, next, err := cursor.Posts(ctx, db, user, opts)
	if err != nil {
		return nil, err
	}
	page := &FeedPage{Posts: posts}
	if next != nil {
		page.Cursor = &TaggedUnionCursor{PostCursor: next, CursorType: cursor.CursorType}
	}
	return page, nil
}
