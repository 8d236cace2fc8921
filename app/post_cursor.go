package app

import (
	"context"

	appDb "github.com/navbryce/next-social-be/db"
	"github.com/navbryce/next-social-be/model"
)

type PostCursorOpts struct {
	Limit int16
}

type PostCursor interface {
	// Posts returns the next page and the cursor for the page after it (nil when exhausted).
	Posts(ctx context.Context, db appDb.Database, user *model.User, opts *PostCursorOpts) (posts []*model.Post, next PostCursor, err error)
}

type PostCursorType string
