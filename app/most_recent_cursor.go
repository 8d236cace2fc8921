package app

import (
	"context"
	"time"

	appDb "github.com/navbryce/next-social-be/db"
	"github.com/navbryce/next-social-be/model"
)

// MostRecentCursor pages newest first by (createdAt, id). Nil AuthorIds means every author.
type MostRecentCursor struct {
	AuthorIds []int64    `json:"authorIds,omitempty"`
	LastDate  *time.Time `json:"lastDate,omitempty"`
	LastId    int64      `json:"lastId,omitempty"`
}

func (mrc *MostRecentCursor) Posts(ctx context.Context, db appDb.Database, user *model.User, cursorOpts *PostCursorOpts) ([]*model.Post, PostCursor, error) {
	posts, err := db.GetPosts(ctx, &appDb.PostsListQuery{
		AuthorIds: mrc.AuthorIds,
		From:      mrc.LastDate,
		LastId:    mrc.LastId,
		Limit:     cursorOpts.Limit,
	})
	if err != nil {
		return nil, nil, err
	}
	next := mrc.buildCursorForNextPage(posts, cursorOpts.Limit)
	if next == nil {
		return posts, nil, nil
	}
	return posts, next, nil
}

func (mrc *MostRecentCursor) buildCursorForNextPage(previousPosts []*model.Post, limit int16) *MostRecentCursor {
	if len(previousPosts) == 0 || len(previousPosts) < int(limit) {
		return nil
	}
	last := previousPosts[len(previousPosts)-1]
	lastDate := last.CreatedAt
	return &MostRecentCursor{
		AuthorIds: mrc.AuthorIds,
		LastDate:  &lastDate,
		LastId:    last.Id,
	}
}

func (mrc *MostRecentCursor) WithAuthors(authorIds []int64) *MostRecentCursor {
	newCursor := *mrc
	newCursor.AuthorIds = authorIds
	return &newCursor
}
