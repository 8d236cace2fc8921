package app

import (
	"context"
	"errors"

	appDb "github.com/navbryce/next-social-be/db"
	"github.com/navbryce/next-social-be/model"
)

// DashboardCursor pages the posts of everyone the user follows plus their own.
// The author list is resolved on the first page and carried in the cursor.
type DashboardCursor struct {
	MostRecentCursor
}

func (dc *DashboardCursor) Posts(ctx context.Context, db appDb.Database, user *model.User, cursorOpts *PostCursorOpts) ([]*model.Post, PostCursor, error) {
	cursor := &dc.MostRecentCursor
	if dc.AuthorIds == nil {
		authorIds, err := fetchDashboardAuthorIds(ctx, db, user)
		if err != nil {
			return nil, nil, err
		}
		cursor = cursor.WithAuthors(authorIds)
	}

	posts, next, err := cursor.Posts(ctx, db, user, cursorOpts)
	if err != nil || next == nil {
		return posts, nil, err
	}
	return posts, &DashboardCursor{*next.(*MostRecentCursor)}, nil
}

func fetchDashboardAuthorIds(ctx context.Context, db appDb.Database, user *model.User) ([]int64, error) {
	if user == nil {
		return nil, errors.New("must be logged in to fetch the dashboard")
	}
	ids, err := db.GetFollowingIds(ctx, user.Id)
	if err != nil {
		return nil, err
	}
	return append(ids, user.Id), nil
}
