package controllers

import (
	"context"

	"github.com/navbryce/next-social-be/db"
	"github.com/navbryce/next-social-be/model"
	"github.com/navbryce/next-social-be/util"
)

const explorePageSize = 20

type ExplorePage struct {
	Posts  []*model.Post `json:"posts"`
	NoMore bool          `json:"noMore"`
}

type ExploreController struct {
	db db.PostDatabase
}

func NewExploreController(db db.PostDatabase) *ExploreController {
	return &ExploreController{db: db}
}

// Explore pages through the newest top level posts of every author.
func (ec *ExploreController) Explore(ctx context.Context, skip int) (*ExplorePage, *util.HTTPError) {
	if skip < 0 {
		return nil, util.BuildValidationHTTPErr("skip must not be negative")
	}
	posts, err := ec.db.GetPosts(ctx, &db.PostsListQuery{
		Skip:         skip,
		Limit:        explorePageSize + 1,
		TopLevelOnly: true,
	})
	if err != nil {
		return nil, util.BuildDbHTTPErr(err)
	}
	page := &ExplorePage{NoMore: len(posts) <= explorePageSize}
	if !page.NoMore {
		posts = posts[:explorePageSize]
	}
	page.Posts = posts
	return page, nil
}
