package planetscale

import (
	"context"
	"database/sql"
	"time"

	db2 "github.com/navbryce/next-social-be/db"
	"github.com/navbryce/next-social-be/db/dao"
	"github.com/navbryce/next-social-be/model"
	"github.com/upper/db/v4"
)

type PostDB struct {
	sess db.Session
}

func getPostDB(sess db.Session) *PostDB {
	return &PostDB{sess}
}

type flattenedPost struct {
	Id        int64          `db:"id"`
	AuthorId  int64          `db:"author_id"`
	Content   string         `db:"content"`
	Image     dao.NullString `db:"image"`
	ReplyId   dao.NullInt64  `db:"reply_id"`
	CreatedAt time.Time      `db:"created_at"`
}

type replyCount struct {
	ReplyId int64 `db:"reply_id"`
	Count   int   `db:"num_replies"`
}

var postColumns = []interface{}{
	"id",
	"author_id",
	"content",
	"image",
	"reply_id",
	"created_at",
}

var interactionColumns = []interface{}{
	"id",
	"user_id",
	"post_id",
	"created_at",
}

func (pdb *PostDB) CreatePost(ctx context.Context, post *db2.CreatePost) (int64, error) {
	res, err := pdb.sess.SQL().
		InsertInto("post").
		Columns("author_id", "content", "image", "reply_id").
		Values(post.AuthorId, post.Content, dao.NullStringFrom(post.Image), dao.NullInt64From(post.ReplyId)).
		ExecContext(ctx)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

func (pdb *PostDB) GetPostById(ctx context.Context, id int64, opts *db2.PostQueryOpts) (*model.Post, error) {
	var post flattenedPost
	if err := pdb.sess.SQL().
		Select(postColumns...).
		From("post").
		Where("id = ?", id).
		IteratorContext(ctx).
		One(&post); err != nil {
		if err == db.ErrNoMoreRows {
			return nil, nil
		}
		return nil, err
	}

	posts, err := buildPostsFromFlattened(ctx, pdb.sess, []flattenedPost{post}, true)
	if err != nil {
		return nil, err
	}
	if opts == nil || !opts.WithReplies {
		return posts[0], nil
	}

	var flattenedReplies []flattenedPost
	if err := pdb.sess.SQL().
		Select(postColumns...).
		From("post").
		Where("reply_id = ?", id).
		OrderBy("created_at", "id").
		IteratorContext(ctx).
		All(&flattenedReplies); err != nil {
		return nil, err
	}
	replies, err := buildPostsFromFlattened(ctx, pdb.sess, flattenedReplies, false)
	if err != nil {
		return nil, err
	}
	posts[0].Replies = replies
	return posts[0], nil
}

func (pdb *PostDB) GetPosts(ctx context.Context, query *db2.PostsListQuery) ([]*model.Post, error) {
	if query.AuthorIds != nil && len(query.AuthorIds) == 0 {
		return []*model.Post{}, nil
	}
	q := pdb.sess.SQL().
		Select(postColumns...).
		From("post")
	if query.AuthorIds != nil {
		q = q.And("author_id IN ?", query.AuthorIds)
	}
	if query.From != nil {
		q = q.And("(created_at < ? OR (created_at = ? AND id < ?))", *query.From, *query.From, query.LastId)
	}
	if query.TopLevelOnly {
		q = q.And("reply_id IS NULL")
	}
	q = q.OrderBy("created_at DESC", "id DESC")
	if query.Skip > 0 {
		q = q.Offset(query.Skip)
	}

	var flattenedPosts []flattenedPost
	if err := q.Limit(int(query.Limit)).
		IteratorContext(ctx).
		All(&flattenedPosts); err != nil {
		return nil, err
	}
	return buildPostsFromFlattened(ctx, pdb.sess, flattenedPosts, true)
}

func (pdb *PostDB) DeletePost(ctx context.Context, id int64) error {
	return pdb.sess.TxContext(ctx, func(sess db.Session) error {
		for _, table := range []string{"post_like", "repost", "bookmark", "notification"} {
			if _, err := sess.SQL().
				DeleteFrom(table).
				Where("post_id = ?", id).
				ExecContext(ctx); err != nil {
				return err
			}
		}
		// replies outlive their parent
		if _, err := sess.SQL().
			Update("post").
			Set("reply_id", nil).
			Where("reply_id = ?", id).
			ExecContext(ctx); err != nil {
			return err
		}
		_, err := sess.SQL().
			DeleteFrom("post").
			Where("id = ?", id).
			ExecContext(ctx)
		return err
	}, &sql.TxOptions{})
}

// buildPostsFromFlattened attaches authors, likes, reposts and counts. withParents
// also loads the post each reply points to (with its author).
func buildPostsFromFlattened(ctx context.Context, sess db.Session, flattened []flattenedPost, withParents bool) ([]*model.Post, error) {
	posts := make([]*model.Post, len(flattened))
	if len(flattened) == 0 {
		return posts, nil
	}

	ids := make([]int64, len(flattened))
	userIds := make([]int64, 0, len(flattened))
	var parentIds []int64
	for i, fp := range flattened {
		ids[i] = fp.Id
		userIds = append(userIds, fp.AuthorId)
		if fp.ReplyId.Valid {
			parentIds = append(parentIds, fp.ReplyId.Int64)
		}
	}

	var flattenedParents []flattenedPost
	if withParents && len(parentIds) > 0 {
		if err := sess.SQL().
			Select(postColumns...).
			From("post").
			Where("id IN ?", parentIds).
			IteratorContext(ctx).
			All(&flattenedParents); err != nil {
			return nil, err
		}
		for _, parent := range flattenedParents {
			userIds = append(userIds, parent.AuthorId)
		}
	}

	users, err := getUsersByIds(ctx, sess, userIds)
	if err != nil {
		return nil, err
	}
	authors := usersById(users)

	likes, err := getInteractionsForPosts(ctx, sess, "post_like", ids)
	if err != nil {
		return nil, err
	}
	reposts, err := getInteractionsForPosts(ctx, sess, "repost", ids)
	if err != nil {
		return nil, err
	}

	var counts []replyCount
	if err := sess.SQL().
		Select("reply_id", db.Raw("COUNT(*) AS num_replies")).
		From("post").
		Where("reply_id IN ?", ids).
		GroupBy("reply_id").
		IteratorContext(ctx).
		All(&counts); err != nil {
		return nil, err
	}
	replyCounts := make(map[int64]int, len(counts))
	for _, count := range counts {
		replyCounts[count.ReplyId] = count.Count
	}

	parents := make(map[int64]*model.Post, len(flattenedParents))
	for i := range flattenedParents {
		parent := buildPostFromFlattened(&flattenedParents[i])
		parent.Author = authors[parent.AuthorId]
		parents[parent.Id] = parent
	}

	for i := range flattened {
		post := buildPostFromFlattened(&flattened[i])
		post.Author = authors[post.AuthorId]
		post.Likes = nonNil(likes[post.Id])
		post.Reposts = nonNil(reposts[post.Id])
		post.LikeCount = len(post.Likes)
		post.RepostCount = len(post.Reposts)
		post.ReplyCount = replyCounts[post.Id]
		if post.ReplyId != nil {
			post.Reply = parents[*post.ReplyId]
		}
		posts[i] = post
	}
	return posts, nil
}

func buildPostFromFlattened(fp *flattenedPost) *model.Post {
	return &model.Post{
		Id:        fp.Id,
		AuthorId:  fp.AuthorId,
		Content:   fp.Content,
		Image:     fp.Image.AsPtr(),
		ReplyId:   fp.ReplyId.AsPtr(),
		CreatedAt: fp.CreatedAt,
	}
}

func getInteractionsForPosts(ctx context.Context, sess db.Session, table string, postIds []int64) (map[int64][]*model.Interaction, error) {
	var interactions []*model.Interaction
	if err := sess.SQL().
		Select(interactionColumns...).
		From(table).
		Where("post_id IN ?", postIds).
		OrderBy("created_at").
		IteratorContext(ctx).
		All(&interactions); err != nil {
		return nil, err
	}
	byPost := make(map[int64][]*model.Interaction)
	for _, interaction := range interactions {
		byPost[interaction.PostId] = append(byPost[interaction.PostId], interaction)
	}
	return byPost, nil
}

func nonNil(interactions []*model.Interaction) []*model.Interaction {
	if interactions == nil {
		return []*model.Interaction{}
	}
	return interactions
}
