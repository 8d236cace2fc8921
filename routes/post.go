package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/navbryce/next-social-be/controllers"
	"github.com/navbryce/next-social-be/db"
	"github.com/navbryce/next-social-be/middleware"
	"github.com/navbryce/next-social-be/util"
)

type postRoutes struct {
	postController *controllers.PostController
}

func AddPostRoutes(group *gin.RouterGroup, db db.Database, verifier middleware.TokenVerifier, postController *controllers.PostController) {
	routes := postRoutes{postController: postController}
	posts := group.Group("/post",
		middleware.GenAuth(db, verifier, &middleware.AuthConfig{}))
	posts.GET("", util.HandlerWrapper(routes.getPost, &util.HandlerOpts{Name: "get_post"}))
	posts.POST("", util.HandlerWrapper(routes.createPost, &util.HandlerOpts{Name: "create_post"}))
	posts.DELETE("", util.HandlerWrapper(routes.deletePost, &util.HandlerOpts{Name: "delete_post"}))
}

func (pr *postRoutes) createPost(c *gin.Context) (interface{}, *util.HTTPError) {
	req := &controllers.CreatePostReq{Content: c.PostForm("post")}
	if reply := c.PostForm("reply"); reply != "" {
		replyId, httpErr := util.ParseId(reply)
		if httpErr != nil {
			return nil, httpErr
		}
		req.ReplyId = &replyId
	}
	image, httpErr := formBlob(c, "image")
	if httpErr != nil {
		return nil, httpErr
	}
	req.Image = image

	post, httpErr := pr.postController.CreatePost(c, middleware.MustGetUser(c), req)
	if httpErr != nil {
		return nil, httpErr
	}
	return gin.H{"post": post}, nil
}

type idReq struct {
	Id int64 `json:"id" binding:"required,gt=0"`
}

func (pr *postRoutes) deletePost(c *gin.Context) (interface{}, *util.HTTPError) {
	var req idReq
	if err := c.ShouldBindJSON(&req); err != nil {
		return nil, util.BuildJSONBindHTTPErr(err)
	}
	post, httpErr := pr.postController.DeletePost(c, middleware.MustGetUser(c), req.Id)
	if httpErr != nil {
		return nil, httpErr
	}
	return gin.H{"post": post}, nil
}

func (pr *postRoutes) getPost(c *gin.Context) (interface{}, *util.HTTPError) {
	id, httpErr := util.ParseId(c.Query("id"))
	if httpErr != nil {
		return nil, httpErr
	}
	post, httpErr := pr.postController.GetPost(c, id)
	if httpErr != nil {
		return nil, httpErr
	}
	return gin.H{"post": post}, nil
}
