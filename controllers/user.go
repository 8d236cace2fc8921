package controllers

import (
	"context"
	"regexp"
	"strings"

	"github.com/navbryce/next-social-be/db"
	"github.com/navbryce/next-social-be/model"
	"github.com/navbryce/next-social-be/services"
	"github.com/navbryce/next-social-be/util"
)

const (
	profilePostsLimit     = 50
	usernameGenerateTries = 5
)

var usernameRegexp = regexp.MustCompile(`^[A-Za-z0-9_.]{1,64}$`)

type UserController struct {
	db       db.Database
	uploader services.Uploader
}

func NewUserController(db db.Database, uploader services.Uploader) *UserController {
	return &UserController{db: db, uploader: uploader}
}

func (uc *UserController) GetProfile(ctx context.Context, user *model.User) (*model.Profile, *util.HTTPError) {
	posts, err := uc.db.GetPosts(ctx, &db.PostsListQuery{
		AuthorIds: []int64{user.Id},
		Limit:     profilePostsLimit,
	})
	if err != nil {
		return nil, util.BuildDbHTTPErr(err)
	}
	unread, err := uc.db.CountUnreadNotifications(ctx, user.Id)
	if err != nil {
		return nil, util.BuildDbHTTPErr(err)
	}
	return &model.Profile{
		User:                user,
		Posts:               posts,
		UnreadNotifications: unread,
	}, nil
}

func (uc *UserController) GetPublicProfile(ctx context.Context, username string) (*model.PublicProfile, *util.HTTPError) {
	user, err := uc.db.GetUserByUsername(ctx, username)
	if err != nil {
		return nil, util.BuildDbHTTPErr(err)
	}
	if user == nil {
		return nil, util.BuildNotFoundHTTPErr("user")
	}
	posts, err := uc.db.GetPosts(ctx, &db.PostsListQuery{
		AuthorIds: []int64{user.Id},
		Limit:     profilePostsLimit,
	})
	if err != nil {
		return nil, util.BuildDbHTTPErr(err)
	}
	followers, following, err := uc.db.CountFollows(ctx, user.Id)
	if err != nil {
		return nil, util.BuildDbHTTPErr(err)
	}
	return &model.PublicProfile{
		User:      user,
		Posts:     posts,
		Followers: followers,
		Following: following,
	}, nil
}

// CreateUser creates the local account for an authenticated identity. Calling
// it again for the same email returns the existing account.
func (uc *UserController) CreateUser(ctx context.Context, email string, displayName string) (*model.User, *util.HTTPError) {
	if email == "" {
		return nil, util.BuildValidationHTTPErr("session has no email")
	}
	existing, err := uc.db.GetUserByEmail(ctx, email)
	if err != nil {
		return nil, util.BuildDbHTTPErr(err)
	}
	if existing != nil {
		return existing, nil
	}

	for i := 0; i < usernameGenerateTries; i++ {
		_, err = uc.db.CreateUser(ctx, &model.User{
			Email:       email,
			Username:    util.GenerateUsername(),
			DisplayName: util.SanitizeText(displayName),
		})
		if err == nil || !db.IsDupKeyErr(err) {
			break
		}
		if strings.HasSuffix(db.GetDupKey(err), "person_username") {
			continue
		}
		// the email may have been taken by a concurrent request
		if existing, lookupErr := uc.db.GetUserByEmail(ctx, email); lookupErr == nil && existing != nil {
			return existing, nil
		}
	}
	if err != nil {
		return nil, util.BuildDbHTTPErr(err)
	}

	user, err := uc.db.GetUserByEmail(ctx, email)
	if err != nil {
		return nil, util.BuildDbHTTPErr(err)
	}
	return user, nil
}

type UpdateProfileReq struct {
	Username    string
	DisplayName string
	Description string
	Avatar      []byte
	Banner      []byte
}

func (uc *UserController) UpdateProfile(ctx context.Context, user *model.User, req *UpdateProfileReq) (*model.User, *util.HTTPError) {
	username := util.SanitizeText(req.Username)
	if !usernameRegexp.MatchString(username) {
		return nil, util.BuildValidationHTTPErr("invalid username")
	}
	update := &db.ProfileUpdate{
		Username:    username,
		DisplayName: util.SanitizeText(req.DisplayName),
		Description: util.XSSSanitize(req.Description),
	}

	if len(req.Avatar) > 0 {
		blobId, err := uc.uploader.Upload(ctx, services.FolderAvatars, req.Avatar)
		if err != nil {
			return nil, util.BuildInternalHTTPErr("avatar upload failed", err)
		}
		update.Avatar = &blobId
	}
	if len(req.Banner) > 0 {
		blobId, err := uc.uploader.Upload(ctx, services.FolderBanners, req.Banner)
		if err != nil {
			return nil, util.BuildInternalHTTPErr("banner upload failed", err)
		}
		update.Banner = &blobId
	}

	if err := uc.db.UpdateProfile(ctx, user.Id, update); err != nil {
		if db.IsDupKeyErr(err) {
			field := dupPersonField(err)
			return nil, &util.HTTPError{
				Kind:        util.KindConflict,
				Message:     "duplicate " + field,
				UserMessage: field + " taken",
				Cause:       err,
			}
		}
		return nil, util.BuildDbHTTPErr(err)
	}

	updated, err := uc.db.GetUserByEmail(ctx, user.Email)
	if err != nil {
		return nil, util.BuildDbHTTPErr(err)
	}
	return updated, nil
}

// dupPersonField names the person column a duplicate key error refers to. Errors
// that do not name a key resolve to username, the only unique column a profile
// update can change.
func dupPersonField(err error) string {
	if strings.HasSuffix(db.GetDupKey(err), "person_email") {
		return "email"
	}
	return "username"
}
