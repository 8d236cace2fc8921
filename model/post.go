package model

import (
	"time"
)

type Post struct {
	Id        int64     `json:"id"`
	AuthorId  int64     `json:"authorId"`
	Content   string    `json:"content"`
	Image     *string   `json:"image"`
	ReplyId   *int64    `json:"replyId"`
	CreatedAt time.Time `json:"createdAt"`

	Author      *User          `json:"author,omitempty"`
	Likes       []*Interaction `json:"likes"`
	Reposts     []*Interaction `json:"reposts"`
	LikeCount   int            `json:"likeCount"`
	RepostCount int            `json:"repostCount"`
	ReplyCount  int            `json:"replyCount"`
	Reply       *Post          `json:"reply,omitempty"`
	Replies     []*Post        `json:"replies,omitempty"`
}

func (p *Post) CanDelete(user *User) bool {
	return user != nil && user.Id == p.AuthorId
}

func (p *Post) IsReply() bool {
	return p.ReplyId != nil
}
