package model

import "time"

type Direct struct {
	Id        int64            `json:"id"`
	CreatedAt time.Time        `json:"createdAt"`
	Members   []*User          `json:"members"`
	Messages  []*DirectMessage `json:"messages"`
}

func (d *Direct) HasMember(userId int64) bool {
	for _, member := range d.Members {
		if member.Id == userId {
			return true
		}
	}
	return false
}

type DirectMessage struct {
	Id        int64     `db:"id" json:"id"`
	DirectId  int64     `db:"direct_id" json:"directId"`
	UserId    int64     `db:"user_id" json:"userId"`
	Content   string    `db:"content" json:"content"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
	User      *User     `db:"-" json:"user,omitempty"`
}

// UserWithDirects is the full conversation state pushed to a member's directs channel.
type UserWithDirects struct {
	*User
	Directs []*Direct `json:"directs"`
}
