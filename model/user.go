package model

import "time"

// User holds the local profile. Identity (email) comes from the session provider.
type User struct {
	Id          int64     `db:"id" json:"id"`
	Email       string    `db:"email" json:"email"`
	Username    string    `db:"username" json:"username"`
	DisplayName string    `db:"displayname" json:"displayname"`
	Description string    `db:"description" json:"description"`
	Avatar      *string   `db:"avatar" json:"avatar"`
	Banner      *string   `db:"banner" json:"banner"`
	CreatedAt   time.Time `db:"created_at" json:"createdAt"`
}

// Profile is the signed-in user's own view.
type Profile struct {
	*User
	Posts               []*Post `json:"posts"`
	UnreadNotifications int64   `json:"unreadNotifications"`
}

// PublicProfile is what anyone can see about a user.
type PublicProfile struct {
	User      *User   `json:"user"`
	Posts     []*Post `json:"posts"`
	Followers int64   `json:"followers"`
	Following int64   `json:"following"`
}
