package model

import "time"

type Follow struct {
	FollowerId  int64     `db:"follower_id" json:"followerId"`
	FollowingId int64     `db:"following_id" json:"followingId"`
	CreatedAt   time.Time `db:"created_at" json:"createdAt"`
}
