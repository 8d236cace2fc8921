package model

import "strings"

const (
	EventNewMessage    = "new message"
	EventDeleteMessage = "delete message"
)

const (
	dashboardPrefix = "dashboard-"
	profilePrefix   = "profile-"
	directsPrefix   = "directs-"
)

func DashboardChannel(email string) string {
	return dashboardPrefix + email
}

func ProfileChannel(username string) string {
	return profilePrefix + username
}

func DirectsChannel(username string) string {
	return directsPrefix + username
}

// Event is a single message on a realtime channel.
type Event struct {
	Channel string
	Name    string
	Data    []byte
}

// CanSubscribe reports whether user may listen on channel. Profile channels are
// public; dashboard and directs channels belong to a single user.
func CanSubscribe(user *User, channel string) bool {
	switch {
	case strings.HasPrefix(channel, profilePrefix):
		return len(channel) > len(profilePrefix)
	case strings.HasPrefix(channel, dashboardPrefix):
		return user != nil && channel == DashboardChannel(user.Email)
	case strings.HasPrefix(channel, directsPrefix):
		return user != nil && channel == DirectsChannel(user.Username)
	}
	return false
}
