// Package model defines the data structures used throughout the application.
//
// The JSON tags are the wire format the browser client reads and also the
// on-disk format of the collection files, so renaming a tag is a breaking
// change for both.
package model

import "time"

// User is a person who logged in through Discord.
//
// ID is Discord's snowflake id. It is stable across logins, so the users
// collection is keyed by it and every login overwrites the previous record.
type User struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	AvatarURL string    `json:"avatar"`
	SourceIP  string    `json:"ip"`   // client address of the login request
	CreatedAt time.Time `json:"date"` // time of the most recent login
}

// Badge is a small decoration shown on a user's profile.
type Badge struct {
	Icon  string `json:"icon"`
	Label string `json:"label"`
}

// Profile is the /api/user response: the session user plus their badges.
// Badges is never nil so the client always receives an array.
type Profile struct {
	User
	Badges []Badge `json:"badges"`
}
