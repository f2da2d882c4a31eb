package model

import "time"

// Post is a user-authored article.
//
// The author fields are copied from the session user when the post is
// created and are not refreshed when the author later changes their
// Discord name or avatar.
type Post struct {
	ID              string    `json:"id"`
	Title           string    `json:"title"`
	Content         string    `json:"content"`
	AuthorID        string    `json:"authorId"`
	AuthorUsername  string    `json:"author"`
	AuthorAvatarURL string    `json:"authorAvatar"`
	CreatedAt       time.Time `json:"date"`
}

// Comment belongs to a post through PostID. The reference is not checked,
// so a comment can outlive its post if the cascade in post deletion fails.
type Comment struct {
	ID              string    `json:"id"`
	PostID          string    `json:"postId"`
	Content         string    `json:"content"`
	AuthorID        string    `json:"authorId"`
	AuthorUsername  string    `json:"author"`
	AuthorAvatarURL string    `json:"authorAvatar"`
	CreatedAt       time.Time `json:"date"`
}
