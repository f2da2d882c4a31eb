// Package repository declares the storage contracts the services depend on.
//
// Implementations live in sub-packages (jsonfile). Services only see these
// interfaces, so tests swap in in-memory fakes.
package repository

import (
	"context"

	"github.com/sakif/aptx/internal/model"
)

type UserRepository interface {
	// Upsert inserts the user or replaces the record with the same ID.
	Upsert(ctx context.Context, user *model.User) error
	Count(ctx context.Context) (int, error)
}

type PostRepository interface {
	// Create assigns ID and CreatedAt before storing the post.
	Create(ctx context.Context, post *model.Post) error
	GetByID(ctx context.Context, id string) (*model.Post, error)
	// List returns posts in storage order; callers apply their own ordering.
	List(ctx context.Context) ([]model.Post, error)
	Update(ctx context.Context, post *model.Post) error
	Delete(ctx context.Context, id string) error
	Count(ctx context.Context) (int, error)
}

type CommentRepository interface {
	// Create assigns ID and CreatedAt before storing the comment.
	Create(ctx context.Context, comment *model.Comment) error
	ListByPost(ctx context.Context, postID string) ([]model.Comment, error)
	// DeleteByPost removes every comment of the post and reports how many went.
	DeleteByPost(ctx context.Context, postID string) (int, error)
}

// SiteRepository serves the read-mostly landing page collections.
type SiteRepository interface {
	Creators(ctx context.Context) ([]model.Creator, error)
	Supporters(ctx context.Context) ([]model.Supporter, error)
	// Badges returns the badges assigned to the user, or an empty slice.
	Badges(ctx context.Context, userID string) ([]model.Badge, error)
}
