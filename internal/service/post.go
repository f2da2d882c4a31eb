// Package service holds the business rules: validation, ownership and the
// ordering of multi-step writes. Handlers translate HTTP into calls here;
// services only see the repository interfaces.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/sakif/aptx/internal/apperror"
	"github.com/sakif/aptx/internal/model"
	"github.com/sakif/aptx/internal/repository"
)

// PostService handles posts and the cascade to their comments.
type PostService struct {
	posts    repository.PostRepository
	comments repository.CommentRepository
	logger   *slog.Logger
}

func NewPostService(posts repository.PostRepository, comments repository.CommentRepository, logger *slog.Logger) *PostService {
	return &PostService{
		posts:    posts,
		comments: comments,
		logger:   logger,
	}
}

// List returns every post ordered by title. The comparison is byte-wise
// and stable, so posts with equal titles keep their creation order.
func (s *PostService) List(ctx context.Context) ([]model.Post, error) {
	posts, err := s.posts.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing posts: %w", err)
	}
	slices.SortStableFunc(posts, func(a, b model.Post) int {
		return strings.Compare(a.Title, b.Title)
	})
	return posts, nil
}

// Get returns a single post or apperror.ErrNotFound.
func (s *PostService) Get(ctx context.Context, id string) (*model.Post, error) {
	return s.posts.GetByID(ctx, id)
}

// Create stores a new post written by author. ID, date and the author
// fields are always set here, whatever the client sent.
func (s *PostService) Create(ctx context.Context, author *model.User, title, content string) (*model.Post, error) {
	if err := requireText("title", title); err != nil {
		return nil, err
	}
	if err := requireText("content", content); err != nil {
		return nil, err
	}

	post := &model.Post{
		Title:           title,
		Content:         content,
		AuthorID:        author.ID,
		AuthorUsername:  author.Username,
		AuthorAvatarURL: author.AvatarURL,
	}
	if err := s.posts.Create(ctx, post); err != nil {
		s.logger.Error("failed to create post",
			slog.String("authorID", author.ID),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("creating post: %w", err)
	}

	s.logger.Info("post created",
		slog.String("id", post.ID),
		slog.String("authorID", post.AuthorID),
	)
	return post, nil
}

// Update replaces title and content of a post owned by user.
//
// Checks run in order: the post must exist (ErrNotFound), belong to user
// (ErrForbidden), then both fields must be non-empty (ErrValidation).
func (s *PostService) Update(ctx context.Context, user *model.User, id, title, content string) (*model.Post, error) {
	post, err := s.posts.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if post.AuthorID != user.ID {
		return nil, apperror.Forbidden("only the author can edit this post")
	}
	if err := requireText("title", title); err != nil {
		return nil, err
	}
	if err := requireText("content", content); err != nil {
		return nil, err
	}

	post.Title = title
	post.Content = content
	if err := s.posts.Update(ctx, post); err != nil {
		return nil, fmt.Errorf("updating post: %w", err)
	}

	s.logger.Info("post updated", slog.String("id", post.ID))
	return post, nil
}

// Delete removes a post owned by user, then every comment on it.
//
// The two collections are written one after the other. If the comment
// write fails the post is already gone and its comments stay behind as
// orphans; the error is still returned.
func (s *PostService) Delete(ctx context.Context, user *model.User, id string) error {
	post, err := s.posts.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if post.AuthorID != user.ID {
		return apperror.Forbidden("only the author can delete this post")
	}

	if err := s.posts.Delete(ctx, id); err != nil {
		return fmt.Errorf("deleting post: %w", err)
	}

	removed, err := s.comments.DeleteByPost(ctx, id)
	if err != nil {
		s.logger.Error("post deleted but its comments were not",
			slog.String("id", id),
			slog.String("error", err.Error()),
		)
		return fmt.Errorf("deleting comments of post %s: %w", id, err)
	}

	s.logger.Info("post deleted",
		slog.String("id", id),
		slog.Int("comments", removed),
	)
	return nil
}

// requireText rejects empty and whitespace-only values.
func requireText(field, value string) error {
	if strings.TrimSpace(value) == "" {
		return apperror.ValidationFailed(field, field+" is required")
	}
	return nil
}
