package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/sakif/aptx/internal/model"
	"github.com/sakif/aptx/internal/repository"
)

type CommentService struct {
	comments repository.CommentRepository
	logger   *slog.Logger
}

func NewCommentService(comments repository.CommentRepository, logger *slog.Logger) *CommentService {
	return &CommentService{comments: comments, logger: logger}
}

// Create stores a comment on postID. The post is not looked up: a comment
// on an unknown post is accepted.
func (s *CommentService) Create(ctx context.Context, author *model.User, postID, content string) (*model.Comment, error) {
	if err := requireText("postId", postID); err != nil {
		return nil, err
	}
	if err := requireText("content", content); err != nil {
		return nil, err
	}

	comment := &model.Comment{
		PostID:          postID,
		Content:         content,
		AuthorID:        author.ID,
		AuthorUsername:  author.Username,
		AuthorAvatarURL: author.AvatarURL,
	}
	if err := s.comments.Create(ctx, comment); err != nil {
		return nil, fmt.Errorf("creating comment: %w", err)
	}

	s.logger.Info("comment created",
		slog.String("id", comment.ID),
		slog.String("postID", postID),
	)
	return comment, nil
}

// ListByPost returns the comments of postID in creation order. An unknown
// post yields an empty list.
func (s *CommentService) ListByPost(ctx context.Context, postID string) ([]model.Comment, error) {
	comments, err := s.comments.ListByPost(ctx, postID)
	if err != nil {
		return nil, fmt.Errorf("listing comments: %w", err)
	}
	if comments == nil {
		comments = []model.Comment{}
	}
	return comments, nil
}
