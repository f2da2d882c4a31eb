package jsonfile

import (
	"context"

	"github.com/rs/xid"
	"github.com/sakif/aptx/internal/model"
	"github.com/sakif/aptx/internal/repository"
)

var _ repository.CommentRepository = (*CommentDB)(nil)

// CommentDB is the comments collection.
type CommentDB struct {
	db *DB
}

func (db *DB) Comments() *CommentDB {
	return &CommentDB{db: db}
}

func (c *CommentDB) Create(_ context.Context, comment *model.Comment) error {
	comment.ID = xid.New().String()
	comment.CreatedAt = c.db.now()

	return updateList(c.db, Comments, func(comments []model.Comment) ([]model.Comment, error) {
		return append(comments, *comment), nil
	})
}

// ListByPost returns the post's comments in the order they were written.
func (c *CommentDB) ListByPost(_ context.Context, postID string) ([]model.Comment, error) {
	result := []model.Comment{}
	for _, comment := range readList[model.Comment](c.db, Comments) {
		if comment.PostID == postID {
			result = append(result, comment)
		}
	}
	return result, nil
}

func (c *CommentDB) DeleteByPost(_ context.Context, postID string) (int, error) {
	removed := 0
	err := updateList(c.db, Comments, func(comments []model.Comment) ([]model.Comment, error) {
		kept := comments[:0]
		for _, comment := range comments {
			if comment.PostID == postID {
				removed++
				continue
			}
			kept = append(kept, comment)
		}
		return kept, nil
	})
	if err != nil {
		return 0, err
	}
	return removed, nil
}
