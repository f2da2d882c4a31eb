package jsonfile

import (
	"context"

	"github.com/rs/xid"
	"github.com/sakif/aptx/internal/apperror"
	"github.com/sakif/aptx/internal/model"
	"github.com/sakif/aptx/internal/repository"
)

var _ repository.PostRepository = (*PostDB)(nil)

// PostDB is the posts collection.
type PostDB struct {
	db *DB
}

func (db *DB) Posts() *PostDB {
	return &PostDB{db: db}
}

// Create assigns the post a new ID and timestamp and appends it.
//
// xid ids start with a timestamp, so they sort by creation time and stay
// unique when two posts land in the same millisecond.
func (p *PostDB) Create(_ context.Context, post *model.Post) error {
	post.ID = xid.New().String()
	post.CreatedAt = p.db.now()

	return updateList(p.db, Posts, func(posts []model.Post) ([]model.Post, error) {
		return append(posts, *post), nil
	})
}

// GetByID returns a copy of the post. Returns apperror.ErrNotFound if absent.
func (p *PostDB) GetByID(_ context.Context, id string) (*model.Post, error) {
	for _, post := range readList[model.Post](p.db, Posts) {
		if post.ID == id {
			found := post
			return &found, nil
		}
	}
	return nil, apperror.NotFound("post", id)
}

func (p *PostDB) List(_ context.Context) ([]model.Post, error) {
	return readList[model.Post](p.db, Posts), nil
}

// Update replaces the stored post with the same ID.
func (p *PostDB) Update(_ context.Context, post *model.Post) error {
	return updateList(p.db, Posts, func(posts []model.Post) ([]model.Post, error) {
		for i := range posts {
			if posts[i].ID == post.ID {
				posts[i] = *post
				return posts, nil
			}
		}
		return nil, apperror.NotFound("post", post.ID)
	})
}

func (p *PostDB) Delete(_ context.Context, id string) error {
	return updateList(p.db, Posts, func(posts []model.Post) ([]model.Post, error) {
		for i := range posts {
			if posts[i].ID == id {
				return append(posts[:i], posts[i+1:]...), nil
			}
		}
		return nil, apperror.NotFound("post", id)
	})
}

func (p *PostDB) Count(_ context.Context) (int, error) {
	return len(readList[model.Post](p.db, Posts)), nil
}
