package service

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/sakif/aptx/internal/apperror"
	"github.com/sakif/aptx/internal/model"
)

// =========================================================================
// IN-MEMORY FAKES
// =========================================================================
//
// Each fake implements one repository interface over a slice or map. The
// *Err fields simulate a storage failure on the next call.

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

type fakeUserRepo struct {
	users     []model.User
	upsertErr error
}

func (f *fakeUserRepo) Upsert(_ context.Context, user *model.User) error {
	if f.upsertErr != nil {
		return f.upsertErr
	}
	for i := range f.users {
		if f.users[i].ID == user.ID {
			f.users[i] = *user
			return nil
		}
	}
	f.users = append(f.users, *user)
	return nil
}

func (f *fakeUserRepo) Count(context.Context) (int, error) {
	return len(f.users), nil
}

type fakePostRepo struct {
	posts     []model.Post
	nextID    int
	createErr error
}

func (f *fakePostRepo) Create(_ context.Context, post *model.Post) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.nextID++
	post.ID = fmt.Sprintf("post-%d", f.nextID)
	post.CreatedAt = time.Date(2026, 1, 1, 0, 0, f.nextID, 0, time.UTC)
	f.posts = append(f.posts, *post)
	return nil
}

func (f *fakePostRepo) GetByID(_ context.Context, id string) (*model.Post, error) {
	for _, p := range f.posts {
		if p.ID == id {
			found := p
			return &found, nil
		}
	}
	return nil, apperror.NotFound("post", id)
}

func (f *fakePostRepo) List(context.Context) ([]model.Post, error) {
	return append([]model.Post(nil), f.posts...), nil
}

func (f *fakePostRepo) Update(_ context.Context, post *model.Post) error {
	for i := range f.posts {
		if f.posts[i].ID == post.ID {
			f.posts[i] = *post
			return nil
		}
	}
	return apperror.NotFound("post", post.ID)
}

func (f *fakePostRepo) Delete(_ context.Context, id string) error {
	for i := range f.posts {
		if f.posts[i].ID == id {
			f.posts = append(f.posts[:i], f.posts[i+1:]...)
			return nil
		}
	}
	return apperror.NotFound("post", id)
}

func (f *fakePostRepo) Count(context.Context) (int, error) {
	return len(f.posts), nil
}

type fakeCommentRepo struct {
	comments  []model.Comment
	nextID    int
	deleteErr error
}

func (f *fakeCommentRepo) Create(_ context.Context, c *model.Comment) error {
	f.nextID++
	c.ID = fmt.Sprintf("comment-%d", f.nextID)
	c.CreatedAt = time.Now().UTC()
	f.comments = append(f.comments, *c)
	return nil
}

func (f *fakeCommentRepo) ListByPost(_ context.Context, postID string) ([]model.Comment, error) {
	var out []model.Comment
	for _, c := range f.comments {
		if c.PostID == postID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (f *fakeCommentRepo) DeleteByPost(_ context.Context, postID string) (int, error) {
	if f.deleteErr != nil {
		return 0, f.deleteErr
	}
	kept := f.comments[:0]
	removed := 0
	for _, c := range f.comments {
		if c.PostID == postID {
			removed++
			continue
		}
		kept = append(kept, c)
	}
	f.comments = kept
	return removed, nil
}

type fakeSiteRepo struct {
	creators   []model.Creator
	supporters []model.Supporter
	badges     map[string][]model.Badge
}

func (f *fakeSiteRepo) Creators(context.Context) ([]model.Creator, error) {
	return f.creators, nil
}

func (f *fakeSiteRepo) Supporters(context.Context) ([]model.Supporter, error) {
	return f.supporters, nil
}

func (f *fakeSiteRepo) Badges(_ context.Context, userID string) ([]model.Badge, error) {
	return f.badges[userID], nil
}
