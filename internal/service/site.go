package service

import (
	"context"
	"fmt"

	"github.com/sakif/aptx/internal/model"
	"github.com/sakif/aptx/internal/repository"
)

// SiteService serves the public landing page data.
type SiteService struct {
	users repository.UserRepository
	posts repository.PostRepository
	site  repository.SiteRepository
}

func NewSiteService(users repository.UserRepository, posts repository.PostRepository, site repository.SiteRepository) *SiteService {
	return &SiteService{users: users, posts: posts, site: site}
}

// Stats counts registered users and posts.
func (s *SiteService) Stats(ctx context.Context) (*model.Stats, error) {
	users, err := s.users.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("counting users: %w", err)
	}
	posts, err := s.posts.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("counting posts: %w", err)
	}
	return &model.Stats{Users: users, Posts: posts}, nil
}

func (s *SiteService) Creators(ctx context.Context) ([]model.Creator, error) {
	creators, err := s.site.Creators(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading creators: %w", err)
	}
	if creators == nil {
		creators = []model.Creator{}
	}
	return creators, nil
}

func (s *SiteService) Supporters(ctx context.Context) ([]model.Supporter, error) {
	supporters, err := s.site.Supporters(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading supporters: %w", err)
	}
	if supporters == nil {
		supporters = []model.Supporter{}
	}
	return supporters, nil
}
