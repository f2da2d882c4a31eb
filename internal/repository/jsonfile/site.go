package jsonfile

import (
	"context"

	"github.com/sakif/aptx/internal/model"
	"github.com/sakif/aptx/internal/repository"
)

var _ repository.SiteRepository = (*SiteDB)(nil)

// SiteDB serves creators, supporters and badges. None of them has a write
// API; operators edit the files directly.
type SiteDB struct {
	db *DB
}

func (db *DB) Site() *SiteDB {
	return &SiteDB{db: db}
}

func (s *SiteDB) Creators(_ context.Context) ([]model.Creator, error) {
	return readList[model.Creator](s.db, Creators), nil
}

func (s *SiteDB) Supporters(_ context.Context) ([]model.Supporter, error) {
	return readList[model.Supporter](s.db, Supporters), nil
}

func (s *SiteDB) Badges(_ context.Context, userID string) ([]model.Badge, error) {
	unlock := s.db.lock(Badges)
	defer unlock()

	byUser := loadDoc(s.db, Badges, map[string][]model.Badge{})
	if badges := byUser[userID]; badges != nil {
		return badges, nil
	}
	return []model.Badge{}, nil
}
