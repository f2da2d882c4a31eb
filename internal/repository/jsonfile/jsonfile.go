// Package jsonfile implements the repository interfaces on top of plain JSON
// files, one file per collection.
//
// STORAGE LAYOUT:
//
//	<dir>/users.json       []model.User
//	<dir>/posts.json       []model.Post
//	<dir>/comments.json    []model.Comment
//	<dir>/creators.json    []model.Creator
//	<dir>/supporters.json  []model.Supporter
//	<dir>/badges.json      map[userID][]model.Badge
//
// Every write rewrites the whole file. Files are pretty-printed so they can
// be edited by hand (badges and supporters have no API and are maintained
// that way).
//
// CONSISTENCY:
// Each collection has its own mutex. A read-modify-write (update) holds it
// from load to save, so two requests in this process can no longer lose
// each other's update. Writes go to a temp file that is renamed over the
// target, so a reader never sees a half-written file. Nothing coordinates
// two processes that share one data directory; the last rename wins.
//
// READ FAILURES:
// A missing or unparsable file reads as an empty collection. Callers never
// see a read error. Corrupt files are logged at WARN so data loss is at
// least visible in the logs.
package jsonfile

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/sakif/aptx/internal/model"
)

// Collection names a JSON document in the data directory.
type Collection string

const (
	Users      Collection = "users"
	Posts      Collection = "posts"
	Comments   Collection = "comments"
	Creators   Collection = "creators"
	Supporters Collection = "supporters"
	Badges     Collection = "badges"
)

var collections = []Collection{Users, Posts, Comments, Creators, Supporters, Badges}

// DefaultCreator is written to creators.json on first boot.
var DefaultCreator = model.Creator{
	ID:          "1",
	Name:        "Équipe APTx",
	Description: "Créateurs officiels de la plateforme APTx",
	DiscordID:   "1453078381099876515",
	AvatarURL:   "https://i.imgur.com/E6EOPMN.png",
}

// DB owns the data directory and the per-collection locks.
type DB struct {
	dir    string
	logger *slog.Logger
	locks  map[Collection]*sync.Mutex
	now    func() time.Time
}

// New opens the data directory, creating it and seeding any missing
// collection file.
func New(dir string, logger *slog.Logger) (*DB, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("jsonfile: creating data dir %s: %w", dir, err)
	}

	db := &DB{
		dir:    dir,
		logger: logger,
		locks:  make(map[Collection]*sync.Mutex, len(collections)),
		now:    func() time.Time { return time.Now().UTC() },
	}
	for _, c := range collections {
		db.locks[c] = &sync.Mutex{}
	}

	if err := db.seed(); err != nil {
		return nil, err
	}
	return db, nil
}

// Dir returns the data directory.
func (db *DB) Dir() string { return db.dir }

// seed writes the default document for every collection file that does not
// exist yet. Existing files, even corrupt ones, are left alone.
func (db *DB) seed() error {
	defaults := map[Collection]any{
		Users:      []model.User{},
		Posts:      []model.Post{},
		Comments:   []model.Comment{},
		Creators:   []model.Creator{DefaultCreator},
		Supporters: []model.Supporter{},
		Badges:     map[string][]model.Badge{},
	}

	for _, c := range collections {
		_, err := os.Stat(db.path(c))
		if err == nil {
			continue
		}
		if !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("jsonfile: checking %s: %w", c, err)
		}
		if err := db.save(c, defaults[c]); err != nil {
			return fmt.Errorf("jsonfile: seeding %s: %w", c, err)
		}
		db.logger.Info("seeded collection", slog.String("collection", string(c)))
	}
	return nil
}

func (db *DB) path(c Collection) string {
	return filepath.Join(db.dir, string(c)+".json")
}

// lock acquires the collection's mutex and returns the unlock function.
func (db *DB) lock(c Collection) func() {
	mu := db.locks[c]
	mu.Lock()
	return mu.Unlock
}

// save marshals v and replaces the collection file with it.
// The caller must hold the collection lock (seed runs before any request).
func (db *DB) save(c Collection, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("jsonfile: encoding %s: %w", c, err)
	}

	tmp, err := os.CreateTemp(db.dir, string(c)+".*.tmp")
	if err != nil {
		return fmt.Errorf("jsonfile: creating temp file for %s: %w", c, err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("jsonfile: writing %s: %w", c, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("jsonfile: closing %s: %w", c, err)
	}
	// CreateTemp uses 0600; collection files are meant to be readable by operators.
	if err := os.Chmod(tmpName, 0o644); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("jsonfile: chmod %s: %w", c, err)
	}
	if err := os.Rename(tmpName, db.path(c)); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("jsonfile: replacing %s: %w", c, err)
	}
	return nil
}

// loadDoc decodes the collection file into a fresh T. A missing file or a
// decode error returns empty. The caller must hold the collection lock.
func loadDoc[T any](db *DB, c Collection, empty T) T {
	data, err := os.ReadFile(db.path(c))
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			db.logger.Warn("collection unreadable, treating as empty",
				slog.String("collection", string(c)),
				slog.String("error", err.Error()),
			)
		}
		return empty
	}

	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		db.logger.Warn("collection corrupt, treating as empty",
			slog.String("collection", string(c)),
			slog.String("error", err.Error()),
		)
		return empty
	}
	return v
}

// loadList is loadDoc for array collections. A file holding `null` also
// reads as empty so that re-encoding never produces `null`.
func loadList[E any](db *DB, c Collection) []E {
	list := loadDoc(db, c, []E{})
	if list == nil {
		return []E{}
	}
	return list
}

// readList returns a snapshot of an array collection.
func readList[E any](db *DB, c Collection) []E {
	unlock := db.lock(c)
	defer unlock()
	return loadList[E](db, c)
}

// updateList is the read-modify-write transaction for array collections.
// fn receives the current contents and returns the new contents. If fn
// returns an error nothing is written and the error is returned as is.
func updateList[E any](db *DB, c Collection, fn func([]E) ([]E, error)) error {
	unlock := db.lock(c)
	defer unlock()

	next, err := fn(loadList[E](db, c))
	if err != nil {
		return err
	}
	if next == nil {
		next = []E{}
	}
	return db.save(c, next)
}
