package jsonfile

import (
	"context"

	"github.com/sakif/aptx/internal/model"
	"github.com/sakif/aptx/internal/repository"
)

// compile-time check that *UserDB implements repository.UserRepository
var _ repository.UserRepository = (*UserDB)(nil)

// UserDB is the users collection.
type UserDB struct {
	db *DB
}

// Users returns the users collection view of db.
func (db *DB) Users() *UserDB {
	return &UserDB{db: db}
}

// Upsert replaces the user with the same ID, or appends it. The stored
// record is exactly the one passed in: a re-login refreshes username,
// avatar, source IP and date.
func (u *UserDB) Upsert(_ context.Context, user *model.User) error {
	return updateList(u.db, Users, func(users []model.User) ([]model.User, error) {
		for i := range users {
			if users[i].ID == user.ID {
				users[i] = *user
				return users, nil
			}
		}
		return append(users, *user), nil
	})
}

func (u *UserDB) Count(_ context.Context) (int, error) {
	return len(readList[model.User](u.db, Users)), nil
}
