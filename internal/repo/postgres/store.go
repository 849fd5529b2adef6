package postgres

import (
	"context"

	"github.com/geocoder89/bookmarkhub/internal/observability"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Store groups the repositories sharing one pool.
type Store struct {
	Users     *UsersRepo
	Bookmarks *BookmarksRepo

	pool *pgxpool.Pool
}

func NewStore(pool *pgxpool.Pool, prom *observability.Prom) *Store {
	return &Store{
		Users:     NewUsersRepo(pool, prom),
		Bookmarks: NewBookmarksRepo(pool, prom),
		pool:      pool,
	}
}

func (s *Store) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// WipeAll removes every row and resets identities. Tests only.
func (s *Store) WipeAll(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, `TRUNCATE bookmarks, users RESTART IDENTITY CASCADE`)
	return err
}
