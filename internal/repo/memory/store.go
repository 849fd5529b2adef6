package memory

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/geocoder89/bookmarkhub/internal/domain/bookmark"
	"github.com/geocoder89/bookmarkhub/internal/domain/user"
)

var ErrUnknownOwner = errors.New("bookmark owner does not exist")

// Store keeps users and bookmarks in process. It honours the same contracts
// as the postgres store: unique emails, owner must exist, serial ids.
type Store struct {
	Users     *UsersRepo
	Bookmarks *BookmarksRepo

	mu        sync.RWMutex
	users     map[int64]user.User
	bookmarks map[int64]bookmark.Bookmark
	userSeq   int64
	bmSeq     int64
}

func NewStore() *Store {
	s := &Store{
		users:     make(map[int64]user.User),
		bookmarks: make(map[int64]bookmark.Bookmark),
	}
	s.Users = &UsersRepo{s: s}
	s.Bookmarks = &BookmarksRepo{s: s}

	return s
}

func (s *Store) Ping(context.Context) error {
	return nil
}

func (s *Store) WipeAll(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.users = make(map[int64]user.User)
	s.bookmarks = make(map[int64]bookmark.Bookmark)
	s.userSeq = 0
	s.bmSeq = 0

	return nil
}

// emailInUse must be called with s.mu held.
func (s *Store) emailInUse(email string, except int64) bool {
	for id, u := range s.users {
		if id != except && u.Email == email {
			return true
		}
	}
	return false
}

type UsersRepo struct {
	s *Store
}

func (r *UsersRepo) Create(_ context.Context, email, passwordHash string) (user.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if r.s.emailInUse(email, 0) {
		return user.User{}, user.ErrEmailTaken
	}

	now := time.Now().UTC()
	r.s.userSeq++

	u := user.User{
		ID:           r.s.userSeq,
		Email:        email,
		PasswordHash: passwordHash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	r.s.users[u.ID] = u

	return u, nil
}

func (r *UsersRepo) GetByID(_ context.Context, id int64) (user.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	u, ok := r.s.users[id]
	if !ok {
		return user.User{}, user.ErrNotFound
	}
	return u, nil
}

func (r *UsersRepo) GetByEmail(_ context.Context, email string) (user.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	for _, u := range r.s.users {
		if u.Email == email {
			return u, nil
		}
	}
	return user.User{}, user.ErrNotFound
}

func (r *UsersRepo) Update(_ context.Context, id int64, req user.EditUserRequest) (user.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	u, ok := r.s.users[id]
	if !ok {
		return user.User{}, user.ErrNotFound
	}

	if req.Email != nil && r.s.emailInUse(*req.Email, id) {
		return user.User{}, user.ErrEmailTaken
	}

	u = u.Apply(req)
	r.s.users[id] = u

	return u, nil
}

type BookmarksRepo struct {
	s *Store
}

func (r *BookmarksRepo) Create(_ context.Context, ownerID int64, req bookmark.CreateBookmarkRequest) (bookmark.Bookmark, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.users[ownerID]; !ok {
		return bookmark.Bookmark{}, ErrUnknownOwner
	}

	b := bookmark.NewFromCreateRequest(ownerID, req)
	r.s.bmSeq++
	b.ID = r.s.bmSeq
	r.s.bookmarks[b.ID] = b

	return b, nil
}

func (r *BookmarksRepo) ListByOwner(_ context.Context, ownerID int64) ([]bookmark.Bookmark, error) {
	r.s.mu.RLock()
	out := make([]bookmark.Bookmark, 0)
	for _, b := range r.s.bookmarks {
		if b.UserID == ownerID {
			out = append(out, b)
		}
	}
	r.s.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })

	return out, nil
}

func (r *BookmarksRepo) GetByID(_ context.Context, id int64) (bookmark.Bookmark, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	b, ok := r.s.bookmarks[id]
	if !ok {
		return bookmark.Bookmark{}, bookmark.ErrNotFound
	}
	return b, nil
}

func (r *BookmarksRepo) Update(_ context.Context, id int64, req bookmark.EditBookmarkRequest) (bookmark.Bookmark, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	b, ok := r.s.bookmarks[id]
	if !ok {
		return bookmark.Bookmark{}, bookmark.ErrNotFound
	}

	b = b.Apply(req)
	r.s.bookmarks[id] = b

	return b, nil
}

func (r *BookmarksRepo) Delete(_ context.Context, id int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.bookmarks[id]; !ok {
		return bookmark.ErrNotFound
	}
	delete(r.s.bookmarks, id)

	return nil
}
