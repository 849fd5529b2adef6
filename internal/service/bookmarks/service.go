// Package bookmarks implements the owner-scoped bookmark operations.
package bookmarks

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"

	"github.com/google/uuid"

	"github.com/geocoder89/bookmarkhub/internal/cache"
	"github.com/geocoder89/bookmarkhub/internal/domain/bookmark"
	"github.com/geocoder89/bookmarkhub/internal/observability"
)

type Repository interface {
	Create(ctx context.Context, ownerID int64, req bookmark.CreateBookmarkRequest) (bookmark.Bookmark, error)
	ListByOwner(ctx context.Context, ownerID int64) ([]bookmark.Bookmark, error)
	GetByID(ctx context.Context, id int64) (bookmark.Bookmark, error)
	Update(ctx context.Context, id int64, req bookmark.EditBookmarkRequest) (bookmark.Bookmark, error)
	Delete(ctx context.Context, id int64) error
}

type Service struct {
	repo  Repository
	cache cache.Store
	prom  *observability.Prom
	log   *slog.Logger
}

type Option func(*Service)

func WithCache(c cache.Store) Option {
	return func(s *Service) { s.cache = c }
}

func WithMetrics(p *observability.Prom) Option {
	return func(s *Service) { s.prom = p }
}

func NewService(repo Repository, log *slog.Logger, opts ...Option) *Service {
	if log == nil {
		log = slog.Default()
	}

	s := &Service{repo: repo, log: log}
	for _, opt := range opts {
		opt(s)
	}

	return s
}

func (s *Service) Create(ctx context.Context, ownerID int64, req bookmark.CreateBookmarkRequest) (bookmark.Bookmark, error) {
	b, err := s.repo.Create(ctx, ownerID, req)
	if err != nil {
		return bookmark.Bookmark{}, err
	}

	s.invalidate(ctx, ownerID)

	return b, nil
}

func (s *Service) List(ctx context.Context, ownerID int64) ([]bookmark.Bookmark, error) {
	// The generation is fixed before the read so a write landing mid-read
	// leaves this result under a key nobody looks up.
	gen := s.listGeneration(ctx, ownerID)

	if cached, ok := s.cachedList(ctx, ownerID, gen); ok {
		return cached, nil
	}

	items, err := s.repo.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	s.storeList(ctx, ownerID, gen, items)

	return items, nil
}

func (s *Service) Get(ctx context.Context, ownerID, id int64) (bookmark.Bookmark, error) {
	return s.owned(ctx, ownerID, id)
}

func (s *Service) Edit(ctx context.Context, ownerID, id int64, req bookmark.EditBookmarkRequest) (bookmark.Bookmark, error) {
	if _, err := s.owned(ctx, ownerID, id); err != nil {
		return bookmark.Bookmark{}, err
	}

	b, err := s.repo.Update(ctx, id, req)
	if err != nil {
		return bookmark.Bookmark{}, deniedIfGone(err)
	}

	s.invalidate(ctx, ownerID)

	return b, nil
}

func (s *Service) Delete(ctx context.Context, ownerID, id int64) error {
	if _, err := s.owned(ctx, ownerID, id); err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return deniedIfGone(err)
	}

	s.invalidate(ctx, ownerID)

	return nil
}

// owned fetches the bookmark and checks ownership. Missing and foreign
// records both come back as bookmark.ErrAccessDenied.
func (s *Service) owned(ctx context.Context, ownerID, id int64) (bookmark.Bookmark, error) {
	b, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return bookmark.Bookmark{}, deniedIfGone(err)
	}

	if !b.OwnedBy(ownerID) {
		return bookmark.Bookmark{}, bookmark.ErrAccessDenied
	}

	return b, nil
}

// deniedIfGone also covers a row deleted between the ownership check and the write.
func deniedIfGone(err error) error {
	if errors.Is(err, bookmark.ErrNotFound) {
		return bookmark.ErrAccessDenied
	}
	return err
}

func (s *Service) listGeneration(ctx context.Context, ownerID int64) string {
	if s.cache == nil {
		return ""
	}

	if raw, ok := s.cache.Get(ctx, cache.BookmarksGenKey(ownerID)); ok {
		return string(raw)
	}

	gen := uuid.NewString()
	s.cache.Set(ctx, cache.BookmarksGenKey(ownerID), []byte(gen))
	return gen
}

func (s *Service) cachedList(ctx context.Context, ownerID int64, gen string) ([]bookmark.Bookmark, bool) {
	if s.cache == nil {
		return nil, false
	}

	raw, ok := s.cache.Get(ctx, cache.BookmarksListKey(ownerID, gen))
	if !ok {
		s.prom.ObserveCache(false)
		return nil, false
	}

	var items []bookmark.Bookmark
	if err := json.Unmarshal(raw, &items); err != nil {
		s.log.WarnContext(ctx, "discarding undecodable cache entry", "err", err)
		s.prom.ObserveCache(false)
		return nil, false
	}

	s.prom.ObserveCache(true)
	return items, true
}

func (s *Service) storeList(ctx context.Context, ownerID int64, gen string, items []bookmark.Bookmark) {
	if s.cache == nil {
		return
	}

	raw, err := json.Marshal(items)
	if err != nil {
		return
	}

	s.cache.Set(ctx, cache.BookmarksListKey(ownerID, gen), raw)
}

// invalidate rotates the owner's generation. Entries under the old one
// age out with the cache TTL.
func (s *Service) invalidate(ctx context.Context, ownerID int64) {
	if s.cache == nil {
		return
	}
	s.cache.Set(ctx, cache.BookmarksGenKey(ownerID), []byte(uuid.NewString()))
}
