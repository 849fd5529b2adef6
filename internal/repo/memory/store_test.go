package memory

import (
	"context"
	"sync"
	"testing"

	"github.com/geocoder89/bookmarkhub/internal/domain/bookmark"
	"github.com/geocoder89/bookmarkhub/internal/domain/user"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUsers_UniqueEmail(t *testing.T) {
	ctx := context.Background()
	s := NewStore()

	a, err := s.Users.Create(ctx, "a@example.com", "h")
	require.NoError(t, err)
	b, err := s.Users.Create(ctx, "b@example.com", "h")
	require.NoError(t, err)
	assert.Equal(t, a.ID+1, b.ID)

	_, err = s.Users.Create(ctx, "a@example.com", "h")
	assert.ErrorIs(t, err, user.ErrEmailTaken)

	// case-sensitive, like the unique constraint
	_, err = s.Users.Create(ctx, "A@example.com", "h")
	assert.NoError(t, err)

	taken := "a@example.com"
	_, err = s.Users.Update(ctx, b.ID, user.EditUserRequest{Email: &taken})
	assert.ErrorIs(t, err, user.ErrEmailTaken)

	// re-setting your own email is not a conflict
	_, err = s.Users.Update(ctx, a.ID, user.EditUserRequest{Email: &taken})
	assert.NoError(t, err)
}

func TestBookmarks_OwnerMustExist(t *testing.T) {
	s := NewStore()

	_, err := s.Bookmarks.Create(context.Background(), 99, bookmark.CreateBookmarkRequest{Title: "t", Link: "https://x.io"})
	assert.ErrorIs(t, err, ErrUnknownOwner)
}

func TestBookmarks_ListIsScopedAndOrdered(t *testing.T) {
	ctx := context.Background()
	s := NewStore()

	a, _ := s.Users.Create(ctx, "a@example.com", "h")
	b, _ := s.Users.Create(ctx, "b@example.com", "h")

	for _, title := range []string{"one", "two", "three"} {
		_, err := s.Bookmarks.Create(ctx, a.ID, bookmark.CreateBookmarkRequest{Title: title, Link: "https://x.io"})
		require.NoError(t, err)
	}
	_, err := s.Bookmarks.Create(ctx, b.ID, bookmark.CreateBookmarkRequest{Title: "other", Link: "https://y.io"})
	require.NoError(t, err)

	list, err := s.Bookmarks.ListByOwner(ctx, a.ID)
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, "one", list[0].Title)
	assert.Equal(t, "three", list[2].Title)
}

func TestWipeAll(t *testing.T) {
	ctx := context.Background()
	s := NewStore()

	u, _ := s.Users.Create(ctx, "a@example.com", "h")
	_, _ = s.Bookmarks.Create(ctx, u.ID, bookmark.CreateBookmarkRequest{Title: "t", Link: "https://x.io"})

	require.NoError(t, s.WipeAll(ctx))

	_, err := s.Users.GetByID(ctx, u.ID)
	assert.ErrorIs(t, err, user.ErrNotFound)

	again, err := s.Users.Create(ctx, "a@example.com", "h")
	require.NoError(t, err)
	assert.Equal(t, int64(1), again.ID)
}

func TestConcurrentCreates(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	u, _ := s.Users.Create(ctx, "a@example.com", "h")

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = s.Bookmarks.Create(ctx, u.ID, bookmark.CreateBookmarkRequest{Title: "t", Link: "https://x.io"})
		}()
	}
	wg.Wait()

	list, err := s.Bookmarks.ListByOwner(ctx, u.ID)
	require.NoError(t, err)
	assert.Len(t, list, 50)
}
