package bookmark

import (
	"errors"
	"time"
)

var (
	ErrNotFound     = errors.New("bookmark not found")
	ErrAccessDenied = errors.New("access to resource denied")
)

type Bookmark struct {
	ID          int64     `json:"id"`
	UserID      int64     `json:"userId"`
	Title       string    `json:"title"`
	Description *string   `json:"description"`
	Link        string    `json:"link"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// OwnedBy reports whether userID may read or change the bookmark.
func (b Bookmark) OwnedBy(userID int64) bool {
	return b.UserID == userID
}

type CreateBookmarkRequest struct {
	Title       string  `json:"title" binding:"required,max=255"`
	Description *string `json:"description" binding:"omitempty,max=2000"`
	Link        string  `json:"link" binding:"required,url"`
}

// EditBookmarkRequest is a partial update; only non-nil fields are applied.
type EditBookmarkRequest struct {
	Title       *string `json:"title" binding:"omitempty,min=1,max=255"`
	Description *string `json:"description" binding:"omitempty,max=2000"`
	Link        *string `json:"link" binding:"omitempty,url"`
}

func (r EditBookmarkRequest) IsEmpty() bool {
	return r.Title == nil && r.Description == nil && r.Link == nil
}
