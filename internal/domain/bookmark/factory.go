package bookmark

import "time"

func NewFromCreateRequest(ownerID int64, req CreateBookmarkRequest) Bookmark {
	now := time.Now().UTC()

	return Bookmark{
		UserID:      ownerID,
		Title:       req.Title,
		Description: req.Description,
		Link:        req.Link,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// Apply returns a copy of b with the non-nil fields of req set.
func (b Bookmark) Apply(req EditBookmarkRequest) Bookmark {
	if req.Title != nil {
		b.Title = *req.Title
	}
	if req.Description != nil {
		d := *req.Description
		b.Description = &d
	}
	if req.Link != nil {
		b.Link = *req.Link
	}
	b.UpdatedAt = time.Now().UTC()

	return b
}
