package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/geocoder89/bookmarkhub/internal/domain/bookmark"
	"github.com/geocoder89/bookmarkhub/internal/domain/user"
	"github.com/gin-gonic/gin"
)

type BookmarksService interface {
	Create(ctx context.Context, ownerID int64, req bookmark.CreateBookmarkRequest) (bookmark.Bookmark, error)
	List(ctx context.Context, ownerID int64) ([]bookmark.Bookmark, error)
	Get(ctx context.Context, ownerID, id int64) (bookmark.Bookmark, error)
	Edit(ctx context.Context, ownerID, id int64, req bookmark.EditBookmarkRequest) (bookmark.Bookmark, error)
	Delete(ctx context.Context, ownerID, id int64) error
}

type BookmarksHandler struct {
	svc BookmarksService
}

func NewBookmarksHandler(svc BookmarksService) *BookmarksHandler {
	return &BookmarksHandler{svc: svc}
}

func (h *BookmarksHandler) Create(ctx *gin.Context, caller user.User) {
	var req bookmark.CreateBookmarkRequest

	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := context.WithTimeout(ctx.Request.Context(), 3*time.Second)
	defer cancel()

	b, err := h.svc.Create(cctx, caller.ID, req)
	if err != nil {
		respondBookmarkError(ctx, err, "Could not create bookmark")
		return
	}

	ctx.JSON(http.StatusCreated, b)
}

func (h *BookmarksHandler) List(ctx *gin.Context, caller user.User) {
	cctx, cancel := context.WithTimeout(ctx.Request.Context(), 3*time.Second)
	defer cancel()

	items, err := h.svc.List(cctx, caller.ID)
	if err != nil {
		respondBookmarkError(ctx, err, "Could not list bookmarks")
		return
	}

	if items == nil {
		items = []bookmark.Bookmark{}
	}

	RespondJSONWithETag(ctx, http.StatusOK, items)
}

func (h *BookmarksHandler) Get(ctx *gin.Context, caller user.User) {
	id, ok := bookmarkID(ctx)
	if !ok {
		return
	}

	cctx, cancel := context.WithTimeout(ctx.Request.Context(), 3*time.Second)
	defer cancel()

	b, err := h.svc.Get(cctx, caller.ID, id)
	if err != nil {
		respondBookmarkError(ctx, err, "Could not fetch bookmark")
		return
	}

	RespondJSONWithETag(ctx, http.StatusOK, b)
}

func (h *BookmarksHandler) Edit(ctx *gin.Context, caller user.User) {
	id, ok := bookmarkID(ctx)
	if !ok {
		return
	}

	var req bookmark.EditBookmarkRequest
	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := context.WithTimeout(ctx.Request.Context(), 3*time.Second)
	defer cancel()

	var (
		b   bookmark.Bookmark
		err error
	)
	if req.IsEmpty() {
		b, err = h.svc.Get(cctx, caller.ID, id)
	} else {
		b, err = h.svc.Edit(cctx, caller.ID, id, req)
	}
	if err != nil {
		respondBookmarkError(ctx, err, "Could not update bookmark")
		return
	}

	ctx.JSON(http.StatusOK, b)
}

func (h *BookmarksHandler) Delete(ctx *gin.Context, caller user.User) {
	id, ok := bookmarkID(ctx)
	if !ok {
		return
	}

	cctx, cancel := context.WithTimeout(ctx.Request.Context(), 3*time.Second)
	defer cancel()

	if err := h.svc.Delete(cctx, caller.ID, id); err != nil {
		respondBookmarkError(ctx, err, "Could not delete bookmark")
		return
	}

	ctx.Status(http.StatusNoContent)
}

func bookmarkID(ctx *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(ctx.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		RespondError(ctx, http.StatusBadRequest, "invalid_id", "Bookmark id must be a positive integer", nil)
		return 0, false
	}
	return id, true
}

func respondBookmarkError(ctx *gin.Context, err error, internalMsg string) {
	if errors.Is(err, bookmark.ErrAccessDenied) || errors.Is(err, bookmark.ErrNotFound) {
		RespondForbidden(ctx, "forbidden", "Access to resource denied")
		return
	}

	slog.Default().ErrorContext(ctx.Request.Context(), internalMsg, "err", err)
	RespondInternal(ctx, internalMsg)
}
