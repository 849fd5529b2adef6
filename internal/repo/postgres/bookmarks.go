package postgres

import (
	"context"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/geocoder89/bookmarkhub/internal/domain/bookmark"
	"github.com/geocoder89/bookmarkhub/internal/observability"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const bookmarkColumns = "id, user_id, title, description, link, created_at, updated_at"

type BookmarksRepo struct {
	pool *pgxpool.Pool
	prom *observability.Prom
}

func NewBookmarksRepo(pool *pgxpool.Pool, prom *observability.Prom) *BookmarksRepo {
	return &BookmarksRepo{pool: pool, prom: prom}
}

func scanBookmark(row pgx.Row, b *bookmark.Bookmark) error {
	return row.Scan(&b.ID, &b.UserID, &b.Title, &b.Description, &b.Link, &b.CreatedAt, &b.UpdatedAt)
}

func (r *BookmarksRepo) Create(ctx context.Context, ownerID int64, req bookmark.CreateBookmarkRequest) (bookmark.Bookmark, error) {
	b := bookmark.NewFromCreateRequest(ownerID, req)

	err := r.prom.ObserveDB("bookmarks.create", func() error {
		return scanBookmark(r.pool.QueryRow(ctx,
			`INSERT INTO bookmarks (user_id, title, description, link, created_at, updated_at)
			VALUES ($1,$2,$3,$4,$5,$6)
			RETURNING `+bookmarkColumns,
			b.UserID, b.Title, b.Description, b.Link, b.CreatedAt, b.UpdatedAt,
		), &b)
	})

	if err != nil {
		return bookmark.Bookmark{}, fmt.Errorf("insert bookmark: %w", err)
	}

	return b, nil
}

// ListByOwner returns the owner's bookmarks in insertion order.
func (r *BookmarksRepo) ListByOwner(ctx context.Context, ownerID int64) ([]bookmark.Bookmark, error) {
	out := make([]bookmark.Bookmark, 0)

	err := r.prom.ObserveDB("bookmarks.list_by_owner", func() error {
		rows, err := r.pool.Query(ctx,
			`SELECT `+bookmarkColumns+` FROM bookmarks WHERE user_id = $1 ORDER BY id ASC`,
			ownerID,
		)
		if err != nil {
			return err
		}
		defer rows.Close()

		for rows.Next() {
			var b bookmark.Bookmark
			if err := scanBookmark(rows, &b); err != nil {
				return err
			}
			out = append(out, b)
		}

		return rows.Err()
	})

	if err != nil {
		return nil, err
	}

	return out, nil
}

func (r *BookmarksRepo) GetByID(ctx context.Context, id int64) (bookmark.Bookmark, error) {
	var b bookmark.Bookmark

	err := r.prom.ObserveDB("bookmarks.get_by_id", func() error {
		return scanBookmark(r.pool.QueryRow(ctx,
			`SELECT `+bookmarkColumns+` FROM bookmarks WHERE id = $1`, id,
		), &b)
	})

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return bookmark.Bookmark{}, bookmark.ErrNotFound
		}
		return bookmark.Bookmark{}, err
	}

	return b, nil
}

// Update applies only the fields set on req. A row deleted since the caller
// read it yields bookmark.ErrNotFound.
func (r *BookmarksRepo) Update(ctx context.Context, id int64, req bookmark.EditBookmarkRequest) (bookmark.Bookmark, error) {
	query, args, err := bookmarkUpdateQuery(id, req)
	if err != nil {
		return bookmark.Bookmark{}, err
	}

	var b bookmark.Bookmark

	err = r.prom.ObserveDB("bookmarks.update", func() error {
		return scanBookmark(r.pool.QueryRow(ctx, query, args...), &b)
	})

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return bookmark.Bookmark{}, bookmark.ErrNotFound
		}
		return bookmark.Bookmark{}, fmt.Errorf("update bookmark: %w", err)
	}

	return b, nil
}

func (r *BookmarksRepo) Delete(ctx context.Context, id int64) error {
	var affected int64

	err := r.prom.ObserveDB("bookmarks.delete", func() error {
		tag, err := r.pool.Exec(ctx, `DELETE FROM bookmarks WHERE id = $1`, id)
		if err != nil {
			return err
		}
		affected = tag.RowsAffected()
		return nil
	})

	if err != nil {
		return err
	}

	// if no rows were deleted as a result return a not found error
	if affected == 0 {
		return bookmark.ErrNotFound
	}

	return nil
}

func bookmarkUpdateQuery(id int64, req bookmark.EditBookmarkRequest) (string, []any, error) {
	set := map[string]any{"updated_at": sq.Expr("NOW()")}

	if req.Title != nil {
		set["title"] = *req.Title
	}
	if req.Description != nil {
		set["description"] = *req.Description
	}
	if req.Link != nil {
		set["link"] = *req.Link
	}

	query, args, err := psql.Update("bookmarks").
		SetMap(set).
		Where(sq.Eq{"id": id}).
		Suffix("RETURNING " + bookmarkColumns).
		ToSql()
	if err != nil {
		return "", nil, fmt.Errorf("build bookmark update: %w", err)
	}

	return query, args, nil
}
