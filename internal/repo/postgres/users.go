package postgres

import (
	"context"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/geocoder89/bookmarkhub/internal/domain/user"
	"github.com/geocoder89/bookmarkhub/internal/observability"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const userColumns = "id, email, password_hash, first_name, last_name, created_at, updated_at"

type UsersRepo struct {
	pool *pgxpool.Pool
	prom *observability.Prom
}

func NewUsersRepo(pool *pgxpool.Pool, prom *observability.Prom) *UsersRepo {
	return &UsersRepo{pool: pool, prom: prom}
}

func scanUser(row pgx.Row, u *user.User) error {
	return row.Scan(
		&u.ID,
		&u.Email,
		&u.PasswordHash,
		&u.FirstName,
		&u.LastName,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
}

func (r *UsersRepo) Create(ctx context.Context, email, passwordHash string) (user.User, error) {
	var u user.User

	err := r.prom.ObserveDB("users.create", func() error {
		return scanUser(r.pool.QueryRow(ctx,
			`INSERT INTO users (email, password_hash)
			VALUES ($1, $2)
			RETURNING `+userColumns,
			email, passwordHash,
		), &u)
	})

	if err != nil {
		if isUniqueViolation(err) {
			return user.User{}, user.ErrEmailTaken
		}
		return user.User{}, fmt.Errorf("insert user: %w", err)
	}

	return u, nil
}

func (r *UsersRepo) GetByID(ctx context.Context, id int64) (user.User, error) {
	return r.getOne(ctx, "users.get_by_id", `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
}

func (r *UsersRepo) GetByEmail(ctx context.Context, email string) (user.User, error) {
	return r.getOne(ctx, "users.get_by_email", `SELECT `+userColumns+` FROM users WHERE email = $1`, email)
}

func (r *UsersRepo) getOne(ctx context.Context, op, query string, arg any) (user.User, error) {
	var u user.User

	err := r.prom.ObserveDB(op, func() error {
		return scanUser(r.pool.QueryRow(ctx, query, arg), &u)
	})

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return user.User{}, user.ErrNotFound
		}

		return user.User{}, err
	}
	return u, nil
}

// Update applies only the fields set on req.
func (r *UsersRepo) Update(ctx context.Context, id int64, req user.EditUserRequest) (user.User, error) {
	query, args, err := userUpdateQuery(id, req)
	if err != nil {
		return user.User{}, err
	}

	var u user.User

	err = r.prom.ObserveDB("users.update", func() error {
		return scanUser(r.pool.QueryRow(ctx, query, args...), &u)
	})

	if err != nil {
		switch {
		case errors.Is(err, pgx.ErrNoRows):
			return user.User{}, user.ErrNotFound
		case isUniqueViolation(err):
			return user.User{}, user.ErrEmailTaken
		}
		return user.User{}, fmt.Errorf("update user: %w", err)
	}

	return u, nil
}

func userUpdateQuery(id int64, req user.EditUserRequest) (string, []any, error) {
	set := map[string]any{"updated_at": sq.Expr("NOW()")}

	if req.Email != nil {
		set["email"] = *req.Email
	}
	if req.FirstName != nil {
		set["first_name"] = *req.FirstName
	}
	if req.LastName != nil {
		set["last_name"] = *req.LastName
	}

	query, args, err := psql.Update("users").
		SetMap(set).
		Where(sq.Eq{"id": id}).
		Suffix("RETURNING " + userColumns).
		ToSql()
	if err != nil {
		return "", nil, fmt.Errorf("build user update: %w", err)
	}

	return query, args, nil
}
