// Package pgdir stores cookieauth users in PostgreSQL through pgxpool.
//
// The schema ships as embedded golang-migrate migrations; call Migrate (or
// Open, which runs it) before serving traffic.
package pgdir

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/MrEthical07/cookieauth"
)

const usersTable = "users"

var userColumns = []string{"id", "email", "password_hash", "firstname", "created_at", "updated_at"}

// Directory is a cookieauth.UserDirectory backed by a pgx pool.
type Directory struct {
	pool   *pgxpool.Pool
	logger *slog.Logger
	qb     sq.StatementBuilderType
}

// New wraps an existing pool. The caller owns the pool.
func New(pool *pgxpool.Pool, logger *slog.Logger) *Directory {
	if logger == nil {
		logger = slog.Default()
	}
	return &Directory{
		pool:   pool,
		logger: logger,
		qb:     sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

// Open runs migrations against dsn and returns a Directory over a new pool.
// Close releases the pool.
func Open(ctx context.Context, dsn string, logger *slog.Logger) (*Directory, error) {
	if err := Migrate(dsn, logger); err != nil {
		return nil, fmt.Errorf("migrations: %w", err)
	}

	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse dsn: %w", err)
	}
	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("open pool: %w", err)
	}
	return New(pool, logger), nil
}

// Close closes the underlying pool.
func (d *Directory) Close() {
	d.pool.Close()
}

// Ping checks database reachability.
func (d *Directory) Ping(ctx context.Context) error {
	return d.pool.Ping(ctx)
}

// FindByEmail returns the user with the given email.
func (d *Directory) FindByEmail(ctx context.Context, email string) (cookieauth.User, error) {
	q := d.qb.Select(userColumns...).
		From(usersTable).
		Where(sq.Eq{"email": email})
	return d.queryUser(ctx, "FindByEmail", q)
}

// FindByID returns the user with the given id.
func (d *Directory) FindByID(ctx context.Context, id string) (cookieauth.User, error) {
	q := d.qb.Select(userColumns...).
		From(usersTable).
		Where(sq.Eq{"id": id})
	return d.queryUser(ctx, "FindByID", q)
}

// Create inserts a user; the unique email index reports duplicates as ErrEmailTaken.
func (d *Directory) Create(ctx context.Context, in cookieauth.CreateUserInput) (cookieauth.User, error) {
	q := d.qb.Insert(usersTable).
		Columns("email", "password_hash", "firstname").
		Values(in.Email, in.PasswordHash, in.Firstname).
		Suffix(returning())
	return d.queryUser(ctx, "Create", q)
}

// UpdateByID sets the provided fields and bumps updated_at.
func (d *Directory) UpdateByID(ctx context.Context, id string, upd cookieauth.UserUpdate) (cookieauth.User, error) {
	q := updateQuery(d.qb, id, upd)
	return d.queryUser(ctx, "UpdateByID", q)
}

// Delete removes a user. It is not part of cookieauth.UserDirectory.
func (d *Directory) Delete(ctx context.Context, id string) error {
	sqlStr, args, err := d.qb.Delete(usersTable).Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return fmt.Errorf("build Delete: %w", err)
	}
	tag, err := d.pool.Exec(ctx, sqlStr, args...)
	if err != nil {
		return mapError(err)
	}
	if tag.RowsAffected() == 0 {
		return cookieauth.ErrUserNotFound
	}
	return nil
}

func updateQuery(qb sq.StatementBuilderType, id string, upd cookieauth.UserUpdate) sq.UpdateBuilder {
	set := map[string]any{"updated_at": sq.Expr("now()")}
	if upd.Email != nil {
		set["email"] = *upd.Email
	}
	if upd.PasswordHash != nil {
		set["password_hash"] = *upd.PasswordHash
	}
	if upd.Firstname != nil {
		set["firstname"] = *upd.Firstname
	}
	return qb.Update(usersTable).
		SetMap(set).
		Where(sq.Eq{"id": id}).
		Suffix(returning())
}

func returning() string {
	return "RETURNING id, email, password_hash, firstname, created_at, updated_at"
}

func (d *Directory) queryUser(ctx context.Context, op string, q sq.Sqlizer) (cookieauth.User, error) {
	sqlStr, args, err := q.ToSql()
	if err != nil {
		return cookieauth.User{}, fmt.Errorf("build %s: %w", op, err)
	}
	d.logger.Debug("pgdir: query", "op", op, "sql", sqlStr)

	var u cookieauth.User
	err = d.pool.QueryRow(ctx, sqlStr, args...).
		Scan(&u.ID, &u.Email, &u.PasswordHash, &u.Firstname, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return cookieauth.User{}, mapError(err)
	}
	return u, nil
}

// mapError translates driver errors into the directory contract.
func mapError(err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return cookieauth.ErrUserNotFound
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgerrcode.UniqueViolation:
			return cookieauth.ErrEmailTaken
		case pgerrcode.InvalidTextRepresentation:
			// Ids that are not UUIDs cannot name a user.
			return cookieauth.ErrUserNotFound
		}
	}
	return err
}
