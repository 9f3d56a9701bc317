// Package redisdir stores cookieauth users in Redis.
//
// Each user is a hash under "{<prefix>}:user:<id>". A string key
// "{<prefix>}:email:<email>" maps the email to the id and enforces uniqueness.
// Writes that touch both keys run as Lua scripts so they stay atomic. The
// braces make the prefix a hash tag, so every key of a Directory lands in one
// Redis Cluster slot and the scripts run on cluster clients too.
package redisdir

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/MrEthical07/cookieauth"
)

// ErrRedisUnavailable wraps every Redis command failure.
var ErrRedisUnavailable = errors.New("redis unavailable")

// DefaultPrefix is the key namespace used when New is given an empty prefix.
const DefaultPrefix = "cookieauth"

const (
	fieldID        = "id"
	fieldEmail     = "email"
	fieldPassword  = "password_hash"
	fieldFirstname = "firstname"
	fieldCreatedAt = "created_at"
	fieldUpdatedAt = "updated_at"
)

const (
	updateStatusNotFound int64 = 0
	updateStatusUpdated  int64 = 1
	updateStatusTaken    int64 = 2
	updateStatusStale    int64 = 3
)

// KEYS[1] email index, KEYS[2] user hash.
// ARGV: id, email, password_hash, has_firstname, firstname, created_at.
const createUserScript = `
if redis.call("SETNX", KEYS[1], ARGV[1]) == 0 then
  return 0
end
redis.call("HSET", KEYS[2],
  "id", ARGV[1],
  "email", ARGV[2],
  "password_hash", ARGV[3],
  "created_at", ARGV[6],
  "updated_at", ARGV[6])
if ARGV[4] == "1" then
  redis.call("HSET", KEYS[2], "firstname", ARGV[5])
end
return 1
`

var createUserLua = redis.NewScript(createUserScript)

// KEYS[1] user hash, KEYS[2] current email index, KEYS[3] new email index.
// ARGV: id, expected email, new email or "", has_password, password_hash,
// has_firstname, firstname, updated_at.
const updateUserScript = `
if redis.call("EXISTS", KEYS[1]) == 0 then
  return 0
end
local current = redis.call("HGET", KEYS[1], "email")
if current ~= ARGV[2] then
  return 3
end
if ARGV[3] ~= "" and ARGV[3] ~= current then
  if redis.call("SETNX", KEYS[3], ARGV[1]) == 0 then
    return 2
  end
  redis.call("DEL", KEYS[2])
  redis.call("HSET", KEYS[1], "email", ARGV[3])
end
if ARGV[4] == "1" then
  redis.call("HSET", KEYS[1], "password_hash", ARGV[5])
end
if ARGV[6] == "1" then
  redis.call("HSET", KEYS[1], "firstname", ARGV[7])
end
redis.call("HSET", KEYS[1], "updated_at", ARGV[8])
return 1
`

var updateUserLua = redis.NewScript(updateUserScript)

const maxUpdateAttempts = 3

// Directory is a cookieauth.UserDirectory backed by Redis.
type Directory struct {
	redis  redis.UniversalClient
	prefix string
	now    func() time.Time
}

// New returns a Directory using client with keys under prefix.
func New(client redis.UniversalClient, prefix string) *Directory {
	if prefix == "" {
		prefix = DefaultPrefix
	}
	return &Directory{
		redis:  client,
		prefix: "{" + prefix + "}",
		now:    time.Now,
	}
}

func (d *Directory) userKey(id string) string {
	return d.prefix + ":user:" + id
}

func (d *Directory) emailKey(email string) string {
	return d.prefix + ":email:" + email
}

// Ping returns a point-in-time Redis availability check and latency.
func (d *Directory) Ping(ctx context.Context) (time.Duration, error) {
	start := time.Now()
	if err := d.redis.Ping(ctx).Err(); err != nil {
		return time.Since(start), fmt.Errorf("%w: %w", ErrRedisUnavailable, err)
	}
	return time.Since(start), nil
}

// FindByEmail follows the email index to the user hash. A dangling index is ErrUserNotFound.
func (d *Directory) FindByEmail(ctx context.Context, email string) (cookieauth.User, error) {
	id, err := d.redis.Get(ctx, d.emailKey(email)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return cookieauth.User{}, cookieauth.ErrUserNotFound
		}
		return cookieauth.User{}, fmt.Errorf("%w: %w", ErrRedisUnavailable, err)
	}
	return d.FindByID(ctx, id)
}

// FindByID loads the user hash for id.
func (d *Directory) FindByID(ctx context.Context, id string) (cookieauth.User, error) {
	fields, err := d.redis.HGetAll(ctx, d.userKey(id)).Result()
	if err != nil {
		return cookieauth.User{}, fmt.Errorf("%w: %w", ErrRedisUnavailable, err)
	}
	if len(fields) == 0 {
		return cookieauth.User{}, cookieauth.ErrUserNotFound
	}
	return decodeUser(fields)
}

// Create claims the email index and writes the user hash in one script.
func (d *Directory) Create(ctx context.Context, in cookieauth.CreateUserInput) (cookieauth.User, error) {
	now := d.now().UTC()
	u := cookieauth.User{
		ID:           uuid.NewString(),
		Email:        in.Email,
		PasswordHash: in.PasswordHash,
		Firstname:    in.Firstname,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	hasFirst, first := optional(in.Firstname)
	created, err := createUserLua.Run(ctx, d.redis,
		[]string{d.emailKey(u.Email), d.userKey(u.ID)},
		u.ID, u.Email, u.PasswordHash, hasFirst, first, now.Format(time.RFC3339Nano),
	).Int64()
	if err != nil {
		return cookieauth.User{}, fmt.Errorf("%w: %w", ErrRedisUnavailable, err)
	}
	if created == 0 {
		return cookieauth.User{}, cookieauth.ErrEmailTaken
	}
	return u, nil
}

// UpdateByID applies upd, moving the email index when the email changes.
func (d *Directory) UpdateByID(ctx context.Context, id string, upd cookieauth.UserUpdate) (cookieauth.User, error) {
	for attempt := 0; attempt < maxUpdateAttempts; attempt++ {
		current, err := d.FindByID(ctx, id)
		if err != nil {
			return cookieauth.User{}, err
		}

		newEmail := ""
		if upd.Email != nil {
			newEmail = *upd.Email
		}
		hasPassword, passwordHash := optional(upd.PasswordHash)
		hasFirst, first := optional(upd.Firstname)

		status, err := updateUserLua.Run(ctx, d.redis,
			[]string{d.userKey(id), d.emailKey(current.Email), d.emailKey(newEmail)},
			id, current.Email, newEmail, hasPassword, passwordHash, hasFirst, first,
			d.now().UTC().Format(time.RFC3339Nano),
		).Int64()
		if err != nil {
			return cookieauth.User{}, fmt.Errorf("%w: %w", ErrRedisUnavailable, err)
		}

		switch status {
		case updateStatusUpdated:
			return d.FindByID(ctx, id)
		case updateStatusNotFound:
			return cookieauth.User{}, cookieauth.ErrUserNotFound
		case updateStatusTaken:
			return cookieauth.User{}, cookieauth.ErrEmailTaken
		case updateStatusStale:
			continue
		default:
			return cookieauth.User{}, fmt.Errorf("redisdir: unexpected update status %d", status)
		}
	}
	return cookieauth.User{}, fmt.Errorf("redisdir: user %s changed concurrently", id)
}

// Delete removes a user and its email index.
func (d *Directory) Delete(ctx context.Context, id string) error {
	u, err := d.FindByID(ctx, id)
	if err != nil {
		return err
	}
	_, err = d.redis.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, d.userKey(id))
		pipe.Del(ctx, d.emailKey(u.Email))
		return nil
	})
	if err != nil {
		return fmt.Errorf("%w: %w", ErrRedisUnavailable, err)
	}
	return nil
}

func optional(v *string) (string, string) {
	if v == nil {
		return "0", ""
	}
	return "1", *v
}

func decodeUser(fields map[string]string) (cookieauth.User, error) {
	u := cookieauth.User{
		ID:           fields[fieldID],
		Email:        fields[fieldEmail],
		PasswordHash: fields[fieldPassword],
	}
	if first, ok := fields[fieldFirstname]; ok {
		u.Firstname = &first
	}

	var err error
	if u.CreatedAt, err = time.Parse(time.RFC3339Nano, fields[fieldCreatedAt]); err != nil {
		return cookieauth.User{}, fmt.Errorf("redisdir: corrupt %s on user %s: %w", fieldCreatedAt, u.ID, err)
	}
	if u.UpdatedAt, err = time.Parse(time.RFC3339Nano, fields[fieldUpdatedAt]); err != nil {
		return cookieauth.User{}, fmt.Errorf("redisdir: corrupt %s on user %s: %w", fieldUpdatedAt, u.ID, err)
	}
	return u, nil
}
