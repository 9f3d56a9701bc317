// Package memory is an in-process cookieauth.UserDirectory for development
// and tests.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/MrEthical07/cookieauth"
)

// Directory keeps users in maps guarded by a RWMutex.
type Directory struct {
	mu      sync.RWMutex
	users   map[string]cookieauth.User
	byEmail map[string]string
	now     func() time.Time
}

// New returns an empty Directory.
func New() *Directory {
	return &Directory{
		users:   make(map[string]cookieauth.User),
		byEmail: make(map[string]string),
		now:     time.Now,
	}
}

// FindByEmail returns a copy of the user with the given email.
func (d *Directory) FindByEmail(ctx context.Context, email string) (cookieauth.User, error) {
	if err := ctx.Err(); err != nil {
		return cookieauth.User{}, err
	}
	d.mu.RLock()
	defer d.mu.RUnlock()

	id, ok := d.byEmail[email]
	if !ok {
		return cookieauth.User{}, cookieauth.ErrUserNotFound
	}
	return d.users[id], nil
}

// FindByID returns a copy of the user with the given id.
func (d *Directory) FindByID(ctx context.Context, id string) (cookieauth.User, error) {
	if err := ctx.Err(); err != nil {
		return cookieauth.User{}, err
	}
	d.mu.RLock()
	defer d.mu.RUnlock()

	u, ok := d.users[id]
	if !ok {
		return cookieauth.User{}, cookieauth.ErrUserNotFound
	}
	return u, nil
}

// Create stores a new user under a random UUID.
func (d *Directory) Create(ctx context.Context, in cookieauth.CreateUserInput) (cookieauth.User, error) {
	if err := ctx.Err(); err != nil {
		return cookieauth.User{}, err
	}
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, taken := d.byEmail[in.Email]; taken {
		return cookieauth.User{}, cookieauth.ErrEmailTaken
	}

	now := d.now().UTC()
	u := cookieauth.User{
		ID:           uuid.NewString(),
		Email:        in.Email,
		PasswordHash: in.PasswordHash,
		Firstname:    in.Firstname,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	d.users[u.ID] = u
	d.byEmail[u.Email] = u.ID
	return u, nil
}

// UpdateByID applies the non-nil fields of upd.
func (d *Directory) UpdateByID(ctx context.Context, id string, upd cookieauth.UserUpdate) (cookieauth.User, error) {
	if err := ctx.Err(); err != nil {
		return cookieauth.User{}, err
	}
	d.mu.Lock()
	defer d.mu.Unlock()

	u, ok := d.users[id]
	if !ok {
		return cookieauth.User{}, cookieauth.ErrUserNotFound
	}
	if upd.Email != nil && *upd.Email != u.Email {
		if _, taken := d.byEmail[*upd.Email]; taken {
			return cookieauth.User{}, cookieauth.ErrEmailTaken
		}
		delete(d.byEmail, u.Email)
		u.Email = *upd.Email
		d.byEmail[u.Email] = u.ID
	}
	if upd.PasswordHash != nil {
		u.PasswordHash = *upd.PasswordHash
	}
	if upd.Firstname != nil {
		first := *upd.Firstname
		u.Firstname = &first
	}
	u.UpdatedAt = d.now().UTC()
	d.users[id] = u
	return u, nil
}

// Delete removes a user. It is not part of cookieauth.UserDirectory.
func (d *Directory) Delete(id string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	u, ok := d.users[id]
	if !ok {
		return false
	}
	delete(d.users, id)
	delete(d.byEmail, u.Email)
	return true
}

// Len returns the number of stored users.
func (d *Directory) Len() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.users)
}
