// Package directorytest holds the behavior every cookieauth.UserDirectory
// implementation must share.
package directorytest

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrEthical07/cookieauth"
)

// Run exercises newDir against the UserDirectory contract. newDir must return
// an empty directory on every call.
func Run(t *testing.T, newDir func(t *testing.T) cookieauth.UserDirectory) {
	t.Helper()

	t.Run("create and find", func(t *testing.T) {
		dir := newDir(t)
		ctx := context.Background()
		first := "Ada"

		created, err := dir.Create(ctx, cookieauth.CreateUserInput{
			Email:        "ada@example.com",
			PasswordHash: "digest",
			Firstname:    &first,
		})
		require.NoError(t, err)
		require.NotEmpty(t, created.ID)
		assert.Equal(t, "ada@example.com", created.Email)

		byID, err := dir.FindByID(ctx, created.ID)
		require.NoError(t, err)
		assert.Equal(t, created.ID, byID.ID)
		assert.Equal(t, "digest", byID.PasswordHash)
		require.NotNil(t, byID.Firstname)
		assert.Equal(t, "Ada", *byID.Firstname)

		byEmail, err := dir.FindByEmail(ctx, "ada@example.com")
		require.NoError(t, err)
		assert.Equal(t, created.ID, byEmail.ID)
	})

	t.Run("null firstname", func(t *testing.T) {
		dir := newDir(t)
		ctx := context.Background()

		created, err := dir.Create(ctx, cookieauth.CreateUserInput{Email: "nf@example.com", PasswordHash: "d"})
		require.NoError(t, err)

		got, err := dir.FindByID(ctx, created.ID)
		require.NoError(t, err)
		assert.Nil(t, got.Firstname)
	})

	t.Run("unknown user", func(t *testing.T) {
		dir := newDir(t)
		ctx := context.Background()

		_, err := dir.FindByID(ctx, "00000000-0000-0000-0000-000000000000")
		assert.ErrorIs(t, err, cookieauth.ErrUserNotFound)

		_, err = dir.FindByEmail(ctx, "nobody@example.com")
		assert.ErrorIs(t, err, cookieauth.ErrUserNotFound)

		first := "x"
		_, err = dir.UpdateByID(ctx, "00000000-0000-0000-0000-000000000000", cookieauth.UserUpdate{Firstname: &first})
		assert.ErrorIs(t, err, cookieauth.ErrUserNotFound)
	})

	t.Run("duplicate email", func(t *testing.T) {
		dir := newDir(t)
		ctx := context.Background()

		_, err := dir.Create(ctx, cookieauth.CreateUserInput{Email: "dup@example.com", PasswordHash: "a"})
		require.NoError(t, err)

		_, err = dir.Create(ctx, cookieauth.CreateUserInput{Email: "dup@example.com", PasswordHash: "b"})
		assert.ErrorIs(t, err, cookieauth.ErrEmailTaken)

		found, err := dir.FindByEmail(ctx, "dup@example.com")
		require.NoError(t, err)
		assert.Equal(t, "a", found.PasswordHash)
	})

	t.Run("update", func(t *testing.T) {
		dir := newDir(t)
		ctx := context.Background()

		u, err := dir.Create(ctx, cookieauth.CreateUserInput{Email: "old@example.com", PasswordHash: "d"})
		require.NoError(t, err)
		_, err = dir.Create(ctx, cookieauth.CreateUserInput{Email: "other@example.com", PasswordHash: "d"})
		require.NoError(t, err)

		newEmail := "new@example.com"
		first := "Grace"
		updated, err := dir.UpdateByID(ctx, u.ID, cookieauth.UserUpdate{Email: &newEmail, Firstname: &first})
		require.NoError(t, err)
		assert.Equal(t, newEmail, updated.Email)
		require.NotNil(t, updated.Firstname)
		assert.Equal(t, "Grace", *updated.Firstname)
		assert.Equal(t, "d", updated.PasswordHash)

		_, err = dir.FindByEmail(ctx, "old@example.com")
		assert.ErrorIs(t, err, cookieauth.ErrUserNotFound)
		moved, err := dir.FindByEmail(ctx, newEmail)
		require.NoError(t, err)
		assert.Equal(t, u.ID, moved.ID)

		taken := "other@example.com"
		_, err = dir.UpdateByID(ctx, u.ID, cookieauth.UserUpdate{Email: &taken})
		assert.ErrorIs(t, err, cookieauth.ErrEmailTaken)
	})

	t.Run("canceled context", func(t *testing.T) {
		dir := newDir(t)
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := dir.FindByID(ctx, "any")
		require.Error(t, err)
		assert.NotErrorIs(t, err, cookieauth.ErrUserNotFound)
	})
}
