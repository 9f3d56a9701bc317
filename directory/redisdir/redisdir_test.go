package redisdir

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrEthical07/cookieauth"
	"github.com/MrEthical07/cookieauth/directory/directorytest"
)

func newTestDirectory(t *testing.T) (*Directory, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })
	return New(rdb, "test"), mr
}

func TestDirectoryContract(t *testing.T) {
	directorytest.Run(t, func(t *testing.T) cookieauth.UserDirectory {
		dir, _ := newTestDirectory(t)
		return dir
	})
}

func TestKeyLayout(t *testing.T) {
	dir, mr := newTestDirectory(t)
	first := "Ada"

	u, err := dir.Create(context.Background(), cookieauth.CreateUserInput{
		Email:        "ada@example.com",
		PasswordHash: "digest",
		Firstname:    &first,
	})
	require.NoError(t, err)

	id, err := mr.Get("{test}:email:ada@example.com")
	require.NoError(t, err)
	assert.Equal(t, u.ID, id)
	assert.Equal(t, "Ada", mr.HGet("{test}:user:"+u.ID, "firstname"))
	assert.Equal(t, "digest", mr.HGet("{test}:user:"+u.ID, "password_hash"))
}

// hashTag returns the part of key Redis Cluster hashes to pick a slot.
func hashTag(key string) string {
	start := strings.IndexByte(key, '{')
	if start < 0 {
		return key
	}
	end := strings.IndexByte(key[start+1:], '}')
	if end <= 0 {
		return key
	}
	return key[start+1 : start+1+end]
}

func TestScriptKeysShareClusterSlot(t *testing.T) {
	for _, prefix := range []string{"", "test", "app:auth"} {
		dir := New(nil, prefix)
		want := hashTag(dir.userKey("u1"))
		assert.NotEqual(t, dir.userKey("u1"), want, "prefix %q is not a hash tag", prefix)
		assert.Equal(t, want, hashTag(dir.emailKey("ada@example.com")))
		assert.Equal(t, want, hashTag(dir.emailKey("{other}@example.com")))
		assert.Equal(t, want, hashTag(dir.userKey("u2")))
	}
}

func TestDelete(t *testing.T) {
	dir, mr := newTestDirectory(t)
	ctx := context.Background()

	u, err := dir.Create(ctx, cookieauth.CreateUserInput{Email: "ada@example.com", PasswordHash: "d"})
	require.NoError(t, err)
	require.NoError(t, dir.Delete(ctx, u.ID))

	assert.False(t, mr.Exists("{test}:email:ada@example.com"))
	assert.False(t, mr.Exists("{test}:user:"+u.ID))
	assert.ErrorIs(t, dir.Delete(ctx, u.ID), cookieauth.ErrUserNotFound)
}

func TestDanglingEmailIndex(t *testing.T) {
	dir, mr := newTestDirectory(t)
	require.NoError(t, mr.Set("{test}:email:ghost@example.com", "missing-id"))

	_, err := dir.FindByEmail(context.Background(), "ghost@example.com")
	assert.ErrorIs(t, err, cookieauth.ErrUserNotFound)
}

func TestRedisUnavailable(t *testing.T) {
	dir, mr := newTestDirectory(t)
	mr.Close()

	_, err := dir.FindByID(context.Background(), "any")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrRedisUnavailable))

	_, err = dir.Ping(context.Background())
	assert.ErrorIs(t, err, ErrRedisUnavailable)
}
