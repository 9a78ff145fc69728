package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToggleLikeOnPostIsInvolutive(t *testing.T) {
	f := newMemoryForum(t)
	ctx := context.Background()
	post := createPost(t, f, alice, "Hem finishing")
	_, err := f.Engagement.ToggleLike(ctx, post.ID, bob, "")
	require.NoError(t, err)

	before, err := f.Posts.Get(ctx, post.ID)
	require.NoError(t, err)

	liked, err := f.Engagement.ToggleLike(ctx, post.ID, carol, "")
	require.NoError(t, err)
	assert.True(t, liked.Likes.Has("carol"))
	assert.Equal(t, 2, liked.LikeCount)

	after, err := f.Engagement.ToggleLike(ctx, post.ID, carol, "")
	require.NoError(t, err)
	assert.Equal(t, before.Likes, after.Likes)
	assert.Equal(t, 1, after.LikeCount)
}

func TestToggleLikeSequencesNeverDuplicate(t *testing.T) {
	f := newMemoryForum(t)
	ctx := context.Background()
	post := createPost(t, f, alice, "Hem finishing")

	sequence := []Caller{bob, carol, bob, alice, bob, carol, carol}
	for _, c := range sequence {
		_, err := f.Engagement.ToggleLike(ctx, post.ID, c, "")
		require.NoError(t, err)
	}

	got, err := f.Posts.Get(ctx, post.ID)
	require.NoError(t, err)
	list := got.Likes.List()
	users := map[string]int{}
	for _, l := range list {
		users[l.UserID]++
	}
	for u, n := range users {
		assert.Equal(t, 1, n, u)
	}
	// bob three times, carol three times, alice once
	assert.Equal(t, map[string]int{"bob": 1, "carol": 1, "alice": 1}, users)
}

func TestToggleLikeOnReply(t *testing.T) {
	f := newMemoryForum(t)
	ctx := context.Background()
	post := createPost(t, f, alice, "Hem finishing")
	r := addReply(t, f, post.ID, bob, "blind hem")

	got, err := f.Engagement.ToggleLike(ctx, post.ID, bob, r.ID)
	require.NoError(t, err)
	assert.True(t, got.Replies[0].Likes.Has("bob"), "self likes are allowed")
	assert.Equal(t, 0, got.Likes.Len(), "post likes untouched")

	got, err = f.Engagement.ToggleLike(ctx, post.ID, bob, r.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, got.Replies[0].Likes.Len())
}

func TestToggleLikeErrors(t *testing.T) {
	f := newMemoryForum(t)
	ctx := context.Background()
	post := createPost(t, f, alice, "Hem finishing")

	_, err := f.Engagement.ToggleLike(ctx, "missing", bob, "")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = f.Engagement.ToggleLike(ctx, post.ID, bob, "missing-reply")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = f.Engagement.ToggleLike(ctx, post.ID, anon, "")
	assert.ErrorIs(t, err, ErrForbidden)
}
