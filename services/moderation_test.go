package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cppla/forumcore/models"
)

func solutionCount(p *models.Post) int {
	n := 0
	for _, r := range p.Replies {
		if r.IsSolution {
			n++
		}
	}
	return n
}

func TestAddReply(t *testing.T) {
	f := newMemoryForum(t)
	ctx := context.Background()
	post := createPost(t, f, alice, "Hem finishing")

	got, err := f.Moderation.AddReply(ctx, post.ID, bob, ReplyInput{
		Content:     "Try a rolled hem",
		Attachments: []models.Attachment{{URL: "https://cdn/h.png", Filename: "h.png", FileType: "image/png"}},
	})
	require.NoError(t, err)
	require.Len(t, got.Replies, 1)
	r := got.Replies[0]
	assert.NotEmpty(t, r.ID)
	assert.Equal(t, "bob", r.AuthorID)
	assert.False(t, r.IsSolution)
	assert.Equal(t, "h.png", r.Attachments[0].Filename)
	assert.Equal(t, 1, got.ReplyCount)

	second := addReply(t, f, post.ID, carol, "Or a blind hem")
	got, err = f.Posts.Get(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{r.ID, second.ID}, []string{got.Replies[0].ID, got.Replies[1].ID})
	assert.NotEqual(t, r.ID, second.ID)
}

func TestAddReplyErrors(t *testing.T) {
	f := newMemoryForum(t)
	ctx := context.Background()
	post := createPost(t, f, alice, "Hem finishing")

	_, err := f.Moderation.AddReply(ctx, post.ID, bob, ReplyInput{Content: "  "})
	assert.ErrorIs(t, err, ErrValidation)

	_, err = f.Moderation.AddReply(ctx, "missing", bob, ReplyInput{Content: "hi"})
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = f.Moderation.AddReply(ctx, post.ID, anon, ReplyInput{Content: "hi"})
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestLockedPostRejectsReplies(t *testing.T) {
	f := newMemoryForum(t)
	ctx := context.Background()
	post := createPost(t, f, alice, "Hem finishing")
	addReply(t, f, post.ID, bob, "first")

	locked, err := f.Moderation.SetModerationFlags(ctx, post.ID, alice, ModerationFlags{IsLocked: ptr(true)})
	require.NoError(t, err)
	require.True(t, locked.IsLocked)

	_, err = f.Moderation.AddReply(ctx, post.ID, carol, ReplyInput{Content: "too late"})
	require.ErrorIs(t, err, ErrLocked)

	got, err := f.Posts.Get(ctx, post.ID)
	require.NoError(t, err)
	assert.Len(t, got.Replies, 1)
	assert.Equal(t, locked.UpdatedAt, got.UpdatedAt)

	// likes and edits are not gated by the lock
	_, err = f.Engagement.ToggleLike(ctx, post.ID, carol, "")
	require.NoError(t, err)

	_, err = f.Moderation.SetModerationFlags(ctx, post.ID, admin, ModerationFlags{IsLocked: ptr(false)})
	require.NoError(t, err)
	addReply(t, f, post.ID, carol, "open again")
}

func TestMarkAsSolutionScenarios(t *testing.T) {
	f := newMemoryForum(t)
	ctx := context.Background()
	post := createPost(t, f, alice, "Hem finishing")

	r1 := addReply(t, f, post.ID, bob, "R1")
	got, err := f.Moderation.MarkAsSolution(ctx, post.ID, alice, r1.ID)
	require.NoError(t, err)
	assert.True(t, got.IsResolved)
	assert.True(t, got.Reply(r1.ID).IsSolution)

	r2 := addReply(t, f, post.ID, alice, "R2")
	got, err = f.Moderation.MarkAsSolution(ctx, post.ID, alice, r2.ID)
	require.NoError(t, err)
	assert.False(t, got.Reply(r1.ID).IsSolution)
	assert.True(t, got.Reply(r2.ID).IsSolution)
	assert.Equal(t, 1, solutionCount(got))
	assert.True(t, got.IsResolved)

	// re-marking the same reply is harmless
	got, err = f.Moderation.MarkAsSolution(ctx, post.ID, alice, r2.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, solutionCount(got))
}

func TestMarkAsSolutionErrors(t *testing.T) {
	f := newMemoryForum(t)
	ctx := context.Background()
	post := createPost(t, f, alice, "Hem finishing")
	r := addReply(t, f, post.ID, bob, "R1")

	tests := []struct {
		name    string
		postID  string
		caller  Caller
		replyID string
		wantErr error
	}{
		{"reply author", post.ID, bob, r.ID, ErrForbidden},
		{"admin", post.ID, admin, r.ID, ErrForbidden},
		{"unknown reply", post.ID, alice, "missing", ErrNotFound},
		{"unknown post", "missing", alice, r.ID, ErrNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.Moderation.MarkAsSolution(ctx, tt.postID, tt.caller, tt.replyID)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}

	got, err := f.Posts.Get(ctx, post.ID)
	require.NoError(t, err)
	assert.False(t, got.IsResolved)
	assert.Equal(t, 0, solutionCount(got))
}

func TestSingleSolutionAfterAnySequence(t *testing.T) {
	f := newMemoryForum(t)
	ctx := context.Background()
	post := createPost(t, f, alice, "Hem finishing")

	var replies []string
	for _, c := range []Caller{bob, carol, alice, bob} {
		replies = append(replies, addReply(t, f, post.ID, c, "answer from "+c.ID).ID)
	}
	for _, i := range []int{2, 0, 3, 3, 1, 0} {
		got, err := f.Moderation.MarkAsSolution(ctx, post.ID, alice, replies[i])
		require.NoError(t, err)
		assert.Equal(t, 1, solutionCount(got))
		assert.Equal(t, replies[i], got.Solution().ID)
		assert.True(t, got.IsResolved)
	}
}

func TestSetModerationFlags(t *testing.T) {
	f := newMemoryForum(t)
	ctx := context.Background()
	post := createPost(t, f, alice, "Hem finishing")

	got, err := f.Moderation.SetModerationFlags(ctx, post.ID, admin, ModerationFlags{IsPinned: ptr(true)})
	require.NoError(t, err)
	assert.True(t, got.IsPinned)
	assert.False(t, got.IsLocked)

	got, err = f.Moderation.SetModerationFlags(ctx, post.ID, alice, ModerationFlags{IsLocked: ptr(true)})
	require.NoError(t, err)
	assert.True(t, got.IsPinned, "flags are independent")
	assert.True(t, got.IsLocked)

	_, err = f.Moderation.SetModerationFlags(ctx, post.ID, bob, ModerationFlags{IsPinned: ptr(false)})
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = f.Moderation.SetModerationFlags(ctx, "missing", admin, ModerationFlags{IsPinned: ptr(false)})
	assert.ErrorIs(t, err, ErrNotFound)
}
