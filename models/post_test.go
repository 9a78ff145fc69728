package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCategory(t *testing.T) {
	tests := []struct {
		in   string
		want Category
		ok   bool
	}{
		{"", CategoryGeneral, true},
		{"techniques", CategoryTechniques, true},
		{"troubleshooting", CategoryTroubleshooting, true},
		{"Techniques", "", false},
		{"cooking", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := ParseCategory(tt.in)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func threadWithReplies(ids ...string) *Post {
	p := &Post{ID: "p1", AuthorID: "alice"}
	for _, id := range ids {
		p.AppendReply(Reply{ID: id, AuthorID: "bob", Content: "answer " + id})
	}
	return p
}

func TestMarkSolutionKeepsSingleWinner(t *testing.T) {
	p := threadWithReplies("r1", "r2", "r3")

	require.True(t, p.MarkSolution("r1"))
	assert.True(t, p.IsResolved)
	assert.Equal(t, "r1", p.Solution().ID)

	require.True(t, p.MarkSolution("r3"))
	solutions := 0
	for _, r := range p.Replies {
		if r.IsSolution {
			solutions++
		}
	}
	assert.Equal(t, 1, solutions)
	assert.Equal(t, "r3", p.Solution().ID)
	assert.False(t, p.Replies[0].IsSolution)
}

func TestMarkSolutionUnknownReplyChangesNothing(t *testing.T) {
	p := threadWithReplies("r1")
	require.True(t, p.MarkSolution("r1"))

	assert.False(t, p.MarkSolution("missing"))
	assert.True(t, p.Replies[0].IsSolution)
	assert.True(t, p.IsResolved)
}

func TestReplyLookupFollowsAppends(t *testing.T) {
	p := threadWithReplies("r1")
	_, ok := p.ReplyIndex("r1")
	require.True(t, ok)

	p.AppendReply(Reply{ID: "r2"})
	i, ok := p.ReplyIndex("r2")
	require.True(t, ok)
	assert.Equal(t, 1, i)
	assert.Nil(t, p.Reply("r9"))

	p.Reply("r2").Content = "edited"
	assert.Equal(t, "edited", p.Replies[1].Content)
}

func TestRefreshCountsCollections(t *testing.T) {
	p := threadWithReplies("r1", "r2")
	p.Likes.Toggle("carol", time.Now())
	p.Refresh()

	assert.Equal(t, 1, p.LikeCount)
	assert.Equal(t, 2, p.ReplyCount)
	assert.NotNil(t, p.Tags)
}

func TestCloneIsDeep(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	p := threadWithReplies("r1")
	p.Tags = []string{"hem"}
	p.Likes.Toggle("carol", now)
	p.Replies[0].Likes.Toggle("dave", now)
	p.Replies[0].Attachments = []Attachment{{URL: "https://cdn/x.png", Filename: "x.png", FileType: "image/png"}}

	c := p.Clone()
	c.Tags[0] = "seam"
	c.Likes.Toggle("carol", now)
	c.Replies[0].Likes.Toggle("dave", now)
	c.Replies[0].Attachments[0].Filename = "y.png"
	c.MarkSolution("r1")

	assert.Equal(t, "hem", p.Tags[0])
	assert.True(t, p.Likes.Has("carol"))
	assert.True(t, p.Replies[0].Likes.Has("dave"))
	assert.Equal(t, "x.png", p.Replies[0].Attachments[0].Filename)
	assert.False(t, p.Replies[0].IsSolution)
	assert.False(t, p.IsResolved)
}

func TestPostJSONShape(t *testing.T) {
	p := &Post{ID: "p1", Title: "Hem finishing", AuthorID: "alice", Category: CategoryTechniques, Version: 7}
	p.Refresh()

	b, err := json.Marshal(p)
	require.NoError(t, err)

	var raw map[string]any
	require.NoError(t, json.Unmarshal(b, &raw))
	assert.Equal(t, "alice", raw["author"])
	assert.Equal(t, []any{}, raw["replies"])
	assert.Equal(t, []any{}, raw["likes"])
	assert.NotContains(t, raw, "version")
	assert.NotContains(t, raw, "Version")
}
