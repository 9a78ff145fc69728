// Package repository persists Post aggregates. A post, its replies and its
// likes are always read and written as one row so that every write is
// atomic for the whole aggregate.
package repository

import (
	"context"
	"errors"
	"strings"

	"github.com/cppla/forumcore/models"
)

var (
	// ErrNotFound is returned when no post matches the id.
	ErrNotFound = errors.New("post not found")
	// ErrConflict is returned by Update when the stored version moved on.
	ErrConflict = errors.New("post was modified concurrently")
)

// Repository is the persistence service consumed by the forum engines.
type Repository interface {
	// Insert stores a new aggregate. The caller sets ID and Version.
	Insert(ctx context.Context, post *models.Post) error
	// FindByID loads the aggregate or returns ErrNotFound.
	FindByID(ctx context.Context, id string) (*models.Post, error)
	// Update writes the aggregate only if the stored version still equals
	// post.Version, then bumps post.Version. Views, author and creation
	// time are never written by Update.
	Update(ctx context.Context, post *models.Post) error
	// Delete removes the aggregate with all of its replies.
	Delete(ctx context.Context, id string) error
	// IncrementViews atomically adds one view.
	IncrementViews(ctx context.Context, id string) error
	// List returns one page of posts and the total number of matches.
	List(ctx context.Context, q ListQuery) ([]models.Post, int64, error)
	// Stats aggregates forum-wide counters.
	Stats(ctx context.Context) (Stats, error)
}

// SortField names a column listings can be ordered by. Ordering is always
// descending and always after the pinned partition.
type SortField string

const (
	SortCreatedAt  SortField = "created_at"
	SortUpdatedAt  SortField = "updated_at"
	SortLikeCount  SortField = "like_count"
	SortReplyCount SortField = "reply_count"
	SortViews      SortField = "views"
	SortTitle      SortField = "title"
	SortCategory   SortField = "category"
)

var sortAliases = map[string]SortField{
	"popular":     SortLikeCount,
	"recent":      SortCreatedAt,
	"createdAt":   SortCreatedAt,
	"created_at":  SortCreatedAt,
	"updatedAt":   SortUpdatedAt,
	"updated_at":  SortUpdatedAt,
	"likes":       SortLikeCount,
	"likeCount":   SortLikeCount,
	"like_count":  SortLikeCount,
	"replies":     SortReplyCount,
	"replyCount":  SortReplyCount,
	"reply_count": SortReplyCount,
	"views":       SortViews,
	"title":       SortTitle,
	"category":    SortCategory,
}

// ParseSort maps a requested sort key to a column. Unknown keys fall back to
// creation time.
func ParseSort(key string) SortField {
	if f, ok := sortAliases[strings.TrimSpace(key)]; ok {
		return f
	}
	return SortCreatedAt
}

// ListQuery filters, orders and windows a listing.
type ListQuery struct {
	Category string
	Author   string
	Search   string
	Sort     SortField
	Offset   int
	Limit    int
}

// Stats are forum-wide counters.
type Stats struct {
	Posts         int64            `json:"posts"`
	Replies       int64            `json:"replies"`
	ResolvedPosts int64            `json:"resolvedPosts"`
	PinnedPosts   int64            `json:"pinnedPosts"`
	ByCategory    map[string]int64 `json:"byCategory"`
}
