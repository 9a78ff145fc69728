package services

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/cppla/forumcore/models"
	"github.com/cppla/forumcore/repository"
)

// QueryEngine serves filtered, sorted and paginated listings.
type QueryEngine struct {
	*core
	pageSize    int
	maxPageSize int
}

// ListParams are the listing inputs as received from a client.
type ListParams struct {
	Category string
	Author   string
	Search   string
	SortBy   string
	Page     int
	Limit    int
}

// Page is one window of a listing.
type Page struct {
	Items []models.Post
	Total int64
	Page  int
	Limit int
	Pages int
}

// List never counts views. Pinned posts always come before unpinned ones;
// the requested sort applies inside each group. A page past the end is
// empty, not an error.
func (q *QueryEngine) List(ctx context.Context, p ListParams) (*Page, error) {
	page, limit := q.window(p.Page, p.Limit)
	items, total, err := q.repo.List(ctx, repository.ListQuery{
		Category: strings.TrimSpace(p.Category),
		Author:   strings.TrimSpace(p.Author),
		Search:   strings.TrimSpace(p.Search),
		Sort:     repository.ParseSort(p.SortBy),
		Offset:   (page - 1) * limit,
		Limit:    limit,
	})
	if err != nil {
		return nil, q.listErr(err)
	}
	if items == nil {
		items = []models.Post{}
	}
	return &Page{
		Items: items,
		Total: total,
		Page:  page,
		Limit: limit,
		Pages: TotalPages(total, limit),
	}, nil
}

// Stats returns forum-wide counters.
func (q *QueryEngine) Stats(ctx context.Context) (repository.Stats, error) {
	st, err := q.repo.Stats(ctx)
	if err != nil {
		return repository.Stats{}, q.listErr(err)
	}
	return st, nil
}

// TotalPages is ceil(total / limit).
func TotalPages(total int64, limit int) int {
	if limit <= 0 || total <= 0 {
		return 0
	}
	return int((total + int64(limit) - 1) / int64(limit))
}

func (q *QueryEngine) window(page, limit int) (int, int) {
	size, maxSize := q.pageSize, q.maxPageSize
	if size <= 0 {
		size = DefaultPageSize
	}
	if maxSize <= 0 {
		maxSize = DefaultMaxPageSize
	}
	if page < 1 {
		page = 1
	}
	if limit <= 0 {
		limit = size
	}
	if limit > maxSize {
		limit = maxSize
	}
	return page, limit
}

func (q *QueryEngine) listErr(err error) error {
	q.log.Error("listing query failed", zap.Error(err))
	return fmt.Errorf("%w: list posts: %v", ErrPersistence, err)
}
