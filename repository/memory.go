package repository

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/cppla/forumcore/models"
)

// MemoryRepository keeps aggregates in process. Every read returns a deep
// copy, so callers can never mutate stored state without going through Update.
type MemoryRepository struct {
	mu    sync.RWMutex
	posts map[string]*models.Post
}

// NewMemoryRepository returns an empty store.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{posts: map[string]*models.Post{}}
}

func (r *MemoryRepository) Insert(ctx context.Context, post *models.Post) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	post.Refresh()
	r.posts[post.ID] = post.Clone()
	return nil
}

func (r *MemoryRepository) FindByID(ctx context.Context, id string) (*models.Post, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.posts[id]
	if !ok {
		return nil, ErrNotFound
	}
	return p.Clone(), nil
}

func (r *MemoryRepository) Update(ctx context.Context, post *models.Post) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.posts[post.ID]
	if !ok {
		return ErrNotFound
	}
	if stored.Version != post.Version {
		return ErrConflict
	}

	post.Version++
	post.Refresh()
	next := post.Clone()
	next.Views = stored.Views
	next.AuthorID = stored.AuthorID
	next.CreatedAt = stored.CreatedAt
	r.posts[post.ID] = next
	return nil
}

func (r *MemoryRepository) Delete(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.posts[id]; !ok {
		return ErrNotFound
	}
	delete(r.posts, id)
	return nil
}

func (r *MemoryRepository) IncrementViews(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.posts[id]
	if !ok {
		return ErrNotFound
	}
	p.Views++
	return nil
}

func (r *MemoryRepository) List(ctx context.Context, q ListQuery) ([]models.Post, int64, error) {
	if err := ctx.Err(); err != nil {
		return nil, 0, err
	}
	r.mu.RLock()
	matched := make([]*models.Post, 0, len(r.posts))
	for _, p := range r.posts {
		if matches(p, q) {
			matched = append(matched, p.Clone())
		}
	}
	r.mu.RUnlock()

	field := sortOrDefault(q.Sort)
	sort.SliceStable(matched, func(i, j int) bool {
		return less(matched[i], matched[j], field)
	})

	total := int64(len(matched))
	out := []models.Post{}
	if q.Limit <= 0 || q.Offset >= len(matched) {
		return out, total, nil
	}
	end := q.Offset + q.Limit
	if end > len(matched) {
		end = len(matched)
	}
	for _, p := range matched[q.Offset:end] {
		out = append(out, *p)
	}
	return out, total, nil
}

func (r *MemoryRepository) Stats(ctx context.Context) (Stats, error) {
	if err := ctx.Err(); err != nil {
		return Stats{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	st := Stats{ByCategory: map[string]int64{}}
	for _, p := range r.posts {
		st.Posts++
		st.Replies += int64(len(p.Replies))
		if p.IsResolved {
			st.ResolvedPosts++
		}
		if p.IsPinned {
			st.PinnedPosts++
		}
		st.ByCategory[string(p.Category)]++
	}
	return st, nil
}

func matches(p *models.Post, q ListQuery) bool {
	if q.Category != "" && string(p.Category) != q.Category {
		return false
	}
	if q.Author != "" && p.AuthorID != q.Author {
		return false
	}
	s := strings.TrimSpace(q.Search)
	if s == "" {
		return true
	}
	s = models.FoldSearch(s)
	if strings.Contains(models.FoldSearch(p.Title), s) || strings.Contains(models.FoldSearch(p.Content), s) {
		return true
	}
	for _, tag := range p.Tags {
		if strings.Contains(models.FoldSearch(tag), s) {
			return true
		}
	}
	return false
}

// less orders a before b: pinned first, then field descending, then newest
// and highest id.
func less(a, b *models.Post, field SortField) bool {
	if a.IsPinned != b.IsPinned {
		return a.IsPinned
	}
	if c := compareField(a, b, field); c != 0 {
		return c > 0
	}
	if !a.CreatedAt.Equal(b.CreatedAt) {
		return a.CreatedAt.After(b.CreatedAt)
	}
	return a.ID > b.ID
}

func compareField(a, b *models.Post, field SortField) int {
	switch field {
	case SortLikeCount:
		return cmpInt(int64(a.Likes.Len()), int64(b.Likes.Len()))
	case SortReplyCount:
		return cmpInt(int64(len(a.Replies)), int64(len(b.Replies)))
	case SortViews:
		return cmpInt(a.Views, b.Views)
	case SortTitle:
		return strings.Compare(a.Title, b.Title)
	case SortCategory:
		return strings.Compare(string(a.Category), string(b.Category))
	case SortUpdatedAt:
		return a.UpdatedAt.Compare(b.UpdatedAt)
	default:
		return a.CreatedAt.Compare(b.CreatedAt)
	}
}

func cmpInt(a, b int64) int {
	switch {
	case a > b:
		return 1
	case a < b:
		return -1
	}
	return 0
}
