package services

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/cppla/forumcore/models"
)

// PostStore creates, reads, edits and removes posts.
type PostStore struct {
	*core
}

// CreateInput carries the user supplied fields of a new post. Any author
// information a client sends is ignored.
type CreateInput struct {
	Title    string
	Content  string
	Category string
	Tags     []string
}

// PostPatch holds the fields an edit may overwrite. Nil fields keep their
// stored value.
type PostPatch struct {
	Title    *string   `json:"title"`
	Content  *string   `json:"content"`
	Category *string   `json:"category"`
	Tags     *[]string `json:"tags"`
	IsPinned *bool     `json:"isPinned"`
	IsLocked *bool     `json:"isLocked"`
}

// Create stores a new post authored by caller.
func (s *PostStore) Create(ctx context.Context, caller Caller, in CreateInput) (*models.Post, error) {
	if !caller.Authenticated() {
		return nil, fmt.Errorf("%w: sign in to create posts", ErrForbidden)
	}
	title := s.plain(strings.TrimSpace(in.Title))
	content := s.sanitize(strings.TrimSpace(in.Content))
	if title == "" || content == "" {
		return nil, fmt.Errorf("%w: title and content are required", ErrValidation)
	}
	category, ok := models.ParseCategory(strings.TrimSpace(in.Category))
	if !ok {
		return nil, fmt.Errorf("%w: unknown category %q", ErrValidation, in.Category)
	}

	now := s.now()
	post := &models.Post{
		ID:        s.newID(),
		Title:     title,
		Content:   content,
		AuthorID:  caller.ID,
		Category:  category,
		Tags:      s.cleanTags(in.Tags),
		Version:   1,
		CreatedAt: now,
		UpdatedAt: now,
	}
	post.Refresh()

	if err := s.repo.Insert(ctx, post); err != nil {
		return nil, s.storeErr(err, "create", post.ID)
	}
	s.log.Info("post created",
		zap.String("post_id", post.ID), zap.String("author", caller.ID), zap.String("category", string(category)))
	return post, nil
}

// Get returns a post without counting a view.
func (s *PostStore) Get(ctx context.Context, id string) (*models.Post, error) {
	return s.load(ctx, id)
}

// IncrementViews atomically counts one view and returns the post as stored
// afterwards.
func (s *PostStore) IncrementViews(ctx context.Context, id string) (*models.Post, error) {
	if err := s.repo.IncrementViews(ctx, id); err != nil {
		return nil, s.storeErr(err, "count view of", id)
	}
	return s.load(ctx, id)
}

// View is the single post display read. It always counts a view.
func (s *PostStore) View(ctx context.Context, id string) (*models.Post, error) {
	return s.IncrementViews(ctx, id)
}

// Update merges patch into the post. Only the author or an admin may edit.
func (s *PostStore) Update(ctx context.Context, id string, caller Caller, patch PostPatch) (*models.Post, error) {
	var title, content string
	var category models.Category
	if patch.Title != nil {
		if title = s.plain(strings.TrimSpace(*patch.Title)); title == "" {
			return nil, fmt.Errorf("%w: title cannot be empty", ErrValidation)
		}
	}
	if patch.Content != nil {
		if content = s.sanitize(strings.TrimSpace(*patch.Content)); content == "" {
			return nil, fmt.Errorf("%w: content cannot be empty", ErrValidation)
		}
	}
	if patch.Category != nil {
		c, ok := models.ParseCategory(strings.TrimSpace(*patch.Category))
		if !ok {
			return nil, fmt.Errorf("%w: unknown category %q", ErrValidation, *patch.Category)
		}
		category = c
	}

	return s.mutate(ctx, id, "update", func(p *models.Post) error {
		if !CanMutate(p, caller, ActionUpdate) {
			return fmt.Errorf("%w: you can only update your own posts", ErrForbidden)
		}
		if patch.Title != nil {
			p.Title = title
		}
		if patch.Content != nil {
			p.Content = content
		}
		if patch.Category != nil {
			p.Category = category
		}
		if patch.Tags != nil {
			p.Tags = s.cleanTags(*patch.Tags)
		}
		if patch.IsPinned != nil {
			p.IsPinned = *patch.IsPinned
		}
		if patch.IsLocked != nil {
			p.IsLocked = *patch.IsLocked
		}
		return nil
	})
}

// Delete removes the post and every reply in it.
func (s *PostStore) Delete(ctx context.Context, id string, caller Caller) error {
	post, err := s.load(ctx, id)
	if err != nil {
		return err
	}
	if !CanMutate(post, caller, ActionDelete) {
		return fmt.Errorf("%w: you can only delete your own posts", ErrForbidden)
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return s.storeErr(err, "delete", id)
	}
	s.log.Info("post deleted",
		zap.String("post_id", id), zap.String("by", caller.ID), zap.Int("replies", len(post.Replies)))
	return nil
}

// cleanTags trims tags and drops blanks. Order and duplicates are kept.
func (s *PostStore) cleanTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		if t = s.plain(strings.TrimSpace(t)); t != "" {
			out = append(out, t)
		}
	}
	return out
}
