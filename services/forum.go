// Package services holds the forum engines: the post store, the query
// engine, likes, and moderation. Engines never talk to a database directly;
// they read and conditionally write whole aggregates through a
// repository.Repository.
package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/cppla/forumcore/models"
	"github.com/cppla/forumcore/repository"
	"github.com/cppla/forumcore/utils"
)

const (
	// DefaultMaxConflictRetries bounds how often a mutation is re-applied
	// after losing a compare-and-swap race.
	DefaultMaxConflictRetries = 5
	DefaultPageSize           = 10
	DefaultMaxPageSize        = 100
)

// Options tune the engines. Zero values select defaults.
type Options struct {
	Logger             *zap.Logger
	Clock              func() time.Time
	Sanitize           func(string) string
	SanitizePlain      func(string) string
	MaxConflictRetries int
	PageSize           int
	MaxPageSize        int
}

// Forum bundles the engines sharing one repository.
type Forum struct {
	Posts      *PostStore
	Query      *QueryEngine
	Engagement *Engagement
	Moderation *Moderation
}

// New wires every engine against repo.
func New(repo repository.Repository, opts Options) *Forum {
	c := newCore(repo, opts)
	return &Forum{
		Posts:      &PostStore{core: c},
		Query:      &QueryEngine{core: c, pageSize: opts.PageSize, maxPageSize: opts.MaxPageSize},
		Engagement: &Engagement{core: c},
		Moderation: &Moderation{core: c},
	}
}

type core struct {
	repo     repository.Repository
	log      *zap.Logger
	now      func() time.Time
	sanitize func(string) string
	plain    func(string) string
	retries  int
}

func newCore(repo repository.Repository, opts Options) *core {
	c := &core{
		repo:     repo,
		log:      opts.Logger,
		now:      opts.Clock,
		sanitize: opts.Sanitize,
		plain:    opts.SanitizePlain,
		retries:  opts.MaxConflictRetries,
	}
	if c.log == nil {
		c.log = zap.NewNop()
	}
	if c.now == nil {
		c.now = time.Now
	}
	if c.sanitize == nil {
		c.sanitize = utils.Sanitize
	}
	if c.plain == nil {
		c.plain = utils.SanitizePlain
	}
	if c.retries <= 0 {
		c.retries = DefaultMaxConflictRetries
	}
	return c
}

func (c *core) newID() string {
	return uuid.Must(uuid.NewV7()).String()
}

// load reads a post and translates repository errors.
func (c *core) load(ctx context.Context, id string) (*models.Post, error) {
	post, err := c.repo.FindByID(ctx, id)
	if err != nil {
		return nil, c.storeErr(err, "load", id)
	}
	return post, nil
}

// mutate runs read, apply, conditional write for one aggregate. When the
// write loses a race the whole cycle is repeated against the fresh state, so
// concurrent likes and replies are never dropped. apply must be free of side
// effects outside the post it is given.
func (c *core) mutate(ctx context.Context, id, op string, apply func(*models.Post) error) (*models.Post, error) {
	for attempt := 1; ; attempt++ {
		post, err := c.load(ctx, id)
		if err != nil {
			return nil, err
		}
		if err := apply(post); err != nil {
			return nil, err
		}
		post.Touch(c.now())

		err = c.repo.Update(ctx, post)
		if err == nil {
			return post, nil
		}
		if !errors.Is(err, repository.ErrConflict) {
			return nil, c.storeErr(err, op, id)
		}
		if attempt > c.retries {
			c.log.Warn("giving up after repeated write conflicts",
				zap.String("op", op), zap.String("post_id", id), zap.Int("attempts", attempt))
			return nil, fmt.Errorf("%w: post %s is being modified too frequently, try again", ErrPersistence, id)
		}
		c.log.Debug("write conflict, retrying",
			zap.String("op", op), zap.String("post_id", id), zap.Int("attempt", attempt))
	}
}

func (c *core) storeErr(err error, op, id string) error {
	if errors.Is(err, repository.ErrNotFound) {
		return fmt.Errorf("%w: post %s does not exist", ErrNotFound, id)
	}
	c.log.Error("repository call failed",
		zap.String("op", op), zap.String("post_id", id), zap.Error(err))
	return fmt.Errorf("%w: %s post %s: %v", ErrPersistence, op, id, err)
}
