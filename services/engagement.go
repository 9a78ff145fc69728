package services

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/cppla/forumcore/models"
)

// Engagement toggles likes on posts and replies.
type Engagement struct {
	*core
}

// ToggleLike likes the target for caller, or removes the like when one is
// already present. An empty replyID targets the post itself. Applying it
// twice in a row restores the original like set.
func (e *Engagement) ToggleLike(ctx context.Context, postID string, caller Caller, replyID string) (*models.Post, error) {
	if !caller.Authenticated() {
		return nil, fmt.Errorf("%w: sign in to like posts", ErrForbidden)
	}
	var liked bool
	post, err := e.mutate(ctx, postID, "like", func(p *models.Post) error {
		if replyID == "" {
			liked = p.Likes.Toggle(caller.ID, e.now())
			return nil
		}
		r := p.Reply(replyID)
		if r == nil {
			return fmt.Errorf("%w: reply %s does not exist in post %s", ErrNotFound, replyID, postID)
		}
		liked = r.Likes.Toggle(caller.ID, e.now())
		return nil
	})
	if err != nil {
		return nil, err
	}
	e.log.Debug("like toggled",
		zap.String("post_id", postID), zap.String("reply_id", replyID),
		zap.String("user", caller.ID), zap.Bool("liked", liked))
	return post, nil
}
