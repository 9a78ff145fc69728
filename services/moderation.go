package services

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/cppla/forumcore/models"
)

// Moderation appends replies, picks accepted solutions and flips the
// pin and lock flags.
type Moderation struct {
	*core
}

// ReplyInput is the user supplied part of a reply.
type ReplyInput struct {
	Content     string
	Attachments []models.Attachment
}

// ModerationFlags are independent; nil leaves a flag unchanged.
type ModerationFlags struct {
	IsPinned *bool `json:"isPinned"`
	IsLocked *bool `json:"isLocked"`
}

// AddReply appends a reply by caller. Locked posts reject new replies and
// stay unchanged.
func (m *Moderation) AddReply(ctx context.Context, postID string, caller Caller, in ReplyInput) (*models.Post, error) {
	if !caller.Authenticated() {
		return nil, fmt.Errorf("%w: sign in to reply", ErrForbidden)
	}
	content := m.sanitize(strings.TrimSpace(in.Content))
	if content == "" {
		return nil, fmt.Errorf("%w: reply content cannot be empty", ErrValidation)
	}
	attachments := append([]models.Attachment{}, in.Attachments...)
	replyID := m.newID()

	post, err := m.mutate(ctx, postID, "reply", func(p *models.Post) error {
		if p.IsLocked {
			return fmt.Errorf("%w: post %s no longer accepts replies", ErrLocked, postID)
		}
		p.AppendReply(models.Reply{
			ID:          replyID,
			AuthorID:    caller.ID,
			Content:     content,
			Attachments: attachments,
			Likes:       models.LikeSet{},
			CreatedAt:   m.now(),
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	m.log.Info("reply added",
		zap.String("post_id", postID), zap.String("reply_id", replyID), zap.String("author", caller.ID))
	return post, nil
}

// MarkAsSolution makes replyID the single accepted answer and resolves the
// post. The previous solution, if any, is cleared in the same write.
func (m *Moderation) MarkAsSolution(ctx context.Context, postID string, caller Caller, replyID string) (*models.Post, error) {
	post, err := m.mutate(ctx, postID, "mark solution", func(p *models.Post) error {
		if !CanMutate(p, caller, ActionMarkSolution) {
			return fmt.Errorf("%w: only the post author can mark a solution", ErrForbidden)
		}
		if !p.MarkSolution(replyID) {
			return fmt.Errorf("%w: reply %s does not exist in post %s", ErrNotFound, replyID, postID)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	m.log.Info("solution marked", zap.String("post_id", postID), zap.String("reply_id", replyID))
	return post, nil
}

// SetModerationFlags pins/unpins and locks/unlocks a post.
func (m *Moderation) SetModerationFlags(ctx context.Context, postID string, caller Caller, flags ModerationFlags) (*models.Post, error) {
	post, err := m.mutate(ctx, postID, "moderate", func(p *models.Post) error {
		if !CanMutate(p, caller, ActionModerate) {
			return fmt.Errorf("%w: only the author or an admin can moderate this post", ErrForbidden)
		}
		if flags.IsPinned != nil {
			p.IsPinned = *flags.IsPinned
		}
		if flags.IsLocked != nil {
			p.IsLocked = *flags.IsLocked
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	m.log.Info("moderation flags changed",
		zap.String("post_id", postID), zap.String("by", caller.ID),
		zap.Bool("pinned", post.IsPinned), zap.Bool("locked", post.IsLocked))
	return post, nil
}
