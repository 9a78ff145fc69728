package controllers

import (
	"github.com/gin-gonic/gin"

	"github.com/cppla/forumcore/models"
	"github.com/cppla/forumcore/services"
	"github.com/cppla/forumcore/utils"
)

// StatsController provides forum statistics.
type StatsController struct {
	forum *services.Forum
}

// NewStatsController creates a new StatsController instance.
func NewStatsController(forum *services.Forum) *StatsController {
	return &StatsController{forum: forum}
}

// GetStats returns aggregate statistics for the forum.
func (s *StatsController) GetStats(ctx *gin.Context) {
	st, err := s.forum.Query.Stats(ctx.Request.Context())
	if err != nil {
		respondError(ctx, err)
		return
	}

	// Report every category, including empty ones
	byCategory := make(map[string]int64, len(models.Categories))
	for _, c := range models.Categories {
		byCategory[string(c)] = st.ByCategory[string(c)]
	}

	utils.Success(ctx, gin.H{
		"post_count":     st.Posts,
		"reply_count":    st.Replies,
		"resolved_count": st.ResolvedPosts,
		"pinned_count":   st.PinnedPosts,
		"by_category":    byCategory,
	})
}
