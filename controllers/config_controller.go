package controllers

import (
	"github.com/gin-gonic/gin"

	"github.com/cppla/forumcore/config"
	"github.com/cppla/forumcore/models"
	"github.com/cppla/forumcore/utils"
)

// ConfigController serves the forum settings a client needs to build its
// filter and paging controls.
type ConfigController struct{}

func NewConfigController() *ConfigController { return &ConfigController{} }

// GetForumConfig returns the categories, sort keys and page size limits.
func (c *ConfigController) GetForumConfig(ctx *gin.Context) {
	cfg := config.Get()
	utils.Success(ctx, gin.H{
		"categories":      models.Categories,
		"sortKeys":        []string{"recent", "popular", "views", "title", "category", "createdAt", "updatedAt", "likeCount", "replyCount"},
		"defaultPageSize": cfg.DefaultPageSize,
		"maxPageSize":     cfg.MaxPageSize,
	})
}
