package controllers

import (
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/cppla/forumcore/middleware"
	"github.com/cppla/forumcore/models"
	"github.com/cppla/forumcore/repository"
	"github.com/cppla/forumcore/services"
	"github.com/cppla/forumcore/utils"
)

// PostController serves posts, replies, likes and moderation.
type PostController struct {
	forum    *services.Forum
	cacheTTL time.Duration
}

// NewPostController creates a new PostController instance.
func NewPostController(forum *services.Forum, cacheTTL time.Duration) *PostController {
	return &PostController{forum: forum, cacheTTL: cacheTTL}
}

// ListPosts returns a filtered, sorted page of posts.
func (p *PostController) ListPosts(ctx *gin.Context) {
	params := listParams(ctx)

	cached := cacheableListing(params)
	cacheKey := utils.ListCacheKey("all", url.Values{
		"category": {params.Category},
		"search":   {params.Search},
		"sortBy":   {params.SortBy},
		"page":     {strconv.Itoa(params.Page)},
		"limit":    {strconv.Itoa(params.Limit)},
	})
	if cached {
		if b, ok := utils.CacheGetBytes(cacheKey); ok {
			ctx.Data(http.StatusOK, "application/json; charset=utf-8", b)
			return
		}
	}

	page, err := p.forum.Query.List(ctx.Request.Context(), params)
	if err != nil {
		respondError(ctx, err)
		return
	}
	body := pageBody(page)
	if cached {
		utils.CacheSetJSON(cacheKey, body, p.cacheTTL)
	}
	utils.Respond(ctx, http.StatusOK, body)
}

// cacheableListing reports whether a listing may be served from cache.
// Views change on every read without invalidating, so views order is always live.
func cacheableListing(params services.ListParams) bool {
	return repository.ParseSort(params.SortBy) != repository.SortViews
}

// ListMyPosts returns posts created by the authenticated user.
func (p *PostController) ListMyPosts(ctx *gin.Context) {
	caller, ok := requireCaller(ctx)
	if !ok {
		return
	}
	params := listParams(ctx)
	params.Author = caller.ID
	page, err := p.forum.Query.List(ctx.Request.Context(), params)
	if err != nil {
		respondError(ctx, err)
		return
	}
	utils.Respond(ctx, http.StatusOK, pageBody(page))
}

// GetPost returns a single post and counts the view.
func (p *PostController) GetPost(ctx *gin.Context) {
	post, err := p.forum.Posts.View(ctx.Request.Context(), ctx.Param("id"))
	if err != nil {
		respondError(ctx, err)
		return
	}
	utils.Success(ctx, post)
}

// CreatePost allows authenticated users to create new posts.
func (p *PostController) CreatePost(ctx *gin.Context) {
	var req struct {
		Title    string   `json:"title"`
		Content  string   `json:"content"`
		Category string   `json:"category"`
		Tags     []string `json:"tags"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40010, "invalid request payload")
		return
	}
	caller, ok := requireCaller(ctx)
	if !ok {
		return
	}

	post, err := p.forum.Posts.Create(ctx.Request.Context(), caller, services.CreateInput{
		Title:    req.Title,
		Content:  req.Content,
		Category: req.Category,
		Tags:     req.Tags,
	})
	if err != nil {
		respondError(ctx, err)
		return
	}
	invalidateLists()
	utils.Created(ctx, post)
}

// UpdatePost merges the supplied fields into the post.
func (p *PostController) UpdatePost(ctx *gin.Context) {
	var patch services.PostPatch
	if err := ctx.ShouldBindJSON(&patch); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40011, "invalid request payload")
		return
	}
	caller, ok := requireCaller(ctx)
	if !ok {
		return
	}
	post, err := p.forum.Posts.Update(ctx.Request.Context(), ctx.Param("id"), caller, patch)
	if err != nil {
		respondError(ctx, err)
		return
	}
	invalidateLists()
	utils.Success(ctx, post)
}

// DeletePost removes a post together with its replies.
func (p *PostController) DeletePost(ctx *gin.Context) {
	caller, ok := requireCaller(ctx)
	if !ok {
		return
	}
	if err := p.forum.Posts.Delete(ctx.Request.Context(), ctx.Param("id"), caller); err != nil {
		respondError(ctx, err)
		return
	}
	invalidateLists()
	utils.Message(ctx, "post deleted")
}

// AddReply appends a reply unless the post is locked.
func (p *PostController) AddReply(ctx *gin.Context) {
	var req struct {
		Content     string              `json:"content"`
		Attachments []models.Attachment `json:"attachments"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40012, "invalid request payload")
		return
	}
	caller, ok := requireCaller(ctx)
	if !ok {
		return
	}
	post, err := p.forum.Moderation.AddReply(ctx.Request.Context(), ctx.Param("id"), caller, services.ReplyInput{
		Content:     req.Content,
		Attachments: req.Attachments,
	})
	if err != nil {
		respondError(ctx, err)
		return
	}
	invalidateLists()
	utils.Created(ctx, post)
}

// ToggleLike likes or unlikes the post, or one of its replies when the
// route carries a reply id.
func (p *PostController) ToggleLike(ctx *gin.Context) {
	caller, ok := requireCaller(ctx)
	if !ok {
		return
	}
	post, err := p.forum.Engagement.ToggleLike(ctx.Request.Context(), ctx.Param("id"), caller, ctx.Param("replyId"))
	if err != nil {
		respondError(ctx, err)
		return
	}
	invalidateLists()
	utils.Success(ctx, post)
}

// MarkAsSolution accepts a reply as the answer to the post.
func (p *PostController) MarkAsSolution(ctx *gin.Context) {
	caller, ok := requireCaller(ctx)
	if !ok {
		return
	}
	post, err := p.forum.Moderation.MarkAsSolution(ctx.Request.Context(), ctx.Param("id"), caller, ctx.Param("replyId"))
	if err != nil {
		respondError(ctx, err)
		return
	}
	invalidateLists()
	utils.Success(ctx, post)
}

// SetModerationFlags pins or locks a post.
func (p *PostController) SetModerationFlags(ctx *gin.Context) {
	var flags services.ModerationFlags
	if err := ctx.ShouldBindJSON(&flags); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40013, "invalid request payload")
		return
	}
	caller, ok := requireCaller(ctx)
	if !ok {
		return
	}
	post, err := p.forum.Moderation.SetModerationFlags(ctx.Request.Context(), ctx.Param("id"), caller, flags)
	if err != nil {
		respondError(ctx, err)
		return
	}
	invalidateLists()
	utils.Success(ctx, post)
}

func listParams(ctx *gin.Context) services.ListParams {
	page, _ := strconv.Atoi(ctx.Query("page"))
	limit, _ := strconv.Atoi(ctx.Query("limit"))
	return services.ListParams{
		Category: strings.TrimSpace(ctx.Query("category")),
		Search:   strings.TrimSpace(ctx.Query("search")),
		SortBy:   strings.TrimSpace(ctx.Query("sortBy")),
		Page:     page,
		Limit:    limit,
	}
}

func pageBody(page *services.Page) utils.JSONResponse {
	return utils.PageResponse(page.Items, len(page.Items), page.Total, page.Page, page.Pages)
}

func requireCaller(ctx *gin.Context) (services.Caller, bool) {
	caller := middleware.CallerFrom(ctx)
	if !caller.Authenticated() {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return caller, false
	}
	return caller, true
}

// Every mutation can move a post between listing pages.
func invalidateLists() {
	utils.InvalidateByPrefix(utils.PostsCachePrefix)
}
