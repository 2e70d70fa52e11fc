package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/hypermark/blogsearch/errs"
	"github.com/hypermark/blogsearch/services"
	"github.com/hypermark/blogsearch/utils"
)

// PostController exposes create and lookup of blog posts.
type PostController struct {
	svc *services.PostService
}

// NewPostController creates a new PostController instance.
func NewPostController(svc *services.PostService) *PostController {
	return &PostController{svc: svc}
}

type createPostRequest struct {
	Title   string   `json:"title"`
	Content string   `json:"content"`
	Author  string   `json:"author"`
	Tags    []string `json:"tags"`
}

// CreatePost persists a new post and mirrors it into the search index.
// Fields come from the JSON body, falling back to query parameters.
func (p *PostController) CreatePost(ctx *gin.Context) {
	var req createPostRequest
	_ = ctx.ShouldBindJSON(&req)
	if req.Title == "" {
		req.Title = ctx.Query("title")
	}
	if req.Content == "" {
		req.Content = ctx.Query("content")
	}
	if req.Author == "" {
		req.Author = ctx.Query("author")
	}
	if len(req.Tags) == 0 {
		req.Tags = ctx.QueryArray("tags")
	}

	post, err := p.svc.CreatePost(ctx.Request.Context(), req.Title, req.Content, req.Author, req.Tags)
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{
		"message": "Post created successfully",
		"post":    post,
	})
}

// GetPost returns a single post by id, cache first.
func (p *PostController) GetPost(ctx *gin.Context) {
	id, err := strconv.ParseUint(ctx.Param("id"), 10, 64)
	if err != nil {
		utils.Fail(ctx, http.StatusUnprocessableEntity, "path parameter id must be an integer")
		return
	}

	post, svcErr := p.svc.GetPost(ctx.Request.Context(), uint(id))
	if svcErr != nil {
		writeServiceError(ctx, svcErr)
		return
	}
	ctx.JSON(http.StatusOK, post)
}

// ListTags returns the normalized tags with post counts.
func (p *PostController) ListTags(ctx *gin.Context) {
	tags, err := p.svc.ListTags(ctx.Request.Context())
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{
		"tags":  tags,
		"count": len(tags),
	})
}

// writeServiceError maps the service error taxonomy onto HTTP statuses.
// Server-side failures get a generic message; internals stay in the logs.
func writeServiceError(ctx *gin.Context, err error) {
	switch {
	case errs.IsValidation(err):
		utils.Fail(ctx, http.StatusUnprocessableEntity, err.Error())
	case errs.IsNotFound(err):
		utils.Fail(ctx, http.StatusNotFound, "Post not found")
	case errs.IsIndex(err):
		utils.Fail(ctx, http.StatusInternalServerError, "search is temporarily unavailable")
	default:
		utils.Fail(ctx, http.StatusInternalServerError, "internal server error")
	}
}
