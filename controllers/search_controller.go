package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/hypermark/blogsearch/services"
)

// SearchController exposes full-text search over indexed posts.
type SearchController struct {
	svc *services.PostService
}

// NewSearchController creates a new SearchController instance.
func NewSearchController(svc *services.PostService) *SearchController {
	return &SearchController{svc: svc}
}

// SearchPosts runs a multi-field query and returns scored hits with
// highlights, best match first.
func (s *SearchController) SearchPosts(ctx *gin.Context) {
	hits, err := s.svc.SearchPosts(ctx.Request.Context(), ctx.Query("query"))
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{
		"results": hits,
		"count":   len(hits),
	})
}
