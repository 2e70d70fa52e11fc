// Package search maintains the denormalized, queryable copy of posts in an
// embedded Bleve index. Documents are keyed by the relational post id; the
// index may briefly lag the relational store, which is authoritative.
package search

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/keyword"
	"github.com/blevesearch/bleve/v2/mapping"

	"github.com/hypermark/blogsearch/errs"
	"github.com/hypermark/blogsearch/models"
)

const (
	titleBoost = 2.0
	maxResults = 10
)

// Hit is one scored search result: the denormalized post fields, a relevance
// score, and optional highlighted fragments per matched field.
type Hit struct {
	ID         uint                `json:"id"`
	Title      string              `json:"title"`
	Content    string              `json:"content"`
	Author     string              `json:"author"`
	CreatedAt  time.Time           `json:"created_at"`
	Tags       []string            `json:"tags,omitempty"`
	Score      float64             `json:"score"`
	Highlights map[string][]string `json:"highlights,omitempty"`
}

// Index wraps a Bleve index. Safe for concurrent use.
type Index struct {
	idx bleve.Index
}

// Open opens the index at path, creating it with the post mapping when it
// does not exist yet. Reopening never alters the mapping of an existing
// index, which makes index provisioning idempotent.
func Open(path string) (*Index, error) {
	idx, err := bleve.Open(path)
	if errors.Is(err, bleve.ErrorIndexPathDoesNotExist) {
		if dir := filepath.Dir(path); dir != "." {
			if mkErr := os.MkdirAll(dir, 0o755); mkErr != nil {
				return nil, mkErr
			}
		}
		idx, err = bleve.New(path, buildMapping())
	}
	if err != nil {
		return nil, err
	}
	return &Index{idx: idx}, nil
}

func buildMapping() mapping.IndexMapping {
	docMapping := bleve.NewDocumentMapping()
	docMapping.AddFieldMappingsAt("title", bleve.NewTextFieldMapping())
	docMapping.AddFieldMappingsAt("content", bleve.NewTextFieldMapping())

	// Exact-match fields keep the raw token.
	authorMapping := bleve.NewTextFieldMapping()
	authorMapping.Analyzer = keyword.Name
	docMapping.AddFieldMappingsAt("author", authorMapping)

	tagsMapping := bleve.NewTextFieldMapping()
	tagsMapping.Analyzer = keyword.Name
	docMapping.AddFieldMappingsAt("tags", tagsMapping)

	docMapping.AddFieldMappingsAt("created_at", bleve.NewDateTimeFieldMapping())

	indexMapping := bleve.NewIndexMapping()
	indexMapping.DefaultMapping = docMapping
	return indexMapping
}

// IndexPost upserts the document for a post, keyed by its relational id.
func (i *Index) IndexPost(ctx context.Context, post *models.BlogPost) error {
	if err := ctx.Err(); err != nil {
		return errs.Index("index post", err)
	}
	doc := map[string]interface{}{
		"title":      post.Title,
		"content":    post.Content,
		"author":     post.Author,
		"created_at": post.CreatedAt,
		"tags":       []string(post.Tags),
	}
	if err := i.idx.Index(docID(post.ID), doc); err != nil {
		return errs.Index("index post", err)
	}
	return nil
}

// Search runs a multi-field full-text query, title weighted twice as high as
// content. Results come back in descending score order with a doc-id
// tie-break, capped at the engine's default window.
func (i *Index) Search(ctx context.Context, queryText string) ([]Hit, error) {
	titleQuery := bleve.NewMatchQuery(queryText)
	titleQuery.SetField("title")
	titleQuery.SetBoost(titleBoost)

	contentQuery := bleve.NewMatchQuery(queryText)
	contentQuery.SetField("content")

	request := bleve.NewSearchRequestOptions(bleve.NewDisjunctionQuery(titleQuery, contentQuery), maxResults, 0, false)
	request.Fields = []string{"title", "content", "author", "created_at", "tags"}
	request.Highlight = bleve.NewHighlight()
	request.Highlight.AddField("title")
	request.Highlight.AddField("content")
	request.SortBy([]string{"-_score", "_id"})

	result, err := i.idx.SearchInContext(ctx, request)
	if err != nil {
		return nil, errs.Index("search", err)
	}

	hits := make([]Hit, 0, len(result.Hits))
	for _, hit := range result.Hits {
		id, err := strconv.ParseUint(hit.ID, 10, 64)
		if err != nil {
			continue
		}
		h := Hit{
			ID:      uint(id),
			Title:   fieldString(hit.Fields, "title"),
			Content: fieldString(hit.Fields, "content"),
			Author:  fieldString(hit.Fields, "author"),
			Tags:    fieldStrings(hit.Fields, "tags"),
			Score:   hit.Score,
		}
		if ts, parseErr := time.Parse(time.RFC3339, fieldString(hit.Fields, "created_at")); parseErr == nil {
			h.CreatedAt = ts
		}
		if len(hit.Fragments) > 0 {
			h.Highlights = map[string][]string(hit.Fragments)
		}
		hits = append(hits, h)
	}
	return hits, nil
}

// Close releases the underlying index.
func (i *Index) Close() error {
	return i.idx.Close()
}

func docID(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}

func fieldString(fields map[string]interface{}, name string) string {
	if s, ok := fields[name].(string); ok {
		return s
	}
	return ""
}

// fieldStrings handles Bleve flattening single-element arrays to a scalar.
func fieldStrings(fields map[string]interface{}, name string) []string {
	switch v := fields[name].(type) {
	case string:
		return []string{v}
	case []interface{}:
		out := make([]string, 0, len(v))
		for _, it := range v {
			if s, ok := it.(string); ok {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}
