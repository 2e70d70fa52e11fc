// Package services orchestrates the three store adapters. The relational
// write is authoritative; the index write is best-effort; the cache is an
// optimization whose failures degrade to store reads.
package services

import (
	"context"
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/datatypes"

	"github.com/hypermark/blogsearch/errs"
	"github.com/hypermark/blogsearch/models"
	"github.com/hypermark/blogsearch/search"
	"github.com/hypermark/blogsearch/utils"
)

const (
	cacheKeyPrefix = "post:"
	// Cached lookups expire after one hour; posts are immutable once
	// created, so there is no invalidation on write.
	cacheTTL = 3600 * time.Second
)

// PostStore is the relational adapter contract.
type PostStore interface {
	CreatePost(ctx context.Context, post *models.BlogPost) error
	GetPostByID(ctx context.Context, id uint) (*models.BlogPost, error)
	EnsureTags(ctx context.Context, names []string) ([]models.Tag, error)
	AttachTags(ctx context.Context, postID uint, tagIDs []uint) error
	ListTags(ctx context.Context) ([]models.TagWithCount, error)
}

// SearchIndex is the search adapter contract.
type SearchIndex interface {
	IndexPost(ctx context.Context, post *models.BlogPost) error
	Search(ctx context.Context, queryText string) ([]search.Hit, error)
}

// Cache is the key-value adapter contract. Both operations are infallible
// from the caller's point of view: errors surface as misses or no-ops.
type Cache interface {
	GetBytes(ctx context.Context, key string) ([]byte, bool)
	SetBytes(ctx context.Context, key string, b []byte, ttl time.Duration)
}

// PostService implements the three exposed operations across the adapters.
type PostService struct {
	store PostStore
	index SearchIndex
	cache Cache
	sugar *zap.SugaredLogger
}

// NewPostService wires explicitly constructed adapters together.
func NewPostService(store PostStore, index SearchIndex, cache Cache, sugar *zap.SugaredLogger) *PostService {
	if sugar == nil {
		sugar = zap.NewNop().Sugar()
	}
	return &PostService{store: store, index: index, cache: cache, sugar: sugar}
}

// CreatePost validates input, persists the post, then mirrors it into the
// search index. The relational write decides success; an index failure is
// logged and swallowed, so the index may lag until the post is re-indexed.
func (s *PostService) CreatePost(ctx context.Context, title, content, author string, tags []string) (*models.BlogPost, error) {
	switch {
	case strings.TrimSpace(title) == "":
		return nil, errs.Validation("title")
	case strings.TrimSpace(content) == "":
		return nil, errs.Validation("content")
	case strings.TrimSpace(author) == "":
		return nil, errs.Validation("author")
	}

	post := &models.BlogPost{
		Title:   utils.Sanitize(strings.TrimSpace(title)),
		Content: utils.Sanitize(content),
		Author:  strings.TrimSpace(author),
	}
	if len(tags) > 0 {
		post.Tags = datatypes.JSONSlice[string](tags)
	}

	if err := s.store.CreatePost(ctx, post); err != nil {
		return nil, err
	}

	// Normalized tag rows ride along with the create; the post itself is
	// already committed, so failures here only cost tag metadata.
	if len(tags) > 0 {
		if tagRows, err := s.store.EnsureTags(ctx, tags); err != nil {
			s.sugar.Warnf("tag upsert failed for post %d: %v", post.ID, err)
		} else {
			ids := make([]uint, 0, len(tagRows))
			for _, t := range tagRows {
				ids = append(ids, t.ID)
			}
			if err := s.store.AttachTags(ctx, post.ID, ids); err != nil {
				s.sugar.Warnf("tag attach failed for post %d: %v", post.ID, err)
			}
		}
	}

	// Fire-and-forget: the caller gets the persisted record either way.
	if err := s.index.IndexPost(ctx, post); err != nil {
		s.sugar.Errorf("index write failed for post %d: %v", post.ID, err)
	}

	return post, nil
}

// GetPost serves a post from cache when possible, falling back to the
// relational store and populating the cache on the way out.
func (s *PostService) GetPost(ctx context.Context, id uint) (*models.BlogPost, error) {
	key := cacheKey(id)
	if b, ok := s.cache.GetBytes(ctx, key); ok {
		var post models.BlogPost
		if err := json.Unmarshal(b, &post); err == nil {
			return &post, nil
		}
		s.sugar.Debugf("discarding undecodable cache entry key=%s", key)
	}

	post, err := s.store.GetPostByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if b, err := json.Marshal(post); err == nil {
		s.cache.SetBytes(ctx, key, b, cacheTTL)
	}
	return post, nil
}

// SearchPosts runs the full-text query. Unlike the create-time index write,
// search failures are surfaced: the operation has nothing without the index.
func (s *PostService) SearchPosts(ctx context.Context, queryText string) ([]search.Hit, error) {
	if strings.TrimSpace(queryText) == "" {
		return nil, errs.Validation("query")
	}
	return s.index.Search(ctx, queryText)
}

// ListTags returns the normalized tags with per-tag post counts.
func (s *PostService) ListTags(ctx context.Context) ([]models.TagWithCount, error) {
	return s.store.ListTags(ctx)
}

func cacheKey(id uint) string {
	return cacheKeyPrefix + strconv.FormatUint(uint64(id), 10)
}
