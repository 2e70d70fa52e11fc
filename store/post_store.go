// Package store is the relational adapter. It owns every SQL touchpoint:
// post rows, normalized tags, and the explicit join-table queries. Callers
// receive flattened records, never lazily loaded object graphs.
package store

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/hypermark/blogsearch/errs"
	"github.com/hypermark/blogsearch/models"
)

// PostStore persists and retrieves blog posts. The relational store is the
// source of truth; ids assigned here key the index and the cache.
type PostStore struct {
	db *gorm.DB
}

// New creates a PostStore on top of an initialized gorm DB.
func New(db *gorm.DB) *PostStore {
	return &PostStore{db: db}
}

// CreatePost inserts a row and fills in the assigned id and created_at.
func (s *PostStore) CreatePost(ctx context.Context, post *models.BlogPost) error {
	if err := s.db.WithContext(ctx).Create(post).Error; err != nil {
		return errs.Storage("create post", err)
	}
	return nil
}

// GetPostByID is a point lookup by primary key.
func (s *PostStore) GetPostByID(ctx context.Context, id uint) (*models.BlogPost, error) {
	var post models.BlogPost
	err := s.db.WithContext(ctx).First(&post, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, errs.NotFound("post", id)
	}
	if err != nil {
		return nil, errs.Storage("get post", err)
	}
	return &post, nil
}

// EnsureTags gets or creates a tag row per name, keyed by the unique name.
// Blank names are skipped.
func (s *PostStore) EnsureTags(ctx context.Context, names []string) ([]models.Tag, error) {
	tags := make([]models.Tag, 0, len(names))
	for _, name := range names {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		var tag models.Tag
		err := s.db.WithContext(ctx).Where(models.Tag{Name: name}).FirstOrCreate(&tag).Error
		if err != nil {
			return nil, errs.Storage("ensure tag", err)
		}
		tags = append(tags, tag)
	}
	return tags, nil
}

// AttachTags inserts join rows linking a post to tags. Conflicting rows are
// left alone, so the call is idempotent.
func (s *PostStore) AttachTags(ctx context.Context, postID uint, tagIDs []uint) error {
	if len(tagIDs) == 0 {
		return nil
	}
	rows := make([]models.PostTag, 0, len(tagIDs))
	for _, tagID := range tagIDs {
		rows = append(rows, models.PostTag{PostID: postID, TagID: tagID})
	}
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&rows).Error
	if err != nil {
		return errs.Storage("attach tags", err)
	}
	return nil
}

// ListTags returns every tag with its post count via an explicit join.
func (s *PostStore) ListTags(ctx context.Context) ([]models.TagWithCount, error) {
	var out []models.TagWithCount
	err := s.db.WithContext(ctx).
		Table("tags").
		Select("tags.id, tags.name, tags.description, tags.created_at, COUNT(post_tags.post_id) AS post_count").
		Joins("LEFT JOIN post_tags ON post_tags.tag_id = tags.id").
		Group("tags.id, tags.name, tags.description, tags.created_at").
		Order("tags.name").
		Scan(&out).Error
	if err != nil {
		return nil, errs.Storage("list tags", err)
	}
	return out, nil
}
