package store_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/hypermark/blogsearch/errs"
	"github.com/hypermark/blogsearch/models"
	"github.com/hypermark/blogsearch/store"
)

func newTestStore(t *testing.T) *store.PostStore {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "test.db")), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.BlogPost{}, &models.Tag{}, &models.PostTag{}))
	return store.New(db)
}

func TestCreatePost_AssignsIDAndCreatedAt(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	post := &models.BlogPost{Title: "Hello", Content: "World of testing", Author: "alice"}
	require.NoError(t, s.CreatePost(ctx, post))
	assert.Equal(t, uint(1), post.ID)
	assert.False(t, post.CreatedAt.IsZero())

	next := &models.BlogPost{Title: "Second", Content: "body", Author: "bob"}
	require.NoError(t, s.CreatePost(ctx, next))
	assert.Equal(t, uint(2), next.ID)
}

func TestGetPostByID(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	post := &models.BlogPost{
		Title:   "Hello",
		Content: "World of testing",
		Author:  "alice",
		Tags:    []string{"go", "search"},
	}
	require.NoError(t, s.CreatePost(ctx, post))

	got, err := s.GetPostByID(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, post.Title, got.Title)
	assert.Equal(t, post.Content, got.Content)
	assert.Equal(t, post.Author, got.Author)
	assert.Equal(t, []string{"go", "search"}, []string(got.Tags))
}

func TestGetPostByID_NotFound(t *testing.T) {
	s := newTestStore(t)

	_, err := s.GetPostByID(context.Background(), 42)
	assert.True(t, errs.IsNotFound(err))
	assert.False(t, errs.IsStorage(err))
}

func TestEnsureTags_GetOrCreate(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	first, err := s.EnsureTags(ctx, []string{"go", "search", ""})
	require.NoError(t, err)
	require.Len(t, first, 2, "blank names are skipped")

	again, err := s.EnsureTags(ctx, []string{"go"})
	require.NoError(t, err)
	require.Len(t, again, 1)
	assert.Equal(t, first[0].ID, again[0].ID, "existing tags keep their id")
}

func TestAttachTagsAndListTags(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	post := &models.BlogPost{Title: "Hello", Content: "body", Author: "alice"}
	require.NoError(t, s.CreatePost(ctx, post))
	other := &models.BlogPost{Title: "Second", Content: "body", Author: "bob"}
	require.NoError(t, s.CreatePost(ctx, other))

	tags, err := s.EnsureTags(ctx, []string{"go", "search"})
	require.NoError(t, err)

	require.NoError(t, s.AttachTags(ctx, post.ID, []uint{tags[0].ID, tags[1].ID}))
	require.NoError(t, s.AttachTags(ctx, other.ID, []uint{tags[0].ID}))
	// Re-attaching must be a no-op, not an error.
	require.NoError(t, s.AttachTags(ctx, post.ID, []uint{tags[0].ID}))

	listed, err := s.ListTags(ctx)
	require.NoError(t, err)
	require.Len(t, listed, 2)

	counts := map[string]int64{}
	for _, tag := range listed {
		counts[tag.Name] = tag.PostCount
	}
	assert.Equal(t, int64(2), counts["go"])
	assert.Equal(t, int64(1), counts["search"])
}
