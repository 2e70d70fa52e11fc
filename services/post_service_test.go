package services_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hypermark/blogsearch/errs"
	"github.com/hypermark/blogsearch/models"
	"github.com/hypermark/blogsearch/search"
	"github.com/hypermark/blogsearch/services"
)

type fakeStore struct {
	nextID    uint
	posts     map[uint]models.BlogPost
	tags      map[string]models.Tag
	attached  map[uint][]uint
	getCalls  int
	createErr error
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		posts:    map[uint]models.BlogPost{},
		tags:     map[string]models.Tag{},
		attached: map[uint][]uint{},
	}
}

func (f *fakeStore) CreatePost(_ context.Context, post *models.BlogPost) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.nextID++
	post.ID = f.nextID
	post.CreatedAt = time.Now().UTC().Truncate(time.Second)
	f.posts[post.ID] = *post
	return nil
}

func (f *fakeStore) GetPostByID(_ context.Context, id uint) (*models.BlogPost, error) {
	f.getCalls++
	post, ok := f.posts[id]
	if !ok {
		return nil, errs.NotFound("post", id)
	}
	return &post, nil
}

func (f *fakeStore) EnsureTags(_ context.Context, names []string) ([]models.Tag, error) {
	out := make([]models.Tag, 0, len(names))
	for _, name := range names {
		tag, ok := f.tags[name]
		if !ok {
			tag = models.Tag{ID: uint(len(f.tags) + 1), Name: name}
			f.tags[name] = tag
		}
		out = append(out, tag)
	}
	return out, nil
}

func (f *fakeStore) AttachTags(_ context.Context, postID uint, tagIDs []uint) error {
	f.attached[postID] = append(f.attached[postID], tagIDs...)
	return nil
}

func (f *fakeStore) ListTags(_ context.Context) ([]models.TagWithCount, error) {
	out := make([]models.TagWithCount, 0, len(f.tags))
	for _, tag := range f.tags {
		out = append(out, models.TagWithCount{ID: tag.ID, Name: tag.Name})
	}
	return out, nil
}

type fakeIndex struct {
	docs       map[uint]models.BlogPost
	indexCalls int
	indexErr   error
	searchErr  error
	hits       []search.Hit
	lastQuery  string
}

func newFakeIndex() *fakeIndex {
	return &fakeIndex{docs: map[uint]models.BlogPost{}}
}

func (f *fakeIndex) IndexPost(_ context.Context, post *models.BlogPost) error {
	f.indexCalls++
	if f.indexErr != nil {
		return f.indexErr
	}
	f.docs[post.ID] = *post
	return nil
}

func (f *fakeIndex) Search(_ context.Context, queryText string) ([]search.Hit, error) {
	f.lastQuery = queryText
	if f.searchErr != nil {
		return nil, f.searchErr
	}
	return f.hits, nil
}

type fakeCache struct {
	data     map[string][]byte
	gets     int
	sets     int
	disabled bool
}

func newFakeCache() *fakeCache {
	return &fakeCache{data: map[string][]byte{}}
}

func (f *fakeCache) GetBytes(_ context.Context, key string) ([]byte, bool) {
	f.gets++
	if f.disabled {
		return nil, false
	}
	b, ok := f.data[key]
	return b, ok
}

func (f *fakeCache) SetBytes(_ context.Context, key string, b []byte, _ time.Duration) {
	f.sets++
	if f.disabled {
		return
	}
	f.data[key] = b
}

func newTestService() (*services.PostService, *fakeStore, *fakeIndex, *fakeCache) {
	st := newFakeStore()
	idx := newFakeIndex()
	kv := newFakeCache()
	return services.NewPostService(st, idx, kv, nil), st, idx, kv
}

func TestCreatePost_Validation(t *testing.T) {
	svc, st, idx, _ := newTestService()
	ctx := context.Background()

	cases := []struct {
		name                   string
		title, content, author string
	}{
		{"missing title", "", "body", "alice"},
		{"missing content", "Hello", "", "alice"},
		{"missing author", "Hello", "body", ""},
		{"whitespace only", "   ", "body", "alice"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.CreatePost(ctx, tc.title, tc.content, tc.author, nil)
			assert.True(t, errs.IsValidation(err))
		})
	}

	assert.Empty(t, st.posts, "nothing should be persisted")
	assert.Zero(t, idx.indexCalls, "nothing should be indexed")
}

func TestCreatePost_AssignsFreshIDsAndIndexes(t *testing.T) {
	svc, _, idx, _ := newTestService()
	ctx := context.Background()

	first, err := svc.CreatePost(ctx, "Hello", "World of testing", "alice", nil)
	require.NoError(t, err)
	assert.Equal(t, uint(1), first.ID)
	assert.False(t, first.CreatedAt.IsZero())

	second, err := svc.CreatePost(ctx, "Another", "post body", "bob", nil)
	require.NoError(t, err)
	assert.Equal(t, uint(2), second.ID)

	require.Len(t, idx.docs, 2)
	assert.Equal(t, "Hello", idx.docs[1].Title)
}

func TestCreatePost_IndexFailureIsSwallowed(t *testing.T) {
	svc, st, idx, _ := newTestService()
	idx.indexErr = errs.Index("index post", errors.New("connection refused"))

	post, err := svc.CreatePost(context.Background(), "Hello", "body", "alice", nil)
	require.NoError(t, err, "index write must not fail the create")
	assert.Equal(t, uint(1), post.ID)
	assert.Contains(t, st.posts, post.ID)
	assert.Equal(t, 1, idx.indexCalls)
}

func TestCreatePost_StoreFailureIsFatal(t *testing.T) {
	svc, st, idx, _ := newTestService()
	st.createErr = errs.Storage("create post", errors.New("connection refused"))

	_, err := svc.CreatePost(context.Background(), "Hello", "body", "alice", nil)
	assert.True(t, errs.IsStorage(err))
	assert.Zero(t, idx.indexCalls, "index must not be written without a relational row")
}

func TestCreatePost_TagRows(t *testing.T) {
	svc, st, _, _ := newTestService()
	ctx := context.Background()

	post, err := svc.CreatePost(ctx, "Hello", "body", "alice", []string{"go", "search"})
	require.NoError(t, err)
	assert.Equal(t, []string{"go", "search"}, []string(post.Tags))
	assert.Len(t, st.tags, 2)
	assert.Len(t, st.attached[post.ID], 2)

	tags, err := svc.ListTags(ctx)
	require.NoError(t, err)
	assert.Len(t, tags, 2)
}

func TestGetPost_SecondReadServedFromCache(t *testing.T) {
	svc, st, _, kv := newTestService()
	ctx := context.Background()

	created, err := svc.CreatePost(ctx, "Hello", "World of testing", "alice", nil)
	require.NoError(t, err)

	first, err := svc.GetPost(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, st.getCalls)
	assert.Equal(t, 1, kv.sets, "miss should populate the cache")

	second, err := svc.GetPost(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, st.getCalls, "second read must not touch the store")

	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, first.Title, second.Title)
	assert.Equal(t, first.Content, second.Content)
	assert.Equal(t, first.Author, second.Author)
	assert.True(t, first.CreatedAt.Equal(second.CreatedAt))
}

func TestGetPost_NotFound(t *testing.T) {
	svc, _, _, _ := newTestService()

	_, err := svc.GetPost(context.Background(), 42)
	assert.True(t, errs.IsNotFound(err))
	assert.False(t, errs.IsStorage(err))
}

func TestGetPost_CacheOutageFallsThrough(t *testing.T) {
	svc, st, _, kv := newTestService()
	kv.disabled = true
	ctx := context.Background()

	created, err := svc.CreatePost(ctx, "Hello", "body", "alice", nil)
	require.NoError(t, err)

	for i := 0; i < 2; i++ {
		post, err := svc.GetPost(ctx, created.ID)
		require.NoError(t, err)
		assert.Equal(t, created.ID, post.ID)
	}
	assert.Equal(t, 2, st.getCalls, "every read should reach the store while the cache is down")
}

func TestGetPost_UndecodableCacheEntryFallsThrough(t *testing.T) {
	svc, st, _, kv := newTestService()
	ctx := context.Background()

	created, err := svc.CreatePost(ctx, "Hello", "body", "alice", nil)
	require.NoError(t, err)
	kv.data["post:1"] = []byte("{not json")

	post, err := svc.GetPost(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.ID, post.ID)
	assert.Equal(t, 1, st.getCalls)
}

func TestSearchPosts(t *testing.T) {
	svc, _, idx, _ := newTestService()
	idx.hits = []search.Hit{{ID: 1, Title: "Hello", Score: 1.5}}

	hits, err := svc.SearchPosts(context.Background(), "hello")
	require.NoError(t, err)
	assert.Equal(t, "hello", idx.lastQuery)
	require.Len(t, hits, 1)
	assert.Equal(t, uint(1), hits[0].ID)
}

func TestSearchPosts_Validation(t *testing.T) {
	svc, _, idx, _ := newTestService()

	_, err := svc.SearchPosts(context.Background(), "   ")
	assert.True(t, errs.IsValidation(err))
	assert.Empty(t, idx.lastQuery)
}

func TestSearchPosts_IndexFailureIsSurfaced(t *testing.T) {
	svc, _, idx, _ := newTestService()
	idx.searchErr = errs.Index("search", errors.New("index unavailable"))

	_, err := svc.SearchPosts(context.Background(), "hello")
	assert.True(t, errs.IsIndex(err))
}
