package errs_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/hypermark/blogsearch/errs"
)

func TestKindsAreDistinct(t *testing.T) {
	validation := errs.Validation("title")
	notFound := errs.NotFound("post", 7)
	storage := errs.Storage("create post", errors.New("connection refused"))
	index := errs.Index("search", errors.New("index unavailable"))

	assert.True(t, errs.IsValidation(validation))
	assert.True(t, errs.IsNotFound(notFound))
	assert.True(t, errs.IsStorage(storage))
	assert.True(t, errs.IsIndex(index))

	assert.False(t, errs.IsStorage(notFound))
	assert.False(t, errs.IsNotFound(storage))
	assert.False(t, errs.IsIndex(storage))
}

func TestMessagesNameTheProblem(t *testing.T) {
	assert.Contains(t, errs.Validation("title").Error(), "title")
	assert.Contains(t, errs.NotFound("post", 7).Error(), "post 7")
	assert.Contains(t, errs.Storage("create post", errors.New("refused")).Error(), "create post")
}
