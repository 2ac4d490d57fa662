package catalog

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/suipic/client-go/internal/infra/api"
	"github.com/suipic/client-go/internal/infra/querycache"
)

func TestAddCommentAppendsTopLevelAndInvalidates(t *testing.T) {
	cache := querycache.New()
	existing := api.Comment{ID: 1, PhotoID: 4, Text: "nice"}
	cache.Set(CommentsKey(4), []api.Comment{existing})
	cache.Set(PhotoKey(4), api.Photo{ID: 4})

	threadCalls := 0
	backend := &fakeBackend{
		createComment: func(ctx context.Context, photoID int, text string, parentID int) (api.Comment, error) {
			return api.Comment{ID: 2, PhotoID: photoID, Text: text}, nil
		},
		listComments: func(ctx context.Context, photoID int) ([]api.Comment, error) {
			threadCalls++
			return []api.Comment{existing, {ID: 2, PhotoID: 4, Text: "love it"}}, nil
		},
	}
	svc := NewService(backend, cache)

	comment, err := svc.AddComment(context.Background(), 4, "love it", 0)
	require.NoError(t, err)
	assert.Equal(t, 2, comment.ID)

	v, _ := cache.Get(CommentsKey(4))
	assert.Len(t, v.([]api.Comment), 2, "top-level comment appended to thread")

	_, err = svc.Comments(context.Background(), 4)
	require.NoError(t, err)
	assert.Equal(t, 1, threadCalls, "thread was marked stale, so the read refetches")
}

func TestAddReplyOnlyInvalidates(t *testing.T) {
	cache := querycache.New()
	parent := api.Comment{ID: 1, PhotoID: 4, Text: "nice"}
	cache.Set(CommentsKey(4), []api.Comment{parent})

	backend := &fakeBackend{
		createComment: func(ctx context.Context, photoID int, text string, parentID int) (api.Comment, error) {
			return api.Comment{ID: 2, PhotoID: photoID, ParentCommentID: parentID, Text: text}, nil
		},
	}
	svc := NewService(backend, cache)

	_, err := svc.AddComment(context.Background(), 4, "same!", 1)
	require.NoError(t, err)

	v, _ := cache.Get(CommentsKey(4))
	assert.Len(t, v.([]api.Comment), 1, "replies are reconciled by refetch, not appended flat")
}

func TestAddCommentRequiresText(t *testing.T) {
	svc := NewService(&fakeBackend{}, querycache.New())

	_, err := svc.AddComment(context.Background(), 4, "   ", 0)
	require.Error(t, err)
}

func TestCommentsStaleWhileError(t *testing.T) {
	cache := querycache.New()
	previous := []api.Comment{{ID: 1, PhotoID: 4, Text: "nice"}}
	cache.Set(CommentsKey(4), previous)
	cache.Invalidate(CommentsKey(4))

	backend := &fakeBackend{
		listComments: func(ctx context.Context, photoID int) ([]api.Comment, error) {
			return nil, &api.Error{Op: "ListComments", Status: 502, Message: "bad gateway"}
		},
	}
	svc := NewService(backend, cache)

	got, err := svc.Comments(context.Background(), 4)
	require.Error(t, err)
	assert.Equal(t, previous, got, "failed refresh keeps the previous thread visible")
}
