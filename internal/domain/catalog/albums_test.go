package catalog

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/suipic/client-go/internal/infra/api"
	"github.com/suipic/client-go/internal/infra/querycache"
)

func TestCreateAlbumAppendsAndInvalidatesCollection(t *testing.T) {
	cache := querycache.New()
	cache.Set(AlbumsKey(), []api.Album{{ID: 1, Title: "Existing"}})

	listCalls := 0
	backend := &fakeBackend{
		createAlbum: func(ctx context.Context, req api.CreateAlbumRequest) (api.Album, error) {
			return api.Album{ID: 2, Title: req.Title}, nil
		},
		listAlbums: func(ctx context.Context) ([]api.Album, error) {
			listCalls++
			return []api.Album{{ID: 1, Title: "Existing"}, {ID: 2, Title: "Wedding"}}, nil
		},
	}
	svc := NewService(backend, cache)

	album, err := svc.CreateAlbum(context.Background(), api.CreateAlbumRequest{Title: "Wedding"})
	require.NoError(t, err)
	assert.Equal(t, 2, album.ID)

	v, _ := cache.Get(AlbumsKey())
	assert.Len(t, v.([]api.Album), 2, "created album appended to the collection entry")

	_, err = svc.Albums(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, listCalls, "collection was marked stale, so the read refetches")
}

func TestCreateAlbumRequiresTitle(t *testing.T) {
	svc := NewService(&fakeBackend{}, querycache.New())

	_, err := svc.CreateAlbum(context.Background(), api.CreateAlbumRequest{Title: "  "})
	require.Error(t, err)
}

func TestUpdateAlbumOptimisticAndReconcile(t *testing.T) {
	cache := querycache.New()
	album := api.Album{ID: 5, Title: "Old", PhotographerID: 1, CustomFields: map[string]any{"venue": "barn"}}
	cache.Set(AlbumKey(5), album)
	cache.Set(AlbumsKey(), []api.Album{album})

	server := album.Clone()
	server.Title = "New"
	server.UpdatedAt = "2024-06-01T10:00:00Z"
	backend := &fakeBackend{
		updateAlbum: func(ctx context.Context, id int, patch api.AlbumPatch) (api.Album, error) {
			return server, nil
		},
	}
	svc := NewService(backend, cache)

	got, err := svc.UpdateAlbum(context.Background(), 5, api.AlbumPatch{Title: strptr("New")})
	require.NoError(t, err)
	assert.Equal(t, server, got)

	v, _ := cache.Get(AlbumKey(5))
	assert.Equal(t, server, v.(api.Album), "detail holds the server object including derived fields")
}

func TestUpdateAlbumRollback(t *testing.T) {
	cache := querycache.New()
	album := api.Album{ID: 5, Title: "Old", CustomFields: map[string]any{"venue": "barn"}}
	cache.Set(AlbumKey(5), album)
	cache.Set(AlbumsKey(), []api.Album{album, {ID: 6, Title: "Other"}})

	backend := &fakeBackend{
		updateAlbum: func(ctx context.Context, id int, patch api.AlbumPatch) (api.Album, error) {
			return api.Album{}, &api.Error{Op: "UpdateAlbum", Status: 500, Message: "boom"}
		},
	}
	svc := NewService(backend, cache)

	_, err := svc.UpdateAlbum(context.Background(), 5, api.AlbumPatch{Title: strptr("New")})
	require.Error(t, err)

	v, _ := cache.Get(AlbumKey(5))
	assert.Equal(t, album, v.(api.Album))

	v, _ = cache.Get(AlbumsKey())
	albums := v.([]api.Album)
	require.Len(t, albums, 2)
	assert.Equal(t, "Old", albums[0].Title)
	assert.Equal(t, "Other", albums[1].Title)
}

func TestUpdateAlbumRejectsEmptyTitle(t *testing.T) {
	svc := NewService(&fakeBackend{}, querycache.New())

	_, err := svc.UpdateAlbum(context.Background(), 5, api.AlbumPatch{Title: strptr("")})
	require.Error(t, err)
}

func TestDeleteAlbumDropsScopedEntries(t *testing.T) {
	cache := querycache.New()
	cache.Set(AlbumKey(5), api.Album{ID: 5})
	cache.Set(PhotosKey(5), []api.Photo{{ID: 1, AlbumID: 5}})
	cache.Set(AlbumUsersKey(5), []api.User{{ID: 9}})
	cache.Set(AlbumsKey(), []api.Album{{ID: 5}, {ID: 6}})
	cache.Set(AlbumKey(6), api.Album{ID: 6})

	backend := &fakeBackend{
		deleteAlbum: func(ctx context.Context, id int) error { return nil },
	}
	svc := NewService(backend, cache)

	require.NoError(t, svc.DeleteAlbum(context.Background(), 5))

	for _, key := range []querycache.Key{AlbumKey(5), PhotosKey(5), AlbumUsersKey(5)} {
		_, ok := cache.Get(key)
		assert.False(t, ok, "entry %v must be dropped", key)
	}

	_, ok := cache.Get(AlbumKey(6))
	assert.True(t, ok, "unrelated album survives")
	_, ok = cache.Get(AlbumsKey())
	assert.True(t, ok, "collection is invalidated, not removed")
}

func TestDeleteAlbumFailureLeavesCacheUntouched(t *testing.T) {
	cache := querycache.New()
	cache.Set(AlbumKey(5), api.Album{ID: 5})
	cache.Set(PhotosKey(5), []api.Photo{{ID: 1, AlbumID: 5}})

	backend := &fakeBackend{
		deleteAlbum: func(ctx context.Context, id int) error {
			return &api.Error{Op: "DeleteAlbum", Status: 403, Message: "forbidden"}
		},
	}
	svc := NewService(backend, cache)

	err := svc.DeleteAlbum(context.Background(), 5)
	require.Error(t, err)
	assert.Equal(t, "forbidden", err.Error())

	_, ok := cache.Get(AlbumKey(5))
	assert.True(t, ok)
	_, ok = cache.Get(PhotosKey(5))
	assert.True(t, ok)
}
