package catalog

import (
	"context"
	"io"

	"github.com/suipic/client-go/internal/infra/api"
	"github.com/suipic/client-go/internal/infra/querycache"
)

// Backend is the slice of the REST client the catalog needs.
type Backend interface {
	ListAlbums(ctx context.Context) ([]api.Album, error)
	GetAlbum(ctx context.Context, id int) (api.Album, error)
	CreateAlbum(ctx context.Context, req api.CreateAlbumRequest) (api.Album, error)
	UpdateAlbum(ctx context.Context, id int, patch api.AlbumPatch) (api.Album, error)
	DeleteAlbum(ctx context.Context, id int) error
	ListAlbumUsers(ctx context.Context, albumID int) ([]api.User, error)
	AssignAlbumUsers(ctx context.Context, albumID int, userIDs []int) error
	ListPhotos(ctx context.Context, albumID int) ([]api.Photo, error)
	GetPhoto(ctx context.Context, id int) (api.Photo, error)
	UploadPhoto(ctx context.Context, albumID int, filename string, payload io.Reader) (api.Photo, error)
	UpdatePhoto(ctx context.Context, id int, patch api.PhotoPatch) (api.Photo, error)
	ListComments(ctx context.Context, photoID int) ([]api.Comment, error)
	CreateComment(ctx context.Context, photoID int, text string, parentID int) (api.Comment, error)
	ListPhotographers(ctx context.Context) ([]api.User, error)
	CreatePhotographer(ctx context.Context, req api.CreatePhotographerRequest) (api.CreatePhotographerResponse, error)
	ListClients(ctx context.Context) ([]api.ClientAccount, error)
	SearchClients(ctx context.Context, query string) ([]api.ClientAccount, error)
	CreateOrLinkClient(ctx context.Context, req api.CreateClientRequest) (api.ClientAccount, error)
}

var _ Backend = (*api.Client)(nil)

// Service is the cache synchronization layer over the REST backend.
type Service struct {
	backend Backend
	cache   *querycache.Cache
}

// NewService creates a catalog service over the given backend and cache.
func NewService(backend Backend, cache *querycache.Cache) *Service {
	return &Service{backend: backend, cache: cache}
}

// Cache exposes the underlying query cache, shared with the search pipeline.
func (s *Service) Cache() *querycache.Cache {
	return s.cache
}

// fetchAs runs a typed query through the cache. On a failed refresh the
// previously cached value is returned together with the error.
func fetchAs[T any](ctx context.Context, cache *querycache.Cache, key querycache.Key, fn func(context.Context) (T, error)) (T, error) {
	v, err := cache.Fetch(ctx, key, func(ctx context.Context) (any, error) {
		return fn(ctx)
	})
	if v == nil {
		var zero T
		return zero, err
	}
	t, ok := v.(T)
	if !ok {
		var zero T
		return zero, err
	}
	return t, err
}
