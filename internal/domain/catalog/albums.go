package catalog

import (
	"context"

	"github.com/rs/zerolog/log"

	"github.com/suipic/client-go/internal/infra/api"
)

// Albums returns the cached album collection, fetching it when needed.
func (s *Service) Albums(ctx context.Context) ([]api.Album, error) {
	return fetchAs(ctx, s.cache, AlbumsKey(), s.backend.ListAlbums)
}

// Album returns one album's detail entry, fetching it when needed.
func (s *Service) Album(ctx context.Context, albumID int) (api.Album, error) {
	return fetchAs(ctx, s.cache, AlbumKey(albumID), func(ctx context.Context) (api.Album, error) {
		return s.backend.GetAlbum(ctx, albumID)
	})
}

// AlbumUsers returns the client users assigned to an album.
func (s *Service) AlbumUsers(ctx context.Context, albumID int) ([]api.User, error) {
	return fetchAs(ctx, s.cache, AlbumUsersKey(albumID), func(ctx context.Context) ([]api.User, error) {
		return s.backend.ListAlbumUsers(ctx, albumID)
	})
}

// CreateAlbum creates an album. The new entity's identity is server-assigned,
// so there is no optimistic phase; on success the album is appended to the
// cached collection, which is then marked stale so ordering reconciles.
func (s *Service) CreateAlbum(ctx context.Context, req api.CreateAlbumRequest) (api.Album, error) {
	if err := req.Validate(); err != nil {
		return api.Album{}, err
	}

	album, err := s.backend.CreateAlbum(ctx, req)
	if err != nil {
		return api.Album{}, err
	}

	if v, ok := s.cache.Get(AlbumsKey()); ok {
		if albums, ok := v.([]api.Album); ok {
			s.cache.Set(AlbumsKey(), append(cloneAlbums(albums), album))
		}
	}
	s.cache.Invalidate(AlbumsKey())

	log.Debug().Int("albumId", album.ID).Msg("Album created")
	return album, nil
}

// UpdateAlbum applies a partial update optimistically: the merged value is
// written to the detail entry and the collection entry before the network
// call, and every touched entry is restored on failure.
func (s *Service) UpdateAlbum(ctx context.Context, albumID int, patch api.AlbumPatch) (api.Album, error) {
	if err := patch.Validate(); err != nil {
		return api.Album{}, err
	}

	detailKey := AlbumKey(albumID)
	s.cache.CancelInFlight(detailKey)

	var snaps snapshotSet
	if v, ok := s.cache.Get(detailKey); ok {
		if prev, ok := v.(api.Album); ok {
			snaps.record(detailKey, prev.Clone(), true)
			s.cache.Set(detailKey, patch.Apply(prev))
		}
	}
	if v, ok := s.cache.Get(AlbumsKey()); ok {
		if albums, ok := v.([]api.Album); ok {
			if idx := indexOfAlbum(albums, albumID); idx >= 0 {
				snaps.record(AlbumsKey(), cloneAlbums(albums), true)
				updated := cloneAlbums(albums)
				updated[idx] = patch.Apply(updated[idx])
				s.cache.Set(AlbumsKey(), updated)
			}
		}
	}

	album, err := s.backend.UpdateAlbum(ctx, albumID, patch)
	if err != nil {
		snaps.restore(s.cache)
		log.Debug().Int("albumId", albumID).Err(err).Msg("Album update rolled back")
		return api.Album{}, err
	}

	s.cache.Set(detailKey, album)
	s.cache.Invalidate(AlbumsKey())
	return album, nil
}

// DeleteAlbum removes an album. There is no optimistic removal: on success
// the detail entry and every entry scoped strictly to the album are dropped
// and the collection is marked stale; on failure the cache is untouched.
func (s *Service) DeleteAlbum(ctx context.Context, albumID int) error {
	if err := s.backend.DeleteAlbum(ctx, albumID); err != nil {
		return err
	}

	s.cache.Remove(AlbumKey(albumID))
	s.cache.Remove(PhotosKey(albumID))
	s.cache.Remove(AlbumUsersKey(albumID))
	s.cache.Invalidate(AlbumsKey())

	log.Debug().Int("albumId", albumID).Msg("Album deleted, scoped entries dropped")
	return nil
}

// AssignUsers replaces the album's assigned users and refreshes the cached
// assignment list.
func (s *Service) AssignUsers(ctx context.Context, albumID int, userIDs []int) error {
	if err := s.backend.AssignAlbumUsers(ctx, albumID, userIDs); err != nil {
		return err
	}
	s.cache.Invalidate(AlbumUsersKey(albumID))
	return nil
}
