package catalog

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/suipic/client-go/internal/infra/api"
	"github.com/suipic/client-go/internal/infra/querycache"
)

// Photos returns the cached photo list of an album, fetching it when needed.
func (s *Service) Photos(ctx context.Context, albumID int) ([]api.Photo, error) {
	return fetchAs(ctx, s.cache, PhotosKey(albumID), func(ctx context.Context) ([]api.Photo, error) {
		return s.backend.ListPhotos(ctx, albumID)
	})
}

// Photo returns one photo's detail entry, fetching it when needed.
func (s *Service) Photo(ctx context.Context, photoID int) (api.Photo, error) {
	return fetchAs(ctx, s.cache, PhotoKey(photoID), func(ctx context.Context) (api.Photo, error) {
		return s.backend.GetPhoto(ctx, photoID)
	})
}

// UploadPhoto uploads one image. Creation has no optimistic phase; on
// success the photo is appended to the album's cached list, which is then
// marked stale so server-side ordering reconciles.
func (s *Service) UploadPhoto(ctx context.Context, albumID int, filename string, payload io.Reader) (api.Photo, error) {
	listKey := PhotosKey(albumID)
	s.cache.CancelInFlight(listKey)

	photo, err := s.backend.UploadPhoto(ctx, albumID, filename, payload)
	if err != nil {
		return api.Photo{}, err
	}

	s.appendPhoto(listKey, photo)
	s.cache.Invalidate(listKey)
	return photo, nil
}

// UpdatePhoto applies a partial update with the full optimistic protocol:
// the in-flight detail fetch is canceled so a stale response cannot clobber
// the optimistic value, the detail entry and every list entry containing the
// photo are snapshotted and overwritten with the merged value, and on
// failure every snapshot is restored.
func (s *Service) UpdatePhoto(ctx context.Context, photoID int, patch api.PhotoPatch) (api.Photo, error) {
	if err := patch.Validate(); err != nil {
		return api.Photo{}, err
	}

	detailKey := PhotoKey(photoID)
	s.cache.CancelInFlight(detailKey)

	var snaps snapshotSet
	if v, ok := s.cache.Get(detailKey); ok {
		if prev, ok := v.(api.Photo); ok {
			snaps.record(detailKey, prev, true)
			s.cache.Set(detailKey, patch.Apply(prev))
		}
	}
	for _, e := range s.cache.EntriesOfKind(KindPhotos) {
		photos, ok := e.Value.([]api.Photo)
		if !ok {
			continue
		}
		idx := indexOfPhoto(photos, photoID)
		if idx < 0 {
			continue
		}
		snaps.record(e.Key, clonePhotos(photos), true)
		updated := clonePhotos(photos)
		updated[idx] = patch.Apply(updated[idx])
		s.cache.Set(e.Key, updated)
	}

	photo, err := s.backend.UpdatePhoto(ctx, photoID, patch)
	if err != nil {
		snaps.restore(s.cache)
		log.Debug().Int("photoId", photoID).Err(err).Msg("Photo update rolled back")
		return api.Photo{}, err
	}

	// The server value wins over the optimistic merge: it may carry derived
	// fields the client could not predict.
	s.cache.Set(detailKey, photo)
	s.cache.Invalidate(PhotosKey(photo.AlbumID))
	return photo, nil
}

// UploadFile is one item of a batch upload.
type UploadFile struct {
	Name string
	Data io.Reader
}

// UploadFailure identifies one failed item of a batch upload.
type UploadFailure struct {
	Name    string
	Message string
}

// BatchUploadError aggregates the failed items of a batch upload. The
// successfully uploaded photos stay in the cache.
type BatchUploadError struct {
	Failures []UploadFailure
}

func (e *BatchUploadError) Error() string {
	parts := make([]string, len(e.Failures))
	for i, f := range e.Failures {
		parts[i] = fmt.Sprintf("%s: %s", f.Name, f.Message)
	}
	return fmt.Sprintf("%d upload(s) failed: %s", len(e.Failures), strings.Join(parts, "; "))
}

// UploadPhotos uploads every file independently. Successes are appended to
// the album's cached list as they land; when any item failed, the returned
// error enumerates each failed file's name and message.
func (s *Service) UploadPhotos(ctx context.Context, albumID int, files []UploadFile) ([]api.Photo, error) {
	listKey := PhotosKey(albumID)
	s.cache.CancelInFlight(listKey)

	var uploaded []api.Photo
	var failures []UploadFailure
	for _, f := range files {
		photo, err := s.backend.UploadPhoto(ctx, albumID, f.Name, f.Data)
		if err != nil {
			failures = append(failures, UploadFailure{Name: f.Name, Message: err.Error()})
			continue
		}
		uploaded = append(uploaded, photo)
		s.appendPhoto(listKey, photo)
	}
	s.cache.Invalidate(listKey)

	if len(failures) > 0 {
		log.Warn().
			Int("albumId", albumID).
			Int("failed", len(failures)).
			Int("uploaded", len(uploaded)).
			Msg("Batch upload partially failed")
		return uploaded, &BatchUploadError{Failures: failures}
	}
	return uploaded, nil
}

func (s *Service) appendPhoto(listKey querycache.Key, photo api.Photo) {
	if v, ok := s.cache.Get(listKey); ok {
		if photos, ok := v.([]api.Photo); ok {
			s.cache.Set(listKey, append(clonePhotos(photos), photo))
			return
		}
	}
	s.cache.Set(listKey, []api.Photo{photo})
}
