package catalog

import (
	"github.com/suipic/client-go/internal/infra/api"
	"github.com/suipic/client-go/internal/infra/querycache"
)

// snapshotSet records the pre-mutation value of every cache entry an
// optimistic write touches. Restore puts all of them back on failure; the
// entries are independent, so order does not matter.
type snapshotSet struct {
	snaps []snapshot
}

type snapshot struct {
	key     querycache.Key
	value   any
	existed bool
}

// record captures the current value for key. The caller passes an already
// deep-copied value so a later restore is exact.
func (s *snapshotSet) record(key querycache.Key, value any, existed bool) {
	s.snaps = append(s.snaps, snapshot{key: key, value: value, existed: existed})
}

// restore writes every recorded snapshot back into the cache.
func (s *snapshotSet) restore(cache *querycache.Cache) {
	for _, snap := range s.snaps {
		if snap.existed {
			cache.Set(snap.key, snap.value)
		} else {
			cache.Remove(snap.key)
		}
	}
}

func clonePhotos(photos []api.Photo) []api.Photo {
	out := make([]api.Photo, len(photos))
	copy(out, photos)
	return out
}

func cloneAlbums(albums []api.Album) []api.Album {
	out := make([]api.Album, len(albums))
	for i, a := range albums {
		out[i] = a.Clone()
	}
	return out
}

func indexOfPhoto(photos []api.Photo, id int) int {
	for i, p := range photos {
		if p.ID == id {
			return i
		}
	}
	return -1
}

func indexOfAlbum(albums []api.Album, id int) int {
	for i, a := range albums {
		if a.ID == id {
			return i
		}
	}
	return -1
}
