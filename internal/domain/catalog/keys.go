// Package catalog keeps every cached view of albums, photos and comments
// consistent across mutations: optimistic updates, reconciliation on success
// and full rollback on failure.
package catalog

import (
	"strconv"

	"github.com/suipic/client-go/internal/infra/querycache"
)

// Resource kind tags. A list key and a detail key use different kinds so a
// kind-wide operation never mixes shapes.
const (
	KindAlbums     = "albums"
	KindAlbum      = "album"
	KindAlbumUsers = "albumUsers"
	KindPhotos     = "photos"
	KindPhoto      = "photo"
	KindComments   = "comments"

	KindPhotographers = "photographers"
	KindClients       = "clients"
)

// AlbumsKey selects the album collection list.
func AlbumsKey() querycache.Key {
	return querycache.NewKey(KindAlbums)
}

// AlbumKey selects one album's detail entry.
func AlbumKey(albumID int) querycache.Key {
	return querycache.NewKey(KindAlbum, strconv.Itoa(albumID))
}

// AlbumUsersKey selects the users assigned to one album.
func AlbumUsersKey(albumID int) querycache.Key {
	return querycache.NewKey(KindAlbumUsers, strconv.Itoa(albumID))
}

// PhotosKey selects the photo list of one album.
func PhotosKey(albumID int) querycache.Key {
	return querycache.NewKey(KindPhotos, strconv.Itoa(albumID))
}

// PhotoKey selects one photo's detail entry.
func PhotoKey(photoID int) querycache.Key {
	return querycache.NewKey(KindPhoto, strconv.Itoa(photoID))
}

// CommentsKey selects the comment thread of one photo.
func CommentsKey(photoID int) querycache.Key {
	return querycache.NewKey(KindComments, strconv.Itoa(photoID))
}

// PhotographersKey selects the admin's photographer list.
func PhotographersKey() querycache.Key {
	return querycache.NewKey(KindPhotographers)
}

// ClientsKey selects the photographer's client list.
func ClientsKey() querycache.Key {
	return querycache.NewKey(KindClients)
}

// ClientSearchKey selects one client search result set. It shares the
// clients kind so a kind-wide invalidation catches searches too.
func ClientSearchKey(query string) querycache.Key {
	return querycache.NewKey(KindClients, "search", query)
}
