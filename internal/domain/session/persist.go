// Package session keeps the signed-in account, its auth token and UI
// preferences, persisted across process restarts.
package session

// Storage keys shared by all persisters.
const (
	keyToken = "suipic_token"
	keyUser  = "suipic_user"
	keyTheme = "suipic_theme"
)

// Persister stores session values by key.
type Persister interface {
	// Get returns the stored value and whether the key exists.
	Get(key string) (string, bool, error)
	Set(key, value string) error
	Delete(key string) error
	Close() error
}
