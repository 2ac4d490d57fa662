// Package querycache provides a keyed, staleness-aware cache of asynchronous
// results with per-key cancellation of in-flight fetches.
package querycache

import "strings"

// keySep separates key parts in the string form. Unit separator keeps
// structured keys collision-free even when args contain slashes or colons.
const keySep = "\x1f"

// Key is a structured cache key: a resource kind tag plus an ordered list of
// discriminators. Keys are comparable values, not interpolated strings.
type Key struct {
	Kind string
	Args []string
}

// NewKey builds a key from a kind and its discriminators.
func NewKey(kind string, args ...string) Key {
	return Key{Kind: kind, Args: args}
}

// String renders the key in a collision-free canonical form.
func (k Key) String() string {
	if len(k.Args) == 0 {
		return k.Kind
	}
	return k.Kind + keySep + strings.Join(k.Args, keySep)
}

// Equal reports whether two keys select the same entry.
func (k Key) Equal(other Key) bool {
	if k.Kind != other.Kind || len(k.Args) != len(other.Args) {
		return false
	}
	for i := range k.Args {
		if k.Args[i] != other.Args[i] {
			return false
		}
	}
	return true
}

// Less defines a total order over keys: by kind, then by discriminators.
func (k Key) Less(other Key) bool {
	if k.Kind != other.Kind {
		return k.Kind < other.Kind
	}
	for i := 0; i < len(k.Args) && i < len(other.Args); i++ {
		if k.Args[i] != other.Args[i] {
			return k.Args[i] < other.Args[i]
		}
	}
	return len(k.Args) < len(other.Args)
}

// HasPrefix reports whether prefix selects a scope containing this key,
// i.e. same kind and the prefix discriminators lead this key's.
func (k Key) HasPrefix(prefix Key) bool {
	if k.Kind != prefix.Kind || len(prefix.Args) > len(k.Args) {
		return false
	}
	for i := range prefix.Args {
		if k.Args[i] != prefix.Args[i] {
			return false
		}
	}
	return true
}
