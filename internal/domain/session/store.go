package session

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/suipic/client-go/internal/infra/api"
)

// UI themes.
const (
	ThemeLight = "light"
	ThemeDark  = "dark"
)

// State is a snapshot of the session handed to subscribers.
type State struct {
	User    *api.User
	Token   string
	Theme   string
	Loading bool
}

// Store holds the current session in memory and writes every change through
// to two persisters: a durable primary and a fast mirror. Reads prefer the
// primary and fall back to the mirror when the primary has no value.
// It is safe for concurrent access.
type Store struct {
	mu      sync.RWMutex
	primary Persister
	mirror  Persister

	user    *api.User
	token   string
	theme   string
	loading bool

	nextSub int
	subs    map[int]func(State)
}

// NewStore creates a session store over the given primary persister. A nil
// mirror gets an in-memory one. The store reports Loading until
// LoadFromStorage runs.
func NewStore(primary, mirror Persister) *Store {
	if mirror == nil {
		mirror = NewMemoryPersister()
	}
	return &Store{
		primary: primary,
		mirror:  mirror,
		theme:   ThemeLight,
		loading: true,
		subs:    make(map[int]func(State)),
	}
}

// Subscribe registers a listener called with the current state at once and
// after every change. The returned func removes the listener.
func (s *Store) Subscribe(fn func(State)) func() {
	s.mu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	state := s.stateLocked()
	s.mu.Unlock()

	fn(state)
	return func() {
		s.mu.Lock()
		delete(s.subs, id)
		s.mu.Unlock()
	}
}

func (s *Store) stateLocked() State {
	state := State{Token: s.token, Theme: s.theme, Loading: s.loading}
	if s.user != nil {
		u := *s.user
		state.User = &u
	}
	return state
}

// notify calls every subscriber with a fresh snapshot, outside the lock.
func (s *Store) notify() {
	s.mu.RLock()
	state := s.stateLocked()
	fns := make([]func(State), 0, len(s.subs))
	for _, fn := range s.subs {
		fns = append(fns, fn)
	}
	s.mu.RUnlock()

	for _, fn := range fns {
		fn(state)
	}
}

// LoadFromStorage restores the session from the persisters. A stored user
// record that no longer parses clears the whole session rather than leaving
// a token without an account behind it.
func (s *Store) LoadFromStorage() error {
	token, err := s.read(keyToken)
	if err != nil {
		return err
	}
	rawUser, err := s.read(keyUser)
	if err != nil {
		return err
	}

	var user *api.User
	if rawUser != "" {
		var u api.User
		if err := json.Unmarshal([]byte(rawUser), &u); err != nil {
			log.Warn().Err(err).Msg("Stored user record is corrupt, clearing session")
			if err := s.ClearAuth(); err != nil {
				return err
			}
			token = ""
		} else {
			user = &u
		}
	}

	theme, err := s.read(keyTheme)
	if err != nil {
		return err
	}
	if theme != ThemeLight && theme != ThemeDark {
		theme = ThemeLight
	}

	s.mu.Lock()
	s.token = token
	s.user = user
	s.theme = theme
	s.loading = false
	s.mu.Unlock()
	s.notify()

	if user != nil {
		log.Debug().Str("username", user.Username).Msg("Session restored")
	}
	return nil
}

// SetAuth stores a fresh login.
func (s *Store) SetAuth(user api.User, token string) error {
	raw, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("encode user: %w", err)
	}
	if err := s.write(keyToken, token); err != nil {
		return err
	}
	if err := s.write(keyUser, string(raw)); err != nil {
		return err
	}

	s.mu.Lock()
	s.token = token
	s.user = &user
	s.loading = false
	s.mu.Unlock()
	s.notify()
	return nil
}

// UpdateUser replaces the stored account record, keeping the token.
func (s *Store) UpdateUser(user api.User) error {
	raw, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("encode user: %w", err)
	}
	if err := s.write(keyUser, string(raw)); err != nil {
		return err
	}

	s.mu.Lock()
	s.user = &user
	s.mu.Unlock()
	s.notify()
	return nil
}

// ClearAuth removes the session from memory and both persisters. The theme
// preference survives a logout.
func (s *Store) ClearAuth() error {
	for _, key := range []string{keyToken, keyUser} {
		if err := s.primary.Delete(key); err != nil {
			return err
		}
		if err := s.mirror.Delete(key); err != nil {
			return err
		}
	}

	s.mu.Lock()
	s.token = ""
	s.user = nil
	s.loading = false
	s.mu.Unlock()
	s.notify()
	return nil
}

// Token returns the current auth token, empty when signed out.
func (s *Store) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// TokenSource adapts the store for the API client.
func (s *Store) TokenSource() api.TokenSource {
	return s.Token
}

// CurrentUser returns the signed-in account, if any.
func (s *Store) CurrentUser() (api.User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return api.User{}, false
	}
	return *s.user, true
}

// Authenticated reports whether a user is signed in.
func (s *Store) Authenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token != "" && s.user != nil
}

// Loading reports whether the session has not been restored yet.
func (s *Store) Loading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loading
}

// Theme returns the active UI theme.
func (s *Store) Theme() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.theme
}

// SetTheme stores the UI theme. Unknown values are rejected.
func (s *Store) SetTheme(theme string) error {
	if theme != ThemeLight && theme != ThemeDark {
		return fmt.Errorf("unknown theme %q", theme)
	}
	if err := s.write(keyTheme, theme); err != nil {
		return err
	}

	s.mu.Lock()
	s.theme = theme
	s.mu.Unlock()
	s.notify()
	return nil
}

// ToggleTheme flips between light and dark and returns the new theme.
func (s *Store) ToggleTheme() (string, error) {
	next := ThemeLight
	if s.Theme() == ThemeLight {
		next = ThemeDark
	}
	if err := s.SetTheme(next); err != nil {
		return "", err
	}
	return next, nil
}

// Close closes both persisters.
func (s *Store) Close() error {
	mirrorErr := s.mirror.Close()
	if err := s.primary.Close(); err != nil {
		return err
	}
	return mirrorErr
}

// read prefers the primary and falls back to the mirror.
func (s *Store) read(key string) (string, error) {
	value, ok, err := s.primary.Get(key)
	if err != nil {
		return "", err
	}
	if ok {
		return value, nil
	}
	value, _, err = s.mirror.Get(key)
	if err != nil {
		return "", err
	}
	return value, nil
}

// write stores the value in both persisters.
func (s *Store) write(key, value string) error {
	if err := s.primary.Set(key, value); err != nil {
		return err
	}
	return s.mirror.Set(key, value)
}
