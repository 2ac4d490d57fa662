// Package settings manages the admin setting list and the public settings
// snapshot that gates client-side image protection.
package settings

import (
	"context"
	"strconv"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/suipic/client-go/internal/infra/api"
	"github.com/suipic/client-go/internal/infra/querycache"
)

// KindSettings is the cache key kind for the admin setting list.
const KindSettings = "settings"

// KeyImageProtection is the setting key controlling image protection.
const KeyImageProtection = "image_protection_enabled"

// Backend is the slice of the API client the settings service depends on.
type Backend interface {
	ListSettings(ctx context.Context) ([]api.SystemSettings, error)
	UpdateSetting(ctx context.Context, key string, req api.UpdateSettingRequest) (api.SystemSettings, error)
	GetPublicSettings(ctx context.Context) (api.PublicSettings, error)
}

var _ Backend = (*api.Client)(nil)

// SettingsKey is the cache key for the admin setting list.
func SettingsKey() querycache.Key {
	return querycache.NewKey(KindSettings)
}

// Service reads and updates system settings through the query cache and
// tracks the public image-protection flag. It is safe for concurrent access.
type Service struct {
	backend Backend
	cache   *querycache.Cache

	mu        sync.RWMutex
	protected bool
	loaded    bool
	nextSub   int
	subs      map[int]func(enabled, loaded bool)
}

// NewService creates a settings service over the given backend and cache.
func NewService(backend Backend, cache *querycache.Cache) *Service {
	return &Service{backend: backend, cache: cache, subs: make(map[int]func(bool, bool))}
}

// Settings returns the admin setting list. A failed refresh returns the
// previously cached list together with the error.
func (s *Service) Settings(ctx context.Context) ([]api.SystemSettings, error) {
	v, err := s.cache.Fetch(ctx, SettingsKey(), func(ctx context.Context) (any, error) {
		return s.backend.ListSettings(ctx)
	})
	list, _ := v.([]api.SystemSettings)
	return list, err
}

// Setting returns one setting by key from the cached list.
func (s *Service) Setting(ctx context.Context, key string) (api.SystemSettings, bool, error) {
	list, err := s.Settings(ctx)
	if err != nil {
		return api.SystemSettings{}, false, err
	}
	for _, st := range list {
		if st.SettingKey == key {
			return st, true, nil
		}
	}
	return api.SystemSettings{}, false, nil
}

// UpdateSetting writes one setting value. On success the cached list is
// invalidated, and a change to the image-protection flag takes effect at
// once. A failed write leaves the cache untouched.
func (s *Service) UpdateSetting(ctx context.Context, key, value string) (api.SystemSettings, error) {
	updated, err := s.backend.UpdateSetting(ctx, key, api.UpdateSettingRequest{SettingValue: value})
	if err != nil {
		return api.SystemSettings{}, err
	}

	s.cache.Invalidate(SettingsKey())

	if key == KeyImageProtection {
		enabled, perr := strconv.ParseBool(updated.SettingValue)
		if perr == nil {
			s.setProtection(enabled)
		}
	}

	log.Debug().Str("key", key).Msg("Setting updated")
	return updated, nil
}

// LoadPublic fetches the unauthenticated settings snapshot and stores the
// image-protection flag. It needs no token and runs before login.
func (s *Service) LoadPublic(ctx context.Context) error {
	pub, err := s.backend.GetPublicSettings(ctx)
	if err != nil {
		return err
	}
	s.setProtection(pub.ImageProtectionEnabled)
	return nil
}

// ImageProtection reports whether image protection is on, and whether the
// flag has been loaded at all.
func (s *Service) ImageProtection() (enabled, loaded bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.protected, s.loaded
}

// SubscribeProtection registers a listener called with the current
// image-protection state at once and after every change. The returned func
// removes the listener.
func (s *Service) SubscribeProtection(fn func(enabled, loaded bool)) func() {
	s.mu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	enabled, loaded := s.protected, s.loaded
	s.mu.Unlock()

	fn(enabled, loaded)
	return func() {
		s.mu.Lock()
		delete(s.subs, id)
		s.mu.Unlock()
	}
}

// ResetProtection drops the loaded flag, forcing a reload on next use.
func (s *Service) ResetProtection() {
	s.setState(false, false)
}

func (s *Service) setProtection(enabled bool) {
	s.setState(enabled, true)
}

func (s *Service) setState(enabled, loaded bool) {
	s.mu.Lock()
	s.protected = enabled
	s.loaded = loaded
	fns := make([]func(bool, bool), 0, len(s.subs))
	for _, fn := range s.subs {
		fns = append(fns, fn)
	}
	s.mu.Unlock()

	for _, fn := range fns {
		fn(enabled, loaded)
	}
}
