package settings

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/suipic/client-go/internal/infra/api"
	"github.com/suipic/client-go/internal/infra/querycache"
)

type fakeBackend struct {
	listCalls int
	list      []api.SystemSettings
	listErr   error

	updateErr error

	public    api.PublicSettings
	publicErr error
}

func (f *fakeBackend) ListSettings(ctx context.Context) ([]api.SystemSettings, error) {
	f.listCalls++
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.list, nil
}

func (f *fakeBackend) UpdateSetting(ctx context.Context, key string, req api.UpdateSettingRequest) (api.SystemSettings, error) {
	if f.updateErr != nil {
		return api.SystemSettings{}, f.updateErr
	}
	return api.SystemSettings{ID: 1, SettingKey: key, SettingValue: req.SettingValue}, nil
}

func (f *fakeBackend) GetPublicSettings(ctx context.Context) (api.PublicSettings, error) {
	if f.publicErr != nil {
		return api.PublicSettings{}, f.publicErr
	}
	return f.public, nil
}

func TestSettingsCachedUntilInvalidated(t *testing.T) {
	backend := &fakeBackend{list: []api.SystemSettings{{ID: 1, SettingKey: "a", SettingValue: "1"}}}
	svc := NewService(backend, querycache.New())

	ctx := context.Background()
	for i := 0; i < 3; i++ {
		list, err := svc.Settings(ctx)
		require.NoError(t, err)
		require.Len(t, list, 1)
	}
	assert.Equal(t, 1, backend.listCalls)
}

func TestUpdateSettingInvalidatesList(t *testing.T) {
	backend := &fakeBackend{list: []api.SystemSettings{{SettingKey: "a", SettingValue: "1"}}}
	svc := NewService(backend, querycache.New())
	ctx := context.Background()

	_, err := svc.Settings(ctx)
	require.NoError(t, err)

	updated, err := svc.UpdateSetting(ctx, "a", "2")
	require.NoError(t, err)
	assert.Equal(t, "2", updated.SettingValue)

	backend.list = []api.SystemSettings{{SettingKey: "a", SettingValue: "2"}}
	list, err := svc.Settings(ctx)
	require.NoError(t, err)
	assert.Equal(t, "2", list[0].SettingValue)
	assert.Equal(t, 2, backend.listCalls, "the stale list was refetched")
}

func TestFailedUpdateLeavesCacheFresh(t *testing.T) {
	backend := &fakeBackend{list: []api.SystemSettings{{SettingKey: "a", SettingValue: "1"}}}
	svc := NewService(backend, querycache.New())
	ctx := context.Background()

	_, err := svc.Settings(ctx)
	require.NoError(t, err)

	backend.updateErr = &api.Error{Op: "UpdateSetting", Status: 403, Message: "admin only"}
	_, err = svc.UpdateSetting(ctx, "a", "2")
	require.Error(t, err)

	_, err = svc.Settings(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, backend.listCalls, "a failed write must not invalidate")
}

func TestStaleWhileErrorOnSettings(t *testing.T) {
	backend := &fakeBackend{list: []api.SystemSettings{{SettingKey: "a", SettingValue: "1"}}}
	cache := querycache.New()
	svc := NewService(backend, cache)
	ctx := context.Background()

	first, err := svc.Settings(ctx)
	require.NoError(t, err)

	cache.Invalidate(SettingsKey())
	backend.listErr = errors.New("offline")

	got, err := svc.Settings(ctx)
	require.Error(t, err)
	assert.Equal(t, first, got, "the previous list stays usable on a failed refresh")
}

func TestLoadPublicSetsProtection(t *testing.T) {
	backend := &fakeBackend{public: api.PublicSettings{ImageProtectionEnabled: true}}
	svc := NewService(backend, querycache.New())

	_, loaded := svc.ImageProtection()
	assert.False(t, loaded)

	require.NoError(t, svc.LoadPublic(context.Background()))
	enabled, loaded := svc.ImageProtection()
	assert.True(t, enabled)
	assert.True(t, loaded)

	svc.ResetProtection()
	_, loaded = svc.ImageProtection()
	assert.False(t, loaded)
}

func TestUpdateImageProtectionTakesEffectImmediately(t *testing.T) {
	backend := &fakeBackend{public: api.PublicSettings{ImageProtectionEnabled: false}}
	svc := NewService(backend, querycache.New())
	ctx := context.Background()

	require.NoError(t, svc.LoadPublic(ctx))
	enabled, _ := svc.ImageProtection()
	require.False(t, enabled)

	_, err := svc.UpdateSetting(ctx, KeyImageProtection, "true")
	require.NoError(t, err)

	enabled, loaded := svc.ImageProtection()
	assert.True(t, enabled)
	assert.True(t, loaded)
}

func TestSubscribeProtection(t *testing.T) {
	backend := &fakeBackend{public: api.PublicSettings{ImageProtectionEnabled: true}}
	svc := NewService(backend, querycache.New())

	type update struct{ enabled, loaded bool }
	var updates []update
	unsubscribe := svc.SubscribeProtection(func(enabled, loaded bool) {
		updates = append(updates, update{enabled, loaded})
	})

	require.NoError(t, svc.LoadPublic(context.Background()))
	svc.ResetProtection()

	require.Len(t, updates, 3)
	assert.Equal(t, update{false, false}, updates[0])
	assert.Equal(t, update{true, true}, updates[1])
	assert.Equal(t, update{false, false}, updates[2])

	unsubscribe()
	require.NoError(t, svc.LoadPublic(context.Background()))
	assert.Len(t, updates, 3)
}

func TestSettingLookupByKey(t *testing.T) {
	backend := &fakeBackend{list: []api.SystemSettings{
		{SettingKey: "a", SettingValue: "1"},
		{SettingKey: "b", SettingValue: "2"},
	}}
	svc := NewService(backend, querycache.New())
	ctx := context.Background()

	st, ok, err := svc.Setting(ctx, "b")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "2", st.SettingValue)

	_, ok, err = svc.Setting(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, ok)
}
