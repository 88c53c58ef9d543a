package credentials

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestContextIsExpired(t *testing.T) {
	tests := []struct {
		name      string
		expiresAt time.Time
		expected  bool
	}{
		{name: "expired in past", expiresAt: time.Now().Add(-time.Hour), expected: true},
		{name: "inside the expiry skew", expiresAt: time.Now().Add(30 * time.Second), expected: true},
		{name: "plenty of time left", expiresAt: time.Now().Add(2 * time.Hour), expected: false},
		{name: "no recorded expiry", expiresAt: time.Time{}, expected: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := &Context{ExpiresAt: tt.expiresAt}
			assert.Equal(t, tt.expected, ctx.IsExpired())
		})
	}
}

func TestContextHasRefreshToken(t *testing.T) {
	ctx := &Context{}
	assert.False(t, ctx.HasRefreshToken())

	ctx.RefreshToken = "token"
	assert.True(t, ctx.HasRefreshToken())
}

func TestDeriveContextName(t *testing.T) {
	assert.Equal(t, "gw.example.com", DeriveContextName("https://gw.example.com:8080"))
	assert.Equal(t, "10.0.4.2", DeriveContextName("http://10.0.4.2:8080"))
	assert.Equal(t, "default", DeriveContextName(""))
	assert.Equal(t, "default", DeriveContextName("not a url"))
}

func newTestStore(t *testing.T) *Store {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	store, err := NewStore()
	require.NoError(t, err)
	return store
}

func TestStoreLifecycle(t *testing.T) {
	store := newTestStore(t)

	_, err := store.GetCurrentContext()
	assert.ErrorIs(t, err, ErrNoCurrentContext)
	assert.Empty(t, store.ListContexts())

	require.NoError(t, store.SetContext("hq", &Context{
		ServerURL:   "http://hq.example.com:8080",
		Username:    "admin",
		AccessToken: "token1",
	}))
	require.NoError(t, store.SetContext("east-gate", &Context{
		ServerURL: "http://10.0.4.2:8080",
		Username:  "gate-admin",
	}))
	require.NoError(t, store.UseContext("hq"))

	current, err := store.GetCurrentContext()
	require.NoError(t, err)
	assert.Equal(t, "admin", current.Username)

	// Sorted, not map order.
	assert.Equal(t, []string{"east-gate", "hq"}, store.ListContexts())

	require.NoError(t, store.RenameContext("hq", "headquarters"))
	assert.Equal(t, "headquarters", store.GetCurrentContextName())

	require.NoError(t, store.DeleteContext("headquarters"))
	assert.Empty(t, store.GetCurrentContextName())

	_, err = store.GetContext("nonexistent")
	assert.ErrorIs(t, err, ErrContextNotFound)
	assert.ErrorIs(t, store.UseContext("nonexistent"), ErrContextNotFound)
}

func TestStorePersistsAcrossReopen(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	store, err := NewStore()
	require.NoError(t, err)
	require.NoError(t, store.SetContext("hq", &Context{ServerURL: "http://hq:8080", Username: "admin"}))
	require.NoError(t, store.UseContext("hq"))

	reopened, err := NewStore()
	require.NoError(t, err)
	assert.Equal(t, "hq", reopened.GetCurrentContextName())

	current, err := reopened.GetCurrentContext()
	require.NoError(t, err)
	assert.Equal(t, "http://hq:8080", current.ServerURL)

	info, err := os.Stat(reopened.ConfigPath())
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())
}

func TestStoreUpdateTokens(t *testing.T) {
	store := newTestStore(t)
	require.NoError(t, store.SetContext("hq", &Context{ServerURL: "http://hq:8080", AccessToken: "old"}))
	require.NoError(t, store.UseContext("hq"))

	expiry := time.Now().Add(2 * time.Hour)
	require.NoError(t, store.UpdateTokens("new-access", "new-refresh", expiry))

	current, err := store.GetCurrentContext()
	require.NoError(t, err)
	assert.Equal(t, "new-access", current.AccessToken)
	assert.Equal(t, "new-refresh", current.RefreshToken)
	assert.WithinDuration(t, expiry, current.ExpiresAt, time.Second)
}

func TestStoreClearCurrentContextKeepsServer(t *testing.T) {
	store := newTestStore(t)
	require.NoError(t, store.SetContext("hq", &Context{
		ServerURL:    "http://hq:8080",
		Username:     "admin",
		AccessToken:  "token",
		RefreshToken: "refresh",
		ExpiresAt:    time.Now().Add(time.Hour),
	}))
	require.NoError(t, store.UseContext("hq"))

	require.NoError(t, store.ClearCurrentContext())

	current, err := store.GetCurrentContext()
	require.NoError(t, err)
	assert.Empty(t, current.AccessToken)
	assert.Empty(t, current.RefreshToken)
	assert.True(t, current.ExpiresAt.IsZero())
	assert.Equal(t, "http://hq:8080", current.ServerURL)
	assert.Equal(t, "admin", current.Username)
}

func TestStoreReadsHandEditedPreferences(t *testing.T) {
	configHome := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", configHome)

	dir := filepath.Join(configHome, "gatewatchctl")
	require.NoError(t, os.MkdirAll(dir, 0700))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.json"), []byte(`{
		"current_context": "",
		"contexts": {},
		"preferences": {"default_output": "json", "color": "never", "editor": "vi"}
	}`), 0600))

	store, err := NewStore()
	require.NoError(t, err)

	prefs := store.GetPreferences()
	assert.Equal(t, "json", prefs.DefaultOutput)
	assert.Equal(t, "never", prefs.Color)
	assert.Equal(t, "vi", prefs.Editor)
}
