package credentials

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"
)

const (
	configDirName  = "gatewatchctl"
	configFileName = "config.json"
)

var (
	// ErrNoCurrentContext indicates no context is currently set.
	ErrNoCurrentContext = errors.New("no current context set")
	// ErrContextNotFound indicates the requested context doesn't exist.
	ErrContextNotFound = errors.New("context not found")
	// ErrNotLoggedIn indicates no valid credentials exist.
	ErrNotLoggedIn = errors.New("not logged in - run 'gatewatchctl login' first")
)

// config is the on-disk shape of the credential file.
type config struct {
	CurrentContext string              `json:"current_context"`
	Contexts       map[string]*Context `json:"contexts"`
	Preferences    Preferences         `json:"preferences,omitempty"`
}

// Store reads and writes the credential file. Methods that change
// state persist immediately; there is no separate flush.
type Store struct {
	path string
	cfg  *config
}

// NewStore opens the credential file under XDG_CONFIG_HOME (or
// ~/.config), creating an empty store when none exists yet.
func NewStore() (*Store, error) {
	path, err := configPath()
	if err != nil {
		return nil, err
	}

	cfg, err := readConfig(path)
	if err != nil {
		return nil, err
	}

	return &Store{path: path, cfg: cfg}, nil
}

func configPath() (string, error) {
	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("cannot determine home directory: %w", err)
		}
		configHome = filepath.Join(home, ".config")
	}
	return filepath.Join(configHome, configDirName, configFileName), nil
}

func readConfig(path string) (*config, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return &config{Contexts: make(map[string]*Context)}, nil
	}
	if err != nil {
		return nil, err
	}

	cfg := &config{}
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("credential file %s is corrupt: %w", path, err)
	}
	if cfg.Contexts == nil {
		cfg.Contexts = make(map[string]*Context)
	}
	return cfg, nil
}

// save writes the credential file atomically with owner-only
// permissions; tokens live here.
func (s *Store) save() error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("cannot create config directory: %w", err)
	}

	data, err := json.MarshalIndent(s.cfg, "", "  ")
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, ".config-*.json")
	if err != nil {
		return err
	}
	if err := tmp.Chmod(0600); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		return err
	}
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), s.path)
}

// GetCurrentContext returns the context commands run against.
func (s *Store) GetCurrentContext() (*Context, error) {
	if s.cfg.CurrentContext == "" {
		return nil, ErrNoCurrentContext
	}

	ctx, ok := s.cfg.Contexts[s.cfg.CurrentContext]
	if !ok {
		return nil, ErrContextNotFound
	}
	return ctx, nil
}

// GetCurrentContextName returns the current context's name, or "" when
// none is set.
func (s *Store) GetCurrentContextName() string {
	return s.cfg.CurrentContext
}

// GetContext returns the named context.
func (s *Store) GetContext(name string) (*Context, error) {
	ctx, ok := s.cfg.Contexts[name]
	if !ok {
		return nil, ErrContextNotFound
	}
	return ctx, nil
}

// ListContexts returns all context names, sorted.
func (s *Store) ListContexts() []string {
	names := make([]string, 0, len(s.cfg.Contexts))
	for name := range s.cfg.Contexts {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// SetContext creates or replaces a context and persists it.
func (s *Store) SetContext(name string, ctx *Context) error {
	s.cfg.Contexts[name] = ctx
	return s.save()
}

// UseContext makes the named context current.
func (s *Store) UseContext(name string) error {
	if _, ok := s.cfg.Contexts[name]; !ok {
		return ErrContextNotFound
	}
	s.cfg.CurrentContext = name
	return s.save()
}

// RenameContext renames a context, following the current-context marker
// if it pointed at the old name.
func (s *Store) RenameContext(oldName, newName string) error {
	ctx, ok := s.cfg.Contexts[oldName]
	if !ok {
		return ErrContextNotFound
	}

	delete(s.cfg.Contexts, oldName)
	s.cfg.Contexts[newName] = ctx
	if s.cfg.CurrentContext == oldName {
		s.cfg.CurrentContext = newName
	}
	return s.save()
}

// DeleteContext removes a context. Deleting the current context leaves
// no context selected.
func (s *Store) DeleteContext(name string) error {
	if _, ok := s.cfg.Contexts[name]; !ok {
		return ErrContextNotFound
	}

	delete(s.cfg.Contexts, name)
	if s.cfg.CurrentContext == name {
		s.cfg.CurrentContext = ""
	}
	return s.save()
}

// UpdateTokens stores a fresh token set on the current context, as
// after a login or refresh.
func (s *Store) UpdateTokens(accessToken, refreshToken string, expiresAt time.Time) error {
	ctx, err := s.GetCurrentContext()
	if err != nil {
		return err
	}

	ctx.AccessToken = accessToken
	ctx.RefreshToken = refreshToken
	ctx.ExpiresAt = expiresAt
	return s.save()
}

// ClearCurrentContext drops the current context's tokens but keeps the
// context itself, so a later login remembers the server.
func (s *Store) ClearCurrentContext() error {
	ctx, err := s.GetCurrentContext()
	if err != nil {
		return err
	}

	ctx.AccessToken = ""
	ctx.RefreshToken = ""
	ctx.ExpiresAt = time.Time{}
	return s.save()
}

// GetPreferences returns the operator's display preferences.
func (s *Store) GetPreferences() Preferences {
	return s.cfg.Preferences
}

// ConfigPath returns the credential file's location.
func (s *Store) ConfigPath() string {
	return s.path
}
