package state

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/viper"

	"github.com/Paintersrp/jottr/internal/config"
	"github.com/Paintersrp/jottr/internal/logging"
	"github.com/Paintersrp/jottr/internal/query"
	"github.com/Paintersrp/jottr/internal/store"
	"github.com/Paintersrp/jottr/internal/store/memory"
	"github.com/Paintersrp/jottr/internal/store/postgres"
	"github.com/Paintersrp/jottr/internal/store/vault"
)

type State struct {
	Config *config.Config
	Viper  *viper.Viper
	Home   string
	Logger zerolog.Logger
	Engine *query.Engine

	logOut io.Writer
	clock  func() time.Time

	mu      sync.Mutex
	store   store.Store
	watcher *VaultWatcher
}

type Option func(*State)

// WithStore makes the state use st instead of opening the configured backend.
func WithStore(st store.Store) Option {
	return func(s *State) {
		s.store = st
	}
}

func WithLogger(logger zerolog.Logger) Option {
	return func(s *State) {
		s.Logger = logger
	}
}

// WithClock fixes the reference time used by the query engine.
func WithClock(now func() time.Time) Option {
	return func(s *State) {
		s.clock = now
	}
}

// New builds a state around an already loaded configuration.
func New(cfg *config.Config, opts ...Option) *State {
	s := &State{
		Config: cfg,
		Viper:  config.NewViper(),
		Home:   cfg.Home(),
		Logger: zerolog.Nop(),
		logOut: os.Stderr,
		clock:  time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.Engine = query.NewEngine(query.WithClock(s.clock), query.WithStrict(true))
	return s
}

func NewState() (*State, error) {
	home, err := GetHomeDir()
	if err != nil {
		return nil, err
	}

	cfg, err := LoadConfig(home)
	if err != nil {
		return nil, err
	}

	s := New(cfg)
	if err := s.Refresh(); err != nil {
		return nil, err
	}
	return s, nil
}

func GetHomeDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory. err: %s", err)
	}

	return home, nil
}

func LoadConfig(home string) (*config.Config, error) {
	if err := config.EnsureConfigExists(home); err != nil {
		return nil, err
	}

	return config.Load(home)
}

// Refresh applies flag and environment overrides bound to Viper and rebuilds
// the logger. Commands call it once flags have been parsed.
func (s *State) Refresh() error {
	if err := s.Config.ApplyOverrides(s.Viper); err != nil {
		return err
	}

	logger, err := logging.New(s.logOut, s.Config.LogLevel)
	if err != nil {
		return err
	}
	s.Logger = logger
	return nil
}

// SetNow pins the query engine's reference time.
func (s *State) SetNow(now time.Time) {
	s.clock = func() time.Time { return now }
	s.Engine = query.NewEngine(query.WithClock(s.clock), query.WithStrict(true))
}

// Now returns the reference time used for queries and lifecycle stamps.
func (s *State) Now() time.Time {
	return s.clock()
}

// Store opens the configured backend on first use.
func (s *State) Store(ctx context.Context) (store.Store, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.store != nil {
		return s.store, nil
	}

	st, err := OpenStore(ctx, s.Config.Store, s.Logger)
	if err != nil {
		return nil, err
	}
	s.store = st
	return st, nil
}

// OpenStore picks the backend named by cfg.Driver.
func OpenStore(ctx context.Context, cfg config.StoreConfig, logger zerolog.Logger) (store.Store, error) {
	switch cfg.Driver {
	case config.DriverVault:
		return vault.New(cfg.VaultDir, logger)
	case config.DriverPostgres:
		return postgres.Open(ctx, cfg.DatabaseURL, logger)
	case config.DriverMemory:
		return memory.New(), nil
	default:
		return nil, fmt.Errorf("%w: %q", config.ErrUnknownDriver, cfg.Driver)
	}
}

// Watcher returns a watcher over the vault directory. Only the vault driver
// can be watched; other drivers return nil.
func (s *State) Watcher() (*VaultWatcher, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.watcher != nil {
		return s.watcher, nil
	}
	if s.Config.Store.Driver != config.DriverVault {
		return nil, nil
	}

	if err := os.MkdirAll(s.Config.Store.VaultDir, os.ModePerm); err != nil {
		return nil, err
	}

	w, err := NewVaultWatcher(s.Config.Store.VaultDir)
	if err != nil {
		return nil, fmt.Errorf("failed to create vault watcher: %w", err)
	}
	s.watcher = w
	return w, nil
}

// Close releases the watcher and the store.
func (s *State) Close() error {
	if s == nil {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var errs []error
	if s.watcher != nil {
		if err := s.watcher.Close(); err != nil {
			errs = append(errs, err)
		}
		s.watcher = nil
	}
	if s.store != nil {
		if err := s.store.Close(); err != nil {
			errs = append(errs, err)
		}
		s.store = nil
	}

	return errors.Join(errs...)
}
