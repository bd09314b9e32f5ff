package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/Paintersrp/jottr/internal/constants"
	"github.com/Paintersrp/jottr/internal/query"
)

const (
	DriverVault    = "vault"
	DriverPostgres = "postgres"
	DriverMemory   = "memory"

	defaultRetentionDays = 30
	defaultModel         = "gpt-4o-mini"
	defaultTimeout       = 60
	defaultRetries       = 3
	defaultSyncPrefix    = "jottr"
)

var validDrivers = []string{DriverVault, DriverPostgres, DriverMemory}

var validEditorNames = []string{"nvim", "vim", "nano", "emacs", "hx", "code", "vscode", "custom"}

// Drivers lists the supported store drivers.
func Drivers() []string {
	return slices.Clone(validDrivers)
}

// EditorNames lists the supported editors in display order.
func EditorNames() []string {
	return slices.Clone(validEditorNames)
}

var ValidEditors = func() map[string]bool {
	editors := make(map[string]bool, len(validEditorNames))
	for _, editor := range validEditorNames {
		editors[editor] = true
	}

	return editors
}()

type StoreConfig struct {
	Driver      string `yaml:"driver"       json:"driver"`
	VaultDir    string `yaml:"vault_dir"    json:"vault_dir"`
	DatabaseURL string `yaml:"database_url" json:"database_url"`
}

type CompletionConfig struct {
	APIKey         string `yaml:"api_key"         json:"api_key"`
	Model          string `yaml:"model"           json:"model"`
	BaseURL        string `yaml:"base_url"        json:"base_url"`
	TimeoutSeconds int    `yaml:"timeout_seconds" json:"timeout_seconds"`
	MaxRetries     int    `yaml:"max_retries"     json:"max_retries"`
}

// Timeout returns the per-request completion timeout.
func (c CompletionConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

type SyncConfig struct {
	Bucket          string `yaml:"bucket"            json:"bucket"`
	Prefix          string `yaml:"prefix"            json:"prefix"`
	Region          string `yaml:"region"            json:"region"`
	Endpoint        string `yaml:"endpoint"          json:"endpoint"`
	AccessKeyID     string `yaml:"access_key_id"     json:"access_key_id"`
	SecretAccessKey string `yaml:"secret_access_key" json:"secret_access_key"`
}

type Config struct {
	Store           StoreConfig      `yaml:"store"            json:"store"`
	Editor          string           `yaml:"editor"           json:"editor"`
	LogLevel        string           `yaml:"log_level"        json:"log_level"`
	DefaultCategory string           `yaml:"default_category" json:"default_category"`
	RetentionDays   *int             `yaml:"retention_days"   json:"retention_days"`
	Completion      CompletionConfig `yaml:"completion"       json:"completion"`
	Sync            SyncConfig       `yaml:"sync"             json:"sync"`

	home       string `yaml:"-"`
	overridden bool   `yaml:"-"`
}

// Default returns the configuration written on first run.
func Default(home string) *Config {
	retention := defaultRetentionDays
	cfg := &Config{
		Store: StoreConfig{
			Driver:   DriverVault,
			VaultDir: filepath.Join(home, constants.DefaultVault),
		},
		LogLevel:        "info",
		DefaultCategory: string(query.All),
		RetentionDays:   &retention,
		home:            home,
	}
	cfg.ensureDefaults()
	return cfg
}

func (cfg *Config) ensureDefaults() {
	if cfg.Store.Driver == "" {
		cfg.Store.Driver = DriverVault
	}
	if cfg.Store.Driver == DriverVault && cfg.Store.VaultDir == "" && cfg.home != "" {
		cfg.Store.VaultDir = filepath.Join(cfg.home, constants.DefaultVault)
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
	if cfg.DefaultCategory == "" {
		cfg.DefaultCategory = string(query.All)
	}
	if cfg.RetentionDays == nil {
		retention := defaultRetentionDays
		cfg.RetentionDays = &retention
	}
	if cfg.Completion.Model == "" {
		cfg.Completion.Model = defaultModel
	}
	if cfg.Completion.TimeoutSeconds <= 0 {
		cfg.Completion.TimeoutSeconds = defaultTimeout
	}
	if cfg.Completion.MaxRetries <= 0 {
		cfg.Completion.MaxRetries = defaultRetries
	}
	if cfg.Sync.Prefix == "" {
		cfg.Sync.Prefix = defaultSyncPrefix
	}
	cfg.Store.VaultDir = expandHome(cfg.Store.VaultDir, cfg.home)
}

func Load(home string) (*Config, error) {
	path := GetConfigPath(home)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	cfg := &Config{}
	if len(strings.TrimSpace(string(data))) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
	}
	cfg.home = home
	cfg.ensureDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks the values that have a closed set of choices.
func (cfg *Config) Validate() error {
	if !slices.Contains(validDrivers, cfg.Store.Driver) {
		return fmt.Errorf(
			"%w: %q. Please choose from %s.",
			ErrUnknownDriver,
			cfg.Store.Driver,
			quotedList(validDrivers),
		)
	}

	if cfg.Editor != "" {
		if err := ValidateEditor(cfg.Editor); err != nil {
			return err
		}
	}

	if _, err := query.ParseCategory(cfg.DefaultCategory); err != nil {
		return fmt.Errorf("default_category: %w", err)
	}

	if cfg.RetentionDays != nil && *cfg.RetentionDays < 0 {
		return fmt.Errorf("retention_days cannot be negative: %d", *cfg.RetentionDays)
	}

	return nil
}

func ValidateEditor(editor string) error {
	if _, valid := ValidEditors[editor]; valid {
		return nil
	}

	return fmt.Errorf(
		"invalid editor: %q. Please choose from %s.",
		editor,
		quotedList(validEditorNames),
	)
}

// Retention is how long discarded stories are kept before purge removes them.
// Zero disables purging.
func (cfg *Config) Retention() time.Duration {
	if cfg.RetentionDays == nil {
		return defaultRetentionDays * 24 * time.Hour
	}
	return time.Duration(*cfg.RetentionDays) * 24 * time.Hour
}

// Category returns the parsed default category.
func (cfg *Config) Category() query.Category {
	c, err := query.ParseCategory(cfg.DefaultCategory)
	if err != nil {
		return query.All
	}
	return c
}

func (cfg *Config) Home() string {
	return cfg.home
}

func (cfg *Config) GetConfigPath() string {
	return GetConfigPath(cfg.home)
}

// ChangeEditor switches the editor for this run and records it in the
// configuration file. Other keys in the file are left as they are.
func (cfg *Config) ChangeEditor(editor string) error {
	if err := ValidateEditor(editor); err != nil {
		return err
	}

	if _, err := Update(cfg.home, func(file *Config) error {
		file.Editor = editor
		return nil
	}); err != nil {
		return err
	}

	cfg.Editor = editor
	return nil
}

// Update reads the configuration file under home, applies fn to it and writes
// it back. A missing file starts from Default.
func Update(home string, fn func(*Config) error) (*Config, error) {
	file, err := Load(home)
	if errors.Is(err, os.ErrNotExist) {
		file = Default(home)
	} else if err != nil {
		return nil, err
	}

	if err := fn(file); err != nil {
		return nil, err
	}
	file.home = home
	if err := file.Save(); err != nil {
		return nil, err
	}
	return file, nil
}

// Save writes cfg to the configuration file. A config carrying flag or
// environment overrides is refused; use Update instead.
func (cfg *Config) Save() error {
	if cfg.overridden {
		return ErrOverridden
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}

	configPath := cfg.GetConfigPath()
	if err := os.MkdirAll(filepath.Dir(configPath), 0o755); err != nil {
		return err
	}

	return os.WriteFile(configPath, data, 0o600)
}

var overrideKeys = []string{
	"store.driver",
	"store.vault_dir",
	"store.database_url",
	"editor",
	"log_level",
	"default_category",
	"retention_days",
	"completion.api_key",
	"completion.model",
	"completion.base_url",
	"completion.timeout_seconds",
	"completion.max_retries",
	"sync.bucket",
	"sync.prefix",
	"sync.region",
	"sync.endpoint",
	"sync.access_key_id",
	"sync.secret_access_key",
}

// NewViper returns a viper instance reading JOTTR_* environment variables for
// every configuration key. Commands bind their persistent flags onto it.
func NewViper() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(constants.EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	for _, key := range overrideKeys {
		env := constants.EnvPrefix + "_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
		names := []string{key, env}
		if key == "completion.api_key" {
			names = append(names, "OPENAI_API_KEY")
		}
		_ = v.BindEnv(names...)
	}

	return v
}

// ApplyOverrides copies every key set in v (by flag or environment) over the
// file values and validates the result.
func (cfg *Config) ApplyOverrides(v *viper.Viper) error {
	if v == nil {
		return nil
	}

	str := map[string]*string{
		"store.driver":           &cfg.Store.Driver,
		"store.vault_dir":        &cfg.Store.VaultDir,
		"store.database_url":     &cfg.Store.DatabaseURL,
		"editor":                 &cfg.Editor,
		"log_level":              &cfg.LogLevel,
		"default_category":       &cfg.DefaultCategory,
		"completion.api_key":     &cfg.Completion.APIKey,
		"completion.model":       &cfg.Completion.Model,
		"completion.base_url":    &cfg.Completion.BaseURL,
		"sync.bucket":            &cfg.Sync.Bucket,
		"sync.prefix":            &cfg.Sync.Prefix,
		"sync.region":            &cfg.Sync.Region,
		"sync.endpoint":          &cfg.Sync.Endpoint,
		"sync.access_key_id":     &cfg.Sync.AccessKeyID,
		"sync.secret_access_key": &cfg.Sync.SecretAccessKey,
	}
	ints := map[string]*int{
		"completion.timeout_seconds": &cfg.Completion.TimeoutSeconds,
		"completion.max_retries":     &cfg.Completion.MaxRetries,
	}

	for _, key := range overrideKeys {
		if !v.IsSet(key) {
			continue
		}
		cfg.overridden = true
		if dst, ok := str[key]; ok {
			if val := v.GetString(key); val != "" {
				*dst = val
			}
			continue
		}
		if dst, ok := ints[key]; ok {
			*dst = v.GetInt(key)
			continue
		}
		if key == "retention_days" {
			days := v.GetInt(key)
			cfg.RetentionDays = &days
		}
	}

	cfg.ensureDefaults()
	return cfg.Validate()
}

func expandHome(path, home string) string {
	if home == "" {
		return path
	}
	if path == "~" {
		return home
	}
	if strings.HasPrefix(path, "~/") {
		return filepath.Join(home, path[2:])
	}
	return path
}
