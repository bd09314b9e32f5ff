package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/Paintersrp/jottr/internal/constants"
)

func GetConfigPath(homeDir string) string {
	return filepath.Join(
		homeDir,
		constants.ConfigDir,
		constants.ConfigFile+"."+constants.ConfigFileType,
	)
}

// EnsureConfigExists writes a default configuration on first run and checks
// that the keys required by the selected driver are set.
func EnsureConfigExists(homeDir string) error {
	configPath := GetConfigPath(homeDir)
	configDir := filepath.Dir(configPath)

	if err := os.MkdirAll(configDir, 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if _, err := os.Stat(configPath); errors.Is(err, os.ErrNotExist) {
		if err := Default(homeDir).Save(); err != nil {
			return fmt.Errorf("failed to create config file: %w", err)
		}
	} else if err != nil {
		return fmt.Errorf("failed to check config file existence: %w", err)
	}

	cfg, err := Load(homeDir)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	return cfg.CheckRequired()
}

type requiredKey struct {
	name  string
	value string
}

// CheckRequired reports the first required key left empty as a
// ConfigInitError.
func (cfg *Config) CheckRequired() error {
	required := []requiredKey{{"store.driver", cfg.Store.Driver}}

	switch cfg.Store.Driver {
	case DriverVault:
		required = append(required, requiredKey{"store.vault_dir", cfg.Store.VaultDir})
	case DriverPostgres:
		required = append(required, requiredKey{"store.database_url", cfg.Store.DatabaseURL})
	}

	for _, r := range required {
		if strings.TrimSpace(r.value) == "" {
			return &ConfigInitError{
				msg: fmt.Sprintf("required config variable %q is not set", r.name),
			}
		}
	}

	return nil
}

func quotedList(names []string) string {
	quoted := make([]string, len(names))
	for i, name := range names {
		quoted[i] = fmt.Sprintf("'%s'", name)
	}

	switch len(quoted) {
	case 0:
		return ""
	case 1:
		return quoted[0]
	}

	return strings.Join(quoted[:len(quoted)-1], ", ") + ", or " + quoted[len(quoted)-1]
}
