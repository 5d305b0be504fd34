// Package core contains the business logic of the todo tool: the session
// task manager, the query and derivation functions over task lists, task
// validation, and configuration.
package core

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
	"github.com/valter-silva-au/todo/pkg/models"
)

// ConfigFileName is the name of the configuration file looked up in the base path.
const ConfigFileName = ".todoconfig"

// ConfigurationManager defines the interface for loading and validating
// configuration from the .todoconfig file.
type ConfigurationManager interface {
	LoadGlobalConfig() (*models.GlobalConfig, error)
	ValidateConfig(cfg *models.GlobalConfig) error
	ResolvePath(p string) string
}

// viperConfigManager implements ConfigurationManager using Viper for
// reading YAML configuration files.
type viperConfigManager struct {
	// basePath is the root directory where .todoconfig resides.
	basePath string
}

// NewConfigurationManager creates a new ConfigurationManager that reads
// configuration files relative to basePath.
func NewConfigurationManager(basePath string) ConfigurationManager {
	return &viperConfigManager{basePath: basePath}
}

// DefaultGlobalConfig returns a GlobalConfig populated with defaults.
func DefaultGlobalConfig() *models.GlobalConfig {
	return &models.GlobalConfig{
		ActiveFile:    "tasks.txt",
		ArchiveFile:   "completed_tasks.txt",
		EventsEnabled: true,
		EventLogPath:  ".todo_events.jsonl",
		Color:         true,
		DefaultStatus: models.StatusNonUrgent,
		MaxRetries:    3,
		Alerts: models.AlertConfig{
			MaxUrgent: 5,
			MaxActive: 20,
			IdleDays:  7,
		},
	}
}

// LoadGlobalConfig reads .todoconfig from the base path using Viper.
// If the file does not exist, defaults are returned.
func (cm *viperConfigManager) LoadGlobalConfig() (*models.GlobalConfig, error) {
	cfg := DefaultGlobalConfig()

	v := viper.New()
	v.SetConfigName(ConfigFileName)
	v.SetConfigType("yaml")
	v.AddConfigPath(cm.basePath)

	v.SetDefault("files.active", cfg.ActiveFile)
	v.SetDefault("files.archive", cfg.ArchiveFile)
	v.SetDefault("events.enabled", cfg.EventsEnabled)
	v.SetDefault("events.path", cfg.EventLogPath)
	v.SetDefault("display.color", cfg.Color)
	v.SetDefault("defaults.status", string(cfg.DefaultStatus))
	v.SetDefault("prompt.max_retries", cfg.MaxRetries)
	v.SetDefault("alerts.max_urgent", cfg.Alerts.MaxUrgent)
	v.SetDefault("alerts.max_active", cfg.Alerts.MaxActive)
	v.SetDefault("alerts.idle_days", cfg.Alerts.IdleDays)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return cfg, nil
		}
		return nil, fmt.Errorf("reading %s: %w", ConfigFileName, err)
	}

	cfg.ActiveFile = v.GetString("files.active")
	cfg.ArchiveFile = v.GetString("files.archive")
	cfg.EventsEnabled = v.GetBool("events.enabled")
	cfg.EventLogPath = v.GetString("events.path")
	cfg.Color = v.GetBool("display.color")
	cfg.DefaultStatus = models.Status(v.GetString("defaults.status"))
	cfg.MaxRetries = v.GetInt("prompt.max_retries")
	cfg.Alerts.MaxUrgent = v.GetInt("alerts.max_urgent")
	cfg.Alerts.MaxActive = v.GetInt("alerts.max_active")
	cfg.Alerts.IdleDays = v.GetInt("alerts.idle_days")

	return cfg, nil
}

// ResolvePath joins a relative path onto the base path.
func (cm *viperConfigManager) ResolvePath(p string) string {
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(cm.basePath, p)
}

// ValidateConfig checks the configuration for invalid values and returns a
// clear error message identifying every problem.
func (cm *viperConfigManager) ValidateConfig(cfg *models.GlobalConfig) error {
	if cfg == nil {
		return fmt.Errorf("configuration is nil")
	}

	var errs []string

	if strings.TrimSpace(cfg.ActiveFile) == "" {
		errs = append(errs, "files.active must not be empty")
	}
	if strings.TrimSpace(cfg.ArchiveFile) == "" {
		errs = append(errs, "files.archive must not be empty")
	}
	if cfg.ActiveFile != "" && cm.ResolvePath(cfg.ActiveFile) == cm.ResolvePath(cfg.ArchiveFile) {
		errs = append(errs, fmt.Sprintf("files.active and files.archive must differ, both are %q", cfg.ActiveFile))
	}
	if cfg.EventsEnabled && strings.TrimSpace(cfg.EventLogPath) == "" {
		errs = append(errs, "events.path must not be empty when events are enabled")
	}
	if cfg.MaxRetries < 0 {
		errs = append(errs, fmt.Sprintf("prompt.max_retries must be non-negative, got %d", cfg.MaxRetries))
	}
	if k := cfg.DefaultStatus.Kind(); cfg.DefaultStatus != "" && (k == models.KindOther || k == models.KindDone) {
		errs = append(errs, fmt.Sprintf(
			"defaults.status %q is invalid, must be one of: urgent, semi-urgent, non-urgent",
			cfg.DefaultStatus,
		))
	}
	if cfg.Alerts.MaxUrgent < 0 || cfg.Alerts.MaxActive < 0 || cfg.Alerts.IdleDays < 0 {
		errs = append(errs, "alerts thresholds must be non-negative")
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}
