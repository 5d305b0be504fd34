package models

// AlertConfig holds thresholds for the alert engine.
type AlertConfig struct {
	MaxUrgent int `yaml:"max_urgent" mapstructure:"max_urgent"`
	MaxActive int `yaml:"max_active" mapstructure:"max_active"`
	IdleDays  int `yaml:"idle_days" mapstructure:"idle_days"`
}

// GlobalConfig holds settings read from .todoconfig via Viper.
type GlobalConfig struct {
	ActiveFile    string      `yaml:"active_file" mapstructure:"active_file"`
	ArchiveFile   string      `yaml:"archive_file" mapstructure:"archive_file"`
	EventsEnabled bool        `yaml:"events_enabled" mapstructure:"events_enabled"`
	EventLogPath  string      `yaml:"event_log" mapstructure:"event_log"`
	Color         bool        `yaml:"color" mapstructure:"color"`
	DefaultStatus Status      `yaml:"default_status" mapstructure:"default_status"`
	MaxRetries    int         `yaml:"max_retries" mapstructure:"max_retries"`
	Alerts        AlertConfig `yaml:"alerts" mapstructure:"alerts"`
}
