// Package internal provides the App struct that wires all components of the
// todo tool together and initializes the CLI layer.
package internal

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/afero"
	"github.com/valter-silva-au/todo/internal/cli"
	"github.com/valter-silva-au/todo/internal/core"
	"github.com/valter-silva-au/todo/internal/observability"
	"github.com/valter-silva-au/todo/internal/storage"
	"github.com/valter-silva-au/todo/pkg/models"
)

// App holds all service dependencies for the todo tool.
type App struct {
	BasePath string

	// Configuration
	ConfigMgr core.ConfigurationManager
	Config    *models.GlobalConfig

	// Storage layer
	TaskLog *storage.TaskLog

	// Core services
	TaskMgr     core.TaskManager
	ProjectInit core.ProjectInitializer

	// Observability
	EventLog    observability.EventLog
	AlertEngine observability.AlertEngine
	MetricsCalc observability.MetricsCalculator
}

// NewApp creates and wires all components. basePath is the directory holding
// .todoconfig and, unless configured otherwise, the task logs.
func NewApp(basePath string) (*App, error) {
	return newApp(basePath, afero.NewOsFs())
}

func newApp(basePath string, fs afero.Fs) (*App, error) {
	app := &App{BasePath: basePath}

	// --- Configuration ---
	app.ConfigMgr = core.NewConfigurationManager(basePath)
	cfg, err := app.ConfigMgr.LoadGlobalConfig()
	if err != nil {
		return nil, fmt.Errorf("loading configuration: %w", err)
	}
	if err := app.ConfigMgr.ValidateConfig(cfg); err != nil {
		return nil, err
	}
	app.Config = cfg

	// --- Storage layer ---
	app.TaskLog = storage.NewTaskLog(fs,
		app.ConfigMgr.ResolvePath(cfg.ActiveFile),
		app.ConfigMgr.ResolvePath(cfg.ArchiveFile),
	)

	// --- Observability ---
	if cfg.EventsEnabled {
		app.EventLog, err = observability.NewJSONLEventLog(fs, app.ConfigMgr.ResolvePath(cfg.EventLogPath))
		if err != nil {
			// Non-fatal: run without the event log.
			app.EventLog = nil
		}
	}
	if app.EventLog != nil {
		app.MetricsCalc = observability.NewMetricsCalculator(app.EventLog)
	}

	// --- Core services ---
	opts := []core.Option{}
	if app.EventLog != nil {
		opts = append(opts, core.WithEventLogger(&eventLogAdapter{log: app.EventLog}))
	}
	app.TaskMgr = core.NewTaskManager(app.TaskLog, opts...)
	if err := app.TaskMgr.Load(); err != nil {
		_ = app.Close()
		return nil, err
	}

	app.ProjectInit = core.NewProjectInitializer(fs)

	// The alert engine reads the event log when present and the task list
	// always, so it is wired even with events disabled.
	app.AlertEngine = observability.NewAlertEngine(app.TaskMgr, app.EventLog, cfg.Alerts)

	// --- Wire CLI package-level variables ---
	cli.BasePath = basePath
	cli.Config = cfg
	cli.TaskMgr = app.TaskMgr
	cli.ProjectInit = app.ProjectInit
	cli.EventLog = app.EventLog
	cli.AlertEngine = app.AlertEngine
	cli.MetricsCalc = app.MetricsCalc

	return app, nil
}

// Close releases resources held by the App, such as the event log file handle.
// It is safe to call Close on an App whose EventLog is nil.
func (a *App) Close() error {
	if a.EventLog != nil {
		return a.EventLog.Close()
	}
	return nil
}

// ResolveBasePath returns the nearest directory, starting at the working
// directory and walking up, that contains .todoconfig. Without one it
// returns the working directory.
func ResolveBasePath() string {
	cwd, err := os.Getwd()
	if err != nil {
		return "."
	}
	dir := cwd
	for {
		if _, err := os.Stat(filepath.Join(dir, core.ConfigFileName)); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return cwd
}

// --- Adapters ---

// eventLogAdapter adapts observability.EventLog to core.EventLogger.
type eventLogAdapter struct {
	log observability.EventLog
}

func (a *eventLogAdapter) LogEvent(eventType string, data map[string]any) error {
	level := observability.LevelInfo
	if late, ok := data["overdue"].(bool); ok && late {
		level = observability.LevelWarn
	}
	return a.log.Write(observability.Event{
		Time:    time.Now().UTC(),
		Level:   level,
		Type:    eventType,
		Message: eventType,
		Data:    data,
	})
}
