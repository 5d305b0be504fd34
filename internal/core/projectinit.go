package core

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"text/template"

	"github.com/spf13/afero"
	"github.com/valter-silva-au/todo/pkg/models"
)

// InitConfig holds the parameters for initializing a task directory.
type InitConfig struct {
	BasePath string
	// Color sets display.color in the generated .todoconfig.
	Color bool
	// DisableEvents writes events.enabled: false.
	DisableEvents bool
}

// InitResult holds a summary of what was created vs. skipped.
type InitResult struct {
	Created []string
	Skipped []string
}

// ProjectInitializer prepares a directory for the todo tool: a .todoconfig
// with every setting spelled out and empty task logs.
type ProjectInitializer interface {
	Init(config InitConfig) (*InitResult, error)
}

type projectInitializer struct {
	fs afero.Fs
}

// NewProjectInitializer creates a ProjectInitializer writing through fs. A nil
// fs uses the OS filesystem.
func NewProjectInitializer(fs afero.Fs) ProjectInitializer {
	if fs == nil {
		fs = afero.NewOsFs()
	}
	return &projectInitializer{fs: fs}
}

const todoconfigTemplate = `# todo configuration. Relative paths resolve against this directory.
files:
  active: {{ .ActiveFile }}
  archive: {{ .ArchiveFile }}
events:
  enabled: {{ .EventsEnabled }}
  path: {{ .EventLogPath }}
display:
  color: {{ .Color }}
defaults:
  status: {{ .DefaultStatus }}
prompt:
  max_retries: {{ .MaxRetries }}
alerts:
  max_urgent: {{ .Alerts.MaxUrgent }}
  max_active: {{ .Alerts.MaxActive }}
  idle_days: {{ .Alerts.IdleDays }}
`

// Init creates the base directory, .todoconfig and the two task logs. It is
// safe to run on an existing directory: files that already exist are
// skipped and not overwritten.
func (pi *projectInitializer) Init(config InitConfig) (*InitResult, error) {
	result := &InitResult{}

	created, err := pi.ensureDir(config.BasePath)
	if err != nil {
		return nil, fmt.Errorf("initializing %s: creating directory: %w", config.BasePath, err)
	}
	if created {
		result.Created = append(result.Created, config.BasePath)
	}

	cfg := DefaultGlobalConfig()
	cfg.Color = config.Color
	cfg.EventsEnabled = !config.DisableEvents

	if err := pi.writeFileIfNotExists(filepath.Join(config.BasePath, ConfigFileName), func() ([]byte, error) {
		return renderTemplate(ConfigFileName, todoconfigTemplate, cfg)
	}, result); err != nil {
		return nil, err
	}

	for _, name := range []string{cfg.ActiveFile, cfg.ArchiveFile} {
		if err := pi.writeFileIfNotExists(filepath.Join(config.BasePath, name), func() ([]byte, error) {
			return nil, nil
		}, result); err != nil {
			return nil, err
		}
	}

	return result, nil
}

// ensureDir creates a directory if it does not exist. Returns true if created.
func (pi *projectInitializer) ensureDir(path string) (bool, error) {
	if _, err := pi.fs.Stat(path); err == nil {
		return false, nil
	}
	if err := pi.fs.MkdirAll(path, 0o750); err != nil {
		return false, err
	}
	return true, nil
}

// writeFileIfNotExists writes content from contentFn if the file does not exist.
// It records created/skipped in the result.
func (pi *projectInitializer) writeFileIfNotExists(path string, contentFn func() ([]byte, error), result *InitResult) error {
	if _, err := pi.fs.Stat(path); err == nil {
		result.Skipped = append(result.Skipped, path)
		return nil
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("initializing: checking %s: %w", path, err)
	}
	content, err := contentFn()
	if err != nil {
		return fmt.Errorf("initializing: generating content for %s: %w", path, err)
	}
	if err := afero.WriteFile(pi.fs, path, content, 0o600); err != nil {
		return fmt.Errorf("initializing: writing %s: %w", path, err)
	}
	result.Created = append(result.Created, path)
	return nil
}

func renderTemplate(name, text string, cfg *models.GlobalConfig) ([]byte, error) {
	tmpl, err := template.New(name).Parse(text)
	if err != nil {
		return nil, fmt.Errorf("parsing template %s: %w", name, err)
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, cfg); err != nil {
		return nil, fmt.Errorf("rendering template %s: %w", name, err)
	}
	return buf.Bytes(), nil
}
