// Package settingsfile reads operator-provided settings defaults from yaml.
package settingsfile

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/MrSnakeDoc/stamp/internal/domain"
)

// Loader handles loading and parsing of the settings defaults file
type Loader struct {
	filePath string
}

// NewLoader creates a new settings file loader
func NewLoader(filePath string) *Loader {
	return &Loader{
		filePath: filePath,
	}
}

// Path returns the configured file path
func (l *Loader) Path() string { return l.filePath }

// Load reads the file and returns it as a patch. Keys left out of the file
// stay nil and keep the built-in defaults. Environment references such as
// ${STAMP_COPY_MODE} are expanded before parsing.
//
// Example:
//
//	autoPlayOnJump: true
//	copyMode: title_url_and_timestamps_with_links
func (l *Loader) Load() (domain.SettingsPatch, error) {
	data, err := os.ReadFile(l.filePath)
	if err != nil {
		return domain.SettingsPatch{}, fmt.Errorf("failed to read settings file: %w", err)
	}

	data = []byte(os.ExpandEnv(string(data)))

	var patch domain.SettingsPatch
	if len(bytes.TrimSpace(data)) == 0 {
		return patch, nil
	}
	if err := yaml.Unmarshal(data, &patch); err != nil {
		return domain.SettingsPatch{}, fmt.Errorf("failed to parse settings yaml: %w", err)
	}

	if patch.CopyMode != nil && !patch.CopyMode.Valid() {
		return domain.SettingsPatch{}, fmt.Errorf("settings file %s: %w: %q",
			l.filePath, domain.ErrInvalidCopyMode, *patch.CopyMode)
	}

	return patch, nil
}

// Defaults loads the file and merges it over the built-in defaults.
func (l *Loader) Defaults() (domain.Settings, error) {
	patch, err := l.Load()
	if err != nil {
		return domain.Settings{}, err
	}
	return patch.Apply(domain.DefaultSettings()), nil
}
