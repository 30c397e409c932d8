package domain

import "fmt"

// CopyMode selects the export text layout.
type CopyMode string

const (
	CopyTimestampsOnly        CopyMode = "timestamps_only"
	CopyTitleURLAndTimestamps CopyMode = "title_url_and_timestamps_with_links"
)

// Valid reports whether m is a known mode.
func (m CopyMode) Valid() bool {
	return m == CopyTimestampsOnly || m == CopyTitleURLAndTimestamps
}

// Settings are user preferences shared by every resource.
type Settings struct {
	AutoPlayOnJump bool     `json:"autoPlayOnJump" yaml:"autoPlayOnJump"`
	CopyMode       CopyMode `json:"copyMode" yaml:"copyMode"`
}

// DefaultSettings: jump pauses, export emits timestamps only.
func DefaultSettings() Settings {
	return Settings{
		AutoPlayOnJump: false,
		CopyMode:       CopyTimestampsOnly,
	}
}

// Validate checks the copy mode.
func (s Settings) Validate() error {
	if !s.CopyMode.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidCopyMode, s.CopyMode)
	}
	return nil
}

// SettingsPatch is a partially specified settings document, as stored or
// as read from a defaults file. Nil fields keep the base value.
type SettingsPatch struct {
	AutoPlayOnJump *bool     `json:"autoPlayOnJump,omitempty" yaml:"autoPlayOnJump"`
	CopyMode       *CopyMode `json:"copyMode,omitempty" yaml:"copyMode"`
}

// Apply overlays the patch onto base. Unknown copy modes are ignored.
func (p SettingsPatch) Apply(base Settings) Settings {
	if p.AutoPlayOnJump != nil {
		base.AutoPlayOnJump = *p.AutoPlayOnJump
	}
	if p.CopyMode != nil && p.CopyMode.Valid() {
		base.CopyMode = *p.CopyMode
	}
	return base
}

// Patch returns s as a fully specified patch.
func (s Settings) Patch() SettingsPatch {
	auto := s.AutoPlayOnJump
	mode := s.CopyMode
	return SettingsPatch{AutoPlayOnJump: &auto, CopyMode: &mode}
}
