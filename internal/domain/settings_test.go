package domain

import (
	"errors"
	"testing"
)

func TestSettingsPatchApply(t *testing.T) {
	yes := true
	links := CopyTitleURLAndTimestamps
	bogus := CopyMode("bogus")

	tests := []struct {
		name  string
		patch SettingsPatch
		want  Settings
	}{
		{
			name:  "empty patch keeps defaults",
			patch: SettingsPatch{},
			want:  DefaultSettings(),
		},
		{
			name:  "partial patch",
			patch: SettingsPatch{AutoPlayOnJump: &yes},
			want:  Settings{AutoPlayOnJump: true, CopyMode: CopyTimestampsOnly},
		},
		{
			name:  "full patch",
			patch: SettingsPatch{AutoPlayOnJump: &yes, CopyMode: &links},
			want:  Settings{AutoPlayOnJump: true, CopyMode: CopyTitleURLAndTimestamps},
		},
		{
			name:  "unknown copy mode ignored",
			patch: SettingsPatch{CopyMode: &bogus},
			want:  DefaultSettings(),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.patch.Apply(DefaultSettings()); got != tt.want {
				t.Errorf("Apply() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestSettingsValidate(t *testing.T) {
	if err := DefaultSettings().Validate(); err != nil {
		t.Errorf("DefaultSettings().Validate() = %v, want nil", err)
	}
	s := Settings{CopyMode: "clipboard"}
	if err := s.Validate(); !errors.Is(err, ErrInvalidCopyMode) {
		t.Errorf("Validate() = %v, want ErrInvalidCopyMode", err)
	}
}

func TestSettingsPatchRoundTrip(t *testing.T) {
	s := Settings{AutoPlayOnJump: true, CopyMode: CopyTitleURLAndTimestamps}
	if got := s.Patch().Apply(DefaultSettings()); got != s {
		t.Errorf("Patch().Apply() = %+v, want %+v", got, s)
	}
}
