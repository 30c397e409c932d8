package store

import (
	"testing"

	"github.com/MrSnakeDoc/stamp/internal/domain"
)

func TestDecodeSnapshotValidity(t *testing.T) {
	tests := []struct {
		name  string
		data  string
		valid bool
	}{
		{name: "complete", data: `{"entries":{"a":{"id":"a","seconds":3,"displayTime":"0:03","label":""}},"order":["a"]}`, valid: true},
		{name: "empty but present", data: `{"entries":{},"order":[]}`, valid: true},
		{name: "missing order", data: `{"entries":{}}`, valid: false},
		{name: "missing entries", data: `{"order":[]}`, valid: false},
		{name: "null entries", data: `{"entries":null,"order":[]}`, valid: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			snap, err := DecodeSnapshot([]byte(tt.data))
			if err != nil {
				t.Fatalf("DecodeSnapshot() error = %v", err)
			}
			if got := snap.Valid(); got != tt.valid {
				t.Errorf("Valid() = %v, want %v", got, tt.valid)
			}
		})
	}
}

func TestDecodeSnapshotGarbage(t *testing.T) {
	if _, err := DecodeSnapshot([]byte("not json")); err == nil {
		t.Error("DecodeSnapshot(garbage) should return error")
	}
}

func TestEncodeSnapshotNilFields(t *testing.T) {
	data, err := EncodeSnapshot(domain.Snapshot{})
	if err != nil {
		t.Fatalf("EncodeSnapshot() error = %v", err)
	}
	if string(data) != `{"entries":{},"order":[]}` {
		t.Errorf("EncodeSnapshot() = %s", data)
	}
}

func TestDecodeSettingsPartial(t *testing.T) {
	p, err := DecodeSettings([]byte(`{"autoPlayOnJump":true}`))
	if err != nil {
		t.Fatalf("DecodeSettings() error = %v", err)
	}
	got := p.Apply(domain.DefaultSettings())
	want := domain.Settings{AutoPlayOnJump: true, CopyMode: domain.CopyTimestampsOnly}
	if got != want {
		t.Errorf("Apply() = %+v, want %+v", got, want)
	}
}

func TestExtractResourceID(t *testing.T) {
	tests := []struct {
		key     string
		want    string
		wantErr bool
	}{
		{key: MarksKey("dQw4w9WgXcQ"), want: "dQw4w9WgXcQ"},
		{key: KeyPrefixMarks, wantErr: true},
		{key: "other:key:value", wantErr: true},
	}
	for _, tt := range tests {
		got, err := ExtractResourceID(tt.key)
		if (err != nil) != tt.wantErr {
			t.Errorf("ExtractResourceID(%q) error = %v, wantErr %v", tt.key, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("ExtractResourceID(%q) = %q, want %q", tt.key, got, tt.want)
		}
	}
}
