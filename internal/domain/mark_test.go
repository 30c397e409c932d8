package domain

import (
	"errors"
	"math"
	"testing"
)

func TestFormatTime(t *testing.T) {
	tests := []struct {
		seconds  int
		expected string
	}{
		{0, "0:00"},
		{9, "0:09"},
		{75, "1:15"},
		{600, "10:00"},
		{3599, "59:59"},
		{3600, "1:00:00"},
		{3725, "1:02:05"},
		{36000, "10:00:00"},
		{-5, "0:00"},
	}

	for _, tt := range tests {
		if got := FormatTime(tt.seconds); got != tt.expected {
			t.Errorf("FormatTime(%d) = %q, want %q", tt.seconds, got, tt.expected)
		}
	}
}

func TestTruncateSeconds(t *testing.T) {
	tests := []struct {
		name     string
		position float64
		expected int
		wantErr  bool
	}{
		{name: "zero", position: 0, expected: 0},
		{name: "fraction truncated", position: 75.99, expected: 75},
		{name: "whole", position: 12, expected: 12},
		{name: "negative", position: -1, wantErr: true},
		{name: "nan", position: math.NaN(), wantErr: true},
		{name: "infinite", position: math.Inf(1), wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := TruncateSeconds(tt.position)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidPosition) {
					t.Errorf("TruncateSeconds(%v) error = %v, want ErrInvalidPosition", tt.position, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("TruncateSeconds(%v) unexpected error: %v", tt.position, err)
			}
			if got != tt.expected {
				t.Errorf("TruncateSeconds(%v) = %d, want %d", tt.position, got, tt.expected)
			}
		})
	}
}
