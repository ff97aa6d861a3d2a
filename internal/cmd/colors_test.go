package cmd

import (
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/stretchr/testify/assert"
)

func TestApplyColorMode(t *testing.T) {
	tests := []struct {
		mode        string
		start       func()
		wantColors  bool
		wantProfile termenv.Profile
	}{
		{"always", disableColors, true, termenv.ANSI256},
		{"never", enableColors, false, termenv.Ascii},
		// Test output is not a terminal.
		{"auto", enableColors, false, termenv.Ascii},
	}
	for _, tt := range tests {
		t.Run(tt.mode, func(t *testing.T) {
			withColorMode(t, tt.mode)
			tt.start()

			applyColorMode()

			assert.Equal(t, tt.wantColors, colorRed != "")
			assert.Equal(t, tt.wantColors, colorReset != "")
			assert.Equal(t, tt.wantProfile, lipgloss.ColorProfile())
		})
	}
}

func TestEnableDisableColors(t *testing.T) {
	withColorMode(t, colorMode)

	disableColors()
	for _, c := range []string{colorRed, colorGreen, colorYellow, colorCyan, colorDim, colorBold, colorReset} {
		assert.Empty(t, c)
	}

	enableColors()
	assert.Equal(t, "\033[0;31m", colorRed)
	assert.Equal(t, "\033[0m", colorReset)
}

func TestShouldDisableColors(t *testing.T) {
	t.Setenv("TERM", "xterm-256color")
	t.Setenv("NO_COLOR", "1")
	assert.True(t, shouldDisableColors())

	t.Setenv("NO_COLOR", "")
	t.Setenv("TERM", "dumb")
	assert.True(t, shouldDisableColors())
}

func TestOutputWidth(t *testing.T) {
	tests := []struct {
		columns string
		want    int
	}{
		{"", 0},
		{"120", 120},
		{"wide", 0},
		{"-3", 0},
	}
	for _, tt := range tests {
		t.Run(tt.columns, func(t *testing.T) {
			t.Setenv("COLUMNS", tt.columns)
			assert.Equal(t, tt.want, outputWidth())
		})
	}
}
