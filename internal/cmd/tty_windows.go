//go:build windows

package cmd

import (
	"errors"
	"os"
)

const minTermWidth = 20

// openTTY returns nil on Windows; the program uses stdin and stdout.
func openTTY() (*os.File, error) {
	return nil, nil
}

func checkTERM() error {
	if os.Getenv("TERM") == "dumb" {
		return errors.New("TERM=dumb is not supported")
	}
	return nil
}

// checkTermWidth is a no-op on Windows; Bubble Tea reports the size.
func checkTermWidth(*os.File) error {
	return nil
}

// termWidth returns 0 on Windows; fetch falls back to $COLUMNS.
func termWidth() int {
	return 0
}
