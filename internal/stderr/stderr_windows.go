//go:build windows

// Package stderr is a no-op on Windows, where the audio backend does not
// write to the console.
package stderr

import (
	"os"

	"go.uber.org/zap"
)

// Capture is a placeholder with the same API as the unix version.
type Capture struct{}

// Redirect does nothing on Windows.
func Redirect(*zap.Logger) (*Capture, error) {
	return &Capture{}, nil
}

// WriteOriginal writes to stderr.
func (c *Capture) WriteOriginal(msg string) {
	_, _ = os.Stderr.WriteString(msg)
}

// Close is a no-op on Windows.
func (c *Capture) Close() error { return nil }
