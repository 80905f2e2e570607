//go:build !windows

// Package stderr redirects file descriptor 2 into the logger while the
// terminal UI owns the screen. Audio backends (ALSA, oto) write there
// directly, bypassing os.Stderr, and would otherwise corrupt the layout.
package stderr

import (
	"bufio"
	"os"
	"strings"
	"syscall"

	"go.uber.org/zap"
)

// Capture is an active redirection. Close restores the original descriptor.
type Capture struct {
	orig   int
	read   *os.File
	write  *os.File
	done   chan struct{}
	logger *zap.Logger
}

// Redirect points fd 2 at a pipe and logs every non-blank line written to it.
// On error nothing is redirected and the caller can carry on without it.
func Redirect(logger *zap.Logger) (*Capture, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	r, w, err := os.Pipe()
	if err != nil {
		return nil, err
	}

	orig, err := syscall.Dup(int(os.Stderr.Fd()))
	if err != nil {
		r.Close()
		w.Close()
		return nil, err
	}
	if err := syscall.Dup2(int(w.Fd()), int(os.Stderr.Fd())); err != nil {
		syscall.Close(orig)
		r.Close()
		w.Close()
		return nil, err
	}

	c := &Capture{orig: orig, read: r, write: w, done: make(chan struct{}), logger: logger}
	go c.forward()
	return c, nil
}

func (c *Capture) forward() {
	defer close(c.done)
	scanner := bufio.NewScanner(c.read)
	for scanner.Scan() {
		if line := strings.TrimSpace(scanner.Text()); line != "" {
			c.logger.Warn("audio backend", zap.String("stderr", line))
		}
	}
}

// WriteOriginal writes to the terminal's stderr, bypassing the capture.
func (c *Capture) WriteOriginal(msg string) {
	_, _ = syscall.Write(c.orig, []byte(msg))
}

// Close restores fd 2 and waits until every captured line has been logged.
func (c *Capture) Close() error {
	err := syscall.Dup2(c.orig, int(os.Stderr.Fd()))
	_ = syscall.Close(c.orig)
	c.write.Close()
	<-c.done
	c.read.Close()
	return err
}
