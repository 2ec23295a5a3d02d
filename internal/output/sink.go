// Package output provides terminal output utilities for lilith.
//
// The Sink interface carries the four message levels the engine emits
// (info, success, warning, error). The terminal implementation renders
// them with ANSI colors when stdout is a TTY; formatting is entirely the
// sink's responsibility, so the engine never embeds escape codes.
package output

import (
	"fmt"
	"io"
	"os"

	"github.com/mattn/go-isatty"
)

// ANSI color codes for level display
const (
	colorReset  = "\033[0m"
	colorGreen  = "\033[32m"
	colorYellow = "\033[33m"
	colorRed    = "\033[31m"
	colorCyan   = "\033[36m"
)

// Sink receives engine messages. Info, Success, and Warning go to the
// standard stream; Error goes to the error stream.
type Sink interface {
	Infof(format string, args ...any)
	Successf(format string, args ...any)
	Warningf(format string, args ...any)
	Errorf(format string, args ...any)
}

// IsColorEnabled returns true if ANSI color codes should be emitted.
// It checks that os.Stdout is a TTY and that the NO_COLOR env var is not set.
func IsColorEnabled() bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	return isatty.IsTerminal(os.Stdout.Fd())
}

// Terminal is the default Sink writing to stdout/stderr.
type Terminal struct {
	Out   io.Writer
	Err   io.Writer
	Color bool
}

// NewTerminal returns a Terminal sink bound to os.Stdout and os.Stderr
// with color detection applied.
func NewTerminal() *Terminal {
	return &Terminal{
		Out:   os.Stdout,
		Err:   os.Stderr,
		Color: IsColorEnabled(),
	}
}

func (t *Terminal) colorize(color, text string) string {
	if t.Color {
		return color + text + colorReset
	}
	return text
}

func (t *Terminal) Infof(format string, args ...any) {
	fmt.Fprintln(t.Out, t.colorize(colorCyan, fmt.Sprintf(format, args...)))
}

func (t *Terminal) Successf(format string, args ...any) {
	fmt.Fprintln(t.Out, t.colorize(colorGreen, fmt.Sprintf(format, args...)))
}

func (t *Terminal) Warningf(format string, args ...any) {
	fmt.Fprintln(t.Out, t.colorize(colorYellow, fmt.Sprintf(format, args...)))
}

func (t *Terminal) Errorf(format string, args ...any) {
	fmt.Fprintln(t.Err, t.colorize(colorRed, fmt.Sprintf(format, args...)))
}

// Discard is a Sink that drops everything. Useful in tests.
type Discard struct{}

func (Discard) Infof(string, ...any)    {}
func (Discard) Successf(string, ...any) {}
func (Discard) Warningf(string, ...any) {}
func (Discard) Errorf(string, ...any)   {}
