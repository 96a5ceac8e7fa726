// Package main provides UI utilities for the matching engine CLI.
package main

import (
	"fmt"
	"os"
	"time"

	"github.com/briandowns/spinner"
	"github.com/fatih/color"
	"github.com/schollz/progressbar/v3"
)

// UI provides user-friendly output utilities.
type UI struct {
	noColor  bool
	jsonMode bool
}

// NewUI creates a new UI instance.
func NewUI(jsonMode, noColor bool) *UI {
	return &UI{noColor: noColor, jsonMode: jsonMode}
}

// Success prints a success message.
func (ui *UI) Success(format string, args ...interface{}) {
	if ui.jsonMode {
		return
	}
	if ui.noColor {
		fmt.Printf("✓ %s\n", fmt.Sprintf(format, args...))
	} else {
		color.New(color.FgGreen).Printf("✓ %s\n", fmt.Sprintf(format, args...))
	}
}

// Error prints an error message.
func (ui *UI) Error(format string, args ...interface{}) {
	if ui.jsonMode {
		return
	}
	if ui.noColor {
		fmt.Fprintf(os.Stderr, "✗ %s\n", fmt.Sprintf(format, args...))
	} else {
		color.New(color.FgRed).Fprintf(os.Stderr, "✗ %s\n", fmt.Sprintf(format, args...))
	}
}

// Warning prints a warning message.
func (ui *UI) Warning(format string, args ...interface{}) {
	if ui.jsonMode {
		return
	}
	if ui.noColor {
		fmt.Printf("⚠ %s\n", fmt.Sprintf(format, args...))
	} else {
		color.New(color.FgYellow).Printf("⚠ %s\n", fmt.Sprintf(format, args...))
	}
}

// Header prints a section header.
func (ui *UI) Header(format string, args ...interface{}) {
	if ui.jsonMode {
		return
	}
	if ui.noColor {
		fmt.Printf("%s\n", fmt.Sprintf(format, args...))
	} else {
		color.New(color.FgCyan, color.Bold).Printf("%s\n", fmt.Sprintf(format, args...))
	}
}

// Row prints a plain output line.
func (ui *UI) Row(format string, args ...interface{}) {
	if ui.jsonMode {
		return
	}
	fmt.Printf("%s\n", fmt.Sprintf(format, args...))
}

// Spinner starts an indeterminate spinner and returns a stop function. In
// JSON mode the spinner is suppressed and the stop function is a no-op.
func (ui *UI) Spinner(message string) func() {
	if ui.jsonMode {
		return func() {}
	}

	s := spinner.New(spinner.CharSets[14], 100*time.Millisecond)
	s.Suffix = " " + message
	if !ui.noColor {
		_ = s.Color("cyan")
	}
	s.Start()
	return func() { s.Stop() }
}

// NewProgressBar creates a progress bar over n steps. In JSON mode the bar
// writes nothing.
func (ui *UI) NewProgressBar(n int, description string) *progressbar.ProgressBar {
	if ui.jsonMode {
		return progressbar.DefaultSilent(int64(n))
	}
	return progressbar.NewOptions(n,
		progressbar.OptionSetDescription(description),
		progressbar.OptionSetWidth(40),
		progressbar.OptionClearOnFinish(),
		progressbar.OptionSetWriter(os.Stderr),
	)
}
