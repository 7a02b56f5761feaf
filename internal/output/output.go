// Package output prints styled status lines for the codescribe CLI.
// Styling uses lipgloss; callers only pick the kind of message.
package output

import (
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/charmbracelet/lipgloss"
)

var (
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("green")).Bold(true)
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("red")).Bold(true)
	infoStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("cyan"))
	stepStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))

	mu          sync.Mutex
	out         io.Writer = os.Stdout
	verboseMode bool
)

// SetVerbose enables or disables verbose output.
func SetVerbose(v bool) {
	mu.Lock()
	defer mu.Unlock()
	verboseMode = v
}

// SetOutput redirects all messages to w. MCP mode points this at stderr so
// stdout stays reserved for the protocol.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	if w == nil {
		w = io.Discard
	}
	out = w
}

func emit(s string) {
	mu.Lock()
	defer mu.Unlock()
	fmt.Fprintln(out, s)
}

// Success prints a completed operation in green.
//
//	output.Success("Wrote 5 pages to docs/")
func Success(msg string) {
	emit(successStyle.Render("✔ " + msg))
}

// Error prints a failure that needs the user's attention.
func Error(msg string) {
	emit(errorStyle.Render("✘ " + msg))
}

// Info prints a status update.
func Info(msg string) {
	emit(infoStyle.Render("• " + msg))
}

// Step prints an indented sub-item in gray.
func Step(msg string) {
	emit(stepStyle.Render("   " + msg))
}

// Verbose prints msg only when verbose mode is on.
func Verbose(msg string) {
	mu.Lock()
	v := verboseMode
	mu.Unlock()
	if v {
		emit(stepStyle.Render("… " + msg))
	}
}
