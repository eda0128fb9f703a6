// Package logger provides the process-wide chain-style logger: callers write
// logger.Info().Metadata("k", "v").Msgf("...") rather than threading a
// *Logger value through every function. Grounded on the teacher's pterm-based
// chain logger (core/utils/logger in the reference tree), generalized to
// drop the bypass-specific BypassModule/DebugToken chain methods.
package logger

import (
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/pterm/pterm"
)

// Logger holds process-wide verbosity state. DefaultLogger is the package
// singleton every chain constructor reads from.
type Logger struct {
	mu      sync.Mutex
	verbose bool
	debug   bool
}

var DefaultLogger *Logger

func init() {
	DefaultLogger = &Logger{}
	pterm.Info.Prefix.Text = " INFO "
	pterm.Success.Prefix.Text = " DONE "
	pterm.Warning.Prefix.Text = " WARN "
	pterm.Error.Prefix.Text = " FAIL "
}

// EnableVerbose turns on Verbose() log lines.
func (l *Logger) EnableVerbose() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.verbose = true
}

// EnableDebug turns on Debug() log lines.
func (l *Logger) EnableDebug() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.debug = true
	pterm.EnableDebugMessages()
}

func (l *Logger) IsVerboseEnabled() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.verbose
}

func (l *Logger) IsDebugEnabled() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.debug
}

// Event is a single in-progress log line; its methods chain and it is
// terminated by Msgf.
type Event struct {
	printer  pterm.PrefixPrinter
	metadata []string
}

func (l *Logger) newEvent(printer pterm.PrefixPrinter) *Event {
	return &Event{printer: printer}
}

func Info() *Event    { return DefaultLogger.newEvent(pterm.Info) }
func Success() *Event { return DefaultLogger.newEvent(pterm.Success) }
func Warning() *Event { return DefaultLogger.newEvent(pterm.Warning) }
func Error() *Event   { return DefaultLogger.newEvent(pterm.Error) }

// Debug returns nil when debug output is disabled; all Event methods are
// nil-safe so callers can always chain unconditionally.
func Debug() *Event {
	if !DefaultLogger.IsDebugEnabled() {
		return nil
	}
	return DefaultLogger.newEvent(pterm.Debug)
}

// Verbose returns nil when verbose output is disabled.
func Verbose() *Event {
	if !DefaultLogger.IsVerboseEnabled() {
		return nil
	}
	return DefaultLogger.newEvent(pterm.Info)
}

// Metadata attaches a key=value annotation printed before the message.
func (e *Event) Metadata(key, value string) *Event {
	if e == nil {
		return nil
	}
	e.metadata = append(e.metadata, fmt.Sprintf("%s=%s", key, value))
	return e
}

// Msgf formats and prints the line. Safe to call on a nil *Event.
func (e *Event) Msgf(format string, args ...any) {
	if e == nil {
		return
	}
	message := format
	if len(e.metadata) > 0 {
		message = "[" + strings.Join(e.metadata, " ") + "] " + format
	}
	e.printer.Printfln(message, args...)
}

// PrintGreenLn prints a standalone success-colored line, bypassing the
// Event chain — used for the final summary the pipeline driver prints.
func PrintGreenLn(format string, args ...any) {
	pterm.FgGreen.Printfln(format, args...)
}

// PrintCyanLn prints a standalone informational line in cyan.
func PrintCyanLn(format string, args ...any) {
	pterm.FgCyan.Printfln(format, args...)
}

// Fatalf prints an error line and exits the process with status 1.
func Fatalf(format string, args ...any) {
	Error().Msgf(format, args...)
	os.Exit(1)
}
