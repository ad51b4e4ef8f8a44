// Package report provides the reporting capability threaded through the
// comparison engines. Engines never log through a global; they receive a
// Reporter and write every user-facing line through it.
package report

import (
	"fmt"
	"io"

	"go.uber.org/zap"
)

// Reporter receives diagnostic and result lines from the comparison engines.
type Reporter interface {
	Info(msg string)
	Warning(msg string)
	Error(msg string)
}

// ZapReporter routes report lines through a zap sugared logger.
type ZapReporter struct {
	log *zap.SugaredLogger
}

// NewZapReporter wraps a zap logger. A nil logger yields a no-op reporter.
func NewZapReporter(logger *zap.Logger) *ZapReporter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ZapReporter{log: logger.Sugar()}
}

func (z *ZapReporter) Info(msg string)    { z.log.Info(msg) }
func (z *ZapReporter) Warning(msg string) { z.log.Warn(msg) }
func (z *ZapReporter) Error(msg string)   { z.log.Error(msg) }

// Tee mirrors every Info line to an additional writer, typically an output
// file requested by the caller. Warnings and errors only go to the inner
// reporter.
type Tee struct {
	Inner Reporter
	W     io.Writer
}

func (t *Tee) Info(msg string) {
	t.Inner.Info(msg)
	fmt.Fprintln(t.W, msg)
}

func (t *Tee) Warning(msg string) { t.Inner.Warning(msg) }
func (t *Tee) Error(msg string)   { t.Inner.Error(msg) }

// Nop discards everything.
type Nop struct{}

func (Nop) Info(string)    {}
func (Nop) Warning(string) {}
func (Nop) Error(string)   {}

// Capture collects report lines in memory. Used by tests and by callers
// that postprocess engine output.
type Capture struct {
	Infos    []string
	Warnings []string
	Errors   []string
}

func (c *Capture) Info(msg string)    { c.Infos = append(c.Infos, msg) }
func (c *Capture) Warning(msg string) { c.Warnings = append(c.Warnings, msg) }
func (c *Capture) Error(msg string)   { c.Errors = append(c.Errors, msg) }
