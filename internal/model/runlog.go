package model

import (
	"fmt"
	"strings"
)

// RunLog is the append-only, run-scoped log of human-readable lines. Lines
// are appended in file-set order; one object exists per run.
type RunLog struct {
	lines []string
}

// Appendf formats and appends one line.
func (l *RunLog) Appendf(format string, a ...interface{}) {
	l.lines = append(l.lines, fmt.Sprintf(format, a...))
}

// Lines returns a copy of the accumulated lines.
func (l *RunLog) Lines() []string {
	out := make([]string, len(l.lines))
	copy(out, l.lines)
	return out
}

// String joins all lines with newlines, ready for printing.
func (l *RunLog) String() string {
	return strings.Join(l.lines, "\n")
}
