// pkg/util/errorlog.go
// Copyright(c) 2026 swimfuse contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package util

import (
	"fmt"
	"strings"

	"github.com/swimfuse/swimfuse/pkg/log"
)

// ErrorLogger accumulates context-prefixed errors while walking a nested
// structure (an airspace release file, a decoded message) so validation
// can continue past the first problem and report everything found.
type ErrorLogger struct {
	hierarchy []string
	errors    []string
}

func (e *ErrorLogger) Push(s string) { e.hierarchy = append(e.hierarchy, s) }
func (e *ErrorLogger) Pop()          { e.hierarchy = e.hierarchy[:len(e.hierarchy)-1] }

func (e *ErrorLogger) Errorf(s string, args ...interface{}) {
	e.errors = append(e.errors, strings.Join(e.hierarchy, " / ")+": "+fmt.Sprintf(s, args...))
}

func (e *ErrorLogger) HaveErrors() bool { return len(e.errors) > 0 }

func (e *ErrorLogger) PrintErrors(lg *log.Logger) {
	for _, err := range e.errors {
		lg.Errorf("%s", err)
	}
}

func (e *ErrorLogger) String() string { return strings.Join(e.errors, "\n") }
