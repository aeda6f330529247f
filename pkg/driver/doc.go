// Package driver loads engine configuration and program files from disk
// and hands them to the interpreter. Programs are stored as YAML trees of
// the four node kinds; no text syntax is involved.
package driver

import (
	"github.com/npillmayer/schuko/tracing"
)

// tracer writes to the driver trace.
func tracer() tracing.Trace {
	return tracing.Select("quoth.driver")
}
