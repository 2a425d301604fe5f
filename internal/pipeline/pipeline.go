// Package pipeline wires the back-end stages — CFG construction,
// liveness, register allocation, target lowering, and assembly printing —
// into the single entry point a front end or CLI drives a finished
// Program through (spec §5).
package pipeline

import (
	"bytes"
	"fmt"

	"github.com/rv32edu/rv32cc/internal/asmprint"
	"github.com/rv32edu/rv32cc/internal/cfg"
	"github.com/rv32edu/rv32cc/internal/ir"
	"github.com/rv32edu/rv32cc/internal/lower"
	"github.com/rv32edu/rv32cc/internal/regalloc"
)

// Compile runs a complete Program through the back end and returns its
// textual RV32IM assembly listing. It is the one place that knows the
// stage order: building the CFG can fail (an unresolved branch target or
// an unsatisfiable register constraint, spec §7), everything after it is
// total.
func Compile(p *ir.Program) (string, error) {
	c, err := cfg.Build(p)
	if err != nil {
		return "", fmt.Errorf("building control-flow graph: %w", err)
	}

	regalloc.Run(p, c)

	lower.Run(p)

	var buf bytes.Buffer
	if err := asmprint.Print(&buf, p); err != nil {
		return "", fmt.Errorf("printing assembly: %w", err)
	}
	return buf.String(), nil
}
