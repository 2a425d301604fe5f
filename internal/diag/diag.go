// Package diag implements the compiler's diagnostics context: the explicit,
// non-global carrier of source location and error-count state that spec §9
// requires in place of the reference implementation's process-wide globals.
package diag

import (
	"fmt"
)

// Pos is a source location. The front end (out of scope) updates a
// Context's current position as it translates; the IR builder reads it
// back to stamp instruction comments.
type Pos struct {
	File string
	Line int
}

func (p Pos) String() string {
	if p.File == "" {
		return "<unknown>"
	}
	return fmt.Sprintf("%s:%d", p.File, p.Line)
}

// FatalError is a translation failure (spec §7): a well-formed input the
// back end cannot honor (an immediate that doesn't fit even after
// lowering, an unsatisfiable register constraint). It is always returned,
// never panicked, so callers can print it and exit cleanly.
type FatalError struct {
	Pos Pos
	Msg string
}

func (e *FatalError) Error() string {
	return fmt.Sprintf("%s: fatal: %s", e.Pos, e.Msg)
}

// UserError is one reported instance of bad input (spec §7): duplicate
// symbol, undeclared symbol, unresolved label, and similar. Context
// accumulates these but does not stop the offending pass.
type UserError struct {
	Pos      Pos
	Category string
	Msg      string
}

func (e UserError) String() string {
	return fmt.Sprintf("%s: %s: %s", e.Pos, e.Category, e.Msg)
}

// Context threads current-position and error-accumulation state through the
// front end and IR builder. It replaces the two pieces of module-level
// state the original implementation kept as process globals.
type Context struct {
	pos    Pos
	Errors []UserError

	lastStampedPos Pos
	haveStamped     bool
}

// New creates a fresh diagnostics context positioned at the start of file.
func New(file string) *Context {
	return &Context{pos: Pos{File: file, Line: 1}}
}

// SetPos updates the current source position, as the lexer would between
// tokens.
func (c *Context) SetPos(line int) {
	c.pos.Line = line
}

// Pos returns the current source position.
func (c *Context) Pos() Pos {
	return c.pos
}

// Errorf records a user error (spec §7): non-fatal, the caller should keep
// processing so further errors can be reported in the same pass.
func (c *Context) Errorf(category, format string, args ...interface{}) {
	c.Errors = append(c.Errors, UserError{
		Pos:      c.pos,
		Category: category,
		Msg:      fmt.Sprintf(format, args...),
	})
}

// Failed reports whether any user error has been recorded. Per spec §7,
// compilation must abort after a pass if this is true.
func (c *Context) Failed() bool {
	return len(c.Errors) > 0
}

// Fatalf builds a FatalError at the current position. The caller returns
// it up the stack; nothing recovers from it except the top-level driver.
func (c *Context) Fatalf(format string, args ...interface{}) *FatalError {
	return &FatalError{Pos: c.pos, Msg: fmt.Sprintf(format, args...)}
}

// StampComment returns the comment text to attach to a newly appended
// instruction, deduplicating consecutive stamps at the same source
// position: if the current position is the same as the last stamped one,
// no comment is produced. This mirrors addInstruction's static
// last-location dedup in the reference implementation, but scoped to this
// Context value instead of process lifetime.
func (c *Context) StampComment() string {
	if c.haveStamped && c.lastStampedPos == c.pos {
		return ""
	}
	c.lastStampedPos = c.pos
	c.haveStamped = true
	return c.pos.String()
}
