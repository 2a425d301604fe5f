package frontend

import (
	"github.com/rv32edu/rv32cc/internal/diag"
	"github.com/rv32edu/rv32cc/internal/ir"
	"github.com/rv32edu/rv32cc/internal/rv32"
)

// parseAbort unwinds the recursive-descent parser back to Parse after an
// unrecoverable syntax error; the diagnostics already recorded on dc are
// what the caller reports.
type parseAbort struct{}

type parser struct {
	lx   *lexer
	cur  token
	dc   *diag.Context
	prog *ir.Program
}

// Parse translates src (from a file named filename, used only for
// diagnostics) into a Program (spec §4.1's append/symbol operations are
// the only interface this front end drives). It returns the accumulated
// diag.Context so the caller can decide whether to proceed: per spec §7,
// any recorded user error means compilation must stop after this pass.
func Parse(filename, src string) (*ir.Program, *diag.Context) {
	dc := diag.New(filename)
	p := &parser{lx: newLexer(src), dc: dc, prog: ir.NewProgram()}
	p.prog.AssignLabel(p.prog.Start)
	p.cur = p.lx.next()

	func() {
		defer func() {
			if r := recover(); r != nil {
				if _, ok := r.(parseAbort); !ok {
					panic(r)
				}
			}
		}()
		for p.cur.kind != tokEOF {
			p.topLevel()
		}
		if p.cur.text != "" {
			p.abort("unexpected character %q", p.cur.text)
		}
	}()

	if !dc.Failed() {
		p.prog.GenEpilog(dc)
	}
	return p.prog, dc
}

func (p *parser) advance() {
	p.dc.SetPos(p.cur.line)
	p.cur = p.lx.next()
}

func (p *parser) abort(format string, args ...interface{}) {
	p.dc.Errorf("syntax", format, args...)
	panic(parseAbort{})
}

func (p *parser) expect(k tokenKind, what string) token {
	if p.cur.kind != k {
		p.abort("expected %s", what)
	}
	t := p.cur
	p.advance()
	return t
}

func (p *parser) atKeyword(name string) bool {
	return p.cur.kind == tokIdent && p.cur.text == name
}

func (p *parser) topLevel() {
	if p.atKeyword("int") {
		p.declaration()
		return
	}
	p.statement()
}

func (p *parser) declaration() {
	p.advance() // "int"
	name := p.expect(tokIdent, "identifier").text
	size := 0
	typ := ir.TypeScalar
	if p.cur.kind == tokLBracket {
		p.advance()
		n := p.expect(tokNumber, "array size")
		size = int(n.num)
		typ = ir.TypeArray
		p.expect(tokRBracket, "]")
	}
	p.expect(tokSemi, ";")
	// Duplicate names and bad array sizes are recorded onto p.dc by
	// CreateSymbol itself; parsing continues either way.
	p.prog.CreateSymbol(p.dc, name, typ, size)
}

func (p *parser) statement() {
	switch {
	case p.cur.kind == tokLBrace:
		p.block()
	case p.atKeyword("if"):
		p.ifStmt()
	case p.atKeyword("while"):
		p.whileStmt()
	case p.atKeyword("exit"):
		p.advance()
		p.expect(tokLParen, "(")
		p.expect(tokRParen, ")")
		p.expect(tokSemi, ";")
		p.prog.Append(p.dc, rv32.OpCallExit0, nil, nil, nil, nil, 0)
	case p.atKeyword("print_int"):
		p.printStmt(rv32.OpCallPrintInt)
	case p.atKeyword("print_char"):
		p.printStmt(rv32.OpCallPrintChar)
	case p.cur.kind == tokIdent:
		p.assignment()
	default:
		p.abort("expected statement")
	}
}

func (p *parser) printStmt(op rv32.Opcode) {
	p.advance()
	p.expect(tokLParen, "(")
	v := p.expr()
	p.expect(tokRParen, ")")
	p.expect(tokSemi, ";")
	p.prog.Append(p.dc, op, nil, ir.Reg(v), nil, nil, 0)
}

func (p *parser) block() {
	p.advance()
	for p.cur.kind != tokRBrace && p.cur.kind != tokEOF {
		p.topLevel()
	}
	p.expect(tokRBrace, "}")
}

// ifStmt lowers `if (cond) then [else alt]` the way a one-pass
// grammar-driven translator must: evaluate cond, branch past the "then"
// arm when it's zero, and — if there's an else arm — jump past it at the
// end of "then" (mirrors acse/parser.y's t_ifStmt bookkeeping, spec §2's
// front-end interface).
func (p *parser) ifStmt() {
	p.advance()
	p.expect(tokLParen, "(")
	cond := p.expr()
	p.expect(tokRParen, ")")

	lElse := p.prog.CreateLabel()
	p.prog.Append(p.dc, rv32.OpBEQ, nil, ir.Reg(cond), ir.Reg(ir.RegZero), lElse, 0)
	p.statement()

	if p.atKeyword("else") {
		p.advance()
		lExit := p.prog.CreateLabel()
		p.prog.Append(p.dc, rv32.OpJ, nil, nil, nil, lExit, 0)
		p.prog.AssignLabel(lElse)
		p.statement()
		p.prog.AssignLabel(lExit)
	} else {
		p.prog.AssignLabel(lElse)
	}
}

func (p *parser) whileStmt() {
	p.advance()
	lLoop := p.prog.CreateLabel()
	p.prog.AssignLabel(lLoop)
	p.expect(tokLParen, "(")
	cond := p.expr()
	p.expect(tokRParen, ")")
	lExit := p.prog.CreateLabel()
	p.prog.Append(p.dc, rv32.OpBEQ, nil, ir.Reg(cond), ir.Reg(ir.RegZero), lExit, 0)
	p.statement()
	p.prog.Append(p.dc, rv32.OpJ, nil, nil, nil, lLoop, 0)
	p.prog.AssignLabel(lExit)
}

func (p *parser) assignment() {
	name := p.expect(tokIdent, "identifier").text
	sym, ok := p.prog.GetSymbol(name)
	if !ok {
		p.dc.Errorf("undeclared-symbol", "undeclared symbol %q", name)
	}

	if p.cur.kind == tokLBracket {
		p.advance()
		idx := p.expr()
		p.expect(tokRBracket, "]")
		p.expect(tokAssign, "=")
		v := p.expr()
		p.expect(tokSemi, ";")
		if ok && sym.IsArray() {
			addr := p.arrayElementAddress(sym, idx)
			p.prog.Append(p.dc, rv32.OpSW, nil, ir.Reg(addr), ir.Reg(v), nil, 0)
		} else if ok {
			p.dc.Errorf("not-an-array", "%q is not an array", name)
		}
		return
	}

	p.expect(tokAssign, "=")
	v := p.expr()
	p.expect(tokSemi, ";")
	if ok {
		if sym.IsArray() {
			p.dc.Errorf("is-an-array", "%q is an array, cannot assign as scalar", name)
		} else {
			p.prog.Append(p.dc, rv32.OpSW_G, nil, ir.Reg(v), nil, sym.Label, 0)
		}
	}
}

// arrayElementAddress computes the byte address of sym[idx] into a fresh
// temporary: the symbol's base label plus 4*idx.
func (p *parser) arrayElementAddress(sym *ir.Symbol, idx ir.RegID) ir.RegID {
	base := p.prog.NewTemp()
	p.prog.Append(p.dc, rv32.OpLA, ir.Reg(base), nil, nil, sym.Label, 0)
	off := p.prog.NewTemp()
	p.prog.Append(p.dc, rv32.OpMULI, ir.Reg(off), ir.Reg(idx), nil, nil, 4)
	addr := p.prog.NewTemp()
	p.prog.Append(p.dc, rv32.OpADD, ir.Reg(addr), ir.Reg(base), ir.Reg(off), nil, 0)
	return addr
}

// expr is the top of the precedence chain: comparisons bind loosest.
func (p *parser) expr() ir.RegID {
	return p.compareExpr()
}

var compareOps = map[tokenKind]struct {
	reg, imm rv32.Opcode
}{
	tokEq: {rv32.OpSEQ, rv32.OpSEQI},
	tokNe: {rv32.OpSNE, rv32.OpSNEI},
	tokLt: {rv32.OpSLT, rv32.OpSLTI},
	tokLe: {rv32.OpSLE, rv32.OpSLEI},
	tokGt: {rv32.OpSGT, rv32.OpSGTI},
	tokGe: {rv32.OpSGE, rv32.OpSGEI},
}

func (p *parser) compareExpr() ir.RegID {
	left := p.addExpr()
	ops, isCompare := compareOps[p.cur.kind]
	if !isCompare {
		return left
	}
	p.advance()
	dest := p.prog.NewTemp()
	if p.cur.kind == tokNumber {
		imm := p.cur.num
		p.advance()
		p.prog.Append(p.dc, ops.imm, ir.Reg(dest), ir.Reg(left), nil, nil, imm)
		return dest
	}
	right := p.addExpr()
	p.prog.Append(p.dc, ops.reg, ir.Reg(dest), ir.Reg(left), ir.Reg(right), nil, 0)
	return dest
}

func (p *parser) addExpr() ir.RegID {
	left := p.mulExpr()
	for p.cur.kind == tokPlus || p.cur.kind == tokMinus {
		isAdd := p.cur.kind == tokPlus
		p.advance()
		dest := p.prog.NewTemp()
		if p.cur.kind == tokNumber {
			imm := p.cur.num
			if !isAdd {
				imm = -imm
			}
			p.advance()
			p.prog.Append(p.dc, rv32.OpADDI, ir.Reg(dest), ir.Reg(left), nil, nil, imm)
		} else {
			right := p.mulExpr()
			op := rv32.OpADD
			if !isAdd {
				op = rv32.OpSUB
			}
			p.prog.Append(p.dc, op, ir.Reg(dest), ir.Reg(left), ir.Reg(right), nil, 0)
		}
		left = dest
	}
	return left
}

var mulOps = map[tokenKind]struct {
	reg, imm rv32.Opcode
}{
	tokStar:    {rv32.OpMUL, rv32.OpMULI},
	tokSlash:   {rv32.OpDIV, rv32.OpDIVI},
	tokPercent: {rv32.OpREM, rv32.OpREMI},
}

func (p *parser) mulExpr() ir.RegID {
	left := p.unaryExpr()
	for {
		ops, isMul := mulOps[p.cur.kind]
		if !isMul {
			return left
		}
		p.advance()
		dest := p.prog.NewTemp()
		if p.cur.kind == tokNumber {
			imm := p.cur.num
			p.advance()
			p.prog.Append(p.dc, ops.imm, ir.Reg(dest), ir.Reg(left), nil, nil, imm)
		} else {
			right := p.unaryExpr()
			p.prog.Append(p.dc, ops.reg, ir.Reg(dest), ir.Reg(left), ir.Reg(right), nil, 0)
		}
		left = dest
	}
}

func (p *parser) unaryExpr() ir.RegID {
	if p.cur.kind == tokMinus {
		p.advance()
		v := p.unaryExpr()
		dest := p.prog.NewTemp()
		p.prog.Append(p.dc, rv32.OpSUB, ir.Reg(dest), ir.Reg(ir.RegZero), ir.Reg(v), nil, 0)
		return dest
	}
	return p.primaryExpr()
}

func (p *parser) primaryExpr() ir.RegID {
	switch {
	case p.cur.kind == tokNumber:
		n := p.cur.num
		p.advance()
		dest := p.prog.NewTemp()
		p.prog.Append(p.dc, rv32.OpLI, ir.Reg(dest), nil, nil, nil, n)
		return dest

	case p.cur.kind == tokLParen:
		p.advance()
		v := p.expr()
		p.expect(tokRParen, ")")
		return v

	case p.atKeyword("read_int"):
		p.advance()
		p.expect(tokLParen, "(")
		p.expect(tokRParen, ")")
		dest := p.prog.NewTemp()
		p.prog.Append(p.dc, rv32.OpCallReadInt, ir.Reg(dest), nil, nil, nil, 0)
		return dest

	case p.cur.kind == tokIdent:
		name := p.cur.text
		p.advance()
		sym, ok := p.prog.GetSymbol(name)
		if !ok {
			p.dc.Errorf("undeclared-symbol", "undeclared symbol %q", name)
			return ir.RegZero
		}
		if p.cur.kind == tokLBracket {
			p.advance()
			idx := p.expr()
			p.expect(tokRBracket, "]")
			if !sym.IsArray() {
				p.dc.Errorf("not-an-array", "%q is not an array", name)
				return ir.RegZero
			}
			addr := p.arrayElementAddress(sym, idx)
			dest := p.prog.NewTemp()
			p.prog.Append(p.dc, rv32.OpLW, ir.Reg(dest), ir.Reg(addr), nil, nil, 0)
			return dest
		}
		if sym.IsArray() {
			p.dc.Errorf("is-an-array", "%q is an array, cannot read as scalar", name)
			return ir.RegZero
		}
		dest := p.prog.NewTemp()
		p.prog.Append(p.dc, rv32.OpLW_G, ir.Reg(dest), nil, nil, sym.Label, 0)
		return dest

	default:
		p.abort("expected expression")
		return ir.RegZero // unreachable: abort panics
	}
}
