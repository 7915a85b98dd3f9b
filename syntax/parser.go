package syntax

import (
	"strconv"

	"github.com/pkg/errors"
	"github.com/tensorlang/tir/ir"
	"github.com/tensorlang/tir/ops"
	"github.com/tensorlang/tir/shapeinference"
	"github.com/tensorlang/tir/types/dtypes"
	"github.com/tensorlang/tir/types/shapes"
)

// Parse builds a module from its textual listing. Function bodies may
// call functions declared later in the listing; within one function,
// values must be defined before they are used.
//
// A listing whose header declares "stage optimizable" is finished before
// being returned.
func Parse(src string) (*ir.Module, error) {
	tokens, err := lex(src)
	if err != nil {
		return nil, err
	}
	p := &parser{tokens: tokens}
	return p.parseModule()
}

type parser struct {
	tokens []token
	pos    int
	module *ir.Module

	// symbols maps %names of the function being parsed to their Def.
	symbols map[string]*ir.Def
}

func (p *parser) peek() token { return p.tokens[p.pos] }

func (p *parser) next() token {
	t := p.tokens[p.pos]
	if t.kind != tokenEOF {
		p.pos++
	}
	return t
}

func (p *parser) expect(kind tokenKind) (token, error) {
	t := p.next()
	if t.kind != kind {
		return t, p.errf(t, "expected %s, got %s %q", kind, t.kind, t.text)
	}
	return t, nil
}

func (p *parser) expectKeyword(word string) error {
	t := p.next()
	if t.kind != tokenIdent || t.text != word {
		return p.errf(t, "expected %q, got %q", word, t.text)
	}
	return nil
}

func (p *parser) accept(kind tokenKind) bool {
	if p.peek().kind == kind {
		p.pos++
		return true
	}
	return false
}

func (p *parser) acceptKeyword(word string) bool {
	if t := p.peek(); t.kind == tokenIdent && t.text == word {
		p.pos++
		return true
	}
	return false
}

func (p *parser) errf(t token, format string, args ...any) error {
	return errors.Errorf("%d:%d: "+format, append([]any{t.line, t.col}, args...)...)
}

// funcBody records where a function's body starts in the token stream,
// so bodies are parsed only after every function signature is known.
type funcBody struct {
	function *ir.Function
	start    int // token index right after the opening brace
}

func (p *parser) parseModule() (*ir.Module, error) {
	if err := p.expectKeyword("module"); err != nil {
		return nil, err
	}
	name, err := p.expect(tokenGlobalName)
	if err != nil {
		return nil, err
	}
	if err := p.expectKeyword("stage"); err != nil {
		return nil, err
	}
	stageTok, err := p.expect(tokenIdent)
	if err != nil {
		return nil, err
	}
	stage, err := ir.StageString(stageTok.text)
	if err != nil {
		return nil, p.errf(stageTok, "unknown stage %q", stageTok.text)
	}
	p.module = ir.NewModule(name.text)

	var bodies []funcBody
	for {
		t := p.peek()
		if t.kind == tokenEOF {
			break
		}
		if t.kind != tokenIdent {
			return nil, p.errf(t, "expected a declaration, got %q", t.text)
		}
		switch t.text {
		case "alias":
			err = p.parseAlias()
		case "struct":
			err = p.parseStruct()
		case "enum":
			err = p.parseEnum()
		case "var":
			err = p.parseVariable()
		case "placeholder", "recurrent":
			err = p.parsePlaceholder()
		case "func":
			var body funcBody
			body, err = p.parseFunctionHeader()
			if err == nil {
				bodies = append(bodies, body)
			}
		default:
			return nil, p.errf(t, "unknown declaration %q", t.text)
		}
		if err != nil {
			return nil, err
		}
	}
	for _, body := range bodies {
		if err := p.parseBody(body); err != nil {
			return nil, err
		}
	}
	if stage == ir.StageOptimizable {
		if err := p.module.Finish(); err != nil {
			return nil, err
		}
	}
	return p.module, nil
}

func (p *parser) parseAlias() error {
	p.next() // alias
	name, err := p.expect(tokenTypeName)
	if err != nil {
		return err
	}
	if _, err := p.expect(tokenEqual); err != nil {
		return err
	}
	target, err := p.parseShape()
	if err != nil {
		return err
	}
	p.module.NewAlias(name.text, target)
	return nil
}

func (p *parser) parseStruct() error {
	p.next() // struct
	name, err := p.expect(tokenTypeName)
	if err != nil {
		return err
	}
	if _, err := p.expect(tokenLBrace); err != nil {
		return err
	}
	var fields []ir.Field
	for !p.accept(tokenRBrace) {
		if len(fields) > 0 {
			if _, err := p.expect(tokenComma); err != nil {
				return err
			}
		}
		field, err := p.expect(tokenIdent)
		if err != nil {
			return err
		}
		if _, err := p.expect(tokenColon); err != nil {
			return err
		}
		shape, err := p.parseShape()
		if err != nil {
			return err
		}
		fields = append(fields, ir.Field{Name: field.text, Shape: shape})
	}
	p.module.NewStruct(name.text, fields)
	return nil
}

func (p *parser) parseEnum() error {
	p.next() // enum
	name, err := p.expect(tokenTypeName)
	if err != nil {
		return err
	}
	if _, err := p.expect(tokenLBrace); err != nil {
		return err
	}
	var cases []string
	for !p.accept(tokenRBrace) {
		if len(cases) > 0 {
			if _, err := p.expect(tokenComma); err != nil {
				return err
			}
		}
		c, err := p.expect(tokenIdent)
		if err != nil {
			return err
		}
		cases = append(cases, c.text)
	}
	p.module.NewEnum(name.text, cases)
	return nil
}

func (p *parser) parseVariable() error {
	p.next() // var
	name, err := p.expect(tokenGlobalName)
	if err != nil {
		return err
	}
	if _, err := p.expect(tokenColon); err != nil {
		return err
	}
	shape, err := p.parseShape()
	if err != nil {
		return err
	}
	var init *ir.Literal
	if p.accept(tokenEqual) {
		tok := p.peek()
		init, err = p.parseLiteral()
		if err != nil {
			return err
		}
		if !init.Shape().Equal(shape) {
			return p.errf(tok, "initializer has shape %s, variable @%s declares %s", init.Shape(), name.text, shape)
		}
	}
	p.module.NewVariable(name.text, shape, init)
	return nil
}

func (p *parser) parsePlaceholder() error {
	recurrent := p.acceptKeyword("recurrent")
	if err := p.expectKeyword("placeholder"); err != nil {
		return err
	}
	name, err := p.expect(tokenGlobalName)
	if err != nil {
		return err
	}
	if _, err := p.expect(tokenColon); err != nil {
		return err
	}
	shape, err := p.parseShape()
	if err != nil {
		return err
	}
	p.module.NewPlaceholder(name.text, shape, recurrent)
	return nil
}

// parseFunctionHeader parses the signature, creates the function and its
// arguments, then skips over the body.
func (p *parser) parseFunctionHeader() (funcBody, error) {
	p.next() // func
	name, err := p.expect(tokenGlobalName)
	if err != nil {
		return funcBody{}, err
	}
	if _, err := p.expect(tokenLParen); err != nil {
		return funcBody{}, err
	}
	type arg struct {
		name  string
		shape shapes.Shape
	}
	var args []arg
	for !p.accept(tokenRParen) {
		if len(args) > 0 {
			if _, err := p.expect(tokenComma); err != nil {
				return funcBody{}, err
			}
		}
		argName, err := p.expect(tokenValueName)
		if err != nil {
			return funcBody{}, err
		}
		if _, err := p.expect(tokenColon); err != nil {
			return funcBody{}, err
		}
		shape, err := p.parseShape()
		if err != nil {
			return funcBody{}, err
		}
		args = append(args, arg{argName.text, shape})
	}
	result := shapes.Invalid()
	if p.accept(tokenArrow) {
		result, err = p.parseShape()
		if err != nil {
			return funcBody{}, err
		}
	}
	if _, err := p.expect(tokenLBrace); err != nil {
		return funcBody{}, err
	}
	f := p.module.NewFunction(name.text, result)
	for _, a := range args {
		f.NewArgument(a.name, a.shape)
	}
	body := funcBody{function: f, start: p.pos}
	// A body holds no nested braces, it ends at the first '}'.
	for p.peek().kind != tokenRBrace {
		if p.peek().kind == tokenEOF {
			return funcBody{}, p.errf(p.peek(), "unterminated body of function @%s", name.text)
		}
		p.next()
	}
	p.next() // }
	return body, nil
}

// parseBody parses a function's blocks and instructions. Blocks and
// their arguments are created in a first scan, so branches may target
// blocks declared later.
func (p *parser) parseBody(body funcBody) error {
	f := body.function
	p.symbols = make(map[string]*ir.Def)
	for _, arg := range f.Arguments() {
		p.symbols[arg.Name()] = arg.Def()
	}

	p.pos = body.start
	if err := p.scanLabels(f); err != nil {
		return err
	}

	p.pos = body.start
	var block *ir.BasicBlock
	for p.peek().kind != tokenRBrace {
		if label, ok := p.atLabel(); ok {
			block = f.BlockByName(label)
			p.skipLabel()
			continue
		}
		if block == nil {
			return p.errf(p.peek(), "instruction before any block label in function @%s", f.Name())
		}
		if err := p.parseInstruction(block); err != nil {
			return err
		}
	}
	p.next() // }
	return nil
}

// scanLabels creates every block of the body, with its arguments, before
// any instruction is parsed.
func (p *parser) scanLabels(f *ir.Function) error {
	for p.peek().kind != tokenRBrace {
		label, ok := p.atLabel()
		if !ok {
			p.next()
			continue
		}
		if f.BlockByName(label) != nil {
			return p.errf(p.peek(), "duplicate block label ^%s in function @%s", label, f.Name())
		}
		b := f.NewBlock(label)
		p.next() // ^label
		if p.accept(tokenLParen) {
			for !p.accept(tokenRParen) {
				if len(b.Arguments()) > 0 {
					if _, err := p.expect(tokenComma); err != nil {
						return err
					}
				}
				argName, err := p.expect(tokenValueName)
				if err != nil {
					return err
				}
				if _, err := p.expect(tokenColon); err != nil {
					return err
				}
				shape, err := p.parseShape()
				if err != nil {
					return err
				}
				arg := b.NewArgument(argName.text, shape)
				p.symbols[arg.Name()] = arg.Def()
			}
		}
		p.next() // :
	}
	return nil
}

// atLabel reports whether the parser sits on a block label: a ^name
// followed, after an optional parenthesized argument list, by a colon.
// Successor references inside controls are never followed by a colon.
func (p *parser) atLabel() (string, bool) {
	t := p.peek()
	if t.kind != tokenBlockName {
		return "", false
	}
	j := p.pos + 1
	if p.tokens[j].kind == tokenLParen {
		depth := 1
		for j++; depth > 0; j++ {
			switch p.tokens[j].kind {
			case tokenLParen:
				depth++
			case tokenRParen:
				depth--
			case tokenEOF:
				return "", false
			}
		}
	}
	if p.tokens[j].kind != tokenColon {
		return "", false
	}
	return t.text, true
}

// skipLabel advances past a label header already created by scanLabels.
func (p *parser) skipLabel() {
	p.next() // ^label
	if p.accept(tokenLParen) {
		depth := 1
		for depth > 0 {
			switch p.next().kind {
			case tokenLParen:
				depth++
			case tokenRParen:
				depth--
			}
		}
	}
	p.next() // :
}

func (p *parser) parseInstruction(b *ir.BasicBlock) error {
	t := p.peek()
	if t.kind == tokenValueName {
		return p.parseOperation(b)
	}
	if t.kind != tokenIdent {
		return p.errf(t, "expected an instruction, got %q", t.text)
	}
	control, err := ops.ControlTypeString(t.text)
	if err != nil || control == ops.ControlInvalid {
		return p.errf(t, "unknown control %q", t.text)
	}
	p.next()
	var instr *ir.Instruction
	switch control {
	case ops.ControlBr, ops.ControlCont:
		target, args, err := p.parseSuccessor(b)
		if err != nil {
			return err
		}
		if control == ops.ControlBr {
			instr, err = ir.NewBranch(target, args)
		} else {
			instr, err = ir.NewContinue(target, args)
		}
		if err != nil {
			return p.errf(t, "%v", err)
		}
	case ops.ControlCondBr:
		cond, err := p.parseUse()
		if err != nil {
			return err
		}
		if _, err := p.expect(tokenComma); err != nil {
			return err
		}
		onTrue, trueArgs, err := p.parseSuccessor(b)
		if err != nil {
			return err
		}
		if _, err := p.expect(tokenComma); err != nil {
			return err
		}
		onFalse, falseArgs, err := p.parseSuccessor(b)
		if err != nil {
			return err
		}
		instr, err = ir.NewCondBranch(cond, onTrue, trueArgs, onFalse, falseArgs)
		if err != nil {
			return p.errf(t, "%v", err)
		}
	case ops.ControlRet:
		var values []ir.Use
		if p.atUse() {
			value, err := p.parseUse()
			if err != nil {
				return err
			}
			values = append(values, value)
		}
		var err error
		instr, err = ir.NewReturn(values...)
		if err != nil {
			return p.errf(t, "%v", err)
		}
	case ops.ControlStore:
		value, err := p.parseUse()
		if err != nil {
			return err
		}
		if err := p.expectKeyword("to"); err != nil {
			return err
		}
		gname, err := p.expect(tokenGlobalName)
		if err != nil {
			return err
		}
		global := p.module.VariableByName(gname.text)
		if global == nil {
			return p.errf(gname, "unknown global @%s", gname.text)
		}
		instr, err = ir.NewStore(value, global)
		if err != nil {
			return p.errf(t, "%v", err)
		}
	case ops.ControlYield:
		value, err := p.parseUse()
		if err != nil {
			return err
		}
		if err := p.expectKeyword("then"); err != nil {
			return err
		}
		next, args, err := p.parseSuccessor(b)
		if err != nil {
			return err
		}
		instr, err = ir.NewYield(value, next, args)
		if err != nil {
			return p.errf(t, "%v", err)
		}
	case ops.ControlPull:
		pname, err := p.expect(tokenGlobalName)
		if err != nil {
			return err
		}
		ph := p.module.PlaceholderByName(pname.text)
		if ph == nil {
			return p.errf(pname, "unknown placeholder @%s", pname.text)
		}
		if err := p.expectKeyword("to"); err != nil {
			return err
		}
		bodyBlock, bodyArgs, err := p.parseSuccessor(b)
		if err != nil {
			return err
		}
		if _, err := p.expect(tokenComma); err != nil {
			return err
		}
		exitBlock, exitArgs, err := p.parseSuccessor(b)
		if err != nil {
			return err
		}
		instr, err = ir.NewPull(ph, bodyBlock, bodyArgs, exitBlock, exitArgs)
		if err != nil {
			return p.errf(t, "%v", err)
		}
	}
	b.Append(instr)
	return nil
}

func (p *parser) parseOperation(b *ir.BasicBlock) error {
	name := p.next() // %name
	if _, err := p.expect(tokenEqual); err != nil {
		return err
	}
	mnemonic, err := p.expect(tokenIdent)
	if err != nil {
		return err
	}
	opType, err := ops.OpTypeString(mnemonic.text)
	if err != nil || opType == ops.OpTypeInvalid {
		return p.errf(mnemonic, "unknown operation %q", mnemonic.text)
	}

	var instr *ir.Instruction
	switch {
	case shapeinference.ReduceOperations.Has(opType):
		operand, err := p.parseUse()
		if err != nil {
			return err
		}
		var axes []int
		if p.acceptKeyword("along") {
			axes, err = p.parseInts()
			if err != nil {
				return err
			}
		}
		instr, err = ir.NewReduce(name.text, opType, operand, axes)
		if err != nil {
			return p.errf(mnemonic, "%v", err)
		}
		if err := p.checkResultShape(mnemonic, instr); err != nil {
			return err
		}
	case shapeinference.ScanOperations.Has(opType):
		operand, err := p.parseUse()
		if err != nil {
			return err
		}
		if err := p.expectKeyword("along"); err != nil {
			return err
		}
		axis, err := p.parseInt()
		if err != nil {
			return err
		}
		instr, err = ir.NewScan(name.text, opType, operand, axis)
		if err != nil {
			return p.errf(mnemonic, "%v", err)
		}
		if err := p.checkResultShape(mnemonic, instr); err != nil {
			return err
		}
	default:
		instr, err = p.parseOtherOperation(name.text, mnemonic, opType)
		if err != nil {
			return err
		}
	}
	if _, dup := p.symbols[name.text]; dup {
		return p.errf(name, "value %%%s defined twice in function @%s", name.text, b.Function().Name())
	}
	p.symbols[name.text] = instr.Def()
	b.Append(instr)
	return nil
}

func (p *parser) parseOtherOperation(name string, mnemonic token, opType ops.OpType) (*ir.Instruction, error) {
	switch opType {
	case ops.OpTypeConcatenate:
		operands, err := p.parseUses()
		if err != nil {
			return nil, err
		}
		if err := p.expectKeyword("along"); err != nil {
			return nil, err
		}
		axis, err := p.parseInt()
		if err != nil {
			return nil, err
		}
		instr, err := ir.NewConcatenate(name, operands, axis)
		if err != nil {
			return nil, p.errf(mnemonic, "%v", err)
		}
		return instr, p.checkResultShape(mnemonic, instr)
	case ops.OpTypeTranspose:
		operand, err := p.parseUse()
		if err != nil {
			return nil, err
		}
		if err := p.expectKeyword("perm"); err != nil {
			return nil, err
		}
		perm, err := p.parseInts()
		if err != nil {
			return nil, err
		}
		instr, err := ir.NewTranspose(name, operand, perm)
		if err != nil {
			return nil, p.errf(mnemonic, "%v", err)
		}
		return instr, p.checkResultShape(mnemonic, instr)
	case ops.OpTypeReshape:
		operand, err := p.parseUse()
		if err != nil {
			return nil, err
		}
		if err := p.expectKeyword("to"); err != nil {
			return nil, err
		}
		target, err := p.parseShape()
		if err != nil {
			return nil, err
		}
		if target.DType != operand.DType() {
			return nil, p.errf(mnemonic, "reshape cannot change dtype %s to %s", operand.DType(), target.DType)
		}
		instr, err := ir.NewReshape(name, operand, target.Dimensions)
		if err != nil {
			return nil, p.errf(mnemonic, "%v", err)
		}
		return instr, nil
	case ops.OpTypeConvert:
		operand, err := p.parseUse()
		if err != nil {
			return nil, err
		}
		if err := p.expectKeyword("to"); err != nil {
			return nil, err
		}
		dtypeTok, err := p.expect(tokenIdent)
		if err != nil {
			return nil, err
		}
		dtype, err := dtypes.FromString(dtypeTok.text)
		if err != nil {
			return nil, p.errf(dtypeTok, "unknown dtype %q", dtypeTok.text)
		}
		instr, err := ir.NewConvert(name, operand, dtype)
		if err != nil {
			return nil, p.errf(mnemonic, "%v", err)
		}
		return instr, nil
	case ops.OpTypeElement:
		operand, err := p.parseUse()
		if err != nil {
			return nil, err
		}
		if err := p.expectKeyword("at"); err != nil {
			return nil, err
		}
		index, err := p.parseUse()
		if err != nil {
			return nil, err
		}
		instr, err := ir.NewElement(name, operand, index)
		if err != nil {
			return nil, p.errf(mnemonic, "%v", err)
		}
		return instr, p.checkResultShape(mnemonic, instr)
	case ops.OpTypeSubtensor:
		operand, err := p.parseUse()
		if err != nil {
			return nil, err
		}
		if err := p.expectKeyword("from"); err != nil {
			return nil, err
		}
		start, err := p.parseUse()
		if err != nil {
			return nil, err
		}
		if err := p.expectKeyword("count"); err != nil {
			return nil, err
		}
		count, err := p.parseInt()
		if err != nil {
			return nil, err
		}
		instr, err := ir.NewSubtensor(name, operand, start, count)
		if err != nil {
			return nil, p.errf(mnemonic, "%v", err)
		}
		return instr, p.checkResultShape(mnemonic, instr)
	case ops.OpTypeIntrinsic:
		intrinsicTok, err := p.expect(tokenIdent)
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(tokenLParen); err != nil {
			return nil, err
		}
		var operands []ir.Use
		if !p.accept(tokenRParen) {
			operands, err = p.parseUses()
			if err != nil {
				return nil, err
			}
			if _, err := p.expect(tokenRParen); err != nil {
				return nil, err
			}
		}
		if _, err := p.expect(tokenColon); err != nil {
			return nil, err
		}
		result, err := p.parseShape()
		if err != nil {
			return nil, err
		}
		instr, err := ir.NewIntrinsic(name, intrinsicTok.text, operands, result)
		if err != nil {
			return nil, p.errf(mnemonic, "%v", err)
		}
		return instr, nil
	case ops.OpTypeCall:
		calleeTok, err := p.expect(tokenGlobalName)
		if err != nil {
			return nil, err
		}
		callee := p.module.FunctionByName(calleeTok.text)
		if callee == nil {
			return nil, p.errf(calleeTok, "unknown function @%s", calleeTok.text)
		}
		if _, err := p.expect(tokenLParen); err != nil {
			return nil, err
		}
		var args []ir.Use
		if !p.accept(tokenRParen) {
			args, err = p.parseUses()
			if err != nil {
				return nil, err
			}
			if _, err := p.expect(tokenRParen); err != nil {
				return nil, err
			}
		}
		instr, err := ir.NewCall(name, callee, args)
		if err != nil {
			return nil, p.errf(mnemonic, "%v", err)
		}
		return instr, nil
	case ops.OpTypeDiff:
		calleeTok, err := p.expect(tokenGlobalName)
		if err != nil {
			return nil, err
		}
		callee := p.module.FunctionByName(calleeTok.text)
		if callee == nil {
			return nil, p.errf(calleeTok, "unknown function @%s", calleeTok.text)
		}
		if err := p.expectKeyword("wrt"); err != nil {
			return nil, err
		}
		argIndex, err := p.parseInt()
		if err != nil {
			return nil, err
		}
		instr, err := ir.NewDiff(name, callee, argIndex)
		if err != nil {
			return nil, p.errf(mnemonic, "%v", err)
		}
		return instr, nil
	}

	// Unary, binary, comparison, matmul, tensordot: plain operand lists.
	operands, err := p.parseUses()
	if err != nil {
		return nil, err
	}
	var instr *ir.Instruction
	switch {
	case shapeinference.StandardUnaryOperations.Has(opType):
		if len(operands) != 1 {
			return nil, p.errf(mnemonic, "%s takes one operand, got %d", opType, len(operands))
		}
		instr, err = ir.NewUnary(name, opType, operands[0])
	case shapeinference.StandardBinaryOperations.Has(opType),
		shapeinference.ComparisonOperations.Has(opType),
		opType == ops.OpTypeMatMul, opType == ops.OpTypeTensorDot:
		if len(operands) != 2 {
			return nil, p.errf(mnemonic, "%s takes two operands, got %d", opType, len(operands))
		}
		switch {
		case opType == ops.OpTypeMatMul:
			instr, err = ir.NewMatMul(name, operands[0], operands[1])
		case opType == ops.OpTypeTensorDot:
			instr, err = ir.NewTensorDot(name, operands[0], operands[1])
		case shapeinference.ComparisonOperations.Has(opType):
			instr, err = ir.NewComparison(name, opType, operands[0], operands[1])
		default:
			instr, err = ir.NewBinary(name, opType, operands[0], operands[1])
		}
	default:
		return nil, p.errf(mnemonic, "operation %q cannot appear in a listing", mnemonic.text)
	}
	if err != nil {
		return nil, p.errf(mnemonic, "%v", err)
	}
	return instr, p.checkResultShape(mnemonic, instr)
}

// checkResultShape consumes the trailing ": shape" annotation and
// verifies it against the shape the operands derive.
func (p *parser) checkResultShape(at token, instr *ir.Instruction) error {
	if _, err := p.expect(tokenColon); err != nil {
		return err
	}
	declared, err := p.parseShape()
	if err != nil {
		return err
	}
	if !declared.Equal(instr.Shape()) {
		return p.errf(at, "listing declares shape %s, operands derive %s", declared, instr.Shape())
	}
	return nil
}

// parseSuccessor parses a "^target" or "^target(args)" reference.
func (p *parser) parseSuccessor(b *ir.BasicBlock) (*ir.BasicBlock, []ir.Use, error) {
	t, err := p.expect(tokenBlockName)
	if err != nil {
		return nil, nil, err
	}
	target := b.Function().BlockByName(t.text)
	if target == nil {
		return nil, nil, p.errf(t, "unknown block ^%s in function @%s", t.text, b.Function().Name())
	}
	var args []ir.Use
	if p.accept(tokenLParen) {
		args, err = p.parseUses()
		if err != nil {
			return nil, nil, err
		}
		if _, err := p.expect(tokenRParen); err != nil {
			return nil, nil, err
		}
	}
	return target, args, nil
}

// atUse reports whether the next token can start a value reference or
// literal.
func (p *parser) atUse() bool {
	switch p.peek().kind {
	case tokenValueName, tokenGlobalName, tokenNumber, tokenLBracket:
		return true
	}
	return false
}

func (p *parser) parseUses() ([]ir.Use, error) {
	var uses []ir.Use
	for {
		u, err := p.parseUse()
		if err != nil {
			return nil, err
		}
		uses = append(uses, u)
		if !p.accept(tokenComma) {
			return uses, nil
		}
	}
}

func (p *parser) parseUse() (ir.Use, error) {
	t := p.peek()
	switch t.kind {
	case tokenValueName:
		p.next()
		def, ok := p.symbols[t.text]
		if !ok {
			return ir.Use{}, p.errf(t, "unknown value %%%s", t.text)
		}
		return ir.UseDef(def), nil
	case tokenGlobalName:
		p.next()
		if v := p.module.VariableByName(t.text); v != nil {
			return ir.UseDef(v.Def()), nil
		}
		if ph := p.module.PlaceholderByName(t.text); ph != nil {
			return ir.UseDef(ph.Def()), nil
		}
		return ir.Use{}, p.errf(t, "unknown global @%s", t.text)
	case tokenNumber, tokenLBracket:
		lit, err := p.parseLiteral()
		if err != nil {
			return ir.Use{}, err
		}
		return ir.UseLiteral(lit), nil
	}
	return ir.Use{}, p.errf(t, "expected a value, got %q", t.text)
}

// parseLiteral parses "1.5:f32" or "[1, 2, 3]:f32[3]".
func (p *parser) parseLiteral() (*ir.Literal, error) {
	t := p.peek()
	if t.kind == tokenNumber {
		p.next()
		value, err := strconv.ParseFloat(t.text, 64)
		if err != nil {
			return nil, p.errf(t, "invalid number %q", t.text)
		}
		if _, err := p.expect(tokenColon); err != nil {
			return nil, err
		}
		shape, err := p.parseShape()
		if err != nil {
			return nil, err
		}
		if !shape.IsScalar() {
			return nil, p.errf(t, "scalar literal annotated with non-scalar shape %s", shape)
		}
		return ir.NewScalarLiteral(shape.DType, value), nil
	}
	if _, err := p.expect(tokenLBracket); err != nil {
		return nil, err
	}
	var values []float64
	for !p.accept(tokenRBracket) {
		if len(values) > 0 {
			if _, err := p.expect(tokenComma); err != nil {
				return nil, err
			}
		}
		num, err := p.expect(tokenNumber)
		if err != nil {
			return nil, err
		}
		value, err := strconv.ParseFloat(num.text, 64)
		if err != nil {
			return nil, p.errf(num, "invalid number %q", num.text)
		}
		values = append(values, value)
	}
	if _, err := p.expect(tokenColon); err != nil {
		return nil, err
	}
	shape, err := p.parseShape()
	if err != nil {
		return nil, err
	}
	lit, err := ir.NewTensorLiteral(shape, values)
	if err != nil {
		return nil, p.errf(t, "%v", err)
	}
	return lit, nil
}

// parseShape parses "f32", "f32[2,3]" or an alias reference "$name".
func (p *parser) parseShape() (shapes.Shape, error) {
	t := p.next()
	if t.kind == tokenTypeName {
		alias := p.module.AliasByName(t.text)
		if alias == nil {
			return shapes.Invalid(), p.errf(t, "unknown type alias $%s", t.text)
		}
		return alias.Target, nil
	}
	if t.kind != tokenIdent {
		return shapes.Invalid(), p.errf(t, "expected a shape, got %q", t.text)
	}
	dtype, err := dtypes.FromString(t.text)
	if err != nil {
		return shapes.Invalid(), p.errf(t, "unknown dtype %q", t.text)
	}
	if !p.accept(tokenLBracket) {
		return shapes.Scalar(dtype), nil
	}
	var dims []int
	for !p.accept(tokenRBracket) {
		if len(dims) > 0 {
			if _, err := p.expect(tokenComma); err != nil {
				return shapes.Invalid(), err
			}
		}
		dim, err := p.parseInt()
		if err != nil {
			return shapes.Invalid(), err
		}
		if dim < 0 {
			return shapes.Invalid(), p.errf(t, "negative dimension %d in shape", dim)
		}
		dims = append(dims, dim)
	}
	return shapes.Make(dtype, dims...), nil
}

func (p *parser) parseInt() (int, error) {
	t, err := p.expect(tokenNumber)
	if err != nil {
		return 0, err
	}
	v, err := strconv.Atoi(t.text)
	if err != nil {
		return 0, p.errf(t, "expected an integer, got %q", t.text)
	}
	return v, nil
}

func (p *parser) parseInts() ([]int, error) {
	var values []int
	for {
		v, err := p.parseInt()
		if err != nil {
			return nil, err
		}
		values = append(values, v)
		if !p.accept(tokenComma) {
			return values, nil
		}
	}
}
