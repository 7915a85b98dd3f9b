package ops

// ControlType identifies a control instruction. Every control is a
// terminator: a basic block ends in exactly one of them.
type ControlType int

//go:generate go tool enumer -type=ControlType -trimprefix=Control -transform=lower -output=gen_controltype_enumer.go controltype.go

const (
	ControlInvalid ControlType = iota

	// ControlBr branches unconditionally to one successor block.
	ControlBr

	// ControlCondBr branches on a scalar boolean to one of two
	// successors.
	ControlCondBr

	// ControlRet returns from the function, with an optional value.
	ControlRet

	// ControlCont continues a recurrence: it is the back-edge to the
	// block that pulls the next element of a recurrent input.
	ControlCont

	// ControlStore writes a value to a global variable.
	ControlStore

	// ControlYield appends a value to the function's output stream and
	// proceeds to its successor block.
	ControlYield

	// ControlPull reads the next element of a recurrent input and
	// branches to the body successor (passing the element as the body
	// block's first argument), or to the exit successor once the stream
	// is exhausted. It is the IR's only looping primitive: recurrence is
	// structural, not an embedded loop construct.
	ControlPull
)

// NumSuccessors returns how many successor blocks the control takes.
func (c ControlType) NumSuccessors() int {
	switch c {
	case ControlBr, ControlCont, ControlYield:
		return 1
	case ControlCondBr, ControlPull:
		return 2
	}
	return 0
}
