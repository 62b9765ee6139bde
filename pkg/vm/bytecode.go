package vm

import (
	"fmt"
	"strings"
)

// FunctionBytecode is one compiled function: a flat instruction list
// plus the frame shape it needs. Built once by the compiler, then
// immutable during execution.
type FunctionBytecode struct {
	Code      []Op
	Symbols   []string // debug names per local slot
	NumLocals uint32
	NumParams uint32
}

func (f *FunctionBytecode) String() string {
	parts := make([]string, len(f.Code))
	for i, op := range f.Code {
		parts[i] = op.String()
	}
	return fmt.Sprintf("FunctionBytecode(num_locals=%d, num_params=%d, code=[%s])",
		f.NumLocals, f.NumParams, strings.Join(parts, ", "))
}
