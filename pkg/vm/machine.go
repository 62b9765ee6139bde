package vm

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
)

var (
	ErrStackUnderflow     = errors.New("vm: stack underflow")
	ErrDivisionByZero     = errors.New("vm: division by zero")
	ErrModuloByZero       = errors.New("vm: modulo by zero")
	ErrSlotOutOfRange     = errors.New("vm: local slot out of range")
	ErrInvalidJumpTarget  = errors.New("vm: invalid jump target")
	ErrArityMismatch      = errors.New("vm: call argument count does not match parameter count")
	ErrMissingReturnValue = errors.New("vm: missing return value on stack")
	ErrFellOffEnd         = errors.New("vm: fell off end of function without return")
	ErrInactive           = errors.New("vm: step while inactive")
	ErrNoEntryFunction    = errors.New("vm: entry function not set")
	ErrUnknownFunction    = errors.New("vm: unknown function id")
	ErrStepLimitExceeded  = errors.New("vm: step limit exceeded")
)

// Frame is one activation record: function identity, instruction
// pointer, and the fixed-size local slot array.
type Frame struct {
	FuncID uint32
	IP     int
	Locals []int64
}

// VirtualMachine executes compiled functions over an explicit operand
// stack and a call-frame stack. One instance owns all of its state;
// it is not safe for concurrent use.
//
// A runtime error deactivates the machine but leaves the operand
// stack and print buffer observable for diagnostics.
type VirtualMachine struct {
	functions []FunctionBytecode
	entry     int // index into functions, -1 when unset

	stack       []int64
	frames      []Frame
	printBuffer []int64
	outputLog   []string

	active    bool
	hasReturn bool
	retValue  int64
	steps     uint64

	// ImmediatePrint mirrors every print to Output as it executes.
	ImmediatePrint bool
	Output         io.Writer

	// StepLimit aborts Run after this many instructions; zero means
	// unlimited. The language itself has no execution bound, this is
	// an embedding guard.
	StepLimit uint64
}

// New creates an empty machine with no functions registered.
func New() *VirtualMachine {
	return &VirtualMachine{entry: -1, Output: os.Stdout}
}

// AddFunction registers a compiled function and returns its id.
// Function ids are assigned densely in registration order, so a
// compiler emitting Call instructions by declaration index can add
// functions in the same order and the ids line up.
func (m *VirtualMachine) AddFunction(fn FunctionBytecode) uint32 {
	id := uint32(len(m.functions))
	m.functions = append(m.functions, fn)
	return id
}

// SetEntryFunction selects which function Reset starts from.
func (m *VirtualMachine) SetEntryFunction(id uint32) error {
	if int(id) >= len(m.functions) {
		return fmt.Errorf("%w: %d", ErrUnknownFunction, id)
	}
	m.entry = int(id)
	return nil
}

// Clear wipes everything including registered functions.
func (m *VirtualMachine) Clear() {
	m.functions = nil
	m.entry = -1
	m.stack = nil
	m.frames = nil
	m.printBuffer = nil
	m.outputLog = nil
	m.active = false
	m.hasReturn = false
	m.retValue = 0
	m.steps = 0
}

// Reset clears execution state and pushes one zero-initialized frame
// for the entry function. An entry function with no instructions
// halts the machine immediately.
func (m *VirtualMachine) Reset() error {
	if m.entry < 0 {
		return ErrNoEntryFunction
	}
	f := &m.functions[m.entry]

	m.stack = m.stack[:0]
	m.frames = m.frames[:0]
	m.printBuffer = m.printBuffer[:0]
	m.outputLog = m.outputLog[:0]
	m.hasReturn = false
	m.retValue = 0
	m.steps = 0

	m.frames = append(m.frames, Frame{
		FuncID: uint32(m.entry),
		Locals: make([]int64, f.NumLocals),
	})
	m.active = len(f.Code) > 0
	return nil
}

// IsActive reports whether the machine can execute another step.
func (m *VirtualMachine) IsActive() bool { return m.active }

// Stack returns a read-only view of the operand stack.
func (m *VirtualMachine) Stack() []int64 { return m.stack }

// PrintBuffer returns the values printed so far, in order.
func (m *VirtualMachine) PrintBuffer() []int64 { return m.printBuffer }

// OutputLog returns everything printed so far, in order: print
// values in decimal and print-string literals verbatim.
func (m *VirtualMachine) OutputLog() []string { return m.outputLog }

// ReturnValue returns the program's return value. Valid only after
// the machine has halted by returning from the entry function.
func (m *VirtualMachine) ReturnValue() (int64, bool) {
	return m.retValue, m.hasReturn
}

// CallDepth returns the current call nesting, for tracing.
func (m *VirtualMachine) CallDepth() int { return len(m.frames) }

// CurrentOp returns the instruction Step would execute next.
func (m *VirtualMachine) CurrentOp() (Op, bool) {
	if !m.active || len(m.frames) == 0 {
		return Op{}, false
	}
	fr := &m.frames[len(m.frames)-1]
	code := m.functions[fr.FuncID].Code
	if fr.IP >= len(code) {
		return Op{}, false
	}
	return code[fr.IP], true
}

// fail deactivates the machine and returns the error, leaving the
// stack and print buffer as they were for diagnostics.
func (m *VirtualMachine) fail(err error) error {
	m.active = false
	return err
}

func (m *VirtualMachine) pop() (int64, error) {
	if len(m.stack) == 0 {
		return 0, ErrStackUnderflow
	}
	v := m.stack[len(m.stack)-1]
	m.stack = m.stack[:len(m.stack)-1]
	return v, nil
}

func (m *VirtualMachine) push(v int64) {
	m.stack = append(m.stack, v)
}

// pop2 pops rhs then lhs, matching push order.
func (m *VirtualMachine) pop2() (lhs, rhs int64, err error) {
	rhs, err = m.pop()
	if err != nil {
		return 0, 0, err
	}
	lhs, err = m.pop()
	if err != nil {
		return 0, 0, err
	}
	return lhs, rhs, nil
}

func truthy(v int64) bool { return v != 0 }

func boolToI64(b bool) int64 {
	if b {
		return 1
	}
	return 0
}

// Step executes exactly one instruction.
func (m *VirtualMachine) Step() error {
	if !m.active {
		return ErrInactive
	}
	if len(m.frames) == 0 {
		return m.fail(errors.New("vm: internal error: active but no frames"))
	}

	fr := &m.frames[len(m.frames)-1]
	code := m.functions[fr.FuncID].Code
	if fr.IP >= len(code) {
		return m.fail(ErrFellOffEnd)
	}

	op := code[fr.IP]
	fr.IP++
	m.steps++

	if err := m.exec(op); err != nil {
		return m.fail(err)
	}
	return nil
}

// Run steps until the machine halts or errors.
func (m *VirtualMachine) Run() error {
	for m.active {
		if m.StepLimit > 0 && m.steps >= m.StepLimit {
			return m.fail(fmt.Errorf("%w (%d instructions)", ErrStepLimitExceeded, m.steps))
		}
		if err := m.Step(); err != nil {
			return err
		}
	}
	return nil
}

func (m *VirtualMachine) exec(op Op) error {
	fr := &m.frames[len(m.frames)-1]

	switch op.Kind {
	case OpPushI64:
		m.push(op.Value)

	case OpAdd:
		lhs, rhs, err := m.pop2()
		if err != nil {
			return err
		}
		m.push(lhs + rhs)

	case OpSub:
		lhs, rhs, err := m.pop2()
		if err != nil {
			return err
		}
		m.push(lhs - rhs)

	case OpMul:
		lhs, rhs, err := m.pop2()
		if err != nil {
			return err
		}
		m.push(lhs * rhs)

	case OpDiv:
		lhs, rhs, err := m.pop2()
		if err != nil {
			return err
		}
		if rhs == 0 {
			return ErrDivisionByZero
		}
		m.push(lhs / rhs)

	case OpMod:
		lhs, rhs, err := m.pop2()
		if err != nil {
			return err
		}
		if rhs == 0 {
			return ErrModuloByZero
		}
		m.push(lhs % rhs)

	case OpEq:
		lhs, rhs, err := m.pop2()
		if err != nil {
			return err
		}
		m.push(boolToI64(lhs == rhs))

	case OpNeq:
		lhs, rhs, err := m.pop2()
		if err != nil {
			return err
		}
		m.push(boolToI64(lhs != rhs))

	case OpLt:
		lhs, rhs, err := m.pop2()
		if err != nil {
			return err
		}
		m.push(boolToI64(lhs < rhs))

	case OpLe:
		lhs, rhs, err := m.pop2()
		if err != nil {
			return err
		}
		m.push(boolToI64(lhs <= rhs))

	case OpGt:
		lhs, rhs, err := m.pop2()
		if err != nil {
			return err
		}
		m.push(boolToI64(lhs > rhs))

	case OpGe:
		lhs, rhs, err := m.pop2()
		if err != nil {
			return err
		}
		m.push(boolToI64(lhs >= rhs))

	case OpNeg:
		v, err := m.pop()
		if err != nil {
			return err
		}
		m.push(-v)

	case OpNot:
		v, err := m.pop()
		if err != nil {
			return err
		}
		m.push(boolToI64(!truthy(v)))

	case OpPop:
		if _, err := m.pop(); err != nil {
			return err
		}

	case OpLoadLocal:
		if int(op.Slot) >= len(fr.Locals) {
			return fmt.Errorf("%w: load slot %d of %d", ErrSlotOutOfRange, op.Slot, len(fr.Locals))
		}
		m.push(fr.Locals[op.Slot])

	case OpStoreLocal:
		if int(op.Slot) >= len(fr.Locals) {
			return fmt.Errorf("%w: store slot %d of %d", ErrSlotOutOfRange, op.Slot, len(fr.Locals))
		}
		v, err := m.pop()
		if err != nil {
			return err
		}
		fr.Locals[op.Slot] = v

	case OpJmp:
		return m.jump(fr, op.Target)

	case OpJmpFalse:
		cond, err := m.pop()
		if err != nil {
			return err
		}
		if !truthy(cond) {
			return m.jump(fr, op.Target)
		}

	case OpJmpTrue:
		cond, err := m.pop()
		if err != nil {
			return err
		}
		if truthy(cond) {
			return m.jump(fr, op.Target)
		}

	case OpCall:
		return m.call(op.FuncID, 0)

	case OpCallArgs:
		return m.call(op.FuncID, op.Argc)

	case OpReturn:
		return m.doReturn()

	case OpPrint:
		if len(m.stack) == 0 {
			return fmt.Errorf("%w: print requires a value", ErrStackUnderflow)
		}
		v := m.stack[len(m.stack)-1]
		m.printBuffer = append(m.printBuffer, v)
		m.record(strconv.FormatInt(v, 10))

	case OpPrintString:
		m.record(op.Str)

	default:
		return fmt.Errorf("vm: unknown opcode %d", op.Kind)
	}
	return nil
}

func (m *VirtualMachine) record(line string) {
	m.outputLog = append(m.outputLog, line)
	if m.ImmediatePrint && m.Output != nil {
		fmt.Fprintln(m.Output, line)
	}
}

func (m *VirtualMachine) jump(fr *Frame, target int) error {
	code := m.functions[fr.FuncID].Code
	if target < 0 || target > len(code) {
		return fmt.Errorf("%w: %d", ErrInvalidJumpTarget, target)
	}
	fr.IP = target
	return nil
}

func (m *VirtualMachine) call(funcID, argc uint32) error {
	if int(funcID) >= len(m.functions) {
		return fmt.Errorf("%w: %d", ErrUnknownFunction, funcID)
	}
	callee := &m.functions[funcID]
	if argc != callee.NumParams {
		return fmt.Errorf("%w: got %d args, function %d takes %d", ErrArityMismatch, argc, funcID, callee.NumParams)
	}
	if callee.NumLocals < callee.NumParams {
		return fmt.Errorf("vm: function %d has fewer locals than parameters", funcID)
	}
	if len(m.stack) < int(argc) {
		return fmt.Errorf("%w: %d args needed, %d values on stack", ErrStackUnderflow, argc, len(m.stack))
	}

	locals := make([]int64, callee.NumLocals)
	// Pop in reverse; the last pushed argument is on top.
	for i := int(argc) - 1; i >= 0; i-- {
		v, err := m.pop()
		if err != nil {
			return err
		}
		locals[i] = v
	}

	m.frames = append(m.frames, Frame{FuncID: funcID, Locals: locals})

	// A callee with no instructions returns immediately.
	if len(callee.Code) == 0 {
		return m.doReturn()
	}
	return nil
}

func (m *VirtualMachine) doReturn() error {
	if len(m.stack) == 0 {
		return ErrMissingReturnValue
	}
	ret, err := m.pop()
	if err != nil {
		return err
	}

	m.frames = m.frames[:len(m.frames)-1]
	if len(m.frames) == 0 {
		// Returned from the entry function: halt and record the value.
		m.retValue = ret
		m.hasReturn = true
		m.active = false
		return nil
	}

	m.push(ret)
	return nil
}
