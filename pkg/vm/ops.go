package vm

import "fmt"

// OpKind identifies a bytecode instruction.
type OpKind uint8

const (
	OpPushI64 OpKind = iota
	OpAdd
	OpSub
	OpMul
	OpDiv
	OpMod
	OpEq
	OpNeq
	OpLt
	OpLe
	OpGt
	OpGe
	OpNeg
	OpNot
	OpPop
	OpLoadLocal
	OpStoreLocal
	OpJmp
	OpJmpFalse
	OpJmpTrue
	OpCall
	OpCallArgs
	OpReturn
	OpPrint
	OpPrintString
)

// InvalidTarget marks a jump whose destination has not been patched.
// Executing a jump with this target is a runtime error.
const InvalidTarget = -1

// Op is one tagged instruction. Only the operands relevant to Kind
// are meaningful; the rest stay zero.
type Op struct {
	Kind   OpKind
	Value  int64  // PushI64
	Slot   uint32 // LoadLocal, StoreLocal
	Target int    // Jmp, JmpFalse, JmpTrue
	FuncID uint32 // Call, CallArgs
	Argc   uint32 // CallArgs
	Str    string // PrintString
}

func PushI64(v int64) Op        { return Op{Kind: OpPushI64, Value: v} }
func Add() Op                   { return Op{Kind: OpAdd} }
func Sub() Op                   { return Op{Kind: OpSub} }
func Mul() Op                   { return Op{Kind: OpMul} }
func Div() Op                   { return Op{Kind: OpDiv} }
func Mod() Op                   { return Op{Kind: OpMod} }
func Eq() Op                    { return Op{Kind: OpEq} }
func Neq() Op                   { return Op{Kind: OpNeq} }
func Lt() Op                    { return Op{Kind: OpLt} }
func Le() Op                    { return Op{Kind: OpLe} }
func Gt() Op                    { return Op{Kind: OpGt} }
func Ge() Op                    { return Op{Kind: OpGe} }
func Neg() Op                   { return Op{Kind: OpNeg} }
func Not() Op                   { return Op{Kind: OpNot} }
func Pop() Op                   { return Op{Kind: OpPop} }
func LoadLocal(slot uint32) Op  { return Op{Kind: OpLoadLocal, Slot: slot} }
func StoreLocal(slot uint32) Op { return Op{Kind: OpStoreLocal, Slot: slot} }
func Jmp(target int) Op         { return Op{Kind: OpJmp, Target: target} }
func JmpFalse(target int) Op    { return Op{Kind: OpJmpFalse, Target: target} }
func JmpTrue(target int) Op     { return Op{Kind: OpJmpTrue, Target: target} }
func Call(funcID uint32) Op     { return Op{Kind: OpCall, FuncID: funcID} }
func CallArgs(funcID, argc uint32) Op {
	return Op{Kind: OpCallArgs, FuncID: funcID, Argc: argc}
}
func Return() Op              { return Op{Kind: OpReturn} }
func Print() Op               { return Op{Kind: OpPrint} }
func PrintString(s string) Op { return Op{Kind: OpPrintString, Str: s} }

func (op Op) String() string {
	switch op.Kind {
	case OpPushI64:
		return fmt.Sprintf("PUSH_I64 %d", op.Value)
	case OpAdd:
		return "ADD"
	case OpSub:
		return "SUB"
	case OpMul:
		return "MULT"
	case OpDiv:
		return "DIV"
	case OpMod:
		return "MOD"
	case OpEq:
		return "EQ"
	case OpNeq:
		return "NEQ"
	case OpLt:
		return "LT"
	case OpLe:
		return "LE"
	case OpGt:
		return "GT"
	case OpGe:
		return "GE"
	case OpNeg:
		return "NEG"
	case OpNot:
		return "NOT"
	case OpPop:
		return "POP"
	case OpLoadLocal:
		return fmt.Sprintf("LOAD_LOCAL %d", op.Slot)
	case OpStoreLocal:
		return fmt.Sprintf("STORE_LOCAL %d", op.Slot)
	case OpJmp:
		return fmt.Sprintf("JMP %d", op.Target)
	case OpJmpFalse:
		return fmt.Sprintf("JMP_FALSE %d", op.Target)
	case OpJmpTrue:
		return fmt.Sprintf("JMP_TRUE %d", op.Target)
	case OpCall:
		return fmt.Sprintf("CALL %d", op.FuncID)
	case OpCallArgs:
		return fmt.Sprintf("CALL_ARGS %d %d", op.FuncID, op.Argc)
	case OpReturn:
		return "RETURN"
	case OpPrint:
		return "PRINT"
	case OpPrintString:
		return fmt.Sprintf("PRINT %q", op.Str)
	}
	return "UNKNOWN"
}
