package builder

import (
	"fmt"

	"github.com/dslang/dslang/pkg/compiler/ast"
	"github.com/dslang/dslang/pkg/vm"
)

// binding is one declared local. A plain int local has an empty
// structType; a struct local records its type and owns one slot per
// field starting at slot.
type binding struct {
	slot       uint32
	structType string
}

type scope struct {
	locals        map[string]binding
	savedNextSlot uint32
}

// Builder compiles a parsed program into per-function bytecode in two
// passes: the first registers every top-level struct and function, the
// second compiles each function body against those registrations.
type Builder struct {
	functions []vm.FunctionBytecode
	funcIDs   map[string]uint32
	structs   map[string][]string
	entry     uint32

	// per-function compile state
	active   int
	scopes   []scope
	nextSlot uint32
	maxSlot  uint32
}

func New() *Builder {
	return &Builder{
		funcIDs: make(map[string]uint32),
		structs: make(map[string][]string),
	}
}

// Functions returns the compiled functions, indexed by function ID.
// Valid only after a successful Build.
func (b *Builder) Functions() []vm.FunctionBytecode { return b.functions }

// EntryFunction returns the ID of main. Valid only after a successful
// Build.
func (b *Builder) EntryFunction() uint32 { return b.entry }

// Build compiles program. On error the builder's output is undefined
// and must not be handed to a VM.
func (b *Builder) Build(program []ast.Stmt) error {
	b.functions = nil
	b.funcIDs = make(map[string]uint32)
	b.structs = make(map[string][]string)

	// Pass 1: register declarations so bodies can reference functions
	// and structs declared after them.
	var funcs []*ast.Function
	for _, st := range program {
		switch s := st.(type) {
		case *ast.Function:
			if _, ok := b.funcIDs[s.Name]; ok {
				return fmt.Errorf("duplicate function: %s", s.Name)
			}
			id := uint32(len(b.functions))
			b.funcIDs[s.Name] = id
			b.functions = append(b.functions, vm.FunctionBytecode{
				NumParams: uint32(len(s.Params)),
				NumLocals: uint32(len(s.Params)),
			})
			funcs = append(funcs, s)
		case *ast.StructDef:
			if _, ok := b.structs[s.Name]; ok {
				return fmt.Errorf("duplicate struct: %s", s.Name)
			}
			b.structs[s.Name] = s.Fields
		default:
			return fmt.Errorf("only function and struct declarations are allowed at top level, got %s", st)
		}
	}

	entry, ok := b.funcIDs["main"]
	if !ok {
		return fmt.Errorf("missing entry point: define func main()")
	}
	b.entry = entry

	// Pass 2: compile bodies.
	for _, f := range funcs {
		b.active = int(b.funcIDs[f.Name])
		fn := b.fn()
		fn.Code = nil
		fn.Symbols = nil

		if err := b.beginFunctionLocals(f.Params); err != nil {
			return err
		}
		if err := b.buildStatements(f.Body); err != nil {
			return fmt.Errorf("func %s: %w", f.Name, err)
		}
		if !b.endsWithReturn() {
			b.emit(vm.PushI64(0))
			b.emit(vm.Return())
		}
		fn.NumLocals = b.maxSlot
	}
	return nil
}

func (b *Builder) fn() *vm.FunctionBytecode { return &b.functions[b.active] }

func (b *Builder) ip() int { return len(b.fn().Code) }

func (b *Builder) emit(op vm.Op) int {
	here := b.ip()
	fn := b.fn()
	fn.Code = append(fn.Code, op)
	return here
}

// patchJump overwrites the still-unpatched target of the jump at
// where. Patching twice, patching with the sentinel, or patching a
// non-jump is a builder bug, not a user error.
func (b *Builder) patchJump(where, target int) error {
	if target == vm.InvalidTarget {
		return fmt.Errorf("patch jump at %d: target is the unpatched sentinel", where)
	}
	op := &b.fn().Code[where]
	switch op.Kind {
	case vm.OpJmp, vm.OpJmpFalse, vm.OpJmpTrue:
		if op.Target != vm.InvalidTarget {
			return fmt.Errorf("patch jump at %d: already patched", where)
		}
		op.Target = target
		return nil
	default:
		return fmt.Errorf("patch jump at %d: %s is not a jump", where, op)
	}
}

func (b *Builder) endsWithReturn() bool {
	code := b.fn().Code
	return len(code) > 0 && code[len(code)-1].Kind == vm.OpReturn
}

func (b *Builder) beginFunctionLocals(params []string) error {
	b.scopes = b.scopes[:0]
	b.scopes = append(b.scopes, scope{locals: make(map[string]binding)})
	b.nextSlot = 0
	b.maxSlot = 0

	base := b.scopes[0].locals
	for i, p := range params {
		if _, ok := base[p]; ok {
			return fmt.Errorf("duplicate parameter: %s", p)
		}
		base[p] = binding{slot: uint32(i)}
		b.setSymbol(uint32(i), p)
	}
	b.nextSlot = uint32(len(params))
	b.maxSlot = b.nextSlot
	return nil
}

func (b *Builder) beginScope() {
	b.scopes = append(b.scopes, scope{
		locals:        make(map[string]binding),
		savedNextSlot: b.nextSlot,
	})
}

func (b *Builder) endScope() {
	last := len(b.scopes) - 1
	b.nextSlot = b.scopes[last].savedNextSlot
	b.scopes = b.scopes[:last]
}

// declareLocal claims slots consecutive slots for name in the current
// scope. Plain int locals pass slots=1; struct locals pass one slot
// per field.
func (b *Builder) declareLocal(name, structType string, slots uint32) (uint32, error) {
	cur := b.scopes[len(b.scopes)-1].locals
	if _, ok := cur[name]; ok {
		return 0, fmt.Errorf("variable already declared in this scope: %s", name)
	}
	slot := b.nextSlot
	cur[name] = binding{slot: slot, structType: structType}
	b.nextSlot += slots
	if b.nextSlot > b.maxSlot {
		b.maxSlot = b.nextSlot
	}
	return slot, nil
}

func (b *Builder) setSymbol(slot uint32, name string) {
	fn := b.fn()
	for uint32(len(fn.Symbols)) <= slot {
		fn.Symbols = append(fn.Symbols, "")
	}
	fn.Symbols[slot] = name
}

// resolveLocal walks the scope stack innermost-first, so an inner
// declaration shadows an outer one of the same name.
func (b *Builder) resolveLocal(name string) (binding, error) {
	for i := len(b.scopes) - 1; i >= 0; i-- {
		if bind, ok := b.scopes[i].locals[name]; ok {
			return bind, nil
		}
	}
	return binding{}, fmt.Errorf("undefined variable: %s", name)
}

// resolveIntLocal is resolveLocal restricted to integer contexts: a
// struct variable has no single value to load or store.
func (b *Builder) resolveIntLocal(name string) (uint32, error) {
	bind, err := b.resolveLocal(name)
	if err != nil {
		return 0, err
	}
	if bind.structType != "" {
		return 0, fmt.Errorf("struct variable %s cannot be used as an integer", name)
	}
	return bind.slot, nil
}

func (b *Builder) resolveFunc(name string) (uint32, error) {
	id, ok := b.funcIDs[name]
	if !ok {
		return 0, fmt.Errorf("undefined function: %s", name)
	}
	return id, nil
}

func (b *Builder) resolveStruct(name string) ([]string, error) {
	fields, ok := b.structs[name]
	if !ok {
		return nil, fmt.Errorf("undefined struct: %s", name)
	}
	return fields, nil
}

func (b *Builder) buildStatements(sts []ast.Stmt) error {
	for _, st := range sts {
		if err := b.buildStatement(st); err != nil {
			return err
		}
	}
	return nil
}

func (b *Builder) buildStatement(st ast.Stmt) error {
	switch s := st.(type) {
	case *ast.IntDecl:
		slot, err := b.declareLocal(s.Name, "", 1)
		if err != nil {
			return err
		}
		b.setSymbol(slot, s.Name)
		b.emit(vm.PushI64(0))
		b.emit(vm.StoreLocal(slot))
		return nil

	case *ast.IntDeclAssign:
		slot, err := b.declareLocal(s.Name, "", 1)
		if err != nil {
			return err
		}
		b.setSymbol(slot, s.Name)
		if err := b.buildExpression(s.Value); err != nil {
			return err
		}
		b.emit(vm.StoreLocal(slot))
		return nil

	case *ast.IntAssign:
		slot, err := b.resolveIntLocal(s.Name)
		if err != nil {
			return err
		}
		if err := b.buildExpression(s.Value); err != nil {
			return err
		}
		b.emit(vm.StoreLocal(slot))
		return nil

	case *ast.Print:
		if err := b.buildExpression(s.Value); err != nil {
			return err
		}
		b.emit(vm.Print())
		b.emit(vm.Pop())
		return nil

	case *ast.PrintString:
		b.emit(vm.PrintString(s.Content))
		return nil

	case *ast.Return:
		if err := b.buildExpression(s.Value); err != nil {
			return err
		}
		b.emit(vm.Return())
		return nil

	case *ast.Scope:
		b.beginScope()
		err := b.buildStatements(s.Body)
		b.endScope()
		return err

	case *ast.If:
		return b.buildIf(s)

	case *ast.While:
		return b.buildWhile(s)

	case *ast.StructDeclAssign:
		fields, err := b.resolveStruct(s.Type)
		if err != nil {
			return err
		}
		if len(s.Values) != len(fields) {
			return fmt.Errorf("struct %s has %d fields but initializer has %d values",
				s.Type, len(fields), len(s.Values))
		}
		base, err := b.declareStructLocal(s.Name, s.Type, fields)
		if err != nil {
			return err
		}
		return b.storeStructFields(base, s.Values)

	case *ast.StructDecl:
		fields, err := b.resolveStruct(s.Type)
		if err != nil {
			return err
		}
		base, err := b.declareStructLocal(s.Name, s.Type, fields)
		if err != nil {
			return err
		}
		for i := range fields {
			b.emit(vm.PushI64(0))
			b.emit(vm.StoreLocal(base + uint32(i)))
		}
		return nil

	case *ast.StructAssign:
		bind, err := b.resolveLocal(s.Name)
		if err != nil {
			return err
		}
		if bind.structType == "" {
			return fmt.Errorf("cannot assign a struct literal to integer variable %s", s.Name)
		}
		fields := b.structs[bind.structType]
		if len(s.Values) != len(fields) {
			return fmt.Errorf("struct %s has %d fields but initializer has %d values",
				bind.structType, len(fields), len(s.Values))
		}
		return b.storeStructFields(bind.slot, s.Values)

	case *ast.Function:
		return fmt.Errorf("nested functions are not supported")

	case *ast.StructDef:
		return fmt.Errorf("structs must be declared at top level, not inside a function body")

	default:
		return fmt.Errorf("cannot compile statement %T", st)
	}
}

// declareStructLocal reserves one contiguous slot per field and binds
// name to the base slot.
func (b *Builder) declareStructLocal(name, structType string, fields []string) (uint32, error) {
	base, err := b.declareLocal(name, structType, uint32(len(fields)))
	if err != nil {
		return 0, err
	}
	for i, f := range fields {
		b.setSymbol(base+uint32(i), name+"."+f)
	}
	return base, nil
}

func (b *Builder) storeStructFields(base uint32, values []ast.Expr) error {
	for i, v := range values {
		if err := b.buildExpression(v); err != nil {
			return err
		}
		b.emit(vm.StoreLocal(base + uint32(i)))
	}
	return nil
}

func (b *Builder) buildIf(s *ast.If) error {
	if err := b.buildExpression(s.Cond); err != nil {
		return err
	}
	jf := b.emit(vm.JmpFalse(vm.InvalidTarget)) // pops cond

	b.beginScope()
	err := b.buildStatements(s.Then)
	b.endScope()
	if err != nil {
		return err
	}

	if len(s.Else) == 0 {
		return b.patchJump(jf, b.ip())
	}

	jend := b.emit(vm.Jmp(vm.InvalidTarget))
	if err := b.patchJump(jf, b.ip()); err != nil {
		return err
	}

	b.beginScope()
	err = b.buildStatements(s.Else)
	b.endScope()
	if err != nil {
		return err
	}
	return b.patchJump(jend, b.ip())
}

func (b *Builder) buildWhile(s *ast.While) error {
	start := b.ip()
	if err := b.buildExpression(s.Cond); err != nil {
		return err
	}
	jf := b.emit(vm.JmpFalse(vm.InvalidTarget)) // pops cond

	b.beginScope()
	err := b.buildStatements(s.Body)
	b.endScope()
	if err != nil {
		return err
	}

	b.emit(vm.Jmp(start))
	return b.patchJump(jf, b.ip())
}

func (b *Builder) buildExpression(e ast.Expr) error {
	switch x := e.(type) {
	case *ast.IntLit:
		b.emit(vm.PushI64(x.Value))
		return nil

	case *ast.Ident:
		slot, err := b.resolveIntLocal(x.Name)
		if err != nil {
			return err
		}
		b.emit(vm.LoadLocal(slot))
		return nil

	case *ast.Unary:
		if err := b.buildExpression(x.Operand); err != nil {
			return err
		}
		switch x.Op {
		case ast.UnaryNeg:
			b.emit(vm.Neg())
		case ast.UnaryNot:
			b.emit(vm.Not())
		}
		return nil

	case *ast.Binary:
		return b.buildBinary(x)

	case *ast.Call:
		id, ok := x.Callee.(*ast.Ident)
		if !ok {
			return fmt.Errorf("call target must be an identifier")
		}
		for _, arg := range x.Args {
			if err := b.buildExpression(arg); err != nil {
				return err
			}
		}
		fid, err := b.resolveFunc(id.Name)
		if err != nil {
			return err
		}
		if len(x.Args) == 0 {
			b.emit(vm.Call(fid))
		} else {
			b.emit(vm.CallArgs(fid, uint32(len(x.Args))))
		}
		return nil

	case *ast.FieldAccess:
		return b.buildFieldAccess(x)

	default:
		return fmt.Errorf("cannot compile expression %T", e)
	}
}

// buildBinary lowers && and || to short-circuit jumps; everything else
// is post-order evaluation followed by one stack operation. The right
// operand of a logical operator passes through a double NOT so any
// nonzero value normalizes to exactly 1, which is observable via print.
func (b *Builder) buildBinary(x *ast.Binary) error {
	switch x.Op {
	case ast.BinAnd:
		if err := b.buildExpression(x.Left); err != nil {
			return err
		}
		jumpFalse := b.emit(vm.JmpFalse(vm.InvalidTarget))

		if err := b.buildExpression(x.Right); err != nil {
			return err
		}
		b.emit(vm.Not())
		b.emit(vm.Not())
		jend := b.emit(vm.Jmp(vm.InvalidTarget))

		if err := b.patchJump(jumpFalse, b.ip()); err != nil {
			return err
		}
		b.emit(vm.PushI64(0))
		return b.patchJump(jend, b.ip())

	case ast.BinOr:
		if err := b.buildExpression(x.Left); err != nil {
			return err
		}
		jumpTrue := b.emit(vm.JmpTrue(vm.InvalidTarget))

		if err := b.buildExpression(x.Right); err != nil {
			return err
		}
		b.emit(vm.Not())
		b.emit(vm.Not())
		jend := b.emit(vm.Jmp(vm.InvalidTarget))

		if err := b.patchJump(jumpTrue, b.ip()); err != nil {
			return err
		}
		b.emit(vm.PushI64(1))
		return b.patchJump(jend, b.ip())
	}

	if err := b.buildExpression(x.Left); err != nil {
		return err
	}
	if err := b.buildExpression(x.Right); err != nil {
		return err
	}

	switch x.Op {
	case ast.BinAdd:
		b.emit(vm.Add())
	case ast.BinSub:
		b.emit(vm.Sub())
	case ast.BinMul:
		b.emit(vm.Mul())
	case ast.BinDiv:
		b.emit(vm.Div())
	case ast.BinMod:
		b.emit(vm.Mod())
	case ast.BinEq:
		b.emit(vm.Eq())
	case ast.BinNeq:
		b.emit(vm.Neq())
	case ast.BinLt:
		b.emit(vm.Lt())
	case ast.BinLe:
		b.emit(vm.Le())
	case ast.BinGt:
		b.emit(vm.Gt())
	case ast.BinGe:
		b.emit(vm.Ge())
	default:
		return fmt.Errorf("cannot compile binary operator %s", x.Op)
	}
	return nil
}

// Struct fields are ints, so the base of a field access must be a
// struct-typed variable directly; chained access has nothing to chain
// into.
func (b *Builder) buildFieldAccess(x *ast.FieldAccess) error {
	id, ok := x.Base.(*ast.Ident)
	if !ok {
		return fmt.Errorf("field access on a non-struct value")
	}
	bind, err := b.resolveLocal(id.Name)
	if err != nil {
		return err
	}
	if bind.structType == "" {
		return fmt.Errorf("variable %s is not a struct", id.Name)
	}
	fields := b.structs[bind.structType]
	for i, f := range fields {
		if f == x.Field {
			b.emit(vm.LoadLocal(bind.slot + uint32(i)))
			return nil
		}
	}
	return fmt.Errorf("struct %s has no field %s", bind.structType, x.Field)
}
