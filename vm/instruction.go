package vm

import "fmt"

// Opcode is the single byte that identifies an instruction in bytecode
type Opcode byte

const (
	OpStop   Opcode = 0x00
	OpAdd    Opcode = 0x01
	OpMul    Opcode = 0x02
	OpSub    Opcode = 0x03
	OpDiv    Opcode = 0x04
	OpMod    Opcode = 0x06
	OpExp    Opcode = 0x0a
	OpPop    Opcode = 0x50
	OpPush32 Opcode = 0x7f
	OpReturn Opcode = 0xf3
)

// Opcodes lists every recognized opcode in ascending byte order
var Opcodes = []Opcode{
	OpStop,
	OpAdd,
	OpMul,
	OpSub,
	OpDiv,
	OpMod,
	OpExp,
	OpPop,
	OpPush32,
	OpReturn,
}

var opcodeNames = map[Opcode]string{
	OpStop:   "STOP",
	OpAdd:    "ADD",
	OpMul:    "MUL",
	OpSub:    "SUB",
	OpDiv:    "DIV",
	OpMod:    "MOD",
	OpExp:    "EXP",
	OpPop:    "POP",
	OpPush32: "PUSH32",
	OpReturn: "RETURN",
}

func (op Opcode) String() string {
	name, ok := opcodeNames[op]
	if !ok {
		return fmt.Sprintf("opcode 0x%02x not defined", byte(op))
	}
	return name
}

// Valid reports whether op is part of the instruction set
func (op Opcode) Valid() bool {
	_, ok := opcodeNames[op]
	return ok
}

// Width is the encoded size of the instruction in bytes, opcode included.
// Unknown opcodes have width 0.
func (op Opcode) Width() int {
	switch {
	case op == OpPush32:
		return 1 + push32OperandLen
	case op.Valid():
		return 1
	default:
		return 0
	}
}

// OpcodeFromName looks up an opcode by its mnemonic, e.g. "ADD"
func OpcodeFromName(name string) (Opcode, bool) {
	for op, n := range opcodeNames {
		if n == name {
			return op, true
		}
	}
	return 0, false
}

// Instruction is one decoded operation. The set of implementations is
// closed: only the types in this file satisfy it.
type Instruction interface {
	Opcode() Opcode
	fmt.Stringer

	instruction()
}

type (
	Stop   struct{}
	Add    struct{}
	Mul    struct{}
	Sub    struct{}
	Div    struct{}
	Mod    struct{}
	Exp    struct{}
	Pop    struct{}
	Return struct{}

	// Push32 carries the immediate operand that follows the opcode
	Push32 struct {
		Value uint32
	}
)

func (Stop) Opcode() Opcode   { return OpStop }
func (Add) Opcode() Opcode    { return OpAdd }
func (Mul) Opcode() Opcode    { return OpMul }
func (Sub) Opcode() Opcode    { return OpSub }
func (Div) Opcode() Opcode    { return OpDiv }
func (Mod) Opcode() Opcode    { return OpMod }
func (Exp) Opcode() Opcode    { return OpExp }
func (Pop) Opcode() Opcode    { return OpPop }
func (Push32) Opcode() Opcode { return OpPush32 }
func (Return) Opcode() Opcode { return OpReturn }

func (i Stop) String() string   { return i.Opcode().String() }
func (i Add) String() string    { return i.Opcode().String() }
func (i Mul) String() string    { return i.Opcode().String() }
func (i Sub) String() string    { return i.Opcode().String() }
func (i Div) String() string    { return i.Opcode().String() }
func (i Mod) String() string    { return i.Opcode().String() }
func (i Exp) String() string    { return i.Opcode().String() }
func (i Pop) String() string    { return i.Opcode().String() }
func (i Return) String() string { return i.Opcode().String() }
func (i Push32) String() string {
	return fmt.Sprintf("%s 0x%08x", i.Opcode(), i.Value)
}

func (Stop) instruction()   {}
func (Add) instruction()    {}
func (Mul) instruction()    {}
func (Sub) instruction()    {}
func (Div) instruction()    {}
func (Mod) instruction()    {}
func (Exp) instruction()    {}
func (Pop) instruction()    {}
func (Push32) instruction() {}
func (Return) instruction() {}

// fixed maps the single byte opcodes to their instruction. Push32 is
// absent because it needs its operand.
var fixed = map[Opcode]Instruction{
	OpStop:   Stop{},
	OpAdd:    Add{},
	OpMul:    Mul{},
	OpSub:    Sub{},
	OpDiv:    Div{},
	OpMod:    Mod{},
	OpExp:    Exp{},
	OpPop:    Pop{},
	OpReturn: Return{},
}

// example
// 3 + 4 = 7
// 7f 00000003	push 3
// 7f 00000004	push 4
// 01		add
// f3		return
