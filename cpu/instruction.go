package cpu

import (
	"fmt"
	"strings"
)

// Instruction is the tagged union of the seven instruction shapes. Each
// concrete type below implements it; add a variant in one place (a new
// type plus its entry in the mnemonic tables) to extend the set.
type Instruction interface {
	isInstruction()
	String() string
}

type UnaryArithOp int

const (
	NEG UnaryArithOp = iota
)

var unaryArithNames = map[UnaryArithOp]string{NEG: "NEG"}
var unaryArithByName map[string]UnaryArithOp

type BinArithOp int

const (
	ADD BinArithOp = iota
	SUB
	MUL
	DIV
	MOD
	AND
	OR
	SHL
	SHR
	XOR
)

var binArithNames = map[BinArithOp]string{
	ADD: "ADD", SUB: "SUB", MUL: "MUL", DIV: "DIV", MOD: "MOD",
	AND: "AND", OR: "OR", SHL: "SHL", SHR: "SHR", XOR: "XOR",
}
var binArithByName map[string]BinArithOp

type DataOp int

const (
	LOAD DataOp = iota
	STR
	MOV
	LEA
)

var dataOpNames = map[DataOp]string{LOAD: "LOAD", STR: "STR", MOV: "MOV", LEA: "LEA"}
var dataOpByName map[string]DataOp

type StackOp int

const (
	PUSH StackOp = iota
	POP
)

var stackOpNames = map[StackOp]string{PUSH: "PUSH", POP: "POP"}
var stackOpByName map[string]StackOp

type TestOp int

const (
	TSTE TestOp = iota
	TSTN
	TSTG
	TSTL
)

var testOpNames = map[TestOp]string{TSTE: "TSTE", TSTN: "TSTN", TSTG: "TSTG", TSTL: "TSTL"}
var testOpByName map[string]TestOp

type FlowOp int

const (
	JUMP FlowOp = iota
	TJMP
	FJMP
	CALL
)

var flowOpNames = map[FlowOp]string{JUMP: "JUMP", TJMP: "TJMP", FJMP: "FJMP", CALL: "CALL"}
var flowOpByName map[string]FlowOp

type OtherOp int

const (
	HALT OtherOp = iota
	RET
)

var otherOpNames = map[OtherOp]string{HALT: "HALT", RET: "RET"}
var otherOpByName map[string]OtherOp

func init() {
	unaryArithByName = reverse(unaryArithNames)
	binArithByName = reverse(binArithNames)
	dataOpByName = reverse(dataOpNames)
	stackOpByName = reverse(stackOpNames)
	testOpByName = reverse(testOpNames)
	flowOpByName = reverse(flowOpNames)
	otherOpByName = reverse(otherOpNames)
}

func reverse[K comparable](m map[K]string) map[string]K {
	out := make(map[string]K, len(m))
	for k, v := range m {
		out[v] = k
	}
	return out
}

// UnaryArith is {op ∈ {NEG}, arg:Reg}; the result overwrites Arg.
type UnaryArith struct {
	Op  UnaryArithOp
	Arg Reg
}

func (UnaryArith) isInstruction() {}
func (i UnaryArith) String() string {
	return fmt.Sprintf("%s %s", unaryArithNames[i.Op], i.Arg)
}

// BinArith is {op, dst:Reg, a:Reg, b:Reg|Imm}.
type BinArith struct {
	Op  BinArithOp
	Dst Reg
	A   Reg
	B   Operand
}

func (BinArith) isInstruction() {}
func (i BinArith) String() string {
	return fmt.Sprintf("%s %s %s %s", binArithNames[i.Op], i.Dst, i.A, i.B)
}

// Data is {op ∈ {LOAD,STR,MOV,LEA}, dst:Reg, src:Reg|Imm}.
type Data struct {
	Op  DataOp
	Dst Reg
	Src Operand
}

func (Data) isInstruction() {}
func (i Data) String() string {
	return fmt.Sprintf("%s %s %s", dataOpNames[i.Op], i.Dst, i.Src)
}

// Stack is {op ∈ {PUSH,POP}, reg:Reg}.
type Stack struct {
	Op  StackOp
	Reg Reg
}

func (Stack) isInstruction() {}
func (i Stack) String() string {
	return fmt.Sprintf("%s %s", stackOpNames[i.Op], i.Reg)
}

// Test is {op ∈ {TSTE,TSTN,TSTG,TSTL}, a:Reg, b:Reg|Imm}.
type Test struct {
	Op TestOp
	A  Reg
	B  Operand
}

func (Test) isInstruction() {}
func (i Test) String() string {
	return fmt.Sprintf("%s %s %s", testOpNames[i.Op], i.A, i.B)
}

// Flow is {op ∈ {JUMP,TJMP,FJMP,CALL}, offset:i32}. Offset is relative and
// only meaningful after assembler/linker patching; before patching it holds
// a label name, represented at the textual layer (see asmlink), not here.
type Flow struct {
	Op     FlowOp
	Offset int32
}

func (Flow) isInstruction() {}
func (i Flow) String() string {
	return fmt.Sprintf("%s %d", flowOpNames[i.Op], i.Offset)
}

// Other is {op ∈ {HALT,RET}}.
type Other struct {
	Op OtherOp
}

func (Other) isInstruction() {}
func (i Other) String() string {
	return otherOpNames[i.Op]
}

// ParseInstruction decodes one already-resolved instruction line (labels
// and LEA data references must already have been replaced by the
// assembler/linker with numeric offsets/addresses before this is called).
func ParseInstruction(line string) (Instruction, error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return nil, &ParseError{Line: line, Reason: "empty instruction"}
	}
	mnem := fields[0]
	args := fields[1:]

	if op, ok := unaryArithByName[mnem]; ok {
		if len(args) != 1 {
			return nil, &ParseError{Line: line, Reason: "expected 1 operand"}
		}
		reg, ok := ParseReg(args[0])
		if !ok {
			return nil, &ParseError{Line: line, Reason: "expected a register"}
		}
		return UnaryArith{Op: op, Arg: reg}, nil
	}
	if op, ok := binArithByName[mnem]; ok {
		if len(args) != 3 {
			return nil, &ParseError{Line: line, Reason: "expected 3 operands"}
		}
		dst, ok := ParseReg(args[0])
		if !ok {
			return nil, &ParseError{Line: line, Reason: "expected a destination register"}
		}
		a, ok := ParseReg(args[1])
		if !ok {
			return nil, &ParseError{Line: line, Reason: "expected a register"}
		}
		b, err := ParseOperand(args[2])
		if err != nil {
			return nil, err
		}
		return BinArith{Op: op, Dst: dst, A: a, B: b}, nil
	}
	if op, ok := dataOpByName[mnem]; ok {
		if len(args) != 2 {
			return nil, &ParseError{Line: line, Reason: "expected 2 operands"}
		}
		dst, ok := ParseReg(args[0])
		if !ok {
			return nil, &ParseError{Line: line, Reason: "expected a destination register"}
		}
		src, err := ParseOperand(args[1])
		if err != nil {
			return nil, err
		}
		return Data{Op: op, Dst: dst, Src: src}, nil
	}
	if op, ok := stackOpByName[mnem]; ok {
		if len(args) != 1 {
			return nil, &ParseError{Line: line, Reason: "expected 1 operand"}
		}
		reg, ok := ParseReg(args[0])
		if !ok {
			return nil, &ParseError{Line: line, Reason: "expected a register"}
		}
		return Stack{Op: op, Reg: reg}, nil
	}
	if op, ok := testOpByName[mnem]; ok {
		if len(args) != 2 {
			return nil, &ParseError{Line: line, Reason: "expected 2 operands"}
		}
		a, ok := ParseReg(args[0])
		if !ok {
			return nil, &ParseError{Line: line, Reason: "expected a register"}
		}
		b, err := ParseOperand(args[1])
		if err != nil {
			return nil, err
		}
		return Test{Op: op, A: a, B: b}, nil
	}
	if op, ok := flowOpByName[mnem]; ok {
		if len(args) != 1 {
			return nil, &ParseError{Line: line, Reason: "expected 1 operand"}
		}
		// By the time this is reached the operand must already be a
		// resolved, signed relative offset literal.
		n, err := ParseOperand(args[0])
		if err != nil || n.IsReg() {
			return nil, &ParseError{Line: line, Reason: "expected a resolved numeric offset"}
		}
		return Flow{Op: op, Offset: n.Imm()}, nil
	}
	if op, ok := otherOpByName[mnem]; ok {
		if len(args) != 0 {
			return nil, &ParseError{Line: line, Reason: "expected 0 operands"}
		}
		return Other{Op: op}, nil
	}

	return nil, &ParseError{Line: line, Reason: fmt.Sprintf("unknown mnemonic %q", mnem)}
}
