package asmlink

import (
	"testing"

	"regvm/cpu"
)

func assert(t *testing.T, cond bool, format string, args ...any) {
	t.Helper()
	if !cond {
		t.Fatalf(format, args...)
	}
}

func TestSymbolTableOffsets(t *testing.T) {
	// Three labels L1,L2,L3 placed at code indices 0,4,2; a JUMP L2 at
	// index 1 must yield Flow{JUMP, offset=3}.
	source := `
L1:
MOV R1 1
JUMP L2
L3:
MOV R1 3
MOV R1 4
L2:
MOV R1 2
HALT
`
	exe, err := Assemble([]string{source})
	assert(t, err == nil, "unexpected assemble error: %v", err)
	assert(t, exe.CodeSymbols["L1"] == 0, "expected L1==0, got %d", exe.CodeSymbols["L1"])
	assert(t, exe.CodeSymbols["L3"] == 2, "expected L3==2, got %d", exe.CodeSymbols["L3"])
	assert(t, exe.CodeSymbols["L2"] == 4, "expected L2==4, got %d", exe.CodeSymbols["L2"])

	flow, ok := exe.Code[1].(cpu.Flow)
	assert(t, ok, "expected index 1 to be a Flow instruction, got %T", exe.Code[1])
	assert(t, flow.Offset == 3, "expected offset==3, got %d", flow.Offset)
}

func TestDataLinkingAndLEA(t *testing.T) {
	source := `
.stringz s1 hello
LEA R1 s1
HALT
`
	exe, err := Assemble([]string{source})
	assert(t, err == nil, "unexpected assemble error: %v", err)
	assert(t, exe.Data[0] == int32('h'), "expected data[0]=='h', got %d", exe.Data[0])
	assert(t, exe.Data[5] == 0, "expected data[5]==0 terminator, got %d", exe.Data[5])

	data, ok := exe.Code[0].(cpu.Data)
	assert(t, ok, "expected index 0 to be a Data instruction, got %T", exe.Code[0])
	assert(t, data.Op == cpu.LEA, "expected LEA op")
	assert(t, data.Src.Imm() == int32(cpu.DataInitAddress), "expected LEA imm==%d, got %d", cpu.DataInitAddress, data.Src.Imm())
}

func TestDuplicateCodeSymbolIsFatal(t *testing.T) {
	source := `
L1:
MOV R1 1
L1:
HALT
`
	_, err := Assemble([]string{source})
	assert(t, err != nil, "expected a duplicate-symbol error")
}

func TestMultiUnitLinking(t *testing.T) {
	unit1 := "JUMP start\n"
	unit2 := "start:\nMOV R1 1\nHALT\n"
	exe, err := Assemble([]string{unit1, unit2})
	assert(t, err == nil, "unexpected assemble error: %v", err)
	assert(t, len(exe.Code) == 3, "expected 3 instructions, got %d", len(exe.Code))
}
