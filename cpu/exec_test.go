package cpu

import (
	"errors"
	"testing"
)

func assert(t *testing.T, cond bool, format string, args ...any) {
	t.Helper()
	if !cond {
		t.Fatalf(format, args...)
	}
}

// runProgram assembles instructions directly (bypassing asmlink, which has
// its own tests) and runs the CPU to completion starting at IR=0.
func runProgram(t *testing.T, instrs ...Instruction) *Cpu {
	t.Helper()
	mem := NewMemory()
	for i, in := range instrs {
		mem.WriteInstruction(uint32(i), in)
	}
	c := NewCpu(mem)
	for {
		halted, err := c.Step()
		assert(t, err == nil, "unexpected step error: %v", err)
		if halted {
			break
		}
	}
	return c
}

func TestArithImmediate(t *testing.T) {
	c := runProgram(t,
		Data{Op: MOV, Dst: R1, Src: ImmOperand(2)},
		BinArith{Op: ADD, Dst: R1, A: R1, B: ImmOperand(3)},
		Other{Op: HALT},
	)
	assert(t, c.Regs.Get(R1) == 5, "expected R1==5, got %d", c.Regs.Get(R1))
}

func TestMemoryRoundTrip(t *testing.T) {
	c := runProgram(t,
		Data{Op: MOV, Dst: R1, Src: ImmOperand(8000)},
		Data{Op: STR, Dst: R1, Src: ImmOperand(7)},
		Data{Op: LOAD, Dst: R2, Src: RegOperand(R1)},
		Other{Op: HALT},
	)
	v, err := c.Mem.ReadNumber(8000)
	assert(t, err == nil, "unexpected read error: %v", err)
	assert(t, v == 7, "expected mem[8000]==7, got %d", v)
	assert(t, c.Regs.Get(R2) == 7, "expected R2==7, got %d", c.Regs.Get(R2))
}

func TestConditionalJump(t *testing.T) {
	// MOV R1 3 / TSTE R1 3 / TJMP SKIP / MOV R1 4 / SKIP: HALT
	// SKIP resolves to index 4; TJMP is at index 2, so its offset is 4-2=2.
	c := runProgram(t,
		Data{Op: MOV, Dst: R1, Src: ImmOperand(3)},
		Test{Op: TSTE, A: R1, B: ImmOperand(3)},
		Flow{Op: TJMP, Offset: 2},
		Data{Op: MOV, Dst: R1, Src: ImmOperand(4)},
		Other{Op: HALT},
	)
	assert(t, c.Regs.Get(R1) == 3, "expected R1==3, got %d", c.Regs.Get(R1))
}

func TestDivisionByZero(t *testing.T) {
	mem := NewMemory()
	mem.WriteInstruction(0, Data{Op: MOV, Dst: R1, Src: ImmOperand(0)})
	mem.WriteInstruction(1, BinArith{Op: DIV, Dst: R1, A: R1, B: ImmOperand(0)})
	c := NewCpu(mem)
	_, err := c.Step()
	assert(t, err == nil, "unexpected error on first step: %v", err)
	_, err = c.Step()
	assert(t, errors.Is(err, ErrDivisionByZero), "expected division by zero, got %v", err)
}

func TestCallRetWithArgsAndRetval(t *testing.T) {
	// Manually assembled per the calling convention: a function that adds
	// its two arguments (arg1 at BP+3, arg2 at BP+4) and stores the sum
	// into the reserved return slot at BP+2, called as add(1,2).
	//
	// layout:
	//   0: MOV R1 2      ; push arg2=2
	//   1: PUSH R1
	//   2: MOV R1 1      ; push arg1=1
	//   3: PUSH R1
	//   4: PUSH ZR       ; reserve retval slot
	//   5: CALL +5 (-> 10)
	//   6: POP R2        ; pop retval into R2
	//   7: POP R3        ; pop arg1 slot (discarded)
	//   8: POP R3        ; pop arg2 slot (discarded)
	//   9: HALT
	//   10 (add):
	//   10: ADD R1 BP 3
	//   11: LOAD R1 R1
	//   12: ADD R2 BP 4
	//   13: LOAD R2 R2
	//   14: ADD R1 R1 R2
	//   15: ADD R2 BP 2
	//   16: STR R2 R1
	//   17: RET
	mem := NewMemory()
	mem.WriteInstruction(0, Data{Op: MOV, Dst: R1, Src: ImmOperand(2)})
	mem.WriteInstruction(1, Stack{Op: PUSH, Reg: R1})
	mem.WriteInstruction(2, Data{Op: MOV, Dst: R1, Src: ImmOperand(1)})
	mem.WriteInstruction(3, Stack{Op: PUSH, Reg: R1})
	mem.WriteInstruction(4, Stack{Op: PUSH, Reg: ZR})
	mem.WriteInstruction(5, Flow{Op: CALL, Offset: 5})
	mem.WriteInstruction(6, Stack{Op: POP, Reg: R2})
	mem.WriteInstruction(7, Stack{Op: POP, Reg: R3})
	mem.WriteInstruction(8, Stack{Op: POP, Reg: R3})
	mem.WriteInstruction(9, Other{Op: HALT})
	mem.WriteInstruction(10, BinArith{Op: ADD, Dst: R1, A: BP, B: ImmOperand(3)})
	mem.WriteInstruction(11, Data{Op: LOAD, Dst: R1, Src: RegOperand(R1)})
	mem.WriteInstruction(12, BinArith{Op: ADD, Dst: R2, A: BP, B: ImmOperand(4)})
	mem.WriteInstruction(13, Data{Op: LOAD, Dst: R2, Src: RegOperand(R2)})
	mem.WriteInstruction(14, BinArith{Op: ADD, Dst: R1, A: R1, B: RegOperand(R2)})
	mem.WriteInstruction(15, BinArith{Op: ADD, Dst: R2, A: BP, B: ImmOperand(2)})
	mem.WriteInstruction(16, Data{Op: STR, Dst: R2, Src: RegOperand(R1)})
	mem.WriteInstruction(17, Other{Op: RET})

	c := NewCpu(mem)
	c.Regs.Set(SP, 999)
	c.Regs.Set(BP, 999)
	for {
		halted, err := c.Step()
		assert(t, err == nil, "unexpected step error: %v", err)
		if halted {
			break
		}
	}
	assert(t, c.Regs.Get(R2) == 3, "expected R2==3, got %d", c.Regs.Get(R2))
	assert(t, c.Regs.Get(SP) == 999, "expected SP restored to 999, got %d", c.Regs.Get(SP))
	assert(t, c.Regs.Get(BP) == 999, "expected BP restored to 999, got %d", c.Regs.Get(BP))
}
