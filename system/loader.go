// Package system implements the OS/loader/debugger layer: memory layout
// bootstrap, the blocking console I/O step, the run loop, and the
// interactive single-step debugger.
package system

import (
	"regvm/asmlink"
	"regvm/cpu"
)

// NewCpu initializes a fresh Cpu per SPEC_FULL.md §4.6: a HALT sentinel at
// address 0, zeroed I/O cells, the bootstrap stack frame, and IR pointed at
// the program entry.
func NewCpu() *cpu.Cpu {
	mem := cpu.NewMemory()
	c := cpu.NewCpu(mem)

	mem.WriteInstruction(0, cpu.Other{Op: cpu.HALT})
	mem.WriteNumber(cpu.COS, 0)
	mem.WriteNumber(cpu.COD, 0)
	mem.WriteNumber(cpu.CIS, 0)
	mem.WriteNumber(cpu.CID, 0)

	sp := int32(cpu.InitSPAddress) - 3
	bp := int32(cpu.InitSPAddress) - 2
	c.Regs.Set(cpu.SP, sp)
	c.Regs.Set(cpu.BP, bp)

	// Bootstrap stack frame: a self-referential BP and an all-zero return
	// address. main's RET sets IR to -1, the step's IR+=1 brings it to
	// address 0, and the HALT there ends the run loop. See SPEC_FULL.md §12.
	mem.WriteNumber(uint32(int32(cpu.InitSPAddress)-1), 0)
	mem.WriteNumber(uint32(int32(cpu.InitSPAddress)-2), int32(cpu.InitSPAddress)-2)
	mem.WriteNumber(uint32(cpu.InitSPAddress), -1)

	c.Regs.Set(cpu.IR, int32(cpu.ProgramInitAddress))

	return c
}

// Load writes an Executable's code and data into memory at the fixed
// program/data segment base addresses.
func Load(c *cpu.Cpu, exe *asmlink.Executable) {
	for i, instr := range exe.Code {
		c.Mem.WriteInstruction(cpu.ProgramInitAddress+uint32(i), instr)
	}
	for i, word := range exe.Data {
		c.Mem.WriteNumber(cpu.DataInitAddress+uint32(i), word)
	}
}
