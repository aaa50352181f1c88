// Package asmlink implements the two-pass assembler/linker: it translates
// one or more textual assembly translation units into a loadable
// Executable, resolving relative jump offsets and data addresses.
package asmlink

import "regvm/cpu"

// Executable is the assembler/linker's output: a loadable image.
type Executable struct {
	Code        []cpu.Instruction
	Data        []int32
	CodeSymbols map[string]uint32 // label -> code index
	DataSymbols map[string]uint32 // label -> offset within Data
}
