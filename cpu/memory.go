package cpu

import "fmt"

// Layout constants. See DESIGN.md for provenance.
const (
	ProgramInitAddress uint32 = 1000
	DataInitAddress    uint32 = 500
	InitSPAddress      uint32 = 9999

	COS uint32 = 200 // char-out status
	COD uint32 = 201 // char-out data
	CIS uint32 = 202 // char-in status
	CID uint32 = 203 // char-in data
)

// Cell is a tagged-union memory cell: it holds either a number or a decoded
// instruction, never both at once. Reading a cell as the wrong kind is fatal.
type Cell struct {
	set   bool
	instr bool
	num   int32
	instn Instruction
}

// NumberCell builds a cell holding a plain numeric word.
func NumberCell(v int32) Cell {
	return Cell{set: true, num: v}
}

// InstructionCell builds a cell holding a decoded instruction.
func InstructionCell(i Instruction) Cell {
	return Cell{set: true, instr: true, instn: i}
}

// Memory is a sparse address space of 32-bit words indexed by unsigned
// 32-bit address.
type Memory struct {
	cells map[uint32]Cell
}

func NewMemory() *Memory {
	return &Memory{cells: make(map[uint32]Cell)}
}

// ReadNumber returns the numeric value stored at addr, failing if the cell
// is unset or holds an instruction.
func (m *Memory) ReadNumber(addr uint32) (int32, error) {
	c, ok := m.cells[addr]
	if !ok {
		return 0, fmt.Errorf("%w: address %d", ErrSegmentationFault, addr)
	}
	if c.instr {
		return 0, fmt.Errorf("%w: address %d", ErrNotANumber, addr)
	}
	return c.num, nil
}

// ReadInstruction returns the instruction stored at addr, failing if the
// cell is unset or holds a number.
func (m *Memory) ReadInstruction(addr uint32) (Instruction, error) {
	c, ok := m.cells[addr]
	if !ok {
		return nil, fmt.Errorf("%w: address %d", ErrSegmentationFault, addr)
	}
	if !c.instr {
		return nil, fmt.Errorf("%w: address %d", ErrNotAnInstruction, addr)
	}
	return c.instn, nil
}

// WriteNumber stores a numeric word at addr, overwriting whatever was there.
func (m *Memory) WriteNumber(addr uint32, v int32) {
	m.cells[addr] = NumberCell(v)
}

// WriteInstruction stores a decoded instruction at addr.
func (m *Memory) WriteInstruction(addr uint32, instr Instruction) {
	m.cells[addr] = InstructionCell(instr)
}
