package system

import (
	"bufio"
	"fmt"
	"io"

	"regvm/cpu"
)

// Console wires the CPU's memory-mapped I/O cells (COS/COD/CIS/CID) to a
// real input/output stream, following the synchronous, single-threaded
// read/write protocol described in SPEC_FULL.md §4.6 and §5.
type Console struct {
	out *bufio.Writer
	in  *bufio.Reader
}

func NewConsole(out io.Writer, in io.Reader) *Console {
	return &Console{out: bufio.NewWriter(out), in: bufio.NewReader(in)}
}

// Step performs one io_step: it is checked exactly once per CPU step, after
// the step completes. A non-nil error here is an IOError (stdin EOF while
// CIS=1).
func (con *Console) Step(c *cpu.Cpu) error {
	cos, err := c.Mem.ReadNumber(cpu.COS)
	if err != nil {
		return err
	}
	if cos != 0 {
		cod, err := c.Mem.ReadNumber(cpu.COD)
		if err != nil {
			return err
		}
		if _, err := fmt.Fprint(con.out, string(rune(cod))); err != nil {
			return err
		}
		con.out.Flush()
		c.Mem.WriteNumber(cpu.COS, 0)
	}

	cis, err := c.Mem.ReadNumber(cpu.CIS)
	if err != nil {
		return err
	}
	if cis != 0 {
		b, err := con.in.ReadByte()
		if err != nil {
			return fmt.Errorf("%w: %v", ErrIO, err)
		}
		c.Mem.WriteNumber(cpu.CID, int32(b))
		c.Mem.WriteNumber(cpu.CIS, 0)
	}

	return nil
}
