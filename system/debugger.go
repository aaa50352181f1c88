package system

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"regvm/cpu"
)

// Debugger drives the interactive single-step debugger REPL described in
// SPEC_FULL.md §4.6, grounded on the teacher's RunProgramDebugMode
// (bufio-driven REPL, breakpoint set, recover-based fatal printing) and
// on the original source's debug_program (break-by-synthetic-label
// resolution via "_LINE_<n>").
type Debugger struct {
	cpu         *cpu.Cpu
	con         *Console
	codeSymbols map[string]uint32
	breakpoints map[uint32]struct{}

	in  *bufio.Reader
	out io.Writer
}

func NewDebugger(c *cpu.Cpu, con *Console, codeSymbols map[string]uint32, in io.Reader, out io.Writer) *Debugger {
	return &Debugger{
		cpu:         c,
		con:         con,
		codeSymbols: codeSymbols,
		breakpoints: make(map[uint32]struct{}),
		in:          bufio.NewReader(in),
		out:         out,
	}
}

// Run drives the debugger to completion, returning the program's exit code.
func (d *Debugger) Run() (exitCode int32, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("runtime error: %v", r)
		}
	}()

	paused := true
	for {
		codeIndex := uint32(d.cpu.Regs.Get(cpu.IR)) - cpu.ProgramInitAddress
		if _, ok := d.breakpoints[codeIndex]; ok {
			paused = true
		}

		if paused {
			if err := d.printNextInstruction(); err != nil {
				return 0, err
			}
			action, err := d.promptAndHandle()
			if err != nil {
				return 0, err
			}
			switch action {
			case actionContinue:
				paused = false
			case actionStep:
				paused = true
			}
		}

		halted, stepErr := d.cpu.Step()
		if stepErr != nil {
			return 0, stepErr
		}
		if halted {
			break
		}
		if ioErr := d.con.Step(d.cpu); ioErr != nil {
			return 0, ioErr
		}
	}

	bp := d.cpu.Regs.Get(cpu.BP)
	return d.cpu.Mem.ReadNumber(uint32(bp + 2))
}

func (d *Debugger) printNextInstruction() error {
	instr, err := d.cpu.Mem.ReadInstruction(uint32(d.cpu.Regs.Get(cpu.IR)))
	if err != nil {
		return err
	}
	fmt.Fprintf(d.out, "next: %s\n", instr)
	return nil
}

type debugAction int

const (
	actionPrompt debugAction = iota
	actionContinue
	actionStep
)

// promptAndHandle reads and processes debugger commands until one of
// "continue" or "step" authorizes executing the pending instruction.
func (d *Debugger) promptAndHandle() (debugAction, error) {
	for {
		fmt.Fprint(d.out, "-> ")
		line, readErr := d.in.ReadString('\n')
		line = strings.TrimSpace(line)
		if readErr != nil && line == "" {
			return actionPrompt, fmt.Errorf("%w: %v", ErrIO, readErr)
		}

		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}

		switch fields[0] {
		case "continue":
			return actionContinue, nil
		case "step":
			return actionStep, nil
		case "reg":
			if len(fields) != 2 {
				fmt.Fprintln(d.out, "usage: reg <NAME>")
				continue
			}
			reg, ok := cpu.ParseReg(strings.ToUpper(fields[1]))
			if !ok {
				fmt.Fprintf(d.out, "unknown register %q\n", fields[1])
				continue
			}
			fmt.Fprintf(d.out, "%s = %d\n", reg, d.cpu.Regs.Get(reg))
		case "break":
			if len(fields) != 2 {
				fmt.Fprintln(d.out, "usage: break <line>")
				continue
			}
			lineNum, parseErr := strconv.Atoi(fields[1])
			if parseErr != nil {
				fmt.Fprintf(d.out, "bad line number: %v\n", parseErr)
				continue
			}
			label := fmt.Sprintf("_LINE_%d", lineNum)
			codeIndex, ok := d.codeSymbols[label]
			if !ok {
				fmt.Fprintf(d.out, "no such line: %d\n", lineNum)
				continue
			}
			d.breakpoints[codeIndex] = struct{}{}
		default:
			fmt.Fprintf(d.out, "unknown command %q\n", fields[0])
		}
	}
}
