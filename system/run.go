package system

import (
	"fmt"

	"regvm/cpu"
)

// Run drives the main run loop: step, then io_step, until HALT. It returns
// the program's exit code (mem[BP+2] at termination) and any fatal error.
func Run(c *cpu.Cpu, con *Console) (exitCode int32, err error) {
	defer func() {
		// A single top-level recover, matching the teacher's
		// getDefaultRecoverFuncForVM: converts an unexpected runtime
		// panic into the same fatal-diagnostic shape as a returned
		// error, rather than letting a raw Go stack trace reach stdout.
		if r := recover(); r != nil {
			err = fmt.Errorf("runtime error: %v", r)
		}
	}()

	for {
		halted, stepErr := c.Step()
		if stepErr != nil {
			return 0, stepErr
		}
		if halted {
			break
		}
		if ioErr := con.Step(c); ioErr != nil {
			return 0, ioErr
		}
	}

	bp := c.Regs.Get(cpu.BP)
	return c.Mem.ReadNumber(uint32(bp + 2))
}
