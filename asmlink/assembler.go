package asmlink

import (
	"fmt"
	"strings"

	"regvm/cpu"
)

func stripComment(line string) string {
	if i := strings.Index(line, "//"); i >= 0 {
		line = line[:i]
	}
	return strings.TrimSpace(line)
}

func isLabelLine(line string) bool {
	return strings.HasSuffix(line, ":") && !strings.ContainsAny(line, " \t")
}

func labelName(line string) string {
	return strings.TrimSuffix(line, ":")
}

func isDataLine(line string) bool {
	return strings.HasPrefix(line, ".")
}

func isInstructionLine(line string) bool {
	return line != "" && !isLabelLine(line) && !isDataLine(line)
}

// Assemble runs the full two-pass assembler/linker over one or more
// translation units, producing a loadable Executable.
func Assemble(units []string) (*Executable, error) {
	lines := concatenateWithLineLabels(units)

	dataWords, dataSymbols, err := extractData(lines)
	if err != nil {
		return nil, err
	}

	codeSymbols, err := extractSymbols(lines)
	if err != nil {
		return nil, err
	}

	code, err := parseAndPatch(lines, codeSymbols, dataSymbols)
	if err != nil {
		return nil, err
	}

	return &Executable{
		Code:        code,
		Data:        dataWords,
		CodeSymbols: codeSymbols,
		DataSymbols: dataSymbols,
	}, nil
}

// concatenateWithLineLabels joins every unit's lines in order, inserting a
// synthetic "_LINE_<n>:" label immediately before each original source line
// so the debugger can resolve "break <line>" against the linked image.
func concatenateWithLineLabels(units []string) []string {
	joined := make([]string, 0)
	n := 0
	for _, unit := range units {
		for _, raw := range strings.Split(unit, "\n") {
			joined = append(joined, fmt.Sprintf("_LINE_%d:", n))
			joined = append(joined, stripComment(raw))
			n++
		}
	}
	return joined
}

// extractData performs pass 1: for every ".stringz LABEL text" line, append
// zero-terminated char codes to a global data vector and record the label's
// offset. Duplicate data labels are fatal.
func extractData(lines []string) ([]int32, map[string]uint32, error) {
	data := make([]int32, 0)
	symbols := make(map[string]uint32)

	for _, line := range lines {
		if !isDataLine(line) {
			continue
		}

		fields := strings.Fields(line)
		if len(fields) < 2 || fields[0] != ".stringz" {
			return nil, nil, fmt.Errorf("%w: %q", ErrBadDataDirective, line)
		}
		label := fields[1]
		if _, exists := symbols[label]; exists {
			return nil, nil, &LinkError{Err: ErrDuplicateSymbol, Label: label}
		}

		rest := strings.TrimPrefix(line, fields[0])
		rest = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(rest), label))

		symbols[label] = uint32(len(data))
		for _, r := range rest {
			data = append(data, int32(r))
		}
		data = append(data, 0)
	}

	return data, symbols, nil
}

// extractSymbols performs pass 2: record each label's target instruction
// index. Duplicate code labels are fatal.
func extractSymbols(lines []string) (map[string]uint32, error) {
	symbols := make(map[string]uint32)
	var counter uint32

	for _, line := range lines {
		switch {
		case isLabelLine(line):
			name := labelName(line)
			if _, exists := symbols[name]; exists {
				return nil, &LinkError{Err: ErrDuplicateSymbol, Label: name}
			}
			symbols[name] = counter
		case isInstructionLine(line):
			counter++
		}
	}

	return symbols, nil
}

// parseAndPatch performs pass 5: re-walks the joined lines with a running
// instruction counter, resolving FLOW labels to relative offsets and LEA
// labels to absolute data addresses before parsing each instruction.
func parseAndPatch(lines []string, codeSymbols, dataSymbols map[string]uint32) ([]cpu.Instruction, error) {
	code := make([]cpu.Instruction, 0)
	var counter uint32

	for _, line := range lines {
		if !isInstructionLine(line) {
			continue
		}

		fields := strings.Fields(line)
		mnem := fields[0]

		resolved := line
		switch {
		case isFlowMnemonic(mnem):
			if len(fields) != 2 {
				return nil, &cpu.ParseError{Line: line, Reason: "expected a single label operand"}
			}
			label := fields[1]
			target, ok := codeSymbols[label]
			if !ok {
				return nil, &LinkError{Err: ErrUnresolvedSymbol, Label: label}
			}
			offset := int64(target) - int64(counter)
			resolved = fmt.Sprintf("%s %d", mnem, offset)

		case mnem == "LEA":
			if len(fields) != 3 {
				return nil, &cpu.ParseError{Line: line, Reason: "expected a register and a data label"}
			}
			label := fields[2]
			offset, ok := dataSymbols[label]
			if !ok {
				return nil, &LinkError{Err: ErrUnresolvedSymbol, Label: label}
			}
			addr := offset + cpu.DataInitAddress
			resolved = fmt.Sprintf("LEA %s %d", fields[1], addr)
		}

		instr, err := cpu.ParseInstruction(resolved)
		if err != nil {
			return nil, err
		}
		code = append(code, instr)
		counter++
	}

	return code, nil
}

func isFlowMnemonic(mnem string) bool {
	switch mnem {
	case "JUMP", "TJMP", "FJMP", "CALL":
		return true
	default:
		return false
	}
}
