package compiler

import "strings"

// Compile lowers a JSON AST document (as produced by the external AST
// producer, §6) into assembly text honoring the calling convention and
// stack-frame layout the assembler/linker and CPU expect. The result is
// one compilation unit, ready to be passed alongside any other units
// (including the standard-library runtime unit) to asmlink.Assemble.
func Compile(astJSON []byte) (string, error) {
	root, err := ParseRoot(astJSON)
	if err != nil {
		return "", err
	}

	u := newUnit()

	// Structs first: function/variable registration below needs
	// sizeof() for any struct-typed signature or local.
	for _, ext := range root.Externals {
		if sd, ok := ext.(*StructDecl); ok {
			if err := u.Structs.registerStruct(sd); err != nil {
				return "", err
			}
		}
	}

	for _, ext := range root.Externals {
		switch e := ext.(type) {
		case *FuncDecl:
			if err := u.registerFuncDecl(e); err != nil {
				return "", err
			}
		case *FuncDef:
			if err := u.registerFuncDef(e); err != nil {
				return "", err
			}
		}
	}

	em := newEmitter(u)
	em.emit("JUMP main")
	for _, ext := range root.Externals {
		if fd, ok := ext.(*FuncDef); ok {
			if err := em.emitFuncDef(fd); err != nil {
				return "", err
			}
		}
	}

	return strings.Join(em.lines, "\n"), nil
}
