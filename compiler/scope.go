package compiler

import "regvm/cpu"

// GlobalScopeID is the root of every scope chain.
const GlobalScopeID = "_GLOBAL"

type VarKind int

const (
	KindLocalVar VarKind = iota
	KindArgVar
)

type VariableData struct {
	Kind   VarKind
	Type   Type
	Offset int
	Size   int
}

// Scope is scopes[scope_id] → {parent_scope, variables, declared,
// break_label?, continue_label?}. Scopes are created once during
// registration and mutated (break/continue labels) during emission;
// both phases share the same *Scope objects via Unit.Scopes.
type Scope struct {
	ID            string
	Parent        *Scope
	FuncName      string
	Variables     map[string]*VariableData
	Declared      map[string]bool
	BreakLabel    string
	ContinueLabel string
}

func newScope(id string, parent *Scope, funcName string) *Scope {
	return &Scope{
		ID:        id,
		Parent:    parent,
		FuncName:  funcName,
		Variables: make(map[string]*VariableData),
		Declared:  make(map[string]bool),
	}
}

func (s *Scope) declare(name string, v *VariableData) {
	s.Variables[name] = v
	s.Declared[name] = true
}

// markDeclared flips a pre-registered variable's declared bit. Offsets
// and sizes are computed during registration; the declared bit is set
// during emission, as statements are encountered linearly, so a
// reference before its declaration in source order still fails lookup.
func (s *Scope) markDeclared(name string) {
	s.Declared[name] = true
}

// lookup walks the scope chain toward _GLOBAL, returning the first
// declared hit (shadowing honored by proximity).
func (s *Scope) lookup(name string) (*VariableData, bool) {
	for cur := s; cur != nil; cur = cur.Parent {
		if cur.Declared[name] {
			return cur.Variables[name], true
		}
	}
	return nil, false
}

// enclosingLoop walks the scope chain for the nearest ancestor with a
// break/continue label registered.
func (s *Scope) enclosingLoop() (*Scope, bool) {
	for cur := s; cur != nil; cur = cur.Parent {
		if cur.BreakLabel != "" || cur.ContinueLabel != "" {
			return cur, true
		}
	}
	return nil, false
}

// FuncInfo is a registered function: its signature plus (for
// definitions) the scope holding its locals and local_vars_size.
type FuncInfo struct {
	Name          string
	ReturnType    Type
	ParamNames    []string
	ParamTypes    []Type
	RetSize       int
	LocalVarsSize int
	RegsUsed      []cpu.Reg
	Scope         *Scope
	HasBody       bool
}

// Unit is the compiler's single state object: struct/scope/function
// tables referenced by string id, owned by pointer. A Scope points only
// to its parent (Scope.Parent), never to its children, so the tables
// hold no reference cycle.
type Unit struct {
	Structs StructTable
	Scopes  map[string]*Scope
	Funcs   map[string]*FuncInfo
	Global  *Scope
}

func newUnit() *Unit {
	global := newScope(GlobalScopeID, nil, "")
	return &Unit{
		Structs: StructTable{},
		Scopes:  map[string]*Scope{GlobalScopeID: global},
		Funcs:   map[string]*FuncInfo{},
		Global:  global,
	}
}

func (u *Unit) childScope(codeLoc string, parent *Scope) *Scope {
	if existing, ok := u.Scopes[codeLoc]; ok {
		return existing
	}
	s := newScope(codeLoc, parent, parent.FuncName)
	u.Scopes[codeLoc] = s
	return s
}

// registerFuncDecl registers a prototype: signature only, no scope.
func (u *Unit) registerFuncDecl(fd *FuncDecl) error {
	if _, exists := u.Funcs[fd.Name]; exists {
		return nil
	}
	retSize, err := u.Structs.sizeOf(fd.ReturnType)
	if err != nil {
		return err
	}
	u.Funcs[fd.Name] = &FuncInfo{
		Name:       fd.Name,
		ReturnType: fd.ReturnType,
		ParamTypes: fd.ParamTypes,
		RetSize:    retSize,
		RegsUsed:   []cpu.Reg{cpu.R1, cpu.R2},
	}
	return nil
}

// registerFuncDef builds the function's scope (id = function name,
// parent = _GLOBAL), registers its arguments with ascending offsets,
// then walks its body threading a single running-offset counter
// across every nested scope so every local gets a unique frame slot.
func (u *Unit) registerFuncDef(fd *FuncDef) error {
	fnScope := newScope(fd.Name, u.Global, fd.Name)
	u.Scopes[fd.Name] = fnScope

	retSize, err := u.Structs.sizeOf(fd.ReturnType)
	if err != nil {
		return err
	}

	info := &FuncInfo{
		Name:       fd.Name,
		ReturnType: fd.ReturnType,
		ParamNames: fd.ParamNames,
		ParamTypes: fd.ParamTypes,
		RetSize:    retSize,
		RegsUsed:   []cpu.Reg{cpu.R1, cpu.R2},
		Scope:      fnScope,
		HasBody:    true,
	}

	argOffset := 0
	for i, pname := range fd.ParamNames {
		psize, err := u.Structs.sizeOf(fd.ParamTypes[i])
		if err != nil {
			return err
		}
		fnScope.declare(pname, &VariableData{Kind: KindArgVar, Type: fd.ParamTypes[i], Offset: argOffset, Size: psize})
		argOffset += psize
	}

	running := 0
	for _, item := range fd.Body.Items {
		if err := u.registerStatement(item, fnScope, &running); err != nil {
			return err
		}
	}
	info.LocalVarsSize = running

	u.Funcs[fd.Name] = info
	return nil
}

// registerDecl reserves a frame slot for a local at registration time.
// It does NOT mark the name declared — that happens during emission
// (see Scope.markDeclared) so a use before declaration in source order
// still fails scope-chain lookup even though the slot already exists.
func (u *Unit) registerDecl(d *DeclStmt, scope *Scope, running *int) error {
	size, err := u.Structs.sizeOf(d.Type)
	if err != nil {
		return err
	}
	offset := *running + size - 1
	*running += size
	scope.Variables[d.Name] = &VariableData{Kind: KindLocalVar, Type: d.Type, Offset: offset, Size: size}
	return nil
}

// registerStatement recurses through a function body, opening a
// fresh child scope (keyed by code_loc) for every Compound/If/While/
// DoWhile/For and adding a VariableData for every declaration found.
func (u *Unit) registerStatement(stmt Statement, scope *Scope, running *int) error {
	switch s := stmt.(type) {
	case *DeclStmt:
		return u.registerDecl(s, scope, running)

	case *DeclListStmt:
		for _, d := range s.Decls {
			if err := u.registerDecl(d, scope, running); err != nil {
				return err
			}
		}
		return nil

	case *CompoundStmt:
		child := u.childScope(s.CodeLoc, scope)
		for _, item := range s.Items {
			if err := u.registerStatement(item, child, running); err != nil {
				return err
			}
		}
		return nil

	case *IfStmt:
		child := u.childScope(s.CodeLoc, scope)
		if err := u.registerStatement(s.Then, child, running); err != nil {
			return err
		}
		if s.Else != nil {
			return u.registerStatement(s.Else, child, running)
		}
		return nil

	case *WhileStmt:
		child := u.childScope(s.CodeLoc, scope)
		return u.registerStatement(s.Body, child, running)

	case *DoWhileStmt:
		child := u.childScope(s.CodeLoc, scope)
		return u.registerStatement(s.Body, child, running)

	case *ForStmt:
		child := u.childScope(s.CodeLoc, scope)
		if s.Init != nil {
			if err := u.registerStatement(s.Init, child, running); err != nil {
				return err
			}
		}
		return u.registerStatement(s.Body, child, running)

	default:
		// Return, ExprStmt, Break, Continue, EmptyStmt declare
		// nothing and open no scope.
		return nil
	}
}
