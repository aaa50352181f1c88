package compiler

import (
	"encoding/json"
	"fmt"
)

type Statement interface {
	isStatement()
}

type ReturnStmt struct {
	Expr Expression // nil for a bare "return;"
}

func (ReturnStmt) isStatement() {}

type DeclStmt struct {
	Name     string
	Type     Type
	Init     Expression   // single-expression initializer, or nil
	InitList []Expression // brace-initializer elements, or nil
}

func (DeclStmt) isStatement() {}

type ExprStmt struct {
	Expr Expression
}

func (ExprStmt) isStatement() {}

type IfStmt struct {
	CodeLoc string
	Cond    Expression
	Then    Statement
	Else    Statement // nil if no else branch
}

func (IfStmt) isStatement() {}

type CompoundStmt struct {
	CodeLoc string
	Items   []Statement
}

func (CompoundStmt) isStatement() {}

type WhileStmt struct {
	CodeLoc string
	Cond    Expression
	Body    Statement
}

func (WhileStmt) isStatement() {}

type DoWhileStmt struct {
	CodeLoc string
	Cond    Expression
	Body    Statement
}

func (DoWhileStmt) isStatement() {}

type ForStmt struct {
	CodeLoc string
	Init    Statement  // nil if absent
	Cond    Expression // nil if absent
	Next    Expression // nil if absent
	Body    Statement
}

func (ForStmt) isStatement() {}

type BreakStmt struct{}

func (BreakStmt) isStatement() {}

type ContinueStmt struct{}

func (ContinueStmt) isStatement() {}

type EmptyStmt struct{}

func (EmptyStmt) isStatement() {}

type DeclListStmt struct {
	Decls []*DeclStmt
}

func (DeclListStmt) isStatement() {}

func decodeStatement(raw json.RawMessage) (Statement, error) {
	fields, err := rawFields(raw)
	if err != nil {
		return nil, err
	}
	kind, err := nodeType(fields)
	if err != nil {
		return nil, err
	}

	switch kind {
	case "Return":
		if exprRaw, ok := fields["expr"]; ok && !isNull(exprRaw) {
			expr, err := decodeExpression(exprRaw)
			if err != nil {
				return nil, err
			}
			return &ReturnStmt{Expr: expr}, nil
		}
		return &ReturnStmt{}, nil

	case "Decl":
		return decodeDeclStatement(fields)

	case "Assignment":
		expr, err := decodeExpression(raw)
		if err != nil {
			return nil, err
		}
		return &ExprStmt{Expr: expr}, nil

	case "If":
		codeLoc := coordOf(fields)
		cond, err := decodeExpressionField(fields, "cond")
		if err != nil {
			return nil, err
		}
		thenRaw, ok := fields["iftrue"]
		if !ok {
			return nil, fmt.Errorf("%w: If missing iftrue", ErrMalformedAST)
		}
		thenStmt, err := decodeStatement(thenRaw)
		if err != nil {
			return nil, err
		}
		var elseStmt Statement
		if elseRaw, ok := fields["iffalse"]; ok && !isNull(elseRaw) {
			elseStmt, err = decodeStatement(elseRaw)
			if err != nil {
				return nil, err
			}
		}
		return &IfStmt{CodeLoc: codeLoc, Cond: cond, Then: thenStmt, Else: elseStmt}, nil

	case "Compound":
		return decodeCompound(raw)

	case "While":
		codeLoc := coordOf(fields)
		cond, err := decodeExpressionField(fields, "cond")
		if err != nil {
			return nil, err
		}
		body, err := decodeStatementField(fields, "stmt")
		if err != nil {
			return nil, err
		}
		return &WhileStmt{CodeLoc: codeLoc, Cond: cond, Body: body}, nil

	case "DoWhile":
		codeLoc := coordOf(fields)
		cond, err := decodeExpressionField(fields, "cond")
		if err != nil {
			return nil, err
		}
		body, err := decodeStatementField(fields, "stmt")
		if err != nil {
			return nil, err
		}
		return &DoWhileStmt{CodeLoc: codeLoc, Cond: cond, Body: body}, nil

	case "For":
		codeLoc := coordOf(fields)
		var initStmt Statement
		if initRaw, ok := fields["init"]; ok && !isNull(initRaw) {
			initStmt, err = decodeStatement(initRaw)
			if err != nil {
				return nil, err
			}
		}
		var cond Expression
		if condRaw, ok := fields["cond"]; ok && !isNull(condRaw) {
			cond, err = decodeExpression(condRaw)
			if err != nil {
				return nil, err
			}
		}
		var next Expression
		if nextRaw, ok := fields["next"]; ok && !isNull(nextRaw) {
			next, err = decodeExpression(nextRaw)
			if err != nil {
				return nil, err
			}
		}
		body, err := decodeStatementField(fields, "stmt")
		if err != nil {
			return nil, err
		}
		return &ForStmt{CodeLoc: codeLoc, Init: initStmt, Cond: cond, Next: next, Body: body}, nil

	case "Break":
		return &BreakStmt{}, nil

	case "Continue":
		return &ContinueStmt{}, nil

	case "EmptyStatement":
		return &EmptyStmt{}, nil

	case "DeclList":
		declsRaw, ok := fields["decls"]
		if !ok {
			return nil, fmt.Errorf("%w: DeclList missing decls", ErrMalformedAST)
		}
		var items []json.RawMessage
		if err := json.Unmarshal(declsRaw, &items); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedAST, err)
		}
		out := &DeclListStmt{}
		for _, item := range items {
			f, err := rawFields(item)
			if err != nil {
				return nil, err
			}
			d, err := decodeDeclStatement(f)
			if err != nil {
				return nil, err
			}
			out.Decls = append(out.Decls, d)
		}
		return out, nil

	default:
		// Catch-all: an expression used directly as a statement.
		expr, err := decodeExpression(raw)
		if err != nil {
			return nil, err
		}
		return &ExprStmt{Expr: expr}, nil
	}
}

func decodeStatementField(fields map[string]json.RawMessage, key string) (Statement, error) {
	raw, ok := fields[key]
	if !ok || isNull(raw) {
		return &EmptyStmt{}, nil
	}
	return decodeStatement(raw)
}

func decodeDeclStatement(fields map[string]json.RawMessage) (*DeclStmt, error) {
	name, err := stringField(fields, "name")
	if err != nil {
		return nil, err
	}
	typeRaw, ok := fields["type"]
	if !ok {
		return nil, fmt.Errorf("%w: Decl missing type", ErrMalformedAST)
	}
	typ, err := decodeType(typeRaw)
	if err != nil {
		return nil, err
	}

	decl := &DeclStmt{Name: name, Type: typ}

	initRaw, ok := fields["init"]
	if !ok || isNull(initRaw) {
		return decl, nil
	}
	initFields, err := rawFields(initRaw)
	if err != nil {
		return nil, err
	}
	if kind, _ := nodeType(initFields); kind == "InitList" {
		exprsRaw, ok := initFields["exprs"]
		if !ok {
			return nil, fmt.Errorf("%w: InitList missing exprs", ErrMalformedAST)
		}
		var exprs []json.RawMessage
		if err := json.Unmarshal(exprsRaw, &exprs); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedAST, err)
		}
		for _, e := range exprs {
			expr, err := decodeExpression(e)
			if err != nil {
				return nil, err
			}
			decl.InitList = append(decl.InitList, expr)
		}
		return decl, nil
	}

	expr, err := decodeExpression(initRaw)
	if err != nil {
		return nil, err
	}
	decl.Init = expr
	return decl, nil
}

func decodeCompound(raw json.RawMessage) (*CompoundStmt, error) {
	fields, err := rawFields(raw)
	if err != nil {
		return nil, err
	}
	codeLoc := coordOf(fields)

	out := &CompoundStmt{CodeLoc: codeLoc}
	itemsRaw, ok := fields["block_items"]
	if !ok || isNull(itemsRaw) {
		return out, nil
	}
	var items []json.RawMessage
	if err := json.Unmarshal(itemsRaw, &items); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedAST, err)
	}
	for _, item := range items {
		stmt, err := decodeStatement(item)
		if err != nil {
			return nil, err
		}
		out.Items = append(out.Items, stmt)
	}
	return out, nil
}
