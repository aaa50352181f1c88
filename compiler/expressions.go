package compiler

import (
	"encoding/json"
	"fmt"
)

type Expression interface {
	isExpression()
}

type ConstantExpr struct {
	Type  string
	Value string
}

func (ConstantExpr) isExpression() {}

type BinaryOpExpr struct {
	Op    string
	Left  Expression
	Right Expression
}

func (BinaryOpExpr) isExpression() {}

type UnaryOpExpr struct {
	Op   string
	Expr Expression
}

func (UnaryOpExpr) isExpression() {}

type IDExpr struct {
	Name string
}

func (IDExpr) isExpression() {}

type AssignmentExpr struct {
	Op     string // "=" or a compound op like "+="
	Lvalue Expression
	Rvalue Expression
}

func (AssignmentExpr) isExpression() {}

type TernaryExpr struct {
	Cond    Expression
	IfTrue  Expression
	IfFalse Expression
}

func (TernaryExpr) isExpression() {}

type FuncCallExpr struct {
	Name string
	Args []Expression
}

func (FuncCallExpr) isExpression() {}

type ArrayRefExpr struct {
	Array Expression
	Index Expression
}

func (ArrayRefExpr) isExpression() {}

type StructRefExpr struct {
	Base  Expression
	Field string
	Arrow bool
}

func (StructRefExpr) isExpression() {}

func decodeExpression(raw json.RawMessage) (Expression, error) {
	fields, err := rawFields(raw)
	if err != nil {
		return nil, err
	}
	kind, err := nodeType(fields)
	if err != nil {
		return nil, err
	}

	switch kind {
	case "Constant":
		typ, err := stringField(fields, "type")
		if err != nil {
			return nil, err
		}
		val, err := stringField(fields, "value")
		if err != nil {
			return nil, err
		}
		return ConstantExpr{Type: typ, Value: val}, nil

	case "BinaryOp":
		op, err := stringField(fields, "op")
		if err != nil {
			return nil, err
		}
		left, err := decodeExpressionField(fields, "left")
		if err != nil {
			return nil, err
		}
		right, err := decodeExpressionField(fields, "right")
		if err != nil {
			return nil, err
		}
		return BinaryOpExpr{Op: op, Left: left, Right: right}, nil

	case "UnaryOp":
		op, err := stringField(fields, "op")
		if err != nil {
			return nil, err
		}
		expr, err := decodeExpressionField(fields, "expr")
		if err != nil {
			return nil, err
		}
		return UnaryOpExpr{Op: op, Expr: expr}, nil

	case "ID":
		name, err := stringField(fields, "name")
		if err != nil {
			return nil, err
		}
		return IDExpr{Name: name}, nil

	case "Assignment":
		op, err := stringField(fields, "op")
		if err != nil {
			return nil, err
		}
		lvalue, err := decodeExpressionField(fields, "lvalue")
		if err != nil {
			return nil, err
		}
		rvalue, err := decodeExpressionField(fields, "rvalue")
		if err != nil {
			return nil, err
		}
		return AssignmentExpr{Op: op, Lvalue: lvalue, Rvalue: rvalue}, nil

	case "TernaryOp":
		cond, err := decodeExpressionField(fields, "cond")
		if err != nil {
			return nil, err
		}
		ift, err := decodeExpressionField(fields, "iftrue")
		if err != nil {
			return nil, err
		}
		iff, err := decodeExpressionField(fields, "iffalse")
		if err != nil {
			return nil, err
		}
		return TernaryExpr{Cond: cond, IfTrue: ift, IfFalse: iff}, nil

	case "FuncCall":
		nameRaw, ok := fields["name"]
		if !ok {
			return nil, fmt.Errorf("%w: FuncCall missing name", ErrMalformedAST)
		}
		nameFields, err := rawFields(nameRaw)
		if err != nil {
			return nil, err
		}
		name, err := stringField(nameFields, "name")
		if err != nil {
			return nil, err
		}

		var args []Expression
		if argsRaw, ok := fields["args"]; ok && !isNull(argsRaw) {
			argsFields, err := rawFields(argsRaw)
			if err != nil {
				return nil, err
			}
			if exprsRaw, ok := argsFields["exprs"]; ok && !isNull(exprsRaw) {
				var exprs []json.RawMessage
				if err := json.Unmarshal(exprsRaw, &exprs); err != nil {
					return nil, fmt.Errorf("%w: %v", ErrMalformedAST, err)
				}
				for _, e := range exprs {
					expr, err := decodeExpression(e)
					if err != nil {
						return nil, err
					}
					args = append(args, expr)
				}
			}
		}
		return FuncCallExpr{Name: name, Args: args}, nil

	case "ArrayRef":
		array, err := decodeExpressionField(fields, "name")
		if err != nil {
			return nil, err
		}
		index, err := decodeExpressionField(fields, "subscript")
		if err != nil {
			return nil, err
		}
		return ArrayRefExpr{Array: array, Index: index}, nil

	case "StructRef":
		base, err := decodeExpressionField(fields, "name")
		if err != nil {
			return nil, err
		}
		fieldRaw, ok := fields["field"]
		if !ok {
			return nil, fmt.Errorf("%w: StructRef missing field", ErrMalformedAST)
		}
		fieldFields, err := rawFields(fieldRaw)
		if err != nil {
			return nil, err
		}
		fname, err := stringField(fieldFields, "name")
		if err != nil {
			return nil, err
		}
		arrow := false
		if opRaw, ok := fields["type"]; ok {
			var op string
			if err := json.Unmarshal(opRaw, &op); err == nil && op == "->" {
				arrow = true
			}
		}
		return StructRefExpr{Base: base, Field: fname, Arrow: arrow}, nil

	default:
		return nil, fmt.Errorf("%w: unsupported expression node %q", ErrMalformedAST, kind)
	}
}

func decodeExpressionField(fields map[string]json.RawMessage, key string) (Expression, error) {
	raw, ok := fields[key]
	if !ok || isNull(raw) {
		return nil, fmt.Errorf("%w: missing expression field %q", ErrMalformedAST, key)
	}
	return decodeExpression(raw)
}
