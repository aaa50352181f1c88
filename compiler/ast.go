package compiler

import (
	"encoding/json"
	"fmt"
)

// Root is the AST producer's top-level JSON node: a list of externals.
type Root struct {
	Externals []External
}

// External is one of FuncDef, a function declaration, or a struct
// declaration (distinguished by _nodetype / nested type._nodetype).
type External interface {
	isExternal()
}

type FuncDef struct {
	Name       string
	ReturnType Type
	ParamNames []string
	ParamTypes []Type
	Body       *CompoundStmt
}

func (FuncDef) isExternal() {}

type FuncDecl struct {
	Name       string
	ReturnType Type
	ParamTypes []Type
}

func (FuncDecl) isExternal() {}

type StructDecl struct {
	Name       string
	FieldNames []string
	FieldTypes []Type
}

func (StructDecl) isExternal() {}

// ParseRoot decodes the AST producer's JSON document.
func ParseRoot(data []byte) (*Root, error) {
	var doc struct {
		Ext []json.RawMessage `json:"ext"`
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedAST, err)
	}

	root := &Root{}
	for _, raw := range doc.Ext {
		ext, err := decodeExternal(raw)
		if err != nil {
			return nil, err
		}
		root.Externals = append(root.Externals, ext)
	}
	return root, nil
}

func rawFields(raw json.RawMessage) (map[string]json.RawMessage, error) {
	var m map[string]json.RawMessage
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedAST, err)
	}
	return m, nil
}

func nodeType(fields map[string]json.RawMessage) (string, error) {
	raw, ok := fields["_nodetype"]
	if !ok {
		return "", fmt.Errorf("%w: missing _nodetype", ErrMalformedAST)
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", fmt.Errorf("%w: %v", ErrMalformedAST, err)
	}
	return s, nil
}

func stringField(fields map[string]json.RawMessage, key string) (string, error) {
	raw, ok := fields[key]
	if !ok {
		return "", fmt.Errorf("%w: missing field %q", ErrMalformedAST, key)
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", fmt.Errorf("%w: field %q: %v", ErrMalformedAST, key, err)
	}
	return s, nil
}

func isNull(raw json.RawMessage) bool {
	return len(raw) == 0 || string(raw) == "null"
}

func coordOf(fields map[string]json.RawMessage) string {
	raw, ok := fields["coord"]
	if !ok || isNull(raw) {
		return fmt.Sprintf("<anonymous:%p>", &fields)
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return string(raw)
}

func decodeExternal(raw json.RawMessage) (External, error) {
	fields, err := rawFields(raw)
	if err != nil {
		return nil, err
	}
	kind, err := nodeType(fields)
	if err != nil {
		return nil, err
	}

	switch kind {
	case "FuncDef":
		declRaw, ok := fields["decl"]
		if !ok {
			return nil, fmt.Errorf("%w: FuncDef missing decl", ErrMalformedAST)
		}
		declFields, err := rawFields(declRaw)
		if err != nil {
			return nil, err
		}
		name, err := stringField(declFields, "name")
		if err != nil {
			return nil, err
		}
		retType, paramNames, paramTypes, err := decodeFuncDeclType(declFields)
		if err != nil {
			return nil, err
		}

		bodyRaw, ok := fields["body"]
		if !ok {
			return nil, fmt.Errorf("%w: FuncDef missing body", ErrMalformedAST)
		}
		body, err := decodeCompound(bodyRaw)
		if err != nil {
			return nil, err
		}

		return &FuncDef{Name: name, ReturnType: retType, ParamNames: paramNames, ParamTypes: paramTypes, Body: body}, nil

	case "Decl":
		typeRaw, ok := fields["type"]
		if !ok {
			return nil, fmt.Errorf("%w: Decl missing type", ErrMalformedAST)
		}
		typeFields, err := rawFields(typeRaw)
		if err != nil {
			return nil, err
		}
		innerKind, err := nodeType(typeFields)
		if err != nil {
			return nil, err
		}

		name, err := stringField(fields, "name")
		if err != nil {
			return nil, err
		}

		switch innerKind {
		case "FuncDecl":
			retType, _, paramTypes, err := decodeFuncDeclType(fields)
			if err != nil {
				return nil, err
			}
			return &FuncDecl{Name: name, ReturnType: retType, ParamTypes: paramTypes}, nil
		case "Struct":
			return decodeStructDecl(name, typeFields)
		default:
			return nil, fmt.Errorf("%w: unsupported top-level Decl type %q", ErrMalformedAST, innerKind)
		}

	default:
		return nil, fmt.Errorf("%w: unsupported external node %q", ErrMalformedAST, kind)
	}
}

func decodeFuncDeclType(fields map[string]json.RawMessage) (retType Type, paramNames []string, paramTypes []Type, err error) {
	typeRaw, ok := fields["type"]
	if !ok {
		return Type{}, nil, nil, fmt.Errorf("%w: missing function type", ErrMalformedAST)
	}
	typeFields, err := rawFields(typeRaw)
	if err != nil {
		return Type{}, nil, nil, err
	}

	if retRaw, ok := typeFields["type"]; ok {
		retType, err = decodeType(retRaw)
		if err != nil {
			return Type{}, nil, nil, err
		}
	} else {
		retType = Type{Kind: KindVoid}
	}

	argsRaw, ok := typeFields["args"]
	if ok && !isNull(argsRaw) {
		argsFields, err := rawFields(argsRaw)
		if err != nil {
			return Type{}, nil, nil, err
		}
		paramsRaw, ok := argsFields["params"]
		if ok {
			var params []json.RawMessage
			if err := json.Unmarshal(paramsRaw, &params); err != nil {
				return Type{}, nil, nil, fmt.Errorf("%w: %v", ErrMalformedAST, err)
			}
			for _, p := range params {
				pf, err := rawFields(p)
				if err != nil {
					return Type{}, nil, nil, err
				}
				pname, _ := stringField(pf, "name")
				ptypeRaw, ok := pf["type"]
				if !ok {
					return Type{}, nil, nil, fmt.Errorf("%w: parameter missing type", ErrMalformedAST)
				}
				ptype, err := decodeType(ptypeRaw)
				if err != nil {
					return Type{}, nil, nil, err
				}
				paramNames = append(paramNames, pname)
				paramTypes = append(paramTypes, ptype)
			}
		}
	}

	return retType, paramNames, paramTypes, nil
}

func decodeStructDecl(name string, structFields map[string]json.RawMessage) (*StructDecl, error) {
	decl := &StructDecl{Name: name}
	declsRaw, ok := structFields["decls"]
	if !ok || isNull(declsRaw) {
		return decl, nil
	}
	var items []json.RawMessage
	if err := json.Unmarshal(declsRaw, &items); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedAST, err)
	}
	for _, item := range items {
		f, err := rawFields(item)
		if err != nil {
			return nil, err
		}
		fname, err := stringField(f, "name")
		if err != nil {
			return nil, err
		}
		typeRaw, ok := f["type"]
		if !ok {
			return nil, fmt.Errorf("%w: struct field missing type", ErrMalformedAST)
		}
		ftype, err := decodeType(typeRaw)
		if err != nil {
			return nil, err
		}
		decl.FieldNames = append(decl.FieldNames, fname)
		decl.FieldTypes = append(decl.FieldTypes, ftype)
	}
	return decl, nil
}
