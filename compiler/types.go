package compiler

import (
	"encoding/json"
	"fmt"
)

type TypeKind int

const (
	KindInt TypeKind = iota
	KindChar
	KindVoid
	KindPtr
	KindStruct
	KindArray
)

// Type is the compiler's type representation: Int, Char, Void, Ptr(Type),
// Struct(name), or Array(elem, dims).
type Type struct {
	Kind       TypeKind
	Elem       *Type
	StructName string
	Dims       []int
}

// decodeType walks a TypeDecl/PtrDecl/ArrayDecl chain as produced by the
// AST JSON schema (§6), following original_source/.../AST.rs's recursive
// type-node walk.
func decodeType(raw json.RawMessage) (Type, error) {
	fields, err := rawFields(raw)
	if err != nil {
		return Type{}, err
	}
	kind, err := nodeType(fields)
	if err != nil {
		return Type{}, err
	}

	switch kind {
	case "PtrDecl":
		innerRaw, ok := fields["type"]
		if !ok {
			return Type{}, fmt.Errorf("%w: PtrDecl missing type", ErrMalformedAST)
		}
		inner, err := decodeType(innerRaw)
		if err != nil {
			return Type{}, err
		}
		return Type{Kind: KindPtr, Elem: &inner}, nil

	case "ArrayDecl":
		innerRaw, ok := fields["type"]
		if !ok {
			return Type{}, fmt.Errorf("%w: ArrayDecl missing type", ErrMalformedAST)
		}
		dimRaw, ok := fields["dim"]
		if !ok || isNull(dimRaw) {
			return Type{}, fmt.Errorf("%w: ArrayDecl missing dim", ErrMalformedAST)
		}
		dimFields, err := rawFields(dimRaw)
		if err != nil {
			return Type{}, err
		}
		dimVal, err := stringField(dimFields, "value")
		if err != nil {
			return Type{}, err
		}
		var n int
		if _, err := fmt.Sscanf(dimVal, "%d", &n); err != nil {
			return Type{}, fmt.Errorf("%w: bad array dimension %q", ErrMalformedAST, dimVal)
		}

		inner, err := decodeType(innerRaw)
		if err != nil {
			return Type{}, err
		}
		if inner.Kind == KindArray {
			return Type{Kind: KindArray, Elem: inner.Elem, Dims: append([]int{n}, inner.Dims...)}, nil
		}
		return Type{Kind: KindArray, Elem: &inner, Dims: []int{n}}, nil

	case "TypeDecl":
		innerRaw, ok := fields["type"]
		if !ok {
			return Type{}, fmt.Errorf("%w: TypeDecl missing type", ErrMalformedAST)
		}
		innerFields, err := rawFields(innerRaw)
		if err != nil {
			return Type{}, err
		}
		innerKind, err := nodeType(innerFields)
		if err != nil {
			return Type{}, err
		}
		switch innerKind {
		case "IdentifierType":
			var names []string
			if namesRaw, ok := innerFields["names"]; ok {
				if err := json.Unmarshal(namesRaw, &names); err != nil {
					return Type{}, fmt.Errorf("%w: %v", ErrMalformedAST, err)
				}
			}
			return identifierTypeFromNames(names)
		case "Struct":
			name, err := stringField(innerFields, "name")
			if err != nil {
				return Type{}, err
			}
			return Type{Kind: KindStruct, StructName: name}, nil
		default:
			return Type{}, fmt.Errorf("%w: unsupported TypeDecl inner kind %q", ErrMalformedAST, innerKind)
		}

	default:
		return Type{}, fmt.Errorf("%w: unsupported type node %q", ErrMalformedAST, kind)
	}
}

func identifierTypeFromNames(names []string) (Type, error) {
	for _, n := range names {
		switch n {
		case "void":
			return Type{Kind: KindVoid}, nil
		case "char":
			return Type{Kind: KindChar}, nil
		case "int":
			return Type{Kind: KindInt}, nil
		}
	}
	return Type{Kind: KindInt}, nil
}

// StructInfo is structs[name] → {size, items: ordered field→{type,offset,size}}.
type StructInfo struct {
	Name       string
	Size       int
	FieldOrder []string
	Fields     map[string]StructField
}

type StructField struct {
	Type   Type
	Offset int
	Size   int
}

// StructTable holds every registered struct declaration, keyed by name.
type StructTable map[string]*StructInfo

func (st StructTable) sizeOf(t Type) (int, error) {
	switch t.Kind {
	case KindInt, KindChar, KindPtr:
		return 1, nil
	case KindVoid:
		return 0, nil
	case KindArray:
		elemSize, err := st.sizeOf(*t.Elem)
		if err != nil {
			return 0, err
		}
		total := elemSize
		for _, d := range t.Dims {
			total *= d
		}
		return total, nil
	case KindStruct:
		info, ok := st[t.StructName]
		if !ok {
			return 0, fmt.Errorf("%w: unknown struct %q", ErrUnknownStruct, t.StructName)
		}
		return info.Size, nil
	default:
		return 0, fmt.Errorf("%w: unsupported type kind", ErrCompile)
	}
}

// registerStruct computes field offsets/sizes and the struct's total size.
func (st StructTable) registerStruct(decl *StructDecl) error {
	info := &StructInfo{Name: decl.Name, Fields: make(map[string]StructField)}
	offset := 0
	for i, fname := range decl.FieldNames {
		ftype := decl.FieldTypes[i]
		fsize, err := st.sizeOf(ftype)
		if err != nil {
			return err
		}
		info.Fields[fname] = StructField{Type: ftype, Offset: offset, Size: fsize}
		info.FieldOrder = append(info.FieldOrder, fname)
		offset += fsize
	}
	info.Size = offset
	st[decl.Name] = info
	return nil
}
