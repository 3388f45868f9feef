package codegen

import "github.com/vanarize/vanarize/ast"

// primitiveTypeNames are the type keywords spec.md §6 lists; anything
// else naming a declared type refers to a struct.
var primitiveTypeNames = map[string]bool{
	"byte": true, "short": true, "int": true, "long": true,
	"float": true, "double": true, "char": true, "boolean": true, "string": true,
}

func isPrimitiveType(name string) bool {
	return primitiveTypeNames[name]
}

// structLayout records a struct type's field-name-to-slot-index mapping
// plus, for struct-valued fields, the field's own declared struct type
// name. The latter is what lets a property-access chain like `a.b.c`
// resolve `b`'s struct type without a general type checker: it walks the
// static type of `a.b` one field hop at a time (SPEC_FULL.md §4).
type structLayout struct {
	name       string
	fieldIndex map[string]int32
	fieldType  map[string]string
	fieldCount int
}

func buildStructLayout(sd *ast.StructDecl) *structLayout {
	layout := &structLayout{
		name:       sd.Name,
		fieldIndex: make(map[string]int32, len(sd.Fields)),
		fieldType:  make(map[string]string),
		fieldCount: len(sd.Fields),
	}
	for i, f := range sd.Fields {
		layout.fieldIndex[f.Name] = int32(i)
		if !f.Type.IsArray && !isPrimitiveType(f.Type.Name) {
			layout.fieldType[f.Name] = f.Type.Name
		}
	}
	return layout
}
