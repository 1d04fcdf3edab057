package emitter

import (
	"sort"
	"strconv"
	"strings"

	"github.com/mark3labs/swagger2client/internal/naming"
	"github.com/mark3labs/swagger2client/internal/spec"
)

// TypeExpr renders rec as a TypeScript type expression. References become
// the referenced type name; inline objects are rendered structurally.
func TypeExpr(rec *spec.SchemaRecord) string {
	expr := typeExpr(rec)
	if rec != nil && rec.Nullable && expr != "unknown" {
		return expr + " | null"
	}
	return expr
}

func typeExpr(rec *spec.SchemaRecord) string {
	if rec == nil {
		return "unknown"
	}
	switch rec.Kind {
	case spec.KindReference:
		return TypeName(rec.Ref)
	case spec.KindArray:
		elem := TypeExpr(rec.Items)
		if isSimpleType(elem) {
			return elem + "[]"
		}
		return "Array<" + elem + ">"
	case spec.KindPrimitive:
		if rec.IsEnum() {
			return EnumUnion(rec.EnumValues)
		}
		return PrimitiveType(rec.Type)
	case spec.KindObject:
		if len(rec.Properties) == 0 {
			return "Record<string, unknown>"
		}
		fields := make([]string, 0, len(rec.Properties))
		for _, p := range rec.Properties {
			fields = append(fields, FieldDecl(rec, p))
		}
		return "{ " + strings.Join(fields, "; ") + " }"
	}
	return "unknown"
}

// FieldDecl renders "name?: T" for one property of parent.
func FieldDecl(parent *spec.SchemaRecord, p spec.Property) string {
	opt := ""
	if !parent.IsRequired(p.Name) {
		opt = "?"
	}
	return naming.PropertyKey(p.Name) + opt + ": " + TypeExpr(p.Schema)
}

// PrimitiveType maps an OpenAPI primitive type to TypeScript.
func PrimitiveType(t string) string {
	switch t {
	case spec.TypeString:
		return "string"
	case spec.TypeInteger, spec.TypeNumber:
		return "number"
	case spec.TypeBoolean:
		return "boolean"
	}
	return "unknown"
}

// EnumUnion renders a closed union of string literals in the given order.
func EnumUnion(values []string) string {
	lits := make([]string, len(values))
	for i, v := range values {
		lits[i] = strconv.Quote(v)
	}
	return strings.Join(lits, " | ")
}

func isSimpleType(expr string) bool {
	for _, r := range expr {
		if r == ' ' || r == '|' || r == '{' || r == '<' {
			return false
		}
	}
	return true
}

// Refs collects the schema names rec references, sorted and de-duplicated.
func Refs(recs ...*spec.SchemaRecord) []string {
	seen := make(map[string]struct{})
	for _, rec := range recs {
		collectRefs(rec, seen, 0)
	}
	out := make([]string, 0, len(seen))
	for name := range seen {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

func collectRefs(rec *spec.SchemaRecord, seen map[string]struct{}, depth int) {
	if rec == nil || depth > 64 {
		return
	}
	switch rec.Kind {
	case spec.KindReference:
		seen[rec.Ref] = struct{}{}
	case spec.KindArray:
		collectRefs(rec.Items, seen, depth+1)
	case spec.KindObject:
		for _, p := range rec.Properties {
			collectRefs(p.Schema, seen, depth+1)
		}
	}
}

// ReferenceName returns the schema a payload record names: the target of a
// reference, or the element target of an array of references.
func ReferenceName(rec *spec.SchemaRecord) (name string, isArray bool) {
	if rec == nil {
		return "", false
	}
	switch rec.Kind {
	case spec.KindReference:
		return rec.Ref, false
	case spec.KindArray:
		if rec.Items != nil && rec.Items.Kind == spec.KindReference {
			return rec.Items.Ref, true
		}
	}
	return "", false
}
