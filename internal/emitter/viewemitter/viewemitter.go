// Package viewemitter writes null-safe accessor classes for entity schemas.
package viewemitter

import (
	"context"
	"fmt"
	"path"
	"strconv"
	"strings"

	"github.com/mark3labs/swagger2client/internal/emitter"
	"github.com/mark3labs/swagger2client/internal/emitter/validatoremitter"
	"github.com/mark3labs/swagger2client/internal/naming"
	"github.com/mark3labs/swagger2client/internal/spec"
)

// Emit writes views/<file>.view.ts for every entity schema.
func Emit(ctx context.Context, in *emitter.Input) (*emitter.Output, error) {
	out := &emitter.Output{}
	dir := in.Options.Dir(emitter.KindViews)
	for _, name := range emitter.Entities(in.Index) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		rec, _ := in.Index.Get(name)
		file := emitter.SchemaFile(name)
		src := Source(name, rec, in.Index, in.Options,
			emitter.Import(dir, path.Join(in.Options.Dir(emitter.KindTypes), file)),
			emitter.Import(dir, path.Join(in.Options.Dir(emitter.KindSchemas), file+".schema")),
		)
		out.Add(emitter.KindViews, emitter.Key(emitter.KindViews, name), path.Join(dir, file+".view.ts"), src)
	}
	return out, nil
}

// reservedMembers are class members a getter must not shadow.
var reservedMembers = map[string]bool{"data": true, "isValid": true, "toJSON": true, "from": true, "constructor": true, "raw": true}

// Source renders the view class of one entity.
func Source(name string, rec *spec.SchemaRecord, idx *spec.SchemaIndex, opts emitter.Options, typeImport, schemaImport string) string {
	typeName := emitter.TypeName(name)
	var b strings.Builder
	b.WriteString(emitter.GeneratedHeader)
	fmt.Fprintf(&b, "import type { %s } from %s;\n", typeName, strconv.Quote(typeImport))
	fmt.Fprintf(&b, "import { %s } from %s;\n\n", validatoremitter.SchemaConst(name), strconv.Quote(schemaImport))

	fmt.Fprintf(&b, "export class %sView {\n", typeName)
	fmt.Fprintf(&b, "  constructor(private readonly data: Partial<%s> = {}) {}\n\n", typeName)
	fmt.Fprintf(&b, "  static from(raw: unknown): %sView {\n", typeName)
	fmt.Fprintf(&b, "    return new %sView(raw !== null && typeof raw === \"object\" ? (raw as Partial<%s>) : {});\n", typeName, typeName)
	b.WriteString("  }\n")

	used := make(map[string]bool)
	for _, p := range rec.Properties {
		getter := naming.Var(p.Name)
		if reservedMembers[getter] {
			getter += "Value"
		}
		for base, n := getter, 2; used[getter]; n++ {
			getter = fmt.Sprintf("%s%d", base, n)
		}
		used[getter] = true

		fieldType := fmt.Sprintf("NonNullable<%s[%s]>", typeName, strconv.Quote(p.Name))
		fmt.Fprintf(&b, "\n  get %s(): %s {\n", getter, fieldType)
		fmt.Fprintf(&b, "    return %s ?? %s;\n", naming.Accessor("this.data", p.Name), DefaultValue(p.Schema, idx, opts, fieldType))
		b.WriteString("  }\n")
	}

	fmt.Fprintf(&b, "\n  /** Re-validates the wrapped data against %s. */\n", validatoremitter.SchemaConst(name))
	b.WriteString("  isValid(): boolean {\n")
	fmt.Fprintf(&b, "    return %s.safeParse(this.data).success;\n", validatoremitter.SchemaConst(name))
	b.WriteString("  }\n\n")
	fmt.Fprintf(&b, "  toJSON(): %s {\n", typeName)
	fmt.Fprintf(&b, "    return { ...this.data } as %s;\n", typeName)
	b.WriteString("  }\n")
	b.WriteString("}\n")
	return b.String()
}

// DefaultValue renders the kind-appropriate fallback for a missing field.
// fieldType is the getter's return type, used to cast structural defaults.
func DefaultValue(rec *spec.SchemaRecord, idx *spec.SchemaIndex, opts emitter.Options, fieldType string) string {
	target := rec
	viaRef := false
	if rec != nil && rec.Kind == spec.KindReference {
		target = idx.Resolve(rec)
		viaRef = true
	}
	if target == nil {
		return "({} as " + fieldType + ")"
	}
	switch target.Kind {
	case spec.KindArray:
		return "[]"
	case spec.KindPrimitive:
		if target.IsEnum() {
			lit := strconv.Quote(target.EnumValues[0])
			if viaRef && !opts.EnumAsUnion {
				return "(" + lit + " as " + fieldType + ")"
			}
			return lit
		}
		switch target.Type {
		case spec.TypeString:
			return `""`
		case spec.TypeInteger, spec.TypeNumber:
			return "0"
		case spec.TypeBoolean:
			return "false"
		}
	}
	return "({} as " + fieldType + ")"
}
