// Package validatoremitter writes one zod schema per schema record. The
// traversal mirrors typeemitter, and optionality comes from the same
// SchemaRecord.IsRequired check, so a field is optional in the validator
// exactly when it is optional in the type.
package validatoremitter

import (
	"context"
	"fmt"
	"path"
	"strconv"
	"strings"

	"github.com/mark3labs/swagger2client/internal/emitter"
	"github.com/mark3labs/swagger2client/internal/naming"
	"github.com/mark3labs/swagger2client/internal/spec"
)

// SchemaConst is the exported validator name for a schema.
func SchemaConst(name string) string { return emitter.TypeName(name) + "Schema" }

// Emit writes schemas/<file>.schema.ts for every schema plus an index.
func Emit(ctx context.Context, in *emitter.Input) (*emitter.Output, error) {
	out := &emitter.Output{}
	dir := in.Options.Dir(emitter.KindSchemas)
	typesDir := in.Options.Dir(emitter.KindTypes)
	var barrel strings.Builder
	barrel.WriteString(emitter.GeneratedHeader)

	for _, name := range in.Index.Names() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		rec, _ := in.Index.Get(name)
		src := Source(name, rec, in.Index, in.Options, emitter.Import(dir, path.Join(typesDir, emitter.SchemaFile(name))))
		for _, reason := range emitter.Unsupported(rec, name) {
			out.Warn(&emitter.SchemaEmitError{Kind: emitter.KindSchemas, Schema: name, Reason: reason + "; emitted as z.unknown()"})
		}
		file := emitter.SchemaFile(name) + ".schema"
		out.Add(emitter.KindSchemas, emitter.Key(emitter.KindSchemas, name), path.Join(dir, file+".ts"), src)
		fmt.Fprintf(&barrel, "export * from %s;\n", strconv.Quote("./"+file))
	}
	out.Add(emitter.KindSchemas, emitter.Key(emitter.KindSchemas, "index"), path.Join(dir, "index.ts"), barrel.String())
	return out, nil
}

// Source renders the validator file of one schema. typeImport is the module
// specifier of the schema's type file.
func Source(name string, rec *spec.SchemaRecord, idx *spec.SchemaIndex, opts emitter.Options, typeImport string) string {
	g := &gen{idx: idx, opts: opts}
	var b strings.Builder
	b.WriteString(emitter.GeneratedHeader)
	b.WriteString("import { z } from \"zod\";\n")
	typeName := emitter.TypeName(name)
	nativeEnum := rec.IsEnum() && !opts.EnumAsUnion
	if nativeEnum {
		fmt.Fprintf(&b, "import { %s } from %s;\n", typeName, strconv.Quote(typeImport))
	} else {
		fmt.Fprintf(&b, "import type { %s } from %s;\n", typeName, strconv.Quote(typeImport))
	}
	for _, ref := range emitter.Refs(rec) {
		if ref == name {
			continue
		}
		fmt.Fprintf(&b, "import { %s } from %s;\n", SchemaConst(ref), strconv.Quote("./"+emitter.SchemaFile(ref)+".schema"))
	}
	b.WriteString("\n")

	expr := g.expr(rec, "")
	if nativeEnum {
		expr = fmt.Sprintf("z.nativeEnum(%s)", typeName)
	}
	fmt.Fprintf(&b, "export const %s: z.ZodType<%s> = %s;\n", SchemaConst(name), typeName, expr)
	return b.String()
}

type gen struct {
	idx  *spec.SchemaIndex
	opts emitter.Options
}

// expr renders rec as a zod expression; indent is the current nesting.
func (g *gen) expr(rec *spec.SchemaRecord, indent string) string {
	e := g.base(rec, indent)
	if rec != nil && rec.Nullable && rec.Kind != spec.KindUnknown {
		e += ".nullable()"
	}
	return e
}

func (g *gen) base(rec *spec.SchemaRecord, indent string) string {
	if rec == nil {
		return "z.unknown()"
	}
	switch rec.Kind {
	case spec.KindReference:
		return fmt.Sprintf("z.lazy(() => %s)", SchemaConst(rec.Ref))
	case spec.KindArray:
		return fmt.Sprintf("z.array(%s)", g.expr(rec.Items, indent))
	case spec.KindObject:
		if len(rec.Properties) == 0 {
			return "z.record(z.unknown())"
		}
		inner := indent + "  "
		var b strings.Builder
		b.WriteString("z.object({\n")
		for _, p := range rec.Properties {
			field := g.expr(p.Schema, inner)
			if !rec.IsRequired(p.Name) {
				field += ".optional()"
			}
			fmt.Fprintf(&b, "%s%s: %s,\n", inner, naming.PropertyKey(p.Name), field)
		}
		b.WriteString(indent + "})")
		return b.String()
	case spec.KindPrimitive:
		return primitive(rec)
	}
	return "z.unknown()"
}

// datePattern matches a full-date (YYYY-MM-DD).
const datePattern = `/^\d{4}-\d{2}-\d{2}$/`

func primitive(rec *spec.SchemaRecord) string {
	switch rec.Type {
	case spec.TypeString:
		if rec.IsEnum() {
			lits := make([]string, len(rec.EnumValues))
			for i, v := range rec.EnumValues {
				lits[i] = strconv.Quote(v)
			}
			return "z.enum([" + strings.Join(lits, ", ") + "])"
		}
		switch strings.ToLower(rec.Format) {
		case "email":
			return "z.string().email()"
		case "uuid":
			return "z.string().uuid()"
		case "uri", "url":
			return "z.string().url()"
		case "date":
			return "z.string().regex(" + datePattern + ")"
		case "date-time":
			return "z.string().datetime({ offset: true })"
		}
		return "z.string()"
	case spec.TypeInteger:
		return "z.number().int()"
	case spec.TypeNumber:
		return "z.number()"
	case spec.TypeBoolean:
		return "z.boolean()"
	}
	return "z.unknown()"
}
