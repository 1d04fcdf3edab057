// Package typeemitter writes one TypeScript type definition per schema.
package typeemitter

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

// Emit writes types/<file>.ts for every schema plus a types/index.ts barrel.
func Emit(ctx context.Context, in *emitter.Input) (*emitter.Output, error) {
	out := &emitter.Output{}
	dir := in.Options.Dir(emitter.KindTypes)
	var barrel strings.Builder
	barrel.WriteString(emitter.GeneratedHeader)

	for _, name := range in.Index.Names() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		rec, _ := in.Index.Get(name)
		src, warnings := Source(name, rec, in.Options)
		for _, w := range warnings {
			out.Warn(w)
		}
		file := emitter.SchemaFile(name)
		out.Add(emitter.KindTypes, emitter.Key(emitter.KindTypes, name), path.Join(dir, file+".ts"), src)
		fmt.Fprintf(&barrel, "export * from %s;\n", strconv.Quote("./"+file))
	}
	out.Add(emitter.KindTypes, emitter.Key(emitter.KindTypes, "index"), path.Join(dir, "index.ts"), barrel.String())
	return out, nil
}

// Source renders the type file of one schema. Unsupported shapes, at the top
// level or nested in a property, fall back to unknown and are reported.
func Source(name string, rec *spec.SchemaRecord, opts emitter.Options) (string, []error) {
	var warnings []error
	for _, reason := range emitter.Unsupported(rec, name) {
		warnings = append(warnings, &emitter.SchemaEmitError{Kind: emitter.KindTypes, Schema: name, Reason: reason + "; emitted as unknown"})
	}

	typeName := emitter.TypeName(name)
	var b strings.Builder
	b.WriteString(emitter.GeneratedHeader)
	for _, ref := range emitter.Refs(rec) {
		if ref == name {
			continue
		}
		fmt.Fprintf(&b, "import type { %s } from %s;\n", emitter.TypeName(ref), strconv.Quote("./"+emitter.SchemaFile(ref)))
	}
	b.WriteString("\n")
	writeDoc(&b, rec.Description, "")

	switch {
	case rec.Kind == spec.KindObject && len(rec.Properties) > 0:
		fmt.Fprintf(&b, "export interface %s {\n", typeName)
		for _, p := range rec.Properties {
			writeDoc(&b, p.Schema.Description, "  ")
			fmt.Fprintf(&b, "  %s;\n", emitter.FieldDecl(rec, p))
		}
		b.WriteString("}\n")
	case rec.IsEnum() && !opts.EnumAsUnion:
		fmt.Fprintf(&b, "export enum %s {\n", typeName)
		for i, member := range EnumMembers(rec.EnumValues) {
			fmt.Fprintf(&b, "  %s = %s,\n", member, strconv.Quote(rec.EnumValues[i]))
		}
		b.WriteString("}\n")
	default:
		fmt.Fprintf(&b, "export type %s = %s;\n", typeName, emitter.TypeExpr(rec))
	}
	return b.String(), warnings
}

// EnumMembers derives unique enum member identifiers from the values.
func EnumMembers(values []string) []string {
	out := make([]string, len(values))
	used := make(map[string]bool, len(values))
	for i, v := range values {
		m := naming.Pascal(v)
		if m == "" {
			m = fmt.Sprintf("Value%d", i)
		}
		for base, n := m, 2; used[m]; n++ {
			m = fmt.Sprintf("%s%d", base, n)
		}
		used[m] = true
		out[i] = m
	}
	return out
}
