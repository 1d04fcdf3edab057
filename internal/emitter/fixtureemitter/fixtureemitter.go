// Package fixtureemitter writes sample data for every schema: a static,
// deterministic *FakeData array and a random* builder.
package fixtureemitter

import (
	"context"
	"encoding/json"
	"fmt"
	"path"
	"sort"
	"strconv"
	"strings"

	"github.com/mark3labs/swagger2client/internal/emitter"
	"github.com/mark3labs/swagger2client/internal/fixture"
	"github.com/mark3labs/swagger2client/internal/naming"
	"github.com/mark3labs/swagger2client/internal/spec"
)

// DataConst is the exported name of a schema's static fixture array.
func DataConst(name string) string { return emitter.TypeName(name) + "FakeData" }

// Randomizer is the exported name of a schema's random builder.
func Randomizer(name string) string { return "random" + emitter.TypeName(name) }

// Emit writes fixtures/<file>.fixtures.ts for every schema plus the shared
// helpers module. Instances that fail verification are reported as
// warnings; the file is still written.
func Emit(ctx context.Context, in *emitter.Input) (*emitter.Output, error) {
	out := &emitter.Output{}
	dir := in.Options.Dir(emitter.KindFixtures)

	helpers, err := in.Render("fixtures.helpers", map[string]any{
		"OptionalDepth": fixture.OptionalDepth,
		"MaxDepth":      fixture.MaxDepth,
		"Vocabulary":    fixture.Vocabulary(),
	})
	if err != nil {
		return nil, err
	}
	out.Add(emitter.KindFixtures, emitter.Key(emitter.KindFixtures, "helpers"), path.Join(dir, "helpers.ts"), helpers)

	engine := fixture.New(in.Index)
	verifier := fixture.NewVerifier(in.Index)
	typesImport := emitter.Import(dir, in.Options.Dir(emitter.KindTypes))

	var barrel strings.Builder
	barrel.WriteString(emitter.GeneratedHeader)
	for _, name := range in.Index.Names() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		rec, _ := in.Index.Get(name)
		var instances []any
		if rec.Kind == spec.KindUnknown {
			out.Warn(&emitter.SchemaEmitError{Kind: emitter.KindFixtures, Schema: name, Reason: "unsupported shape; no sample instances emitted"})
		} else {
			instances, err = engine.Instances(name, in.Options.FixtureCount)
			if err != nil {
				return nil, err
			}
			for i, inst := range instances {
				if verr := verifier.Verify(name, inst); verr != nil {
					out.Warn(&emitter.SchemaEmitError{Kind: emitter.KindFixtures, Schema: name, Reason: fmt.Sprintf("instance %d: %v", i, verr)})
				}
			}
		}
		src, err := Source(name, rec, in.Index, instances, in.Options, typesImport)
		if err != nil {
			return nil, err
		}
		file := emitter.SchemaFile(name)
		out.Add(emitter.KindFixtures, emitter.Key(emitter.KindFixtures, name), path.Join(dir, file+".fixtures.ts"), src)
		fmt.Fprintf(&barrel, "export * from %s;\n", strconv.Quote("./"+file+".fixtures"))
	}
	out.Add(emitter.KindFixtures, emitter.Key(emitter.KindFixtures, "index"), path.Join(dir, "index.ts"), barrel.String())
	return out, nil
}

// Source renders the fixture module of one schema from precomputed
// instances.
func Source(name string, rec *spec.SchemaRecord, idx *spec.SchemaIndex, instances []any, opts emitter.Options, typesImport string) (string, error) {
	typeName := emitter.TypeName(name)
	g := &gen{idx: idx, self: name, nativeEnums: !opts.EnumAsUnion, refs: make(map[string]bool)}
	body := g.body(rec)

	if instances == nil {
		instances = []any{}
	}
	data, err := json.MarshalIndent(instances, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encode fixtures for %s: %w", name, err)
	}

	var b strings.Builder
	b.WriteString(emitter.GeneratedHeader)
	fmt.Fprintf(&b, "import type { %s } from %s;\n", typeName, strconv.Quote(typesImport))
	b.WriteString("import * as h from \"./helpers\";\n")
	for _, ref := range sortedRefs(g.refs) {
		fmt.Fprintf(&b, "import { %s } from %s;\n", Randomizer(ref), strconv.Quote("./"+emitter.SchemaFile(ref)+".fixtures"))
	}
	b.WriteString("\n")

	// String literals are not assignable to native enum members without a cast.
	cast := ""
	if !opts.EnumAsUnion {
		cast = " as unknown as " + typeName + "[]"
	}
	fmt.Fprintf(&b, "export const %s: %s[] = %s%s;\n\n", DataConst(name), typeName, data, cast)

	fmt.Fprintf(&b, "/** Builds a random %s. Optional nested values stop at h.OPTIONAL_DEPTH. */\n", typeName)
	fmt.Fprintf(&b, "export function %s(depth = 0): %s {\n", Randomizer(name), typeName)
	b.WriteString(body)
	b.WriteString("}\n")
	return b.String(), nil
}

type gen struct {
	idx         *spec.SchemaIndex
	self        string
	nativeEnums bool
	refs        map[string]bool
}

// body renders the statements of the randomizer function.
func (g *gen) body(rec *spec.SchemaRecord) string {
	typeName := emitter.TypeName(g.self)
	switch rec.Kind {
	case spec.KindObject:
		var b strings.Builder
		fmt.Fprintf(&b, "  if (depth > h.MAX_DEPTH) return {} as %s;\n", typeName)
		b.WriteString("  return {\n")
		for _, part := range g.fields(rec) {
			fmt.Fprintf(&b, "    %s,\n", part)
		}
		b.WriteString("  };\n")
		return b.String()
	case spec.KindUnknown:
		return "  return null;\n"
	case spec.KindPrimitive:
		if rec.IsEnum() && g.nativeEnums {
			return fmt.Sprintf("  return %s as unknown as %s;\n", g.expr(rec, g.self), typeName)
		}
	}
	return fmt.Sprintf("  return %s;\n", g.expr(rec, g.self))
}

func (g *gen) fields(rec *spec.SchemaRecord) []string {
	parts := make([]string, 0, len(rec.Properties))
	for _, p := range rec.Properties {
		key := naming.PropertyKey(p.Name)
		e := g.expr(p.Schema, p.Name)
		if !rec.IsRequired(p.Name) && fixture.IsComposite(g.idx, p.Schema) {
			parts = append(parts, fmt.Sprintf("...(depth < h.OPTIONAL_DEPTH ? { %s: %s } : {})", key, e))
			continue
		}
		parts = append(parts, key+": "+e)
	}
	return parts
}

// expr renders a TypeScript expression producing a random value for rec
// found under property prop.
func (g *gen) expr(rec *spec.SchemaRecord, prop string) string {
	if rec == nil {
		return "null"
	}
	switch rec.Kind {
	case spec.KindReference:
		if rec.Ref != g.self {
			g.refs[rec.Ref] = true
		}
		return Randomizer(rec.Ref) + "(depth + 1)"
	case spec.KindArray:
		return fmt.Sprintf("Array.from({ length: depth < h.OPTIONAL_DEPTH ? h.randomInt(1, 2) : 0 }, () => %s)", g.expr(rec.Items, prop))
	case spec.KindObject:
		if len(rec.Properties) == 0 {
			return "{}"
		}
		return "{ " + strings.Join(g.fields(rec), ", ") + " }"
	case spec.KindPrimitive:
		return primitive(rec, prop)
	}
	return "null"
}

func primitive(rec *spec.SchemaRecord, prop string) string {
	rule := fixture.Select(rec, prop)
	switch rule {
	case fixture.RuleEnum:
		return "h.pick([" + quoteList(rec.EnumValues) + "] as const)"
	case fixture.RuleBoolean:
		return "h.randomBoolean()"
	}
	switch rec.Type {
	case spec.TypeString:
		switch rule {
		case fixture.RuleEmail:
			return "h.randomEmail()"
		case fixture.RuleDate:
			return "h.randomDate()"
		case fixture.RuleDateTime:
			return "h.randomDateTime()"
		case fixture.RuleUUID:
			return "h.randomUUID()"
		case fixture.RuleURL:
			return "h.randomUrl(" + strconv.Quote(naming.File(prop)) + ")"
		case fixture.RulePrice:
			return "h.randomPrice().toFixed(2)"
		case fixture.RuleID:
			return "h.randomId()"
		case fixture.RulePerson, fixture.RuleCompany, fixture.RuleLorem, fixture.RuleStatus, fixture.RuleType:
			return "h.pick(h.VOCABULARY." + string(rule) + ")"
		}
		label := naming.Label(prop)
		if label == "" {
			label = "Sample"
		}
		return "h.randomLabel(" + strconv.Quote(label) + ")"
	case spec.TypeInteger:
		switch rule {
		case fixture.RulePrice:
			return "h.randomInt(1000, 100000)"
		case fixture.RuleID:
			return "h.randomInt(1, 10000)"
		case fixture.RuleTime:
			return "h.randomTimestamp()"
		}
		return "h.randomInt(0, 1000)"
	case spec.TypeNumber:
		switch rule {
		case fixture.RulePrice:
			return "h.randomPrice()"
		case fixture.RuleID:
			return "h.randomInt(1, 10000)"
		case fixture.RuleTime:
			return "h.randomTimestamp()"
		}
		return "h.randomFloat(0, 1000)"
	}
	return "null"
}

func quoteList(values []string) string {
	lits := make([]string, len(values))
	for i, v := range values {
		lits[i] = strconv.Quote(v)
	}
	return strings.Join(lits, ", ")
}

func sortedRefs(refs map[string]bool) []string {
	out := make([]string, 0, len(refs))
	for r := range refs {
		out = append(out, r)
	}
	sort.Strings(out)
	return out
}
