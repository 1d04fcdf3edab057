package fixture

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/mark3labs/swagger2client/internal/spec"
)

// Verifier checks fixture instances against a JSON Schema derived from the
// same records the validators are emitted from. Compiled schemas are cached
// per schema name.
type Verifier struct {
	idx   *spec.SchemaIndex
	mu    sync.RWMutex
	cache map[string]*jsonschema.Schema
}

// NewVerifier returns a verifier for the schemas of idx. Compiled schemas
// are cached per name.
func NewVerifier(idx *spec.SchemaIndex) *Verifier {
	return &Verifier{idx: idx, cache: make(map[string]*jsonschema.Schema)}
}

// Verify validates instance against the named schema.
func (v *Verifier) Verify(name string, instance any) error {
	compiled, err := v.getOrCompile(name)
	if err != nil {
		return err
	}
	payload, err := json.Marshal(instance)
	if err != nil {
		return fmt.Errorf("encode fixture: %w", err)
	}
	var document any
	if err := json.Unmarshal(payload, &document); err != nil {
		return fmt.Errorf("decode fixture: %w", err)
	}
	if err := compiled.Validate(document); err != nil {
		return fmt.Errorf("fixture validation: %w", err)
	}
	return nil
}

func (v *Verifier) getOrCompile(name string) (*jsonschema.Schema, error) {
	v.mu.RLock()
	compiled, ok := v.cache[name]
	v.mu.RUnlock()
	if ok {
		return compiled, nil
	}

	v.mu.Lock()
	defer v.mu.Unlock()
	if compiled, ok = v.cache[name]; ok {
		return compiled, nil
	}

	doc, err := json.Marshal(JSONSchema(v.idx, name))
	if err != nil {
		return nil, fmt.Errorf("encode schema %s: %w", name, err)
	}
	url := "memory://swagger2client/schemas/" + name + ".json"
	compiler := jsonschema.NewCompiler()
	compiler.Draft = jsonschema.Draft2020
	compiler.AssertFormat = true
	if err := compiler.AddResource(url, bytes.NewReader(doc)); err != nil {
		return nil, fmt.Errorf("register schema %s: %w", name, err)
	}
	newCompiled, err := compiler.Compile(url)
	if err != nil {
		return nil, fmt.Errorf("compile schema %s: %w", name, err)
	}
	v.cache[name] = newCompiled
	return newCompiled, nil
}

// JSONSchema renders a self-contained JSON Schema (draft 2020-12) for the
// named record. Every named record is placed under $defs so references,
// including cyclic ones, resolve locally.
func JSONSchema(idx *spec.SchemaIndex, name string) map[string]any {
	defs := make(map[string]any, idx.Len())
	for _, n := range idx.Names() {
		rec, _ := idx.Get(n)
		defs[n] = toJSONSchema(rec)
	}
	return map[string]any{
		"$schema": "https://json-schema.org/draft/2020-12/schema",
		"$defs":   defs,
		"$ref":    defRef(name),
	}
}

func defRef(name string) string {
	return "#/$defs/" + escape(name)
}

func escape(s string) string {
	var b bytes.Buffer
	for _, r := range s {
		switch r {
		case '~':
			b.WriteString("~0")
		case '/':
			b.WriteString("~1")
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

func toJSONSchema(rec *spec.SchemaRecord) map[string]any {
	if rec == nil {
		return map[string]any{}
	}
	var out map[string]any
	switch rec.Kind {
	case spec.KindReference:
		return map[string]any{"$ref": defRef(rec.Ref)}
	case spec.KindObject:
		props := make(map[string]any, len(rec.Properties))
		for _, p := range rec.Properties {
			props[p.Name] = toJSONSchema(p.Schema)
		}
		out = map[string]any{"type": "object", "properties": props}
		if len(rec.Required) > 0 {
			out["required"] = rec.Required
		}
	case spec.KindArray:
		out = map[string]any{"type": "array", "items": toJSONSchema(rec.Items)}
	case spec.KindPrimitive:
		out = map[string]any{"type": rec.Type}
		if rec.IsEnum() {
			out["enum"] = rec.EnumValues
		}
		switch rec.Format {
		case "email", "date", "date-time", "uuid", "uri":
			out["format"] = rec.Format
		case "url":
			out["format"] = "uri"
		}
	default:
		return map[string]any{}
	}
	if rec.Nullable {
		out["type"] = []any{out["type"], "null"}
		if enum, ok := out["enum"].([]string); ok {
			vals := make([]any, 0, len(enum)+1)
			for _, e := range enum {
				vals = append(vals, e)
			}
			out["enum"] = append(vals, nil)
		}
	}
	return out
}
