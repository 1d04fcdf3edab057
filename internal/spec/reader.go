package spec

import (
	"fmt"
	"sort"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"
)

const componentsPrefix = "#/components/schemas/"

// Read flattens components.schemas into a SchemaIndex. Every $ref reachable
// from a named schema must resolve to another named schema; allOf members
// are merged into one object record (later members override earlier
// properties, required is the union). Shapes the reader cannot flatten
// become KindUnknown records with a Reason rather than errors.
func Read(doc *Document) (*SchemaIndex, error) {
	if doc == nil || doc.T == nil {
		return nil, &SpecError{Code: InputError, Message: "spec: nil document"}
	}
	if doc.T.Components == nil || doc.T.Components.Schemas == nil {
		return nil, &SpecError{
			Code:        MissingSchemasError,
			Message:     "spec: components.schemas is missing",
			Location:    doc.Location,
			JSONPointer: "#/components/schemas",
		}
	}

	r := newReader(doc, true)
	idx := newSchemaIndex()
	for _, name := range r.schemaNames() {
		ptr := componentsPrefix + escapePointer(name)
		rec := r.convert(doc.T.Components.Schemas[name], ptr, 0)
		if r.err != nil {
			return nil, r.err
		}
		rec.Name = name
		idx.add(rec)
	}
	return idx, nil
}

type reader struct {
	doc     *Document
	schemas openapi3.Schemas
	// strict turns unresolved references into a fatal error; operation
	// payloads are read leniently.
	strict bool
	err    error
}

func newReader(doc *Document, strict bool) *reader {
	r := &reader{doc: doc, strict: strict}
	if doc.T.Components != nil {
		r.schemas = doc.T.Components.Schemas
	}
	return r
}

// schemaNames returns component names in document order.
func (r *reader) schemaNames() []string {
	names := make([]string, 0, len(r.schemas))
	for name := range r.schemas {
		names = append(names, name)
	}
	return r.doc.Order.Sort("#/components/schemas", names)
}

// maxReadDepth bounds inline nesting; named references are never expanded
// so recursion only follows anonymous schemas.
const maxReadDepth = 32

func (r *reader) convert(sref *openapi3.SchemaRef, ptr string, depth int) *SchemaRecord {
	if sref == nil {
		return unknown("missing schema")
	}
	if depth > maxReadDepth {
		return unknown("schema nesting too deep")
	}
	if sref.Ref != "" {
		if name, ok := localSchemaName(sref.Ref); ok {
			if _, exists := r.schemas[name]; exists {
				return &SchemaRecord{Kind: KindReference, Ref: name}
			}
			if strings.HasPrefix(sref.Ref, "#") {
				return r.unresolved(sref.Ref, ptr)
			}
		}
		if sref.Value == nil {
			return r.unresolved(sref.Ref, ptr)
		}
		// External or deep refs are inlined.
		return r.convertValue(sref.Value, "", depth)
	}
	if sref.Value == nil {
		return unknown("empty schema")
	}
	return r.convertValue(sref.Value, ptr, depth)
}

func (r *reader) convertValue(s *openapi3.Schema, ptr string, depth int) *SchemaRecord {
	if len(s.OneOf) > 0 || len(s.AnyOf) > 0 {
		rec := unknown("oneOf/anyOf composition is not supported")
		rec.Description = s.Description
		return rec
	}
	if len(s.AllOf) > 0 {
		return r.mergeAllOf(s, ptr, depth)
	}

	rec := &SchemaRecord{
		Format:      s.Format,
		Description: s.Description,
		Nullable:    s.Nullable,
	}
	switch {
	case s.Type == "object" || (s.Type == "" && len(s.Properties) > 0):
		rec.Kind = KindObject
		r.fillObject(rec, s, ptr, depth)
	case s.Type == "array" || (s.Type == "" && s.Items != nil):
		rec.Kind = KindArray
		if s.Items == nil {
			rec.Items = unknown("array without items")
		} else {
			rec.Items = r.convert(s.Items, ptr+"/items", depth+1)
		}
	case s.Type == TypeString, s.Type == TypeInteger, s.Type == TypeNumber, s.Type == TypeBoolean:
		rec.Kind = KindPrimitive
		rec.Type = s.Type
		if s.Type == TypeString {
			for _, v := range s.Enum {
				if str, ok := v.(string); ok {
					rec.EnumValues = append(rec.EnumValues, str)
				}
			}
		}
	default:
		rec.Kind = KindUnknown
		if s.Type == "" {
			rec.Reason = "schema declares no type"
		} else {
			rec.Reason = fmt.Sprintf("unsupported type %q", s.Type)
		}
	}
	return rec
}

func (r *reader) fillObject(rec *SchemaRecord, s *openapi3.Schema, ptr string, depth int) {
	keys := make([]string, 0, len(s.Properties))
	for k := range s.Properties {
		keys = append(keys, k)
	}
	propsPtr := ""
	if ptr != "" {
		propsPtr = ptr + "/properties"
	}
	for _, k := range r.doc.Order.Sort(propsPtr, keys) {
		childPtr := ""
		if ptr != "" {
			childPtr = propsPtr + "/" + escapePointer(k)
		}
		rec.Properties = append(rec.Properties, Property{Name: k, Schema: r.convert(s.Properties[k], childPtr, depth+1)})
	}
	for _, req := range s.Required {
		if rec.Property(req) != nil && !rec.IsRequired(req) {
			rec.Required = append(rec.Required, req)
		}
	}
}

// mergeAllOf flattens allOf members (and the schema's own properties, which
// come last) into one object record.
func (r *reader) mergeAllOf(s *openapi3.Schema, ptr string, depth int) *SchemaRecord {
	merged := &SchemaRecord{Kind: KindObject, Description: s.Description, Nullable: s.Nullable}
	seen := make(map[string]bool)
	for i, member := range s.AllOf {
		memberPtr := ""
		if ptr != "" {
			memberPtr = fmt.Sprintf("%s/allOf/%d", ptr, i)
		}
		part := r.flattenMember(member, memberPtr, depth+1, seen)
		if r.err != nil {
			return merged
		}
		if part == nil {
			continue
		}
		if part.Kind != KindObject {
			return unknown("allOf member is not an object")
		}
		mergeInto(merged, part)
	}
	if len(s.Properties) > 0 || len(s.Required) > 0 {
		own := &SchemaRecord{Kind: KindObject}
		r.fillObject(own, s, ptr, depth)
		// required entries may name properties contributed by members
		for _, req := range s.Required {
			if !own.IsRequired(req) {
				own.Required = append(own.Required, req)
			}
		}
		mergeInto(merged, own)
	}
	return merged
}

// flattenMember resolves one allOf member to an object record, following a
// named reference into its own definition.
func (r *reader) flattenMember(member *openapi3.SchemaRef, ptr string, depth int, seen map[string]bool) *SchemaRecord {
	if member == nil {
		return nil
	}
	if member.Ref != "" {
		name, ok := localSchemaName(member.Ref)
		if ok {
			target, exists := r.schemas[name]
			if !exists {
				return r.unresolved(member.Ref, ptr)
			}
			if seen[name] {
				return nil
			}
			seen[name] = true
			return r.convert(&openapi3.SchemaRef{Value: target.Value}, componentsPrefix+escapePointer(name), depth)
		}
		if member.Value == nil {
			return r.unresolved(member.Ref, ptr)
		}
		return r.convertValue(member.Value, "", depth)
	}
	return r.convert(member, ptr, depth)
}

func mergeInto(dst, src *SchemaRecord) {
	for _, p := range src.Properties {
		replaced := false
		for i := range dst.Properties {
			if dst.Properties[i].Name == p.Name {
				dst.Properties[i].Schema = p.Schema
				replaced = true
				break
			}
		}
		if !replaced {
			dst.Properties = append(dst.Properties, p)
		}
	}
	for _, req := range src.Required {
		if !dst.IsRequired(req) {
			dst.Required = append(dst.Required, req)
		}
	}
}

func (r *reader) unresolved(ref, ptr string) *SchemaRecord {
	reason := fmt.Sprintf("unresolved $ref %q", ref)
	if r.strict && r.err == nil {
		r.err = &SpecError{
			Code:        UnresolvedRefError,
			Message:     fmt.Sprintf("spec: %s at %s", reason, ptr),
			Location:    r.doc.Location,
			JSONPointer: ptr,
		}
	}
	return unknown(reason)
}

func unknown(reason string) *SchemaRecord {
	return &SchemaRecord{Kind: KindUnknown, Reason: reason}
}

// localSchemaName extracts X from "#/components/schemas/X" (or the same
// pointer inside another document).
func localSchemaName(ref string) (string, bool) {
	i := strings.Index(ref, componentsPrefix)
	if i < 0 {
		return "", false
	}
	name := ref[i+len(componentsPrefix):]
	if name == "" || strings.Contains(name, "/") {
		return "", false
	}
	return unescapePointer(name), true
}

var pointerUnescaper = strings.NewReplacer("~1", "/", "~0", "~")

func unescapePointer(s string) string { return pointerUnescaper.Replace(s) }

// sortedKeys returns the keys of a map in lexical order.
func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
