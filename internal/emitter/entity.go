package emitter

import (
	"strings"

	"github.com/mark3labs/swagger2client/internal/spec"
)

// IsEntity reports whether a named schema looks like a domain entity: an
// object with at least one property whose name is not an error, response or
// pagination wrapper.
func IsEntity(name string, rec *spec.SchemaRecord) bool {
	if rec == nil || rec.Kind != spec.KindObject || len(rec.Properties) == 0 {
		return false
	}
	lower := strings.ToLower(name)
	switch {
	case strings.Contains(lower, "error"),
		strings.HasSuffix(lower, "response"),
		strings.Contains(lower, "paginat"),
		strings.HasSuffix(lower, "page"),
		strings.HasSuffix(lower, "paged"):
		return false
	}
	return true
}

// Entities returns the entity schema names in index order.
func Entities(idx *spec.SchemaIndex) []string {
	var out []string
	for _, name := range idx.Names() {
		rec, _ := idx.Get(name)
		if IsEntity(name, rec) {
			out = append(out, name)
		}
	}
	return out
}

// Classification records how each entity is observed across operations.
type Classification struct {
	Entities []string
	List     map[string]bool // reached through a GET 2xx response
	Create   map[string]bool // reached through a POST request body
	Edit     map[string]bool // reached through a PUT or PATCH request body
}

// Classify scans the operations and marks entity schemas as list, create
// form and edit form candidates. A schema may be all three.
func Classify(idx *spec.SchemaIndex, ops []spec.OperationRecord) Classification {
	c := Classification{
		Entities: Entities(idx),
		List:     make(map[string]bool),
		Create:   make(map[string]bool),
		Edit:     make(map[string]bool),
	}
	entity := make(map[string]bool, len(c.Entities))
	for _, name := range c.Entities {
		entity[name] = true
	}
	for _, op := range ops {
		switch op.Method {
		case spec.GET:
			if name := PayloadEntity(idx, op.Response); entity[name] {
				c.List[name] = true
			}
		case spec.POST:
			if name := PayloadEntity(idx, op.RequestBody); entity[name] {
				c.Create[name] = true
			}
		case spec.PUT, spec.PATCH:
			if name := PayloadEntity(idx, op.RequestBody); entity[name] {
				c.Edit[name] = true
			}
		}
	}
	return c
}

// wrapperFields are the collection properties of a list-response wrapper.
var wrapperFields = []string{"data", "items", "results"}

// PayloadEntity resolves the schema name carried by a payload: a direct
// reference, the element of an array, or the element of a wrapper's
// data/items/results array.
func PayloadEntity(idx *spec.SchemaIndex, rec *spec.SchemaRecord) string {
	name, _ := ReferenceName(rec)
	if name == "" {
		return ""
	}
	target, ok := idx.Get(name)
	if !ok {
		return ""
	}
	if target.Kind == spec.KindArray {
		inner, _ := ReferenceName(target)
		return inner
	}
	if IsEntity(name, target) {
		return name
	}
	for _, field := range wrapperFields {
		if inner, isArray := ReferenceName(target.Property(field)); isArray {
			return inner
		}
	}
	return name
}
