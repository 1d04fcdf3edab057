package emitter

import (
	"fmt"

	"github.com/mark3labs/swagger2client/internal/spec"
)

// SchemaEmitError reports a schema whose shape an emitter could not express.
// The emitter falls back to an open type and continues.
type SchemaEmitError struct {
	Kind   Kind
	Schema string
	Reason string
}

func (e *SchemaEmitError) Error() string {
	return fmt.Sprintf("%s: schema %s: %s", e.Kind, e.Schema, e.Reason)
}

// OperationEmitError reports an operation whose body or response type could
// not be resolved. The operation is still emitted with an open type.
type OperationEmitError struct {
	Kind        Kind
	Group       string
	OperationID string
	Reason      string
}

func (e *OperationEmitError) Error() string {
	return fmt.Sprintf("%s: operation %s.%s: %s", e.Kind, e.Group, e.OperationID, e.Reason)
}

// Unsupported lists every unknown record inside rec as "path: reason",
// where the path starts at at and follows properties and array items.
func Unsupported(rec *spec.SchemaRecord, at string) []string {
	var out []string
	var walk func(r *spec.SchemaRecord, where string, depth int)
	walk = func(r *spec.SchemaRecord, where string, depth int) {
		if r == nil || depth > 32 {
			return
		}
		switch r.Kind {
		case spec.KindUnknown:
			out = append(out, where+": "+r.Reason)
		case spec.KindArray:
			walk(r.Items, where+"[]", depth+1)
		case spec.KindObject:
			for _, p := range r.Properties {
				walk(p.Schema, where+"."+p.Name, depth+1)
			}
		}
	}
	walk(rec, at, 0)
	return out
}
