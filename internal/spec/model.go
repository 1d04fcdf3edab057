package spec

// Internal Model (IM) definitions shared by every emitter. Records are built
// once per run and treated as read-only afterwards.

type HttpMethod string

const (
	GET    HttpMethod = "GET"
	POST   HttpMethod = "POST"
	PUT    HttpMethod = "PUT"
	PATCH  HttpMethod = "PATCH"
	DELETE HttpMethod = "DELETE"
)

// Methods lists the supported verbs in the order operations are grouped.
var Methods = []HttpMethod{GET, POST, PUT, PATCH, DELETE}

// Kind classifies a SchemaRecord.
type Kind string

const (
	KindObject    Kind = "object"
	KindArray     Kind = "array"
	KindPrimitive Kind = "primitive"
	KindReference Kind = "reference"
	// KindUnknown marks shapes the reader could not flatten (oneOf/anyOf,
	// missing type information). Emitters fall back to an open type.
	KindUnknown Kind = "unknown"
)

// Primitive type names carried in SchemaRecord.Type for KindPrimitive.
const (
	TypeString  = "string"
	TypeInteger = "integer"
	TypeNumber  = "number"
	TypeBoolean = "boolean"
)

// Property is one ordered entry of an object schema.
type Property struct {
	Name   string
	Schema *SchemaRecord
}

// SchemaRecord is a flattened type description. Named records live in the
// SchemaIndex; nested records (properties, items) are anonymous unless they
// are references.
type SchemaRecord struct {
	Name        string
	Kind        Kind
	Type        string // primitive type for KindPrimitive
	Ref         string // target record name for KindReference
	Properties  []Property
	Required    []string
	Items       *SchemaRecord
	EnumValues  []string
	Format      string
	Description string
	Nullable    bool
	// Reason explains why a record is KindUnknown.
	Reason string
}

// IsRequired reports whether prop is listed in the record's required set.
// Type and validator emitters both call this so optionality never diverges.
func (s *SchemaRecord) IsRequired(prop string) bool {
	if s == nil {
		return false
	}
	for _, r := range s.Required {
		if r == prop {
			return true
		}
	}
	return false
}

// Property returns the named property schema, or nil.
func (s *SchemaRecord) Property(name string) *SchemaRecord {
	if s == nil {
		return nil
	}
	for _, p := range s.Properties {
		if p.Name == name {
			return p.Schema
		}
	}
	return nil
}

// IsEnum reports whether the record is a string with a closed value set.
func (s *SchemaRecord) IsEnum() bool {
	return s != nil && s.Kind == KindPrimitive && s.Type == TypeString && len(s.EnumValues) > 0
}

// SchemaIndex holds every named record in document order.
type SchemaIndex struct {
	names   []string
	records map[string]*SchemaRecord
}

func newSchemaIndex() *SchemaIndex {
	return &SchemaIndex{records: make(map[string]*SchemaRecord)}
}

func (idx *SchemaIndex) add(rec *SchemaRecord) {
	if _, exists := idx.records[rec.Name]; !exists {
		idx.names = append(idx.names, rec.Name)
	}
	idx.records[rec.Name] = rec
}

// Names returns the schema names in document order.
func (idx *SchemaIndex) Names() []string {
	if idx == nil {
		return nil
	}
	return append([]string(nil), idx.names...)
}

// Get looks up a named record.
func (idx *SchemaIndex) Get(name string) (*SchemaRecord, bool) {
	if idx == nil {
		return nil, false
	}
	rec, ok := idx.records[name]
	return rec, ok
}

// Len returns the number of named records.
func (idx *SchemaIndex) Len() int {
	if idx == nil {
		return 0
	}
	return len(idx.names)
}

// Resolve follows reference records until a concrete record is reached.
// Cycles made only of references resolve to nil.
func (idx *SchemaIndex) Resolve(rec *SchemaRecord) *SchemaRecord {
	seen := make(map[string]struct{})
	for rec != nil && rec.Kind == KindReference {
		if _, loop := seen[rec.Ref]; loop {
			return nil
		}
		seen[rec.Ref] = struct{}{}
		next, ok := idx.Get(rec.Ref)
		if !ok {
			return nil
		}
		rec = next
	}
	return rec
}

// Param is one path or query parameter of an operation.
type Param struct {
	Name     string
	Required bool
	// Type is the declared primitive type; empty when the document gave none.
	Type   string
	Format string
	Schema *SchemaRecord
}

// OperationRecord describes one (path, verb) endpoint.
type OperationRecord struct {
	Path        string
	Method      HttpMethod
	Group       string
	OperationID string
	// DerivedID is true when OperationID came from the verb/path heuristic.
	DerivedID   bool
	Summary     string
	Description string
	PathParams  []Param
	QueryParams []Param
	// RequestBody and Response are nil when the operation declares none.
	RequestBody    *SchemaRecord
	BodyRequired   bool
	Response       *SchemaRecord
	ResponseStatus string
}

// IsRead reports whether the operation is a GET.
func (op OperationRecord) IsRead() bool { return op.Method == GET }
