// Package fixture derives deterministic sample values from schema records.
// The same (schema, index) pair always yields the same value, so generated
// fixture files are stable across runs.
package fixture

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/mark3labs/swagger2client/internal/naming"
	"github.com/mark3labs/swagger2client/internal/spec"
)

// Rule is the value-selection rule picked for one primitive property.
type Rule string

const (
	RuleEnum     Rule = "enum"
	RuleEmail    Rule = "email"
	RuleDate     Rule = "date"
	RuleDateTime Rule = "date-time"
	RuleUUID     Rule = "uuid"
	RuleURL      Rule = "url"
	RulePrice    Rule = "price"
	RuleID       Rule = "id"
	RulePerson   Rule = "person"
	RuleCompany  Rule = "company"
	RuleLorem    Rule = "lorem"
	RuleStatus   Rule = "status"
	RuleType     Rule = "type"
	RuleTime     Rule = "timestamp"
	RuleBoolean  Rule = "boolean"
	RuleFallback Rule = "fallback"
)

// Depth limits for nested values: optional references and arrays stop at
// OptionalDepth, required ones at MaxDepth.
const (
	OptionalDepth = 2
	MaxDepth      = 6
)

// Select picks the rule for a primitive record found under property name
// prop. Declared enums and formats win over name patterns; name patterns
// only apply to types they can produce.
func Select(rec *spec.SchemaRecord, prop string) Rule {
	if rec == nil || rec.Kind != spec.KindPrimitive {
		return RuleFallback
	}
	if rec.IsEnum() {
		return RuleEnum
	}
	name := strings.ToLower(prop)
	switch rec.Type {
	case spec.TypeBoolean:
		return RuleBoolean
	case spec.TypeString:
		switch strings.ToLower(rec.Format) {
		case "email":
			return RuleEmail
		case "date":
			return RuleDate
		case "date-time":
			return RuleDateTime
		case "uuid":
			return RuleUUID
		case "uri", "url":
			return RuleURL
		}
		switch {
		case strings.Contains(name, "email"):
			return RuleEmail
		case strings.Contains(name, "date"), strings.Contains(name, "time"):
			return RuleDateTime
		case strings.Contains(name, "price"), strings.Contains(name, "amount"):
			return RulePrice
		case strings.Contains(name, "id"):
			return RuleID
		case strings.Contains(name, "name"):
			if strings.Contains(name, "company") || strings.Contains(name, "org") || strings.Contains(name, "business") {
				return RuleCompany
			}
			return RulePerson
		case strings.Contains(name, "description"), strings.Contains(name, "title"), strings.Contains(name, "bio"):
			return RuleLorem
		case strings.Contains(name, "status"):
			return RuleStatus
		case strings.Contains(name, "type"):
			return RuleType
		}
	case spec.TypeInteger, spec.TypeNumber:
		switch {
		case strings.Contains(name, "price"), strings.Contains(name, "amount"):
			return RulePrice
		case strings.Contains(name, "id"):
			return RuleID
		case strings.Contains(name, "date"), strings.Contains(name, "time"):
			return RuleTime
		}
	}
	return RuleFallback
}

var (
	baseDate  = time.Date(2024, time.January, 15, 10, 30, 0, 0, time.UTC)
	people    = []string{"Alice Johnson", "Bob Smith", "Carol Williams", "David Brown", "Eve Davis", "Frank Miller"}
	companies = []string{"Acme Corp", "Globex Inc", "Initech", "Umbrella Ltd", "Stark Industries", "Wayne Enterprises"}
	lorem     = []string{
		"Lorem ipsum dolor sit amet.",
		"Consectetur adipiscing elit sed do.",
		"Eiusmod tempor incididunt ut labore.",
		"Et dolore magna aliqua ut enim.",
		"Ad minim veniam quis nostrud.",
	}
	statuses = []string{"active", "pending", "inactive"}
	types    = []string{"standard", "premium", "basic"}
)

// Vocabulary exposes the fixed word lists so emitted randomizers draw from
// the same values as the static fixtures.
func Vocabulary() map[Rule][]string {
	return map[Rule][]string{
		RulePerson:  people,
		RuleCompany: companies,
		RuleLorem:   lorem,
		RuleStatus:  statuses,
		RuleType:    types,
	}
}

// Engine produces fixture values for the records of one schema index.
type Engine struct {
	idx *spec.SchemaIndex
}

// New returns an engine over idx.
func New(idx *spec.SchemaIndex) *Engine {
	return &Engine{idx: idx}
}

// Instance returns sample i of the named schema.
func (e *Engine) Instance(name string, i int) (any, error) {
	rec, ok := e.idx.Get(name)
	if !ok {
		return nil, fmt.Errorf("fixture: unknown schema %q", name)
	}
	return e.value(rec, name, i, 0), nil
}

// Instances returns samples 0..n-1 of the named schema.
func (e *Engine) Instances(name string, n int) ([]any, error) {
	out := make([]any, 0, n)
	for i := 0; i < n; i++ {
		v, err := e.Instance(name, i)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

// Value returns sample i for rec found under property prop.
func (e *Engine) Value(rec *spec.SchemaRecord, prop string, i int) any {
	return e.value(rec, prop, i, 0)
}

func (e *Engine) value(rec *spec.SchemaRecord, prop string, i, depth int) any {
	if rec == nil {
		return nil
	}
	switch rec.Kind {
	case spec.KindReference:
		target, ok := e.idx.Get(rec.Ref)
		if !ok || depth >= MaxDepth {
			return emptyFor(target)
		}
		return e.value(target, prop, i, depth+1)
	case spec.KindObject:
		return e.object(rec, i, depth)
	case spec.KindArray:
		n := 1 + i%2
		if depth >= OptionalDepth {
			n = 0
		}
		items := make([]any, 0, n)
		for j := 0; j < n; j++ {
			items = append(items, e.value(rec.Items, prop, i+j, depth+1))
		}
		return items
	case spec.KindPrimitive:
		return primitive(rec, prop, i)
	}
	return nil
}

func (e *Engine) object(rec *spec.SchemaRecord, i, depth int) *Object {
	obj := NewObject()
	if depth >= MaxDepth {
		return obj
	}
	for _, p := range rec.Properties {
		if !rec.IsRequired(p.Name) && depth >= OptionalDepth && IsComposite(e.idx, p.Schema) {
			continue
		}
		obj.Set(p.Name, e.value(p.Schema, p.Name, i, depth+1))
	}
	return obj
}

// IsComposite reports whether rec expands into nested values.
func IsComposite(idx *spec.SchemaIndex, rec *spec.SchemaRecord) bool {
	if rec == nil {
		return false
	}
	switch rec.Kind {
	case spec.KindArray, spec.KindObject:
		return true
	case spec.KindReference:
		target := idx.Resolve(rec)
		return target == nil || target.Kind == spec.KindObject || target.Kind == spec.KindArray
	}
	return false
}

func emptyFor(rec *spec.SchemaRecord) any {
	if rec != nil && rec.Kind == spec.KindArray {
		return []any{}
	}
	return NewObject()
}

func primitive(rec *spec.SchemaRecord, prop string, i int) any {
	rule := Select(rec, prop)
	if rec.Type == spec.TypeString {
		return stringValue(rule, rec, prop, i)
	}
	if rec.Type == spec.TypeBoolean {
		return i%2 == 0
	}
	integer := rec.Type == spec.TypeInteger
	switch rule {
	case RulePrice:
		if integer {
			return 1999 + i*100
		}
		return round2(19.99 + float64(i)*10)
	case RuleID:
		return i + 1
	case RuleTime:
		return baseDate.AddDate(0, 0, i).Unix()
	}
	if integer {
		return (i + 1) * 10
	}
	return round2(float64(i+1) * 1.5)
}

func stringValue(rule Rule, rec *spec.SchemaRecord, prop string, i int) string {
	switch rule {
	case RuleEnum:
		return rec.EnumValues[i%len(rec.EnumValues)]
	case RuleEmail:
		return fmt.Sprintf("user%d@example.com", i+1)
	case RuleDate:
		return baseDate.AddDate(0, 0, i).Format("2006-01-02")
	case RuleDateTime:
		return baseDate.AddDate(0, 0, i).Format(time.RFC3339)
	case RuleUUID:
		return UUID(prop, i)
	case RuleURL:
		return fmt.Sprintf("https://example.com/%s/%d", naming.File(prop), i+1)
	case RulePrice:
		return fmt.Sprintf("%.2f", 19.99+float64(i)*10)
	case RuleID:
		return fmt.Sprintf("id-%04d", i+1)
	case RulePerson:
		return people[i%len(people)]
	case RuleCompany:
		return companies[i%len(companies)]
	case RuleLorem:
		return lorem[i%len(lorem)]
	case RuleStatus:
		return statuses[i%len(statuses)]
	case RuleType:
		return types[i%len(types)]
	}
	label := naming.Label(prop)
	if label == "" {
		label = "Sample"
	}
	return fmt.Sprintf("%s %d", label, i+1)
}

// UUID derives a stable name-based UUID for property prop and index i.
func UUID(prop string, i int) string {
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte(fmt.Sprintf("swagger2client:%s:%d", prop, i))).String()
}

func round2(f float64) float64 { return math.Round(f*100) / 100 }
