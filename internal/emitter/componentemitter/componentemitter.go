// Package componentemitter writes React scaffolds for entity schemas: a card
// for every entity, a list for entities returned by GET operations, and
// create/edit forms for entities sent as POST/PUT/PATCH bodies.
package componentemitter

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

// Widgets chosen for form fields.
const (
	WidgetCheckbox = "checkbox"
	WidgetSelect   = "select"
	WidgetDate     = "date"
	WidgetDateTime = "datetime"
	WidgetEmail    = "email"
	WidgetNumber   = "number"
	WidgetText     = "text"
	WidgetJSON     = "json"
)

// Field is one property as rendered by the component templates.
type Field struct {
	Name     string
	Label    string
	Key      string // quoted property name
	Widget   string
	Required bool
	Options  []string
}

// Vars are the template variables shared by every component template.
type Vars struct {
	Type         string
	Component    string
	CSSClass     string
	Schema       string
	TypeImport   string
	SchemaImport string
	Fields       []Field
	Columns      []Field
	RowKey       string
	Mode         string
	SubmitLabel  string
}

type variant struct {
	name     string // key variant
	suffix   string // component name suffix
	template string
	mode     string
	label    string
}

var (
	cardVariant   = variant{name: "card", suffix: "Card", template: "components.card"}
	listVariant   = variant{name: "list", suffix: "List", template: "components.list"}
	createVariant = variant{name: "create", suffix: "CreateForm", template: "components.form", mode: "create", label: "Create"}
	editVariant   = variant{name: "edit", suffix: "EditForm", template: "components.form", mode: "edit", label: "Save"}
)

// Emit classifies the entities and writes their components plus an index.
func Emit(ctx context.Context, in *emitter.Input) (*emitter.Output, error) {
	out := &emitter.Output{}
	root := in.Options.Dir(emitter.KindComponents)
	c := emitter.Classify(in.Index, in.Operations)

	var barrel strings.Builder
	barrel.WriteString(emitter.GeneratedHeader)
	for _, name := range c.Entities {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		variants := []variant{cardVariant}
		if c.List[name] && in.Options.GenerateLists {
			variants = append(variants, listVariant)
		}
		if in.Options.GenerateForms {
			if c.Create[name] {
				variants = append(variants, createVariant)
			}
			if c.Edit[name] {
				variants = append(variants, editVariant)
			}
		}

		rec, _ := in.Index.Get(name)
		file := emitter.SchemaFile(name)
		dir := path.Join(root, file)
		base := BuildVars(name, rec, in.Index, in.Options.ListColumns)
		base.TypeImport = emitter.Import(dir, path.Join(in.Options.Dir(emitter.KindTypes), file))
		base.SchemaImport = emitter.Import(dir, path.Join(in.Options.Dir(emitter.KindSchemas), file+".schema"))

		for _, v := range variants {
			vars := base
			vars.Component = base.Type + v.suffix
			vars.Mode = v.mode
			vars.SubmitLabel = v.label
			src, err := in.Render(v.template, vars)
			if err != nil {
				return nil, err
			}
			out.Add(emitter.KindComponents, emitter.Key(emitter.KindComponents, name, v.name), path.Join(dir, vars.Component+".tsx"), src)
			fmt.Fprintf(&barrel, "export * from %s;\n", strconv.Quote("./"+file+"/"+vars.Component))
		}
	}
	out.Add(emitter.KindComponents, emitter.Key(emitter.KindComponents, "index"), path.Join(root, "index.ts"), barrel.String())
	return out, nil
}

// BuildVars derives the template variables of one entity; imports and the
// variant-specific fields are left to the caller.
func BuildVars(name string, rec *spec.SchemaRecord, idx *spec.SchemaIndex, columns int) Vars {
	v := Vars{
		Type:     emitter.TypeName(name),
		CSSClass: naming.Kebab(name),
		Schema:   validatoremitter.SchemaConst(name),
		RowKey:   "index",
	}
	for _, p := range rec.Properties {
		widget, options := WidgetFor(p.Schema, idx)
		v.Fields = append(v.Fields, Field{
			Name:     p.Name,
			Label:    naming.Label(p.Name),
			Key:      strconv.Quote(p.Name),
			Widget:   widget,
			Required: rec.IsRequired(p.Name),
			Options:  options,
		})
	}
	if columns <= 0 || columns > len(v.Fields) {
		columns = len(v.Fields)
	}
	v.Columns = v.Fields[:columns]
	if id := rec.Property("id"); id != nil && id.Kind == spec.KindPrimitive && rec.IsRequired("id") {
		v.RowKey = "String(item.id)"
	}
	return v
}

// WidgetFor picks the form widget for a property by type and format. Enum
// widgets also return their options.
func WidgetFor(rec *spec.SchemaRecord, idx *spec.SchemaIndex) (string, []string) {
	if rec != nil && rec.Kind == spec.KindReference {
		rec = idx.Resolve(rec)
	}
	if rec == nil || rec.Kind != spec.KindPrimitive {
		return WidgetJSON, nil
	}
	if rec.IsEnum() {
		return WidgetSelect, rec.EnumValues
	}
	switch rec.Type {
	case spec.TypeBoolean:
		return WidgetCheckbox, nil
	case spec.TypeInteger, spec.TypeNumber:
		return WidgetNumber, nil
	}
	switch rec.Format {
	case "date":
		return WidgetDate, nil
	case "date-time":
		return WidgetDateTime, nil
	case "email":
		return WidgetEmail, nil
	}
	return WidgetText, nil
}
