// Package serviceemitter writes one client class per service group with one
// method per operation, plus the shared transport contract.
package serviceemitter

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

// verbCalls maps each verb to its transport method.
var verbCalls = map[spec.HttpMethod]string{
	spec.GET:    "get",
	spec.POST:   "post",
	spec.PUT:    "put",
	spec.PATCH:  "patch",
	spec.DELETE: "delete",
}

// ParamKind tells where a method parameter goes in the request.
type ParamKind int

const (
	PathParam ParamKind = iota
	QueryParam
	BodyParam
)

// MethodParam is one parameter of a generated service method.
type MethodParam struct {
	Kind ParamKind
	// Name is the TypeScript identifier; Wire is the name sent on the wire.
	Name     string
	Wire     string
	Type     string
	Optional bool
	// Array query params are appended once per element.
	Array bool
}

// Decl renders the parameter declaration. Optional parameters followed by
// a required one are typed "T | undefined" instead of "name?: T".
func (p MethodParam) Decl(trailingRequired bool) string {
	switch {
	case p.Optional && trailingRequired:
		return fmt.Sprintf("%s: %s | undefined", p.Name, p.Type)
	case p.Optional:
		return fmt.Sprintf("%s?: %s", p.Name, p.Type)
	}
	return fmt.Sprintf("%s: %s", p.Name, p.Type)
}

// Method describes one generated service method. Hook and mock emitters
// build on the same description.
type Method struct {
	Name     string
	Op       spec.OperationRecord
	Params   []MethodParam
	Response string
	Body     *MethodParam
}

// Signature renders the parameter list.
func (m Method) Signature() string {
	decls := make([]string, len(m.Params))
	for i, p := range m.Params {
		decls[i] = p.Decl(requiredAfter(m.Params, i))
	}
	return strings.Join(decls, ", ")
}

// Args renders the argument list forwarding every parameter by name.
func (m Method) Args() string {
	names := make([]string, len(m.Params))
	for i, p := range m.Params {
		names[i] = p.Name
	}
	return strings.Join(names, ", ")
}

func requiredAfter(params []MethodParam, i int) bool {
	for _, p := range params[i+1:] {
		if !p.Optional {
			return true
		}
	}
	return false
}

// BuildMethod derives the method description of op: path params in template
// order, then required and optional query params, then the request body.
func BuildMethod(op spec.OperationRecord) (Method, []error) {
	var warnings []error
	m := Method{Name: naming.Var(op.OperationID), Op: op, Response: "void"}
	used := map[string]bool{"data": op.RequestBody != nil}
	unique := func(wire string) string {
		name := naming.Var(wire)
		for base, n := name, 2; used[name]; n++ {
			name = fmt.Sprintf("%s%d", base, n)
		}
		used[name] = true
		return name
	}

	for _, p := range op.PathParams {
		m.Params = append(m.Params, MethodParam{Kind: PathParam, Name: unique(p.Name), Wire: p.Name, Type: pathParamType(p)})
	}
	var optional []MethodParam
	for _, p := range op.QueryParams {
		mp := MethodParam{Kind: QueryParam, Name: unique(p.Name), Wire: p.Name, Type: "string", Optional: !p.Required}
		if p.Schema != nil && p.Schema.Kind != spec.KindUnknown {
			mp.Type = emitter.TypeExpr(p.Schema)
			mp.Array = p.Schema.Kind == spec.KindArray
		}
		if mp.Optional {
			optional = append(optional, mp)
		} else {
			m.Params = append(m.Params, mp)
		}
	}
	m.Params = append(m.Params, optional...)

	if op.RequestBody != nil {
		body := MethodParam{Kind: BodyParam, Name: "data", Wire: "data", Type: emitter.TypeExpr(op.RequestBody), Optional: !op.BodyRequired}
		if op.RequestBody.Kind == spec.KindUnknown {
			warnings = append(warnings, &emitter.OperationEmitError{
				Kind: emitter.KindServices, Group: op.Group, OperationID: op.OperationID,
				Reason: "request body: " + op.RequestBody.Reason + "; typed as unknown",
			})
		}
		m.Params = append(m.Params, body)
		m.Body = &m.Params[len(m.Params)-1]
	}
	if op.Response != nil {
		m.Response = emitter.TypeExpr(op.Response)
		if op.Response.Kind == spec.KindUnknown {
			warnings = append(warnings, &emitter.OperationEmitError{
				Kind: emitter.KindServices, Group: op.Group, OperationID: op.OperationID,
				Reason: "response: " + op.Response.Reason + "; typed as unknown",
			})
		}
	}
	return m, warnings
}

// pathParamType uses the declared primitive type; untyped params whose name
// suggests an identifier are numbers, the rest strings.
func pathParamType(p spec.Param) string {
	if p.Type != "" {
		return emitter.PrimitiveType(p.Type)
	}
	if IsIDLike(p.Name) {
		return "number"
	}
	return "string"
}

// IsIDLike reports whether a parameter name looks like an identifier.
func IsIDLike(name string) bool {
	lower := strings.ToLower(name)
	return lower == "id" || strings.HasSuffix(name, "Id") || strings.HasSuffix(name, "ID") || strings.HasSuffix(lower, "_id")
}

// URLExpr renders the request path as a template literal with path params
// substituted.
func (m Method) URLExpr() string {
	url := m.Op.Path
	for _, p := range m.Params {
		if p.Kind != PathParam {
			continue
		}
		url = strings.ReplaceAll(url, "{"+p.Wire+"}", "${encodeURIComponent(String("+p.Name+"))}")
	}
	url = strings.ReplaceAll(url, "`", "\\`")
	return "`" + url + "`"
}

// Emit writes services/<group>.service.ts for every group, the transport
// module and an index.
func Emit(ctx context.Context, in *emitter.Input) (*emitter.Output, error) {
	out := &emitter.Output{}
	dir := in.Options.Dir(emitter.KindServices)
	typesImport := emitter.Import(dir, in.Options.Dir(emitter.KindTypes))

	transport, err := in.Render("services.transport", nil)
	if err != nil {
		return nil, err
	}
	out.Add(emitter.KindServices, emitter.Key(emitter.KindServices, "transport"), path.Join(dir, "transport.ts"), transport)

	var barrel strings.Builder
	barrel.WriteString(emitter.GeneratedHeader)
	barrel.WriteString("export * from \"./transport\";\n")
	for _, g := range in.Groups() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		src, warnings := Source(g, typesImport)
		for _, w := range warnings {
			out.Warn(w)
		}
		out.Add(emitter.KindServices, emitter.Key(emitter.KindServices, g.Name), path.Join(dir, g.File()+".service.ts"), src)
		fmt.Fprintf(&barrel, "export * from %s;\n", strconv.Quote("./"+g.File()+".service"))
	}
	out.Add(emitter.KindServices, emitter.Key(emitter.KindServices, "index"), path.Join(dir, "index.ts"), barrel.String())
	return out, nil
}

// Source renders the service class of one group.
func Source(g emitter.Group, typesImport string) (string, []error) {
	var warnings []error
	methods := make([]Method, 0, len(g.Operations))
	var payloads []*spec.SchemaRecord
	for _, op := range g.Operations {
		m, ws := BuildMethod(op)
		warnings = append(warnings, ws...)
		methods = append(methods, m)
		payloads = append(payloads, op.RequestBody, op.Response)
		for _, p := range op.QueryParams {
			payloads = append(payloads, p.Schema)
		}
	}

	var b strings.Builder
	b.WriteString(emitter.GeneratedHeader)
	b.WriteString("import type { ApiResult, HttpTransport } from \"./transport\";\n")
	b.WriteString("import { toErrorMessage } from \"./transport\";\n")
	if refs := emitter.Refs(payloads...); len(refs) > 0 {
		names := make([]string, len(refs))
		for i, r := range refs {
			names[i] = emitter.TypeName(r)
		}
		fmt.Fprintf(&b, "import type { %s } from %s;\n", strings.Join(names, ", "), strconv.Quote(typesImport))
	}
	b.WriteString("\n")
	fmt.Fprintf(&b, "export class %s {\n", g.Class())
	b.WriteString("  constructor(private readonly transport: HttpTransport) {}\n")
	for _, m := range methods {
		b.WriteString("\n")
		writeMethod(&b, m)
	}
	b.WriteString("}\n")
	return b.String(), warnings
}

func writeMethod(b *strings.Builder, m Method) {
	if doc := strings.TrimSpace(m.Op.Summary); doc != "" {
		fmt.Fprintf(b, "  /** %s */\n", strings.ReplaceAll(doc, "*/", "*\\/"))
	}
	fmt.Fprintf(b, "  async %s(%s): Promise<ApiResult<%s>> {\n", m.Name, m.Signature(), m.Response)

	var query []MethodParam
	for _, p := range m.Params {
		if p.Kind == QueryParam {
			query = append(query, p)
		}
	}
	url := m.URLExpr()
	if len(query) > 0 {
		b.WriteString("    const query = new URLSearchParams();\n")
		for _, p := range query {
			wire := strconv.Quote(p.Wire)
			switch {
			case p.Array:
				fmt.Fprintf(b, "    for (const value of %s ?? []) query.append(%s, String(value));\n", p.Name, wire)
			case p.Optional:
				fmt.Fprintf(b, "    if (%s !== undefined) query.append(%s, String(%s));\n", p.Name, wire, p.Name)
			default:
				fmt.Fprintf(b, "    query.append(%s, String(%s));\n", wire, p.Name)
			}
		}
		b.WriteString("    const qs = query.toString();\n")
		fmt.Fprintf(b, "    const url = %s + (qs ? `?${qs}` : \"\");\n", url)
		url = "url"
	}

	call := verbCalls[m.Op.Method]
	args := url
	if m.Body != nil {
		args += ", " + m.Body.Name
	}
	b.WriteString("    try {\n")
	fmt.Fprintf(b, "      const result = await this.transport.%s<%s>(%s);\n", call, m.Response, args)
	b.WriteString("      return { success: true, data: result };\n")
	b.WriteString("    } catch (err) {\n")
	b.WriteString("      return { success: false, error: toErrorMessage(err) };\n")
	b.WriteString("    }\n")
	b.WriteString("  }\n")
}
