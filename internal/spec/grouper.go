package spec

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"

	"github.com/mark3labs/swagger2client/internal/naming"
)

// DefaultGroup is the service group of operations that declare no tag.
const DefaultGroup = "default"

// GroupOption configures which operations Group keeps.
type GroupOption func(*groupConfig)

type groupConfig struct {
	includeTags map[string]struct{}
	excludeTags map[string]struct{}
	methods     map[HttpMethod]struct{}
	pathRes     []*regexp.Regexp
}

// WithIncludeTags keeps only operations that have at least one of the given tags.
func WithIncludeTags(tags []string) GroupOption {
	return func(c *groupConfig) {
		c.includeTags = addTags(c.includeTags, tags)
	}
}

// WithExcludeTags removes operations that have any of the given tags.
func WithExcludeTags(tags []string) GroupOption {
	return func(c *groupConfig) {
		c.excludeTags = addTags(c.excludeTags, tags)
	}
}

func addTags(set map[string]struct{}, tags []string) map[string]struct{} {
	for _, t := range tags {
		t = strings.TrimSpace(t)
		if t == "" {
			continue
		}
		if set == nil {
			set = make(map[string]struct{}, len(tags))
		}
		set[t] = struct{}{}
	}
	return set
}

// WithMethods keeps only operations using one of the provided HTTP methods.
func WithMethods(methods []HttpMethod) GroupOption {
	return func(c *groupConfig) {
		for _, m := range methods {
			if c.methods == nil {
				c.methods = make(map[HttpMethod]struct{}, len(methods))
			}
			c.methods[HttpMethod(strings.ToUpper(string(m)))] = struct{}{}
		}
	}
}

// WithPathPatterns keeps only operations whose path matches at least one of
// the regular expressions. An invalid pattern matches nothing.
func WithPathPatterns(patterns []string) GroupOption {
	return func(c *groupConfig) {
		for _, p := range patterns {
			p = strings.TrimSpace(p)
			if p == "" {
				continue
			}
			re, err := regexp.Compile(p)
			if err != nil {
				re = regexp.MustCompile("a^$")
			}
			c.pathRes = append(c.pathRes, re)
		}
	}
}

// Group walks the path table and returns one OperationRecord per (path,
// verb) pair, in document path order and GET, POST, PUT, PATCH, DELETE verb
// order. Two operations of one group that end up with the same operationId
// are reported as a CollisionError.
func Group(doc *Document, opts ...GroupOption) ([]OperationRecord, error) {
	if doc == nil || doc.T == nil {
		return nil, &SpecError{Code: InputError, Message: "spec: nil document"}
	}
	cfg := &groupConfig{}
	for _, opt := range opts {
		opt(cfg)
	}

	r := newReader(doc, false)
	paths := make([]string, 0, len(doc.T.Paths))
	for p := range doc.T.Paths {
		paths = append(paths, p)
	}
	paths = doc.Order.Sort("#/paths", paths)

	var ops []OperationRecord
	seen := make(map[string]map[string]string) // group -> operationId -> "VERB path"
	for _, path := range paths {
		item := doc.T.Paths[path]
		if item == nil || !allowByPath(path, cfg) {
			continue
		}
		for _, method := range Methods {
			op := item.GetOperation(string(method))
			if op == nil {
				continue
			}
			if len(cfg.methods) > 0 {
				if _, ok := cfg.methods[method]; !ok {
					continue
				}
			}
			if !allowByTags(op.Tags, cfg) {
				continue
			}

			rec := buildOperation(r, path, method, item, op)
			endpoint := string(method) + " " + path
			if seen[rec.Group] == nil {
				seen[rec.Group] = make(map[string]string)
			}
			if prev, dup := seen[rec.Group][rec.OperationID]; dup {
				return nil, &SpecError{
					Code:        CollisionError,
					Message:     fmt.Sprintf("spec: operationId %q in group %q is used by both %s and %s", rec.OperationID, rec.Group, prev, endpoint),
					Location:    doc.Location,
					JSONPointer: "#/paths/" + escapePointer(path) + "/" + strings.ToLower(string(method)),
				}
			}
			seen[rec.Group][rec.OperationID] = endpoint
			ops = append(ops, rec)
		}
	}
	return ops, nil
}

func buildOperation(r *reader, path string, method HttpMethod, item *openapi3.PathItem, op *openapi3.Operation) OperationRecord {
	opPtr := "#/paths/" + escapePointer(path) + "/" + strings.ToLower(string(method))
	rec := OperationRecord{
		Path:        path,
		Method:      method,
		Group:       DefaultGroup,
		Summary:     strings.TrimSpace(op.Summary),
		Description: strings.TrimSpace(op.Description),
	}
	if len(op.Tags) > 0 && strings.TrimSpace(op.Tags[0]) != "" {
		rec.Group = strings.TrimSpace(op.Tags[0])
	}
	if id := naming.Camel(op.OperationID); id != "" {
		rec.OperationID = id
	} else {
		rec.OperationID = DeriveOperationID(method, path)
		rec.DerivedID = true
	}

	params := mergeParams(item.Parameters, op.Parameters)
	declared := make(map[string]Param)
	for _, p := range params {
		if p.Value == nil {
			continue
		}
		param := toParam(r, p.Value, opPtr)
		switch p.Value.In {
		case openapi3.ParameterInPath:
			declared[param.Name] = param
		case openapi3.ParameterInQuery:
			rec.QueryParams = append(rec.QueryParams, param)
		}
	}
	// Path params follow placeholder order; undeclared placeholders still
	// become required, untyped params.
	for _, name := range PathPlaceholders(path) {
		param, ok := declared[name]
		if !ok {
			param = Param{Name: name}
		}
		param.Required = true
		rec.PathParams = append(rec.PathParams, param)
	}

	if op.RequestBody != nil && op.RequestBody.Value != nil {
		body := op.RequestBody.Value
		if mime, media := pickMedia(body.Content); media != nil {
			rec.RequestBody = r.convert(media.Schema, opPtr+"/requestBody/content/"+escapePointer(mime)+"/schema", 0)
			rec.BodyRequired = body.Required
		}
	}

	if status, resp := pickResponse(op.Responses); resp != nil {
		rec.ResponseStatus = status
		if mime, media := pickMedia(resp.Content); media != nil {
			rec.Response = r.convert(media.Schema, opPtr+"/responses/"+status+"/content/"+escapePointer(mime)+"/schema", 0)
		}
	}
	return rec
}

// mergeParams applies path-level parameters first; operation-level
// parameters with the same (in, name) override them in place.
func mergeParams(pathLevel, opLevel openapi3.Parameters) openapi3.Parameters {
	out := make(openapi3.Parameters, 0, len(pathLevel)+len(opLevel))
	pos := make(map[string]int)
	for _, list := range []openapi3.Parameters{pathLevel, opLevel} {
		for _, p := range list {
			if p == nil || p.Value == nil {
				continue
			}
			key := p.Value.In + ":" + p.Value.Name
			if i, ok := pos[key]; ok {
				out[i] = p
				continue
			}
			pos[key] = len(out)
			out = append(out, p)
		}
	}
	return out
}

func toParam(r *reader, p *openapi3.Parameter, opPtr string) Param {
	param := Param{Name: strings.TrimSpace(p.Name), Required: p.Required}
	if p.Schema != nil {
		param.Schema = r.convert(p.Schema, opPtr+"/parameters", 0)
		if s := p.Schema.Value; s != nil {
			switch s.Type {
			case TypeString, TypeInteger, TypeNumber, TypeBoolean:
				param.Type = s.Type
			}
			param.Format = s.Format
		}
	}
	return param
}

var placeholderRe = regexp.MustCompile(`\{([^{}]+)\}`)

// PathPlaceholders returns the {param} names of a path template in order.
func PathPlaceholders(path string) []string {
	var names []string
	for _, m := range placeholderRe.FindAllStringSubmatch(path, -1) {
		names = append(names, m[1])
	}
	return names
}

// pickMedia prefers application/json, then any +json type, then the first
// media type in lexical order.
func pickMedia(content openapi3.Content) (string, *openapi3.MediaType) {
	if len(content) == 0 {
		return "", nil
	}
	if m := content["application/json"]; m != nil {
		return "application/json", m
	}
	keys := sortedKeys(content)
	for _, k := range keys {
		if strings.HasSuffix(k, "+json") && content[k] != nil {
			return k, content[k]
		}
	}
	for _, k := range keys {
		if content[k] != nil {
			return k, content[k]
		}
	}
	return "", nil
}

// pickResponse returns the first of 200/201 found, else the lowest other
// 2xx status.
func pickResponse(responses openapi3.Responses) (string, *openapi3.Response) {
	for _, code := range []string{"200", "201"} {
		if rr := responses[code]; rr != nil && rr.Value != nil {
			return code, rr.Value
		}
	}
	for _, code := range sortedKeys(responses) {
		if len(code) == 3 && code[0] == '2' {
			if rr := responses[code]; rr != nil && rr.Value != nil {
				return code, rr.Value
			}
		}
	}
	return "", nil
}

// DeriveOperationID names an operation from its verb and path: the last
// non-placeholder segment is the resource, singular or plural depending on
// the verb. GET on a path ending in a placeholder reads one item
// (get<Singular>); any other GET lists (list<Plural>). The suffix-based
// inflection can collide or misspell irregular nouns.
func DeriveOperationID(method HttpMethod, path string) string {
	segments := strings.FieldsFunc(path, func(r rune) bool { return r == '/' })
	resource := ""
	endsWithParam := false
	for _, seg := range segments {
		if placeholderRe.MatchString(seg) {
			endsWithParam = true
			continue
		}
		resource = seg
		endsWithParam = false
	}
	if resource == "" {
		resource = "root"
	}
	one := naming.Singular(naming.Pascal(resource))
	switch method {
	case GET:
		if endsWithParam {
			return "get" + one
		}
		return "list" + naming.Plural(one)
	case POST:
		return "create" + one
	case PUT:
		return "update" + one
	case PATCH:
		return "patch" + one
	case DELETE:
		return "delete" + one
	}
	return strings.ToLower(string(method)) + one
}

func allowByTags(tags []string, cfg *groupConfig) bool {
	if len(cfg.includeTags) > 0 {
		ok := false
		for _, t := range tags {
			if _, yes := cfg.includeTags[t]; yes {
				ok = true
				break
			}
		}
		if !ok {
			return false
		}
	}
	for _, t := range tags {
		if _, blocked := cfg.excludeTags[t]; blocked {
			return false
		}
	}
	return true
}

func allowByPath(path string, cfg *groupConfig) bool {
	if len(cfg.pathRes) == 0 {
		return true
	}
	for _, re := range cfg.pathRes {
		if re.MatchString(path) {
			return true
		}
	}
	return false
}
