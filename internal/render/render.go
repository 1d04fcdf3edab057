// Package render executes the text templates behind the larger generated
// files. Each template has an id (its file name without ".tmpl"); callers
// may replace any id with their own template source.
package render

import (
	"bytes"
	"embed"
	"encoding/json"
	"fmt"
	"path"
	"sort"
	"strconv"
	"strings"
	"sync"
	"text/template"

	"github.com/mark3labs/swagger2client/internal/naming"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

var funcs = template.FuncMap{
	"pascal": naming.Pascal,
	"camel":  naming.Camel,
	"kebab":  naming.Kebab,
	"label":  naming.Label,
	"key":    naming.PropertyKey,
	"access": naming.Accessor,
	"quote":  strconv.Quote,
	"join":   strings.Join,
	"lower":  strings.ToLower,
	"json":   toJSON,
	"add":    func(a, b int) int { return a + b },
}

// Renderer holds the parsed default templates plus any overrides.
type Renderer struct {
	tmpl *template.Template
	ids  map[string]struct{}
}

// New parses the embedded templates and applies overrides (template id →
// template source). Overriding an id that does not exist is an error.
func New(overrides map[string]string) (*Renderer, error) {
	root := template.New("").Funcs(funcs)
	entries, err := templateFS.ReadDir("templates")
	if err != nil {
		return nil, err
	}
	ids := make(map[string]struct{}, len(entries))
	for _, e := range entries {
		id := strings.TrimSuffix(e.Name(), ".tmpl")
		src, err := templateFS.ReadFile(path.Join("templates", e.Name()))
		if err != nil {
			return nil, err
		}
		if _, err := root.New(id).Parse(string(src)); err != nil {
			return nil, fmt.Errorf("render: parse %s: %w", id, err)
		}
		ids[id] = struct{}{}
	}

	keys := make([]string, 0, len(overrides))
	for id := range overrides {
		keys = append(keys, id)
	}
	sort.Strings(keys)
	for _, id := range keys {
		if _, ok := ids[id]; !ok {
			return nil, fmt.Errorf("render: unknown template id %q", id)
		}
		if _, err := root.New(id).Parse(overrides[id]); err != nil {
			return nil, fmt.Errorf("render: parse override %s: %w", id, err)
		}
	}
	return &Renderer{tmpl: root, ids: ids}, nil
}

var (
	defaultOnce     sync.Once
	defaultRenderer *Renderer
)

// Default returns the renderer for the embedded templates.
func Default() *Renderer {
	defaultOnce.Do(func() {
		r, err := New(nil)
		if err != nil {
			panic(err)
		}
		defaultRenderer = r
	})
	return defaultRenderer
}

// Render executes template id with vars.
func (r *Renderer) Render(id string, vars any) (string, error) {
	if _, ok := r.ids[id]; !ok {
		return "", fmt.Errorf("render: unknown template id %q", id)
	}
	var buf bytes.Buffer
	if err := r.tmpl.ExecuteTemplate(&buf, id, vars); err != nil {
		return "", fmt.Errorf("render %s: %w", id, err)
	}
	return buf.String(), nil
}

// IDs lists the known template ids in lexical order.
func (r *Renderer) IDs() []string {
	out := make([]string, 0, len(r.ids))
	for id := range r.ids {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

func toJSON(v any) (string, error) {
	b, err := json.Marshal(v)
	return string(b), err
}
