package spec

import (
	"sort"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// PropertyOrder maps a JSON pointer (for example
// "#/components/schemas/Pet/properties") to the mapping keys found there, in
// document order. The OpenAPI object model keeps properties in Go maps, so
// this index is the only record of the author's field order.
type PropertyOrder map[string][]string

// BuildPropertyOrder indexes every "properties" mapping, the named schema
// table and the top-level "paths" mapping of a YAML or JSON document.
func BuildPropertyOrder(data []byte) (PropertyOrder, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, err
	}
	order := make(PropertyOrder)
	if len(root.Content) == 0 {
		return order, nil
	}
	top := root.Content[0]
	if top.Kind == yaml.MappingNode {
		for i := 0; i+1 < len(top.Content); i += 2 {
			if top.Content[i].Value == "paths" {
				if paths := deref(top.Content[i+1]); paths.Kind == yaml.MappingNode {
					order["#/paths"] = mappingKeys(paths)
				}
			}
		}
	}
	order.walk(top, "#", 0)
	return order, nil
}

// Keys returns the ordered keys recorded at pointer, or nil.
func (o PropertyOrder) Keys(pointer string) []string {
	if o == nil {
		return nil
	}
	return o[pointer]
}

// Sort orders keys by their recorded position at pointer. Keys without a
// recorded position follow in lexical order.
func (o PropertyOrder) Sort(pointer string, keys []string) []string {
	pos := make(map[string]int)
	for i, k := range o.Keys(pointer) {
		pos[k] = i
	}
	known := make([]string, 0, len(keys))
	var rest []string
	for _, k := range keys {
		if _, ok := pos[k]; ok {
			known = append(known, k)
		} else {
			rest = append(rest, k)
		}
	}
	sort.SliceStable(known, func(i, j int) bool { return pos[known[i]] < pos[known[j]] })
	sort.Strings(rest)
	return append(known, rest...)
}

// rebase moves the entries at from, and below it, onto to.
func (o PropertyOrder) rebase(from, to string) PropertyOrder {
	out := make(PropertyOrder, len(o))
	for k, v := range o {
		if k == from || strings.HasPrefix(k, from+"/") {
			k = to + strings.TrimPrefix(k, from)
		}
		out[k] = v
	}
	return out
}

const maxOrderDepth = 64

func (o PropertyOrder) walk(n *yaml.Node, pointer string, depth int) {
	if depth > maxOrderDepth {
		return
	}
	n = deref(n)
	switch n.Kind {
	case yaml.MappingNode:
		for i := 0; i+1 < len(n.Content); i += 2 {
			key := n.Content[i].Value
			child := deref(n.Content[i+1])
			childPtr := pointer + "/" + escapePointer(key)
			if child.Kind == yaml.MappingNode && (key == "properties" || isSchemaTable(childPtr)) {
				o[childPtr] = mappingKeys(child)
			}
			o.walk(child, childPtr, depth+1)
		}
	case yaml.SequenceNode:
		for i, item := range n.Content {
			o.walk(item, pointer+"/"+strconv.Itoa(i), depth+1)
		}
	}
}

// isSchemaTable reports the pointers holding the named schemas of an
// OpenAPI 3 or Swagger 2 document.
func isSchemaTable(pointer string) bool {
	return pointer == "#/components/schemas" || pointer == "#/definitions"
}

func deref(n *yaml.Node) *yaml.Node {
	for n != nil && n.Kind == yaml.AliasNode && n.Alias != nil {
		n = n.Alias
	}
	return n
}

func mappingKeys(n *yaml.Node) []string {
	keys := make([]string, 0, len(n.Content)/2)
	for i := 0; i+1 < len(n.Content); i += 2 {
		keys = append(keys, n.Content[i].Value)
	}
	return keys
}

var pointerEscaper = strings.NewReplacer("~", "~0", "/", "~1")

func escapePointer(s string) string { return pointerEscaper.Replace(s) }
