package emitter

import (
	"path"
	"strings"

	"github.com/mark3labs/swagger2client/internal/naming"
	"github.com/mark3labs/swagger2client/internal/render"
	"github.com/mark3labs/swagger2client/internal/spec"
)

// Options are the plain configuration values the emitters accept. They are
// resolved once by the caller; emitters never read files or the environment.
type Options struct {
	// Paths overrides the output sub-directory of a kind. Missing kinds use
	// the kind name.
	Paths map[Kind]string

	EnumAsUnion   bool
	UseReactQuery bool
	GenerateForms bool
	GenerateLists bool
	FixtureCount  int
	MockSeedCount int
	ListColumns   int
	MockPort      int
}

// DefaultOptions returns the generation defaults.
func DefaultOptions() Options {
	return Options{
		EnumAsUnion:   true,
		UseReactQuery: true,
		GenerateForms: true,
		GenerateLists: true,
		FixtureCount:  5,
		MockSeedCount: 3,
		ListColumns:   4,
		MockPort:      3001,
	}
}

// Dir returns the output sub-directory of kind.
func (o Options) Dir(kind Kind) string {
	if p := strings.Trim(path.Clean("/"+o.Paths[kind]), "/"); p != "" {
		return p
	}
	return string(kind)
}

// Input is the read-only state shared by every emitter of one run.
type Input struct {
	Index      *spec.SchemaIndex
	Operations []spec.OperationRecord
	Options    Options
	// Renderer defaults to render.Default() when nil.
	Renderer *render.Renderer
}

// Render executes a template through the input's renderer.
func (in *Input) Render(id string, vars any) (string, error) {
	r := in.Renderer
	if r == nil {
		r = render.Default()
	}
	return r.Render(id, vars)
}

// Group is one service group: the operations sharing a tag.
type Group struct {
	Name       string
	Operations []spec.OperationRecord
}

// Class is the service class name of the group.
func (g Group) Class() string { return naming.TypeName(g.Name) + "Service" }

// File is the file-case name of the group.
func (g Group) File() string { return naming.File(g.Name) }

// Groups returns the operations grouped by service, in first-seen order.
func (in *Input) Groups() []Group {
	var groups []Group
	pos := make(map[string]int)
	for _, op := range in.Operations {
		i, ok := pos[op.Group]
		if !ok {
			i = len(groups)
			pos[op.Group] = i
			groups = append(groups, Group{Name: op.Group})
		}
		groups[i].Operations = append(groups[i].Operations, op)
	}
	return groups
}

// SchemaFile is the file-case base name used for every per-schema artifact.
func SchemaFile(name string) string { return naming.File(name) }

// TypeName is the exported TypeScript identifier of a schema.
func TypeName(name string) string { return naming.TypeName(name) }

// Import returns the module specifier that a file in fromDir uses to
// import target (an extension-less path relative to the output root).
func Import(fromDir, target string) string {
	rel := relPath(fromDir, target)
	if !strings.HasPrefix(rel, ".") {
		rel = "./" + rel
	}
	return rel
}

func relPath(fromDir, target string) string {
	from := splitPath(fromDir)
	to := splitPath(target)
	i := 0
	for i < len(from) && i < len(to)-1 && from[i] == to[i] {
		i++
	}
	parts := make([]string, 0, len(from)-i+len(to)-i)
	for range from[i:] {
		parts = append(parts, "..")
	}
	parts = append(parts, to[i:]...)
	return strings.Join(parts, "/")
}

func splitPath(p string) []string {
	p = strings.Trim(path.Clean("/"+p), "/")
	if p == "" {
		return nil
	}
	return strings.Split(p, "/")
}
