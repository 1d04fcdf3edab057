// Package emitter holds what the artifact emitters share: the artifact
// model, emitter input and output, recoverable warnings, TypeScript type
// expressions and entity classification.
package emitter

import (
	"context"
	"strings"
)

// Kind is one artifact kind. Each kind has one emitter package.
type Kind string

const (
	KindTypes      Kind = "types"
	KindSchemas    Kind = "schemas"
	KindServices   Kind = "services"
	KindViews      Kind = "views"
	KindHooks      Kind = "hooks"
	KindComponents Kind = "components"
	KindMocks      Kind = "mocks"
	KindFixtures   Kind = "fixtures"
)

// AllKinds lists every kind in emission order.
var AllKinds = []Kind{KindTypes, KindSchemas, KindServices, KindViews, KindHooks, KindComponents, KindMocks, KindFixtures}

// ParseKind maps a name to a Kind.
func ParseKind(s string) (Kind, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	for _, k := range AllKinds {
		if string(k) == s {
			return k, true
		}
	}
	return "", false
}

// Artifact is one generated file.
type Artifact struct {
	// Key is the logical name, "<kind>:<subject>[:<variant>]".
	Key  string
	Kind Kind
	// Path is relative to the output root and always uses forward slashes.
	Path    string
	Content string
}

// Key builds a logical artifact key.
func Key(kind Kind, subject string, variant ...string) string {
	parts := append([]string{string(kind), subject}, variant...)
	return strings.Join(parts, ":")
}

// ArtifactSet is an insertion-ordered collection keyed by Artifact.Key.
// Adding an existing key replaces the artifact in place.
type ArtifactSet struct {
	keys  []string
	items map[string]Artifact
}

// NewArtifactSet returns an empty set.
func NewArtifactSet() *ArtifactSet {
	return &ArtifactSet{items: make(map[string]Artifact)}
}

// Add inserts a, replacing any artifact with the same key.
func (s *ArtifactSet) Add(a Artifact) {
	if _, exists := s.items[a.Key]; !exists {
		s.keys = append(s.keys, a.Key)
	}
	s.items[a.Key] = a
}

// AddAll adds every artifact of as in order.
func (s *ArtifactSet) AddAll(as []Artifact) {
	for _, a := range as {
		s.Add(a)
	}
}

// Get returns the artifact stored under key.
func (s *ArtifactSet) Get(key string) (Artifact, bool) {
	a, ok := s.items[key]
	return a, ok
}

// Len is the number of distinct keys.
func (s *ArtifactSet) Len() int { return len(s.keys) }

// Keys returns the keys in insertion order.
func (s *ArtifactSet) Keys() []string { return append([]string(nil), s.keys...) }

// Artifacts returns every artifact in insertion order.
func (s *ArtifactSet) Artifacts() []Artifact {
	out := make([]Artifact, 0, len(s.keys))
	for _, k := range s.keys {
		out = append(out, s.items[k])
	}
	return out
}

// ByKind returns the artifacts of one kind in insertion order.
func (s *ArtifactSet) ByKind(kind Kind) []Artifact {
	var out []Artifact
	for _, k := range s.keys {
		if a := s.items[k]; a.Kind == kind {
			out = append(out, a)
		}
	}
	return out
}

// Output is what one emitter returns: its artifacts plus recoverable
// warnings (SchemaEmitError, OperationEmitError).
type Output struct {
	Artifacts []Artifact
	Warnings  []error
}

func (o *Output) add(a Artifact) { o.Artifacts = append(o.Artifacts, a) }

// Add appends an artifact.
func (o *Output) Add(kind Kind, key, path, content string) {
	o.add(Artifact{Key: key, Kind: kind, Path: path, Content: content})
}

// Warn appends a recoverable warning.
func (o *Output) Warn(err error) { o.Warnings = append(o.Warnings, err) }

// Emitter produces the artifacts of one kind. Emitters only read Input.
type Emitter interface {
	Kind() Kind
	Emit(ctx context.Context, in *Input) (*Output, error)
}

// Func adapts a function to the Emitter interface.
type Func struct {
	K Kind
	F func(ctx context.Context, in *Input) (*Output, error)
}

func (f Func) Kind() Kind { return f.K }

func (f Func) Emit(ctx context.Context, in *Input) (*Output, error) { return f.F(ctx, in) }

// GeneratedHeader starts every generated file.
const GeneratedHeader = "// Code generated by swagger2client. DO NOT EDIT.\n"
