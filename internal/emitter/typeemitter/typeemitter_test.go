package typeemitter

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mark3labs/swagger2client/internal/emitter"
	"github.com/mark3labs/swagger2client/internal/spec"
)

const doc = `openapi: 3.0.3
info: { title: t, version: "1" }
paths: {}
components:
  schemas:
    Widget:
      type: object
      description: A widget.
      required: [id, name]
      properties:
        id: { type: integer }
        name: { type: string }
        color: { type: string, enum: [red, green] }
        parent: { $ref: '#/components/schemas/Widget' }
        owner: { $ref: '#/components/schemas/Owner' }
        meta:
          oneOf:
            - type: string
            - type: integer
    Owner:
      type: object
      properties:
        email: { type: string, nullable: true }
    Color:
      type: string
      enum: [light-blue, dark blue]
    Widgets:
      type: array
      items: { $ref: '#/components/schemas/Widget' }
`

func input(t *testing.T, opts emitter.Options) *emitter.Input {
	t.Helper()
	d, err := spec.LoadData(context.Background(), []byte(doc), "t.yaml")
	require.NoError(t, err)
	idx, err := spec.Read(d)
	require.NoError(t, err)
	return &emitter.Input{Index: idx, Options: opts}
}

func TestEmit(t *testing.T) {
	t.Parallel()
	out, err := Emit(context.Background(), input(t, emitter.DefaultOptions()))
	require.NoError(t, err)
	require.Len(t, out.Artifacts, 5)

	widget := out.Artifacts[0]
	assert.Equal(t, "types:Widget", widget.Key)
	assert.Equal(t, "types/widget.ts", widget.Path)
	assert.Equal(t, emitter.GeneratedHeader+`import type { Owner } from "./owner";

/** A widget. */
export interface Widget {
  id: number;
  name: string;
  color?: "red" | "green";
  parent?: Widget;
  owner?: Owner;
  meta?: unknown;
}
`, widget.Content)

	assert.Contains(t, out.Artifacts[1].Content, "email?: string | null;")
	assert.Contains(t, out.Artifacts[2].Content, `export type Color = "light-blue" | "dark blue";`)
	assert.Contains(t, out.Artifacts[3].Content, "export type Widgets = Widget[];")

	index := out.Artifacts[4]
	assert.Equal(t, "types/index.ts", index.Path)
	assert.Contains(t, index.Content, `export * from "./widget";`)

	require.Len(t, out.Warnings, 1)
	var se *emitter.SchemaEmitError
	require.True(t, errors.As(out.Warnings[0], &se))
	assert.Equal(t, "Widget", se.Schema)
	assert.Contains(t, se.Reason, "Widget.meta")
}

func TestEmitEnumAsTSEnum(t *testing.T) {
	t.Parallel()
	opts := emitter.DefaultOptions()
	opts.EnumAsUnion = false
	opts.Paths = map[emitter.Kind]string{emitter.KindTypes: "models"}
	out, err := Emit(context.Background(), input(t, opts))
	require.NoError(t, err)
	color := out.Artifacts[2]
	assert.Equal(t, "models/color.ts", color.Path)
	assert.Contains(t, color.Content, "export enum Color {\n  LightBlue = \"light-blue\",\n  DarkBlue = \"dark blue\",\n}\n")
}

func TestEnumMembersAreUnique(t *testing.T) {
	t.Parallel()
	assert.Equal(t, []string{"A", "A2", "Value2"}, EnumMembers([]string{"a", "A", "--"}))
}
