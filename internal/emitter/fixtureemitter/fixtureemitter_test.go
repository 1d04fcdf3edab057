package fixtureemitter

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
      required: [id, name]
      properties:
        id: { type: integer }
        name: { type: string }
    Order:
      type: object
      required: [id, widgets]
      properties:
        id: { type: string, format: uuid }
        widgets:
          type: array
          items: { $ref: '#/components/schemas/Widget' }
        parent: { $ref: '#/components/schemas/Order' }
        state: { type: string, enum: [open, closed] }
        total: { type: number }
        contactEmail: { type: string }
    Mixed:
      oneOf:
        - type: string
        - type: integer
`

func input(t *testing.T) *emitter.Input {
	t.Helper()
	d, err := spec.LoadData(context.Background(), []byte(doc), "t.yaml")
	require.NoError(t, err)
	idx, err := spec.Read(d)
	require.NoError(t, err)
	opts := emitter.DefaultOptions()
	opts.FixtureCount = 2
	return &emitter.Input{Index: idx, Options: opts}
}

func TestEmit(t *testing.T) {
	t.Parallel()
	out, err := Emit(context.Background(), input(t))
	require.NoError(t, err)

	set := emitter.NewArtifactSet()
	set.AddAll(out.Artifacts)
	assert.Equal(t, []string{"fixtures:helpers", "fixtures:Widget", "fixtures:Order", "fixtures:Mixed", "fixtures:index"}, set.Keys())

	widget, _ := set.Get("fixtures:Widget")
	assert.Equal(t, "fixtures/widget.fixtures.ts", widget.Path)
	assert.Contains(t, widget.Content, `export const WidgetFakeData: Widget[] = [
  {
    "id": 1,
    "name": "Alice Johnson"
  },
  {
    "id": 2,
    "name": "Bob Smith"
  }
];`)
	assert.Contains(t, widget.Content, `export function randomWidget(depth = 0): Widget {
  if (depth > h.MAX_DEPTH) return {} as Widget;
  return {
    id: h.randomInt(1, 10000),
    name: h.pick(h.VOCABULARY.person),
  };
}`)

	order, _ := set.Get("fixtures:Order")
	assert.Contains(t, order.Content, `import { randomWidget } from "./widget.fixtures";`)
	assert.NotContains(t, order.Content, `from "./order.fixtures"`)
	assert.Contains(t, order.Content, "id: h.randomUUID(),")
	assert.Contains(t, order.Content, "widgets: Array.from({ length: depth < h.OPTIONAL_DEPTH ? h.randomInt(1, 2) : 0 }, () => randomWidget(depth + 1)),")
	assert.Contains(t, order.Content, "...(depth < h.OPTIONAL_DEPTH ? { parent: randomOrder(depth + 1) } : {}),")
	assert.Contains(t, order.Content, `state: h.pick(["open", "closed"] as const),`)
	assert.Contains(t, order.Content, "total: h.randomFloat(0, 1000),")
	assert.Contains(t, order.Content, "contactEmail: h.randomEmail(),")

	mixed, _ := set.Get("fixtures:Mixed")
	assert.Contains(t, mixed.Content, "export const MixedFakeData: Mixed[] = [];")
	assert.Contains(t, mixed.Content, "  return null;\n")

	require.Len(t, out.Warnings, 1, "only the unsupported shape warns; every instance verifies")
	var se *emitter.SchemaEmitError
	require.True(t, errors.As(out.Warnings[0], &se))
	assert.Equal(t, "Mixed", se.Schema)

	helpers, _ := set.Get("fixtures:helpers")
	assert.Contains(t, helpers.Content, "export const OPTIONAL_DEPTH = 2;")
	assert.Contains(t, helpers.Content, `"person":["Alice Johnson",`)
}

func TestDeterministic(t *testing.T) {
	t.Parallel()
	a, err := Emit(context.Background(), input(t))
	require.NoError(t, err)
	b, err := Emit(context.Background(), input(t))
	require.NoError(t, err)
	require.Equal(t, len(a.Artifacts), len(b.Artifacts))
	for i := range a.Artifacts {
		assert.Equal(t, a.Artifacts[i].Content, b.Artifacts[i].Content, a.Artifacts[i].Key)
	}
}

func TestNativeEnumCast(t *testing.T) {
	t.Parallel()
	in := input(t)
	in.Options.EnumAsUnion = false
	out, err := Emit(context.Background(), in)
	require.NoError(t, err)
	set := emitter.NewArtifactSet()
	set.AddAll(out.Artifacts)
	order, _ := set.Get("fixtures:Order")
	assert.Contains(t, order.Content, "] as unknown as Order[];")
}
