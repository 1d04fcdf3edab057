package componentemitter

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mark3labs/swagger2client/internal/emitter"
	"github.com/mark3labs/swagger2client/internal/spec"
)

const doc = `openapi: 3.0.3
info: { title: t, version: "1" }
paths:
  /tickets:
    get:
      tags: [tickets]
      responses:
        "200":
          description: ok
          content:
            application/json:
              schema: { $ref: '#/components/schemas/TicketPage' }
    post:
      tags: [tickets]
      requestBody:
        content:
          application/json:
            schema: { $ref: '#/components/schemas/Ticket' }
      responses:
        "201": { description: created }
  /tickets/{id}:
    patch:
      tags: [tickets]
      parameters:
        - { in: path, name: id, required: true, schema: { type: integer } }
      requestBody:
        content:
          application/json:
            schema: { $ref: '#/components/schemas/Ticket' }
      responses:
        "200": { description: ok }
  /agents:
    get:
      tags: [agents]
      responses:
        "200":
          description: ok
          content:
            application/json:
              schema:
                type: array
                items: { $ref: '#/components/schemas/Agent' }
components:
  schemas:
    Ticket:
      type: object
      required: [id, title]
      properties:
        id: { type: integer }
        title: { type: string }
        open: { type: boolean }
        priority: { type: string, enum: [low, high] }
        due: { type: string, format: date }
        reportedAt: { type: string, format: date-time }
        reporter: { type: string, format: email }
        labels: { type: array, items: { type: string } }
    TicketPage:
      type: object
      properties:
        data:
          type: array
          items: { $ref: '#/components/schemas/Ticket' }
        total: { type: integer }
    Agent:
      type: object
      properties:
        name: { type: string }
    ErrorResponse:
      type: object
      properties:
        message: { type: string }
`

func input(t *testing.T) *emitter.Input {
	t.Helper()
	d, err := spec.LoadData(context.Background(), []byte(doc), "t.yaml")
	require.NoError(t, err)
	idx, err := spec.Read(d)
	require.NoError(t, err)
	ops, err := spec.Group(d)
	require.NoError(t, err)
	return &emitter.Input{Index: idx, Operations: ops, Options: emitter.DefaultOptions()}
}

func TestEmitClassification(t *testing.T) {
	t.Parallel()
	out, err := Emit(context.Background(), input(t))
	require.NoError(t, err)

	set := emitter.NewArtifactSet()
	set.AddAll(out.Artifacts)
	assert.Equal(t, []string{
		"components:Ticket:card",
		"components:Ticket:list",
		"components:Ticket:create",
		"components:Ticket:edit",
		"components:Agent:card",
		"components:Agent:list",
		"components:index",
	}, set.Keys(), "list and form scaffolds of one schema coexist")

	a, ok := set.Get("components:Ticket:list")
	require.True(t, ok)
	assert.Equal(t, "components/ticket/TicketList.tsx", a.Path)
	assert.Contains(t, a.Content, `import type { Ticket } from "../../types/ticket";`)
	assert.Contains(t, a.Content, "export function TicketList(")
	assert.Contains(t, a.Content, "<tr key={String(item.id)}>")
	assert.Contains(t, a.Content, "<th>Priority</th>")
	assert.NotContains(t, a.Content, "<th>Due</th>", "only the first columns are listed")
	assert.Contains(t, a.Content, "<td>{formatCell(item.title)}</td>")
	assert.Contains(t, a.Content, "onPageChange?.(page + 1)")

	a, ok = set.Get("components:Agent:list")
	require.True(t, ok)
	assert.Contains(t, a.Content, "<tr key={index}>")
}

func TestFormWidgets(t *testing.T) {
	t.Parallel()
	out, err := Emit(context.Background(), input(t))
	require.NoError(t, err)
	set := emitter.NewArtifactSet()
	set.AddAll(out.Artifacts)

	create, ok := set.Get("components:Ticket:create")
	require.True(t, ok)
	src := create.Content
	assert.Contains(t, src, `import { TicketSchema } from "../../schemas/ticket.schema";`)
	assert.Contains(t, src, "initial?: Partial<Ticket>;")
	assert.Contains(t, src, `submitLabel = "Create"`)
	assert.Contains(t, src, `<input type="number" name={"id"} required value=`)
	assert.Contains(t, src, `<input type={"text"} name={"title"} required value=`)
	assert.Contains(t, src, `<input type="checkbox" name={"open"} checked=`)
	assert.Contains(t, src, `<option value={"high"}>{"high"}</option>`)
	assert.Contains(t, src, `<input type={"date"} name={"due"} value=`)
	assert.Contains(t, src, `<input type="datetime-local" name={"reportedAt"} value=`)
	assert.Contains(t, src, `<input type={"email"} name={"reporter"} value=`)
	assert.Contains(t, src, `<textarea name={"labels"} defaultValue=`)
	assert.Contains(t, src, "const parsed = TicketSchema.safeParse(values);")

	edit, ok := set.Get("components:Ticket:edit")
	require.True(t, ok)
	assert.Contains(t, edit.Content, "initial: Partial<Ticket>;")
	assert.Contains(t, edit.Content, `submitLabel = "Save"`)
}

func TestTogglesSuppressScaffolds(t *testing.T) {
	t.Parallel()
	in := input(t)
	in.Options.GenerateForms = false
	in.Options.GenerateLists = false
	out, err := Emit(context.Background(), in)
	require.NoError(t, err)
	set := emitter.NewArtifactSet()
	set.AddAll(out.Artifacts)
	assert.Equal(t, []string{"components:Ticket:card", "components:Agent:card", "components:index"}, set.Keys())
}
