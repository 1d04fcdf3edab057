package validatoremitter

import (
	"context"
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mark3labs/swagger2client/internal/emitter"
	"github.com/mark3labs/swagger2client/internal/emitter/typeemitter"
	"github.com/mark3labs/swagger2client/internal/spec"
)

const doc = `openapi: 3.0.3
info: { title: t, version: "1" }
paths: {}
components:
  schemas:
    Account:
      type: object
      required: [id, email, kind]
      properties:
        id: { type: string, format: uuid }
        email: { type: string, format: email }
        kind: { type: string, enum: [personal, business] }
        birthday: { type: string, format: date }
        lastLogin: { type: string, format: date-time, nullable: true }
        website: { type: string, format: uri }
        score: { type: number }
        visits: { type: integer }
        active: { type: boolean }
        address:
          type: object
          required: [city]
          properties:
            city: { type: string }
            zip: { type: string }
        friends:
          type: array
          items: { $ref: '#/components/schemas/Account' }
        plan: { $ref: '#/components/schemas/Plan' }
    Plan:
      type: string
      enum: [free, pro]
    Anything:
      anyOf:
        - type: string
        - type: integer
`

func input(t *testing.T, opts emitter.Options) *emitter.Input {
	t.Helper()
	d, err := spec.LoadData(context.Background(), []byte(doc), "t.yaml")
	require.NoError(t, err)
	idx, err := spec.Read(d)
	require.NoError(t, err)
	return &emitter.Input{Index: idx, Options: opts}
}

func TestEmitAccount(t *testing.T) {
	t.Parallel()
	out, err := Emit(context.Background(), input(t, emitter.DefaultOptions()))
	require.NoError(t, err)
	account := out.Artifacts[0]
	assert.Equal(t, "schemas/account.schema.ts", account.Path)
	assert.Equal(t, emitter.GeneratedHeader+`import { z } from "zod";
import type { Account } from "../types/account";
import { PlanSchema } from "./plan.schema";

export const AccountSchema: z.ZodType<Account> = z.object({
  id: z.string().uuid(),
  email: z.string().email(),
  kind: z.enum(["personal", "business"]),
  birthday: z.string().regex(/^\d{4}-\d{2}-\d{2}$/).optional(),
  lastLogin: z.string().datetime({ offset: true }).nullable().optional(),
  website: z.string().url().optional(),
  score: z.number().optional(),
  visits: z.number().int().optional(),
  active: z.boolean().optional(),
  address: z.object({
    city: z.string(),
    zip: z.string().optional(),
  }).optional(),
  friends: z.array(z.lazy(() => AccountSchema)).optional(),
  plan: z.lazy(() => PlanSchema).optional(),
});
`, account.Content)

	require.Len(t, out.Warnings, 1)
	assert.Contains(t, out.Warnings[0].Error(), "Anything")
	anything := out.Artifacts[2]
	assert.Contains(t, anything.Content, "export const AnythingSchema: z.ZodType<Anything> = z.unknown();")
	assert.Equal(t, "schemas/index.ts", out.Artifacts[3].Path)
}

const unsupportedDoc = `openapi: 3.0.3
info: { title: t, version: "1" }
paths: {}
components:
  schemas:
    Widget:
      type: object
      properties:
        meta:
          oneOf:
            - type: string
            - type: integer
        tags:
          type: array
          items:
            anyOf:
              - type: string
              - type: boolean
    Anything:
      anyOf:
        - type: string
        - type: integer
`

func TestWarningsMatchTypeEmitter(t *testing.T) {
	t.Parallel()
	d, err := spec.LoadData(context.Background(), []byte(unsupportedDoc), "t.yaml")
	require.NoError(t, err)
	idx, err := spec.Read(d)
	require.NoError(t, err)
	in := &emitter.Input{Index: idx, Options: emitter.DefaultOptions()}

	schemas, err := Emit(context.Background(), in)
	require.NoError(t, err)
	types, err := typeemitter.Emit(context.Background(), in)
	require.NoError(t, err)

	where := func(warnings []error) []string {
		var out []string
		for _, w := range warnings {
			var se *emitter.SchemaEmitError
			require.ErrorAs(t, w, &se)
			out = append(out, se.Schema+" "+strings.SplitN(se.Reason, ":", 2)[0])
		}
		return out
	}
	want := []string{"Widget Widget.meta", "Widget Widget.tags[]", "Anything Anything"}
	assert.Equal(t, want, where(types.Warnings))
	assert.Equal(t, want, where(schemas.Warnings))
}

func TestEmitNativeEnum(t *testing.T) {
	t.Parallel()
	opts := emitter.DefaultOptions()
	opts.EnumAsUnion = false
	out, err := Emit(context.Background(), input(t, opts))
	require.NoError(t, err)
	plan := out.Artifacts[1]
	assert.Contains(t, plan.Content, `import { Plan } from "../types/plan";`)
	assert.Contains(t, plan.Content, "= z.nativeEnum(Plan);")
}

var (
	typeFieldRe      = regexp.MustCompile(`(?m)^\s+("?[\w$-]+"?)(\??): `)
	validatorFieldRe = regexp.MustCompile(`^  ("?[\w$-]+"?): (.*),$`)
	objectStartRe    = regexp.MustCompile(`^  ("?[\w$-]+"?): z\.object\(\{$`)
)

// Every top-level property is optional in the type iff it is optional in
// the validator.
func TestOptionalityAgreesWithTypes(t *testing.T) {
	t.Parallel()
	in := input(t, emitter.DefaultOptions())
	types, err := typeemitter.Emit(context.Background(), in)
	require.NoError(t, err)
	schemas, err := Emit(context.Background(), in)
	require.NoError(t, err)

	for i, name := range in.Index.Names() {
		rec, _ := in.Index.Get(name)
		if rec.Kind != spec.KindObject {
			continue
		}
		typeOptional := map[string]bool{}
		for _, m := range typeFieldRe.FindAllStringSubmatch(types.Artifacts[i].Content, -1) {
			typeOptional[m[1]] = m[2] == "?"
		}
		validatorOptional := map[string]bool{}
		pending := ""
		for _, line := range strings.Split(schemas.Artifacts[i].Content, "\n") {
			// nested object lines are indented deeper than two spaces
			if !strings.HasPrefix(line, "  ") || strings.HasPrefix(line, "   ") {
				continue
			}
			if strings.HasPrefix(line, "  }") && pending != "" {
				validatorOptional[pending] = strings.HasSuffix(line, ".optional(),")
				pending = ""
				continue
			}
			if m := validatorFieldRe.FindStringSubmatch(line); m != nil {
				validatorOptional[m[1]] = strings.HasSuffix(m[2], ".optional()")
			} else if m := objectStartRe.FindStringSubmatch(line); m != nil {
				pending = m[1]
			}
		}
		for _, p := range rec.Properties {
			assert.Equal(t, typeOptional[p.Name], validatorOptional[p.Name], "%s.%s", name, p.Name)
			assert.Equal(t, !rec.IsRequired(p.Name), typeOptional[p.Name], "%s.%s", name, p.Name)
		}
	}
}
