package spec

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/getkin/kin-openapi/openapi3"
)

const petstore = `openapi: 3.0.3
info:
  title: Petstore
  version: "1.0.0"
paths:
  /pets:
    get:
      tags: [pets]
      parameters:
        - in: query
          name: limit
          schema: { type: integer }
        - in: query
          name: status
          required: true
          schema: { type: string }
      responses:
        "200":
          description: ok
          content:
            application/json:
              schema:
                type: array
                items:
                  $ref: '#/components/schemas/Pet'
    post:
      tags: [pets]
      requestBody:
        required: true
        content:
          application/json:
            schema:
              $ref: '#/components/schemas/NewPet'
      responses:
        "201":
          description: created
          content:
            application/json:
              schema:
                $ref: '#/components/schemas/Pet'
  /pets/{petId}:
    parameters:
      - in: path
        name: petId
        required: true
        schema: { type: integer }
    get:
      tags: [pets]
      responses:
        "200":
          description: ok
          content:
            application/json:
              schema:
                $ref: '#/components/schemas/Pet'
    put:
      tags: [pets]
      requestBody:
        content:
          application/json:
            schema:
              $ref: '#/components/schemas/NewPet'
      responses:
        "200":
          description: ok
          content:
            application/json:
              schema:
                $ref: '#/components/schemas/Pet'
    delete:
      tags: [pets]
      responses:
        "204":
          description: deleted
  /owners/{ownerId}/pets/{petId}/visits:
    get:
      parameters:
        - in: path
          name: petId
          required: true
          schema: { type: integer }
        - in: path
          name: ownerId
          required: true
          schema: { type: string }
      responses:
        "200":
          description: ok
          content:
            application/json:
              schema:
                type: array
                items:
                  $ref: '#/components/schemas/Visit'
components:
  schemas:
    Pet:
      type: object
      required: [id, name]
      properties:
        name: { type: string }
        id: { type: integer, format: int64 }
        tag: { type: string }
        status:
          type: string
          enum: [available, pending, sold]
        owner:
          $ref: '#/components/schemas/Owner'
        createdAt: { type: string, format: date-time }
    NewPet:
      allOf:
        - $ref: '#/components/schemas/PetBase'
        - type: object
          required: [tag]
          properties:
            tag: { type: string, format: uuid }
    PetBase:
      type: object
      required: [name]
      properties:
        name: { type: string }
        tag: { type: string }
    Owner:
      type: object
      properties:
        email: { type: string, format: email }
        pets:
          type: array
          items:
            $ref: '#/components/schemas/Pet'
        manager:
          $ref: '#/components/schemas/Owner'
    Choice:
      oneOf:
        - type: string
        - type: integer
    Visit:
      type: object
      properties:
        at: { type: string, format: date }
`

func readPetstore(t *testing.T) (*Document, *SchemaIndex) {
	t.Helper()
	doc, err := LoadData(context.Background(), []byte(petstore), "petstore.yaml")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	idx, err := Read(doc)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	return doc, idx
}

func propNames(rec *SchemaRecord) string {
	names := make([]string, 0, len(rec.Properties))
	for _, p := range rec.Properties {
		names = append(names, p.Name)
	}
	return strings.Join(names, ",")
}

func TestRead_DocumentOrder(t *testing.T) {
	t.Parallel()
	_, idx := readPetstore(t)
	if got := strings.Join(idx.Names(), ","); got != "Pet,NewPet,PetBase,Owner,Choice,Visit" {
		t.Fatalf("names: got %s", got)
	}
	pet, _ := idx.Get("Pet")
	if got := propNames(pet); got != "name,id,tag,status,owner,createdAt" {
		t.Fatalf("pet properties: got %s", got)
	}
	if !pet.IsRequired("id") || !pet.IsRequired("name") || pet.IsRequired("tag") {
		t.Fatalf("pet required: got %v", pet.Required)
	}
	if status := pet.Property("status"); !status.IsEnum() || strings.Join(status.EnumValues, "|") != "available|pending|sold" {
		t.Fatalf("status enum: got %+v", status)
	}
	if owner := pet.Property("owner"); owner.Kind != KindReference || owner.Ref != "Owner" {
		t.Fatalf("owner: expected reference to Owner, got %+v", owner)
	}
}

func TestRead_SchemaDeclarationOrder(t *testing.T) {
	t.Parallel()
	cases := map[string]string{
		"openapi3": `openapi: 3.0.3
info: {title: Order, version: "1.0.0"}
paths: {}
components:
  schemas:
    Zebra:
      type: object
      properties:
        b: {type: string}
        a: {type: string}
    Apple:
      type: object
      properties:
        x: {type: string}
`,
		"swagger2": `swagger: "2.0"
info: {title: Order, version: "1.0.0"}
paths: {}
definitions:
  Zebra:
    type: object
    properties:
      b: {type: string}
      a: {type: string}
  Apple:
    type: object
    properties:
      x: {type: string}
`,
	}
	for name, src := range cases {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			doc, err := LoadData(context.Background(), []byte(src), name+".yaml")
			if err != nil {
				t.Fatalf("load: %v", err)
			}
			idx, err := Read(doc)
			if err != nil {
				t.Fatalf("read: %v", err)
			}
			if got := strings.Join(idx.Names(), ","); got != "Zebra,Apple" {
				t.Fatalf("names: got %s want Zebra,Apple", got)
			}
			zebra, _ := idx.Get("Zebra")
			if got := propNames(zebra); got != "b,a" {
				t.Fatalf("zebra properties: got %s", got)
			}
		})
	}
}

func TestRead_AllOfMerge(t *testing.T) {
	t.Parallel()
	_, idx := readPetstore(t)
	rec, ok := idx.Get("NewPet")
	if !ok {
		t.Fatalf("NewPet missing")
	}
	if rec.Kind != KindObject {
		t.Fatalf("kind: got %s", rec.Kind)
	}
	if got := propNames(rec); got != "name,tag" {
		t.Fatalf("properties: got %s", got)
	}
	if rec.Property("tag").Format != "uuid" {
		t.Fatalf("later member must override tag")
	}
	if !rec.IsRequired("name") || !rec.IsRequired("tag") {
		t.Fatalf("required must be the union, got %v", rec.Required)
	}
}

func TestRead_SelfReference(t *testing.T) {
	t.Parallel()
	_, idx := readPetstore(t)
	owner, _ := idx.Get("Owner")
	manager := owner.Property("manager")
	if manager.Kind != KindReference || manager.Ref != "Owner" {
		t.Fatalf("manager: got %+v", manager)
	}
	if idx.Resolve(manager) != owner {
		t.Fatalf("resolve must yield the Owner record")
	}
	pets := owner.Property("pets")
	if pets.Kind != KindArray || pets.Items.Ref != "Pet" {
		t.Fatalf("pets: got %+v", pets)
	}
}

func TestRead_UnsupportedShapeIsUnknown(t *testing.T) {
	t.Parallel()
	_, idx := readPetstore(t)
	choice, _ := idx.Get("Choice")
	if choice.Kind != KindUnknown || choice.Reason == "" {
		t.Fatalf("choice: got %+v", choice)
	}
}

func TestRead_MissingSchemas(t *testing.T) {
	t.Parallel()
	doc, err := LoadData(context.Background(), []byte(`openapi: 3.0.0
info: { title: t, version: "1" }
paths: {}
`), "empty.yaml")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	_, err = Read(doc)
	var se *SpecError
	if !errors.As(err, &se) || se.Code != MissingSchemasError {
		t.Fatalf("expected MissingSchemasError, got %v", err)
	}
}

func TestRead_UnresolvedRef(t *testing.T) {
	t.Parallel()
	doc := &Document{T: &openapi3.T{
		Components: &openapi3.Components{Schemas: openapi3.Schemas{
			"A": &openapi3.SchemaRef{Value: &openapi3.Schema{
				Type: "object",
				Properties: openapi3.Schemas{
					"b": &openapi3.SchemaRef{Ref: "#/components/schemas/Missing"},
				},
			}},
		}},
	}}
	_, err := Read(doc)
	var se *SpecError
	if !errors.As(err, &se) || se.Code != UnresolvedRefError {
		t.Fatalf("expected UnresolvedRefError, got %v", err)
	}
	if se.JSONPointer != "#/components/schemas/A/properties/b" {
		t.Fatalf("pointer: got %q", se.JSONPointer)
	}
}
