package mockserver

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mark3labs/swagger2client/internal/spec"
)

const doc = `openapi: 3.0.3
info: { title: t, version: "1" }
paths:
  /widgets:
    get:
      tags: [widgets]
      responses:
        "200":
          description: ok
          content:
            application/json:
              schema:
                type: array
                items: { $ref: '#/components/schemas/Widget' }
    post:
      tags: [widgets]
      requestBody:
        content:
          application/json:
            schema: { $ref: '#/components/schemas/Widget' }
      responses:
        "201": { description: created }
  /widgets/{id}:
    parameters:
      - { in: path, name: id, required: true, schema: { type: integer } }
    get:
      tags: [widgets]
      responses:
        "200":
          description: ok
          content:
            application/json:
              schema: { $ref: '#/components/schemas/Widget' }
    patch:
      tags: [widgets]
      requestBody:
        content:
          application/json:
            schema: { $ref: '#/components/schemas/Widget' }
      responses:
        "200": { description: ok }
    delete:
      tags: [widgets]
      responses:
        "204": { description: gone }
  /health:
    get:
      responses:
        "200": { description: ok }
components:
  schemas:
    Widget:
      type: object
      required: [id, name]
      properties:
        id: { type: integer }
        name: { type: string }
`

func newServer(t *testing.T) *Server {
	t.Helper()
	d, err := spec.LoadData(context.Background(), []byte(doc), "t.yaml")
	require.NoError(t, err)
	idx, err := spec.Read(d)
	require.NoError(t, err)
	ops, err := spec.Group(d)
	require.NoError(t, err)
	s, err := New(idx, ops)
	require.NoError(t, err)
	return s
}

type envelope struct {
	Success    bool            `json:"success"`
	Data       json.RawMessage `json:"data"`
	Message    string          `json:"message"`
	Error      string          `json:"error"`
	StatusCode int             `json:"statusCode"`
	Pagination *Pagination     `json:"pagination"`
}

func do(t *testing.T, s *Server, method, target, body string) (int, envelope) {
	t.Helper()
	var r *http.Request
	if body == "" {
		r = httptest.NewRequest(method, target, nil)
	} else {
		r = httptest.NewRequest(method, target, strings.NewReader(body))
		r.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	s.ServeHTTP(w, r)
	var env envelope
	if w.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	}
	return w.Code, env
}

func TestSimulatedIDInBody(t *testing.T) {
	t.Parallel()
	code, env := do(t, newServer(t), http.MethodPost, "/widgets", `{"name":"x","id":404}`)
	assert.Equal(t, http.StatusNotFound, code)
	assert.False(t, env.Success)
	assert.Equal(t, 404, env.StatusCode)
	assert.Equal(t, "Resource not found", env.Message)
	assert.Equal(t, "NOT_FOUND", env.Error)
}

func TestSimulatedErrorField(t *testing.T) {
	t.Parallel()
	code, env := do(t, newServer(t), http.MethodPost, "/widgets", `{"name":"x","_error":"VALIDATION"}`)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, 400, env.StatusCode)
}

func TestPagination(t *testing.T) {
	t.Parallel()
	code, env := do(t, newServer(t), http.MethodGet, "/widgets?page=2&perPage=1", "")
	require.Equal(t, http.StatusOK, code)
	var items []map[string]any
	require.NoError(t, json.Unmarshal(env.Data, &items))
	require.Len(t, items, 1)
	assert.EqualValues(t, 2, items[0]["id"])

	p := env.Pagination
	require.NotNil(t, p)
	assert.Equal(t, 3, p.Total)
	assert.Equal(t, 1, p.Count)
	assert.Equal(t, 2, p.CurrentPage)
	assert.Equal(t, 3, p.TotalPages)
	assert.Equal(t, "/widgets?page=1&perPage=1", p.Links.First)
	assert.Equal(t, "/widgets?page=3&perPage=1", p.Links.Last)
	require.NotNil(t, p.Links.Prev)
	require.NotNil(t, p.Links.Next)
	assert.Equal(t, "/widgets?page=3&perPage=1", *p.Links.Next)
}

func TestCRUD(t *testing.T) {
	t.Parallel()
	s := newServer(t)

	code, env := do(t, s, http.MethodPost, "/widgets", `{"name":"fresh"}`)
	require.Equal(t, http.StatusCreated, code)
	assert.Equal(t, "Created successfully", env.Message)
	var created map[string]any
	require.NoError(t, json.Unmarshal(env.Data, &created))
	assert.EqualValues(t, 4, created["id"])

	code, env = do(t, s, http.MethodGet, "/widgets/2", "")
	require.Equal(t, http.StatusOK, code)
	var got map[string]any
	require.NoError(t, json.Unmarshal(env.Data, &got))
	assert.Equal(t, "Bob Smith", got["name"])

	code, env = do(t, s, http.MethodPatch, "/widgets/2", `{"name":"renamed","id":7}`)
	require.Equal(t, http.StatusOK, code)
	require.NoError(t, json.Unmarshal(env.Data, &got))
	assert.Equal(t, "renamed", got["name"])
	assert.EqualValues(t, 2, got["id"], "the stored id wins")

	code, _ = do(t, s, http.MethodDelete, "/widgets/1", "")
	assert.Equal(t, http.StatusNoContent, code)
	code, _ = do(t, s, http.MethodGet, "/widgets/1", "")
	assert.Equal(t, http.StatusNotFound, code, "deleted records are gone")
	code, _ = do(t, s, http.MethodDelete, "/widgets/1", "")
	assert.Equal(t, http.StatusNotFound, code)
	code, env = do(t, s, http.MethodGet, "/widgets/99", "")
	assert.Equal(t, http.StatusNotFound, code)
	assert.False(t, env.Success)

	_, env = do(t, s, http.MethodGet, "/widgets", "")
	assert.Equal(t, 3, env.Pagination.Total)
}

func TestRoutesInheritCollectionEntity(t *testing.T) {
	t.Parallel()
	d, err := spec.LoadData(context.Background(), []byte(doc), "t.yaml")
	require.NoError(t, err)
	idx, err := spec.Read(d)
	require.NoError(t, err)
	ops, err := spec.Group(d)
	require.NoError(t, err)

	got := make(map[string]Route)
	for _, r := range Routes(idx, ops) {
		got[string(r.Op.Method)+" "+r.Op.Path] = r
	}
	del := got["DELETE /widgets/{id}"]
	assert.Equal(t, "Widget", del.Entity)
	assert.Equal(t, "id", del.ItemParam)
	assert.Equal(t, "Widget", got["PATCH /widgets/{id}"].Entity)
	assert.Empty(t, got["GET /health"].Entity)
}

func TestStatusOverrides(t *testing.T) {
	t.Parallel()
	s := newServer(t)

	code, env := do(t, s, http.MethodGet, "/widgets?_status=503", "")
	assert.Equal(t, http.StatusServiceUnavailable, code)
	assert.Equal(t, 503, env.StatusCode)

	code, env = do(t, s, http.MethodGet, "/widgets/403", "")
	assert.Equal(t, http.StatusForbidden, code, "identifier path params are signals")
	assert.Equal(t, 403, env.StatusCode)

	code, env = do(t, s, http.MethodGet, "/widgets/1?_status=201", "")
	assert.Equal(t, http.StatusCreated, code, "2xx overrides are successes")
	assert.True(t, env.Success)

	code, _ = do(t, s, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, code)

	code, env = do(t, s, http.MethodGet, "/nowhere", "")
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, 404, env.StatusCode)

	code, _ = do(t, s, http.MethodPost, "/widgets", `[1,2]`)
	assert.Equal(t, http.StatusBadRequest, code)
}

func TestSimulatePrecedence(t *testing.T) {
	t.Parallel()
	cases := []struct {
		name string
		req  Request
		want int
		ok   bool
	}{
		{"query wins", Request{Query: url.Values{"_status": {"418"}}, Body: map[string]any{"_error": "FORBIDDEN", "id": 404.0}}, 418, true},
		{"error over id", Request{Body: map[string]any{"_error": "not_found", "id": 500.0}}, 404, true},
		{"invalid maps to 400", Request{Body: map[string]any{"_error": "INVALID"}}, 400, true},
		{"body id", Request{Body: map[string]any{"id": 401.0}}, 401, true},
		{"string id", Request{Body: map[string]any{"id": "500"}}, 500, true},
		{"path id", Request{PathParams: map[string]string{"userId": "201"}}, 201, true},
		{"non-id path param", Request{PathParams: map[string]string{"slug": "404"}}, 0, false},
		{"ordinary id", Request{Body: map[string]any{"id": 7.0}}, 0, false},
		{"bad status ignored", Request{Query: url.Values{"_status": {"abc"}}}, 0, false},
		{"unknown error ignored", Request{Body: map[string]any{"_error": "TEAPOT"}}, 0, false},
	}
	for _, tc := range cases {
		got, ok := Simulate(tc.req)
		assert.Equal(t, tc.ok, ok, tc.name)
		assert.Equal(t, tc.want, got, tc.name)
	}
}

func TestPaginateEdges(t *testing.T) {
	t.Parallel()
	items := []int{1, 2, 3}

	page, p := Paginate(items, 1, 10, "/x")
	assert.Equal(t, items, page)
	assert.Equal(t, 1, p.TotalPages)
	assert.Nil(t, p.Links.Prev)
	assert.Nil(t, p.Links.Next)

	page, p = Paginate(items, 5, 2, "/x")
	assert.Empty(t, page)
	assert.Equal(t, 2, p.TotalPages)
	require.NotNil(t, p.Links.Prev)
	assert.Equal(t, "/x?page=2&perPage=2", *p.Links.Prev)

	n, per := PageParams(url.Values{"page": {"0"}, "perPage": {"-3"}})
	assert.Equal(t, DefaultPage, n)
	assert.Equal(t, DefaultPerPage, per)
}

func TestDefaultStatus(t *testing.T) {
	t.Parallel()
	assert.Equal(t, 200, DefaultStatus(spec.GET))
	assert.Equal(t, 201, DefaultStatus(spec.POST))
	assert.Equal(t, 200, DefaultStatus(spec.PUT))
	assert.Equal(t, 200, DefaultStatus(spec.PATCH))
	assert.Equal(t, 204, DefaultStatus(spec.DELETE))
}
