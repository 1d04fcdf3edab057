// Package mockemitter writes an Express mock server: a seeded in-memory
// store, the status-simulation protocol and one route per operation.
package mockemitter

import (
	"context"
	"encoding/json"
	"fmt"
	"path"
	"strconv"
	"strings"

	"github.com/mark3labs/swagger2client/internal/emitter"
	"github.com/mark3labs/swagger2client/internal/fixture"
	"github.com/mark3labs/swagger2client/internal/mockserver"
	"github.com/mark3labs/swagger2client/internal/naming"
	"github.com/mark3labs/swagger2client/internal/spec"
)

// Emit writes mocks/store.ts, mocks/simulate.ts, mocks/server.ts and one
// mocks/routes/<group>.routes.ts per group.
func Emit(ctx context.Context, in *emitter.Input) (*emitter.Output, error) {
	out := &emitter.Output{}
	dir := in.Options.Dir(emitter.KindMocks)
	routes := mockserver.Routes(in.Index, in.Operations)

	seed, err := Seed(in.Index, routes, in.Options.MockSeedCount)
	if err != nil {
		return nil, err
	}
	store, err := in.Render("mocks.store", map[string]string{"Seed": seed})
	if err != nil {
		return nil, err
	}
	out.Add(emitter.KindMocks, emitter.Key(emitter.KindMocks, "store"), path.Join(dir, "store.ts"), store)

	simulate, err := in.Render("mocks.simulate", protocolVars())
	if err != nil {
		return nil, err
	}
	out.Add(emitter.KindMocks, emitter.Key(emitter.KindMocks, "simulate"), path.Join(dir, "simulate.ts"), simulate)

	byGroup := make(map[string][]mockserver.Route)
	for _, r := range routes {
		byGroup[r.Op.Group] = append(byGroup[r.Op.Group], r)
	}
	type groupVars struct {
		Register string
		Import   string
	}
	var groups []groupVars
	for _, g := range in.Groups() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		file := g.File() + ".routes"
		src := RouteSource(g, byGroup[g.Name])
		out.Add(emitter.KindMocks, emitter.Key(emitter.KindMocks, g.Name), path.Join(dir, "routes", file+".ts"), src)
		groups = append(groups, groupVars{Register: RegisterFunc(g.Name), Import: "./routes/" + file})
	}

	server, err := in.Render("mocks.server", map[string]any{"Groups": groups, "Port": in.Options.MockPort})
	if err != nil {
		return nil, err
	}
	out.Add(emitter.KindMocks, emitter.Key(emitter.KindMocks, "server"), path.Join(dir, "server.ts"), server)
	return out, nil
}

func protocolVars() map[string]any {
	defaults := make(map[string]int, len(spec.Methods))
	for _, m := range spec.Methods {
		defaults[string(m)] = mockserver.DefaultStatus(m)
	}
	return map[string]any{
		"SimulatedIDs":   mockserver.SimulatedIDs,
		"ErrorCodes":     mockserver.ErrorCodes,
		"StatusMessages": mockserver.StatusMessages,
		"ErrorNames":     mockserver.ErrorNames,
		"DefaultStatus":  defaults,
		"DefaultPage":    mockserver.DefaultPage,
		"DefaultPerPage": mockserver.DefaultPerPage,
	}
}

// Seed renders the store's seed records as a JSON object literal, one
// entry per entity in route order.
func Seed(idx *spec.SchemaIndex, routes []mockserver.Route, count int) (string, error) {
	engine := fixture.New(idx)
	seed := fixture.NewObject()
	for _, r := range routes {
		if r.Entity == "" {
			continue
		}
		if _, ok := seed.Get(r.Entity); ok {
			continue
		}
		instances, err := engine.Instances(r.Entity, count)
		if err != nil {
			return "", err
		}
		seed.Set(r.Entity, instances)
	}
	raw, err := json.MarshalIndent(seed, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encode mock seed: %w", err)
	}
	return string(raw), nil
}

// RegisterFunc is the exported function registering a group's routes.
func RegisterFunc(group string) string { return "register" + naming.TypeName(group) + "Routes" }

// ExpressPath converts a path template to Express syntax and returns the
// Express name of every declared parameter.
func ExpressPath(p string) (string, map[string]string) {
	names := make(map[string]string)
	used := make(map[string]bool)
	for _, name := range spec.PathPlaceholders(p) {
		express := naming.Camel(name)
		if express == "" {
			express = "param"
		}
		for base, n := express, 2; used[express]; n++ {
			express = fmt.Sprintf("%s%d", base, n)
		}
		used[express] = true
		names[name] = express
		p = strings.Replace(p, "{"+name+"}", ":"+express, 1)
	}
	return p, names
}

// RouteSource renders the route module of one group.
func RouteSource(g emitter.Group, routes []mockserver.Route) string {
	var b strings.Builder
	b.WriteString(emitter.GeneratedHeader)
	b.WriteString("import type { Router } from \"express\";\n")
	b.WriteString("import type { Store } from \"../store\";\n")
	b.WriteString("import { handle } from \"../simulate\";\n\n")
	fmt.Fprintf(&b, "export function %s(router: Router, store: Store): void {\n", RegisterFunc(g.Name))
	for _, r := range routes {
		expressPath, params := ExpressPath(r.Op.Path)
		fields := []string{"method: " + strconv.Quote(string(r.Op.Method))}
		if r.Entity != "" {
			fields = append(fields, "entity: "+strconv.Quote(r.Entity))
		}
		if r.ItemParam != "" {
			fields = append(fields, "itemParam: "+strconv.Quote(r.ItemParam))
		}
		var pairs []string
		for _, name := range spec.PathPlaceholders(r.Op.Path) {
			pairs = append(pairs, naming.PropertyKey(name)+": "+strconv.Quote(params[name]))
		}
		if len(pairs) == 0 {
			fields = append(fields, "params: {}")
		} else {
			fields = append(fields, "params: { "+strings.Join(pairs, ", ")+" }")
		}
		fmt.Fprintf(&b, "  // %s\n", r.Op.OperationID)
		fmt.Fprintf(&b, "  router.%s(%s, handle(store, { %s }));\n", strings.ToLower(string(r.Op.Method)), strconv.Quote(expressPath), strings.Join(fields, ", "))
	}
	b.WriteString("}\n")
	return b.String()
}
