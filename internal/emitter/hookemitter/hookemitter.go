// Package hookemitter writes React data-fetching hooks on top of the
// generated services. Read methods become cached queries keyed by
// [resource, method, ...params]; everything else becomes a mutation that
// invalidates the resource on success.
package hookemitter

import (
	"context"
	"fmt"
	"path"
	"strconv"
	"strings"

	"github.com/mark3labs/swagger2client/internal/emitter"
	"github.com/mark3labs/swagger2client/internal/emitter/serviceemitter"
	"github.com/mark3labs/swagger2client/internal/naming"
	"github.com/mark3labs/swagger2client/internal/spec"
)

var readPrefixes = []string{"get", "list", "find"}

// IsQuery reports whether a service method name starts with a read verb.
func IsQuery(method string) bool {
	for _, p := range readPrefixes {
		if !strings.HasPrefix(method, p) {
			continue
		}
		rest := method[len(p):]
		if rest == "" || (rest[0] >= 'A' && rest[0] <= 'Z') {
			return true
		}
	}
	return false
}

// ResourceConst is the exported constant holding a group's cache key root.
func ResourceConst(group string) string {
	words := naming.Words(group)
	for i, w := range words {
		words[i] = strings.ToUpper(w)
	}
	if len(words) == 0 {
		return "DEFAULT_RESOURCE"
	}
	return strings.Join(words, "_") + "_RESOURCE"
}

// HookName is the hook wrapping service method m.
func HookName(method string) string { return "use" + naming.Pascal(method) }

// Emit writes hooks/use-<group>.ts for every group plus the shared context
// module (and the invalidation bus when react-query is off).
func Emit(ctx context.Context, in *emitter.Input) (*emitter.Output, error) {
	out := &emitter.Output{}
	dir := in.Options.Dir(emitter.KindHooks)
	servicesDir := in.Options.Dir(emitter.KindServices)

	apiContext, err := in.Render("hooks.apiContext", map[string]string{
		"Transport": emitter.Import(dir, path.Join(servicesDir, "transport")),
	})
	if err != nil {
		return nil, err
	}
	out.Add(emitter.KindHooks, emitter.Key(emitter.KindHooks, "api-context"), path.Join(dir, "api-context.ts"), apiContext)
	if !in.Options.UseReactQuery {
		cache, err := in.Render("hooks.queryCache", nil)
		if err != nil {
			return nil, err
		}
		out.Add(emitter.KindHooks, emitter.Key(emitter.KindHooks, "query-cache"), path.Join(dir, "query-cache.ts"), cache)
	}

	var barrel strings.Builder
	barrel.WriteString(emitter.GeneratedHeader)
	barrel.WriteString("export * from \"./api-context\";\n")
	for _, g := range in.Groups() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		file := "use-" + g.File()
		imports := Imports{
			Service: emitter.Import(dir, path.Join(servicesDir, g.File()+".service")),
			Types:   emitter.Import(dir, in.Options.Dir(emitter.KindTypes)),
		}
		out.Add(emitter.KindHooks, emitter.Key(emitter.KindHooks, g.Name), path.Join(dir, file+".ts"), Source(g, imports, in.Options.UseReactQuery))
		fmt.Fprintf(&barrel, "export * from %s;\n", strconv.Quote("./"+file))
	}
	out.Add(emitter.KindHooks, emitter.Key(emitter.KindHooks, "index"), path.Join(dir, "index.ts"), barrel.String())
	return out, nil
}

// Imports are the module specifiers a hook file needs.
type Imports struct {
	Service string
	Types   string
}

// Source renders the hook module of one group.
func Source(g emitter.Group, imports Imports, reactQuery bool) string {
	methods := make([]serviceemitter.Method, 0, len(g.Operations))
	var payloads []*spec.SchemaRecord
	hasQuery, hasMutation := false, false
	for _, op := range g.Operations {
		m, _ := serviceemitter.BuildMethod(op)
		methods = append(methods, m)
		payloads = append(payloads, op.RequestBody, op.Response)
		for _, p := range op.QueryParams {
			payloads = append(payloads, p.Schema)
		}
		if IsQuery(m.Name) {
			hasQuery = true
		} else {
			hasMutation = true
		}
	}

	resource := ResourceConst(g.Name)
	var b strings.Builder
	b.WriteString(emitter.GeneratedHeader)
	if reactQuery {
		var rq []string
		if hasMutation {
			rq = append(rq, "useMutation")
		}
		if hasQuery {
			rq = append(rq, "useQuery")
		}
		if hasMutation {
			rq = append(rq, "useQueryClient")
		}
		b.WriteString("import { useMemo } from \"react\";\n")
		if len(rq) > 0 {
			fmt.Fprintf(&b, "import { %s } from \"@tanstack/react-query\";\n", strings.Join(rq, ", "))
		}
	} else {
		b.WriteString("import { useCallback, useEffect, useMemo, useState } from \"react\";\n")
		b.WriteString("import { invalidate, subscribe } from \"./query-cache\";\n")
		b.WriteString("import type { MutationState, QueryState } from \"./query-cache\";\n")
	}
	fmt.Fprintf(&b, "import { %s } from %s;\n", g.Class(), strconv.Quote(imports.Service))
	if refs := emitter.Refs(payloads...); len(refs) > 0 {
		names := make([]string, len(refs))
		for i, r := range refs {
			names[i] = emitter.TypeName(r)
		}
		fmt.Fprintf(&b, "import type { %s } from %s;\n", strings.Join(names, ", "), strconv.Quote(imports.Types))
	}
	if reactQuery {
		b.WriteString("import { unwrap, useTransport } from \"./api-context\";\n")
	} else {
		b.WriteString("import { useTransport } from \"./api-context\";\n")
	}
	b.WriteString("import type { MutationOptions, QueryOptions } from \"./api-context\";\n\n")

	fmt.Fprintf(&b, "export const %s = %s;\n\n", resource, strconv.Quote(g.Name))
	fmt.Fprintf(&b, "function useService(): %s {\n", g.Class())
	b.WriteString("  const transport = useTransport();\n")
	fmt.Fprintf(&b, "  return useMemo(() => new %s(transport), [transport]);\n", g.Class())
	b.WriteString("}\n")

	for _, m := range methods {
		b.WriteString("\n")
		switch {
		case IsQuery(m.Name) && reactQuery:
			writeQuery(&b, m, resource)
		case IsQuery(m.Name):
			writeStateQuery(&b, m, resource)
		case reactQuery:
			writeMutation(&b, m, resource)
		default:
			writeStateMutation(&b, m, resource)
		}
	}
	return b.String()
}

func params(m serviceemitter.Method) string {
	if sig := m.Signature(); sig != "" {
		return sig + ", options: QueryOptions = {}"
	}
	return "options: QueryOptions = {}"
}

func queryKey(m serviceemitter.Method, resource string) string {
	parts := []string{resource, strconv.Quote(m.Name)}
	for _, p := range m.Params {
		parts = append(parts, p.Name)
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

func writeQuery(b *strings.Builder, m serviceemitter.Method, resource string) {
	fmt.Fprintf(b, "export function %s(%s) {\n", HookName(m.Name), params(m))
	b.WriteString("  const service = useService();\n")
	b.WriteString("  return useQuery({\n")
	fmt.Fprintf(b, "    queryKey: %s,\n", queryKey(m, resource))
	fmt.Fprintf(b, "    queryFn: async () => unwrap(await service.%s(%s)),\n", m.Name, m.Args())
	b.WriteString("    enabled: options.enabled ?? true,\n")
	b.WriteString("  });\n")
	b.WriteString("}\n")
}

func writeStateQuery(b *strings.Builder, m serviceemitter.Method, resource string) {
	fmt.Fprintf(b, "export function %s(%s) {\n", HookName(m.Name), params(m))
	b.WriteString("  const service = useService();\n")
	b.WriteString("  const enabled = options.enabled ?? true;\n")
	fmt.Fprintf(b, "  const [state, setState] = useState<QueryState<%s>>({ isLoading: enabled });\n", m.Response)
	b.WriteString("  const [version, setVersion] = useState(0);\n")
	fmt.Fprintf(b, "  useEffect(() => subscribe(%s, () => setVersion((v) => v + 1)), []);\n", resource)
	b.WriteString("  useEffect(() => {\n")
	b.WriteString("    if (!enabled) return;\n")
	b.WriteString("    let cancelled = false;\n")
	b.WriteString("    setState((s) => ({ ...s, isLoading: true }));\n")
	fmt.Fprintf(b, "    void service.%s(%s).then((result) => {\n", m.Name, m.Args())
	b.WriteString("      if (cancelled) return;\n")
	b.WriteString("      setState(result.success ? { data: result.data, isLoading: false } : { error: new Error(result.error), isLoading: false });\n")
	b.WriteString("    });\n")
	b.WriteString("    return () => {\n")
	b.WriteString("      cancelled = true;\n")
	b.WriteString("    };\n")
	deps := []string{"service", "enabled", "version"}
	for _, p := range m.Params {
		deps = append(deps, p.Name)
	}
	fmt.Fprintf(b, "  }, [%s]);\n", strings.Join(deps, ", "))
	b.WriteString("  return { ...state, refetch: () => setVersion((v) => v + 1) };\n")
	b.WriteString("}\n")
}

// varsType renders the object type a mutation is invoked with.
func varsType(m serviceemitter.Method) string {
	if len(m.Params) == 0 {
		return ""
	}
	fields := make([]string, len(m.Params))
	for i, p := range m.Params {
		opt := ""
		if p.Optional {
			opt = "?"
		}
		fields[i] = p.Name + opt + ": " + p.Type
	}
	return "{ " + strings.Join(fields, "; ") + " }"
}

func varsArgs(m serviceemitter.Method) string {
	args := make([]string, len(m.Params))
	for i, p := range m.Params {
		args[i] = "vars." + p.Name
	}
	return strings.Join(args, ", ")
}

func writeMutation(b *strings.Builder, m serviceemitter.Method, resource string) {
	fmt.Fprintf(b, "export function %s(options: MutationOptions<%s> = {}) {\n", HookName(m.Name), m.Response)
	b.WriteString("  const service = useService();\n")
	b.WriteString("  const queryClient = useQueryClient();\n")
	b.WriteString("  return useMutation({\n")
	if vt := varsType(m); vt != "" {
		fmt.Fprintf(b, "    mutationFn: async (vars: %s) => unwrap(await service.%s(%s)),\n", vt, m.Name, varsArgs(m))
	} else {
		fmt.Fprintf(b, "    mutationFn: async () => unwrap(await service.%s()),\n", m.Name)
	}
	b.WriteString("    onSuccess: (data) => {\n")
	fmt.Fprintf(b, "      void queryClient.invalidateQueries({ queryKey: [%s] });\n", resource)
	b.WriteString("      options.onSuccess?.(data);\n")
	b.WriteString("    },\n")
	b.WriteString("    onError: (error: Error) => options.onError?.(error),\n")
	b.WriteString("  });\n")
	b.WriteString("}\n")
}

func writeStateMutation(b *strings.Builder, m serviceemitter.Method, resource string) {
	fmt.Fprintf(b, "export function %s(options: MutationOptions<%s> = {}) {\n", HookName(m.Name), m.Response)
	b.WriteString("  const service = useService();\n")
	fmt.Fprintf(b, "  const [state, setState] = useState<MutationState<%s>>({ isPending: false });\n", m.Response)
	arg, call := "", m.Name+"()"
	if vt := varsType(m); vt != "" {
		arg = "vars: " + vt
		call = m.Name + "(" + varsArgs(m) + ")"
	}
	fmt.Fprintf(b, "  const mutate = useCallback(async (%s) => {\n", arg)
	b.WriteString("    setState({ isPending: true });\n")
	fmt.Fprintf(b, "    const result = await service.%s;\n", call)
	b.WriteString("    if (result.success) {\n")
	b.WriteString("      setState({ isPending: false, data: result.data });\n")
	fmt.Fprintf(b, "      invalidate(%s);\n", resource)
	b.WriteString("      options.onSuccess?.(result.data);\n")
	b.WriteString("    } else {\n")
	b.WriteString("      const error = new Error(result.error);\n")
	b.WriteString("      setState({ isPending: false, error });\n")
	b.WriteString("      options.onError?.(error);\n")
	b.WriteString("    }\n")
	b.WriteString("    return result;\n")
	b.WriteString("  }, [service, options]);\n")
	b.WriteString("  return { ...state, mutate };\n")
	b.WriteString("}\n")
}
