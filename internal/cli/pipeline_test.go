package cli

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const minimalSpecYAML = "" +
	"openapi: 3.0.0\n" +
	"info:\n" +
	"  title: Test API\n" +
	"  version: '1.0.0'\n" +
	"paths:\n" +
	"  /widgets:\n" +
	"    get:\n" +
	"      tags: [widgets]\n" +
	"      summary: List widgets\n" +
	"      responses:\n" +
	"        '200':\n" +
	"          description: ok\n" +
	"          content:\n" +
	"            application/json:\n" +
	"              schema:\n" +
	"                type: array\n" +
	"                items:\n" +
	"                  $ref: '#/components/schemas/Widget'\n" +
	"components:\n" +
	"  schemas:\n" +
	"    Widget:\n" +
	"      type: object\n" +
	"      required: [id, name]\n" +
	"      properties:\n" +
	"        id:\n" +
	"          type: integer\n" +
	"        name:\n" +
	"          type: string\n"

func writeSpec(t *testing.T, dir string) string {
	t.Helper()
	specPath := filepath.Join(dir, "spec.yaml")
	if err := os.WriteFile(specPath, []byte(minimalSpecYAML), 0o600); err != nil {
		t.Fatalf("write spec: %v", err)
	}
	return specPath
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	root := NewRootCmd()
	root.SetOut(&out)
	root.SetErr(io.Discard)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestGeneratePipeline_All(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	specPath := writeSpec(t, dir)
	outDir := filepath.Join(dir, "out")

	out, err := run(t, "all", "--spec", specPath, "--output", outDir)
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	if !strings.Contains(out, "Generated ") || !strings.Contains(out, "components") {
		t.Fatalf("expected summary output, got: %s", out)
	}
	for _, rel := range []string{
		"types/widget.ts",
		"schemas/widget.schema.ts",
		"services/widgets.service.ts",
		"services/transport.ts",
		"views/widget.view.ts",
		"hooks/use-widgets.ts",
		"components/widget/WidgetList.tsx",
		"fixtures/widget.fixtures.ts",
		"mocks/server.ts",
	} {
		if _, err := os.Stat(filepath.Join(outDir, filepath.FromSlash(rel))); err != nil {
			t.Errorf("expected %s: %v", rel, err)
		}
	}
}

func TestGeneratePipeline_DryRun(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	specPath := writeSpec(t, dir)
	outDir := filepath.Join(dir, "out")

	out, err := run(t, "types", "--spec", specPath, "--output", outDir, "--dry-run")
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	if !strings.Contains(out, "Planned writes to") || !strings.Contains(out, "- types/widget.ts") {
		t.Fatalf("expected dry-run plan output, got: %s", out)
	}
	if _, err := os.Stat(outDir); err == nil {
		t.Fatalf("expected no writes on dry-run")
	}
}

func TestGeneratePipeline_HooksWithoutServices(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	specPath := writeSpec(t, dir)
	outDir := filepath.Join(dir, "out")

	out, err := run(t, "hooks", "--spec", specPath, "--output", outDir)
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	if !strings.Contains(out, "no generated services found") {
		t.Fatalf("expected missing services warning, got: %s", out)
	}

	if _, err := run(t, "services", "--spec", specPath, "--output", outDir); err != nil {
		t.Fatalf("services: %v", err)
	}
	out, err = run(t, "hooks", "--spec", specPath, "--output", outDir)
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	if strings.Contains(out, "no generated services found") {
		t.Fatalf("unexpected warning once services exist: %s", out)
	}
}

func TestGeneratePipeline_InvalidSpec(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	specPath := filepath.Join(dir, "broken.yaml")
	if err := os.WriteFile(specPath, []byte("openapi: [\n"), 0o600); err != nil {
		t.Fatalf("write spec: %v", err)
	}

	_, err := run(t, "types", "--spec", specPath, "--output", filepath.Join(dir, "out"))
	if err == nil {
		t.Fatalf("expected an error for a malformed spec")
	}
	if !strings.HasPrefix(err.Error(), "spec: ") {
		t.Fatalf("unexpected error text: %v", err)
	}
}
