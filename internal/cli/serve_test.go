package cli

import (
	"context"
	"errors"
	"io"
	"testing"
)

func TestServeConfigFromFlags(t *testing.T) {
	var captured *ServeConfig
	serveRunner = func(ctx context.Context, cfg *ServeConfig, out io.Writer) error {
		captured = cfg
		return nil
	}
	t.Cleanup(func() { serveRunner = runServe })

	root := NewRootCmd()
	root.SetOut(io.Discard)
	root.SetErr(io.Discard)
	root.SetArgs([]string{"serve", "--spec", "spec.yaml", "--port", "4010", "--seed-count", "6", "--exclude-tags", "admin"})
	if err := root.Execute(); err != nil {
		t.Fatalf("execute: %v", err)
	}
	if captured == nil {
		t.Fatalf("expected config to be captured")
	}
	if captured.Port != 4010 {
		t.Errorf("port: want 4010 got %d", captured.Port)
	}
	if captured.MockSeedCount != 6 {
		t.Errorf("seed count: want 6 got %d", captured.MockSeedCount)
	}
	if captured.Host != "127.0.0.1" {
		t.Errorf("host: got %q", captured.Host)
	}
	if want := []string{"admin"}; !equalStringSlices(captured.ExcludeTags, want) {
		t.Errorf("exclude tags: got %v", captured.ExcludeTags)
	}
}

func TestServeDefaultsPort(t *testing.T) {
	var captured *ServeConfig
	serveRunner = func(ctx context.Context, cfg *ServeConfig, out io.Writer) error {
		captured = cfg
		return nil
	}
	t.Cleanup(func() { serveRunner = runServe })

	root := NewRootCmd()
	root.SetOut(io.Discard)
	root.SetErr(io.Discard)
	root.SetArgs([]string{"serve", "--spec", "spec.yaml"})
	if err := root.Execute(); err != nil {
		t.Fatalf("execute: %v", err)
	}
	if captured.Port != 3001 || captured.MockSeedCount != 3 {
		t.Errorf("expected defaults, got port %d seed %d", captured.Port, captured.MockSeedCount)
	}
}

func TestServeRequiresSpec(t *testing.T) {
	t.Parallel()
	root := NewRootCmd()
	root.SetOut(io.Discard)
	root.SetErr(io.Discard)
	root.SetArgs([]string{"serve"})
	if err := root.Execute(); !errors.Is(err, ErrUsage) {
		t.Fatalf("expected usage error, got %v", err)
	}
}
