package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mark3labs/swagger2client/internal/emitter"
)

// Execute runs the swagger2client CLI.
func Execute(ctx context.Context) error {
	return NewRootCmd().ExecuteContext(ctx)
}

// kindCommands describes the per-kind generation commands.
var kindCommands = []struct {
	kind  emitter.Kind
	short string
}{
	{emitter.KindTypes, "Generate TypeScript types for every schema"},
	{emitter.KindSchemas, "Generate zod validators for every schema"},
	{emitter.KindServices, "Generate service classes, one per tag"},
	{emitter.KindViews, "Generate null-safe view wrappers for entity schemas"},
	{emitter.KindHooks, "Generate React hooks wrapping the services"},
	{emitter.KindComponents, "Generate React card, list and form components"},
	{emitter.KindMocks, "Generate an Express mock server"},
	{emitter.KindFixtures, "Generate fixture data and randomizers"},
}

// NewRootCmd constructs the root command so tests can exercise the CLI easily.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "swagger2client",
		Short:         "Generate a TypeScript client from Swagger/OpenAPI specs",
		Long:          "swagger2client generates types, validators, services, views, React hooks and components, fixtures and a mock server from Swagger/OpenAPI documents.",
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	// Convert Cobra flag errors (like unknown flags) into friendly usage errors
	// that also show the command's help text.
	flagErr := func(c *cobra.Command, err error) error {
		return newUsageError(fmt.Sprintf("%v\n\n%s", err, c.UsageString()))
	}
	cmd.SetFlagErrorFunc(flagErr)

	cmd.PersistentFlags().StringP("config", "c", "", "Config file path (YAML or JSON)")
	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging output")

	subs := make([]*cobra.Command, 0, len(kindCommands)+3)
	for _, kc := range kindCommands {
		subs = append(subs, newGenerateCmd(string(kc.kind), kc.short, kc.kind))
	}
	subs = append(subs,
		newGenerateCmd("all", "Generate every artifact kind", emitter.AllKinds...),
		newInitCmd(),
		newServeCmd(),
	)
	for _, sub := range subs {
		sub.SetFlagErrorFunc(flagErr)
		cmd.AddCommand(sub)
	}
	return cmd
}
