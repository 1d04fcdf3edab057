package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mark3labs/swagger2client/internal/fsys"
)

const defaultConfigName = "swagger2client.yaml"

// InitConfig captures the options for the init command.
type InitConfig struct {
	OutputPath string
	Force      bool
	Verbose    bool
}

var initRunner = runInit

func newInitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Scaffold a sample swagger2client configuration file",
		Long:  "Scaffold a commented swagger2client configuration file that documents available options.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out, err := cmd.Flags().GetString("out")
			if err != nil {
				return err
			}
			force, err := cmd.Flags().GetBool("force")
			if err != nil {
				return err
			}
			verbose, err := cmd.Flags().GetBool("verbose")
			if err != nil {
				return err
			}
			cfg := &InitConfig{
				OutputPath: out,
				Force:      force,
				Verbose:    verbose,
			}
			return initRunner(cmd.Context(), cfg, cmd.OutOrStdout())
		},
	}

	cmd.Flags().String("out", defaultConfigName, "Where to write the sample config file")
	cmd.Flags().Bool("force", false, "Overwrite the target file if it already exists")

	return cmd
}

func runInit(ctx context.Context, cfg *InitConfig, w io.Writer) error {
	_ = ctx

	out := strings.TrimSpace(cfg.OutputPath)
	if out == "" {
		out = defaultConfigName
	}
	absPath, err := filepath.Abs(out)
	if err != nil {
		return fmt.Errorf("init: resolve output path: %w", err)
	}

	if st, err := os.Stat(absPath); err == nil && !cfg.Force {
		if st.Mode().IsRegular() {
			return newUsageError(fmt.Sprintf("init: %q already exists (use --force to overwrite)", absPath))
		}
	}

	content := strings.TrimSpace(sampleConfigYAML) + "\n"
	target := fsys.NewOS(filepath.Dir(absPath))
	if err := target.WriteFile(filepath.Base(absPath), []byte(content)); err != nil {
		return newUsageError(fmt.Sprintf("init: cannot write %s: %v\nHint: choose a different --out or check directory permissions.", absPath, err))
	}
	fmt.Fprintf(w, "Wrote sample config to %s\n", absPath)
	return nil
}

// sampleConfigYAML is a commented example config documenting available options.
const sampleConfigYAML = `# swagger2client configuration (YAML or JSON)
# All fields are optional. SWAGGER2CLIENT_* environment variables override
# this file; command-line flags override both.

# Path or URL to the Swagger/OpenAPI document (http/https or local file).
# spec: ./openapi.yaml

# Output root directory.
# output: ./src/api

# Output sub-directory per artifact kind.
# paths:
#   types: types
#   schemas: schemas
#   services: services
#   views: views
#   hooks: hooks
#   components: components
#   mocks: mocks
#   fixtures: fixtures

# Replacement templates, by template id (e.g. mocks.server, components.card).
# templates:
#   components.card: ./templates/card.tmpl

# Emit enums as string-literal unions (true) or TypeScript enums (false).
# enumAsUnion: true

# Build hooks on @tanstack/react-query (true) or useState/useEffect (false).
# useReactQuery: true

# Emit create/edit forms and list components.
# generateForms: true
# generateLists: true

# Fixture instances per schema and mock store records per entity.
# fixtureCount: 5
# mockSeedCount: 3

# Columns shown by list components.
# listColumns: 4

# Default port of the generated mock server and of the serve command.
# port: 3001

# Operation filters.
# includeTags: [pets]
# excludeTags: [internal]
# methods: [GET, POST]
# pathPatterns: ["^/pets"]

# Preview planned outputs without writing files.
# dryRun: false

# Enable verbose logging.
# verbose: false
`
