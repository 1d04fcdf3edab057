package cli

import (
	"context"
	"fmt"
	"io"
	"net"
	"strconv"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/mark3labs/swagger2client/internal/config"
	"github.com/mark3labs/swagger2client/internal/mockserver"
)

// ServeConfig captures the options of the serve command.
type ServeConfig struct {
	config.Config
	Host string
}

var serveRunner = runServe

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run a mock server for a Swagger/OpenAPI document",
		Long: "Run an in-memory mock server answering every operation of the document. " +
			"Responses follow the same status simulation as the generated Express mock: " +
			"?_status=<code>, an _error body field, or a simulated id.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			base, _, err := resolveConfig(cmd)
			if err != nil {
				return err
			}
			cfg := &ServeConfig{Config: base}
			flags := cmd.Flags()
			if flags.Changed("port") {
				if cfg.Port, err = flags.GetInt("port"); err != nil {
					return err
				}
			}
			if flags.Changed("seed-count") {
				if cfg.MockSeedCount, err = flags.GetInt("seed-count"); err != nil {
					return err
				}
			}
			if cfg.Host, err = flags.GetString("host"); err != nil {
				return err
			}
			if cfg.Spec == "" {
				return newUsageError("serve: --spec is required (set via flag, config file or " + config.EnvPrefix + "SPEC)")
			}
			if err := cfg.Validate(); err != nil {
				return newUsageError(fmt.Sprintf("serve: invalid configuration: %v", err))
			}
			return serveRunner(cmd.Context(), cfg, cmd.OutOrStdout())
		},
	}

	flags := cmd.Flags()
	addSpecFlags(flags)
	flags.IntP("port", "p", 0, "Port to listen on (default 3001)")
	flags.String("host", "127.0.0.1", "Interface to bind")
	flags.Int("seed-count", 0, "Fixture records seeded per entity (default 3)")
	return cmd
}

func runServe(ctx context.Context, cfg *ServeConfig, out io.Writer) error {
	// Request lines are logged at info, so they show without --verbose.
	logger, err := newLogger(cfg.Verbose, "info")
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	idx, ops, err := loadOperations(ctx, cfg.Config)
	if err != nil {
		return err
	}
	srv, err := mockserver.New(idx, ops,
		mockserver.WithLogger(logger),
		mockserver.WithSeedCount(cfg.MockSeedCount),
	)
	if err != nil {
		return err
	}
	addr := net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port))
	fmt.Fprintf(out, "Mock server for %s on http://%s (%d operations)\n", cfg.Spec, addr, len(ops))
	logger.Debug("serving", zap.String("addr", addr))
	return srv.ListenAndServe(ctx, addr)
}
