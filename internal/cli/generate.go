package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/mark3labs/swagger2client/internal/config"
	"github.com/mark3labs/swagger2client/internal/emitter"
	"github.com/mark3labs/swagger2client/internal/fsys"
	"github.com/mark3labs/swagger2client/internal/generate"
	"github.com/mark3labs/swagger2client/internal/logging"
	"github.com/mark3labs/swagger2client/internal/render"
	genspec "github.com/mark3labs/swagger2client/internal/spec"
)

// flagEnabled is the value of --hooks and --components given without a path.
const flagEnabled = "true"

// GenerateConfig captures all inputs of a generation command after merging
// defaults, the config file, the environment and CLI overrides.
type GenerateConfig struct {
	config.Config
	// Kinds are the artifact kinds to emit.
	Kinds      []emitter.Kind
	ConfigPath string
}

var generateRunner = runGenerate

// newGenerateCmd builds one generation command emitting kinds.
func newGenerateCmd(use, short string, kinds ...emitter.Kind) *cobra.Command {
	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		Example: strings.TrimSpace(fmt.Sprintf(`  swagger2client %[1]s --spec openapi.yaml --output ./src/api
  swagger2client --config swagger2client.yaml %[1]s --dry-run`, use)),
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := resolveGenerateConfig(cmd, kinds)
			if err != nil {
				return err
			}
			return generateRunner(cmd.Context(), cfg, cmd.OutOrStdout())
		},
	}

	flags := cmd.Flags()
	addSpecFlags(flags)
	flags.StringP("output", "o", "", "Output root directory (default: current directory)")
	flags.String("hooks", "", "Also emit hooks; an optional value sets their output sub-directory")
	flags.Lookup("hooks").NoOptDefVal = flagEnabled
	flags.String("components", "", "Also emit components; an optional value sets their output sub-directory")
	flags.Lookup("components").NoOptDefVal = flagEnabled
	flags.Bool("forms", true, "Emit create/edit form components")
	flags.Bool("list", true, "Emit list components")
	flags.Bool("enum-as-union", true, "Emit enums as string-literal unions instead of TypeScript enums")
	flags.Bool("react-query", true, "Build hooks on @tanstack/react-query")
	flags.Bool("dry-run", false, "Print the planned files without writing them")
	return cmd
}

// addSpecFlags registers the input and operation filter flags.
func addSpecFlags(flags *pflag.FlagSet) {
	flags.StringP("spec", "s", "", "Path or URL to the Swagger/OpenAPI document")
	flags.StringSlice("include-tags", nil, "Only include operations with these tags")
	flags.StringSlice("exclude-tags", nil, "Exclude operations with these tags")
	flags.StringSlice("methods", nil, "Only include operations using these HTTP methods")
	flags.StringSlice("path-patterns", nil, "Only include operations whose path matches one of these regular expressions")
}

func resolveGenerateConfig(cmd *cobra.Command, kinds []emitter.Kind) (*GenerateConfig, error) {
	base, configPath, err := resolveConfig(cmd)
	if err != nil {
		return nil, err
	}
	cfg := &GenerateConfig{Config: base, ConfigPath: configPath, Kinds: append([]emitter.Kind(nil), kinds...)}
	flags := cmd.Flags()

	if flags.Changed("output") {
		value, err := flags.GetString("output")
		if err != nil {
			return nil, err
		}
		cfg.Output = strings.TrimSpace(value)
	}
	for _, kind := range []emitter.Kind{emitter.KindHooks, emitter.KindComponents} {
		if !flags.Changed(string(kind)) {
			continue
		}
		value, err := flags.GetString(string(kind))
		if err != nil {
			return nil, err
		}
		switch value = strings.TrimSpace(value); value {
		case flagEnabled, "":
			cfg.Kinds = withKind(cfg.Kinds, kind)
		case "false":
			cfg.Kinds = withoutKind(cfg.Kinds, kind)
		default:
			cfg.Paths[string(kind)] = value
			cfg.Kinds = withKind(cfg.Kinds, kind)
		}
	}
	if len(cfg.Kinds) == 0 {
		return nil, newUsageError(fmt.Sprintf("%s: no artifact kinds left to generate", cmd.Name()))
	}
	for name, dst := range map[string]*bool{
		"forms":         &cfg.GenerateForms,
		"list":          &cfg.GenerateLists,
		"enum-as-union": &cfg.EnumAsUnion,
		"react-query":   &cfg.UseReactQuery,
		"dry-run":       &cfg.DryRun,
	} {
		if !flags.Changed(name) {
			continue
		}
		value, err := flags.GetBool(name)
		if err != nil {
			return nil, err
		}
		*dst = value
	}

	if cfg.Spec == "" {
		return nil, newUsageError(fmt.Sprintf("%s: --spec is required (set via flag, config file or %sSPEC)", cmd.Name(), config.EnvPrefix))
	}
	if cfg.Output == "" {
		cfg.Output = "."
	}
	if err := cfg.Validate(); err != nil {
		return nil, newUsageError(fmt.Sprintf("%s: invalid configuration: %v", cmd.Name(), err))
	}
	return cfg, nil
}

// resolveConfig layers defaults, the --config file, the environment and the
// shared spec flags.
func resolveConfig(cmd *cobra.Command) (config.Config, string, error) {
	cfg := config.Default()

	configPath, err := cmd.Flags().GetString("config")
	if err != nil {
		return cfg, "", err
	}
	configPath = strings.TrimSpace(configPath)
	if configPath != "" {
		o, err := config.LoadFile(configPath)
		if err != nil {
			return cfg, "", newUsageError(err.Error())
		}
		cfg = config.Merge(cfg, o)
	}

	envOverride, err := config.FromEnv(nil)
	if err != nil {
		return cfg, "", newUsageError(err.Error())
	}
	cfg = config.Merge(cfg, envOverride)

	if err := applySpecFlagOverrides(cmd.Flags(), &cfg); err != nil {
		return cfg, "", err
	}
	cfg.Spec = strings.TrimSpace(cfg.Spec)
	cfg.IncludeTags = sanitizeTags(cfg.IncludeTags)
	cfg.ExcludeTags = sanitizeTags(cfg.ExcludeTags)
	return cfg, configPath, nil
}

func applySpecFlagOverrides(flags *pflag.FlagSet, cfg *config.Config) error {
	if flags.Changed("spec") {
		value, err := flags.GetString("spec")
		if err != nil {
			return err
		}
		cfg.Spec = value
	}
	for name, dst := range map[string]*[]string{
		"include-tags":  &cfg.IncludeTags,
		"exclude-tags":  &cfg.ExcludeTags,
		"methods":       &cfg.Methods,
		"path-patterns": &cfg.PathPatterns,
	} {
		if !flags.Changed(name) {
			continue
		}
		value, err := flags.GetStringSlice(name)
		if err != nil {
			return err
		}
		*dst = value
	}
	if flags.Changed("verbose") {
		value, err := flags.GetBool("verbose")
		if err != nil {
			return err
		}
		cfg.Verbose = value
	}
	return nil
}

func withKind(kinds []emitter.Kind, k emitter.Kind) []emitter.Kind {
	for _, have := range kinds {
		if have == k {
			return kinds
		}
	}
	return append(kinds, k)
}

func withoutKind(kinds []emitter.Kind, k emitter.Kind) []emitter.Kind {
	out := kinds[:0:0]
	for _, have := range kinds {
		if have != k {
			out = append(out, have)
		}
	}
	return out
}

// newLogger logs at quiet unless verbose is set.
func newLogger(verbose bool, quiet string) (*zap.Logger, error) {
	level := quiet
	if verbose {
		level = "debug"
	}
	return logging.NewLogger(logging.Config{Level: level, Component: "swagger2client"})
}

// loadOperations loads the document and builds the schema index and the
// filtered operation list.
func loadOperations(ctx context.Context, cfg config.Config) (*genspec.SchemaIndex, []genspec.OperationRecord, error) {
	doc, err := genspec.Load(ctx, cfg.Spec)
	if err != nil {
		return nil, nil, specFailure(err)
	}
	idx, err := genspec.Read(doc)
	if err != nil {
		return nil, nil, specFailure(err)
	}
	methods := make([]genspec.HttpMethod, 0, len(cfg.Methods))
	for _, m := range cfg.Methods {
		methods = append(methods, genspec.HttpMethod(strings.ToUpper(strings.TrimSpace(m))))
	}
	ops, err := genspec.Group(doc,
		genspec.WithIncludeTags(cfg.IncludeTags),
		genspec.WithExcludeTags(cfg.ExcludeTags),
		genspec.WithMethods(methods),
		genspec.WithPathPatterns(cfg.PathPatterns),
	)
	if err != nil {
		return nil, nil, specFailure(err)
	}
	return idx, ops, nil
}

// specFailure maps structured spec errors into friendly messages.
func specFailure(err error) error {
	var se *genspec.SpecError
	if !errors.As(err, &se) {
		return err
	}
	msg := fmt.Sprintf("spec: %s", strings.TrimPrefix(se.Message, "spec: "))
	if se.Location != "" {
		msg = fmt.Sprintf("%s\nLocation: %s", msg, se.Location)
	}
	if se.JSONPointer != "" {
		msg = fmt.Sprintf("%s\nPointer: %s", msg, se.JSONPointer)
	}
	return fmt.Errorf("%s: %w", msg, errSpec)
}

var errSpec = errors.New("invalid spec")

func runGenerate(ctx context.Context, cfg *GenerateConfig, out io.Writer) error {
	logger, err := newLogger(cfg.Verbose, "error")
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	// 1) Load the document and build the model
	idx, ops, err := loadOperations(ctx, cfg.Config)
	if err != nil {
		return err
	}
	logger.Debug("spec loaded",
		zap.String("spec", cfg.Spec),
		zap.Int("schemas", idx.Len()),
		zap.Int("operations", len(ops)),
	)

	// 2) Template overrides are read here so the generator never touches disk
	sources, err := cfg.TemplateSources()
	if err != nil {
		return newUsageError(err.Error())
	}
	renderer, err := render.New(sources)
	if err != nil {
		return newUsageError(err.Error())
	}

	// 3) Generate
	res, err := generate.Generate(ctx, idx, ops,
		generate.WithKinds(cfg.Kinds...),
		generate.WithOptions(cfg.EmitterOptions()),
		generate.WithRenderer(renderer),
		generate.WithLogger(logger),
	)
	if err != nil {
		return err
	}

	absOut := cfg.Output
	if ap, err := filepath.Abs(cfg.Output); err == nil {
		absOut = ap
	}
	if cfg.DryRun {
		printPlan(out, absOut, res.Artifacts.Artifacts())
		printWarnings(out, res.Warnings)
		return nil
	}

	// 4) Write
	target := fsys.NewOS(cfg.Output)
	warnings := res.Warnings
	if w := missingServicesWarning(target, cfg); w != nil {
		warnings = append(warnings, w)
	}
	written, writeErr := fsys.WriteArtifacts(ctx, target, res.Artifacts, logger)
	printSummary(out, absOut, written, res.Counts(), warnings)
	if writeErr != nil {
		return wrapOutputError(writeErr, absOut)
	}
	return nil
}

// missingServicesWarning reports hooks generated without services: the
// hooks import the service classes, which must already exist on disk.
func missingServicesWarning(target fsys.FS, cfg *GenerateConfig) error {
	hooks, services := false, false
	for _, k := range cfg.Kinds {
		hooks = hooks || k == emitter.KindHooks
		services = services || k == emitter.KindServices
	}
	if !hooks || services {
		return nil
	}
	dir := cfg.EmitterOptions().Dir(emitter.KindServices)
	names, err := target.ReadDirectory(dir)
	if err != nil && !fsys.IsNotExist(err) {
		return fmt.Errorf("hooks: cannot inspect %s: %w", dir, err)
	}
	for _, n := range names {
		if strings.HasSuffix(n, ".service.ts") {
			return nil
		}
	}
	return fmt.Errorf("hooks: no generated services found in %s; run `swagger2client services` first", dir)
}

func printPlan(out io.Writer, outDir string, artifacts []emitter.Artifact) {
	fmt.Fprintf(out, "Planned writes to %s (%d files):\n", outDir, len(artifacts))
	for _, a := range artifacts {
		fmt.Fprintf(out, "- %s\n", a.Path)
	}
}

func printSummary(out io.Writer, outDir string, written int, counts map[emitter.Kind]int, warnings []error) {
	fmt.Fprintf(out, "Generated %d files in %s\n", written, outDir)
	for _, k := range emitter.AllKinds {
		if n := counts[k]; n > 0 {
			fmt.Fprintf(out, "  %-10s %d\n", k, n)
		}
	}
	printWarnings(out, warnings)
}

func printWarnings(out io.Writer, warnings []error) {
	if len(warnings) == 0 {
		return
	}
	fmt.Fprintf(out, "Warnings (%d):\n", len(warnings))
	for _, w := range warnings {
		fmt.Fprintf(out, "  - %v\n", w)
	}
}

func wrapOutputError(err error, outDir string) error {
	var we *fsys.WriteError
	if errors.As(err, &we) {
		kinds := failedKinds(err)
		return fmt.Errorf("output error for %s (failed kinds: %s): %w\nHint: choose a different --output or check directory permissions", outDir, strings.Join(kinds, ", "), err)
	}
	return err
}

func failedKinds(err error) []string {
	var kinds []string
	var walk func(error)
	walk = func(e error) {
		if joined, ok := e.(interface{ Unwrap() []error }); ok {
			for _, inner := range joined.Unwrap() {
				walk(inner)
			}
			return
		}
		var we *fsys.WriteError
		if errors.As(e, &we) {
			kinds = append(kinds, string(we.Kind))
		}
	}
	walk(err)
	sort.Strings(kinds)
	return kinds
}

func sanitizeTags(tags []string) []string {
	if len(tags) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(tags))
	result := make([]string, 0, len(tags))
	for _, tag := range tags {
		trimmed := strings.TrimSpace(tag)
		if trimmed == "" {
			continue
		}
		if _, exists := seen[trimmed]; exists {
			continue
		}
		seen[trimmed] = struct{}{}
		result = append(result, trimmed)
	}
	if len(result) == 0 {
		return nil
	}
	return result
}
