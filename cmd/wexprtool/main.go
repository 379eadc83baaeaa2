// Package main provides the CLI entry point for wexprTool, a converter and
// validator for Wexpr documents.
package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"go.hackerguild.com/wexpr"
	"go.hackerguild.com/wexpr/log"
	"go.hackerguild.com/wexpr/profile"
	"go.hackerguild.com/wexpr/schema"
	"go.hackerguild.com/wexpr/version"
)

// internalSchemaSentinel asks the tool to pull the schema id from the
// document root map's $schema value.
const internalSchemaSentinel = "(internal)"

// errValidateFailed marks a validation "false" result so main can exit
// nonzero without printing anything further.
var errValidateFailed = errors.New("validation failed")

type config struct {
	Command   string
	Input     string
	Output    string
	Schema    string
	SchemaMap []string
}

func main() {
	cfg := &config{}
	logCfg := log.NewConfig()
	profCfg := profile.NewConfig()

	rootCmd := &cobra.Command{
		Use:   "wexprTool [flags]",
		Short: "Convert and validate Wexpr documents",
		Long: `wexprTool reads a Wexpr document in textual or binary form (binary input is
detected by its leading 0x83 byte) and converts or validates it. The validate
command writes "true" or "false" and exits 0 or 1; an optional schema checks
the document against rules written in Wexpr themselves.`,
		Version:       version.String(),
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(_ *cobra.Command, _ []string) error {
			handler, err := logCfg.NewHandler(os.Stderr)
			if err != nil {
				return err
			}

			slog.SetDefault(slog.New(handler))

			profiler := profCfg.NewProfiler()
			if err := profiler.Start(); err != nil {
				return err
			}

			runErr := run(cfg)

			if err := profiler.Stop(); err != nil && runErr == nil {
				return err
			}

			return runErr
		},
	}

	flags := rootCmd.Flags()
	flags.StringVarP(&cfg.Command, "cmd", "c", "humanReadable",
		"command to run, one of: humanReadable, validate, mini, binary")
	flags.StringVarP(&cfg.Input, "input", "i", "-",
		"input file path (- for stdin)")
	flags.StringVarP(&cfg.Output, "output", "o", "-",
		"output file path (- for stdout)")
	flags.StringVarP(&cfg.Schema, "schema", "s", "",
		`schema id to validate against ("(internal)" reads the document's $schema)`)
	flags.StringArrayVarP(&cfg.SchemaMap, "schemaMap", "m", nil,
		"schema id to path override as a wexpr array '#(id path)', repeatable")

	logCfg.RegisterFlags(rootCmd.PersistentFlags())
	profCfg.RegisterFlags(rootCmd.PersistentFlags())

	completionErr := rootCmd.RegisterFlagCompletionFunc("cmd",
		cobra.FixedCompletions([]string{"humanReadable", "validate", "mini", "binary"},
			cobra.ShellCompDirectiveNoFileComp))
	if completionErr == nil {
		completionErr = logCfg.RegisterCompletions(rootCmd)
	}

	if completionErr != nil {
		fmt.Fprintf(os.Stderr, "register completions: %v\n", completionErr)
	}

	err := rootCmd.Execute()
	if err != nil {
		if !errors.Is(err, errValidateFailed) {
			fmt.Fprintf(os.Stderr, "wexprTool: %v\n", err)
		}

		os.Exit(1)
	}
}

func run(cfg *config) error {
	isValidate := cfg.Command == "validate"

	data, err := readAllInput(cfg.Input)
	if err != nil {
		return fmt.Errorf("reading input: %w", err)
	}

	expr, parseErr := parseInput(data)
	if parseErr != nil {
		if isValidate {
			if werr := writeAllOutput(cfg.Output, []byte("false\n")); werr != nil {
				return werr
			}

			return errValidateFailed
		}

		return fmt.Errorf("%s: %w", inputName(cfg.Input), parseErr)
	}

	switch cfg.Command {
	case "validate":
		return runValidate(cfg, expr)

	case "humanReadable":
		return writeAllOutput(cfg.Output, []byte(expr.StringRepresentation(0, true)))

	case "mini":
		return writeAllOutput(cfg.Output, []byte(expr.StringRepresentation(0, false)))

	case "binary":
		return writeAllOutput(cfg.Output, wexpr.EncodeFile(expr))

	default:
		return fmt.Errorf("unknown command %q", cfg.Command)
	}
}

// parseInput decodes data as a binary Wexpr file when it starts with the
// envelope magic byte, and as text otherwise.
func parseInput(data []byte) (*wexpr.Expression, error) {
	if len(data) >= 1 && data[0] == 0x83 {
		return wexpr.DecodeFile(data)
	}

	return wexpr.Parse(data)
}

func runValidate(cfg *config, expr *wexpr.Expression) error {
	if cfg.Schema != "" {
		loaded, err := loadSchema(cfg, expr)
		if err != nil {
			return err
		}

		if verr := loaded.ValidateExpression(expr); verr != nil {
			slog.Debug("schema validation failed", slog.Any("error", verr))

			if werr := writeAllOutput(cfg.Output, []byte("false\n")); werr != nil {
				return werr
			}

			return errValidateFailed
		}
	}

	return writeAllOutput(cfg.Output, []byte("true\n"))
}

// loadSchema resolves the schema id (including the "(internal)" sentinel)
// and loads it with any -m id-to-path overrides applied.
func loadSchema(cfg *config, expr *wexpr.Expression) (*schema.Schema, error) {
	id := cfg.Schema

	if id == internalSchemaSentinel {
		idExpr := expr.MapGet("$schema")
		if idExpr == nil || idExpr.Type() != wexpr.TypeValue {
			return nil, errors.New("document has no $schema value to use with (internal)")
		}

		id = idExpr.Value()
	}

	overrides, err := parseSchemaMap(cfg.SchemaMap)
	if err != nil {
		return nil, err
	}

	callbacks := &schema.Callbacks{
		PathForSchemaID: func(schemaID string) string {
			return overrides[schemaID]
		},
	}

	loaded, err := schema.Load(id, callbacks)
	if err != nil {
		return nil, err
	}

	return loaded, nil
}

// parseSchemaMap reads -m overrides, each a wexpr array '#(id path)'.
func parseSchemaMap(entries []string) (map[string]string, error) {
	overrides := make(map[string]string, len(entries))

	for _, entry := range entries {
		mapping, err := wexpr.Parse([]byte(entry))
		if err != nil {
			return nil, fmt.Errorf("parsing schemaMap entry %q: %w", entry, err)
		}

		if mapping.Type() != wexpr.TypeArray || mapping.ArrayCount() != 2 {
			return nil, fmt.Errorf("schemaMap entry %q must be an array of id and path", entry)
		}

		overrides[mapping.ArrayAt(0).Value()] = mapping.ArrayAt(1).Value()
	}

	return overrides, nil
}

func inputName(path string) string {
	if path == "-" {
		return "(stdin)"
	}

	return path
}

func readAllInput(path string) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(os.Stdin)
	}

	return os.ReadFile(path)
}

func writeAllOutput(path string, data []byte) error {
	if path == "-" {
		_, err := os.Stdout.Write(data)

		return err
	}

	return os.WriteFile(path, data, 0o644)
}
