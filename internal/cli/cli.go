package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"
	"github.com/vk/refinery/internal/app"
	"github.com/vk/refinery/internal/emit"
)

// Version is reported by the version command. Overridden at link time.
var Version = "0.1.0-dev"

// ExitError is a custom error type that includes a specific exit code.
type ExitError struct {
	Code    int
	Message string
}

// Error implements the error interface for ExitError.
func (e *ExitError) Error() string {
	return e.Message
}

func usageError(err error) error {
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return err
	}
	return &ExitError{Code: 2, Message: err.Error()}
}

// rootOptions are the persistent flags shared by every command.
type rootOptions struct {
	logLevel  string
	logFormat string

	// started is set once a command's RunE is entered. Errors returned
	// before that point are usage errors.
	started bool
}

// Execute parses args and runs the selected command. Command results go to
// outW; logs, help for errors and diagnostics go to errW. A usage problem is
// returned as an *ExitError with code 2.
func Execute(ctx context.Context, args []string, outW, errW io.Writer) error {
	slog.Debug("CLI parser started.", "args", len(args))
	opts := &rootOptions{}
	root := newRootCmd(opts, errW)
	root.SetArgs(args)
	root.SetOut(outW)
	root.SetErr(errW)

	err := root.ExecuteContext(ctx)
	if err != nil && !opts.started {
		return usageError(err)
	}
	return err
}

func newRootCmd(opts *rootOptions, logW io.Writer) *cobra.Command {
	root := &cobra.Command{
		Use:   "refinery",
		Short: "Generate parameter-sweep refinement workflows",
		Long: `refinery turns a simulation configuration and a list of sweep values into
an abstract workflow: one equilibrate, production, trajectory and scattering
pipeline per sweep value, the rendered per-task input files, and a replica
catalog for the execution fabric.`,
		SilenceErrors: true,
		SilenceUsage:  true,
	}
	root.PersistentFlags().StringVar(&opts.logLevel, "log-level", "info", "Logging level: debug, info, warn or error.")
	root.PersistentFlags().StringVar(&opts.logFormat, "log-format", "text", "Log output format: text or json.")
	root.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return usageError(err)
	})

	root.AddCommand(
		newGenerateCmd(opts, logW),
		newCheckCmd(opts, logW),
		newProfilesCmd(opts),
		newVersionCmd(opts),
	)
	return root
}

// planOptions are the flags of the commands that plan a workflow.
type planOptions struct {
	profile     string
	profileFile string
	templates   string
}

func (p *planOptions) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&p.profile, "profile", "", "Built-in profile table to use instead of the configured one.")
	cmd.Flags().StringVar(&p.profileFile, "profile-file", "", "YAML profile table file to use instead of the configured one.")
	cmd.Flags().StringVar(&p.templates, "templates", "", "Template directory to use instead of the configured or built-in set.")
}

func (p *planOptions) config(opts *rootOptions, configPath, outDir, format string) (*app.Config, error) {
	cfg, err := app.NewConfig(app.Config{
		ConfigPath:  configPath,
		OutDir:      outDir,
		Profile:     p.profile,
		ProfileFile: p.profileFile,
		TemplateDir: p.templates,
		Format:      strings.ToLower(format),
		LogLevel:    strings.ToLower(opts.logLevel),
		LogFormat:   strings.ToLower(opts.logFormat),
	})
	if err != nil {
		return nil, usageError(err)
	}
	return cfg, nil
}

func newGenerateCmd(opts *rootOptions, logW io.Writer) *cobra.Command {
	var (
		plan   planOptions
		format string
	)
	cmd := &cobra.Command{
		Use:   "generate CONFIG OUTDIR",
		Short: "Render the sweep and write the workflow into a new directory",
		Long: `generate reads CONFIG (.hcl, .yaml/.yml or .cfg/.ini), plans the whole
workflow in memory and writes it to OUTDIR, which must not exist yet. On any
error nothing is left behind.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.started = true
			cfg, err := plan.config(opts, args[0], args[1], format)
			if err != nil {
				return err
			}
			return app.NewApp(logW, cfg).Run(cmd.Context())
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", emit.FormatDAX,
		fmt.Sprintf("Workflow graph format: %s.", strings.Join(emit.Formats(), " or ")))
	plan.register(cmd)
	return cmd
}

func newCheckCmd(opts *rootOptions, logW io.Writer) *cobra.Command {
	var (
		plan   planOptions
		strict bool
	)
	cmd := &cobra.Command{
		Use:   "check CONFIG",
		Short: "Plan the workflow without writing it and report lint findings",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.started = true
			cfg, err := plan.config(opts, args[0], "", "")
			if err != nil {
				return err
			}
			findings, err := app.NewApp(logW, cfg).Check(cmd.Context())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			for _, f := range findings {
				fmt.Fprintln(out, f.String())
			}
			if len(findings) == 0 {
				fmt.Fprintln(out, "no findings")
			}
			if strict && len(findings) > 0 {
				return &ExitError{Code: 1, Message: fmt.Sprintf("%d lint finding(s)", len(findings))}
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&strict, "strict", false, "Exit with status 1 when there are lint findings.")
	plan.register(cmd)
	return cmd
}

func newVersionCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			opts.started = true
			fmt.Fprintf(cmd.OutOrStdout(), "refinery version %s\n", Version)
		},
	}
}
