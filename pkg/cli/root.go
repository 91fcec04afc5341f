package cli

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"osident/internal/config"
	"osident/internal/domain"
	"osident/internal/identity"
	"osident/internal/native"
)

var (
	version = "dev"
	commit  = "none"
)

// app is the state shared by every command once flags and config are resolved.
type app struct {
	cfg      *config.Config
	logger   *slog.Logger
	tracker  *native.Tracker
	resolver *identity.Resolver
	source   identity.Source

	// backend overrides the host backend in tests.
	backend identity.Backend
}

// Execute runs the CLI.
func Execute() int {
	a := &app{}
	rootCmd := newRootCmd(a)
	if err := rootCmd.Execute(); err != nil {
		if a.cfg != nil && a.format(os.Stdout) == config.OutputJSON {
			_ = printJSON(os.Stdout, errorObject(err))
		} else {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		return 1
	}
	return 0
}

// errorObject renders err with the fields of the typed domain errors.
func errorObject(err error) map[string]interface{} {
	obj := map[string]interface{}{
		"error": err.Error(),
	}
	var nce *domain.NativeCallError
	var notFound *domain.UserNotFoundError
	var denied *domain.AccessDeniedError
	switch {
	case errors.As(err, &denied):
		obj["kind"] = "access_denied"
	case errors.As(err, &nce):
		obj["kind"] = "native_call_failed"
		obj["call"] = nce.Call
		obj["code"] = nce.Code
	case errors.As(err, &notFound):
		obj["kind"] = "user_not_found"
		obj["uid"] = notFound.UID
	}
	return obj
}

func newRootCmd(a *app) *cobra.Command {
	var (
		output      string
		logLevel    string
		tokenPolicy string
		noCache     bool
	)

	rootCmd := &cobra.Command{
		Use:   "osident",
		Short: "Show the identity of the current OS user",
		Long: "osident queries the operating system for the current user's name, " +
			"user ID, primary group and group memberships.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}

			// Apply precedence: flag > env > file > default
			if cmd.Flags().Changed("output") {
				if err := config.ValidateOutput(output); err != nil {
					return err
				}
				cfg.Output = output
			}
			if cmd.Flags().Changed("log-level") {
				cfg.LogLevel = logLevel
			}
			if cmd.Flags().Changed("token-policy") {
				p, err := domain.ParseTokenPolicy(tokenPolicy)
				if err != nil {
					return err
				}
				cfg.TokenPolicy = p
			}
			if cmd.Flags().Changed("no-cache") {
				cfg.NoCache = noCache
			}

			return a.init(cfg, cmd.ErrOrStderr())
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runWhoami(cmd, a)
		},
	}

	rootCmd.PersistentFlags().StringVarP(&output, "output", "o", config.OutputAuto, "Output format (auto, table, json, yaml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&tokenPolicy, "token-policy", string(domain.TokenPolicyDegrade), "Windows token-open failure policy (degrade, strict)")
	rootCmd.PersistentFlags().BoolVar(&noCache, "no-cache", false, "Resolve on every query instead of once per process")

	rootCmd.AddCommand(newWhoamiCmd(a))
	rootCmd.AddCommand(newGroupsCmd(a))
	rootCmd.AddCommand(newIDCmd(a))
	rootCmd.AddCommand(newVerifyCmd(a))
	rootCmd.AddCommand(newPlatformCmd(a))
	rootCmd.AddCommand(newConfigCmd(a))
	rootCmd.AddCommand(newVersionCmd(a))
	rootCmd.AddCommand(newCommandsCmd(a))
	rootCmd.AddCommand(newCompletionCmd())

	return rootCmd
}

// init builds the logger and resolver from the effective configuration.
func (a *app) init(cfg *config.Config, stderr io.Writer) error {
	a.cfg = cfg
	a.logger = slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: cfg.SlogLevel()}))
	for _, w := range cfg.Warnings {
		a.logger.Warn(w)
	}
	if cfg.Path != "" {
		a.logger.Debug("config loaded", "path", cfg.Path)
	}

	a.tracker = &native.Tracker{}
	r, err := identity.New(identity.Options{
		Logger:      a.logger,
		TokenPolicy: cfg.TokenPolicy,
		Tracker:     a.tracker,
		Backend:     a.backend,
	})
	if err != nil {
		return err
	}
	a.resolver = r
	if cfg.NoCache {
		a.source = r
	} else {
		a.source = identity.NewCached(r)
	}
	return nil
}

func newCompletionCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Generate shell completion scripts",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			switch args[0] {
			case "bash":
				return cmd.Root().GenBashCompletion(out)
			case "zsh":
				return cmd.Root().GenZshCompletion(out)
			case "fish":
				return cmd.Root().GenFishCompletion(out, true)
			case "powershell":
				return cmd.Root().GenPowerShellCompletionWithDesc(out)
			default:
				return fmt.Errorf("unsupported shell: %s", args[0])
			}
		},
	}
	return cmd
}
