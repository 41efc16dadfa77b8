// Package cli implements the repolens command line.
package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"repolens/internal/apiserver"
	"repolens/internal/config"
	"repolens/internal/gateway"
)

// Options are the persistent flags that shape how the backend is built.
type Options struct {
	ConfigPath string
	LogLevel   string
	LogFormat  string
}

// Backend is the wired application the commands drive.
type Backend interface {
	apiserver.Service
	RemoteTools(ctx context.Context) gateway.Result
	SetSecret(name, value string) error
	DeleteSecret(name string) error
	// WriteConfig writes the effective defaults to the config file and
	// returns its path. An existing file is kept unless force is set.
	WriteConfig(force bool) (string, error)
	Config() *config.Config
	Logger() *zap.Logger
	Close() error
}

// Factory builds a Backend from the parsed persistent flags.
type Factory func(Options) (Backend, error)

var (
	opts    Options
	factory Factory
	backend Backend
)

// NewRootCmd creates the top-level repolens command with all subcommands.
func NewRootCmd(f Factory) *cobra.Command {
	factory = f
	cmd := &cobra.Command{
		Use:   "repolens",
		Short: "Ask questions about source-code repositories",
		Long: `repolens plans which repository tools to call, runs them through a
Tool Gateway and summarizes the results with a language model.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			switch outputFormat {
			case "table", "json", "yaml":
			default:
				return fmt.Errorf("unknown output format %q (want table, json or yaml)", outputFormat)
			}
			b, err := factory(opts)
			if err != nil {
				return err
			}
			backend = b
			return nil
		},
	}

	cmd.PersistentFlags().StringVar(&opts.ConfigPath, "config", "", "Config file (default: ~/.repolens/config.json)")
	cmd.PersistentFlags().StringVarP(&outputFormat, "output", "o", "table", "Output format: table|json|yaml")
	cmd.PersistentFlags().StringVar(&opts.LogLevel, "log-level", "", "Log level: debug|info|warn|error (overrides config)")
	cmd.PersistentFlags().StringVar(&opts.LogFormat, "log-format", "", "Log format: json|console (overrides config)")

	cmd.AddCommand(
		newAskCmd(),
		newToolsCmd(),
		newHealthCmd(),
		newHistoryCmd(),
		newServeCmd(),
		newConfigCmd(),
	)

	return cmd
}

// Execute runs cmd and releases the backend whatever the outcome.
func Execute(cmd *cobra.Command) error {
	err := cmd.Execute()
	if backend != nil {
		if cerr := backend.Close(); err == nil {
			err = cerr
		}
		backend = nil
	}
	return err
}
