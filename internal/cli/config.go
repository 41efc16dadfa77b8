package cli

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"repolens/internal/config"
	"repolens/internal/security"
)

var secretNames = []string{
	security.SecretLLMKey,
	security.SecretFallbackLLMKey,
	security.SecretGatewayToken,
}

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect configuration and manage secrets",
	}
	cmd.AddCommand(newConfigInitCmd(), newConfigShowCmd(), newConfigSetSecretCmd(), newConfigDeleteSecretCmd())
	return cmd
}

func newConfigInitCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a config file with default settings",
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := backend.WriteConfig(force)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", path)
			return nil
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing config file")

	return cmd
}

func newConfigShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration with secrets masked",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := maskedConfig(backend.Config())
			if outputFormat == "json" {
				return printJSON(cmd.OutOrStdout(), cfg)
			}
			return printYAML(cmd.OutOrStdout(), cfg)
		},
	}
}

func newConfigSetSecretCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set-secret <name>",
		Short: "Store a secret in the OS keychain or encrypted vault",
		Long: fmt.Sprintf(`Read a secret from stdin and store it. Reference it from the config
file with the value %q.

Names: %s`, security.KeyringPlaceholder, strings.Join(secretNames, ", ")),
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := args[0]
			if !knownSecret(name) {
				return fmt.Errorf("unknown secret %q (want one of %s)", name, strings.Join(secretNames, ", "))
			}
			value, err := readSecret(cmd.InOrStdin())
			if err != nil {
				return err
			}
			if err := backend.SetSecret(name, value); err != nil {
				return fmt.Errorf("store %s: %w", name, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "stored %s (%s)\n", name, security.MaskKey(value))
			return nil
		},
	}
}

func newConfigDeleteSecretCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete-secret <name>",
		Short: "Remove a stored secret",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := args[0]
			if !knownSecret(name) {
				return fmt.Errorf("unknown secret %q (want one of %s)", name, strings.Join(secretNames, ", "))
			}
			if err := backend.DeleteSecret(name); err != nil {
				return fmt.Errorf("delete %s: %w", name, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "deleted %s\n", name)
			return nil
		},
	}
}

func knownSecret(name string) bool {
	for _, n := range secretNames {
		if n == name {
			return true
		}
	}
	return false
}

func readSecret(in io.Reader) (string, error) {
	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && err != io.EOF {
		return "", err
	}
	value := strings.TrimSpace(line)
	if value == "" {
		return "", fmt.Errorf("no secret given on stdin")
	}
	return value, nil
}

func maskedConfig(cfg *config.Config) config.Config {
	c := *cfg
	c.LLM.APIKey = maskSecret(c.LLM.APIKey)
	if c.FallbackLLM != nil {
		fb := *c.FallbackLLM
		fb.APIKey = maskSecret(fb.APIKey)
		c.FallbackLLM = &fb
	}
	c.Gateway.Token = maskSecret(c.Gateway.Token)
	return c
}

func maskSecret(v string) string {
	if v == "" {
		return ""
	}
	return security.MaskKey(v)
}
