package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/soapbridge/soapbridge/internal/config"
)

var (
	version   = ""
	gitCommit = ""
	buildTime = ""
)

type globalFlags struct {
	configPath string
	envFile    string
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	flags := &globalFlags{}
	root := &cobra.Command{
		Use:   "soapbridge",
		Short: "MCP tool server for SoapUI projects",
		Long: `soapbridge exposes SoapUI project tooling (analysis, test suite execution,
SOAP and REST service management, assertions and test data) to AI assistant
hosts over the Model Context Protocol.`,
		Version:       displayVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&flags.configPath, "config", "", "YAML config file")
	root.PersistentFlags().StringVar(&flags.envFile, "env-file", ".env", "dotenv file loaded before reading the environment")

	root.AddCommand(
		newServeCmd(flags),
		newToolsCmd(flags),
		newTokenCmd(flags),
		newConfigCmd(flags),
		newVersionCmd(),
	)
	return root
}

// loadConfig applies the dotenv file and resolves the effective config.
func loadConfig(flags *globalFlags) (*config.Config, error) {
	if err := config.LoadDotEnv(flags.envFile); err != nil {
		return nil, err
	}
	return config.Load(flags.configPath)
}

func displayVersion() string {
	if version == "" {
		return "dev"
	}
	return version
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print build information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "soapbridge %s\n", displayVersion())
			if gitCommit != "" {
				fmt.Fprintf(cmd.OutOrStdout(), "commit: %s\n", gitCommit)
			}
			if buildTime != "" {
				fmt.Fprintf(cmd.OutOrStdout(), "built: %s\n", buildTime)
			}
		},
	}
}
