package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/soapbridge/soapbridge/internal/core"
	"github.com/soapbridge/soapbridge/internal/tools"
)

func newToolsCmd(flags *globalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tools",
		Short: "Inspect and exercise the tool catalog",
	}
	cmd.AddCommand(
		newToolsListCmd(),
		newToolsDocsCmd(),
		newToolsValidateCmd(),
		newToolsCallCmd(flags),
	)
	return cmd
}

func newToolsListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List tool names and descriptions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "NAME\tDESCRIPTION")
			for _, d := range tools.Definitions() {
				fmt.Fprintf(tw, "%s\t%s\n", d.Name, d.Description)
			}
			return tw.Flush()
		},
	}
}

func newToolsDocsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "docs",
		Short: "Print the Markdown tool reference",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprint(cmd.OutOrStdout(), tools.Markdown())
		},
	}
}

type argsFlags struct {
	inline string
	file   string
}

func (f *argsFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.inline, "args", "", "arguments as a JSON object")
	cmd.Flags().StringVar(&f.file, "args-file", "", "file holding the arguments JSON object")
	cmd.MarkFlagsMutuallyExclusive("args", "args-file")
}

func (f *argsFlags) load() (map[string]any, error) {
	raw := []byte(f.inline)
	if f.file != "" {
		data, err := os.ReadFile(f.file)
		if err != nil {
			return nil, fmt.Errorf("reading arguments: %w", err)
		}
		raw = data
	}
	if strings.TrimSpace(string(raw)) == "" {
		return map[string]any{}, nil
	}
	var args map[string]any
	if err := json.Unmarshal(raw, &args); err != nil {
		return nil, fmt.Errorf("arguments must be a JSON object: %w", err)
	}
	return args, nil
}

func newToolsValidateCmd() *cobra.Command {
	af := &argsFlags{}
	cmd := &cobra.Command{
		Use:   "validate <tool>",
		Short: "Check an argument object against a tool's input schema",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, argv []string) error {
			args, err := af.load()
			if err != nil {
				return err
			}
			violations, err := tools.ValidateArguments(argv[0], args)
			if err != nil {
				return err
			}
			if len(violations) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "valid")
				return nil
			}
			for _, v := range violations {
				fmt.Fprintln(cmd.OutOrStdout(), "-", v)
			}
			return fmt.Errorf("%d schema violation(s)", len(violations))
		},
	}
	af.register(cmd)
	return cmd
}

func newToolsCallCmd(flags *globalFlags) *cobra.Command {
	af := &argsFlags{}
	cmd := &cobra.Command{
		Use:   "call <tool>",
		Short: "Invoke a tool once and print its result text",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, argv []string) error {
			cfg, err := loadConfig(flags)
			if err != nil {
				return err
			}
			args, err := af.load()
			if err != nil {
				return err
			}
			redactor, err := newRedactor(cfg)
			if err != nil {
				return err
			}
			res := newDispatcher(cfg, core.NewPolicy(cfg.ToolAllowlistCSV()), redactor).Call(argv[0], args)
			fmt.Fprintln(cmd.OutOrStdout(), res.Text())
			if res.IsError {
				return errors.New("tool call failed")
			}
			return nil
		},
	}
	af.register(cmd)
	return cmd
}
