package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/dig"

	"github.com/mikey/llm-phishing-detector/internal/di"
)

var flags di.CLIFlags

var rootCmd = &cobra.Command{
	Use:          "phish-check",
	Short:        "Check emails and URLs for phishing",
	SilenceUsage: true,
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&flags.ConfigFile, "config", "", "path to config file")
	pf.StringVar(&flags.Provider, "provider", "", "LLM provider (gemini, openai, anthropic, bedrock)")
	pf.StringVar(&flags.Classifier, "classifier", "", "URL classifier (heuristic, remote)")
	pf.StringSliceVar(&flags.TrustedDomains, "trusted", nil, "comma-separated trusted domains for the heuristic classifier")
	pf.IntVar(&flags.MaxBodySize, "max-body-size", 0, "maximum email body size sent to the LLM (0 means unlimited)")
	pf.BoolVarP(&flags.Verbose, "verbose", "v", false, "enable verbose logging")
	pf.BoolVar(&flags.JSONLog, "json-log", false, "output logs in JSON format")
}

// buildContainer builds the CLI container writing to the command's output
func buildContainer(cmd *cobra.Command) (*dig.Container, error) {
	flags.Out = cmd.OutOrStdout()
	return di.BuildCLIContainer(&flags)
}
