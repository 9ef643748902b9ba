package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/mikey/llm-phishing-detector/internal/adapters/filter"
)

var analyzeFlags struct {
	file string
}

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Analyze an RFC 5322 message",
	Long: `Parse a raw email message, classify its URLs and attachments and ask the
configured LLM for a narrative risk analysis.

The message is read from --file, or from stdin when no file is given.
The exit status is 2 when the message is considered phishing.`,
	RunE: analyzeMessage,
}

func init() {
	rootCmd.AddCommand(analyzeCmd)

	analyzeCmd.Flags().StringVarP(&analyzeFlags.file, "file", "f", "", "input email file (stdin if not specified)")
}

func analyzeMessage(cmd *cobra.Command, _ []string) error {
	container, err := buildContainer(cmd)
	if err != nil {
		return fmt.Errorf("failed to build dependency container: %w", err)
	}

	var phishing bool
	err = container.Invoke(func(cli *filter.CliFilter, logger *zap.Logger) error {
		defer logger.Sync()

		var reader io.Reader = cmd.InOrStdin()
		if analyzeFlags.file != "" {
			file, err := os.Open(analyzeFlags.file)
			if err != nil {
				return fmt.Errorf("failed to open input file: %w", err)
			}
			defer file.Close()
			reader = file
			logger.Info("Reading email from file", zap.String("file", analyzeFlags.file))
		} else {
			logger.Info("Reading email from stdin")
		}

		result, err := cli.ProcessMessage(cmd.Context(), reader)
		if err != nil {
			return err
		}
		phishing = filter.IsPhishing(result)
		return nil
	})
	if err != nil {
		return err
	}

	if phishing {
		os.Exit(2)
	}
	return nil
}
