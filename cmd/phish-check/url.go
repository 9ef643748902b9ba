package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/mikey/llm-phishing-detector/internal/core"
)

var urlCmd = &cobra.Command{
	Use:   "url <url>",
	Short: "Look a URL up against Safe Browsing",
	Long: `Query the Safe Browsing threat-matches API for a single URL and print
the result as JSON. Requires threat_intel.api_key or GOOGLE_API_KEY.`,
	Args: cobra.ExactArgs(1),
	RunE: checkURL,
}

func init() {
	rootCmd.AddCommand(urlCmd)
}

func checkURL(cmd *cobra.Command, args []string) error {
	container, err := buildContainer(cmd)
	if err != nil {
		return fmt.Errorf("failed to build dependency container: %w", err)
	}

	return container.Invoke(func(service *core.PhishingDetectionService, logger *zap.Logger) error {
		defer logger.Sync()

		result, err := service.CheckURL(cmd.Context(), args[0])
		if err != nil {
			return err
		}

		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	})
}
