package cli

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "englishflow-ai",
	Short: "LLM relay for the EnglishFlow learning app",
	Long:  "englishflow-ai serves writing feedback, vocabulary, sentence review, lesson scoring and conversation practice backed by a completion provider.",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe(cmd)
	},
	SilenceUsage: true,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().String("port", "", "Listen port (overrides PORT env var)")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(versionCmd)
}
