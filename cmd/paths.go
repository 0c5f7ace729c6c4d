package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/rtzll/recap/internal"
)

// pathsCmd represents the paths command
var pathsCmd = &cobra.Command{
	Use:   "paths",
	Short: "Show paths used by the application",
	Example: `  # Show all application paths
  recap paths`,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("Config directory: %s\n", config.ConfigDir)
		fmt.Printf("Config file: %s\n", filepath.Join(config.ConfigDir, "config.toml"))
		fmt.Printf("Prompt templates: %s, %s, %s\n", internal.MapPromptFile, internal.CombinePromptFile, internal.AnswerPromptFile)
		fmt.Printf("Data directory: %s\n", config.DataDir)
		fmt.Printf("Cache directory: %s\n", config.CacheDir)
		fmt.Printf("Temp directory: %s\n", config.TempDir)
		fmt.Printf("MCP log: %s\n", filepath.Join(config.CacheDir, mcpLogFile))
	},
}

func init() {
	rootCmd.AddCommand(pathsCmd)
}
