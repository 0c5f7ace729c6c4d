package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/rtzll/recap/internal"
)

// metadataCmd represents the metadata command
var metadataCmd = &cobra.Command{
	Use:   "metadata [URL]",
	Short: "Get metadata from YouTube video",
	Example: `  # Get metadata from YouTube video
  recap metadata "https://www.youtube.com/watch?v=tAP1eZYEuKA"
  recap metadata tAP1eZYEuKA

  # Save metadata to file
  recap metadata tAP1eZYEuKA -o metadata.json

  # Format output as pretty JSON
  recap metadata tAP1eZYEuKA --pretty

  # Print labeled text instead of JSON
  recap metadata tAP1eZYEuKA --text`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := newVideoApp(cmd)
		if err != nil {
			return err
		}

		metadata, err := app.Metadata(cmd.Context(), args[0])
		if err != nil {
			return err
		}

		var data []byte
		if asText, _ := cmd.Flags().GetBool("text"); asText {
			data = []byte(internal.FormatMetadata(metadata))
		} else if pretty, _ := cmd.Flags().GetBool("pretty"); pretty {
			data, err = json.MarshalIndent(metadata, "", "  ")
		} else {
			data, err = json.Marshal(metadata)
		}
		if err != nil {
			return fmt.Errorf("error converting metadata to JSON: %w", err)
		}

		outputFile, _ := cmd.Flags().GetString("output")
		if outputFile != "" {
			return os.WriteFile(outputFile, data, 0644)
		}

		fmt.Println(string(data))

		return nil
	},
}

func init() {
	metadataCmd.Flags().StringP("output", "o", "", "Output file path (default: stdout)")
	metadataCmd.Flags().Bool("pretty", false, "Format output as pretty JSON")
	metadataCmd.Flags().Bool("text", false, "Format output as labeled text")
	rootCmd.AddCommand(metadataCmd)
}
