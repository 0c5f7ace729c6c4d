package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/rtzll/recap/internal"
)

// transcribeCmd represents the transcribe command
var transcribeCmd = &cobra.Command{
	Use:   "transcribe [YouTube URL or ID]",
	Short: "Get transcript from YouTube captions",
	Example: `  # Get transcript from YouTube captions
  recap transcribe "https://www.youtube.com/watch?v=tAP1eZYEuKA"
  recap transcribe tAP1eZYEuKA

  # Save transcript to file
  recap transcribe tAP1eZYEuKA -o transcript.txt

  # Accept only Spanish or English captions
  recap transcribe tAP1eZYEuKA --languages es,en`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := newVideoApp(cmd)
		if err != nil {
			return err
		}

		transcript, err := app.Transcript(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		logger.Debug("transcript fetched", "video", transcript.VideoID, "language", transcript.Language)

		outputFile, _ := cmd.Flags().GetString("output")
		if outputFile != "" {
			if err := os.WriteFile(outputFile, []byte(transcript.Text), 0644); err != nil {
				return fmt.Errorf("writing transcript: %w", err)
			}
			return nil
		}

		fmt.Println(transcript.Text)
		return nil
	},
}

func init() {
	internal.AddLanguageFlags(transcribeCmd)
	transcribeCmd.Flags().StringP("output", "o", "", "Output file path (default: stdout)")
	rootCmd.AddCommand(transcribeCmd)
}
