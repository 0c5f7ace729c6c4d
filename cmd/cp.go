package cmd

import (
	"fmt"

	"github.com/atotto/clipboard"
	"github.com/spf13/cobra"

	"github.com/rtzll/recap/internal"
)

// cpCmd copies the summary to the system clipboard instead of printing to stdout.
var cpCmd = &cobra.Command{
	Use:   "cp [URL]",
	Short: "Copy the summary of a YouTube video to the clipboard",
	Example: `  # Copy the summary of a video
  recap cp "https://www.youtube.com/watch?v=tAP1eZYEuKA"
  recap cp tAP1eZYEuKA

  # Copy the transcript instead
  recap cp tAP1eZYEuKA --transcript`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		onlyTranscript, _ := cmd.Flags().GetBool("transcript")

		newCopyApp := newApp
		if onlyTranscript {
			newCopyApp = newVideoApp
		}
		app, err := newCopyApp(cmd)
		if err != nil {
			return err
		}

		var text, what string
		if onlyTranscript {
			transcript, err := app.Transcript(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			text, what = transcript.Text, "Transcript"
		} else {
			sess := internal.NewSession()
			if err := summarizeArg(cmd, app, sess, args[0]); err != nil {
				return err
			}
			text, what = sess.Summary(), "Summary"
		}

		if err := clipboard.WriteAll(text); err != nil {
			return fmt.Errorf("copying to clipboard: %w", err)
		}

		if !config.Quiet {
			fmt.Printf("%s copied to clipboard\n", what)
		}

		return nil
	},
}

func init() {
	internal.AddLLMFlags(cpCmd)
	internal.AddLanguageFlags(cpCmd)
	cpCmd.Flags().Bool("transcript", false, "Copy the transcript instead of the summary")
	rootCmd.AddCommand(cpCmd)
}
