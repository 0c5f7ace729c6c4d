package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/rtzll/recap/internal"
)

// errNotVideo reports a valid URL that is not a supported video link
func errNotVideo(url string) error {
	return fmt.Errorf("%w: %s is not a YouTube video link", internal.ErrInvalidURL, url)
}

// summarizeCmd represents the summarize command
var summarizeCmd = &cobra.Command{
	Use:   "summarize [YouTube URL or ID] [-q question]...",
	Short: "Summarize a YouTube video and answer questions about it",
	Example: `  # Summarize a YouTube video
  recap summarize "https://www.youtube.com/watch?v=tAP1eZYEuKA"
  recap summarize tAP1eZYEuKA

  # Ask questions about the summary
  recap summarize tAP1eZYEuKA -q "What is the main argument?" -q "Who is the speaker?"

  # Use a specific model and a custom final prompt
  recap summarize tAP1eZYEuKA --model gpt-4o --combine-prompt "Title and three bullet points: {{.text}}"`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := newApp(cmd)
		if err != nil {
			return err
		}

		sess := internal.NewSession()
		if err := summarizeArg(cmd, app, sess, args[0]); err != nil {
			return err
		}
		internal.PrintMarkdown(os.Stdout, sess.Summary())

		questions, _ := cmd.Flags().GetStringArray("question")
		for _, question := range questions {
			answer, err := app.Ask(cmd.Context(), sess, question)
			if err != nil {
				return err
			}
			fmt.Printf("\nQ: %s\n", question)
			internal.PrintMarkdown(os.Stdout, answer)
		}

		return nil
	},
}

func init() {
	internal.AddLLMFlags(summarizeCmd)
	internal.AddLanguageFlags(summarizeCmd)
	summarizeCmd.Flags().StringArrayP("question", "q", nil, "Question to answer about the summary (repeatable)")
	rootCmd.AddCommand(summarizeCmd)
}
