package cmd

import (
	"github.com/spf13/cobra"

	"github.com/rtzll/recap/internal"
)

// newApp applies the command's flags to the config and builds the app.
// Commands without LLM flags skip the provider and model checks.
func newApp(cmd *cobra.Command, options ...internal.AppOption) (*internal.App, error) {
	if cmd.Flags().Lookup("model") != nil {
		if err := internal.ValidateLLMRequirements(cmd, config); err != nil {
			return nil, err
		}
		if err := internal.HandlePromptFlags(cmd, config); err != nil {
			return nil, err
		}
	}
	return newVideoApp(cmd, options...)
}

// newVideoApp builds an app for transcript and metadata lookups only
func newVideoApp(cmd *cobra.Command, options ...internal.AppOption) (*internal.App, error) {
	if err := internal.HandleLanguageFlag(cmd, config); err != nil {
		return nil, err
	}

	options = append([]internal.AppOption{internal.WithLogger(logger)}, options...)
	return internal.NewApp(config, options...), nil
}

// summarizeArg summarizes a URL or bare video ID into sess, rejecting links
// that are not videos
func summarizeArg(cmd *cobra.Command, app *internal.App, sess *internal.Session, arg string) error {
	videoURL := internal.NormalizeArg(arg)
	summarized, err := app.Summarize(cmd.Context(), sess, videoURL)
	if err != nil {
		return err
	}
	if !summarized {
		return errNotVideo(videoURL)
	}
	return nil
}
