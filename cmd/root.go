package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/rtzll/recap/internal"
)

var (
	config *internal.Config
	logger *slog.Logger
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "recap [YouTube URL or ID]",
	Short: "Summarize a YouTube video, then ask questions about it",
	Long: `recap summarizes YouTube videos from their captions and answers
follow-up questions about the summary, typed or spoken.

The transcript is split into chunks, each chunk is summarized, and the
chunk summaries are combined into one titled summary. Questions are
answered against that summary by the same language model.

Without a subcommand recap starts an interactive session.`,
	Example: `  # Start an interactive session
  recap

  # Summarize a video, then ask questions about it
  recap "https://www.youtube.com/watch?v=tAP1eZYEuKA"
  recap tAP1eZYEuKA

  # Use a local Ollama model
  recap tAP1eZYEuKA --provider ollama --model llama3.1

  # Prefer German captions, fall back to English
  recap tAP1eZYEuKA --languages de,en`,
	SilenceErrors: true,
	SilenceUsage:  true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := internal.HandleVerboseFlag(cmd, config); err != nil {
			return err
		}
		quiet, _ := cmd.Flags().GetBool("quiet")
		config.Quiet = quiet
		logger = internal.NewLogger(os.Stderr, config.Verbose)
		slog.SetDefault(logger)
		return nil
	},
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var initialURL string
		if len(args) == 1 {
			arg := args[0]
			if internal.IsLikelyCommand(arg) {
				return unknownCommandError(cmd, arg)
			}
			initialURL = internal.NormalizeArg(arg)
		}

		app, err := newApp(cmd)
		if err != nil {
			return err
		}

		return internal.NewTerminal(app, os.Stdin, os.Stdout).Run(cmd.Context(), initialURL)
	},
}

// unknownCommandError suggests subcommands for an argument that is not a URL
func unknownCommandError(cmd *cobra.Command, arg string) error {
	var suggestions []string
	for _, c := range cmd.Root().Commands() {
		name := c.Name()
		if strings.Contains(name, arg) || strings.HasPrefix(arg, name) {
			suggestions = append(suggestions, name)
		}
	}

	if len(suggestions) > 0 {
		return fmt.Errorf("'%s' doesn't look like a YouTube URL or video ID. Did you mean: %s?", arg, strings.Join(suggestions, ", "))
	}
	return fmt.Errorf("'%s' doesn't look like a YouTube URL or video ID. Use --help to see available commands", arg)
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// A missing .env is fine; the environment may already be set
	_ = godotenv.Load()

	var err error
	config, err = internal.InitConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return err
	}
	logger = internal.NewLogger(os.Stderr, config.Verbose)

	if err := internal.EnsureDirs(config.ConfigDir, config.DataDir, config.CacheDir); err != nil {
		fmt.Fprintf(os.Stderr, "Error creating XDG directories: %v\n", err)
		return err
	}

	if created, err := internal.EnsureDefaultConfig(config.ConfigDir); err != nil {
		logger.Warn("failed to ensure default config", "error", err)
	} else if created {
		fmt.Fprintf(os.Stderr, "Created default configuration at %s\n", config.ConfigDir)
	}

	if err := internal.EnsureDefaultPrompts(config.ConfigDir); err != nil {
		logger.Warn("failed to ensure default prompts", "error", err)
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	go func() {
		if _, ok := <-sigCh; !ok {
			return
		}
		fmt.Fprintln(os.Stderr, "\nReceived interrupt signal. Cleaning up and shutting down...")
		cancel()

		cleanupCtx, cleanupCancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cleanupCancel()

		cleanupDone := make(chan struct{})
		go func() {
			if err := internal.CleanupTempDir(config.TempDir, logger); err != nil {
				logger.Error("cleaning up temporary files", "error", err)
			}
			close(cleanupDone)
		}()

		select {
		case <-cleanupDone:
		case <-cleanupCtx.Done():
			fmt.Fprintln(os.Stderr, "Warning: Cleanup timed out, forcing exit")
		}

		os.Exit(130)
	}()

	rootCmd.SetContext(ctx)

	err = rootCmd.Execute()
	if cleanupErr := internal.CleanupTempDir(config.TempDir, logger); cleanupErr != nil {
		logger.Error("cleaning up temporary files", "error", cleanupErr)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", internal.UserMessage(err))
	}
	return err
}

func init() {
	internal.AddLLMFlags(rootCmd)
	internal.AddLanguageFlags(rootCmd)
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose output for debugging")
	rootCmd.PersistentFlags().Bool("quiet", false, "Hide progress output")
}
