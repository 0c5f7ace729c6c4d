package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rtzll/recap/internal"
)

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the summarize-then-ask page in the browser",
	Long: `Serve a single web page with a URL field, a summary panel, a question
field and a voice input button. Each browser gets its own session.

Voice input records from the microphone of the machine running recap.`,
	Example: `  # Serve on the configured address (default 127.0.0.1:8501)
  recap serve

  # Serve on another port
  recap serve --addr 127.0.0.1:9000`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		addr, _ := cmd.Flags().GetString("addr")
		if addr == "" {
			addr = config.ListenAddr
		}

		// Progress bars have no terminal to draw on here
		app, err := newApp(cmd, internal.WithUI(internal.NewUIManager(true)))
		if err != nil {
			return err
		}

		server, err := internal.NewWebServer(app, internal.NewSessionStore(), logger)
		if err != nil {
			return err
		}

		if !config.Quiet {
			fmt.Printf("Serving recap on http://%s\n", addr)
		}
		return server.Serve(cmd.Context(), addr)
	},
}

func init() {
	internal.AddLLMFlags(serveCmd)
	internal.AddLanguageFlags(serveCmd)
	serveCmd.Flags().String("addr", "", "Listen address (default: listen_addr from config)")
	rootCmd.AddCommand(serveCmd)
}
