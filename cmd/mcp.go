package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/adrg/xdg"
	"github.com/spf13/cobra"

	"github.com/rtzll/recap/internal"
)

// mcpLogFile is the MCP server log in the cache directory
const mcpLogFile = "mcp.log"

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Run recap as an MCP tool server",
	Long: `Run a Model Context Protocol (MCP) server so assistants can summarize
videos and ask about them.

Tools:
  summarize_youtube_video  summarize a video and keep the summary
  ask_about_summary        answer a question about the kept summary
  get_youtube_transcript   captions of a video as plain text
  get_youtube_metadata     title, channel, duration, chapters

The server keeps one summary at a time. Logs go to mcp.log in the cache
directory (see recap paths), since stdout carries the protocol.`,
	Example: `  # Serve over stdin/stdout
  recap mcp

  # Serve over streamable HTTP on port 8080
  recap mcp --transport http --port 8080

  # Register recap with Claude Desktop
  recap mcp setup-claude`,
	Args: cobra.NoArgs,
	PreRunE: func(cmd *cobra.Command, args []string) error {
		config.Quiet = true
		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		transport, _ := cmd.Flags().GetString("transport")
		port, _ := cmd.Flags().GetInt("port")
		if transport != "stdio" && transport != "http" {
			return fmt.Errorf("%w: unknown transport %q (stdio or http)", internal.ErrConfiguration, transport)
		}

		mcpLogger, closer, err := internal.NewFileLogger(config.CacheDir, mcpLogFile, config.Verbose)
		if err != nil {
			return err
		}
		defer closer.Close()
		logger = mcpLogger

		app, err := newApp(cmd, internal.WithUI(internal.NewUIManager(true)))
		if err != nil {
			mcpLogger.Error("starting MCP server", "error", err)
			return err
		}

		return internal.NewMCPServer(app, version, mcpLogger).Start(cmd.Context(), transport, port)
	},
}

var setupClaudeCmd = &cobra.Command{
	Use:   "setup-claude",
	Short: "Register the recap MCP server with Claude Desktop",
	Long: `Add recap to the mcpServers section of claude_desktop_config.json.
Other servers and settings in the file are kept. The XDG base directories
of this shell are passed along so the server reads the same config.toml.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		execPath, err := os.Executable()
		if err != nil {
			return fmt.Errorf("getting executable path: %w", err)
		}
		if execPath, err = filepath.EvalSymlinks(execPath); err != nil {
			return fmt.Errorf("resolving executable path: %w", err)
		}

		homeDir, _ := os.UserHomeDir()
		configPath, err := internal.DesktopConfigPath(runtime.GOOS, homeDir, os.Getenv("APPDATA"))
		if err != nil {
			return fmt.Errorf("locating Claude Desktop config: %w", err)
		}

		err = internal.RegisterDesktopServer(configPath, internal.AppName, internal.DesktopServer{
			Command: execPath,
			Args:    []string{"mcp"},
			Env: map[string]string{
				"XDG_DATA_HOME":   xdg.DataHome,
				"XDG_CONFIG_HOME": xdg.ConfigHome,
				"XDG_CACHE_HOME":  xdg.CacheHome,
			},
		})
		if err != nil {
			return err
		}

		fmt.Printf("Registered %s in %s\n", internal.AppName, configPath)
		fmt.Println("Restart Claude Desktop to use it")
		return nil
	},
}

func init() {
	internal.AddLLMFlags(mcpCmd)
	internal.AddLanguageFlags(mcpCmd)
	mcpCmd.Flags().String("transport", "stdio", "Transport protocol (stdio or http)")
	mcpCmd.Flags().Int("port", 8080, "Port for the http transport")
	mcpCmd.AddCommand(setupClaudeCmd)
	rootCmd.AddCommand(mcpCmd)
}
