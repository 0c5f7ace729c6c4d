package internal

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDesktopConfigPath(t *testing.T) {
	got, err := DesktopConfigPath("darwin", "/Users/me", "")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("/Users/me", "Library", "Application Support", "Claude", "claude_desktop_config.json"), got)

	got, err = DesktopConfigPath("linux", "/home/me", "")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("/home/me", ".config", "Claude", "claude_desktop_config.json"), got)

	_, err = DesktopConfigPath("windows", "", "")
	assert.Error(t, err)

	_, err = DesktopConfigPath("plan9", "/", "")
	assert.Error(t, err)
}

func TestRegisterDesktopServerKeepsOtherSettings(t *testing.T) {
	path := filepath.Join(t.TempDir(), "claude_desktop_config.json")
	existing := `{
  "globalShortcut": "Ctrl+Space",
  "mcpServers": {
    "files": {"command": "files-server", "args": ["--root", "/tmp"]}
  }
}`
	require.NoError(t, os.WriteFile(path, []byte(existing), 0644))

	server := DesktopServer{Command: "/usr/local/bin/recap", Args: []string{"mcp"}, Env: map[string]string{"XDG_CONFIG_HOME": "/home/me/.config"}}
	require.NoError(t, RegisterDesktopServer(path, AppName, server))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var doc struct {
		GlobalShortcut string                   `json:"globalShortcut"`
		MCPServers     map[string]DesktopServer `json:"mcpServers"`
	}
	require.NoError(t, json.Unmarshal(data, &doc))

	assert.Equal(t, "Ctrl+Space", doc.GlobalShortcut)
	assert.Equal(t, "files-server", doc.MCPServers["files"].Command)
	assert.Equal(t, server, doc.MCPServers[AppName])
}

func TestRegisterDesktopServerReplacesEntry(t *testing.T) {
	path := filepath.Join(t.TempDir(), "claude_desktop_config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"mcpServers": null}`), 0644))

	require.NoError(t, RegisterDesktopServer(path, AppName, DesktopServer{Command: "old", Args: []string{"mcp"}}))
	require.NoError(t, RegisterDesktopServer(path, AppName, DesktopServer{Command: "new", Args: []string{"mcp"}}))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var doc struct {
		MCPServers map[string]DesktopServer `json:"mcpServers"`
	}
	require.NoError(t, json.Unmarshal(data, &doc))
	require.Len(t, doc.MCPServers, 1)
	assert.Equal(t, "new", doc.MCPServers[AppName].Command)
}

func TestRegisterDesktopServerErrors(t *testing.T) {
	dir := t.TempDir()

	err := RegisterDesktopServer(filepath.Join(dir, "missing.json"), AppName, DesktopServer{})
	assert.ErrorContains(t, err, "not found")

	broken := filepath.Join(dir, "broken.json")
	require.NoError(t, os.WriteFile(broken, []byte("{not json"), 0644))
	err = RegisterDesktopServer(broken, AppName, DesktopServer{})
	assert.ErrorContains(t, err, "parsing existing config")
}
