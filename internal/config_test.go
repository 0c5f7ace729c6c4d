package internal

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmbeddedConfigMatchesDefaults(t *testing.T) {
	dir := t.TempDir()
	created, err := EnsureDefaultConfig(dir)
	require.NoError(t, err)
	assert.True(t, created)

	v := newViper(dir)
	require.NoError(t, v.ReadInConfig())
	config := configFromViper(v)

	assert.Equal(t, ProviderOpenAI, config.Provider)
	assert.Equal(t, "gpt-4o-mini", config.Model)
	assert.Equal(t, DefaultLanguages, config.Languages)
	assert.Equal(t, 12000, config.ChunkSize)
	assert.Equal(t, 200, config.ChunkOverlap)
	assert.Equal(t, 2*time.Minute, config.RequestTimeout)
	assert.Equal(t, 30*time.Second, config.VoiceMaxDuration)
	assert.Equal(t, 2*time.Second, config.VoiceSilence)
	assert.Equal(t, "127.0.0.1:8501", config.ListenAddr)
	require.NoError(t, config.Validate())

	created, err = EnsureDefaultConfig(dir)
	require.NoError(t, err)
	assert.False(t, created)
}

func TestConfigFileAndEnvironment(t *testing.T) {
	dir := t.TempDir()
	toml := `provider = "ollama"
model = "llama3.1"
languages = ["de", "en"]
chunk_size = 500
chunk_overlap = 50
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.toml"), []byte(toml), 0644))

	t.Setenv("RECAP_MODEL", "qwen2.5")
	t.Setenv("RECAP_API_KEY", "")
	t.Setenv("OPENAI_API_KEY", "")
	t.Setenv("GROQ_API_KEY", "gsk-test")

	v := newViper(dir)
	require.NoError(t, v.ReadInConfig())
	config := configFromViper(v)

	assert.Equal(t, ProviderOllama, config.Provider)
	assert.Equal(t, "qwen2.5", config.Model)
	assert.Equal(t, []string{"de", "en"}, config.Languages)
	assert.Equal(t, 500, config.ChunkSize)
	assert.Equal(t, "gsk-test", config.APIKey)
}

func TestConfigAPIKeyPrecedence(t *testing.T) {
	t.Setenv("RECAP_API_KEY", "recap-key")
	t.Setenv("OPENAI_API_KEY", "openai-key")
	t.Setenv("GROQ_API_KEY", "")

	v := newViper(t.TempDir())
	assert.Equal(t, "recap-key", configFromViper(v).APIKey)
}

func TestConfigGroqKeySelectsGroqEndpoint(t *testing.T) {
	t.Setenv("RECAP_API_KEY", "")
	t.Setenv("OPENAI_API_KEY", "")
	t.Setenv("GROQ_API_KEY", "gsk-test")

	config := configFromViper(newViper(t.TempDir()))
	assert.Equal(t, "gsk-test", config.APIKey)
	assert.Equal(t, GroqBaseURL, config.BaseURL)
}

func TestConfigGroqEndpointNotForcedOverOtherKeys(t *testing.T) {
	t.Setenv("RECAP_API_KEY", "")
	t.Setenv("OPENAI_API_KEY", "sk-test")
	t.Setenv("GROQ_API_KEY", "gsk-test")
	assert.Empty(t, configFromViper(newViper(t.TempDir())).BaseURL)

	t.Setenv("OPENAI_API_KEY", "")
	t.Setenv("RECAP_BASE_URL", "https://gateway.example.com/v1")
	assert.Equal(t, "https://gateway.example.com/v1", configFromViper(newViper(t.TempDir())).BaseURL)

	t.Setenv("RECAP_BASE_URL", "")
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.toml"), []byte(`api_key = "sk-file"`+"\n"), 0644))
	v := newViper(dir)
	require.NoError(t, v.ReadInConfig())
	assert.Empty(t, configFromViper(v).BaseURL)
}

func TestConfigValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			Languages:        []string{"en"},
			ChunkSize:        1000,
			ChunkOverlap:     100,
			VoiceMaxDuration: 10 * time.Second,
		}
	}
	require.NoError(t, valid().Validate())

	tests := map[string]func(c *Config){
		"no languages":       func(c *Config) { c.Languages = nil },
		"zero chunk size":    func(c *Config) { c.ChunkSize = 0 },
		"overlap too large":  func(c *Config) { c.ChunkOverlap = 1000 },
		"negative overlap":   func(c *Config) { c.ChunkOverlap = -1 },
		"negative rate":      func(c *Config) { c.RateLimit = -1 },
		"short voice window": func(c *Config) { c.VoiceMaxDuration = 100 * time.Millisecond },
	}
	for name, mutate := range tests {
		t.Run(name, func(t *testing.T) {
			c := valid()
			mutate(c)
			assert.ErrorIs(t, c.Validate(), ErrConfiguration)
		})
	}
}

func TestParseLanguages(t *testing.T) {
	assert.Equal(t, []string{"de", "en", "ja"}, ParseLanguages([]string{"de, en", " ", "ja"}))
	assert.Empty(t, ParseLanguages(nil))
}

func TestValidateAPIKey(t *testing.T) {
	assert.ErrorIs(t, ValidateAPIKey(""), ErrConfiguration)
	assert.NoError(t, ValidateAPIKey("sk-test"))
}

func TestValidateModel(t *testing.T) {
	openai := &Config{Provider: ProviderOpenAI}
	assert.NoError(t, ValidateModel(openai, "gpt-4o-mini"))
	assert.ErrorIs(t, ValidateModel(openai, "mixtral-8x7b-32768"), ErrConfiguration)
	assert.ErrorIs(t, ValidateModel(openai, " "), ErrConfiguration)

	groq := &Config{Provider: ProviderOpenAI, BaseURL: "https://api.groq.com/openai/v1"}
	assert.NoError(t, ValidateModel(groq, "mixtral-8x7b-32768"))

	ollama := &Config{Provider: ProviderOllama}
	assert.NoError(t, ValidateModel(ollama, "llama3.1"))
}
