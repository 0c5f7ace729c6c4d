package internal

import (
	"embed"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/adrg/xdg"
	"github.com/spf13/viper"
)

// AppName names the XDG directories and the environment prefix
const AppName = "recap"

// GroqBaseURL is the OpenAI-compatible endpoint used when only GROQ_API_KEY is set
const GroqBaseURL = "https://api.groq.com/openai/v1"

// DefaultLanguages are the accepted transcript languages in fallback order
var DefaultLanguages = []string{"en", "hi", "ta", "te", "es", "ru", "ja", "de", "ml"}

// Config holds application settings
type Config struct {
	// User configurable settings
	Provider         string
	Model            string
	BaseURL          string
	APIKey           string
	OllamaURL        string
	SpeechModel      string
	SpeechBaseURL    string
	Languages        []string
	ChunkSize        int
	ChunkOverlap     int
	RequestTimeout   time.Duration
	RateLimit        float64
	VoiceDevice      string
	VoiceMaxDuration time.Duration
	VoiceSilence     time.Duration
	ListenAddr       string
	MapPrompt        string
	CombinePrompt    string
	Verbose          bool
	Quiet            bool

	// Fixed XDG paths (not configurable)
	ConfigDir string
	DataDir   string
	CacheDir  string
	TempDir   string
}

//go:embed config.toml map_prompt.txt combine_prompt.txt answer_prompt.txt
var defaultFS embed.FS

// ensureDefaultFile checks if a file exists in the specified directory
// and creates it from the embedded default if it doesn't exist
func ensureDefaultFile(configDir, embedFilename, description string) (bool, error) {
	filePath := filepath.Join(configDir, embedFilename)

	if FileExists(filePath) {
		return false, nil
	}

	if err := os.MkdirAll(configDir, 0755); err != nil {
		return false, fmt.Errorf("creating config directory: %w", err)
	}

	defaultContent, err := defaultFS.ReadFile(embedFilename)
	if err != nil {
		return false, fmt.Errorf("reading embedded default %s: %w", description, err)
	}

	if err := os.WriteFile(filePath, defaultContent, 0644); err != nil {
		return false, fmt.Errorf("writing default %s: %w", description, err)
	}

	return true, nil
}

// EnsureDefaultConfig creates config.toml in the config directory if missing
func EnsureDefaultConfig(configDir string) (bool, error) {
	return ensureDefaultFile(configDir, "config.toml", "configuration")
}

// EnsureDefaultPrompts creates the prompt templates in the config directory if missing
func EnsureDefaultPrompts(configDir string) error {
	for _, file := range []string{MapPromptFile, CombinePromptFile, AnswerPromptFile} {
		if _, err := ensureDefaultFile(configDir, file, "prompt template"); err != nil {
			return err
		}
	}
	return nil
}

// newViper returns a viper instance with defaults, config paths and env bindings
func newViper(configDir string) *viper.Viper {
	v := viper.New()

	v.SetDefault("provider", ProviderOpenAI)
	v.SetDefault("model", "gpt-4o-mini")
	v.SetDefault("base_url", "")
	v.SetDefault("ollama_url", "http://localhost:11434")
	v.SetDefault("speech_model", "whisper-1")
	v.SetDefault("speech_base_url", "")
	v.SetDefault("languages", DefaultLanguages)
	v.SetDefault("chunk_size", 12000)
	v.SetDefault("chunk_overlap", 200)
	v.SetDefault("request_timeout", 2*time.Minute)
	v.SetDefault("llm_rate_limit", 0.0)
	v.SetDefault("voice_device", "")
	v.SetDefault("voice_max_duration", 30*time.Second)
	v.SetDefault("voice_silence", 2*time.Second)
	v.SetDefault("listen_addr", "127.0.0.1:8501")
	v.SetDefault("map_prompt", "")
	v.SetDefault("combine_prompt", "")
	v.SetDefault("verbose", false)

	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath(configDir)
	v.AddConfigPath(".")

	v.SetEnvPrefix(strings.ToUpper(AppName))
	v.AutomaticEnv()

	// The key may come from the app-specific variable or the provider's own
	_ = v.BindEnv("api_key", "RECAP_API_KEY", "OPENAI_API_KEY", "GROQ_API_KEY")

	return v
}

// InitConfig initializes Viper and loads configuration
func InitConfig() (*Config, error) {
	configDir := filepath.Join(xdg.ConfigHome, AppName)
	dataDir := filepath.Join(xdg.DataHome, AppName)
	cacheDir := filepath.Join(xdg.CacheHome, AppName)

	v := newViper(configDir)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("%w: reading config file: %w", ErrConfiguration, err)
		}
	}

	config := configFromViper(v)
	config.ConfigDir = configDir
	config.DataDir = dataDir
	config.CacheDir = cacheDir
	config.TempDir = filepath.Join(cacheDir, "temp")

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// configFromViper copies the user configurable settings out of v
func configFromViper(v *viper.Viper) *Config {
	config := &Config{
		Provider:         strings.ToLower(strings.TrimSpace(v.GetString("provider"))),
		Model:            v.GetString("model"),
		BaseURL:          v.GetString("base_url"),
		APIKey:           v.GetString("api_key"),
		OllamaURL:        v.GetString("ollama_url"),
		SpeechModel:      v.GetString("speech_model"),
		SpeechBaseURL:    v.GetString("speech_base_url"),
		Languages:        ParseLanguages(v.GetStringSlice("languages")),
		ChunkSize:        v.GetInt("chunk_size"),
		ChunkOverlap:     v.GetInt("chunk_overlap"),
		RequestTimeout:   v.GetDuration("request_timeout"),
		RateLimit:        v.GetFloat64("llm_rate_limit"),
		VoiceDevice:      v.GetString("voice_device"),
		VoiceMaxDuration: v.GetDuration("voice_max_duration"),
		VoiceSilence:     v.GetDuration("voice_silence"),
		ListenAddr:       v.GetString("listen_addr"),
		MapPrompt:        v.GetString("map_prompt"),
		CombinePrompt:    v.GetString("combine_prompt"),
		Verbose:          v.GetBool("verbose"),
	}

	if config.Provider == ProviderOpenAI && config.BaseURL == "" && groqKeyOnly(v) {
		config.BaseURL = GroqBaseURL
	}
	return config
}

// groqKeyOnly reports whether the API key came from GROQ_API_KEY alone
func groqKeyOnly(v *viper.Viper) bool {
	if os.Getenv("GROQ_API_KEY") == "" || v.InConfig("api_key") {
		return false
	}
	return os.Getenv("RECAP_API_KEY") == "" && os.Getenv("OPENAI_API_KEY") == ""
}

// Validate checks settings that would otherwise fail deep inside a request
func (c *Config) Validate() error {
	if len(c.Languages) == 0 {
		return fmt.Errorf("%w: languages must list at least one language code", ErrConfiguration)
	}
	if c.ChunkSize <= 0 {
		return fmt.Errorf("%w: chunk_size must be positive, got %d", ErrConfiguration, c.ChunkSize)
	}
	if c.ChunkOverlap < 0 || c.ChunkOverlap >= c.ChunkSize {
		return fmt.Errorf("%w: chunk_overlap must be in [0, chunk_size), got %d", ErrConfiguration, c.ChunkOverlap)
	}
	if c.RateLimit < 0 {
		return fmt.Errorf("%w: llm_rate_limit must not be negative", ErrConfiguration)
	}
	if c.VoiceMaxDuration < time.Second {
		return fmt.Errorf("%w: voice_max_duration must be at least 1s", ErrConfiguration)
	}
	return nil
}

// ParseLanguages normalizes language codes from config or a comma separated flag
func ParseLanguages(values []string) []string {
	var languages []string
	for _, value := range values {
		for _, code := range strings.Split(value, ",") {
			code = strings.TrimSpace(code)
			if code != "" {
				languages = append(languages, code)
			}
		}
	}
	return languages
}

// ValidateAPIKey checks if the API key is set and returns a standardized error if not
func ValidateAPIKey(apiKey string) error {
	if apiKey == "" {
		return fmt.Errorf("%w: API key is required - set api_key in config.toml or RECAP_API_KEY, OPENAI_API_KEY or GROQ_API_KEY", ErrConfiguration)
	}
	return nil
}
