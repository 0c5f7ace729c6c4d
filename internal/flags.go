package internal

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

// AddLLMFlags adds flags related to the language model
func AddLLMFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("model", "m", "", "Model to use for summaries and answers")
	cmd.Flags().String("provider", "", "LLM provider: openai or ollama")
	cmd.Flags().String("map-prompt", "", "Custom per-chunk summary prompt (string or file path)")
	cmd.Flags().String("combine-prompt", "", "Custom final summary prompt (string or file path)")
}

// AddLanguageFlags adds the transcript language flag
func AddLanguageFlags(cmd *cobra.Command) {
	cmd.Flags().StringSliceP("languages", "l", nil, "Accepted transcript languages in fallback order (e.g. en,de)")
}

// HandleLanguageFlag overrides the configured languages when the flag was set
func HandleLanguageFlag(cmd *cobra.Command, config *Config) error {
	flag := cmd.Flags().Lookup("languages")
	if flag == nil || !flag.Changed {
		return nil
	}

	values, err := cmd.Flags().GetStringSlice("languages")
	if err != nil {
		return fmt.Errorf("failed to get languages flag: %w", err)
	}

	languages := ParseLanguages(values)
	if len(languages) == 0 {
		return fmt.Errorf("%w: --languages must name at least one language", ErrConfiguration)
	}
	config.Languages = languages
	return nil
}

// HandlePromptFlags processes the prompt flags to set custom prompts
func HandlePromptFlags(cmd *cobra.Command, config *Config) error {
	for flagName, target := range map[string]*string{
		"map-prompt":     &config.MapPrompt,
		"combine-prompt": &config.CombinePrompt,
	} {
		flag := cmd.Flags().Lookup(flagName)
		if flag == nil || !flag.Changed {
			continue
		}

		prompt, err := cmd.Flags().GetString(flagName)
		if err != nil {
			return fmt.Errorf("failed to get %s flag: %w", flagName, err)
		}
		if prompt != "" {
			*target = prompt
		}
	}
	return nil
}

// HandleVerboseFlag processes the --verbose flag to update config
func HandleVerboseFlag(cmd *cobra.Command, config *Config) error {
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		return fmt.Errorf("failed to get verbose flag: %w", err)
	}
	if verbose {
		config.Verbose = true
	}
	return nil
}

// ValidateLLMRequirements validates provider, API key and model from command flags and config
func ValidateLLMRequirements(cmd *cobra.Command, config *Config) error {
	if provider, _ := cmd.Flags().GetString("provider"); strings.TrimSpace(provider) != "" {
		config.Provider = strings.ToLower(strings.TrimSpace(provider))
	}

	if config.Provider == ProviderOpenAI {
		if err := ValidateAPIKey(config.APIKey); err != nil {
			return err
		}
	}

	modelFlag, _ := cmd.Flags().GetString("model")
	if modelFlag != "" {
		if err := ValidateModel(config, modelFlag); err != nil {
			return err
		}
		config.Model = modelFlag
	} else if err := ValidateModel(config, config.Model); err != nil {
		return fmt.Errorf("invalid model in config: %w", err)
	}

	return nil
}
