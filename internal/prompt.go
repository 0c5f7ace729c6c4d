package internal

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/outputparser"
	"github.com/tmc/langchaingo/prompts"
)

// Prompt template files in the config directory, created from embedded defaults
const (
	MapPromptFile     = "map_prompt.txt"
	CombinePromptFile = "combine_prompt.txt"
	AnswerPromptFile  = "answer_prompt.txt"
)

// answerUserTemplate embeds both the stored summary and the question
const answerUserTemplate = "Summary: {{.summary}}\nQuestion: {{.question}}"

// PromptManager handles loading and formatting prompt templates
type PromptManager struct {
	configDir string
	overrides map[string]string
}

// NewPromptManager creates a new prompt manager. mapSetting and combineSetting
// may each be a template string, a file path or empty for the config dir default.
func NewPromptManager(configDir, mapSetting, combineSetting string) *PromptManager {
	pm := &PromptManager{
		configDir: configDir,
		overrides: make(map[string]string),
	}
	pm.SetOverride(MapPromptFile, mapSetting)
	pm.SetOverride(CombinePromptFile, combineSetting)
	return pm
}

// SetOverride replaces the template stored in file with setting (string or path)
func (pm *PromptManager) SetOverride(file, setting string) {
	if setting == "" {
		delete(pm.overrides, file)
		return
	}
	pm.overrides[file] = setting
}

// load returns the raw template text for file
func (pm *PromptManager) load(file string) (string, error) {
	if setting, ok := pm.overrides[file]; ok {
		if IsLikelyFilePath(setting) && FileExists(setting) {
			content, err := os.ReadFile(setting)
			if err != nil {
				return "", fmt.Errorf("reading prompt template: %w", err)
			}
			return string(content), nil
		}
		return setting, nil
	}

	content, err := os.ReadFile(filepath.Join(pm.configDir, file))
	if err == nil {
		return string(content), nil
	}
	if !os.IsNotExist(err) {
		return "", fmt.Errorf("reading prompt template: %w", err)
	}

	// Fall back to the embedded default when the config dir copy is missing
	content, err = defaultFS.ReadFile(file)
	if err != nil {
		return "", fmt.Errorf("reading embedded prompt template %s: %w", file, err)
	}
	return string(content), nil
}

// MapPrompt formats the per-chunk summary prompt
func (pm *PromptManager) MapPrompt(text string) (string, error) {
	return pm.formatText(MapPromptFile, text)
}

// CombinePrompt formats the final titled-summary prompt over the chunk summaries
func (pm *PromptManager) CombinePrompt(text string) (string, error) {
	return pm.formatText(CombinePromptFile, text)
}

func (pm *PromptManager) formatText(file, text string) (string, error) {
	tmplContent, err := pm.load(file)
	if err != nil {
		return "", err
	}

	prompt, err := prompts.NewPromptTemplate(tmplContent, []string{"text"}).Format(map[string]any{
		"text": text,
	})
	if err != nil {
		return "", fmt.Errorf("executing prompt template %s: %w", file, err)
	}
	return prompt, nil
}

// AnswerMessages builds the two-role question prompt
func (pm *PromptManager) AnswerMessages(summary, question string) ([]ChatMessage, error) {
	system, err := pm.load(AnswerPromptFile)
	if err != nil {
		return nil, err
	}

	chat := prompts.NewChatPromptTemplate([]prompts.MessageFormatter{
		prompts.NewSystemMessagePromptTemplate(strings.TrimSpace(system), nil),
		prompts.NewHumanMessagePromptTemplate(answerUserTemplate, []string{"summary", "question"}),
	})

	formatted, err := chat.FormatMessages(map[string]any{
		"summary":  summary,
		"question": question,
	})
	if err != nil {
		return nil, fmt.Errorf("executing answer prompt: %w", err)
	}

	messages := make([]ChatMessage, 0, len(formatted))
	for _, m := range formatted {
		messages = append(messages, ChatMessage{
			Role:    roleOf(m.GetType()),
			Content: m.GetContent(),
		})
	}
	return messages, nil
}

func roleOf(t llms.ChatMessageType) Role {
	switch t {
	case llms.ChatMessageTypeSystem:
		return RoleSystem
	case llms.ChatMessageTypeAI:
		return RoleAssistant
	default:
		return RoleUser
	}
}

// ParseOutput turns raw model output into plain text
func ParseOutput(raw string) (string, error) {
	parsed, err := outputparser.NewSimple().Parse(raw)
	if err != nil {
		return "", fmt.Errorf("parsing model output: %w", err)
	}
	text, ok := parsed.(string)
	if !ok {
		return "", fmt.Errorf("unexpected model output type %T", parsed)
	}
	return strings.TrimSpace(text), nil
}

// IsLikelyFilePath uses heuristics to determine if a string is likely a file path
func IsLikelyFilePath(s string) bool {
	if strings.Contains(s, "{{") {
		return false
	}

	if strings.Contains(s, "/") || strings.Contains(s, "\\") {
		return true
	}

	if strings.HasSuffix(s, ".txt") || strings.HasSuffix(s, ".md") ||
		strings.HasSuffix(s, ".template") || strings.HasSuffix(s, ".tmpl") {
		return true
	}

	// If it's longer than 200 characters, it's likely a prompt string
	if len(s) > 200 {
		return false
	}

	return !strings.Contains(s, " ") && !strings.Contains(s, "\n")
}
