// Package llm wraps langchaingo models for instruction parsing and field
// generation.
package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/raphaelgruber/contentd/internal/config"
	"github.com/raphaelgruber/contentd/internal/engine"
	"github.com/raphaelgruber/contentd/internal/models"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/anthropic"
	"github.com/tmc/langchaingo/llms/ollama"
	"github.com/tmc/langchaingo/llms/openai"
)

// Model wraps a langchaingo LLM for text generation.
type Model struct {
	llm       llms.Model
	modelName string
}

// Compile-time checks that Model provides the engine capabilities.
var (
	_ engine.InstructionParser = (*Model)(nil)
	_ engine.Generator         = (*Model)(nil)
)

// NewModel creates an LLM model based on configuration.
func NewModel(cfg config.Config) (*Model, error) {
	var model llms.Model
	var err error

	switch cfg.LLMProvider {
	case config.ProviderOllama:
		model, err = ollama.New(
			ollama.WithModel(cfg.LLMModel),
			ollama.WithServerURL(cfg.OllamaHost),
		)
		if err != nil {
			return nil, fmt.Errorf("create ollama model: %w", err)
		}

	case config.ProviderOpenAI:
		if cfg.OpenAIAPIKey == "" {
			return nil, fmt.Errorf("OpenAI API key required")
		}
		model, err = openai.New(
			openai.WithToken(cfg.OpenAIAPIKey),
			openai.WithModel(cfg.LLMModel),
		)
		if err != nil {
			return nil, fmt.Errorf("create openai model: %w", err)
		}

	case config.ProviderAnthropic:
		if cfg.AnthropicAPIKey == "" {
			return nil, fmt.Errorf("Anthropic API key required")
		}
		model, err = anthropic.New(
			anthropic.WithToken(cfg.AnthropicAPIKey),
			anthropic.WithModel(cfg.LLMModel),
		)
		if err != nil {
			return nil, fmt.Errorf("create anthropic model: %w", err)
		}

	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", cfg.LLMProvider)
	}

	return &Model{
		llm:       model,
		modelName: cfg.LLMModel,
	}, nil
}

// Model returns the LLM model name.
func (m *Model) Model() string {
	return m.modelName
}

// GenerateWithSystem generates text with a system prompt.
func (m *Model) GenerateWithSystem(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	messages := []llms.MessageContent{
		llms.TextParts(llms.ChatMessageTypeSystem, systemPrompt),
		llms.TextParts(llms.ChatMessageTypeHuman, userPrompt),
	}

	response, err := m.llm.GenerateContent(ctx, messages)
	if err != nil {
		return "", fmt.Errorf("generate with system: %w", err)
	}

	if len(response.Choices) == 0 {
		return "", fmt.Errorf("no response choices")
	}

	return response.Choices[0].Content, nil
}

// ParseInstructions identifies the fields to extract or generate from
// natural-language content gathering instructions.
func (m *Model) ParseInstructions(ctx context.Context, instructions string) ([]string, error) {
	systemPrompt := `You identify the specific fields that need to be extracted or generated
from content gathering instructions. Respond with ONLY a JSON array of field names,
nothing else. Example: ["title", "description", "author"]`

	userPrompt := fmt.Sprintf(`Instructions: %s

Fields to extract:`, instructions)

	response, err := m.GenerateWithSystem(ctx, systemPrompt, userPrompt)
	if err != nil {
		return nil, fmt.Errorf("parse instructions: %w", err)
	}

	fields, err := parseFieldArray(response)
	if err != nil {
		return nil, fmt.Errorf("parse instructions: %w", err)
	}
	return fields, nil
}

// GenerateField synthesizes a value for a field using search context and the
// item's other data.
func (m *Model) GenerateField(ctx context.Context, field, searchContext string, item models.ContentItem) (string, error) {
	systemPrompt := `You are a helpful AI assistant that provides accurate and concise responses.`

	var prompt strings.Builder
	fmt.Fprintf(&prompt, "Generate content for the field '%s'.\n", field)
	prompt.WriteString("The content should be concise, accurate, and professional.\n")

	if searchContext != "" {
		fmt.Fprintf(&prompt, "\nContext information:\n%s\n", searchContext)
	}

	if item.Len() > 0 {
		prompt.WriteString("\nRelated item data:\n")
		for _, key := range item.Keys() {
			if key == field {
				continue
			}
			if v, ok := item.Get(key); ok && !v.IsEmpty() {
				fmt.Fprintf(&prompt, "- %s: %s\n", key, v.Text())
			}
		}
	}

	fmt.Fprintf(&prompt, "\nGenerated %s:", field)

	text, err := m.GenerateWithSystem(ctx, systemPrompt, prompt.String())
	if err != nil {
		return "", fmt.Errorf("generate field %s: %w", field, err)
	}
	return strings.TrimSpace(text), nil
}

// parseFieldArray extracts a JSON string array from an LLM response,
// tolerating surrounding prose and code fences.
func parseFieldArray(response string) ([]string, error) {
	start := strings.Index(response, "[")
	end := strings.LastIndex(response, "]")
	if start == -1 || end == -1 || end < start {
		return nil, fmt.Errorf("no JSON array in response")
	}

	var fields []string
	if err := json.Unmarshal([]byte(response[start:end+1]), &fields); err != nil {
		return nil, fmt.Errorf("decode field array: %w", err)
	}
	return fields, nil
}
