package llm

import (
	"testing"

	"github.com/raphaelgruber/contentd/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFieldArray(t *testing.T) {
	tests := []struct {
		name     string
		response string
		want     []string
		wantErr  bool
	}{
		{"clean array", `["title", "price"]`, []string{"title", "price"}, false},
		{"surrounding prose", "Sure! Here are the fields:\n[\"title\", \"author\"]\nHope that helps.", []string{"title", "author"}, false},
		{"code fence", "```json\n[\"name\"]\n```", []string{"name"}, false},
		{"empty array", `[]`, []string{}, false},
		{"no array", "I could not determine any fields.", nil, true},
		{"malformed array", `[title, price]`, nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fields, err := parseFieldArray(tt.response)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, fields)
		})
	}
}

func TestNewModelProviderValidation(t *testing.T) {
	_, err := NewModel(config.Config{LLMProvider: "mystery"})
	assert.Error(t, err)

	_, err = NewModel(config.Config{LLMProvider: config.ProviderOpenAI})
	assert.ErrorContains(t, err, "API key required")

	_, err = NewModel(config.Config{LLMProvider: config.ProviderAnthropic})
	assert.ErrorContains(t, err, "API key required")
}
