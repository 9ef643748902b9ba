package core

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/mikey/llm-phishing-detector/internal/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestNarrativeAnalyzer_FallbackOnLLMError(t *testing.T) {
	llm := &mockLLMClient{}
	llm.On("GenerateContent", mock.Anything, mock.Anything).Return("", errors.New("timeout"))

	analyzer := NewNarrativeAnalyzer(llm, nil, 0, zap.NewNop())
	analysis, ok := analyzer.Analyze(context.Background(), "s", "b", nil, nil)

	assert.False(t, ok)
	assert.Equal(t, NarrativeAnalysis{
		Summary:         "Unable to generate analysis.",
		ThreatPhrases:   []string{},
		Recommendations: []string{},
	}, analysis)
}

func TestNarrativeAnalyzer_FallbackOnUnparseableOutput(t *testing.T) {
	for _, text := range []string{
		"",
		"I cannot help with that.",
		`{"summary": `,
		`{"threat_phrases": ["urgent"]}`,
	} {
		llm := &mockLLMClient{}
		llm.On("GenerateContent", mock.Anything, mock.Anything).Return(text, nil)

		analyzer := NewNarrativeAnalyzer(llm, nil, 0, zap.NewNop())
		analysis, ok := analyzer.Analyze(context.Background(), "s", "b", nil, nil)

		assert.False(t, ok, text)
		assert.Equal(t, DefaultNarrativeAnalysis(), analysis, text)
	}
}

func TestNarrativeAnalyzer_Success(t *testing.T) {
	llm := &mockLLMClient{}
	llm.On("GenerateContent", mock.Anything, mock.Anything).
		Return(`{"summary": "Urgent tone and credential request.", "threat_phrases": ["verify your account"], "recommendations": ["Do not click the link"]}`, nil)

	analyzer := NewNarrativeAnalyzer(llm, nil, 0, zap.NewNop())
	analysis, ok := analyzer.Analyze(context.Background(), "Urgent", "Please verify your account", nil, nil)

	require.True(t, ok)
	assert.Equal(t, "Urgent tone and credential request.", analysis.Summary)
	assert.Equal(t, []string{"verify your account"}, analysis.ThreatPhrases)
	assert.Equal(t, []string{"Do not click the link"}, analysis.Recommendations)
}

func TestParseNarrative(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		summary string
		wantErr bool
	}{
		{
			name:    "plain json",
			input:   `{"summary": "a"}`,
			summary: "a",
		},
		{
			name:    "markdown fence",
			input:   "```json\n{\"summary\": \"b\", \"threat_phrases\": [\"x\"]}\n```",
			summary: "b",
		},
		{
			name:    "surrounded by prose",
			input:   "Here is my analysis:\n{\"summary\": \"c\"}\nLet me know if you need more.",
			summary: "c",
		},
		{
			name:    "no json",
			input:   "The email looks fine.",
			wantErr: true,
		},
		{
			name:    "missing summary",
			input:   `{"recommendations": ["delete"]}`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			analysis, err := ParseNarrative(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.summary, analysis.Summary)
			assert.NotNil(t, analysis.ThreatPhrases)
			assert.NotNil(t, analysis.Recommendations)
		})
	}
}

func TestBuildPrompt(t *testing.T) {
	analyzer := NewNarrativeAnalyzer(nil, nil, 0, zap.NewNop())

	prompt := analyzer.BuildPrompt("Your account", "Click here", []string{"http://a.test", "not a url"}, []string{"a.exe"})

	assert.Contains(t, prompt, "Subject: Your account\n")
	assert.Contains(t, prompt, "Body: Click here\n")
	assert.Contains(t, prompt, "URLs: [http://a.test, not a url]\n")
	assert.Contains(t, prompt, "Attachments: [a.exe]\n")
	assert.True(t, strings.HasSuffix(prompt, "Respond strictly in JSON."))
}

func TestBuildPrompt_TruncatesBody(t *testing.T) {
	logger := zap.NewNop()
	analyzer := NewNarrativeAnalyzer(nil, utils.NewTextProcessor(logger), 10, logger)

	prompt := analyzer.BuildPrompt("s", strings.Repeat("a", 100), nil, nil)

	assert.Contains(t, prompt, "Body: aaaaaaaaaa\n[... Content truncated due to size limits ...]\n")
	assert.NotContains(t, prompt, strings.Repeat("a", 11))
	assert.Contains(t, prompt, "URLs: []\n")
}
