package factory

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/mikey/llm-phishing-detector/internal/adapters/cache"
	"github.com/mikey/llm-phishing-detector/internal/adapters/classifier"
	"github.com/mikey/llm-phishing-detector/internal/adapters/safebrowsing"
	"github.com/mikey/llm-phishing-detector/internal/config"
	"github.com/mikey/llm-phishing-detector/internal/core"
	"github.com/mikey/llm-phishing-detector/internal/utils"
)

func newTestConfig(t *testing.T, values map[string]interface{}) *config.Config {
	t.Helper()
	for _, key := range []string{"GOOGLE_API_KEY", "OPENAI_API_KEY", "ANTHROPIC_API_KEY"} {
		t.Setenv(key, "")
	}
	v := config.NewEmptyViper()
	for k, val := range values {
		v.Set(k, val)
	}
	return config.NewFromViper(v)
}

func TestCreateLLMClient_DisabledWithoutKey(t *testing.T) {
	for _, provider := range []string{"gemini", "openai", "anthropic"} {
		cfg := newTestConfig(t, map[string]interface{}{"llm.provider": provider})

		client, err := NewLLMFactory(cfg, zap.NewNop()).CreateLLMClient()
		require.NoError(t, err, provider)

		_, err = client.GenerateContent(context.Background(), "prompt")
		assert.ErrorIs(t, err, core.ErrLLMNotConfigured, provider)
	}
}

func TestCreateLLMClient_UnknownProvider(t *testing.T) {
	cfg := newTestConfig(t, map[string]interface{}{"llm.provider": "llama"})

	_, err := NewLLMFactory(cfg, zap.NewNop()).CreateLLMClient()
	assert.EqualError(t, err, "unsupported LLM provider: llama")
}

func TestCreateVerdictProvider(t *testing.T) {
	cfg := newTestConfig(t, nil)
	f := NewClassifierFactory(cfg, zap.NewNop())

	provider, err := f.CreateVerdictProvider(nil)
	require.NoError(t, err)
	assert.IsType(t, &classifier.Heuristic{}, provider)

	provider, err = f.CreateVerdictProvider(cache.NewMemoryCache(zap.NewNop()))
	require.NoError(t, err)
	assert.IsType(t, &classifier.Cached{}, provider)
}

func TestCreateVerdictProvider_Remote(t *testing.T) {
	cfg := newTestConfig(t, map[string]interface{}{"classifier.type": "remote"})
	provider, err := NewClassifierFactory(cfg, zap.NewNop()).CreateVerdictProvider(nil)
	require.NoError(t, err)
	assert.IsType(t, &classifier.Remote{}, provider)

	cfg = newTestConfig(t, map[string]interface{}{"classifier.type": "remote", "classifier.endpoint": ""})
	_, err = NewClassifierFactory(cfg, zap.NewNop()).CreateVerdictProvider(nil)
	assert.Error(t, err)

	cfg = newTestConfig(t, map[string]interface{}{"classifier.type": "svm"})
	_, err = NewClassifierFactory(cfg, zap.NewNop()).CreateVerdictProvider(nil)
	assert.Error(t, err)
}

func TestCreateCacheRepository(t *testing.T) {
	cfg := newTestConfig(t, nil)
	repo, err := NewCacheFactory(cfg, zap.NewNop()).CreateCacheRepository()
	require.NoError(t, err)
	assert.IsType(t, &cache.MemoryCache{}, repo)

	path := filepath.Join(t.TempDir(), "nested", "cache.db")
	cfg = newTestConfig(t, map[string]interface{}{"cache.type": "sqlite", "cache.sqlite_path": path})
	repo, err = NewCacheFactory(cfg, zap.NewNop()).CreateCacheRepository()
	require.NoError(t, err)
	require.IsType(t, &cache.SQLiteCache{}, repo)
	assert.NoError(t, repo.(*cache.SQLiteCache).Close())

	cfg = newTestConfig(t, map[string]interface{}{"cache.type": "redis"})
	_, err = NewCacheFactory(cfg, zap.NewNop()).CreateCacheRepository()
	assert.EqualError(t, err, "unsupported cache type: redis")
}

func TestCreateThreatIntelClient(t *testing.T) {
	cfg := newTestConfig(t, nil)
	client, err := NewThreatIntelFactory(cfg, zap.NewNop()).CreateThreatIntelClient()
	require.NoError(t, err)
	assert.Equal(t, safebrowsing.DisabledClient{}, client)

	cfg = newTestConfig(t, map[string]interface{}{"threat_intel.api_key": "key"})
	client, err = NewThreatIntelFactory(cfg, zap.NewNop()).CreateThreatIntelClient()
	require.NoError(t, err)
	assert.IsType(t, &safebrowsing.Client{}, client)
}

func TestCreateEmailFilter_DisabledByDefault(t *testing.T) {
	cfg := newTestConfig(t, nil)
	assert.Nil(t, NewFilterFactory(cfg, zap.NewNop(), nil).CreateEmailFilter())

	cfg = newTestConfig(t, map[string]interface{}{"smtp.enabled": true})
	assert.NotNil(t, NewFilterFactory(cfg, zap.NewNop(), nil).CreateEmailFilter())
}

func TestShippedConfig_PromptKeepsWholeBody(t *testing.T) {
	cfg, err := config.NewFromFile(filepath.Join("..", "..", "configs", "config.yaml"))
	require.NoError(t, err)
	assert.Equal(t, 0, cfg.GetLLM().MaxBodySize)

	f := NewNarrativeFactory(cfg, zap.NewNop())
	analyzer := f.CreateNarrativeAnalyzer(nil, f.CreateTextProcessor())

	body := strings.Repeat("Please confirm your details. ", 400) + "TAIL_PHRASE verify now"
	prompt := analyzer.BuildPrompt("Subject", body, []string{"http://a.test"}, []string{"a.exe"})

	assert.Contains(t, prompt, "Body: "+body+"\n")
	assert.NotContains(t, prompt, utils.TruncationMarker)
}
