package di

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mikey/llm-phishing-detector/internal/adapters/cache"
	"github.com/mikey/llm-phishing-detector/internal/adapters/filter"
	"github.com/mikey/llm-phishing-detector/internal/core"
	"github.com/mikey/llm-phishing-detector/internal/server"
)

const sampleMessage = "From: support@paypa1-secure.test\r\n" +
	"To: victim@example.com\r\n" +
	"Subject: Account suspended\r\n" +
	"Content-Type: text/plain; charset=utf-8\r\n" +
	"\r\n" +
	"Verify your account at http://192.168.10.5/paypal/login.php immediately.\r\n"

func clearProviderKeys(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"GOOGLE_API_KEY",
		"OPENAI_API_KEY",
		"ANTHROPIC_API_KEY",
		"PHISHING_DETECTOR_GEMINI_API_KEY",
		"PHISHING_DETECTOR_THREAT_INTEL_API_KEY",
	} {
		t.Setenv(key, "")
	}
}

func TestBuildContainer(t *testing.T) {
	clearProviderKeys(t)

	container, err := BuildContainer()
	require.NoError(t, err)

	err = container.Invoke(func(
		srv *server.HTTPServer,
		emailFilter filter.EmailFilter,
		janitor *cache.Janitor,
		repo core.CacheRepository,
	) {
		assert.NotNil(t, srv)
		assert.Nil(t, emailFilter)
		assert.Nil(t, janitor)
		assert.Nil(t, repo)
	})
	require.NoError(t, err)
}

func TestBuildCLIContainer_AnalyzesMessage(t *testing.T) {
	clearProviderKeys(t)

	var out bytes.Buffer
	container, err := BuildCLIContainer(&CLIFlags{
		Provider:   "openai",
		Classifier: "heuristic",
		Out:        &out,
	})
	require.NoError(t, err)

	err = container.Invoke(func(cli *filter.CliFilter) {
		result, err := cli.ProcessMessage(context.Background(), strings.NewReader(sampleMessage))
		require.NoError(t, err)

		require.Len(t, result.PhishingURLs, 1)
		assert.Equal(t, "http://192.168.10.5/paypal/login.php", result.PhishingURLs[0].URL)
		assert.Equal(t, core.DefaultNarrativeAnalysis(), result.LLMAnalysis)
	})
	require.NoError(t, err)

	assert.Contains(t, out.String(), "Phishing: true")
}

func TestBuildCLIContainer_ThreatIntelDisabled(t *testing.T) {
	clearProviderKeys(t)

	container, err := BuildCLIContainer(&CLIFlags{Out: &bytes.Buffer{}})
	require.NoError(t, err)

	err = container.Invoke(func(service *core.PhishingDetectionService) {
		_, err := service.CheckURL(context.Background(), "http://example.com/")
		assert.ErrorIs(t, err, core.ErrThreatIntelNotConfigured)
	})
	require.NoError(t, err)
}

func TestBuildCLIContainer_UnknownClassifier(t *testing.T) {
	container, err := BuildCLIContainer(&CLIFlags{Classifier: "bogus", Out: &bytes.Buffer{}})
	require.NoError(t, err)

	err = container.Invoke(func(*core.PhishingDetectionService) {})
	assert.Error(t, err)
}
