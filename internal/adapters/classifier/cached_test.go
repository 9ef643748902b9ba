package classifier

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/mikey/llm-phishing-detector/internal/adapters/cache"
	"github.com/mikey/llm-phishing-detector/internal/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type mockProvider struct {
	mock.Mock
}

func (m *mockProvider) Predict(ctx context.Context, url string) (string, error) {
	args := m.Called(ctx, url)
	return args.String(0), args.Error(1)
}

type mockRepository struct {
	mock.Mock
}

func (m *mockRepository) Get(ctx context.Context, url string) (*core.VerdictEntry, error) {
	args := m.Called(ctx, url)
	entry, _ := args.Get(0).(*core.VerdictEntry)
	return entry, args.Error(1)
}

func (m *mockRepository) Set(ctx context.Context, entry *core.VerdictEntry) error {
	return m.Called(ctx, entry).Error(0)
}

func (m *mockRepository) Delete(ctx context.Context, url string) error {
	return m.Called(ctx, url).Error(0)
}

func (m *mockRepository) Cleanup(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func TestCached_MissThenHit(t *testing.T) {
	ctx := context.Background()
	provider := &mockProvider{}
	provider.On("Predict", ctx, "http://phish.test/").Return(PhishingVerdict, nil).Once()

	c := NewCached(provider, cache.NewMemoryCache(zap.NewNop()), time.Hour, zap.NewNop())

	for i := 0; i < 3; i++ {
		verdict, err := c.Predict(ctx, "http://phish.test/")
		require.NoError(t, err)
		assert.Equal(t, PhishingVerdict, verdict)
	}

	provider.AssertExpectations(t)
}

func TestCached_StoresTTL(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	provider := &mockProvider{}
	provider.On("Predict", ctx, "http://example.com/").Return(core.BenignVerdict, nil)

	repo := &mockRepository{}
	repo.On("Get", ctx, "http://example.com/").Return(nil, core.ErrCacheMiss)
	repo.On("Set", ctx, &core.VerdictEntry{
		URL:          "http://example.com/",
		Verdict:      core.BenignVerdict,
		ClassifiedAt: now,
		ExpiresAt:    now.Add(30 * time.Minute),
	}).Return(nil)

	c := NewCached(provider, repo, 30*time.Minute, zap.NewNop())
	c.now = func() time.Time { return now }

	verdict, err := c.Predict(ctx, "http://example.com/")
	require.NoError(t, err)
	assert.Equal(t, core.BenignVerdict, verdict)

	provider.AssertExpectations(t)
	repo.AssertExpectations(t)
}

func TestCached_CacheFailuresAreIgnored(t *testing.T) {
	ctx := context.Background()

	provider := &mockProvider{}
	provider.On("Predict", ctx, "http://example.com/").Return(core.BenignVerdict, nil)

	repo := &mockRepository{}
	repo.On("Get", ctx, "http://example.com/").Return(nil, errors.New("database is locked"))
	repo.On("Set", ctx, mock.Anything).Return(errors.New("database is locked"))

	verdict, err := NewCached(provider, repo, time.Hour, zap.NewNop()).Predict(ctx, "http://example.com/")
	require.NoError(t, err)
	assert.Equal(t, core.BenignVerdict, verdict)
}

func TestCached_ProviderErrorIsNotCached(t *testing.T) {
	ctx := context.Background()

	provider := &mockProvider{}
	provider.On("Predict", ctx, "http://example.com/").Return("", errors.New("model down"))

	repo := &mockRepository{}
	repo.On("Get", ctx, "http://example.com/").Return(nil, core.ErrCacheMiss)

	_, err := NewCached(provider, repo, time.Hour, zap.NewNop()).Predict(ctx, "http://example.com/")
	assert.EqualError(t, err, "model down")
	repo.AssertNotCalled(t, "Set", mock.Anything, mock.Anything)
}
