package cache

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/mikey/llm-phishing-detector/internal/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newSQLiteCache(t *testing.T) *SQLiteCache {
	t.Helper()
	c, err := NewSQLiteCache(filepath.Join(t.TempDir(), "verdicts.db"), zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func TestSQLiteCache_SetGetReplace(t *testing.T) {
	ctx := context.Background()
	c := newSQLiteCache(t)

	now := time.Now()
	entry := &core.VerdictEntry{
		URL:          "http://phish.test/login?next=/account",
		Verdict:      "Given website is a phishing site",
		ClassifiedAt: now,
		ExpiresAt:    now.Add(time.Hour),
	}
	require.NoError(t, c.Set(ctx, entry))

	got, err := c.Get(ctx, entry.URL)
	require.NoError(t, err)
	assert.Equal(t, entry.URL, got.URL)
	assert.Equal(t, entry.Verdict, got.Verdict)
	assert.Equal(t, now.Unix(), got.ClassifiedAt.Unix())
	assert.Equal(t, entry.ExpiresAt.Unix(), got.ExpiresAt.Unix())

	entry.Verdict = "Given website is a legitimate site"
	require.NoError(t, c.Set(ctx, entry))

	got, err = c.Get(ctx, entry.URL)
	require.NoError(t, err)
	assert.Equal(t, "Given website is a legitimate site", got.Verdict)
}

func TestSQLiteCache_MissAndExpiry(t *testing.T) {
	ctx := context.Background()
	c := newSQLiteCache(t)

	_, err := c.Get(ctx, "http://unknown.test/")
	assert.ErrorIs(t, err, core.ErrCacheMiss)

	now := time.Now()
	require.NoError(t, c.Set(ctx, &core.VerdictEntry{
		URL:          "http://old.test/",
		Verdict:      "v",
		ClassifiedAt: now.Add(-2 * time.Hour),
		ExpiresAt:    now.Add(-time.Hour),
	}))

	_, err = c.Get(ctx, "http://old.test/")
	assert.ErrorIs(t, err, core.ErrCacheMiss)
}

func TestSQLiteCache_DeleteAndCleanup(t *testing.T) {
	ctx := context.Background()
	c := newSQLiteCache(t)

	now := time.Now()
	require.NoError(t, c.Set(ctx, &core.VerdictEntry{URL: "http://expired.test/", Verdict: "v", ClassifiedAt: now, ExpiresAt: now.Add(-time.Hour)}))
	require.NoError(t, c.Set(ctx, &core.VerdictEntry{URL: "http://live.test/", Verdict: "v", ClassifiedAt: now, ExpiresAt: now.Add(time.Hour)}))

	require.NoError(t, c.Cleanup(ctx))

	var count int
	require.NoError(t, c.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM verdict_cache`).Scan(&count))
	assert.Equal(t, 1, count)

	require.NoError(t, c.Delete(ctx, "http://live.test/"))
	_, err := c.Get(ctx, "http://live.test/")
	assert.ErrorIs(t, err, core.ErrCacheMiss)
}

func TestURLHash(t *testing.T) {
	h := urlHash("http://example.com/")
	assert.Len(t, h, 64)
	assert.Equal(t, h, urlHash("http://example.com/"))
	assert.NotEqual(t, h, urlHash("http://example.com/x"))
}
