package yaml_test

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/fwojciec/wordcrawl"
	"github.com/fwojciec/wordcrawl/yaml"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeConfig(t *testing.T) {
	t.Parallel()

	t.Run("overrides only the keys present", func(t *testing.T) {
		t.Parallel()

		cfg, err := yaml.DecodeConfig(strings.NewReader(`
seed_urls:
  - https://www.ics.uci.edu/
workers: 4
politeness_window: 750ms
fetch_timeout: 10
bloom:
  fp_rate: 0.001
`))

		require.NoError(t, err)
		def := wordcrawl.DefaultConfig()
		assert.Equal(t, []string{"https://www.ics.uci.edu/"}, cfg.SeedURLs)
		assert.Equal(t, 4, cfg.Workers)
		assert.Equal(t, 750*time.Millisecond, cfg.PolitenessWindow)
		assert.Equal(t, 10*time.Second, cfg.FetchTimeout)
		assert.InDelta(t, 0.001, cfg.BloomFPRate, 1e-12)
		assert.Equal(t, def.BloomExpectedURLs, cfg.BloomExpectedURLs)
		assert.Equal(t, def.AllowedDomains, cfg.AllowedDomains)
		assert.Equal(t, def.MinWords, cfg.MinWords)
		assert.Equal(t, def.UserAgent, cfg.UserAgent)
	})

	t.Run("empty document yields defaults", func(t *testing.T) {
		t.Parallel()

		cfg, err := yaml.DecodeConfig(strings.NewReader(""))

		require.NoError(t, err)
		assert.Equal(t, wordcrawl.DefaultConfig(), cfg)
	})

	t.Run("rejects unknown keys", func(t *testing.T) {
		t.Parallel()

		_, err := yaml.DecodeConfig(strings.NewReader("wokers: 4\n"))

		require.Error(t, err)
		assert.Equal(t, wordcrawl.EINVALID, wordcrawl.ErrorCode(err))
	})

	t.Run("rejects malformed durations", func(t *testing.T) {
		t.Parallel()

		_, err := yaml.DecodeConfig(strings.NewReader("politeness_window: soon\n"))

		require.Error(t, err)
		assert.Equal(t, wordcrawl.EINVALID, wordcrawl.ErrorCode(err))
	})

	t.Run("validates the result", func(t *testing.T) {
		t.Parallel()

		_, err := yaml.DecodeConfig(strings.NewReader("workers: 0\n"))

		require.Error(t, err)
		assert.Equal(t, wordcrawl.EINVALID, wordcrawl.ErrorCode(err))
	})
}

func TestLoadConfig(t *testing.T) {
	t.Parallel()

	t.Run("reads file", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "wordcrawl.yaml")
		require.NoError(t, os.WriteFile(path, []byte("min_words: 10\nreport_dir: out\n"), 0o644))

		cfg, err := yaml.LoadConfig(path)

		require.NoError(t, err)
		assert.Equal(t, 10, cfg.MinWords)
		assert.Equal(t, "out", cfg.ReportDir)
	})

	t.Run("missing file is not found", func(t *testing.T) {
		t.Parallel()

		_, err := yaml.LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))

		require.Error(t, err)
		assert.Equal(t, wordcrawl.ENOTFOUND, wordcrawl.ErrorCode(err))
	})
}

func TestEncodeConfig(t *testing.T) {
	t.Parallel()

	cfg := wordcrawl.DefaultConfig()
	cfg.Workers = 3
	cfg.RequestDelay = 2 * time.Second

	var buf bytes.Buffer
	require.NoError(t, yaml.EncodeConfig(&buf, cfg))

	assert.Contains(t, buf.String(), "request_delay: 2s")

	decoded, err := yaml.DecodeConfig(&buf)
	require.NoError(t, err)
	assert.Equal(t, cfg, decoded)
}
