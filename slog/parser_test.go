package slog_test

import (
	"bytes"
	"errors"
	"log/slog"
	"testing"

	"github.com/fwojciec/wordcrawl"
	"github.com/fwojciec/wordcrawl/mock"
	wcslog "github.com/fwojciec/wordcrawl/slog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoggingParser_Parse(t *testing.T) {
	t.Parallel()

	t.Run("logs link count at debug level", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
		inner := &mock.PageParser{
			ParseFn: func(body []byte, contentType, baseURL string) (*wordcrawl.ParsedPage, error) {
				return &wordcrawl.ParsedPage{Text: "hi", Links: []string{"https://a.ics.uci.edu/", "https://b.ics.uci.edu/"}}, nil
			},
		}

		page, err := wcslog.NewLoggingParser(inner, logger).Parse([]byte("<html/>"), "text/html", "https://www.ics.uci.edu/")

		require.NoError(t, err)
		assert.Len(t, page.Links, 2)
		output := buf.String()
		assert.Contains(t, output, "msg=parse")
		assert.Contains(t, output, "url=https://www.ics.uci.edu/")
		assert.Contains(t, output, "links=2")
	})

	t.Run("logs error on failure", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
		inner := &mock.PageParser{
			ParseFn: func([]byte, string, string) (*wordcrawl.ParsedPage, error) {
				return nil, errors.New("bad markup")
			},
		}

		_, err := wcslog.NewLoggingParser(inner, logger).Parse(nil, "", "https://www.ics.uci.edu/")

		require.Error(t, err)
		output := buf.String()
		assert.Contains(t, output, "links=0")
		assert.Contains(t, output, "err=\"bad markup\"")
	})

	t.Run("is silent at info level", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		inner := &mock.PageParser{
			ParseFn: func([]byte, string, string) (*wordcrawl.ParsedPage, error) {
				return &wordcrawl.ParsedPage{}, nil
			},
		}

		_, err := wcslog.NewLoggingParser(inner, slog.New(slog.NewTextHandler(&buf, nil))).Parse(nil, "", "https://www.ics.uci.edu/")

		require.NoError(t, err)
		assert.Empty(t, buf.String())
	})
}
