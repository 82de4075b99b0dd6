package crawl

import (
	"fmt"
	"time"
)

// TruncateURL shortens a URL for display, keeping the end which is more informative.
func TruncateURL(url string, maxLen int) string {
	if maxLen <= 0 {
		return ""
	}
	if maxLen < 4 {
		return url[:min(len(url), maxLen)]
	}
	if len(url) <= maxLen {
		return url
	}
	return "..." + url[len(url)-maxLen+3:]
}

// FormatBytes formats bytes in human-readable form.
func FormatBytes(bytes int64) string {
	const (
		KB = 1024
		MB = KB * 1024
	)
	switch {
	case bytes >= MB:
		return fmt.Sprintf("%.1f MB", float64(bytes)/float64(MB))
	case bytes >= KB:
		return fmt.Sprintf("%.1f KB", float64(bytes)/float64(KB))
	default:
		return fmt.Sprintf("%d B", bytes)
	}
}

// FormatProgress renders a progress event as a single status line with the
// URL truncated to urlWidth characters.
func FormatProgress(event ProgressEvent, urlWidth int) string {
	url := TruncateURL(event.URL, urlWidth)
	switch event.Type {
	case ProgressCompleted:
		return fmt.Sprintf("[%d] %s (+%d links)", event.Status, url, event.Links)
	case ProgressFailed:
		return fmt.Sprintf("[%d] %s (failed)", event.Status, url)
	default:
		return url
	}
}

// FormatResult summarizes a finished run.
func FormatResult(r *Result, elapsed time.Duration) string {
	return fmt.Sprintf("%d pages processed, %d failed, %d URLs discovered in %s",
		r.Processed, r.Failed, r.Discovered, elapsed.Round(time.Second))
}
