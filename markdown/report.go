// Package markdown renders crawl reports as Markdown documents.
package markdown

import (
	"cmp"
	"io"
	"slices"
	"strconv"

	"github.com/fwojciec/wordcrawl"
	"github.com/nao1215/markdown"
	"github.com/nao1215/markdown/mermaid/piechart"
)

// ReportFile is the conventional name of the rendered report.
const ReportFile = "report.md"

// maxChartSlices bounds the subdomain pie chart; smaller subdomains
// are folded into "other".
const maxChartSlices = 10

// Render writes report as Markdown to w.
// It has the signature of an fs.RenderFunc.
func Render(w io.Writer, report *wordcrawl.Report) error {
	md := markdown.NewMarkdown(w)

	md.H1("Crawl Report")
	md.PlainText("")
	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows: [][]string{
			{"Run", "`" + report.RunID + "`"},
			{"Generated", report.GeneratedAt.Format("2006-01-02 15:04:05 MST")},
			{"Unique URLs", strconv.Itoa(len(report.UniqueURLs))},
			{"Pages Counted", strconv.Itoa(report.Pages)},
			{"Duplicates", strconv.Itoa(report.Duplicates)},
			{"Traps", strconv.Itoa(report.Traps)},
			{"Low Value", strconv.Itoa(report.LowValue)},
		},
	})
	md.PlainText("")

	writeLongestPage(md, report)
	writeTopWords(md, report)
	writeSubdomains(md, report)

	return md.Build()
}

func writeLongestPage(md *markdown.Markdown, report *wordcrawl.Report) {
	md.H2("Longest Page")
	md.PlainText("")
	if report.LongestPage.URL == "" {
		md.PlainText("No pages counted yet.")
		md.PlainText("")
		return
	}
	md.PlainTextf("%s (%d words)", report.LongestPage.URL, report.LongestPage.WordCount)
	md.PlainText("")
}

func writeTopWords(md *markdown.Markdown, report *wordcrawl.Report) {
	md.H2("Top Words")
	md.PlainText("")
	if len(report.TopWords) == 0 {
		md.PlainText("No words counted yet.")
		md.PlainText("")
		return
	}

	rows := make([][]string, 0, len(report.TopWords))
	for i, wc := range report.TopWords {
		rows = append(rows, []string{strconv.Itoa(i + 1), wc.Word, strconv.Itoa(wc.Count)})
	}
	md.Table(markdown.TableSet{
		Header: []string{"Rank", "Word", "Count"},
		Rows:   rows,
	})
	md.PlainText("")
}

func writeSubdomains(md *markdown.Markdown, report *wordcrawl.Report) {
	md.H2("Subdomains")
	md.PlainText("")
	if len(report.Subdomains) == 0 {
		md.PlainText("No subdomains seen yet.")
		md.PlainText("")
		return
	}

	items := make([]string, 0, len(report.Subdomains))
	for _, s := range report.Subdomains {
		items = append(items, s.Subdomain+", "+strconv.Itoa(s.Pages))
	}
	md.BulletList(items...)
	md.PlainText("")

	md.CodeBlocks(markdown.SyntaxHighlightMermaid, subdomainChart(report.Subdomains))
	md.PlainText("")
}

func subdomainChart(subdomains []wordcrawl.SubdomainCount) string {
	chart := piechart.NewPieChart(
		io.Discard,
		piechart.WithTitle("Pages per Subdomain"),
		piechart.WithShowData(true),
	)

	ranked := topSubdomains(subdomains)
	var other uint64
	for i, s := range ranked {
		if i >= maxChartSlices {
			other += uint64(s.Pages)
			continue
		}
		chart.LabelAndIntValue(s.Subdomain, uint64(s.Pages))
	}
	if other > 0 {
		chart.LabelAndIntValue("other", other)
	}
	return chart.String()
}

// topSubdomains returns a copy ordered by page count, largest first.
func topSubdomains(subdomains []wordcrawl.SubdomainCount) []wordcrawl.SubdomainCount {
	ranked := append([]wordcrawl.SubdomainCount(nil), subdomains...)
	slices.SortStableFunc(ranked, func(a, b wordcrawl.SubdomainCount) int {
		return cmp.Compare(b.Pages, a.Pages)
	})
	return ranked
}
