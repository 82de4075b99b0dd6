package wordcrawl

import (
	"net/url"
	"path"
	"regexp"
	"strings"
)

// DefaultAllowedDomains are the domains crawled when no allow-list is configured.
var DefaultAllowedDomains = []string{
	"ics.uci.edu",
	"cs.uci.edu",
	"informatics.uci.edu",
	"stat.uci.edu",
}

// DefaultDeniedExtensions lists path extensions that never hold crawlable text.
var DefaultDeniedExtensions = []string{
	"css", "js", "bmp", "gif", "jpg", "jpeg", "ico", "png", "tif", "tiff",
	"mid", "mp2", "mp3", "mp4", "wav", "avi", "mov", "mpeg", "ram", "m4v",
	"mkv", "ogg", "ogv", "pdf", "ps", "eps", "tex", "ppt", "pptx", "doc",
	"docx", "xls", "xlsx", "names", "data", "dat", "exe", "bz2", "tar", "msi",
	"bin", "7z", "psd", "dmg", "iso", "epub", "dll", "cnf", "tgz", "sha1",
	"thmx", "mso", "arff", "rtf", "jar", "csv", "rm", "smil", "wmv", "swf",
	"wma", "zip", "rar", "gz", "svg", "webp", "webm", "apk", "img", "war",
	"odp", "ods", "odt", "pps", "ppsx", "sql", "bib", "java", "py", "c",
}

// DefaultTrapPatterns match URL shapes that generate unbounded link graphs:
// version-control and wiki history browsing, search pages, and date-paginated
// calendar views.
var DefaultTrapPatterns = []string{
	`(?i)[?&](do|action)=(diff|edit|history|revisions|backlink|login|export_\w+|media|recent|index)`,
	`(?i)[?&](rev|rev2|difftype|version|share|replytocom|format)=`,
	`(?i)/(-/)?(commits?|blame|compare|raw|tree|blob)/`,
	`(?i)[?&](tab_files|tab_details|sort|order|filter)=`,
	`(?i)[?&](s|q|search|query)=`,
	`(?i)/(events?|calendar)/.*\d{4}-\d{2}(-\d{2})?`,
	`(?i)/(events?|calendar)/(list|month|week|day|today|page)/`,
	`(?i)[?&](ical|outlook-ical|tribe-bar-date|eventdisplay|paged)=`,
	`(?i)[?&]date=\d{4}-\d{2}(-\d{2})?`,
}

// DefaultMaxRepeatedSegments is the number of times a single path segment
// may appear before the URL is treated as a cyclic trap.
const DefaultMaxRepeatedSegments = 3

// Policy decides which URLs may enter the frontier and which are traps.
type Policy struct {
	allowed    []string
	extensions map[string]struct{}
	traps      []*regexp.Regexp

	// MaxRepeatedSegments caps repeats of one path segment, e.g. /a/b/a/b/a/b/a.
	// Zero disables the check.
	MaxRepeatedSegments int
}

// NewPolicy compiles a Policy. Domains and extensions are case-insensitive;
// extensions may be given with or without a leading dot.
func NewPolicy(allowedDomains, deniedExtensions, trapPatterns []string) (*Policy, error) {
	p := &Policy{
		extensions:          make(map[string]struct{}, len(deniedExtensions)),
		MaxRepeatedSegments: DefaultMaxRepeatedSegments,
	}
	for _, d := range allowedDomains {
		d = strings.TrimSpace(strings.ToLower(d))
		if d == "" {
			continue
		}
		p.allowed = append(p.allowed, d)
	}
	for _, ext := range deniedExtensions {
		ext = strings.TrimPrefix(strings.TrimSpace(strings.ToLower(ext)), ".")
		if ext == "" {
			continue
		}
		p.extensions[ext] = struct{}{}
	}
	for _, pattern := range trapPatterns {
		re, err := regexp.Compile(pattern)
		if err != nil {
			return nil, Errorf(EINVALID, "invalid trap pattern %q: %v", pattern, err)
		}
		p.traps = append(p.traps, re)
	}
	return p, nil
}

// Admit returns nil if rawURL may be crawled. Otherwise it returns an
// EINVALID error describing why the URL was rejected.
func (p *Policy) Admit(rawURL string) error {
	u, err := url.Parse(rawURL)
	if err != nil {
		return Errorf(EINVALID, "unparsable URL %q: %v", rawURL, err)
	}

	scheme := strings.ToLower(u.Scheme)
	if scheme != "http" && scheme != "https" {
		return Errorf(EINVALID, "scheme %q not crawlable", u.Scheme)
	}

	host := u.Hostname()
	if !p.allowedHost(host) {
		return Errorf(EINVALID, "host %q outside allowed domains", host)
	}

	ext := strings.TrimPrefix(path.Ext(strings.ToLower(u.Path)), ".")
	if _, denied := p.extensions[ext]; denied && ext != "" {
		return Errorf(EINVALID, "extension %q is not text", ext)
	}

	return nil
}

// IsValid reports whether rawURL passes Admit.
func (p *Policy) IsValid(rawURL string) bool {
	return p.Admit(rawURL) == nil
}

// IsTrap reports whether rawURL matches a trap pattern or repeats a path
// segment more often than MaxRepeatedSegments.
func (p *Policy) IsTrap(rawURL string) bool {
	for _, re := range p.traps {
		if re.MatchString(rawURL) {
			return true
		}
	}
	if p.MaxRepeatedSegments <= 0 {
		return false
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	counts := make(map[string]int)
	for _, seg := range strings.Split(u.Path, "/") {
		if seg == "" {
			continue
		}
		counts[seg]++
		if counts[seg] > p.MaxRepeatedSegments {
			return true
		}
	}
	return false
}

// AllowedDomains returns the configured allow-list.
func (p *Policy) AllowedDomains() []string {
	return append([]string(nil), p.allowed...)
}

func (p *Policy) allowedHost(host string) bool {
	for _, d := range p.allowed {
		if IsSubdomain(host, d) {
			return true
		}
	}
	return false
}
