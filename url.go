package wordcrawl

import (
	"encoding/hex"
	"net/url"
	"sort"
	"strings"

	"golang.org/x/crypto/sha3"
)

// Normalize returns the form of rawURL used as the frontier identity.
// The fragment is stripped and the scheme and host are lower-cased.
// Relative or unparsable URLs return EINVALID.
func Normalize(rawURL string) (string, error) {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return "", Errorf(EINVALID, "invalid URL %q: %v", rawURL, err)
	}
	if u.Scheme == "" || u.Host == "" {
		return "", Errorf(EINVALID, "URL %q is not absolute", rawURL)
	}
	u.Fragment = ""
	u.RawFragment = ""
	u.Scheme = strings.ToLower(u.Scheme)
	u.Host = strings.ToLower(u.Host)
	return u.String(), nil
}

// URLHash returns the stable key under which a normalized URL is persisted.
func URLHash(normalized string) string {
	sum := sha3.Sum256([]byte(normalized))
	return hex.EncodeToString(sum[:])
}

// CanonicalKey collapses URLs that differ only in query parameter order,
// default ports or letter case of scheme and host.
func CanonicalKey(u *url.URL) string {
	if u == nil {
		return ""
	}
	scheme := strings.ToLower(u.Scheme)
	host := strings.ToLower(u.Hostname())
	if port := u.Port(); port != "" && port != defaultPort(scheme) {
		host = host + ":" + port
	}
	path := u.EscapedPath()
	if path == "" {
		path = "/"
	}

	key := scheme + "://" + host + path

	query := u.Query()
	if len(query) == 0 {
		return key
	}
	names := make([]string, 0, len(query))
	for name := range query {
		names = append(names, name)
	}
	sort.Strings(names)

	pairs := make([]string, 0, len(names))
	for _, name := range names {
		values := append([]string(nil), query[name]...)
		sort.Strings(values)
		for _, v := range values {
			pairs = append(pairs, url.QueryEscape(name)+"="+url.QueryEscape(v))
		}
	}
	return key + "?" + strings.Join(pairs, "&")
}

// Host returns the lower-cased host name of rawURL, or "" if it cannot be parsed.
func Host(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	return strings.ToLower(u.Hostname())
}

// IsSubdomain reports whether host equals domain or is a subdomain of it.
// Matching respects label boundaries: "evilics.uci.edu" is not a subdomain
// of "ics.uci.edu".
func IsSubdomain(host, domain string) bool {
	host = strings.TrimSuffix(strings.ToLower(host), ".")
	domain = strings.TrimSuffix(strings.ToLower(domain), ".")
	if host == "" || domain == "" {
		return false
	}
	return host == domain || strings.HasSuffix(host, "."+domain)
}

func defaultPort(scheme string) string {
	switch scheme {
	case "http":
		return "80"
	case "https":
		return "443"
	default:
		return ""
	}
}
