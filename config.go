package wordcrawl

import "time"

// Default configuration values.
const (
	DefaultUserAgent         = "wordcrawl/1.0 (+https://github.com/fwojciec/wordcrawl)"
	DefaultParentDomain      = "ics.uci.edu"
	DefaultPolitenessWindow  = 500 * time.Millisecond
	DefaultFetchTimeout      = 5 * time.Second
	DefaultWorkers           = 1
	DefaultMinWords          = 50
	DefaultMaxBodyBytes      = 2 * 1024 * 1024
	DefaultTopWords          = 50
	DefaultBloomExpectedURLs = 100000
	DefaultBloomFPRate       = 0.01
)

// DefaultSeedURLs are crawled when no seeds are configured.
var DefaultSeedURLs = []string{
	"https://www.ics.uci.edu",
	"https://www.cs.uci.edu",
	"https://www.informatics.uci.edu",
	"https://www.stat.uci.edu",
}

// Config holds every tunable of a crawl run.
type Config struct {
	SeedURLs       []string
	AllowedDomains []string
	// ParentDomain selects which hosts are tallied in the per-subdomain table.
	ParentDomain string
	UserAgent    string
	// StorePath is the frontier database file. Empty means the CLI default.
	StorePath string

	PolitenessWindow time.Duration
	// RequestDelay is an extra pause after every worker iteration.
	RequestDelay time.Duration
	FetchTimeout time.Duration
	Workers      int

	Stopwords        []string
	TrapPatterns     []string
	DeniedExtensions []string
	MinWords         int
	MaxBodyBytes     int64
	TopWords         int
	ReportDir        string

	BloomExpectedURLs uint
	BloomFPRate       float64
}

// DefaultConfig returns a Config populated with defaults.
func DefaultConfig() Config {
	return Config{
		SeedURLs:          append([]string(nil), DefaultSeedURLs...),
		AllowedDomains:    append([]string(nil), DefaultAllowedDomains...),
		ParentDomain:      DefaultParentDomain,
		UserAgent:         DefaultUserAgent,
		PolitenessWindow:  DefaultPolitenessWindow,
		FetchTimeout:      DefaultFetchTimeout,
		Workers:           DefaultWorkers,
		Stopwords:         append([]string(nil), DefaultStopwords...),
		TrapPatterns:      append([]string(nil), DefaultTrapPatterns...),
		DeniedExtensions:  append([]string(nil), DefaultDeniedExtensions...),
		MinWords:          DefaultMinWords,
		MaxBodyBytes:      DefaultMaxBodyBytes,
		TopWords:          DefaultTopWords,
		ReportDir:         ".",
		BloomExpectedURLs: DefaultBloomExpectedURLs,
		BloomFPRate:       DefaultBloomFPRate,
	}
}

// Validate returns an EINVALID error if the configuration cannot drive a crawl.
func (c *Config) Validate() error {
	if len(c.SeedURLs) == 0 {
		return Errorf(EINVALID, "at least one seed URL required")
	}
	for _, seed := range c.SeedURLs {
		if _, err := Normalize(seed); err != nil {
			return Errorf(EINVALID, "invalid seed URL %q", seed)
		}
	}
	if len(c.AllowedDomains) == 0 {
		return Errorf(EINVALID, "at least one allowed domain required")
	}
	if c.UserAgent == "" {
		return Errorf(EINVALID, "user agent required")
	}
	if c.PolitenessWindow < 0 {
		return Errorf(EINVALID, "politeness window must be non-negative")
	}
	if c.RequestDelay < 0 {
		return Errorf(EINVALID, "request delay must be non-negative")
	}
	if c.FetchTimeout <= 0 {
		return Errorf(EINVALID, "fetch timeout must be positive")
	}
	if c.Workers <= 0 {
		return Errorf(EINVALID, "workers must be positive (got %d)", c.Workers)
	}
	if c.MinWords < 0 {
		return Errorf(EINVALID, "minimum word count must be non-negative")
	}
	if c.MaxBodyBytes <= 0 {
		return Errorf(EINVALID, "maximum body size must be positive")
	}
	if c.TopWords < 0 {
		return Errorf(EINVALID, "top words must be non-negative")
	}
	if c.BloomFPRate <= 0 || c.BloomFPRate >= 1 {
		return Errorf(EINVALID, "bloom false positive rate must be in (0, 1)")
	}
	return nil
}

// Policy compiles the admissibility and trap policy described by c.
func (c *Config) Policy() (*Policy, error) {
	return NewPolicy(c.AllowedDomains, c.DeniedExtensions, c.TrapPatterns)
}
