// Package yaml loads crawl configuration from YAML files.
package yaml

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/fwojciec/wordcrawl"
	"gopkg.in/yaml.v3"
)

// Duration is a time.Duration written as a Go duration string ("500ms")
// or as a number of seconds.
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	var raw any
	if err := node.Decode(&raw); err != nil {
		return err
	}
	switch v := raw.(type) {
	case string:
		parsed, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("line %d: invalid duration %q", node.Line, v)
		}
		*d = Duration(parsed)
	case int:
		*d = Duration(time.Duration(v) * time.Second)
	case float64:
		*d = Duration(v * float64(time.Second))
	default:
		return fmt.Errorf("line %d: unsupported duration %v", node.Line, raw)
	}
	return nil
}

// MarshalYAML implements yaml.Marshaler.
func (d Duration) MarshalYAML() (any, error) {
	return time.Duration(d).String(), nil
}

// file mirrors wordcrawl.Config with YAML names.
type file struct {
	SeedURLs       []string `yaml:"seed_urls"`
	AllowedDomains []string `yaml:"allowed_domains"`
	ParentDomain   string   `yaml:"parent_domain"`
	UserAgent      string   `yaml:"user_agent"`
	StorePath      string   `yaml:"store_path"`

	PolitenessWindow Duration `yaml:"politeness_window"`
	RequestDelay     Duration `yaml:"request_delay"`
	FetchTimeout     Duration `yaml:"fetch_timeout"`
	Workers          int      `yaml:"workers"`

	Stopwords        []string `yaml:"stopwords"`
	TrapPatterns     []string `yaml:"trap_patterns"`
	DeniedExtensions []string `yaml:"denied_extensions"`
	MinWords         int      `yaml:"min_words"`
	MaxBodyBytes     int64    `yaml:"max_body_bytes"`
	TopWords         int      `yaml:"top_words"`
	ReportDir        string   `yaml:"report_dir"`

	Bloom struct {
		ExpectedURLs uint    `yaml:"expected_urls"`
		FPRate       float64 `yaml:"fp_rate"`
	} `yaml:"bloom"`
}

func fromConfig(c wordcrawl.Config) file {
	f := file{
		SeedURLs:         c.SeedURLs,
		AllowedDomains:   c.AllowedDomains,
		ParentDomain:     c.ParentDomain,
		UserAgent:        c.UserAgent,
		StorePath:        c.StorePath,
		PolitenessWindow: Duration(c.PolitenessWindow),
		RequestDelay:     Duration(c.RequestDelay),
		FetchTimeout:     Duration(c.FetchTimeout),
		Workers:          c.Workers,
		Stopwords:        c.Stopwords,
		TrapPatterns:     c.TrapPatterns,
		DeniedExtensions: c.DeniedExtensions,
		MinWords:         c.MinWords,
		MaxBodyBytes:     c.MaxBodyBytes,
		TopWords:         c.TopWords,
		ReportDir:        c.ReportDir,
	}
	f.Bloom.ExpectedURLs = c.BloomExpectedURLs
	f.Bloom.FPRate = c.BloomFPRate
	return f
}

func (f file) config() wordcrawl.Config {
	return wordcrawl.Config{
		SeedURLs:          f.SeedURLs,
		AllowedDomains:    f.AllowedDomains,
		ParentDomain:      f.ParentDomain,
		UserAgent:         f.UserAgent,
		StorePath:         f.StorePath,
		PolitenessWindow:  time.Duration(f.PolitenessWindow),
		RequestDelay:      time.Duration(f.RequestDelay),
		FetchTimeout:      time.Duration(f.FetchTimeout),
		Workers:           f.Workers,
		Stopwords:         f.Stopwords,
		TrapPatterns:      f.TrapPatterns,
		DeniedExtensions:  f.DeniedExtensions,
		MinWords:          f.MinWords,
		MaxBodyBytes:      f.MaxBodyBytes,
		TopWords:          f.TopWords,
		ReportDir:         f.ReportDir,
		BloomExpectedURLs: f.Bloom.ExpectedURLs,
		BloomFPRate:       f.Bloom.FPRate,
	}
}

// LoadConfig reads and validates the configuration file at path.
// Settings absent from the file keep their default values.
func LoadConfig(path string) (wordcrawl.Config, error) {
	fh, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return wordcrawl.Config{}, wordcrawl.Errorf(wordcrawl.ENOTFOUND, "config file %q not found", path)
		}
		return wordcrawl.Config{}, fmt.Errorf("open config: %w", err)
	}
	defer fh.Close()

	return DecodeConfig(fh)
}

// DecodeConfig reads and validates configuration from r.
// Unknown keys are rejected.
func DecodeConfig(r io.Reader) (wordcrawl.Config, error) {
	f := fromConfig(wordcrawl.DefaultConfig())

	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil && !errors.Is(err, io.EOF) {
		return wordcrawl.Config{}, wordcrawl.Errorf(wordcrawl.EINVALID, "decode config: %v", err)
	}

	cfg := f.config()
	if err := cfg.Validate(); err != nil {
		return wordcrawl.Config{}, err
	}
	return cfg, nil
}

// EncodeConfig writes cfg as YAML.
func EncodeConfig(w io.Writer, cfg wordcrawl.Config) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(fromConfig(cfg)); err != nil {
		return err
	}
	return enc.Close()
}
