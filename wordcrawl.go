// Package wordcrawl provides a polite, resumable web crawler that builds
// simple corpus statistics for a small set of allowed domains.
//
// This package contains domain types and interfaces following Ben Johnson's
// Standard Package Layout. Implementations live in subdirectories named
// after their primary dependency (e.g., sqlite/, goquery/, http/).
package wordcrawl
