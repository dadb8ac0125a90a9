package model

import (
	"runtime"
	"time"
)

// Config is the complete driftscan configuration
type Config struct {
	Limits      Limits            `yaml:"limits" mapstructure:"limits"`
	Match       MatchConfig       `yaml:"match" mapstructure:"match"`
	Scan        ScanConfig        `yaml:"scan" mapstructure:"scan"`
	Concurrency ConcurrencyConfig `yaml:"concurrency" mapstructure:"concurrency"`
	Cache       CacheConfig       `yaml:"cache" mapstructure:"cache"`
	Output      OutputConfig      `yaml:"output" mapstructure:"output"`
}

// Limits bound extraction and scanning cost
type Limits struct {
	MaxPerFile            int   `yaml:"max_per_file" mapstructure:"max_per_file"`
	MaxTotal              int   `yaml:"max_total" mapstructure:"max_total"`
	MinLength             int   `yaml:"min_length" mapstructure:"min_length"`
	MaxLength             int   `yaml:"max_length" mapstructure:"max_length"`
	MaxFeatures           int   `yaml:"max_features" mapstructure:"max_features"`
	MaxDefsPerFeature     int   `yaml:"max_defs_per_feature" mapstructure:"max_defs_per_feature"`
	MaxRefsPerFeature     int   `yaml:"max_refs_per_feature" mapstructure:"max_refs_per_feature"`
	MaxFilesScannedPerDef int   `yaml:"max_files_scanned_per_def" mapstructure:"max_files_scanned_per_def"`
	MaxPathScanFiles      int   `yaml:"max_path_scan_files" mapstructure:"max_path_scan_files"`
	SnippetLines          int   `yaml:"snippet_lines" mapstructure:"snippet_lines"`
	MaxFileBytes          int64 `yaml:"max_file_bytes" mapstructure:"max_file_bytes"`
	MaxFlagScanFiles      int   `yaml:"max_flag_scan_files" mapstructure:"max_flag_scan_files"`
	MaxFlagScanBytes      int64 `yaml:"max_flag_scan_bytes" mapstructure:"max_flag_scan_bytes"`
	MaxDocumentBytes      int64 `yaml:"max_document_bytes" mapstructure:"max_document_bytes"`
}

// MatchConfig holds the tuned promotion thresholds for fallback matches
type MatchConfig struct {
	FileMatchesForImplemented        int `yaml:"file_matches_for_implemented" mapstructure:"file_matches_for_implemented"`
	GenericFileMatchesForImplemented int `yaml:"generic_file_matches_for_implemented" mapstructure:"generic_file_matches_for_implemented"`
	MismatchBucketCap                int `yaml:"mismatch_bucket_cap" mapstructure:"mismatch_bucket_cap"`
}

// ScanConfig controls which files are read
type ScanConfig struct {
	DocGlobs     []string `yaml:"doc_globs" mapstructure:"doc_globs"`
	ExcludeGlobs []string `yaml:"exclude_globs" mapstructure:"exclude_globs"`

	// SnapshotPath is relative to the scanned root unless absolute
	SnapshotPath string `yaml:"snapshot_path" mapstructure:"snapshot_path"`

	// ReadsPerSecond throttles source reads per scope; 0 means unlimited
	ReadsPerSecond float64 `yaml:"reads_per_second" mapstructure:"reads_per_second"`
	ReadBurst      int     `yaml:"read_burst" mapstructure:"read_burst"`

	// ScopeReadsPerSecond overrides ReadsPerSecond for top-level directories
	ScopeReadsPerSecond map[string]float64 `yaml:"scope_reads_per_second,omitempty" mapstructure:"scope_reads_per_second"`
}

// ConcurrencyConfig controls worker counts
type ConcurrencyConfig struct {
	Workers       int `yaml:"workers" mapstructure:"workers"`
	DocumentReads int `yaml:"document_reads" mapstructure:"document_reads"`
}

// CacheConfig controls file-content and extraction caches
type CacheConfig struct {
	Enabled   bool          `yaml:"enabled" mapstructure:"enabled"`
	Dir       string        `yaml:"dir" mapstructure:"dir"`
	MemoryTTL time.Duration `yaml:"memory_ttl" mapstructure:"memory_ttl"`
	DiskTTL   time.Duration `yaml:"disk_ttl" mapstructure:"disk_ttl"`
}

// OutputConfig controls report output
type OutputConfig struct {
	JSONPath    string `yaml:"json_path" mapstructure:"json_path"`
	MetricsPath string `yaml:"metrics_path" mapstructure:"metrics_path"`
	Verbose     bool   `yaml:"verbose" mapstructure:"verbose"`
	Color       bool   `yaml:"color" mapstructure:"color"`
}

// DefaultLimits returns the default cost limits
func DefaultLimits() Limits {
	return Limits{
		MaxPerFile:            40,
		MaxTotal:              400,
		MinLength:             4,
		MaxLength:             140,
		MaxFeatures:           200,
		MaxDefsPerFeature:     5,
		MaxRefsPerFeature:     5,
		MaxFilesScannedPerDef: 25,
		MaxPathScanFiles:      2000,
		SnippetLines:          2,
		MaxFileBytes:          512 * 1024,
		MaxFlagScanFiles:      400,
		MaxFlagScanBytes:      8 * 1024 * 1024,
		MaxDocumentBytes:      1024 * 1024,
	}
}

// DefaultMatchConfig returns the default promotion thresholds
func DefaultMatchConfig() MatchConfig {
	return MatchConfig{
		FileMatchesForImplemented:        2,
		GenericFileMatchesForImplemented: 4,
		MismatchBucketCap:                10,
	}
}

// DefaultConfig returns sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Limits: DefaultLimits(),
		Match:  DefaultMatchConfig(),
		Scan: ScanConfig{
			DocGlobs: []string{
				"README*",
				"*.md",
				"*.adoc",
				"*.rst",
				"docs/**/*.{md,markdown,adoc,asciidoc,rst,html,htm,txt}",
				"doc/**/*.{md,markdown,adoc,asciidoc,rst,html,htm,txt}",
				"Cargo.toml",
				"pyproject.toml",
			},
			ExcludeGlobs: []string{
				"**/node_modules/**",
				"**/vendor/**",
				"**/.git/**",
				"**/dist/**",
				"**/build/**",
				"**/target/**",
			},
			SnapshotPath: "repo-map.json",
			ReadBurst:    16,
		},
		Concurrency: ConcurrencyConfig{
			Workers:       runtime.NumCPU(),
			DocumentReads: 8,
		},
		Cache: CacheConfig{
			Enabled:   false,
			Dir:       ".driftscan/cache",
			MemoryTTL: 10 * time.Minute,
			DiskTTL:   24 * time.Hour,
		},
		Output: OutputConfig{
			JSONPath: "drift-report.json",
			Color:    true,
		},
	}
}

// Normalize replaces non-positive limits with defaults so callers can pass partial configs
func (l Limits) Normalize() Limits {
	d := DefaultLimits()
	if l.MaxPerFile <= 0 {
		l.MaxPerFile = d.MaxPerFile
	}
	if l.MaxTotal <= 0 {
		l.MaxTotal = d.MaxTotal
	}
	if l.MinLength <= 0 {
		l.MinLength = d.MinLength
	}
	if l.MaxLength <= 0 || l.MaxLength < l.MinLength {
		l.MaxLength = d.MaxLength
	}
	if l.MaxFeatures <= 0 {
		l.MaxFeatures = d.MaxFeatures
	}
	if l.MaxDefsPerFeature <= 0 {
		l.MaxDefsPerFeature = d.MaxDefsPerFeature
	}
	if l.MaxRefsPerFeature <= 0 {
		l.MaxRefsPerFeature = d.MaxRefsPerFeature
	}
	if l.MaxFilesScannedPerDef <= 0 {
		l.MaxFilesScannedPerDef = d.MaxFilesScannedPerDef
	}
	if l.MaxPathScanFiles <= 0 {
		l.MaxPathScanFiles = d.MaxPathScanFiles
	}
	if l.SnippetLines <= 0 {
		l.SnippetLines = d.SnippetLines
	}
	if l.MaxFileBytes <= 0 {
		l.MaxFileBytes = d.MaxFileBytes
	}
	if l.MaxFlagScanFiles <= 0 {
		l.MaxFlagScanFiles = d.MaxFlagScanFiles
	}
	if l.MaxFlagScanBytes <= 0 {
		l.MaxFlagScanBytes = d.MaxFlagScanBytes
	}
	if l.MaxDocumentBytes <= 0 {
		l.MaxDocumentBytes = d.MaxDocumentBytes
	}
	return l
}

// Normalize replaces non-positive thresholds with defaults
func (m MatchConfig) Normalize() MatchConfig {
	d := DefaultMatchConfig()
	if m.FileMatchesForImplemented <= 0 {
		m.FileMatchesForImplemented = d.FileMatchesForImplemented
	}
	if m.GenericFileMatchesForImplemented <= 0 {
		m.GenericFileMatchesForImplemented = d.GenericFileMatchesForImplemented
	}
	if m.MismatchBucketCap <= 0 {
		m.MismatchBucketCap = d.MismatchBucketCap
	}
	return m
}
