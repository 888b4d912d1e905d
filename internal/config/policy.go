// Package config holds the run policy: the accepted sequence alphabet, the
// metadata bounds, and the severity mapping that decides whether an issue
// kind downgrades a file-set to partial or fails it outright.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Severity is the configured consequence of a validation issue kind.
type Severity string

const (
	SeverityFailed  Severity = "failed"
	SeverityPartial Severity = "partial"
)

const dateLayout = "2006-01-02"

// DateRange bounds the date fields of the metadata (inclusive).
type DateRange struct {
	Min string `yaml:"min"`
	Max string `yaml:"max"`
}

// Policy is the pipeline configuration. All fields have working defaults so
// a zero config file (or no file at all) runs the documented behavior.
type Policy struct {
	Alphabet       string              `yaml:"alphabet"`
	MaxFieldLength int                 `yaml:"max_field_length"`
	MinAge         int                 `yaml:"min_participant_age"`
	Dates          DateRange           `yaml:"date_range"`
	Severity       map[string]Severity `yaml:"severity"`
}

// Default returns the built-in policy: ACGT alphabet, 64-char string fields,
// participants at least 40 years old, dates within 2014-01-01..2024-12-31,
// and missing_field/type_mismatch failing while out_of_range stays partial.
func Default() Policy {
	return Policy{
		Alphabet:       "ACGT",
		MaxFieldLength: 64,
		MinAge:         40,
		Dates:          DateRange{Min: "2014-01-01", Max: "2024-12-31"},
		Severity: map[string]Severity{
			"missing_field": SeverityFailed,
			"type_mismatch": SeverityFailed,
			"out_of_range":  SeverityPartial,
		},
	}
}

// Load reads and validates a policy file. Fields left unset fall back to the
// defaults, so a partial file only overrides what it names.
func Load(path string) (Policy, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Policy{}, fmt.Errorf("read policy file: %w", err)
	}
	p := Default()
	if err := yaml.Unmarshal(raw, &p); err != nil {
		return Policy{}, fmt.Errorf("decode policy file: %w", err)
	}
	if err := p.Validate(); err != nil {
		return Policy{}, fmt.Errorf("invalid policy file %s: %w", path, err)
	}
	return p, nil
}

// Validate checks that the policy is internally consistent.
func (p Policy) Validate() error {
	if p.Alphabet == "" {
		return fmt.Errorf("alphabet must be non-empty")
	}
	if p.MaxFieldLength <= 0 {
		return fmt.Errorf("max_field_length must be positive")
	}
	if p.MinAge < 0 {
		return fmt.Errorf("min_participant_age must not be negative")
	}
	min, err := time.Parse(dateLayout, p.Dates.Min)
	if err != nil {
		return fmt.Errorf("date_range.min: %w", err)
	}
	max, err := time.Parse(dateLayout, p.Dates.Max)
	if err != nil {
		return fmt.Errorf("date_range.max: %w", err)
	}
	if max.Before(min) {
		return fmt.Errorf("date_range.max precedes date_range.min")
	}
	for code, sev := range p.Severity {
		if sev != SeverityFailed && sev != SeverityPartial {
			return fmt.Errorf("severity for %q must be %q or %q, got %q",
				code, SeverityFailed, SeverityPartial, sev)
		}
	}
	return nil
}

// DateBounds returns the inclusive date range, falling back to the defaults
// when the configured strings do not parse (Validate rejects those anyway).
func (p Policy) DateBounds() (time.Time, time.Time) {
	def := Default()
	min, err := time.Parse(dateLayout, p.Dates.Min)
	if err != nil {
		min, _ = time.Parse(dateLayout, def.Dates.Min)
	}
	max, err := time.Parse(dateLayout, p.Dates.Max)
	if err != nil {
		max, _ = time.Parse(dateLayout, def.Dates.Max)
	}
	return min, max
}

// SeverityFor maps an issue code to its configured severity. Codes without
// an explicit entry (including stage errors) fail the file-set.
func (p Policy) SeverityFor(code string) Severity {
	if sev, ok := p.Severity[code]; ok {
		return sev
	}
	return SeverityFailed
}
