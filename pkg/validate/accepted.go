package validate

import (
	_ "embed"
	"fmt"
	"os"
	"strings"

	"github.com/blang/semver/v4"
	"gopkg.in/yaml.v2"
)

//go:embed accepted_differences.yaml
var defaultAcceptedDifferences []byte

// AcceptedDifference names one SVD file whose reference and library models
// are known to differ.
type AcceptedDifference struct {
	Vendor  string `yaml:"vendor"`
	Name    string `yaml:"name"`
	Version string `yaml:"version"`
	SVDName string `yaml:"svd_name"`
	Reason  string `yaml:"reason"`

	versionRange semver.Range
}

// AllowList matches files against the accepted differences.
type AllowList struct {
	Entries []AcceptedDifference `yaml:"accepted_differences"`
}

// DefaultAllowList returns the built-in accepted differences.
func DefaultAllowList() (*AllowList, error) {
	return ParseAllowList(defaultAcceptedDifferences)
}

// LoadAllowList reads an allow-list file. An empty path loads the built-in list.
func LoadAllowList(path string) (*AllowList, error) {
	if path == "" {
		return DefaultAllowList()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("validate: %w", err)
	}
	l, err := ParseAllowList(data)
	if err != nil {
		return nil, fmt.Errorf("%w (file %s)", err, path)
	}
	return l, nil
}

// ParseAllowList decodes the YAML allow-list format.
func ParseAllowList(data []byte) (*AllowList, error) {
	var l AllowList
	if err := yaml.Unmarshal(data, &l); err != nil {
		return nil, fmt.Errorf("validate: accepted differences: %w", err)
	}
	for i := range l.Entries {
		e := &l.Entries[i]
		if e.Vendor == "" || e.Name == "" || e.Version == "" || e.SVDName == "" {
			return nil, fmt.Errorf("validate: accepted difference %d: vendor, name, version and svd_name are required", i+1)
		}
		if !isVersionRange(e.Version) {
			continue
		}
		r, err := semver.ParseRange(e.Version)
		if err != nil {
			return nil, fmt.Errorf("validate: accepted difference %d: version range %q: %w", i+1, e.Version, err)
		}
		e.versionRange = r
	}
	return &l, nil
}

// isVersionRange reports whether v is a comparison such as ">=1.0.0 <2.0.0".
// Anything else, including wildcard spellings like "2.x", is a literal version.
func isVersionRange(v string) bool {
	return strings.ContainsAny(v, "<>=!")
}

// Accepts reports whether a difference in the file described by m is
// accepted, and returns the matching entry.
func (l *AllowList) Accepts(m Meta) (*AcceptedDifference, bool) {
	if l == nil {
		return nil, false
	}
	for i := range l.Entries {
		e := &l.Entries[i]
		if e.Vendor == m.Vendor && e.Name == m.Name && e.SVDName == m.SVD && e.matchVersion(m.Version) {
			return e, true
		}
	}
	return nil, false
}

func (e *AcceptedDifference) matchVersion(version string) bool {
	if e.Version == version {
		return true
	}
	v, err := semver.ParseTolerant(version)
	if err != nil {
		return false
	}
	if e.versionRange != nil {
		return e.versionRange(v)
	}
	want, err := semver.ParseTolerant(e.Version)
	return err == nil && want.Equals(v)
}
