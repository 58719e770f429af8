/*
Package versioneer provides a permissive parser for Maven-style version strings.

A version is split into a numeric major.minor.micro prefix and a free-form
qualifier. The qualifier is further decomposed into a base, a suffix and a
build number so that rebuild suffixes (e.g. 'redhat-1') can be replaced
without touching the rest of the string.

Usage:

	v := versioneer.Parse("1.2.0.GA-foo-9")
	v.QualifierBase()   // "GA"
	v.QualifierSuffix() // "foo"
	v.BuildNumber()     // "9"
	v.SetBuildNumber("10")
	v.String()          // "1.2.0.GA-foo-10"
*/
package versioneer

import "strings"

// SnapshotQualifier is the (case-insensitive) marker of a development version.
const SnapshotQualifier = "SNAPSHOT"

// Delimiters lists every character accepted between version segments.
const Delimiters = ".-_"

// parse states, one per numeric segment plus the qualifier tail.
type state int

const (
	stateMajor state = iota
	stateMinor
	stateMicro
	stateQualifier
)

// VersionString is a parsed version.
//
// Unmodified values render back to the exact input. Once SetSuffix or
// SetBuildNumber changed something the qualifier is reassembled from its parts.
type VersionString struct {
	raw     string
	numeric bool

	segments [3]string // major, minor, micro; empty when absent
	mmm      string    // raw numeric prefix, delimiters included
	qualSep  string    // delimiter(s) between the numeric prefix and the qualifier
	qual     string    // raw qualifier

	base     string
	suffix   string
	suffSep  string // separator in front of suffix
	build    string
	buildSep string // separator in front of build

	dirty bool
}

// Parse splits raw into its parts. It never fails: input it does not
// understand ends up in the qualifier.
func Parse(raw string) *VersionString {
	v := &VersionString{raw: raw}
	v.scan()
	v.decompose()
	return v
}

// scan runs the MAJOR -> MINOR -> MICRO -> QUALIFIER state machine over raw.
func (v *VersionString) scan() {
	if v.raw == "" || !isDigit(v.raw[0]) {
		v.qual = v.raw
		return
	}
	v.numeric = true

	st := stateMajor
	end, start := 0, len(v.raw) // end is just past the last digit of the numeric prefix

	for i := 0; i < len(v.raw) && st != stateQualifier; i++ {
		c := v.raw[i]
		switch {
		case isDigit(c):
			v.segments[st] += string(c)
			end = i + 1
		case isDelimiter(c) && v.segments[st] == "":
			// two delimiters in a row, the prefix ends before the second one
			start, st = i, stateQualifier
		case isDelimiter(c) && st == stateMicro:
			start, st = i+1, stateQualifier
		case isDelimiter(c):
			st++
		default:
			start, st = i, stateQualifier
		}
	}

	v.mmm = v.raw[:end]
	v.qualSep = v.raw[end:start]
	v.qual = v.raw[start:]
}

// IsNumeric reports whether the version starts with a numeric major segment.
func (v *VersionString) IsNumeric() bool {
	return v.numeric
}

// Major returns the major segment ("0" when absent).
func (v *VersionString) Major() string {
	return segmentOrZero(v.segments[stateMajor])
}

// Minor returns the minor segment ("0" when absent).
func (v *VersionString) Minor() string {
	return segmentOrZero(v.segments[stateMinor])
}

// Micro returns the micro segment ("0" when absent).
func (v *VersionString) Micro() string {
	return segmentOrZero(v.segments[stateMicro])
}

// Segments returns how many numeric segments were actually present.
func (v *VersionString) Segments() int {
	n := 0
	for _, s := range v.segments {
		if s == "" {
			break
		}
		n++
	}
	return n
}

// Qualifier returns the current qualifier text.
func (v *VersionString) Qualifier() string {
	if !v.dirty {
		return v.qual
	}
	return v.assemble()
}

// HasQualifier reports whether the version carries any qualifier text.
func (v *VersionString) HasQualifier() bool {
	return strings.Trim(v.Qualifier(), Delimiters) != ""
}

// QualifierBase returns the qualifier without suffix and build number.
func (v *VersionString) QualifierBase() string {
	return v.base
}

// QualifierSuffix returns the last non-numeric qualifier token before the build number.
func (v *VersionString) QualifierSuffix() string {
	return v.suffix
}

// BuildNumber returns the trailing numeric (or SNAPSHOT) qualifier token.
func (v *VersionString) BuildNumber() string {
	return v.build
}

// IsSnapshot reports whether the build number is the snapshot marker.
func (v *VersionString) IsSnapshot() bool {
	return strings.EqualFold(v.build, SnapshotQualifier)
}

// Modified reports whether a mutation changed the version since parsing.
func (v *VersionString) Modified() bool {
	return v.dirty
}

// String renders the version. Unmodified values return the parsed input verbatim.
func (v *VersionString) String() string {
	if !v.dirty {
		return v.raw
	}
	q := v.assemble()
	if !v.numeric {
		return q
	}
	sep := v.qualSep
	if sep == "" && v.qual == "" && q != "" {
		sep = "-"
		if v.Segments() == 3 {
			sep = "."
		}
	}
	return v.mmm + sep + q
}

// StripSnapshot removes a trailing snapshot marker (and its delimiter) from raw.
func StripSnapshot(raw string) (string, bool) {
	n := len(SnapshotQualifier)
	if len(raw) < n || !strings.EqualFold(raw[len(raw)-n:], SnapshotQualifier) {
		return raw, false
	}
	head := raw[:len(raw)-n]
	if head == "" {
		return raw, false
	}
	if !isDelimiter(head[len(head)-1]) {
		return raw, false
	}
	return head[:len(head)-1], true
}

func segmentOrZero(s string) string {
	if s == "" {
		return "0"
	}
	return s
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

func isDelimiter(c byte) bool {
	return c == '.' || c == '-' || c == '_'
}

// IsDigits reports whether s is a non-empty run of ASCII digits.
func IsDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if !isDigit(s[i]) {
			return false
		}
	}
	return true
}
