package align

import (
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/dephub/dephub-align/providers/versioneer"
)

// suffixMatch is the result of locating an engine suffix at the tail of a version.
type suffixMatch struct {
	Base      string        // version without the suffix
	Lead      string        // delimiter between base and suffix
	Variant   SuffixVariant // variant whose text matched
	SerialSep string        // delimiter between suffix text and serial, may be empty
	Serial    string        // serial digits, empty for static suffixes
}

// SerialNumber returns the serial as an integer, -1 without serial.
func (m suffixMatch) SerialNumber() int {
	if m.Serial == "" {
		return -1
	}
	n, err := strconv.Atoi(m.Serial)
	if err != nil {
		return -1
	}
	return n
}

// suffixMatcher recognizes every spelling the engine may have produced for
// the variants of a policy.
type suffixMatcher struct {
	byText  map[string]SuffixVariant
	pattern *regexp.Regexp
}

// newSuffixMatcher compiles the variants of p. Longer variant texts are tried
// first so that 'temporary-redhat' wins over 'redhat'.
func newSuffixMatcher(p *SuffixPolicy) *suffixMatcher {
	variants := p.Variants()
	if len(variants) == 0 {
		return &suffixMatcher{}
	}

	m := &suffixMatcher{byText: make(map[string]SuffixVariant, len(variants))}
	texts := make([]string, 0, len(variants))
	for _, v := range variants {
		m.byText[v.Text] = v
		texts = append(texts, v.Text)
	}
	sort.SliceStable(texts, func(i, j int) bool { return len(texts[i]) > len(texts[j]) })
	for i, t := range texts {
		texts[i] = regexp.QuoteMeta(t)
	}
	m.pattern = regexp.MustCompile(`^(.*?)([.\-_])(` + strings.Join(texts, "|") + `)(?:([.\-_]?)(\d+))?$`)
	return m
}

// match locates a suffix at the tail of version (snapshot marker already stripped).
func (m *suffixMatcher) match(version string) (suffixMatch, bool) {
	if m.pattern == nil {
		return suffixMatch{}, false
	}
	groups := m.pattern.FindStringSubmatch(version)
	if groups == nil || groups[1] == "" {
		return suffixMatch{}, false
	}
	return suffixMatch{
		Base:      groups[1],
		Lead:      groups[2],
		Variant:   m.byText[groups[3]],
		SerialSep: groups[4],
		Serial:    groups[5],
	}, true
}

// trim removes a previously applied suffix from the tail of version.
func (m *suffixMatcher) trim(version string) string {
	if sm, ok := m.match(version); ok {
		return sm.Base
	}
	return version
}

// normalizeBase renders a base version the way the calculator compares and
// extends it.
func normalizeBase(base string, osgi bool) string {
	v := versioneer.Parse(base)
	if !osgi || !v.IsNumeric() {
		return base
	}
	return v.OSGi(true)
}

// sameBase reports whether two base versions only differ by OSGi normalization.
func sameBase(a, b string) bool {
	if a == b {
		return true
	}
	va, vb := versioneer.Parse(a), versioneer.Parse(b)
	if !va.IsNumeric() || !vb.IsNumeric() {
		return false
	}
	return va.OSGi(true) == vb.OSGi(true)
}
