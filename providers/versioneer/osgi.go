package versioneer

import (
	"regexp"
	"strings"
)

/*
OSGi bundle version rendering.
*/

// osgiConfig is used to store the OSGi grammar configuration.
type osgiConfig struct {
	versionRgx         string         // OSGi version grammar (e.g. 1.2.0.GA-redhat-1)
	versionRgxCompiled *regexp.Regexp // Compiled, anchored version regexp
}

// osgiCfg is the global OSGi grammar configuration.
var osgiCfg osgiConfig

func init() {
	osgiCfg.versionRgx = `\d+(\.\d+(\.\d+(\.[\w-]+)?)?)?`
	osgiCfg.versionRgxCompiled = regexp.MustCompile("^" + osgiCfg.versionRgx + "$")
}

// IsOSGi validates s against the OSGi version grammar.
func IsOSGi(s string) bool {
	return osgiCfg.versionRgxCompiled.MatchString(s)
}

// OSGi renders the version following the OSGi grammar: numeric segments
// joined by '.', then the qualifier with its own '.' and any other character
// outside [A-Za-z0-9_-] turned into '-'.
//
// Missing minor/micro segments are filled with "0" when maximize is set, and
// always when a qualifier has to be appended. The result is best-effort: input
// that cannot be expressed (e.g. a non-numeric version) is returned as is, so
// callers that need a guarantee should check it with IsOSGi.
func (v *VersionString) OSGi(maximize bool) string {
	if !v.numeric {
		return v.String()
	}

	qualifier := strings.Trim(strings.Map(osgiQualifierRune, v.Qualifier()), Delimiters)
	fill := maximize || qualifier != ""

	parts := []string{v.Major()}
	for _, seg := range v.segments[1:] {
		if seg == "" && !fill {
			break
		}
		parts = append(parts, segmentOrZero(seg))
	}
	if qualifier != "" {
		parts = append(parts, qualifier)
	}
	return strings.Join(parts, ".")
}

// osgiQualifierRune maps every rune the qualifier grammar rejects to '-'.
func osgiQualifierRune(r rune) rune {
	switch {
	case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_', r == '-':
		return r
	}
	return '-'
}

// ToOSGi is a shortcut for Parse(raw).OSGi(maximize).
func ToOSGi(raw string, maximize bool) string {
	return Parse(raw).OSGi(maximize)
}
