package versioneer

import "strings"

// token is one qualifier word together with the separator written in front of it.
// Words are bounded by delimiters and by digit/letter transitions.
type token struct {
	sep  string
	text string
}

// tokenize splits a qualifier into tokens. Trailing delimiters are dropped.
func tokenize(q string) []token {
	var (
		tokens []token
		sep    strings.Builder
		word   strings.Builder
	)
	flush := func() {
		if word.Len() == 0 {
			return
		}
		tokens = append(tokens, token{sep: sep.String(), text: word.String()})
		sep.Reset()
		word.Reset()
	}
	for i := 0; i < len(q); i++ {
		c := q[i]
		if isDelimiter(c) {
			flush()
			sep.WriteByte(c)
			continue
		}
		if word.Len() > 0 && isDigit(c) != isDigit(q[i-1]) {
			flush()
		}
		word.WriteByte(c)
	}
	flush()
	return tokens
}

// decompose fills base, suffix and build from the qualifier, right to left.
func (v *VersionString) decompose() {
	tokens := tokenize(v.qual)
	n := len(tokens)

	if n > 0 && (IsDigits(tokens[n-1].text) || strings.EqualFold(tokens[n-1].text, SnapshotQualifier)) {
		v.build, v.buildSep = tokens[n-1].text, tokens[n-1].sep
		n--
	}
	if n > 0 && !IsDigits(tokens[n-1].text) {
		v.suffix, v.suffSep = tokens[n-1].text, tokens[n-1].sep
		n--
	}

	var b strings.Builder
	for _, t := range tokens[:n] {
		b.WriteString(t.sep)
		b.WriteString(t.text)
	}
	v.base = strings.Trim(b.String(), Delimiters)
}

// SetSuffix replaces the qualifier suffix. A trailing numeric run of suffix
// (e.g. the '1' of 'redhat-1') becomes the build number instead.
//
// It returns false when nothing changed, which makes re-applying the same
// suffix a no-op.
//
// A qualifier made of a single non-numeric token is itself the suffix, so
// '1.2.0.GA' with 'redhat-1' gives '1.2.0.redhat-1', not '1.2.0.GA-redhat-1'.
// Callers that want to append rather than replace should render the base and
// the new suffix themselves.
func (v *VersionString) SetSuffix(suffix string) bool {
	text, number := SplitSerial(strings.Trim(suffix, Delimiters))
	if text == "" {
		return false
	}
	build := v.build
	if number != "" {
		build = number
	}
	if text == v.suffix && build == v.build {
		return false
	}

	v.materialize()
	if v.suffix == "" {
		v.suffSep = "-"
	}
	if v.build == "" {
		v.buildSep = "-"
	}
	v.suffix, v.build = text, build
	return true
}

// SetBuildNumber replaces the build number. Only digit strings and the
// snapshot marker are accepted, anything else is ignored.
func (v *VersionString) SetBuildNumber(n string) bool {
	if !IsDigits(n) && !strings.EqualFold(n, SnapshotQualifier) {
		return false
	}
	if n == v.build {
		return false
	}

	v.materialize()
	if v.build == "" {
		v.buildSep = "-"
	}
	v.build = n
	return true
}

// materialize marks the value as modified, String reassembles it from now on.
func (v *VersionString) materialize() {
	v.dirty = true
}

// assemble renders 'base [sep] suffix [sep] build' omitting absent parts.
func (v *VersionString) assemble() string {
	var b strings.Builder
	b.WriteString(v.base)
	if v.suffix != "" {
		if b.Len() > 0 {
			b.WriteString(separatorFor(v.suffSep, b.String(), v.suffix))
		}
		b.WriteString(v.suffix)
	}
	if v.build != "" {
		if b.Len() > 0 {
			b.WriteString(separatorFor(v.buildSep, b.String(), v.build))
		}
		b.WriteString(v.build)
	}
	return b.String()
}

// separatorFor keeps an empty separator only where a digit/letter
// transition still delimits the next word.
func separatorFor(sep, head, next string) string {
	if sep != "" {
		return sep
	}
	if isDigit(head[len(head)-1]) == isDigit(next[0]) {
		return "-"
	}
	return ""
}

// SplitSerial splits a trailing digit run off s. Delimiters between the text
// and the digits are dropped: 'redhat-00001' gives ('redhat', '00001').
func SplitSerial(s string) (text, serial string) {
	i := len(s)
	for i > 0 && isDigit(s[i-1]) {
		i--
	}
	return strings.TrimRight(s[:i], Delimiters), s[i:]
}
