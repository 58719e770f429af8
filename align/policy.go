package align

import (
	"errors"
	"fmt"
	"strings"

	"github.com/dephub/dephub-align/providers/versioneer"
)

// Mode selects how the version suffix is computed.
type Mode int

const (
	// ModeNone applies no suffix.
	ModeNone Mode = iota
	// ModeStatic appends the configured suffix verbatim.
	ModeStatic
	// ModeIncremental appends the configured suffix followed by a serial number
	// one above the highest one already published.
	ModeIncremental
)

func (m Mode) String() string {
	switch m {
	case ModeStatic:
		return "static"
	case ModeIncremental:
		return "incremental"
	default:
		return "none"
	}
}

// VariantKind tags a suffix variant.
type VariantKind int

const (
	// VariantCurrent is the suffix base configured for this run.
	VariantCurrent VariantKind = iota
	// VariantAlternate is a historical suffix base accepted as a valid predecessor.
	VariantAlternate
)

// SuffixVariant is one spelling of a suffix base (serial number excluded).
type SuffixVariant struct {
	Kind VariantKind
	Text string
}

// SuffixPolicy describes how suffixes are computed. It is immutable once built.
type SuffixPolicy struct {
	mode               Mode
	suffix             string // configured suffix, static serial included
	separator          string // between suffix text and serial number
	paddingWidth       int    // 0 means infer
	preserveSnapshot   bool
	osgiCompatible     bool
	strictIgnoreSuffix bool
	alternates         []string

	staticSuffix      string
	incrementalSuffix string
	variants          []SuffixVariant
}

// PolicyOption configures a SuffixPolicy.
type PolicyOption func(*SuffixPolicy) error

// WithStaticSuffix appends suffix verbatim to every version (e.g. 'redhat-00001').
func WithStaticSuffix(suffix string) PolicyOption {
	return func(p *SuffixPolicy) error {
		p.staticSuffix = suffix
		return nil
	}
}

// WithIncrementalSuffix appends suffix plus an incremented serial (e.g. 'redhat' gives 'redhat-3').
func WithIncrementalSuffix(suffix string) PolicyOption {
	return func(p *SuffixPolicy) error {
		p.incrementalSuffix = suffix
		return nil
	}
}

// WithPreserveSnapshot keeps a '-SNAPSHOT' marker on aligned versions.
func WithPreserveSnapshot(preserve bool) PolicyOption {
	return func(p *SuffixPolicy) error {
		p.preserveSnapshot = preserve
		return nil
	}
}

// WithOSGiCompatible normalizes aligned versions to the OSGi grammar (default true).
func WithOSGiCompatible(osgi bool) PolicyOption {
	return func(p *SuffixPolicy) error {
		p.osgiCompatible = osgi
		return nil
	}
}

// WithPaddingWidth left-pads serial numbers with zeros up to width. Zero means
// the width is inferred from previously published versions.
func WithPaddingWidth(width int) PolicyOption {
	return func(p *SuffixPolicy) error {
		if width < 0 {
			return &ConfigurationError{Option: "buildNumberPaddingWidth", Err: fmt.Errorf("negative width %d", width)}
		}
		p.paddingWidth = width
		return nil
	}
}

// WithAlternateSuffixBases accepts suffix bases used by previous runs as valid predecessors.
func WithAlternateSuffixBases(bases ...string) PolicyOption {
	return func(p *SuffixPolicy) error {
		for _, b := range bases {
			if strings.Trim(b, versioneer.Delimiters) == "" {
				return &ConfigurationError{Option: "alternateSuffixBases", Err: errors.New("empty suffix base")}
			}
		}
		p.alternates = append(p.alternates, bases...)
		return nil
	}
}

// WithStrictIgnoreSuffix makes strict alignment checks ignore the suffix serial.
func WithStrictIgnoreSuffix(ignore bool) PolicyOption {
	return func(p *SuffixPolicy) error {
		p.strictIgnoreSuffix = ignore
		return nil
	}
}

// NewSuffixPolicy builds a policy. Without any suffix option the policy is
// ModeNone, which the validator accepts but the calculator rejects.
func NewSuffixPolicy(opts ...PolicyOption) (*SuffixPolicy, error) {
	p := &SuffixPolicy{osgiCompatible: true}
	for _, opt := range opts {
		if err := opt(p); err != nil {
			return nil, err
		}
	}

	static := strings.TrimSpace(p.staticSuffix)
	incremental := strings.TrimSpace(p.incrementalSuffix)
	switch {
	case static != "" && incremental != "":
		return nil, &ConfigurationError{Err: ErrConflictingSuffix}
	case static != "":
		p.mode = ModeStatic
		if err := p.setSuffix("staticSuffix", static); err != nil {
			return nil, err
		}
	case incremental != "":
		p.mode = ModeIncremental
		if err := p.setSuffix("incrementalSuffix", incremental); err != nil {
			return nil, err
		}
	case p.staticSuffix != "" || p.incrementalSuffix != "":
		return nil, &ConfigurationError{Err: ErrNoSuffix}
	}

	if p.mode != ModeNone {
		p.variants = append(p.variants, SuffixVariant{Kind: VariantCurrent, Text: p.SuffixText()})
	}
	for _, alt := range p.alternates {
		text, _ := versioneer.SplitSerial(strings.Trim(alt, versioneer.Delimiters))
		if text == "" {
			return nil, &ConfigurationError{Option: "alternateSuffixBases", Err: fmt.Errorf("suffix base %q has no text", alt)}
		}
		if !p.hasVariant(text) {
			p.variants = append(p.variants, SuffixVariant{Kind: VariantAlternate, Text: text})
		}
	}
	return p, nil
}

// setSuffix infers the serial separator from a trailing delimiter and
// validates what is left.
func (p *SuffixPolicy) setSuffix(option, suffix string) error {
	p.separator = "-"
	if last := suffix[len(suffix)-1]; strings.IndexByte(versioneer.Delimiters, last) >= 0 {
		p.separator = string(last)
	}
	p.suffix = strings.Trim(suffix, versioneer.Delimiters)
	if p.suffix == "" {
		return &ConfigurationError{Option: option, Err: ErrNoSuffix}
	}
	if text, _ := versioneer.SplitSerial(p.suffix); text == "" {
		return &ConfigurationError{Option: option, Err: fmt.Errorf("suffix %q is purely numeric", suffix)}
	}
	if p.mode == ModeIncremental && versioneer.IsDigits(p.suffix[len(p.suffix)-1:]) {
		return &ConfigurationError{Option: option, Err: fmt.Errorf("incremental suffix %q must not end with a serial", suffix)}
	}
	return nil
}

func (p *SuffixPolicy) hasVariant(text string) bool {
	for _, v := range p.variants {
		if v.Text == text {
			return true
		}
	}
	return false
}

// Validate checks that the policy can drive a calculation.
func (p *SuffixPolicy) Validate() error {
	if p == nil || p.mode == ModeNone || p.suffix == "" {
		return &ConfigurationError{Err: ErrNoSuffix}
	}
	return nil
}

// Mode returns the suffix mode.
func (p *SuffixPolicy) Mode() Mode { return p.mode }

// Suffix returns the configured suffix, static serial included.
func (p *SuffixPolicy) Suffix() string { return p.suffix }

// SuffixText returns the suffix base without any serial number.
func (p *SuffixPolicy) SuffixText() string {
	text, _ := versioneer.SplitSerial(p.suffix)
	return text
}

// Separator returns the separator written between suffix base and serial.
func (p *SuffixPolicy) Separator() string { return p.separator }

// PaddingWidth returns the configured serial width, 0 when inferred.
func (p *SuffixPolicy) PaddingWidth() int { return p.paddingWidth }

// PreserveSnapshot reports whether '-SNAPSHOT' markers are kept.
func (p *SuffixPolicy) PreserveSnapshot() bool { return p.preserveSnapshot }

// OSGiCompatible reports whether versions are normalized to the OSGi grammar.
func (p *SuffixPolicy) OSGiCompatible() bool { return p.osgiCompatible }

// StrictIgnoreSuffix reports whether strict checks ignore the suffix serial.
func (p *SuffixPolicy) StrictIgnoreSuffix() bool { return p.strictIgnoreSuffix }

// AlternateSuffixBases returns the configured alternates in order.
func (p *SuffixPolicy) AlternateSuffixBases() []string {
	return append([]string(nil), p.alternates...)
}

// Variants returns the current suffix base followed by every alternate, in order.
func (p *SuffixPolicy) Variants() []SuffixVariant {
	return append([]SuffixVariant(nil), p.variants...)
}
