/*
Package align realigns the versions of a multi-module build according to a
suffix policy.

A Calculator turns the reactor's current versions into a ReactorVersionMap,
CheckStrictValue tells whether a version already is a valid alignment of
another one and a PropertyPropagator rewrites the properties versions are
declared through.

Usage:

	policy, err := align.NewSuffixPolicy(align.WithIncrementalSuffix("redhat"))
	if err != nil {
		return err
	}
	versions, err := align.NewCalculator().CalculateAll(ctx, projects, policy, source)
*/
package align

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strconv"
	"strings"

	"github.com/dephub/dephub-align/providers/versioneer"
	"golang.org/x/sync/errgroup"
)

// VersionCalculation is the working record of one project. It only lives for
// the duration of a calculation.
type VersionCalculation struct {
	OriginalVersion      string
	BaseVersion          string
	QualifierSuffix      string
	IncrementalQualifier int // 0 unless the policy is incremental
	BaseVersionSeparator string
	SuffixSeparator      string
	IsSnapshot           bool

	paddingWidth int
}

// String renders the new version.
func (vc *VersionCalculation) String() string {
	var b strings.Builder
	b.WriteString(vc.BaseVersion)
	if vc.QualifierSuffix != "" {
		if vc.BaseVersion != "" {
			b.WriteString(vc.BaseVersionSeparator)
		}
		b.WriteString(vc.QualifierSuffix)
		if vc.IncrementalQualifier > 0 {
			b.WriteString(vc.SuffixSeparator)
			b.WriteString(padSerial(vc.IncrementalQualifier, vc.paddingWidth))
		}
	}
	if vc.IsSnapshot {
		b.WriteString("-")
		b.WriteString(versioneer.SnapshotQualifier)
	}
	return b.String()
}

// padSerial left-pads n with zeros up to width.
func padSerial(n, width int) string {
	s := strconv.Itoa(n)
	if len(s) >= width {
		return s
	}
	return strings.Repeat("0", width-len(s)) + s
}

// CalculatorOption configures a Calculator.
type CalculatorOption func(*Calculator)

// WithLogger sets the structured logger. A nil logger silences the calculator.
func WithLogger(logger *slog.Logger) CalculatorOption {
	return func(c *Calculator) {
		c.logger = logger
	}
}

// WithLookupConcurrency bounds how many metadata lookups run at once during
// CalculateAll. Values below one mean sequential lookups.
func WithLookupConcurrency(n int) CalculatorOption {
	return func(c *Calculator) {
		if n < 1 {
			n = 1
		}
		c.concurrency = n
	}
}

// Calculator computes aligned versions.
type Calculator struct {
	logger      *slog.Logger
	concurrency int
}

// NewCalculator constructs a Calculator.
func NewCalculator(opts ...CalculatorOption) *Calculator {
	c := &Calculator{concurrency: 4}
	for _, opt := range opts {
		opt(c)
	}
	if c.logger == nil {
		c.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return c
}

// Calculate computes the calculation of a single project. Metadata failures
// are recovered as "no versions known".
func (c *Calculator) Calculate(ctx context.Context, coordinate ProjectCoordinate, policy *SuffixPolicy, source MetadataVersionSource) (*VersionCalculation, error) {
	if err := policy.Validate(); err != nil {
		return nil, err
	}
	m := newSuffixMatcher(policy)
	known := c.knownVersions(ctx, coordinate, policy, source)
	return c.calculate(coordinate, policy, m, known), nil
}

// CalculateAll computes the new version of every project.
//
// Phase one computes each project on its own, phase two (incremental policies
// only) applies the highest serial found anywhere to every project so that one
// build produces one build identifier. Nothing is shared between the phases
// but the ordered slice of phase one results.
func (c *Calculator) CalculateAll(ctx context.Context, projects []ProjectCoordinate, policy *SuffixPolicy, source MetadataVersionSource) (ReactorVersionMap, error) {
	if err := policy.Validate(); err != nil {
		return nil, err
	}
	calculationsTotal.WithLabelValues(policy.Mode().String()).Inc()

	calcs, err := c.phaseOne(ctx, projects, policy, source)
	if err != nil {
		return nil, err
	}
	result := c.phaseTwo(projects, policy, calcs)

	c.logger.Info("calculated reactor versions",
		slog.String("mode", policy.Mode().String()),
		slog.String("suffix", policy.Suffix()),
		slog.Int("projects", len(projects)),
	)
	return result, nil
}

// phaseOne computes one calculation per project. Lookups run concurrently but
// each goroutine only writes its own slot.
func (c *Calculator) phaseOne(ctx context.Context, projects []ProjectCoordinate, policy *SuffixPolicy, source MetadataVersionSource) ([]*VersionCalculation, error) {
	m := newSuffixMatcher(policy)
	calcs := make([]*VersionCalculation, len(projects))

	var lookups MetadataVersionSource
	if policy.Mode() == ModeIncremental && source != nil {
		lookups = NewCachingSource(source)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.concurrency)
	for i, p := range projects {
		i, p := i, p
		g.Go(func() error {
			known := c.knownVersions(gctx, p, policy, lookups)
			calcs[i] = c.calculate(p, policy, m, known)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return calcs, nil
}

// phaseTwo folds the highest serial, and the widest padding per base version,
// then renders every calculation.
func (c *Calculator) phaseTwo(projects []ProjectCoordinate, policy *SuffixPolicy, calcs []*VersionCalculation) ReactorVersionMap {
	if policy.Mode() == ModeIncremental {
		highest := 0
		widths := make(map[string]int)
		for _, vc := range calcs {
			if vc.IncrementalQualifier > highest {
				highest = vc.IncrementalQualifier
			}
			if vc.paddingWidth > widths[vc.BaseVersion] {
				widths[vc.BaseVersion] = vc.paddingWidth
			}
		}
		for _, vc := range calcs {
			vc.IncrementalQualifier = highest
			vc.paddingWidth = widths[vc.BaseVersion]
		}
		c.logger.Debug("applying reactor wide serial", slog.Int("serial", highest))
	}

	result := make(ReactorVersionMap, len(projects))
	for i, p := range projects {
		result[p.GA()] = calcs[i].String()
		c.logger.Debug("aligned project version",
			slog.String("project", p.GA().String()),
			slog.String("from", p.OriginalVersion),
			slog.String("to", result[p.GA()]),
		)
	}
	return result
}

// knownVersions queries the source for incremental policies. A failing source
// is logged and treated as having no versions.
func (c *Calculator) knownVersions(ctx context.Context, coordinate ProjectCoordinate, policy *SuffixPolicy, source MetadataVersionSource) []string {
	known := []string{coordinate.OriginalVersion}
	if policy.Mode() != ModeIncremental || source == nil {
		return known
	}

	ga := coordinate.GA()
	versions, err := source.KnownVersions(ctx, ga.GroupID, ga.ArtifactID)
	if err != nil {
		var cre *CoordinateResolutionError
		if !errors.As(err, &cre) {
			cre = &CoordinateResolutionError{Coordinate: ga, Err: err}
		}
		recoveredErrorsTotal.Inc()
		c.logger.Warn("metadata lookup failed, assuming no published versions",
			slog.String("project", ga.String()),
			slog.Any("error", cre),
		)
		return known
	}
	return append(known, versions...)
}

// calculate computes the phase one record of a project.
func (c *Calculator) calculate(coordinate ProjectCoordinate, policy *SuffixPolicy, m *suffixMatcher, known []string) *VersionCalculation {
	version, snapshot := versioneer.StripSnapshot(coordinate.OriginalVersion)
	base := normalizeBase(m.trim(version), policy.OSGiCompatible())

	vc := &VersionCalculation{
		OriginalVersion:      coordinate.OriginalVersion,
		BaseVersion:          base,
		QualifierSuffix:      policy.Suffix(),
		BaseVersionSeparator: baseSeparator(base, policy.OSGiCompatible()),
		IsSnapshot:           snapshot && policy.PreserveSnapshot(),
	}

	if policy.Mode() == ModeIncremental {
		highest, width := highestSerial(base, policy, m, known)
		vc.QualifierSuffix = policy.SuffixText()
		vc.SuffixSeparator = policy.Separator()
		vc.IncrementalQualifier = highest + 1
		vc.paddingWidth = width
		if policy.PaddingWidth() > 0 {
			vc.paddingWidth = policy.PaddingWidth()
		}
	}
	return vc
}

// highestSerial scans known versions sharing base for the highest serial and
// the widest serial digit run.
func highestSerial(base string, policy *SuffixPolicy, m *suffixMatcher, known []string) (highest, width int) {
	for _, k := range known {
		version, _ := versioneer.StripSnapshot(k)
		sm, ok := m.match(version)
		if !ok || sm.Serial == "" {
			continue
		}
		if normalizeBase(sm.Base, policy.OSGiCompatible()) != base {
			continue
		}
		if n := sm.SerialNumber(); n > highest {
			highest = n
		}
		if len(sm.Serial) > width {
			width = len(sm.Serial)
		}
	}
	return highest, width
}

// baseSeparator picks the delimiter between a base version and the suffix:
// '-' after a qualifier, '.' after a complete (or OSGi normalized) numeric
// prefix and '-' otherwise.
func baseSeparator(base string, osgi bool) string {
	v := versioneer.Parse(base)
	switch {
	case v.HasQualifier():
		return "-"
	case osgi || v.Segments() == 3:
		return "."
	default:
		return "-"
	}
}
