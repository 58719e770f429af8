package align

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"regexp"
	"sort"
	"strings"
)

// Properties that always hold the version of the project itself. They are
// never rewritten through the property table.
var versionProperties = map[string]bool{
	"project.version": true,
	"pom.version":     true,
	"version":         true,
}

// IsVersionProperty reports whether name refers to the current project version.
func IsVersionProperty(name string) bool {
	return versionProperties[name]
}

// plausibleValue matches values that can be a version or part of one.
var plausibleValue = regexp.MustCompile(`^[\w.\-+]+$`)

// Project is one node of the inheritance graph supplied by the caller.
type Project struct {
	Coordinate ProjectCoordinate
	Parent     *Project
	Properties map[string]string
}

// GA returns the coordinate of the project without version.
func (p *Project) GA() GA {
	return p.Coordinate.GA()
}

// Lineage returns the project followed by its ancestors, nearest first.
func (p *Project) Lineage() []*Project {
	var lineage []*Project
	seen := map[*Project]bool{}
	for cur := p; cur != nil && !seen[cur]; cur = cur.Parent {
		seen[cur] = true
		lineage = append(lineage, cur)
	}
	return lineage
}

// Declaring returns the nearest project of the lineage declaring name, nil if none does.
func (p *Project) Declaring(name string) *Project {
	for _, cur := range p.Lineage() {
		if _, ok := cur.Properties[name]; ok {
			return cur
		}
	}
	return nil
}

// Resolve returns the raw (not interpolated) value of a property as seen from p.
func (p *Project) Resolve(name string) (string, bool) {
	if IsVersionProperty(name) {
		return p.Coordinate.OriginalVersion, true
	}
	d := p.Declaring(name)
	if d == nil {
		return "", false
	}
	return d.Properties[name], true
}

// Interpolate replaces every '${name}' reference of expr, recursively.
func (p *Project) Interpolate(expr string) (string, error) {
	return p.interpolate(expr, map[string]bool{})
}

func (p *Project) interpolate(expr string, visiting map[string]bool) (string, error) {
	parts, err := parseExpression(expr)
	if err != nil {
		return "", err
	}
	var b strings.Builder
	for _, part := range parts {
		if !part.ref {
			b.WriteString(part.text)
			continue
		}
		if visiting[part.text] {
			return "", fmt.Errorf("property %q references itself", part.text)
		}
		raw, ok := p.Resolve(part.text)
		if !ok {
			return "", fmt.Errorf("property %q is not declared", part.text)
		}
		visiting[part.text] = true
		v, err := p.interpolate(raw, visiting)
		delete(visiting, part.text)
		if err != nil {
			return "", err
		}
		b.WriteString(v)
	}
	return b.String(), nil
}

// exprPart is a literal run or a property reference of an expression.
type exprPart struct {
	text string
	ref  bool
}

// parseExpression splits s into literals and '${...}' references.
func parseExpression(s string) ([]exprPart, error) {
	var parts []exprPart
	for s != "" {
		i := strings.Index(s, "${")
		if i < 0 {
			parts = append(parts, exprPart{text: s})
			break
		}
		if i > 0 {
			parts = append(parts, exprPart{text: s[:i]})
		}
		j := strings.IndexByte(s[i:], '}')
		if j < 0 {
			return nil, fmt.Errorf("unterminated property reference in %q", s)
		}
		name := s[i+2 : i+j]
		if name == "" || strings.Contains(name, "${") {
			return nil, fmt.Errorf("malformed property reference in %q", s)
		}
		parts = append(parts, exprPart{text: name, ref: true})
		s = s[i+j+1:]
	}
	return parts, nil
}

// isExpression reports whether s holds at least one property reference.
func isExpression(s string) bool {
	return strings.Contains(s, "${")
}

// PropertyStatus is the outcome of an update request.
type PropertyStatus int

const (
	// StatusFound means the property was found and its update recorded.
	StatusFound PropertyStatus = iota
	// StatusNotFound means no project of the reactor declares the property.
	StatusNotFound
	// StatusIgnored means the property holds the project version and is never rewritten.
	StatusIgnored
	// StatusRejected means the update was refused, the returned error tells why.
	StatusRejected
)

func (s PropertyStatus) String() string {
	switch s {
	case StatusFound:
		return "found"
	case StatusNotFound:
		return "not_found"
	case StatusIgnored:
		return "ignored"
	default:
		return "rejected"
	}
}

// PropertyUpdate is one recorded property rewrite, applied by the caller.
type PropertyUpdate struct {
	Project  GA
	Property string
	OldValue string
	NewValue string
}

type propertyKey struct {
	project  GA
	property string
}

type memoKey struct {
	project                       GA
	expression, oldValue, newValue string
}

// PropagatorOption configures a PropertyPropagator.
type PropagatorOption func(*PropertyPropagator)

// WithPropagatorLogger sets the structured logger. A nil logger silences the propagator.
func WithPropagatorLogger(logger *slog.Logger) PropagatorOption {
	return func(pp *PropertyPropagator) {
		pp.logger = logger
	}
}

// WithStrictAlignment refuses property updates whose new value is not a strict
// alignment of the current one.
func WithStrictAlignment(strict bool) PropagatorOption {
	return func(pp *PropertyPropagator) {
		pp.strict = strict
	}
}

// PropertyPropagator records the property rewrites needed for aligned
// versions to reach versions declared through properties. It is not safe for
// concurrent use.
type PropertyPropagator struct {
	policy *SuffixPolicy
	logger *slog.Logger
	strict bool

	updates map[propertyKey]PropertyUpdate
	memo    map[memoKey]bool
}

// NewPropertyPropagator constructs a PropertyPropagator.
func NewPropertyPropagator(policy *SuffixPolicy, opts ...PropagatorOption) *PropertyPropagator {
	pp := &PropertyPropagator{
		policy:  policy,
		updates: make(map[propertyKey]PropertyUpdate),
		memo:    make(map[memoKey]bool),
	}
	for _, opt := range opts {
		opt(pp)
	}
	if pp.logger == nil {
		pp.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return pp
}

// candidate is one property of an expression that can carry the change.
type candidate struct {
	name      string
	declaring *Project
	raw       string // declared value
	current   string // interpolated declared value
	next      string // value the property must take
}

// CacheProperty records the rewrite that makes expression, as seen from
// project, evaluate to newValue instead of oldValue.
//
// It returns false without recording anything when expression is a literal,
// only references the project version or is a composite whose other
// references do not evaluate to the rest of oldValue. Values that are not
// plausible version fragments and expressions where more than one property
// could carry the change are reported as *PropertyAmbiguityError. Results are
// memoized per project and request.
func (pp *PropertyPropagator) CacheProperty(project *Project, expression, oldValue, newValue string) (bool, error) {
	key := memoKey{project: project.GA(), expression: expression, oldValue: oldValue, newValue: newValue}
	if applied, ok := pp.memo[key]; ok {
		return applied, nil
	}
	applied, err := pp.cacheProperty(project, expression, oldValue, newValue, map[string]bool{})
	if err != nil {
		return false, err
	}
	pp.memo[key] = applied
	return applied, nil
}

func (pp *PropertyPropagator) cacheProperty(project *Project, expression, oldValue, newValue string, visiting map[string]bool) (bool, error) {
	parts, err := parseExpression(expression)
	if err != nil {
		return false, &PropertyAmbiguityError{Project: project.GA(), Value: expression, Err: err}
	}

	var found []candidate
	for i, part := range parts {
		if !part.ref || IsVersionProperty(part.text) || visiting[part.text] {
			continue
		}
		c, ok, err := pp.candidate(project, parts, i, oldValue, newValue)
		if err != nil {
			return false, err
		}
		if ok {
			found = append(found, c)
		}
	}

	switch len(found) {
	case 0:
		pp.logger.Debug("expression cannot carry the update",
			slog.String("project", project.GA().String()),
			slog.String("expression", expression),
		)
		return false, nil
	case 1:
	default:
		names := make([]string, 0, len(found))
		for _, c := range found {
			names = append(names, c.name)
		}
		return false, &PropertyAmbiguityError{
			Project: project.GA(),
			Value:   expression,
			Err:     fmt.Errorf("properties %s could all carry %q", strings.Join(names, ", "), newValue),
		}
	}

	c := found[0]
	if isExpression(c.raw) {
		visiting[c.name] = true
		return pp.cacheProperty(c.declaring, c.raw, c.current, c.next, visiting)
	}
	if !plausibleValue.MatchString(c.raw) || !plausibleValue.MatchString(c.next) {
		return false, &PropertyAmbiguityError{
			Project:  c.declaring.GA(),
			Property: c.name,
			Value:    c.raw,
			Err:      errors.New("not a version fragment"),
		}
	}
	if err := pp.record(c.declaring, c.name, c.raw, c.next, false); err != nil {
		return false, err
	}
	return true, nil
}

// candidate checks whether the reference at index i can carry the update: the
// other parts must render the same text around it in oldValue, its current
// value must complete oldValue and newValue must keep the surrounding text.
func (pp *PropertyPropagator) candidate(project *Project, parts []exprPart, i int, oldValue, newValue string) (candidate, bool, error) {
	name := parts[i].text
	declaring := project.Declaring(name)
	if declaring == nil {
		return candidate{}, false, nil
	}
	for j, part := range parts {
		if j != i && part.ref && part.text == name {
			// referenced twice, one rewrite cannot serve both
			return candidate{}, false, nil
		}
	}

	prefix, err := renderParts(project, parts[:i])
	if err != nil {
		return candidate{}, false, nil
	}
	suffix, err := renderParts(project, parts[i+1:])
	if err != nil {
		return candidate{}, false, nil
	}

	raw := declaring.Properties[name]
	current, err := project.Interpolate("${" + name + "}")
	if err != nil {
		return candidate{}, false, nil
	}
	if !pp.matchesOld(prefix+current+suffix, oldValue) {
		return candidate{}, false, nil
	}
	if len(newValue) < len(prefix)+len(suffix) || !strings.HasPrefix(newValue, prefix) || !strings.HasSuffix(newValue, suffix) {
		return candidate{}, false, nil
	}
	next := newValue[len(prefix) : len(newValue)-len(suffix)]
	if next == "" {
		return candidate{}, false, nil
	}
	return candidate{name: name, declaring: declaring, raw: raw, current: current, next: next}, true, nil
}

// matchesOld reports whether rendered is oldValue or one of its historical spellings.
func (pp *PropertyPropagator) matchesOld(rendered, oldValue string) bool {
	if rendered == oldValue {
		return true
	}
	for _, s := range BuildOldValueSet(pp.policy, oldValue) {
		if s == rendered {
			return true
		}
	}
	return false
}

func renderParts(project *Project, parts []exprPart) (string, error) {
	var b strings.Builder
	for _, part := range parts {
		if !part.ref {
			b.WriteString(part.text)
			continue
		}
		v, err := project.Interpolate("${" + part.text + "}")
		if err != nil {
			return "", err
		}
		b.WriteString(v)
	}
	return b.String(), nil
}

// record stores an update. A second, different value for the same property is
// a clash unless force is set, in which case the latest value wins.
func (pp *PropertyPropagator) record(project *Project, name, oldValue, newValue string, force bool) error {
	key := propertyKey{project: project.GA(), property: name}
	if prev, ok := pp.updates[key]; ok && prev.NewValue != newValue && !force {
		return &PropertyAmbiguityError{
			Project:  key.project,
			Property: name,
			Value:    newValue,
			Err:      fmt.Errorf("%w: already updated to %q", ErrPropertyClash, prev.NewValue),
		}
	}
	pp.updates[key] = PropertyUpdate{Project: key.project, Property: name, OldValue: oldValue, NewValue: newValue}
	pp.logger.Debug("recorded property update",
		slog.String("project", key.project.String()),
		slog.String("property", name),
		slog.String("from", oldValue),
		slog.String("to", newValue),
	)
	return nil
}

// UpdateProperties records newValue for the property name, looked up through
// the lineage of every project. Properties declared with different values in
// more than one place are rejected unless forceOverwrite is set, which also
// masks ambiguity errors and strict alignment violations.
func (pp *PropertyPropagator) UpdateProperties(projects []*Project, forceOverwrite bool, name, newValue string) (PropertyStatus, error) {
	status, err := pp.updateProperties(projects, forceOverwrite, name, newValue)
	propertyUpdatesTotal.WithLabelValues(status.String()).Inc()
	return status, err
}

func (pp *PropertyPropagator) updateProperties(projects []*Project, forceOverwrite bool, name, newValue string) (PropertyStatus, error) {
	if IsVersionProperty(name) {
		return StatusIgnored, nil
	}

	var declaring []*Project
	seen := map[*Project]bool{}
	for _, p := range projects {
		d := p.Declaring(name)
		if d == nil || seen[d] {
			continue
		}
		seen[d] = true
		declaring = append(declaring, d)
	}
	if len(declaring) == 0 {
		return StatusNotFound, nil
	}

	values := map[string]bool{}
	for _, d := range declaring {
		values[d.Properties[name]] = true
	}
	if len(values) > 1 && !forceOverwrite {
		return StatusRejected, &PropertyAmbiguityError{
			Project:  declaring[0].GA(),
			Property: name,
			Value:    newValue,
			Err:      ErrDivergentProperty,
		}
	}

	for _, d := range declaring {
		if err := pp.updateDeclared(d, forceOverwrite, name, newValue); err != nil {
			if !forceOverwrite {
				return StatusRejected, err
			}
			pp.logger.Warn("forcing property update",
				slog.String("project", d.GA().String()),
				slog.String("property", name),
				slog.Any("error", err),
			)
		}
	}
	return StatusFound, nil
}

// updateDeclared updates the property in the project declaring it.
func (pp *PropertyPropagator) updateDeclared(d *Project, force bool, name, newValue string) error {
	raw := d.Properties[name]
	old, err := d.Interpolate(raw)
	if err != nil {
		old = raw
	}

	if pp.strict && !CheckStrictValue(pp.policy, old, newValue) {
		if !force {
			return &StrictAlignmentViolation{Source: old, Target: newValue}
		}
		pp.logger.Warn("property update is not a strict alignment",
			slog.String("property", name),
			slog.String("from", old),
			slog.String("to", newValue),
		)
	}

	if isExpression(raw) {
		applied, err := pp.cacheProperty(d, raw, old, newValue, map[string]bool{name: true})
		if err != nil {
			return err
		}
		if applied {
			return nil
		}
		if !force {
			return &PropertyAmbiguityError{Project: d.GA(), Property: name, Value: raw, Err: errors.New("expression cannot carry the update")}
		}
	}
	return pp.record(d, name, raw, newValue, force)
}

// Updates returns every recorded update, ordered by project and property.
func (pp *PropertyPropagator) Updates() []PropertyUpdate {
	res := make([]PropertyUpdate, 0, len(pp.updates))
	for _, u := range pp.updates {
		res = append(res, u)
	}
	sort.Slice(res, func(i, j int) bool {
		if res[i].Project != res[j].Project {
			return res[i].Project.String() < res[j].Project.String()
		}
		return res[i].Property < res[j].Property
	})
	return res
}
