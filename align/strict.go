package align

import (
	"strings"

	"github.com/dephub/dephub-align/providers/versioneer"
)

// CheckStrictValue reports whether target could have been produced by
// aligning source under policy or under any of its alternate suffix bases.
//
// OSGi zero padding of the base is tolerated ('2.6' against '2.6.0.redhat-9').
// When source already carries a serial, target must carry a higher one unless
// the policy ignores the suffix in strict checks. The only exception is a move
// from an alternate base to the current one: alternates are predecessors, so
// their serials do not bind the current base. The reverse move is compared.
func CheckStrictValue(policy *SuffixPolicy, source, target string) bool {
	if source == target {
		return true
	}
	if policy == nil || len(policy.Variants()) == 0 {
		return false
	}
	m := newSuffixMatcher(policy)

	src, _ := versioneer.StripSnapshot(source)
	tgt, _ := versioneer.StripSnapshot(target)

	tm, ok := m.match(tgt)
	if !ok {
		return false
	}
	srcBase := src
	sm, srcSuffixed := m.match(src)
	if srcSuffixed {
		srcBase = sm.Base
	}
	if !sameBase(srcBase, tm.Base) {
		return false
	}

	if policy.StrictIgnoreSuffix() || !srcSuffixed {
		return true
	}
	if sm.Serial == "" || tm.Serial == "" {
		return true
	}
	if sm.Variant.Text != tm.Variant.Text && tm.Variant.Kind == VariantCurrent {
		// moving off an alternate base restarts the series
		return true
	}
	return tm.SerialNumber() > sm.SerialNumber()
}

// BuildOldValueSet lists every spelling a previous run could have produced for
// current: current itself, current with each suffix variant substituted and the
// zero serial variant of each. Spellings are unique and ordered, current first.
func BuildOldValueSet(policy *SuffixPolicy, current string) []string {
	set := []string{current}
	add := func(s string) {
		for _, v := range set {
			if v == s {
				return
			}
		}
		set = append(set, s)
	}

	if policy == nil {
		return set
	}
	version, snapshot := versioneer.StripSnapshot(current)
	marker := ""
	if snapshot {
		marker = current[len(version):]
	}

	sm, ok := newSuffixMatcher(policy).match(version)
	if !ok {
		return set
	}

	for _, v := range policy.Variants() {
		spelled := sm.Base + sm.Lead + v.Text
		if sm.Serial == "" {
			add(spelled + marker)
			continue
		}
		add(spelled + sm.SerialSep + sm.Serial + marker)
	}
	if sm.Serial != "" {
		zero := strings.Repeat("0", len(sm.Serial))
		for _, v := range policy.Variants() {
			add(sm.Base + sm.Lead + v.Text + sm.SerialSep + zero + marker)
		}
	}
	return set
}
