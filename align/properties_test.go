package align

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// reactorFixture builds a parent with two children.
func reactorFixture() (parent, core, api *Project) {
	parent = &Project{
		Coordinate: ProjectCoordinate{GroupID: "org.acme", ArtifactID: "parent", OriginalVersion: "1.2.0"},
		Properties: map[string]string{
			"base.version":  "1.2.0",
			"acme.major":    "1",
			"acme.rest":     "2.0",
			"range.version": "[1.0,2.0)",
		},
	}
	core = &Project{
		Coordinate: ProjectCoordinate{GroupID: "org.acme", ArtifactID: "core", OriginalVersion: "1.2.0"},
		Parent:     parent,
		Properties: map[string]string{
			"acme.version":     "${base.version}",
			"lib.version":      "3.1",
			"empty.version":    "",
			"dangling.version": "${undefined}",
		},
	}
	api = &Project{
		Coordinate: ProjectCoordinate{GroupID: "org.acme", ArtifactID: "api", OriginalVersion: "1.2.0"},
		Parent:     parent,
		Properties: map[string]string{
			"lib.version": "3.2",
		},
	}
	return parent, core, api
}

func TestProject_Lookup(t *testing.T) {
	parent, core, _ := reactorFixture()

	assert.Equal(t, []*Project{core, parent}, core.Lineage())
	assert.Same(t, parent, core.Declaring("base.version"))
	assert.Same(t, core, core.Declaring("lib.version"))
	assert.Nil(t, core.Declaring("missing"))

	v, ok := core.Resolve("project.version")
	assert.True(t, ok)
	assert.Equal(t, "1.2.0", v)

	v, err := core.Interpolate("${acme.major}.${acme.rest}-${acme.version}")
	require.NoError(t, err)
	assert.Equal(t, "1.2.0-1.2.0", v)

	_, err = core.Interpolate("${missing}")
	assert.Error(t, err)
	_, err = core.Interpolate("${unterminated")
	assert.Error(t, err)

	// cycles are reported, not followed
	parent.Parent = core
	assert.Len(t, core.Lineage(), 2)
	core.Properties["loop"] = "${loop}"
	_, err = core.Interpolate("${loop}")
	assert.Error(t, err)
}

func TestParseExpression(t *testing.T) {
	parts, err := parseExpression("v${a}-${b}x")
	require.NoError(t, err)
	assert.Equal(t, []exprPart{
		{text: "v"},
		{text: "a", ref: true},
		{text: "-"},
		{text: "b", ref: true},
		{text: "x"},
	}, parts)

	_, err = parseExpression("${}")
	assert.Error(t, err)
	_, err = parseExpression("${a${b}}")
	assert.Error(t, err)
}

func TestCacheProperty(t *testing.T) {
	policy := mustPolicy(t, WithIncrementalSuffix("redhat"))

	cases := []struct {
		TestName   string
		Expression string
		Old        string
		New        string
		Applied    bool
		Updates    []PropertyUpdate
	}{
		{
			"direct", "${lib.version}", "3.1", "3.1.0.redhat-1", true,
			[]PropertyUpdate{{Project: GA{"org.acme", "core"}, Property: "lib.version", OldValue: "3.1", NewValue: "3.1.0.redhat-1"}},
		},
		{
			"chained", "${acme.version}", "1.2.0", "1.2.0.redhat-1", true,
			[]PropertyUpdate{{Project: GA{"org.acme", "parent"}, Property: "base.version", OldValue: "1.2.0", NewValue: "1.2.0.redhat-1"}},
		},
		{
			"composite", "${acme.major}.${acme.rest}", "1.2.0", "1.2.0.redhat-1", true,
			[]PropertyUpdate{{Project: GA{"org.acme", "parent"}, Property: "acme.rest", OldValue: "2.0", NewValue: "2.0.redhat-1"}},
		},
		{"unresolvable composite", "${acme.major}.2.0", "1.2.0", "1.2.0.redhat-1", false, nil},
		{"old value mismatch", "${lib.version}", "3.0", "3.0.0.redhat-1", false, nil},
		{"project version", "${project.version}", "1.2.0", "1.2.0.redhat-1", false, nil},
		{"literal", "3.1", "3.1", "3.1.0.redhat-1", false, nil},
		{"undeclared", "${missing}", "3.1", "3.1.0.redhat-1", false, nil},
		{"unknown spelling", "${lib.version}", "3.1.0.temporary-redhat-2", "3.1.0.redhat-3", false, nil},
		{"unresolvable nested composite", "${acme.major}-${dangling.version}", "1-x", "1-x.redhat-1", false, nil},
	}

	for _, tc := range cases {
		t.Run(tc.TestName, func(t *testing.T) {
			_, core, _ := reactorFixture()
			pp := NewPropertyPropagator(policy)

			applied, err := pp.CacheProperty(core, tc.Expression, tc.Old, tc.New)
			require.NoError(t, err)
			assert.Equal(t, tc.Applied, applied)
			if tc.Updates == nil {
				assert.Empty(t, pp.Updates())
				return
			}
			assert.Equal(t, tc.Updates, pp.Updates())
		})
	}
}

func TestCacheProperty_HistoricalSpelling(t *testing.T) {
	policy := mustPolicy(t, WithIncrementalSuffix("redhat"), WithAlternateSuffixBases("temporary-redhat"))
	_, core, _ := reactorFixture()
	core.Properties["lib.version"] = "3.1.0.temporary-redhat-2"

	pp := NewPropertyPropagator(policy)
	applied, err := pp.CacheProperty(core, "${lib.version}", "3.1.0.redhat-2", "3.1.0.redhat-3")
	require.NoError(t, err)
	assert.True(t, applied)
	assert.Equal(t, "3.1.0.redhat-3", pp.Updates()[0].NewValue)
}

func TestCacheProperty_Errors(t *testing.T) {
	policy := mustPolicy(t, WithIncrementalSuffix("redhat"))

	t.Run("not a version fragment", func(t *testing.T) {
		_, core, _ := reactorFixture()
		pp := NewPropertyPropagator(policy)
		_, err := pp.CacheProperty(core, "${range.version}", "[1.0,2.0)", "1.0.0.redhat-1")
		var pae *PropertyAmbiguityError
		require.ErrorAs(t, err, &pae)
		assert.Equal(t, "range.version", pae.Property)
	})

	t.Run("several candidates", func(t *testing.T) {
		_, core, _ := reactorFixture()
		pp := NewPropertyPropagator(policy)
		_, err := pp.CacheProperty(core, "${lib.version}${empty.version}", "3.1", "3.1.0.redhat-1")
		var pae *PropertyAmbiguityError
		assert.ErrorAs(t, err, &pae)
	})

	t.Run("unbalanced expression", func(t *testing.T) {
		_, core, _ := reactorFixture()
		pp := NewPropertyPropagator(policy)
		_, err := pp.CacheProperty(core, "${lib.version", "3.1", "3.1.0.redhat-1")
		var pae *PropertyAmbiguityError
		assert.ErrorAs(t, err, &pae)
	})

	t.Run("clash", func(t *testing.T) {
		_, core, _ := reactorFixture()
		pp := NewPropertyPropagator(policy)
		applied, err := pp.CacheProperty(core, "${lib.version}", "3.1", "3.1.0.redhat-1")
		require.NoError(t, err)
		assert.True(t, applied)

		// repeated requests are served from memory
		applied, err = pp.CacheProperty(core, "${lib.version}", "3.1", "3.1.0.redhat-1")
		require.NoError(t, err)
		assert.True(t, applied)

		_, err = pp.CacheProperty(core, "${lib.version}", "3.1", "3.1.0.redhat-2")
		assert.True(t, errors.Is(err, ErrPropertyClash))
	})
}

func TestCacheProperty_SharedProperty(t *testing.T) {
	policy := mustPolicy(t, WithIncrementalSuffix("redhat"))
	parent, core, api := reactorFixture()
	pp := NewPropertyPropagator(policy)

	// every dependency of core and api on the aligned artifact goes through one property
	for i := 0; i < 5; i++ {
		for _, p := range []*Project{core, api} {
			applied, err := pp.CacheProperty(p, "${base.version}", "1.2.0", "1.2.0.redhat-1")
			require.NoError(t, err)
			assert.True(t, applied)
		}
		// resolved once per project, later requests never look at the declaration again
		parent.Properties["base.version"] = "9.9"
	}

	assert.Len(t, pp.memo, 2)
	assert.Equal(t, []PropertyUpdate{
		{Project: GA{"org.acme", "parent"}, Property: "base.version", OldValue: "1.2.0", NewValue: "1.2.0.redhat-1"},
	}, pp.Updates())
}

func TestUpdateProperties(t *testing.T) {
	policy := mustPolicy(t, WithIncrementalSuffix("redhat"))

	t.Run("found through parent", func(t *testing.T) {
		parent, core, api := reactorFixture()
		pp := NewPropertyPropagator(policy)
		status, err := pp.UpdateProperties([]*Project{core, api}, false, "base.version", "1.2.0.redhat-1")
		require.NoError(t, err)
		assert.Equal(t, StatusFound, status)
		assert.Equal(t, []PropertyUpdate{{Project: parent.GA(), Property: "base.version", OldValue: "1.2.0", NewValue: "1.2.0.redhat-1"}}, pp.Updates())
	})

	t.Run("chained declaration", func(t *testing.T) {
		parent, core, _ := reactorFixture()
		pp := NewPropertyPropagator(policy)
		status, err := pp.UpdateProperties([]*Project{core}, false, "acme.version", "1.2.0.redhat-1")
		require.NoError(t, err)
		assert.Equal(t, StatusFound, status)
		assert.Equal(t, []PropertyUpdate{{Project: parent.GA(), Property: "base.version", OldValue: "1.2.0", NewValue: "1.2.0.redhat-1"}}, pp.Updates())
	})

	t.Run("not found", func(t *testing.T) {
		_, core, _ := reactorFixture()
		status, err := NewPropertyPropagator(policy).UpdateProperties([]*Project{core}, false, "missing", "1.0")
		require.NoError(t, err)
		assert.Equal(t, StatusNotFound, status)
	})

	t.Run("project version ignored", func(t *testing.T) {
		_, core, _ := reactorFixture()
		status, err := NewPropertyPropagator(policy).UpdateProperties([]*Project{core}, true, "project.version", "1.0")
		require.NoError(t, err)
		assert.Equal(t, StatusIgnored, status)
	})

	t.Run("divergent declarations", func(t *testing.T) {
		_, core, api := reactorFixture()
		pp := NewPropertyPropagator(policy)
		status, err := pp.UpdateProperties([]*Project{core, api}, false, "lib.version", "3.1.0.redhat-1")
		assert.Equal(t, StatusRejected, status)
		assert.ErrorIs(t, err, ErrDivergentProperty)
		assert.Empty(t, pp.Updates())

		status, err = pp.UpdateProperties([]*Project{core, api}, true, "lib.version", "3.1.0.redhat-1")
		require.NoError(t, err)
		assert.Equal(t, StatusFound, status)
		assert.Len(t, pp.Updates(), 2)
		assert.Equal(t, "api", pp.Updates()[0].Project.ArtifactID)
	})

	t.Run("strict alignment gate", func(t *testing.T) {
		_, core, _ := reactorFixture()
		pp := NewPropertyPropagator(policy, WithStrictAlignment(true))

		status, err := pp.UpdateProperties([]*Project{core}, false, "base.version", "1.3.0.redhat-1")
		assert.Equal(t, StatusRejected, status)
		var sav *StrictAlignmentViolation
		require.ErrorAs(t, err, &sav)
		assert.Equal(t, "1.2.0", sav.Source)

		status, err = pp.UpdateProperties([]*Project{core}, false, "base.version", "1.2.0.redhat-1")
		require.NoError(t, err)
		assert.Equal(t, StatusFound, status)

		status, err = pp.UpdateProperties([]*Project{core}, true, "base.version", "1.3.0.redhat-1")
		require.NoError(t, err)
		assert.Equal(t, StatusFound, status)
		assert.Equal(t, "1.3.0.redhat-1", pp.Updates()[0].NewValue)
	})

	t.Run("clash", func(t *testing.T) {
		_, core, _ := reactorFixture()
		pp := NewPropertyPropagator(policy)
		_, err := pp.UpdateProperties([]*Project{core}, false, "lib.version", "3.1.0.redhat-1")
		require.NoError(t, err)

		status, err := pp.UpdateProperties([]*Project{core}, false, "lib.version", "3.1.0.redhat-2")
		assert.Equal(t, StatusRejected, status)
		assert.ErrorIs(t, err, ErrPropertyClash)
	})
}

func TestPropertyStatus_String(t *testing.T) {
	assert.Equal(t, "found", StatusFound.String())
	assert.Equal(t, "not_found", StatusNotFound.String())
	assert.Equal(t, "ignored", StatusIgnored.String())
	assert.Equal(t, "rejected", StatusRejected.String())
}
