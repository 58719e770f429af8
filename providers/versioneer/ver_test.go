package versioneer

import (
	"testing"
)

func TestParse_Parts(t *testing.T) {
	cases := []struct {
		Raw                 string
		Numeric             bool
		Major, Minor, Micro string
		Segments            int
		Qualifier           string
		Base, Suffix, Build string
	}{
		{"1.2.0", true, "1", "2", "0", 3, "", "", "", ""},
		{"2.6", true, "2", "6", "0", 2, "", "", "", ""},
		{"10", true, "10", "0", "0", 1, "", "", "", ""},
		{"1.2.0.foo", true, "1", "2", "0", 3, "foo", "", "foo", ""},
		{"1.2.0.GA-foo-9", true, "1", "2", "0", 3, "GA-foo-9", "GA", "foo", "9"},
		{"1.0-SNAPSHOT", true, "1", "0", "0", 2, "SNAPSHOT", "", "", "SNAPSHOT"},
		{"1.0.0.Final-redhat-00001", true, "1", "0", "0", 3, "Final-redhat-00001", "Final", "redhat", "00001"},
		{"1.0.0.temporary-redhat-1", true, "1", "0", "0", 3, "temporary-redhat-1", "temporary", "redhat", "1"},
		{"1.2.3GA", true, "1", "2", "3", 3, "GA", "", "GA", ""},
		{"1.2.3.4.5", true, "1", "2", "3", 3, "4.5", "4", "", "5"},
		{"3.2.0.redhat4", true, "3", "2", "0", 3, "redhat4", "", "redhat", "4"},
		{"1_2_3-beta_2", true, "1", "2", "3", 3, "beta_2", "", "beta", "2"},
		{"1..2", true, "1", "0", "0", 1, ".2", "", "", "2"},
		{"1.2.", true, "1", "2", "0", 2, "", "", "", ""},
		{"GA", false, "0", "0", "0", 0, "GA", "", "GA", ""},
		{"v1.2.3", false, "0", "0", "0", 0, "v1.2.3", "v1.2", "", "3"},
		{"", false, "0", "0", "0", 0, "", "", "", ""},
	}

	for _, c := range cases {
		v := Parse(c.Raw)
		if v.IsNumeric() != c.Numeric {
			t.Errorf("%q: numeric %v, expected %v", c.Raw, v.IsNumeric(), c.Numeric)
		}
		if v.Major() != c.Major || v.Minor() != c.Minor || v.Micro() != c.Micro {
			t.Errorf("%q: segments %s/%s/%s, expected %s/%s/%s", c.Raw, v.Major(), v.Minor(), v.Micro(), c.Major, c.Minor, c.Micro)
		}
		if v.Segments() != c.Segments {
			t.Errorf("%q: %d segments, expected %d", c.Raw, v.Segments(), c.Segments)
		}
		if v.Qualifier() != c.Qualifier {
			t.Errorf("%q: qualifier %q, expected %q", c.Raw, v.Qualifier(), c.Qualifier)
		}
		if v.QualifierBase() != c.Base || v.QualifierSuffix() != c.Suffix || v.BuildNumber() != c.Build {
			t.Errorf("%q: decomposed into (%q, %q, %q), expected (%q, %q, %q)",
				c.Raw, v.QualifierBase(), v.QualifierSuffix(), v.BuildNumber(), c.Base, c.Suffix, c.Build)
		}
	}
}

func TestParse_RoundTrip(t *testing.T) {
	raws := []string{
		"1.2.0", "1.2.0.foo", "1.2.0.GA-foo-9", "1.0-SNAPSHOT", "1.0.0_Final.redhat_3",
		"1..2", "1.2.", "-1", "v1", "1.2.3GA", "3.0.0.Beta1-redhat-00002", "", "...", "1.2.3+build.5",
	}
	for _, raw := range raws {
		if got := Parse(raw).String(); got != raw {
			t.Errorf("render(parse(%q)) = %q", raw, got)
		}
	}
}

func TestSetSuffix(t *testing.T) {
	cases := []struct {
		Raw, Suffix, Expected string
		Changed               bool
	}{
		{"1.2.0", "foo", "1.2.0.foo", true},
		{"1.2.0.foo", "foo", "1.2.0.foo", false},
		{"1.2", "foo", "1.2-foo", true},
		{"1.2.0.GA-foo-9", "foo-10", "1.2.0.GA-foo-10", true},
		{"1.2.0.GA-foo-9", "foo-9", "1.2.0.GA-foo-9", false},
		{"1.2.0.foo", "foo-1", "1.2.0.foo-1", true},
		{"1.2.0.foo-3", "bar", "1.2.0.bar-3", true},
		{"1.2.0.foo", "", "1.2.0.foo", false},
		{"1.2.0.foo", "-42", "1.2.0.foo", false},
		{"1.2.0.GA", "redhat-1", "1.2.0.redhat-1", true},
	}

	for _, c := range cases {
		v := Parse(c.Raw)
		changed := v.SetSuffix(c.Suffix)
		if changed != c.Changed {
			t.Errorf("%q.SetSuffix(%q) changed=%v, expected %v", c.Raw, c.Suffix, changed, c.Changed)
		}
		if v.String() != c.Expected {
			t.Errorf("%q.SetSuffix(%q) = %q, expected %q", c.Raw, c.Suffix, v.String(), c.Expected)
		}
		if v.Modified() != c.Changed {
			t.Errorf("%q.SetSuffix(%q) modified=%v, expected %v", c.Raw, c.Suffix, v.Modified(), c.Changed)
		}
	}
}

func TestSetBuildNumber(t *testing.T) {
	cases := []struct {
		Raw, Build, Expected string
		Changed              bool
	}{
		{"1.2.0.foo", "3", "1.2.0.foo-3", true},
		{"1.2.0.GA-foo-9", "10", "1.2.0.GA-foo-10", true},
		{"1.2.0.redhat4", "5", "1.2.0.redhat5", true},
		{"1.2.0.foo-3", "3", "1.2.0.foo-3", false},
		{"1.2.0.foo-3", "three", "1.2.0.foo-3", false},
		{"1.2.0.foo-3", "SNAPSHOT", "1.2.0.foo-SNAPSHOT", true},
		{"1.2.0", "7", "1.2.0.7", true},
	}

	for _, c := range cases {
		v := Parse(c.Raw)
		if changed := v.SetBuildNumber(c.Build); changed != c.Changed {
			t.Errorf("%q.SetBuildNumber(%q) changed=%v, expected %v", c.Raw, c.Build, changed, c.Changed)
		}
		if v.String() != c.Expected {
			t.Errorf("%q.SetBuildNumber(%q) = %q, expected %q", c.Raw, c.Build, v.String(), c.Expected)
		}
	}
}

func TestStripSnapshot(t *testing.T) {
	cases := []struct {
		Raw, Expected string
		Snapshot      bool
	}{
		{"1.0-SNAPSHOT", "1.0", true},
		{"1.0.0.redhat-1-snapshot", "1.0.0.redhat-1", true},
		{"1.0.SNAPSHOT", "1.0", true},
		{"1.0SNAPSHOT", "1.0SNAPSHOT", false},
		{"SNAPSHOT", "SNAPSHOT", false},
		{"1.0", "1.0", false},
	}
	for _, c := range cases {
		got, snap := StripSnapshot(c.Raw)
		if got != c.Expected || snap != c.Snapshot {
			t.Errorf("StripSnapshot(%q) = (%q, %v), expected (%q, %v)", c.Raw, got, snap, c.Expected, c.Snapshot)
		}
	}
	if !Parse("1.0-snapshot").IsSnapshot() {
		t.Error("expected lower case snapshot marker to be recognized")
	}
}

func TestSplitSerial(t *testing.T) {
	cases := []struct{ In, Text, Serial string }{
		{"redhat-00001", "redhat", "00001"},
		{"redhat", "redhat", ""},
		{"foo9", "foo", "9"},
		{"temporary-redhat.2", "temporary-redhat", "2"},
		{"42", "", "42"},
	}
	for _, c := range cases {
		text, serial := SplitSerial(c.In)
		if text != c.Text || serial != c.Serial {
			t.Errorf("SplitSerial(%q) = (%q, %q), expected (%q, %q)", c.In, text, serial, c.Text, c.Serial)
		}
	}
}
