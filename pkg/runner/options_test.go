package runner

import (
	"testing"

	cmerrors "github.com/crateforge/cargo-matrix/pkg/errors"
)

func TestValidateDepthRequiresFeaturePowerset(t *testing.T) {
	o := &Options{Depth: 2}
	err := o.Validate()
	if err == nil || cmerrors.GetCode(err) != cmerrors.CodeConfig {
		t.Fatalf("Validate() = %v, want CodeConfig", err)
	}
}

func TestValidateEachFeatureConflictsWithPowerset(t *testing.T) {
	o := &Options{EachFeature: true, FeaturePowerset: true}
	if err := o.Validate(); err == nil {
		t.Error("Validate() = nil, want a conflict error")
	}
}

func TestValidateNoDevDepsConflictsWithRemoveDevDeps(t *testing.T) {
	o := &Options{NoDevDeps: true, RemoveDevDeps: true}
	if err := o.Validate(); err == nil {
		t.Error("Validate() = nil, want a conflict error")
	}
}

func TestValidatePackageConflictsWithWorkspace(t *testing.T) {
	o := &Options{Packages: []string{"a"}, Workspace: true}
	if err := o.Validate(); err == nil {
		t.Error("Validate() = nil, want a conflict error")
	}
}

func TestValidateNoPrivateRequiresWorkspace(t *testing.T) {
	o := &Options{NoPrivate: true}
	if err := o.Validate(); err == nil {
		t.Error("Validate() = nil, want NoPrivate to require Workspace")
	}
}

func TestValidateAcceptsWellFormedOptions(t *testing.T) {
	o := &Options{FeaturePowerset: true, Depth: 2, Workspace: true}
	if err := o.Validate(); err != nil {
		t.Errorf("Validate() = %v, want nil", err)
	}
}

func TestParsePartition(t *testing.T) {
	tests := []struct {
		in      string
		wantM   int
		wantN   int
		wantErr bool
	}{
		{"1/3", 1, 3, false},
		{"3/3", 3, 3, false},
		{"", 0, 0, false},
		{"0/3", 0, 0, true},
		{"4/3", 0, 0, true},
		{"a/3", 0, 0, true},
		{"1", 0, 0, true},
	}
	for _, tt := range tests {
		m, n, err := ParsePartition(tt.in)
		if tt.wantErr {
			if err == nil {
				t.Errorf("ParsePartition(%q) = nil error, want error", tt.in)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParsePartition(%q) error: %v", tt.in, err)
			continue
		}
		if m != tt.wantM || n != tt.wantN {
			t.Errorf("ParsePartition(%q) = (%d, %d), want (%d, %d)", tt.in, m, n, tt.wantM, tt.wantN)
		}
	}
}

func TestEnumeratorOptionsProjectsGroups(t *testing.T) {
	o := &Options{GroupFeatures: [][]string{{"a", "b"}}}
	eo := o.EnumeratorOptions()
	if len(eo.Groups) != 1 {
		t.Fatalf("Groups = %v, want one entry", eo.Groups)
	}
	for _, members := range eo.Groups {
		if len(members) != 2 {
			t.Errorf("group members = %v, want 2", members)
		}
	}
}

func TestEnumeratorOptionsOptionalDepsUnsetStaysNil(t *testing.T) {
	o := &Options{}
	eo := o.EnumeratorOptions()
	if eo.OptionalDeps != nil {
		t.Errorf("OptionalDeps = %v, want nil when --optional-deps was not passed", eo.OptionalDeps)
	}
}

func TestEnumeratorOptionsOptionalDepsEmptyMeansAll(t *testing.T) {
	o := &Options{OptionalDepsSet: true}
	eo := o.EnumeratorOptions()
	if eo.OptionalDeps == nil || len(eo.OptionalDeps) != 0 {
		t.Errorf("OptionalDeps = %v, want non-nil empty slice", eo.OptionalDeps)
	}
}
