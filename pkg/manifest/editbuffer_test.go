package manifest

import "testing"

// These fixtures mirror the before/after pairs used to validate the
// original tool's toml_edit-based dev-dependency removal: a plain root
// table, a table followed by more content, multiple target-conditional
// tables, and a document whose dev-dependencies table isn't the last one.
func TestRemoveDevDependencies(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name: "root table only",
			input: "[package]\n" +
				"name = \"foo\"\n" +
				"\n" +
				"[dependencies]\n" +
				"serde = \"1\"\n" +
				"\n" +
				"[dev-dependencies]\n" +
				"tempfile = \"3\"\n",
			want: "[package]\n" +
				"name = \"foo\"\n" +
				"\n" +
				"[dependencies]\n" +
				"serde = \"1\"\n",
		},
		{
			name: "table followed by more content",
			input: "[package]\n" +
				"name = \"foo\"\n" +
				"\n" +
				"[dev-dependencies]\n" +
				"tempfile = \"3\"\n" +
				"\n" +
				"[build-dependencies]\n" +
				"cc = \"1\"\n",
			want: "[package]\n" +
				"name = \"foo\"\n" +
				"\n" +
				"[build-dependencies]\n" +
				"cc = \"1\"\n",
		},
		{
			name: "target conditional tables",
			input: "[package]\n" +
				"name = \"foo\"\n" +
				"\n" +
				"[target.'cfg(unix)'.dependencies]\n" +
				"libc = \"0.2\"\n" +
				"\n" +
				"[target.'cfg(unix)'.dev-dependencies]\n" +
				"nix = \"0.26\"\n" +
				"\n" +
				"[target.'cfg(windows)'.dev-dependencies]\n" +
				"winapi = \"0.3\"\n",
			want: "[package]\n" +
				"name = \"foo\"\n" +
				"\n" +
				"[target.'cfg(unix)'.dependencies]\n" +
				"libc = \"0.2\"\n",
		},
		{
			name: "unrelated value containing the table name",
			input: "[package]\n" +
				"description = \"uses dev-dependencies internally\"\n" +
				"\n" +
				"[dev-dependencies]\n" +
				"tempfile = \"3\"\n",
			want: "[package]\n" +
				"description = \"uses dev-dependencies internally\"\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := NewEditBuffer([]byte(tt.input))
			b.RemoveDevDependencies()
			if got := string(b.Bytes()); got != tt.want {
				t.Errorf("RemoveDevDependencies() =\n%q\nwant\n%q", got, tt.want)
			}
		})
	}
}

func TestRemovePrivateMembers(t *testing.T) {
	input := "[workspace]\n" +
		"members = [\"crates/a\", \"crates/b\", \"crates/c\"]\n"
	want := "[workspace]\n" +
		"members = [\"crates/a\", \"crates/c\"]\n" +
		"exclude = [\"crates/b\"]\n"

	b := NewEditBuffer([]byte(input))
	if !b.RemovePrivateMembers([]string{"crates/b"}) {
		t.Fatal("RemovePrivateMembers() = false, want true")
	}
	if got := string(b.Bytes()); got != want {
		t.Errorf("RemovePrivateMembers() =\n%q\nwant\n%q", got, want)
	}
}

func TestRemovePrivateMembersAppendsToExistingExclude(t *testing.T) {
	input := "[workspace]\n" +
		"members = [\"crates/a\", \"crates/b\"]\n" +
		"exclude = [\"crates/old\"]\n"
	want := "[workspace]\n" +
		"members = [\"crates/a\"]\n" +
		"exclude = [\"crates/old\", \"crates/b\"]\n"

	b := NewEditBuffer([]byte(input))
	if !b.RemovePrivateMembers([]string{"crates/b"}) {
		t.Fatal("RemovePrivateMembers() = false, want true")
	}
	if got := string(b.Bytes()); got != want {
		t.Errorf("RemovePrivateMembers() =\n%q\nwant\n%q", got, want)
	}
}

func TestRemovePrivateMembersNoMatch(t *testing.T) {
	input := "[workspace]\nmembers = [\"crates/a\"]\n"
	b := NewEditBuffer([]byte(input))
	if b.RemovePrivateMembers([]string{"crates/z"}) {
		t.Fatal("RemovePrivateMembers() = true, want false")
	}
}

func TestParseActivator(t *testing.T) {
	tests := []struct {
		tok     string
		want    Activator
		wantErr bool
	}{
		{tok: "foo", want: Activator{Kind: ActivatorFeature, Feature: "foo"}},
		{tok: "dep:serde", want: Activator{Kind: ActivatorDep, Dep: "serde"}},
		{tok: "serde/derive", want: Activator{Kind: ActivatorDepFeature, Dep: "serde", DepFeature: "derive"}},
		{tok: "serde?/derive", want: Activator{Kind: ActivatorDepFeature, Dep: "serde", DepFeature: "derive", Weak: true}},
		{tok: "dep:", wantErr: true},
		{tok: "", wantErr: true},
		{tok: "/derive", wantErr: true},
	}
	for _, tt := range tests {
		got, err := ParseActivator(tt.tok)
		if tt.wantErr {
			if err == nil {
				t.Errorf("ParseActivator(%q) = %+v, want error", tt.tok, got)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseActivator(%q) unexpected error: %v", tt.tok, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseActivator(%q) = %+v, want %+v", tt.tok, got, tt.want)
		}
	}
}
