package manifest

import "testing"

const sampleManifest = `
[package]
name = "demo"
publish = false
rust-version = "1.70"

[dependencies]
serde = { version = "1", optional = true }
logging = { version = "1", optional = true, package = "log" }
plain = "1.0"

[dev-dependencies]
tempfile = "3"

[target.'cfg(unix)'.dev-dependencies]
nix = "0.26"

[features]
default = ["std"]
std = []
derive = ["dep:serde", "logging?/kv"]
full = ["derive", "serde/derive"]
`

func TestParseBytes(t *testing.T) {
	pkg, ws, err := ParseBytes([]byte(sampleManifest), "Cargo.toml")
	if err != nil {
		t.Fatalf("ParseBytes() error: %v", err)
	}
	if ws != nil {
		t.Fatalf("expected no [workspace] table, got %+v", ws)
	}
	if pkg.Name != "demo" {
		t.Errorf("Name = %q, want demo", pkg.Name)
	}
	if pkg.Publish {
		t.Errorf("Publish = true, want false")
	}
	if pkg.RustVersion != "1.70" {
		t.Errorf("RustVersion = %q", pkg.RustVersion)
	}
	if !pkg.Namespaced {
		t.Errorf("Namespaced = false, want true (feature derive uses dep:serde)")
	}
	if len(pkg.TargetDevDeps) != 1 || pkg.TargetDevDeps[0].Cfg != "cfg(unix)" {
		t.Errorf("TargetDevDeps = %+v", pkg.TargetDevDeps)
	}

	logging, ok := pkg.Dependencies["logging"]
	if !ok || !logging.Optional || logging.PackageName != "log" {
		t.Errorf("Dependencies[logging] = %+v", logging)
	}

	opts := pkg.OptionalDeps()
	if len(opts) != 2 || opts[0] != "logging" || opts[1] != "serde" {
		t.Errorf("OptionalDeps() = %v, want [logging serde]", opts)
	}

	full := pkg.Features["full"]
	if len(full) != 2 || full[0].Kind != ActivatorFeature || full[1].Kind != ActivatorDepFeature {
		t.Errorf("Features[full] = %+v", full)
	}
}

func TestParseBytesWorkspace(t *testing.T) {
	const doc = `
[workspace]
members = ["a", "b"]
exclude = ["c"]
`
	_, ws, err := ParseBytes([]byte(doc), "Cargo.toml")
	if err != nil {
		t.Fatalf("ParseBytes() error: %v", err)
	}
	if ws == nil || len(ws.Members) != 2 || len(ws.Exclude) != 1 {
		t.Fatalf("Workspace = %+v", ws)
	}
}
