package version

import (
	"testing"

	"git.home.luguber.info/inful/pkgbuilder/internal/recipe"
)

func TestFromTagStripsPrefixAndNormalizes(t *testing.T) {
	cases := []struct {
		tag    string
		prefix string
		want   string
	}{
		{"v1.2.0", "v", "1.2.0"},
		{"v1.2.0-rc1", "v", "1.2.0.rc1"},
		{"1.0", "v", "1.0"},
		{"release-2.4", "release-", "2.4"},
		{"v0.3.1-beta-2", "v", "0.3.1.beta.2"},
	}
	for _, tc := range cases {
		got, err := FromTag(tc.tag, tc.prefix)
		if err != nil {
			t.Errorf("FromTag(%q, %q) failed: %v", tc.tag, tc.prefix, err)
			continue
		}
		if got != tc.want {
			t.Errorf("FromTag(%q, %q) = %q, want %q", tc.tag, tc.prefix, got, tc.want)
		}
	}
}

func TestFromTagRejectsEmptyResult(t *testing.T) {
	if _, err := FromTag("v", "v"); err == nil {
		t.Error("expected error for tag that normalizes to empty string")
	}
}

func TestFallbackFormat(t *testing.T) {
	if got := Fallback(142, "8f3a91c"); got != "r142.8f3a91c" {
		t.Errorf("Fallback = %q, want r142.8f3a91c", got)
	}
}

func TestDeriveAutoTaggedHead(t *testing.T) {
	desc := Description{Tag: "v1.2.0", Distance: 0, ShortHash: "8f3a91c", CommitCount: 200}
	got, err := Derive(desc, recipe.VersionConfig{Policy: recipe.PolicyAuto})
	if err != nil {
		t.Fatalf("Derive failed: %v", err)
	}
	if got != "1.2.0" {
		t.Errorf("Derive = %q, want 1.2.0", got)
	}
}

func TestDeriveAutoAheadOfTag(t *testing.T) {
	desc := Description{Tag: "v1.2.0", Distance: 5, ShortHash: "8f3a91c", CommitCount: 205}
	got, err := Derive(desc, recipe.VersionConfig{Policy: recipe.PolicyAuto})
	if err != nil {
		t.Fatalf("Derive failed: %v", err)
	}
	if got != "1.2.0.r5.8f3a91c" {
		t.Errorf("Derive = %q, want 1.2.0.r5.8f3a91c", got)
	}
}

func TestDeriveAutoUntagged(t *testing.T) {
	desc := Description{Distance: 0, ShortHash: "8f3a91c", CommitCount: 142}
	got, err := Derive(desc, recipe.VersionConfig{Policy: recipe.PolicyAuto})
	if err != nil {
		t.Fatalf("Derive failed: %v", err)
	}
	if got != "r142.8f3a91c" {
		t.Errorf("Derive = %q, want r142.8f3a91c", got)
	}
}

func TestDeriveTagPolicyRequiresTaggedHead(t *testing.T) {
	desc := Description{Tag: "v1.2.0", Distance: 3, ShortHash: "8f3a91c"}
	if _, err := Derive(desc, recipe.VersionConfig{Policy: recipe.PolicyTag}); err == nil {
		t.Error("expected error for tag policy with untagged HEAD")
	}

	desc.Distance = 0
	got, err := Derive(desc, recipe.VersionConfig{Policy: recipe.PolicyTag})
	if err != nil {
		t.Fatalf("Derive failed: %v", err)
	}
	if got != "1.2.0" {
		t.Errorf("Derive = %q, want 1.2.0", got)
	}
}

func TestDeriveTagPolicyNoTag(t *testing.T) {
	desc := Description{ShortHash: "8f3a91c", CommitCount: 7}
	if _, err := Derive(desc, recipe.VersionConfig{Policy: recipe.PolicyTag}); err == nil {
		t.Error("expected error for tag policy without any tag")
	}
}

func TestDerivePinnedOverride(t *testing.T) {
	desc := Description{ShortHash: "8f3a91c"}
	got, err := Derive(desc, recipe.VersionConfig{Policy: recipe.PolicyTag, Pinned: "2.0.1"})
	if err != nil {
		t.Fatalf("Derive failed: %v", err)
	}
	if got != "2.0.1" {
		t.Errorf("Derive = %q, want pinned 2.0.1", got)
	}
}

func TestDeriveUnknownPolicy(t *testing.T) {
	if _, err := Derive(Description{}, recipe.VersionConfig{Policy: "semver"}); err == nil {
		t.Error("expected error for unknown policy")
	}
}

func TestDeriveCustomPrefix(t *testing.T) {
	desc := Description{Tag: "fren-1.4", Distance: 0, ShortHash: "abc1234"}
	got, err := Derive(desc, recipe.VersionConfig{Policy: recipe.PolicyAuto, Prefix: "fren-"})
	if err != nil {
		t.Fatalf("Derive failed: %v", err)
	}
	if got != "1.4" {
		t.Errorf("Derive = %q, want 1.4", got)
	}
}
