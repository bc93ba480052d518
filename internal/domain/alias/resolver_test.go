package alias

import (
	"reflect"
	"testing"

	"github.com/riskibarqy/kicker-league/internal/domain/player"
)

func TestResolver(t *testing.T) {
	t.Parallel()

	r := NewResolver([]player.Alias{
		{Alias: "Jonny", CanonicalName: "Jonathan Weber"},
		{Alias: "Müller, T.", CanonicalName: "Thomas Müller"},
		{Alias: "JONNY", CanonicalName: "Someone Else"},
		{Alias: "", CanonicalName: "ignored"},
	})

	cases := map[string]string{
		"Jonny":          "Jonathan Weber",
		"JONNY":          "Someone Else",
		"jonny":          "Jonathan Weber",
		"  Jonny  ":      "Jonathan Weber",
		"MÜLLER, t.":     "Thomas Müller",
		"Unknown Player": "Unknown Player",
		"":               "",
	}
	for in, want := range cases {
		if got := r.Resolve(in); got != want {
			t.Fatalf("Resolve(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestResolveAllDeduplicates(t *testing.T) {
	t.Parallel()

	r := NewResolver([]player.Alias{{Alias: "Jonny", CanonicalName: "Jonathan Weber"}})
	got := r.ResolveAll([]string{"Jonathan Weber", "Jonny", " ", "Anna"})
	want := []string{"Jonathan Weber", "Anna"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("unexpected names: %v", got)
	}
}

func TestNilResolverIsIdentity(t *testing.T) {
	t.Parallel()

	var r *Resolver
	if got := r.Resolve(" Anna "); got != "Anna" {
		t.Fatalf("unexpected name: %q", got)
	}
	if r.Len() != 0 {
		t.Fatalf("nil resolver must be empty")
	}
}
