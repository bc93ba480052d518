package rating

import (
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/riskibarqy/kicker-league/internal/domain/alias"
	"github.com/riskibarqy/kicker-league/internal/domain/player"
)

var base = time.Date(2025, 2, 1, 19, 0, 0, 0, time.UTC)

func at(minutes int) time.Time {
	return base.Add(time.Duration(minutes) * time.Minute)
}

func history() []MatchRecord {
	return []MatchRecord{
		{ExternalID: "m1", Timestamp: at(0), Team1: []string{"Anna", "Ben"}, Team2: []string{"Carl", "Dora"}, Score1: 7, Score2: 4},
		{ExternalID: "m2", Timestamp: at(0), Team1: []string{"Eva", "Finn"}, Team2: []string{"Gus", "Hans"}, Score1: 2, Score2: 7},
		{ExternalID: "m3", Timestamp: at(30), Team1: []string{"Anna", "Gus"}, Team2: []string{"Ben", "Eva"}, Score1: 5, Score2: 5},
		{ExternalID: "m4", Timestamp: at(60), Team1: []string{"Carl", "Hans"}, Team2: []string{"Dora", "Finn"}, Score1: 7, Score2: 6},
	}
}

func TestComputeIsDeterministic(t *testing.T) {
	t.Parallel()

	engine := NewEngine(DefaultConfig())
	first := engine.Compute(history(), nil)
	second := engine.Compute(history(), nil)

	if !reflect.DeepEqual(first.Ratings, second.Ratings) {
		t.Fatalf("ratings differ between runs")
	}
	if !reflect.DeepEqual(first.History, second.History) {
		t.Fatalf("histories differ between runs")
	}
}

func TestComputeDisjointReorderKeepsFinalRatings(t *testing.T) {
	t.Parallel()

	engine := NewEngine(DefaultConfig())
	original := engine.Compute(history(), nil)

	swapped := history()
	swapped[0], swapped[1] = swapped[1], swapped[0]
	reordered := engine.Compute(swapped, nil)

	for name, want := range original.Ratings {
		got := reordered.Ratings[name]
		if got.Mu != want.Mu || got.Sigma != want.Sigma {
			t.Fatalf("%s changed after reordering disjoint matches: %+v vs %+v", name, got, want)
		}
	}
}

func TestComputeHistoryLength(t *testing.T) {
	t.Parallel()

	res := NewEngine(DefaultConfig()).Compute(history(), nil)
	appearances := map[string]int{}
	for _, m := range history() {
		for _, n := range append(append([]string{}, m.Team1...), m.Team2...) {
			appearances[n]++
		}
	}
	for name, n := range appearances {
		if got := len(res.History[name]); got != n+1 {
			t.Fatalf("%s: history length %d, want %d", name, got, n+1)
		}
		if res.History[name][0].MatchIndex != 0 || res.History[name][0].Context != nil {
			t.Fatalf("%s: first entry must be the prior", name)
		}
		if res.Ratings[name].Matches != n {
			t.Fatalf("%s: expected %d matches, got %d", name, n, res.Ratings[name].Matches)
		}
	}
	if res.Matches != 4 {
		t.Fatalf("expected 4 rated matches, got %d", res.Matches)
	}
}

func TestComputeSortsChronologically(t *testing.T) {
	t.Parallel()

	matches := []MatchRecord{
		{ExternalID: "late", Timestamp: at(90), Team1: []string{"Anna"}, Team2: []string{"Ben"}, Score1: 0, Score2: 7},
		{ExternalID: "early", Timestamp: at(10), Team1: []string{"Anna"}, Team2: []string{"Ben"}, Score1: 7, Score2: 0},
	}
	res := NewEngine(DefaultConfig()).Compute(matches, nil)

	anna := res.History["Anna"]
	if anna[1].Context.MatchExternalID != "early" || anna[2].Context.MatchExternalID != "late" {
		t.Fatalf("unexpected order: %s, %s", anna[1].Context.MatchExternalID, anna[2].Context.MatchExternalID)
	}
	if !anna[1].Context.Won || anna[2].Context.Won {
		t.Fatalf("unexpected win flags")
	}
	if !anna[0].Timestamp.Equal(at(10)) {
		t.Fatalf("prior should carry the first match time, got %v", anna[0].Timestamp)
	}
}

func TestComputeResolvesAliasesAndDropsBrokenMatches(t *testing.T) {
	t.Parallel()

	resolver := alias.NewResolver([]player.Alias{{Alias: "Jonny", CanonicalName: "Jonathan"}})
	matches := []MatchRecord{
		{ExternalID: "m1", Timestamp: at(0), Team1: []string{"Jonny"}, Team2: []string{"Ben"}, Score1: 7, Score2: 1},
		{ExternalID: "m2", Timestamp: at(5), Team1: []string{"Jonathan"}, Team2: []string{"Ben"}, Score1: 7, Score2: 1},
		{ExternalID: "bye", Timestamp: at(6), Team1: []string{"Ben"}, Team2: []string{" "}, Score1: 7, Score2: 0},
		{ExternalID: "self", Timestamp: at(7), Team1: []string{"Jonny"}, Team2: []string{"Jonathan"}, Score1: 7, Score2: 0},
	}
	res := NewEngine(DefaultConfig()).Compute(matches, resolver)

	if _, ok := res.Ratings["Jonny"]; ok {
		t.Fatalf("alias must not get its own rating")
	}
	if got := len(res.History["Jonathan"]); got != 3 {
		t.Fatalf("expected prior plus two matches, got %d", got)
	}
	if res.Matches != 2 {
		t.Fatalf("expected broken matches to be dropped, got %d", res.Matches)
	}
}

func TestComputeIsolatesFailedUpdates(t *testing.T) {
	t.Parallel()

	engine := NewEngine(Config{Mu: 25})
	res := engine.Compute([]MatchRecord{
		{ExternalID: "m1", Timestamp: at(0), Team1: []string{"Anna"}, Team2: []string{"Ben"}, Score1: 7, Score2: 3},
		{ExternalID: "m2", Timestamp: at(1), Team1: []string{"Anna"}, Team2: []string{"Ben"}, Score1: 3, Score2: 7},
	}, nil)

	if len(res.Warnings) != 2 {
		t.Fatalf("expected two warnings, got %d", len(res.Warnings))
	}
	if res.Warnings[0].MatchIndex != 1 || !errors.Is(res.Warnings[0], ErrNumerical) {
		t.Fatalf("unexpected warning: %+v", res.Warnings[0])
	}
	anna := res.History["Anna"]
	if len(anna) != 3 {
		t.Fatalf("skipped matches must still produce history entries, got %d", len(anna))
	}
	if !anna[1].Context.Skipped || anna[1].Mu != 25 {
		t.Fatalf("skipped entry must carry the previous rating: %+v", anna[1])
	}
}
