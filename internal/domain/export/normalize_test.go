package export

import (
	"testing"

	"github.com/stretchr/testify/require"
)

const nestedFixture = `{
  "id": "t-100",
  "name": "Monday DYP",
  "createdAt": "2025-03-03T18:00:00Z",
  "updatedAt": "2025-03-03T22:00:00Z",
  "mode": "swiss",
  "sport": "foosball",
  "entries": [
    {"id": "e1", "name": "Anna / Ben", "players": [{"id": "p1", "name": "Anna", "club": "KC Mitte"}, {"id": "p2", "name": "Ben"}]},
    {"id": "e2", "name": "Carl / Dora", "players": [{"id": "p3", "name": "Carl"}, {"id": "p4", "name": "Dora"}]},
    {"id": "e3", "name": "Eva / Finn", "players": [{"id": "p5", "name": "Eva"}, {"id": "p6", "name": "Finn"}]},
    {"id": "e4", "name": "Gus / Hans", "players": [{"id": "p7", "name": "Gus"}, {"id": "p8", "name": "Hans"}]}
  ],
  "disciplines": [{
    "id": "d1",
    "name": "Open Doubles",
    "stages": [
      {"id": "s1", "name": "Qualifying", "groups": [{
        "id": "g1",
        "name": "Swiss System",
        "rounds": [{"id": "r1", "name": "Round 1", "matches": [
          {"id": "m1", "state": "played", "result": [7, 5], "entries": [["e1"], ["e2"]], "startTime": 1741024800000},
          {"id": "m2", "state": "played", "result": [3, 7], "entries": [["e3"], ["e4"]], "startTime": 1741024900000},
          {"id": "m3", "state": "scheduled", "result": null, "entries": [["e1"], ["e3"]]},
          {"id": "m9", "state": "played", "result": [7, 0], "entries": [["e1"], ["missing"]]}
        ]}],
        "standings": [
          {"entryId": "e1", "rank": 1, "points": 3, "matches": 1, "wins": 1, "goalsFor": 7, "goalsAgainst": 5, "goalDifference": 2},
          {"entryId": "e4", "rank": 2, "points": 3, "matches": 1, "wins": 1, "goalsFor": 7, "goalsAgainst": 3, "goalDifference": 4},
          {"entryId": "e2", "rank": 3, "points": 0, "matches": 1, "losses": 1, "goalsFor": 5, "goalsAgainst": 7, "goalDifference": -2},
          {"entryId": "e3", "result": 4, "points": 0, "matches": 1, "losses": 1, "goalsFor": 3, "goalsAgainst": 7, "goalDifference": -4, "removed": true}
        ]
      }]},
      {"id": "s2", "name": "Finals", "groups": [{
        "id": "g2",
        "name": "Bracket",
        "rounds": [
          {"id": "r2", "name": "Final", "matches": [
            {"id": "m4", "state": "played", "result": [7, 6], "entries": [["e1"], ["e4"]]}
          ]},
          {"id": "r3", "name": "Third Place", "matches": [
            {"id": "m5", "state": "played", "result": [4, 7], "entries": [["e2"], ["e3"]]}
          ]}
        ],
        "standings": [
          {"entryId": "e1", "rank": 1},
          {"entryId": "e4", "rank": 2},
          {"entryId": "e3", "rank": 3},
          {"entryId": "e2", "rank": 4}
        ]
      }]}
    ]
  }]
}`

const canonicalFixture = `{
  "_id": "t-100",
  "name": "Monday DYP",
  "createdAt": "2025-03-03T18:00:00Z",
  "updatedAt": "2025-03-03T22:00:00Z",
  "mode": "swiss",
  "sport": "foosball",
  "qualifying": [{
    "_id": "g1",
    "name": "Swiss System",
    "rounds": [{"_id": "r1", "name": "Round 1", "matches": [
      {"_id": "m1", "team1": {"players": [{"name": "Anna"}, {"name": "Ben"}]}, "team2": {"players": [{"name": "Carl"}, {"name": "Dora"}]}, "result": [7, 5], "valid": true},
      {"_id": "m2", "team1": {"players": [{"name": "Eva"}, {"name": "Finn"}]}, "team2": {"players": [{"name": "Gus"}, {"name": "Hans"}]}, "result": [3, 7], "valid": true}
    ]}],
    "standings": [
      {"name": "Anna / Ben", "place": 1, "points": 3, "matches": 1, "won": 1, "goals": 7, "goals_in": 5, "goal_diff": 2},
      {"name": "Gus / Hans", "place": 2, "points": 3, "matches": 1, "won": 1, "goals": 7, "goals_in": 3, "goal_diff": 4},
      {"name": "Carl / Dora", "place": 3, "points": 0, "matches": 1, "lost": 1, "goals": 5, "goals_in": 7, "goal_diff": -2},
      {"name": "Eva / Finn", "place": 4, "points": 0, "matches": 1, "lost": 1, "goals": 3, "goals_in": 7, "goal_diff": -4, "removed": true}
    ]
  }],
  "eliminations": [{
    "_id": "g2",
    "name": "Bracket",
    "levels": [{"_id": "r2", "matches": [
      {"_id": "m4", "team1": {"players": [{"name": "Anna"}, {"name": "Ben"}]}, "team2": {"players": [{"name": "Gus"}, {"name": "Hans"}]}, "result": [7, 6]}
    ]}],
    "third": {"_id": "r3", "matches": [
      {"_id": "m5", "team1": {"players": [{"name": "Carl"}, {"name": "Dora"}]}, "team2": {"players": [{"name": "Eva"}, {"name": "Finn"}]}, "result": [4, 7]}
    ]},
    "standings": [
      {"name": "Anna / Ben", "place": 1},
      {"name": "Gus / Hans", "place": 2},
      {"name": "Eva / Finn", "place": 3},
      {"name": "Carl / Dora", "place": 4}
    ]
  }]
}`

type matchSummary struct {
	ID          string
	RoundName   string
	Elimination bool
	Team1       []string
	Team2       []string
	Score1      int
	Score2      int
}

type standingSummary struct {
	Name    string
	Place   int
	Points  int
	Removed bool
}

func summarize(t *testing.T, p Payload) ([]matchSummary, []standingSummary, []standingSummary) {
	t.Helper()

	var matches []matchSummary
	for _, ref := range p.Matches() {
		a, b, ok := ref.Match.Scores()
		require.True(t, ok, "match %s has no score", ref.Match.ID)
		matches = append(matches, matchSummary{
			ID:          ref.Match.ID,
			RoundName:   ref.RoundName,
			Elimination: ref.Elimination,
			Team1:       ref.Match.Team1.PlayerNames(),
			Team2:       ref.Match.Team2.PlayerNames(),
			Score1:      a,
			Score2:      b,
		})
	}

	collect := func(in []Standing) []standingSummary {
		out := make([]standingSummary, 0, len(in))
		for _, s := range in {
			out = append(out, standingSummary{Name: s.Name, Place: s.Place, Points: s.Points, Removed: s.Removed})
		}
		return out
	}

	var qualifying, elimination []standingSummary
	for _, q := range p.Qualifying {
		qualifying = append(qualifying, collect(q.Standings)...)
	}
	for _, e := range p.Eliminations {
		elimination = append(elimination, collect(e.Standings)...)
	}
	return matches, qualifying, elimination
}

func decodeNormalized(t *testing.T, raw string) Payload {
	t.Helper()
	doc, err := Decode([]byte(raw))
	require.NoError(t, err)
	return Normalize(doc)
}

func TestNormalize_NestedMatchesCanonical(t *testing.T) {
	t.Parallel()

	nested := decodeNormalized(t, nestedFixture)
	canonical := decodeNormalized(t, canonicalFixture)

	require.Equal(t, VersionNested, nested.Version)
	require.Equal(t, VersionCanonical, canonical.Version)

	nestedMatches, nestedQual, nestedElim := summarize(t, nested)
	canonicalMatches, canonicalQual, canonicalElim := summarize(t, canonical)

	require.Equal(t, canonicalMatches, nestedMatches)
	require.Equal(t, canonicalQual, nestedQual)
	require.Equal(t, canonicalElim, nestedElim)
	require.Equal(t, canonical.ID, nested.ID)
	require.Equal(t, canonical.Name, nested.Name)
	require.True(t, canonical.CreatedAt.Equal(nested.CreatedAt))
	require.Equal(t, TypeDoubles, nested.Type)
}

func TestNormalize_NestedDropsUnplayedAndUnresolvedMatches(t *testing.T) {
	t.Parallel()

	p := decodeNormalized(t, nestedFixture)
	ids := make([]string, 0)
	for _, ref := range p.Matches() {
		ids = append(ids, ref.Match.ID)
	}
	require.Equal(t, []string{"m1", "m2", "m4", "m5"}, ids)
}

func TestNormalize_NestedKeepsMetadataAndTimes(t *testing.T) {
	t.Parallel()

	p := decodeNormalized(t, nestedFixture)
	m1 := p.Qualifying[0].Rounds[0].Matches[0]
	require.NotNil(t, m1.TimeStart)
	require.Equal(t, int64(1741024800000), *m1.TimeStart)
	require.Equal(t, "KC Mitte", m1.Team1.Players[0].Club)
	require.Equal(t, "Anna / Ben", m1.Team1.Name)

	third := p.Eliminations[0].Third
	require.NotNil(t, third)
	require.Equal(t, "Third Place", third.Name)
}

func TestNormalize_BackfillsLevelNames(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		levels []Level
		want   []string
	}{
		{
			name:   "two levels",
			levels: []Level{{}, {}},
			want:   []string{LevelQuarterfinal, LevelSemifinal},
		},
		{
			name:   "four levels",
			levels: []Level{{}, {}, {}, {}},
			want:   []string{LevelQuarterfinal, LevelSemifinal, LevelFinal, LevelThirdPlace},
		},
		{
			name:   "past the fallback list",
			levels: []Level{{}, {Name: "Last 16"}, {}, {}, {}, {}},
			want:   []string{LevelQuarterfinal, "Last 16", LevelFinal, LevelThirdPlace, "Round 5", "Round 6"},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			doc := Document{Shape: ShapeCanonical, Canonical: Payload{
				ID:           "t-1",
				Name:         "Cup",
				Eliminations: []Elimination{{Levels: tc.levels, Third: &Level{}}},
			}}

			p := Normalize(doc)
			var names []string
			for _, l := range p.Eliminations[0].Levels {
				names = append(names, l.Name)
			}
			require.Equal(t, tc.want, names)
			require.Equal(t, LevelThirdPlace, p.Eliminations[0].Third.Name)
		})
	}
}

func TestNormalize_UnknownShapeIsNoOp(t *testing.T) {
	t.Parallel()

	doc, err := Decode([]byte(`{"_id": "x", "name": "Something else", "rounds": 3}`))
	require.NoError(t, err)
	require.Equal(t, ShapeUnknown, doc.Shape)

	p := Normalize(doc)
	require.Equal(t, "x", p.ID)
	require.Equal(t, "Something else", p.Name)
	require.Empty(t, p.Qualifying)
	require.Empty(t, p.Eliminations)
	require.Zero(t, p.Version)
}

func TestDecode_RejectsMalformedJSON(t *testing.T) {
	t.Parallel()

	_, err := Decode([]byte(`{"_id": `))
	require.Error(t, err)
}

func TestDetectType_Singles(t *testing.T) {
	t.Parallel()

	p := Payload{Qualifying: []Qualifying{{Rounds: []Round{{Matches: []Match{{
		ID:     "m1",
		Team1:  &Team{Players: []Participant{{Name: "Anna"}}},
		Team2:  &Team{Players: []Participant{{Name: "Ben"}}},
		Result: []any{float64(7), float64(3)},
	}}}}}}}
	require.Equal(t, TypeSingles, DetectType(p))
	require.Equal(t, TypeDoubles, DetectType(Payload{}))
}
