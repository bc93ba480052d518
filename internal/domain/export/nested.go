package export

import "time"

// NestedPayload is the discipline -> stage -> group -> round -> match export
// shape. Participants are referenced by entry id.
type NestedPayload struct {
	ID          string             `json:"id"`
	Name        string             `json:"name"`
	CreatedAt   time.Time          `json:"createdAt"`
	UpdatedAt   time.Time          `json:"updatedAt"`
	Mode        string             `json:"mode"`
	Sport       string             `json:"sport"`
	Entries     []NestedEntry      `json:"entries"`
	Disciplines []NestedDiscipline `json:"disciplines"`
}

type NestedParticipant struct {
	ID              string `json:"id"`
	Name            string `json:"name"`
	Club            string `json:"club,omitempty"`
	License         string `json:"license,omitempty"`
	Country         string `json:"country,omitempty"`
	NationalID      string `json:"nationalId,omitempty"`
	InternationalID string `json:"internationalId,omitempty"`
	Guest           bool   `json:"guest,omitempty"`
	External        bool   `json:"external,omitempty"`
}

// NestedEntry is either a single player or a team carrying Players.
type NestedEntry struct {
	NestedParticipant
	Players []NestedParticipant `json:"players,omitempty"`
}

type NestedDiscipline struct {
	ID     string        `json:"id"`
	Name   string        `json:"name"`
	Stages []NestedStage `json:"stages"`
}

type NestedStage struct {
	ID     string        `json:"id"`
	Name   string        `json:"name"`
	Groups []NestedGroup `json:"groups"`
}

type NestedGroup struct {
	ID        string           `json:"id"`
	Name      string           `json:"name"`
	Rounds    []NestedRound    `json:"rounds"`
	Standings []NestedStanding `json:"standings"`
}

type NestedRound struct {
	ID      string        `json:"id"`
	Name    string        `json:"name"`
	Matches []NestedMatch `json:"matches"`
}

type NestedMatch struct {
	ID        string     `json:"id"`
	State     string     `json:"state"`
	Result    []any      `json:"result"`
	Entries   [][]string `json:"entries"`
	StartTime *int64     `json:"startTime,omitempty"`
	EndTime   *int64     `json:"endTime,omitempty"`
}

type NestedStanding struct {
	EntryID        string  `json:"entryId"`
	Rank           *int    `json:"rank,omitempty"`
	Result         *int    `json:"result,omitempty"`
	Points         int     `json:"points"`
	Matches        int     `json:"matches"`
	Wins           int     `json:"wins"`
	Losses         int     `json:"losses"`
	Draws          int     `json:"draws"`
	GoalsFor       int     `json:"goalsFor"`
	GoalsAgainst   int     `json:"goalsAgainst"`
	GoalDifference int     `json:"goalDifference"`
	PointsPerGame  float64 `json:"pointsPerGame"`
	BH1            float64 `json:"bh1"`
	BH2            float64 `json:"bh2"`
	Removed        bool    `json:"removed,omitempty"`
	Deactivated    bool    `json:"deactivated,omitempty"`
}

func (p NestedParticipant) toParticipant() Participant {
	return Participant{
		ID:              p.ID,
		Name:            p.Name,
		Club:            p.Club,
		License:         p.License,
		Country:         p.Country,
		NationalID:      p.NationalID,
		InternationalID: p.InternationalID,
		Guest:           p.Guest,
		External:        p.External,
	}
}

// participants flattens an entry into the players it stands for.
func (e NestedEntry) participants() []Participant {
	if len(e.Players) == 0 {
		if e.Name == "" {
			return nil
		}
		return []Participant{e.NestedParticipant.toParticipant()}
	}
	out := make([]Participant, 0, len(e.Players))
	for _, p := range e.Players {
		if p.Name != "" {
			out = append(out, p.toParticipant())
		}
	}
	return out
}
