package tournament

import (
	"errors"
	"time"
)

// Every persisted tournament is typed doubles regardless of what the
// export looked like.
const TypeDoubles = "doubles"

var ErrDuplicateExternalID = errors.New("tournament external id already exists")

type StandingType string

const (
	StandingQualifying  StandingType = "qualifying"
	StandingElimination StandingType = "elimination"
)

type Tournament struct {
	ID                int64
	ExternalID        string
	MergedExternalIDs []string
	Name              string
	Mode              string
	Sport             string
	Type              string
	CreatedAt         time.Time
	SourceUpdatedAt   time.Time
	SeasonFinal       bool
	SchemaVersion     int
	RawPayload        []byte
	SyncedAt          time.Time
}

// Claims reports whether externalID identifies this row, directly or
// through an export merged into it.
func (t Tournament) Claims(externalID string) bool {
	if t.ExternalID == externalID {
		return true
	}
	for _, id := range t.MergedExternalIDs {
		if id == externalID {
			return true
		}
	}
	return false
}

type Match struct {
	ID           int64
	ExternalID   string
	TournamentID int64
	SectionID    string
	RoundID      string
	RoundName    string
	Elimination  bool
	Score1       int
	Score2       int
	StartedAt    *time.Time
	EndedAt      *time.Time
	Valid        bool
	Skipped      bool
}

type Team struct {
	ID         int64
	MatchID    int64
	TeamNumber int
	Name       string
	Score      int
	Won        bool
}

type Standing struct {
	ID           int64
	TournamentID int64
	PlayerID     int64
	Type         StandingType
	Place        int
	Points       int
	Matches      int
	Won          int
	Lost         int
	Draw         int
	GoalsFor     int
	GoalsAgainst int
	SetsWon      int
	SetsLost     int
	BallsWon     int
	BallsLost    int
	Deactivated  bool
	Removed      bool
}

type StandingKey struct {
	PlayerID int64
	Type     StandingType
}

func (s Standing) Key() StandingKey {
	return StandingKey{PlayerID: s.PlayerID, Type: s.Type}
}

// Detail is the read model consumed by ranking and rating.
type Detail struct {
	Tournament Tournament
	Matches    []MatchDetail
	Standings  []StandingDetail
}

type MatchDetail struct {
	Match Match
	Team1 TeamDetail
	Team2 TeamDetail
}

type TeamDetail struct {
	Team    Team
	Players []string
}

type StandingDetail struct {
	Standing   Standing
	PlayerName string
}

// ListFilter narrows Reader.ListDetails. Year zero means every year.
type ListFilter struct {
	Year                int
	ExcludeSeasonFinals bool
}
