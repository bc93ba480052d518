package postgres

import (
	"database/sql"
	"time"

	"github.com/lib/pq"

	"github.com/riskibarqy/kicker-league/internal/domain/tournament"
)

type tournamentTableModel struct {
	ID                int64          `db:"id,omitinsert"`
	ExternalID        string         `db:"external_id"`
	MergedExternalIDs pq.StringArray `db:"merged_external_ids"`
	Name              string         `db:"name"`
	Mode              string         `db:"mode"`
	Sport             string         `db:"sport"`
	Type              string         `db:"tournament_type"`
	CreatedAt         time.Time      `db:"created_at"`
	SourceUpdatedAt   sql.NullTime   `db:"source_updated_at"`
	SeasonFinal       bool           `db:"season_final"`
	SchemaVersion     int            `db:"schema_version"`
	RawPayload        string         `db:"raw_payload"`
	SyncedAt          time.Time      `db:"synced_at"`
}

func newTournamentTableModel(t tournament.Tournament) tournamentTableModel {
	merged := pq.StringArray(t.MergedExternalIDs)
	if merged == nil {
		merged = pq.StringArray{}
	}
	return tournamentTableModel{
		ID:                t.ID,
		ExternalID:        t.ExternalID,
		MergedExternalIDs: merged,
		Name:              t.Name,
		Mode:              t.Mode,
		Sport:             t.Sport,
		Type:              t.Type,
		CreatedAt:         t.CreatedAt,
		SourceUpdatedAt:   sql.NullTime{Time: t.SourceUpdatedAt, Valid: !t.SourceUpdatedAt.IsZero()},
		SeasonFinal:       t.SeasonFinal,
		SchemaVersion:     t.SchemaVersion,
		RawPayload:        rawJSON(t.RawPayload),
		SyncedAt:          t.SyncedAt,
	}
}

func (m tournamentTableModel) toDomain() tournament.Tournament {
	var merged []string
	if len(m.MergedExternalIDs) > 0 {
		merged = []string(m.MergedExternalIDs)
	}
	return tournament.Tournament{
		ID:                m.ID,
		ExternalID:        m.ExternalID,
		MergedExternalIDs: merged,
		Name:              m.Name,
		Mode:              m.Mode,
		Sport:             m.Sport,
		Type:              m.Type,
		CreatedAt:         m.CreatedAt.UTC(),
		SourceUpdatedAt:   m.SourceUpdatedAt.Time.UTC(),
		SeasonFinal:       m.SeasonFinal,
		SchemaVersion:     m.SchemaVersion,
		RawPayload:        []byte(m.RawPayload),
		SyncedAt:          m.SyncedAt.UTC(),
	}
}

// rawJSON keeps the jsonb column valid when no payload was stored.
func rawJSON(b []byte) string {
	if len(b) == 0 {
		return "{}"
	}
	return string(b)
}

type matchTableModel struct {
	ID           int64        `db:"id,omitinsert"`
	ExternalID   string       `db:"external_id"`
	TournamentID int64        `db:"tournament_id"`
	SectionID    string       `db:"section_id"`
	RoundID      string       `db:"round_id"`
	RoundName    string       `db:"round_name"`
	Elimination  bool         `db:"elimination"`
	Score1       int          `db:"score1"`
	Score2       int          `db:"score2"`
	StartedAt    sql.NullTime `db:"started_at"`
	EndedAt      sql.NullTime `db:"ended_at"`
	Valid        bool         `db:"valid"`
	Skipped      bool         `db:"skipped"`
}

func newMatchTableModel(m tournament.Match) matchTableModel {
	return matchTableModel{
		ID:           m.ID,
		ExternalID:   m.ExternalID,
		TournamentID: m.TournamentID,
		SectionID:    m.SectionID,
		RoundID:      m.RoundID,
		RoundName:    m.RoundName,
		Elimination:  m.Elimination,
		Score1:       m.Score1,
		Score2:       m.Score2,
		StartedAt:    toNullTime(m.StartedAt),
		EndedAt:      toNullTime(m.EndedAt),
		Valid:        m.Valid,
		Skipped:      m.Skipped,
	}
}

func (m matchTableModel) toDomain() tournament.Match {
	return tournament.Match{
		ID:           m.ID,
		ExternalID:   m.ExternalID,
		TournamentID: m.TournamentID,
		SectionID:    m.SectionID,
		RoundID:      m.RoundID,
		RoundName:    m.RoundName,
		Elimination:  m.Elimination,
		Score1:       m.Score1,
		Score2:       m.Score2,
		StartedAt:    fromNullTime(m.StartedAt),
		EndedAt:      fromNullTime(m.EndedAt),
		Valid:        m.Valid,
		Skipped:      m.Skipped,
	}
}

type teamTableModel struct {
	ID         int64  `db:"id,omitinsert"`
	MatchID    int64  `db:"match_id"`
	TeamNumber int    `db:"team_number"`
	Name       string `db:"name"`
	Score      int    `db:"score"`
	Won        bool   `db:"won"`
}

func (m teamTableModel) toDomain() tournament.Team {
	return tournament.Team{
		ID:         m.ID,
		MatchID:    m.MatchID,
		TeamNumber: m.TeamNumber,
		Name:       m.Name,
		Score:      m.Score,
		Won:        m.Won,
	}
}

type teamPlayerRow struct {
	TeamID     int64  `db:"team_id"`
	PlayerName string `db:"player_name"`
}

type standingTableModel struct {
	ID           int64  `db:"id,omitinsert"`
	TournamentID int64  `db:"tournament_id"`
	PlayerID     int64  `db:"player_id"`
	Type         string `db:"standing_type"`
	Place        int    `db:"place"`
	Points       int    `db:"points"`
	Matches      int    `db:"matches"`
	Won          int    `db:"won"`
	Lost         int    `db:"lost"`
	Draw         int    `db:"draw"`
	GoalsFor     int    `db:"goals_for"`
	GoalsAgainst int    `db:"goals_against"`
	SetsWon      int    `db:"sets_won"`
	SetsLost     int    `db:"sets_lost"`
	BallsWon     int    `db:"balls_won"`
	BallsLost    int    `db:"balls_lost"`
	Deactivated  bool   `db:"deactivated"`
	Removed      bool   `db:"removed"`
}

func newStandingTableModel(s tournament.Standing) standingTableModel {
	return standingTableModel{
		TournamentID: s.TournamentID,
		PlayerID:     s.PlayerID,
		Type:         string(s.Type),
		Place:        s.Place,
		Points:       s.Points,
		Matches:      s.Matches,
		Won:          s.Won,
		Lost:         s.Lost,
		Draw:         s.Draw,
		GoalsFor:     s.GoalsFor,
		GoalsAgainst: s.GoalsAgainst,
		SetsWon:      s.SetsWon,
		SetsLost:     s.SetsLost,
		BallsWon:     s.BallsWon,
		BallsLost:    s.BallsLost,
		Deactivated:  s.Deactivated,
		Removed:      s.Removed,
	}
}

func (m standingTableModel) toDomain() tournament.Standing {
	return tournament.Standing{
		ID:           m.ID,
		TournamentID: m.TournamentID,
		PlayerID:     m.PlayerID,
		Type:         tournament.StandingType(m.Type),
		Place:        m.Place,
		Points:       m.Points,
		Matches:      m.Matches,
		Won:          m.Won,
		Lost:         m.Lost,
		Draw:         m.Draw,
		GoalsFor:     m.GoalsFor,
		GoalsAgainst: m.GoalsAgainst,
		SetsWon:      m.SetsWon,
		SetsLost:     m.SetsLost,
		BallsWon:     m.BallsWon,
		BallsLost:    m.BallsLost,
		Deactivated:  m.Deactivated,
		Removed:      m.Removed,
	}
}

type standingDetailRow struct {
	standingTableModel
	PlayerName string `db:"player_name"`
}

func toNullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}

func fromNullTime(t sql.NullTime) *time.Time {
	if !t.Valid {
		return nil
	}
	v := t.Time.UTC()
	return &v
}
