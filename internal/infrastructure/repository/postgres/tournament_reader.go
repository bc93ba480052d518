package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/riskibarqy/kicker-league/internal/domain/tournament"
	qb "github.com/riskibarqy/kicker-league/internal/platform/querybuilder"
)

// TournamentReader serves the read side outside any unit of work.
type TournamentReader struct {
	db *sqlx.DB
}

func NewTournamentReader(db *sqlx.DB) *TournamentReader {
	return &TournamentReader{db: db}
}

func (r *TournamentReader) GetByExternalID(ctx context.Context, externalID string) (tournament.Tournament, bool, error) {
	rows, err := r.selectTournaments(ctx, qb.Expr("(external_id = ? OR ? = ANY(merged_external_ids))", externalID, externalID))
	if err != nil {
		return tournament.Tournament{}, false, err
	}
	if len(rows) == 0 {
		return tournament.Tournament{}, false, nil
	}
	return rows[0], true, nil
}

func (r *TournamentReader) GetDetail(ctx context.Context, externalID string) (tournament.Detail, bool, error) {
	t, ok, err := r.GetByExternalID(ctx, externalID)
	if err != nil || !ok {
		return tournament.Detail{}, ok, err
	}
	details, err := r.details(ctx, []tournament.Tournament{t})
	if err != nil {
		return tournament.Detail{}, false, err
	}
	return details[0], true, nil
}

func (r *TournamentReader) ListDetails(ctx context.Context, filter tournament.ListFilter) ([]tournament.Detail, error) {
	var conditions []qb.Condition
	if filter.Year != 0 {
		conditions = append(conditions, qb.Expr("EXTRACT(YEAR FROM created_at AT TIME ZONE 'UTC') = ?", filter.Year))
	}
	if filter.ExcludeSeasonFinals {
		conditions = append(conditions, qb.Eq("season_final", false))
	}
	rows, err := r.selectTournaments(ctx, conditions...)
	if err != nil {
		return nil, err
	}
	return r.details(ctx, rows)
}

func (r *TournamentReader) selectTournaments(ctx context.Context, conditions ...qb.Condition) ([]tournament.Tournament, error) {
	query, args, err := qb.Select(tournamentColumns...).From("tournaments").
		Where(conditions...).
		OrderBy("created_at", "id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build select tournaments query: %w", err)
	}

	var rows []tournamentTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("select tournaments: %w", err)
	}
	out := make([]tournament.Tournament, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}
	return out, nil
}

// details loads matches, teams and standings for all tournaments with one
// query per table.
func (r *TournamentReader) details(ctx context.Context, tournaments []tournament.Tournament) ([]tournament.Detail, error) {
	out := make([]tournament.Detail, len(tournaments))
	if len(tournaments) == 0 {
		return out, nil
	}
	ids := make([]int64, len(tournaments))
	index := make(map[int64]int, len(tournaments))
	for i, t := range tournaments {
		ids[i] = t.ID
		index[t.ID] = i
		out[i].Tournament = t
	}
	idArray := pq.Array(ids)

	query, args, err := qb.Select(qb.Columns(matchTableModel{}, "m")...).From("matches m").
		Where(qb.Any("m.tournament_id", idArray)).
		OrderBy("m.tournament_id", "m.started_at ASC NULLS LAST", "m.id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build select matches query: %w", err)
	}
	var matches []matchTableModel
	if err := r.db.SelectContext(ctx, &matches, query, args...); err != nil {
		return nil, fmt.Errorf("select matches: %w", err)
	}

	query, args, err = qb.Select(qb.Columns(teamTableModel{}, "t")...).From("teams t").
		Join("JOIN matches m ON m.id = t.match_id").
		Where(qb.Any("m.tournament_id", idArray)).
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build select teams query: %w", err)
	}
	var teams []teamTableModel
	if err := r.db.SelectContext(ctx, &teams, query, args...); err != nil {
		return nil, fmt.Errorf("select teams: %w", err)
	}

	query, args, err = qb.Select("tp.team_id", "p.name AS player_name").From("team_players tp").
		Join("JOIN players p ON p.id = tp.player_id").
		Join("JOIN teams t ON t.id = tp.team_id").
		Join("JOIN matches m ON m.id = t.match_id").
		Where(qb.Any("m.tournament_id", idArray)).
		OrderBy("tp.team_id", "tp.position").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build select team players query: %w", err)
	}
	var members []teamPlayerRow
	if err := r.db.SelectContext(ctx, &members, query, args...); err != nil {
		return nil, fmt.Errorf("select team players: %w", err)
	}

	query, args, err = qb.Select(append(qb.Columns(standingTableModel{}, "s"), "p.name AS player_name")...).From("standings s").
		Join("JOIN players p ON p.id = s.player_id").
		Where(qb.Any("s.tournament_id", idArray)).
		OrderBy("s.tournament_id", "(s.standing_type = 'elimination')", "s.place", "p.name").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build select standings query: %w", err)
	}
	var standings []standingDetailRow
	if err := r.db.SelectContext(ctx, &standings, query, args...); err != nil {
		return nil, fmt.Errorf("select standings: %w", err)
	}

	playersByTeam := make(map[int64][]string)
	for _, m := range members {
		playersByTeam[m.TeamID] = append(playersByTeam[m.TeamID], m.PlayerName)
	}
	teamsByMatch := make(map[int64][2]tournament.TeamDetail)
	for _, t := range teams {
		if t.TeamNumber != 1 && t.TeamNumber != 2 {
			continue
		}
		pair := teamsByMatch[t.MatchID]
		pair[t.TeamNumber-1] = tournament.TeamDetail{Team: t.toDomain(), Players: playersByTeam[t.ID]}
		teamsByMatch[t.MatchID] = pair
	}

	for _, m := range matches {
		i := index[m.TournamentID]
		pair := teamsByMatch[m.ID]
		out[i].Matches = append(out[i].Matches, tournament.MatchDetail{Match: m.toDomain(), Team1: pair[0], Team2: pair[1]})
	}
	for _, s := range standings {
		i := index[s.TournamentID]
		out[i].Standings = append(out[i].Standings, tournament.StandingDetail{Standing: s.toDomain(), PlayerName: s.PlayerName})
	}
	return out, nil
}
