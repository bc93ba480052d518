package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/riskibarqy/kicker-league/internal/domain/tournament"
	qb "github.com/riskibarqy/kicker-league/internal/platform/querybuilder"
)

var tournamentColumns = qb.Columns(tournamentTableModel{}, "")

// TournamentWriter runs inside a unit of work transaction.
type TournamentWriter struct {
	q sqlx.ExtContext
}

func (w *TournamentWriter) FindByExternalID(ctx context.Context, externalID string) (tournament.Tournament, bool, error) {
	query, args, err := qb.Select(tournamentColumns...).From("tournaments").
		Where(qb.Expr("(external_id = ? OR ? = ANY(merged_external_ids))", externalID, externalID)).
		OrderBy("id").
		Limit(1).
		ForUpdate().
		ToSQL()
	if err != nil {
		return tournament.Tournament{}, false, fmt.Errorf("build find tournament query: %w", err)
	}

	var row tournamentTableModel
	if err := sqlx.GetContext(ctx, w.q, &row, query, args...); err != nil {
		if isNotFound(err) {
			return tournament.Tournament{}, false, nil
		}
		return tournament.Tournament{}, false, fmt.Errorf("find tournament external_id=%s: %w", externalID, err)
	}
	return row.toDomain(), true, nil
}

func (w *TournamentWriter) ListSeasonFinals(ctx context.Context, year int, excludeID int64) ([]tournament.Tournament, error) {
	query, args, err := qb.Select(tournamentColumns...).From("tournaments").
		Where(
			qb.Eq("season_final", true),
			qb.Expr("EXTRACT(YEAR FROM created_at AT TIME ZONE 'UTC') = ?", year),
			qb.Expr("id <> ?", excludeID),
		).
		OrderBy("id").
		ForUpdate().
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list season finals query: %w", err)
	}

	var rows []tournamentTableModel
	if err := sqlx.SelectContext(ctx, w.q, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list season finals year=%d: %w", year, err)
	}
	out := make([]tournament.Tournament, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}
	return out, nil
}

func (w *TournamentWriter) Save(ctx context.Context, t tournament.Tournament) (tournament.Tournament, error) {
	model := newTournamentTableModel(t)
	if t.ID == 0 {
		query, args, err := qb.InsertModel("tournaments", model, "RETURNING id")
		if err != nil {
			return tournament.Tournament{}, fmt.Errorf("build insert tournament query: %w", err)
		}
		if err := sqlx.GetContext(ctx, w.q, &t.ID, query, args...); err != nil {
			if isUniqueViolation(err) {
				return tournament.Tournament{}, fmt.Errorf("insert tournament external_id=%s: %w", t.ExternalID, tournament.ErrDuplicateExternalID)
			}
			return tournament.Tournament{}, fmt.Errorf("insert tournament external_id=%s: %w", t.ExternalID, err)
		}
		return t, nil
	}

	query, args, err := qb.Update("tournaments").
		Set("external_id", model.ExternalID).
		Set("merged_external_ids", model.MergedExternalIDs).
		Set("name", model.Name).
		Set("mode", model.Mode).
		Set("sport", model.Sport).
		Set("tournament_type", model.Type).
		Set("created_at", model.CreatedAt).
		Set("source_updated_at", model.SourceUpdatedAt).
		Set("season_final", model.SeasonFinal).
		Set("schema_version", model.SchemaVersion).
		Set("raw_payload", model.RawPayload).
		Set("synced_at", model.SyncedAt).
		Where(qb.Eq("id", t.ID)).
		ToSQL()
	if err != nil {
		return tournament.Tournament{}, fmt.Errorf("build update tournament query: %w", err)
	}
	res, err := w.q.ExecContext(ctx, query, args...)
	if err != nil {
		if isUniqueViolation(err) {
			return tournament.Tournament{}, fmt.Errorf("update tournament id=%d: %w", t.ID, tournament.ErrDuplicateExternalID)
		}
		return tournament.Tournament{}, fmt.Errorf("update tournament id=%d: %w", t.ID, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return tournament.Tournament{}, fmt.Errorf("update tournament id=%d: no such row", t.ID)
	}
	return t, nil
}

// Delete relies on ON DELETE CASCADE for matches, teams and standings.
func (w *TournamentWriter) Delete(ctx context.Context, id int64) error {
	query, args, err := qb.DeleteFrom("tournaments").Where(qb.Eq("id", id)).ToSQL()
	if err != nil {
		return fmt.Errorf("build delete tournament query: %w", err)
	}
	if _, err := w.q.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("delete tournament id=%d: %w", id, err)
	}
	return nil
}

func (w *TournamentWriter) UpsertMatch(ctx context.Context, m tournament.Match) (tournament.Match, error) {
	query, args, err := qb.InsertModel("matches", newMatchTableModel(m), `ON CONFLICT (external_id)
DO UPDATE SET
    tournament_id = EXCLUDED.tournament_id,
    section_id = EXCLUDED.section_id,
    round_id = EXCLUDED.round_id,
    round_name = EXCLUDED.round_name,
    elimination = EXCLUDED.elimination,
    score1 = EXCLUDED.score1,
    score2 = EXCLUDED.score2,
    started_at = EXCLUDED.started_at,
    ended_at = EXCLUDED.ended_at,
    valid = EXCLUDED.valid,
    skipped = EXCLUDED.skipped
RETURNING id`)
	if err != nil {
		return tournament.Match{}, fmt.Errorf("build upsert match query: %w", err)
	}
	if err := sqlx.GetContext(ctx, w.q, &m.ID, query, args...); err != nil {
		return tournament.Match{}, fmt.Errorf("upsert match external_id=%s: %w", m.ExternalID, err)
	}
	return m, nil
}

func (w *TournamentWriter) DeleteTeamsByMatchExternalID(ctx context.Context, externalID string) error {
	query, args, err := qb.DeleteFrom("teams").
		Where(qb.Expr("match_id IN (SELECT id FROM matches WHERE external_id = ?)", externalID)).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build delete teams query: %w", err)
	}
	if _, err := w.q.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("delete teams match_external_id=%s: %w", externalID, err)
	}
	return nil
}

func (w *TournamentWriter) CreateTeam(ctx context.Context, t tournament.Team, playerIDs []int64) (tournament.Team, error) {
	query, args, err := qb.InsertModel("teams", teamTableModel{
		MatchID:    t.MatchID,
		TeamNumber: t.TeamNumber,
		Name:       t.Name,
		Score:      t.Score,
		Won:        t.Won,
	}, "RETURNING id")
	if err != nil {
		return tournament.Team{}, fmt.Errorf("build insert team query: %w", err)
	}
	if err := sqlx.GetContext(ctx, w.q, &t.ID, query, args...); err != nil {
		return tournament.Team{}, fmt.Errorf("insert team match_id=%d number=%d: %w", t.MatchID, t.TeamNumber, err)
	}
	if len(playerIDs) == 0 {
		return t, nil
	}

	insert := qb.InsertInto("team_players").Columns("team_id", "player_id", "position")
	for i, playerID := range playerIDs {
		insert.Values(t.ID, playerID, i)
	}
	query, args, err = insert.ToSQL()
	if err != nil {
		return tournament.Team{}, fmt.Errorf("build insert team players query: %w", err)
	}
	if _, err := w.q.ExecContext(ctx, query, args...); err != nil {
		return tournament.Team{}, fmt.Errorf("insert team players team_id=%d: %w", t.ID, err)
	}
	return t, nil
}

func (w *TournamentWriter) ListMatchExternalIDs(ctx context.Context, tournamentID int64) ([]string, error) {
	query, args, err := qb.Select("external_id").From("matches").
		Where(qb.Eq("tournament_id", tournamentID)).
		OrderBy("external_id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list match ids query: %w", err)
	}
	var out []string
	if err := sqlx.SelectContext(ctx, w.q, &out, query, args...); err != nil {
		return nil, fmt.Errorf("list match ids tournament_id=%d: %w", tournamentID, err)
	}
	return out, nil
}

func (w *TournamentWriter) DeleteMatches(ctx context.Context, tournamentID int64, externalIDs []string) (int, error) {
	if len(externalIDs) == 0 {
		return 0, nil
	}
	query, args, err := qb.DeleteFrom("matches").
		Where(
			qb.Eq("tournament_id", tournamentID),
			qb.Any("external_id", pq.Array(externalIDs)),
		).
		ToSQL()
	if err != nil {
		return 0, fmt.Errorf("build delete matches query: %w", err)
	}
	res, err := w.q.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("delete matches tournament_id=%d: %w", tournamentID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("delete matches rows affected: %w", err)
	}
	return int(n), nil
}

func (w *TournamentWriter) UpsertStanding(ctx context.Context, s tournament.Standing) error {
	query, args, err := qb.InsertModel("standings", newStandingTableModel(s), `ON CONFLICT (tournament_id, player_id, standing_type)
DO UPDATE SET
    place = EXCLUDED.place,
    points = EXCLUDED.points,
    matches = EXCLUDED.matches,
    won = EXCLUDED.won,
    lost = EXCLUDED.lost,
    draw = EXCLUDED.draw,
    goals_for = EXCLUDED.goals_for,
    goals_against = EXCLUDED.goals_against,
    sets_won = EXCLUDED.sets_won,
    sets_lost = EXCLUDED.sets_lost,
    balls_won = EXCLUDED.balls_won,
    balls_lost = EXCLUDED.balls_lost,
    deactivated = EXCLUDED.deactivated,
    removed = EXCLUDED.removed`)
	if err != nil {
		return fmt.Errorf("build upsert standing query: %w", err)
	}
	if _, err := w.q.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("upsert standing tournament_id=%d player_id=%d type=%s: %w", s.TournamentID, s.PlayerID, s.Type, err)
	}
	return nil
}

func (w *TournamentWriter) ListStandingKeys(ctx context.Context, tournamentID int64) ([]tournament.StandingKey, error) {
	query, args, err := qb.Select("player_id", "standing_type").From("standings").
		Where(qb.Eq("tournament_id", tournamentID)).
		OrderBy("player_id", "standing_type").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list standing keys query: %w", err)
	}
	var rows []struct {
		PlayerID int64  `db:"player_id"`
		Type     string `db:"standing_type"`
	}
	if err := sqlx.SelectContext(ctx, w.q, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list standing keys tournament_id=%d: %w", tournamentID, err)
	}
	out := make([]tournament.StandingKey, 0, len(rows))
	for _, row := range rows {
		out = append(out, tournament.StandingKey{PlayerID: row.PlayerID, Type: tournament.StandingType(row.Type)})
	}
	return out, nil
}

func (w *TournamentWriter) DeleteStandings(ctx context.Context, tournamentID int64, keys []tournament.StandingKey) (int, error) {
	byType := make(map[tournament.StandingType][]int64)
	var order []tournament.StandingType
	for _, k := range keys {
		if _, ok := byType[k.Type]; !ok {
			order = append(order, k.Type)
		}
		byType[k.Type] = append(byType[k.Type], k.PlayerID)
	}

	deleted := 0
	for _, kind := range order {
		query, args, err := qb.DeleteFrom("standings").
			Where(
				qb.Eq("tournament_id", tournamentID),
				qb.Eq("standing_type", string(kind)),
				qb.Any("player_id", pq.Array(byType[kind])),
			).
			ToSQL()
		if err != nil {
			return 0, fmt.Errorf("build delete standings query: %w", err)
		}
		res, err := w.q.ExecContext(ctx, query, args...)
		if err != nil {
			return 0, fmt.Errorf("delete %s standings tournament_id=%d: %w", kind, tournamentID, err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return 0, fmt.Errorf("delete standings rows affected: %w", err)
		}
		deleted += int(n)
	}
	return deleted, nil
}
