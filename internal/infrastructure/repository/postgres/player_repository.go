package postgres

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/riskibarqy/kicker-league/internal/domain/player"
	qb "github.com/riskibarqy/kicker-league/internal/platform/querybuilder"
)

var (
	playerColumns = qb.Columns(playerTableModel{}, "")
	aliasColumns  = qb.Columns(aliasTableModel{}, "")
)

// PlayerWriter runs inside a unit of work transaction.
type PlayerWriter struct {
	q sqlx.ExtContext
}

func (w *PlayerWriter) GetByName(ctx context.Context, name string) (player.Player, bool, error) {
	query, args, err := qb.Select(playerColumns...).From("players").
		Where(qb.Eq("name", name)).
		ToSQL()
	if err != nil {
		return player.Player{}, false, fmt.Errorf("build get player query: %w", err)
	}

	var row playerTableModel
	if err := sqlx.GetContext(ctx, w.q, &row, query, args...); err != nil {
		if isNotFound(err) {
			return player.Player{}, false, nil
		}
		return player.Player{}, false, fmt.Errorf("get player name=%s: %w", name, err)
	}
	return row.toDomain(), true, nil
}

func (w *PlayerWriter) Create(ctx context.Context, p player.Player) (player.Player, error) {
	query, args, err := qb.InsertModel("players", newPlayerTableModel(p), "RETURNING id, created_at, updated_at")
	if err != nil {
		return player.Player{}, fmt.Errorf("build insert player query: %w", err)
	}

	var row struct {
		ID        int64     `db:"id"`
		CreatedAt time.Time `db:"created_at"`
		UpdatedAt time.Time `db:"updated_at"`
	}
	if err := sqlx.GetContext(ctx, w.q, &row, query, args...); err != nil {
		if isUniqueViolation(err) {
			return player.Player{}, fmt.Errorf("insert player name=%s: %w", p.Name, player.ErrDuplicateName)
		}
		return player.Player{}, fmt.Errorf("insert player name=%s: %w", p.Name, err)
	}
	p.ID = row.ID
	p.CreatedAt = row.CreatedAt.UTC()
	p.UpdatedAt = row.UpdatedAt.UTC()
	return p, nil
}

func (w *PlayerWriter) UpdateMetadata(ctx context.Context, p player.Player) error {
	query, args, err := qb.Update("players").
		Set("national_id", p.NationalID).
		Set("international_id", p.InternationalID).
		Set("club", p.Club).
		Set("license", p.License).
		Set("country", p.Country).
		Set("guest", p.Guest).
		Set("external", p.External).
		SetExpr("updated_at", "NOW()").
		Where(qb.Eq("id", p.ID)).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build update player query: %w", err)
	}
	if _, err := w.q.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("update player id=%d: %w", p.ID, err)
	}
	return nil
}

type AliasRepository struct {
	db *sqlx.DB
}

func NewAliasRepository(db *sqlx.DB) *AliasRepository {
	return &AliasRepository{db: db}
}

func (r *AliasRepository) ListAliases(ctx context.Context) ([]player.Alias, error) {
	query, args, err := qb.Select(aliasColumns...).From("player_aliases").
		OrderBy("alias").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list aliases query: %w", err)
	}

	var rows []aliasTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list aliases: %w", err)
	}
	out := make([]player.Alias, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}
	return out, nil
}

func (r *AliasRepository) GetAlias(ctx context.Context, alias string) (player.Alias, bool, error) {
	query, args, err := qb.Select(aliasColumns...).From("player_aliases").
		Where(qb.Eq("alias", strings.TrimSpace(alias))).
		ToSQL()
	if err != nil {
		return player.Alias{}, false, fmt.Errorf("build get alias query: %w", err)
	}

	var row aliasTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return player.Alias{}, false, nil
		}
		return player.Alias{}, false, fmt.Errorf("get alias=%s: %w", alias, err)
	}
	return row.toDomain(), true, nil
}
