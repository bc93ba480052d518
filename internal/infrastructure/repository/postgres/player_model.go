package postgres

import (
	"database/sql"
	"time"

	"github.com/riskibarqy/kicker-league/internal/domain/player"
)

type playerTableModel struct {
	ID              int64     `db:"id,omitinsert"`
	Name            string    `db:"name"`
	NationalID      string    `db:"national_id"`
	InternationalID string    `db:"international_id"`
	Club            string    `db:"club"`
	License         string    `db:"license"`
	Country         string    `db:"country"`
	Guest           bool      `db:"guest"`
	External        bool      `db:"external"`
	CreatedAt       time.Time `db:"created_at,omitinsert"`
	UpdatedAt       time.Time `db:"updated_at,omitinsert"`
}

func newPlayerTableModel(p player.Player) playerTableModel {
	return playerTableModel{
		ID:              p.ID,
		Name:            p.Name,
		NationalID:      p.NationalID,
		InternationalID: p.InternationalID,
		Club:            p.Club,
		License:         p.License,
		Country:         p.Country,
		Guest:           p.Guest,
		External:        p.External,
	}
}

func (m playerTableModel) toDomain() player.Player {
	return player.Player{
		ID:              m.ID,
		Name:            m.Name,
		NationalID:      m.NationalID,
		InternationalID: m.InternationalID,
		Club:            m.Club,
		License:         m.License,
		Country:         m.Country,
		Guest:           m.Guest,
		External:        m.External,
		CreatedAt:       m.CreatedAt.UTC(),
		UpdatedAt:       m.UpdatedAt.UTC(),
	}
}

type aliasTableModel struct {
	ID            int64         `db:"id"`
	Alias         string        `db:"alias"`
	CanonicalName string        `db:"canonical_name"`
	PlayerID      sql.NullInt64 `db:"player_id"`
	CreatedAt     time.Time     `db:"created_at"`
}

func (m aliasTableModel) toDomain() player.Alias {
	a := player.Alias{
		ID:            m.ID,
		Alias:         m.Alias,
		CanonicalName: m.CanonicalName,
		CreatedAt:     m.CreatedAt.UTC(),
	}
	if m.PlayerID.Valid {
		id := m.PlayerID.Int64
		a.PlayerID = &id
	}
	return a
}
