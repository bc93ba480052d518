package player

import (
	"strings"
	"time"
)

// Player is a canonical identity keyed by display name.
type Player struct {
	ID              int64
	Name            string
	NationalID      string
	InternationalID string
	Club            string
	License         string
	Country         string
	Guest           bool
	External        bool
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// Metadata is the optional external information an export may carry for a player.
type Metadata struct {
	NationalID      string
	InternationalID string
	Club            string
	License         string
	Country         string
	Guest           bool
	External        bool
}

func (m Metadata) IsEmpty() bool {
	return m == Metadata{}
}

// Enrich copies every non-empty metadata field onto the player and reports
// whether anything changed. Empty fields never erase stored values.
func (p Player) Enrich(m Metadata) (Player, bool) {
	changed := false
	set := func(dst *string, v string) {
		v = strings.TrimSpace(v)
		if v != "" && *dst != v {
			*dst = v
			changed = true
		}
	}
	set(&p.NationalID, m.NationalID)
	set(&p.InternationalID, m.InternationalID)
	set(&p.Club, m.Club)
	set(&p.License, m.License)
	set(&p.Country, m.Country)
	if m.Guest && !p.Guest {
		p.Guest = true
		changed = true
	}
	if m.External && !p.External {
		p.External = true
		changed = true
	}
	return p, changed
}

// Alias maps an observed spelling to a canonical player name.
type Alias struct {
	ID            int64
	Alias         string
	CanonicalName string
	PlayerID      *int64
	CreatedAt     time.Time
}
