package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/riskibarqy/kicker-league/internal/domain/alias"
	"github.com/riskibarqy/kicker-league/internal/domain/export"
	"github.com/riskibarqy/kicker-league/internal/domain/player"
)

// PlayerRegistry gets or creates players by canonical name for the length
// of one unit of work, enriching stored metadata as exports provide it.
type PlayerRegistry struct {
	players  player.Writer
	resolver *alias.Resolver
	known    map[string]player.Player
	created  int
	enriched int
}

func NewPlayerRegistry(players player.Writer, resolver *alias.Resolver) *PlayerRegistry {
	return &PlayerRegistry{
		players:  players,
		resolver: resolver,
		known:    make(map[string]player.Player),
	}
}

// Resolve returns the player for rawName. ok is false when the name is blank.
func (r *PlayerRegistry) Resolve(ctx context.Context, rawName string, meta player.Metadata) (player.Player, bool, error) {
	name := r.resolver.Resolve(rawName)
	if name == "" {
		return player.Player{}, false, nil
	}

	p, ok := r.known[name]
	if !ok {
		stored, found, err := r.players.GetByName(ctx, name)
		if err != nil {
			return player.Player{}, false, fmt.Errorf("get player %q: %w", name, err)
		}
		if !found {
			fresh, _ := player.Player{Name: name}.Enrich(meta)
			created, err := r.players.Create(ctx, fresh)
			if err != nil {
				return player.Player{}, false, fmt.Errorf("create player %q: %w", name, err)
			}
			r.created++
			r.known[name] = created
			return created, true, nil
		}
		p = stored
	}

	if !meta.IsEmpty() {
		next, changed := p.Enrich(meta)
		if changed {
			if err := r.players.UpdateMetadata(ctx, next); err != nil {
				return player.Player{}, false, fmt.Errorf("update player %q: %w", name, err)
			}
			r.enriched++
			p = next
		}
	}
	r.known[name] = p
	return p, true, nil
}

// ResolveTeam resolves every named player of a team, collapsing aliases that
// point at the same player.
func (r *PlayerRegistry) ResolveTeam(ctx context.Context, team *export.Team) ([]int64, []string, error) {
	if team == nil {
		return nil, nil, nil
	}
	ids := make([]int64, 0, len(team.Players))
	names := make([]string, 0, len(team.Players))
	seen := make(map[int64]struct{}, len(team.Players))
	for _, participant := range team.Players {
		p, ok, err := r.Resolve(ctx, participant.Name, metadataOf(participant))
		if err != nil {
			return nil, nil, err
		}
		if !ok {
			continue
		}
		if _, dup := seen[p.ID]; dup {
			continue
		}
		seen[p.ID] = struct{}{}
		ids = append(ids, p.ID)
		names = append(names, p.Name)
	}
	return ids, names, nil
}

func metadataOf(p export.Participant) player.Metadata {
	return player.Metadata{
		NationalID:      p.NationalID,
		InternationalID: p.InternationalID,
		Club:            p.Club,
		License:         p.License,
		Country:         p.Country,
		Guest:           p.Guest,
		External:        p.External,
	}
}

// standingMetadata uses the row's participant entry when it names exactly
// the same player as the row itself.
func standingMetadata(st export.Standing, resolver *alias.Resolver) player.Metadata {
	if len(st.Players) != 1 {
		return player.Metadata{}
	}
	if resolver.Resolve(st.Players[0].Name) != resolver.Resolve(st.Name) {
		return player.Metadata{}
	}
	return metadataOf(st.Players[0])
}

func teamDisplayName(team *export.Team, names []string) string {
	if team != nil && strings.TrimSpace(team.Name) != "" {
		return strings.TrimSpace(team.Name)
	}
	return strings.Join(names, export.TeamSeparator)
}
