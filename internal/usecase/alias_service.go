package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/riskibarqy/kicker-league/internal/domain/player"
)

type AliasService struct {
	aliases player.AliasRepository
}

func NewAliasService(aliases player.AliasRepository) *AliasService {
	return &AliasService{aliases: aliases}
}

// ResolveAlias maps a spelling to its canonical name. Unknown names map to themselves.
func (s *AliasService) ResolveAlias(ctx context.Context, name string) (string, error) {
	resolver, err := loadResolver(ctx, s.aliases)
	if err != nil {
		return "", err
	}
	return resolver.Resolve(name), nil
}

func (s *AliasService) GetAlias(ctx context.Context, alias string) (player.Alias, error) {
	alias = strings.TrimSpace(alias)
	if alias == "" {
		return player.Alias{}, fmt.Errorf("%w: alias is required", ErrInvalidInput)
	}
	found, ok, err := s.aliases.GetAlias(ctx, alias)
	if err != nil {
		return player.Alias{}, fmt.Errorf("get alias %q: %w", alias, err)
	}
	if !ok {
		return player.Alias{}, fmt.Errorf("%w: alias %q", ErrNotFound, alias)
	}
	return found, nil
}
