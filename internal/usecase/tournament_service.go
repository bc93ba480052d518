package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/riskibarqy/kicker-league/internal/domain/export"
	"github.com/riskibarqy/kicker-league/internal/domain/tournament"
)

type TournamentService struct {
	reader tournament.Reader
}

func NewTournamentService(reader tournament.Reader) *TournamentService {
	return &TournamentService{reader: reader}
}

// GetByExternalID finds a tournament by its own or any merged external id.
func (s *TournamentService) GetByExternalID(ctx context.Context, externalID string) (tournament.Tournament, error) {
	externalID = strings.TrimSpace(externalID)
	if externalID == "" {
		return tournament.Tournament{}, fmt.Errorf("%w: tournament external id is required", ErrInvalidInput)
	}
	t, ok, err := s.reader.GetByExternalID(ctx, externalID)
	if err != nil {
		return tournament.Tournament{}, fmt.Errorf("get tournament %q: %w", externalID, err)
	}
	if !ok {
		return tournament.Tournament{}, fmt.Errorf("%w: tournament %q", ErrNotFound, externalID)
	}
	return t, nil
}

// Payload returns the normalized, merged export stored with a tournament.
func (s *TournamentService) Payload(ctx context.Context, externalID string) (export.Payload, error) {
	t, err := s.GetByExternalID(ctx, externalID)
	if err != nil {
		return export.Payload{}, err
	}
	p, err := export.DecodePayload(t.RawPayload)
	if err != nil {
		return export.Payload{}, fmt.Errorf("decode payload of %q: %w", t.ExternalID, err)
	}
	return p, nil
}

func (s *TournamentService) List(ctx context.Context, filter tournament.ListFilter) ([]tournament.Detail, error) {
	details, err := s.reader.ListDetails(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list tournaments: %w", err)
	}
	return details, nil
}
