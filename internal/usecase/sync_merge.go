package usecase

import (
	"context"
	"fmt"

	"github.com/riskibarqy/kicker-league/internal/domain/export"
	"github.com/riskibarqy/kicker-league/internal/domain/seasonfinal"
	"github.com/riskibarqy/kicker-league/internal/domain/tournament"
	"github.com/riskibarqy/kicker-league/internal/platform/logging"
)

type syncTarget struct {
	row     tournament.Tournament
	payload export.Payload
	merged  bool
}

// resolveTarget picks the row an import writes into and the payload it
// writes. Rows that already absorbed a split season final are found by any
// of their external ids; otherwise a complementary season final of the
// same year becomes the target.
func (s *SyncService) resolveTarget(
	ctx context.Context,
	writer tournament.Writer,
	incoming export.Payload,
	result *SyncResult,
	logger *logging.Logger,
) (syncTarget, error) {
	existing, found, err := writer.FindByExternalID(ctx, incoming.ID)
	if err != nil {
		return syncTarget{}, fmt.Errorf("find tournament: %w", err)
	}

	if found && len(existing.MergedExternalIDs) > 0 {
		stored, err := export.DecodePayload(existing.RawPayload)
		if err != nil {
			return syncTarget{}, fmt.Errorf("decode stored payload of %q: %w", existing.ExternalID, err)
		}
		// Sections the re-import carries replace the stored ones.
		payload := seasonfinal.Merge(incoming, stored)
		payload.ID = existing.ExternalID
		payload.CreatedAt = existing.CreatedAt
		result.Merged = true
		result.MergedInto = existing.ExternalID
		return syncTarget{row: existing, payload: payload, merged: true}, nil
	}

	if !seasonfinal.IsSeasonFinal(incoming.Name) {
		return syncTarget{row: existing, payload: incoming}, nil
	}

	var excludeID int64
	if found {
		excludeID = existing.ID
	}
	candidates, err := writer.ListSeasonFinals(ctx, incoming.CreatedAt.UTC().Year(), excludeID)
	if err != nil {
		return syncTarget{}, fmt.Errorf("list season finals: %w", err)
	}

	kind := seasonfinal.Classify(incoming)
	for _, candidate := range candidates {
		stored, err := export.DecodePayload(candidate.RawPayload)
		if err != nil {
			logger.WarnContext(ctx, "skipping season final with unreadable payload",
				"candidate_external_id", candidate.ExternalID, "error", err)
			continue
		}
		if !seasonfinal.Complementary(seasonfinal.Classify(stored), kind) {
			continue
		}

		payload := seasonfinal.Merge(stored, incoming)
		payload.ID = candidate.ExternalID
		payload.CreatedAt = candidate.CreatedAt

		if found {
			if err := writer.Delete(ctx, existing.ID); err != nil {
				return syncTarget{}, fmt.Errorf("delete orphan tournament %q: %w", existing.ExternalID, err)
			}
			result.OrphanDeleted = true
		}
		if !candidate.Claims(incoming.ID) {
			candidate.MergedExternalIDs = append(candidate.MergedExternalIDs, incoming.ID)
		}

		result.Merged = true
		result.MergedInto = candidate.ExternalID
		logger.InfoContext(ctx, "merging split season final",
			"into_external_id", candidate.ExternalID,
			"incoming_kind", kind.String(),
			"orphan_deleted", result.OrphanDeleted,
		)
		return syncTarget{row: candidate, payload: payload, merged: true}, nil
	}

	return syncTarget{row: existing, payload: incoming}, nil
}
