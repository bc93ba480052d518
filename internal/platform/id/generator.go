package id

import (
	"fmt"
	"sync/atomic"

	"github.com/google/uuid"
)

// Generator creates correlation identifiers for sync runs and batches.
type Generator interface {
	NewID() (string, error)
}

// UUIDGenerator issues time-ordered UUIDv7 values so run ids sort by start time.
type UUIDGenerator struct{}

func NewUUIDGenerator() *UUIDGenerator {
	return &UUIDGenerator{}
}

func (g *UUIDGenerator) NewID() (string, error) {
	v, err := uuid.NewV7()
	if err != nil {
		return "", fmt.Errorf("generate uuid: %w", err)
	}
	return v.String(), nil
}

// Sequence returns fixed ids in order; used where deterministic ids matter.
type Sequence struct {
	prefix string
	next   atomic.Int64
}

func NewSequence(prefix string) *Sequence {
	return &Sequence{prefix: prefix}
}

func (s *Sequence) NewID() (string, error) {
	return fmt.Sprintf("%s-%d", s.prefix, s.next.Add(1)), nil
}
