package service

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"

	"fundflow/internal/core/ports"
	"fundflow/pkg/apperror"

	"github.com/rs/zerolog"
)

const (
	maxIDAttempts   = 10
	defaultIDLength = 12
	idAlphabet      = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"
)

// IDGenerator allocates gateway correlation ids that were never assigned before.
// Providers cap merchant order ids at short lengths, so ids are short random strings
// checked against the ledger rather than UUIDs.
type IDGenerator struct {
	attempts ports.AttemptRepository
	length   int
	random   func(n int) (string, error)
	log      zerolog.Logger
}

func NewIDGenerator(attempts ports.AttemptRepository, length int, log zerolog.Logger) *IDGenerator {
	if length <= 0 {
		length = defaultIDLength
	}
	return &IDGenerator{attempts: attempts, length: length, random: randomID, log: log}
}

// Next returns an unused id or PAY_009 after maxIDAttempts collisions.
func (g *IDGenerator) Next(ctx context.Context) (string, error) {
	for i := 0; i < maxIDAttempts; i++ {
		candidate, err := g.random(g.length)
		if err != nil {
			return "", apperror.InternalError(fmt.Errorf("generating correlation id: %w", err))
		}
		exists, err := g.attempts.OrderIDExists(ctx, candidate)
		if err != nil {
			return "", apperror.ErrDatabaseError(fmt.Errorf("checking correlation id: %w", err))
		}
		if !exists {
			return candidate, nil
		}
		g.log.Warn().Str("order_id", candidate).Int("attempt", i+1).Msg("correlation id collision")
	}
	return "", apperror.ErrIDExhausted()
}

func randomID(n int) (string, error) {
	max := big.NewInt(int64(len(idAlphabet)))
	b := make([]byte, n)
	for i := range b {
		v, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		b[i] = idAlphabet[v.Int64()]
	}
	return string(b), nil
}
