package services

import (
	"context"
	"time"

	"rewardhub/internal/core/domain"
)

// Clock abstracts time for the rule engines so tests can pin it
type Clock interface {
	Now() time.Time
}

type realClock struct{}

func (realClock) Now() time.Time {
	return time.Now()
}

// NewRealClock returns a Clock backed by the system time
func NewRealClock() Clock {
	return realClock{}
}

// UserStatsProvider computes a user's current standing for rule evaluation.
// Keeps the engines decoupled from any persistence technology.
type UserStatsProvider interface {
	GetStats(ctx context.Context, userID uint) (*domain.UserStats, error)
}

// UplineResolver resolves a buyer's ancestor chain, nearest first
type UplineResolver interface {
	GetUplineChain(ctx context.Context, userID uint, maxDepth int) ([]uint, error)
}
