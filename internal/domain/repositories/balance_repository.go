package repositories

import (
	"context"

	"github.com/google/uuid"
	"mintworks.backend/internal/domain/entities"
)

// BalanceRepository owns the internal spendable balance and its append-only
// ledger. All three mutations write the balance and the matching entry in
// one atomic step.
type BalanceRepository interface {
	Get(ctx context.Context, userID uuid.UUID) (*entities.Balance, error)
	// Reserve debits amount if and only if the current balance covers it.
	// Concurrent reservations for the same user are serialized; the combined
	// reservations can never drive the balance negative.
	Reserve(ctx context.Context, userID uuid.UUID, amount int64, referenceID string) error
	// Compensate credits amount back, tagged as a refund. Idempotent per
	// referenceID: a replay does not double-credit.
	Compensate(ctx context.Context, userID uuid.UUID, amount int64, referenceID string) error
	// Bonus credits a loyalty bonus. Same idempotence contract as Compensate.
	Bonus(ctx context.Context, userID uuid.UUID, amount int64, referenceID string) error
	GetEntries(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*entities.LedgerEntry, int, error)
}
