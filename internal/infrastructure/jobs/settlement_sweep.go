package jobs

import (
	"context"
	"log"
	"time"

	"github.com/ethereum/go-ethereum/core/types"
	"mintworks.backend/internal/domain/entities"
	"mintworks.backend/internal/domain/repositories"
)

// receiptSource is the slice of node access the sweep needs.
type receiptSource interface {
	GetTransactionReceipt(ctx context.Context, txHash string) (*types.Receipt, error)
}

// SettlementSweepJob re-checks purchases that timed out while awaiting
// confirmation. A submission can land after the poll window closed; the
// buyer was already refunded by then, so a late landing is never re-debited
// automatically. It is marked confirmed_late and left for manual follow-up.
type SettlementSweepJob struct {
	repo     repositories.PurchaseRepository
	chain    receiptSource
	interval time.Duration
	stop     chan struct{}
}

func NewSettlementSweepJob(repo repositories.PurchaseRepository, chain receiptSource) *SettlementSweepJob {
	return &SettlementSweepJob{
		repo:     repo,
		chain:    chain,
		interval: 60 * time.Second,
		stop:     make(chan struct{}),
	}
}

func (j *SettlementSweepJob) Start(ctx context.Context) {
	log.Println("🕐 Starting settlement sweep job...")

	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Println("⏹️ Settlement sweep job stopped (context cancelled)")
			return
		case <-j.stop:
			log.Println("⏹️ Settlement sweep job stopped")
			return
		case <-ticker.C:
			j.sweepTimedOut(ctx)
		}
	}
}

func (j *SettlementSweepJob) Stop() {
	close(j.stop)
}

func (j *SettlementSweepJob) sweepTimedOut(ctx context.Context) {
	pending, err := j.repo.GetByStatus(ctx, entities.PurchaseStatusTimedOut, 100)
	if err != nil {
		log.Printf("❌ Error fetching timed-out purchases: %v", err)
		return
	}

	if len(pending) == 0 {
		return
	}

	log.Printf("🔄 Sweeping %d timed-out purchases...", len(pending))

	for _, purchase := range pending {
		receipt, err := j.chain.GetTransactionReceipt(ctx, purchase.ExternalTxHash)
		if err != nil || receipt == nil {
			// Still unknown; leave for the next sweep.
			continue
		}

		status := entities.PurchaseStatusFailed
		if receipt.Status == types.ReceiptStatusSuccessful {
			status = entities.PurchaseStatusConfirmedLate
			log.Printf("⚠️ Purchase %s landed after its refund (tx %s), flagged for manual follow-up", purchase.ID, purchase.ExternalTxHash)
		}

		if err := j.repo.UpdateStatus(ctx, purchase.ID, status); err != nil {
			log.Printf("❌ Error updating purchase %s: %v", purchase.ID, err)
			continue
		}
	}

	log.Printf("✅ Settlement sweep complete")
}
