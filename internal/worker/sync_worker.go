// Package worker exports recorded expenses received over AMQP to a
// spreadsheet.
package worker

import (
	"context"
	"fmt"
	"time"

	"budget/internal/amqp"
	"budget/internal/cache"
	applog "budget/internal/log"
	"budget/internal/sheets"
)

const (
	dedupeSize = 10_000
	dedupeTTL  = 24 * time.Hour
)

// SyncWorker appends one row per expense recorded message. Redelivered
// messages already exported are acknowledged without writing again.
type SyncWorker struct {
	writer    sheets.RowWriter
	processed *cache.LRUCache[string]
	logger    *applog.Logger
}

func NewSyncWorker(writer sheets.RowWriter, logger *applog.Logger) *SyncWorker {
	if logger == nil {
		logger = applog.Discard()
	}
	return &SyncWorker{
		writer:    writer,
		processed: cache.NewLRUCache[string](dedupeSize, dedupeTTL),
		logger:    logger.WithComponent(applog.ComponentWorker),
	}
}

// Processed exposes the dedupe cache so it can be registered for cleanup.
func (w *SyncWorker) Processed() cache.Cleaner {
	return w.processed
}

// HandleExpenseRecorded exports the expense carried by msg.
func (w *SyncWorker) HandleExpenseRecorded(ctx context.Context, msg *amqp.ExpenseRecordedMessage) error {
	if ref, ok := w.processed.Get(msg.ID); ok {
		w.logger.InfoContext(ctx, "Skipping already exported message",
			applog.FieldMessageID, msg.ID,
			"row_ref", ref)
		return nil
	}

	row := sheets.Row{
		Expense:         msg.Expense(),
		RemainingBudget: msg.RemainingBudget,
		RecordedAt:      msg.Timestamp,
	}

	ref, err := w.writer.Append(ctx, row)
	if err != nil {
		return fmt.Errorf("export expense: %w", err)
	}
	w.processed.Set(msg.ID, ref)

	w.logger.InfoContext(ctx, "Expense exported",
		applog.FieldMessageID, msg.ID,
		applog.FieldExpenseName, msg.Name,
		applog.FieldAmount, msg.Amount.String(),
		"row_ref", ref)

	return nil
}
