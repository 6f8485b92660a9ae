package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"fintrack/internal/amqp"
	"fintrack/internal/core"
	"fintrack/internal/sheets"
)

// TransactionGetter is the slice of storage the worker needs.
type TransactionGetter interface {
	GetTransaction(ctx context.Context, id string) (core.Transaction, error)
}

// SyncWorker mirrors stored transactions to the spreadsheet, driven by
// messages from the mirror queue.
type SyncWorker struct {
	storage  TransactionGetter
	appender sheets.TransactionAppender
	remover  sheets.TransactionRemover
}

func NewSyncWorker(storage TransactionGetter, appender sheets.TransactionAppender, remover sheets.TransactionRemover) *SyncWorker {
	return &SyncWorker{
		storage:  storage,
		appender: appender,
		remover:  remover,
	}
}

// HandleEnvelope dispatches a mirror message by kind. It is the handler
// wired into the AMQP consumer loop.
func (w *SyncWorker) HandleEnvelope(ctx context.Context, env *amqp.Envelope) error {
	switch env.Kind {
	case amqp.KindSync:
		msg, err := env.SyncPayload()
		if err != nil {
			return err
		}
		return w.handleSync(ctx, msg)
	case amqp.KindDelete:
		msg, err := env.DeletePayload()
		if err != nil {
			return err
		}
		return w.handleDelete(ctx, msg)
	default:
		return fmt.Errorf("unknown message kind %q", env.Kind)
	}
}

func (w *SyncWorker) handleSync(ctx context.Context, msg *amqp.TransactionSyncMessage) error {
	slog.InfoContext(ctx, "Processing sync message", "transaction_id", msg.ID)

	tx, err := w.storage.GetTransaction(ctx, msg.ID)
	if err != nil {
		// The row may have been deleted between publish and consume.
		// A delete message for it is already on the queue, so skip.
		if errors.Is(err, core.ErrNotFound) {
			slog.WarnContext(ctx, "Transaction gone before mirroring, skipping",
				"transaction_id", msg.ID)
			return nil
		}
		return fmt.Errorf("get transaction from storage: %w", err)
	}

	ref, err := w.appender.Append(ctx, tx)
	if err != nil {
		return fmt.Errorf("append to sheets: %w", err)
	}

	slog.InfoContext(ctx, "Successfully mirrored transaction",
		"transaction_id", msg.ID,
		"sheets_ref", ref,
		"description", tx.Description,
		"amount_cents", tx.Amount.Cents)

	return nil
}

func (w *SyncWorker) handleDelete(ctx context.Context, msg *amqp.TransactionDeleteMessage) error {
	slog.InfoContext(ctx, "Processing delete message", "transaction_id", msg.ID)

	if w.remover == nil {
		slog.WarnContext(ctx, "No mirror remover configured, skipping removal",
			"transaction_id", msg.ID)
		return nil
	}

	if err := w.remover.Remove(ctx, *msg); err != nil {
		return fmt.Errorf("remove mirrored row: %w", err)
	}

	slog.InfoContext(ctx, "Successfully removed mirrored transaction",
		"transaction_id", msg.ID)

	return nil
}
