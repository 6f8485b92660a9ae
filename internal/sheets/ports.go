package sheets

import (
	"context"

	"fintrack/internal/amqp"
	"fintrack/internal/core"
)

// Ports for the spreadsheet mirror adapters.
type (
	// TransactionAppender mirrors a stored transaction as a spreadsheet row.
	TransactionAppender interface {
		Append(ctx context.Context, tx core.Transaction) (rowRef string, err error)
	}

	// TransactionRemover removes the mirrored row of a deleted transaction.
	// The row is located from the delete message since the transaction is
	// already gone from storage.
	TransactionRemover interface {
		Remove(ctx context.Context, msg amqp.TransactionDeleteMessage) error
	}
)
