package sheets

import (
	"context"

	"fintrack/internal/core"
)

// TransactionAppender is the outbound port for the backup target. Append
// writes one transaction as a row and returns an opaque row reference.
type TransactionAppender interface {
	Append(ctx context.Context, tx core.Transaction) (rowRef string, err error)
}
