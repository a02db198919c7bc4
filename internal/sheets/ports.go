// Package sheets defines the port for pushing the ledger to an
// external spreadsheet.
package sheets

import (
	"context"

	"expenses/internal/core"
)

// Exporter replaces the remote sheet's contents with the given
// expenses. Implementations are write-only: nothing in the store is
// ever read back from the spreadsheet.
type Exporter interface {
	Push(ctx context.Context, expenses []core.Expense) error
}
