package sheets

import (
	"context"

	"conto/internal/core"
)

// Ports for the spreadsheet mirror adapters.
type (
	// TransactionWriter appends one transaction to the mirror and
	// returns a reference to the written row.
	TransactionWriter interface {
		Append(ctx context.Context, tx core.Transaction) (rowRef string, err error)
	}

	// MirrorLister returns the ids already present in the mirror.
	MirrorLister interface {
		ListIDs(ctx context.Context) ([]string, error)
	}
)
