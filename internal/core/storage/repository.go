package storage

import (
	"context"

	"github.com/aevon-lab/salesdash/internal/core/sales"
)

// Source loads the full record set once at startup.
// Implementations fail with *sales.DataFormatError when the source is
// unreadable or any record fails schema or date parsing.
type Source interface {
	Load(ctx context.Context) (*sales.Dataset, error)
}
