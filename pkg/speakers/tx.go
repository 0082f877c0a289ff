package speakers

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Valtora/nojoin/pkg/logging"
	"github.com/Valtora/nojoin/pkg/transcript"
)

// Stores bundles the repositories an identity operation works over.
// Inside a transaction both views share the same underlying querier.
type Stores struct {
	Speakers    Store
	Transcripts transcript.Store
}

// TxRunner executes a function atomically: either every store mutation
// made inside fn is committed, or none are.
type TxRunner interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context, s Stores) error) error
}

// PGTxRunner runs identity operations inside a PostgreSQL transaction.
type PGTxRunner struct {
	pool   *pgxpool.Pool
	logger logging.Logger
}

// NewPGTxRunner creates a transaction runner over the pool.
func NewPGTxRunner(pool *pgxpool.Pool, logger logging.Logger) *PGTxRunner {
	return &PGTxRunner{pool: pool, logger: logger}
}

// WithinTx begins a transaction, builds transaction-scoped stores, and
// commits only if fn returns nil.
func (r *PGTxRunner) WithinTx(ctx context.Context, fn func(ctx context.Context, s Stores) error) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	s := Stores{
		Speakers:    NewPostgresRepository(tx),
		Transcripts: transcript.NewPGStore(tx, r.logger),
	}
	if err := fn(ctx, s); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}
